package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mrlokans/mazo/internal/config"
	"github.com/mrlokans/mazo/internal/entrypoint"
)

// ReconcileCommand repairs partial writes once and exits.
type ReconcileCommand struct {
	IntentID string
	MinAge   time.Duration
	Timeout  time.Duration

	cfg *config.Config
}

func NewReconcileCommand(cfg *config.Config) *ReconcileCommand {
	return &ReconcileCommand{cfg: cfg}
}

func (cmd *ReconcileCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("reconcile", flag.ContinueOnError)

	fs.StringVar(&cmd.IntentID, "id", "", "Repair only this write intent")
	fs.DurationVar(&cmd.MinAge, "min-age", cmd.cfg.Reconcile.MinAge, "Skip intents touched more recently than this")
	fs.DurationVar(&cmd.Timeout, "timeout", 10*time.Minute, "Give up after this long")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s reconcile [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Complete or close write intents left pending by failed multi-step writes.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *ReconcileCommand) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), cmd.Timeout)
	defer cancel()

	app, err := entrypoint.NewApp(ctx, cmd.cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if cmd.IntentID != "" {
		outcome, err := app.Reconciler.ReconcileIntent(ctx, cmd.IntentID)
		if err != nil {
			return err
		}
		return printJSON(outcome)
	}

	summary, err := app.Reconciler.Scan(ctx, cmd.MinAge)
	if err != nil {
		return err
	}
	return printJSON(summary)
}
