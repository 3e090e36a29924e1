package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mrlokans/mazo/internal/config"
	"github.com/mrlokans/mazo/internal/entrypoint"
)

// ProvisionCommand creates the workspace tables and seeds the catalog.
type ProvisionCommand struct {
	OwnerEmail string
	SeedFile   string
	Timeout    time.Duration
	CheckOnly  bool

	cfg *config.Config
}

func NewProvisionCommand(cfg *config.Config) *ProvisionCommand {
	return &ProvisionCommand{cfg: cfg}
}

func (cmd *ProvisionCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("provision", flag.ContinueOnError)

	fs.StringVar(&cmd.OwnerEmail, "email", cmd.cfg.Workspace.OwnerEmail, "Owner email recorded in the Config table")
	fs.StringVar(&cmd.SeedFile, "seed", cmd.cfg.Workspace.SeedFile, "Catalog seed file (.xlsx or .csv with sourceText and targetText columns)")
	fs.DurationVar(&cmd.Timeout, "timeout", 5*time.Minute, "Give up after this long")
	fs.BoolVar(&cmd.CheckOnly, "check", false, "Only validate the table headers, write nothing")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s provision [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create missing workspace tables and seed the vocabulary catalog.\n")
		fmt.Fprintf(os.Stderr, "Safe to run repeatedly: existing tables and words are left alone.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s provision -email owner@example.com -seed words.xlsx\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s provision -check\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if !cmd.CheckOnly && cmd.OwnerEmail == "" {
		return fmt.Errorf("required flag -email not provided (or set WORKSPACE_OWNER_EMAIL)")
	}
	return nil
}

func (cmd *ProvisionCommand) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), cmd.Timeout)
	defer cancel()

	cmd.cfg.Workspace.OwnerEmail = cmd.OwnerEmail
	cmd.cfg.Workspace.SeedFile = cmd.SeedFile

	app, err := entrypoint.NewApp(ctx, cmd.cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if cmd.CheckOnly {
		if err := app.Workspace.ValidateSchemas(ctx); err != nil {
			return err
		}
		fmt.Println("All workspace tables have the expected columns.")
		return nil
	}

	result, err := app.Provision(ctx)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
