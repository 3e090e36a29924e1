package main

import (
	"fmt"
	"log"
	"os"

	"github.com/mrlokans/mazo/internal/cli"
	"github.com/mrlokans/mazo/internal/config"
	"github.com/mrlokans/mazo/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

// command is implemented by every CLI subcommand.
type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	if err := config.LoadEnvFile(envFile()); err != nil {
		log.Printf("WARNING: %v", err)
	}
	cfg := config.NewConfig()

	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		entrypoint.Run(cfg, Version)
		return
	}

	name := os.Args[1]
	args := os.Args[2:]

	var cmd command
	switch name {
	case "provision":
		cmd = cli.NewProvisionCommand(cfg)
	case "reconcile":
		cmd = cli.NewReconcileCommand(cfg)
	case "hash-token":
		cmd = cli.NewHashTokenCommand(cfg)
	case "version":
		fmt.Printf("mazo %s (%s)\n", Version, Commit)
		return
	case "-h", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func envFile() string {
	if path := os.Getenv("MAZO_ENV_FILE"); path != "" {
		return path
	}
	return ".env"
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve        Start the HTTP server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  provision    Create workspace tables and seed the vocabulary catalog\n")
	fmt.Fprintf(os.Stderr, "  reconcile    Repair partial writes once and exit\n")
	fmt.Fprintf(os.Stderr, "  hash-token   Hash (or generate) the admin API token\n")
	fmt.Fprintf(os.Stderr, "  version      Print the version\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
