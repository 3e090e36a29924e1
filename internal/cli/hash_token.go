package cli

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mrlokans/mazo/internal/auth"
	"github.com/mrlokans/mazo/internal/config"
)

// HashTokenCommand prints the bcrypt hash to configure as ADMIN_TOKEN_HASH.
// With -generate it also creates the token.
type HashTokenCommand struct {
	Generate bool
	Cost     int

	in  io.Reader
	out io.Writer
}

func NewHashTokenCommand(cfg *config.Config) *HashTokenCommand {
	return &HashTokenCommand{Cost: cfg.Admin.BcryptCost, in: os.Stdin, out: os.Stdout}
}

func (cmd *HashTokenCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("hash-token", flag.ContinueOnError)

	fs.BoolVar(&cmd.Generate, "generate", false, "Generate a random token instead of reading one from stdin")
	fs.IntVar(&cmd.Cost, "cost", cmd.Cost, "bcrypt cost")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s hash-token [-generate]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Read an admin token from stdin (or generate one) and print its bcrypt hash.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *HashTokenCommand) Run() error {
	if cmd.Generate {
		token, hash, err := auth.GenerateToken(cmd.Cost)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.out, "token: %s\n", token)
		fmt.Fprintf(cmd.out, "ADMIN_TOKEN_HASH=%s\n", hash)
		return nil
	}

	line, err := bufio.NewReader(cmd.in).ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("read token: %w", err)
	}
	hash, err := auth.HashToken(strings.TrimSpace(line), cmd.Cost)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.out, "ADMIN_TOKEN_HASH=%s\n", hash)
	return nil
}
