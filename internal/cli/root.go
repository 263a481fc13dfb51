// Package cli is the typegen command line: flag parsing, config merging,
// and the generate / print / verify runs.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/koustreak/typegen/internal/errs"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitDrift = 2
)

// Version is set at build time.
var Version = "dev"

// NewRootCommand creates the typegen command.
func NewRootCommand() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "typegen",
		Short: "Generate TypeScript database types from a live schema",
		Long: color.CyanString(`typegen reads the catalog of a live database and writes the
TypeScript declarations Kysely uses for a type-safe query builder.

Supported dialects: postgres, mysql, mssql, sqlite (also bun-sqlite,
kysely-bun-sqlite, worker-bun-sqlite and libsql for local files).`),
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f.register(cmd)
	return cmd
}

// Run executes the command line args and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return ExitOK
	case errs.IsVerificationMismatch(err):
		// the drift report is already written
		return ExitDrift
	default:
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(stderr, "Error: %s\n", describe(err))
		return ExitError
	}
}

// Execute runs typegen with the process arguments.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

// describe renders err for humans: config errors lead with the field path,
// catalog errors keep the driver cause.
func describe(err error) string {
	var e *errs.Error
	if !errors.As(err, &e) {
		return err.Error()
	}

	msg := e.Message
	if len(e.Path) > 0 {
		msg = fmt.Sprintf("%s (at %s)", msg, strings.Join(e.Path, "."))
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}
