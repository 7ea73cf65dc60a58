// Command stockimport turns an inventory workbook into an idempotent SQL
// import script, optionally applies it, and checks stock against a running
// inventory API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/stockimport/internal/config"
	"github.com/JonMunkholm/stockimport/internal/core"
	"github.com/JonMunkholm/stockimport/internal/logging"
)

// Exit codes.
const (
	exitOK         = 0
	exitFailure    = 1
	exitItems      = 2 // reconcile: items endpoint failed
	exitStock      = 3 // reconcile: stock endpoint failed
	exitUsage      = 4
	exitValidation = 5
	exitDB         = 6
)

// exitError carries the process exit code for an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitFailure
}

// app holds state shared by the subcommands.
type app struct {
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "stockimport",
		Short:         "Generate SQL import scripts from an inventory workbook",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return withCode(exitUsage, err)
			}
			logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
			a.cfg = cfg
			return nil
		},
	}

	root.AddCommand(
		newGenerateCmd(a),
		newApplyCmd(a),
		newReconcileCmd(a),
	)
	return root
}

// report prints err for the user: the mapped message first, then the
// technical detail.
func report(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %s\n", core.FormatUserError(err))
	fmt.Fprintf(w, "  detail: %v\n", err)
}

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err == nil {
		slog.Debug("loaded .env file (overwriting existing env vars)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		report(os.Stderr, err)
	}
	os.Exit(exitCode(err))
}
