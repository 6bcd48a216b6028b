// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/corekit/corekit/internal/config"
	"github.com/corekit/corekit/internal/issue"
	"github.com/corekit/corekit/internal/logging"
	"github.com/corekit/corekit/pkg/router"
	"github.com/corekit/corekit/pkg/types"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time via -ldflags.
	Version = "dev"
	// Commit is set at build time via -ldflags.
	Commit = "unknown"
	// BuildDate is set at build time via -ldflags.
	BuildDate = "unknown"
)

// rootFlags are parsed before the command name only.
type rootFlags struct {
	configPath string
	verbose    bool
	logLevel   string
}

// Execute runs the CLI and exits with the status of the dispatched command.
// This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	var exit *ExitError
	root := newRootCommand(app, &exit)
	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
	if exit != nil {
		os.Exit(exit.Code.Process())
	}
}

// newRootCommand builds the cobra root. Every positional value after the
// flags belongs to the router, so the dispatch result is stored in exit
// rather than returned, keeping its already rendered output from being
// printed twice.
func newRootCommand(app *App, exit **ExitError) *cobra.Command {
	var flags rootFlags
	cmd := &cobra.Command{
		Use:   programName + " [flags] <command> [args...]",
		Short: "Compose components and dispatch commands",
		Long: `corekit composes its services in dependency-ordered categories, starts them,
and dispatches one command through its router.

Run 'corekit help' to list the commands or 'corekit help <command>' for the
usage of one of them.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			*exit = app.Run(cmd.Context(), flags, args)
			return nil
		},
	}
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().StringVar(&flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/corekit/config.cue)")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn or error")
	return cmd
}

// Run loads configuration, composes and starts the runtime, dispatches args
// and stops the runtime again. It returns nil on success.
func (a *App) Run(ctx context.Context, flags rootFlags, args []string) *ExitError {
	verbose := flags.verbose
	res, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil {
		a.renderError(err, verbose, config.DefaultMarkdownStyle)
		return &ExitError{Code: types.ExitFailure, Err: err}
	}
	cfg := res.Config
	if flags.logLevel != "" {
		level := config.LogLevel(flags.logLevel)
		if err := level.Validate(); err != nil {
			a.renderError(err, verbose, cfg.UI.MarkdownStyle)
			return &ExitError{Code: types.ExitFailure, Err: err}
		}
		cfg.LogLevel = level
	}
	verbose = verbose || cfg.Verbose

	logger := logging.New(a.stderr, logging.Options{
		Level:   cfg.LogLevel.String(),
		Verbose: verbose,
		Prefix:  programName,
	})
	sys, err := a.compose(res, logger)
	if err != nil {
		a.renderError(err, verbose, cfg.UI.MarkdownStyle)
		return &ExitError{Code: types.ExitFailure, Err: err}
	}
	if err := sys.runtime.Start(ctx); err != nil {
		err = issue.NewErrorContext().
			WithOperation("start runtime").
			WithIssue(issue.ComponentFailedId).
			WithSuggestion("Run with --verbose to see which component failed").
			Wrap(err).
			BuildError()
		a.renderError(err, verbose, cfg.UI.MarkdownStyle)
		return &ExitError{Code: types.ExitFailure, Err: err}
	}

	var name string
	var rest []string
	if len(args) > 0 {
		name, rest = args[0], args[1:]
	}
	code, derr := sys.router.Dispatch(ctx, router.Request{Name: name, Args: rest})

	if err := sys.runtime.Stop(context.WithoutCancel(ctx)); err != nil {
		logger.Warn("runtime did not stop cleanly", "err", err)
	}

	out := sys.router.Outcome(name, code, derr)
	a.report(out, verbose, cfg.UI.MarkdownStyle)
	if out.Code.IsSuccess() {
		return nil
	}
	return &ExitError{Code: out.Code, Err: errors.Join(derr)}
}

// getVersionString returns a formatted version string.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}
