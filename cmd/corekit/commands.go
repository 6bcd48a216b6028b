// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/corekit/corekit/internal/config"
	"github.com/corekit/corekit/internal/console"
	"github.com/corekit/corekit/internal/issue"
	"github.com/corekit/corekit/internal/logging"
	"github.com/corekit/corekit/internal/shell"
	"github.com/corekit/corekit/pkg/argspec"
	"github.com/corekit/corekit/pkg/router"
	"github.com/corekit/corekit/pkg/types"
)

// errUnbound means a handler ran before the runtime bound its environment.
var errUnbound = errors.New("command environment is not bound")

var errUnknownFormat = errors.New("unknown output format")

// builtinCommands are registered as components of the commands category.
func builtinCommands() []router.Command {
	return []router.Command{
		{
			Name:        "list",
			Description: "List the available commands",
			Handler:     listCommand,
		},
		{
			Name:        "categories",
			Description: "Show component categories in initialization order",
			Handler:     categoriesCommand,
		},
		{
			Name:        "components",
			Args:        argspec.Sigils("[category]"),
			Description: "Show registered components, optionally for one category",
			Handler:     componentsCommand,
		},
		{
			Name:        "inspect",
			Description: "Summarize categories, components and instantiation order",
			Handler:     inspectCommand,
		},
		{
			Name:        "config",
			Args:        argspec.Sigils("[format=cue]"),
			Description: "Print the effective configuration as CUE or TOML",
			Handler:     configCommand,
		},
		{
			Name:        "cache",
			Description: "Show the keys held by the shared cache",
			Handler:     cacheCommand,
		},
		{
			Name:        "version",
			Description: "Print the corekit version",
			Handler:     versionCommand,
		},
		{
			Name:        "exec",
			Args:        argspec.Sigils("[script]", "[...args]"),
			Description: "Run a shell script, prompting for it when omitted",
			Help:        "The script is interpreted in-process. Extra values become $1, $2 and so on.",
			Handler:     execCommand,
		},
		{
			Name:        "serve",
			Args:        argspec.Sigils("[address]"),
			Description: "Serve commands over an SSH console until interrupted",
			Help:        "Clients authenticate with the printed token as password and run one command per session.",
			Handler:     serveCommand,
		},
	}
}

func envOf(inv *router.Invocation) (*Env, error) {
	env, ok := inv.Env.(*Env)
	if !ok || env == nil {
		return nil, errUnbound
	}
	return env, nil
}

func listCommand(_ context.Context, inv *router.Invocation) (types.ExitCode, error) {
	for _, name := range inv.Control.List() {
		fmt.Fprintln(inv.Stdout, name)
	}
	return types.ExitOK, nil
}

func categoriesCommand(_ context.Context, inv *router.Invocation) (types.ExitCode, error) {
	env, err := envOf(inv)
	if err != nil {
		return types.ExitFailure, err
	}
	order, err := env.Runtime.Linearize()
	if err != nil {
		return types.ExitFailure, err
	}
	for _, name := range order {
		deps, err := env.Runtime.Dependencies(name)
		if err != nil {
			return types.ExitFailure, err
		}
		line := CmdStyle.Render(name)
		if len(deps) > 0 {
			line += SubtitleStyle.Render(" <- " + strings.Join(deps, ", "))
		}
		fmt.Fprintln(inv.Stdout, line)
	}
	return types.ExitOK, nil
}

func componentsCommand(_ context.Context, inv *router.Invocation) (types.ExitCode, error) {
	env, err := envOf(inv)
	if err != nil {
		return types.ExitFailure, err
	}
	var cats []string
	if c, ok := inv.Args.Get("category"); ok {
		cats = []string{c}
	} else if cats, err = env.Runtime.Linearize(); err != nil {
		return types.ExitFailure, err
	}
	for _, c := range cats {
		names, err := env.Runtime.ComponentNames(c)
		if err != nil {
			return types.ExitFailure, err
		}
		for _, n := range names {
			fmt.Fprintf(inv.Stdout, "%s/%s\n", c, n)
		}
	}
	return types.ExitOK, nil
}

// inspectCommand composes other commands through the router.
func inspectCommand(ctx context.Context, inv *router.Invocation) (types.ExitCode, error) {
	env, err := envOf(inv)
	if err != nil {
		return types.ExitFailure, err
	}
	for _, section := range []struct{ title, command string }{
		{"Categories", "categories"},
		{"Components", "components"},
	} {
		fmt.Fprintln(inv.Stdout, TitleStyle.Render(section.title))
		if code, err := inv.Control.Run(ctx, section.command); err != nil || !code.IsSuccess() {
			return code, err
		}
		fmt.Fprintln(inv.Stdout)
	}
	fmt.Fprintln(inv.Stdout, TitleStyle.Render("Instantiation order"))
	for i, name := range env.Trace {
		fmt.Fprintf(inv.Stdout, "%3d  %s\n", i+1, name)
	}
	fmt.Fprintf(inv.Stdout, "\n%s %s\n", SubtitleStyle.Render("run:"), env.Runtime.RunID())
	return types.ExitOK, nil
}

func configCommand(_ context.Context, inv *router.Invocation) (types.ExitCode, error) {
	env, err := envOf(inv)
	if err != nil {
		return types.ExitFailure, err
	}
	switch format := inv.Args.String("format"); format {
	case "cue":
		if env.ConfigPath != "" {
			fmt.Fprintf(inv.Stdout, "// loaded from %s\n", env.ConfigPath)
		}
		fmt.Fprint(inv.Stdout, config.GenerateCUE(env.Config))
	case "toml":
		if env.ConfigPath != "" {
			fmt.Fprintf(inv.Stdout, "# loaded from %s\n", env.ConfigPath)
		}
		out, err := config.GenerateTOML(env.Config)
		if err != nil {
			return types.ExitFailure, err
		}
		fmt.Fprint(inv.Stdout, out)
	default:
		return types.ExitFailure, issue.NewErrorContext().
			WithOperation("render config").
			WithResource(format).
			WithSuggestion("Use 'cue' or 'toml'").
			Wrap(errUnknownFormat).
			BuildError()
	}
	return types.ExitOK, nil
}

func cacheCommand(_ context.Context, inv *router.Invocation) (types.ExitCode, error) {
	env, err := envOf(inv)
	if err != nil {
		return types.ExitFailure, err
	}
	keys := env.Cache.Keys()
	fmt.Fprintf(inv.Stdout, "%d entries\n", len(keys))
	for _, k := range keys {
		fmt.Fprintln(inv.Stdout, "  "+k)
	}
	return types.ExitOK, nil
}

func versionCommand(_ context.Context, inv *router.Invocation) (types.ExitCode, error) {
	fmt.Fprintf(inv.Stdout, "%s %s\n", programName, getVersionString())
	return types.ExitOK, nil
}

func execCommand(ctx context.Context, inv *router.Invocation) (types.ExitCode, error) {
	env, err := envOf(inv)
	if err != nil {
		return types.ExitFailure, err
	}
	script, ok := inv.Args.Get("script")
	if !ok {
		if script, err = inv.Control.Prompt(ctx, "script"); err != nil {
			return types.ExitFailure, err
		}
	}
	code, err := env.Shell.Run(ctx, script, inv.Args.List("args"), shell.IO{
		Stdin:  inv.Stdin,
		Stdout: inv.Stdout,
		Stderr: inv.Stderr,
	})
	if err != nil {
		ctxErr := issue.NewErrorContext().
			WithOperation("run script").
			WithIssue(issue.ScriptFailedId).
			Wrap(err)
		if errors.Is(err, shell.ErrParse) {
			ctxErr.WithSuggestion("Check the script for unbalanced quotes or brackets")
		}
		return types.ExitFailure, ctxErr.BuildError()
	}
	return code, nil
}

func serveCommand(ctx context.Context, inv *router.Invocation) (types.ExitCode, error) {
	env, err := envOf(inv)
	if err != nil {
		return types.ExitFailure, err
	}
	srv := env.Console
	addr := env.Config.Console.Address.String()
	if override, ok := inv.Args.Get("address"); ok {
		addr = override
		srv, err = console.New(consoleConfig(env.Config, types.ListenAddress(addr)), env.Router,
			console.WithLogger(logging.For(env.Logger, "console")))
		if err != nil {
			return types.ExitFailure, err
		}
	}
	if err := srv.Start(ctx); err != nil {
		return types.ExitFailure, issue.NewErrorContext().
			WithOperation("start console").
			WithResource(addr).
			WithIssue(issue.ConsoleStartFailedId).
			WithSuggestion("Pick a free port with 'corekit serve 127.0.0.1:<port>'").
			Wrap(err).
			BuildError()
	}
	printServing(inv.Stdout, srv)

	select {
	case <-ctx.Done():
	case <-srv.Done():
	}
	if err := srv.Stop(); err != nil {
		return types.ExitFailure, err
	}
	return types.ExitOK, nil
}

func printServing(w io.Writer, srv *console.Server) {
	fmt.Fprintf(w, "%s %s\n", TitleStyle.Render("console listening on"), CmdStyle.Render(srv.Address()))
	fmt.Fprintf(w, "%s %s\n", SubtitleStyle.Render("token:"), srv.Token())
	fmt.Fprintln(w, VerboseStyle.Render("press Ctrl+C to stop"))
}
