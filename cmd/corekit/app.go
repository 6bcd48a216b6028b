// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/corekit/corekit/internal/cache"
	"github.com/corekit/corekit/internal/config"
	"github.com/corekit/corekit/internal/console"
	"github.com/corekit/corekit/internal/logging"
	"github.com/corekit/corekit/internal/shell"
	"github.com/corekit/corekit/pkg/container"
	"github.com/corekit/corekit/pkg/router"
	"github.com/corekit/corekit/pkg/types"

	"github.com/charmbracelet/log"
)

const programName = "corekit"

// Categories of the composition root, in dependency order.
const (
	CategoryCore     = "core"
	CategoryServices = "services"
	CategoryCommands = "commands"
)

type (
	// App holds the process-level inputs of one CLI run.
	App struct {
		Config config.Provider
		stdin  io.Reader
		stdout io.Writer
		stderr io.Writer
	}

	// Dependencies are the injection points of NewApp; nil fields get
	// production defaults.
	Dependencies struct {
		Config config.Provider
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// Env is the external interface bound to the router once the runtime has
	// started. Command handlers receive it as Invocation.Env.
	Env struct {
		Config     *config.Config
		ConfigPath string
		Logger     *log.Logger
		Runtime    *container.Runtime
		Router     *router.Router
		Cache      *cache.Cache
		Shell      *shell.Runner
		Console    *console.Server
		// Trace lists "category/name" in instantiation order.
		Trace []string
	}

	// system is one composed runtime with its router.
	system struct {
		runtime *container.Runtime
		router  *router.Router
		trace   []string
	}
)

// NewApp fills the missing dependencies with the file-backed config
// provider and the process streams.
func NewApp(deps Dependencies) *App {
	a := &App{
		Config: deps.Config,
		stdin:  deps.Stdin,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
	if a.Config == nil {
		a.Config = config.NewProvider()
	}
	if a.stdin == nil {
		a.stdin = os.Stdin
	}
	if a.stdout == nil {
		a.stdout = os.Stdout
	}
	if a.stderr == nil {
		a.stderr = os.Stderr
	}
	return a
}

// compose declares the categories, registers every component and wires the
// hooks that bind the router. Nothing is instantiated until Start.
func (a *App) compose(res *config.Result, logger *log.Logger) (*system, error) {
	rt := container.New(container.WithLogger(logging.For(logger, "container")))
	r := router.New(
		router.WithProgram(programName),
		router.WithIO(a.stdin, a.stdout, a.stderr),
		router.WithLogger(logging.For(logger, "router")),
	)
	sys := &system{runtime: rt, router: r}

	var err error
	do := func(e error) {
		if err == nil {
			err = e
		}
	}

	do(rt.DeclareCategory(CategoryCore))
	do(rt.DeclareCategory(CategoryServices, CategoryCore, CategoryServices))
	do(rt.DeclareCategory(CategoryCommands, CategoryCore, CategoryServices))

	do(rt.Register(CategoryCore, "config", container.Value(res.Config)))
	do(rt.Register(CategoryCore, "config_path", container.Value(res.Path)))
	do(rt.Register(CategoryCore, "logger", container.Value(logger)))
	do(rt.Register(CategoryCore, "runtime", container.Value(rt)))
	do(rt.Register(CategoryCore, "router", container.Value(r)))

	do(rt.Register(CategoryServices, "cache", container.Factory(newCache)))
	do(rt.Register(CategoryServices, "shell", container.Factory(newShell)))
	do(rt.Register(CategoryServices, "console", container.Async(newConsole)))

	do(rt.UseCategory(CategoryCommands, registerCommands(r)))
	for _, c := range builtinCommands() {
		do(rt.Register(CategoryCommands, c.Name, container.Value(c)))
	}

	do(rt.Use(sys.traceInstantiation))
	do(rt.AfterStart(sys.bind))
	do(rt.BeforeStop(stopConsole))

	if err != nil {
		return nil, fmt.Errorf("composing runtime: %w", err)
	}
	return sys, nil
}

func newCache(_ context.Context, deps container.Components) (any, error) {
	cfg, err := container.Lookup[*config.Config](deps, CategoryCore, "config")
	if err != nil {
		return nil, err
	}
	logger, err := container.Lookup[*log.Logger](deps, CategoryCore, "logger")
	if err != nil {
		return nil, err
	}
	return cache.New(cfg.Cache.DefaultTTL, cfg.Cache.CleanupInterval,
		cache.WithLogger(logging.For(logger, "cache"))), nil
}

// newShell depends on the cache registered before it in the same category.
func newShell(_ context.Context, deps container.Components) (any, error) {
	cfg, err := container.Lookup[*config.Config](deps, CategoryCore, "config")
	if err != nil {
		return nil, err
	}
	logger, err := container.Lookup[*log.Logger](deps, CategoryCore, "logger")
	if err != nil {
		return nil, err
	}
	c, err := container.Lookup[*cache.Cache](deps, CategoryServices, "cache")
	if err != nil {
		return nil, err
	}
	return shell.New(
		shell.WithDir(cfg.Shell.Dir),
		shell.WithProgramCache(c),
		shell.WithLogger(logging.For(logger, "shell")),
	), nil
}

func newConsole(_ context.Context, deps container.Components) *container.Future {
	return container.Go(func() (any, error) {
		cfg, err := container.Lookup[*config.Config](deps, CategoryCore, "config")
		if err != nil {
			return nil, err
		}
		logger, err := container.Lookup[*log.Logger](deps, CategoryCore, "logger")
		if err != nil {
			return nil, err
		}
		r, err := container.Lookup[*router.Router](deps, CategoryCore, "router")
		if err != nil {
			return nil, err
		}
		return console.New(consoleConfig(cfg, cfg.Console.Address), r,
			console.WithLogger(logging.For(logger, "console")))
	})
}

func consoleConfig(cfg *config.Config, addr types.ListenAddress) console.Config {
	return console.Config{
		Address:     addr,
		HostKeyPath: cfg.Console.HostKeyPath,
		Token:       cfg.Console.Token,
	}
}

// registerCommands turns every component of the commands category into a
// router command as it is instantiated.
func registerCommands(r *router.Router) container.Middleware {
	return func(next container.Provider, _ container.Components) (container.Provider, error) {
		return container.Factory(func(ctx context.Context, deps container.Components) (any, error) {
			v, err := next.Make(ctx, deps)
			if err != nil {
				return nil, err
			}
			c, ok := v.(router.Command)
			if !ok {
				return nil, fmt.Errorf("commands component is %T, want router.Command", v)
			}
			if err := r.Register(c, router.SkipDuplicate()); err != nil {
				return nil, err
			}
			return c, nil
		}), nil
	}
}

func (s *system) traceInstantiation(next container.Provider, _ container.Components, category, name string) (container.Provider, error) {
	return container.Factory(func(ctx context.Context, deps container.Components) (any, error) {
		v, err := next.Make(ctx, deps)
		if err == nil {
			s.trace = append(s.trace, category+"/"+name)
		}
		return v, err
	}), nil
}

// bind exposes the started components to command handlers.
func (s *system) bind(_ context.Context, c container.Components) error {
	env := &Env{
		Runtime: s.runtime,
		Router:  s.router,
		Trace:   s.trace,
	}
	var err error
	if env.Config, err = container.Lookup[*config.Config](c, CategoryCore, "config"); err != nil {
		return err
	}
	if env.ConfigPath, err = container.Lookup[string](c, CategoryCore, "config_path"); err != nil {
		return err
	}
	if env.Logger, err = container.Lookup[*log.Logger](c, CategoryCore, "logger"); err != nil {
		return err
	}
	if env.Cache, err = container.Lookup[*cache.Cache](c, CategoryServices, "cache"); err != nil {
		return err
	}
	if env.Shell, err = container.Lookup[*shell.Runner](c, CategoryServices, "shell"); err != nil {
		return err
	}
	if env.Console, err = container.Lookup[*console.Server](c, CategoryServices, "console"); err != nil {
		return err
	}
	s.router.Bind(env)
	return nil
}

func stopConsole(_ context.Context, c container.Components) error {
	srv, err := container.Lookup[*console.Server](c, CategoryServices, "console")
	if err != nil {
		return nil
	}
	return srv.Stop()
}
