// SPDX-License-Identifier: MPL-2.0

package router

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/corekit/corekit/pkg/argspec"
	"github.com/corekit/corekit/pkg/types"

	"github.com/charmbracelet/log"
)

// HelpCommand is the reserved command name. It shows up in usage but running it
// always fails with ErrInvalidInvocation so that the caller can render usage.
const HelpCommand = "help"

type (
	// Handler executes a command. The returned code becomes the invocation status.
	Handler func(ctx context.Context, inv *Invocation) (types.ExitCode, error)

	// Command describes a runnable command.
	Command struct {
		// Name is matched case-sensitively.
		Name string
		// Args lists the positional arguments as sigils or argspec.Spec values.
		Args []argspec.Arg
		// Description is the mandatory one-line summary.
		Description string
		// Help is optional long-form text appended to the command usage.
		Help string
		// Handler runs the command.
		Handler Handler
	}

	// Invocation is what a handler receives.
	Invocation struct {
		// Command is the name that was dispatched.
		Command string
		// Args are the parsed arguments.
		Args Args
		// Env is the external interface bound with Router.Bind.
		Env any
		// Control lets the handler list and run other commands or prompt for input.
		Control Control

		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// Control is the surface a handler uses to reach back into the router.
	Control interface {
		// List returns the non-reserved command names in registration order.
		List() []string
		// Run dispatches another command with the same streams and environment.
		Run(ctx context.Context, name string, args ...string) (types.ExitCode, error)
		// Prompt asks for a single value described by a sigil.
		Prompt(ctx context.Context, sigil string) (string, error)
		// PromptAll asks for a list of values described by a sigil.
		PromptAll(ctx context.Context, sigil string) ([]string, error)
	}

	// Request is a dispatch request. Nil streams fall back to the router's streams.
	Request struct {
		Name   string
		Args   []string
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// Option configures a Router.
	Option func(*Router)

	// RegisterOption configures a Register call.
	RegisterOption func(*registerOptions)

	registerOptions struct {
		skipDuplicate bool
	}

	// Router registers commands and dispatches invocations to them.
	// It is driven by a single caller at a time.
	Router struct {
		program string
		logger  *log.Logger
		stdin   io.Reader
		stdout  io.Writer
		stderr  io.Writer

		commands map[string]*entry
		order    []string
		env      any
	}

	entry struct {
		cmd   Command
		specs []argspec.Spec
	}
)

// WithProgram sets the program name shown in usage lines.
func WithProgram(name string) Option {
	return func(r *Router) {
		r.program = name
	}
}

// WithIO sets the default streams handed to handlers.
func WithIO(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(r *Router) {
		if stdin != nil {
			r.stdin = stdin
		}
		if stdout != nil {
			r.stdout = stdout
		}
		if stderr != nil {
			r.stderr = stderr
		}
	}
}

// WithLogger sets the logger used for dispatch tracing.
func WithLogger(logger *log.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// SkipDuplicate turns the registration of an existing name into a no-op.
func SkipDuplicate() RegisterOption {
	return func(o *registerOptions) {
		o.skipDuplicate = true
	}
}

// New creates a Router holding only the reserved help command.
func New(opts ...Option) *Router {
	r := &Router{
		program:  "app",
		logger:   log.New(io.Discard),
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		commands: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(r)
	}

	help := Command{
		Name:        HelpCommand,
		Args:        argspec.Sigils("[command]"),
		Description: "Show usage information",
		Help:        "Lists every command, or describes the given one.",
		Handler: func(_ context.Context, inv *Invocation) (types.ExitCode, error) {
			return types.ExitFailure, &InvalidInvocationError{Target: inv.Args.String("command")}
		},
	}
	specs, _ := argspec.Canonicalize(help.Args)
	r.commands[HelpCommand] = &entry{cmd: help, specs: specs}
	return r
}

// Program returns the program name used in usage lines.
func (r *Router) Program() string {
	return r.program
}

// Bind sets the external interface handed to handlers as Invocation.Env.
func (r *Router) Bind(env any) {
	r.env = env
}

// Env returns the bound external interface.
func (r *Router) Env() any {
	return r.env
}

// Register validates and adds a command.
func (r *Router) Register(cmd Command, opts ...RegisterOption) error {
	return r.RegisterAll([]Command{cmd}, opts...)
}

// RegisterAll validates every command before adding any of them, so a
// rejected batch leaves the router unchanged.
func (r *Router) RegisterAll(cmds []Command, opts ...RegisterOption) error {
	var o registerOptions
	for _, opt := range opts {
		opt(&o)
	}

	pending := make([]*entry, 0, len(cmds))
	batch := make(map[string]bool, len(cmds))
	for _, cmd := range cmds {
		e, err := prepare(cmd)
		if err != nil {
			return err
		}
		_, exists := r.commands[cmd.Name]
		if exists || batch[cmd.Name] {
			if o.skipDuplicate {
				continue
			}
			return &DuplicateCommandError{Name: cmd.Name}
		}
		batch[cmd.Name] = true
		pending = append(pending, e)
	}

	for _, e := range pending {
		r.commands[e.cmd.Name] = e
		r.order = append(r.order, e.cmd.Name)
		r.logger.Debug("command registered", "command", e.cmd.Name, "args", argspec.Usage(e.specs))
	}
	return nil
}

func prepare(cmd Command) (*entry, error) {
	switch {
	case cmd.Name == "":
		return nil, &InvalidCommandError{Reason: "name must be a non-empty string"}
	case strings.ContainsAny(cmd.Name, " \t\r\n"):
		return nil, &InvalidCommandError{Name: cmd.Name, Reason: "name must not contain whitespace"}
	case cmd.Handler == nil:
		return nil, &InvalidCommandError{Name: cmd.Name, Reason: "handler must be set"}
	}
	if err := types.Description(cmd.Description).Validate(); err != nil {
		return nil, &InvalidCommandError{Name: cmd.Name, Reason: "description is invalid", Err: err}
	}
	specs, err := argspec.Canonicalize(cmd.Args)
	if err != nil {
		return nil, fmt.Errorf("command %q: %w", cmd.Name, err)
	}
	cmd.Args = slices.Clone(cmd.Args)
	return &entry{cmd: cmd, specs: specs}, nil
}

// List returns the non-reserved command names in registration order.
func (r *Router) List() []string {
	return slices.Clone(r.order)
}

// Has reports whether name is registered. The reserved help command counts.
func (r *Router) Has(name string) bool {
	_, ok := r.commands[name]
	return ok
}

// Specs returns the canonical argument specs of a command.
func (r *Router) Specs(name string) ([]argspec.Spec, bool) {
	e, ok := r.commands[name]
	if !ok {
		return nil, false
	}
	return slices.Clone(e.specs), true
}

// Run dispatches name with raw arguments using the router's streams.
func (r *Router) Run(ctx context.Context, name string, args ...string) (types.ExitCode, error) {
	return r.Dispatch(ctx, Request{Name: name, Args: args})
}

// Dispatch parses the request against the command grammar and runs its
// handler. Nothing runs when a required argument is missing. Handler errors
// are returned untouched.
func (r *Router) Dispatch(ctx context.Context, req Request) (types.ExitCode, error) {
	s := &session{
		router: r,
		stdin:  orReader(req.Stdin, r.stdin),
		stdout: orWriter(req.Stdout, r.stdout),
		stderr: orWriter(req.Stderr, r.stderr),
	}
	return s.Run(ctx, req.Name, req.Args...)
}

func (r *Router) dispatch(ctx context.Context, s *session, name string, raw []string) (types.ExitCode, error) {
	if name == "" {
		return types.ExitFailure, ErrMissingCommand
	}
	e, ok := r.commands[name]
	if !ok {
		return types.ExitFailure, &UnknownCommandError{Name: name}
	}
	args, err := bindArgs(name, e.specs, raw)
	if err != nil {
		return types.ExitFailure, err
	}

	r.logger.Debug("dispatching command", "command", name, "args", len(raw))
	code, err := e.cmd.Handler(ctx, &Invocation{
		Command: name,
		Args:    args,
		Env:     r.env,
		Control: s,
		Stdin:   s.stdin,
		Stdout:  s.stdout,
		Stderr:  s.stderr,
	})
	r.logger.Debug("command finished", "command", name, "status", code, "error", err)
	return code, err
}

func orReader(a, b io.Reader) io.Reader {
	if a != nil {
		return a
	}
	return b
}

func orWriter(a, b io.Writer) io.Writer {
	if a != nil {
		return a
	}
	return b
}
