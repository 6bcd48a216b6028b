// SPDX-License-Identifier: MPL-2.0

// Package shell runs scripts in the embedded mvdan/sh interpreter. Scripts
// never touch a system shell; external programs are still resolved on PATH.
package shell

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/corekit/corekit/internal/cache"
	"github.com/corekit/corekit/internal/logging"
	"github.com/corekit/corekit/pkg/types"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// ErrParse is the sentinel wrapped by ParseError.
var ErrParse = errors.New("invalid script")

type (
	// ParseError reports a script the parser rejected.
	ParseError struct {
		Name string
		Err  error
	}

	// IO binds a run to its streams; nil members are treated as empty input
	// or discarded output.
	IO struct {
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// Runner executes scripts with a fixed directory and environment.
	Runner struct {
		dir      string
		env      []string
		programs *cache.Cache
		logger   *log.Logger
	}

	// Option configures a Runner.
	Option func(*Runner)
)

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Name, e.Err)
}

// Unwrap exposes ErrParse and the parser error.
func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Err} }

// WithDir sets the working directory; empty means the process cwd.
func WithDir(dir string) Option {
	return func(r *Runner) { r.dir = dir }
}

// WithEnv appends KEY=VALUE pairs over the inherited environment.
func WithEnv(pairs ...string) Option {
	return func(r *Runner) { r.env = append(r.env, pairs...) }
}

// WithProgramCache memoizes parsed scripts in c.
func WithProgramCache(c *cache.Cache) Option {
	return func(r *Runner) { r.programs = c }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// New returns a runner inheriting the process environment.
func New(opts ...Option) *Runner {
	r := &Runner{
		env:    os.Environ(),
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Parse parses script, consulting the program cache first.
func (r *Runner) Parse(script string) (*syntax.File, error) {
	key := programKey(script)
	if r.programs != nil {
		if prog, ok := cache.Lookup[*syntax.File](r.programs, key); ok {
			return prog, nil
		}
	}
	prog, err := syntax.NewParser().Parse(strings.NewReader(script), "script")
	if err != nil {
		return nil, &ParseError{Name: "script", Err: err}
	}
	if r.programs != nil {
		r.programs.Set(key, prog)
	}
	return prog, nil
}

// Run executes script with args bound to $1..$n. A non-zero exit status is
// returned as the exit code with a nil error; errors are reserved for scripts
// that could not be parsed or run at all.
func (r *Runner) Run(ctx context.Context, script string, args []string, stdio IO) (types.ExitCode, error) {
	prog, err := r.Parse(script)
	if err != nil {
		return types.ExitFailure, err
	}

	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(r.env...)),
		interp.StdIO(stdio.Stdin, stdio.Stdout, stdio.Stderr),
	}
	if r.dir != "" {
		opts = append(opts, interp.Dir(r.dir))
	}
	// "--" keeps arguments such as "-v" from being read as shell options.
	if len(args) > 0 {
		opts = append(opts, interp.Params(append([]string{"--"}, args...)...))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return types.ExitFailure, fmt.Errorf("failed to create interpreter: %w", err)
	}

	start := time.Now()
	err = runner.Run(ctx, prog)
	r.logger.Debug("script finished", "args", len(args), "elapsed", time.Since(start), "err", err)
	if err == nil {
		return types.ExitOK, nil
	}
	var status interp.ExitStatus
	if errors.As(err, &status) {
		return types.ExitCode(status), nil
	}
	return types.ExitFailure, fmt.Errorf("script execution failed: %w", err)
}

func programKey(script string) string {
	sum := sha256.Sum256([]byte(script))
	return "shell:" + hex.EncodeToString(sum[:])
}
