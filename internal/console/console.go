// SPDX-License-Identifier: MPL-2.0

// Package console serves router commands over SSH. Each session runs one
// command line, e.g. `ssh -p 2222 host greet bob`, authenticated by a shared
// token used as the password. Dispatches are serialized: the router has a
// single driver at a time.
package console

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/corekit/corekit/internal/core/serverbase"
	"github.com/corekit/corekit/internal/logging"
	"github.com/corekit/corekit/pkg/router"
	"github.com/corekit/corekit/pkg/types"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/google/uuid"
)

const defaultShutdownTimeout = 5 * time.Second

type (
	// Dispatcher is the router surface the console needs.
	Dispatcher interface {
		Dispatch(ctx context.Context, req router.Request) (types.ExitCode, error)
		Outcome(name string, code types.ExitCode, err error) router.Outcome
	}

	// Config holds the immutable server settings.
	Config struct {
		Address types.ListenAddress
		// HostKeyPath is created when missing. Empty means an ephemeral key.
		HostKeyPath string
		// Token is the session password. Empty generates a random one.
		Token           string
		ShutdownTimeout time.Duration
	}

	// Server is a single-use SSH console.
	Server struct {
		*serverbase.Base

		cfg        Config
		dispatcher Dispatcher
		logger     *log.Logger

		// dispatchMu serializes router access across sessions.
		dispatchMu sync.Mutex

		mu       sync.Mutex
		srv      *ssh.Server
		listener net.Listener
	}

	// Option configures a Server.
	Option func(*Server)
)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New validates cfg and returns a server that is not yet listening.
func New(cfg Config, d Dispatcher, opts ...Option) (*Server, error) {
	if err := cfg.Address.Validate(); err != nil {
		return nil, err
	}
	if d == nil {
		return nil, errors.New("console: nil dispatcher")
	}
	if cfg.Token == "" {
		cfg.Token = uuid.NewString()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	s := &Server{
		Base:       serverbase.NewBase(1),
		cfg:        cfg,
		dispatcher: d,
		logger:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Token returns the session password.
func (s *Server) Token() string { return s.cfg.Token }

// Address returns the bound address, or "" before Start succeeds.
func (s *Server) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start listens and serves in the background. It returns once the server
// accepts connections.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Begin(ctx); err != nil {
		return err
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Address.String())
	if err != nil {
		err = fmt.Errorf("failed to listen on %s: %w", s.cfg.Address, err)
		s.Fail(err)
		return err
	}

	opts := []ssh.Option{
		wish.WithAddress(ln.Addr().String()),
		wish.WithPasswordAuth(s.authenticate),
		wish.WithPublicKeyAuth(func(ssh.Context, ssh.PublicKey) bool { return false }),
		wish.WithMiddleware(s.commandMiddleware()),
	}
	if s.cfg.HostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(s.cfg.HostKeyPath))
	}
	srv, err := wish.NewServer(opts...)
	if err != nil {
		_ = ln.Close()
		err = fmt.Errorf("failed to create SSH server: %w", err)
		s.Fail(err)
		return err
	}

	s.mu.Lock()
	s.srv = srv
	s.listener = ln
	s.mu.Unlock()

	s.Go(func(context.Context) {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, ssh.ErrServerClosed) && !errors.Is(err, net.ErrClosed) {
			s.Report(fmt.Errorf("serve error: %w", err))
		}
	})
	s.MarkRunning()
	s.logger.Info("console listening", "address", ln.Addr().String())
	return nil
}

// Stop shuts the server down, waiting up to the shutdown timeout for
// sessions to end. Stopping twice is a no-op.
func (s *Server) Stop() error {
	if !s.BeginStop() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()

	var err error
	if srv != nil {
		if err = srv.Shutdown(ctx); errors.Is(err, ssh.ErrServerClosed) || errors.Is(err, net.ErrClosed) {
			err = nil
		}
	}
	s.Finish()
	s.logger.Info("console stopped")
	return err
}

// Wait blocks until the server stops or fails.
func (s *Server) Wait() error {
	<-s.Done()
	return s.LastError()
}

func (s *Server) authenticate(ctx ssh.Context, password string) bool {
	ok := subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.Token)) == 1
	if !ok {
		s.logger.Warn("rejected console login", "user", ctx.User(), "remote", ctx.RemoteAddr().String())
	}
	return ok
}

func (s *Server) commandMiddleware() wish.Middleware {
	return func(ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			code := s.run(sess.Context(), sess.Command(), sess, sess, sess.Stderr())
			_ = sess.Exit(code.Process()) //nolint:errcheck // the client may already be gone
		}
	}
}

// run dispatches one command line and writes its outcome. A session with no
// command gets the general usage.
func (s *Server) run(ctx context.Context, line []string, stdin io.Reader, stdout, stderr io.Writer) types.ExitCode {
	name, args := router.HelpCommand, []string(nil)
	if len(line) > 0 {
		name, args = line[0], line[1:]
	}

	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.logger.Debug("console command", "command", name, "args", len(args))
	code, err := s.dispatcher.Dispatch(ctx, router.Request{
		Name:   name,
		Args:   args,
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
	})
	out := s.dispatcher.Outcome(name, code, err)
	if out.Message != "" {
		fmt.Fprintf(stderr, "Error: %s\n", out.Message)
	}
	if out.Usage != "" {
		w := stderr
		if out.Code.IsSuccess() {
			w = stdout
		}
		if out.Message != "" {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, out.Usage)
	}
	return out.Code
}
