// SPDX-License-Identifier: MPL-2.0

package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/corekit/corekit/internal/core/serverbase"
	"github.com/corekit/corekit/pkg/argspec"
	"github.com/corekit/corekit/pkg/router"
	"github.com/corekit/corekit/pkg/types"

	gossh "golang.org/x/crypto/ssh"
)

func testRouter(t *testing.T) *router.Router {
	t.Helper()
	r := router.New(router.WithProgram("corekit"))
	err := r.RegisterAll([]router.Command{
		{
			Name:        "greet",
			Args:        argspec.Sigils("name"),
			Description: "Say hello",
			Handler: func(_ context.Context, inv *router.Invocation) (types.ExitCode, error) {
				_, err := inv.Stdout.Write([]byte("hello " + inv.Args.String("name") + "\n"))
				return 0, err
			},
		},
		{
			Name:        "status",
			Args:        argspec.Sigils("code"),
			Description: "Exit with a code",
			Handler: func(_ context.Context, inv *router.Invocation) (types.ExitCode, error) {
				if inv.Args.String("code") == "boom" {
					return 1, errors.New("boom")
				}
				return 4, nil
			},
		},
	})
	if err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
	return r
}

func newServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	s, err := New(cfg, testRouter(t))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return s
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{Address: "no-port"}, testRouter(t)); !errors.Is(err, types.ErrInvalidListenAddress) {
		t.Errorf("expected ErrInvalidListenAddress, got %v", err)
	}
	if _, err := New(Config{Address: "127.0.0.1:0"}, nil); err == nil {
		t.Error("expected an error for a nil dispatcher")
	}

	s := newServer(t, Config{Address: "127.0.0.1:0"})
	if s.Token() == "" {
		t.Error("an empty token must be replaced by a generated one")
	}
	if s.State() != serverbase.StateCreated {
		t.Errorf("state = %s", s.State())
	}
}

func TestRun_Outcomes(t *testing.T) {
	t.Parallel()

	s := newServer(t, Config{Address: "127.0.0.1:0", Token: "t"})
	tests := []struct {
		name       string
		line       []string
		code       types.ExitCode
		wantStdout string
		wantStderr string
	}{
		{name: "command", line: []string{"greet", "bob"}, code: 0, wantStdout: "hello bob\n"},
		{name: "status", line: []string{"status", "x"}, code: 4},
		{name: "empty line shows usage", line: nil, code: 0, wantStdout: "Available commands:"},
		{name: "help command", line: []string{"help", "greet"}, code: 0, wantStdout: "Usage: corekit greet <name>"},
		{name: "unknown", line: []string{"nope"}, code: 1, wantStderr: `Error: unrecognized command "nope"`},
		{name: "missing argument", line: []string{"greet"}, code: 1, wantStderr: "Usage: corekit greet <name>"},
		{name: "handler error", line: []string{"status", "boom"}, code: 1, wantStderr: "Error: boom"},
	}

	for _, tt := range tests {
		var stdout, stderr bytes.Buffer
		code := s.run(context.Background(), tt.line, strings.NewReader(""), &stdout, &stderr)
		if code != tt.code {
			t.Errorf("%s: code = %d, want %d", tt.name, code, tt.code)
		}
		if !strings.Contains(stdout.String(), tt.wantStdout) {
			t.Errorf("%s: stdout = %q, want %q", tt.name, stdout.String(), tt.wantStdout)
		}
		if !strings.Contains(stderr.String(), tt.wantStderr) {
			t.Errorf("%s: stderr = %q, want %q", tt.name, stderr.String(), tt.wantStderr)
		}
	}
}

func dial(t *testing.T, addr, password string) (*gossh.Client, error) {
	t.Helper()
	return gossh.Dial("tcp", addr, &gossh.ClientConfig{
		User:            "corekit",
		Auth:            []gossh.AuthMethod{gossh.Password(password)},
		HostKeyCallback: gossh.InsecureIgnoreHostKey(), //nolint:gosec // test server with an ephemeral key
		Timeout:         5 * time.Second,
	})
}

func TestServer_SSHRoundTrip(t *testing.T) {
	t.Parallel()

	s := newServer(t, Config{Address: "127.0.0.1:0", Token: "secret"})
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	t.Cleanup(func() { _ = s.Stop() })
	if !s.IsRunning() || s.Address() == "" {
		t.Fatalf("server not running: %s %q", s.State(), s.Address())
	}

	if _, err := dial(t, s.Address(), "wrong"); err == nil {
		t.Error("a wrong token must be rejected")
	}

	client, err := dial(t, s.Address(), "secret")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	sess, err := client.NewSession()
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	out, err := sess.Output("greet alice")
	if err != nil {
		t.Fatalf("Output: %v", err)
	}
	if string(out) != "hello alice\n" {
		t.Errorf("output = %q", out)
	}

	sess, err = client.NewSession()
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	err = sess.Run("status 1")
	var exitErr *gossh.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitStatus() != 4 {
		t.Errorf("expected exit status 4, got %v", err)
	}
}

func TestServer_StopLifecycle(t *testing.T) {
	t.Parallel()

	s := newServer(t, Config{Address: "127.0.0.1:0"})
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := s.Start(context.Background()); !errors.Is(err, serverbase.ErrInvalidTransition) {
		t.Errorf("second Start should fail, got %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	if s.State() != serverbase.StateStopped {
		t.Errorf("state = %s", s.State())
	}
	if err := s.Stop(); err != nil {
		t.Errorf("second Stop should be a no-op, got %v", err)
	}
	if err := s.Wait(); err != nil {
		t.Errorf("Wait() = %v", err)
	}
}

func TestServer_ListenFailure(t *testing.T) {
	t.Parallel()

	first := newServer(t, Config{Address: "127.0.0.1:0"})
	if err := first.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = first.Stop() })

	second := newServer(t, Config{Address: types.ListenAddress(first.Address())})
	if err := second.Start(context.Background()); err == nil {
		t.Fatal("expected the port to be taken")
	}
	if second.State() != serverbase.StateFailed || second.Wait() == nil {
		t.Errorf("state = %s, Wait() = %v", second.State(), second.Wait())
	}
}
