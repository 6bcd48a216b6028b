// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/corekit/corekit/internal/cache"
	"github.com/corekit/corekit/pkg/types"
)

func run(t *testing.T, r *Runner, script string, args ...string) (types.ExitCode, string, error) {
	t.Helper()
	var out bytes.Buffer
	code, err := r.Run(context.Background(), script, args, IO{Stdout: &out, Stderr: &out})
	return code, out.String(), err
}

func TestRun_Output(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		script string
		args   []string
		want   string
	}{
		{name: "echo", script: "echo hello", want: "hello\n"},
		{name: "positional", script: `echo "$1-$2"`, args: []string{"a", "b"}, want: "a-b\n"},
		{name: "all params", script: `echo "$#:$@"`, args: []string{"x", "y", "z"}, want: "3:x y z\n"},
		{name: "dash args", script: `echo "$1"`, args: []string{"-v"}, want: "-v\n"},
		{name: "env", script: `echo "$COREKIT_TEST"`, want: "on\n"},
	}

	r := New(WithEnv("COREKIT_TEST=on"))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			code, out, err := run(t, r, tt.script, tt.args...)
			if err != nil || code != types.ExitOK {
				t.Fatalf("Run() = %d, %v", code, err)
			}
			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestRun_ExitStatus(t *testing.T) {
	t.Parallel()

	code, _, err := run(t, New(), "exit 3")
	if err != nil {
		t.Fatalf("non-zero status must not be an error: %v", err)
	}
	if code != 3 {
		t.Errorf("code = %d, want 3", code)
	}
}

func TestRun_Stdin(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	code, err := New().Run(context.Background(), "read line; echo got $line", nil,
		IO{Stdin: strings.NewReader("value\n"), Stdout: &out})
	if err != nil || code != 0 {
		t.Fatalf("Run() = %d, %v", code, err)
	}
	if out.String() != "got value\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestRun_Dir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, out, err := run(t, New(WithDir(dir)), "pwd")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != dir {
		t.Errorf("pwd = %q, want %q", out, dir)
	}
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	code, _, err := run(t, New(), "if then fi (")
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatal("expected *ParseError")
	}
	if code != types.ExitFailure {
		t.Errorf("code = %d", code)
	}
}

func TestRun_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := New().Run(ctx, "while true; do :; done", nil, IO{})
	if err == nil {
		t.Fatal("expected the loop to be interrupted")
	}
}

func TestParse_UsesProgramCache(t *testing.T) {
	t.Parallel()

	c := cache.New(time.Minute, time.Hour)
	r := New(WithProgramCache(c))
	first, err := r.Parse("echo cached")
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Parse("echo cached")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("second parse should return the cached program")
	}
	if c.Len() != 1 {
		t.Errorf("cache holds %d programs, want 1", c.Len())
	}

	if _, err := r.Parse("echo ("); err == nil || c.Len() != 1 {
		t.Error("invalid scripts must not be cached")
	}
}
