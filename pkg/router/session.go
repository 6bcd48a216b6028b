// SPDX-License-Identifier: MPL-2.0

package router

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/corekit/corekit/pkg/argspec"
	"github.com/corekit/corekit/pkg/types"
)

// ErrNoInput is returned by a prompt when the input ends before a required value arrives.
var ErrNoInput = errors.New("input closed before a value was entered")

// session is the Control handed to handlers. Nested runs share it, so
// buffered prompt input is never lost between commands.
type session struct {
	router *Router
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	reader *bufio.Reader
}

func (s *session) List() []string {
	return s.router.List()
}

func (s *session) Run(ctx context.Context, name string, args ...string) (types.ExitCode, error) {
	return s.router.dispatch(ctx, s, name, args)
}

// Prompt asks for one value. An empty answer falls back to the default, or to
// "" for optional arguments; required arguments are asked again.
func (s *session) Prompt(ctx context.Context, sigil string) (string, error) {
	spec, err := argspec.Parse(sigil)
	if err != nil {
		return "", err
	}
	if spec.Rest {
		return "", &argspec.InvalidSpecError{Raw: sigil, Reason: "rest arguments are prompted with PromptAll"}
	}

	for {
		s.label(spec)
		line, eof, err := s.readLine(ctx)
		if err != nil {
			return "", err
		}
		if line != "" {
			return line, nil
		}
		if v, ok := spec.DefaultValue(); ok {
			return v, nil
		}
		if spec.Optional {
			return "", nil
		}
		if eof {
			return "", fmt.Errorf("prompt %q: %w", spec.Name, ErrNoInput)
		}
	}
}

// PromptAll collects one value per line until an empty line. Nothing entered
// yields the default list, or an empty list for optional arguments; required
// arguments are asked again.
func (s *session) PromptAll(ctx context.Context, sigil string) ([]string, error) {
	spec, err := argspec.Parse(sigil)
	if err != nil {
		return nil, err
	}

	for {
		s.label(spec)
		var values []string
		ended := false
		for {
			line, eof, err := s.readLine(ctx)
			if err != nil {
				return nil, err
			}
			if line != "" {
				values = append(values, line)
			}
			if line == "" || eof {
				ended = eof
				break
			}
		}
		if len(values) > 0 {
			return values, nil
		}
		if spec.Default != nil {
			return append([]string(nil), spec.Default...), nil
		}
		if spec.Optional {
			return []string{}, nil
		}
		if ended {
			return nil, fmt.Errorf("prompt %q: %w", spec.Name, ErrNoInput)
		}
	}
}

func (s *session) label(spec argspec.Spec) {
	text := spec.Name
	if v, ok := spec.DefaultValue(); ok && !spec.Rest {
		text += " [" + v + "]"
	}
	if spec.Rest {
		text += " (one per line, empty line to finish)"
	}
	fmt.Fprintf(s.stdout, "%s: ", text)
}

// readLine returns the next line without its terminator and whether the input
// is exhausted.
func (s *session) readLine(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, fmt.Errorf("prompt cancelled: %w", err)
	}
	if s.reader == nil {
		s.reader = bufio.NewReader(s.stdin)
	}
	line, err := s.reader.ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if errors.Is(err, io.EOF) {
		return line, true, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading input: %w", err)
	}
	return line, false, nil
}
