// SPDX-License-Identifier: MPL-2.0

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNew_Level(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts Options
		want log.Level
	}{
		{name: "default", opts: Options{}, want: log.WarnLevel},
		{name: "explicit", opts: Options{Level: "info"}, want: log.InfoLevel},
		{name: "unknown", opts: Options{Level: "loud"}, want: log.WarnLevel},
		{name: "verbose wins", opts: Options{Level: "error", Verbose: true}, want: log.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := New(&bytes.Buffer{}, tt.opts).GetLevel(); got != tt.want {
				t.Errorf("level = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNew_FiltersBelowLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(&buf, Options{Level: "warn"})
	l.Info("hidden")
	l.Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestFor_Prefix(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	root := New(&buf, Options{Level: "debug", Prefix: "corekit"})
	child := For(root, "container")
	if got := child.GetPrefix(); got != "corekit/container" {
		t.Errorf("prefix = %q", got)
	}
	if root.GetPrefix() != "corekit" {
		t.Error("For must not change the parent prefix")
	}

	child.Debug("resolved")
	if !strings.Contains(buf.String(), "corekit/container") {
		t.Errorf("child should write through the parent, got %q", buf.String())
	}

	if got := For(New(&buf, Options{}), "router").GetPrefix(); got != "router" {
		t.Errorf("prefix without parent prefix = %q", got)
	}
}

func TestFor_NilParent(t *testing.T) {
	t.Parallel()

	if For(nil, "x") == nil {
		t.Error("For(nil) must return a usable logger")
	}
}
