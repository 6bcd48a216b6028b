// SPDX-License-Identifier: MPL-2.0

// Package logging builds the charmbracelet/log loggers shared by corekit.
package logging

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// Options configures the root logger.
type Options struct {
	// Level is parsed with log.ParseLevel; empty or unknown means warn.
	Level string
	// Verbose forces debug level and timestamps.
	Verbose bool
	// Prefix tags every line, typically the program name.
	Prefix string
}

// New returns a root logger writing to w.
func New(w io.Writer, opts Options) *log.Logger {
	level, err := log.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = log.WarnLevel
	}
	if opts.Verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          opts.Prefix,
		ReportTimestamp: opts.Verbose,
		TimeFormat:      time.TimeOnly,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// For returns a child of parent whose prefix names the category, joined to
// the parent's prefix with a slash. A nil parent yields a discard logger.
func For(parent *log.Logger, category string) *log.Logger {
	if parent == nil {
		return Discard()
	}
	child := parent.With()
	if p := parent.GetPrefix(); p != "" {
		child.SetPrefix(p + "/" + category)
	} else {
		child.SetPrefix(category)
	}
	return child
}
