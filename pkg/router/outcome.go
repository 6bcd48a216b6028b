// SPDX-License-Identifier: MPL-2.0

package router

import (
	"errors"

	"github.com/corekit/corekit/pkg/types"
)

// Outcome is what a process or session boundary should report for a
// dispatch. Usage belongs on stdout when Code is zero and on stderr otherwise.
type Outcome struct {
	Code types.ExitCode
	// Message is the error text, empty when there is nothing to report.
	Message string
	// Usage is rendered usage text, empty when none applies.
	Usage string
	// Err is the unclassified handler error, nil for router-level failures.
	Err error
}

// Outcome classifies the result of dispatching name:
//   - help [cmd] yields the usage of cmd (or the general usage) with code 0
//   - a missing command name yields the general usage with code 1
//   - an unknown command or missing argument yields the message and usage with code 1
//   - any other error is a handler failure with code 1
//
// Without an error the handler's code passes through.
func (r *Router) Outcome(name string, code types.ExitCode, err error) Outcome {
	if err == nil {
		return Outcome{Code: code}
	}

	var inv *InvalidInvocationError
	var unknown *UnknownCommandError
	var missing *InvalidArgumentError
	switch {
	case errors.As(err, &inv):
		return Outcome{Code: types.ExitOK, Usage: r.Usage(inv.Target)}
	case errors.Is(err, ErrMissingCommand):
		return Outcome{Code: types.ExitFailure, Usage: r.Usage("")}
	case errors.As(err, &unknown):
		return Outcome{Code: types.ExitFailure, Message: err.Error(), Usage: r.Usage("")}
	case errors.As(err, &missing):
		return Outcome{Code: types.ExitFailure, Message: err.Error(), Usage: r.Usage(missing.Command)}
	default:
		return Outcome{Code: types.ExitFailure, Message: err.Error(), Err: err}
	}
}
