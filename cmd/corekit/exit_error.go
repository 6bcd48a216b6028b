// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/corekit/corekit/pkg/types"
)

// ExitError records a non-zero exit status whose output was already rendered.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

// Error returns the underlying message, or the exit status when there is none.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}
