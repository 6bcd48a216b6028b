// SPDX-License-Identifier: MPL-2.0

// Package types defines small value types shared by the router, the console
// and the CLI layer. It imports only the standard library.
package types

import (
	"errors"
	"fmt"
	"strconv"
)

const (
	// ExitOK is the status of a handler that completed normally.
	ExitOK ExitCode = 0
	// ExitFailure is the status used for invocation errors and unexpected failures.
	ExitFailure ExitCode = 1
)

// ErrInvalidExitCode is the sentinel error wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

type (
	// ExitCode is the status a command handler reports. It becomes the process
	// exit status at the CLI boundary and the session exit status on the console.
	// The zero value means success.
	ExitCode int

	// InvalidExitCodeError is returned when an ExitCode is outside 0-255.
	InvalidExitCodeError struct {
		Value ExitCode
	}
)

// Error implements the error interface.
func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("invalid exit code %d (must be in range 0-255)", e.Value)
}

// Unwrap returns ErrInvalidExitCode so callers can use errors.Is for programmatic detection.
func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// Validate returns an error if the ExitCode is outside the valid range (0-255).
func (c ExitCode) Validate() error {
	if c < 0 || c > 255 {
		return &InvalidExitCodeError{Value: c}
	}
	return nil
}

// IsSuccess returns true if the exit code indicates successful execution.
func (c ExitCode) IsSuccess() bool { return c == ExitOK }

// Process maps the code onto a value an operating system accepts: values
// outside 0-255 collapse to ExitFailure.
func (c ExitCode) Process() int {
	if c.Validate() != nil {
		return int(ExitFailure)
	}
	return int(c)
}

// String returns the decimal string representation of the ExitCode.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }
