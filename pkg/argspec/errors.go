// SPDX-License-Identifier: MPL-2.0

package argspec

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgumentSpec is returned when a sigil or shape cannot describe an argument.
	ErrInvalidArgumentSpec = errors.New("invalid argument specification")
	// ErrInvalidArgumentOrder is returned when a required argument follows an optional one.
	ErrInvalidArgumentOrder = errors.New("invalid argument order")
	// ErrInvalidRestPosition is returned when a rest argument is not the last one.
	ErrInvalidRestPosition = errors.New("rest argument must be last")
	// ErrDuplicateArgument is returned when two arguments of a command share a name.
	ErrDuplicateArgument = errors.New("duplicate argument")
)

type (
	// InvalidSpecError describes why Raw is not a valid argument specification.
	// It wraps ErrInvalidArgumentSpec for errors.Is() compatibility.
	InvalidSpecError struct {
		Raw    string
		Reason string
	}

	// OrderError is returned when the required argument Name at Index follows
	// the optional argument After.
	OrderError struct {
		Name  string
		Index int
		After string
	}

	// RestPositionError is returned when the rest argument Name sits at Index
	// but is not the last argument.
	RestPositionError struct {
		Name  string
		Index int
	}

	// DuplicateArgumentError is returned when Name appears twice.
	DuplicateArgumentError struct {
		Name string
	}
)

func (e *InvalidSpecError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Raw, e.Reason)
}

// Unwrap returns ErrInvalidArgumentSpec for errors.Is() compatibility.
func (e *InvalidSpecError) Unwrap() error { return ErrInvalidArgumentSpec }

func (e *OrderError) Error() string {
	return fmt.Sprintf("required argument %q (position %d) cannot follow optional argument %q", e.Name, e.Index+1, e.After)
}

// Unwrap returns ErrInvalidArgumentOrder for errors.Is() compatibility.
func (e *OrderError) Unwrap() error { return ErrInvalidArgumentOrder }

func (e *RestPositionError) Error() string {
	return fmt.Sprintf("rest argument %q (position %d) must be the last argument", e.Name, e.Index+1)
}

// Unwrap returns ErrInvalidRestPosition for errors.Is() compatibility.
func (e *RestPositionError) Unwrap() error { return ErrInvalidRestPosition }

func (e *DuplicateArgumentError) Error() string {
	return fmt.Sprintf("argument %q is declared more than once", e.Name)
}

// Unwrap returns ErrDuplicateArgument for errors.Is() compatibility.
func (e *DuplicateArgumentError) Unwrap() error { return ErrDuplicateArgument }
