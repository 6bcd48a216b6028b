// SPDX-License-Identifier: MPL-2.0

package container

import (
	"errors"
	"fmt"
)

const (
	// StateIdle means no run is active; the component cache is empty or only
	// holds entries built through InitAll/Resolve.
	StateIdle State = iota
	// StateRunning means Start succeeded and Stop has not been called yet.
	StateRunning
)

// ErrInvalidState is returned when a State value is not one of the defined states.
var ErrInvalidState = errors.New("invalid state")

type (
	// State is the lifecycle state of a Runtime.
	State uint8

	// InvalidStateError is returned when a State value is not recognized.
	// It wraps ErrInvalidState for errors.Is() compatibility.
	InvalidStateError struct {
		Value State
	}
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// Validate returns nil if the State is defined.
func (s State) Validate() error {
	switch s {
	case StateIdle, StateRunning:
		return nil
	default:
		return &InvalidStateError{Value: s}
	}
}

// Error implements the error interface for InvalidStateError.
func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state %d (valid: 0=idle, 1=running)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidStateError) Unwrap() error {
	return ErrInvalidState
}
