// SPDX-License-Identifier: MPL-2.0

package serverbase

import (
	"errors"
	"fmt"
)

const (
	StateCreated State = iota
	StateStarting
	StateRunning
	StateStopping
	// StateStopped is terminal.
	StateStopped
	// StateFailed is terminal; LastError explains why.
	StateFailed
)

var (
	// ErrInvalidState is returned when a State value is out of range.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidTransition is returned when a lifecycle step is attempted
	// from the wrong state.
	ErrInvalidTransition = errors.New("invalid state transition")
)

type (
	// State is a server lifecycle state.
	State int32

	// InvalidStateError carries the rejected value.
	InvalidStateError struct {
		Value State
	}

	// TransitionError names the step that was refused and the state it was
	// attempted from.
	TransitionError struct {
		Step string
		From State
	}
)

var stateNames = [...]string{"created", "starting", "running", "stopping", "stopped", "failed"}

func (s State) String() string {
	if s.Validate() != nil {
		return "unknown"
	}
	return stateNames[s]
}

// Validate reports whether s is a defined state.
func (s State) Validate() error {
	if s < StateCreated || s > StateFailed {
		return &InvalidStateError{Value: s}
	}
	return nil
}

// IsTerminal reports whether no further transition is possible.
func (s State) IsTerminal() bool {
	return s == StateStopped || s == StateFailed
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state %d", e.Value)
}

// Unwrap returns ErrInvalidState for errors.Is() compatibility.
func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s server in state %s", e.Step, e.From)
}

// Unwrap returns ErrInvalidTransition for errors.Is() compatibility.
func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }
