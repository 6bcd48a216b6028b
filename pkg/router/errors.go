// SPDX-License-Identifier: MPL-2.0

package router

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCommand is returned when a command lacks a name, a handler or a description.
	ErrInvalidCommand = errors.New("invalid command")
	// ErrDuplicateCommand is returned when a command name is registered twice.
	ErrDuplicateCommand = errors.New("duplicate command")
	// ErrMissingCommand is returned when no command name was supplied.
	ErrMissingCommand = errors.New("missing command")
	// ErrUnknownCommand is returned when the command name is not registered.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrInvalidArgument is returned when a required argument was not supplied.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidInvocation is returned when the reserved help command is run.
	ErrInvalidInvocation = errors.New("invalid invocation")
)

type (
	// InvalidCommandError explains why a command definition was rejected.
	// Err carries the underlying validation failure, if any.
	InvalidCommandError struct {
		Name   string
		Reason string
		Err    error
	}

	// DuplicateCommandError is returned when Name is already registered.
	DuplicateCommandError struct {
		Name string
	}

	// UnknownCommandError is returned when Name does not match any command.
	UnknownCommandError struct {
		Name string
	}

	// InvalidArgumentError names the first required argument left unsatisfied.
	InvalidArgumentError struct {
		Command  string
		Argument string
	}

	// InvalidInvocationError is returned by the reserved help command. Target is
	// the command the caller asked help for, possibly empty.
	InvalidInvocationError struct {
		Target string
	}
)

func (e *InvalidCommandError) Error() string {
	if e.Name == "" {
		return "invalid command: " + e.Reason
	}
	return fmt.Sprintf("invalid command %q: %s", e.Name, e.Reason)
}

// Unwrap exposes ErrInvalidCommand and the underlying failure.
func (e *InvalidCommandError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidCommand}
	}
	return []error{ErrInvalidCommand, e.Err}
}

func (e *DuplicateCommandError) Error() string {
	return fmt.Sprintf("command %q is already registered", e.Name)
}

// Unwrap returns ErrDuplicateCommand for errors.Is() compatibility.
func (e *DuplicateCommandError) Unwrap() error { return ErrDuplicateCommand }

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unrecognized command %q", e.Name)
}

// Unwrap returns ErrUnknownCommand for errors.Is() compatibility.
func (e *UnknownCommandError) Unwrap() error { return ErrUnknownCommand }

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("missing argument %q", e.Argument)
}

// Unwrap returns ErrInvalidArgument for errors.Is() compatibility.
func (e *InvalidArgumentError) Unwrap() error { return ErrInvalidArgument }

func (e *InvalidInvocationError) Error() string {
	return fmt.Sprintf("the %q command cannot be run directly", HelpCommand)
}

// Unwrap returns ErrInvalidInvocation for errors.Is() compatibility.
func (e *InvalidInvocationError) Unwrap() error { return ErrInvalidInvocation }
