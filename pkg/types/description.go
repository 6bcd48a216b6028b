// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDescription is the sentinel error wrapped by InvalidDescriptionError.
var ErrInvalidDescription = errors.New("invalid description")

type (
	// Description is the one-line summary of a command shown in usage tables.
	// Unlike help text it is mandatory: empty and whitespace-only values are invalid.
	Description string

	// InvalidDescriptionError is returned when a Description is blank or spans lines.
	InvalidDescriptionError struct {
		Value  Description
		Reason string
	}
)

// String returns the string representation of the Description.
func (d Description) String() string { return string(d) }

// Validate returns an error if the description is blank or contains a line break.
func (d Description) Validate() error {
	switch {
	case strings.TrimSpace(string(d)) == "":
		return &InvalidDescriptionError{Value: d, Reason: "must not be blank"}
	case strings.ContainsAny(string(d), "\r\n"):
		return &InvalidDescriptionError{Value: d, Reason: "must fit on one line"}
	}
	return nil
}

// Error implements the error interface for InvalidDescriptionError.
func (e *InvalidDescriptionError) Error() string {
	return fmt.Sprintf("invalid description %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidDescription for errors.Is() compatibility.
func (e *InvalidDescriptionError) Unwrap() error { return ErrInvalidDescription }
