// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"net"
	"strconv"
)

// ErrInvalidListenAddress is the sentinel error wrapped by InvalidListenAddressError.
var ErrInvalidListenAddress = errors.New("invalid listen address")

type (
	// ListenAddress is a "host:port" pair a server binds to. The host may be
	// empty (all interfaces) and port 0 means "pick a free port".
	ListenAddress string

	// InvalidListenAddressError is returned when a ListenAddress cannot be split
	// or carries a port outside 0-65535.
	InvalidListenAddressError struct {
		Value  ListenAddress
		Reason string
	}
)

// String returns the string representation of the ListenAddress.
func (a ListenAddress) String() string { return string(a) }

// Port returns the numeric port of the address.
func (a ListenAddress) Port() (int, error) {
	_, port, err := a.split()
	return port, err
}

// Validate returns an error if the address is not a valid "host:port" pair.
func (a ListenAddress) Validate() error {
	_, _, err := a.split()
	return err
}

func (a ListenAddress) split() (string, int, error) {
	host, rawPort, err := net.SplitHostPort(string(a))
	if err != nil {
		return "", 0, &InvalidListenAddressError{Value: a, Reason: err.Error()}
	}
	port, err := strconv.Atoi(rawPort)
	if err != nil || port < 0 || port > 65535 {
		return "", 0, &InvalidListenAddressError{Value: a, Reason: "port must be 0 (auto-select) or 1-65535"}
	}
	return host, port, nil
}

// Error implements the error interface for InvalidListenAddressError.
func (e *InvalidListenAddressError) Error() string {
	return fmt.Sprintf("invalid listen address %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidListenAddress for errors.Is() compatibility.
func (e *InvalidListenAddressError) Unwrap() error { return ErrInvalidListenAddress }
