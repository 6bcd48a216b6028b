// SPDX-License-Identifier: MPL-2.0

// Package router implements the command router: commands declared with the
// argspec grammar are registered once, then dispatched by name with raw
// positional arguments. Handlers receive the parsed arguments, the bound
// external interface and a Control for listing, running and prompting.
//
// The reserved "help" command always exists. Running it fails with
// ErrInvalidInvocation so the process boundary can render Usage instead.
package router
