// SPDX-License-Identifier: MPL-2.0

// Package cmd is the corekit command line. It loads configuration, composes
// the component runtime, dispatches the requested router command, and maps
// the result onto a process exit code.
package cmd
