// SPDX-License-Identifier: MPL-2.0

// Package issue turns failures into user-facing guidance.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints. The catalog holds longer Markdown write-ups keyed by Id,
// rendered for the terminal with glamour.
package issue
