// SPDX-License-Identifier: MPL-2.0

// Package argspec implements the positional argument grammar shared by
// commands and prompts. Arguments are declared either as sigils ("name",
// "[name]", "name=value", "...name") or as Spec values, and are canonicalized
// once at registration time.
package argspec
