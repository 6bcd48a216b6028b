// SPDX-License-Identifier: MPL-2.0

// Package container implements the composition container: named categories of
// components with inter-category dependencies, lazy memoized resolution in a
// deterministic topological order, per-category and global middleware, and a
// start/stop lifecycle with ordered hooks.
//
// A category that lists itself as a dependency sees the siblings resolved
// before the component being built, in registration order.
package container
