// SPDX-License-Identifier: MPL-2.0

// Package serverbase is the lifecycle state machine shared by long-running
// servers such as the remote console. A Base moves through
// created, starting, running, stopping and stopped, or fails; it is single-use.
package serverbase
