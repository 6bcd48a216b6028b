// SPDX-License-Identifier: MPL-2.0

package main

import "github.com/corekit/corekit/cmd/corekit"

func main() {
	cmd.Execute()
}
