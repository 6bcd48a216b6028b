// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
)

// maxFileSize bounds config files read from disk.
const maxFileSize = 1 << 20

// formatCUEError flattens CUE errors into "<file>: <path>: <message>" lines,
// rendering list indices in JSON-path form (console.tokens[0]).
func formatCUEError(err error, file string) error {
	if err == nil {
		return nil
	}
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return fmt.Errorf("%s: %w", file, err)
	}

	lines := make([]string, 0, len(errs))
	for _, e := range errs {
		path := jsonPath(cueerrors.Path(e))
		msg := e.Error()
		if path != "" {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, path), ":"))
			msg = path + ": " + msg
		}
		lines = append(lines, msg)
	}
	if len(lines) == 1 {
		return fmt.Errorf("%s: %s", file, lines[0])
	}
	return fmt.Errorf("%s: validation failed:\n  %s", file, strings.Join(lines, "\n  "))
}

func jsonPath(parts []string) string {
	var b strings.Builder
	for i, p := range parts {
		if i > 0 && isIndex(p) {
			b.WriteString("[" + p + "]")
			continue
		}
		if i > 0 {
			b.WriteString(".")
		}
		b.WriteString(p)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
