// SPDX-License-Identifier: MPL-2.0

package router

import (
	"strings"

	"github.com/corekit/corekit/pkg/argspec"

	"github.com/mattn/go-runewidth"
)

const (
	tablePadding = 4
	tableIndent  = "    "
)

// table aligns rows of cells into columns. Every column but the last is
// padded to its widest cell plus the padding.
type table struct {
	padding int
	widths  []int
	rows    [][]string
}

func (t *table) addRow(cells ...string) {
	for i, c := range cells {
		w := runewidth.StringWidth(c)
		if i == len(t.widths) {
			t.widths = append(t.widths, w)
		} else if w > t.widths[i] {
			t.widths[i] = w
		}
	}
	t.rows = append(t.rows, cells)
}

func (t *table) lines() []string {
	out := make([]string, 0, len(t.rows))
	for _, row := range t.rows {
		var b strings.Builder
		for i, c := range row {
			if i < len(t.widths)-1 {
				b.WriteString(runewidth.FillRight(c, t.widths[i]+t.padding))
				continue
			}
			b.WriteString(c)
		}
		out = append(out, strings.TrimRight(b.String(), " "))
	}
	return out
}

// Usage renders usage text. An empty or unknown name yields the general usage
// listing every non-reserved command with its description; a known name
// yields its argument tokens followed by its help text.
func (r *Router) Usage(name string) string {
	e, ok := r.commands[name]
	if !ok {
		return r.generalUsage()
	}

	line := "Usage: " + r.program + " " + e.cmd.Name
	if tokens := argspec.Usage(e.specs); tokens != "" {
		line += " " + tokens
	}
	if e.cmd.Help == "" {
		return line
	}
	return line + "\n\n" + e.cmd.Help
}

func (r *Router) generalUsage() string {
	lines := []string{
		"Usage: " + r.program + " <command> [...args]",
		"",
		"Available commands:",
	}
	t := &table{padding: tablePadding}
	for _, name := range r.order {
		t.addRow(name, r.commands[name].cmd.Description)
	}
	for _, row := range t.lines() {
		lines = append(lines, tableIndent+row)
	}
	return strings.Join(lines, "\n")
}
