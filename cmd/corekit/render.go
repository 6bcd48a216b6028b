// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/corekit/corekit/internal/issue"
	"github.com/corekit/corekit/pkg/router"
)

// formatErrorForDisplay uses the actionable form when the chain carries one.
// In verbose mode it also shows the cause chain.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

// report writes an outcome: the error message to stderr, then usage to
// stdout on success or stderr on failure. Verbose runs append the issue
// guide attached to an actionable error.
func (a *App) report(out router.Outcome, verbose bool, markdownStyle string) {
	if out.Message != "" {
		msg := out.Message
		if out.Err != nil {
			msg = formatErrorForDisplay(out.Err, verbose)
		}
		fmt.Fprintln(a.stderr, ErrorStyle.Render("Error: ")+msg)
		if verbose {
			a.renderIssue(out.Err, markdownStyle)
		}
	}
	if out.Usage == "" {
		return
	}
	w := a.stdout
	if !out.Code.IsSuccess() {
		w = a.stderr
		if out.Message != "" {
			fmt.Fprintln(w)
		}
	}
	writeBlock(w, out.Usage)
}

// renderError reports a failure that happened outside command dispatch.
func (a *App) renderError(err error, verbose bool, markdownStyle string) {
	fmt.Fprintln(a.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
	if verbose {
		a.renderIssue(err, markdownStyle)
	}
}

func (a *App) renderIssue(err error, markdownStyle string) {
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.Issue == 0 {
		return
	}
	is := issue.Get(ae.Issue)
	if is == nil {
		return
	}
	md, rerr := is.Render(markdownStyle)
	if rerr != nil {
		md = is.Markdown()
	}
	writeBlock(a.stderr, md)
}

func writeBlock(w io.Writer, s string) {
	fmt.Fprint(w, s)
	if !strings.HasSuffix(s, "\n") {
		fmt.Fprintln(w)
	}
}
