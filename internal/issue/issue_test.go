// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestCatalog_Complete(t *testing.T) {
	t.Parallel()

	ids := []Id{
		ConfigLoadFailedId,
		CommandNotFoundId,
		MissingArgumentId,
		DependencyCycleId,
		ComponentFailedId,
		RuntimeStateId,
		ConsoleStartFailedId,
		ScriptFailedId,
	}
	for _, id := range ids {
		i := Get(id)
		if i == nil {
			t.Fatalf("Get(%d) returned nil", id)
		}
		if i.Id() != id {
			t.Errorf("Get(%d).Id() = %d", id, i.Id())
		}
		if i.Title() == "" || i.MarkdownMsg() == "" {
			t.Errorf("issue %d has no title or message", id)
		}
	}
	if Get(Id(9999)) != nil {
		t.Error("unknown id should return nil")
	}
	if got := len(Values()); got != len(ids) {
		t.Errorf("Values() has %d entries, want %d", got, len(ids))
	}
}

func TestValues_Ordered(t *testing.T) {
	t.Parallel()

	vals := Values()
	for i := 1; i < len(vals); i++ {
		if vals[i-1].Id() >= vals[i].Id() {
			t.Fatalf("Values() not ordered at %d", i)
		}
	}
}

func TestIssue_LinksAreCopied(t *testing.T) {
	t.Parallel()

	i := Get(ConsoleStartFailedId)
	links := i.Links()
	if len(links) == 0 {
		t.Fatal("expected links")
	}
	links[0] = "modified"
	if i.Links()[0] == "modified" {
		t.Error("Links() must return a copy")
	}
}

func TestIssue_Markdown(t *testing.T) {
	t.Parallel()

	md := Get(ConfigLoadFailedId).Markdown()
	if !strings.HasPrefix(md, "# Failed to load configuration\n") {
		t.Errorf("missing title heading: %q", md)
	}
	if !strings.Contains(md, "## See also") {
		t.Error("expected a see also section")
	}
	if strings.Contains(Get(CommandNotFoundId).Markdown(), "See also") {
		t.Error("issue without links should not have a see also section")
	}
}

//nolint:paralleltest // replaces the package-level renderer
func TestIssue_Render(t *testing.T) {
	orig := render
	defer func() { render = orig }()

	var gotStyle string
	render = func(in, style string) (string, error) {
		gotStyle = style
		return in, nil
	}

	out, err := Get(DependencyCycleId).Render("notty")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if gotStyle != "notty" {
		t.Errorf("style = %q, want notty", gotStyle)
	}
	if !strings.Contains(out, "corekit categories") {
		t.Errorf("rendered output missing body: %q", out)
	}
}
