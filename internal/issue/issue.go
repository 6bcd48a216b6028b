// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

// Id identifies a catalog entry.
type Id int

const (
	ConfigLoadFailedId Id = iota + 1
	CommandNotFoundId
	MissingArgumentId
	DependencyCycleId
	ComponentFailedId
	RuntimeStateId
	ConsoleStartFailedId
	ScriptFailedId
)

type (
	MarkdownMsg string

	HttpLink string

	// Issue is a catalogued problem with a Markdown explanation.
	Issue struct {
		id    Id
		title string
		mdMsg MarkdownMsg
		links []HttpLink
	}
)

func (i *Issue) Id() Id { return i.id }

func (i *Issue) Title() string { return i.title }

func (i *Issue) MarkdownMsg() MarkdownMsg { return i.mdMsg }

// Links returns a copy of the reference links.
func (i *Issue) Links() []HttpLink { return slices.Clone(i.links) }

// Markdown assembles the full document, appending a "See also" list when
// the issue has links.
func (i *Issue) Markdown() string {
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(i.title)
	b.WriteString("\n")
	b.WriteString(string(i.mdMsg))
	if len(i.links) > 0 {
		b.WriteString("\n\n## See also\n")
		for _, l := range i.links {
			b.WriteString("- <" + string(l) + ">\n")
		}
	}
	return b.String()
}

// Render renders the issue for a terminal using the glamour style at stylePath
// (a built-in name such as "dark" or a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	return render(i.Markdown(), stylePath)
}

var (
	render = glamour.Render

	issues = map[Id]*Issue{
		ConfigLoadFailedId: {
			id:    ConfigLoadFailedId,
			title: "Failed to load configuration",
			mdMsg: `
The configuration file could not be read or does not match the schema.

## Things you can try
- Check the file passed with ` + "`--config`" + `, or the default locations:
  1. ` + "`$XDG_CONFIG_HOME/corekit/config.cue`" + `
  2. ` + "`./config.cue`" + `
- Print the effective configuration:
~~~
$ corekit config
~~~
- Environment variables prefixed with ` + "`COREKIT_`" + ` override file values.`,
			links: []HttpLink{"https://cuelang.org/docs/tour/"},
		},
		CommandNotFoundId: {
			id:    CommandNotFoundId,
			title: "Command not found",
			mdMsg: `
No registered command matches the name you typed.

## Things you can try
- List every command:
~~~
$ corekit help
~~~
- Command names are case sensitive.`,
		},
		MissingArgumentId: {
			id:    MissingArgumentId,
			title: "Missing argument",
			mdMsg: `
A required argument was not supplied.

## Things you can try
- Show the usage of the command:
~~~
$ corekit help <command>
~~~
- Arguments in ` + "`<angle brackets>`" + ` are required; those in ` + "`[square brackets]`" + ` are optional.`,
		},
		DependencyCycleId: {
			id:    DependencyCycleId,
			title: "Dependency cycle",
			mdMsg: `
A category declaration would make the category graph cyclic, so it was rejected.

## Things you can try
- Inspect the declared categories and their dependencies:
~~~
$ corekit categories
~~~
- Move the shared components into a new category both sides depend on.`,
		},
		ComponentFailedId: {
			id:    ComponentFailedId,
			title: "Component failed to initialize",
			mdMsg: `
A component factory returned an error while the runtime was resolving its category.
Components resolved before the failure stay cached; the failed one is retried on the next resolution.

## Things you can try
- Re-run with ` + "`--verbose`" + ` to see the full cause chain.
- List the components of the category:
~~~
$ corekit components <category>
~~~`,
		},
		RuntimeStateId: {
			id:    RuntimeStateId,
			title: "Runtime in the wrong state",
			mdMsg: `
The runtime was started twice, or stopped while idle.

## Things you can try
- Pair every start with exactly one stop.`,
		},
		ConsoleStartFailedId: {
			id:    ConsoleStartFailedId,
			title: "Console failed to start",
			mdMsg: `
The SSH console could not listen on the configured address.

## Things you can try
- Pick another address:
~~~
$ corekit serve 127.0.0.1:2223
~~~
- Check that ` + "`console.host_key_path`" + ` is writable.`,
			links: []HttpLink{"https://github.com/charmbracelet/wish"},
		},
		ScriptFailedId: {
			id:    ScriptFailedId,
			title: "Script failed",
			mdMsg: `
The embedded shell could not parse or run the script.

## Things you can try
- Scripts use POSIX shell syntax with bash extensions.
- Positional arguments are available as ` + "`$1`" + `, ` + "`$2`" + ` and ` + "`$@`" + `.`,
			links: []HttpLink{"https://pkg.go.dev/mvdan.cc/sh/v3/interp"},
		},
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

// Get returns the catalog entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
