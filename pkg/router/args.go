// SPDX-License-Identifier: MPL-2.0

package router

import (
	"slices"

	"github.com/corekit/corekit/pkg/argspec"
)

// Args holds the parsed arguments of one invocation, keyed by argument name.
// Unsupplied optional arguments without a default are absent.
type Args struct {
	values map[string]string
	lists  map[string][]string
}

// bindArgs maps raw values positionally onto specs. Extra raw values are
// ignored. A rest argument takes every remaining value, else its default
// list, else an empty list.
func bindArgs(command string, specs []argspec.Spec, raw []string) (Args, error) {
	a := Args{values: make(map[string]string), lists: make(map[string][]string)}
	for i, spec := range specs {
		if spec.Rest {
			switch {
			case i < len(raw):
				a.lists[spec.Name] = slices.Clone(raw[i:])
			case spec.Default != nil:
				a.lists[spec.Name] = slices.Clone(spec.Default)
			default:
				a.lists[spec.Name] = []string{}
			}
			continue
		}
		if i < len(raw) {
			a.values[spec.Name] = raw[i]
			continue
		}
		if v, ok := spec.DefaultValue(); ok {
			a.values[spec.Name] = v
			continue
		}
		if !spec.Optional {
			return Args{}, &InvalidArgumentError{Command: command, Argument: spec.Name}
		}
	}
	return a, nil
}

// Get returns a single-valued argument and whether it was supplied or defaulted.
func (a Args) Get(name string) (string, bool) {
	v, ok := a.values[name]
	return v, ok
}

// String returns a single-valued argument or "" when absent.
func (a Args) String(name string) string {
	return a.values[name]
}

// List returns the values of a rest argument.
func (a Args) List(name string) []string {
	return slices.Clone(a.lists[name])
}

// Has reports whether name holds a value.
func (a Args) Has(name string) bool {
	if _, ok := a.values[name]; ok {
		return true
	}
	_, ok := a.lists[name]
	return ok
}

// Map returns the arguments as plain values: string for single arguments and
// []string for rest arguments.
func (a Args) Map() map[string]any {
	out := make(map[string]any, len(a.values)+len(a.lists))
	for k, v := range a.values {
		out[k] = v
	}
	for k, v := range a.lists {
		out[k] = slices.Clone(v)
	}
	return out
}
