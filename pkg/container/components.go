// SPDX-License-Identifier: MPL-2.0

package container

import (
	"fmt"
	"maps"
	"slices"
)

// Components is a resolved component map: category name to component name to value.
type Components map[string]map[string]any

// Category returns the components of one category, or nil when absent.
func (c Components) Category(name string) map[string]any {
	return c[name]
}

// Get returns a single component.
func (c Components) Get(category, name string) (any, bool) {
	group, ok := c[category]
	if !ok {
		return nil, false
	}
	v, ok := group[name]
	return v, ok
}

// Names returns the component names of a category in lexicographic order.
func (c Components) Names(category string) []string {
	return slices.Sorted(maps.Keys(c[category]))
}

// Clone returns a copy whose inner maps are independent of the receiver.
func (c Components) Clone() Components {
	out := make(Components, len(c))
	for category, group := range c {
		out[category] = maps.Clone(group)
	}
	return out
}

// Lookup returns the component stored at (category, name) asserted to T.
func Lookup[T any](c Components, category, name string) (T, error) {
	var zero T
	v, ok := c.Get(category, name)
	if !ok {
		return zero, &ComponentNotFoundError{Category: category, Name: name}
	}
	typed, ok := v.(T)
	if !ok {
		return zero, &ComponentTypeError{Category: category, Name: name, Want: fmt.Sprintf("%T", zero), Got: v}
	}
	return typed, nil
}

// MustLookup is Lookup for wiring code where absence is a programming error.
func MustLookup[T any](c Components, category, name string) T {
	v, err := Lookup[T](c, category, name)
	if err != nil {
		panic(err)
	}
	return v
}
