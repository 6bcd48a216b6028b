// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"fmt"
	"maps"
	"time"
)

// Resolve materializes the requested categories and returns their component
// maps. Categories they depend on are resolved first. Components already built
// during the current run are returned from the cache without invoking their
// provider or any middleware again.
//
// A failing component aborts the call with a *ResolveError. Components built
// before the failure stay cached; the failing one does not, so a later call
// retries exactly the missing entries.
func (r *Runtime) Resolve(ctx context.Context, categories ...string) (Components, error) {
	out := make(Components, len(categories))
	for _, name := range categories {
		if err := r.resolveCategory(ctx, name); err != nil {
			return nil, err
		}
		out[name] = maps.Clone(r.cache[name])
	}
	return out, nil
}

// ResolveAll resolves every declared category in linearized order.
func (r *Runtime) ResolveAll(ctx context.Context) (Components, error) {
	order, err := r.Linearize()
	if err != nil {
		return nil, err
	}
	return r.Resolve(ctx, order...)
}

// Snapshot returns a copy of everything resolved so far in the current run.
func (r *Runtime) Snapshot() Components {
	return Components(r.cache).Clone()
}

func (r *Runtime) resolveCategory(ctx context.Context, name string) error {
	cat, ok := r.categories[name]
	if !ok {
		return &UnknownCategoryError{Category: name}
	}
	for _, dep := range cat.params {
		if dep == name {
			continue
		}
		if err := r.resolveCategory(ctx, dep); err != nil {
			return err
		}
	}

	resolved, ok := r.cache[name]
	if !ok {
		resolved = make(map[string]any, len(cat.components))
		r.cache[name] = resolved
	}
	for _, reg := range cat.components {
		if _, done := resolved[reg.name]; done {
			continue
		}
		v, err := r.instantiate(ctx, cat, reg)
		if err != nil {
			return &ResolveError{Category: name, Name: reg.name, Err: err}
		}
		resolved[reg.name] = v
	}
	return nil
}

// dependencyContext builds the map handed to a component of cat. For a
// self-dependent category it holds the siblings resolved so far, in
// registration order, never the component being built.
func (r *Runtime) dependencyContext(cat *category) Components {
	deps := make(Components, len(cat.params))
	for _, param := range cat.params {
		deps[param] = maps.Clone(r.cache[param])
		if deps[param] == nil {
			deps[param] = map[string]any{}
		}
	}
	return deps
}

func (r *Runtime) instantiate(ctx context.Context, cat *category, reg *registration) (any, error) {
	deps := r.dependencyContext(cat)

	p := reg.provider
	for _, mw := range cat.middleware {
		next, err := mw(p, deps)
		if err != nil {
			return nil, fmt.Errorf("category middleware: %w", err)
		}
		p = next
	}
	for _, mw := range r.global {
		next, err := mw(p, deps, cat.name, reg.name)
		if err != nil {
			return nil, fmt.Errorf("global middleware: %w", err)
		}
		p = next
	}

	start := time.Now()
	v, err := p.Make(ctx, deps)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("component instantiated",
		"category", cat.name, "component", reg.name, "kind", p.Kind(), "elapsed", time.Since(start))
	return v, nil
}
