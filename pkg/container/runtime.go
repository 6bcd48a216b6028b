// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/corekit/corekit/internal/dag"

	"github.com/charmbracelet/log"
)

type (
	// Middleware wraps the provider of every component in one category.
	// It receives the next provider and the component's dependency context and
	// returns the provider to use instead. Returning Value(v) replaces the
	// component outright.
	Middleware func(next Provider, deps Components) (Provider, error)

	// GlobalMiddleware wraps the provider of every component in every category.
	// It runs after the category chain and also learns which component it wraps.
	GlobalMiddleware func(next Provider, deps Components, category, name string) (Provider, error)

	// Hook is a lifecycle callback receiving the resolved component map.
	Hook func(ctx context.Context, components Components) error

	// Option configures a Runtime.
	Option func(*Runtime)

	// RegisterOption configures a single Register call.
	RegisterOption func(*registerOptions)

	registerOptions struct {
		skipDuplicate bool
	}

	// Runtime owns the category graph, the component registrations, the
	// per-run component cache and the lifecycle hooks.
	//
	// A Runtime is driven by a single caller; it is not safe for concurrent use,
	// and factories must not call back into the Runtime that is resolving them.
	Runtime struct {
		logger *log.Logger

		graph      *dag.Graph
		categories map[string]*category
		declared   []string

		global []GlobalMiddleware
		cache  map[string]map[string]any

		afterInit  []Hook
		afterStart []Hook
		beforeStop []Hook

		state State
		runID string
	}

	category struct {
		name       string
		params     []string
		middleware []Middleware
		components []*registration
		index      map[string]*registration
	}

	registration struct {
		name     string
		provider Provider
	}
)

// WithLogger sets the logger used for debug tracing. A nil logger discards output.
func WithLogger(logger *log.Logger) Option {
	return func(r *Runtime) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// SkipDuplicate turns a duplicate registration into a silent no-op.
func SkipDuplicate() RegisterOption {
	return func(o *registerOptions) {
		o.skipDuplicate = true
	}
}

// New creates an idle Runtime with no categories.
func New(opts ...Option) *Runtime {
	r := &Runtime{
		logger:     log.New(io.Discard),
		graph:      dag.New(),
		categories: make(map[string]*category),
		cache:      make(map[string]map[string]any),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DeclareCategory declares a new category depending on previously declared
// categories. A category may list itself to receive its already resolved
// siblings during resolution; that self-reference is not a cycle.
func (r *Runtime) DeclareCategory(name string, dependsOn ...string) error {
	if name == "" {
		return fmt.Errorf("%w: empty category name", ErrInvalidName)
	}
	if _, exists := r.categories[name]; exists {
		return &DuplicateCategoryError{Category: name}
	}
	deps, err := r.checkDependencies(name, dependsOn, true)
	if err != nil {
		return err
	}

	r.categories[name] = &category{
		name:   name,
		params: deps,
		index:  make(map[string]*registration),
	}
	r.declared = append(r.declared, name)
	r.graph.AddNode(name)
	for _, dep := range deps {
		r.graph.AddEdge(dep, name)
	}
	r.logger.Debug("category declared", "category", name, "depends_on", deps)
	return nil
}

// AppendDependencies adds dependencies to an already declared category.
// Nothing is changed when any of them is unknown or would close a cycle.
func (r *Runtime) AppendDependencies(name string, more ...string) error {
	cat, ok := r.categories[name]
	if !ok {
		return &UnknownCategoryError{Category: name}
	}
	deps, err := r.checkDependencies(name, more, false)
	if err != nil {
		return err
	}

	for _, dep := range deps {
		if slices.Contains(cat.params, dep) {
			continue
		}
		cat.params = append(cat.params, dep)
		r.graph.AddEdge(dep, name)
	}
	r.logger.Debug("category dependencies appended", "category", name, "depends_on", cat.params)
	return nil
}

// checkDependencies validates dependency names for category name and simulates
// their edges on a copy of the graph. It returns the deduplicated list.
func (r *Runtime) checkDependencies(name string, deps []string, isNew bool) ([]string, error) {
	unique := make([]string, 0, len(deps))
	for _, dep := range deps {
		if dep == "" {
			return nil, fmt.Errorf("%w: empty dependency of category %q", ErrInvalidName, name)
		}
		if dep != name {
			if _, ok := r.categories[dep]; !ok {
				return nil, &UnknownCategoryError{Category: dep, Referrer: name}
			}
		}
		if !slices.Contains(unique, dep) {
			unique = append(unique, dep)
		}
	}

	sim := r.graph.Clone()
	if isNew {
		sim.AddNode(name)
	}
	for _, dep := range unique {
		sim.AddEdge(dep, name)
	}
	if _, err := sim.Levels(); err != nil {
		var cycle *dag.CycleError
		if errors.As(err, &cycle) {
			return nil, &CyclicDependencyError{Category: name, Dependencies: unique, Cycle: cycle}
		}
		return nil, err
	}
	return unique, nil
}

// UseCategory appends a middleware to a category's chain.
func (r *Runtime) UseCategory(name string, mw Middleware) error {
	cat, ok := r.categories[name]
	if !ok {
		return &UnknownCategoryError{Category: name}
	}
	if mw == nil {
		return fmt.Errorf("%w: nil middleware for category %q", ErrInvalidMiddleware, name)
	}
	cat.middleware = append(cat.middleware, mw)
	return nil
}

// Use appends a middleware applied to every component of every category.
func (r *Runtime) Use(mw GlobalMiddleware) error {
	if mw == nil {
		return fmt.Errorf("%w: nil global middleware", ErrInvalidMiddleware)
	}
	r.global = append(r.global, mw)
	return nil
}

// Linearize returns every declared category ordered so that each one follows
// all of its dependencies. Ties are broken lexicographically.
func (r *Runtime) Linearize() ([]string, error) {
	order, err := r.graph.TopologicalSort()
	if err != nil {
		var cycle *dag.CycleError
		if errors.As(err, &cycle) {
			return nil, &CyclicDependencyError{Category: cycle.Cycle[0], Cycle: cycle}
		}
		return nil, err
	}
	if order == nil {
		return []string{}, nil
	}
	return order, nil
}

// Categories returns the declared category names in declaration order.
func (r *Runtime) Categories() []string {
	return slices.Clone(r.declared)
}

// HasCategory reports whether name was declared.
func (r *Runtime) HasCategory(name string) bool {
	_, ok := r.categories[name]
	return ok
}

// Dependencies returns the dependency list of a category, self-reference included.
func (r *Runtime) Dependencies(name string) ([]string, error) {
	cat, ok := r.categories[name]
	if !ok {
		return nil, &UnknownCategoryError{Category: name}
	}
	return slices.Clone(cat.params), nil
}

// Register adds a component to a category.
func (r *Runtime) Register(categoryName, name string, p Provider, opts ...RegisterOption) error {
	cat, ok := r.categories[categoryName]
	if !ok {
		return &UnknownCategoryError{Category: categoryName}
	}
	if name == "" {
		return fmt.Errorf("%w: empty component name in category %q", ErrInvalidName, categoryName)
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("component %s.%s: %w", categoryName, name, err)
	}

	var o registerOptions
	for _, opt := range opts {
		opt(&o)
	}
	if _, exists := cat.index[name]; exists {
		if o.skipDuplicate {
			return nil
		}
		return &DuplicateComponentError{Category: categoryName, Name: name}
	}

	reg := &registration{name: name, provider: p}
	cat.components = append(cat.components, reg)
	cat.index[name] = reg
	return nil
}

// ComponentNames returns the registered component names of a category in
// registration order.
func (r *Runtime) ComponentNames(categoryName string) ([]string, error) {
	cat, ok := r.categories[categoryName]
	if !ok {
		return nil, &UnknownCategoryError{Category: categoryName}
	}
	names := make([]string, len(cat.components))
	for i, reg := range cat.components {
		names[i] = reg.name
	}
	return names, nil
}
