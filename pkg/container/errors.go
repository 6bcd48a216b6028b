// SPDX-License-Identifier: MPL-2.0

package container

import (
	"errors"
	"fmt"
	"strings"

	"github.com/corekit/corekit/internal/dag"
)

var (
	// ErrDuplicateCategory is returned when a category name is declared twice.
	ErrDuplicateCategory = errors.New("duplicate category")
	// ErrUnknownCategory is returned when a category is referenced before being declared.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrCyclicDependency is returned when a declaration would introduce a dependency cycle.
	ErrCyclicDependency = errors.New("cyclic dependency")
	// ErrDuplicateComponent is returned when a component name is registered twice in a category.
	ErrDuplicateComponent = errors.New("duplicate component")
	// ErrInvalidCallback is returned when a hook or provider has nothing to invoke.
	ErrInvalidCallback = errors.New("invalid callback")
	// ErrInvalidMiddleware is returned when a nil middleware is installed.
	ErrInvalidMiddleware = errors.New("invalid middleware")
	// ErrAlreadyRunning is returned by Start when the runtime is already running.
	ErrAlreadyRunning = errors.New("runtime already running")
	// ErrNotRunning is returned by Stop when the runtime is idle.
	ErrNotRunning = errors.New("runtime not running")
	// ErrInvalidName is returned for empty category or component names.
	ErrInvalidName = errors.New("invalid name")
	// ErrComponentNotFound is returned by Lookup when a component is absent from a map.
	ErrComponentNotFound = errors.New("component not found")
	// ErrComponentType is returned by Lookup when a component has an unexpected type.
	ErrComponentType = errors.New("unexpected component type")
)

type (
	// DuplicateCategoryError is returned when a category is declared twice.
	// It wraps ErrDuplicateCategory for errors.Is() compatibility.
	DuplicateCategoryError struct {
		Category string
	}

	// UnknownCategoryError is returned when a category name does not resolve.
	// Referrer is the category whose declaration mentioned it, if any.
	UnknownCategoryError struct {
		Category string
		Referrer string
	}

	// CyclicDependencyError is returned when adding Dependencies to Category would
	// close a cycle. The graph is left untouched.
	CyclicDependencyError struct {
		Category     string
		Dependencies []string
		Cycle        *dag.CycleError
	}

	// DuplicateComponentError is returned when (Category, Name) is already registered.
	DuplicateComponentError struct {
		Category string
		Name     string
	}

	// ResolveError wraps a failure raised while instantiating a component.
	ResolveError struct {
		Category string
		Name     string
		Err      error
	}

	// ComponentNotFoundError is returned by Lookup for a missing component.
	ComponentNotFoundError struct {
		Category string
		Name     string
	}

	// ComponentTypeError is returned by Lookup when the stored value has another type.
	ComponentTypeError struct {
		Category string
		Name     string
		Want     string
		Got      any
	}
)

func (e *DuplicateCategoryError) Error() string {
	return fmt.Sprintf("category %q is already declared", e.Category)
}

// Unwrap returns ErrDuplicateCategory for errors.Is() compatibility.
func (e *DuplicateCategoryError) Unwrap() error { return ErrDuplicateCategory }

func (e *UnknownCategoryError) Error() string {
	if e.Referrer != "" {
		return fmt.Sprintf("category %q depends on undeclared category %q", e.Referrer, e.Category)
	}
	return fmt.Sprintf("category %q is not declared", e.Category)
}

// Unwrap returns ErrUnknownCategory for errors.Is() compatibility.
func (e *UnknownCategoryError) Unwrap() error { return ErrUnknownCategory }

func (e *CyclicDependencyError) Error() string {
	msg := fmt.Sprintf("category %q cannot depend on [%s]", e.Category, strings.Join(e.Dependencies, ", "))
	if e.Cycle != nil {
		msg += ": " + e.Cycle.Error()
	}
	return msg
}

// Unwrap exposes both ErrCyclicDependency and the underlying *dag.CycleError.
func (e *CyclicDependencyError) Unwrap() []error {
	if e.Cycle == nil {
		return []error{ErrCyclicDependency}
	}
	return []error{ErrCyclicDependency, e.Cycle}
}

func (e *DuplicateComponentError) Error() string {
	return fmt.Sprintf("component %q is already registered in category %q", e.Name, e.Category)
}

// Unwrap returns ErrDuplicateComponent for errors.Is() compatibility.
func (e *DuplicateComponentError) Unwrap() error { return ErrDuplicateComponent }

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve %s.%s: %v", e.Category, e.Name, e.Err)
}

// Unwrap returns the factory or middleware failure.
func (e *ResolveError) Unwrap() error { return e.Err }

func (e *ComponentNotFoundError) Error() string {
	return fmt.Sprintf("component %s.%s not found", e.Category, e.Name)
}

// Unwrap returns ErrComponentNotFound for errors.Is() compatibility.
func (e *ComponentNotFoundError) Unwrap() error { return ErrComponentNotFound }

func (e *ComponentTypeError) Error() string {
	return fmt.Sprintf("component %s.%s is %T, want %s", e.Category, e.Name, e.Got, e.Want)
}

// Unwrap returns ErrComponentType for errors.Is() compatibility.
func (e *ComponentTypeError) Unwrap() error { return ErrComponentType }
