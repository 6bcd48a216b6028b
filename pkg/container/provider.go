// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"fmt"
	"sync"
)

const (
	// KindValue is a provider wrapping an already constructed value.
	KindValue ProviderKind = iota
	// KindFactory is a provider computing its value synchronously.
	KindFactory
	// KindAsync is a provider computing its value through a Future.
	KindAsync
)

type (
	// ProviderKind tags the variant held by a Provider.
	ProviderKind uint8

	// FactoryFunc builds a component from its dependency context.
	FactoryFunc func(ctx context.Context, deps Components) (any, error)

	// AsyncFunc starts building a component and returns the pending result.
	AsyncFunc func(ctx context.Context, deps Components) *Future

	// Provider is the tagged union of everything that can be registered as a
	// component: a plain value, a synchronous factory, or an asynchronous one.
	// The zero Provider is a Value provider holding nil.
	Provider struct {
		kind    ProviderKind
		value   any
		factory FactoryFunc
		async   AsyncFunc
	}

	// Future is a single-assignment result shared between a producer and the
	// resolver. The first Resolve or Reject wins; later calls are ignored.
	Future struct {
		once  sync.Once
		done  chan struct{}
		value any
		err   error
	}
)

// String returns the lowercase variant name.
func (k ProviderKind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindFactory:
		return "factory"
	case KindAsync:
		return "async"
	default:
		return "unknown"
	}
}

// Value wraps an existing value.
func Value(v any) Provider {
	return Provider{kind: KindValue, value: v}
}

// Factory wraps a synchronous factory.
func Factory(fn FactoryFunc) Provider {
	return Provider{kind: KindFactory, factory: fn}
}

// Async wraps a factory that produces a Future.
func Async(fn AsyncFunc) Provider {
	return Provider{kind: KindAsync, async: fn}
}

// Kind reports which variant the provider holds.
func (p Provider) Kind() ProviderKind {
	return p.kind
}

// Validate returns an error wrapping ErrInvalidCallback when a factory variant
// carries a nil function.
func (p Provider) Validate() error {
	switch p.kind {
	case KindValue:
		return nil
	case KindFactory:
		if p.factory == nil {
			return fmt.Errorf("%w: nil factory", ErrInvalidCallback)
		}
	case KindAsync:
		if p.async == nil {
			return fmt.Errorf("%w: nil async factory", ErrInvalidCallback)
		}
	default:
		return fmt.Errorf("%w: unknown provider kind %d", ErrInvalidCallback, p.kind)
	}
	return nil
}

// Make produces the component value. Async providers are awaited; a nil
// Future counts as a nil value.
func (p Provider) Make(ctx context.Context, deps Components) (any, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	switch p.kind {
	case KindFactory:
		return p.factory(ctx, deps)
	case KindAsync:
		f := p.async(ctx, deps)
		if f == nil {
			return nil, nil
		}
		return f.Await(ctx)
	default:
		return p.value, nil
	}
}

// NewFuture creates an unresolved Future.
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolved returns a Future already completed with v.
func Resolved(v any) *Future {
	f := NewFuture()
	f.Resolve(v)
	return f
}

// Go runs fn on a new goroutine and returns a Future completed with its result.
func Go(fn func() (any, error)) *Future {
	f := NewFuture()
	go func() {
		v, err := fn()
		if err != nil {
			f.Reject(err)
			return
		}
		f.Resolve(v)
	}()
	return f
}

// Resolve completes the future with a value. It reports whether this call won.
func (f *Future) Resolve(v any) bool {
	return f.complete(v, nil)
}

// Reject completes the future with an error. It reports whether this call won.
func (f *Future) Reject(err error) bool {
	return f.complete(nil, err)
}

func (f *Future) complete(v any, err error) bool {
	won := false
	f.once.Do(func() {
		f.value, f.err = v, err
		won = true
		close(f.done)
	})
	return won
}

// Done is closed once the future completes.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the future completes or ctx is cancelled.
func (f *Future) Await(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, fmt.Errorf("awaiting component: %w", ctx.Err())
	}
}
