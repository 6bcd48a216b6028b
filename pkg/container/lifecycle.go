// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// AfterInit registers a hook fired by InitAll, and therefore by Start, once
// every category is resolved.
func (r *Runtime) AfterInit(h Hook) error {
	return appendHook(&r.afterInit, h, "afterInit")
}

// AfterStart registers a hook fired by Start after the afterInit hooks.
func (r *Runtime) AfterStart(h Hook) error {
	return appendHook(&r.afterStart, h, "afterStart")
}

// BeforeStop registers a hook fired by Stop before the cache is discarded.
func (r *Runtime) BeforeStop(h Hook) error {
	return appendHook(&r.beforeStop, h, "beforeStop")
}

func appendHook(hooks *[]Hook, h Hook, phase string) error {
	if h == nil {
		return fmt.Errorf("%w: nil %s hook", ErrInvalidCallback, phase)
	}
	*hooks = append(*hooks, h)
	return nil
}

// InitAll resolves every category and fires the afterInit hooks in
// registration order. It does not change the lifecycle state.
func (r *Runtime) InitAll(ctx context.Context) (Components, error) {
	components, err := r.ResolveAll(ctx)
	if err != nil {
		return nil, err
	}
	if err := runHooks(ctx, r.afterInit, components, "afterInit"); err != nil {
		return nil, err
	}
	return components, nil
}

// Start flips the runtime to running, initializes every component and fires
// the afterStart hooks. A failure rolls the runtime back to idle with an empty
// cache so that Start can be retried.
func (r *Runtime) Start(ctx context.Context) error {
	if r.state == StateRunning {
		return ErrAlreadyRunning
	}
	r.state = StateRunning
	r.runID = uuid.NewString()
	r.logger.Debug("runtime starting", "run", r.runID)

	components, err := r.InitAll(ctx)
	if err == nil {
		err = runHooks(ctx, r.afterStart, components, "afterStart")
	}
	if err != nil {
		r.reset()
		return err
	}
	r.logger.Debug("runtime started", "run", r.runID, "categories", len(components))
	return nil
}

// Stop fires the beforeStop hooks with the current component map, then
// discards every cached component and returns to idle. All hooks run even
// when one fails; their errors are joined.
func (r *Runtime) Stop(ctx context.Context) error {
	if r.state != StateRunning {
		return ErrNotRunning
	}
	components := r.Snapshot()

	var errs []error
	for i, h := range r.beforeStop {
		if err := h(ctx, components); err != nil {
			errs = append(errs, fmt.Errorf("beforeStop hook %d: %w", i, err))
		}
	}
	r.logger.Debug("runtime stopped", "run", r.runID)
	r.reset()
	return errors.Join(errs...)
}

// State returns the current lifecycle state.
func (r *Runtime) State() State {
	return r.state
}

// IsRunning reports whether Start succeeded and Stop was not called since.
func (r *Runtime) IsRunning() bool {
	return r.state == StateRunning
}

// RunID identifies the current run. It is empty while idle.
func (r *Runtime) RunID() string {
	return r.runID
}

func (r *Runtime) reset() {
	clear(r.cache)
	r.state = StateIdle
	r.runID = ""
}

func runHooks(ctx context.Context, hooks []Hook, components Components, phase string) error {
	for i, h := range hooks {
		if err := h(ctx, components); err != nil {
			return fmt.Errorf("%s hook %d: %w", phase, i, err)
		}
	}
	return nil
}
