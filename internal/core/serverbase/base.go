// SPDX-License-Identifier: MPL-2.0

package serverbase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Base holds the lifecycle of one server run. Concrete servers embed it and
// call Begin, Ready, BeginStop and Finish around their own setup and teardown.
type Base struct {
	state atomic.Int32

	mu       sync.Mutex
	lastErr  error
	finished bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	ready  chan struct{}
	done   chan struct{}
	errCh  chan error
}

// NewBase returns a Base in StateCreated whose error channel buffers
// errBuffer entries (at least one).
func NewBase(errBuffer int) *Base {
	if errBuffer < 1 {
		errBuffer = 1
	}
	return &Base{
		ready: make(chan struct{}),
		done:  make(chan struct{}),
		errCh: make(chan error, errBuffer),
	}
}

// State returns the current state without locking.
func (b *Base) State() State { return State(b.state.Load()) }

// IsRunning reports whether the server accepts work.
func (b *Base) IsRunning() bool { return b.State() == StateRunning }

// Err delivers asynchronous failures. It is closed by Finish.
func (b *Base) Err() <-chan error { return b.errCh }

// Ready is closed once the server is running.
func (b *Base) Ready() <-chan struct{} { return b.ready }

// Done is closed once the server reaches a terminal state.
func (b *Base) Done() <-chan struct{} { return b.done }

// Context is cancelled when the server stops or fails. It is nil before Begin.
func (b *Base) Context() context.Context { return b.ctx }

// LastError returns the failure that moved the server to StateFailed.
func (b *Base) LastError() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

// Begin moves created to starting. A cancelled ctx fails the server before
// any setup happens.
func (b *Base) Begin(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		b.Fail(fmt.Errorf("context cancelled before start: %w", err))
		return b.LastError()
	}
	if !b.state.CompareAndSwap(int32(StateCreated), int32(StateStarting)) {
		return &TransitionError{Step: "start", From: b.State()}
	}
	b.ctx, b.cancel = context.WithCancel(context.Background())
	return nil
}

// MarkRunning moves starting to running and releases Ready waiters.
func (b *Base) MarkRunning() {
	if b.state.CompareAndSwap(int32(StateStarting), int32(StateRunning)) {
		close(b.ready)
	}
}

// WaitReady blocks until the server runs, fails, or ctx ends.
func (b *Base) WaitReady(ctx context.Context) error {
	select {
	case <-b.ready:
		return nil
	case <-b.done:
		if err := b.LastError(); err != nil {
			return err
		}
		return &TransitionError{Step: "wait for", From: b.State()}
	case <-ctx.Done():
		return fmt.Errorf("waiting for server ready: %w", ctx.Err())
	}
}

// Fail records err, moves to StateFailed and cancels the server context.
// Only the first failure is kept.
func (b *Base) Fail(err error) {
	b.mu.Lock()
	if b.lastErr == nil {
		b.lastErr = err
	}
	b.mu.Unlock()

	b.state.Store(int32(StateFailed))
	if b.cancel != nil {
		b.cancel()
	}
	b.Report(err)
	b.closeDone()
}

// Report forwards err to Err without blocking; it is dropped when the
// buffer is full or the server has finished.
func (b *Base) Report(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finished {
		return
	}
	select {
	case b.errCh <- err:
	default:
	}
}

// BeginStop moves a starting or running server to stopping and cancels its
// context. It returns false when there is nothing to stop; a server that
// never started becomes stopped directly.
func (b *Base) BeginStop() bool {
	for {
		cur := b.State()
		switch cur {
		case StateCreated:
			if b.state.CompareAndSwap(int32(cur), int32(StateStopped)) {
				b.closeDone()
				return false
			}
		case StateStarting, StateRunning:
			if b.state.CompareAndSwap(int32(cur), int32(StateStopping)) {
				b.cancel()
				return true
			}
		default:
			return false
		}
	}
}

// Finish waits for tracked goroutines, then marks the server stopped.
func (b *Base) Finish() {
	b.wg.Wait()
	b.state.CompareAndSwap(int32(StateStopping), int32(StateStopped))
	b.closeDone()
}

// Go runs fn on a tracked goroutine with the server context.
func (b *Base) Go(fn func(ctx context.Context)) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		fn(b.ctx)
	}()
}

func (b *Base) closeDone() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finished {
		return
	}
	b.finished = true
	close(b.done)
	close(b.errCh)
}
