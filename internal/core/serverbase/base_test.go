// SPDX-License-Identifier: MPL-2.0

package serverbase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestLifecycle_HappyPath(t *testing.T) {
	t.Parallel()

	b := NewBase(1)
	if b.State() != StateCreated {
		t.Fatalf("initial state = %s", b.State())
	}
	if err := b.Begin(context.Background()); err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	if b.State() != StateStarting || b.Context() == nil {
		t.Fatalf("after Begin: state %s, ctx %v", b.State(), b.Context())
	}

	var exited atomic.Bool
	b.Go(func(ctx context.Context) {
		<-ctx.Done()
		exited.Store(true)
	})

	b.MarkRunning()
	if !b.IsRunning() {
		t.Fatal("expected running")
	}
	if err := b.WaitReady(context.Background()); err != nil {
		t.Fatalf("WaitReady() error: %v", err)
	}

	if !b.BeginStop() {
		t.Fatal("BeginStop() should report work to stop")
	}
	b.Finish()
	if b.State() != StateStopped {
		t.Errorf("final state = %s", b.State())
	}
	if !exited.Load() {
		t.Error("Finish must wait for tracked goroutines")
	}
	select {
	case <-b.Done():
	default:
		t.Error("Done should be closed")
	}
	if _, ok := <-b.Err(); ok {
		t.Error("Err should be closed after Finish")
	}
}

func TestBegin_Twice(t *testing.T) {
	t.Parallel()

	b := NewBase(1)
	if err := b.Begin(context.Background()); err != nil {
		t.Fatal(err)
	}
	err := b.Begin(context.Background())
	var te *TransitionError
	if !errors.As(err, &te) || te.From != StateStarting {
		t.Fatalf("expected TransitionError from starting, got %v", err)
	}
	if !errors.Is(err, ErrInvalidTransition) {
		t.Error("expected ErrInvalidTransition")
	}
}

func TestBegin_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := NewBase(1)
	err := b.Begin(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if b.State() != StateFailed {
		t.Errorf("state = %s, want failed", b.State())
	}
}

func TestFail_KeepsFirstError(t *testing.T) {
	t.Parallel()

	b := NewBase(2)
	if err := b.Begin(context.Background()); err != nil {
		t.Fatal(err)
	}
	first := errors.New("first")
	b.Fail(first)
	b.Fail(errors.New("second"))

	if !errors.Is(b.LastError(), first) {
		t.Errorf("LastError() = %v", b.LastError())
	}
	if got := <-b.Err(); !errors.Is(got, first) {
		t.Errorf("Err() delivered %v", got)
	}
	if b.Context().Err() == nil {
		t.Error("Fail must cancel the server context")
	}
	if err := b.WaitReady(context.Background()); !errors.Is(err, first) {
		t.Errorf("WaitReady after failure = %v", err)
	}
}

func TestBeginStop(t *testing.T) {
	t.Parallel()

	t.Run("never started", func(t *testing.T) {
		t.Parallel()
		b := NewBase(1)
		if b.BeginStop() {
			t.Error("nothing to stop")
		}
		if b.State() != StateStopped {
			t.Errorf("state = %s", b.State())
		}
	})

	t.Run("already stopped", func(t *testing.T) {
		t.Parallel()
		b := NewBase(1)
		_ = b.Begin(context.Background())
		b.BeginStop()
		b.Finish()
		if b.BeginStop() {
			t.Error("second stop must be a no-op")
		}
	})
}

func TestReport_AfterFinish(t *testing.T) {
	t.Parallel()

	b := NewBase(1)
	_ = b.Begin(context.Background())
	b.BeginStop()
	b.Finish()
	b.Report(errors.New("late"))
}

func TestWaitReady_Timeout(t *testing.T) {
	t.Parallel()

	b := NewBase(1)
	_ = b.Begin(context.Background())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := b.WaitReady(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline, got %v", err)
	}
}

func TestState(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state    State
		name     string
		terminal bool
	}{
		{StateCreated, "created", false},
		{StateStarting, "starting", false},
		{StateRunning, "running", false},
		{StateStopping, "stopping", false},
		{StateStopped, "stopped", true},
		{StateFailed, "failed", true},
	}
	for _, tt := range tests {
		if tt.state.String() != tt.name || tt.state.IsTerminal() != tt.terminal || tt.state.Validate() != nil {
			t.Errorf("state %d: %s terminal=%v", tt.state, tt.state, tt.state.IsTerminal())
		}
	}

	if err := State(42).Validate(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
	if State(-1).String() != "unknown" {
		t.Error("out of range state should print unknown")
	}
}
