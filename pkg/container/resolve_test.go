// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"maps"
	"reflect"
	"slices"
	"testing"
	"time"
)

func TestResolve_SiblingsSeeEarlierRegistrations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := New()
	mustDeclare(t, r, "TestType1")
	mustDeclare(t, r, "TestType2", "TestType1", "TestType2")

	var seen []Components
	capture := func(value string) Provider {
		return Factory(func(_ context.Context, deps Components) (any, error) {
			seen = append(seen, deps)
			return value, nil
		})
	}

	if err := r.Register("TestType1", "Test1", Value("foo")); err != nil {
		t.Fatal(err)
	}
	if err := r.Register("TestType2", "Test2", capture("bar")); err != nil {
		t.Fatal(err)
	}
	if err := r.Register("TestType2", "Test3", capture("baz")); err != nil {
		t.Fatal(err)
	}

	got, err := r.Resolve(ctx, "TestType2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Components{"TestType2": {"Test2": "bar", "Test3": "baz"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if len(seen) != 2 {
		t.Fatalf("expected 2 factory calls, got %d", len(seen))
	}
	first := Components{"TestType1": {"Test1": "foo"}, "TestType2": {}}
	if !reflect.DeepEqual(seen[0], first) {
		t.Errorf("Test2 context: expected %v, got %v", first, seen[0])
	}
	second := Components{"TestType1": {"Test1": "foo"}, "TestType2": {"Test2": "bar"}}
	if !reflect.DeepEqual(seen[1], second) {
		t.Errorf("Test3 context: expected %v, got %v", second, seen[1])
	}
}

func TestResolve_NonSelfCategoryDoesNotSeeSiblings(t *testing.T) {
	t.Parallel()
	r := New()
	mustDeclare(t, r, "Foo")

	var ctxs []Components
	for _, name := range []string{"A", "B"} {
		if err := r.Register("Foo", name, Factory(func(_ context.Context, deps Components) (any, error) {
			ctxs = append(ctxs, deps)
			return name, nil
		})); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := r.Resolve(context.Background(), "Foo"); err != nil {
		t.Fatal(err)
	}
	for i, c := range ctxs {
		if len(c) != 0 {
			t.Errorf("call %d: expected empty context, got %v", i, c)
		}
	}
}

func TestResolve_ProviderKinds(t *testing.T) {
	t.Parallel()
	r := New()
	mustDeclare(t, r, "Foo")

	pending := NewFuture()
	regs := map[string]Provider{
		"value":   Value(42),
		"factory": Factory(func(context.Context, Components) (any, error) { return "made", nil }),
		"async": Async(func(context.Context, Components) *Future {
			go func() {
				time.Sleep(5 * time.Millisecond)
				pending.Resolve("later")
			}()
			return pending
		}),
		"goroutine": Async(func(context.Context, Components) *Future {
			return Go(func() (any, error) { return 7, nil })
		}),
		"nil-future": Async(func(context.Context, Components) *Future { return nil }),
	}
	for _, name := range slices.Sorted(maps.Keys(regs)) {
		if err := r.Register("Foo", name, regs[name]); err != nil {
			t.Fatal(err)
		}
	}

	got, err := r.Resolve(context.Background(), "Foo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{"value": 42, "factory": "made", "async": "later", "goroutine": 7, "nil-future": nil}
	if !reflect.DeepEqual(got["Foo"], want) {
		t.Errorf("expected %v, got %v", want, got["Foo"])
	}
}

func TestResolve_Memoizes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := New()
	mustDeclare(t, r, "Foo")

	calls, mwCalls := 0, 0
	if err := r.UseCategory("Foo", func(next Provider, _ Components) (Provider, error) {
		mwCalls++
		return next, nil
	}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register("Foo", "X", Factory(func(context.Context, Components) (any, error) {
		calls++
		return calls, nil
	})); err != nil {
		t.Fatal(err)
	}

	for range 3 {
		got, err := r.Resolve(ctx, "Foo")
		if err != nil {
			t.Fatal(err)
		}
		if got["Foo"]["X"] != 1 {
			t.Errorf("expected cached value 1, got %v", got["Foo"]["X"])
		}
	}
	if calls != 1 || mwCalls != 1 {
		t.Errorf("expected one factory and one middleware call, got %d and %d", calls, mwCalls)
	}
}

func TestResolve_LateRegistrationIsResolved(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := New()
	mustDeclare(t, r, "Foo")
	_ = r.Register("Foo", "A", Value(1))

	if _, err := r.Resolve(ctx, "Foo"); err != nil {
		t.Fatal(err)
	}
	_ = r.Register("Foo", "B", Value(2))

	got, err := r.Resolve(ctx, "Foo")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got["Foo"], map[string]any{"A": 1, "B": 2}) {
		t.Errorf("unexpected map: %v", got["Foo"])
	}
}

func TestResolve_DependenciesFirst(t *testing.T) {
	t.Parallel()
	r := New()
	mustDeclare(t, r, "Base")
	mustDeclare(t, r, "Top", "Base")

	var order []string
	record := func(name string) Provider {
		return Factory(func(_ context.Context, deps Components) (any, error) {
			order = append(order, name)
			return name, nil
		})
	}
	_ = r.Register("Top", "T", Factory(func(_ context.Context, deps Components) (any, error) {
		order = append(order, "T")
		v, err := Lookup[string](deps, "Base", "B")
		if err != nil {
			return nil, err
		}
		return "top-of-" + v, nil
	}))
	_ = r.Register("Base", "B", record("B"))

	got, err := r.Resolve(context.Background(), "Top")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(order, []string{"B", "T"}) {
		t.Errorf("expected [B T], got %v", order)
	}
	if got["Top"]["T"] != "top-of-B" {
		t.Errorf("unexpected value %v", got["Top"]["T"])
	}
	if _, ok := got["Base"]; ok {
		t.Error("only requested categories are returned")
	}
}

func TestResolve_UnknownCategory(t *testing.T) {
	t.Parallel()
	if _, err := New().Resolve(context.Background(), "Nope"); !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestResolve_FailureKeepsEarlierEntriesAndRetries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := New()
	mustDeclare(t, r, "Foo")

	boom := errors.New("boom")
	aCalls, bCalls := 0, 0
	_ = r.Register("Foo", "A", Factory(func(context.Context, Components) (any, error) {
		aCalls++
		return "a", nil
	}))
	_ = r.Register("Foo", "B", Factory(func(context.Context, Components) (any, error) {
		bCalls++
		if bCalls == 1 {
			return nil, boom
		}
		return "b", nil
	}))

	_, err := r.Resolve(ctx, "Foo")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
	var resolveErr *ResolveError
	if !errors.As(err, &resolveErr) || resolveErr.Category != "Foo" || resolveErr.Name != "B" {
		t.Fatalf("expected *ResolveError for Foo.B, got %v", err)
	}
	if snap := r.Snapshot(); !reflect.DeepEqual(snap["Foo"], map[string]any{"A": "a"}) {
		t.Errorf("expected only A cached, got %v", snap["Foo"])
	}

	got, err := r.Resolve(ctx, "Foo")
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if !reflect.DeepEqual(got["Foo"], map[string]any{"A": "a", "B": "b"}) {
		t.Errorf("unexpected map after retry: %v", got["Foo"])
	}
	if aCalls != 1 || bCalls != 2 {
		t.Errorf("expected A once and B twice, got %d and %d", aCalls, bCalls)
	}
}

func TestResolve_MiddlewareOrder(t *testing.T) {
	t.Parallel()
	r := New()
	mustDeclare(t, r, "Foo")

	var trace []string
	wrap := func(tag string) Middleware {
		return func(next Provider, deps Components) (Provider, error) {
			trace = append(trace, "wrap:"+tag)
			return Factory(func(ctx context.Context, deps Components) (any, error) {
				v, err := next.Make(ctx, deps)
				if err != nil {
					return nil, err
				}
				return v.(string) + "+" + tag, nil
			}), nil
		}
	}
	_ = r.UseCategory("Foo", wrap("cat1"))
	_ = r.UseCategory("Foo", wrap("cat2"))
	_ = r.Use(func(next Provider, deps Components, category, name string) (Provider, error) {
		trace = append(trace, "global:"+category+"."+name)
		return Factory(func(ctx context.Context, deps Components) (any, error) {
			v, err := next.Make(ctx, deps)
			if err != nil {
				return nil, err
			}
			return v.(string) + "+global", nil
		}), nil
	})
	_ = r.Register("Foo", "X", Value("x"))

	got, err := r.Resolve(context.Background(), "Foo")
	if err != nil {
		t.Fatal(err)
	}
	if got["Foo"]["X"] != "x+cat1+cat2+global" {
		t.Errorf("unexpected composition %v", got["Foo"]["X"])
	}
	if !slices.Equal(trace, []string{"wrap:cat1", "wrap:cat2", "global:Foo.X"}) {
		t.Errorf("unexpected middleware order %v", trace)
	}
}

func TestResolve_MiddlewareMayReplaceWithValue(t *testing.T) {
	t.Parallel()
	r := New()
	mustDeclare(t, r, "Foo")

	called := false
	_ = r.Use(func(Provider, Components, string, string) (Provider, error) {
		return Value("replaced"), nil
	})
	_ = r.Register("Foo", "X", Factory(func(context.Context, Components) (any, error) {
		called = true
		return "original", nil
	}))

	got, err := r.Resolve(context.Background(), "Foo")
	if err != nil {
		t.Fatal(err)
	}
	if got["Foo"]["X"] != "replaced" || called {
		t.Errorf("expected replacement without invoking the factory, got %v (called=%v)", got["Foo"]["X"], called)
	}
}

func TestResolve_MiddlewareError(t *testing.T) {
	t.Parallel()
	r := New()
	mustDeclare(t, r, "Foo")

	denied := errors.New("denied")
	_ = r.UseCategory("Foo", func(Provider, Components) (Provider, error) { return Provider{}, denied })
	_ = r.Register("Foo", "X", Value(1))

	if _, err := r.Resolve(context.Background(), "Foo"); !errors.Is(err, denied) {
		t.Fatalf("expected denied, got %v", err)
	}
	if len(r.Snapshot()["Foo"]) != 0 {
		t.Error("failed component must not be cached")
	}
}

func TestResolveAll_FollowsLinearization(t *testing.T) {
	t.Parallel()
	r := New()
	mustDeclare(t, r, "B")
	mustDeclare(t, r, "A", "B")
	mustDeclare(t, r, "C")

	var order []string
	for _, cat := range []string{"A", "B", "C"} {
		_ = r.Register(cat, "x", Factory(func(context.Context, Components) (any, error) {
			order = append(order, cat)
			return cat, nil
		}))
	}

	got, err := r.ResolveAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(order, []string{"B", "C", "A"}) {
		t.Errorf("expected [B C A], got %v", order)
	}
	if len(got) != 3 {
		t.Errorf("expected every category, got %v", got)
	}
}

func TestAwait_Cancelled(t *testing.T) {
	t.Parallel()
	r := New()
	mustDeclare(t, r, "Foo")
	_ = r.Register("Foo", "Never", Async(func(context.Context, Components) *Future { return NewFuture() }))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Resolve(ctx, "Foo"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFuture_FirstCompletionWins(t *testing.T) {
	t.Parallel()
	f := NewFuture()
	if !f.Reject(errors.New("first")) {
		t.Fatal("first completion must win")
	}
	if f.Resolve("second") {
		t.Fatal("second completion must be ignored")
	}
	if _, err := f.Await(context.Background()); err == nil || err.Error() != "first" {
		t.Errorf("expected first error, got %v", err)
	}
	v, err := Resolved("ok").Await(context.Background())
	if err != nil || v != "ok" {
		t.Errorf("expected ok, got %v (%v)", v, err)
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()
	c := Components{"Core": {"Name": "corekit", "Count": 3}}

	if v, err := Lookup[string](c, "Core", "Name"); err != nil || v != "corekit" {
		t.Errorf("expected corekit, got %q (%v)", v, err)
	}
	if _, err := Lookup[string](c, "Core", "Missing"); !errors.Is(err, ErrComponentNotFound) {
		t.Errorf("expected ErrComponentNotFound, got %v", err)
	}
	if _, err := Lookup[string](c, "Core", "Count"); !errors.Is(err, ErrComponentType) {
		t.Errorf("expected ErrComponentType, got %v", err)
	}
	if names := c.Names("Core"); !slices.Equal(names, []string{"Count", "Name"}) {
		t.Errorf("unexpected names %v", names)
	}
}
