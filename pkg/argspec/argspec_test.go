// SPDX-License-Identifier: MPL-2.0

package argspec

import (
	"errors"
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want Spec
	}{
		{"name", Spec{Name: "name"}},
		{"[name]", Spec{Name: "name", Optional: true}},
		{"name=default", Spec{Name: "name", Optional: true, Default: []string{"default"}}},
		{"[name=default]", Spec{Name: "name", Optional: true, Default: []string{"default"}}},
		{"name=", Spec{Name: "name", Optional: true, Default: []string{""}}},
		{"name=a=b", Spec{Name: "name", Optional: true, Default: []string{"a=b"}}},
		{"...rest", Spec{Name: "rest", Rest: true}},
		{"[...rest]", Spec{Name: "rest", Rest: true, Optional: true}},
		{"[...rest=bar]", Spec{Name: "rest", Rest: true, Optional: true, Default: []string{"bar"}}},
		{"...rest=bar", Spec{Name: "rest", Rest: true, Optional: true, Default: []string{"bar"}}},
		{"create:client", Spec{Name: "create:client"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tt.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "[]", "=value", "...", "[...]", "[name", "na me", "<name>", "......name"} {
		t.Run(raw, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(raw)
			if !errors.Is(err, ErrInvalidArgumentSpec) {
				t.Fatalf("expected ErrInvalidArgumentSpec, got %v", err)
			}
			var specErr *InvalidSpecError
			if !errors.As(err, &specErr) || specErr.Raw != raw {
				t.Errorf("expected error to carry the raw sigil, got %v", err)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	got, err := Spec{Name: "arg2", Default: []string{"bar"}}.Normalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Optional {
		t.Error("a default must imply optional")
	}

	if _, err := (Spec{Name: "x", Default: []string{"a", "b"}}).Normalize(); !errors.Is(err, ErrInvalidArgumentSpec) {
		t.Errorf("non-rest default lists must be rejected, got %v", err)
	}
	got, err = Spec{Name: "xs", Rest: true, Default: []string{"a", "b"}}.Normalize()
	if err != nil || !got.Optional {
		t.Errorf("rest default list must be accepted and optional, got %+v (%v)", got, err)
	}
	if _, err := (Spec{}).Normalize(); !errors.Is(err, ErrInvalidArgumentSpec) {
		t.Errorf("empty names must be rejected, got %v", err)
	}
}

func TestCanonicalize_MixedForms(t *testing.T) {
	t.Parallel()

	specs, err := Canonicalize([]Arg{
		Sigil("arg1"),
		Spec{Name: "arg2", Default: []string{"bar"}},
		Sigil("arg3=baz"),
		Sigil("[arg4]"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Spec{
		{Name: "arg1"},
		{Name: "arg2", Optional: true, Default: []string{"bar"}},
		{Name: "arg3", Optional: true, Default: []string{"baz"}},
		{Name: "arg4", Optional: true},
	}
	if !reflect.DeepEqual(specs, want) {
		t.Errorf("expected %+v, got %+v", want, specs)
	}
}

func TestCanonicalize_Ordering(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []Arg
		wantErr error
	}{
		{name: "required after default", args: Sigils("foo=123", "bar"), wantErr: ErrInvalidArgumentOrder},
		{name: "required after optional", args: Sigils("[foo]", "bar"), wantErr: ErrInvalidArgumentOrder},
		{name: "rest first", args: Sigils("...foo", "bar"), wantErr: ErrInvalidRestPosition},
		{name: "optional rest in the middle", args: Sigils("foo", "[...bar]", "[baz]"), wantErr: ErrInvalidRestPosition},
		{name: "duplicate names", args: Sigils("foo", "[foo]"), wantErr: ErrDuplicateArgument},
		{name: "nil argument", args: []Arg{nil}, wantErr: ErrInvalidArgumentSpec},
		{name: "required rest after optional", args: Sigils("[foo]", "...bar")},
		{name: "all kinds", args: Sigils("a", "[b]", "c=1", "[...d]")},
		{name: "empty", args: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Canonicalize(tt.args)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestOrderError_Details(t *testing.T) {
	t.Parallel()

	_, err := Canonicalize(Sigils("a", "[b]", "c"))
	var orderErr *OrderError
	if !errors.As(err, &orderErr) {
		t.Fatalf("expected *OrderError, got %T", err)
	}
	if orderErr.Name != "c" || orderErr.After != "b" || orderErr.Index != 2 {
		t.Errorf("unexpected details: %+v", orderErr)
	}
}

func TestString(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"foo":            "<foo>",
		"[foo]":          "[foo]",
		"bar=123":        "[bar=123]",
		"...bar":         "<...bar>",
		"[...bar]":       "[...bar]",
		"[...bar=baz]":   "[...bar=baz]",
		"[name=default]": "[name=default]",
	}
	for raw, want := range tests {
		spec, err := Parse(raw)
		if err != nil {
			t.Fatalf("Parse(%q): %v", raw, err)
		}
		if got := spec.String(); got != want {
			t.Errorf("Parse(%q).String() = %q, want %q", raw, got, want)
		}
	}

	specs, _ := Canonicalize(Sigils("foo", "bar=123"))
	if got := Usage(specs); got != "<foo> [bar=123]" {
		t.Errorf("unexpected usage %q", got)
	}
}
