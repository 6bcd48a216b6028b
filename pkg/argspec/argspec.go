// SPDX-License-Identifier: MPL-2.0

package argspec

import (
	"slices"
	"strings"
)

const (
	restPrefix     = "..."
	defaultMarker  = "="
	forbiddenChars = "[]<>= \t\n"
)

type (
	// Spec is the canonical form of one positional argument.
	Spec struct {
		// Name keys the parsed value.
		Name string
		// Optional arguments may be left unsupplied.
		Optional bool
		// Rest arguments consume every remaining raw value. Only the last argument may be rest.
		Rest bool
		// Default is nil when the argument has no default. A non-rest argument
		// holds exactly one value; a rest argument holds its default list.
		Default []string
	}

	// Arg is anything that describes an argument: a Sigil or a Spec.
	Arg interface {
		canonical() (Spec, error)
	}

	// Sigil is the string form of an argument: "name", "[name]", "name=value",
	// "...name", and combinations such as "[...name=value]".
	Sigil string
)

func (s Sigil) canonical() (Spec, error) { return Parse(string(s)) }

func (s Spec) canonical() (Spec, error) { return s.Normalize() }

// Sigils converts raw strings into arguments.
func Sigils(raw ...string) []Arg {
	args := make([]Arg, len(raw))
	for i, r := range raw {
		args[i] = Sigil(r)
	}
	return args
}

// Parse turns a sigil into a Spec. The enclosing brackets are stripped first,
// then the "=value" suffix, then the "..." prefix. A default captured before a
// rest marker becomes a single-element default list.
func Parse(raw string) (Spec, error) {
	var spec Spec
	s := raw
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") && len(s) >= 2 {
		s = s[1 : len(s)-1]
		spec.Optional = true
	}
	if name, value, found := strings.Cut(s, defaultMarker); found {
		s = name
		spec.Default = []string{value}
		spec.Optional = true
	}
	if rest, ok := strings.CutPrefix(s, restPrefix); ok {
		s = rest
		spec.Rest = true
	}
	spec.Name = s

	if err := spec.checkName(); err != nil {
		return Spec{}, &InvalidSpecError{Raw: raw, Reason: err.Reason}
	}
	return spec, nil
}

// Normalize validates a shape-form Spec and fills the implied flags: a default
// makes the argument optional.
func (s Spec) Normalize() (Spec, error) {
	if err := s.checkName(); err != nil {
		return Spec{}, err
	}
	if !s.Rest && len(s.Default) > 1 {
		return Spec{}, &InvalidSpecError{Raw: s.Name, Reason: "only rest arguments accept a default list"}
	}
	out := s
	out.Default = slices.Clone(s.Default)
	if out.Default != nil {
		out.Optional = true
	}
	return out, nil
}

func (s Spec) checkName() *InvalidSpecError {
	switch {
	case s.Name == "":
		return &InvalidSpecError{Raw: s.Name, Reason: "empty name"}
	case strings.HasPrefix(s.Name, restPrefix):
		return &InvalidSpecError{Raw: s.Name, Reason: "name cannot start with " + restPrefix}
	case strings.ContainsAny(s.Name, forbiddenChars):
		return &InvalidSpecError{Raw: s.Name, Reason: "name contains reserved characters"}
	}
	return nil
}

// HasDefault reports whether the argument declares a default.
func (s Spec) HasDefault() bool {
	return s.Default != nil
}

// DefaultValue returns the single default of a non-rest argument.
func (s Spec) DefaultValue() (string, bool) {
	if len(s.Default) == 0 {
		return "", false
	}
	return s.Default[0], true
}

// String renders the argument as a usage token: "<name>", "[name]",
// "[name=value]", "<...name>" or "[...name]".
func (s Spec) String() string {
	var b strings.Builder
	if s.Rest {
		b.WriteString(restPrefix)
	}
	b.WriteString(s.Name)
	if s.Default != nil {
		b.WriteString(defaultMarker)
		b.WriteString(strings.Join(s.Default, ","))
	}
	if s.Optional || s.Default != nil {
		return "[" + b.String() + "]"
	}
	return "<" + b.String() + ">"
}

// Canonicalize converts each argument to its Spec and validates the ordering.
func Canonicalize(args []Arg) ([]Spec, error) {
	specs := make([]Spec, 0, len(args))
	for _, a := range args {
		if a == nil {
			return nil, &InvalidSpecError{Reason: "nil argument"}
		}
		spec, err := a.canonical()
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	if err := ValidateOrdering(specs); err != nil {
		return nil, err
	}
	return specs, nil
}

// ValidateOrdering checks that names are unique, that only the last argument
// is rest, and that no required argument follows an optional or defaulted one.
func ValidateOrdering(specs []Spec) error {
	seen := make(map[string]struct{}, len(specs))
	firstOptional := ""
	for i, s := range specs {
		if _, dup := seen[s.Name]; dup {
			return &DuplicateArgumentError{Name: s.Name}
		}
		seen[s.Name] = struct{}{}

		if s.Rest && i != len(specs)-1 {
			return &RestPositionError{Name: s.Name, Index: i}
		}
		optional := s.Optional || s.Default != nil
		if !optional && !s.Rest && firstOptional != "" {
			return &OrderError{Name: s.Name, Index: i, After: firstOptional}
		}
		if optional && firstOptional == "" {
			firstOptional = s.Name
		}
	}
	return nil
}

// Usage renders specs as space separated usage tokens.
func Usage(specs []Spec) string {
	tokens := make([]string, len(specs))
	for i, s := range specs {
		tokens[i] = s.String()
	}
	return strings.Join(tokens, " ")
}
