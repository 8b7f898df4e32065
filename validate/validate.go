// Package validate holds the validator contract applied to bound options
// and the dispatch that turns a declared rule into a concrete validator.
package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

// Bound is the view of a bound option a validator sees. It is implemented
// by the option type in the root package; validators never mutate it.
type Bound interface {
	// Key returns the option's normalized identifier.
	Key() string
	// Value returns the resolved raw value (input value or spec default).
	Value() any
	// Arg returns the value normalized to a single token, with collection
	// elements already joined.
	Arg() string
	// Empty reports whether the value is nil, false, or stringifies to "".
	Empty() bool
	// Required reports the spec's requiredness policy.
	Required() bool
	// MultipleOK reports whether the spec allows multi-element values.
	MultipleOK() bool
}

// Validator checks one bound option, returning a typed error on violation
// and nil otherwise. Implementations must not have other observable
// effects.
type Validator interface {
	Validate(b Bound) error
}

// Boolean is the rule marker declaring that an option is a bare flag: its
// value may only ever be true, false, or absent.
var Boolean booleanRule

type booleanRule struct{}

// For resolves a declared rule into a validator:
//
//   - anything already implementing Validator is returned unchanged
//   - *regexp.Regexp: the stringified value must match
//   - a slice or array: set membership over its elements
//   - reflect.Type: the value must be of that type
//   - Boolean: the option takes no argument
//
// Any other rule is a configuration error.
func For(rule any) (Validator, error) {
	switch r := rule.(type) {
	case Validator:
		return r, nil
	case *regexp.Regexp:
		return Pattern{Regexp: r}, nil
	case reflect.Type:
		return Type{Type: r}, nil
	case booleanRule:
		return Bool{}, nil
	}

	rv := reflect.ValueOf(rule)
	if rv.IsValid() && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) {
		allowed := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			allowed[i] = rv.Index(i).Interface()
		}
		return Set{Allowed: allowed}, nil
	}

	return nil, &ConfigError{Message: fmt.Sprintf("don't know how to validate with %v", rule)}
}

// Required fails when a required option has no usable value.
type Required struct{}

func (Required) Validate(b Bound) error {
	if b.Empty() && b.Required() {
		return &RequiredError{Key: b.Key()}
	}
	return nil
}

// Multiple rejects multi-element values on options that forbid them. A
// single-element collection is always acceptable.
type Multiple struct{}

func (Multiple) Validate(b Bound) error {
	if b.MultipleOK() {
		return nil
	}
	if len(elementsOf(b.Value())) > 1 {
		return &InvalidError{Key: b.Key(), Reason: "multiple values are not allowed"}
	}
	return nil
}

// Pattern matches the normalized value against a regular expression.
type Pattern struct {
	Regexp *regexp.Regexp
}

func (p Pattern) Validate(b Bound) error {
	if b.Empty() {
		return nil
	}
	if !p.Regexp.MatchString(b.Arg()) {
		return &InvalidError{Key: b.Key(), Reason: fmt.Sprintf("does not match pattern %s", p.Regexp)}
	}
	return nil
}

// Set requires every element of the value to be one of the allowed values.
type Set struct {
	Allowed []any
}

func (s Set) Validate(b Bound) error {
	if b.Empty() {
		return nil
	}

	values := elementsOf(b.Value())
	if values == nil {
		values = []any{b.Value()}
	}

	for _, v := range values {
		if !s.contains(v) {
			return &InvalidError{Key: b.Key(), Reason: fmt.Sprintf("value must be one of (%s)", s.allowedList())}
		}
	}
	return nil
}

func (s Set) contains(v any) bool {
	for _, a := range s.Allowed {
		if reflect.DeepEqual(a, v) {
			return true
		}
	}
	return false
}

func (s Set) allowedList() string {
	parts := make([]string, len(s.Allowed))
	for i, a := range s.Allowed {
		parts[i] = fmt.Sprint(a)
	}
	return strings.Join(parts, ", ")
}

// Type requires the value to be an instance of the declared type.
type Type struct {
	Type reflect.Type
}

func (t Type) Validate(b Bound) error {
	if b.Empty() {
		return nil
	}
	if got := reflect.TypeOf(b.Value()); got == nil || !got.AssignableTo(t.Type) {
		return &InvalidError{Key: b.Key(), Reason: fmt.Sprintf("must be type %s", t.Type)}
	}
	return nil
}

// Bool requires the value to be exactly true, false, or absent: the option
// is a presence flag and takes no argument.
type Bool struct{}

func (Bool) Validate(b Bound) error {
	switch b.Value().(type) {
	case bool, nil:
		return nil
	}
	return &InvalidError{Key: b.Key(), Reason: "does not accept an argument"}
}

// elementsOf returns the elements of a slice or array value, nil for
// scalars.
func elementsOf(v any) []any {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out
}
