package optout

import (
	"fmt"
	"strings"

	"github.com/sshaw/optout/shellquote"
	"github.com/sshaw/optout/validate"
)

// spec is the immutable per-key declaration accumulated by the registry.
type spec struct {
	key      string
	sw       string // switch token, "" means value-only
	sep      string // between switch and value
	def      any
	index    int
	required bool
	multiOK  bool
	joinWith string // glue for collection values

	// at most one declared rule validator, resolved at registration
	validator validate.Validator
}

// boundOption pairs a spec with one invocation's resolved value. It is
// created fresh inside a single render call and discarded afterwards.
type boundOption struct {
	spec  *spec
	value any
}

func newBound(s *spec, value any) *boundOption {
	b := &boundOption{spec: s, value: value}
	if b.Empty() && s.def != nil {
		b.value = s.def
	}
	return b
}

func (b *boundOption) Key() string      { return b.spec.key }
func (b *boundOption) Value() any       { return b.value }
func (b *boundOption) Required() bool   { return b.spec.required }
func (b *boundOption) MultipleOK() bool { return b.spec.multiOK }

// Arg normalizes the value to a single token, joining collection elements
// with the spec's join string.
func (b *boundOption) Arg() string {
	if b.value == nil {
		return ""
	}
	if values := elements(b.value); values != nil {
		parts := make([]string, len(values))
		for i, v := range values {
			parts[i] = fmt.Sprint(v)
		}
		return strings.Join(parts, b.spec.joinWith)
	}
	return fmt.Sprint(b.value)
}

// Empty reports whether the option contributes nothing to the output:
// nil, false, or a value that stringifies to "".
func (b *boundOption) Empty() bool {
	switch v := b.value.(type) {
	case nil:
		return true
	case bool:
		return !v
	default:
		return b.Arg() == ""
	}
}

// validateValue runs the option's chain: the required check first, then,
// only for non-empty values, the multiplicity check and the declared rule.
func (b *boundOption) validateValue() error {
	if err := (validate.Required{}).Validate(b); err != nil {
		return err
	}
	if b.Empty() {
		return nil
	}
	if err := (validate.Multiple{}).Validate(b); err != nil {
		return err
	}
	if b.spec.validator != nil {
		return b.spec.validator.Validate(b)
	}
	return nil
}

// argv renders the option as exec-ready tokens, never quoted. A boolean
// true renders as the bare switch. A whitespace separator keeps switch and
// value as two tokens; any other separator glues them into one.
func (b *boundOption) argv() []string {
	sw := b.spec.sw
	if v, ok := b.value.(bool); ok && v {
		if sw == "" {
			return nil
		}
		return []string{sw}
	}

	val := b.Arg()
	if sw == "" {
		return []string{val}
	}

	sep := b.spec.sep
	switch {
	case sep == "":
		return []string{sw + val}
	case strings.TrimSpace(sep) == "":
		return []string{sw, val}
	default:
		return []string{sw + sep + val}
	}
}

// shell renders the option for a shell command line. The value component
// is always quoted in the given style; the switch never is.
func (b *boundOption) shell(style shellquote.Style) string {
	sw := b.spec.sw
	if v, ok := b.value.(bool); ok && v {
		return sw
	}

	quoted := shellquote.Quote(b.Arg(), style)
	if sw == "" {
		return quoted
	}
	return sw + b.spec.sep + quoted
}

var _ validate.Bound = (*boundOption)(nil)
