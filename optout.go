package optout

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/sshaw/optout/shellquote"
	"github.com/sshaw/optout/validate"
)

// Boolean marks an option as a bare flag whose value may only be true,
// false, or absent.
var Boolean = validate.Boolean

// Registry accumulates option specs and renders input maps against them.
// Build the schema once, then render as many times as needed; bound values
// never outlive a single render call.
type Registry struct {
	specs map[string]*spec
	order []*spec

	checkKeys bool
	style     shellquote.Style

	// defaults inherited by every subsequently declared option
	defRequired bool
	defMultiple any
	defSep      string

	// non-nil inside a Required/Optional grouping block
	forceRequired *bool
}

// Config adjusts a Registry at construction time.
type Config func(*Registry)

// CheckKeys controls whether input keys not declared in the schema fail
// the render. Enabled unless turned off.
func CheckKeys(on bool) Config {
	return func(r *Registry) { r.checkKeys = on }
}

// Quoting selects the shell quoting style used by Shell.
func Quoting(style shellquote.Style) Config {
	return func(r *Registry) { r.style = style }
}

// DefaultRequired seeds the requiredness every declared option inherits
// unless overridden per option.
func DefaultRequired(required bool) Config {
	return func(r *Registry) { r.defRequired = required }
}

// DefaultMultiple seeds the multiplicity policy (bool, or a join string)
// every declared option inherits unless overridden per option.
func DefaultMultiple(multiple any) Config {
	return func(r *Registry) { r.defMultiple = multiple }
}

// DefaultArgSeparator seeds the switch/value separator every declared
// option inherits unless overridden per option.
func DefaultArgSeparator(sep string) Config {
	return func(r *Registry) { r.defSep = sep }
}

// New returns an empty registry. Key checking is on and quoting is POSIX
// unless configured otherwise.
func New(opts ...Config) *Registry {
	r := &Registry{
		specs:     make(map[string]*spec),
		checkKeys: true,
		style:     shellquote.POSIX,
		defSep:    " ",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetQuoting changes the shell quoting style after construction, letting a
// caller override the style a schema document was built with.
func (r *Registry) SetQuoting(style shellquote.Style) {
	r.style = style
}

// Settings carries the per-option configuration accepted by On. Pointer
// fields distinguish "unset" from an explicit zero; unset fields fall back
// to the registry defaults.
type Settings struct {
	Required     *bool
	Multiple     any // bool, or a string used to join collection values
	Default      any
	ArgSeparator *string
	Index        *int
}

// On declares an option. Beyond the key, the arguments may contain at most
// one string (the switch token emitted before the value), one Settings
// value, and one validation rule — anything that is neither a string nor a
// Settings. Rules are resolved immediately, so a rule nothing knows how to
// validate with fails here rather than at first render.
func (r *Registry) On(key string, args ...any) error {
	k := normalizeKey(key)
	if k == "" {
		return &ConfigError{Message: "option key required"}
	}
	if _, dup := r.specs[k]; dup {
		return &ConfigError{Message: fmt.Sprintf("option '%s' already defined", k)}
	}

	var (
		sw       string
		settings Settings
		rule     any
		haveRule bool
	)
	for _, a := range args {
		switch v := a.(type) {
		case string:
			if sw != "" {
				return &ConfigError{Message: fmt.Sprintf("option '%s': multiple switch tokens", k)}
			}
			sw = v
		case Settings:
			settings = v
		case *Settings:
			settings = *v
		default:
			if haveRule {
				return &ConfigError{Message: fmt.Sprintf("option '%s': multiple validation rules", k)}
			}
			rule = v
			haveRule = true
		}
	}

	s := &spec{key: k, sw: sw, sep: r.defSep, required: r.defRequired}

	multiple := r.defMultiple
	if settings.Multiple != nil {
		multiple = settings.Multiple
	}
	var err error
	if s.multiOK, s.joinWith, err = resolveMultiple(k, multiple); err != nil {
		return err
	}

	if settings.Required != nil {
		s.required = *settings.Required
	}
	if r.forceRequired != nil {
		s.required = *r.forceRequired
	}
	if settings.ArgSeparator != nil {
		s.sep = *settings.ArgSeparator
	}
	s.def = settings.Default

	s.index = len(r.order) // declaration order unless overridden
	if settings.Index != nil {
		s.index = *settings.Index
	}

	if haveRule {
		if s.validator, err = validate.For(rule); err != nil {
			return err
		}
	}

	r.specs[k] = s
	r.order = append(r.order, s)
	return nil
}

// Required declares a batch of options that are all required, overriding
// any per-option setting made inside the block.
func (r *Registry) Required(fn func(*Registry)) {
	r.group(true, fn)
}

// Optional declares a batch of options that are all optional, overriding
// any per-option setting made inside the block.
func (r *Registry) Optional(fn func(*Registry)) {
	r.group(false, fn)
}

func (r *Registry) group(required bool, fn func(*Registry)) {
	prev := r.forceRequired
	r.forceRequired = &required
	defer func() { r.forceRequired = prev }()
	fn(r)
}

// Argv validates the input map and renders it as a flat, exec-ready
// argument vector. Values are never quoted. Any validation failure aborts
// the call; no partial output is returned.
func (r *Registry) Argv(input any) ([]string, error) {
	bound, err := r.bind(input)
	if err != nil {
		return nil, err
	}

	var argv []string
	for _, b := range bound {
		argv = append(argv, b.argv()...)
	}
	return argv, nil
}

// Shell validates the input map and renders it as a single shell-ready
// string, with every value quoted in the registry's quoting style.
func (r *Registry) Shell(input any) (string, error) {
	bound, err := r.bind(input)
	if err != nil {
		return "", err
	}

	var parts []string
	for _, b := range bound {
		if s := b.shell(r.style); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " "), nil
}

// bind pops each declared key out of the input, validates the bound
// values, rejects surplus keys, and returns the non-empty options ordered
// by index (declaration order breaking ties).
func (r *Registry) bind(input any) ([]*boundOption, error) {
	m, err := toMap(input)
	if err != nil {
		return nil, err
	}

	var bound []*boundOption
	for _, s := range r.order {
		value := m[s.key]
		delete(m, s.key)

		b := newBound(s, value)
		if err := b.validateValue(); err != nil {
			return nil, err
		}
		if !b.Empty() {
			bound = append(bound, b)
		}
	}

	if r.checkKeys && len(m) > 0 {
		surplus := make([]string, 0, len(m))
		for k := range m {
			surplus = append(surplus, k)
		}
		sort.Strings(surplus)
		return nil, &UnknownOptionError{Key: surplus[0]}
	}

	sort.SliceStable(bound, func(i, j int) bool {
		return bound[i].spec.index < bound[j].spec.index
	})
	return bound, nil
}

// toMap copies any map with string-convertible keys into a working map
// with normalized keys. Non-map input is rejected.
func toMap(input any) (map[string]any, error) {
	rv := reflect.ValueOf(input)
	if !rv.IsValid() || rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, &InvalidInputError{Got: input}
	}

	out := make(map[string]any, rv.Len())
	for _, k := range rv.MapKeys() {
		out[normalizeKey(k.String())] = rv.MapIndex(k).Interface()
	}
	return out, nil
}

// normalizeKey folds the string and symbolic spellings of a key together:
// ":verbose", "Verbose" and "verbose" all name the same option.
func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(key), ":"))
}

func resolveMultiple(key string, multiple any) (ok bool, join string, err error) {
	switch v := multiple.(type) {
	case nil:
		return false, ",", nil
	case bool:
		return v, ",", nil
	case string:
		return true, v, nil
	}
	return false, "", &ConfigError{Message: fmt.Sprintf("option '%s': multiple must be a bool or a join string", key)}
}

// elements returns the elements of a slice or array value, nil otherwise.
func elements(v any) []any {
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
