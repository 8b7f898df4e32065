// Package schemafile loads an option schema from a YAML document and
// builds the registry it describes.
package schemafile

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"

	"github.com/sshaw/optout"
	"github.com/sshaw/optout/pathcheck"
	"github.com/sshaw/optout/shellquote"
)

// Document is the top level of a schema file.
type Document struct {
	// CheckKeys toggles unknown-key rejection; enabled when omitted.
	CheckKeys *bool `json:"check_keys"`
	// Quoting is the shell quoting style: "posix" (default) or "batch".
	Quoting string `json:"quoting" validate:"omitempty,oneof=posix batch windows"`
	// Defaults every declared option inherits unless it overrides them.
	Defaults Defaults `json:"defaults"`
	Options  []Option `json:"options" validate:"required,min=1,dive"`
}

type Defaults struct {
	Required     *bool       `json:"required"`
	Multiple     interface{} `json:"multiple"`
	ArgSeparator *string     `json:"arg_separator"`
}

// Option declares a single key. At most one of Pattern, OneOf, Boolean and
// Path may be set.
type Option struct {
	Key       string      `json:"key" validate:"required"`
	Switch    string      `json:"switch"`
	Separator *string     `json:"separator"`
	Default   interface{} `json:"default"`
	Index     *int        `json:"index"`
	Required  *bool       `json:"required"`
	Multiple  interface{} `json:"multiple"` // bool, or a join string

	Pattern string        `json:"pattern"`
	OneOf   []interface{} `json:"one_of"`
	Boolean bool          `json:"boolean"`
	Path    *Path         `json:"path"`
}

// Path declares file or directory rules for a path-valued option. The
// *Pattern fields are regular expressions; their plain counterparts match
// exactly. Setting both forms of the same rule keeps the pattern.
type Path struct {
	Kind         string `json:"kind" validate:"required,oneof=file dir directory"`
	Under        string `json:"under"`
	UnderPattern string `json:"under_pattern"`
	Named        string `json:"named"`
	NamedPattern string `json:"named_pattern"`
	Permissions  string `json:"permissions"`
	Exists       bool   `json:"exists"`
}

// Validate the document for structural errors before building.
func (d *Document) Validate() error {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return v.Struct(d)
}

// Load reads, validates and builds a schema from the filesystem.
func Load(fsys afero.Fs, path string) (*optout.Registry, error) {
	contents, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, err
	}

	var doc Document
	if err := yaml.UnmarshalStrict(contents, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %v", path, err)
	}
	return Build(&doc, fsys)
}

// Build turns a validated document into a registry. Path rules stat
// against the given filesystem.
func Build(doc *Document, fsys afero.Fs) (*optout.Registry, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	cfg := []optout.Config{}
	if doc.CheckKeys != nil {
		cfg = append(cfg, optout.CheckKeys(*doc.CheckKeys))
	}
	style, ok := shellquote.ParseStyle(doc.Quoting)
	if !ok {
		return nil, fmt.Errorf("unknown quoting style %q", doc.Quoting)
	}
	cfg = append(cfg, optout.Quoting(style))

	if doc.Defaults.Required != nil {
		cfg = append(cfg, optout.DefaultRequired(*doc.Defaults.Required))
	}
	if doc.Defaults.Multiple != nil {
		cfg = append(cfg, optout.DefaultMultiple(doc.Defaults.Multiple))
	}
	if doc.Defaults.ArgSeparator != nil {
		cfg = append(cfg, optout.DefaultArgSeparator(*doc.Defaults.ArgSeparator))
	}

	reg := optout.New(cfg...)
	for _, o := range doc.Options {
		args, err := optionArgs(&o, fsys)
		if err != nil {
			return nil, err
		}
		if err := reg.On(o.Key, args...); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func optionArgs(o *Option, fsys afero.Fs) ([]any, error) {
	var args []any
	if o.Switch != "" {
		args = append(args, o.Switch)
	}

	settings := optout.Settings{
		Required:     o.Required,
		Multiple:     o.Multiple,
		Default:      o.Default,
		ArgSeparator: o.Separator,
		Index:        o.Index,
	}
	args = append(args, settings)

	rule, err := optionRule(o, fsys)
	if err != nil {
		return nil, err
	}
	if rule != nil {
		args = append(args, rule)
	}
	return args, nil
}

func optionRule(o *Option, fsys afero.Fs) (any, error) {
	var rules []any
	if o.Pattern != "" {
		re, err := regexp.Compile(o.Pattern)
		if err != nil {
			return nil, fmt.Errorf("option '%s': bad pattern: %v", o.Key, err)
		}
		rules = append(rules, re)
	}
	if o.OneOf != nil {
		rules = append(rules, o.OneOf)
	}
	if o.Boolean {
		rules = append(rules, optout.Boolean)
	}
	if o.Path != nil {
		pr, err := pathRules(o.Key, o.Path, fsys)
		if err != nil {
			return nil, err
		}
		rules = append(rules, pr)
	}

	switch len(rules) {
	case 0:
		return nil, nil
	case 1:
		return rules[0], nil
	}
	return nil, fmt.Errorf("option '%s': more than one validation rule", o.Key)
}

func pathRules(key string, p *Path, fsys afero.Fs) (*pathcheck.Rules, error) {
	var r *pathcheck.Rules
	if p.Kind == "file" {
		r = pathcheck.File()
	} else {
		r = pathcheck.Dir()
	}
	r.FS(fsys)

	if p.UnderPattern != "" {
		re, err := regexp.Compile(p.UnderPattern)
		if err != nil {
			return nil, fmt.Errorf("option '%s': bad under_pattern: %v", key, err)
		}
		r.Under(re)
	} else if p.Under != "" {
		r.Under(p.Under)
	}

	if p.NamedPattern != "" {
		re, err := regexp.Compile(p.NamedPattern)
		if err != nil {
			return nil, fmt.Errorf("option '%s': bad named_pattern: %v", key, err)
		}
		r.Named(re)
	} else if p.Named != "" {
		r.Named(p.Named)
	}

	if p.Permissions != "" {
		if strings.Trim(p.Permissions, "rwx") != "" {
			return nil, fmt.Errorf("option '%s': permissions must only contain r, w or x", key)
		}
		r.Permissions(p.Permissions)
	}
	if p.Exists {
		r.Exists()
	}
	return r, nil
}
