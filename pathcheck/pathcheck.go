// Package pathcheck validates filesystem-valued options against a small,
// chainable rule set: containment, basename, permission bits, existence,
// and creatability.
package pathcheck

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"

	"github.com/spf13/afero"

	"github.com/sshaw/optout/validate"
)

type kind int

const (
	kindFile kind = iota
	kindDir
)

func (k kind) String() string {
	if k == kindDir {
		return "directory"
	}
	return "file"
}

// Rules is a mutable rule set for a path-valued option. Each chained call
// mutates and returns the same set, so rules compose left to right; setting
// the same rule twice keeps only the last value. Rules implements
// validate.Validator.
type Rules struct {
	kind  kind
	fs    afero.Fs
	under any // string or *regexp.Regexp
	named any // string or *regexp.Regexp
	perms string
	want  bool // existence requested
}

// File returns a rule set constrained to regular files.
func File() *Rules {
	return &Rules{kind: kindFile, fs: afero.NewOsFs()}
}

// Dir returns a rule set constrained to directories.
func Dir() *Rules {
	return &Rules{kind: kindDir, fs: afero.NewOsFs()}
}

// FS swaps the filesystem the rules stat against. Checks run against the
// OS filesystem unless told otherwise; tests hand in a MemMapFs.
func (r *Rules) FS(fsys afero.Fs) *Rules {
	r.fs = fsys
	return r
}

// Under constrains the path's parent directory: a string must equal the
// resolved parent exactly, a *regexp.Regexp must match it.
func (r *Rules) Under(pathOrPattern any) *Rules {
	r.under = pathOrPattern
	return r
}

// Named constrains the path's basename: a string must equal it exactly, a
// *regexp.Regexp must match it.
func (r *Rules) Named(nameOrPattern any) *Rules {
	r.named = nameOrPattern
	return r
}

// Permissions requires the given user permission letters, any combination
// of "r", "w" and "x", to be set on the path. Vacuous when the path does
// not exist.
func (r *Rules) Permissions(mode string) *Rules {
	r.perms = mode
	return r
}

// Exists requires the path to exist as the rule set's kind.
func (r *Rules) Exists() *Rules {
	r.want = true
	return r
}

// Validate runs the rules against the bound option's value in a fixed
// order, reporting only the first violation. Empty values are not checked.
func (r *Rules) Validate(b validate.Bound) error {
	if b.Empty() {
		return nil
	}

	path := b.Arg()
	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err == nil {
			path = abs
		}
	}

	info, statErr := r.fs.Stat(path)
	exists := statErr == nil
	rightKind := exists && (r.kind == kindDir) == info.IsDir()

	if err := r.checkUnder(b, path); err != nil {
		return err
	}
	if err := r.checkNamed(b, path); err != nil {
		return err
	}
	if exists {
		if err := r.checkPermissions(b, info.Mode()); err != nil {
			return err
		}
	}

	if r.want {
		if !rightKind {
			return &validate.InvalidError{Key: b.Key(), Reason: "does not exist"}
		}
		return nil
	}
	if rightKind {
		return nil
	}
	return r.checkCreatable(b, path, exists)
}

func (r *Rules) checkUnder(b validate.Bound, path string) error {
	parent := filepath.Dir(path)
	switch u := r.under.(type) {
	case nil:
		return nil
	case *regexp.Regexp:
		if u.MatchString(parent) {
			return nil
		}
	case string:
		if parent == filepath.Clean(u) {
			return nil
		}
	}
	return &validate.InvalidError{Key: b.Key(), Reason: fmt.Sprintf("must be under '%v'", r.under)}
}

func (r *Rules) checkNamed(b validate.Bound, path string) error {
	base := filepath.Base(path)
	switch n := r.named.(type) {
	case nil:
		return nil
	case *regexp.Regexp:
		if n.MatchString(base) {
			return nil
		}
	case string:
		if base == n {
			return nil
		}
	}
	return &validate.InvalidError{Key: b.Key(), Reason: fmt.Sprintf("name must match '%v'", r.named)}
}

func (r *Rules) checkPermissions(b validate.Bound, mode fs.FileMode) error {
	for _, c := range r.perms {
		var bit fs.FileMode
		switch c {
		case 'r':
			bit = 0400
		case 'w':
			bit = 0200
		case 'x':
			bit = 0100
		default:
			return &validate.ConfigError{Message: fmt.Sprintf("unknown permission %q", string(c))}
		}
		if mode&bit == 0 {
			return &validate.InvalidError{Key: b.Key(), Reason: fmt.Sprintf("must have user permission of %s", r.perms)}
		}
	}
	return nil
}

// checkCreatable is the fallback when existence was not requested and the
// path is missing or the wrong kind: the parent directory must exist and
// be writable.
func (r *Rules) checkCreatable(b validate.Bound, path string, exists bool) error {
	reason := fmt.Sprintf("can't create a %s at '%s'", r.kind, path)
	if exists { // present, but the wrong kind
		return &validate.InvalidError{Key: b.Key(), Reason: reason}
	}

	parent, err := r.fs.Stat(filepath.Dir(path))
	if err != nil || !parent.IsDir() || parent.Mode()&0200 == 0 {
		return &validate.InvalidError{Key: b.Key(), Reason: reason}
	}
	return nil
}
