// Package shellquote quotes single argument values for inclusion in a
// command line handed to a shell.
package shellquote

import "strings"

// Style selects the quoting dialect. It is an explicit parameter rather
// than being sniffed from the host platform so rendering is deterministic
// regardless of where it runs.
type Style int

const (
	// POSIX wraps values in single quotes, escaping embedded single
	// quotes with the standard '\'' trick. This is exact for any
	// POSIX-compatible shell.
	POSIX Style = iota

	// Batch wraps values in double quotes with embedded double quotes
	// backslash-escaped. cmd.exe quoting rules are not fully regular, so
	// this is a best effort, not a guarantee.
	Batch
)

// String returns the conventional name of the style.
func (s Style) String() string {
	switch s {
	case Batch:
		return "batch"
	default:
		return "posix"
	}
}

// ParseStyle maps a conventional name back to a Style.
func ParseStyle(name string) (Style, bool) {
	switch strings.ToLower(name) {
	case "", "posix":
		return POSIX, true
	case "batch", "windows":
		return Batch, true
	}
	return POSIX, false
}

// Quote returns v quoted in the given style. The value is always quoted,
// even when it contains no characters the shell treats specially; callers
// that want unquoted output should not call Quote at all.
func Quote(v string, style Style) string {
	if style == Batch {
		return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
	}
	return `'` + strings.ReplaceAll(v, `'`, `'\''`) + `'`
}
