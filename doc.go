// Package optout renders validated command-line arguments from a map of
// named values. It is the inverse of an option parser: a schema declares,
// once, the recognized keys with their switch tokens, validation rules,
// defaults, ordering and multiplicity, and each render call turns an input
// map into an exec-ready argv slice or a shell-quoted string.
//
//	reg := optout.New()
//	reg.On("jobs", "-j", regexp.MustCompile(`^\d+$`))
//	reg.On("output", "-o", pathcheck.File().Named(regexp.MustCompile(`\.tar\.gz$`)))
//	reg.On("verbose", "-v", optout.Boolean)
//
//	argv, err := reg.Argv(map[string]any{"jobs": 4, "output": "/tmp/b.tar.gz", "verbose": true})
//	// ["-j", "4", "-o", "/tmp/b.tar.gz", "-v"]
//
//	line, err := reg.Shell(map[string]any{"jobs": 4, "output": "/tmp/b.tar.gz"})
//	// -j '4' -o '/tmp/b.tar.gz'
//
// Validation failures abort the whole render with a typed error; no
// partial output is ever produced.
package optout
