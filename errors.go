package optout

import (
	"fmt"

	"github.com/sshaw/optout/validate"
)

// ConfigError reports a mistake in the schema itself, raised while the
// schema is being built, never at render time.
type ConfigError = validate.ConfigError

// OptionRequiredError reports a required option missing from the input.
type OptionRequiredError = validate.RequiredError

// OptionInvalidError reports a value that failed validation, with a
// human-readable reason.
type OptionInvalidError = validate.InvalidError

// UnknownOptionError reports an input key not declared in the schema.
// Only raised when key checking is enabled.
type UnknownOptionError struct {
	Key string
}

func (e *UnknownOptionError) Error() string {
	return fmt.Sprintf("unknown option '%s'", e.Key)
}

// InvalidInputError reports that the rendered input was not a map with
// string-convertible keys.
type InvalidInputError struct {
	Got any
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input (%T)", e.Got)
}
