package validate

import "fmt"

// ConfigError reports a schema mistake: a rule nothing knows how to
// validate with, or a malformed option declaration.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// RequiredError reports a required option whose value was absent or empty.
type RequiredError struct {
	Key string
}

func (e *RequiredError) Error() string {
	return fmt.Sprintf("option '%s' required", e.Key)
}

// InvalidError reports a value that failed one of its option's validators.
type InvalidError struct {
	Key    string
	Reason string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("option '%s': %s", e.Key, e.Reason)
}
