package optout

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"testing"

	"github.com/anmitsu/go-shlex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sshaw/optout/shellquote"
	"github.com/sshaw/optout/validate"
)

func ptr[T any](v T) *T { return &v }

func TestFlagTrue(t *testing.T) {
	reg := New()
	require.NoError(t, reg.On("x", "-x"))

	argv, err := reg.Argv(map[string]any{"x": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"-x"}, argv)

	line, err := reg.Shell(map[string]any{"x": true})
	require.NoError(t, err)
	assert.Equal(t, "-x", line)
}

func TestFlagFalse(t *testing.T) {
	reg := New()
	require.NoError(t, reg.On("x", "-x"))

	argv, err := reg.Argv(map[string]any{"x": false})
	require.NoError(t, err)
	assert.Empty(t, argv)

	line, err := reg.Shell(map[string]any{"x": false})
	require.NoError(t, err)
	assert.Equal(t, "", line)
}

func TestArgSeparator(t *testing.T) {
	reg := New()
	require.NoError(t, reg.On("x", "-x", Settings{ArgSeparator: ptr("=")}))

	argv, err := reg.Argv(map[string]any{"x": "v"})
	require.NoError(t, err)
	assert.Equal(t, []string{"-x=v"}, argv)

	line, err := reg.Shell(map[string]any{"x": "v"})
	require.NoError(t, err)
	assert.Equal(t, "-x='v'", line)
}

func TestEmptySeparatorConcatenates(t *testing.T) {
	reg := New()
	require.NoError(t, reg.On("x", "-x", Settings{ArgSeparator: ptr("")}))

	argv, err := reg.Argv(map[string]any{"x": "v"})
	require.NoError(t, err)
	assert.Equal(t, []string{"-xv"}, argv)

	line, err := reg.Shell(map[string]any{"x": "v"})
	require.NoError(t, err)
	assert.Equal(t, "-x'v'", line)
}

func TestMultipleValues(t *testing.T) {
	reg := New()
	require.NoError(t, reg.On("x", "-x", Settings{Multiple: true}))

	argv, err := reg.Argv(map[string]any{"x": []string{"a", "b", "c"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"-x", "a,b,c"}, argv)
}

func TestMultipleJoinString(t *testing.T) {
	reg := New()
	require.NoError(t, reg.On("x", "-x", Settings{Multiple: ":"}))

	argv, err := reg.Argv(map[string]any{"x": []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"-x", "a:b"}, argv)
}

func TestMultipleForbidden(t *testing.T) {
	reg := New()
	require.NoError(t, reg.On("x", "-x"))

	_, err := reg.Argv(map[string]any{"x": []string{"a", "b"}})
	var invErr *OptionInvalidError
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, "x", invErr.Key)
	assert.Contains(t, invErr.Reason, "multiple values are not allowed")

	// a single-element collection is always fine
	argv, err := reg.Argv(map[string]any{"x": []string{"a"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"-x", "a"}, argv)
}

func TestRequiredMissing(t *testing.T) {
	reg := New()
	require.NoError(t, reg.On("y", "-y", Settings{Required: ptr(true)}))

	_, err := reg.Argv(map[string]any{})
	var reqErr *OptionRequiredError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "y", reqErr.Key)

	// an empty value is as missing as an absent one
	_, err = reg.Shell(map[string]any{"y": ""})
	assert.ErrorAs(t, err, &reqErr)
}

func TestUnknownKey(t *testing.T) {
	reg := New()
	require.NoError(t, reg.On("x", "-x"))

	_, err := reg.Argv(map[string]any{"x": 1, "bad": 2})
	var unkErr *UnknownOptionError
	require.ErrorAs(t, err, &unkErr)
	assert.Equal(t, "bad", unkErr.Key)
}

func TestCheckKeysDisabled(t *testing.T) {
	reg := New(CheckKeys(false))
	require.NoError(t, reg.On("x", "-x"))

	argv, err := reg.Argv(map[string]any{"x": 1, "bad": 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"-x", "1"}, argv)
}

func TestKeySpellings(t *testing.T) {
	reg := New()
	require.NoError(t, reg.On(":Verbose", "-v"))

	argv, err := reg.Argv(map[string]any{"VERBOSE": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"-v"}, argv)

	// both spellings name the same option
	err = reg.On("verbose", "-v")
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Message, "already defined")
}

func TestMissingKey(t *testing.T) {
	reg := New()
	err := reg.On("")
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "option key required", cfgErr.Message)
}

func TestDefaultValue(t *testing.T) {
	reg := New()
	require.NoError(t, reg.On("x", "-x", Settings{Default: "d"}))

	for _, input := range []map[string]any{{}, {"x": ""}, {"x": nil}} {
		argv, err := reg.Argv(input)
		require.NoError(t, err)
		assert.Equal(t, []string{"-x", "d"}, argv)
	}

	argv, err := reg.Argv(map[string]any{"x": "v"})
	require.NoError(t, err)
	assert.Equal(t, []string{"-x", "v"}, argv)
}

func TestValueOnly(t *testing.T) {
	reg := New()
	require.NoError(t, reg.On("target"))

	argv, err := reg.Argv(map[string]any{"target": "a b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a b"}, argv)

	line, err := reg.Shell(map[string]any{"target": "a b"})
	require.NoError(t, err)
	assert.Equal(t, "'a b'", line)
}

func TestOrdering(t *testing.T) {
	reg := New()
	require.NoError(t, reg.On("a", "-a"))
	require.NoError(t, reg.On("b", "-b"))
	require.NoError(t, reg.On("c", "-c", Settings{Index: ptr(-1)}))

	argv, err := reg.Argv(map[string]any{"a": "1", "b": "2", "c": "3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"-c", "3", "-a", "1", "-b", "2"}, argv)
}

func TestOrderingTieBreak(t *testing.T) {
	reg := New()
	require.NoError(t, reg.On("a", "-a", Settings{Index: ptr(7)}))
	require.NoError(t, reg.On("b", "-b", Settings{Index: ptr(7)}))

	argv, err := reg.Argv(map[string]any{"b": "2", "a": "1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"-a", "1", "-b", "2"}, argv)
}

func TestIdempotence(t *testing.T) {
	reg := New()
	require.NoError(t, reg.On("a", "-a"))
	require.NoError(t, reg.On("b", "-b", Settings{Multiple: true}))

	input := map[string]any{"a": "1", "b": []string{"x", "y"}}

	first, err := reg.Argv(input)
	require.NoError(t, err)
	second, err := reg.Argv(input)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBooleanRule(t *testing.T) {
	reg := New()
	require.NoError(t, reg.On("v", "-v", Boolean))

	argv, err := reg.Argv(map[string]any{"v": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"-v"}, argv)

	_, err = reg.Argv(map[string]any{"v": "yes"})
	var invErr *OptionInvalidError
	require.ErrorAs(t, err, &invErr)
	assert.Contains(t, invErr.Reason, "does not accept an argument")
}

func TestPatternRule(t *testing.T) {
	reg := New()
	require.NoError(t, reg.On("jobs", "-j", regexp.MustCompile(`^\d+$`)))

	argv, err := reg.Argv(map[string]any{"jobs": 8})
	require.NoError(t, err)
	assert.Equal(t, []string{"-j", "8"}, argv)

	_, err = reg.Argv(map[string]any{"jobs": "all"})
	assert.Error(t, err)
}

func TestSetRule(t *testing.T) {
	reg := New()
	require.NoError(t, reg.On("mode", "-m", []string{"fast", "slow"}))

	_, err := reg.Argv(map[string]any{"mode": "medium"})
	var invErr *OptionInvalidError
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, "value must be one of (fast, slow)", invErr.Reason)
}

func TestTypeRule(t *testing.T) {
	reg := New()
	require.NoError(t, reg.On("count", "-n", reflect.TypeOf(0)))

	_, err := reg.Argv(map[string]any{"count": "seven"})
	var invErr *OptionInvalidError
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, "must be type int", invErr.Reason)
}

type evenOnly struct{}

func (evenOnly) Validate(b validate.Bound) error {
	n, err := strconv.Atoi(b.Arg())
	if err != nil || n%2 != 0 {
		return errors.New("must be even")
	}
	return nil
}

func TestCustomValidator(t *testing.T) {
	reg := New()
	require.NoError(t, reg.On("n", "-n", evenOnly{}))

	argv, err := reg.Argv(map[string]any{"n": 4})
	require.NoError(t, err)
	assert.Equal(t, []string{"-n", "4"}, argv)

	// custom errors propagate unchanged
	_, err = reg.Argv(map[string]any{"n": 3})
	assert.EqualError(t, err, "must be even")
}

func TestUnknownRule(t *testing.T) {
	reg := New()

	// rules resolve at registration, not at first render
	err := reg.On("x", 42)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Message, "don't know how to validate with 42")
}

func TestInvalidInput(t *testing.T) {
	reg := New()
	require.NoError(t, reg.On("x", "-x"))

	var inpErr *InvalidInputError
	_, err := reg.Argv(nil)
	require.ErrorAs(t, err, &inpErr)

	_, err = reg.Shell([]string{"not", "a", "map"})
	assert.ErrorAs(t, err, &inpErr)

	// any map with string keys will do
	argv, err := reg.Argv(map[string]string{"x": "v"})
	require.NoError(t, err)
	assert.Equal(t, []string{"-x", "v"}, argv)
}

func TestRequiredGroup(t *testing.T) {
	reg := New()
	reg.Required(func(r *Registry) {
		// the group overrides the per-option setting
		require.NoError(t, r.On("user", "-u", Settings{Required: ptr(false)}))
	})
	reg.Optional(func(r *Registry) {
		require.NoError(t, r.On("host", "-h", Settings{Required: ptr(true)}))
	})

	_, err := reg.Argv(map[string]any{"host": "example.com"})
	var reqErr *OptionRequiredError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "user", reqErr.Key)

	argv, err := reg.Argv(map[string]any{"user": "root"})
	require.NoError(t, err)
	assert.Equal(t, []string{"-u", "root"}, argv)
}

func TestQuotingStyles(t *testing.T) {
	input := map[string]any{"x": `a "b" c`}

	posix := New()
	require.NoError(t, posix.On("x", "-x"))
	line, err := posix.Shell(input)
	require.NoError(t, err)
	assert.Equal(t, `-x 'a "b" c'`, line)

	batch := New(Quoting(shellquote.Batch))
	require.NoError(t, batch.On("x", "-x"))
	line, err = batch.Shell(input)
	require.NoError(t, err)
	assert.Equal(t, `-x "a \"b\" c"`, line)
}

func TestSetQuotingOverridesStyle(t *testing.T) {
	reg := New(Quoting(shellquote.POSIX))
	require.NoError(t, reg.On("x", "-x"))

	input := map[string]any{"x": "a b"}

	line, err := reg.Shell(input)
	require.NoError(t, err)
	assert.Equal(t, `-x 'a b'`, line)

	reg.SetQuoting(shellquote.Batch)
	line, err = reg.Shell(input)
	require.NoError(t, err)
	assert.Equal(t, `-x "a b"`, line)
}

func TestDuplicateSwitch(t *testing.T) {
	reg := New()

	err := reg.On("x", "-x", "-y")
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "option 'x': multiple switch tokens", cfgErr.Message)
}

func TestQuoteRoundTrip(t *testing.T) {
	const tricky = `' a'b'c '`

	reg := New()
	require.NoError(t, reg.On("x"))

	argv, err := reg.Argv(map[string]any{"x": tricky})
	require.NoError(t, err)
	assert.Equal(t, []string{tricky}, argv)

	line, err := reg.Shell(map[string]any{"x": tricky})
	require.NoError(t, err)
	assert.Equal(t, `''\'' a'\''b'\''c '\'''`, line)
}

// Shell output re-tokenized with POSIX shell rules must yield the same
// tokens as the unquoted argv form.
func TestShellTokenizationMatchesArgv(t *testing.T) {
	reg := New()
	require.NoError(t, reg.On("a", "-a"))
	require.NoError(t, reg.On("b", "-b", Settings{Multiple: true}))
	require.NoError(t, reg.On("target"))

	input := map[string]any{
		"a":      "it's complicated",
		"b":      []string{"x y", "z"},
		"target": `quo"ted`,
	}

	argv, err := reg.Argv(input)
	require.NoError(t, err)

	line, err := reg.Shell(input)
	require.NoError(t, err)

	tokens, err := shlex.Split(line, true)
	require.NoError(t, err)
	assert.Equal(t, argv, tokens)
}

func TestDefaultsInherited(t *testing.T) {
	reg := New(DefaultRequired(true), DefaultArgSeparator("="), DefaultMultiple(true))
	require.NoError(t, reg.On("a", "-a"))
	require.NoError(t, reg.On("b", "-b", Settings{Required: ptr(false), ArgSeparator: ptr(" ")}))

	_, err := reg.Argv(map[string]any{"b": "2"})
	var reqErr *OptionRequiredError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "a", reqErr.Key)

	argv, err := reg.Argv(map[string]any{"a": []string{"1", "2"}, "b": "3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"-a=1,2", "-b", "3"}, argv)
}
