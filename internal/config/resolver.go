package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/splunkasd/splunkasd/internal/common/logger"
)

// Error variables for resolver errors
var (
	// ErrSettingNotDeclared is returned when a key is resolved without being in the schema
	ErrSettingNotDeclared = errors.New("setting not declared in schema")
)

// ChoiceError is returned when a resolved value is not a member of the
// setting's declared choice set.
type ChoiceError struct {
	Key     string
	Value   string
	Choices []string
}

func (e *ChoiceError) Error() string {
	return fmt.Sprintf("invalid value %q for %s: must be one of: %s",
		e.Value, e.Key, strings.Join(e.Choices, ", "))
}

// Setting describes a single configuration key: where it appears in each
// source and how it is constrained. The full set of settings is declared as
// data by the caller, decoupling what keys exist from how resolution works.
type Setting struct {
	// Key is the configuration key. Dots are allowed; the derived flag name
	// replaces them with hyphens.
	Key string
	// Section is the optional section in configuration files and defaults.
	Section string
	// Flag overrides the derived CLI flag name.
	Flag string
	// Shorthand is the single-letter flag alias.
	Shorthand string
	// EnvKey overrides the derived environment variable name (KEY upper-cased).
	EnvKey string
	// Default is the terminal fallback when no source has a value.
	Default string
	// Choices is the optional set of allowed values, enforced at resolve time.
	Choices []string
	// Help is the flag usage string.
	Help string
}

// FlagName returns the CLI flag name for this setting.
func (s Setting) FlagName() string {
	if s.Flag != "" {
		return s.Flag
	}
	return strings.ReplaceAll(s.Key, ".", "-")
}

// lookup checks one value source for a setting. The boolean reports whether
// the source had the key at all; an empty string still counts as unset and
// lets a lower-precedence source win.
type lookup func(s Setting, envKey string) (string, bool)

// Resolver merges CLI arguments, a configuration file document, environment
// variables and caller-supplied defaults into a single effective
// configuration. Sources are checked in strict precedence order and the
// first non-empty value wins.
type Resolver struct {
	settings []Setting
	flags    *pflag.FlagSet
	fileDoc  map[string]interface{}
	defaults map[string]map[string]string
	values   map[string]map[string]string
	getenv   func(string) string
	log      *logger.Logger
}

// Option is a functional option for configuring Resolver
type Option func(*Resolver)

// WithDefaults sets the caller-supplied default values, keyed by section
// then key. The top-level section is "".
func WithDefaults(defaults map[string]map[string]string) Option {
	return func(r *Resolver) {
		r.defaults = defaults
	}
}

// WithGetenv sets a custom environment lookup function for testing
func WithGetenv(fn func(string) string) Option {
	return func(r *Resolver) {
		r.getenv = fn
	}
}

// WithLogger sets the logger used for non-fatal resolution warnings
func WithLogger(log *logger.Logger) Option {
	return func(r *Resolver) {
		r.log = log
	}
}

// New creates a resolver for the given settings schema.
func New(settings []Setting, opts ...Option) *Resolver {
	r := &Resolver{
		settings: settings,
		values:   make(map[string]map[string]string),
		getenv:   os.Getenv,
		log:      logger.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Bind declares a string flag for every setting in the schema on the given
// flag set. The flag set is kept as the CLI argument source.
func (r *Resolver) Bind(fs *pflag.FlagSet) {
	for _, s := range r.settings {
		help := s.Help
		if len(s.Choices) > 0 {
			help = fmt.Sprintf("%s (one of: %s)", help, strings.Join(s.Choices, ", "))
		}
		fs.StringP(s.FlagName(), s.Shorthand, "", help)
	}
	r.flags = fs
}

// sources returns the value sources in precedence order:
// CLI arguments, configuration file, environment, defaults.
func (r *Resolver) sources() []lookup {
	return []lookup{r.fromFlags, r.fromFile, r.fromEnv, r.fromDefaults}
}

// Resolve resolves the declared setting for section/key, records the value
// in the effective configuration, and returns it. An empty string means no
// source had a value and the setting has no default; that is a legal result
// unless the setting declares choices.
func (r *Resolver) Resolve(section, key string) (string, error) {
	s, ok := r.setting(section, key)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSettingNotDeclared, key)
	}
	return r.resolve(s, s.EnvKey)
}

// ResolveGroup resolves every key in keys within the given section. When
// envPrefix is non-empty each key's environment variable is derived as
// PREFIX_KEY upper-cased, overriding the setting's own EnvKey.
func (r *Resolver) ResolveGroup(section string, keys []string, envPrefix string) (map[string]string, error) {
	values := make(map[string]string, len(keys))
	for _, key := range keys {
		s, ok := r.setting(section, key)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrSettingNotDeclared, key)
		}

		envKey := s.EnvKey
		if envPrefix != "" {
			envKey = envPrefix + "_" + strings.ToUpper(key)
		}

		value, err := r.resolve(s, envKey)
		if err != nil {
			return nil, err
		}
		values[key] = value
	}
	return values, nil
}

// resolve walks the ordered source list and takes the first non-empty value,
// falling back to the setting's default.
func (r *Resolver) resolve(s Setting, envKey string) (string, error) {
	var value string
	for _, src := range r.sources() {
		if v, ok := src(s, envKey); ok && v != "" {
			value = v
			break
		}
	}

	if value == "" {
		value = s.Default
	}

	if len(s.Choices) > 0 && !containsString(s.Choices, value) {
		return "", &ChoiceError{Key: s.Key, Value: value, Choices: s.Choices}
	}

	r.store(s.Section, s.Key, value)
	return value, nil
}

// setting finds the declared setting for a section/key pair.
func (r *Resolver) setting(section, key string) (Setting, bool) {
	for _, s := range r.settings {
		if s.Section == section && s.Key == key {
			return s, true
		}
	}
	return Setting{}, false
}

// fromFlags returns the CLI argument value when the flag was set by the user.
func (r *Resolver) fromFlags(s Setting, _ string) (string, bool) {
	if r.flags == nil {
		return "", false
	}
	f := r.flags.Lookup(s.FlagName())
	if f == nil || !f.Changed {
		return "", false
	}
	return f.Value.String(), true
}

// fromFile returns the configuration file value under [section][key], or
// [key] when the setting has no section.
func (r *Resolver) fromFile(s Setting, _ string) (string, bool) {
	if r.fileDoc == nil {
		return "", false
	}
	if s.Section == "" {
		return stringify(r.fileDoc[s.Key])
	}
	sec, ok := r.fileDoc[s.Section].(map[string]interface{})
	if !ok {
		return "", false
	}
	return stringify(sec[s.Key])
}

// fromEnv returns the environment variable value, using the derived name
// when no override is in effect.
func (r *Resolver) fromEnv(s Setting, envKey string) (string, bool) {
	name := envKey
	if name == "" {
		name = strings.ToUpper(s.Key)
	}
	v := r.getenv(name)
	return v, v != ""
}

// fromDefaults returns the caller-supplied default for section/key.
func (r *Resolver) fromDefaults(s Setting, _ string) (string, bool) {
	if r.defaults == nil {
		return "", false
	}
	sec, ok := r.defaults[s.Section]
	if !ok {
		return "", false
	}
	v, ok := sec[s.Key]
	return v, ok
}

// store records a resolved value in the effective configuration.
func (r *Resolver) store(section, key, value string) {
	sec := r.values[section]
	if sec == nil {
		sec = make(map[string]string)
		r.values[section] = sec
	}
	sec[key] = value
}

// Value returns a value from the effective configuration. The top-level
// section is "". Unresolved keys return "".
func (r *Resolver) Value(section, key string) string {
	return r.values[section][key]
}

// Values returns the full effective configuration, keyed by section then key.
func (r *Resolver) Values() map[string]map[string]string {
	return r.values
}

// stringify converts a scalar document value to its string form. Missing
// values and non-scalar values report false.
func stringify(v interface{}) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case bool, int, int64, uint64, float64:
		return fmt.Sprintf("%v", val), true
	default:
		return "", false
	}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
