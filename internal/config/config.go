package config

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dshills/rubytext/internal/config/loader"
	"github.com/dshills/rubytext/internal/hyphenation"
)

// maxIncludeDepth bounds nested @include directives in config files.
const maxIncludeDepth = 8

// Config provides merged access to the rubytext configuration.
type Config struct {
	mu sync.RWMutex

	fs   loader.FileSystem
	path string
	env  loader.Loader

	defaults  map[string]any
	file      map[string]any
	envValues map[string]any
	overrides map[string]any
	merged    map[string]any

	// configErrors stores errors encountered during typed section access.
	configErrors map[string]error
}

// Option configures a Config instance.
type Option func(*Config)

// WithFile sets the config file to load. The format is chosen by extension.
func WithFile(path string) Option {
	return func(c *Config) {
		c.path = path
	}
}

// WithFS sets the file system used to read config files.
func WithFS(fs loader.FileSystem) Option {
	return func(c *Config) {
		c.fs = fs
	}
}

// WithEnv sets the environment loader. A nil loader disables the layer.
func WithEnv(l loader.Loader) Option {
	return func(c *Config) {
		c.env = l
	}
}

// New creates a Config holding only the built-in defaults.
func New(opts ...Option) *Config {
	c := &Config{
		fs:        loader.DefaultFS(),
		env:       loader.NewEnvLoader(loader.DefaultEnvPrefix),
		defaults:  defaultConfig(),
		overrides: make(map[string]any),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.remerge()
	return c
}

// Path returns the config file path, or "" when none is configured.
func (c *Config) Path() string {
	return c.path
}

// Load reads the config file and environment layers. It may be called
// again to reload after the file changed; overrides set with Set survive.
func (c *Config) Load(_ context.Context) error {
	var file map[string]any
	if c.path != "" {
		fl, err := loader.ForPath(c.fs, c.path)
		if err != nil {
			return err
		}
		if _, err := c.fs.Stat(c.path); err != nil {
			return fmt.Errorf("%w: %s", ErrFileNotFound, c.path)
		}
		file, err = fl.LoadWithIncludes(c.path, maxIncludeDepth)
		if err != nil {
			return err
		}
	}

	var env map[string]any
	if c.env != nil {
		var err error
		if env, err = c.env.Load(); err != nil {
			return fmt.Errorf("loading environment: %w", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.file = file
	c.envValues = env
	c.configErrors = nil
	c.remerge()
	return nil
}

// remerge rebuilds the merged view. Callers must hold c.mu or own c.
func (c *Config) remerge() {
	merged := loader.Clone(c.defaults)
	for _, layer := range []map[string]any{c.file, c.envValues, c.overrides} {
		merged = loader.DeepMerge(merged, loader.Clone(layer))
	}
	c.merged = merged
}

// Get returns the value at the given path from the merged configuration.
func (c *Config) Get(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return getPath(c.merged, path)
}

// GetString returns a string value at the given path.
func (c *Config) GetString(path string) (string, error) {
	v, ok := c.Get(path)
	if !ok {
		return "", ErrSettingNotFound
	}
	s, ok := v.(string)
	if !ok {
		return "", &TypeError{Path: path, Expected: "string", Actual: typeName(v)}
	}
	return s, nil
}

// GetInt returns an integer value at the given path.
func (c *Config) GetInt(path string) (int, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		return int(val), nil
	default:
		return 0, &TypeError{Path: path, Expected: "int", Actual: typeName(v)}
	}
}

// GetBool returns a boolean value at the given path.
func (c *Config) GetBool(path string) (bool, error) {
	v, ok := c.Get(path)
	if !ok {
		return false, ErrSettingNotFound
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Path: path, Expected: "bool", Actual: typeName(v)}
	}
	return b, nil
}

// GetFloat returns a float64 value at the given path.
func (c *Config) GetFloat(path string) (float64, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	default:
		return 0, &TypeError{Path: path, Expected: "float64", Actual: typeName(v)}
	}
}

// GetStringSlice returns a string slice at the given path.
func (c *Config) GetStringSlice(path string) ([]string, error) {
	v, ok := c.Get(path)
	if !ok {
		return nil, ErrSettingNotFound
	}
	switch val := v.(type) {
	case []string:
		return slices.Clone(val), nil
	case []any:
		result := make([]string, len(val))
		for i, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, &TypeError{Path: path, Expected: "[]string", Actual: typeName(v)}
			}
			result[i] = s
		}
		return result, nil
	default:
		return nil, &TypeError{Path: path, Expected: "[]string", Actual: typeName(v)}
	}
}

// Set overrides a value. Overrides take precedence over every loaded layer.
func (c *Config) Set(path string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := setPath(c.overrides, path, value); err != nil {
		return err
	}
	c.remerge()
	return nil
}

// Merged returns a copy of the merged configuration.
func (c *Config) Merged() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return loader.Clone(c.merged)
}

// Validate checks the enumerated and numeric settings.
func (c *Config) Validate() error {
	var errs []error
	check := func(path string, allowed []string) {
		v, err := c.GetString(path)
		if err != nil {
			if !errors.Is(err, ErrSettingNotFound) {
				errs = append(errs, err)
			}
			return
		}
		if !slices.Contains(allowed, v) {
			errs = append(errs, &ValueError{Path: path, Value: v, Allowed: allowed})
		}
	}
	check("logging.level", []string{"debug", "info", "warn", "error"})
	check("ruler.measurer", []string{MeasurerCell, MeasurerFace})
	check("ruler.style", []string{"normal", "bold", "italic", "bold-italic"})
	check("output.format", []string{FormatMarkup, FormatBody, FormatRuby, FormatJSON})

	for _, path := range []string{"ruler.size", "ruler.maxWidth"} {
		f, err := c.GetFloat(path)
		switch {
		case errors.Is(err, ErrSettingNotFound):
		case err != nil:
			errs = append(errs, err)
		case f < 0:
			errs = append(errs, &ValueError{Path: path, Value: f, Allowed: []string{">= 0"}})
		}
	}
	return errors.Join(errs...)
}

// defaultConfig returns the default configuration values.
func defaultConfig() map[string]any {
	rules := hyphenation.DefaultRules()
	noSplit := make([]any, len(rules.NoSplit))
	for i, s := range rules.NoSplit {
		noSplit[i] = s
	}
	return map[string]any{
		"ruler": map[string]any{
			"font":     "",
			"size":     1.0,
			"style":    "normal",
			"maxWidth": 0.0,
			"measurer": MeasurerCell,
		},
		"kinsoku": map[string]any{
			"noStart": rules.NoStart,
			"noEnd":   rules.NoEnd,
			"noSplit": noSplit,
		},
		"logging": map[string]any{
			"level": "info",
		},
		"output": map[string]any{
			"format": FormatMarkup,
		},
	}
}

// getPath retrieves a value from a nested map using a dot-separated path.
func getPath(m map[string]any, path string) (any, bool) {
	parts := splitPath(path)
	if len(parts) == 0 {
		return nil, false
	}

	current := any(m)
	for _, part := range parts {
		cm, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = cm[part]; !ok {
			return nil, false
		}
	}
	return current, true
}

// setPath sets a value in a nested map using a dot-separated path.
func setPath(m map[string]any, path string, value any) error {
	parts := splitPath(path)
	if len(parts) == 0 {
		return ErrInvalidPath
	}

	current := m
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part]
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		nextMap, ok := next.(map[string]any)
		if !ok {
			return ErrInvalidPath
		}
		current = nextMap
	}
	current[parts[len(parts)-1]] = value
	return nil
}

// splitPath splits a dot-separated path into non-empty parts.
func splitPath(path string) []string {
	var parts []string
	start := 0
	for i := 0; i <= len(path); i++ {
		if i == len(path) || path[i] == '.' {
			if i > start {
				parts = append(parts, path[start:i])
			}
			start = i + 1
		}
	}
	return parts
}

// typeName returns the type name for error messages.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case string:
		return "string"
	case int, int64:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []any:
		return "[]any"
	case map[string]any:
		return "map"
	default:
		return fmt.Sprintf("%T", v)
	}
}
