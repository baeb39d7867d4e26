package config

import (
	"errors"
	"maps"

	"github.com/dshills/rubytext/internal/hyphenation"
)

// Measurer names accepted by ruler.measurer.
const (
	MeasurerCell = "cell"
	MeasurerFace = "face"
)

// Output formats accepted by output.format.
const (
	FormatMarkup = "markup"
	FormatBody   = "body"
	FormatRuby   = "ruby"
	FormatJSON   = "json"
)

// RulerConfig contains line measuring settings.
type RulerConfig struct {
	Font     string
	Size     float64
	Style    string
	MaxWidth float64
	Measurer string
}

// FontKey returns the hyphenation font key described by the settings.
func (r RulerConfig) FontKey() hyphenation.FontKey {
	return hyphenation.FontKey{
		Font:  r.Font,
		Size:  r.Size,
		Style: hyphenation.ParseStyle(r.Style),
	}
}

// KinsokuConfig contains the line-break prohibition classes.
type KinsokuConfig struct {
	NoStart string
	NoEnd   string
	NoSplit []string
}

// Rules converts the settings into hyphenation rules.
func (k KinsokuConfig) Rules() hyphenation.Rules {
	return hyphenation.Rules{
		NoStart: k.NoStart,
		NoEnd:   k.NoEnd,
		NoSplit: k.NoSplit,
	}
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level string
}

// OutputConfig contains rendering settings.
type OutputConfig struct {
	Format string
}

// Ruler returns type-safe access to ruler settings.
func (c *Config) Ruler() RulerConfig {
	return RulerConfig{
		Font:     c.getStringOr("ruler.font", ""),
		Size:     c.getFloatOr("ruler.size", 1),
		Style:    c.getStringOr("ruler.style", "normal"),
		MaxWidth: c.getFloatOr("ruler.maxWidth", 0),
		Measurer: c.getStringOr("ruler.measurer", MeasurerCell),
	}
}

// Kinsoku returns type-safe access to the line-break rules.
func (c *Config) Kinsoku() KinsokuConfig {
	def := hyphenation.DefaultRules()
	return KinsokuConfig{
		NoStart: c.getStringOr("kinsoku.noStart", def.NoStart),
		NoEnd:   c.getStringOr("kinsoku.noEnd", def.NoEnd),
		NoSplit: c.getStringSliceOr("kinsoku.noSplit", def.NoSplit),
	}
}

// Logging returns type-safe access to logging settings.
func (c *Config) Logging() LoggingConfig {
	return LoggingConfig{
		Level: c.getStringOr("logging.level", "info"),
	}
}

// Output returns type-safe access to output settings.
func (c *Config) Output() OutputConfig {
	return OutputConfig{
		Format: c.getStringOr("output.format", FormatMarkup),
	}
}

// These helpers return the default for a missing setting. Type errors also
// return the default and are recorded for ConfigErrors.

func (c *Config) getStringOr(path string, defaultValue string) string {
	v, err := c.GetString(path)
	if err != nil {
		c.recordConfigError(path, err)
		return defaultValue
	}
	return v
}

func (c *Config) getFloatOr(path string, defaultValue float64) float64 {
	v, err := c.GetFloat(path)
	if err != nil {
		c.recordConfigError(path, err)
		return defaultValue
	}
	return v
}

func (c *Config) getStringSliceOr(path string, defaultValue []string) []string {
	v, err := c.GetStringSlice(path)
	if err != nil {
		c.recordConfigError(path, err)
		return append([]string(nil), defaultValue...)
	}
	return v
}

// recordConfigError stores the first non-missing error for each path.
func (c *Config) recordConfigError(path string, err error) {
	if errors.Is(err, ErrSettingNotFound) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.configErrors == nil {
		c.configErrors = make(map[string]error)
	}
	if _, exists := c.configErrors[path]; !exists {
		c.configErrors[path] = err
	}
}

// ConfigErrors returns configuration errors encountered during access.
func (c *Config) ConfigErrors() map[string]error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.configErrors == nil {
		return nil
	}
	return maps.Clone(c.configErrors)
}
