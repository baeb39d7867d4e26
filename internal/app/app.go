package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dshills/rubytext/internal/config"
	"github.com/dshills/rubytext/internal/hyphenation"
)

// Application renders ruby-annotated documents with the configured ruler.
type Application struct {
	mu sync.Mutex

	config *config.Config
	ruler  *hyphenation.Ruler
	logger *Logger

	opts Options
}

// Options configures the application. Zero values leave the configured
// setting unchanged.
type Options struct {
	// ConfigPath is the path to a TOML, YAML, or JSON configuration file.
	ConfigPath string

	// LogLevel overrides logging.level.
	LogLevel string

	// Format overrides output.format.
	Format string

	// Width overrides ruler.maxWidth when positive.
	Width float64

	// Font, FontSize, FontStyle, and Measurer override the ruler settings.
	Font      string
	FontSize  float64
	FontStyle string
	Measurer  string

	// Files are the documents to render. Standard input is read when empty.
	Files []string

	// Watch re-renders Files whenever they or the config file change.
	Watch bool

	// WatchDelay coalesces bursts of file events. Defaults to 100ms.
	WatchDelay time.Duration

	// DisableEnv skips the RUBYTEXT_* environment layer.
	DisableEnv bool

	// Input, Output, and LogOutput default to the standard streams.
	Input     io.Reader
	Output    io.Writer
	LogOutput io.Writer
}

// New creates an Application and loads its configuration.
func New(opts Options) (*Application, error) {
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.WatchDelay <= 0 {
		opts.WatchDelay = 100 * time.Millisecond
	}

	cfg := DefaultLoggerConfig()
	if opts.LogOutput != nil {
		cfg.Output = opts.LogOutput
	}

	app := &Application{
		opts:   opts,
		logger: NewLogger(cfg),
	}
	if err := app.bootstrap(context.Background()); err != nil {
		return nil, err
	}
	return app, nil
}

// bootstrap loads configuration and builds the ruler.
func (app *Application) bootstrap(ctx context.Context) error {
	cfg, err := app.loadConfig(ctx)
	if err == nil {
		err = app.configure(cfg)
	}
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}
	return nil
}

// loadConfig builds a fresh Config from the file, the environment, and the
// command line overrides.
func (app *Application) loadConfig(ctx context.Context) (*config.Config, error) {
	var cfgOpts []config.Option
	if app.opts.ConfigPath != "" {
		cfgOpts = append(cfgOpts, config.WithFile(app.opts.ConfigPath))
	}
	if app.opts.DisableEnv {
		cfgOpts = append(cfgOpts, config.WithEnv(nil))
	}
	cfg := config.New(cfgOpts...)

	if err := app.applyOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Load(ctx); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyOverrides copies command line options into the config override layer.
func (app *Application) applyOverrides(cfg *config.Config) error {
	var errs []error
	set := func(path string, value any) {
		errs = append(errs, cfg.Set(path, value))
	}
	if app.opts.LogLevel != "" {
		set("logging.level", app.opts.LogLevel)
	}
	if app.opts.Format != "" {
		set("output.format", app.opts.Format)
	}
	if app.opts.Width > 0 {
		set("ruler.maxWidth", app.opts.Width)
	}
	if app.opts.Font != "" {
		set("ruler.font", app.opts.Font)
	}
	if app.opts.FontSize > 0 {
		set("ruler.size", app.opts.FontSize)
	}
	if app.opts.FontStyle != "" {
		set("ruler.style", app.opts.FontStyle)
	}
	if app.opts.Measurer != "" {
		set("ruler.measurer", app.opts.Measurer)
	}
	return errors.Join(errs...)
}

// configure validates cfg, builds its ruler, and makes both current.
func (app *Application) configure(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	rc := cfg.Ruler()
	measurer, err := newMeasurer(rc)
	if err != nil {
		return err
	}
	ruler := hyphenation.NewRuler(cfg.Kinsoku().Rules(), measurer)
	ruler.SetFont(rc.FontKey())

	app.logger.SetLevel(ParseLogLevel(cfg.Logging().Level))
	for path, cerr := range cfg.ConfigErrors() {
		app.logger.WithField("setting", path).Warn("using default: %v", cerr)
	}

	app.mu.Lock()
	app.config = cfg
	app.ruler = ruler
	app.mu.Unlock()

	app.logger.WithComponent("ruler").Debug("%s measurer for %s, width %g", rc.Measurer, rc.FontKey(), rc.MaxWidth)
	return nil
}

// Reload re-reads the config file and environment. On failure the previous
// configuration stays in effect.
func (app *Application) Reload(ctx context.Context) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}
	if err := app.configure(cfg); err != nil {
		return err
	}
	app.logger.Info("configuration reloaded")
	return nil
}

// Config returns the application's configuration.
func (app *Application) Config() *config.Config {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.config
}

// Ruler returns the ruler built from the current configuration.
func (app *Application) Ruler() *hyphenation.Ruler {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.ruler
}

// Run renders the configured inputs and, in watch mode, keeps re-rendering
// until ctx is done.
func (app *Application) Run(ctx context.Context) error {
	if len(app.opts.Files) == 0 {
		if app.opts.Watch {
			return ErrNoInput
		}
		data, err := io.ReadAll(app.opts.Input)
		if err != nil {
			return NewOperationError("read", "<stdin>", err)
		}
		out, err := app.Process(string(data))
		if err != nil {
			return NewOperationError("render", "<stdin>", err)
		}
		return app.write(out)
	}

	err := app.renderFiles(app.opts.Files)
	if !app.opts.Watch {
		return err
	}
	app.logComponentError("render", err)
	return app.Watch(ctx)
}

// renderFiles renders each file to the output. With more than one file every
// result is preceded by a header line naming the file.
func (app *Application) renderFiles(paths []string) error {
	var errs []error
	for _, path := range paths {
		out, err := app.ProcessFile(path)
		if err != nil {
			errs = append(errs, NewOperationError("render", path, err))
			continue
		}
		if len(app.opts.Files) > 1 {
			out = fmt.Sprintf("==> %s <==\n%s", path, out)
		}
		if err := app.write(out); err != nil {
			return err
		}
	}
	return errors.Join(errs...)
}

func (app *Application) write(out string) error {
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	_, err := io.WriteString(app.opts.Output, out)
	return err
}
