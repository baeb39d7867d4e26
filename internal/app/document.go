package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/rubytext/internal/config"
	"github.com/dshills/rubytext/internal/rubytext"
)

// Process parses annotated text, wraps it to the configured width, and
// renders it in the configured output format.
func (app *Application) Process(input string) (string, error) {
	t, err := rubytext.Parse(input)
	if err != nil {
		return "", err
	}
	return app.renderText(t)
}

// ProcessFile renders the document at path. Files with a .json extension
// hold a serialized RichText; anything else is annotated text.
func (app *Application) ProcessFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		t, err := rubytext.FromJSON(data)
		if err != nil {
			return "", err
		}
		return app.renderText(t)
	}
	return app.Process(string(data))
}

func (app *Application) renderText(t rubytext.RichText) (string, error) {
	log := app.logger.WithComponent("document")
	log.Debug("parsed %d characters, %d rubies, %d tags", t.Len(), t.RubyCount(), len(t.Tags))

	app.mu.Lock()
	defer app.mu.Unlock()

	if width := app.config.Ruler().MaxWidth; width > 0 {
		wrapped, err := t.WrapWithHyphenation(app.ruler, width)
		if err != nil {
			return "", fmt.Errorf("wrapping: %w", err)
		}
		t = wrapped
	}

	return Render(t, app.config.Output().Format)
}

// Render formats t:
//
//	markup  annotated text with tags and {body:ruby} groups
//	ruby    annotated text with tags removed
//	body    plain body text
//	json    the JSON document form of t
func Render(t rubytext.RichText, format string) (string, error) {
	switch format {
	case config.FormatMarkup, "":
		return t.String(), nil
	case config.FormatRuby:
		return t.WithoutTags().Annotated(), nil
	case config.FormatBody:
		return t.Body, nil
	case config.FormatJSON:
		data, err := t.MarshalJSON()
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
