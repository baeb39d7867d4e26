package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/rubytext/internal/config"
	"github.com/dshills/rubytext/internal/rubytext"
)

const neko = "{吾輩:わがはい}は<b>猫</b>である"

func newTestApp(t *testing.T, opts Options) *Application {
	t.Helper()
	opts.DisableEnv = true
	if opts.LogOutput == nil {
		opts.LogOutput = io.Discard
	}
	app, err := New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return app
}

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProcessFormats(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{config.FormatMarkup, neko},
		{config.FormatRuby, "{吾輩:わがはい}は猫である"},
		{config.FormatBody, "吾輩は猫である"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			app := newTestApp(t, Options{Format: tt.format})
			got, err := app.Process(neko)
			if err != nil {
				t.Fatalf("Process failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Process() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProcessJSON(t *testing.T) {
	app := newTestApp(t, Options{Format: config.FormatJSON})
	out, err := app.Process(neko)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	got, err := rubytext.FromJSON([]byte(out))
	if err != nil {
		t.Fatalf("FromJSON(%s) failed: %v", out, err)
	}
	if !got.Equal(rubytext.MustParse(neko)) {
		t.Errorf("decoded %v, want the parsed input", got)
	}
}

func TestProcessWrap(t *testing.T) {
	app := newTestApp(t, Options{Format: config.FormatBody, Width: 4})
	got, err := app.Process("{吾輩:わがはい}は{猫:ねこ}である")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if want := "吾輩\nは猫\nであ\nる"; got != want {
		t.Errorf("Process() = %q, want %q", got, want)
	}
}

func TestProcessMalformed(t *testing.T) {
	app := newTestApp(t, Options{})
	_, err := app.Process("漢字{かん")
	if !errors.Is(err, rubytext.ErrUnterminatedRuby) {
		t.Errorf("err = %v, want ErrUnterminatedRuby", err)
	}
}

func TestProcessFileJSON(t *testing.T) {
	dir := t.TempDir()
	data, err := rubytext.MustParse(neko).MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	path := writeTemp(t, dir, "doc.json", string(data))

	app := newTestApp(t, Options{})
	got, err := app.ProcessFile(path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if got != neko {
		t.Errorf("ProcessFile() = %q, want %q", got, neko)
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	_, err := Render(rubytext.New("x"), "pdf")
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("err = %v, want ErrUnknownFormat", err)
	}
}

func TestNewInvalidConfig(t *testing.T) {
	_, err := New(Options{Format: "pdf", DisableEnv: true, LogOutput: io.Discard})
	if !errors.Is(err, ErrInitialization) {
		t.Fatalf("err = %v, want ErrInitialization", err)
	}
	if !errors.Is(err, config.ErrInvalidValue) {
		t.Errorf("err = %v, want it to wrap config.ErrInvalidValue", err)
	}
}

func TestConfigFileAndOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "rubytext.yaml", "output:\n  format: body\nruler:\n  maxWidth: 4\n")

	app := newTestApp(t, Options{ConfigPath: path})
	if got := app.Config().Ruler().MaxWidth; got != 4 {
		t.Errorf("MaxWidth = %v, want 4", got)
	}
	if got := app.Ruler().Font(); got.Size != 1 {
		t.Errorf("ruler font = %v, want size 1", got)
	}

	app = newTestApp(t, Options{ConfigPath: path, Format: config.FormatRuby, Width: 10})
	if got := app.Config().Output().Format; got != config.FormatRuby {
		t.Errorf("Format = %q, flag should override the file", got)
	}
	if got := app.Config().Ruler().MaxWidth; got != 10 {
		t.Errorf("MaxWidth = %v, flag should override the file", got)
	}
}

func TestReload(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "rubytext.toml", "[output]\nformat = \"body\"\n")

	var logs bytes.Buffer
	app := newTestApp(t, Options{ConfigPath: path, LogOutput: &logs})
	if got, _ := app.Process(neko); got != "吾輩は猫である" {
		t.Fatalf("Process() = %q", got)
	}

	writeTemp(t, dir, "rubytext.toml", "[output]\nformat = \"pdf\"\n")
	if err := app.Reload(context.Background()); !errors.Is(err, config.ErrInvalidValue) {
		t.Fatalf("Reload() = %v, want ErrInvalidValue", err)
	}
	if got, _ := app.Process(neko); got != "吾輩は猫である" {
		t.Errorf("Process() = %q, previous config should stay in effect", got)
	}

	writeTemp(t, dir, "rubytext.toml", "[output]\nformat = \"ruby\"\n")
	if err := app.Reload(context.Background()); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if got, _ := app.Process(neko); got != "{吾輩:わがはい}は猫である" {
		t.Errorf("Process() = %q after reload", got)
	}
	if !strings.Contains(logs.String(), "configuration reloaded") {
		t.Errorf("expected reload to be logged, got: %s", logs.String())
	}
}

func TestRunStdin(t *testing.T) {
	var out bytes.Buffer
	app := newTestApp(t, Options{
		Format: config.FormatBody,
		Input:  strings.NewReader("{a:b}c"),
		Output: &out,
	})
	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out.String() != "ac\n" {
		t.Errorf("output = %q, want %q", out.String(), "ac\n")
	}
}

func TestRunFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeTemp(t, dir, "a.txt", "{今:いま}")
	b := writeTemp(t, dir, "b.txt", "<i>日</i>\n")
	missing := filepath.Join(dir, "missing.txt")

	var out bytes.Buffer
	app := newTestApp(t, Options{
		Format: config.FormatBody,
		Files:  []string{a, missing, b},
		Output: &out,
	})

	err := app.Run(context.Background())
	var operr *OperationError
	if !errors.As(err, &operr) || operr.Target != missing {
		t.Fatalf("Run() = %v, want an OperationError for %s", err, missing)
	}

	want := "==> " + a + " <==\n今\n==> " + b + " <==\n日\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestRunWatchWithoutFiles(t *testing.T) {
	app := newTestApp(t, Options{Watch: true})
	if err := app.Run(context.Background()); !errors.Is(err, ErrNoInput) {
		t.Errorf("Run() = %v, want ErrNoInput", err)
	}
}

func TestOperationError(t *testing.T) {
	base := errors.New("boom")
	err := NewOperationError("render", "a.txt", base)
	if err.Error() != "render a.txt: boom" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, base) {
		t.Error("expected OperationError to unwrap")
	}
	if NewOperationError("watch", "", nil).Error() != "watch" {
		t.Error("expected bare operation name")
	}
	var nilErr *OperationError
	if nilErr.Error() != "" || nilErr.Unwrap() != nil {
		t.Error("nil OperationError should be empty")
	}
}
