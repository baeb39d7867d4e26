package app

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestParseLogLevelRoundTrip(t *testing.T) {
	for _, level := range []LogLevel{LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError} {
		if got := ParseLogLevel(level.String()); got != level {
			t.Errorf("ParseLogLevel(%q) = %s, want %s", level.String(), got, level)
		}
	}

	aliases := map[string]LogLevel{
		"Warning": LogLevelWarn,
		"trace":   LogLevelInfo,
		"":        LogLevelInfo,
	}
	for name, want := range aliases {
		if got := ParseLogLevel(name); got != want {
			t.Errorf("ParseLogLevel(%q) = %s, want %s", name, got, want)
		}
	}
	if got := LogLevel(42).String(); got != "UNKNOWN" {
		t.Errorf("LogLevel(42).String() = %q", got)
	}
}

var lineFormat = regexp.MustCompile(`^\d{4}-\d\d-\d\dT\d\d:\d\d:\d\d\.\d{3} \[WARN\] rubytext: wrapped 2 of 3 \{alpha=2, component=ruler, zeta=1\}\n$`)

func TestLoggerLineFormat(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultLoggerConfig()
	cfg.Output = &buf
	logger := NewLogger(cfg)

	logger.WithComponent("ruler").
		WithFields(map[string]any{"zeta": 1, "alpha": 2}).
		Warn("wrapped %d of %d", 2, 3)

	if !lineFormat.MatchString(buf.String()) {
		t.Errorf("unexpected log line %q", buf.String())
	}
}

func TestLoggerThreshold(t *testing.T) {
	tests := []struct {
		level LogLevel
		lines int
	}{
		{LogLevelDebug, 4},
		{LogLevelInfo, 3},
		{LogLevelWarn, 2},
		{LogLevelError, 1},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(LoggerConfig{Level: tt.level, Output: &buf})

			logger.Debug("d")
			logger.Info("i")
			logger.Warn("w")
			logger.Error("e")

			if got := strings.Count(buf.String(), "\n"); got != tt.lines {
				t.Errorf("got %d lines, want %d:\n%s", got, tt.lines, buf.String())
			}
		})
	}
}

func TestLoggerDerivedIsIndependent(t *testing.T) {
	var buf bytes.Buffer
	parent := NewLogger(LoggerConfig{Level: LogLevelInfo, Output: &buf})
	child := parent.WithComponent("watch")

	child.SetLevel(LogLevelError)
	child.Info("dropped")
	parent.Info("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("child logged below its level: %q", out)
	}
	if !strings.Contains(out, "kept\n") {
		t.Errorf("parent line missing or carries child fields: %q", out)
	}
	if parent.Level() != LogLevelInfo {
		t.Errorf("parent level = %s, want INFO", parent.Level())
	}
}

// exclusiveWriter fails the test when two writes overlap.
type exclusiveWriter struct {
	t      *testing.T
	active atomic.Int32
	lines  atomic.Int32
}

func (w *exclusiveWriter) Write(p []byte) (int, error) {
	if w.active.Add(1) != 1 {
		w.t.Error("concurrent write to log output")
	}
	time.Sleep(time.Microsecond)
	w.lines.Add(int32(bytes.Count(p, []byte("\n"))))
	w.active.Add(-1)
	return len(p), nil
}

func TestLoggerDerivedShareLock(t *testing.T) {
	w := &exclusiveWriter{t: t}
	root := NewLogger(LoggerConfig{Level: LogLevelInfo, Output: w})
	loggers := []*Logger{root, root.WithComponent("watch"), root.WithComponent("render"), root.WithField("setting", "ruler.size")}

	var wg sync.WaitGroup
	for _, l := range loggers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 50 {
				l.Info("line %d", i)
			}
		}()
	}
	wg.Wait()

	if got := w.lines.Load(); got != int32(50*len(loggers)) {
		t.Errorf("wrote %d lines, want %d", got, 50*len(loggers))
	}
}

func TestConfigureWarnsAboutConfigErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "rubytext.toml", "[kinsoku]\nnoStart = 5\n")

	var logs bytes.Buffer
	app := newTestApp(t, Options{ConfigPath: path, LogOutput: &logs})

	out := logs.String()
	if !strings.Contains(out, "[WARN]") || !strings.Contains(out, "setting=kinsoku.noStart") {
		t.Errorf("expected a warning naming kinsoku.noStart, got %q", out)
	}
	if got := app.Config().Kinsoku().NoStart; got == "" {
		t.Error("kinsoku.noStart should fall back to the default rules")
	}
}

func TestConfigureLogsRulerAtDebug(t *testing.T) {
	var logs bytes.Buffer
	newTestApp(t, Options{LogLevel: "debug", Width: 12, LogOutput: &logs})

	out := logs.String()
	if !strings.Contains(out, "cell measurer for") || !strings.Contains(out, "component=ruler") {
		t.Errorf("expected the ruler debug line, got %q", out)
	}

	logs.Reset()
	newTestApp(t, Options{LogOutput: &logs})
	if strings.Contains(logs.String(), "component=ruler") {
		t.Errorf("ruler line logged at info level: %q", logs.String())
	}
}

func TestRunLogsRenderErrorsInWatchMode(t *testing.T) {
	dir := t.TempDir()
	doc := writeTemp(t, dir, "doc.txt", "{broken")

	logs := &syncBuffer{}
	app := newTestApp(t, Options{
		Files:      []string{doc},
		Watch:      true,
		Output:     &bytes.Buffer{},
		LogOutput:  logs,
		WatchDelay: 10 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	waitFor(t, logs, "component=watch", func() {})
	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run returned %v", err)
	}

	out := logs.String()
	if !strings.Contains(out, "[ERROR]") || !strings.Contains(out, "component=render") {
		t.Errorf("expected the render error to be logged, got %q", out)
	}
	if !strings.Contains(out, "watching 1 files") {
		t.Errorf("expected the watch start line, got %q", out)
	}
}
