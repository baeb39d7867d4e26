package loader

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) Open(name string) (fs.File, error) {
	return nil, fs.ErrNotExist
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (m *MemFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := m.files[path]; ok {
		return &memFileInfo{name: path}, nil
	}
	return nil, fs.ErrNotExist
}

type memFileInfo struct {
	name string
}

func (f *memFileInfo) Name() string       { return f.name }
func (f *memFileInfo) Size() int64        { return 0 }
func (f *memFileInfo) Mode() fs.FileMode  { return 0644 }
func (f *memFileInfo) ModTime() time.Time { return time.Now() }
func (f *memFileInfo) IsDir() bool        { return false }
func (f *memFileInfo) Sys() any           { return nil }

func TestFormats(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/c.toml", `
[ruler]
font = "mincho"
size = 16
maxWidth = 12.5

[kinsoku]
noSplit = ["——", "……"]
`)
	memfs.AddFile("/c.yaml", `
ruler:
  font: mincho
  size: 16
  maxWidth: 12.5
kinsoku:
  noSplit: ["——", "……"]
`)
	memfs.AddFile("/c.json", `{
  "ruler": {"font": "mincho", "size": 16, "maxWidth": 12.5},
  "kinsoku": {"noSplit": ["——", "……"]}
}`)

	for _, path := range []string{"/c.toml", "/c.yaml", "/c.json"} {
		t.Run(path, func(t *testing.T) {
			l, err := ForPath(memfs, path)
			if err != nil {
				t.Fatalf("ForPath failed: %v", err)
			}
			config, err := l.Load()
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}

			ruler, ok := config["ruler"].(map[string]any)
			if !ok {
				t.Fatalf("ruler is %T, want map", config["ruler"])
			}
			if ruler["font"] != "mincho" {
				t.Errorf("font = %v, want mincho", ruler["font"])
			}
			if ruler["maxWidth"] != 12.5 {
				t.Errorf("maxWidth = %v, want 12.5", ruler["maxWidth"])
			}
			switch size := ruler["size"].(type) {
			case int, int64, float64:
			default:
				t.Errorf("size has type %T", size)
			}

			kinsoku, _ := config["kinsoku"].(map[string]any)
			list, ok := kinsoku["noSplit"].([]any)
			if !ok || len(list) != 2 || list[0] != "——" {
				t.Errorf("noSplit = %v", kinsoku["noSplit"])
			}
		})
	}
}

func TestForPathUnsupported(t *testing.T) {
	_, err := ForPath(NewMemFS(), "/c.ini")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	config, err := NewTOMLLoaderWithFS(NewMemFS(), "/none.toml").Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config != nil {
		t.Errorf("config = %v, want nil", config)
	}
}

func TestParseErrors(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/bad.toml", "[ruler\nfont = 1")
	memfs.AddFile("/bad.yaml", "ruler: [unclosed")
	memfs.AddFile("/bad.json", `{"ruler": }`)
	memfs.AddFile("/array.json", `[1, 2]`)

	for _, path := range []string{"/bad.toml", "/bad.yaml", "/bad.json", "/array.json"} {
		t.Run(path, func(t *testing.T) {
			l, err := ForPath(memfs, path)
			if err != nil {
				t.Fatal(err)
			}
			_, err = l.Load()
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("err = %v, want *ParseError", err)
			}
			if perr.Path != path {
				t.Errorf("Path = %q, want %q", perr.Path, path)
			}
		})
	}
}

func TestTOMLParseErrorPosition(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/bad.toml", "a = 1\nb = \n")
	_, err := NewTOMLLoaderWithFS(memfs, "/bad.toml").Load()
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
	if perr.Line != 2 {
		t.Errorf("Line = %d, want 2", perr.Line)
	}
}

func TestLoadFromReader(t *testing.T) {
	l := NewYAMLLoaderWithFS(NewMemFS(), "")
	config, err := l.LoadFromReader(strings.NewReader("logging:\n  level: debug\n"))
	if err != nil {
		t.Fatal(err)
	}
	logging, _ := config["logging"].(map[string]any)
	if logging["level"] != "debug" {
		t.Errorf("level = %v, want debug", logging["level"])
	}
}

func TestLoadWithIncludes(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/conf/main.toml", `
"@include" = ["base.yaml", "fonts.json"]

[ruler]
font = "gothic"
`)
	memfs.AddFile("/conf/base.yaml", "ruler:\n  font: mincho\n  size: 12\nlogging:\n  level: warn\n")
	memfs.AddFile("/conf/fonts.json", `{"ruler": {"size": 20}}`)

	l := NewTOMLLoaderWithFS(memfs, "/conf/main.toml")
	config, err := l.LoadWithIncludes("/conf/main.toml", 4)
	if err != nil {
		t.Fatalf("LoadWithIncludes failed: %v", err)
	}
	if _, ok := config["@include"]; ok {
		t.Error("@include should be removed")
	}

	ruler := config["ruler"].(map[string]any)
	if ruler["font"] != "gothic" {
		t.Errorf("font = %v, want gothic", ruler["font"])
	}
	if ruler["size"] != float64(20) {
		t.Errorf("size = %v (%T), want 20 from the later include", ruler["size"], ruler["size"])
	}
	logging := config["logging"].(map[string]any)
	if logging["level"] != "warn" {
		t.Errorf("level = %v, want warn", logging["level"])
	}
}

func TestLoadWithIncludesDepth(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/a.toml", `"@include" = "a.toml"`)

	_, err := NewTOMLLoaderWithFS(memfs, "/a.toml").LoadWithIncludes("/a.toml", 3)
	if err == nil || !strings.Contains(err.Error(), "include depth exceeded") {
		t.Errorf("err = %v, want include depth error", err)
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"ruler":   map[string]any{"font": "mincho", "size": 12},
		"logging": map[string]any{"level": "info"},
	}
	src := map[string]any{
		"ruler":  map[string]any{"size": 16},
		"output": "json",
	}

	got := DeepMerge(dst, src)
	ruler := got["ruler"].(map[string]any)
	if ruler["font"] != "mincho" || ruler["size"] != 16 {
		t.Errorf("ruler = %v", ruler)
	}
	if got["output"] != "json" {
		t.Errorf("output = %v, want json", got["output"])
	}
	if got["logging"].(map[string]any)["level"] != "info" {
		t.Error("logging should be preserved")
	}
}

func TestClone(t *testing.T) {
	src := map[string]any{
		"kinsoku": map[string]any{"noSplit": []any{"——"}},
	}
	dst := Clone(src)
	dst["kinsoku"].(map[string]any)["noSplit"].([]any)[0] = "……"

	if src["kinsoku"].(map[string]any)["noSplit"].([]any)[0] != "——" {
		t.Error("Clone shares nested slices")
	}
	if Clone(nil) != nil {
		t.Error("Clone(nil) should be nil")
	}
}
