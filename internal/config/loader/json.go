package loader

import (
	"errors"

	"github.com/tidwall/gjson"
)

var errNotObject = errors.New("top-level value is not an object")

// JSONLoader loads configuration from JSON files.
type JSONLoader struct {
	fileLoader
}

// NewJSONLoader creates a JSON loader for the given path.
func NewJSONLoader(path string) *JSONLoader {
	return NewJSONLoaderWithFS(DefaultFS(), path)
}

// NewJSONLoaderWithFS creates a JSON loader with a custom file system.
func NewJSONLoaderWithFS(fs FileSystem, path string) *JSONLoader {
	return &JSONLoader{fileLoader{fs: fs, path: path, decode: decodeJSON}}
}

func decodeJSON(source string, data []byte) (map[string]any, error) {
	if !gjson.ValidBytes(data) {
		return nil, &ParseError{Path: source, Message: "invalid JSON"}
	}
	result := gjson.ParseBytes(data)
	if !result.IsObject() {
		return nil, &ParseError{Path: source, Message: errNotObject.Error(), Err: errNotObject}
	}
	config, _ := result.Value().(map[string]any)
	return config, nil
}
