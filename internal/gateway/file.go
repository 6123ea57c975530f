package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/tdx/pkg/todo"
)

// FileSource reads records from a local file. The format follows the
// extension: .json and .jsonc (comments and trailing commas allowed), .yaml
// and .yml, or .toml. JSON and YAML accept either a bare list or an object
// with a "todos" list; TOML requires [[todos]] tables.
type FileSource struct {
	Path string
}

// NewFileSource returns a source reading path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Fetch implements Source.
func (s *FileSource) Fetch(ctx context.Context) ([]todo.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}
	records, err := DecodeRecords(data, filepath.Ext(s.Path))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.Path, err)
	}
	return records, nil
}

// ReaderSource decodes records from a stream such as stdin. The stream is
// consumed by the first Fetch. Format names the encoding as DecodeRecords
// expects it.
type ReaderSource struct {
	R      io.Reader
	Format string
}

// Fetch implements Source.
func (s *ReaderSource) Fetch(ctx context.Context) ([]todo.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(s.R)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	records, err := DecodeRecords(data, s.Format)
	if err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}
	return records, nil
}

type recordList struct {
	Todos []todo.Record `json:"todos" yaml:"todos" toml:"todos"`
}

// DecodeRecords parses data according to ext (with or without the dot).
func DecodeRecords(data []byte, ext string) ([]todo.Record, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "json", "jsonc":
		return decodeJSON(data)
	case "yaml", "yml":
		return decodeYAML(data)
	case "toml":
		var doc recordList
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		return nonNil(doc.Todos), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func decodeJSON(data []byte) ([]todo.Record, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSONC: %w", err)
	}
	trimmed := strings.TrimSpace(string(standardized))
	if strings.HasPrefix(trimmed, "{") {
		var doc recordList
		if err := json.Unmarshal(standardized, &doc); err != nil {
			return nil, err
		}
		return nonNil(doc.Todos), nil
	}
	var records []todo.Record
	if err := json.Unmarshal(standardized, &records); err != nil {
		return nil, err
	}
	return nonNil(records), nil
}

func decodeYAML(data []byte) ([]todo.Record, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return []todo.Record{}, nil
	}
	if node.Content[0].Kind == yaml.MappingNode {
		var doc recordList
		if err := node.Decode(&doc); err != nil {
			return nil, err
		}
		return nonNil(doc.Todos), nil
	}
	var records []todo.Record
	if err := node.Decode(&records); err != nil {
		return nil, err
	}
	return nonNil(records), nil
}

func nonNil(records []todo.Record) []todo.Record {
	if records == nil {
		return []todo.Record{}
	}
	return records
}

// NewSource picks an HTTP source for http(s) URLs and a file source otherwise.
// An empty location selects DefaultURL.
func NewSource(location string) Source {
	location = strings.TrimSpace(location)
	if location == "" {
		location = DefaultURL
	}
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return NewHTTPSource(location)
	}
	return NewFileSource(strings.TrimPrefix(location, "file://"))
}
