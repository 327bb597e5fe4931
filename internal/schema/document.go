package schema

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a schema document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// SupportedMajor is the document major version this build understands.
const SupportedMajor = "v1"

// document is the on-disk shape of the model configuration.
type document struct {
	Version string   `json:"version,omitempty"`
	Columns []string `json:"columns"`
	Scaler  Scaler   `json:"scaler"`
}

// documentSchema is the JSON Schema every configuration document must
// satisfy before it is decoded.
var documentSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"version": map[string]any{"type": "string"},
		"columns": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items":    map[string]any{"type": "string", "minLength": 1},
		},
		"scaler": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"features": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"mean":     map[string]any{"type": "array", "items": map[string]any{"type": "number"}},
				"scale":    map[string]any{"type": "array", "items": map[string]any{"type": "number"}},
			},
			"required": []any{"features", "mean", "scale"},
		},
	},
	"required": []any{"columns", "scaler"},
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// FormatFromPath picks the document format from a file name or URI.
func FormatFromPath(p string) Format {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Parse decodes, validates and indexes a configuration document.
func Parse(data []byte, format Format) (*Schema, error) {
	raw, err := normalize(data, format)
	if err != nil {
		return nil, err
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("parse schema document: %w", err)
	}
	validator, err := documentValidator()
	if err != nil {
		return nil, err
	}
	if err := validator.Validate(generic); err != nil {
		return nil, &ValidationError{Problems: []string{err.Error()}}
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode schema document: %w", err)
	}
	if err := checkVersion(doc.Version); err != nil {
		return nil, err
	}

	s, err := New(doc.Columns, doc.Scaler)
	if err != nil {
		return nil, err
	}
	s.version = doc.Version
	return s, nil
}

// normalize converts YAML documents to JSON so that validation and
// decoding share one path.
func normalize(data []byte, format Format) ([]byte, error) {
	if format != FormatYAML {
		return data, nil
	}
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse yaml schema document: %w", err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("convert yaml schema document: %w", err)
	}
	return out, nil
}

func checkVersion(v string) error {
	if v == "" {
		return nil
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("%w: %q is not a semantic version", ErrIncompatibleVersion, v)
	}
	if major := semver.Major(v); major != SupportedMajor {
		return fmt.Errorf("%w: document is %s, this build reads %s", ErrIncompatibleVersion, major, SupportedMajor)
	}
	return nil
}

func documentValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// Round-trip so the compiler sees plain JSON values.
		b, err := json.Marshal(documentSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal document schema: %w", err)
			return
		}
		var def any
		if err := json.Unmarshal(b, &def); err != nil {
			compileErr = fmt.Errorf("parse document schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		const url = "schema://model-config.json"
		if err := c.AddResource(url, def); err != nil {
			compileErr = fmt.Errorf("add document schema: %w", err)
			return
		}
		compiled, compileErr = c.Compile(url)
	})
	return compiled, compileErr
}
