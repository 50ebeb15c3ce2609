// Package tablefile loads a symbol table from a YAML, TOML or JSON file.
// Every file is checked against a JSON schema before any symbol is read.
package tablefile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-refdocs/internal/providers/memory"
	"github.com/goliatone/go-refdocs/pkg/interfaces"
)

var (
	ErrUnsupportedFormat = errors.New("tablefile: unsupported format")
	ErrInvalidTable      = errors.New("tablefile: invalid symbol table")
)

const schemaURL = "refdocs-symbols.json"

const tableSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["symbols"],
  "additionalProperties": false,
  "properties": {
    "symbols": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "doc"],
        "additionalProperties": false,
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "module": {"type": "string"},
          "signature": {"type": "string"},
          "kind": {"type": "string"},
          "doc": {"type": "string"}
        }
      }
    }
  }
}`

// Issue is a single schema violation.
type Issue struct {
	Location string
	Message  string
}

// ValidationError lists every schema violation found in a table file.
type ValidationError struct {
	Name   string
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := issue.Location
		if location == "" {
			location = "#"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return fmt.Sprintf("%s: %s", e.Name, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidTable }

type tableDocument struct {
	Symbols []interfaces.Symbol `json:"symbols"`
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(schemaURL, strings.NewReader(tableSchema)); err != nil {
			compileErr = err
			return
		}
		compiled, compileErr = compiler.Compile(schemaURL)
	})
	return compiled, compileErr
}

// Load reads name from fsys.
func Load(fsys fs.FS, name string) (*memory.Table, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("tablefile: read %s: %w", name, err)
	}
	return Parse(name, data)
}

// Parse decodes data using the format implied by the extension of name.
// Symbols keep their file order.
func Parse(name string, data []byte) (*memory.Table, error) {
	raw, err := decode(name, data)
	if err != nil {
		return nil, err
	}

	// Normalise to the JSON data model the validator expects.
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("tablefile: encode %s: %w", name, err)
	}
	var instance any
	if err := json.Unmarshal(encoded, &instance); err != nil {
		return nil, fmt.Errorf("tablefile: encode %s: %w", name, err)
	}

	s, err := schema()
	if err != nil {
		return nil, fmt.Errorf("tablefile: compile schema: %w", err)
	}
	if err := s.Validate(instance); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return nil, &ValidationError{Name: name, Issues: collectIssues(verr)}
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTable, name, err)
	}

	var doc tableDocument
	dec := json.NewDecoder(bytes.NewReader(encoded))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTable, name, err)
	}
	return memory.NewTable(doc.Symbols...), nil
}

func decode(name string, data []byte) (any, error) {
	var raw map[string]any
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTable, name, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTable, name, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTable, name, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

func collectIssues(err *jsonschema.ValidationError) []Issue {
	var issues []Issue
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if len(node.Causes) == 0 {
			issues = append(issues, Issue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
