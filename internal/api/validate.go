// internal/api/validate.go
package api

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// runRequestSchema mirrors the server's validation of run submissions.
const runRequestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "modelOverride": {
      "type": "object",
      "additionalProperties": false,
      "required": ["provider", "model"],
      "properties": {
        "provider": {
          "type": "string",
          "enum": ["openai", "anthropic", "google", "mistral", "ollama"]
        },
        "model": {"type": "string", "minLength": 1}
      }
    },
    "note": {"type": "string", "maxLength": 500},
    "iterations": {"type": "integer", "minimum": 1, "maximum": 100},
    "tags": {
      "type": "array",
      "items": {"type": "string", "minLength": 1}
    },
    "testCaseIds": {
      "type": "array",
      "items": {"type": "string", "minLength": 1}
    }
  }
}`

// ValidateRunRequestDocument checks a raw JSON run-request document against
// the schema and returns every violation found.
func ValidateRunRequestDocument(doc []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(runRequestSchema),
		gojsonschema.NewBytesLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("run request is not valid JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var problems []string
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return fmt.Errorf("run request is invalid: %s", strings.Join(problems, "; "))
}

// LoadRunRequest reads a run-request document from disk. YAML files are
// converted to JSON before schema validation so both formats share one
// contract.
func LoadRunRequest(path string) (RunRequest, error) {
	var req RunRequest

	raw, err := os.ReadFile(path)
	if err != nil {
		return req, err
	}

	doc := raw
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var node any
		if err := yaml.Unmarshal(raw, &node); err != nil {
			return req, fmt.Errorf("parse %s: %w", path, err)
		}
		doc, err = json.Marshal(node)
		if err != nil {
			return req, fmt.Errorf("convert %s: %w", path, err)
		}
	}

	if err := ValidateRunRequestDocument(doc); err != nil {
		return req, err
	}
	if err := json.Unmarshal(doc, &req); err != nil {
		return req, fmt.Errorf("decode %s: %w", path, err)
	}
	return req, nil
}
