package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	mcerrors "github.com/systmms/memclear/internal/errors"
)

// documentSchema is the JSON Schema for .memclear.yaml. Structural rules
// live here; semantic rules (duration syntax, version pinning) are checked
// in Load where they can carry better suggestions.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "version": {"type": "integer"},
    "exec": {
      "type": "object",
      "properties": {
        "env_file": {"type": "string"},
        "shred_after": {"type": "boolean"},
        "timeout": {"type": "string"},
        "metrics_listen": {"type": "string"},
        "mask": {"type": "array", "items": {"type": "string"}},
        "env": {"type": "object", "additionalProperties": {"type": "string"}}
      },
      "additionalProperties": false
    },
    "shred": {
      "type": "object",
      "properties": {
        "passes": {"type": "integer", "minimum": 1, "maximum": 10},
        "remove": {"type": "boolean"}
      },
      "additionalProperties": false
    },
    "doctor": {
      "type": "object",
      "properties": {
        "verbose": {"type": "boolean"}
      },
      "additionalProperties": false
    }
  },
  "additionalProperties": false
}`

// validateDocument checks raw YAML against the embedded schema. Validating
// the raw document instead of the decoded struct is what lets unknown keys
// surface; yaml.Unmarshal would silently drop them.
func validateDocument(data []byte) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return mcerrors.ConfigError{
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters. Use a YAML validator",
		}
	}
	if raw == nil {
		// Empty file, defaults apply.
		return nil
	}

	jsonData, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to convert config for validation: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(documentSchema),
		gojsonschema.NewBytesLoader(jsonData),
	)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		var errorMessages []string
		for _, desc := range result.Errors() {
			errorMessages = append(errorMessages, desc.String())
		}
		return mcerrors.ConfigError{
			Message:    "configuration does not match the expected layout:\n  - " + strings.Join(errorMessages, "\n  - "),
			Suggestion: "Valid top-level sections are 'version', 'exec', 'shred' and 'doctor'",
		}
	}

	return nil
}
