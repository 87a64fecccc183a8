package chartconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "gantt://chart-config.schema.json"

// documentSchema describes the structure of a raw chart configuration
// document. Presence of mandatory fields is checked separately so that the
// error can name each missing field.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "directories": {
      "type": "object",
      "properties": {
        "csv": {"type": "string"},
        "target": {"type": "string"}
      }
    },
    "fields": {
      "type": "object",
      "additionalProperties": {"type": "string"}
    },
    "date_format": {
      "type": "object",
      "properties": {
        "input": {"type": "string"},
        "display": {"type": "string"}
      }
    },
    "filters": {
      "type": ["array", "string", "null"],
      "items": {
        "type": "object",
        "properties": {
          "field": {"type": "string"},
          "operator": {"type": "string"}
        }
      }
    },
    "sort_by": {"type": "string"},
    "visualization": {
      "type": "object",
      "properties": {
        "bar_height": {"type": ["number", "string"]},
        "chart_line_style": {"type": "string"},
        "colors": {
          "type": "object",
          "additionalProperties": {"type": "string"}
        },
        "categories": {
          "type": "object",
          "additionalProperties": {
            "type": "object",
            "properties": {
              "color": {"type": "string"},
              "font_color": {"type": "string"},
              "font_size": {"type": ["number", "string"]}
            }
          }
        },
        "fonts": {"type": "object"},
        "palette": {
          "type": "object",
          "properties": {
            "from": {"type": "string"},
            "to": {"type": "string"}
          }
        }
      }
    },
    "milestones": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["date"],
        "properties": {
          "date": {"type": "string"},
          "name": {"type": ["string", "null"]},
          "pos": {"type": ["number", "string"]},
          "color": {"type": "string"},
          "line_style": {"type": "string"}
        }
      }
    }
  }
}`

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, strings.NewReader(documentSchema)); err != nil {
		return nil, err
	}
	return compiler.Compile(schemaURL)
})

// validateDocument checks raw against the document schema. raw is
// round-tripped through JSON first so that YAML and TOML scalars validate
// the same way JSON ones do.
func validateDocument(raw map[string]any) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshal document: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		var msgs []string
		collectSchemaErrors(ve, &msgs)
		return errors.New(strings.Join(msgs, "; "))
	}
	return nil
}

func collectSchemaErrors(err *jsonschema.ValidationError, out *[]string) {
	if len(err.Causes) == 0 {
		loc := strings.TrimPrefix(err.InstanceLocation, "/")
		if loc == "" {
			loc = "(root)"
		}
		*out = append(*out, fmt.Sprintf("%s: %s", strings.ReplaceAll(loc, "/", "."), err.Message))
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(cause, out)
	}
}
