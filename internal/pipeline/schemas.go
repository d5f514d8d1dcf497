package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/drawbridge-dev/drawbridge/pkg/schema"
)

// JSON Schemas for the payloads the generation service is asked to return.
// Embedded as constants to avoid filesystem dependencies. Facet fields
// accept "true"/"false" strings as well as booleans because models drift
// between the two spellings.
const intentSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["primary_intent", "domain", "complexity"],
  "properties": {
    "primary_intent": { "type": "string", "minLength": 1 },
    "domain": { "type": "string" },
    "complexity": { "type": "string" },
    "entities": { "type": "array", "items": { "type": "string" } },
    "relationships": { "type": "array", "items": { "type": "string" } },
    "temporal_aspect": { "type": ["boolean", "string"] },
    "hierarchical_aspect": { "type": ["boolean", "string"] },
    "data_visualization": { "type": ["boolean", "string"] },
    "process_flow": { "type": ["boolean", "string"] },
    "system_design": { "type": ["boolean", "string"] }
  }
}`

const suggestionsSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "required": ["type", "title"],
    "properties": {
      "type": { "type": "string", "minLength": 1 },
      "title": { "type": "string", "minLength": 1 },
      "description": { "type": "string" },
      "use_case": { "type": "string" },
      "complexity": { "type": "string" }
    }
  }
}`

const recommendationsSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "minItems": 1,
  "items": { "type": "string", "minLength": 1 }
}`

const ideasSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "required": ["title", "description", "example_input", "diagram_type"],
    "properties": {
      "title": { "type": "string", "minLength": 1 },
      "description": { "type": "string" },
      "example_input": { "type": "string", "minLength": 1 },
      "diagram_type": { "type": "string" },
      "category": { "type": "string" },
      "complexity": { "type": "string" }
    }
  }
}`

// payloadSchemas holds the pre-compiled schemas for every JSON-expecting
// call to the generation service. Read-only after construction.
type payloadSchemas struct {
	intent          *jsonschema.Schema
	suggestions     *jsonschema.Schema
	recommendations *jsonschema.Schema
	ideas           *jsonschema.Schema
}

func compilePayloadSchemas() (*payloadSchemas, error) {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	compile := func(name, doc string) (*jsonschema.Schema, error) {
		parsed, err := jsonschema.UnmarshalJSON(strings.NewReader(doc))
		if err != nil {
			return nil, fmt.Errorf("unmarshal %s schema: %w", name, err)
		}
		url := "https://drawbridge.dev/schemas/" + name + ".json"
		if err := c.AddResource(url, parsed); err != nil {
			return nil, fmt.Errorf("add %s schema resource: %w", name, err)
		}
		compiled, err := c.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile %s schema: %w", name, err)
		}
		return compiled, nil
	}

	var ps payloadSchemas
	var err error
	if ps.intent, err = compile("intent", intentSchemaJSON); err != nil {
		return nil, err
	}
	if ps.suggestions, err = compile("suggestions", suggestionsSchemaJSON); err != nil {
		return nil, err
	}
	if ps.recommendations, err = compile("recommendations", recommendationsSchemaJSON); err != nil {
		return nil, err
	}
	if ps.ideas, err = compile("ideas", ideasSchemaJSON); err != nil {
		return nil, err
	}
	return &ps, nil
}

// validate round-trips v through JSON encoding so numbers become
// json.Number (required by the jsonschema library) and validates it. A
// violation triggers the same stage fallback as a parse failure.
func validatePayload(s *jsonschema.Schema, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return schema.NewError(schema.ErrCodeDecode, "serialize payload for validation").WithCause(err)
	}
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(b)))
	if err != nil {
		return schema.NewError(schema.ErrCodeDecode, "reparse payload for validation").WithCause(err)
	}
	if err := s.Validate(doc); err != nil {
		return schema.NewError(schema.ErrCodeValidation, "payload failed schema validation").WithCause(err)
	}
	return nil
}
