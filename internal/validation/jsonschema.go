package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/segal-development/nurtureflow/pkg/schema"
)

// flowSchemaJSON is the JSON Schema for FlowDefinition validation.
// Embedded as a constant to avoid filesystem dependencies.
const flowSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://nurtureflow.dev/schemas/flow.json",
  "type": "object",
  "required": ["stages", "conditions", "branches", "end_nodes"],
  "properties": {
    "name": { "type": "string" },
    "description": { "type": "string" },
    "stages": {
      "type": "array",
      "items": { "$ref": "#/$defs/stage" }
    },
    "conditions": {
      "type": "array",
      "items": { "$ref": "#/$defs/condition" }
    },
    "branches": {
      "type": "array",
      "items": { "$ref": "#/$defs/branch" }
    },
    "end_nodes": {
      "type": "array",
      "items": { "$ref": "#/$defs/end_node" }
    },
    "visual_nodes": {
      "type": "array",
      "items": { "$ref": "#/$defs/visual_node" }
    },
    "visual_edges": {
      "type": "array",
      "items": { "$ref": "#/$defs/visual_edge" }
    }
  },
  "additionalProperties": false,
  "$defs": {
    "channel": {
      "type": "string",
      "enum": ["email", "sms", "ambos"]
    },
    "stage": {
      "type": "object",
      "required": ["id", "orden", "label", "dias_espera", "tipo_mensaje", "canal", "activo"],
      "properties": {
        "id": { "type": "string", "minLength": 1 },
        "orden": { "type": "integer", "minimum": 0 },
        "label": { "type": "string" },
        "dias_espera": { "type": "integer", "minimum": 0 },
        "tipo_mensaje": { "$ref": "#/$defs/channel" },
        "canal": { "$ref": "#/$defs/channel" },
        "plantilla_id": { "type": "string" },
        "plantilla_type": { "type": "string", "enum": ["template", "inline"] },
        "mensaje": { "type": "string" },
        "fecha_inicio": { "type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$" },
        "activo": { "type": "boolean" }
      },
      "additionalProperties": false
    },
    "condition": {
      "type": "object",
      "required": ["id", "type", "condition_type", "check_param", "check_value"],
      "properties": {
        "id": { "type": "string", "minLength": 1 },
        "type": { "type": "string", "const": "condition" },
        "label": { "type": "string" },
        "description": { "type": "string" },
        "condition_type": {
          "type": "string",
          "enum": ["email_opened", "link_clicked", "email_bounced", "unsubscribed", "custom"]
        },
        "condition_label": { "type": "string" },
        "yes_label": { "type": "string" },
        "no_label": { "type": "string" },
        "check_param": { "type": "string" },
        "check_operator": { "type": "string" },
        "check_value": { "type": "string" },
        "check_expression": { "type": "string" }
      },
      "additionalProperties": false
    },
    "branch": {
      "type": "object",
      "required": ["id", "source", "target", "condition_branch"],
      "properties": {
        "id": { "type": "string", "minLength": 1 },
        "source": { "type": "string", "minLength": 1 },
        "target": { "type": "string", "minLength": 1 },
        "source_handle": { "type": "string" },
        "target_handle": { "type": "string" },
        "condition_branch": { "type": "string", "enum": ["yes", "no"] }
      },
      "additionalProperties": false
    },
    "end_node": {
      "type": "object",
      "required": ["id", "label", "description"],
      "properties": {
        "id": { "type": "string", "minLength": 1 },
        "label": { "type": "string" },
        "description": { "type": ["string", "null"] }
      },
      "additionalProperties": false
    },
    "visual_node": {
      "type": "object",
      "required": ["id", "type", "position"],
      "properties": {
        "id": { "type": "string", "minLength": 1 },
        "type": {
          "type": "string",
          "enum": ["initial", "stage", "conditional", "end"]
        },
        "position": {
          "type": "object",
          "required": ["x", "y"],
          "properties": {
            "x": { "type": "number" },
            "y": { "type": "number" }
          },
          "additionalProperties": false
        },
        "data": {}
      },
      "additionalProperties": false
    },
    "visual_edge": {
      "type": "object",
      "required": ["id", "source", "target", "type"],
      "properties": {
        "id": { "type": "string", "minLength": 1 },
        "source": { "type": "string", "minLength": 1 },
        "target": { "type": "string", "minLength": 1 },
        "sourceHandle": { "type": "string" },
        "targetHandle": { "type": "string" },
        "type": { "type": "string" }
      },
      "additionalProperties": false
    }
  }
}`

// JSONSchemaValidator validates flow definitions against the embedded
// JSON Schema (Draft 2020-12). Safe for concurrent use once constructed.
type JSONSchemaValidator struct {
	flowSchema *jsonschema.Schema
}

// NewJSONSchemaValidator compiles the flow schema.
func NewJSONSchemaValidator() (*JSONSchemaValidator, error) {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	schemaDoc, err := jsonschema.UnmarshalJSON(strings.NewReader(flowSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal flow schema: %w", err)
	}
	if err := c.AddResource("https://nurtureflow.dev/schemas/flow.json", schemaDoc); err != nil {
		return nil, fmt.Errorf("add flow schema resource: %w", err)
	}

	compiled, err := c.Compile("https://nurtureflow.dev/schemas/flow.json")
	if err != nil {
		return nil, fmt.Errorf("compile flow schema: %w", err)
	}

	return &JSONSchemaValidator{flowSchema: compiled}, nil
}

// ValidateDefinition validates a FlowDefinition against the flow JSON Schema,
// plus structural checks the schema cannot express (duplicate node IDs).
func (v *JSONSchemaValidator) ValidateDefinition(def *schema.FlowDefinition) error {
	if def == nil {
		return schema.NewError(schema.ErrCodeValidation, "flow definition is nil")
	}

	doc, err := toJSONValue(def)
	if err != nil {
		return schema.NewError(schema.ErrCodeValidation, "failed to serialize flow definition").WithCause(err)
	}

	if err := v.flowSchema.Validate(doc); err != nil {
		return toFlowError(err)
	}

	// Node IDs must be unique across the whole flow.
	seen := make(map[string]struct{})
	for _, vn := range def.VisualNodes {
		if _, exists := seen[vn.ID]; exists {
			return schema.NewErrorf(schema.ErrCodeValidation,
				"duplicate node id %q", vn.ID).WithNode(vn.ID)
		}
		seen[vn.ID] = struct{}{}
	}

	return nil
}

// toJSONValue round-trips a Go value through JSON encoding/decoding so that
// numeric values become json.Number (required by the jsonschema library).
func toJSONValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(strings.NewReader(string(b)))
}

// toFlowError converts a jsonschema.ValidationError into a FlowError with
// one message per leaf violation.
func toFlowError(err error) *schema.FlowError {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return schema.NewError(schema.ErrCodeValidation, err.Error())
	}

	violations := collectViolations(verr)
	if len(violations) == 0 {
		return schema.NewError(schema.ErrCodeValidation, verr.Error())
	}

	if len(violations) == 1 {
		return schema.NewError(schema.ErrCodeValidation, violations[0]).
			WithDetails(map[string]any{"violations": violations})
	}

	msg := fmt.Sprintf("validation failed with %d errors", len(violations))
	return schema.NewError(schema.ErrCodeValidation, msg).
		WithDetails(map[string]any{"violations": violations})
}

// collectViolations walks a ValidationError tree and collects leaf error
// messages with their instance locations.
func collectViolations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := "/"
		if len(verr.InstanceLocation) > 0 {
			loc = "/" + strings.Join(verr.InstanceLocation, "/")
		}
		return []string{fmt.Sprintf("%s: %s", loc, verr.Error())}
	}

	var violations []string
	for _, cause := range verr.Causes {
		violations = append(violations, collectViolations(cause)...)
	}
	return violations
}
