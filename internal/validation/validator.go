package validation

import "github.com/segal-development/nurtureflow/pkg/schema"

// FlowValidator orchestrates the three-stage validation pipeline:
// 1. Structural (JSON Schema)
// 2. Semantic (node refs, predicate fields, ordering)
// 3. Graph (cycles, reachability, sequence consistency)
type FlowValidator struct {
	jsonSchema *JSONSchemaValidator
}

// NewFlowValidator creates a FlowValidator with the flow schema pre-compiled.
func NewFlowValidator() (*FlowValidator, error) {
	jsv, err := NewJSONSchemaValidator()
	if err != nil {
		return nil, err
	}
	return &FlowValidator{jsonSchema: jsv}, nil
}

// Validate runs the full 3-stage pipeline and returns an aggregated result.
// Structural errors short-circuit: semantic and graph stages are skipped.
func (fv *FlowValidator) Validate(def *schema.FlowDefinition) *schema.ValidationResult {
	if def == nil {
		r := &schema.ValidationResult{}
		r.AddError("/", schema.ErrCodeValidation, "flow definition is nil")
		return r
	}

	result := validateStructural(fv.jsonSchema, def)
	if !result.Valid() {
		return result
	}

	result.Merge(validateSemantic(def))

	// Graph stage is skipped on semantic errors — the graph may be invalid.
	if result.Valid() {
		result.Merge(validateGraph(def))
	}

	return result
}

// ValidateDefinition runs the pipeline and collapses the result to an error.
func (fv *FlowValidator) ValidateDefinition(def *schema.FlowDefinition) error {
	return fv.Validate(def).ToError()
}

// validateStructural wraps JSONSchemaValidator.ValidateDefinition, converting
// its error output into a ValidationResult.
func validateStructural(v *JSONSchemaValidator, def *schema.FlowDefinition) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	err := v.ValidateDefinition(def)
	if err == nil {
		return result
	}

	if fe, ok := err.(*schema.FlowError); ok {
		if violations, ok := fe.Details["violations"].([]string); ok && len(violations) > 0 {
			for _, violation := range violations {
				result.AddError("/", schema.ErrCodeValidation, violation)
			}
			return result
		}
		result.AddError("/", fe.Code, fe.Message)
		return result
	}

	result.AddError("/", schema.ErrCodeValidation, err.Error())
	return result
}
