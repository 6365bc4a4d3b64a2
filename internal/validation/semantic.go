package validation

import (
	"fmt"
	"time"

	"github.com/segal-development/nurtureflow/pkg/schema"
)

// validateSemantic performs semantic analysis on a flow definition.
// Checks: exactly one initial node, branch endpoint references, duplicate
// links, stage ordering/dates/template refs, condition predicate fields.
func validateSemantic(def *schema.FlowDefinition) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	nodeIDs := make(map[string]schema.NodeType, len(def.VisualNodes))
	initials := 0
	for _, vn := range def.VisualNodes {
		nodeIDs[vn.ID] = vn.Type
		if vn.Type == schema.NodeInitial {
			initials++
		}
	}
	if initials == 0 {
		result.AddError("visual_nodes", schema.ErrCodeValidation,
			"flow has no initial node")
	} else if initials > 1 {
		result.AddError("visual_nodes", schema.ErrCodeValidation,
			fmt.Sprintf("flow has %d initial nodes, expected exactly 1", initials))
	}

	validateStages(def, result)
	validateConditions(def, result)
	validateBranches(def, nodeIDs, result)

	return result
}

func validateStages(def *schema.FlowDefinition, result *schema.ValidationResult) {
	for i, s := range def.Stages {
		path := fmt.Sprintf("stages[%d]", i)

		// orden must be contiguous and follow array position.
		if s.Order != i {
			result.AddError(path+".orden", schema.ErrCodeValidation,
				fmt.Sprintf("orden %d does not match array position %d", s.Order, i))
		}

		if s.TipoMensaje != s.Canal {
			result.AddWarning(path+".canal", schema.ErrCodeValidation,
				fmt.Sprintf("canal %q disagrees with tipo_mensaje %q; the delivery and reporting pipelines will see different channels", s.Canal, s.TipoMensaje))
		}

		switch s.TemplateType {
		case schema.TemplateRefStored:
			if s.TemplateID == "" {
				result.AddError(path+".plantilla_id", schema.ErrCodeValidation,
					"plantilla_type \"template\" requires plantilla_id")
			}
		case schema.TemplateRefInline:
			if s.Message == "" {
				result.AddWarning(path+".mensaje", schema.ErrCodeValidation,
					"inline stage has an empty message body")
			}
		}

		if s.StartDate != "" {
			if _, err := time.Parse("2006-01-02", s.StartDate); err != nil {
				result.AddError(path+".fecha_inicio", schema.ErrCodeValidation,
					fmt.Sprintf("invalid start date %q, expected YYYY-MM-DD", s.StartDate))
			}
		}
	}
}

func validateConditions(def *schema.FlowDefinition, result *schema.ValidationResult) {
	for i, c := range def.Conditions {
		path := fmt.Sprintf("conditions[%d]", i)

		if c.ConditionType == schema.CondCustom {
			if c.CheckExpression == "" {
				result.AddError(path+".check_expression", schema.ErrCodeValidation,
					"custom condition requires check_expression")
			}
			continue
		}

		if !c.CheckOperator.Valid() {
			result.AddError(path+".check_operator", schema.ErrCodeValidation,
				fmt.Sprintf("invalid comparison operator %q", c.CheckOperator))
		}
		if c.CheckValue == "" {
			result.AddError(path+".check_value", schema.ErrCodeValidation,
				"condition has no comparison value")
		}
	}
}

func validateBranches(def *schema.FlowDefinition, nodeIDs map[string]schema.NodeType, result *schema.ValidationResult) {
	type link struct {
		source, target, sh, th string
	}
	seen := make(map[link]bool, len(def.Branches))

	for i, b := range def.Branches {
		path := fmt.Sprintf("branches[%d]", i)

		if _, ok := nodeIDs[b.Source]; !ok {
			result.AddError(path+".source", schema.ErrCodeValidation,
				fmt.Sprintf("references non-existent node %q", b.Source))
		}
		if _, ok := nodeIDs[b.Target]; !ok {
			result.AddError(path+".target", schema.ErrCodeValidation,
				fmt.Sprintf("references non-existent node %q", b.Target))
		}

		l := link{b.Source, b.Target, b.SourceHandle, b.TargetHandle}
		if seen[l] {
			result.AddError(path, schema.ErrCodeDuplicateEdge,
				fmt.Sprintf("duplicate edge %s → %s", b.Source, b.Target))
		}
		seen[l] = true

		// "yes" branches only make sense out of a conditional node.
		if b.ConditionBranch == schema.BranchYes {
			if t, ok := nodeIDs[b.Source]; ok && t != schema.NodeConditional {
				result.AddError(path+".condition_branch", schema.ErrCodeValidation,
					fmt.Sprintf("yes-branch leaves a %s node, expected conditional", t))
			}
		}
	}
}
