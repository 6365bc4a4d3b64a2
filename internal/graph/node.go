package graph

import (
	"github.com/segal-development/nurtureflow/pkg/schema"
)

// Node is a positioned vertex in the flow graph. Exactly one payload
// pointer is set, matching Type. Position is presentational only.
type Node struct {
	ID       string          `json:"id"`
	Type     schema.NodeType `json:"type"`
	Position schema.Position `json:"position"`

	Initial     *InitialPayload     `json:"initial,omitempty"`
	Stage       *StagePayload       `json:"stage,omitempty"`
	Conditional *ConditionalPayload `json:"conditional,omitempty"`
	End         *EndPayload         `json:"end,omitempty"`
}

// InitialPayload is the data of the single entry node. Origin fields are
// bound once, when the flow is started from a prospect-source selection.
type InitialPayload struct {
	Label         string `json:"label"`
	OriginID      string `json:"origen_id,omitempty"`
	OriginName    string `json:"origen_nombre,omitempty"`
	ProspectCount int    `json:"prospectos_count,omitempty"`
}

// StagePayload is the data of a message-sending step.
// Active is a tri-state: nil means "not set" and maps to true.
type StagePayload struct {
	Label        string                 `json:"label,omitempty"`
	WaitDays     int                    `json:"dias_espera,omitempty"`
	Channel      schema.Channel         `json:"tipo_mensaje,omitempty"`
	TemplateID   string                 `json:"plantilla_id,omitempty"`
	TemplateType schema.TemplateRefType `json:"plantilla_type,omitempty"`
	Message      string                 `json:"mensaje,omitempty"`
	StartDate    string                 `json:"fecha_inicio,omitempty"`
	Active       *bool                  `json:"activo,omitempty"`
}

// ConditionalPayload is the data of a branching step.
type ConditionalPayload struct {
	Label           string               `json:"label,omitempty"`
	Description     string               `json:"description,omitempty"`
	ConditionType   schema.ConditionType `json:"condition_type,omitempty"`
	ConditionLabel  string               `json:"condition_label,omitempty"`
	YesLabel        string               `json:"yes_label,omitempty"`
	NoLabel         string               `json:"no_label,omitempty"`
	CheckParam      string               `json:"check_param,omitempty"`
	CheckOperator   schema.Operator      `json:"check_operator,omitempty"`
	CheckValue      string               `json:"check_value,omitempty"`
	CheckExpression string               `json:"check_expression,omitempty"`
}

// EndPayload is the data of a flow exit.
type EndPayload struct {
	Label       string `json:"label,omitempty"`
	Description string `json:"description,omitempty"`
}

// Edge is a directed connection between two nodes. Handles identify
// sub-ports: a source handle containing "yes" marks the affirmative
// branch of a conditional node.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
	Type         string `json:"type,omitempty"`
}

// sameLink reports whether two edges connect the same ports of the same
// node pair. Edge IDs are ignored.
func sameLink(a, b Edge) bool {
	return a.Source == b.Source &&
		a.Target == b.Target &&
		a.SourceHandle == b.SourceHandle &&
		a.TargetHandle == b.TargetHandle
}

// StageUpdate carries a partial update of a stage payload. Nil fields are
// left untouched.
type StageUpdate struct {
	Label        *string
	WaitDays     *int
	Channel      *schema.Channel
	TemplateID   *string
	TemplateType *schema.TemplateRefType
	Message      *string
	StartDate    *string
	Active       *bool
}

// ConditionalUpdate carries a partial update of a conditional payload.
type ConditionalUpdate struct {
	Label           *string
	Description     *string
	ConditionType   *schema.ConditionType
	ConditionLabel  *string
	YesLabel        *string
	NoLabel         *string
	CheckParam      *string
	CheckOperator   *schema.Operator
	CheckValue      *string
	CheckExpression *string
}

// EndUpdate carries a partial update of an end payload.
type EndUpdate struct {
	Label       *string
	Description *string
}
