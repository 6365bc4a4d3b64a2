package schema

import "encoding/json"

// FlowDefinition is the JSON-serializable flow format persisted by the
// backend: the execution plan (stages, conditions, branches, end nodes)
// plus the visual projection used to restore the canvas on reload.
type FlowDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Stages      []StageData     `json:"stages"`
	Conditions  []ConditionData `json:"conditions"`
	Branches    []BranchData    `json:"branches"`
	EndNodes    []EndNodeData   `json:"end_nodes"`
	VisualNodes []VisualNode    `json:"visual_nodes"`
	VisualEdges []VisualEdge    `json:"visual_edges"`
}

// NodeType enumerates the kinds of nodes in a flow graph.
type NodeType string

const (
	NodeInitial     NodeType = "initial"
	NodeStage       NodeType = "stage"
	NodeConditional NodeType = "conditional"
	NodeEnd         NodeType = "end"
)

// Channel is the delivery channel of a stage message.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelBoth  Channel = "ambos"
)

// ConditionType enumerates the recipient behaviors a conditional node
// can branch on.
type ConditionType string

const (
	CondEmailOpened  ConditionType = "email_opened"
	CondLinkClicked  ConditionType = "link_clicked"
	CondEmailBounced ConditionType = "email_bounced"
	CondUnsubscribed ConditionType = "unsubscribed"
	CondCustom       ConditionType = "custom"
)

// TemplateRefType disambiguates how a stage carries its message body.
type TemplateRefType string

const (
	TemplateRefStored TemplateRefType = "template" // plantilla_id points at a stored template
	TemplateRefInline TemplateRefType = "inline"   // mensaje holds the body directly
)

// Operator is a comparison operator in a condition predicate.
type Operator string

const (
	OpGT  Operator = ">"
	OpGTE Operator = ">="
	OpEQ  Operator = "=="
	OpNEQ Operator = "!="
	OpLT  Operator = "<"
	OpLTE Operator = "<="
)

// Valid reports whether the operator is one of the supported comparisons.
func (o Operator) Valid() bool {
	switch o {
	case OpGT, OpGTE, OpEQ, OpNEQ, OpLT, OpLTE:
		return true
	}
	return false
}

// Engagement metric parameter names, as the delivery backend reports them.
const (
	ParamViews        = "Views"
	ParamClicks       = "Clicks"
	ParamBounces      = "Bounces"
	ParamUnsubscribes = "Unsubscribes"
)

// Branch tags which side of a conditional node an edge departs from.
type Branch string

const (
	BranchYes Branch = "yes"
	BranchNo  Branch = "no"
)

// FlowStatus is the lifecycle state of a persisted flow.
type FlowStatus string

const (
	FlowDraft    FlowStatus = "draft"
	FlowActive   FlowStatus = "active"
	FlowArchived FlowStatus = "archived"
)

// Position is a 2D canvas coordinate. Purely presentational: it never
// affects execution semantics.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// StageData is the execution descriptor of one message stage.
// TipoMensaje and Canal carry the same value: the delivery pipeline reads
// tipo_mensaje, the legacy reporting pipeline reads canal.
type StageData struct {
	ID           string          `json:"id"`
	Order        int             `json:"orden"`
	Label        string          `json:"label"`
	WaitDays     int             `json:"dias_espera"`
	TipoMensaje  Channel         `json:"tipo_mensaje"`
	Canal        Channel         `json:"canal"`
	TemplateID   string          `json:"plantilla_id,omitempty"`
	TemplateType TemplateRefType `json:"plantilla_type,omitempty"`
	Message      string          `json:"mensaje,omitempty"`
	StartDate    string          `json:"fecha_inicio,omitempty"` // YYYY-MM-DD, overrides the wait-days offset
	Active       bool            `json:"activo"`
}

// ConditionData is the execution descriptor of one conditional node.
// Type is always the literal "condition".
type ConditionData struct {
	ID              string        `json:"id"`
	Type            string        `json:"type"`
	Label           string        `json:"label"`
	Description     string        `json:"description,omitempty"`
	ConditionType   ConditionType `json:"condition_type"`
	ConditionLabel  string        `json:"condition_label,omitempty"`
	YesLabel        string        `json:"yes_label,omitempty"`
	NoLabel         string        `json:"no_label,omitempty"`
	CheckParam      string        `json:"check_param"`
	CheckOperator   Operator      `json:"check_operator"`
	CheckValue      string        `json:"check_value"`
	CheckExpression string        `json:"check_expression,omitempty"` // CEL, condition_type=custom only
}

// ConditionDiscriminator is the fixed value of ConditionData.Type.
const ConditionDiscriminator = "condition"

// BranchData is the execution descriptor of one edge.
// Edges from non-conditional sources represent plain sequential flow and
// are tagged "no".
type BranchData struct {
	ID              string `json:"id"`
	Source          string `json:"source"`
	Target          string `json:"target"`
	SourceHandle    string `json:"source_handle,omitempty"`
	TargetHandle    string `json:"target_handle,omitempty"`
	ConditionBranch Branch `json:"condition_branch"`
}

// EndNodeData is the execution descriptor of one flow exit.
// Description is nullable in the backend contract.
type EndNodeData struct {
	ID          string  `json:"id"`
	Label       string  `json:"label"`
	Description *string `json:"description"`
}

// VisualNode is the geometry-only projection of a node, persisted so the
// canvas can be restored. Data round-trips opaquely.
type VisualNode struct {
	ID       string          `json:"id"`
	Type     NodeType        `json:"type"`
	Position Position        `json:"position"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// VisualEdge is the geometry-only projection of an edge. Handle names use
// the canvas convention: a source handle containing "yes" marks the
// affirmative branch of a conditional node.
type VisualEdge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
	Type         string `json:"type"`
}

// DefaultEdgeType is the render type assigned to visual edges that carry none.
const DefaultEdgeType = "animated"
