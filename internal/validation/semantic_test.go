package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segal-development/nurtureflow/pkg/schema"
)

func TestSemantic_NoInitialNode(t *testing.T) {
	def := validFlow()
	def.VisualNodes = def.VisualNodes[1:]

	result := validateSemantic(def)
	require.False(t, result.Valid())
	assert.Contains(t, result.Errors[0].Message, "no initial node")
}

func TestSemantic_MultipleInitialNodes(t *testing.T) {
	def := validFlow()
	def.VisualNodes = append(def.VisualNodes, schema.VisualNode{
		ID: "initial-2", Type: schema.NodeInitial,
	})

	result := validateSemantic(def)
	require.False(t, result.Valid())
	assert.Contains(t, result.Errors[0].Message, "expected exactly 1")
}

func TestSemantic_DanglingBranchRefs(t *testing.T) {
	def := validFlow()
	def.Branches = append(def.Branches, schema.BranchData{
		ID: "e3", Source: "ghost", Target: "s1", ConditionBranch: schema.BranchNo,
	})

	result := validateSemantic(def)
	require.False(t, result.Valid())
	assert.Contains(t, result.Errors[0].Path, "branches[2].source")
}

func TestSemantic_DuplicateBranchLink(t *testing.T) {
	def := validFlow()
	def.Branches = append(def.Branches, schema.BranchData{
		ID: "e9", Source: "initial-1", Target: "s1", ConditionBranch: schema.BranchNo,
	})

	result := validateSemantic(def)
	require.False(t, result.Valid())
	assert.Equal(t, schema.ErrCodeDuplicateEdge, result.Errors[0].Code)
}

func TestSemantic_YesBranchFromNonConditional(t *testing.T) {
	def := validFlow()
	def.Branches[0].ConditionBranch = schema.BranchYes

	result := validateSemantic(def)
	require.False(t, result.Valid())
	assert.Contains(t, result.Errors[0].Message, "expected conditional")
}

func TestSemantic_OrderMismatch(t *testing.T) {
	def := validFlow()
	def.Stages[0].Order = 3

	result := validateSemantic(def)
	require.False(t, result.Valid())
	assert.Contains(t, result.Errors[0].Path, "orden")
}

func TestSemantic_ChannelDisagreementWarns(t *testing.T) {
	def := validFlow()
	def.Stages[0].Canal = schema.ChannelSMS

	result := validateSemantic(def)
	assert.True(t, result.Valid())
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0].Message, "disagrees with tipo_mensaje")
}

func TestSemantic_TemplateRefRequiresID(t *testing.T) {
	def := validFlow()
	def.Stages[0].TemplateType = schema.TemplateRefStored

	result := validateSemantic(def)
	require.False(t, result.Valid())
	assert.Contains(t, result.Errors[0].Message, "plantilla_id")
}

func TestSemantic_InlineEmptyMessageWarns(t *testing.T) {
	def := validFlow()
	def.Stages[0].TemplateType = schema.TemplateRefInline

	result := validateSemantic(def)
	assert.True(t, result.Valid())
	require.Len(t, result.Warnings, 1)
}

func TestSemantic_BadStartDate(t *testing.T) {
	def := validFlow()
	def.Stages[0].StartDate = "2026-13-99"

	result := validateSemantic(def)
	require.False(t, result.Valid())
	assert.Contains(t, result.Errors[0].Path, "fecha_inicio")
}

func TestSemantic_ConditionPredicateFields(t *testing.T) {
	def := validFlow()
	def.Conditions = append(def.Conditions, schema.ConditionData{
		ID:            "c1",
		Type:          schema.ConditionDiscriminator,
		ConditionType: schema.CondLinkClicked,
		CheckParam:    schema.ParamClicks,
		CheckOperator: "~=",
		CheckValue:    "",
	})
	def.VisualNodes = append(def.VisualNodes, schema.VisualNode{
		ID: "c1", Type: schema.NodeConditional,
	})

	result := validateSemantic(def)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0].Message, "invalid comparison operator")
	assert.Contains(t, result.Errors[1].Message, "no comparison value")
}

func TestSemantic_CustomConditionRequiresExpression(t *testing.T) {
	def := validFlow()
	def.Conditions = append(def.Conditions, schema.ConditionData{
		ID:            "c1",
		Type:          schema.ConditionDiscriminator,
		ConditionType: schema.CondCustom,
		CheckParam:    schema.ParamViews,
	})
	def.VisualNodes = append(def.VisualNodes, schema.VisualNode{
		ID: "c1", Type: schema.NodeConditional,
	})

	result := validateSemantic(def)
	require.False(t, result.Valid())
	assert.Contains(t, result.Errors[0].Message, "check_expression")
}
