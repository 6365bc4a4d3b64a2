package diagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segal-development/nurtureflow/pkg/schema"
)

func sampleFlow() schema.FlowDefinition {
	return schema.FlowDefinition{
		Name: "welcome-sequence",
		Stages: []schema.StageData{
			{ID: "s2", Order: 1, Label: "Follow up", TipoMensaje: schema.ChannelSMS, Canal: schema.ChannelSMS, Active: false},
			{ID: "s1", Order: 0, Label: "Welcome", TipoMensaje: schema.ChannelEmail, Canal: schema.ChannelEmail, Active: true},
		},
		Conditions: []schema.ConditionData{
			{ID: "c1", Type: schema.ConditionDiscriminator, Label: "Opened?", ConditionType: schema.CondEmailOpened},
		},
		EndNodes: []schema.EndNodeData{{ID: "end-1", Label: "Fin"}},
		VisualNodes: []schema.VisualNode{
			{ID: "initial-1", Type: schema.NodeInitial},
		},
		Branches: []schema.BranchData{
			{ID: "e1", Source: "initial-1", Target: "s1", ConditionBranch: schema.BranchNo},
			{ID: "e2", Source: "s1", Target: "c1", ConditionBranch: schema.BranchNo},
			{ID: "e3", Source: "c1", Target: "s2", ConditionBranch: schema.BranchYes},
			{ID: "e4", Source: "c1", Target: "end-1", ConditionBranch: schema.BranchNo},
		},
	}
}

func TestBuild_NodeKindsAndOrder(t *testing.T) {
	model := Build(sampleFlow())

	require.Len(t, model.Nodes, 5)
	assert.Equal(t, "welcome-sequence", model.Title)

	// Start node first, stages sorted by orden.
	assert.Equal(t, NodeKindStart, model.Nodes[0].Kind)
	assert.Equal(t, "initial-1", model.Nodes[0].ID)
	assert.Equal(t, "s1", model.Nodes[1].ID)
	assert.Equal(t, "s2", model.Nodes[2].ID)
	assert.Equal(t, NodeKindCondition, model.Nodes[3].Kind)
	assert.Equal(t, NodeKindEnd, model.Nodes[4].Kind)
}

func TestBuild_StageLabelsAndInactive(t *testing.T) {
	model := Build(sampleFlow())

	assert.Equal(t, "1. Welcome (email)", model.Nodes[1].Label)
	assert.False(t, model.Nodes[1].Inactive)
	assert.Equal(t, "2. Follow up (sms)", model.Nodes[2].Label)
	assert.True(t, model.Nodes[2].Inactive)
}

func TestBuild_ConditionalEdgeLabels(t *testing.T) {
	model := Build(sampleFlow())

	require.Len(t, model.Edges, 4)
	// Plain edges carry no label.
	assert.Equal(t, "", model.Edges[0].Label)
	assert.Equal(t, "", model.Edges[1].Label)
	// Conditional edges labeled by branch.
	assert.Equal(t, "sí", model.Edges[2].Label)
	assert.Equal(t, "no", model.Edges[3].Label)
}

func TestBuild_FallbackInitialID(t *testing.T) {
	def := sampleFlow()
	def.VisualNodes = nil

	model := Build(def)
	assert.Equal(t, "initial-1", model.Nodes[0].ID)
}

func TestBuild_EmptyEndLabel(t *testing.T) {
	def := sampleFlow()
	def.EndNodes[0].Label = ""

	model := Build(def)
	assert.Equal(t, "Fin", model.Nodes[4].Label)
}
