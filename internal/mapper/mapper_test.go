package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segal-development/nurtureflow/internal/graph"
	"github.com/segal-development/nurtureflow/pkg/schema"
)

func stageNode(id, label string) graph.Node {
	return graph.Node{
		ID:    id,
		Type:  schema.NodeStage,
		Stage: &graph.StagePayload{Label: label},
	}
}

func TestStagesToBackend_OrderFollowsArrayPosition(t *testing.T) {
	nodes := []graph.Node{
		{ID: "initial-1", Type: schema.NodeInitial, Initial: &graph.InitialPayload{}},
		stageNode("s1", "uno"),
		stageNode("s2", "dos"),
		stageNode("s3", "tres"),
		{ID: "end-1", Type: schema.NodeEnd, End: &graph.EndPayload{}},
	}

	stages := StagesToBackend(nodes)
	require.Len(t, stages, 3)
	for i, s := range stages {
		assert.Equal(t, i, s.Order)
	}
	assert.Equal(t, []string{"s1", "s2", "s3"},
		[]string{stages[0].ID, stages[1].ID, stages[2].ID})
}

func TestStagesToBackend_Defaults(t *testing.T) {
	inactive := false
	nodes := []graph.Node{
		{ID: "s1", Type: schema.NodeStage, Stage: &graph.StagePayload{}},
		{ID: "s2", Type: schema.NodeStage, Stage: &graph.StagePayload{
			Label:    "Recordatorio",
			WaitDays: 5,
			Channel:  schema.ChannelBoth,
			Active:   &inactive,
		}},
	}

	stages := StagesToBackend(nodes)
	require.Len(t, stages, 2)

	assert.Equal(t, "Stage 1", stages[0].Label)
	assert.Equal(t, 0, stages[0].WaitDays)
	assert.Equal(t, schema.ChannelEmail, stages[0].TipoMensaje)
	assert.Equal(t, schema.ChannelEmail, stages[0].Canal)
	assert.True(t, stages[0].Active)

	assert.Equal(t, "Recordatorio", stages[1].Label)
	assert.Equal(t, 5, stages[1].WaitDays)
	assert.Equal(t, schema.ChannelBoth, stages[1].TipoMensaje)
	assert.Equal(t, schema.ChannelBoth, stages[1].Canal)
	assert.False(t, stages[1].Active)
}

func TestConditionsToBackend_DefaultParamTable(t *testing.T) {
	cases := []struct {
		condType schema.ConditionType
		want     string
	}{
		{schema.CondEmailOpened, schema.ParamViews},
		{schema.CondLinkClicked, schema.ParamClicks},
		{schema.CondEmailBounced, schema.ParamBounces},
		{schema.CondUnsubscribed, schema.ParamUnsubscribes},
		{schema.CondCustom, schema.ParamViews},
		{schema.ConditionType(""), schema.ParamViews},
	}
	for _, tc := range cases {
		t.Run(string(tc.condType), func(t *testing.T) {
			nodes := []graph.Node{{
				ID:   "c1",
				Type: schema.NodeConditional,
				Conditional: &graph.ConditionalPayload{
					ConditionType: tc.condType,
				},
			}}
			conds := ConditionsToBackend(nodes)
			require.Len(t, conds, 1)
			assert.Equal(t, tc.want, conds[0].CheckParam)
			assert.Equal(t, schema.ConditionDiscriminator, conds[0].Type)
		})
	}
}

func TestConditionsToBackend_ExplicitParamWins(t *testing.T) {
	nodes := []graph.Node{{
		ID:   "c1",
		Type: schema.NodeConditional,
		Conditional: &graph.ConditionalPayload{
			ConditionType: schema.CondLinkClicked,
			CheckParam:    schema.ParamViews,
			CheckOperator: schema.OpGT,
			CheckValue:    "3",
		},
	}}
	conds := ConditionsToBackend(nodes)
	require.Len(t, conds, 1)
	assert.Equal(t, schema.ParamViews, conds[0].CheckParam)
	assert.Equal(t, schema.OpGT, conds[0].CheckOperator)
	assert.Equal(t, "3", conds[0].CheckValue)
}

func TestBranchesToBackend_HandleResolution(t *testing.T) {
	nodes := []graph.Node{
		{ID: "c1", Type: schema.NodeConditional, Conditional: &graph.ConditionalPayload{}},
		stageNode("s1", "A"),
		stageNode("s2", "B"),
	}
	edges := []graph.Edge{
		{ID: "e1", Source: "c1", Target: "s1", SourceHandle: "output-yes"},
		{ID: "e2", Source: "c1", Target: "s2", SourceHandle: "output-no"},
	}

	branches := BranchesToBackend(edges, nodes)
	require.Len(t, branches, 2)
	assert.Equal(t, schema.BranchYes, branches[0].ConditionBranch)
	assert.Equal(t, schema.BranchNo, branches[1].ConditionBranch)
}

func TestBranchesToBackend_IncludesAllEdges(t *testing.T) {
	nodes := []graph.Node{
		{ID: "initial-1", Type: schema.NodeInitial, Initial: &graph.InitialPayload{}},
		stageNode("s1", "A"),
	}
	// Sequential edge from a non-conditional source is kept, tagged "no".
	edges := []graph.Edge{
		{ID: "e1", Source: "initial-1", Target: "s1", SourceHandle: "yes-looking-handle"},
	}

	branches := BranchesToBackend(edges, nodes)
	require.Len(t, branches, 1)
	assert.Equal(t, schema.BranchNo, branches[0].ConditionBranch)
	assert.Equal(t, "initial-1", branches[0].Source)
	assert.Equal(t, "s1", branches[0].Target)
}

func TestEndNodesToBackend_NullableDescription(t *testing.T) {
	nodes := []graph.Node{
		{ID: "end-1", Type: schema.NodeEnd, End: &graph.EndPayload{Label: "Fin"}},
		{ID: "end-2", Type: schema.NodeEnd, End: &graph.EndPayload{Label: "Baja", Description: "unsubscribed exit"}},
	}

	ends := EndNodesToBackend(nodes)
	require.Len(t, ends, 2)
	assert.Nil(t, ends[0].Description)
	require.NotNil(t, ends[1].Description)
	assert.Equal(t, "unsubscribed exit", *ends[1].Description)
}

func TestEdgesToVisual_DefaultType(t *testing.T) {
	edges := []graph.Edge{
		{ID: "e1", Source: "a", Target: "b"},
		{ID: "e2", Source: "b", Target: "c", Type: "step"},
	}
	visual := EdgesToVisual(edges)
	require.Len(t, visual, 2)
	assert.Equal(t, schema.DefaultEdgeType, visual[0].Type)
	assert.Equal(t, "step", visual[1].Type)
}

func TestInitialAndEndLookups(t *testing.T) {
	assert.Nil(t, InitialNode(nil))
	assert.Empty(t, EndNodes(nil))

	nodes := []graph.Node{
		stageNode("s1", "A"),
		{ID: "initial-1", Type: schema.NodeInitial, Initial: &graph.InitialPayload{Label: "Inicio"}},
		{ID: "end-1", Type: schema.NodeEnd, End: &graph.EndPayload{}},
	}
	initial := InitialNode(nodes)
	require.NotNil(t, initial)
	assert.Equal(t, "initial-1", initial.ID)
	assert.Len(t, EndNodes(nodes), 1)
}

func TestRoundTrip_VisualThenLoad(t *testing.T) {
	b := graph.New()
	b.SetName("bienvenida")
	stageID := b.AddStageNode()
	label := "A"
	require.NoError(t, b.UpdateStage(stageID, graph.StageUpdate{Label: &label}))
	require.NoError(t, b.AddEdge(graph.Edge{
		ID: "e1", Source: graph.SeedInitialID, Target: stageID, Type: "animated",
	}))
	require.NoError(t, b.AddEdge(graph.Edge{
		ID: "e2", Source: stageID, Target: graph.SeedEndID, Type: "animated",
	}))

	def := ToDefinition(b)
	nodes, edges, err := FromDefinition(&def)
	require.NoError(t, err)

	loaded := graph.New()
	loaded.Load(nodes, edges)

	assert.Equal(t, b.Nodes(), loaded.Nodes())
	assert.Equal(t, b.Edges(), loaded.Edges())
}

func TestFromDefinition_FallsBackToExecutionDTOs(t *testing.T) {
	desc := "salida"
	def := &schema.FlowDefinition{
		Stages: []schema.StageData{{
			ID: "s1", Order: 0, Label: "A", WaitDays: 2,
			TipoMensaje: schema.ChannelSMS, Canal: schema.ChannelSMS, Active: true,
		}},
		Conditions: []schema.ConditionData{{
			ID: "c1", Type: schema.ConditionDiscriminator,
			ConditionType: schema.CondLinkClicked,
			CheckParam:    schema.ParamClicks,
			CheckOperator: schema.OpGT,
			CheckValue:    "0",
		}},
		EndNodes: []schema.EndNodeData{{ID: "end-1", Label: "Fin", Description: &desc}},
		VisualNodes: []schema.VisualNode{
			{ID: "s1", Type: schema.NodeStage},
			{ID: "c1", Type: schema.NodeConditional},
			{ID: "end-1", Type: schema.NodeEnd},
		},
		VisualEdges: []schema.VisualEdge{
			{ID: "e1", Source: "s1", Target: "c1"},
		},
	}

	nodes, edges, err := FromDefinition(def)
	require.NoError(t, err)
	require.Len(t, nodes, 3)

	require.NotNil(t, nodes[0].Stage)
	assert.Equal(t, "A", nodes[0].Stage.Label)
	assert.Equal(t, 2, nodes[0].Stage.WaitDays)
	assert.Equal(t, schema.ChannelSMS, nodes[0].Stage.Channel)
	assert.Nil(t, nodes[0].Stage.Active)

	require.NotNil(t, nodes[1].Conditional)
	assert.Equal(t, schema.CondLinkClicked, nodes[1].Conditional.ConditionType)
	assert.Equal(t, schema.ParamClicks, nodes[1].Conditional.CheckParam)

	require.NotNil(t, nodes[2].End)
	assert.Equal(t, "salida", nodes[2].End.Description)

	require.Len(t, edges, 1)
	assert.Equal(t, schema.DefaultEdgeType, edges[0].Type)
}

func TestFromDefinition_Errors(t *testing.T) {
	_, _, err := FromDefinition(nil)
	require.Error(t, err)

	def := &schema.FlowDefinition{
		VisualNodes: []schema.VisualNode{{ID: "x", Type: "mystery"}},
	}
	_, _, err = FromDefinition(def)
	require.Error(t, err)
	fe, ok := err.(*schema.FlowError)
	require.True(t, ok)
	assert.Equal(t, schema.ErrCodeValidation, fe.Code)
	assert.Equal(t, "x", fe.NodeID)
}

func TestToDefinition_CarriesMetadata(t *testing.T) {
	b := graph.New()
	b.SetName("campaña otoño")
	b.SetDescription("reactivación")
	require.NoError(t, b.InitializeWithOrigin("o1", "Origin One", 42))

	def := ToDefinition(b)
	assert.Equal(t, "campaña otoño", def.Name)
	assert.Equal(t, "reactivación", def.Description)
	require.Len(t, def.VisualNodes, 2)
	assert.Contains(t, string(def.VisualNodes[0].Data), `"origen_id":"o1"`)
	assert.Contains(t, string(def.VisualNodes[0].Data), `"prospectos_count":42`)
}
