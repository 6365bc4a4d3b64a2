// Package mapper converts a flow graph snapshot into the backend execution
// schema and back. All functions are pure: they read the given collections
// and return new DTO values, never mutating their inputs.
package mapper

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/segal-development/nurtureflow/internal/graph"
	"github.com/segal-development/nurtureflow/pkg/schema"
)

// StagesToBackend projects stage nodes into StageData, assigning orden by
// array position. Array order, not edge connectivity, determines the
// backend-perceived sequence; the validator warns when the two disagree.
func StagesToBackend(nodes []graph.Node) []schema.StageData {
	stages := []schema.StageData{}
	for _, n := range nodes {
		if n.Type != schema.NodeStage || n.Stage == nil {
			continue
		}
		p := n.Stage

		label := p.Label
		if label == "" {
			label = fmt.Sprintf("Stage %d", len(stages)+1)
		}
		channel := p.Channel
		if channel == "" {
			channel = schema.ChannelEmail
		}
		active := p.Active == nil || *p.Active

		stages = append(stages, schema.StageData{
			ID:           n.ID,
			Order:        len(stages),
			Label:        label,
			WaitDays:     p.WaitDays,
			TipoMensaje:  channel,
			Canal:        channel,
			TemplateID:   p.TemplateID,
			TemplateType: p.TemplateType,
			Message:      p.Message,
			StartDate:    p.StartDate,
			Active:       active,
		})
	}
	return stages
}

// ConditionsToBackend projects conditional nodes into ConditionData,
// defaulting check_param from the condition type when absent.
func ConditionsToBackend(nodes []graph.Node) []schema.ConditionData {
	conditions := []schema.ConditionData{}
	for _, n := range nodes {
		if n.Type != schema.NodeConditional || n.Conditional == nil {
			continue
		}
		p := n.Conditional

		param := p.CheckParam
		if param == "" {
			param = DefaultCheckParam(p.ConditionType)
		}

		conditions = append(conditions, schema.ConditionData{
			ID:              n.ID,
			Type:            schema.ConditionDiscriminator,
			Label:           p.Label,
			Description:     p.Description,
			ConditionType:   p.ConditionType,
			ConditionLabel:  p.ConditionLabel,
			YesLabel:        p.YesLabel,
			NoLabel:         p.NoLabel,
			CheckParam:      param,
			CheckOperator:   p.CheckOperator,
			CheckValue:      p.CheckValue,
			CheckExpression: p.CheckExpression,
		})
	}
	return conditions
}

// DefaultCheckParam maps a condition type to the metric it measures.
func DefaultCheckParam(t schema.ConditionType) string {
	switch t {
	case schema.CondEmailOpened:
		return schema.ParamViews
	case schema.CondLinkClicked:
		return schema.ParamClicks
	case schema.CondEmailBounced:
		return schema.ParamBounces
	case schema.CondUnsubscribed:
		return schema.ParamUnsubscribes
	default:
		return schema.ParamViews
	}
}

// BranchesToBackend produces one BranchData per edge. Edges leaving a
// conditional node through a handle containing "yes" are the affirmative
// branch; every other edge, including plain sequential links from
// non-conditional sources, is tagged "no".
func BranchesToBackend(edges []graph.Edge, nodes []graph.Node) []schema.BranchData {
	byID := make(map[string]graph.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	branches := []schema.BranchData{}
	for _, e := range edges {
		branch := schema.BranchNo
		if src, ok := byID[e.Source]; ok && src.Type == schema.NodeConditional {
			if strings.Contains(strings.ToLower(e.SourceHandle), "yes") {
				branch = schema.BranchYes
			}
		}
		branches = append(branches, schema.BranchData{
			ID:              e.ID,
			Source:          e.Source,
			Target:          e.Target,
			SourceHandle:    e.SourceHandle,
			TargetHandle:    e.TargetHandle,
			ConditionBranch: branch,
		})
	}
	return branches
}

// EndNodesToBackend projects end nodes into EndNodeData. An empty
// description maps to null, matching the backend contract.
func EndNodesToBackend(nodes []graph.Node) []schema.EndNodeData {
	ends := []schema.EndNodeData{}
	for _, n := range nodes {
		if n.Type != schema.NodeEnd || n.End == nil {
			continue
		}
		var desc *string
		if n.End.Description != "" {
			d := n.End.Description
			desc = &d
		}
		ends = append(ends, schema.EndNodeData{
			ID:          n.ID,
			Label:       n.End.Label,
			Description: desc,
		})
	}
	return ends
}

// NodesToVisual projects nodes into their geometry-only form. The typed
// payload is serialized opaquely so the canvas state survives reload.
func NodesToVisual(nodes []graph.Node) []schema.VisualNode {
	visual := []schema.VisualNode{}
	for _, n := range nodes {
		visual = append(visual, schema.VisualNode{
			ID:       n.ID,
			Type:     n.Type,
			Position: n.Position,
			Data:     marshalPayload(n),
		})
	}
	return visual
}

// EdgesToVisual projects edges, defaulting the render type to "animated".
func EdgesToVisual(edges []graph.Edge) []schema.VisualEdge {
	visual := []schema.VisualEdge{}
	for _, e := range edges {
		t := e.Type
		if t == "" {
			t = schema.DefaultEdgeType
		}
		visual = append(visual, schema.VisualEdge{
			ID:           e.ID,
			Source:       e.Source,
			Target:       e.Target,
			SourceHandle: e.SourceHandle,
			TargetHandle: e.TargetHandle,
			Type:         t,
		})
	}
	return visual
}

// InitialNode returns the first initial node, or nil when absent.
func InitialNode(nodes []graph.Node) *graph.Node {
	for i := range nodes {
		if nodes[i].Type == schema.NodeInitial {
			n := nodes[i]
			return &n
		}
	}
	return nil
}

// EndNodes returns all end nodes, empty when absent.
func EndNodes(nodes []graph.Node) []graph.Node {
	out := []graph.Node{}
	for _, n := range nodes {
		if n.Type == schema.NodeEnd {
			out = append(out, n)
		}
	}
	return out
}

// ToDefinition assembles the full save payload from a builder snapshot.
func ToDefinition(b *graph.Builder) schema.FlowDefinition {
	nodes := b.Nodes()
	edges := b.Edges()
	return schema.FlowDefinition{
		Name:        b.Name(),
		Description: b.Description(),
		Stages:      StagesToBackend(nodes),
		Conditions:  ConditionsToBackend(nodes),
		Branches:    BranchesToBackend(edges, nodes),
		EndNodes:    EndNodesToBackend(nodes),
		VisualNodes: NodesToVisual(nodes),
		VisualEdges: EdgesToVisual(edges),
	}
}

// marshalPayload serializes whichever payload the node carries. Payloads
// are plain value structs, so marshaling cannot fail.
func marshalPayload(n graph.Node) json.RawMessage {
	var v any
	switch n.Type {
	case schema.NodeInitial:
		v = n.Initial
	case schema.NodeStage:
		v = n.Stage
	case schema.NodeConditional:
		v = n.Conditional
	case schema.NodeEnd:
		v = n.End
	}
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
