package mapper

import (
	"encoding/json"

	"github.com/segal-development/nurtureflow/internal/graph"
	"github.com/segal-development/nurtureflow/pkg/schema"
)

// FromDefinition reconstructs the editable node/edge collections from a
// persisted flow definition. The visual payload is the primary source;
// when a visual node carries no data blob (older saves stored geometry
// only), the payload is rebuilt from the matching execution DTO so the
// round trip stays lossless either way.
func FromDefinition(def *schema.FlowDefinition) ([]graph.Node, []graph.Edge, error) {
	if def == nil {
		return nil, nil, schema.NewError(schema.ErrCodeValidation, "flow definition is nil")
	}

	stages := make(map[string]schema.StageData, len(def.Stages))
	for _, s := range def.Stages {
		stages[s.ID] = s
	}
	conditions := make(map[string]schema.ConditionData, len(def.Conditions))
	for _, c := range def.Conditions {
		conditions[c.ID] = c
	}
	ends := make(map[string]schema.EndNodeData, len(def.EndNodes))
	for _, e := range def.EndNodes {
		ends[e.ID] = e
	}

	nodes := make([]graph.Node, 0, len(def.VisualNodes))
	for _, vn := range def.VisualNodes {
		node := graph.Node{
			ID:       vn.ID,
			Type:     vn.Type,
			Position: vn.Position,
		}

		switch vn.Type {
		case schema.NodeInitial:
			p := &graph.InitialPayload{}
			if err := unmarshalPayload(vn, p); err != nil {
				return nil, nil, err
			}
			node.Initial = p

		case schema.NodeStage:
			p := &graph.StagePayload{}
			if len(vn.Data) > 0 {
				if err := unmarshalPayload(vn, p); err != nil {
					return nil, nil, err
				}
			} else if s, ok := stages[vn.ID]; ok {
				*p = stagePayloadFrom(s)
			}
			node.Stage = p

		case schema.NodeConditional:
			p := &graph.ConditionalPayload{}
			if len(vn.Data) > 0 {
				if err := unmarshalPayload(vn, p); err != nil {
					return nil, nil, err
				}
			} else if c, ok := conditions[vn.ID]; ok {
				*p = conditionalPayloadFrom(c)
			}
			node.Conditional = p

		case schema.NodeEnd:
			p := &graph.EndPayload{}
			if len(vn.Data) > 0 {
				if err := unmarshalPayload(vn, p); err != nil {
					return nil, nil, err
				}
			} else if e, ok := ends[vn.ID]; ok {
				p.Label = e.Label
				if e.Description != nil {
					p.Description = *e.Description
				}
			}
			node.End = p

		default:
			return nil, nil, schema.NewErrorf(schema.ErrCodeValidation,
				"unknown node type %q", vn.Type).WithNode(vn.ID)
		}

		nodes = append(nodes, node)
	}

	edges := make([]graph.Edge, 0, len(def.VisualEdges))
	for _, ve := range def.VisualEdges {
		t := ve.Type
		if t == "" {
			t = schema.DefaultEdgeType
		}
		edges = append(edges, graph.Edge{
			ID:           ve.ID,
			Source:       ve.Source,
			Target:       ve.Target,
			SourceHandle: ve.SourceHandle,
			TargetHandle: ve.TargetHandle,
			Type:         t,
		})
	}

	return nodes, edges, nil
}

func unmarshalPayload(vn schema.VisualNode, dst any) error {
	if len(vn.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(vn.Data, dst); err != nil {
		return schema.NewErrorf(schema.ErrCodeValidation,
			"malformed visual node data: %s", err.Error()).
			WithNode(vn.ID).WithCause(err)
	}
	return nil
}

// stagePayloadFrom inverts the forward stage defaults: values the mapper
// would fill in again are dropped so a re-save is byte-stable.
func stagePayloadFrom(s schema.StageData) graph.StagePayload {
	p := graph.StagePayload{
		Label:        s.Label,
		WaitDays:     s.WaitDays,
		Channel:      s.TipoMensaje,
		TemplateID:   s.TemplateID,
		TemplateType: s.TemplateType,
		Message:      s.Message,
		StartDate:    s.StartDate,
	}
	if !s.Active {
		f := false
		p.Active = &f
	}
	return p
}

func conditionalPayloadFrom(c schema.ConditionData) graph.ConditionalPayload {
	return graph.ConditionalPayload{
		Label:           c.Label,
		Description:     c.Description,
		ConditionType:   c.ConditionType,
		ConditionLabel:  c.ConditionLabel,
		YesLabel:        c.YesLabel,
		NoLabel:         c.NoLabel,
		CheckParam:      c.CheckParam,
		CheckOperator:   c.CheckOperator,
		CheckValue:      c.CheckValue,
		CheckExpression: c.CheckExpression,
	}
}
