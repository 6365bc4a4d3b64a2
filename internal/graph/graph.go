// Package graph holds the editable state of a single flow: the node and
// edge collections plus flow metadata. It is the one writer-owned model
// behind every builder mutation; mapping to the backend schema lives in
// internal/mapper.
package graph

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/segal-development/nurtureflow/pkg/schema"
)

var (
	ErrNodeNotFound  = errors.New("graph: node not found")
	ErrEdgeNotFound  = errors.New("graph: edge not found")
	ErrDuplicateEdge = errors.New("graph: duplicate edge")
)

// Seed node IDs. Every fresh flow starts as initial-1 → (nothing) → end-1.
const (
	SeedInitialID = "initial-1"
	SeedEndID     = "end-1"
)

// Default canvas geometry for newly added nodes. Offsets grow with the
// node count so fresh nodes don't stack on top of each other.
const (
	columnX       = 250
	conditionalX  = 460
	seedInitialY  = 50
	seedEndY      = 440
	stageBaseY    = 150
	stageStepY    = 120
	condBaseY     = 120
	condStepY     = 100
	endBaseY      = 200
	endStepY      = 100
)

// Builder is the single source of truth for one flow editing session.
// It is not safe for concurrent use: all mutations are expected to come
// from a single editing goroutine.
type Builder struct {
	name        string
	description string
	nodes       []Node
	edges       []Edge
}

// New returns a Builder in the seed state: one initial node, one end node,
// no edges.
func New() *Builder {
	b := &Builder{}
	b.Reset()
	return b
}

// Reset restores the two-node seed state and clears edges and metadata.
func (b *Builder) Reset() {
	b.name = ""
	b.description = ""
	b.edges = nil
	b.nodes = []Node{
		{
			ID:       SeedInitialID,
			Type:     schema.NodeInitial,
			Position: schema.Position{X: columnX, Y: seedInitialY},
			Initial:  &InitialPayload{Label: "Inicio"},
		},
		{
			ID:       SeedEndID,
			Type:     schema.NodeEnd,
			Position: schema.Position{X: columnX, Y: seedEndY},
			End:      &EndPayload{Label: "Fin"},
		},
	}
}

// SetName sets the flow name.
func (b *Builder) SetName(name string) { b.name = name }

// SetDescription sets the flow description.
func (b *Builder) SetDescription(desc string) { b.description = desc }

// Name returns the flow name.
func (b *Builder) Name() string { return b.name }

// Description returns the flow description.
func (b *Builder) Description() string { return b.description }

// Nodes returns a copy of the node collection in insertion order.
func (b *Builder) Nodes() []Node {
	out := make([]Node, len(b.nodes))
	copy(out, b.nodes)
	return out
}

// Edges returns a copy of the edge collection in insertion order.
func (b *Builder) Edges() []Edge {
	out := make([]Edge, len(b.edges))
	copy(out, b.edges)
	return out
}

// AddStageNode appends a new stage node with a generated ID and a default
// position offset by the current stage count. Returns the new node's ID.
func (b *Builder) AddStageNode() string {
	id := newNodeID(schema.NodeStage)
	y := float64(stageBaseY + stageStepY*b.StageCount())
	b.nodes = append(b.nodes, Node{
		ID:       id,
		Type:     schema.NodeStage,
		Position: schema.Position{X: columnX, Y: y},
		Stage:    &StagePayload{},
	})
	return id
}

// AddConditionalNode appends a new conditional node offset by the total
// node count. Branch labels default to Sí/No.
func (b *Builder) AddConditionalNode() string {
	id := newNodeID(schema.NodeConditional)
	y := float64(condBaseY + condStepY*len(b.nodes))
	b.nodes = append(b.nodes, Node{
		ID:       id,
		Type:     schema.NodeConditional,
		Position: schema.Position{X: conditionalX, Y: y},
		Conditional: &ConditionalPayload{
			YesLabel: "Sí",
			NoLabel:  "No",
		},
	})
	return id
}

// AddEndNode appends a new end node offset by the total node count.
// Multiple end nodes are allowed: each is a distinct flow exit.
func (b *Builder) AddEndNode() string {
	id := newNodeID(schema.NodeEnd)
	y := float64(endBaseY + endStepY*len(b.nodes))
	b.nodes = append(b.nodes, Node{
		ID:       id,
		Type:     schema.NodeEnd,
		Position: schema.Position{X: columnX, Y: y},
		End:      &EndPayload{Label: "Fin"},
	})
	return id
}

// RemoveNode removes the node and every edge that references it as source
// or target, so no dangling edges survive.
func (b *Builder) RemoveNode(nodeID string) error {
	idx := b.indexOf(nodeID)
	if idx < 0 {
		return ErrNodeNotFound
	}
	b.nodes = append(b.nodes[:idx], b.nodes[idx+1:]...)

	kept := b.edges[:0]
	for _, e := range b.edges {
		if e.Source != nodeID && e.Target != nodeID {
			kept = append(kept, e)
		}
	}
	b.edges = kept
	return nil
}

// SetNodePosition overwrites the node's canvas position only.
func (b *Builder) SetNodePosition(nodeID string, pos schema.Position) error {
	idx := b.indexOf(nodeID)
	if idx < 0 {
		return ErrNodeNotFound
	}
	b.nodes[idx].Position = pos
	return nil
}

// UpdateStage shallow-merges the given fields into a stage node's payload.
func (b *Builder) UpdateStage(nodeID string, u StageUpdate) error {
	p, err := b.stagePayload(nodeID)
	if err != nil {
		return err
	}
	if u.Label != nil {
		p.Label = *u.Label
	}
	if u.WaitDays != nil {
		p.WaitDays = *u.WaitDays
	}
	if u.Channel != nil {
		p.Channel = *u.Channel
	}
	if u.TemplateID != nil {
		p.TemplateID = *u.TemplateID
	}
	if u.TemplateType != nil {
		p.TemplateType = *u.TemplateType
	}
	if u.Message != nil {
		p.Message = *u.Message
	}
	if u.StartDate != nil {
		p.StartDate = *u.StartDate
	}
	if u.Active != nil {
		v := *u.Active
		p.Active = &v
	}
	return nil
}

// UpdateConditional shallow-merges the given fields into a conditional
// node's payload.
func (b *Builder) UpdateConditional(nodeID string, u ConditionalUpdate) error {
	idx := b.indexOf(nodeID)
	if idx < 0 || b.nodes[idx].Conditional == nil {
		return ErrNodeNotFound
	}
	p := b.nodes[idx].Conditional
	if u.Label != nil {
		p.Label = *u.Label
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.ConditionType != nil {
		p.ConditionType = *u.ConditionType
	}
	if u.ConditionLabel != nil {
		p.ConditionLabel = *u.ConditionLabel
	}
	if u.YesLabel != nil {
		p.YesLabel = *u.YesLabel
	}
	if u.NoLabel != nil {
		p.NoLabel = *u.NoLabel
	}
	if u.CheckParam != nil {
		p.CheckParam = *u.CheckParam
	}
	if u.CheckOperator != nil {
		p.CheckOperator = *u.CheckOperator
	}
	if u.CheckValue != nil {
		p.CheckValue = *u.CheckValue
	}
	if u.CheckExpression != nil {
		p.CheckExpression = *u.CheckExpression
	}
	return nil
}

// UpdateEnd shallow-merges the given fields into an end node's payload.
func (b *Builder) UpdateEnd(nodeID string, u EndUpdate) error {
	idx := b.indexOf(nodeID)
	if idx < 0 || b.nodes[idx].End == nil {
		return ErrNodeNotFound
	}
	p := b.nodes[idx].End
	if u.Label != nil {
		p.Label = *u.Label
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	return nil
}

// AddEdge appends the edge unless one already connects the same
// (source, target, sourceHandle, targetHandle) tuple, in which case
// ErrDuplicateEdge is returned and the state is unchanged. An empty edge
// ID gets a generated one.
func (b *Builder) AddEdge(e Edge) error {
	for _, existing := range b.edges {
		if sameLink(existing, e) {
			return ErrDuplicateEdge
		}
	}
	if e.ID == "" {
		e.ID = fmt.Sprintf("edge-%s", uuid.NewString())
	}
	b.edges = append(b.edges, e)
	return nil
}

// RemoveEdge removes an edge by ID. No cascading effects.
func (b *Builder) RemoveEdge(edgeID string) error {
	for i, e := range b.edges {
		if e.ID == edgeID {
			b.edges = append(b.edges[:i], b.edges[i+1:]...)
			return nil
		}
	}
	return ErrEdgeNotFound
}

// InitializeWithOrigin binds the initial node to a chosen prospect origin.
// This is the entry point when a brand-new flow is started from a
// prospect-source selection step. All other nodes are untouched.
func (b *Builder) InitializeWithOrigin(originID, originName string, prospectCount int) error {
	for i := range b.nodes {
		if b.nodes[i].Type == schema.NodeInitial && b.nodes[i].Initial != nil {
			b.nodes[i].Initial.OriginID = originID
			b.nodes[i].Initial.OriginName = originName
			b.nodes[i].Initial.ProspectCount = prospectCount
			return nil
		}
	}
	return ErrNodeNotFound
}

// Load replaces the node and edge collections wholesale. Used when editing
// a previously persisted flow.
func (b *Builder) Load(nodes []Node, edges []Edge) {
	b.nodes = make([]Node, len(nodes))
	copy(b.nodes, nodes)
	b.edges = make([]Edge, len(edges))
	copy(b.edges, edges)
}

// StageCount returns the number of stage nodes.
func (b *Builder) StageCount() int { return b.countByType(schema.NodeStage) }

// ConditionalCount returns the number of conditional nodes.
func (b *Builder) ConditionalCount() int { return b.countByType(schema.NodeConditional) }

// InitialNode returns the flow's entry node, or nil if absent.
func (b *Builder) InitialNode() *Node {
	for i := range b.nodes {
		if b.nodes[i].Type == schema.NodeInitial {
			n := b.nodes[i]
			return &n
		}
	}
	return nil
}

// EndNodes returns all flow exits in insertion order.
func (b *Builder) EndNodes() []Node {
	var out []Node
	for _, n := range b.nodes {
		if n.Type == schema.NodeEnd {
			out = append(out, n)
		}
	}
	return out
}

func (b *Builder) countByType(t schema.NodeType) int {
	n := 0
	for _, node := range b.nodes {
		if node.Type == t {
			n++
		}
	}
	return n
}

func (b *Builder) indexOf(nodeID string) int {
	for i := range b.nodes {
		if b.nodes[i].ID == nodeID {
			return i
		}
	}
	return -1
}

func (b *Builder) stagePayload(nodeID string) (*StagePayload, error) {
	idx := b.indexOf(nodeID)
	if idx < 0 || b.nodes[idx].Stage == nil {
		return nil, ErrNodeNotFound
	}
	return b.nodes[idx].Stage, nil
}

func newNodeID(t schema.NodeType) string {
	return fmt.Sprintf("%s-%s", t, uuid.NewString())
}
