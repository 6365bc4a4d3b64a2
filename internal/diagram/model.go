// Package diagram renders flow definitions as Mermaid flowcharts or PNG
// images, for docs and for the flowctl preview commands.
package diagram

import "strings"

// NodeKind classifies a diagram node by its flow node type.
type NodeKind string

const (
	NodeKindStart     NodeKind = "start"
	NodeKindStage     NodeKind = "stage"
	NodeKindCondition NodeKind = "condition"
	NodeKindEnd       NodeKind = "end"
)

// DiagramModel is the intermediate representation used by all renderers.
type DiagramModel struct {
	Title string
	Nodes []*Node
	Edges []Edge
}

// Node represents a single flow node in the diagram.
type Node struct {
	ID       string
	Label    string
	Kind     NodeKind
	Inactive bool // stage toggled off, rendered dimmed
}

// Edge represents a directed link between two nodes.
type Edge struct {
	From  string
	To    string
	Label string // "sí"/"no" on conditional branches, empty otherwise
}

// firstLine returns the text up to the first newline.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
