package diagram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMermaid_Shapes(t *testing.T) {
	out := RenderMermaid(Build(sampleFlow()))

	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	assert.Contains(t, out, "%% welcome-sequence")
	// Start and end are circles.
	assert.Contains(t, out, `initial_1(("Inicio"))`)
	assert.Contains(t, out, `end_1(("Fin"))`)
	// Stages are boxes, conditions diamonds.
	assert.Contains(t, out, `s1["1. Welcome (email)"]`)
	assert.Contains(t, out, `c1{"Opened?"}`)
}

func TestRenderMermaid_EdgeLabels(t *testing.T) {
	out := RenderMermaid(Build(sampleFlow()))

	assert.Contains(t, out, "initial_1 --> s1")
	assert.Contains(t, out, "c1 -->|sí| s2")
	assert.Contains(t, out, "c1 -->|no| end_1")
}

func TestRenderMermaid_Classes(t *testing.T) {
	out := RenderMermaid(Build(sampleFlow()))

	assert.Contains(t, out, "classDef inactive")
	assert.Contains(t, out, "class s2 inactive")
	assert.Contains(t, out, "class s1 stage")
	assert.Contains(t, out, "class c1 condition")
}

func TestRenderMermaid_EmptyModel(t *testing.T) {
	out := RenderMermaid(&DiagramModel{})
	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	assert.NotContains(t, out, "-->")
}
