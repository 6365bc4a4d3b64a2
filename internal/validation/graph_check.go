package validation

import (
	"fmt"
	"sort"

	"github.com/segal-development/nurtureflow/pkg/schema"
)

// validateGraph performs graph analysis on the execution edges:
// cycle detection (Kahn's algorithm), reachability from the initial node,
// and a stage-sequence consistency check against orden.
func validateGraph(def *schema.FlowDefinition) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	nodeIDs := make(map[string]schema.NodeType, len(def.VisualNodes))
	for _, vn := range def.VisualNodes {
		nodeIDs[vn.ID] = vn.Type
	}

	// succ[id] = downstream node IDs.
	succ := make(map[string][]string, len(nodeIDs))
	inDegree := make(map[string]int, len(nodeIDs))
	for id := range nodeIDs {
		inDegree[id] = 0
	}
	for _, b := range def.Branches {
		if _, ok := nodeIDs[b.Source]; !ok {
			continue // dangling refs already caught by semantic
		}
		if _, ok := nodeIDs[b.Target]; !ok {
			continue
		}
		succ[b.Source] = append(succ[b.Source], b.Target)
		inDegree[b.Target]++
	}

	// Kahn's algorithm for cycle detection.
	queue := make([]string, 0, len(nodeIDs))
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue) // deterministic output

	visited := 0
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		visited++
		for _, next := range succ[node] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if visited != len(nodeIDs) {
		result.AddError("branches", schema.ErrCodeCycleDetected,
			"flow contains a cycle")
		return result // reachability is meaningless with a cycle
	}

	// Reachability: BFS from the initial node.
	var initialID string
	for id, t := range nodeIDs {
		if t == schema.NodeInitial {
			initialID = id
			break
		}
	}
	if initialID != "" {
		reachable := map[string]bool{initialID: true}
		bfs := []string{initialID}
		for len(bfs) > 0 {
			node := bfs[0]
			bfs = bfs[1:]
			for _, next := range succ[node] {
				if !reachable[next] {
					reachable[next] = true
					bfs = append(bfs, next)
				}
			}
		}
		for _, vn := range def.VisualNodes {
			if !reachable[vn.ID] {
				result.AddWarning(fmt.Sprintf("visual_nodes[%s]", vn.ID),
					schema.ErrCodeValidation,
					fmt.Sprintf("node %q is unreachable from the initial node", vn.ID))
			}
		}
	}

	checkStageSequence(def, succ, result)

	return result
}

// checkStageSequence warns when edge connectivity implies a stage sequence
// that disagrees with orden. Orden follows canvas insertion order, so a
// stage dragged in front of an earlier one without rewiring edges would
// execute out of its visual position.
func checkStageSequence(def *schema.FlowDefinition, succ map[string][]string, result *schema.ValidationResult) {
	orden := make(map[string]int, len(def.Stages))
	for _, s := range def.Stages {
		orden[s.ID] = s.Order
	}

	for _, s := range def.Stages {
		for _, downstream := range reachableStages(s.ID, succ, orden) {
			if orden[downstream] < orden[s.ID] {
				result.AddWarning(fmt.Sprintf("stages[%s]", s.ID),
					schema.ErrCodeValidation,
					fmt.Sprintf("edges place stage %q after %q but orden says otherwise; orden wins at execution time", downstream, s.ID))
			}
		}
	}
}

// reachableStages returns every stage node reachable from start, excluding
// start itself.
func reachableStages(start string, succ map[string][]string, orden map[string]int) []string {
	seen := map[string]bool{start: true}
	stack := append([]string(nil), succ[start]...)
	var stages []string
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[node] {
			continue
		}
		seen[node] = true
		if _, isStage := orden[node]; isStage {
			stages = append(stages, node)
		}
		stack = append(stack, succ[node]...)
	}
	return stages
}
