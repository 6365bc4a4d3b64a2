package diagram

import (
	"fmt"
	"sort"

	"github.com/segal-development/nurtureflow/pkg/schema"
)

// Build constructs a DiagramModel from a flow definition. Nodes come from
// the execution descriptors so the diagram shows what will actually run;
// visual nodes only contribute the initial node's identity.
func Build(def schema.FlowDefinition) *DiagramModel {
	model := &DiagramModel{Title: def.Name}

	model.Nodes = append(model.Nodes, &Node{
		ID:    initialNodeID(def),
		Label: "Inicio",
		Kind:  NodeKindStart,
	})

	stages := make([]schema.StageData, len(def.Stages))
	copy(stages, def.Stages)
	sort.SliceStable(stages, func(i, j int) bool {
		return stages[i].Order < stages[j].Order
	})
	for _, stage := range stages {
		model.Nodes = append(model.Nodes, &Node{
			ID:       stage.ID,
			Label:    stageLabel(stage),
			Kind:     NodeKindStage,
			Inactive: !stage.Active,
		})
	}

	conditions := make(map[string]bool, len(def.Conditions))
	for _, cond := range def.Conditions {
		conditions[cond.ID] = true
		model.Nodes = append(model.Nodes, &Node{
			ID:    cond.ID,
			Label: conditionLabel(cond),
			Kind:  NodeKindCondition,
		})
	}

	for _, end := range def.EndNodes {
		label := end.Label
		if label == "" {
			label = "Fin"
		}
		model.Nodes = append(model.Nodes, &Node{
			ID:    end.ID,
			Label: label,
			Kind:  NodeKindEnd,
		})
	}

	for _, branch := range def.Branches {
		label := ""
		if conditions[branch.Source] {
			if branch.ConditionBranch == schema.BranchYes {
				label = "sí"
			} else {
				label = "no"
			}
		}
		model.Edges = append(model.Edges, Edge{
			From:  branch.Source,
			To:    branch.Target,
			Label: label,
		})
	}

	return model
}

// initialNodeID finds the initial node's ID from the visual projection,
// falling back to the canonical seed ID.
func initialNodeID(def schema.FlowDefinition) string {
	for _, vn := range def.VisualNodes {
		if vn.Type == schema.NodeInitial {
			return vn.ID
		}
	}
	return "initial-1"
}

// stageLabel renders "1. Welcome (email)" from a stage descriptor.
func stageLabel(stage schema.StageData) string {
	label := stage.Label
	if label == "" {
		label = stage.ID
	}
	return fmt.Sprintf("%d. %s (%s)", stage.Order+1, label, stage.TipoMensaje)
}

func conditionLabel(cond schema.ConditionData) string {
	if cond.Label != "" {
		return cond.Label
	}
	if cond.ConditionLabel != "" {
		return cond.ConditionLabel
	}
	return string(cond.ConditionType)
}
