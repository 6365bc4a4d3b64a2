package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segal-development/nurtureflow/pkg/schema"
)

func stage(id string, order, waitDays int, active bool) schema.StageData {
	return schema.StageData{
		ID:          id,
		Order:       order,
		Label:       id,
		WaitDays:    waitDays,
		TipoMensaje: schema.ChannelEmail,
		Canal:       schema.ChannelEmail,
		Active:      active,
	}
}

func TestTimeline_CumulativeWaitDays(t *testing.T) {
	def := schema.FlowDefinition{
		Stages: []schema.StageData{
			stage("s1", 0, 0, true),
			stage("s2", 1, 3, true),
			stage("s3", 2, 2, true),
		},
	}
	enrolled := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	plan, err := Timeline(def, enrolled)
	require.NoError(t, err)
	require.Len(t, plan, 3)
	assert.Equal(t, enrolled, plan[0].SendAt)
	assert.Equal(t, enrolled.AddDate(0, 0, 3), plan[1].SendAt)
	assert.Equal(t, enrolled.AddDate(0, 0, 5), plan[2].SendAt)
}

func TestTimeline_SortsByOrder(t *testing.T) {
	def := schema.FlowDefinition{
		Stages: []schema.StageData{
			stage("s2", 1, 3, true),
			stage("s1", 0, 0, true),
		},
	}

	plan, err := Timeline(def, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, "s1", plan[0].StageID)
	assert.Equal(t, "s2", plan[1].StageID)
}

func TestTimeline_SkipsInactiveStages(t *testing.T) {
	def := schema.FlowDefinition{
		Stages: []schema.StageData{
			stage("s1", 0, 0, true),
			stage("s2", 1, 3, false),
			stage("s3", 2, 2, true),
		},
	}
	enrolled := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	plan, err := Timeline(def, enrolled)
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, "s3", plan[1].StageID)
	// Inactive stage does not consume its wait.
	assert.Equal(t, enrolled.AddDate(0, 0, 2), plan[1].SendAt)
}

func TestTimeline_StartDateOverride(t *testing.T) {
	s2 := stage("s2", 1, 3, true)
	s2.StartDate = "2026-04-15"
	def := schema.FlowDefinition{
		Stages: []schema.StageData{stage("s1", 0, 0, true), s2},
	}

	plan, err := Timeline(def, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC), plan[1].SendAt)
}

func TestTimeline_InvalidStartDate(t *testing.T) {
	bad := stage("s1", 0, 0, true)
	bad.StartDate = "15/04/2026"
	def := schema.FlowDefinition{Stages: []schema.StageData{bad}}

	_, err := Timeline(def, time.Now())
	require.Error(t, err)
	fe, ok := err.(*schema.FlowError)
	require.True(t, ok)
	assert.Equal(t, schema.ErrCodeValidation, fe.Code)
	assert.Equal(t, "s1", fe.NodeID)
}

func TestTimeline_EmptyDefinition(t *testing.T) {
	plan, err := Timeline(schema.FlowDefinition{}, time.Now())
	require.NoError(t, err)
	assert.Empty(t, plan)
}
