package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segal-development/nurtureflow/pkg/schema"
)

func newTestStore(t *testing.T) *LibSQLStore {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	s, err := NewLibSQLStore("file:" + dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() {
		_ = s.Close()
		_ = os.RemoveAll(dir)
	})
	return s
}

func sampleDefinition() schema.FlowDefinition {
	return schema.FlowDefinition{
		Name: "welcome-sequence",
		Stages: []schema.StageData{
			{ID: "s1", Order: 0, Label: "Welcome", WaitDays: 0, Canal: schema.ChannelEmail, TipoMensaje: schema.ChannelEmail, Active: true},
			{ID: "s2", Order: 1, Label: "Follow up", WaitDays: 3, Canal: schema.ChannelEmail, TipoMensaje: schema.ChannelEmail, Active: true},
		},
		Branches: []schema.BranchData{
			{ID: "e1", Source: "initial-1", Target: "s1", ConditionBranch: schema.BranchNo},
			{ID: "e2", Source: "s1", Target: "s2", ConditionBranch: schema.BranchNo},
		},
		EndNodes: []schema.EndNodeData{{ID: "end-1", Label: "Fin"}},
	}
}

func seedFlow(t *testing.T, s *LibSQLStore) *FlowRecord {
	t.Helper()
	f := &FlowRecord{
		ID:         uuid.New().String(),
		Name:       "welcome-sequence",
		Definition: sampleDefinition(),
		Status:     schema.FlowDraft,
		OriginID:   "o1",
	}
	require.NoError(t, s.CreateFlow(context.Background(), f))
	return f
}

// --- Flow Tests ---

func TestCreateAndGetFlow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	f := &FlowRecord{
		ID:            uuid.New().String(),
		Name:          "welcome-sequence",
		Description:   "onboarding drip",
		Definition:    sampleDefinition(),
		Status:        schema.FlowDraft,
		OriginID:      "o1",
		ProspectCount: 42,
	}
	require.NoError(t, s.CreateFlow(ctx, f))

	got, err := s.GetFlow(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, f.ID, got.ID)
	assert.Equal(t, "welcome-sequence", got.Name)
	assert.Equal(t, "onboarding drip", got.Description)
	assert.Equal(t, schema.FlowDraft, got.Status)
	assert.Equal(t, "o1", got.OriginID)
	assert.Equal(t, 42, got.ProspectCount)
	require.Len(t, got.Definition.Stages, 2)
	assert.Equal(t, "s1", got.Definition.Stages[0].ID)
	assert.Equal(t, 3, got.Definition.Stages[1].WaitDays)
}

func TestGetFlow_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetFlow(context.Background(), "nonexistent")
	require.Error(t, err)
	fe, ok := err.(*schema.FlowError)
	require.True(t, ok)
	assert.Equal(t, schema.ErrCodeNotFound, fe.Code)
}

func TestCreateFlow_DefaultsStatusToDraft(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	f := &FlowRecord{ID: uuid.New().String(), Name: "no-status", Definition: sampleDefinition()}
	require.NoError(t, s.CreateFlow(ctx, f))

	got, err := s.GetFlow(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, schema.FlowDraft, got.Status)
}

func TestUpdateFlow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	f := seedFlow(t, s)

	name := "renamed"
	status := schema.FlowActive
	def := f.Definition
	def.Stages = def.Stages[:1]
	require.NoError(t, s.UpdateFlow(ctx, f.ID, FlowUpdate{
		Name:       &name,
		Status:     &status,
		Definition: &def,
	}))

	got, err := s.GetFlow(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	assert.Equal(t, schema.FlowActive, got.Status)
	assert.Len(t, got.Definition.Stages, 1)
}

func TestUpdateFlow_NoFields(t *testing.T) {
	s := newTestStore(t)
	f := seedFlow(t, s)
	require.NoError(t, s.UpdateFlow(context.Background(), f.ID, FlowUpdate{}))
}

func TestUpdateFlow_NotFound(t *testing.T) {
	s := newTestStore(t)
	name := "x"
	err := s.UpdateFlow(context.Background(), "missing", FlowUpdate{Name: &name})
	require.Error(t, err)
}

func TestListFlows_FilterByStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	draft := seedFlow(t, s)
	active := seedFlow(t, s)
	st := schema.FlowActive
	require.NoError(t, s.UpdateFlow(ctx, active.ID, FlowUpdate{Status: &st}))

	got, err := s.ListFlows(ctx, FlowFilter{Status: &st})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, active.ID, got[0].ID)

	all, err := s.ListFlows(ctx, FlowFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	_ = draft
}

func TestListFlows_FilterByOrigin(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedFlow(t, s)

	other := &FlowRecord{ID: uuid.New().String(), Name: "other", Definition: sampleDefinition(), OriginID: "o2"}
	require.NoError(t, s.CreateFlow(ctx, other))

	got, err := s.ListFlows(ctx, FlowFilter{OriginID: "o2"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, other.ID, got[0].ID)
}

func TestDeleteFlow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	f := seedFlow(t, s)

	require.NoError(t, s.DeleteFlow(ctx, f.ID))
	_, err := s.GetFlow(ctx, f.ID)
	require.Error(t, err)

	require.Error(t, s.DeleteFlow(ctx, f.ID))
}

// --- Schedule Tests ---

func seedSchedule(t *testing.T, s *LibSQLStore, flowID string) *FlowSchedule {
	t.Helper()
	sc := &FlowSchedule{
		ID:             uuid.New().String(),
		FlowID:         flowID,
		CronExpression: "0 9 * * *",
		Enabled:        true,
	}
	require.NoError(t, s.CreateSchedule(context.Background(), sc))
	return sc
}

func TestCreateAndGetSchedule(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	f := seedFlow(t, s)
	sc := seedSchedule(t, s, f.ID)

	got, err := s.GetSchedule(ctx, sc.ID)
	require.NoError(t, err)
	assert.Equal(t, f.ID, got.FlowID)
	assert.Equal(t, "0 9 * * *", got.CronExpression)
	assert.True(t, got.Enabled)
	assert.Nil(t, got.LastRunAt)
}

func TestUpdateSchedule_RunBookkeeping(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	f := seedFlow(t, s)
	sc := seedSchedule(t, s, f.ID)

	now := time.Now().UTC().Truncate(time.Second)
	next := now.Add(24 * time.Hour)
	status := "ok"
	require.NoError(t, s.UpdateSchedule(ctx, sc.ID, ScheduleUpdate{
		LastRunAt:     &now,
		NextRunAt:     &next,
		LastRunStatus: &status,
	}))

	got, err := s.GetSchedule(ctx, sc.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastRunAt)
	require.NotNil(t, got.NextRunAt)
	assert.Equal(t, "ok", got.LastRunStatus)
}

func TestListSchedules_DueBefore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	f := seedFlow(t, s)

	due := seedSchedule(t, s, f.ID)
	later := seedSchedule(t, s, f.ID)

	past := time.Now().UTC().Add(-time.Hour)
	future := time.Now().UTC().Add(time.Hour)
	require.NoError(t, s.UpdateSchedule(ctx, due.ID, ScheduleUpdate{NextRunAt: &past}))
	require.NoError(t, s.UpdateSchedule(ctx, later.ID, ScheduleUpdate{NextRunAt: &future}))

	now := time.Now().UTC()
	got, err := s.ListSchedules(ctx, ScheduleFilter{DueBefore: &now})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, due.ID, got[0].ID)
}

func TestListSchedules_FilterEnabled(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	f := seedFlow(t, s)

	on := seedSchedule(t, s, f.ID)
	off := seedSchedule(t, s, f.ID)
	disabled := false
	require.NoError(t, s.UpdateSchedule(ctx, off.ID, ScheduleUpdate{Enabled: &disabled}))

	enabled := true
	got, err := s.ListSchedules(ctx, ScheduleFilter{Enabled: &enabled})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, on.ID, got[0].ID)
}

func TestDeleteFlow_CascadesSchedules(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	f := seedFlow(t, s)
	sc := seedSchedule(t, s, f.ID)

	require.NoError(t, s.DeleteFlow(ctx, f.ID))
	_, err := s.GetSchedule(ctx, sc.ID)
	require.Error(t, err)
}

func TestDeleteSchedule(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	f := seedFlow(t, s)
	sc := seedSchedule(t, s, f.ID)

	require.NoError(t, s.DeleteSchedule(ctx, sc.ID))
	require.Error(t, s.DeleteSchedule(ctx, sc.ID))
}
