package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/segal-development/nurtureflow/pkg/schema"
)

// PGStore implements the Store interface using PostgreSQL via pgx.
// Definitions are stored as JSONB so flows can be queried server-side.
type PGStore struct {
	db *pgxpool.Pool
}

// NewPGStore creates a PGStore backed by the given pgx connection pool.
func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

const pgSchemaSQL = `
CREATE TABLE IF NOT EXISTS flows (
    id             TEXT PRIMARY KEY,
    name           TEXT NOT NULL,
    description    TEXT,
    definition     JSONB NOT NULL,
    status         TEXT NOT NULL DEFAULT 'draft',
    origin_id      TEXT,
    prospect_count INTEGER NOT NULL DEFAULT 0,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS flow_schedules (
    id              TEXT PRIMARY KEY,
    flow_id         TEXT NOT NULL REFERENCES flows(id) ON DELETE CASCADE,
    cron_expression TEXT NOT NULL,
    enabled         BOOLEAN NOT NULL DEFAULT TRUE,
    last_run_at     TIMESTAMPTZ,
    next_run_at     TIMESTAMPTZ,
    last_run_status TEXT,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_flows_status ON flows(status);
CREATE INDEX IF NOT EXISTS idx_flows_origin ON flows(origin_id);
CREATE INDEX IF NOT EXISTS idx_flow_schedules_flow ON flow_schedules(flow_id);
CREATE INDEX IF NOT EXISTS idx_flow_schedules_next_run ON flow_schedules(next_run_at);
`

// Migrate creates the flows and flow_schedules tables if they don't exist.
func (s *PGStore) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, pgSchemaSQL)
	return err
}

// Vacuum runs VACUUM ANALYZE on the flow tables.
func (s *PGStore) Vacuum(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `VACUUM ANALYZE flows, flow_schedules`)
	return err
}

// Close releases the connection pool.
func (s *PGStore) Close() error {
	s.db.Close()
	return nil
}

// --- Flows ---

func (s *PGStore) CreateFlow(ctx context.Context, flow *FlowRecord) error {
	def, err := json.Marshal(flow.Definition)
	if err != nil {
		return fmt.Errorf("marshal definition: %w", err)
	}
	status := flow.Status
	if status == "" {
		status = schema.FlowDraft
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO flows (id, name, description, definition, status, origin_id, prospect_count, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		flow.ID, flow.Name, nullStr(flow.Description), def, string(status),
		nullStr(flow.OriginID), flow.ProspectCount,
		timeOrNow(flow.CreatedAt), timeOrNow(flow.UpdatedAt),
	)
	return err
}

func (s *PGStore) GetFlow(ctx context.Context, id string) (*FlowRecord, error) {
	f := &FlowRecord{}
	var (
		description, originID *string
		defJSON               []byte
		status                string
	)
	err := s.db.QueryRow(ctx,
		`SELECT id, name, description, definition, status, origin_id, prospect_count, created_at, updated_at
		 FROM flows WHERE id = $1`, id,
	).Scan(&f.ID, &f.Name, &description, &defJSON, &status,
		&originID, &f.ProspectCount, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storeNotFound("flow", id)
	}
	if err != nil {
		return nil, err
	}
	f.Description = deref(description)
	f.OriginID = deref(originID)
	f.Status = schema.FlowStatus(status)
	if err := json.Unmarshal(defJSON, &f.Definition); err != nil {
		return nil, fmt.Errorf("unmarshal definition: %w", err)
	}
	return f, nil
}

func (s *PGStore) UpdateFlow(ctx context.Context, id string, update FlowUpdate) error {
	var sets []string
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Name != nil {
		add("name", *update.Name)
	}
	if update.Description != nil {
		add("description", *update.Description)
	}
	if update.Definition != nil {
		def, err := json.Marshal(update.Definition)
		if err != nil {
			return fmt.Errorf("marshal definition: %w", err)
		}
		add("definition", def)
	}
	if update.Status != nil {
		add("status", string(*update.Status))
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE flows SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	ct, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return storeNotFound("flow", id)
	}
	return nil
}

func (s *PGStore) ListFlows(ctx context.Context, filter FlowFilter) ([]*FlowRecord, error) {
	var where []string
	var args []any

	cond := func(column, op string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf("%s %s $%d", column, op, len(args)))
	}

	if filter.Status != nil {
		cond("status", "=", string(*filter.Status))
	}
	if filter.OriginID != "" {
		cond("origin_id", "=", filter.OriginID)
	}
	if filter.Since != nil {
		cond("created_at", ">=", *filter.Since)
	}

	query := `SELECT id, name, description, definition, status, origin_id, prospect_count, created_at, updated_at FROM flows`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flows []*FlowRecord
	for rows.Next() {
		f := &FlowRecord{}
		var (
			description, originID *string
			defJSON               []byte
			status                string
		)
		if err := rows.Scan(&f.ID, &f.Name, &description, &defJSON, &status,
			&originID, &f.ProspectCount, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		f.Description = deref(description)
		f.OriginID = deref(originID)
		f.Status = schema.FlowStatus(status)
		if err := json.Unmarshal(defJSON, &f.Definition); err != nil {
			return nil, fmt.Errorf("unmarshal definition: %w", err)
		}
		flows = append(flows, f)
	}
	return flows, rows.Err()
}

func (s *PGStore) DeleteFlow(ctx context.Context, id string) error {
	ct, err := s.db.Exec(ctx, `DELETE FROM flows WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return storeNotFound("flow", id)
	}
	return nil
}

// --- Schedules ---

func (s *PGStore) CreateSchedule(ctx context.Context, sched *FlowSchedule) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO flow_schedules (id, flow_id, cron_expression, enabled, last_run_at, next_run_at, last_run_status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sched.ID, sched.FlowID, sched.CronExpression, sched.Enabled,
		sched.LastRunAt, sched.NextRunAt, nullStr(sched.LastRunStatus),
		timeOrNow(sched.CreatedAt),
	)
	return err
}

func (s *PGStore) GetSchedule(ctx context.Context, id string) (*FlowSchedule, error) {
	sc := &FlowSchedule{}
	var (
		lastRun, nextRun *time.Time
		lastStatus       *string
	)
	err := s.db.QueryRow(ctx,
		`SELECT id, flow_id, cron_expression, enabled, last_run_at, next_run_at, last_run_status, created_at
		 FROM flow_schedules WHERE id = $1`, id,
	).Scan(&sc.ID, &sc.FlowID, &sc.CronExpression, &sc.Enabled,
		&lastRun, &nextRun, &lastStatus, &sc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storeNotFound("schedule", id)
	}
	if err != nil {
		return nil, err
	}
	sc.LastRunAt = lastRun
	sc.NextRunAt = nextRun
	sc.LastRunStatus = deref(lastStatus)
	return sc, nil
}

func (s *PGStore) UpdateSchedule(ctx context.Context, id string, update ScheduleUpdate) error {
	var sets []string
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.CronExpression != nil {
		add("cron_expression", *update.CronExpression)
	}
	if update.Enabled != nil {
		add("enabled", *update.Enabled)
	}
	if update.LastRunAt != nil {
		add("last_run_at", *update.LastRunAt)
	}
	if update.NextRunAt != nil {
		add("next_run_at", *update.NextRunAt)
	}
	if update.LastRunStatus != nil {
		add("last_run_status", *update.LastRunStatus)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE flow_schedules SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	ct, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return storeNotFound("schedule", id)
	}
	return nil
}

func (s *PGStore) ListSchedules(ctx context.Context, filter ScheduleFilter) ([]*FlowSchedule, error) {
	var where []string
	var args []any

	if filter.FlowID != "" {
		args = append(args, filter.FlowID)
		where = append(where, fmt.Sprintf("flow_id = $%d", len(args)))
	}
	if filter.Enabled != nil {
		args = append(args, *filter.Enabled)
		where = append(where, fmt.Sprintf("enabled = $%d", len(args)))
	}
	if filter.DueBefore != nil {
		args = append(args, *filter.DueBefore)
		where = append(where, fmt.Sprintf("(next_run_at IS NULL OR next_run_at <= $%d)", len(args)))
	}

	query := `SELECT id, flow_id, cron_expression, enabled, last_run_at, next_run_at, last_run_status, created_at FROM flow_schedules`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at ASC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []*FlowSchedule
	for rows.Next() {
		sc := &FlowSchedule{}
		var (
			lastRun, nextRun *time.Time
			lastStatus       *string
		)
		if err := rows.Scan(&sc.ID, &sc.FlowID, &sc.CronExpression, &sc.Enabled,
			&lastRun, &nextRun, &lastStatus, &sc.CreatedAt); err != nil {
			return nil, err
		}
		sc.LastRunAt = lastRun
		sc.NextRunAt = nextRun
		sc.LastRunStatus = deref(lastStatus)
		schedules = append(schedules, sc)
	}
	return schedules, rows.Err()
}

func (s *PGStore) DeleteSchedule(ctx context.Context, id string) error {
	ct, err := s.db.Exec(ctx, `DELETE FROM flow_schedules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return storeNotFound("schedule", id)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
