package store

import (
	"time"

	"github.com/segal-development/nurtureflow/pkg/schema"
)

// FlowRecord is a persisted flow: the full definition plus lifecycle
// metadata that never travels to the delivery backend.
type FlowRecord struct {
	ID            string                `json:"id"`
	Name          string                `json:"name"`
	Description   string                `json:"description,omitempty"`
	Definition    schema.FlowDefinition `json:"definition"`
	Status        schema.FlowStatus     `json:"status"`
	OriginID      string                `json:"origin_id,omitempty"`
	ProspectCount int                   `json:"prospect_count"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// FlowUpdate carries partial updates for a flow. Nil fields are left untouched.
type FlowUpdate struct {
	Name        *string
	Description *string
	Definition  *schema.FlowDefinition
	Status      *schema.FlowStatus
}

// FlowFilter narrows ListFlows results.
type FlowFilter struct {
	Status   *schema.FlowStatus
	OriginID string
	Since    *time.Time
	Limit    int
	Offset   int
}

// FlowSchedule drives periodic evaluation of an active flow: on every
// cron tick the scheduler recomputes send timelines for its prospects.
type FlowSchedule struct {
	ID             string     `json:"id"`
	FlowID         string     `json:"flow_id"`
	CronExpression string     `json:"cron_expression"`
	Enabled        bool       `json:"enabled"`
	LastRunAt      *time.Time `json:"last_run_at,omitempty"`
	NextRunAt      *time.Time `json:"next_run_at,omitempty"`
	LastRunStatus  string     `json:"last_run_status,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ScheduleUpdate carries partial updates for a schedule.
type ScheduleUpdate struct {
	CronExpression *string
	Enabled        *bool
	LastRunAt      *time.Time
	NextRunAt      *time.Time
	LastRunStatus  *string
}

// ScheduleFilter narrows ListSchedules results.
type ScheduleFilter struct {
	FlowID  string
	Enabled *bool
	// DueBefore selects schedules whose next_run_at is at or before the
	// given instant (or never set).
	DueBefore *time.Time
	Limit     int
}
