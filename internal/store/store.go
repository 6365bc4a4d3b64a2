package store

import "context"

// Store defines the persistence layer contract.
// All implementations must be safe for concurrent use.
type Store interface {
	// Flows
	CreateFlow(ctx context.Context, flow *FlowRecord) error
	GetFlow(ctx context.Context, id string) (*FlowRecord, error)
	UpdateFlow(ctx context.Context, id string, update FlowUpdate) error
	ListFlows(ctx context.Context, filter FlowFilter) ([]*FlowRecord, error)
	DeleteFlow(ctx context.Context, id string) error

	// Schedules
	CreateSchedule(ctx context.Context, sched *FlowSchedule) error
	GetSchedule(ctx context.Context, id string) (*FlowSchedule, error)
	UpdateSchedule(ctx context.Context, id string, update ScheduleUpdate) error
	ListSchedules(ctx context.Context, filter ScheduleFilter) ([]*FlowSchedule, error)
	DeleteSchedule(ctx context.Context, id string) error

	// Maintenance
	Migrate(ctx context.Context) error
	Vacuum(ctx context.Context) error

	// Lifecycle
	Close() error
}
