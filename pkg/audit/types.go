package audit

import (
	"context"
	"time"
)

// Events recorded for each configuration lifecycle cycle.
const (
	// EventApply is recorded when a configuration document is parsed and
	// pushed through the module registry.
	EventApply = "apply"

	// EventShutdown is recorded when running modules are stopped.
	EventShutdown = "shutdown"
)

// Triggers identify what initiated a lifecycle cycle.
const (
	// TriggerAutostart marks cycles started by the daemon at boot.
	TriggerAutostart = "autostart"

	// TriggerControl marks cycles started by a state file transition.
	TriggerControl = "control"

	// TriggerSignal marks cycles started by SIGINT or SIGTERM.
	TriggerSignal = "signal"

	// TriggerDirect marks cycles started through the embedding API.
	TriggerDirect = "direct"
)

// Outcomes of a lifecycle cycle.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Record is an immutable audit record of one configuration lifecycle
// cycle. One record is written per apply and per shutdown, whether the
// cycle succeeded or not.
type Record struct {
	// ID is a UUID v4 assigned when the record is created.
	ID string `json:"id"`

	// Time is when the cycle finished.
	Time time.Time `json:"time"`

	// Event is EventApply or EventShutdown.
	Event string `json:"event"`

	// Trigger identifies what initiated the cycle.
	Trigger string `json:"trigger"`

	// Outcome is OutcomeOK or OutcomeError.
	Outcome string `json:"outcome"`

	// Error holds the failure text when Outcome is OutcomeError.
	Error string `json:"error,omitempty"`

	// Duration is how long the cycle took.
	Duration time.Duration `json:"duration"`

	// ConfigHash is the hex-encoded SHA-256 of the configuration text
	// that was applied. Empty for shutdown records.
	ConfigHash string `json:"config_hash,omitempty"`

	// Source describes where the configuration came from, in the
	// format produced by the source's Describe method.
	Source string `json:"source,omitempty"`

	// Modules is the number of registered modules the cycle touched.
	Modules int `json:"modules"`
}

// Query selects audit records. Zero-value fields are not filtered on.
type Query struct {
	// Time range. Both bounds are inclusive.
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	// Filters.
	Event   string `json:"event,omitempty"`
	Trigger string `json:"trigger,omitempty"`
	Outcome string `json:"outcome,omitempty"`

	// Pagination. Limit <= 0 returns all matching records; the
	// retention pruner relies on that to see the full table.
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Storage persists audit records. Implementations must be safe for
// concurrent use; the recorder's worker goroutine and the retention
// pruner share one Storage.
type Storage interface {
	// Store persists an audit record.
	Store(ctx context.Context, record *Record) error

	// Query retrieves records matching the query, newest first.
	// Returns an empty slice if no records match.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of records matching the query.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes records matching the query and returns how many
	// were removed. Used for retention enforcement.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Ping reports whether the backend is reachable. Wired into the
	// health checker as the audit readiness probe.
	Ping(ctx context.Context) error

	// Close releases any resources held by the backend.
	Close() error
}
