package domain

import (
	"context"
	"time"
)

// StoreInitializer initializes a task store.
type StoreInitializer interface {
	// Initialize creates the store if it doesn't exist.
	Initialize() error
}

// TaskStore is the narrow read/write contract the core depends on. Concrete
// backends (flat files, SQLite, a third-party tracker) implement it and are
// wired in by the caller; the core never branches on which backend is active.
// Concurrency safety of individual operations is a property of the backend.
type TaskStore interface {
	// List retrieves records matching the filter.
	List(filter TaskFilter) ([]*TaskRecord, error)

	// Get retrieves a record by ID from any area. Returns nil if not found.
	Get(id string) (*TaskRecord, error)

	// Put creates or replaces a record. A record that already exists keeps
	// its current area regardless of what the incoming record claims.
	Put(rec *TaskRecord) error

	// Patch applies field-level updates to an existing record and returns
	// the updated record. Returns nil if the record does not exist.
	Patch(id string, patch FieldPatch) (*TaskRecord, error)

	// Move relocates a record to another area.
	Move(id string, area Area) error

	// NextID returns the next unassigned task ID.
	NextID() (string, error)
}

// TaskFilter specifies criteria for listing records.
// Fields are ordered to minimize memory padding.
type TaskFilter struct {
	Status   *Status  // nil = any status
	MinScore *float64 // inclusive lower bound; unscored records are excluded
	MaxScore *float64 // inclusive upper bound; unscored records pass
	Assignee string   // empty = any assignee
	Label    string   // empty = any label
	Area     Area     // empty = all areas
}

// RubricDimension names a rubric-scored signal.
type RubricDimension string

const (
	DimensionImpact RubricDimension = "impact"
	DimensionEffort RubricDimension = "effort"
)

// RubricRequest is the input the scoring oracle judges a task by.
type RubricRequest struct {
	Title     string
	Context   string
	Source    string
	Labels    []string
	Dimension RubricDimension
}

// RubricScore is an oracle judgment: an integer in [1,10] plus a rationale.
type RubricScore struct {
	Rationale string
	Value     int
}

// Oracle scores a rubric dimension for a task. Implementations may be a
// human, a heuristic, or a model; the scoring engine treats them as an
// opaque function and must tolerate failure. Calls may incur unbounded
// latency, so callers time-box them through ctx.
type Oracle interface {
	Score(ctx context.Context, req RubricRequest) (RubricScore, error)
}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Today returns the calendar date for the clock's current time.
func Today(c Clock) Date {
	return DateOf(c.Now())
}

// Logger records pipeline activity. taskID may be empty for global entries.
type Logger interface {
	Debug(taskID, category, msg string)
	Info(taskID, category, msg string)
	Warn(taskID, category, msg string)
	Error(taskID, category, msg string)
}

// ConfigLoader loads configuration from files.
type ConfigLoader interface {
	// Load returns the merged configuration (repo + global + defaults).
	Load() (*Config, error)
}
