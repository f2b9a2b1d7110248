package domain

import (
	"errors"
	"strings"
)

// Domain errors.
var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrEmptyTitle        = errors.New("title cannot be empty")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidPriority   = errors.New("invalid priority")
	ErrInvalidArea       = errors.New("invalid area")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrBlockedByRequired = errors.New("entering blocked requires blocked_by")
	ErrBlockedByStale    = errors.New("blocked_by must be cleared when leaving blocked")
	ErrScoreReadOnly     = errors.New("score is machine-computed and cannot be set directly")
	ErrDuplicateID       = errors.New("task id already exists")
	ErrLowConfidence     = errors.New("confidence below active-queue threshold")
	ErrNoFieldsToUpdate  = errors.New("no fields to update")
	ErrNotInitialized    = errors.New("store not initialized (run 'minute init' first)")
	ErrOracleUnavailable = errors.New("rubric oracle unavailable")
	ErrNotInHolding      = errors.New("task is not in the holding area")
	ErrSourceNotFound    = errors.New("source note not found")
)

// ValidationError reports a field-level invariant violation on a write.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

// CycleError reports a dependency cycle, including the offending path.
type CycleError struct {
	Path []string // Task IDs along the cycle; first and last are the same
}

func (e *CycleError) Error() string {
	return "dependency cycle detected: " + strings.Join(e.Path, " -> ")
}
