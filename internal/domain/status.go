package domain

import "fmt"

// Status represents the lifecycle state of a task record.
type Status string

const (
	StatusTodo       Status = "todo"        // Created, awaiting start
	StatusInProgress Status = "in-progress" // Being worked on
	StatusReview     Status = "review"      // Work complete, awaiting review
	StatusDone       Status = "done"        // Terminal
	StatusBlocked    Status = "blocked"     // Waiting on BlockedBy
)

// AllStatuses returns all valid status values.
func AllStatuses() []Status {
	return []Status{
		StatusTodo,
		StatusInProgress,
		StatusReview,
		StatusDone,
		StatusBlocked,
	}
}

// transitions defines the allowed status transitions.
// Flow: todo ↔ in-progress → review → done
//
//	todo/in-progress/review → blocked → in-progress
var transitions = map[Status][]Status{
	StatusTodo:       {StatusInProgress, StatusBlocked},
	StatusInProgress: {StatusTodo, StatusReview, StatusBlocked},
	StatusReview:     {StatusDone, StatusBlocked},
	StatusBlocked:    {StatusInProgress},
	StatusDone:       {},
}

// CanTransitionTo returns true if the status can transition to the target status.
func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range transitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if the status is a terminal state.
func (s Status) IsTerminal() bool {
	return s == StatusDone
}

// IsValid returns true if the status is a known valid value.
func (s Status) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusReview, StatusDone, StatusBlocked:
		return true
	default:
		return false
	}
}

// ValidateTransition checks a status change together with the blocked_by
// guard. blockedBy is the value the record will carry after the write.
// A violating commit is rejected, never silently coerced.
func ValidateTransition(from, to Status, blockedBy *string) error {
	if !to.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}
	if from != to && !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	if to == StatusBlocked {
		if blockedBy == nil || *blockedBy == "" {
			return ErrBlockedByRequired
		}
		return nil
	}
	if blockedBy != nil {
		return ErrBlockedByStale
	}
	return nil
}
