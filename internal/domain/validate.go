package domain

import "fmt"

// ValidateRecord checks the field-level invariants that must hold on every
// write, independent of any status transition.
func ValidateRecord(r *TaskRecord) error {
	if r.ID == "" {
		return &ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if r.Title == "" {
		return ErrEmptyTitle
	}
	if !r.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, r.Status)
	}
	if !r.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, r.Priority)
	}
	if r.Area != "" && !r.Area.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidArea, r.Area)
	}
	if r.Assignee == "" {
		return &ValidationError{Field: "assignee", Reason: "must be an identifier or " + Unassigned}
	}
	if r.Source == "" {
		return &ValidationError{Field: "source", Reason: "must reference the originating note"}
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return &ValidationError{Field: "confidence", Reason: fmt.Sprintf("%.2f outside [0,1]", r.Confidence)}
	}
	for field, v := range map[string]*int{"urgency": r.Urgency, "impact": r.Impact, "effort": r.Effort} {
		if v != nil && (*v < RubricMin || *v > RubricMax) {
			return &ValidationError{Field: field, Reason: fmt.Sprintf("%d outside [%d,%d]", *v, RubricMin, RubricMax)}
		}
	}
	if r.Created.IsZero() {
		return &ValidationError{Field: "created_date", Reason: "must be set"}
	}
	if r.Updated.IsZero() || r.Updated.Before(r.Created) {
		return &ValidationError{Field: "updated_date", Reason: "must not precede created_date"}
	}
	if r.Status == StatusBlocked {
		if r.BlockedBy == nil || *r.BlockedBy == "" {
			return ErrBlockedByRequired
		}
	} else if r.BlockedBy != nil {
		return ErrBlockedByStale
	}
	return nil
}
