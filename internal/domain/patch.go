package domain

// FieldPatch describes a field-level update to an existing record. A nil
// pointer leaves the field unchanged; the Clear flags distinguish "unset the
// field" from "leave it alone" for nullable fields.
//
// Score is present only so the write boundary can reject it: the score is
// machine-computed and a patch that sets it directly is never trusted.
type FieldPatch struct {
	Title          *string
	Status         *Status
	Assignee       *string
	Priority       *Priority
	Due            *Date
	BlockedBy      *string
	Urgency        *int
	Impact         *int
	Effort         *int
	Score          *float64
	Labels         *[]string
	Dependencies   *[]string
	ClearDue       bool
	ClearBlockedBy bool
	ClearImpact    bool
	ClearEffort    bool
}

// IsEmpty returns true if the patch changes nothing.
func (p FieldPatch) IsEmpty() bool {
	return p.Title == nil && p.Status == nil && p.Assignee == nil &&
		p.Priority == nil && p.Due == nil && p.BlockedBy == nil &&
		p.Urgency == nil && p.Impact == nil && p.Effort == nil &&
		p.Score == nil && p.Labels == nil && p.Dependencies == nil &&
		!p.ClearDue && !p.ClearBlockedBy && !p.ClearImpact && !p.ClearEffort
}

// touchesSignals returns true if the patch changes urgency, impact or effort.
func (p FieldPatch) touchesSignals() bool {
	return p.Urgency != nil || p.Impact != nil || p.Effort != nil ||
		p.ClearImpact || p.ClearEffort
}

// Apply returns a copy of rec with the patch applied. updated_date advances
// to today, and the score is rederived whenever urgency, impact or effort
// change so a stored score never drifts from the formula. The Score field of
// the patch itself is ignored here; rejection happens at the write boundary.
func (p FieldPatch) Apply(rec *TaskRecord, today Date) *TaskRecord {
	out := rec.Clone()

	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.Assignee != nil {
		out.Assignee = *p.Assignee
	}
	if p.Priority != nil {
		out.Priority = *p.Priority
	}
	if p.Due != nil {
		due := *p.Due
		out.Due = &due
	}
	if p.ClearDue {
		out.Due = nil
	}
	if p.BlockedBy != nil {
		by := *p.BlockedBy
		out.BlockedBy = &by
	}
	if p.ClearBlockedBy {
		out.BlockedBy = nil
	}
	if p.Urgency != nil {
		v := ClampRubric(*p.Urgency)
		out.Urgency = &v
	}
	if p.Impact != nil {
		v := ClampRubric(*p.Impact)
		out.Impact = &v
	}
	if p.Effort != nil {
		v := ClampRubric(*p.Effort)
		out.Effort = &v
	}
	if p.ClearImpact {
		out.Impact = nil
	}
	if p.ClearEffort {
		out.Effort = nil
	}
	if p.Labels != nil {
		out.Labels = cloneSlice(*p.Labels)
	}
	if p.Dependencies != nil {
		out.Dependencies = cloneSlice(*p.Dependencies)
	}

	if p.touchesSignals() {
		out.Score = DeriveScore(out)
	}

	out.Updated = today
	return out
}
