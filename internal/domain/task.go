// Package domain contains core business entities and interfaces.
package domain

// Unassigned is the sentinel assignee for records without an owner.
const Unassigned = "unassigned"

// ManualSource marks records created directly rather than extracted from a note.
const ManualSource = "manual"

// Priority is the human-set priority hint. It is independent of the computed
// score and never feeds into it.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// IsValid returns true if the priority is a known value.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// Area identifies where a record lives within a store. Low-confidence drafts
// are held in AreaHolding until promoted; deletion is modeled as relocation
// to AreaArchive so audit history survives.
type Area string

const (
	AreaActive  Area = "active"
	AreaHolding Area = "holding"
	AreaArchive Area = "archive"
)

// IsValid returns true if the area is a known value.
func (a Area) IsValid() bool {
	switch a {
	case AreaActive, AreaHolding, AreaArchive:
		return true
	default:
		return false
	}
}

// Field is a frontmatter entry the codec does not recognize. Unknown fields
// are carried verbatim so older tools can round-trip records written by newer
// ones.
type Field struct {
	Key string // Frontmatter key
	Raw string // Original source line, emitted unchanged on encode
}

// TaskRecord is the unit of work shared by agents and humans.
// Fields are ordered to minimize memory padding.
type TaskRecord struct {
	Due          *Date    // Due date (nil = none)
	Score        *float64 // Machine-computed; always derivable from urgency/impact/effort
	Urgency      *int     // Rule-derived signal in [1,10]
	Impact       *int     // Rubric-scored signal in [1,10]
	Effort       *int     // Rubric-scored signal in [1,10]
	BlockedBy    *string  // Task ID or external dependency; non-nil iff Status == blocked
	ID           string   // Opaque, monotonically assigned, never reused
	Title        string   // Imperative title (required)
	Assignee     string   // "@name" or Unassigned
	Source       string   // Originating meeting note reference
	Body         string   // Narrative sections (Context, Acceptance criteria, Notes); not machine-parsed
	Status       Status   // Current lifecycle state
	Priority     Priority // Human-set hint
	Area         Area     // Storage location; not part of the serialized record
	Labels       []string // Labels from the fixed taxonomy, display order preserved
	Dependencies []string // Task IDs this record logically waits on
	Unknown      []Field  // Unrecognized frontmatter, preserved verbatim
	Created      Date     // Creation date
	Updated      Date     // Advances on every mutating write; never before Created
	Confidence   float64  // Extraction confidence in [0,1]; immutable after extraction
	Provisional  bool     // Impact/effort came from the fallback heuristic, not a real rubric score
}

// IsScored returns true if the record carries a computed score.
func (r *TaskRecord) IsScored() bool {
	return r.Score != nil
}

// Clone returns a deep copy of the record.
func (r *TaskRecord) Clone() *TaskRecord {
	out := *r
	out.Due = clonePtr(r.Due)
	out.Score = clonePtr(r.Score)
	out.Urgency = clonePtr(r.Urgency)
	out.Impact = clonePtr(r.Impact)
	out.Effort = clonePtr(r.Effort)
	out.BlockedBy = clonePtr(r.BlockedBy)
	out.Labels = cloneSlice(r.Labels)
	out.Dependencies = cloneSlice(r.Dependencies)
	out.Unknown = cloneSlice(r.Unknown)
	return &out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
