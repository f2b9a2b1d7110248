package domain

import (
	"math"
	"strings"
)

// Score weights. Urgency and impact are co-primary; effort is a tie-breaker
// only, so it carries a smaller negative coefficient.
const (
	WeightUrgency = 0.4
	WeightImpact  = 0.4
	WeightEffort  = 0.2
)

// Rubric value bounds for urgency, impact and effort.
const (
	RubricMin = 1
	RubricMax = 10
)

// ComputeScore applies the fixed priority formula, rounded to one decimal.
func ComputeScore(urgency, impact, effort int) float64 {
	raw := float64(urgency)*WeightUrgency + float64(impact)*WeightImpact - float64(effort)*WeightEffort
	return math.Round(raw*10) / 10
}

// DeriveScore returns the score implied by the record's current urgency,
// impact and effort, or nil when any of them is unset. A stored score that
// disagrees with this value is stale, not erroneous; recompute before ranking.
func DeriveScore(r *TaskRecord) *float64 {
	if r.Urgency == nil || r.Impact == nil || r.Effort == nil {
		return nil
	}
	s := ComputeScore(*r.Urgency, *r.Impact, *r.Effort)
	return &s
}

// ContainsKeyword reports whether lowercased text contains kw as a whole
// word or phrase. Hyphens join words: "soon-ish" does not contain "soon".
func ContainsKeyword(text, kw string) bool {
	if kw == "" {
		return false
	}
	for start := 0; ; {
		idx := strings.Index(text[start:], kw)
		if idx < 0 {
			return false
		}
		idx += start
		if keywordBoundary(text, idx-1) && keywordBoundary(text, idx+len(kw)) {
			return true
		}
		start = idx + 1
	}
}

func keywordBoundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	c := s[i]
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-':
		return false
	}
	return true
}

// ClampRubric forces a value into the valid rubric range.
func ClampRubric(v int) int {
	if v < RubricMin {
		return RubricMin
	}
	if v > RubricMax {
		return RubricMax
	}
	return v
}
