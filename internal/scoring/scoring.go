// Package scoring computes task priority scores. Urgency is always
// rule-derived; impact and effort come from a pluggable rubric oracle with a
// neutral fallback when the oracle is unavailable.
package scoring

import (
	"context"
	"fmt"
	"strings"

	"github.com/hseto/minute/internal/domain"
)

// Result is the outcome of scoring one record. Record is a scored copy of
// the input and is nil when Err is set. Fallback marks oracle-unavailable
// neutral values; Clamped marks out-of-range stored signals that were pulled
// back into [1,10].
type Result struct {
	Record          *domain.TaskRecord
	ID              string
	ImpactRationale string
	EffortRationale string
	Err             error
	Fallback        bool
	Clamped         bool
}

// Engine scores records. It is deterministic given the record, the clock
// date and the oracle's answers; the oracle is consulted only for signals
// the record does not already carry, so repeated runs on unchanged input
// never re-ask and never drift.
type Engine struct {
	oracle domain.Oracle
	clock  domain.Clock
	cfg    domain.ScoringConfig
}

func NewEngine(oracle domain.Oracle, clock domain.Clock, cfg domain.ScoringConfig) *Engine {
	return &Engine{oracle: oracle, clock: clock, cfg: cfg}
}

// ComputeUrgency derives urgency from the stronger of two signals: urgency
// keywords in the title and body, and deadline proximity. Records with
// neither signal sit at the configured floor.
func (e *Engine) ComputeUrgency(rec *domain.TaskRecord) int {
	urgency := e.cfg.UrgencyFloor

	searchable := strings.ToLower(rec.Title + " " + rec.Body)
	for kw, value := range e.cfg.UrgencyKeywords {
		if value > urgency && domain.ContainsKeyword(searchable, kw) {
			urgency = value
		}
	}

	if rec.Due != nil {
		if v := e.deadlineSignal(*rec.Due); v > urgency {
			urgency = v
		}
	}

	return domain.ClampRubric(urgency)
}

// deadlineSignal maps days-until-due onto the configured proximity curve.
// Overdue counts as due today. Beyond the last band there is no signal.
func (e *Engine) deadlineSignal(due domain.Date) int {
	days := domain.Today(e.clock).DaysUntil(due)
	if days < 0 {
		days = 0
	}
	for _, band := range e.cfg.DeadlineBands {
		if days <= band.MaxDays {
			return band.Value
		}
	}
	return 0
}

// Score returns a scored copy of rec. The input is never mutated; the
// caller decides whether to persist (dry-run is simply not persisting).
func (e *Engine) Score(ctx context.Context, rec *domain.TaskRecord) Result {
	out := rec.Clone()
	res := Result{ID: rec.ID}

	urgency := e.ComputeUrgency(out)
	out.Urgency = &urgency

	res.Clamped = clampStored(out)
	cached := out.Impact != nil || out.Effort != nil

	if out.Impact == nil {
		v, rationale, fallback := e.askOracle(ctx, out, domain.DimensionImpact, e.cfg.NeutralImpact)
		out.Impact = &v
		res.ImpactRationale = rationale
		res.Fallback = res.Fallback || fallback
	}
	if out.Effort == nil {
		v, rationale, fallback := e.askOracle(ctx, out, domain.DimensionEffort, e.cfg.NeutralEffort)
		out.Effort = &v
		res.EffortRationale = rationale
		res.Fallback = res.Fallback || fallback
	}
	// A provisional record stays provisional while any neutral cached signal
	// is still in play; only fresh oracle answers for every missing
	// dimension clear the flag.
	out.Provisional = res.Fallback || (rec.Provisional && cached)

	score := domain.ComputeScore(urgency, *out.Impact, *out.Effort)
	out.Score = &score
	out.Updated = domain.Today(e.clock)

	res.Record = out
	return res
}

// ScoreBatch scores each record independently. A failure on one record is
// isolated in its Result; the batch always completes. Results preserve
// input order, and no result depends on any other record in the batch.
func (e *Engine) ScoreBatch(ctx context.Context, recs []*domain.TaskRecord) []Result {
	results := make([]Result, 0, len(recs))
	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			results = append(results, Result{ID: rec.ID, Err: err})
			continue
		}
		results = append(results, e.Score(ctx, rec))
	}
	return results
}

// askOracle fetches one rubric dimension, degrading to the neutral value
// when the oracle fails. Oracle failure is flagged, never fatal.
func (e *Engine) askOracle(ctx context.Context, rec *domain.TaskRecord, dim domain.RubricDimension, neutral int) (int, string, bool) {
	if e.oracle == nil {
		return neutral, "", true
	}
	judged, err := e.oracle.Score(ctx, domain.RubricRequest{
		Title:     rec.Title,
		Context:   rec.Body,
		Source:    rec.Source,
		Labels:    rec.Labels,
		Dimension: dim,
	})
	if err != nil {
		return neutral, fmt.Sprintf("fallback: %v", err), true
	}
	return domain.ClampRubric(judged.Value), judged.Rationale, false
}

// clampStored pulls malformed stored signals back into range.
func clampStored(rec *domain.TaskRecord) bool {
	clamped := false
	for _, p := range []**int{&rec.Impact, &rec.Effort} {
		if *p == nil {
			continue
		}
		if v := domain.ClampRubric(**p); v != **p {
			*p = &v
			clamped = true
		}
	}
	return clamped
}
