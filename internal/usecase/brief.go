package usecase

import (
	"context"
	"fmt"

	"github.com/hseto/minute/internal/domain"
)

// Score bands used by the brief view.
const (
	BandCritical = "CRITICAL"
	BandHigh     = "HIGH"
	BandMedium   = "MEDIUM"
	BandLow      = "LOW"
)

// ScoreBand maps a computed score to its brief band.
func ScoreBand(score float64) string {
	switch {
	case score >= 8:
		return BandCritical
	case score >= 6:
		return BandHigh
	case score >= 4:
		return BandMedium
	default:
		return BandLow
	}
}

// BriefInput contains the parameters for building a daily brief.
type BriefInput struct {
	Limit int // Max tasks in the ranked section (0 = all)
}

// BriefOutput contains the daily brief data.
// Fields are ordered to minimize memory padding.
type BriefOutput struct {
	ByStatus     map[domain.Status]int
	Tasks        []*domain.TaskRecord // Ranked active tasks, score descending
	Overdue      []*domain.TaskRecord // Active tasks past their due date
	DueSoon      []*domain.TaskRecord // Active tasks due within two days
	Today        domain.Date
	HoldingCount int
	Unscored     int
}

// Brief is the use case behind the daily priority view: the ranked active
// queue plus deadline and holding-area callouts.
type Brief struct {
	store domain.TaskStore
	clock domain.Clock
}

// NewBrief creates a new Brief use case.
func NewBrief(store domain.TaskStore, clock domain.Clock) *Brief {
	return &Brief{store: store, clock: clock}
}

// Execute builds the brief.
func (uc *Brief) Execute(ctx context.Context, in BriefInput) (*BriefOutput, error) {
	listed, err := NewListTasks(uc.store).Execute(ctx, ListTasksInput{})
	if err != nil {
		return nil, err
	}

	holding, err := uc.store.List(domain.TaskFilter{Area: domain.AreaHolding})
	if err != nil {
		return nil, fmt.Errorf("list holding area: %w", err)
	}

	today := domain.Today(uc.clock)
	out := &BriefOutput{
		ByStatus:     make(map[domain.Status]int),
		Today:        today,
		HoldingCount: len(holding),
	}

	for _, rec := range listed.Tasks {
		out.ByStatus[rec.Status]++
		if !rec.IsScored() {
			out.Unscored++
		}
		if rec.Due != nil && !rec.Status.IsTerminal() {
			days := today.DaysUntil(*rec.Due)
			switch {
			case days < 0:
				out.Overdue = append(out.Overdue, rec)
			case days <= 2:
				out.DueSoon = append(out.DueSoon, rec)
			}
		}
	}

	out.Tasks = listed.Tasks
	if in.Limit > 0 && len(out.Tasks) > in.Limit {
		out.Tasks = out.Tasks[:in.Limit]
	}
	return out, nil
}
