package usecase

import (
	"context"
	"fmt"

	"github.com/hseto/minute/internal/domain"
	"github.com/hseto/minute/internal/scoring"
)

// ScoreTasksInput contains the parameters for a scoring run.
// Fields are ordered to minimize memory padding.
type ScoreTasksInput struct {
	IDs          []string // Specific records to score (empty = whole active queue)
	OnlyUnscored bool     // Skip records that already carry a score
	DryRun       bool     // Compute without persisting
}

// ScoreTasksOutput contains the result of a scoring run.
type ScoreTasksOutput struct {
	Results []scoring.Result
	Scored  int // Records successfully scored
	Failed  int // Records that errored; the rest of the batch is unaffected
}

// ScoreTasks is the use case for scoring records in bulk. Failures are
// isolated per record, so an interrupted or partially failed run can simply
// be re-run: already scored records are skipped when OnlyUnscored is set and
// are recomputed to the same values otherwise.
type ScoreTasks struct {
	store  domain.TaskStore
	engine *scoring.Engine
	logger domain.Logger
}

// NewScoreTasks creates a new ScoreTasks use case.
func NewScoreTasks(store domain.TaskStore, engine *scoring.Engine, logger domain.Logger) *ScoreTasks {
	return &ScoreTasks{store: store, engine: engine, logger: logger}
}

// Execute scores the selected records.
func (uc *ScoreTasks) Execute(ctx context.Context, in ScoreTasksInput) (*ScoreTasksOutput, error) {
	recs, err := uc.collect(in)
	if err != nil {
		return nil, err
	}

	out := &ScoreTasksOutput{Results: uc.engine.ScoreBatch(ctx, recs)}
	for i := range out.Results {
		res := &out.Results[i]
		if res.Err != nil {
			out.Failed++
			if uc.logger != nil {
				uc.logger.Error(res.ID, "score", res.Err.Error())
			}
			continue
		}
		if !in.DryRun {
			if err := uc.store.Put(res.Record); err != nil {
				res.Err = fmt.Errorf("save score: %w", err)
				out.Failed++
				continue
			}
		}
		out.Scored++
		if uc.logger != nil && !in.DryRun {
			uc.logger.Info(res.ID, "score", fmt.Sprintf("score %.1f (urgency %d, impact %d, effort %d, fallback %v)",
				*res.Record.Score, *res.Record.Urgency, *res.Record.Impact, *res.Record.Effort, res.Fallback))
		}
	}
	return out, nil
}

func (uc *ScoreTasks) collect(in ScoreTasksInput) ([]*domain.TaskRecord, error) {
	var recs []*domain.TaskRecord
	if len(in.IDs) > 0 {
		for _, id := range in.IDs {
			rec, err := uc.store.Get(id)
			if err != nil {
				return nil, fmt.Errorf("get task %s: %w", id, err)
			}
			if rec == nil {
				return nil, fmt.Errorf("%s: %w", id, domain.ErrTaskNotFound)
			}
			recs = append(recs, rec)
		}
	} else {
		all, err := uc.store.List(domain.TaskFilter{Area: domain.AreaActive})
		if err != nil {
			return nil, fmt.Errorf("list tasks: %w", err)
		}
		recs = all
	}

	if !in.OnlyUnscored {
		return recs, nil
	}
	var unscored []*domain.TaskRecord
	for _, rec := range recs {
		if !rec.IsScored() {
			unscored = append(unscored, rec)
		}
	}
	return unscored, nil
}
