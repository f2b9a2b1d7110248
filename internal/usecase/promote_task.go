package usecase

import (
	"context"
	"fmt"

	"github.com/hseto/minute/internal/domain"
)

// PromoteTaskInput contains the parameters for promoting a held draft.
type PromoteTaskInput struct {
	ID string
}

// PromoteTaskOutput contains the result of promoting a held draft.
type PromoteTaskOutput struct {
	Task *domain.TaskRecord
}

// PromoteTask is the use case for moving a low-confidence draft from the
// holding area into the active queue after human review. Confidence itself
// is immutable; promotion records the human judgment as a location change.
type PromoteTask struct {
	store  domain.TaskStore
	logger domain.Logger
}

// NewPromoteTask creates a new PromoteTask use case.
func NewPromoteTask(store domain.TaskStore, logger domain.Logger) *PromoteTask {
	return &PromoteTask{store: store, logger: logger}
}

// Execute promotes the task out of holding.
func (uc *PromoteTask) Execute(_ context.Context, in PromoteTaskInput) (*PromoteTaskOutput, error) {
	rec, err := uc.store.Get(in.ID)
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", in.ID, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%s: %w", in.ID, domain.ErrTaskNotFound)
	}
	if rec.Area != domain.AreaHolding {
		return nil, fmt.Errorf("%s: %w", in.ID, domain.ErrNotInHolding)
	}

	if err := uc.store.Move(in.ID, domain.AreaActive); err != nil {
		return nil, fmt.Errorf("promote task %s: %w", in.ID, err)
	}
	rec.Area = domain.AreaActive

	if uc.logger != nil {
		uc.logger.Info(in.ID, "task", "promoted from holding")
	}
	return &PromoteTaskOutput{Task: rec}, nil
}
