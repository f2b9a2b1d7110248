package usecase

import (
	"context"
	"fmt"

	"github.com/hseto/minute/internal/domain"
)

// CompleteTaskInput contains the parameters for completing a task.
type CompleteTaskInput struct {
	ID string
}

// CompleteTaskOutput contains the result of completing a task.
type CompleteTaskOutput struct {
	Task *domain.TaskRecord
}

// CompleteTask is the use case for marking a task done. The state machine
// only admits done from review, so completing a task that was never
// reviewed fails rather than silently jumping states.
type CompleteTask struct {
	store  domain.TaskStore
	logger domain.Logger
}

// NewCompleteTask creates a new CompleteTask use case.
func NewCompleteTask(store domain.TaskStore, logger domain.Logger) *CompleteTask {
	return &CompleteTask{store: store, logger: logger}
}

// Execute marks the task done.
func (uc *CompleteTask) Execute(_ context.Context, in CompleteTaskInput) (*CompleteTaskOutput, error) {
	status := domain.StatusDone
	rec, err := uc.store.Patch(in.ID, domain.FieldPatch{Status: &status})
	if err != nil {
		return nil, fmt.Errorf("complete task %s: %w", in.ID, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%s: %w", in.ID, domain.ErrTaskNotFound)
	}

	if uc.logger != nil {
		uc.logger.Info(in.ID, "task", "completed")
	}
	return &CompleteTaskOutput{Task: rec}, nil
}
