package usecase

import (
	"context"
	"fmt"

	"github.com/hseto/minute/internal/domain"
)

// UpdateTaskInput contains the parameters for updating a task.
type UpdateTaskInput struct {
	ID    string
	Patch domain.FieldPatch
}

// UpdateTaskOutput contains the result of updating a task.
type UpdateTaskOutput struct {
	Task *domain.TaskRecord
}

// UpdateTask is the use case for field-level edits to an existing record.
// The write boundary enforces the state machine, the blocked_by guard,
// score rederivation and cycle rejection; this use case only routes.
type UpdateTask struct {
	store  domain.TaskStore
	logger domain.Logger
}

// NewUpdateTask creates a new UpdateTask use case.
func NewUpdateTask(store domain.TaskStore, logger domain.Logger) *UpdateTask {
	return &UpdateTask{store: store, logger: logger}
}

// Execute applies the patch to the task.
func (uc *UpdateTask) Execute(_ context.Context, in UpdateTaskInput) (*UpdateTaskOutput, error) {
	if in.Patch.IsEmpty() {
		return nil, domain.ErrNoFieldsToUpdate
	}

	rec, err := uc.store.Patch(in.ID, in.Patch)
	if err != nil {
		return nil, fmt.Errorf("update task %s: %w", in.ID, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%s: %w", in.ID, domain.ErrTaskNotFound)
	}

	if uc.logger != nil {
		uc.logger.Info(in.ID, "task", "updated")
	}
	return &UpdateTaskOutput{Task: rec}, nil
}
