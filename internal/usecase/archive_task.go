package usecase

import (
	"context"
	"fmt"

	"github.com/hseto/minute/internal/domain"
)

// ArchiveTaskInput contains the parameters for archiving a task.
type ArchiveTaskInput struct {
	ID string
}

// ArchiveTaskOutput contains the result of archiving a task.
type ArchiveTaskOutput struct {
	Task *domain.TaskRecord
}

// ArchiveTask is the use case for retiring a record. Nothing is deleted;
// the record moves to the archive area so its history stays auditable.
type ArchiveTask struct {
	store  domain.TaskStore
	logger domain.Logger
}

// NewArchiveTask creates a new ArchiveTask use case.
func NewArchiveTask(store domain.TaskStore, logger domain.Logger) *ArchiveTask {
	return &ArchiveTask{store: store, logger: logger}
}

// Execute moves the task to the archive area.
func (uc *ArchiveTask) Execute(_ context.Context, in ArchiveTaskInput) (*ArchiveTaskOutput, error) {
	rec, err := uc.store.Get(in.ID)
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", in.ID, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%s: %w", in.ID, domain.ErrTaskNotFound)
	}

	if err := uc.store.Move(in.ID, domain.AreaArchive); err != nil {
		return nil, fmt.Errorf("archive task %s: %w", in.ID, err)
	}
	rec.Area = domain.AreaArchive

	if uc.logger != nil {
		uc.logger.Info(in.ID, "task", "archived")
	}
	return &ArchiveTaskOutput{Task: rec}, nil
}
