// Package usecase contains application use cases.
package usecase

import (
	"context"
	"fmt"

	"github.com/hseto/minute/internal/domain"
)

// NewTaskInput contains the parameters for creating a task directly.
// Fields are ordered to minimize memory padding.
type NewTaskInput struct {
	Due       *domain.Date    // Due date (optional)
	Title     string          // Task title (required)
	Assignee  string          // "@name" (optional, defaults to unassigned)
	Body      string          // Narrative body (optional)
	Priority  domain.Priority // Priority hint (optional, defaults to medium)
	Labels    []string        // Labels (optional)
	Urgency   *int            // Manual urgency override (optional)
	Impact    *int            // Manual impact (optional)
	Effort    *int            // Manual effort (optional)
}

// NewTaskOutput contains the result of creating a task.
type NewTaskOutput struct {
	Task *domain.TaskRecord
}

// NewTask is the use case for creating a task by hand rather than through
// extraction. Manual tasks carry full confidence and skip the holding area.
type NewTask struct {
	store  domain.TaskStore
	clock  domain.Clock
	logger domain.Logger
}

// NewNewTask creates a new NewTask use case.
func NewNewTask(store domain.TaskStore, clock domain.Clock, logger domain.Logger) *NewTask {
	return &NewTask{store: store, clock: clock, logger: logger}
}

// Execute creates a new task with the given input.
func (uc *NewTask) Execute(_ context.Context, in NewTaskInput) (*NewTaskOutput, error) {
	if in.Title == "" {
		return nil, domain.ErrEmptyTitle
	}

	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidPriority, priority)
	}

	assignee := in.Assignee
	if assignee == "" {
		assignee = domain.Unassigned
	}

	id, err := uc.store.NextID()
	if err != nil {
		return nil, fmt.Errorf("generate task ID: %w", err)
	}

	today := domain.Today(uc.clock)
	rec := &domain.TaskRecord{
		ID:         id,
		Title:      in.Title,
		Status:     domain.StatusTodo,
		Assignee:   assignee,
		Priority:   priority,
		Due:        in.Due,
		Labels:     in.Labels,
		Urgency:    in.Urgency,
		Impact:     in.Impact,
		Effort:     in.Effort,
		Created:    today,
		Updated:    today,
		Source:     domain.ManualSource,
		Confidence: 1.0,
		Body:       in.Body,
		Area:       domain.AreaActive,
	}
	rec.Score = domain.DeriveScore(rec)

	if err := uc.store.Put(rec); err != nil {
		return nil, fmt.Errorf("save task: %w", err)
	}

	if uc.logger != nil {
		uc.logger.Info(id, "task", fmt.Sprintf("created: %q", in.Title))
	}

	return &NewTaskOutput{Task: rec}, nil
}
