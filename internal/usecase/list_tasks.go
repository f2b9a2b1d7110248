package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/hseto/minute/internal/domain"
)

// ListTasksInput contains the parameters for listing tasks.
// Fields are ordered to minimize memory padding.
type ListTasksInput struct {
	Status   *domain.Status // Filter by status
	MinScore *float64       // Inclusive lower score bound
	MaxScore *float64       // Inclusive upper score bound
	Assignee string         // Filter by assignee
	Label    string         // Filter by label
	Area     domain.Area    // Empty = active queue
}

// ListTasksOutput contains the result of listing tasks.
type ListTasksOutput struct {
	Tasks []*domain.TaskRecord // Sorted by score descending; unscored last
}

// ListTasks is the use case for querying the task queue.
type ListTasks struct {
	store domain.TaskStore
}

// NewListTasks creates a new ListTasks use case.
func NewListTasks(store domain.TaskStore) *ListTasks {
	return &ListTasks{store: store}
}

// Execute lists tasks matching the given criteria, highest score first.
// Unscored records sort after scored ones; ties break on ID so output
// order is stable across runs.
func (uc *ListTasks) Execute(_ context.Context, in ListTasksInput) (*ListTasksOutput, error) {
	area := in.Area
	if area == "" {
		area = domain.AreaActive
	}
	if !area.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidArea, area)
	}

	tasks, err := uc.store.List(domain.TaskFilter{
		Status:   in.Status,
		Assignee: in.Assignee,
		Label:    in.Label,
		MinScore: in.MinScore,
		MaxScore: in.MaxScore,
		Area:     area,
	})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		switch {
		case a.Score != nil && b.Score != nil && *a.Score != *b.Score:
			return *a.Score > *b.Score
		case a.Score != nil && b.Score == nil:
			return true
		case a.Score == nil && b.Score != nil:
			return false
		default:
			return a.ID < b.ID
		}
	})

	return &ListTasksOutput{Tasks: tasks}, nil
}
