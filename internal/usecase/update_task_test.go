package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hseto/minute/internal/domain"
	"github.com/hseto/minute/internal/testutil"
)

func TestUpdateTask_Execute_PatchesFields(t *testing.T) {
	env := newTestEnv()
	env.mock.Seed(validRecord("TASK-001", domain.StatusTodo), domain.AreaActive)
	uc := NewUpdateTask(env.store, testutil.NopLogger{})

	title := "Fix the flaky login test on CI"
	status := domain.StatusInProgress
	out, err := uc.Execute(context.Background(), UpdateTaskInput{
		ID:    "TASK-001",
		Patch: domain.FieldPatch{Title: &title, Status: &status},
	})
	require.NoError(t, err)
	assert.Equal(t, title, out.Task.Title)
	assert.Equal(t, domain.StatusInProgress, out.Task.Status)
}

func TestUpdateTask_Execute_EmptyPatch(t *testing.T) {
	env := newTestEnv()
	env.mock.Seed(validRecord("TASK-001", domain.StatusTodo), domain.AreaActive)
	uc := NewUpdateTask(env.store, testutil.NopLogger{})

	_, err := uc.Execute(context.Background(), UpdateTaskInput{ID: "TASK-001"})
	assert.ErrorIs(t, err, domain.ErrNoFieldsToUpdate)
}

func TestUpdateTask_Execute_ScoreIsReadOnly(t *testing.T) {
	env := newTestEnv()
	env.mock.Seed(validRecord("TASK-001", domain.StatusTodo), domain.AreaActive)
	uc := NewUpdateTask(env.store, testutil.NopLogger{})

	score := 9.9
	_, err := uc.Execute(context.Background(), UpdateTaskInput{
		ID:    "TASK-001",
		Patch: domain.FieldPatch{Score: &score},
	})
	assert.ErrorIs(t, err, domain.ErrScoreReadOnly)
}

func TestUpdateTask_Execute_InvalidTransition(t *testing.T) {
	env := newTestEnv()
	env.mock.Seed(validRecord("TASK-001", domain.StatusTodo), domain.AreaActive)
	uc := NewUpdateTask(env.store, testutil.NopLogger{})

	status := domain.StatusDone
	_, err := uc.Execute(context.Background(), UpdateTaskInput{
		ID:    "TASK-001",
		Patch: domain.FieldPatch{Status: &status},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestUpdateTask_Execute_BlockedRequiresBlockedBy(t *testing.T) {
	env := newTestEnv()
	env.mock.Seed(validRecord("TASK-001", domain.StatusTodo), domain.AreaActive)
	uc := NewUpdateTask(env.store, testutil.NopLogger{})

	status := domain.StatusBlocked
	_, err := uc.Execute(context.Background(), UpdateTaskInput{
		ID:    "TASK-001",
		Patch: domain.FieldPatch{Status: &status},
	})
	assert.ErrorIs(t, err, domain.ErrBlockedByRequired)

	by := "TASK-007"
	out, err := uc.Execute(context.Background(), UpdateTaskInput{
		ID:    "TASK-001",
		Patch: domain.FieldPatch{Status: &status, BlockedBy: &by},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBlocked, out.Task.Status)
}

func TestUpdateTask_Execute_NotFound(t *testing.T) {
	env := newTestEnv()
	uc := NewUpdateTask(env.store, testutil.NopLogger{})

	title := "Anything"
	_, err := uc.Execute(context.Background(), UpdateTaskInput{
		ID:    "TASK-404",
		Patch: domain.FieldPatch{Title: &title},
	})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}
