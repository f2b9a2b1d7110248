package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hseto/minute/internal/domain"
	"github.com/hseto/minute/internal/testutil"
)

func TestPromoteTask_Execute(t *testing.T) {
	env := newTestEnv()
	held := validRecord("TASK-001", domain.StatusTodo)
	held.Confidence = 0.6
	env.mock.Seed(held, domain.AreaHolding)
	uc := NewPromoteTask(env.store, testutil.NopLogger{})

	out, err := uc.Execute(context.Background(), PromoteTaskInput{ID: "TASK-001"})
	require.NoError(t, err)
	assert.Equal(t, domain.AreaActive, out.Task.Area)
	assert.Equal(t, domain.AreaActive, env.mock.Areas["TASK-001"])
	assert.Equal(t, 0.6, out.Task.Confidence, "promotion never rewrites confidence")
}

func TestPromoteTask_Execute_NotInHolding(t *testing.T) {
	env := newTestEnv()
	env.mock.Seed(validRecord("TASK-001", domain.StatusTodo), domain.AreaActive)
	uc := NewPromoteTask(env.store, testutil.NopLogger{})

	_, err := uc.Execute(context.Background(), PromoteTaskInput{ID: "TASK-001"})
	assert.ErrorIs(t, err, domain.ErrNotInHolding)
}

func TestPromoteTask_Execute_NotFound(t *testing.T) {
	env := newTestEnv()
	uc := NewPromoteTask(env.store, testutil.NopLogger{})

	_, err := uc.Execute(context.Background(), PromoteTaskInput{ID: "TASK-404"})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}
