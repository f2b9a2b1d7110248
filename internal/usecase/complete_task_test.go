package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hseto/minute/internal/domain"
	"github.com/hseto/minute/internal/testutil"
)

func TestCompleteTask_Execute_FromReview(t *testing.T) {
	env := newTestEnv()
	env.mock.Seed(validRecord("TASK-001", domain.StatusReview), domain.AreaActive)
	uc := NewCompleteTask(env.store, testutil.NopLogger{})

	out, err := uc.Execute(context.Background(), CompleteTaskInput{ID: "TASK-001"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, out.Task.Status)
	assert.Equal(t, today(), out.Task.Updated)
}

func TestCompleteTask_Execute_SkippingReviewIsRejected(t *testing.T) {
	env := newTestEnv()
	env.mock.Seed(validRecord("TASK-001", domain.StatusInProgress), domain.AreaActive)
	uc := NewCompleteTask(env.store, testutil.NopLogger{})

	_, err := uc.Execute(context.Background(), CompleteTaskInput{ID: "TASK-001"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCompleteTask_Execute_NotFound(t *testing.T) {
	env := newTestEnv()
	uc := NewCompleteTask(env.store, testutil.NopLogger{})

	_, err := uc.Execute(context.Background(), CompleteTaskInput{ID: "TASK-404"})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}
