package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hseto/minute/internal/domain"
)

func TestBrief_Execute(t *testing.T) {
	env := newTestEnv()

	overdue := validRecord("TASK-001", domain.StatusInProgress)
	d1 := today().AddDays(-3)
	overdue.Due = &d1
	env.mock.Seed(overdue, domain.AreaActive)

	soon := validRecord("TASK-002", domain.StatusTodo)
	d2 := today().AddDays(1)
	soon.Due = &d2
	env.mock.Seed(soon, domain.AreaActive)

	env.mock.Seed(validRecord("TASK-003", domain.StatusTodo), domain.AreaActive)

	held := validRecord("TASK-004", domain.StatusTodo)
	held.Confidence = 0.55
	env.mock.Seed(held, domain.AreaHolding)

	out, err := NewBrief(env.store, env.clock).Execute(context.Background(), BriefInput{})
	require.NoError(t, err)

	assert.Equal(t, 2, out.ByStatus[domain.StatusTodo])
	assert.Equal(t, 1, out.ByStatus[domain.StatusInProgress])
	assert.Equal(t, 1, out.HoldingCount)
	assert.Equal(t, 3, out.Unscored)

	require.Len(t, out.Overdue, 1)
	assert.Equal(t, "TASK-001", out.Overdue[0].ID)
	require.Len(t, out.DueSoon, 1)
	assert.Equal(t, "TASK-002", out.DueSoon[0].ID)
	assert.Len(t, out.Tasks, 3, "holding records never rank in the brief")
}

func TestBrief_Execute_Limit(t *testing.T) {
	env := newTestEnv()
	seedScored(env, "TASK-001", 5.0)
	seedScored(env, "TASK-002", 8.0)
	seedScored(env, "TASK-003", 2.0)

	out, err := NewBrief(env.store, env.clock).Execute(context.Background(), BriefInput{Limit: 2})
	require.NoError(t, err)
	require.Len(t, out.Tasks, 2)
	assert.Equal(t, "TASK-002", out.Tasks[0].ID)
	assert.Equal(t, "TASK-001", out.Tasks[1].ID)
}

func TestScoreBand(t *testing.T) {
	assert.Equal(t, BandCritical, ScoreBand(8.0))
	assert.Equal(t, BandHigh, ScoreBand(6.4))
	assert.Equal(t, BandMedium, ScoreBand(4.0))
	assert.Equal(t, BandLow, ScoreBand(3.9))
}
