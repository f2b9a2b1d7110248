package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hseto/minute/internal/domain"
	"github.com/hseto/minute/internal/testutil"
)

func TestNewBriefCommand(t *testing.T) {
	mock := testutil.NewMockTaskStore(testutil.NewMockClock(fixedNow))
	container := newTestContainer(mock)

	seedTask(t, mock, "TASK-001", domain.StatusTodo)
	seedTask(t, mock, "TASK-002", domain.StatusInProgress)
	seedTask(t, mock, "TASK-003", domain.StatusTodo)
	require.NoError(t, mock.Move("TASK-003", domain.AreaHolding))

	today := domain.DateOf(fixedNow)
	overdue := today.AddDays(-3)
	soon := today.AddDays(1)
	mock.Records["TASK-001"].Due = &overdue
	mock.Records["TASK-002"].Due = &soon
	high := 8.2
	mock.Records["TASK-002"].Score = &high

	cmd := newBriefCommand(container)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()

	assert.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Brief for 2026-08-26")
	assert.Contains(t, out, "Overdue:")
	assert.Contains(t, out, "Due soon:")
	assert.Contains(t, out, "CRITICAL")
	assert.Contains(t, out, "1 todo, 1 in-progress")
	assert.Contains(t, out, "Holding area: 1 draft(s)")
	assert.NotContains(t, out, "TASK-003")
}

func TestNewBriefCommand_Empty(t *testing.T) {
	mock := testutil.NewMockTaskStore(testutil.NewMockClock(fixedNow))
	container := newTestContainer(mock)

	cmd := newBriefCommand(container)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No active tasks")
}

func TestNewInitCommand(t *testing.T) {
	mock := testutil.NewMockTaskStore(testutil.NewMockClock(fixedNow))
	container := newTestContainer(mock)
	init := container.StoreInitializer.(*noopInitializer)

	cmd := newInitCommand(container)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()

	assert.NoError(t, err)
	assert.True(t, init.called)
	assert.Contains(t, buf.String(), "Initialized task store")
}
