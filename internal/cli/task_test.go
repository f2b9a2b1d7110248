package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hseto/minute/internal/app"
	"github.com/hseto/minute/internal/domain"
	"github.com/hseto/minute/internal/store"
	"github.com/hseto/minute/internal/testutil"
)

// fixedNow is the reference instant used by all cli tests.
var fixedNow = time.Date(2026, time.August, 26, 10, 0, 0, 0, time.UTC)

type noopInitializer struct{ called bool }

func (n *noopInitializer) Initialize() error {
	n.called = true
	return nil
}

// newTestContainer creates an app.Container wired to in-memory fakes.
func newTestContainer(mock *testutil.MockTaskStore) *app.Container {
	clock := testutil.NewMockClock(fixedNow)
	cfg := domain.NewDefaultConfig()
	tasks := store.NewValidating(mock, clock, cfg.Extract.ConfidenceThreshold)
	return app.NewWithDeps(
		app.Config{},
		tasks,
		&noopInitializer{},
		clock,
		&testutil.MockOracle{
			Impact: domain.RubricScore{Value: 6, Rationale: "moderate blast radius"},
			Effort: domain.RubricScore{Value: 4, Rationale: "contained change"},
		},
		cfg,
	)
}

func seedTask(t *testing.T, mock *testutil.MockTaskStore, id string, status domain.Status) {
	t.Helper()
	today := domain.DateOf(fixedNow)
	require.NoError(t, mock.Put(&domain.TaskRecord{
		ID:         id,
		Title:      "Fix the flaky login test",
		Status:     status,
		Assignee:   "kim",
		Priority:   domain.PriorityMedium,
		Created:    today,
		Updated:    today,
		Source:     "2026-08-25-standup.md",
		Confidence: 0.95,
	}))
}

// =============================================================================
// New Command Tests
// =============================================================================

func TestNewNewCommand_CreateTask(t *testing.T) {
	mock := testutil.NewMockTaskStore(testutil.NewMockClock(fixedNow))
	container := newTestContainer(mock)

	cmd := newNewCommand(container)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--title", "Rotate the staging TLS certs"})

	err := cmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Created TASK-001")

	rec := mock.Records["TASK-001"]
	require.NotNil(t, rec)
	assert.Equal(t, "Rotate the staging TLS certs", rec.Title)
	assert.Equal(t, domain.StatusTodo, rec.Status)
	assert.Equal(t, domain.PriorityMedium, rec.Priority)
}

func TestNewNewCommand_WithDueAndLabels(t *testing.T) {
	mock := testutil.NewMockTaskStore(testutil.NewMockClock(fixedNow))
	container := newTestContainer(mock)

	cmd := newNewCommand(container)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{
		"--title", "Ship the rollout",
		"--assignee", "sarah",
		"--due", "2026-09-01",
		"--label", "deploy", "--label", "infra",
	})

	err := cmd.Execute()

	assert.NoError(t, err)
	rec := mock.Records["TASK-001"]
	require.NotNil(t, rec)
	assert.Equal(t, "sarah", rec.Assignee)
	require.NotNil(t, rec.Due)
	assert.Equal(t, "2026-09-01", rec.Due.String())
	assert.Equal(t, []string{"deploy", "infra"}, rec.Labels)
}

func TestNewNewCommand_InvalidDue(t *testing.T) {
	mock := testutil.NewMockTaskStore(testutil.NewMockClock(fixedNow))
	container := newTestContainer(mock)

	cmd := newNewCommand(container)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--title", "Ship the rollout", "--due", "next friday"})

	err := cmd.Execute()

	assert.Error(t, err)
	assert.Empty(t, mock.Records)
}

// =============================================================================
// Update Command Tests
// =============================================================================

func TestNewUpdateCommand_Status(t *testing.T) {
	mock := testutil.NewMockTaskStore(testutil.NewMockClock(fixedNow))
	container := newTestContainer(mock)
	seedTask(t, mock, "TASK-001", domain.StatusTodo)

	cmd := newUpdateCommand(container)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"TASK-001", "--status", "in-progress"})

	err := cmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Updated TASK-001")
	assert.Equal(t, domain.StatusInProgress, mock.Records["TASK-001"].Status)
}

func TestNewUpdateCommand_BlockedRequiresBlockedBy(t *testing.T) {
	mock := testutil.NewMockTaskStore(testutil.NewMockClock(fixedNow))
	container := newTestContainer(mock)
	seedTask(t, mock, "TASK-001", domain.StatusTodo)

	cmd := newUpdateCommand(container)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"TASK-001", "--status", "blocked"})

	err := cmd.Execute()

	assert.ErrorIs(t, err, domain.ErrBlockedByRequired)
}

func TestNewUpdateCommand_SignalsDeriveScore(t *testing.T) {
	mock := testutil.NewMockTaskStore(testutil.NewMockClock(fixedNow))
	container := newTestContainer(mock)
	seedTask(t, mock, "TASK-001", domain.StatusTodo)

	cmd := newUpdateCommand(container)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"TASK-001", "--urgency", "7", "--impact", "7", "--effort", "4"})

	err := cmd.Execute()

	assert.NoError(t, err)
	rec := mock.Records["TASK-001"]
	require.NotNil(t, rec.Score)
	assert.InDelta(t, 4.8, *rec.Score, 0.001)
}

func TestNewUpdateCommand_NoFields(t *testing.T) {
	mock := testutil.NewMockTaskStore(testutil.NewMockClock(fixedNow))
	container := newTestContainer(mock)
	seedTask(t, mock, "TASK-001", domain.StatusTodo)

	cmd := newUpdateCommand(container)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"TASK-001"})

	err := cmd.Execute()

	assert.ErrorIs(t, err, domain.ErrNoFieldsToUpdate)
}

// =============================================================================
// Done / Promote / Archive Command Tests
// =============================================================================

func TestNewDoneCommand(t *testing.T) {
	mock := testutil.NewMockTaskStore(testutil.NewMockClock(fixedNow))
	container := newTestContainer(mock)
	seedTask(t, mock, "TASK-001", domain.StatusReview)

	cmd := newDoneCommand(container)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"TASK-001"})

	err := cmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Completed TASK-001")
	assert.Equal(t, domain.StatusDone, mock.Records["TASK-001"].Status)
}

func TestNewDoneCommand_NotInReview(t *testing.T) {
	mock := testutil.NewMockTaskStore(testutil.NewMockClock(fixedNow))
	container := newTestContainer(mock)
	seedTask(t, mock, "TASK-001", domain.StatusTodo)

	cmd := newDoneCommand(container)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"TASK-001"})

	err := cmd.Execute()

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestNewPromoteCommand(t *testing.T) {
	mock := testutil.NewMockTaskStore(testutil.NewMockClock(fixedNow))
	container := newTestContainer(mock)
	seedTask(t, mock, "TASK-001", domain.StatusTodo)
	require.NoError(t, mock.Move("TASK-001", domain.AreaHolding))

	cmd := newPromoteCommand(container)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"TASK-001"})

	err := cmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Promoted TASK-001")
	assert.Equal(t, domain.AreaActive, mock.Areas["TASK-001"])
}

func TestNewArchiveCommand(t *testing.T) {
	mock := testutil.NewMockTaskStore(testutil.NewMockClock(fixedNow))
	container := newTestContainer(mock)
	seedTask(t, mock, "TASK-001", domain.StatusDone)

	cmd := newArchiveCommand(container)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"TASK-001"})

	err := cmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Archived TASK-001")
	assert.Equal(t, domain.AreaArchive, mock.Areas["TASK-001"])
}

// =============================================================================
// List Command Tests
// =============================================================================

func TestNewListCommand_SortsByScore(t *testing.T) {
	mock := testutil.NewMockTaskStore(testutil.NewMockClock(fixedNow))
	container := newTestContainer(mock)
	seedTask(t, mock, "TASK-001", domain.StatusTodo)
	seedTask(t, mock, "TASK-002", domain.StatusTodo)
	low, high := 3.2, 7.4
	mock.Records["TASK-001"].Score = &low
	mock.Records["TASK-002"].Score = &high

	cmd := newListCommand(container)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()

	assert.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "7.4")
	assert.Contains(t, out, "3.2")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("TASK-002")), bytes.Index(buf.Bytes(), []byte("TASK-001")))
}

func TestNewListCommand_HoldingFlag(t *testing.T) {
	mock := testutil.NewMockTaskStore(testutil.NewMockClock(fixedNow))
	container := newTestContainer(mock)
	seedTask(t, mock, "TASK-001", domain.StatusTodo)
	seedTask(t, mock, "TASK-002", domain.StatusTodo)
	require.NoError(t, mock.Move("TASK-002", domain.AreaHolding))

	cmd := newListCommand(container)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--holding"})

	err := cmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "TASK-002")
	assert.NotContains(t, buf.String(), "TASK-001")
}

func TestNewListCommand_StatusFilter(t *testing.T) {
	mock := testutil.NewMockTaskStore(testutil.NewMockClock(fixedNow))
	container := newTestContainer(mock)
	seedTask(t, mock, "TASK-001", domain.StatusTodo)
	seedTask(t, mock, "TASK-002", domain.StatusInProgress)

	cmd := newListCommand(container)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--status", "in-progress"})

	err := cmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "TASK-002")
	assert.NotContains(t, buf.String(), "TASK-001")
}

func TestNewListCommand_InvalidArea(t *testing.T) {
	mock := testutil.NewMockTaskStore(testutil.NewMockClock(fixedNow))
	container := newTestContainer(mock)

	cmd := newListCommand(container)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--area", "attic"})

	err := cmd.Execute()

	assert.ErrorIs(t, err, domain.ErrInvalidArea)
}
