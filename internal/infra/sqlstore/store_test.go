package sqlstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hseto/minute/internal/domain"
	"github.com/hseto/minute/internal/testutil"
)

var testNow = time.Date(2026, time.August, 26, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "minute.db"), testutil.NewMockClock(testNow), testutil.NopLogger{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Initialize())
	return store
}

func testRecord(id string) *domain.TaskRecord {
	return &domain.TaskRecord{
		ID:         id,
		Title:      "Fix the auth bug",
		Status:     domain.StatusTodo,
		Assignee:   "sarah",
		Priority:   domain.PriorityMedium,
		Created:    domain.NewDate(2026, time.August, 25),
		Updated:    domain.NewDate(2026, time.August, 25),
		Labels:     []string{"auth", "bug"},
		Source:     "note.md",
		Confidence: 0.9,
		Body:       "Raised in standup.",
	}
}

func TestStore_PutGet(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Put(testRecord("TASK-001")))

	loaded, err := store.Get("TASK-001")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Fix the auth bug", loaded.Title)
	assert.Equal(t, []string{"auth", "bug"}, loaded.Labels)
	assert.Equal(t, domain.AreaActive, loaded.Area)

	missing, err := store.Get("TASK-404")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_PutKeepsExistingArea(t *testing.T) {
	store := newTestStore(t)

	rec := testRecord("TASK-001")
	rec.Area = domain.AreaHolding
	require.NoError(t, store.Put(rec))

	update := testRecord("TASK-001")
	update.Area = domain.AreaActive // ignored for existing rows
	require.NoError(t, store.Put(update))

	loaded, err := store.Get("TASK-001")
	require.NoError(t, err)
	assert.Equal(t, domain.AreaHolding, loaded.Area)
}

func TestStore_PatchAndMove(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Put(testRecord("TASK-001")))

	assignee := "drew"
	updated, err := store.Patch("TASK-001", domain.FieldPatch{Assignee: &assignee})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "drew", updated.Assignee)
	assert.Equal(t, "2026-08-26", updated.Updated.String())

	missing, err := store.Patch("TASK-404", domain.FieldPatch{Assignee: &assignee})
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, store.Move("TASK-001", domain.AreaArchive))
	loaded, err := store.Get("TASK-001")
	require.NoError(t, err)
	assert.Equal(t, domain.AreaArchive, loaded.Area)

	assert.ErrorIs(t, store.Move("TASK-404", domain.AreaArchive), domain.ErrTaskNotFound)
}

func TestStore_ListFilters(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Put(testRecord("TASK-001")))

	b := testRecord("TASK-002")
	b.Status = domain.StatusInProgress
	b.Area = domain.AreaHolding
	require.NoError(t, store.Put(b))

	all, err := store.List(domain.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "TASK-001", all[0].ID)

	holding, err := store.List(domain.TaskFilter{Area: domain.AreaHolding})
	require.NoError(t, err)
	require.Len(t, holding, 1)
	assert.Equal(t, "TASK-002", holding[0].ID)

	status := domain.StatusInProgress
	inProgress, err := store.List(domain.TaskFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, inProgress, 1)
	assert.Equal(t, "TASK-002", inProgress[0].ID)
}

func TestStore_NextIDAndRepair(t *testing.T) {
	store := newTestStore(t)

	id, err := store.NextID()
	require.NoError(t, err)
	assert.Equal(t, "TASK-001", id)

	// A record created elsewhere outruns the counter; Initialize repairs it.
	require.NoError(t, store.Put(testRecord("TASK-007")))
	require.NoError(t, store.Initialize())

	id, err = store.NextID()
	require.NoError(t, err)
	assert.Equal(t, "TASK-008", id)
}

type warnRecorder struct {
	testutil.NopLogger
	warns []string
}

func (r *warnRecorder) Warn(taskID, category, msg string) {
	r.warns = append(r.warns, taskID+" "+msg)
}

func TestStore_ListSkipsAndReportsCorruptRows(t *testing.T) {
	logger := &warnRecorder{}
	store, err := Open(filepath.Join(t.TempDir(), "minute.db"), testutil.NewMockClock(testNow), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Initialize())
	require.NoError(t, store.Put(testRecord("TASK-001")))

	_, err = store.db.Exec(`INSERT INTO tasks (id, area, content) VALUES (?, ?, ?)`,
		"TASK-002", string(domain.AreaActive), "not a record")
	require.NoError(t, err)

	recs, err := store.List(domain.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "TASK-001", recs[0].ID)

	require.Len(t, logger.warns, 1)
	assert.Contains(t, logger.warns[0], "TASK-002")
}

func TestStore_UnknownFieldsSurvive(t *testing.T) {
	store := newTestStore(t)

	rec := testRecord("TASK-001")
	rec.Unknown = []domain.Field{{Key: "x_sprint", Raw: "x_sprint: 14"}}
	require.NoError(t, store.Put(rec))

	loaded, err := store.Get("TASK-001")
	require.NoError(t, err)
	assert.Equal(t, rec.Unknown, loaded.Unknown)
}
