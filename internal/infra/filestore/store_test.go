package filestore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hseto/minute/internal/domain"
	"github.com/hseto/minute/internal/testutil"
)

var testNow = time.Date(2026, time.August, 26, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	rootDir := filepath.Join(t.TempDir(), ".minute")
	store := New(rootDir, testutil.NewMockClock(testNow), testutil.NopLogger{})
	require.NoError(t, store.Initialize())
	return store, rootDir
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
	store, rootDir := newTestStore(t)

	rec := testRecord("TASK-001")
	require.NoError(t, store.Put(rec))

	loaded, err := store.Get("TASK-001")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Fix the auth bug", loaded.Title)
	assert.Equal(t, []string{"auth", "bug"}, loaded.Labels)
	assert.Equal(t, domain.AreaActive, loaded.Area)
	assert.Equal(t, "Raised in standup.", loaded.Body)

	// The file on disk is the canonical encoding.
	content, err := os.ReadFile(filepath.Join(rootDir, "tasks", "TASK-001.md"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "id: TASK-001\n")
}

func TestStore_GetMissing(t *testing.T) {
	store, _ := newTestStore(t)

	loaded, err := store.Get("TASK-404")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestStore_PutRoutesNewRecordByArea(t *testing.T) {
	store, rootDir := newTestStore(t)

	rec := testRecord("TASK-001")
	rec.Area = domain.AreaHolding
	rec.Confidence = 0.6
	require.NoError(t, store.Put(rec))

	_, err := os.Stat(filepath.Join(rootDir, "holding", "TASK-001.md"))
	require.NoError(t, err)

	loaded, err := store.Get("TASK-001")
	require.NoError(t, err)
	assert.Equal(t, domain.AreaHolding, loaded.Area)
}

func TestStore_PutKeepsExistingArea(t *testing.T) {
	store, rootDir := newTestStore(t)

	rec := testRecord("TASK-001")
	rec.Area = domain.AreaHolding
	require.NoError(t, store.Put(rec))

	update := testRecord("TASK-001")
	update.Title = "Updated title"
	update.Area = domain.AreaActive // ignored for existing records
	require.NoError(t, store.Put(update))

	_, err := os.Stat(filepath.Join(rootDir, "holding", "TASK-001.md"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(rootDir, "tasks", "TASK-001.md"))
	assert.True(t, os.IsNotExist(err))
}

func TestStore_Patch(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Put(testRecord("TASK-001")))

	assignee := "drew"
	updated, err := store.Patch("TASK-001", domain.FieldPatch{Assignee: &assignee})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "drew", updated.Assignee)
	assert.Equal(t, "2026-08-26", updated.Updated.String())

	loaded, err := store.Get("TASK-001")
	require.NoError(t, err)
	assert.Equal(t, "drew", loaded.Assignee)
}

func TestStore_PatchMissing(t *testing.T) {
	store, _ := newTestStore(t)

	assignee := "drew"
	updated, err := store.Patch("TASK-404", domain.FieldPatch{Assignee: &assignee})
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestStore_Move(t *testing.T) {
	store, rootDir := newTestStore(t)
	require.NoError(t, store.Put(testRecord("TASK-001")))

	require.NoError(t, store.Move("TASK-001", domain.AreaArchive))

	_, err := os.Stat(filepath.Join(rootDir, "archive", "TASK-001.md"))
	require.NoError(t, err)

	loaded, err := store.Get("TASK-001")
	require.NoError(t, err)
	assert.Equal(t, domain.AreaArchive, loaded.Area)

	assert.ErrorIs(t, store.Move("TASK-404", domain.AreaArchive), domain.ErrTaskNotFound)
}

func TestStore_ListFilters(t *testing.T) {
	store, _ := newTestStore(t)

	a := testRecord("TASK-001")
	require.NoError(t, store.Put(a))

	b := testRecord("TASK-002")
	b.Assignee = "drew"
	b.Status = domain.StatusInProgress
	b.Labels = []string{"deploy"}
	require.NoError(t, store.Put(b))

	c := testRecord("TASK-003")
	c.Area = domain.AreaHolding
	require.NoError(t, store.Put(c))

	all, err := store.List(domain.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"TASK-001", "TASK-002", "TASK-003"},
		[]string{all[0].ID, all[1].ID, all[2].ID})

	active, err := store.List(domain.TaskFilter{Area: domain.AreaActive})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	status := domain.StatusInProgress
	inProgress, err := store.List(domain.TaskFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, inProgress, 1)
	assert.Equal(t, "TASK-002", inProgress[0].ID)

	byLabel, err := store.List(domain.TaskFilter{Label: "deploy"})
	require.NoError(t, err)
	require.Len(t, byLabel, 1)
	assert.Equal(t, "TASK-002", byLabel[0].ID)

	byAssignee, err := store.List(domain.TaskFilter{Assignee: "sarah"})
	require.NoError(t, err)
	assert.Len(t, byAssignee, 2)
}

func TestStore_ListScoreBounds(t *testing.T) {
	store, _ := newTestStore(t)

	scored := testRecord("TASK-001")
	urgency, impact, effort := 8, 8, 4 // score 5.6
	scored.Urgency, scored.Impact, scored.Effort = &urgency, &impact, &effort
	score := domain.ComputeScore(urgency, impact, effort)
	scored.Score = &score
	require.NoError(t, store.Put(scored))

	require.NoError(t, store.Put(testRecord("TASK-002"))) // unscored

	min := 5.0
	high, err := store.List(domain.TaskFilter{MinScore: &min})
	require.NoError(t, err)
	require.Len(t, high, 1)
	assert.Equal(t, "TASK-001", high[0].ID)

	max := 5.0
	low, err := store.List(domain.TaskFilter{MaxScore: &max})
	require.NoError(t, err)
	require.Len(t, low, 1) // unscored records pass the upper bound
	assert.Equal(t, "TASK-002", low[0].ID)
}

type warnRecorder struct {
	testutil.NopLogger
	warns []string
}

func (r *warnRecorder) Warn(taskID, category, msg string) {
	r.warns = append(r.warns, taskID+" "+msg)
}

func TestStore_ListSkipsAndReportsCorruptFiles(t *testing.T) {
	rootDir := filepath.Join(t.TempDir(), ".minute")
	logger := &warnRecorder{}
	store := New(rootDir, testutil.NewMockClock(testNow), logger)
	require.NoError(t, store.Initialize())
	require.NoError(t, store.Put(testRecord("TASK-001")))

	bad := filepath.Join(rootDir, "tasks", "TASK-002.md")
	require.NoError(t, os.WriteFile(bad, []byte("not a record"), 0o644))

	recs, err := store.List(domain.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "TASK-001", recs[0].ID)

	require.Len(t, logger.warns, 1)
	assert.Contains(t, logger.warns[0], "TASK-002")
}

func TestStore_NextID(t *testing.T) {
	store, _ := newTestStore(t)

	id, err := store.NextID()
	require.NoError(t, err)
	assert.Equal(t, "TASK-001", id)

	id, err = store.NextID()
	require.NoError(t, err)
	assert.Equal(t, "TASK-002", id)
}

func TestStore_Initialize_RepairsNextID(t *testing.T) {
	store, rootDir := newTestStore(t)
	require.NoError(t, store.Put(testRecord("TASK-007")))

	// Wind the counter back, as if meta.json was lost and recreated.
	metaPath := filepath.Join(rootDir, "meta.json")
	content, err := json.Marshal(map[string]int{"schema": 1, "next_id": 1})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(metaPath, content, 0o644))

	require.NoError(t, store.Initialize())

	id, err := store.NextID()
	require.NoError(t, err)
	assert.Equal(t, "TASK-008", id)
}

func TestStore_NotInitialized(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), ".minute"), testutil.NewMockClock(testNow), testutil.NopLogger{})

	_, err := store.Get("TASK-001")
	assert.ErrorIs(t, err, domain.ErrNotInitialized)
	assert.False(t, store.IsInitialized())
}

func TestStore_FallbackParserHandlesEditedFile(t *testing.T) {
	store, rootDir := newTestStore(t)
	require.NoError(t, store.Put(testRecord("TASK-001")))

	// A hand edit that breaks YAML (unterminated quote) but still fits the
	// line-oriented grammar.
	path := filepath.Join(rootDir, "tasks", "TASK-001.md")
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	edited := strings.Replace(string(content),
		"title: \"Fix the auth bug\"\n",
		"title: \"Fix the auth bug\n", 1)
	require.NoError(t, os.WriteFile(path, []byte(edited), 0o644))

	loaded, err := store.Get("TASK-001")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Contains(t, loaded.Title, "Fix the auth bug")
}
