package usecase

import (
	"time"

	"github.com/hseto/minute/internal/domain"
	"github.com/hseto/minute/internal/store"
	"github.com/hseto/minute/internal/testutil"
)

// fixedNow is the reference instant used by all usecase tests.
var fixedNow = time.Date(2026, time.August, 26, 10, 0, 0, 0, time.UTC)

func today() domain.Date {
	return domain.DateOf(fixedNow)
}

// testEnv bundles a mock store behind the validating write boundary, the
// same shape the app container wires in production.
type testEnv struct {
	mock  *testutil.MockTaskStore
	store *store.Validating
	clock *testutil.MockClock
}

func newTestEnv() *testEnv {
	clock := testutil.NewMockClock(fixedNow)
	mock := testutil.NewMockTaskStore(clock)
	return &testEnv{
		mock:  mock,
		store: store.NewValidating(mock, clock, 0.7),
		clock: clock,
	}
}

// validRecord returns a minimal record that passes the write boundary.
func validRecord(id string, status domain.Status) *domain.TaskRecord {
	return &domain.TaskRecord{
		ID:         id,
		Title:      "Fix the flaky login test",
		Status:     status,
		Assignee:   "kim",
		Priority:   domain.PriorityMedium,
		Created:    today(),
		Updated:    today(),
		Source:     "2026-08-25-standup.md",
		Confidence: 0.95,
	}
}
