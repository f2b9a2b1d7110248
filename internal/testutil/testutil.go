// Package testutil provides in-memory fakes shared across test packages.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hseto/minute/internal/domain"
)

// MockClock implements domain.Clock with a fixed time.
type MockClock struct {
	Time time.Time
}

func NewMockClock(t time.Time) *MockClock {
	return &MockClock{Time: t}
}

func (c *MockClock) Now() time.Time {
	return c.Time
}

// Advance moves the clock forward.
func (c *MockClock) Advance(d time.Duration) {
	c.Time = c.Time.Add(d)
}

// MockOracle implements domain.Oracle with canned per-dimension answers.
type MockOracle struct {
	Impact    domain.RubricScore
	Effort    domain.RubricScore
	Err       error
	CallCount int
}

func (o *MockOracle) Score(_ context.Context, req domain.RubricRequest) (domain.RubricScore, error) {
	o.CallCount++
	if o.Err != nil {
		return domain.RubricScore{}, o.Err
	}
	if req.Dimension == domain.DimensionImpact {
		return o.Impact, nil
	}
	return o.Effort, nil
}

// MockTaskStore implements domain.TaskStore in memory. Records are stored
// by ID; areas are tracked separately the way the file store tracks
// directories.
type MockTaskStore struct {
	Records map[string]*domain.TaskRecord
	Areas   map[string]domain.Area
	Clock   domain.Clock

	PutErr     error
	PutErrOnce bool // PutErr fires on the next Put only, then clears
	PatchErr   error
	ListErr    error
}

func NewMockTaskStore(clock domain.Clock) *MockTaskStore {
	return &MockTaskStore{
		Records: make(map[string]*domain.TaskRecord),
		Areas:   make(map[string]domain.Area),
		Clock:   clock,
	}
}

// Seed inserts a record directly, bypassing validation.
func (s *MockTaskStore) Seed(rec *domain.TaskRecord, area domain.Area) {
	s.Records[rec.ID] = rec.Clone()
	s.Areas[rec.ID] = area
}

func (s *MockTaskStore) List(filter domain.TaskFilter) ([]*domain.TaskRecord, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	ids := make([]string, 0, len(s.Records))
	for id := range s.Records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []*domain.TaskRecord
	for _, id := range ids {
		rec := s.Records[id]
		if filter.Area != "" && s.Areas[id] != filter.Area {
			continue
		}
		if filter.Status != nil && rec.Status != *filter.Status {
			continue
		}
		if filter.Assignee != "" && rec.Assignee != filter.Assignee {
			continue
		}
		if filter.Label != "" && !hasLabel(rec, filter.Label) {
			continue
		}
		if filter.MinScore != nil && (rec.Score == nil || *rec.Score < *filter.MinScore) {
			continue
		}
		if filter.MaxScore != nil && rec.Score != nil && *rec.Score > *filter.MaxScore {
			continue
		}
		c := rec.Clone()
		c.Area = s.Areas[id]
		out = append(out, c)
	}
	return out, nil
}

func hasLabel(rec *domain.TaskRecord, label string) bool {
	for _, l := range rec.Labels {
		if l == label {
			return true
		}
	}
	return false
}

func (s *MockTaskStore) Get(id string) (*domain.TaskRecord, error) {
	rec, ok := s.Records[id]
	if !ok {
		return nil, nil
	}
	c := rec.Clone()
	c.Area = s.Areas[id]
	return c, nil
}

func (s *MockTaskStore) Put(rec *domain.TaskRecord) error {
	if s.PutErr != nil {
		err := s.PutErr
		if s.PutErrOnce {
			s.PutErr = nil
		}
		return err
	}
	if _, exists := s.Areas[rec.ID]; !exists {
		area := rec.Area
		if area == "" {
			area = domain.AreaActive
		}
		s.Areas[rec.ID] = area
	}
	s.Records[rec.ID] = rec.Clone()
	return nil
}

func (s *MockTaskStore) Patch(id string, patch domain.FieldPatch) (*domain.TaskRecord, error) {
	if s.PatchErr != nil {
		return nil, s.PatchErr
	}
	rec, ok := s.Records[id]
	if !ok {
		return nil, nil
	}
	updated := patch.Apply(rec, domain.Today(s.Clock))
	s.Records[id] = updated
	return updated.Clone(), nil
}

func (s *MockTaskStore) Move(id string, area domain.Area) error {
	if _, ok := s.Records[id]; !ok {
		return fmt.Errorf("move %s: %w", id, domain.ErrTaskNotFound)
	}
	s.Areas[id] = area
	return nil
}

func (s *MockTaskStore) NextID() (string, error) {
	max := 0
	for id := range s.Records {
		if n, ok := parseTaskNum(id); ok && n > max {
			max = n
		}
	}
	return fmt.Sprintf("TASK-%03d", max+1), nil
}

func parseTaskNum(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, "TASK-")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}

// NopLogger discards all log entries.
type NopLogger struct{}

func (NopLogger) Debug(string, string, string) {}
func (NopLogger) Info(string, string, string)  {}
func (NopLogger) Warn(string, string, string)  {}
func (NopLogger) Error(string, string, string) {}
