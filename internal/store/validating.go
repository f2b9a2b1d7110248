// Package store provides the write boundary shared by every storage
// backend. The Validating wrapper enforces record invariants, status
// transitions, dependency acyclicity and confidence gating before a write
// reaches the underlying store, so backends stay free of policy.
package store

import (
	"fmt"

	"github.com/hseto/minute/internal/domain"
)

// Validating wraps a TaskStore and validates every write. Reads pass
// through untouched. A rejected write leaves the underlying store
// unchanged.
type Validating struct {
	inner     domain.TaskStore
	clock     domain.Clock
	threshold float64 // confidence floor for the active area
}

func NewValidating(inner domain.TaskStore, clock domain.Clock, threshold float64) *Validating {
	return &Validating{inner: inner, clock: clock, threshold: threshold}
}

func (s *Validating) List(filter domain.TaskFilter) ([]*domain.TaskRecord, error) {
	return s.inner.List(filter)
}

func (s *Validating) Get(id string) (*domain.TaskRecord, error) {
	return s.inner.Get(id)
}

func (s *Validating) NextID() (string, error) {
	return s.inner.NextID()
}

func (s *Validating) Move(id string, area domain.Area) error {
	if !area.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidArea, area)
	}
	return s.inner.Move(id, area)
}

// Put validates the record, normalizes its score and checks the status
// transition against the existing record when one exists. A new record below
// the confidence threshold is rejected unless it is explicitly addressed to
// the holding area; routing low-confidence drafts there is the extraction
// flow's job.
func (s *Validating) Put(rec *domain.TaskRecord) error {
	if err := domain.ValidateRecord(rec); err != nil {
		return err
	}

	rec = rec.Clone()
	// The stored score is always the formula over the stored signals.
	rec.Score = domain.DeriveScore(rec)

	existing, err := s.inner.Get(rec.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		if err := domain.ValidateTransition(existing.Status, rec.Status, rec.BlockedBy); err != nil {
			return err
		}
	} else if rec.Area != domain.AreaHolding && rec.Confidence < s.threshold {
		return fmt.Errorf("%s: %w (%.2f < %.2f)", rec.ID, domain.ErrLowConfidence, rec.Confidence, s.threshold)
	}

	if err := s.checkCycles(rec); err != nil {
		return err
	}
	return s.inner.Put(rec)
}

// Patch validates the patched result before committing. Directly setting
// the score is rejected at this boundary.
func (s *Validating) Patch(id string, patch domain.FieldPatch) (*domain.TaskRecord, error) {
	if patch.Score != nil {
		return nil, domain.ErrScoreReadOnly
	}
	if patch.IsEmpty() {
		return nil, domain.ErrNoFieldsToUpdate
	}

	existing, err := s.inner.Get(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("%s: %w", id, domain.ErrTaskNotFound)
	}

	next := patch.Apply(existing, domain.Today(s.clock))
	if err := domain.ValidateRecord(next); err != nil {
		return nil, err
	}
	if next.Status != existing.Status {
		if err := domain.ValidateTransition(existing.Status, next.Status, next.BlockedBy); err != nil {
			return nil, err
		}
	}
	if patch.Dependencies != nil {
		if err := s.checkCycles(next); err != nil {
			return nil, err
		}
	}

	return s.inner.Patch(id, patch)
}

// checkCycles runs cycle detection over the whole store with rec's edges
// standing in for its stored ones.
func (s *Validating) checkCycles(rec *domain.TaskRecord) error {
	if len(rec.Dependencies) == 0 {
		return nil
	}
	all, err := s.inner.List(domain.TaskFilter{})
	if err != nil {
		return err
	}
	merged := make([]*domain.TaskRecord, 0, len(all)+1)
	merged = append(merged, rec)
	for _, r := range all {
		if r.ID != rec.ID {
			merged = append(merged, r)
		}
	}
	if cycle := domain.DetectCycle(merged, rec.ID); cycle != nil {
		return cycle
	}
	return nil
}
