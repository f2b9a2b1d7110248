package usecase

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/hseto/minute/internal/domain"
	"github.com/hseto/minute/internal/extract"
)

// ExtractNoteInput contains the parameters for extracting tasks from a
// meeting note. Exactly one of NotePath and NoteText must be set.
type ExtractNoteInput struct {
	NotePath string // Path to the note file
	NoteText string // Note text passed directly (tests, tool calls)
	Source   string // Source reference; defaults to NotePath
	DryRun   bool   // Report candidates without persisting
}

// ExtractedTask pairs a persisted (or would-be) record with its provenance.
// Err is set when this candidate could not be persisted; the rest of the
// batch is unaffected.
type ExtractedTask struct {
	Record  *domain.TaskRecord
	Kind    extract.Kind
	Section string
	Line    int
	Held    bool // Routed to the holding area
	Err     error
}

// ExtractNoteOutput contains the result of an extraction run.
type ExtractNoteOutput struct {
	BatchID string // Identifies this run in the logs
	Tasks   []ExtractedTask
	Created int // Records written to the active queue
	Held    int // Records written to the holding area
	Failed  int // Candidates that could not be persisted
}

// ExtractNote is the use case for turning a meeting note into draft records.
// Candidates below the confidence threshold land in the holding area instead
// of the active queue; nothing is ever silently dropped.
type ExtractNote struct {
	store     domain.TaskStore
	engine    *extract.Engine
	clock     domain.Clock
	logger    domain.Logger
	threshold float64
}

// NewExtractNote creates a new ExtractNote use case.
func NewExtractNote(store domain.TaskStore, engine *extract.Engine, clock domain.Clock, logger domain.Logger, threshold float64) *ExtractNote {
	return &ExtractNote{
		store:     store,
		engine:    engine,
		clock:     clock,
		logger:    logger,
		threshold: threshold,
	}
}

// Execute extracts draft records from the note and persists them.
func (uc *ExtractNote) Execute(_ context.Context, in ExtractNoteInput) (*ExtractNoteOutput, error) {
	text := in.NoteText
	source := in.Source
	if text == "" {
		if in.NotePath == "" {
			return nil, domain.ErrSourceNotFound
		}
		data, err := os.ReadFile(in.NotePath)
		if err != nil {
			return nil, fmt.Errorf("read note: %w", domain.ErrSourceNotFound)
		}
		text = string(data)
		if source == "" {
			source = in.NotePath
		}
	}

	batchID := uuid.NewString()
	today := domain.Today(uc.clock)
	out := &ExtractNoteOutput{BatchID: batchID}

	for _, cand := range uc.engine.Extract(text, source) {
		rec := cand.Record
		rec.Created = today
		rec.Updated = today

		held := rec.Confidence < uc.threshold
		if held {
			rec.Area = domain.AreaHolding
		} else {
			rec.Area = domain.AreaActive
		}

		task := ExtractedTask{
			Record:  rec,
			Kind:    cand.Kind,
			Section: cand.Section,
			Line:    cand.Line,
			Held:    held,
		}

		// One candidate failing to persist never aborts the rest of the
		// batch; the failure is reported on its row.
		if !in.DryRun {
			task.Err = uc.persist(rec, cand.Kind, batchID)
		}

		out.Tasks = append(out.Tasks, task)
		switch {
		case task.Err != nil:
			out.Failed++
		case held:
			out.Held++
		default:
			out.Created++
		}
	}

	if uc.logger != nil && !in.DryRun {
		uc.logger.Info("", "extract", fmt.Sprintf("batch %s: %s -> %d active, %d held, %d failed",
			batchID, source, out.Created, out.Held, out.Failed))
	}

	return out, nil
}

func (uc *ExtractNote) persist(rec *domain.TaskRecord, kind extract.Kind, batchID string) error {
	id, err := uc.store.NextID()
	if err != nil {
		if uc.logger != nil {
			uc.logger.Error("", "extract", fmt.Sprintf("batch %s: %q: generate task ID: %v", batchID, rec.Title, err))
		}
		return fmt.Errorf("generate task ID: %w", err)
	}
	rec.ID = id
	if err := uc.store.Put(rec); err != nil {
		if uc.logger != nil {
			uc.logger.Error(id, "extract", fmt.Sprintf("batch %s: save failed: %v", batchID, err))
		}
		return fmt.Errorf("save extracted task %s: %w", id, err)
	}
	if uc.logger != nil {
		uc.logger.Info(id, "extract", fmt.Sprintf("batch %s: %s %q (confidence %.2f, area %s)",
			batchID, kind, rec.Title, rec.Confidence, rec.Area))
	}
	return nil
}
