// Package toolserver exposes the task pipeline as JSON-RPC 2.0 tool calls
// over stdio, one request per line. Agents drive the same use cases the CLI
// does; no behavior lives here.
package toolserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hseto/minute/internal/domain"
	"github.com/hseto/minute/internal/usecase"
)

// Server dispatches tool methods to use cases.
type Server struct {
	extract  *usecase.ExtractNote
	score    *usecase.ScoreTasks
	create   *usecase.NewTask
	update   *usecase.UpdateTask
	complete *usecase.CompleteTask
	promote  *usecase.PromoteTask
	archive  *usecase.ArchiveTask
	list     *usecase.ListTasks
}

// Deps lists the use cases the server fronts.
type Deps struct {
	Extract  *usecase.ExtractNote
	Score    *usecase.ScoreTasks
	Create   *usecase.NewTask
	Update   *usecase.UpdateTask
	Complete *usecase.CompleteTask
	Promote  *usecase.PromoteTask
	Archive  *usecase.ArchiveTask
	List     *usecase.ListTasks
}

// NewServer creates a new tool server.
func NewServer(deps Deps) *Server {
	return &Server{
		extract:  deps.Extract,
		score:    deps.Score,
		create:   deps.Create,
		update:   deps.Update,
		complete: deps.Complete,
		promote:  deps.Promote,
		archive:  deps.Archive,
		list:     deps.List,
	}
}

var errMethodNotFound = errors.New("method not found")

// HandleCommand routes one tool method.
func (s *Server) HandleCommand(ctx context.Context, method string, params json.RawMessage) (any, error) {
	switch method {
	case "minute.extract":
		return s.handleExtract(ctx, params)
	case "minute.score":
		return s.handleScore(ctx, params)
	case "minute.task.create":
		return s.handleCreate(ctx, params)
	case "minute.task.update":
		return s.handleUpdate(ctx, params)
	case "minute.task.complete":
		return s.handleComplete(ctx, params)
	case "minute.task.promote":
		return s.handlePromote(ctx, params)
	case "minute.task.archive":
		return s.handleArchive(ctx, params)
	case "minute.task.list":
		return s.handleList(ctx, params)
	default:
		return nil, fmt.Errorf("%w: %s", errMethodNotFound, method)
	}
}

type extractParams struct {
	NotePath string `json:"note_path,omitempty"`
	NoteText string `json:"note_text,omitempty"`
	Source   string `json:"source,omitempty"`
	DryRun   bool   `json:"dry_run,omitempty"`
}

func (s *Server) handleExtract(ctx context.Context, params json.RawMessage) (any, error) {
	var p extractParams
	if err := unmarshalParams(params, &p); err != nil {
		return nil, err
	}
	out, err := s.extract.Execute(ctx, usecase.ExtractNoteInput{
		NotePath: p.NotePath,
		NoteText: p.NoteText,
		Source:   p.Source,
		DryRun:   p.DryRun,
	})
	if err != nil {
		return nil, err
	}

	type extracted struct {
		ID         string  `json:"id,omitempty"`
		Title      string  `json:"title"`
		Kind       string  `json:"kind"`
		Section    string  `json:"section,omitempty"`
		Confidence float64 `json:"confidence"`
		Held       bool    `json:"held,omitempty"`
		Error      string  `json:"error,omitempty"`
	}
	tasks := make([]extracted, 0, len(out.Tasks))
	for _, task := range out.Tasks {
		row := extracted{
			ID:         task.Record.ID,
			Title:      task.Record.Title,
			Kind:       string(task.Kind),
			Section:    task.Section,
			Confidence: task.Record.Confidence,
			Held:       task.Held,
		}
		if task.Err != nil {
			row.Error = task.Err.Error()
		}
		tasks = append(tasks, row)
	}
	return map[string]any{
		"batch_id": out.BatchID,
		"created":  out.Created,
		"held":     out.Held,
		"failed":   out.Failed,
		"tasks":    tasks,
	}, nil
}

type scoreParams struct {
	IDs          []string `json:"ids,omitempty"`
	OnlyUnscored bool     `json:"only_unscored,omitempty"`
	DryRun       bool     `json:"dry_run,omitempty"`
}

func (s *Server) handleScore(ctx context.Context, params json.RawMessage) (any, error) {
	var p scoreParams
	if err := unmarshalParams(params, &p); err != nil {
		return nil, err
	}
	out, err := s.score.Execute(ctx, usecase.ScoreTasksInput{
		IDs:          p.IDs,
		OnlyUnscored: p.OnlyUnscored,
		DryRun:       p.DryRun,
	})
	if err != nil {
		return nil, err
	}

	type scored struct {
		ID       string   `json:"id"`
		Score    *float64 `json:"score,omitempty"`
		Fallback bool     `json:"fallback,omitempty"`
		Error    string   `json:"error,omitempty"`
	}
	results := make([]scored, 0, len(out.Results))
	for _, res := range out.Results {
		row := scored{ID: res.ID, Fallback: res.Fallback}
		if res.Err != nil {
			row.Error = res.Err.Error()
		} else {
			row.Score = res.Record.Score
		}
		results = append(results, row)
	}
	return map[string]any{"scored": out.Scored, "failed": out.Failed, "results": results}, nil
}

type createParams struct {
	Title    string   `json:"title"`
	Assignee string   `json:"assignee,omitempty"`
	Priority string   `json:"priority,omitempty"`
	Due      string   `json:"due,omitempty"`
	Body     string   `json:"body,omitempty"`
	Labels   []string `json:"labels,omitempty"`
	Urgency  *int     `json:"urgency,omitempty"`
	Impact   *int     `json:"impact,omitempty"`
	Effort   *int     `json:"effort,omitempty"`
}

func (s *Server) handleCreate(ctx context.Context, params json.RawMessage) (any, error) {
	var p createParams
	if err := unmarshalParams(params, &p); err != nil {
		return nil, err
	}
	in := usecase.NewTaskInput{
		Title:    p.Title,
		Assignee: p.Assignee,
		Priority: domain.Priority(p.Priority),
		Body:     p.Body,
		Labels:   p.Labels,
		Urgency:  p.Urgency,
		Impact:   p.Impact,
		Effort:   p.Effort,
	}
	if p.Due != "" {
		due, err := domain.ParseDate(p.Due)
		if err != nil {
			return nil, fmt.Errorf("invalid due date %q: %w", p.Due, err)
		}
		in.Due = &due
	}
	return s.create.Execute(ctx, in)
}

type updateParams struct {
	ID             string    `json:"id"`
	Title          *string   `json:"title,omitempty"`
	Status         *string   `json:"status,omitempty"`
	Assignee       *string   `json:"assignee,omitempty"`
	Priority       *string   `json:"priority,omitempty"`
	Due            *string   `json:"due,omitempty"`
	BlockedBy      *string   `json:"blocked_by,omitempty"`
	Urgency        *int      `json:"urgency,omitempty"`
	Impact         *int      `json:"impact,omitempty"`
	Effort         *int      `json:"effort,omitempty"`
	Labels         *[]string `json:"labels,omitempty"`
	Dependencies   *[]string `json:"dependencies,omitempty"`
	ClearDue       bool      `json:"clear_due,omitempty"`
	ClearBlockedBy bool      `json:"clear_blocked_by,omitempty"`
}

func (s *Server) handleUpdate(ctx context.Context, params json.RawMessage) (any, error) {
	var p updateParams
	if err := unmarshalParams(params, &p); err != nil {
		return nil, err
	}
	patch := domain.FieldPatch{
		Title:          p.Title,
		Assignee:       p.Assignee,
		BlockedBy:      p.BlockedBy,
		Urgency:        p.Urgency,
		Impact:         p.Impact,
		Effort:         p.Effort,
		Labels:         p.Labels,
		Dependencies:   p.Dependencies,
		ClearDue:       p.ClearDue,
		ClearBlockedBy: p.ClearBlockedBy,
	}
	if p.Status != nil {
		status := domain.Status(*p.Status)
		patch.Status = &status
	}
	if p.Priority != nil {
		priority := domain.Priority(*p.Priority)
		patch.Priority = &priority
	}
	if p.Due != nil {
		due, err := domain.ParseDate(*p.Due)
		if err != nil {
			return nil, fmt.Errorf("invalid due date %q: %w", *p.Due, err)
		}
		patch.Due = &due
	}
	return s.update.Execute(ctx, usecase.UpdateTaskInput{ID: p.ID, Patch: patch})
}

type idParams struct {
	ID string `json:"id"`
}

func (s *Server) handleComplete(ctx context.Context, params json.RawMessage) (any, error) {
	var p idParams
	if err := unmarshalParams(params, &p); err != nil {
		return nil, err
	}
	return s.complete.Execute(ctx, usecase.CompleteTaskInput{ID: p.ID})
}

func (s *Server) handlePromote(ctx context.Context, params json.RawMessage) (any, error) {
	var p idParams
	if err := unmarshalParams(params, &p); err != nil {
		return nil, err
	}
	return s.promote.Execute(ctx, usecase.PromoteTaskInput{ID: p.ID})
}

func (s *Server) handleArchive(ctx context.Context, params json.RawMessage) (any, error) {
	var p idParams
	if err := unmarshalParams(params, &p); err != nil {
		return nil, err
	}
	return s.archive.Execute(ctx, usecase.ArchiveTaskInput{ID: p.ID})
}

type listParams struct {
	Status   string   `json:"status,omitempty"`
	Assignee string   `json:"assignee,omitempty"`
	Label    string   `json:"label,omitempty"`
	Area     string   `json:"area,omitempty"`
	MinScore *float64 `json:"min_score,omitempty"`
	MaxScore *float64 `json:"max_score,omitempty"`
}

func (s *Server) handleList(ctx context.Context, params json.RawMessage) (any, error) {
	var p listParams
	if err := unmarshalParams(params, &p); err != nil {
		return nil, err
	}
	in := usecase.ListTasksInput{
		Assignee: p.Assignee,
		Label:    p.Label,
		Area:     domain.Area(p.Area),
		MinScore: p.MinScore,
		MaxScore: p.MaxScore,
	}
	if p.Status != "" {
		status := domain.Status(p.Status)
		in.Status = &status
	}
	return s.list.Execute(ctx, in)
}

func unmarshalParams(params json.RawMessage, v any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, v); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}
