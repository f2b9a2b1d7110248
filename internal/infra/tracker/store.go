// Package tracker implements domain.TaskStore against a remote task
// tracker's REST API. Each area maps to a tracker list; the record's
// canonical text encoding travels in the task payload, so nothing the codec
// preserves is lost to the tracker's own schema.
package tracker

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/hseto/minute/internal/codec"
	"github.com/hseto/minute/internal/domain"
)

// Store implements domain.TaskStore over a tracker's REST API.
type Store struct {
	baseURL    string
	token      string
	lists      map[domain.Area]string
	httpClient *http.Client
	clock      domain.Clock
	logger     domain.Logger
}

// New creates a tracker-backed store. The token comes from the
// MINUTE_TRACKER_TOKEN environment variable, resolved by the caller. logger
// may be nil; skipped undecodable payloads are then silent.
func New(cfg domain.TrackerConfig, token string, clock domain.Clock, logger domain.Logger) *Store {
	return &Store{
		baseURL: cfg.BaseURL,
		token:   token,
		lists: map[domain.Area]string{
			domain.AreaActive:  cfg.ActiveList,
			domain.AreaHolding: cfg.HoldingList,
			domain.AreaArchive: cfg.ArchiveList,
		},
		httpClient: &http.Client{Timeout: 10 * time.Second},
		clock:      clock,
		logger:     logger,
	}
}

type taskPayload struct {
	ID      string `json:"id"`
	List    string `json:"list"`
	Content string `json:"content"`
}

type tasksResponse struct {
	Tasks []taskPayload `json:"tasks"`
}

type nextIDResponse struct {
	ID string `json:"id"`
}

type apiError struct {
	Error string `json:"error"`
}

// Get retrieves a record by ID from any area. Returns nil if not found.
func (s *Store) Get(id string) (*domain.TaskRecord, error) {
	var payload taskPayload
	found, err := s.doJSON(http.MethodGet, "/tasks/"+id, nil, &payload)
	if err != nil || !found {
		return nil, err
	}
	return s.decodePayload(payload)
}

// List retrieves records matching the filter. Payloads that fail to decode
// are skipped, with a warning, so one corrupt task never hides the rest.
func (s *Store) List(filter domain.TaskFilter) ([]*domain.TaskRecord, error) {
	areas := []domain.Area{domain.AreaActive, domain.AreaHolding, domain.AreaArchive}
	if filter.Area != "" {
		areas = []domain.Area{filter.Area}
	}

	var recs []*domain.TaskRecord
	for _, area := range areas {
		var resp tasksResponse
		found, err := s.doJSON(http.MethodGet, "/lists/"+s.lists[area]+"/tasks", nil, &resp)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		for _, payload := range resp.Tasks {
			rec, err := s.decodePayload(payload)
			if err != nil {
				if s.logger != nil {
					s.logger.Warn(payload.ID, "store", fmt.Sprintf("skipping undecodable task: %v", err))
				}
				continue
			}
			if matches(rec, filter) {
				recs = append(recs, rec)
			}
		}
	}

	slices.SortFunc(recs, func(a, b *domain.TaskRecord) int {
		return strings.Compare(a.ID, b.ID)
	})
	return recs, nil
}

// Put creates or replaces a record. An existing task keeps its list; a new
// task lands in the list for the area the record claims, active by default.
func (s *Store) Put(rec *domain.TaskRecord) error {
	if rec == nil {
		return errors.New("record is nil")
	}
	existing, err := s.Get(rec.ID)
	if err != nil {
		return err
	}

	area := rec.Area
	if existing != nil {
		area = existing.Area
	} else if area == "" {
		area = domain.AreaActive
	}

	content, err := codec.Encode(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	payload := taskPayload{ID: rec.ID, List: s.lists[area], Content: string(content)}

	found, err := s.doJSON(http.MethodPut, "/tasks/"+rec.ID, payload, nil)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("tracker rejected put for %s: unknown list %q", rec.ID, payload.List)
	}
	return nil
}

// Patch applies field-level updates via read-modify-write. The tracker has
// no field-level endpoint, so atomicity is whatever the tracker provides.
func (s *Store) Patch(id string, patch domain.FieldPatch) (*domain.TaskRecord, error) {
	rec, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	updated := patch.Apply(rec, domain.Today(s.clock))
	if err := s.Put(updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Move relocates a record to the list backing the target area.
func (s *Store) Move(id string, area domain.Area) error {
	body := map[string]string{"list": s.lists[area]}
	found, err := s.doJSON(http.MethodPost, "/tasks/"+id+"/move", body, nil)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%s: %w", id, domain.ErrTaskNotFound)
	}
	return nil
}

// NextID asks the tracker to allocate the next identifier.
func (s *Store) NextID() (string, error) {
	var resp nextIDResponse
	found, err := s.doJSON(http.MethodPost, "/next-id", nil, &resp)
	if err != nil {
		return "", err
	}
	if !found || resp.ID == "" {
		return "", errors.New("tracker returned no id")
	}
	return resp.ID, nil
}

var _ domain.TaskStore = (*Store)(nil)

// doJSON performs one API call. Returns found=false on 404 so callers can
// translate absence without string-matching errors.
func (s *Store) doJSON(method, path string, body, out any) (bool, error) {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return false, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, s.baseURL+path, reqBody)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("tracker request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return false, fmt.Errorf("tracker status %d", resp.StatusCode)
		}
		var apiErr apiError
		if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Error != "" {
			return false, fmt.Errorf("tracker error: %s", apiErr.Error)
		}
		return false, fmt.Errorf("tracker status %d", resp.StatusCode)
	}

	if out != nil {
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return false, fmt.Errorf("read response: %w", err)
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return false, fmt.Errorf("parse response: %w", err)
		}
	}
	return true, nil
}

// decodePayload reconstructs a record from its canonical content and maps
// the tracker list back to an area.
func (s *Store) decodePayload(payload taskPayload) (*domain.TaskRecord, error) {
	rec, err := codec.Decode(payload.Content)
	if err != nil {
		var parseErr *codec.ParseError
		if errors.As(err, &parseErr) {
			rec, err = codec.DecodeFallback(payload.Content)
		}
		if err != nil {
			return nil, fmt.Errorf("parse record %s: %w", payload.ID, err)
		}
	}
	for area, list := range s.lists {
		if list == payload.List {
			rec.Area = area
			break
		}
	}
	return rec, nil
}

func matches(rec *domain.TaskRecord, filter domain.TaskFilter) bool {
	if filter.Status != nil && rec.Status != *filter.Status {
		return false
	}
	if filter.Assignee != "" && rec.Assignee != filter.Assignee {
		return false
	}
	if filter.Label != "" && !slices.Contains(rec.Labels, filter.Label) {
		return false
	}
	if filter.MinScore != nil && (rec.Score == nil || *rec.Score < *filter.MinScore) {
		return false
	}
	if filter.MaxScore != nil && rec.Score != nil && *rec.Score > *filter.MaxScore {
		return false
	}
	return true
}
