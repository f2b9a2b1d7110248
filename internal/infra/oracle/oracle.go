// Package oracle provides rubric-scoring oracles for impact and effort.
// Heuristic scores from keyword rules and needs no network; HTTP defers to
// a remote rubric service and is time-boxed through the caller's context.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hseto/minute/internal/domain"
)

// Heuristic scores tasks from keyword rules over the title. It is the
// default oracle: deterministic, instant, and roughly calibrated rather
// than precise.
type Heuristic struct{}

func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

var highImpactKeywords = []string{
	"launch", "release", "customer", "revenue", "security", "auth",
	"production", "deploy", "outage", "critical", "blocking",
}

var hardKeywords = []string{
	"refactor", "migrate", "redesign", "architecture", "integration",
	"rewrite", "research", "spike",
}

var easyKeywords = []string{
	"fix typo", "update readme", "update doc", "bump version", "hotfix",
}

func (h *Heuristic) Score(_ context.Context, req domain.RubricRequest) (domain.RubricScore, error) {
	title := strings.ToLower(req.Title)

	if req.Dimension == domain.DimensionImpact {
		impact := 6
		var hits []string
		for _, kw := range highImpactKeywords {
			if strings.Contains(title, kw) {
				impact++
				hits = append(hits, kw)
			}
		}
		return domain.RubricScore{
			Value:     domain.ClampRubric(impact),
			Rationale: rationale("impact", hits),
		}, nil
	}

	effort := 4
	var hits []string
	for _, kw := range hardKeywords {
		if strings.Contains(title, kw) {
			effort += 2
			hits = append(hits, kw)
		}
	}
	for _, kw := range easyKeywords {
		if strings.Contains(title, kw) {
			effort -= 2
			hits = append(hits, kw)
		}
	}
	return domain.RubricScore{
		Value:     domain.ClampRubric(effort),
		Rationale: rationale("effort", hits),
	}, nil
}

func rationale(dimension string, hits []string) string {
	if len(hits) == 0 {
		return "baseline " + dimension + ": no keyword signals"
	}
	return dimension + " keywords: " + strings.Join(hits, ", ")
}

var _ domain.Oracle = (*Heuristic)(nil)

// HTTP asks a remote rubric service to judge a dimension.
type HTTP struct {
	url        string
	apiKey     string
	httpClient *http.Client
}

// NewHTTP creates an HTTP oracle. An empty apiKey sends unauthenticated
// requests. The client carries no timeout of its own; callers bound each
// request through ctx.
func NewHTTP(url, apiKey string) *HTTP {
	return &HTTP{url: url, apiKey: apiKey, httpClient: &http.Client{}}
}

type rubricRequestPayload struct {
	Title     string   `json:"title"`
	Context   string   `json:"context,omitempty"`
	Source    string   `json:"source,omitempty"`
	Labels    []string `json:"labels,omitempty"`
	Dimension string   `json:"dimension"`
}

type rubricResponsePayload struct {
	Value     int    `json:"value"`
	Rationale string `json:"rationale"`
}

func (o *HTTP) Score(ctx context.Context, req domain.RubricRequest) (domain.RubricScore, error) {
	payload := rubricRequestPayload{
		Title:     req.Title,
		Context:   req.Context,
		Source:    req.Source,
		Labels:    req.Labels,
		Dimension: string(req.Dimension),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.RubricScore{}, fmt.Errorf("marshal rubric request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, bytes.NewReader(body))
	if err != nil {
		return domain.RubricScore{}, fmt.Errorf("build rubric request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if o.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return domain.RubricScore{}, fmt.Errorf("%w: %v", domain.ErrOracleUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.RubricScore{}, fmt.Errorf("%w: status %d", domain.ErrOracleUnavailable, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.RubricScore{}, fmt.Errorf("read rubric response: %w", err)
	}
	var out rubricResponsePayload
	if err := json.Unmarshal(raw, &out); err != nil {
		return domain.RubricScore{}, fmt.Errorf("parse rubric response: %w", err)
	}
	if out.Value < domain.RubricMin || out.Value > domain.RubricMax {
		return domain.RubricScore{}, fmt.Errorf("rubric value %d outside [%d,%d]", out.Value, domain.RubricMin, domain.RubricMax)
	}

	return domain.RubricScore{Value: out.Value, Rationale: out.Rationale}, nil
}

var _ domain.Oracle = (*HTTP)(nil)
