package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hseto/minute/internal/domain"
)

func TestHeuristicImpact(t *testing.T) {
	h := NewHeuristic()

	tests := []struct {
		title string
		want  int
	}{
		{"Update the onboarding doc", 6},
		{"Fix the production auth outage", 9},
		{"Prepare the customer launch release", 9},
	}
	for _, tt := range tests {
		got, err := h.Score(context.Background(), domain.RubricRequest{
			Title:     tt.title,
			Dimension: domain.DimensionImpact,
		})
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.Value, tt.title)
	}
}

func TestHeuristicEffort(t *testing.T) {
	h := NewHeuristic()

	tests := []struct {
		title string
		want  int
	}{
		{"Update the onboarding doc", 4},
		{"Refactor the session layer and migrate the store", 8},
		{"Fix typo in error message", 2},
	}
	for _, tt := range tests {
		got, err := h.Score(context.Background(), domain.RubricRequest{
			Title:     tt.title,
			Dimension: domain.DimensionEffort,
		})
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.Value, tt.title)
	}
}

func TestHeuristicIsDeterministic(t *testing.T) {
	h := NewHeuristic()
	req := domain.RubricRequest{Title: "Redesign the deploy pipeline", Dimension: domain.DimensionEffort}

	first, err := h.Score(context.Background(), req)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		got, err := h.Score(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}
}

func TestHTTPOracle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rubricRequestPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "impact", req.Dimension)
		_ = json.NewEncoder(w).Encode(rubricResponsePayload{Value: 8, Rationale: "customer facing"})
	}))
	t.Cleanup(srv.Close)

	o := NewHTTP(srv.URL, "")
	got, err := o.Score(context.Background(), domain.RubricRequest{
		Title:     "Ship the login fix",
		Dimension: domain.DimensionImpact,
	})
	require.NoError(t, err)
	assert.Equal(t, 8, got.Value)
	assert.Equal(t, "customer facing", got.Rationale)
}

func TestHTTPOracleSendsAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-rubric", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(rubricResponsePayload{Value: 5, Rationale: "ok"})
	}))
	t.Cleanup(srv.Close)

	o := NewHTTP(srv.URL, "sk-rubric")
	got, err := o.Score(context.Background(), domain.RubricRequest{
		Title:     "Anything",
		Dimension: domain.DimensionImpact,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, got.Value)
}

func TestHTTPOracleUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	o := NewHTTP(srv.URL, "")
	_, err := o.Score(context.Background(), domain.RubricRequest{
		Title:     "Anything",
		Dimension: domain.DimensionEffort,
	})
	assert.ErrorIs(t, err, domain.ErrOracleUnavailable)
}

func TestHTTPOracleRejectsOutOfRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(rubricResponsePayload{Value: 14})
	}))
	t.Cleanup(srv.Close)

	o := NewHTTP(srv.URL, "")
	_, err := o.Score(context.Background(), domain.RubricRequest{
		Title:     "Anything",
		Dimension: domain.DimensionEffort,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside")
}
