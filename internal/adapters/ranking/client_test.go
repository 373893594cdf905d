package ranking

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/openroute/internal/core/domain"
)

func sampleRequest() domain.SuggestionRequest {
	return domain.SuggestionRequest{
		Start:          "48.137154,11.576124",
		End:            "48.370545,10.897790",
		MaxSuggestions: 3,
		Preferences:    domain.Preferences{FitnessLevel: 0.5, ScenicPreference: 0.7, AvoidMainRoads: 0.7, TimePriority: 0.4},
	}
}

func TestClient_Suggest(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/suggestions", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"suggestions": [
				{"id":"gh-0","score":0.81,"explanation":"quiet roads",
				 "metrics":{"distance_m":12345,"duration_s":2520,"ascend_m":120,"scenic_ratio":0.4,"major_road_ratio":0.1},
				 "route":{"points":{"coordinates":[[11.5,48.1],[11.6,48.2]]}}}
			],
			"meta": {"source_paths": 5, "returned_suggestions": 1}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", 5*time.Second)
	resp, err := c.Suggest(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.Equal(t, "48.137154,11.576124", got["start"])
	assert.Equal(t, float64(3), got["max_suggestions"])
	prefs := got["preferences"].(map[string]any)
	assert.Equal(t, 0.7, prefs["scenic_preference"])

	require.Len(t, resp.Suggestions, 1)
	s := resp.Suggestions[0]
	assert.Equal(t, "gh-0", s.ID)
	assert.Equal(t, 12345.0, s.Metrics.DistanceM)
	assert.JSONEq(t, `{"points":{"coordinates":[[11.5,48.1],[11.6,48.2]]}}`, string(s.Route))
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 5, resp.Meta.SourcePaths)
}

func TestClient_SuggestErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("GraphHopper response missing paths array"))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Suggest(context.Background(), sampleRequest())

	var rerr *domain.RankingError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, http.StatusBadGateway, rerr.Status)
	assert.Equal(t, "GraphHopper response missing paths array", rerr.Message)
	assert.ErrorIs(t, err, domain.ErrRanking)
}

func TestClient_SuggestEmptyErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Suggest(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.Equal(t, "Request failed (503)", err.Error())
}

func TestClient_SuggestInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Suggest(context.Background(), sampleRequest())
	var rerr *domain.RankingError
	require.ErrorAs(t, err, &rerr)
	assert.Contains(t, rerr.Message, "Invalid response")
}

func TestClient_SuggestUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).Suggest(context.Background(), sampleRequest())
	var rerr *domain.RankingError
	require.ErrorAs(t, err, &rerr)
	assert.Zero(t, rerr.Status)
}

func TestClient_Health(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	assert.NoError(t, NewClient(srv.URL, time.Second).Health(context.Background()))
	assert.Error(t, NewClient(srv.URL+"/nope", time.Second).Health(context.Background()))
}
