package usecases_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samirrijal/openroute/internal/core/domain"
)

// routePayload builds a backend route with [lon, lat] coordinates from
// (lat, lon) pairs.
func routePayload(points ...domain.GeoPoint) json.RawMessage {
	coords := make([]string, 0, len(points))
	for _, p := range points {
		coords = append(coords, fmt.Sprintf("[%g,%g]", p.Lon, p.Lat))
	}
	return json.RawMessage(`{"distance":1000,"points":{"type":"LineString","coordinates":[` + strings.Join(coords, ",") + `]}}`)
}

func suggestion(id string, points ...domain.GeoPoint) domain.Suggestion {
	return domain.Suggestion{
		ID:          id,
		Score:       0.5,
		Explanation: "balanced route",
		Metrics:     domain.SuggestionMetrics{DistanceM: 12345, DurationS: 2520, AscendM: 120, ScenicRatio: 0.5, MajorRoadRatio: 0.1},
		Route:       routePayload(points...),
	}
}

func threeRoutes() []domain.Suggestion {
	return []domain.Suggestion{
		suggestion("A", domain.GeoPoint{Lat: 48.10, Lon: 11.50}, domain.GeoPoint{Lat: 48.20, Lon: 11.60}),
		suggestion("B", domain.GeoPoint{Lat: 48.30, Lon: 11.00}, domain.GeoPoint{Lat: 48.40, Lon: 11.20}, domain.GeoPoint{Lat: 48.37, Lon: 10.90}),
		suggestion("C", domain.GeoPoint{Lat: 48.00, Lon: 11.70}, domain.GeoPoint{Lat: 48.05, Lon: 11.80}),
	}
}

// ---- Mock surface ----

type surfaceCall struct {
	op   string
	line domain.RouteLine
	mark domain.Marker
	fit  domain.ViewportFit
}

type mockSurface struct {
	width, height int
	camera        domain.Camera
	calls         []surfaceCall
	lines         []domain.RouteLine
	handlers      map[string]func()
	markers       []domain.Marker
}

func newMockSurface() *mockSurface {
	return &mockSurface{
		width:    800,
		height:   600,
		camera:   domain.Camera{Center: domain.GeoPoint{Lat: 48.137154, Lon: 11.576124}, Zoom: 10},
		handlers: map[string]func(){},
	}
}

func (m *mockSurface) Clear() {
	m.calls = append(m.calls, surfaceCall{op: "clear"})
	m.lines = nil
	m.markers = nil
	m.handlers = map[string]func(){}
}

func (m *mockSurface) AddLine(line domain.RouteLine, onClick func()) {
	m.calls = append(m.calls, surfaceCall{op: "line", line: line})
	m.lines = append(m.lines, line)
	m.handlers[line.SuggestionID] = onClick
}

func (m *mockSurface) AddMarker(marker domain.Marker) {
	m.calls = append(m.calls, surfaceCall{op: "marker", mark: marker})
	m.markers = append(m.markers, marker)
}

func (m *mockSurface) Size() (int, int) { return m.width, m.height }

func (m *mockSurface) FitBounds(fit domain.ViewportFit) {
	m.calls = append(m.calls, surfaceCall{op: "fit", fit: fit})
	m.camera = fit.Camera
}

func (m *mockSurface) Camera() domain.Camera { return m.camera }

// click simulates activating the line of a suggestion on the map.
func (m *mockSurface) click(id string) {
	if h, ok := m.handlers[id]; ok {
		h()
	}
}

// ---- Mock ranker ----

type mockRanker struct {
	suggestFn func(ctx context.Context, req domain.SuggestionRequest) (*domain.SuggestionResponse, error)
	requests  []domain.SuggestionRequest
}

func (m *mockRanker) Suggest(ctx context.Context, req domain.SuggestionRequest) (*domain.SuggestionResponse, error) {
	m.requests = append(m.requests, req)
	if m.suggestFn != nil {
		return m.suggestFn(ctx, req)
	}
	return &domain.SuggestionResponse{}, nil
}

// ---- Mock event publisher ----

type mockEvents struct {
	replaced []domain.SuggestionsReplacedEvent
	selected []domain.SelectionChangedEvent
}

func (m *mockEvents) PublishSuggestionsReplaced(ctx context.Context, e *domain.SuggestionsReplacedEvent) error {
	m.replaced = append(m.replaced, *e)
	return nil
}

func (m *mockEvents) PublishSelectionChanged(ctx context.Context, e *domain.SelectionChangedEvent) error {
	m.selected = append(m.selected, *e)
	return nil
}
