package scene_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/openroute/internal/adapters/scene"
	"github.com/samirrijal/openroute/internal/core/domain"
	"github.com/samirrijal/openroute/internal/core/usecases"
)

var munich = domain.Camera{Center: domain.GeoPoint{Lat: 48.0, Lon: 11.05}, Zoom: 10}

func line(id string, weight float64, points ...domain.GeoPoint) domain.RouteLine {
	return domain.RouteLine{
		SuggestionID: id,
		Points:       points,
		Style:        domain.LineStyle{Color: "#13a574", Weight: weight, Opacity: 0.45},
	}
}

func TestScene_ClickAtHitsWithinTolerance(t *testing.T) {
	s := scene.New(800, 600, munich)
	var clicked string
	s.AddLine(line("A", 4, domain.GeoPoint{Lat: 48.0, Lon: 11.0}, domain.GeoPoint{Lat: 48.0, Lon: 11.1}), func() { clicked = "A" })

	// ~110 m off the line; tolerance at zoom 10 is about 500 m.
	assert.True(t, s.ClickAt(domain.GeoPoint{Lat: 48.001, Lon: 11.05}))
	assert.Equal(t, "A", clicked)

	clicked = ""
	assert.False(t, s.ClickAt(domain.GeoPoint{Lat: 48.02, Lon: 11.05}))
	assert.Empty(t, clicked)
}

func TestScene_ClickAtPicksTopmost(t *testing.T) {
	s := scene.New(800, 600, munich)
	var clicked []string
	a, b := domain.GeoPoint{Lat: 48.0, Lon: 11.0}, domain.GeoPoint{Lat: 48.0, Lon: 11.1}
	s.AddLine(line("bottom", 4, a, b), func() { clicked = append(clicked, "bottom") })
	s.AddLine(line("top", 7, a, b), func() { clicked = append(clicked, "top") })

	require.True(t, s.ClickAt(domain.GeoPoint{Lat: 48.0, Lon: 11.05}))
	assert.Equal(t, []string{"top"}, clicked)
}

func TestScene_ClearDropsHandlers(t *testing.T) {
	s := scene.New(800, 600, munich)
	s.AddLine(line("A", 4, domain.GeoPoint{Lat: 48.0, Lon: 11.0}, domain.GeoPoint{Lat: 48.0, Lon: 11.1}), func() {
		t.Fatal("handler of a cleared line ran")
	})
	s.Clear()

	assert.False(t, s.ClickAt(domain.GeoPoint{Lat: 48.0, Lon: 11.05}))
	assert.Empty(t, s.Lines())
}

func TestScene_FitBoundsMovesCamera(t *testing.T) {
	s := scene.New(640, 480, munich)
	w, h := s.Size()
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)

	cam := domain.Camera{Center: domain.GeoPoint{Lat: 48.3, Lon: 11.2}, Zoom: 9}
	s.FitBounds(domain.ViewportFit{Camera: cam})
	assert.Equal(t, cam, s.Camera())
}

func TestScene_FeatureCollection(t *testing.T) {
	s := scene.New(800, 600, munich)
	s.AddLine(line("A", 4, domain.GeoPoint{Lat: 48.0, Lon: 11.0}, domain.GeoPoint{Lat: 48.1, Lon: 11.1}), nil)
	s.AddMarker(domain.Marker{Kind: domain.MarkerStart, Point: domain.GeoPoint{Lat: 48.0, Lon: 11.0}, Style: domain.MarkerStyle{Radius: 6, Color: "#0f766e", FillColor: "#ffffff"}})

	fc := s.FeatureCollection()
	require.Len(t, fc.Features, 2)

	route := fc.Features[0]
	assert.Equal(t, orb.LineString{{11.0, 48.0}, {11.1, 48.1}}, route.Geometry)
	assert.Equal(t, "route", route.Properties["kind"])
	assert.Equal(t, "A", route.Properties["suggestion_id"])
	assert.Equal(t, 0, route.Properties["z"])

	marker := fc.Features[1]
	assert.Equal(t, orb.Point{11.0, 48.0}, marker.Geometry)
	assert.Equal(t, "start", marker.Properties["kind"])
	assert.Equal(t, 1, marker.Properties["z"])

	raw, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"type":"FeatureCollection"`)
}

func TestScene_DrivesSessionSelection(t *testing.T) {
	s := scene.New(800, 600, munich)
	route := func(coords string) json.RawMessage {
		return json.RawMessage(`{"points":{"coordinates":` + coords + `}}`)
	}
	session := usecases.NewCompareSession("s1", s, usecases.SessionOptions{})
	session.ApplyResponse(context.Background(), &domain.SuggestionResponse{Suggestions: []domain.Suggestion{
		{ID: "north", Route: route(`[[11.0,48.2],[11.1,48.2]]`)},
		{ID: "south", Route: route(`[[11.0,48.0],[11.1,48.0]]`)},
	}})
	require.Equal(t, "north", *session.View().ActiveID)

	changed, v := session.ClickMap(context.Background(), domain.GeoPoint{Lat: 48.0, Lon: 11.05})
	require.True(t, changed)
	assert.Equal(t, "south", *v.ActiveID)

	lines := s.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "south", lines[1].SuggestionID)
	assert.True(t, lines[1].Active)
}
