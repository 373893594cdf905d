// Package scene is a map surface kept in memory and exported as GeoJSON for
// browser map clients.
package scene

import (
	"slices"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/openroute/internal/core/domain"
	"github.com/samirrijal/openroute/internal/pkg/geospatial"
)

// DefaultClickTolerancePx is added to half the stroke weight when
// hit-testing lines.
const DefaultClickTolerancePx = 3

type drawnLine struct {
	line    domain.RouteLine
	onClick func()
}

// Scene implements ports.Surface and ports.Clickable.
type Scene struct {
	mu          sync.Mutex
	width       int
	height      int
	camera      domain.Camera
	tolerancePx float64
	lines       []drawnLine
	markers     []domain.Marker
}

// New creates a width x height pixel scene showing the initial camera.
func New(width, height int, initial domain.Camera) *Scene {
	return &Scene{
		width:       width,
		height:      height,
		camera:      initial,
		tolerancePx: DefaultClickTolerancePx,
	}
}

func (s *Scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	s.markers = nil
}

func (s *Scene) AddLine(line domain.RouteLine, onClick func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, drawnLine{line: line, onClick: onClick})
}

func (s *Scene) AddMarker(marker domain.Marker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers = append(s.markers, marker)
}

func (s *Scene) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// SetSize changes the pixel size. The camera is kept until the next fit.
func (s *Scene) SetSize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = width, height
}

func (s *Scene) FitBounds(fit domain.ViewportFit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.camera = fit.Camera
}

func (s *Scene) Camera() domain.Camera {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera
}

// Lines returns the drawn lines, bottom first.
func (s *Scene) Lines() []domain.RouteLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.RouteLine, 0, len(s.lines))
	for _, l := range s.lines {
		out = append(out, l.line)
	}
	return out
}

// Markers returns the drawn markers.
func (s *Scene) Markers() []domain.Marker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.markers)
}

// ClickAt invokes the handler of the topmost line within its stroke width
// plus the click tolerance of p. The handler runs without the scene lock
// held, so it may redraw the scene.
func (s *Scene) ClickAt(p domain.GeoPoint) bool {
	s.mu.Lock()
	mpp := geospatial.MetersPerPixel(p.Lat, s.camera.Zoom)
	var hit func()
	for i := len(s.lines) - 1; i >= 0; i-- {
		l := s.lines[i]
		tolerance := (l.line.Style.Weight/2 + s.tolerancePx) * mpp
		if b, ok := geospatial.BoundsOf(l.line.Points); !ok || !geospatial.Intersects(b, geospatial.BoundingBox(p.Lat, p.Lon, tolerance)) {
			continue
		}
		if geospatial.DistanceToLine(p, l.line.Points) <= tolerance {
			hit = l.onClick
			break
		}
	}
	s.mu.Unlock()

	if hit == nil {
		return false
	}
	hit()
	return true
}

// FeatureCollection exports lines and markers in draw order. Coordinates are
// GeoJSON [lon, lat].
func (s *Scene) FeatureCollection() *geojson.FeatureCollection {
	s.mu.Lock()
	defer s.mu.Unlock()

	fc := geojson.NewFeatureCollection()
	for z, l := range s.lines {
		ls := make(orb.LineString, 0, len(l.line.Points))
		for _, p := range l.line.Points {
			ls = append(ls, orb.Point{p.Lon, p.Lat})
		}
		f := geojson.NewFeature(ls)
		f.ID = l.line.SuggestionID
		f.Properties["kind"] = "route"
		f.Properties["suggestion_id"] = l.line.SuggestionID
		f.Properties["index"] = l.line.Index
		f.Properties["active"] = l.line.Active
		f.Properties["color"] = l.line.Style.Color
		f.Properties["weight"] = l.line.Style.Weight
		f.Properties["opacity"] = l.line.Style.Opacity
		f.Properties["z"] = z
		fc.Append(f)
	}
	for i, m := range s.markers {
		f := geojson.NewFeature(orb.Point{m.Point.Lon, m.Point.Lat})
		f.Properties["kind"] = string(m.Kind)
		f.Properties["color"] = m.Style.Color
		f.Properties["radius"] = m.Style.Radius
		f.Properties["fill_color"] = m.Style.FillColor
		f.Properties["z"] = len(s.lines) + i
		fc.Append(f)
	}
	return fc
}
