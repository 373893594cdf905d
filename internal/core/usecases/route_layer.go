package usecases

import (
	"log/slog"

	"github.com/samirrijal/openroute/internal/core/domain"
	"github.com/samirrijal/openroute/internal/core/ports"
	"github.com/samirrijal/openroute/internal/pkg/geometry"
	"github.com/samirrijal/openroute/internal/pkg/geospatial"
	"github.com/samirrijal/openroute/internal/pkg/metrics"
)

// RoutePalette colors routes by their position in response order.
var RoutePalette = []string{"#13a574", "#1697a6", "#3273dc", "#ec7a08", "#c66d3d", "#8844b0"}

// RouteColor returns the palette color for the suggestion at index.
func RouteColor(index int) string {
	return RoutePalette[index%len(RoutePalette)]
}

// LayerStyle holds the strokes and markers a RouteLayer draws with. Line
// colors come from RoutePalette.
type LayerStyle struct {
	Active   domain.LineStyle
	Inactive domain.LineStyle
	Start    domain.MarkerStyle
	End      domain.MarkerStyle
}

// DefaultLayerStyle returns the route map style. The active route is wider
// and more opaque than the dimmed context routes.
func DefaultLayerStyle() LayerStyle {
	return LayerStyle{
		Active:   domain.LineStyle{Weight: 7, Opacity: 0.95, LineCap: "round", LineJoin: "round"},
		Inactive: domain.LineStyle{Weight: 4, Opacity: 0.45, LineCap: "round", LineJoin: "round"},
		Start:    domain.MarkerStyle{Radius: 6, Color: "#0f766e", Weight: 2, FillColor: "#ffffff", FillOpacity: 1},
		End:      domain.MarkerStyle{Radius: 6, Color: "#ec7a08", Weight: 2, FillColor: "#ffffff", FillOpacity: 1},
	}
}

// RenderResult describes what one render pass drew, in draw order.
type RenderResult struct {
	Lines   []domain.RouteLine  `json:"lines"`
	Markers []domain.Marker     `json:"markers"`
	Skipped []string            `json:"skipped,omitempty"` // suggestion ids without drawable geometry
	Fit     *domain.ViewportFit `json:"fit,omitempty"`     // nil when the camera was left unchanged
}

// RouteLayer draws a suggestion set on a surface it owns exclusively. Every
// pass clears the surface and redraws from scratch, so rendering the same
// (suggestions, activeID) twice yields the same surface state.
type RouteLayer struct {
	surface  ports.Surface
	fitter   *geospatial.Fitter
	style    LayerStyle
	onSelect func(id string)
	last     RenderResult
}

// NewRouteLayer creates a layer drawing on surface. onSelect receives the
// suggestion id of any line activated on the surface.
func NewRouteLayer(surface ports.Surface, fitter *geospatial.Fitter, style LayerStyle, onSelect func(id string)) *RouteLayer {
	return &RouteLayer{
		surface:  surface,
		fitter:   fitter,
		style:    style,
		onSelect: onSelect,
	}
}

// Render redraws the surface for the given suggestions and active id.
func (l *RouteLayer) Render(suggestions []domain.Suggestion, activeID string) RenderResult {
	l.surface.Clear()
	metrics.RenderPasses.Inc()

	var (
		res    RenderResult
		active *domain.RouteLine
		drawn  [][]domain.GeoPoint
	)
	for i, s := range suggestions {
		ext := geometry.Extract(s.Route)
		if !ext.Drawable() {
			res.Skipped = append(res.Skipped, s.ID)
			slog.Debug("route not drawable", "suggestion", s.ID, "points", len(ext.Points), "skipped_points", ext.Skipped)
			continue
		}

		// Only the first match is active.
		isActive := active == nil && s.ID == activeID
		line := domain.RouteLine{
			SuggestionID: s.ID,
			Index:        i,
			Active:       isActive,
			Points:       ext.Points,
			Style:        l.lineStyle(i, isActive),
		}
		drawn = append(drawn, line.Points)
		if line.Active {
			active = &line
			continue
		}
		l.draw(line)
		res.Lines = append(res.Lines, line)
	}

	// The active route goes last so nothing covers it.
	if active != nil {
		l.draw(*active)
		res.Lines = append(res.Lines, *active)

		start := domain.Marker{Kind: domain.MarkerStart, Point: active.Points[0], Style: l.style.Start}
		end := domain.Marker{Kind: domain.MarkerEnd, Point: active.Points[len(active.Points)-1], Style: l.style.End}
		l.surface.AddMarker(start)
		l.surface.AddMarker(end)
		res.Markers = append(res.Markers, start, end)
	}

	metrics.RoutesRendered.Add(float64(len(res.Lines)))
	metrics.RoutesSkipped.Add(float64(len(res.Skipped)))

	if fit, ok := l.fit(active, drawn); ok {
		l.surface.FitBounds(fit)
		res.Fit = &fit
	} else {
		metrics.ViewportFitsSkipped.Inc()
	}

	slog.Debug("route layer rendered", "active", activeID, "lines", len(res.Lines), "skipped", len(res.Skipped))
	l.last = res
	return res
}

// Last returns the result of the most recent render pass.
func (l *RouteLayer) Last() RenderResult {
	return l.last
}

// Release clears the surface and stops forwarding line activations.
func (l *RouteLayer) Release() {
	l.surface.Clear()
	l.onSelect = nil
	l.last = RenderResult{}
}

// fit frames the active route alone when there is one, otherwise every
// drawn route. Nothing drawn means no fit.
func (l *RouteLayer) fit(active *domain.RouteLine, drawn [][]domain.GeoPoint) (domain.ViewportFit, bool) {
	w, h := l.surface.Size()
	if active != nil {
		return l.fitter.Fit(w, h, active.Points)
	}
	return l.fitter.Fit(w, h, drawn...)
}

func (l *RouteLayer) draw(line domain.RouteLine) {
	id := line.SuggestionID
	l.surface.AddLine(line, func() {
		if l.onSelect != nil {
			l.onSelect(id)
		}
	})
}

func (l *RouteLayer) lineStyle(index int, active bool) domain.LineStyle {
	st := l.style.Inactive
	if active {
		st = l.style.Active
	}
	st.Color = RouteColor(index)
	return st
}
