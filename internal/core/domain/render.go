package domain

// LineStyle is the stroke of a rendered route.
type LineStyle struct {
	Color    string  `json:"color"`
	Weight   float64 `json:"weight"`
	Opacity  float64 `json:"opacity"`
	LineCap  string  `json:"line_cap"`
	LineJoin string  `json:"line_join"`
}

// RouteLine is one suggestion's geometry as drawn on the map.
type RouteLine struct {
	SuggestionID string     `json:"suggestion_id"`
	Index        int        `json:"index"` // position in response order
	Active       bool       `json:"active"`
	Points       []GeoPoint `json:"points"`
	Style        LineStyle  `json:"style"`
}

// MarkerKind distinguishes the endpoints of the active route.
type MarkerKind string

const (
	MarkerStart MarkerKind = "start"
	MarkerEnd   MarkerKind = "end"
)

// MarkerStyle is the look of a circle marker.
type MarkerStyle struct {
	Radius      float64 `json:"radius"`
	Color       string  `json:"color"`
	Weight      float64 `json:"weight"`
	FillColor   string  `json:"fill_color"`
	FillOpacity float64 `json:"fill_opacity"`
}

// Marker is a point marker drawn above all route lines.
type Marker struct {
	Kind  MarkerKind  `json:"kind"`
	Point GeoPoint    `json:"point"`
	Style MarkerStyle `json:"style"`
}
