package domain

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the point lies inside the WGS 84 coordinate ranges.
func (p GeoPoint) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Camera is the map view transform: a center and a zoom level.
type Camera struct {
	Center GeoPoint `json:"center"`
	Zoom   float64  `json:"zoom"`
}

// ViewportFit is a computed camera together with the padded bounds it frames.
type ViewportFit struct {
	Bounds Bounds `json:"bounds"`
	Camera Camera `json:"camera"`
}
