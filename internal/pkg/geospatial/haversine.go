package geospatial

import (
	"math"

	"github.com/samirrijal/openroute/internal/core/domain"
)

const (
	earthRadiusKm = 6371.0
	metersPerDeg  = 111320.0

	// equatorialRadiusM is the WGS 84 semi-major axis used by web mercator.
	equatorialRadiusM = 6378137.0
)

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c * 1000 // meters
}

// BoundingBox returns a bounding box around a point with the given radius in meters.
func BoundingBox(lat, lon, radiusMeters float64) domain.Bounds {
	latDelta := radiusMeters / metersPerDeg
	lonDelta := radiusMeters / (metersPerDeg * math.Cos(toRad(lat)))

	return domain.Bounds{
		MinLat: lat - latDelta,
		MinLon: lon - lonDelta,
		MaxLat: lat + latDelta,
		MaxLon: lon + lonDelta,
	}
}

// DistanceToLine returns the distance in meters from p to the closest point
// of the polyline. Segments are measured in a local equirectangular frame
// centred on p, which is accurate at map click scales.
func DistanceToLine(p domain.GeoPoint, line []domain.GeoPoint) float64 {
	switch len(line) {
	case 0:
		return math.Inf(1)
	case 1:
		return Haversine(p.Lat, p.Lon, line[0].Lat, line[0].Lon)
	}

	kx := metersPerDeg * math.Cos(toRad(p.Lat))
	local := func(q domain.GeoPoint) (float64, float64) {
		return (q.Lon - p.Lon) * kx, (q.Lat - p.Lat) * metersPerDeg
	}

	best := math.Inf(1)
	for i := 1; i < len(line); i++ {
		ax, ay := local(line[i-1])
		bx, by := local(line[i])
		dx, dy := bx-ax, by-ay

		t := 0.0
		if l2 := dx*dx + dy*dy; l2 > 0 {
			t = -(ax*dx + ay*dy) / l2
			t = math.Max(0, math.Min(1, t))
		}
		cx, cy := ax+t*dx, ay+t*dy
		if d := math.Hypot(cx, cy); d < best {
			best = d
		}
	}
	return best
}

// MetersPerPixel returns the ground resolution of a web mercator map at the
// given latitude and zoom level (256px tiles).
func MetersPerPixel(lat, zoom float64) float64 {
	return 2 * math.Pi * equatorialRadiusM * math.Cos(toRad(lat)) / (tileSize * math.Exp2(zoom))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
