package geospatial

import (
	"github.com/paulmach/orb"

	"github.com/samirrijal/openroute/internal/core/domain"
)

// BoundsOf returns the bounding box of a coordinate sequence. ok is false
// for an empty sequence.
func BoundsOf(points []domain.GeoPoint) (domain.Bounds, bool) {
	if len(points) == 0 {
		return domain.Bounds{}, false
	}
	return fromOrb(lineString(points).Bound()), true
}

// Union returns the smallest box containing both a and b.
func Union(a, b domain.Bounds) domain.Bounds {
	return fromOrb(toOrb(a).Union(toOrb(b)))
}

// Pad grows the box by ratio of its span on every side.
func Pad(b domain.Bounds, ratio float64) domain.Bounds {
	latBuf := (b.MaxLat - b.MinLat) * ratio
	lonBuf := (b.MaxLon - b.MinLon) * ratio
	return domain.Bounds{
		MinLat: b.MinLat - latBuf,
		MinLon: b.MinLon - lonBuf,
		MaxLat: b.MaxLat + latBuf,
		MaxLon: b.MaxLon + lonBuf,
	}
}

// Contains reports whether p lies inside b.
func Contains(b domain.Bounds, p domain.GeoPoint) bool {
	return toOrb(b).Contains(orb.Point{p.Lon, p.Lat})
}

// Intersects reports whether a and b overlap or touch.
func Intersects(a, b domain.Bounds) bool {
	return toOrb(a).Intersects(toOrb(b))
}

func lineString(points []domain.GeoPoint) orb.LineString {
	ls := make(orb.LineString, 0, len(points))
	for _, p := range points {
		ls = append(ls, orb.Point{p.Lon, p.Lat})
	}
	return ls
}

func toOrb(b domain.Bounds) orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.MinLon, b.MinLat},
		Max: orb.Point{b.MaxLon, b.MaxLat},
	}
}

func fromOrb(b orb.Bound) domain.Bounds {
	return domain.Bounds{
		MinLat: b.Min.Lat(),
		MinLon: b.Min.Lon(),
		MaxLat: b.Max.Lat(),
		MaxLon: b.Max.Lon(),
	}
}
