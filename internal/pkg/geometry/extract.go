// Package geometry turns opaque route payloads into drawable coordinates.
package geometry

import (
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/samirrijal/openroute/internal/core/domain"
)

// coordinatesPath locates the line coordinates inside a route payload,
// e.g. {"points": {"type": "LineString", "coordinates": [[lon, lat], ...]}}.
const coordinatesPath = "points.coordinates"

// Extraction is the result of reading a route payload. OK is false when the
// payload has no coordinate list at all. Points may be shorter than the
// payload's coordinate list: malformed entries are skipped one by one.
type Extraction struct {
	OK      bool
	Points  []domain.GeoPoint
	Skipped int
}

// Drawable reports whether the extraction yields a line (at least 2 points).
func (e Extraction) Drawable() bool {
	return e.OK && len(e.Points) >= 2
}

// Extract reads the coordinate list of a route payload. Coordinates are
// stored as [longitude, latitude] and returned as GeoPoint{Lat, Lon}.
// Extract never fails; unreadable input yields an Extraction with OK false.
func Extract(payload []byte) Extraction {
	if len(payload) == 0 || !gjson.ValidBytes(payload) {
		return Extraction{}
	}
	root := gjson.ParseBytes(payload)
	if !root.IsObject() {
		return Extraction{}
	}
	points := root.Get("points")
	if !points.IsObject() {
		return Extraction{}
	}
	coords := root.Get(coordinatesPath)
	if !coords.IsArray() {
		return Extraction{}
	}

	out := Extraction{OK: true, Points: []domain.GeoPoint{}}
	coords.ForEach(func(_, c gjson.Result) bool {
		p, ok := toPoint(c)
		if !ok {
			out.Skipped++
			return true
		}
		out.Points = append(out.Points, p)
		return true
	})
	return out
}

// Points is a shorthand for Extract(payload).Points.
func Points(payload []byte) []domain.GeoPoint {
	return Extract(payload).Points
}

// toPoint accepts [lon, lat] and [lon, lat, elevation] entries.
func toPoint(c gjson.Result) (domain.GeoPoint, bool) {
	if !c.IsArray() {
		return domain.GeoPoint{}, false
	}
	pair := c.Array()
	if len(pair) < 2 {
		return domain.GeoPoint{}, false
	}
	lon, ok := toFloat(pair[0])
	if !ok {
		return domain.GeoPoint{}, false
	}
	lat, ok := toFloat(pair[1])
	if !ok {
		return domain.GeoPoint{}, false
	}
	p := domain.GeoPoint{Lat: lat, Lon: lon}
	if !p.Valid() {
		return domain.GeoPoint{}, false
	}
	return p, true
}

// toFloat reads JSON numbers and numeric strings. Anything else, including
// null and booleans, is rejected.
func toFloat(r gjson.Result) (float64, bool) {
	var v float64
	switch r.Type {
	case gjson.Number:
		f, err := strconv.ParseFloat(r.Raw, 64)
		if err != nil {
			return 0, false
		}
		v = f
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
		if err != nil {
			return 0, false
		}
		v = f
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
