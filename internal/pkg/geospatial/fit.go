package geospatial

import (
	"math"

	"github.com/samirrijal/openroute/internal/core/domain"
)

const (
	tileSize = 256.0
	// maxMercatorLat is where web mercator stops being square.
	maxMercatorLat = 85.0511287798
)

// FitOptions configures viewport fitting.
type FitOptions struct {
	PadRatio  float64 // fraction of the span added on each side
	PaddingPx int     // screen padding kept free on each edge
	MinZoom   float64
	MaxZoom   float64 // closest zoom, caps tiny or degenerate routes
}

// DefaultFitOptions returns the fit used by the route map.
func DefaultFitOptions() FitOptions {
	return FitOptions{
		PadRatio:  0.12,
		PaddingPx: 24,
		MinZoom:   0,
		MaxZoom:   14,
	}
}

// Fitter computes camera transforms that frame coordinate sequences.
type Fitter struct {
	opts FitOptions
}

// NewFitter creates a Fitter.
func NewFitter(opts FitOptions) *Fitter {
	return &Fitter{opts: opts}
}

// Options returns the fitter's configuration.
func (f *Fitter) Options() FitOptions {
	return f.opts
}

// Fit frames the union of the given sequences on a width x height pixel
// surface. Empty sequences are ignored; ok is false if nothing is left.
func (f *Fitter) Fit(width, height int, lines ...[]domain.GeoPoint) (domain.ViewportFit, bool) {
	var (
		union domain.Bounds
		found bool
	)
	for _, line := range lines {
		b, ok := BoundsOf(line)
		if !ok {
			continue
		}
		if !found {
			union, found = b, true
			continue
		}
		union = Union(union, b)
	}
	if !found {
		return domain.ViewportFit{}, false
	}

	padded := Pad(union, f.opts.PadRatio)
	return domain.ViewportFit{
		Bounds: padded,
		Camera: domain.Camera{
			Center: Center(padded),
			Zoom:   f.Zoom(padded, width, height),
		},
	}, true
}

// Zoom returns the closest integer zoom at which b fits inside the surface
// minus padding, clamped to [MinZoom, MaxZoom].
func (f *Fitter) Zoom(b domain.Bounds, width, height int) float64 {
	availW := float64(width - 2*f.opts.PaddingPx)
	availH := float64(height - 2*f.opts.PaddingPx)
	if availW <= 0 || availH <= 0 {
		return f.opts.MinZoom
	}

	nwX, nwY := Project(domain.GeoPoint{Lat: b.MaxLat, Lon: b.MinLon})
	seX, seY := Project(domain.GeoPoint{Lat: b.MinLat, Lon: b.MaxLon})

	scale := math.Min(availW/math.Abs(seX-nwX), availH/math.Abs(seY-nwY))
	zoom := math.Floor(math.Log2(scale))
	if math.IsNaN(zoom) || zoom > f.opts.MaxZoom {
		return f.opts.MaxZoom
	}
	if zoom < f.opts.MinZoom {
		return f.opts.MinZoom
	}
	return zoom
}

// Center returns the visual center of b on a web mercator map.
func Center(b domain.Bounds) domain.GeoPoint {
	nwX, nwY := Project(domain.GeoPoint{Lat: b.MaxLat, Lon: b.MinLon})
	seX, seY := Project(domain.GeoPoint{Lat: b.MinLat, Lon: b.MaxLon})
	return Unproject((nwX+seX)/2, (nwY+seY)/2)
}

// Project converts p to web mercator pixel coordinates at zoom 0.
func Project(p domain.GeoPoint) (x, y float64) {
	lat := math.Max(-maxMercatorLat, math.Min(maxMercatorLat, p.Lat))
	sin := math.Sin(toRad(lat))
	x = tileSize * (p.Lon + 180) / 360
	y = tileSize * (0.5 - math.Log((1+sin)/(1-sin))/(4*math.Pi))
	return x, y
}

// Unproject converts zoom 0 web mercator pixel coordinates back to a point.
func Unproject(x, y float64) domain.GeoPoint {
	n := math.Pi - 2*math.Pi*y/tileSize
	return domain.GeoPoint{
		Lat: math.Atan(math.Sinh(n)) * 180 / math.Pi,
		Lon: x/tileSize*360 - 180,
	}
}

// ProjectAt converts p to pixel coordinates relative to the top-left corner
// of a width x height view showing cam.
func ProjectAt(p domain.GeoPoint, cam domain.Camera, width, height int) (x, y float64) {
	scale := math.Exp2(cam.Zoom)
	px, py := Project(p)
	cx, cy := Project(cam.Center)
	return (px-cx)*scale + float64(width)/2, (py-cy)*scale + float64(height)/2
}

// UnprojectAt is the inverse of ProjectAt.
func UnprojectAt(x, y float64, cam domain.Camera, width, height int) domain.GeoPoint {
	scale := math.Exp2(cam.Zoom)
	cx, cy := Project(cam.Center)
	return Unproject((x-float64(width)/2)/scale+cx, (y-float64(height)/2)/scale+cy)
}
