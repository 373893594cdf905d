package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/samirrijal/openroute/internal/adapters/scene"
	"github.com/samirrijal/openroute/internal/core/domain"
	"github.com/samirrijal/openroute/internal/pkg/geospatial"
)

// Each character cell holds a 2x4 braille dot matrix. One dot is one
// surface pixel.
const (
	dotsX = 2
	dotsY = 4
)

const markerGlyph = '●'

// Canvas is the map surface of the terminal client. Drawing and hit-testing
// are those of the in-memory scene; the canvas adds cell addressing and
// rendering to text.
type Canvas struct {
	*scene.Scene
}

// NewCanvas creates a canvas of cols x rows cells.
func NewCanvas(cols, rows int, initial domain.Camera) *Canvas {
	return &Canvas{Scene: scene.New(max(cols, 1)*dotsX, max(rows, 1)*dotsY, initial)}
}

// Resize changes the canvas to cols x rows cells.
func (c *Canvas) Resize(cols, rows int) {
	c.SetSize(max(cols, 1)*dotsX, max(rows, 1)*dotsY)
}

// Cells returns the canvas size in character cells.
func (c *Canvas) Cells() (cols, rows int) {
	w, h := c.Size()
	return w / dotsX, h / dotsY
}

// CellPoint returns the geographic point under the centre of a cell.
func (c *Canvas) CellPoint(col, row int) domain.GeoPoint {
	w, h := c.Size()
	x := float64(col*dotsX) + dotsX/2.0
	y := float64(row*dotsY) + dotsY/2.0
	return geospatial.UnprojectAt(x, y, c.Camera(), w, h)
}

// ClickCell activates the topmost line near the centre of a cell.
func (c *Canvas) ClickCell(col, row int) bool {
	return c.ClickAt(c.CellPoint(col, row))
}

type cell struct {
	mask  uint8
	glyph rune
	color string
}

// Render draws lines and markers in surface order as rows of braille
// characters. A cell takes the color of the last thing drawn in it.
func (c *Canvas) Render() string {
	cols, rows := c.Cells()
	w, h := c.Size()
	cam := c.Camera()

	grid := make([][]cell, rows)
	for y := range grid {
		grid[y] = make([]cell, cols)
	}
	set := func(x, y int, color string) {
		if x < 0 || y < 0 || x >= w || y >= h {
			return
		}
		cl := &grid[y/dotsY][x/dotsX]
		cl.mask |= brailleBit(x%dotsX, y%dotsY)
		cl.color = color
	}

	for _, line := range c.Lines() {
		plot := func(x, y int) { set(x, y, line.Style.Color) }
		var px, py float64
		for i, p := range line.Points {
			x, y := geospatial.ProjectAt(p, cam, w, h)
			if i > 0 {
				if x0, y0, x1, y1, ok := clipSegment(px, py, x, y, float64(w), float64(h)); ok {
					drawLine(int(math.Floor(x0)), int(math.Floor(y0)), int(math.Floor(x1)), int(math.Floor(y1)), plot)
				}
			}
			px, py = x, y
		}
	}

	for _, m := range c.Markers() {
		fx, fy := geospatial.ProjectAt(m.Point, cam, w, h)
		col, row := int(math.Floor(fx))/dotsX, int(math.Floor(fy))/dotsY
		if fx < 0 || fy < 0 || col >= cols || row >= rows {
			continue
		}
		grid[row][col].glyph = markerGlyph
		grid[row][col].color = m.Style.Color
	}

	out := make([]string, rows)
	for y, row := range grid {
		out[y] = renderRow(row)
	}
	return strings.Join(out, "\n")
}

// renderRow joins runs of equally colored cells into one styled span.
func renderRow(row []cell) string {
	var (
		b     strings.Builder
		run   []rune
		color string
	)
	flush := func() {
		if len(run) == 0 {
			return
		}
		if color == "" {
			b.WriteString(string(run))
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(string(run)))
		}
		run = run[:0]
	}
	for _, cl := range row {
		r := ' '
		switch {
		case cl.glyph != 0:
			r = cl.glyph
		case cl.mask != 0:
			r = rune(0x2800 + int(cl.mask))
		}
		if cl.color != color {
			flush()
			color = cl.color
		}
		run = append(run, r)
	}
	flush()
	return b.String()
}

func brailleBit(x, y int) uint8 {
	if x == 0 {
		return [4]uint8{0x01, 0x02, 0x04, 0x40}[y]
	}
	return [4]uint8{0x08, 0x10, 0x20, 0x80}[y]
}

// drawLine walks the Bresenham line from (x0, y0) to (x1, y1).
func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// clipSegment clips the segment from (x0, y0) to (x1, y1) to the rectangle
// [0, w] x [0, h] (Liang-Barsky). ok is false when nothing of it is inside.
func clipSegment(x0, y0, x1, y1, w, h float64) (cx0, cy0, cx1, cy1 float64, ok bool) {
	dx, dy := x1-x0, y1-y0
	t0, t1 := 0.0, 1.0
	for _, e := range [4][2]float64{{-dx, x0}, {dx, w - x0}, {-dy, y0}, {dy, h - y0}} {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return 0, 0, 0, 0, false
			}
			t0 = max(t0, r)
		} else {
			if r < t0 {
				return 0, 0, 0, 0, false
			}
			t1 = min(t1, r)
		}
	}
	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
