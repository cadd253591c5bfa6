package tui

import (
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/clara-labs/walkthrough/internal/viz"
)

// queryPosition is where the encoded query lands in the flow projector.
var queryPosition = viz.Vec3{X: 0.2, Y: -0.35}

type cell struct {
	r     rune
	style lipgloss.Style
}

// canvas is a character grid addressed in unit coordinates: x and y run from
// -1 to 1 with y pointing up.
type canvas struct {
	width  int
	height int
	grid   [][]cell
}

func newCanvas(width, height int) *canvas {
	if width < 3 {
		width = 3
	}
	if height < 3 {
		height = 3
	}
	grid := make([][]cell, height)
	for i := range grid {
		grid[i] = make([]cell, width)
	}
	return &canvas{width: width, height: height, grid: grid}
}

func (c *canvas) cellAt(x, y float64) (int, int) {
	col := int(math.Round((x + 1) / 2 * float64(c.width-1)))
	row := int(math.Round((1 - (y+1)/2) * float64(c.height-1)))
	return col, row
}

func (c *canvas) set(col, row int, r rune, style lipgloss.Style) {
	if row < 0 || row >= c.height || col < 0 || col >= c.width {
		return
	}
	c.grid[row][col] = cell{r: r, style: style}
}

// empty reports whether the cell holds nothing but background grid or a
// similarity line, both of which points and labels may draw over.
func (c *canvas) empty(col, row int) bool {
	if row < 0 || row >= c.height || col < 0 || col >= c.width {
		return false
	}
	switch c.grid[row][col].r {
	case 0, '·', '+', '∙':
		return true
	}
	return false
}

func (c *canvas) plot(p viz.Vec3, r rune, style lipgloss.Style) {
	col, row := c.cellAt(p.X, p.Y)
	c.set(col, row, r, style)
}

// line draws from a to b, leaving both end cells untouched.
func (c *canvas) line(a, b viz.Vec3, r rune, style lipgloss.Style) {
	c0, r0 := c.cellAt(a.X, a.Y)
	c1, r1 := c.cellAt(b.X, b.Y)
	steps := maxInt(absInt(c1-c0), absInt(r1-r0))
	for i := 1; i < steps; i++ {
		t := float64(i) / float64(steps)
		col := c0 + int(math.Round(t*float64(c1-c0)))
		row := r0 + int(math.Round(t*float64(r1-r0)))
		if c.empty(col, row) {
			c.set(col, row, r, style)
		}
	}
}

// label writes text starting one cell right of p, shifted left if it would
// run off the edge.
func (c *canvas) label(p viz.Vec3, text string, style lipgloss.Style) {
	col, row := c.cellAt(p.X, p.Y)
	runes := []rune(text)
	start := col + 2
	if start+len(runes) > c.width {
		start = col - 1 - len(runes)
	}
	for i, r := range runes {
		if !c.empty(start+i, row) {
			continue
		}
		c.set(start+i, row, r, style)
	}
}

func (c *canvas) axes() {
	midCol, midRow := c.cellAt(0, 0)
	for col := 0; col < c.width; col++ {
		c.set(col, midRow, '·', gridStyle)
	}
	for row := 0; row < c.height; row++ {
		c.set(midCol, row, '·', gridStyle)
	}
	c.set(midCol, midRow, '+', gridStyle)
}

func (c *canvas) String() string {
	lines := make([]string, c.height)
	for y, row := range c.grid {
		var b strings.Builder
		for _, cl := range row {
			if cl.r == 0 {
				b.WriteRune(' ')
				continue
			}
			b.WriteString(cl.style.Render(string(cl.r)))
		}
		lines[y] = b.String()
	}
	return strings.Join(lines, "\n")
}

// projector2D renders the flow screen's embedding space for one step:
// points from step 1, the query from 2, similarity lines to the top-K from 3,
// highlighted top-K from 4 and labels from 5.
func projector2D(points []viz.Point, step int, queryLabel string, width, height int) string {
	c := newCanvas(width, height)
	c.axes()
	if step >= 3 {
		for _, p := range points {
			if p.Selected {
				c.line(queryPosition, p.Pos, '∙', similarityStyle)
			}
		}
	}
	if step >= 1 {
		for _, p := range points {
			r, style := '○', pointStyle
			if step >= 4 && p.Selected {
				r, style = '◉', selectedStyle
			}
			c.plot(p.Pos, r, style)
		}
	}
	if step >= 2 {
		c.plot(queryPosition, '◆', queryStyle)
	}
	if step >= 5 {
		for _, p := range points {
			if p.Selected {
				c.label(p.Pos, p.Label, labelStyle)
			}
		}
	}
	if step >= 2 && queryLabel != "" {
		c.label(queryPosition, truncate(queryLabel, width/2), queryStyle)
	}
	return c.String()
}

// projector3D renders the latent space rotated by angle around the vertical
// axis with a fixed tilt, using a simple perspective divide.
func projector3D(points []viz.Point, angle float64, width, height int) string {
	c := newCanvas(width, height)
	c.axes()

	type placed struct {
		p     viz.Point
		pos   viz.Vec3
		depth float64
	}
	const tilt = 0.35
	sinA, cosA := math.Sincos(angle)
	sinT, cosT := math.Sincos(tilt)
	out := make([]placed, 0, len(points))
	for _, p := range points {
		x := p.Pos.X*cosA + p.Pos.Z*sinA
		z := -p.Pos.X*sinA + p.Pos.Z*cosA
		y := p.Pos.Y*cosT - z*sinT
		z = p.Pos.Y*sinT + z*cosT
		scale := 1.2 / (2.2 - z)
		out = append(out, placed{p: p, pos: viz.Vec3{X: x * scale, Y: y * scale}, depth: z})
	}
	// Far points first so near ones overwrite them.
	sort.SliceStable(out, func(i, j int) bool { return out[i].depth < out[j].depth })
	for _, o := range out {
		r, style := '•', pointStyle
		if o.depth > 0.2 {
			r = '●'
		}
		if o.p.Selected {
			style = selectedStyle
		}
		c.plot(o.pos, r, style)
	}
	return c.String()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if max <= 1 || len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
