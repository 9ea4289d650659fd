package viz

import (
	"fmt"
	"math"
	"strings"
)

// Braille cells hold a 2x4 dot grid:
// 1 4
// 2 5
// 3 6
// 7 8
var dotMask = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

// Canvas is a braille dot canvas of Width x Height cells, or
// (2*Width) x (4*Height) dots.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, Grid: make([][]rune, h)}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights the dot at (x, y); out-of-range dots are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= dotMask[y%4][x%2]
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Scatter plots ys against xs on a w x h cell canvas with a least-squares
// trend line, framed by the axis ranges.
func Scatter(xs, ys []float64, w, h int, xLabel, yLabel string) string {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	if n == 0 || w <= 0 || h <= 0 {
		return ""
	}

	xMin, xMax := bounds(xs[:n])
	yMin, yMax := bounds(ys[:n])
	xRange, yRange := xMax-xMin, yMax-yMin
	if xRange == 0 {
		xRange = 1
	}
	if yRange == 0 {
		yRange = 1
	}

	c := NewCanvas(w, h)
	dotsW, dotsH := w*2, h*4
	project := func(x, y float64) (int, int) {
		px := int(math.Round(float64(dotsW-1) * (x - xMin) / xRange))
		py := dotsH - 1 - int(math.Round(float64(dotsH-1)*(y-yMin)/yRange))
		return px, py
	}

	for i := 0; i < n; i++ {
		c.Set(project(xs[i], ys[i]))
	}

	if slope, intercept, ok := fitLine(xs[:n], ys[:n]); ok {
		x0, y0 := project(xMin, intercept+slope*xMin)
		x1, y1 := project(xMax, intercept+slope*xMax)
		c.DrawLine(x0, y0, x1, y1)
	}

	var b strings.Builder
	rows := strings.Split(strings.TrimRight(c.String(), "\n"), "\n")
	for i, row := range rows {
		label := strings.Repeat(" ", 12)
		switch i {
		case 0:
			label = fmt.Sprintf("%11.4g ", yMax)
		case len(rows) - 1:
			label = fmt.Sprintf("%11.4g ", yMin)
		}
		b.WriteString(label + "│" + row + "\n")
	}
	b.WriteString(strings.Repeat(" ", 12) + "└" + strings.Repeat("─", w) + "\n")
	b.WriteString(fmt.Sprintf("%13s%-*.4g%*.4g\n", "", w/2, xMin, w-w/2, xMax))
	b.WriteString(fmt.Sprintf("%13s%s vs %s\n", "", yLabel, xLabel))
	return b.String()
}

func bounds(v []float64) (lo, hi float64) {
	lo, hi = v[0], v[0]
	for _, x := range v {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi
}

// fitLine returns the least-squares line through (xs, ys).
func fitLine(xs, ys []float64) (slope, intercept float64, ok bool) {
	n := float64(len(xs))
	if n < 2 {
		return 0, 0, false
	}
	var sx, sy, sxx, sxy float64
	for i := range xs {
		sx += xs[i]
		sy += ys[i]
		sxx += xs[i] * xs[i]
		sxy += xs[i] * ys[i]
	}
	den := n*sxx - sx*sx
	if den == 0 {
		return 0, 0, false
	}
	slope = (n*sxy - sx*sy) / den
	intercept = (sy - slope*sx) / n
	return slope, intercept, true
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
