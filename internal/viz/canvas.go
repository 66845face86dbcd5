package viz

import (
	"math"
	"strings"
)

// Braille cells hold 2x4 dots:
// 1 4
// 2 5
// 3 6
// 7 8
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

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

// Set lights the dot at (x, y) in dot coordinates. The canvas is
// (Width*2) x (Height*4) dots.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a Bresenham line in dot coordinates.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
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

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Map draws the floor plane from above with +x to the right and +y up.
type Map struct {
	canvas *Canvas
	half   float64
	cx, cy float64
	trail  [][2]float64
}

// NewMap covers a square of side 2*half metres centred on (cx, cy).
func NewMap(w, h int, cx, cy, half float64) *Map {
	return &Map{canvas: NewCanvas(w, h), half: half, cx: cx, cy: cy}
}

func (m *Map) toDots(x, y float64) (int, int) {
	dw := float64(m.canvas.Width*2 - 1)
	dh := float64(m.canvas.Height*4 - 1)
	px := (x - m.cx + m.half) / (2 * m.half) * dw
	py := (m.cy + m.half - y) / (2 * m.half) * dh
	return int(math.Round(px)), int(math.Round(py))
}

// Render draws the trail, the robot with a heading tick, and the target.
func (m *Map) Render(x, y, heading, tx, ty float64) string {
	m.trail = append(m.trail, [2]float64{x, y})
	if len(m.trail) > 200 {
		m.trail = m.trail[1:]
	}

	m.canvas.Clear()
	for _, p := range m.trail {
		m.canvas.Set(m.toDots(p[0], p[1]))
	}

	rx, ry := m.toDots(x, y)
	hx, hy := m.toDots(x+0.15*math.Cos(heading), y+0.15*math.Sin(heading))
	m.canvas.DrawLine(rx, ry, hx, hy)

	ox, oy := m.toDots(tx, ty)
	for d := -1; d <= 1; d++ {
		m.canvas.Set(ox+d, oy)
		m.canvas.Set(ox, oy+d)
	}
	return m.canvas.String()
}
