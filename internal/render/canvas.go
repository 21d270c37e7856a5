package render

import (
	"math"
	"strings"

	"github.com/san-kum/organelle/internal/interact"
)

const brailleBlank = 0x2800

// Braille cells hold 2x4 dots:
//
//	1 4
//	2 5
//	3 6
//	7 8
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a grid of braille cells. Dot coordinates run from 0 to
// Width*2 horizontally and Height*4 vertically.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) DotWidth() int  { return c.Width * 2 }
func (c *Canvas) DotHeight() int { return c.Height * 4 }

func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	// Labels overwrite the cell; dots do not draw over them.
	if r := c.Grid[row][col]; r < brailleBlank || r > brailleBlank+0xff {
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

// DrawLine draws a line using Bresenham's algorithm.
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

// DrawCircle plots a ring; a step above one leaves gaps for a dotted look.
func (c *Canvas) DrawCircle(cx, cy, r float64, step int) {
	if r <= 0 {
		c.Set(int(cx), int(cy))
		return
	}
	if step < 1 {
		step = 1
	}
	n := int(2*math.Pi*r) + 8
	for i := 0; i < n; i += step {
		a := 2 * math.Pi * float64(i) / float64(n)
		c.Set(int(math.Round(cx+r*math.Cos(a))), int(math.Round(cy+r*math.Sin(a))))
	}
}

func (c *Canvas) FillCircle(cx, cy, r float64) {
	for y := int(cy - r); y <= int(cy+r); y++ {
		dy := float64(y) - cy
		half := math.Sqrt(math.Max(0, r*r-dy*dy))
		for x := int(cx - half); x <= int(cx+half); x++ {
			c.Set(x, y)
		}
	}
}

// Label writes text into cells starting at the given cell.
func (c *Canvas) Label(col, row int, text string) {
	if row < 0 || row >= c.Height {
		return
	}
	for i, r := range []rune(text) {
		if x := col + i; x >= 0 && x < c.Width {
			c.Grid[row][x] = r
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for i, row := range c.Grid {
		b.WriteString(string(row))
		if i < len(c.Grid)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Render rasterises sc onto the canvas, scaling scene pixels to dots.
func (c *Canvas) Render(sc Scene) {
	c.Clear()
	if sc.Width <= 0 || sc.Height <= 0 {
		return
	}
	kx := float64(c.DotWidth()) / sc.Width
	ky := float64(c.DotHeight()) / sc.Height
	k := math.Min(kx, ky)

	for i := range sc.Outline {
		p, q := sc.Outline[i], sc.Outline[(i+1)%len(sc.Outline)]
		c.DrawLine(int(p.X*kx), int(p.Y*ky), int(q.X*kx), int(q.Y*ky))
	}
	for _, r := range sc.Ripples {
		if r.Alpha < 0.3 {
			continue
		}
		c.DrawCircle(r.X*kx, r.Y*ky, r.Radius*k, 2)
	}

	var labels []Sprite
	for _, s := range sc.Sprites {
		x, y, r := s.X*kx, s.Y*ky, s.Radius*k
		switch s.Class {
		case interact.ClassActive:
			c.DrawCircle(x, y, r, 1)
			c.DrawCircle(x, y, r-1, 1)
			labels = append(labels, s)
		case interact.ClassHovered:
			c.FillCircle(x, y, r)
			labels = append(labels, s)
		case interact.ClassDimmed:
			c.DrawCircle(x, y, r, 3)
		default:
			c.DrawCircle(x, y, r, 1)
			labels = append(labels, s)
		}
	}
	for _, s := range labels {
		name := s.ID
		if s.Class != interact.ClassActive {
			name = abbreviate(name, int(s.Radius*k))
		}
		col := int(s.X*kx)/2 - len([]rune(name))/2
		c.Label(col, int(s.Y*ky)/4, name)
	}
}

// abbreviate shortens a label to fit a circle of the given dot radius.
func abbreviate(s string, dotRadius int) string {
	limit := dotRadius / 2
	if limit < 1 {
		limit = 1
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
