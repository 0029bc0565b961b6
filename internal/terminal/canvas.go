// Package terminal renders a scene into a tcell screen. Each cell holds two
// vertically stacked pixels drawn with the upper half block glyph.
package terminal

import (
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/iburimskiy/particle-field/internal/scene"
)

const (
	// PixelScale is how many canvas units one terminal pixel spans.
	PixelScale = 8.0
	haloSteps  = 3
	halfBlock  = '▀'
)

// Canvas is a low resolution framebuffer implementing scene.Canvas.
type Canvas struct {
	cols, rows int // in pixels; rows is twice the screen height
	scale      float64
	pix        []colorful.Color
}

// NewCanvas sizes a framebuffer for a screen of cols x lines cells.
func NewCanvas(cols, lines int, scale float64) *Canvas {
	if scale <= 0 {
		scale = PixelScale
	}
	c := &Canvas{scale: scale}
	c.Resize(cols, lines)
	return c
}

// Resize discards the framebuffer and allocates one for cols x lines cells.
func (c *Canvas) Resize(cols, lines int) {
	c.cols, c.rows = max(cols, 0), max(lines, 0)*2
	c.pix = make([]colorful.Color, c.cols*c.rows)
}

func (c *Canvas) Bounds() (float64, float64) {
	return float64(c.cols) * c.scale, float64(c.rows) * c.scale
}

// ToCanvas maps a screen cell to the canvas point at its centre.
func (c *Canvas) ToCanvas(x, y int) (float64, float64) {
	return (float64(x) + 0.5) * c.scale, (float64(y)*2 + 1) * c.scale
}

// At returns the pixel colour at (x, y).
func (c *Canvas) At(x, y int) colorful.Color {
	if x < 0 || y < 0 || x >= c.cols || y >= c.rows {
		return colorful.Color{}
	}
	return c.pix[y*c.cols+x]
}

func (c *Canvas) FillRect(x, y, w, h float64, p scene.Paint) {
	x0, y0 := c.pixel(x, y)
	x1, y1 := c.pixel(x+w, y+h)
	for py := max(y0, 0); py < min(y1+1, c.rows); py++ {
		for px := max(x0, 0); px < min(x1+1, c.cols); px++ {
			c.blend(px, py, p.Color, p.Alpha)
		}
	}
}

func (c *Canvas) FillCircle(cx, cy, r float64, p scene.Paint) {
	for _, ring := range scene.Halo(r, p.ShadowBlur, p.Alpha, haloSteps) {
		c.disc(cx, cy, ring.Radius, p.ShadowColor, ring.Alpha)
	}
	c.disc(cx, cy, r, p.Color, p.Alpha)
}

// StrokeLine walks the pixels between both ends with Bresenham's algorithm.
// Line width is below pixel size at this resolution and is ignored.
func (c *Canvas) StrokeLine(x0, y0, x1, y1 float64, p scene.Paint) {
	ax, ay := c.pixel(x0, y0)
	bx, by := c.pixel(x1, y1)

	dx, dy := abs(bx-ax), -abs(by-ay)
	sx, sy := sign(bx-ax), sign(by-ay)
	e := dx + dy
	for {
		c.blend(ax, ay, p.Color, p.Alpha)
		if ax == bx && ay == by {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			ax += sx
		}
		if e2 <= dx {
			e += dx
			ay += sy
		}
	}
}

// Present copies the framebuffer to screen. The caller shows the screen.
func (c *Canvas) Present(screen tcell.Screen) {
	for line := 0; line < c.rows/2; line++ {
		for x := 0; x < c.cols; x++ {
			top, bottom := c.pix[2*line*c.cols+x], c.pix[(2*line+1)*c.cols+x]
			style := tcell.StyleDefault.Foreground(toTcell(top)).Background(toTcell(bottom))
			screen.SetContent(x, line, halfBlock, nil, style)
		}
	}
}

func (c *Canvas) disc(cx, cy, r float64, col colorful.Color, alpha float64) {
	px, py := cx/c.scale, cy/c.scale
	pr := r / c.scale
	if pr < 0.5 {
		x, y := c.pixel(cx, cy)
		c.blend(x, y, col, alpha)
		return
	}
	for y := int(math.Floor(py - pr)); y <= int(math.Floor(py+pr)); y++ {
		for x := int(math.Floor(px - pr)); x <= int(math.Floor(px+pr)); x++ {
			if math.Hypot(float64(x)+0.5-px, float64(y)+0.5-py) <= pr {
				c.blend(x, y, col, alpha)
			}
		}
	}
}

func (c *Canvas) pixel(x, y float64) (int, int) {
	return int(math.Floor(x / c.scale)), int(math.Floor(y / c.scale))
}

func (c *Canvas) blend(x, y int, col colorful.Color, alpha float64) {
	if x < 0 || y < 0 || x >= c.cols || y >= c.rows || alpha <= 0 {
		return
	}
	i := y*c.cols + x
	c.pix[i] = c.pix[i].BlendRgb(col, min(alpha, 1))
}

func toTcell(col colorful.Color) tcell.Color {
	r, g, b, _ := scene.RGBA8(col, 1)
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
