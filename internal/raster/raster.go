// Package raster draws scenes offscreen with the gg software renderer, for
// PNG stills and headless rendering.
package raster

import (
	"context"
	"fmt"
	"image"
	"io"

	"github.com/gogpu/gg"

	"github.com/iburimskiy/particle-field/internal/scene"
)

const haloSteps = 4

// Canvas is a scene.Canvas backed by a gg context. Draw errors do not stop
// the frame; the first one is kept for Err.
type Canvas struct {
	dc  *gg.Context
	err error
}

// New creates a width x height canvas filled with the backdrop colour.
func New(width, height int) *Canvas {
	dc := gg.NewContext(max(width, 1), max(height, 1))
	dc.ClearWithColor(gg.RGBA2(10.0/255, 10.0/255, 10.0/255, 1))
	return &Canvas{dc: dc}
}

func (c *Canvas) Bounds() (float64, float64) {
	return float64(c.dc.Width()), float64(c.dc.Height())
}

func (c *Canvas) FillRect(x, y, w, h float64, p scene.Paint) {
	c.setPaint(p, p.Alpha)
	c.dc.DrawRectangle(x, y, w, h)
	c.keep(c.dc.Fill())
}

func (c *Canvas) FillCircle(cx, cy, r float64, p scene.Paint) {
	for _, ring := range scene.Halo(r, p.ShadowBlur, p.Alpha, haloSteps) {
		c.setRGBA(p.ShadowColor.R, p.ShadowColor.G, p.ShadowColor.B, ring.Alpha)
		c.dc.DrawCircle(cx, cy, ring.Radius)
		c.keep(c.dc.Fill())
	}
	c.setPaint(p, p.Alpha)
	c.dc.DrawCircle(cx, cy, r)
	c.keep(c.dc.Fill())
}

func (c *Canvas) StrokeLine(x0, y0, x1, y1 float64, p scene.Paint) {
	c.setPaint(p, p.Alpha)
	c.dc.SetLineWidth(max(p.LineWidth, 0.1))
	c.dc.DrawLine(x0, y0, x1, y1)
	c.keep(c.dc.Stroke())
}

// Err returns the first draw error, if any.
func (c *Canvas) Err() error { return c.err }

func (c *Canvas) Image() image.Image { return c.dc.Image() }

func (c *Canvas) SavePNG(path string) error {
	if err := c.dc.SavePNG(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func (c *Canvas) EncodePNG(w io.Writer) error { return c.dc.EncodePNG(w) }

func (c *Canvas) Close() error { return c.dc.Close() }

func (c *Canvas) setPaint(p scene.Paint, alpha float64) {
	col := p.Color.Clamped()
	c.setRGBA(col.R, col.G, col.B, alpha)
}

func (c *Canvas) setRGBA(r, g, b, a float64) {
	c.dc.SetRGBA(r, g, b, min(max(a, 0), 1))
}

func (c *Canvas) keep(err error) {
	if err != nil && c.err == nil {
		c.err = err
	}
}

// Render steps frames frames of s onto a new canvas sized to the scene.
// With frames <= 0 the current state is drawn once without advancing it.
func Render(ctx context.Context, s *scene.Scene, frames int) (*Canvas, scene.FrameStats, error) {
	w, h := s.Bounds()
	c := New(int(w), int(h))

	if frames <= 0 {
		stats := s.Draw(c)
		return c, stats, c.Err()
	}

	l := scene.NewLoop(s, c)
	var stats scene.FrameStats
	for i := 0; i < frames; i++ {
		if err := ctx.Err(); err != nil {
			return c, stats, err
		}
		stats = l.Step()
	}
	return c, stats, c.Err()
}
