package game

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/iburimskiy/particle-field/internal/scene"
)

const haloSteps = 5

// screenCanvas adapts an ebiten image to scene.Canvas.
type screenCanvas struct {
	dst *ebiten.Image
}

func (c screenCanvas) Bounds() (float64, float64) {
	b := c.dst.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

func (c screenCanvas) FillRect(x, y, w, h float64, p scene.Paint) {
	vector.DrawFilledRect(c.dst, float32(x), float32(y), float32(w), float32(h), paintColor(p), false)
}

// FillCircle draws the shadow as fading rings first, then the disc, since
// the vector package has no blur.
func (c screenCanvas) FillCircle(cx, cy, r float64, p scene.Paint) {
	for _, ring := range scene.Halo(r, p.ShadowBlur, p.Alpha, haloSteps) {
		glow := scene.Paint{Color: p.ShadowColor, Alpha: ring.Alpha}
		vector.DrawFilledCircle(c.dst, float32(cx), float32(cy), float32(ring.Radius), paintColor(glow), true)
	}
	vector.DrawFilledCircle(c.dst, float32(cx), float32(cy), float32(r), paintColor(p), true)
}

func (c screenCanvas) StrokeLine(x0, y0, x1, y1 float64, p scene.Paint) {
	vector.StrokeLine(c.dst, float32(x0), float32(y0), float32(x1), float32(y1), float32(p.LineWidth), paintColor(p), true)
}

func paintColor(p scene.Paint) color.NRGBA {
	r, g, b, a := scene.RGBA8(p.Color, p.Alpha)
	return color.NRGBA{R: r, G: g, B: b, A: a}
}
