package scene

import "github.com/lucasb-eyer/go-colorful"

// Paint is the full draw state for one call. Hosts must not carry any of it
// over to the next call, so a shadow set for one fill never leaks into the
// following draws.
type Paint struct {
	Color colorful.Color
	// Alpha is the global alpha in [0, 1].
	Alpha     float64
	LineWidth float64
	// ShadowBlur > 0 asks for a glow of that radius in ShadowColor.
	ShadowBlur  float64
	ShadowColor colorful.Color
}

// Canvas is the immediate-mode 2D surface the render loop draws on.
type Canvas interface {
	Bounds() (width, height float64)
	FillRect(x, y, w, h float64, paint Paint)
	FillCircle(cx, cy, r float64, paint Paint)
	StrokeLine(x0, y0, x1, y1 float64, paint Paint)
}

// RGBA8 converts a paint colour and alpha to 8-bit non-premultiplied channels.
func RGBA8(c colorful.Color, alpha float64) (r, g, b, a uint8) {
	cc := c.Clamped()
	return uint8(cc.R*255 + 0.5), uint8(cc.G*255 + 0.5), uint8(cc.B*255 + 0.5), uint8(clamp01(alpha)*255 + 0.5)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Ring is one band of a halo.
type Ring struct {
	Radius float64
	Alpha  float64
}

// Halo approximates a shadow blur of the given radius around a disc with
// steps concentric rings whose alpha fades out towards the edge. Hosts
// without a native blur draw these behind the disc.
func Halo(radius, blur, alpha float64, steps int) []Ring {
	if blur <= 0 || steps <= 0 || alpha <= 0 {
		return nil
	}
	rings := make([]Ring, steps)
	for i := range rings {
		t := float64(i+1) / float64(steps)
		rings[i] = Ring{
			Radius: radius + blur*t,
			Alpha:  alpha * (1 - t) / float64(steps) * 2,
		}
	}
	return rings
}
