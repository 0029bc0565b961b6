package scene

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/iburimskiy/particle-field/internal/particle"
)

// trailColor is the near-black wash painted instead of clearing.
var trailColor = colorful.Color{R: 10.0 / 255, G: 10.0 / 255, B: 10.0 / 255}

// Draw renders one frame onto c: trail fade, particles with glow, then
// connective lines.
func (s *Scene) Draw(c Canvas) FrameStats {
	st := s.current.Load()
	cfg := st.cfg
	ps := st.store.Particles()

	w, h := c.Bounds()
	c.FillRect(0, 0, w, h, Paint{Color: trailColor, Alpha: cfg.TrailAlpha})

	blur := cfg.GlowBlur * (1 + cfg.Ambience.GlowGain*s.glowLevel())
	for i := range ps {
		p := &ps[i]
		paint := Paint{Color: s.colorOf(st, p), Alpha: p.Opacity}
		c.FillCircle(p.X, p.Y, p.Size, paint)
		if blur > 0 {
			paint.ShadowBlur = blur
			paint.ShadowColor = paint.Color
			c.FillCircle(p.X, p.Y, p.Size, paint)
		}
	}

	stats := connect(c, ps, cfg.Connections.Distance, cfg.Connections.MaxAlpha, st.budget, st.lineColor)
	stats.Particles = len(ps)
	return stats
}

func (s *Scene) colorOf(st *state, p *particle.Particle) colorful.Color {
	if !st.cfg.Palette.HueBased() {
		return st.fixedColor
	}
	return colorful.Hsl(p.Hue, st.cfg.Palette.Saturation, st.cfg.Palette.Lightness)
}

// connect draws a line for every pair closer than threshold, scanning pairs
// in index-ascending order. A positive budget stops the scan once that many
// lines are drawn.
func connect(c Canvas, ps []particle.Particle, threshold, maxAlpha float64, budget int, col colorful.Color) FrameStats {
	var stats FrameStats
	if threshold <= 0 {
		return stats
	}

scan:
	for i := range ps {
		for j := i + 1; j < len(ps); j++ {
			stats.PairChecks++
			d := math.Hypot(ps[i].X-ps[j].X, ps[i].Y-ps[j].Y)
			if d >= threshold {
				continue
			}
			closeness := 1 - d/threshold
			c.StrokeLine(ps[i].X, ps[i].Y, ps[j].X, ps[j].Y, Paint{
				Color:     col,
				Alpha:     maxAlpha * closeness,
				LineWidth: 1 + closeness,
			})
			stats.Lines++
			if budget > 0 && stats.Lines >= budget {
				stats.BudgetHit = true
				break scan
			}
		}
	}
	return stats
}
