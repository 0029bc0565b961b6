// Package particle holds the particle record and the fixed-capacity pool the
// render loop reuses in place.
package particle

import (
	"math"
	"math/rand/v2"

	"github.com/iburimskiy/particle-field/internal/config"
)

// Particle is a single animated point. Size stays constant for the life of
// the record; everything else is reassigned on reset.
type Particle struct {
	X, Y           float64
	SpeedX, SpeedY float64
	Size           float64
	Opacity        float64
	Hue            float64
}

// Params are the randomization ranges used when a particle is (re)born.
type Params struct {
	MinSize, MaxSize float64
	MaxSpeed         float64
	Floor            float64
	MaxOpacity       float64
	HueMin, HueMax   float64
}

// ParamsFrom extracts the store parameters from a config.
func ParamsFrom(cfg *config.Config) Params {
	return Params{
		MinSize:    cfg.Particle.MinSize,
		MaxSize:    cfg.Particle.MaxSize,
		MaxSpeed:   cfg.Particle.MaxSpeed,
		Floor:      cfg.Particle.OpacityFloor,
		MaxOpacity: cfg.Particle.MaxOpacity,
		HueMin:     cfg.Palette.HueMin,
		HueMax:     cfg.Palette.HueMax,
	}
}

// Spawn fills a brand new particle, size included.
func Spawn(p *Particle, params Params, rng *rand.Rand, width, height float64) {
	p.Size = uniform(rng, params.MinSize, params.MaxSize)
	Randomize(p, params, rng, width, height)
}

// Randomize assigns fresh position, velocity, opacity and hue. Size is left
// alone. Opacity lands in (Floor, MaxOpacity] so a fresh particle is never
// already at the floor.
func Randomize(p *Particle, params Params, rng *rand.Rand, width, height float64) {
	p.X = rng.Float64() * width
	p.Y = rng.Float64() * height
	p.SpeedX = uniform(rng, -params.MaxSpeed, params.MaxSpeed)
	p.SpeedY = uniform(rng, -params.MaxSpeed, params.MaxSpeed)
	p.Opacity = params.Floor
	if params.MaxOpacity > params.Floor {
		p.Opacity += (1 - rng.Float64()) * (params.MaxOpacity - params.Floor)
	}
	p.Hue = uniform(rng, params.HueMin, params.HueMax)
}

// Attract steers p toward (px, py) by gain times the displacement when the
// point is closer than radius. It reports whether a pull was applied.
func Attract(p *Particle, px, py, radius, gain float64) bool {
	dx := px - p.X
	dy := py - p.Y
	if math.Hypot(dx, dy) >= radius {
		return false
	}
	p.SpeedX += dx * gain
	p.SpeedY += dy * gain
	return true
}

// Integrate advances the position by one frame of velocity.
func Integrate(p *Particle) {
	p.X += p.SpeedX
	p.Y += p.SpeedY
}

// Reflect inverts the velocity component of each axis whose coordinate left
// [0, dimension]. Position is not clamped.
func Reflect(p *Particle, width, height float64) {
	if p.X > width || p.X < 0 {
		p.SpeedX = -p.SpeedX
	}
	if p.Y > height || p.Y < 0 {
		p.SpeedY = -p.SpeedY
	}
}

// Decay lowers opacity by step, never below floor, and reports whether the
// floor was reached.
func Decay(p *Particle, step, floor float64) bool {
	p.Opacity = math.Max(floor, p.Opacity-step)
	return p.Opacity <= floor
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + rng.Float64()*(hi-lo)
}
