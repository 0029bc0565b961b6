// Package scene runs the particle simulation and draws it onto any Canvas.
// A Scene owns the config, the particle store and the pointer record; hosts
// feed it input and call Update and Draw once per frame.
package scene

import (
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/iburimskiy/particle-field/internal/config"
	"github.com/iburimskiy/particle-field/internal/particle"
)

// Pointer is the last known pointer or primary touch position.
type Pointer struct {
	X, Y   float64
	Active bool
}

// FrameStats summarizes one frame.
type FrameStats struct {
	Particles  int
	Resets     int
	Attracted  int
	PairChecks int
	Lines      int
	BudgetHit  bool
}

// Merge combines the update half and the draw half of a frame.
func (f FrameStats) Merge(o FrameStats) FrameStats {
	f.Particles = max(f.Particles, o.Particles)
	f.Resets += o.Resets
	f.Attracted += o.Attracted
	f.PairChecks += o.PairChecks
	f.Lines += o.Lines
	f.BudgetHit = f.BudgetHit || o.BudgetHit
	return f
}

// state is published as a unit so a frame never pairs a new config with an
// old store.
type state struct {
	cfg        *config.Config
	store      *particle.Store
	budget     int
	fixedColor colorful.Color
	lineColor  colorful.Color
}

type Scene struct {
	mu       sync.Mutex // serializes rebuilds
	seeds    *rand.Rand
	lowPower bool

	current   atomic.Pointer[state]
	pointer   atomic.Pointer[Pointer]
	glowBoost atomic.Uint64
}

type Option func(*Scene)

// WithRand seeds every store the scene builds from r.
func WithRand(r *rand.Rand) Option {
	return func(s *Scene) { s.seeds = r }
}

// WithLowPower marks the host as constrained; with AutoTier set, an
// unconfigured connection budget falls back to LowPowerBudget.
func WithLowPower(v bool) Option {
	return func(s *Scene) { s.lowPower = v }
}

// New builds a scene for a width x height canvas. The particle count comes
// from the config's breakpoint table.
func New(cfg *config.Config, width, height float64, opts ...Option) *Scene {
	s := &Scene{}
	for _, opt := range opts {
		opt(s)
	}
	if s.seeds == nil {
		s.seeds = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if cfg == nil {
		cfg = config.Default()
	}
	s.pointer.Store(&Pointer{})
	s.rebuild(func(*state) (*config.Config, float64, float64) {
		return cfg, width, height
	})
	return s
}

// Resize reinitializes the store for new canvas dimensions.
func (s *Scene) Resize(width, height float64) {
	s.rebuild(func(prev *state) (*config.Config, float64, float64) {
		return prev.cfg, width, height
	})
}

// Reconfigure applies a new config and reinitializes the store at the
// current dimensions.
func (s *Scene) Reconfigure(cfg *config.Config) {
	s.rebuild(func(prev *state) (*config.Config, float64, float64) {
		w, h := prev.store.Bounds()
		return cfg, w, h
	})
}

// rebuild creates the replacement store completely before publishing it.
// next derives the new config and bounds from the state published last; it
// runs under the rebuild lock so concurrent rebuilds never drop each other's
// changes. prev is nil on the first build.
func (s *Scene) rebuild(next func(prev *state) (cfg *config.Config, width, height float64)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, width, height := next(s.current.Load())
	if cfg == nil {
		cfg = config.Default()
	}

	rng := rand.New(rand.NewPCG(s.seeds.Uint64(), s.seeds.Uint64()))
	store := particle.NewStore(particle.ParamsFrom(cfg), rng)
	store.Initialize(cfg.Density.CountFor(int(width)), width, height)

	budget := cfg.Connections.Budget
	if budget == 0 && cfg.AutoTier && s.lowPower {
		budget = cfg.LowPowerBudget
	}

	s.current.Store(&state{
		cfg:        cfg,
		store:      store,
		budget:     budget,
		fixedColor: config.MustHex(cfg.Palette.Color),
		lineColor:  config.MustHex(cfg.Connections.Color),
	})
}

// Config is the config currently in effect.
func (s *Scene) Config() *config.Config { return s.current.Load().cfg }

// Budget is the effective per-frame connection budget, zero for unlimited.
func (s *Scene) Budget() int { return s.current.Load().budget }

// Bounds is the canvas extent the particles live in.
func (s *Scene) Bounds() (width, height float64) { return s.current.Load().store.Bounds() }

// Len is the number of particles.
func (s *Scene) Len() int { return s.current.Load().store.Len() }

// Particles returns a copy of the current particle state.
func (s *Scene) Particles() []particle.Particle { return s.current.Load().store.Snapshot() }

// Pointer returns the current pointer record.
func (s *Scene) Pointer() Pointer { return *s.pointer.Load() }

// PointerMove records a pointer position in canvas coordinates.
func (s *Scene) PointerMove(x, y float64) {
	s.pointer.Store(&Pointer{X: x, Y: y, Active: true})
}

// TouchStart records the primary contact point.
func (s *Scene) TouchStart(x, y float64) { s.PointerMove(x, y) }

// TouchMove tracks the primary contact point.
func (s *Scene) TouchMove(x, y float64) { s.PointerMove(x, y) }

// TouchEnd deactivates the pointer and keeps its last position.
func (s *Scene) TouchEnd() {
	p := *s.pointer.Load()
	p.Active = false
	s.pointer.Store(&p)
}

// SetGlowBoost scales the glow by (1 + GlowGain*level). level is clamped to [0, 1].
func (s *Scene) SetGlowBoost(level float64) {
	s.glowBoost.Store(math.Float64bits(clamp01(level)))
}

func (s *Scene) glowLevel() float64 {
	return math.Float64frombits(s.glowBoost.Load())
}

// Update advances every particle by one frame: pointer attraction,
// integration, edge reflection and opacity decay with reset at the floor.
func (s *Scene) Update() FrameStats {
	st := s.current.Load()
	ptr := s.pointer.Load()
	cfg := st.cfg
	w, h := st.store.Bounds()

	stats := FrameStats{Particles: st.store.Len()}
	attract := !cfg.Attraction.RequireActive || ptr.Active

	ps := st.store.Particles()
	for i := range ps {
		p := &ps[i]
		if attract && particle.Attract(p, ptr.X, ptr.Y, cfg.Attraction.Radius, cfg.Attraction.Gain) {
			stats.Attracted++
		}
		particle.Integrate(p)
		particle.Reflect(p, w, h)
		if particle.Decay(p, cfg.Particle.OpacityDecay, cfg.Particle.OpacityFloor) {
			st.store.Reset(i, w, h)
			stats.Resets++
		}
	}
	return stats
}
