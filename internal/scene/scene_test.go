package scene

import (
	"math"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/particle-field/internal/config"
	"github.com/iburimskiy/particle-field/internal/particle"
)

type call struct {
	op             string
	x0, y0, x1, y1 float64
	paint          Paint
}

// recorder is a Canvas that keeps every draw call.
type recorder struct {
	w, h  float64
	calls []call
}

func (r *recorder) Bounds() (float64, float64) { return r.w, r.h }

func (r *recorder) FillRect(x, y, w, h float64, p Paint) {
	r.calls = append(r.calls, call{"rect", x, y, w, h, p})
}

func (r *recorder) FillCircle(cx, cy, rad float64, p Paint) {
	r.calls = append(r.calls, call{"circle", cx, cy, rad, 0, p})
}

func (r *recorder) StrokeLine(x0, y0, x1, y1 float64, p Paint) {
	r.calls = append(r.calls, call{"line", x0, y0, x1, y1, p})
}

func (r *recorder) count(op string) int {
	n := 0
	for _, c := range r.calls {
		if c.op == op {
			n++
		}
	}
	return n
}

func fixedCount(n int) *config.Config {
	cfg := config.Default()
	cfg.Density = config.Density{{Count: n}}
	return cfg
}

func seeded(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed+1)))
}

func TestThreeParticlesNoPointer(t *testing.T) {
	cfg := fixedCount(3)
	cfg.Attraction.RequireActive = true
	s := New(cfg, 100, 100, seeded(1))
	require.Equal(t, 3, s.Len())

	before := s.Particles()
	stats := s.Update()
	after := s.Particles()
	assert.Zero(t, stats.Attracted)

	floor := cfg.Particle.OpacityFloor
	for i := range before {
		if before[i].Opacity-cfg.Particle.OpacityDecay <= floor {
			continue // reset in place this frame
		}
		b, a := before[i], after[i]
		assert.InDelta(t, b.X+b.SpeedX, a.X, 1e-12)
		assert.InDelta(t, b.Y+b.SpeedY, a.Y, 1e-12)

		wantVX, wantVY := b.SpeedX, b.SpeedY
		if a.X < 0 || a.X > 100 {
			wantVX = -wantVX
		}
		if a.Y < 0 || a.Y > 100 {
			wantVY = -wantVY
		}
		assert.Equal(t, wantVX, a.SpeedX)
		assert.Equal(t, wantVY, a.SpeedY)
		assert.Equal(t, b.Size, a.Size)
	}
}

func TestInactivePointerStillPullsFromOrigin(t *testing.T) {
	cfg := fixedCount(200)
	s := New(cfg, 150, 150, seeded(2))

	var near int
	for _, p := range s.Particles() {
		if math.Hypot(p.X, p.Y) < cfg.Attraction.Radius {
			near++
		}
	}
	require.NotZero(t, near)
	assert.Equal(t, near, s.Update().Attracted)

	gated := fixedCount(200)
	gated.Attraction.RequireActive = true
	s = New(gated, 150, 150, seeded(2))
	assert.Zero(t, s.Update().Attracted)
}

func TestPointerAttraction(t *testing.T) {
	cfg := fixedCount(50)
	cfg.Attraction.RequireActive = true
	cfg.Particle.OpacityDecay = 0
	s := New(cfg, 400, 400, seeded(3))
	before := s.Particles()

	s.PointerMove(200, 200)
	s.Update()
	after := s.Particles()

	for i := range before {
		dx, dy := 200-before[i].X, 200-before[i].Y
		wantVX, wantVY := before[i].SpeedX, before[i].SpeedY
		if math.Hypot(dx, dy) < cfg.Attraction.Radius {
			wantVX += dx * cfg.Attraction.Gain
			wantVY += dy * cfg.Attraction.Gain
		}
		assert.InDelta(t, before[i].X+wantVX, after[i].X, 1e-9)
		assert.InDelta(t, before[i].Y+wantVY, after[i].Y, 1e-9)
	}
}

func TestOpacityStaysInRange(t *testing.T) {
	cfg := fixedCount(60)
	s := New(cfg, 300, 200, seeded(4))
	floor, top := cfg.Particle.OpacityFloor, cfg.Particle.MaxOpacity

	resets := 0
	for range 1500 {
		resets += s.Update().Resets
		for i, p := range s.Particles() {
			require.GreaterOrEqual(t, p.Opacity, floor, "particle %d", i)
			require.LessOrEqual(t, p.Opacity, top, "particle %d", i)
			require.Greater(t, p.Opacity, floor, "particle %d left at the floor", i)
		}
	}
	assert.NotZero(t, resets)
}

func TestPositionsStayNearBounds(t *testing.T) {
	cfg := fixedCount(80)
	cfg.Attraction.RequireActive = true
	s := New(cfg, 120, 90, seeded(5))
	slack := cfg.Particle.MaxSpeed + 1e-9

	for range 2000 {
		s.Update()
		for i, p := range s.Particles() {
			require.True(t, p.X >= -slack && p.X <= 120+slack, "particle %d x=%v", i, p.X)
			require.True(t, p.Y >= -slack && p.Y <= 90+slack, "particle %d y=%v", i, p.Y)
		}
	}
}

func TestReinitializeKeepsCount(t *testing.T) {
	s := New(fixedCount(42), 640, 480, seeded(6))
	for range 5 {
		s.Resize(640, 480)
		assert.Equal(t, 42, s.Len())
	}
}

func TestResizeFollowsBreakpoints(t *testing.T) {
	s := New(config.Default(), 1200, 800, seeded(7))
	wide := s.Len()
	assert.Equal(t, config.DefaultParticleCount, wide)

	s.Resize(500, 800)
	assert.Less(t, s.Len(), wide)
	assert.Equal(t, 70, s.Len())
	w, h := s.Bounds()
	assert.Equal(t, 500.0, w)
	assert.Equal(t, 800.0, h)

	s.Resize(320, 480)
	assert.Equal(t, 40, s.Len())

	s.Resize(-10, -10)
	assert.GreaterOrEqual(t, s.Len(), 0)
}

func TestZeroParticles(t *testing.T) {
	s := New(fixedCount(0), 200, 200, seeded(8))
	assert.Equal(t, FrameStats{}, s.Update())

	rec := &recorder{w: 200, h: 200}
	stats := s.Draw(rec)
	assert.Equal(t, 1, len(rec.calls))
	assert.Equal(t, "rect", rec.calls[0].op)
	assert.Zero(t, stats.Lines)
}

func TestDrawOrderAndGlow(t *testing.T) {
	cfg := fixedCount(5)
	cfg.Connections.Distance = 0
	s := New(cfg, 200, 100, seeded(9))
	rec := &recorder{w: 200, h: 100}
	s.Draw(rec)

	require.Len(t, rec.calls, 1+2*5)
	fade := rec.calls[0]
	assert.Equal(t, "rect", fade.op)
	assert.Equal(t, [4]float64{0, 0, 200, 100}, [4]float64{fade.x0, fade.y0, fade.x1, fade.y1})
	assert.Equal(t, cfg.TrailAlpha, fade.paint.Alpha)

	ps := s.Particles()
	for i, p := range ps {
		plain, glow := rec.calls[1+2*i], rec.calls[2+2*i]
		assert.Equal(t, "circle", plain.op)
		assert.Equal(t, p.X, plain.x0)
		assert.Equal(t, p.Size, plain.x1)
		assert.Equal(t, p.Opacity, plain.paint.Alpha)
		assert.Zero(t, plain.paint.ShadowBlur)

		assert.Equal(t, cfg.GlowBlur, glow.paint.ShadowBlur)
		assert.Equal(t, plain.paint.Color, glow.paint.Color)
		assert.Equal(t, plain.paint.Color, glow.paint.ShadowColor)
	}
}

func TestGlowBoost(t *testing.T) {
	cfg := fixedCount(1)
	cfg.Connections.Distance = 0
	s := New(cfg, 50, 50, seeded(10))

	s.SetGlowBoost(1)
	rec := &recorder{w: 50, h: 50}
	s.Draw(rec)
	assert.InDelta(t, cfg.GlowBlur*(1+cfg.Ambience.GlowGain), rec.calls[2].paint.ShadowBlur, 1e-9)

	s.SetGlowBoost(7)
	rec = &recorder{w: 50, h: 50}
	s.Draw(rec)
	assert.InDelta(t, cfg.GlowBlur*(1+cfg.Ambience.GlowGain), rec.calls[2].paint.ShadowBlur, 1e-9, "level is clamped")
}

func TestFixedPalette(t *testing.T) {
	cfg := fixedCount(3)
	cfg.Palette.Mode = "fixed"
	cfg.Palette.Color = "#ff0000"
	cfg.Connections.Distance = 0
	s := New(cfg, 50, 50, seeded(11))

	rec := &recorder{w: 50, h: 50}
	s.Draw(rec)
	for _, c := range rec.calls[1:] {
		r, g, b, _ := RGBA8(c.paint.Color, 1)
		assert.Equal(t, [3]uint8{255, 0, 0}, [3]uint8{r, g, b})
	}
}

func TestConnectThreshold(t *testing.T) {
	ps := []particle.Particle{
		{X: 0, Y: 0},
		{X: 60, Y: 0},  // 60 from #0
		{X: 0, Y: 100}, // 100 from #0, ~116.6 from #1
		{X: 300, Y: 0}, // far from everyone
		{X: 0, Y: 240}, // 140 from #2
	}
	rec := &recorder{}
	stats := connect(rec, ps, 120, 0.3, 0, config.MustHex("#00ff88"))

	assert.Equal(t, 10, stats.PairChecks)
	require.Equal(t, 3, stats.Lines)
	assert.False(t, stats.BudgetHit)

	pairs := [][4]float64{}
	for _, c := range rec.calls {
		pairs = append(pairs, [4]float64{c.x0, c.y0, c.x1, c.y1})
	}
	assert.Equal(t, [][4]float64{
		{0, 0, 60, 0},
		{0, 0, 0, 100},
		{60, 0, 0, 100},
	}, pairs)

	first := rec.calls[0].paint
	assert.InDelta(t, 0.3*0.5, first.Alpha, 1e-12)
	assert.InDelta(t, 1.5, first.LineWidth, 1e-12)
	assert.Greater(t, first.Alpha, rec.calls[1].paint.Alpha, "closer pairs draw brighter")
}

func TestConnectBudget(t *testing.T) {
	ps := make([]particle.Particle, 6)
	for i := range ps {
		ps[i] = particle.Particle{X: float64(i), Y: 0}
	}
	rec := &recorder{}
	stats := connect(rec, ps, 120, 0.3, 4, colorful.Color{})

	assert.Equal(t, 4, stats.Lines)
	assert.True(t, stats.BudgetHit)
	assert.Equal(t, 4, stats.PairChecks, "scan exits as soon as the budget is spent")
	for _, c := range rec.calls {
		assert.Equal(t, 0.0, c.x0, "index-ascending: all lines start at particle 0")
	}
}

func TestLowPowerBudget(t *testing.T) {
	cfg := fixedCount(10)
	s := New(cfg, 100, 100, WithLowPower(true))
	assert.Equal(t, cfg.LowPowerBudget, s.Budget())

	cfg = fixedCount(10)
	cfg.Connections.Budget = 20
	s = New(cfg, 100, 100, WithLowPower(true))
	assert.Equal(t, 20, s.Budget())

	cfg = fixedCount(10)
	cfg.AutoTier = false
	s = New(cfg, 100, 100, WithLowPower(true))
	assert.Zero(t, s.Budget())
}

func TestTouchLifecycle(t *testing.T) {
	s := New(fixedCount(1), 100, 100)
	assert.Equal(t, Pointer{}, s.Pointer())

	s.TouchStart(10, 20)
	assert.Equal(t, Pointer{X: 10, Y: 20, Active: true}, s.Pointer())
	s.TouchMove(30, 40)
	assert.Equal(t, Pointer{X: 30, Y: 40, Active: true}, s.Pointer())
	s.TouchEnd()
	assert.Equal(t, Pointer{X: 30, Y: 40, Active: false}, s.Pointer())
}

func TestReconfigure(t *testing.T) {
	s := New(fixedCount(10), 300, 300, seeded(12))
	next := fixedCount(25)
	next.TrailAlpha = 0.3
	s.Reconfigure(next)

	assert.Equal(t, 25, s.Len())
	assert.Same(t, next, s.Config())
	w, h := s.Bounds()
	assert.Equal(t, [2]float64{300, 300}, [2]float64{w, h})
}

func TestConcurrentResizeAndReconfigureKeepBoth(t *testing.T) {
	for i := range 100 {
		s := New(fixedCount(10), 300, 300, seeded(uint64(i)))
		next := fixedCount(20)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Resize(640, 480)
		}()
		go func() {
			defer wg.Done()
			s.Reconfigure(next)
		}()
		wg.Wait()

		w, h := s.Bounds()
		require.Equal(t, [2]float64{640, 480}, [2]float64{w, h}, "resize lost in round %d", i)
		require.Same(t, next, s.Config(), "reconfigure lost in round %d", i)
		require.Equal(t, 20, s.Len())
	}
}

func TestResizeDuringFrames(t *testing.T) {
	s := New(fixedCount(30), 200, 200, seeded(13))
	rec := &recorder{w: 200, h: 200}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range 50 {
			s.Resize(float64(100+i), 200)
		}
	}()
	for range 50 {
		s.Update()
		rec.calls = rec.calls[:0]
		s.Draw(rec)
		assert.Equal(t, 30, s.Len())
	}
	wg.Wait()
}

func TestFrameStatsMerge(t *testing.T) {
	a := FrameStats{Particles: 3, Resets: 1, Attracted: 2}
	b := FrameStats{Particles: 3, PairChecks: 3, Lines: 2, BudgetHit: true}
	assert.Equal(t, FrameStats{Particles: 3, Resets: 1, Attracted: 2, PairChecks: 3, Lines: 2, BudgetHit: true}, a.Merge(b))
}

func TestHalo(t *testing.T) {
	assert.Nil(t, Halo(2, 0, 0.5, 4))
	assert.Nil(t, Halo(2, 10, 0.5, 0))

	rings := Halo(2, 10, 0.5, 4)
	require.Len(t, rings, 4)
	assert.Equal(t, 4.5, rings[0].Radius)
	assert.Equal(t, 12.0, rings[3].Radius)
	assert.Zero(t, rings[3].Alpha)
	for i := 1; i < len(rings); i++ {
		assert.Greater(t, rings[i].Radius, rings[i-1].Radius)
		assert.Less(t, rings[i].Alpha, rings[i-1].Alpha)
	}
}
