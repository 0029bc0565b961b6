package particle

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/particle-field/internal/config"
)

func testParams() Params {
	return ParamsFrom(config.Default())
}

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestInitializeCount(t *testing.T) {
	s := NewStore(testParams(), seeded())
	for _, n := range []int{0, 1, 3, 120, 7} {
		s.Initialize(n, 800, 600)
		assert.Equal(t, n, s.Len())
	}

	s.Initialize(-5, 800, 600)
	assert.Equal(t, 0, s.Len())
}

func TestInitializeRanges(t *testing.T) {
	params := testParams()
	s := NewStore(params, seeded())
	s.Initialize(500, 320, 240)

	for i, p := range s.Particles() {
		assert.GreaterOrEqual(t, p.X, 0.0, "particle %d", i)
		assert.Less(t, p.X, 320.0, "particle %d", i)
		assert.GreaterOrEqual(t, p.Y, 0.0, "particle %d", i)
		assert.Less(t, p.Y, 240.0, "particle %d", i)
		assert.InDelta(t, 0, p.SpeedX, params.MaxSpeed)
		assert.InDelta(t, 0, p.SpeedY, params.MaxSpeed)
		assert.GreaterOrEqual(t, p.Size, params.MinSize)
		assert.LessOrEqual(t, p.Size, params.MaxSize)
		assert.Greater(t, p.Opacity, params.Floor)
		assert.LessOrEqual(t, p.Opacity, params.MaxOpacity)
		assert.GreaterOrEqual(t, p.Hue, params.HueMin)
		assert.LessOrEqual(t, p.Hue, params.HueMax)
	}
}

func TestInitializeDiscardsPrevious(t *testing.T) {
	s := NewStore(testParams(), seeded())
	s.Initialize(10, 100, 100)
	before := s.Snapshot()

	s.Initialize(10, 100, 100)
	assert.Equal(t, 10, s.Len())
	assert.NotEqual(t, before, s.Snapshot())
}

func TestResetKeepsSize(t *testing.T) {
	s := NewStore(testParams(), seeded())
	s.Initialize(4, 200, 200)
	p := &s.Particles()[2]
	size := p.Size
	p.Opacity = 0.1
	p.X, p.Y = -40, 999

	s.Reset(2, 200, 200)
	assert.Equal(t, size, p.Size)
	assert.Greater(t, p.Opacity, 0.1)
	assert.True(t, p.X >= 0 && p.X < 200)
	assert.True(t, p.Y >= 0 && p.Y < 200)

	// out of range is a no-op
	s.Reset(-1, 200, 200)
	s.Reset(4, 200, 200)
	assert.Equal(t, 4, s.Len())
}

func TestSeededStoresMatch(t *testing.T) {
	a := NewStore(testParams(), rand.New(rand.NewPCG(9, 9)))
	b := NewStore(testParams(), rand.New(rand.NewPCG(9, 9)))
	a.Initialize(25, 640, 480)
	b.Initialize(25, 640, 480)
	assert.Equal(t, a.Snapshot(), b.Snapshot())
}

func TestAttract(t *testing.T) {
	tests := []struct {
		name       string
		px, py     float64
		wantPulled bool
		wantSpeedX float64
		wantSpeedY float64
	}{
		{"inside radius", 60, 50, true, 0.1, 0},
		{"on radius edge", 150, 50, false, 0, 0},
		{"far away", 500, 500, false, 0, 0},
		{"diagonal", 40, 30, true, -0.1, -0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Particle{X: 50, Y: 50}
			pulled := Attract(&p, tt.px, tt.py, 100, 0.01)
			assert.Equal(t, tt.wantPulled, pulled)
			assert.InDelta(t, tt.wantSpeedX, p.SpeedX, 1e-12)
			assert.InDelta(t, tt.wantSpeedY, p.SpeedY, 1e-12)
		})
	}
}

func TestIntegrateAndReflect(t *testing.T) {
	p := Particle{X: 99.8, Y: 0.2, SpeedX: 0.4, SpeedY: -0.3}
	Integrate(&p)
	require.InDelta(t, 100.2, p.X, 1e-9)
	require.InDelta(t, -0.1, p.Y, 1e-9)

	Reflect(&p, 100, 100)
	assert.Equal(t, -0.4, p.SpeedX)
	assert.Equal(t, 0.3, p.SpeedY)
	// overshoot is not clamped
	assert.InDelta(t, 100.2, p.X, 1e-9)

	Integrate(&p)
	Reflect(&p, 100, 100)
	assert.Equal(t, -0.4, p.SpeedX, "back inside: no second inversion")
	assert.Equal(t, 0.3, p.SpeedY)
}

func TestDecay(t *testing.T) {
	p := Particle{Opacity: 0.105}
	assert.False(t, Decay(&p, 0.002, 0.1))
	assert.InDelta(t, 0.103, p.Opacity, 1e-12)

	assert.False(t, Decay(&p, 0.002, 0.1))
	assert.True(t, Decay(&p, 0.002, 0.1))
	assert.Equal(t, 0.1, p.Opacity)
}
