package particle

import "math/rand/v2"

// Store is a fixed-capacity pool of particles. Indices are stable between
// initializations; individual particles are reset in place, never removed.
type Store struct {
	params        Params
	rng           *rand.Rand
	width, height float64
	particles     []Particle
}

// NewStore returns an empty store. rng drives every random draw, so a seeded
// source reproduces the same animation.
func NewStore(params Params, rng *rand.Rand) *Store {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Store{params: params, rng: rng}
}

// Initialize discards all particles and creates exactly count new ones
// spread over a width x height canvas. A negative count yields an empty store.
func (s *Store) Initialize(count int, width, height float64) {
	count = max(count, 0)
	s.width, s.height = width, height
	if cap(s.particles) >= count {
		s.particles = s.particles[:count]
	} else {
		s.particles = make([]Particle, count)
	}
	for i := range s.particles {
		s.particles[i] = Particle{}
		Spawn(&s.particles[i], s.params, s.rng, width, height)
	}
}

// Reset re-randomizes particle i for a width x height canvas. Out-of-range
// indices are ignored.
func (s *Store) Reset(i int, width, height float64) {
	if i < 0 || i >= len(s.particles) {
		return
	}
	Randomize(&s.particles[i], s.params, s.rng, width, height)
}

// Len is the number of particles in the pool.
func (s *Store) Len() int { return len(s.particles) }

// Particles exposes the backing slice for in-place updates. Its length never
// changes outside Initialize.
func (s *Store) Particles() []Particle { return s.particles }

// Bounds is the canvas extent the store was last initialized for.
func (s *Store) Bounds() (width, height float64) { return s.width, s.height }

// Snapshot copies the current particle state.
func (s *Store) Snapshot() []Particle {
	out := make([]Particle, len(s.particles))
	copy(out, s.particles)
	return out
}
