package sim

import (
	"crypto/rand"
	mathrand "math/rand"
)

// Barrier is a static circular obstacle. Never mutates after creation.
type Barrier struct {
	X, Y, R float64
}

// Map is immutable after GenerateMap returns. Barriers may overlap one
// another; only Agents are kept clear of them (spec.md §4.1).
type Map struct {
	Width, Height float64
	Barriers      []Barrier
	Seed          uint64
}

// GenerateMap produces a reproducible Map: for a given (seed, width,
// height, count, maxRadius) the returned barriers are always identical
// (spec.md §8, "For all seeds S and parameter tuples P, generate(P,S)
// produces an identical Map across runs").
//
// If seed is nil, a random 64-bit seed is drawn from system entropy
// and recorded in the returned Map so a later replay can reproduce it
// (spec.md §4.1).
func GenerateMap(width, height float64, count int, maxRadius float64, seed *uint64) *Map {
	var s uint64
	if seed != nil {
		s = *seed
	} else {
		s = randomSeed()
	}

	positions := mathrand.New(mathrand.NewSource(int64(s)))
	noise := newNoiseField(s)

	barriers := make([]Barrier, count)
	for i := range barriers {
		x := positions.Float64() * width
		y := positions.Float64() * height
		r := radiusFrom(noise.sample(x, y), maxRadius)
		barriers[i] = Barrier{X: x, Y: y, R: r}
	}

	return &Map{Width: width, Height: height, Barriers: barriers, Seed: s}
}

// randomSeed draws a seed from system entropy (crypto/rand), the one
// genuinely nondeterministic input the spec permits into Map
// generation (spec.md §4.1: "a random 64-bit seed is drawn from system
// entropy").
func randomSeed() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// Entropy source failure is a configuration-class error; a seed
		// is still required to proceed, so fall back to math/rand's
		// global source rather than blocking server startup.
		return uint64(mathrand.Int63())
	}
	var s uint64
	for _, b := range buf {
		s = s<<8 | uint64(b)
	}
	return s
}

// clearsAllBarriers reports whether (x, y) with radius r overlaps no
// barrier. spec.md §9 / §4.1 calls out that the accept predicate must
// be conjunctive across every barrier, not "first non-colliding
// barrier wins" — a common, incorrect simplification.
func (m *Map) clearsAllBarriers(x, y, r float64) bool {
	for _, b := range m.Barriers {
		if (Vec2f{X: x, Y: y}).Distance(Vec2f{X: b.X, Y: b.Y}) < r+b.R {
			return false
		}
	}
	return true
}

// FreePoint rejection-samples an (x, y) admissible as an agent center
// of radius r: inside the inner margin and clear of every barrier
// (spec.md §4.1). If the map has zero barriers, the first sample is
// accepted per the spec's documented edge case.
//
// FreePoint uses its own RNG rather than the Map's positional RNG,
// since free-point sampling is explicitly not required to be
// deterministic (spec.md §9).
func (m *Map) FreePoint(r float64) (x, y float64) {
	rng := mathrand.New(mathrand.NewSource(mathrand.Int63()))
	for {
		x = r + rng.Float64()*(m.Width-2*r)
		y = r + rng.Float64()*(m.Height-2*r)
		if len(m.Barriers) == 0 || m.clearsAllBarriers(x, y, r) {
			return
		}
	}
}
