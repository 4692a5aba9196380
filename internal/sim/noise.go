package sim

import "github.com/aquilax/go-perlin"

// noiseScale converts map-space coordinates into the frequency domain
// sampled by the noise field, per spec.md §4.1.
const noiseScale = 0.1

// noiseField is a seeded, deterministic 2D value-noise function used
// to derive barrier radii from position: identical (seed, position)
// pairs always produce the identical radius (spec.md §3, Map
// invariant).
//
// Grounded on the teacher's server/terrain/noise/noise.go, which wraps
// github.com/aquilax/go-perlin the same way to turn a seed into a
// terrain heightmap; here it drives barrier radii instead of terrain
// height.
type noiseField struct {
	p *perlin.Perlin
}

// newNoiseField builds a noise field keyed by the low 32 bits of a
// map seed, per spec.md §4.1 ("an independent 2D value-noise...
// function is keyed by seed's low 32 bits").
func newNoiseField(seed uint64) *noiseField {
	// alpha/beta/n mirror the teacher's single-octave landLo generator;
	// barrier radii need one smooth octave, not a multi-octave terrain.
	const alpha, beta, n = 2.0, 2.0, 1
	return &noiseField{p: perlin.NewPerlin(alpha, beta, n, int64(uint32(seed)))}
}

// sample returns a value in [-1, 1] for the given map-space position.
func (nf *noiseField) sample(x, y float64) float64 {
	return nf.p.Noise2D(x*noiseScale, y*noiseScale)
}

// radiusFrom maps a noise sample into [0, maxRadius], per spec.md
// §4.1's "r = (n+1)/2 * max_barrier_radius".
func radiusFrom(n, maxRadius float64) float64 {
	return (n + 1) / 2 * maxRadius
}
