package sim

// Projectile is a moving disc with constant velocity owned by the
// firing agent (spec.md §3). It is never mutated concurrently from
// outside World.Advance, which already runs under the World lock, so
// it needs no lock of its own.
type Projectile struct {
	ID        uint64
	X, Y      float64
	Direction float64 // degrees, fixed at launch
	Speed     float64
	OwnerID   uint64
}
