package sim

import "sync/atomic"

// idCounter is the process-wide monotonically increasing id source
// shared by agents and projectiles, per spec.md §9's explicit "atomic
// monotonic id counter (sync/atomic, relaxed)" instruction: uniqueness,
// not cross-producer ordering, is all a match's ids need.
var idCounter atomic.Uint64

// nextID returns a fresh, never-repeated identifier.
func nextID() uint64 {
	return idCounter.Add(1)
}
