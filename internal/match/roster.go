package match

import "sync"

// rosterEntry is what the match controller remembers about a
// connected player, independent of their Agent (spec.md §4.6: "a
// name/address registry keyed by agent id").
type rosterEntry struct {
	Name    string
	Address string
}

// roster is the name/address registry, guarded by its own lock per
// spec.md §5 ("Name registry, winner cell, participant counter: each
// its own lock or atomic").
type roster struct {
	mu      sync.Mutex
	byAgent map[uint64]rosterEntry
}

func newRoster() *roster {
	return &roster{byAgent: make(map[uint64]rosterEntry)}
}

func (r *roster) add(agentID uint64, name, address string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byAgent[agentID] = rosterEntry{Name: name, Address: address}
}

func (r *roster) lookup(agentID uint64) (rosterEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byAgent[agentID]
	return e, ok
}

func (r *roster) all() map[uint64]rosterEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[uint64]rosterEntry, len(r.byAgent))
	for k, v := range r.byAgent {
		out[k] = v
	}
	return out
}
