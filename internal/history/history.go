// Package history implements C7: a recorder that snapshots the World
// after every advance and assembles the match's replay document
// (spec.md §3, §4.7, §6).
//
// Grounded on the teacher's server/chat_history.go for the shape of an
// append-only, lock-guarded recorder fed by callbacks from elsewhere
// in the system, and on server/jsoniter.go for the codec used to
// serialize the result; the actual History/State/Object schema is
// spec.md's own (§6), since the teacher has no equivalent replay
// format to generalize from.
package history

import (
	"sync"
	"time"

	"golang.org/x/exp/slices"

	"github.com/arenasim/server/internal/protocol"
	"github.com/arenasim/server/internal/sim"
)

// Object tags are spec.md §6's two kinds of recorded entity.
const (
	ObjectMissile = "missile"
	ObjectPlayer  = "player"
)

// Object is one entity's position within a recorded State, tagged by
// Kind per spec.md §3's "Objects tagged Missile{x,y,direction,id,
// owner_id} or Player{x,y,r,direction,id}": OwnerID is only meaningful
// for a missile, R only for a player, and each is omitted from the
// other's encoding.
type Object struct {
	Kind      string  `json:"object"`
	ID        uint64  `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Direction float64 `json:"direction"`
	OwnerID   uint64  `json:"owner_id,omitempty"`
	R         float64 `json:"r,omitempty"`
}

// State is one recorded tick: all projectiles, then all agents, at
// their positions as of a wall-clock timestamp (spec.md §3, "each State
// has a wall-clock timestamp (seconds since epoch)").
type State struct {
	Time    float64  `json:"time"`
	Objects []Object `json:"objects"`
}

// BarrierInfo is a barrier as recorded in the match's map header.
type BarrierInfo struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	R float64 `json:"r"`
}

// MapInfo is the map header recorded once per match (spec.md §6).
type MapInfo struct {
	Width    float64       `json:"width"`
	Height   float64       `json:"height"`
	Barriers []BarrierInfo `json:"barriers"`
	Seed     uint64        `json:"seed"`
}

// PlayerInfo is one roster entry as recorded in the replay (spec.md
// §6: "players: [{id, name, ip}...]").
type PlayerInfo struct {
	ID      uint64 `json:"id"`
	Name    string `json:"name"`
	Address string `json:"ip"`
}

// Document is the full replay written to disk or uploaded (spec.md
// §6).
type Document struct {
	Map     MapInfo      `json:"map"`
	History []State      `json:"history"`
	Players []PlayerInfo `json:"players"`
	Winner  *PlayerInfo  `json:"winner,omitempty"`
}

// Recorder accumulates match history behind a single lock; it is fed
// by sim.World's OnAdvance callback and by the match controller's
// roster/winner bookkeeping.
type Recorder struct {
	mu   sync.Mutex
	rate int
	tick int

	mapInfo MapInfo
	states  []State
	players []PlayerInfo
	winner  *PlayerInfo
}

// NewRecorder builds a Recorder for m, keeping 1-of-rate recorded
// ticks (spec.md §6, history_optimization_rate). rate < 1 is treated
// as 1 (record every tick).
func NewRecorder(m *sim.Map, rate int) *Recorder {
	if rate < 1 {
		rate = 1
	}

	barriers := make([]BarrierInfo, len(m.Barriers))
	for i, b := range m.Barriers {
		barriers[i] = BarrierInfo{X: b.X, Y: b.Y, R: b.R}
	}

	return &Recorder{
		rate: rate,
		mapInfo: MapInfo{
			Width:    m.Width,
			Height:   m.Height,
			Barriers: barriers,
			Seed:     m.Seed,
		},
	}
}

// RecordTick is called after every World.Advance that ran at least one
// substep. It decimates per history_optimization_rate and otherwise
// appends a State built from the World's current snapshot.
func (r *Recorder) RecordTick(w *sim.World) {
	r.mu.Lock()
	defer r.mu.Unlock()

	keep := r.tick%r.rate == 0
	r.tick++
	if !keep {
		return
	}

	agents, projectiles := w.Snapshot()

	objects := make([]Object, 0, len(agents)+len(projectiles))
	for _, p := range projectiles {
		objects = append(objects, Object{Kind: ObjectMissile, ID: p.ID, X: p.X, Y: p.Y, Direction: p.Direction, OwnerID: p.OwnerID})
	}
	for _, a := range agents {
		objects = append(objects, Object{Kind: ObjectPlayer, ID: a.ID, X: a.X, Y: a.Y, Direction: a.Direction, R: a.R})
	}

	now := float64(time.Now().UnixNano()) / 1e9
	r.states = append(r.states, State{Time: now, Objects: objects})
}

// AddPlayer records a roster entry as a session reaches Playing.
func (r *Recorder) AddPlayer(agentID uint64, name, address string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players = append(r.players, PlayerInfo{ID: agentID, Name: name, Address: address})
}

// SetWinner records the match's winner, appended to the replay after
// the match ends (spec.md §4.7, "Players roster and winner appended
// after match end").
func (r *Recorder) SetWinner(agentID uint64, name, address string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.winner = &PlayerInfo{ID: agentID, Name: name, Address: address}
}

// Document assembles the full replay document for serialization.
func (r *Recorder) Document() Document {
	r.mu.Lock()
	defer r.mu.Unlock()

	states := make([]State, len(r.states))
	copy(states, r.states)
	players := make([]PlayerInfo, len(r.players))
	copy(players, r.players)

	// Sessions join in whatever order their goroutines happen to reach
	// the Waiting barrier, which is not the match's participant order;
	// sort by agent id so two runs over the same recorded ticks produce
	// byte-identical replay documents.
	slices.SortFunc(players, func(a, b PlayerInfo) bool { return a.ID < b.ID })

	return Document{
		Map:     r.mapInfo,
		History: states,
		Players: players,
		Winner:  r.winner,
	}
}

// Marshal serializes the replay document with the shared protocol
// codec (spec.md §6 gives the exact JSON shape; protocol.JSON gives
// the deterministic, sorted-key encoding the teacher uses throughout).
func (r *Recorder) Marshal() ([]byte, error) {
	return protocol.JSON.Marshal(r.Document())
}
