package sim

import (
	"math"
	"sync"
)

// TimeStep is the fixed substep duration used by World.Advance, per
// spec.md §4.4.
const TimeStep = 0.1

// GameStatus is the World's monotonic lifecycle: On -> (Over | Draw),
// never back to On (spec.md §3, §8).
type GameStatus struct {
	kind     gameStatusKind
	winnerID uint64 // valid iff kind == GameStatusOver
}

type gameStatusKind int

const (
	GameStatusOn gameStatusKind = iota
	GameStatusOver
	GameStatusDraw
)

func (s GameStatus) Kind() gameStatusKind { return s.kind }
func (s GameStatus) WinnerID() uint64     { return s.winnerID }

// World owns the Map, the Agents, and the Projectiles, and is
// advanced in fixed substeps. All mutation and iteration goes through
// the single coarse mu (spec.md §4.4/§5): per-substep cost is low
// enough that a per-sector or per-shard index (as the teacher's
// sector/tree/single world packages implement for thousands of
// entities) would be pure overhead here — see DESIGN.md.
type World struct {
	mu          sync.Mutex
	m           *Map
	agents      []*Agent
	projectiles []*Projectile
	status      GameStatus
	elapsed     float64

	// onAdvance is invoked (outside mu) once per call to Advance that
	// performs at least one substep, so a history recorder can snapshot
	// the finished tick (spec.md §2 flow, "C7 is notified by C4 whenever
	// a tick finishes").
	onAdvance func(*World)
}

// NewWorld creates an empty, On-status World over the given Map.
func NewWorld(m *Map) *World {
	return &World{m: m, status: GameStatus{kind: GameStatusOn}}
}

// Map returns the World's immutable Map.
func (w *World) Map() *Map { return w.m }

// OnAdvance registers a callback fired after each Advance that runs at
// least one substep.
func (w *World) OnAdvance(fn func(*World)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onAdvance = fn
}

// Status returns the World's current game status.
func (w *World) Status() GameStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Elapsed returns total simulated time advanced so far, the sum of
// every substep actually run. The match controller reports it when the
// match concludes; history states are stamped with wall-clock time,
// not with this value.
func (w *World) Elapsed() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.elapsed
}

// Register appends a new Agent and binds its World back-reference
// (spec.md §4.4).
func (w *World) Register(a *Agent) {
	w.mu.Lock()
	defer w.mu.Unlock()
	a.mu.Lock()
	a.world = w
	a.mu.Unlock()
	w.agents = append(w.agents, a)
}

// spawnProjectile appends a Projectile at (x, y, direction) with the
// given speed, owned by ownerID (spec.md §3, "created at owner's
// current position when fire is invoked").
func (w *World) spawnProjectile(x, y, direction, speed float64, ownerID uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.projectiles = append(w.projectiles, &Projectile{
		ID:        nextID(),
		X:         x,
		Y:         y,
		Direction: direction,
		Speed:     speed,
		OwnerID:   ownerID,
	})
}

// Snapshot returns copies of the current agent and projectile states
// for read-only consumers (e.g. the history recorder) without holding
// mu for the duration of their use.
type AgentSnapshot struct {
	ID        uint64
	X, Y, R   float64
	Direction float64
	Status    Status
}

type ProjectileSnapshot struct {
	ID        uint64
	X, Y      float64
	Direction float64
	OwnerID   uint64
}

func (w *World) Snapshot() ([]AgentSnapshot, []ProjectileSnapshot) {
	w.mu.Lock()
	defer w.mu.Unlock()

	agents := make([]AgentSnapshot, len(w.agents))
	for i, a := range w.agents {
		a.mu.Lock()
		agents[i] = AgentSnapshot{ID: a.ID, X: a.X, Y: a.Y, R: a.R, Direction: a.Direction, Status: a.status}
		a.mu.Unlock()
	}

	projectiles := make([]ProjectileSnapshot, len(w.projectiles))
	for i, p := range w.projectiles {
		projectiles[i] = ProjectileSnapshot{ID: p.ID, X: p.X, Y: p.Y, Direction: p.Direction, OwnerID: p.OwnerID}
	}

	return agents, projectiles
}

// CastView computes a rays_amount-fan of distance readings from
// (x, y, r) centered on dir, ignoring the agent identified by
// casterID. Called by Agent.View with the World lock NOT yet held;
// CastView acquires it for the duration of the scan, since ray
// marching reads the Map and every other Agent's position.
func (w *World) CastView(x, y, r, dir, viewAngle float64, rays int, casterID uint64) []ViewHit {
	w.mu.Lock()
	defer w.mu.Unlock()

	hits := make([]ViewHit, rays)

	var delta float64
	if rays > 1 {
		delta = viewAngle / float64(rays-1)
	} else {
		delta = viewAngle
	}

	offsets := rayOffsets(rays)
	for i := 0; i < rays; i++ {
		rayDir := dir + offsets[i]*delta

		hit := castRay(w, x, y, rayDir, casterID)
		dist := Vec2f{X: x, Y: y}.Distance(hit.pos) - r

		var obj string
		switch hit.kind {
		case rayHitBorder:
			obj = ObjectBorder
		case rayHitBarrier:
			obj = ObjectBarrier
		case rayHitAgent:
			obj = ObjectEnemy
		}
		hits[i] = ViewHit{Object: obj, Distance: dist}
	}

	return hits
}

// rayOffsets computes the per-ray multiple of delta for a rays-wide
// fan centered on direction. The `i - rays/2` term is integer division
// by design (spec.md §4.3/§9): an odd rays_amount gives a symmetric
// fan, an even one does not. Do not "fix" the asymmetry.
func rayOffsets(rays int) []float64 {
	offsets := make([]float64, rays)
	for i := 0; i < rays; i++ {
		offsets[i] = float64(i - rays/2)
	}
	return offsets
}

// Advance performs the fixed-substep tick loop for a real-time delta
// dt, exactly per spec.md §4.4, including the documented
// substep-bookkeeping quirk in step 2 (remaining decrements by the
// full TimeStep, not by sub, so the final substep may be short).
func (w *World) Advance(dt float64) {
	w.mu.Lock()

	ran := false
	remaining := dt
	for remaining > 0 {
		sub := remaining
		if sub > TimeStep {
			sub = TimeStep
		}
		remaining -= TimeStep
		remaining = round4(remaining)

		ran = true
		w.elapsed = round4(w.elapsed + sub)
		if w.substep(sub) {
			break
		}
	}

	onAdvance := w.onAdvance
	w.mu.Unlock()

	if ran && onAdvance != nil {
		onAdvance(w)
	}
}

// substep performs one fixed-duration tick. Returns true if the game
// reached a terminal status and the advance loop should stop
// (spec.md §4.4 steps 3-8). Callers must hold w.mu.
func (w *World) substep(sub float64) bool {
	// Step 3: move agents and resolve border/barrier collisions.
	for _, a := range w.agents {
		a.mu.Lock()
		if a.status.kind == StatusInGame {
			w.moveAgentLocked(a, sub)
		}
		a.mu.Unlock()
	}

	// Step 4: count survivors and update game status.
	inGame := 0
	var survivor *Agent
	for _, a := range w.agents {
		a.mu.Lock()
		if a.status.kind == StatusInGame {
			inGame++
			survivor = a
		}
		a.mu.Unlock()
	}

	if inGame == 0 {
		w.status = GameStatus{kind: GameStatusDraw}
		return true
	}
	if inGame == 1 {
		survivor.mu.Lock()
		survivor.status = win
		survivor.mu.Unlock()
		w.status = GameStatus{kind: GameStatusOver, winnerID: survivor.ID}
		return true
	}

	// Step 5: advance projectiles.
	for _, p := range w.projectiles {
		step := headingVec2f(p.Direction)
		p.X += step.X * p.Speed * sub
		p.Y += step.Y * p.Speed * sub
	}

	// Step 6: drop projectiles that left the map.
	w.projectiles = filterProjectiles(w.projectiles, func(p *Projectile) bool {
		return p.X >= 0 && p.X <= w.m.Width && p.Y >= 0 && p.Y <= w.m.Height
	})

	// Step 7: drop projectiles that touched a barrier.
	w.projectiles = filterProjectiles(w.projectiles, func(p *Projectile) bool {
		for _, b := range w.m.Barriers {
			if math.Hypot(p.X-b.X, p.Y-b.Y) < b.R {
				return false
			}
		}
		return true
	})

	// Step 8: resolve projectile-agent hits. A projectile never harms
	// its owner and never kills more than one agent (first hit in
	// iteration order wins the tie), per spec.md §4.4/§8.
	w.projectiles = filterProjectiles(w.projectiles, func(p *Projectile) bool {
		for _, a := range w.agents {
			if a.ID == p.OwnerID {
				continue
			}
			a.mu.Lock()
			hit := a.status.kind == StatusInGame && math.Hypot(p.X-a.X, p.Y-a.Y) < a.R
			if hit {
				a.status = killedBy(p.OwnerID)
			}
			a.mu.Unlock()
			if hit {
				return false // projectile consumed
			}
		}
		return true
	})

	return false
}

// moveAgentLocked applies one substep of movement to a, clamping into
// the inner margin and reverting fully on any barrier overlap (spec.md
// §4.4 step 3). Callers must hold both w.mu and a.mu.
func (w *World) moveAgentLocked(a *Agent, sub float64) {
	step := headingVec2f(a.Direction)
	nextX := clampf(a.X+step.X*a.Speed*sub, a.R, w.m.Width-a.R)
	nextY := clampf(a.Y+step.Y*a.Speed*sub, a.R, w.m.Height-a.R)

	for _, b := range w.m.Barriers {
		if math.Hypot(nextX-b.X, nextY-b.Y) < a.R+b.R {
			// Movement is fully cancelled for this substep; collisions
			// are not slid along (spec.md §4.4 step 3).
			return
		}
	}

	a.X, a.Y = nextX, nextY
}

func filterProjectiles(ps []*Projectile, keep func(*Projectile) bool) []*Projectile {
	out := ps[:0]
	for _, p := range ps {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// round4 rounds to 4 decimal places, per spec.md §4.4 step 2.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
