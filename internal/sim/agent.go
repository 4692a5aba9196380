package sim

import "sync"

// Status is the lifecycle state of an Agent, a tagged sum per
// spec.md §9 rather than a class hierarchy.
type Status struct {
	kind     statusKind
	killerID uint64 // valid iff kind == StatusKilled
}

type statusKind int

const (
	StatusInGame statusKind = iota
	StatusWin
	StatusKilled
)

func (s Status) Kind() statusKind { return s.kind }

// KillerID returns the id of the agent that killed this one. Only
// meaningful when Kind() == StatusKilled.
func (s Status) KillerID() uint64 { return s.killerID }

var inGame = Status{kind: StatusInGame}
var win = Status{kind: StatusWin}

func killedBy(id uint64) Status {
	return Status{kind: StatusKilled, killerID: id}
}

// Agent is a player-controlled circular entity. All mutable kinematic
// and lifecycle fields are guarded by mu (spec.md §5, "Per-agent
// state: a second mutual-exclusion lock per Agent").
//
// world is a non-owning back-reference, nil until World.Register binds
// it and never cleared afterwards; callers must hold mu before reading
// it (spec.md §9, "back-reference from
// Agent to World... If the upgrade fails, fire() and view() are
// no-ops").
type Agent struct {
	ID uint64

	mu        sync.Mutex
	X, Y      float64
	R         float64
	Direction float64 // degrees, unbounded, no wrapping (spec.md §3)
	Speed     float64
	MaxSpeed  float64

	ViewAngle    float64
	RaysAmount   int
	MissileSpeed float64

	status Status
	world  *World
}

// NewAgent constructs an InGame agent at the given position, not yet
// bound to a World (spec.md §3).
func NewAgent(x, y, r, maxSpeed, viewAngle float64, raysAmount int, missileSpeed float64) *Agent {
	return &Agent{
		ID:           nextID(),
		X:            x,
		Y:            y,
		R:            r,
		MaxSpeed:     maxSpeed,
		ViewAngle:    viewAngle,
		RaysAmount:   raysAmount,
		MissileSpeed: missileSpeed,
		status:       inGame,
	}
}

// Status returns the agent's current lifecycle status.
func (a *Agent) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// Position returns the agent's current center.
func (a *Agent) Position() (x, y float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.X, a.Y
}

// Rotate adds angle degrees to the agent's direction. No wrapping:
// direction is an unbounded real (spec.md §4.3).
func (a *Agent) Rotate(angle float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Direction += angle
}

// SetSpeed clamps v into [0, MaxSpeed]. The spec tightens the
// historical behavior (which stored negative inputs as-is) to always
// clamp at zero (spec.md §4.3, §9).
func (a *Agent) SetSpeed(v float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Speed = clampf(v, 0, a.MaxSpeed)
}

// Fire appends a new Projectile to the owning World at the agent's
// current position and heading. No-op if the agent is not InGame or
// has no world bound (spec.md §4.3).
func (a *Agent) Fire() {
	a.mu.Lock()
	if a.status.kind != StatusInGame || a.world == nil {
		a.mu.Unlock()
		return
	}
	x, y, dir, speed, world := a.X, a.Y, a.Direction, a.MissileSpeed, a.world
	a.mu.Unlock()

	world.spawnProjectile(x, y, dir, speed, a.ID)
}

// ViewHit is one ray's classified distance reading, emitted to the
// client (spec.md §4.3, §6).
type ViewHit struct {
	Object   string
	Distance float64
}

const (
	ObjectBorder  = "BORDER"
	ObjectBarrier = "BARRIER"
	ObjectEnemy   = "ENEMY"
)

// View computes the rays_amount-fan centered on the agent's direction
// and casts each ray through the world, per spec.md §4.3. Returns nil
// if the agent is not bound to a World.
func (a *Agent) View() []ViewHit {
	a.mu.Lock()
	if a.world == nil {
		a.mu.Unlock()
		return nil
	}
	x, y, r, dir, viewAngle, rays, world := a.X, a.Y, a.R, a.Direction, a.ViewAngle, a.RaysAmount, a.world
	id := a.ID
	a.mu.Unlock()

	return world.CastView(x, y, r, dir, viewAngle, rays, id)
}
