// Package match implements the per-client session state machine (C5)
// and the match controller that fans sessions into one shared World
// (C6), per spec.md §4.5/§4.6.
//
// Grounded on the teacher's server/hub.go (accept/run loop shape,
// signal-driven shutdown) and server_main/main.go (golang.org/x/net/
// netutil.LimitListener to cap raw inbound connections), adapted from
// a continuously-ticking broadcast hub to a request/response
// controller: spec.md has no independent tick, so there is no
// world-wide ticker here — each Session drives its own World.Advance.
package match

import (
	"context"
	"errors"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/net/netutil"

	"github.com/arenasim/server/internal/history"
	"github.com/arenasim/server/internal/sim"
)

// acceptPollPeriod bounds how long Accept blocks before the controller
// rechecks its shutdown signal, grounded on the teacher's hub.go event
// loop and on spec.md §5 ("the accept loop polls a termination flag
// between non-blocking accepts, with a short sleep").
const acceptPollPeriod = 200 * time.Millisecond

// Options configures a Controller. Every field except MaxConnections
// corresponds to the environment-variable table in spec.md §6;
// MaxConnections is set by the caller (cmd/server derives it from
// PlayersAmount). internal/config is the only place that reads the
// environment itself.
type Options struct {
	Host string

	MapWidth            float64
	MapHeight           float64
	MapBarriersAmount   int
	MapMaxBarrierRadius float64
	MapSeed             *uint64

	PlayerRadius       float64
	PlayerMaxSpeed     float64
	PlayerViewAngle    float64
	PlayerRaysAmount   int
	PlayerMissileSpeed float64

	PlayersAmount  int
	MaxConnections int
}

// Controller owns a single World, a shared last-tick clock, a name
// registry, and the accept loop. Exactly one Controller exists per
// match (spec.md §4.6).
type Controller struct {
	opts    Options
	world   *sim.World
	roster  *roster
	history *history.Recorder

	// lastTick is guarded by its own lock, separate from the World lock
	// (spec.md §5).
	lastTickMu sync.Mutex
	lastTick   time.Time

	// accepted counts raw accepted connections so the controller can
	// immediately close anything past PlayersAmount, even before a
	// Hello is read (spec.md §4.6 policy).
	accepted atomic.Int32

	// joined counts sessions that have sent a valid Hello; once it
	// reaches PlayersAmount, started is closed and every Waiting
	// session proceeds to Playing (spec.md §4.5 Waiting state).
	joined  atomic.Int32
	started chan struct{}

	winnerMu sync.Mutex
	winner   *rosterEntry

	// over closes the moment the World reaches a terminal GameStatus, so
	// Serve can stop accepting and return without waiting on an external
	// termination signal (spec.md §4.6, "plays the match to completion").
	overOnce sync.Once
	over     chan struct{}
}

// New constructs a Controller with a freshly generated Map and World.
// The history recorder is wired in separately via SetHistory, since it
// needs the Map New just generated to build its header.
func New(opts Options) *Controller {
	m := sim.GenerateMap(opts.MapWidth, opts.MapHeight, opts.MapBarriersAmount, opts.MapMaxBarrierRadius, opts.MapSeed)
	world := sim.NewWorld(m)

	c := &Controller{
		opts:     opts,
		world:    world,
		roster:   newRoster(),
		lastTick: time.Now(),
		started:  make(chan struct{}),
		over:     make(chan struct{}),
	}

	world.OnAdvance(func(w *sim.World) {
		if c.history != nil {
			c.history.RecordTick(w)
		}
		if w.Status().Kind() != sim.GameStatusOn {
			c.overOnce.Do(func() { close(c.over) })
		}
	})

	return c
}

// World returns the controller's shared World (used by tests and by
// the history recorder's initial snapshot).
func (c *Controller) World() *sim.World { return c.world }

// SetHistory wires a recorder that receives a RecordTick call after
// every World advance, plus the roster/winner bookkeeping as sessions
// reach Playing and Ended (spec.md §2, "C7 is notified by C4 whenever a
// tick finishes"). A nil recorder disables history recording entirely.
func (c *Controller) SetHistory(rec *history.Recorder) {
	c.history = rec
}

// Done returns a channel closed once the World's GameStatus leaves On
// (Over or Draw), signalling Serve to stop accepting new connections.
func (c *Controller) Done() <-chan struct{} { return c.over }

// Serve accepts connections on host until ctx is cancelled or the match
// reaches a terminal status, fanning each connection into its own
// Session goroutine (spec.md §4.6).
func (c *Controller) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", c.opts.Host)
	if err != nil {
		return err
	}
	defer ln.Close()

	if c.opts.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, c.opts.MaxConnections)
	}

	log.Printf("match controller listening on %s (need %d players)", c.opts.Host, c.opts.PlayersAmount)
	defer c.logFinalRoster()

	go func() {
		select {
		case <-ctx.Done():
		case <-c.over:
			log.Printf("match controller: match concluded after %.1fs simulated time, closing listener", c.world.Elapsed())
		}
		_ = ln.Close()
	}()

	for {
		type deadliner interface {
			SetDeadline(time.Time) error
		}
		if d, ok := ln.(deadliner); ok {
			_ = d.SetDeadline(time.Now().Add(acceptPollPeriod))
		}

		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			select {
			case <-c.over:
				return nil
			default:
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Println("accept error:", err)
			time.Sleep(acceptPollPeriod)
			continue
		}

		c.acceptConn(ctx, conn)
	}
}

// acceptConn enforces the "accept until participant_count reached"
// policy: a connection arriving after the cap closes immediately
// (spec.md §4.6).
func (c *Controller) acceptConn(ctx context.Context, conn net.Conn) {
	n := c.accepted.Add(1)
	if int(n) > c.opts.PlayersAmount {
		_ = conn.Close()
		return
	}

	go c.runSession(ctx, conn)
}

// releaseAcceptSlot gives back one slot counted by acceptConn, for a
// connection that was accepted but never became a joined participant:
// a client that disconnects before sending Hello, sends a malformed
// Hello, or has its name rejected by moderation. Without this, such a
// connection would permanently occupy one of PlayersAmount's slots and
// the match would hang forever in awaitStart (spec.md §4.6).
func (c *Controller) releaseAcceptSlot() {
	c.accepted.Add(-1)
}

// awaitStart blocks until participant_count reaches PlayersAmount,
// implementing the Session Waiting state (spec.md §4.5).
func (c *Controller) awaitStart(ctx context.Context) bool {
	select {
	case <-c.started:
		return true
	case <-ctx.Done():
		return false
	}
}

// joinAsParticipant records one more joined session and, if that was
// the last one needed, releases every Waiting session.
func (c *Controller) joinAsParticipant() {
	n := c.joined.Add(1)
	if int(n) == c.opts.PlayersAmount {
		close(c.started)
	}
}

func (c *Controller) takeTickDelta() float64 {
	c.lastTickMu.Lock()
	defer c.lastTickMu.Unlock()
	now := time.Now()
	dt := now.Sub(c.lastTick).Seconds()
	c.lastTick = now
	return dt
}

func (c *Controller) recordPlayer(agentID uint64, name, address string) {
	c.roster.add(agentID, name, address)
	if c.history != nil {
		c.history.AddPlayer(agentID, name, address)
	}
}

func (c *Controller) recordWinner(agentID uint64) {
	entry, ok := c.roster.lookup(agentID)
	if !ok {
		return
	}
	c.winnerMu.Lock()
	c.winner = &entry
	c.winnerMu.Unlock()
	if c.history != nil {
		c.history.SetWinner(agentID, entry.Name, entry.Address)
	}
}

func (c *Controller) killerName(killerID uint64) string {
	if entry, ok := c.roster.lookup(killerID); ok {
		return entry.Name
	}
	return "unknown"
}

// logFinalRoster logs every joined participant once Serve returns, so
// an operator can see who played the match without parsing the replay
// file (spec.md §4.6's name/address registry, surfaced at shutdown).
func (c *Controller) logFinalRoster() {
	entries := c.roster.all()
	log.Printf("match controller: final roster (%d players)", len(entries))
	for id, e := range entries {
		log.Printf("  agent %d: %s (%s)", id, e.Name, e.Address)
	}
}
