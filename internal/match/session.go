package match

import (
	"context"
	"errors"
	"io"
	"log"
	"net"

	"github.com/arenasim/server/internal/protocol"
	"github.com/arenasim/server/internal/sim"
)

// session drives one client connection through the Opened -> Waiting
// -> Playing -> Playing' -> Ended state machine of spec.md §4.5.
//
// Grounded on the teacher's server/socket_client.go read loop (decode
// one message at a time off the raw connection in a dedicated
// goroutine) adapted from the teacher's framed websocket transport to
// spec.md's unframed, concatenated-JSON-values TCP stream: there is no
// separate outbound broadcast loop here, since every client action
// yields exactly one server response and the protocol has no
// server-initiated push.
type session struct {
	conn       net.Conn
	controller *Controller
	dec        *protocol.Decoder
	enc        *protocol.Encoder
	agent      *sim.Agent
	name       string
	address    string
}

func (c *Controller) runSession(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	dec := protocol.NewDecoder(conn)
	enc := protocol.NewEncoder(conn)

	var hello protocol.Hello
	if err := dec.Decode(&hello); err != nil {
		logDecodeErr("hello", err)
		c.releaseAcceptSlot()
		return
	}

	name, err := protocol.ScreenName(hello.Name)
	if err != nil {
		log.Printf("session: rejected name from %s: %v", conn.RemoteAddr(), err)
		c.releaseAcceptSlot()
		return
	}

	s := &session{
		conn:       conn,
		controller: c,
		dec:        dec,
		enc:        enc,
		name:       name,
		address:    conn.RemoteAddr().String(),
	}

	// Waiting: every session blocks here until participant_count
	// reaches players_amount (spec.md §4.5).
	c.joinAsParticipant()
	if !c.awaitStart(ctx) {
		return
	}

	// Playing (entry): obtain a free point, create and register the
	// agent, record it in the roster, send the initial view.
	m := c.world.Map()
	x, y := m.FreePoint(c.opts.PlayerRadius)
	agent := sim.NewAgent(x, y, c.opts.PlayerRadius, c.opts.PlayerMaxSpeed, c.opts.PlayerViewAngle, c.opts.PlayerRaysAmount, c.opts.PlayerMissileSpeed)
	c.world.Register(agent)
	c.recordPlayer(agent.ID, name, s.address)
	s.agent = agent

	if !s.sendView() {
		return
	}

	s.loop()
}

// loop implements the repeated Playing -> Playing' cycle: on each
// client Action, check terminal status first; otherwise apply the
// action, advance the World by the elapsed wall-clock time since the
// last tick, and respond with the updated view (spec.md §4.5).
func (s *session) loop() {
	for {
		var action protocol.Action
		if err := s.dec.Decode(&action); err != nil {
			logDecodeErr("action", err)
			return
		}

		status := s.agent.Status()
		if status.Kind() != sim.StatusInGame {
			s.sendTerminal(status)
			return
		}

		switch {
		case action.IsFire():
			s.agent.Fire()
		case action.IsMove():
			s.agent.Rotate(action.Rotate)
			s.agent.SetSpeed(action.Speed)
		}

		dt := s.controller.takeTickDelta()
		s.controller.world.Advance(dt)

		if !s.sendView() {
			return
		}
	}
}

func (s *session) sendView() bool {
	hits := s.agent.View()
	wire := make([]protocol.ViewHitWire, len(hits))
	for i, h := range hits {
		wire[i] = protocol.ViewHitWire{Object: h.Object, Distance: h.Distance}
	}
	if err := s.enc.Encode(protocol.ViewMessage{View: wire}); err != nil {
		log.Printf("session: write to %s failed: %v", s.address, err)
		return false
	}
	return true
}

func (s *session) sendTerminal(status sim.Status) {
	switch status.Kind() {
	case sim.StatusWin:
		s.controller.recordWinner(s.agent.ID)
		_ = s.enc.Encode(protocol.ResultMessage{Result: protocol.ResultWin})
	case sim.StatusKilled:
		by := s.controller.killerName(status.KillerID())
		_ = s.enc.Encode(protocol.ResultMessage{Result: protocol.ResultKilled, By: by})
	}
}

// logDecodeErr classifies a read failure per spec.md §7: a clean EOF
// (ClientEOF) is an expected disconnect and logs at most a warning; a
// reset/closed connection (PeerDisconnected) is silent; anything else
// is a malformed message (ClientDecode) and logs as an error.
func logDecodeErr(stage string, err error) {
	if errors.Is(err, io.EOF) {
		log.Printf("session: client disconnected during %s", stage)
		return
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return
	}
	log.Printf("session: decode error during %s: %v", stage, err)
}
