package match

import (
	"context"
	"testing"
	"time"

	"github.com/arenasim/server/internal/sim"
)

func testOptions() Options {
	return Options{
		Host:                "127.0.0.1:0",
		MapWidth:            100,
		MapHeight:           100,
		MapBarriersAmount:   0,
		MapMaxBarrierRadius: 5,
		PlayerRadius:        1,
		PlayerMaxSpeed:      1,
		PlayerViewAngle:     60,
		PlayerRaysAmount:    7,
		PlayerMissileSpeed:  1,
		PlayersAmount:       2,
	}
}

func TestJoinAsParticipantReleasesWaitersAtCap(t *testing.T) {
	c := New(testOptions())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	done := make(chan bool, 1)
	go func() {
		done <- c.awaitStart(ctx)
	}()

	c.joinAsParticipant()
	select {
	case released := <-done:
		t.Fatalf("awaitStart returned %v before participant_count reached players_amount", released)
	case <-time.After(20 * time.Millisecond):
	}

	c.joinAsParticipant() // second of PlayersAmount=2: releases every waiter

	select {
	case released := <-done:
		if !released {
			t.Fatal("awaitStart returned false after the match started")
		}
	case <-time.After(time.Second):
		t.Fatal("awaitStart never returned once participant_count reached players_amount")
	}
}

func TestAwaitStartUnblocksOnContextCancel(t *testing.T) {
	c := New(testOptions())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan bool, 1)
	go func() { done <- c.awaitStart(ctx) }()

	cancel()

	select {
	case released := <-done:
		if released {
			t.Fatal("awaitStart returned true after context cancellation")
		}
	case <-time.After(time.Second):
		t.Fatal("awaitStart did not observe context cancellation")
	}
}

func TestTakeTickDeltaMeasuresElapsedTime(t *testing.T) {
	c := New(testOptions())

	time.Sleep(10 * time.Millisecond)
	dt := c.takeTickDelta()
	if dt < 0.005 {
		t.Errorf("dt = %v, want at least ~0.01s elapsed", dt)
	}

	immediate := c.takeTickDelta()
	if immediate > dt {
		t.Errorf("second immediate delta %v should be smaller than the first %v", immediate, dt)
	}
}

func TestRecordWinnerRequiresRosterEntry(t *testing.T) {
	c := New(testOptions())
	c.recordWinner(42) // no roster entry for agent 42; must not panic

	if name := c.killerName(42); name != "unknown" {
		t.Errorf("killerName for unregistered agent = %q, want \"unknown\"", name)
	}

	c.recordPlayer(1, "Alice", "addr")
	if name := c.killerName(1); name != "Alice" {
		t.Errorf("killerName = %q, want Alice", name)
	}
}

// Once the shared World reaches a terminal GameStatus, the controller
// must signal Done() so Serve can stop accepting and the caller can
// flush history without waiting on an external termination signal
// (spec.md §4.6, "plays the match to completion").
func TestDoneClosesOnceWorldReachesTerminalStatus(t *testing.T) {
	c := New(testOptions())
	w := c.World()

	a := sim.NewAgent(10, 10, 1, 1, 60, 7, 20)
	b := sim.NewAgent(10, 20, 1, 1, 60, 7, 20)
	w.Register(a)
	w.Register(b)

	select {
	case <-c.Done():
		t.Fatal("Done() closed before the World reached a terminal status")
	default:
	}

	a.Fire()
	w.Advance(10.0)

	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("Done() did not close after the World reached a terminal status")
	}
}
