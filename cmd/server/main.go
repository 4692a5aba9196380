// Command server runs one arena match: it loads configuration, builds
// the map and world, accepts exactly players_amount clients, plays the
// match to completion, and writes (and optionally uploads) the replay
// history. Grounded on the teacher's server_main/main.go for the
// overall shape (parse config, construct the long-lived server value,
// run it under a cancellable context, flush state on shutdown).
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arenasim/server/internal/config"
	"github.com/arenasim/server/internal/history"
	"github.com/arenasim/server/internal/match"
	"github.com/arenasim/server/internal/uploader"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// ConfigurationInvalid (spec.md §7): fatal, surfaces before the
		// listener ever binds.
		log.Fatalf("configuration invalid: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts := match.Options{
		Host: cfg.Host,

		MapWidth:            cfg.MapWidth,
		MapHeight:           cfg.MapHeight,
		MapBarriersAmount:   cfg.MapBarriersAmount,
		MapMaxBarrierRadius: cfg.MapMaxBarrierRadius,
		MapSeed:             cfg.MapSeed,

		PlayerRadius:       cfg.PlayerRadius,
		PlayerMaxSpeed:     cfg.PlayerMaxSpeed,
		PlayerViewAngle:    cfg.PlayerViewAngle,
		PlayerRaysAmount:   cfg.PlayerRaysAmount,
		PlayerMissileSpeed: cfg.PlayerMissileSpeed,

		PlayersAmount: cfg.PlayersAmount,
		// A handful of spare slots absorb raw TCP connections that never
		// send a Hello (half-open probes, slow clients) without letting
		// them starve out legitimate players; excess connections are
		// still closed immediately once players_amount is reached
		// (spec.md §4.6).
		MaxConnections: cfg.PlayersAmount * 4,
	}

	controller := match.New(opts)
	rec := history.NewRecorder(controller.World().Map(), cfg.HistoryOptimizationRate)
	controller.SetHistory(rec)

	log.Printf("starting match: %d players, map %gx%g, %d barriers", cfg.PlayersAmount, cfg.MapWidth, cfg.MapHeight, cfg.MapBarriersAmount)

	if err := controller.Serve(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("serve failed: %v", err)
	}

	flush(cfg, rec)
}

func flush(cfg config.Config, rec *history.Recorder) {
	body, err := rec.Marshal()
	if err != nil {
		log.Printf("history: marshal failed: %v", err)
		return
	}

	const outFile = "history.json"
	if err := os.WriteFile(outFile, body, 0o644); err != nil {
		log.Printf("history: write %s failed: %v", outFile, err)
	} else {
		log.Printf("history: wrote %s (%d bytes)", outFile, len(body))
	}

	if cfg.Backend == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	up := uploader.New(cfg.Backend)
	if err := up.Upload(ctx, body); err != nil {
		log.Printf("history: upload to %s failed: %v", cfg.Backend, err)
	} else {
		log.Printf("history: uploaded to %s", cfg.Backend)
	}
}
