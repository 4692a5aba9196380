// Package config loads the environment-variable table of spec.md §6.
// Environment-variable loading is explicitly out of scope for the
// core's redesign (spec.md §1, "Out of scope... environment-variable
// configuration loading... Their only contract with the core is
// supplying configuration values"), so this stays intentionally
// small: plain os.Getenv parsing with defaults, matching the teacher's
// own preference for small explicit config code over a third-party
// config library.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds every value in spec.md §6's environment-variable table.
type Config struct {
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

	PlayersAmount           int
	HistoryOptimizationRate int

	Backend string
}

// Load reads every environment variable in spec.md §6, falling back to
// built-in defaults, and returns an error naming the first malformed
// value encountered (spec.md §7, ConfigurationInvalid: fatal,
// surfaces before the listener binds).
func Load() (Config, error) {
	var c Config
	var err error

	c.Host = getString("HOST", "0.0.0.0:7777")

	if c.MapWidth, err = getFloat("MAP_WIDTH", 1000); err != nil {
		return c, err
	}
	if c.MapHeight, err = getFloat("MAP_HEIGHT", 1000); err != nil {
		return c, err
	}
	if c.MapBarriersAmount, err = getInt("MAP_BARRIERS_AMOUNT", 10); err != nil {
		return c, err
	}
	if c.MapMaxBarrierRadius, err = getFloat("MAP_MAX_BARRIER_RADIUS", 50); err != nil {
		return c, err
	}
	if raw := os.Getenv("MAP_SEED"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c, fmt.Errorf("config: MAP_SEED: %w", err)
		}
		c.MapSeed = &seed
	}

	if c.PlayerRadius, err = getFloat("PLAYER_RADIUS", 1); err != nil {
		return c, err
	}
	if c.PlayerMaxSpeed, err = getFloat("PLAYER_MAX_SPEED", 10); err != nil {
		return c, err
	}
	if c.PlayerViewAngle, err = getFloat("PLAYER_VIEW_ANGLE", 60); err != nil {
		return c, err
	}
	if c.PlayerRaysAmount, err = getInt("PLAYER_RAYS_AMOUNT", 7); err != nil {
		return c, err
	}
	if c.PlayerMissileSpeed, err = getFloat("PLAYER_MISSILE_SPEED", 20); err != nil {
		return c, err
	}

	if c.PlayersAmount, err = getInt("PLAYERS_AMOUNT", 2); err != nil {
		return c, err
	}
	if c.PlayersAmount < 1 {
		return c, fmt.Errorf("config: PLAYERS_AMOUNT must be at least 1")
	}
	if c.HistoryOptimizationRate, err = getInt("HISTORY_OPTIMIZATION_RATE", 1); err != nil {
		return c, err
	}

	c.Backend = getString("BACKEND", "")

	return c, nil
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getFloat(key string, def float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return v, nil
}

func getInt(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return v, nil
}
