// Package host assembles a world from configuration for the binaries.
package host

import (
	"fmt"

	"go.uber.org/zap"

	"toyworld/internal/actors"
	"toyworld/internal/config"
	"toyworld/internal/scripting"
	"toyworld/internal/tileset"
	"toyworld/internal/world"
)

// Env returns the actor environment described by cfg.
func Env(cfg *config.Config) (*actors.Env, error) {
	var tiles *tileset.Table
	if cfg.World.Tileset != "" {
		t, err := tileset.Load(cfg.World.Tileset)
		if err != nil {
			return nil, err
		}
		tiles = t
	}
	return actors.NewEnv(tiles, cfg.FireParams()), nil
}

// NewWorld builds the world: the map file when set (or an empty world of the
// configured size), then the build script when set.
func NewWorld(cfg *config.Config, log *zap.Logger) (*world.World, error) {
	if log == nil {
		log = zap.NewNop()
	}
	env, err := Env(cfg)
	if err != nil {
		return nil, err
	}

	var w *world.World
	if cfg.World.Map != "" {
		m, err := world.LoadMap(cfg.World.Map)
		if err != nil {
			return nil, err
		}
		if w, err = m.Build(env, cfg.World.Seed, log.Named("world")); err != nil {
			return nil, fmt.Errorf("build map %s: %w", cfg.World.Map, err)
		}
	} else {
		w = world.New(world.Config{
			Width:  cfg.World.Width,
			Height: cfg.World.Height,
			Seed:   cfg.World.Seed,
		}, env, log.Named("world"))
	}

	if cfg.World.Script != "" {
		eng := scripting.NewEngine(w, log.Named("lua"))
		defer eng.Close()
		if err := eng.BuildFile(cfg.World.Script); err != nil {
			return nil, err
		}
	}

	b := w.Atlas().Bounds()
	log.Info("world ready",
		zap.Int("width", b.W),
		zap.Int("height", b.H),
		zap.Int64("seed", w.Config().Seed),
		zap.Int("heat_sources", len(w.Atlas().HeatSources())),
	)
	return w, nil
}
