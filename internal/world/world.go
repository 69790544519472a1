// Package world ties the Atlas, the scheduler and the random source together
// into the simulation a host drives one step at a time.
package world

import (
	"fmt"

	"go.uber.org/zap"

	"toyworld/internal/actors"
	"toyworld/internal/atlas"
	"toyworld/internal/core"
	"toyworld/internal/schedule"
	"toyworld/internal/tileset"
)

// Config sizes a new world.
type Config struct {
	Width  int
	Height int
	Seed   int64
}

// World is a simulated tile world. Steps and draws must not overlap.
type World struct {
	cfg   Config
	env   *actors.Env
	atlas *atlas.Atlas
	sched *schedule.Scheduler
	rng   *core.RNG
	log   *zap.Logger
}

// New returns an empty world.
func New(cfg Config, env *actors.Env, log *zap.Logger) *World {
	w := newDetached(cfg, env, log)
	w.atlas.AddObserver(w.sched)
	b := w.atlas.Bounds()
	w.cfg.Width, w.cfg.Height = b.W, b.H
	return w
}

// Atlas exposes the world's spatial store.
func (w *World) Atlas() *atlas.Atlas { return w.atlas }

// Scheduler exposes the update scheduler.
func (w *World) Scheduler() *schedule.Scheduler { return w.sched }

// Tileset returns the tileset actors draw from.
func (w *World) Tileset() *tileset.Table { return w.env.Tiles }

// Env returns the actor environment.
func (w *World) Env() *actors.Env { return w.env }

// Config returns the world dimensions and seed.
func (w *World) Config() Config { return w.cfg }

// Steps returns the number of completed steps.
func (w *World) Steps() uint64 { return w.sched.Steps() }

// Place builds an actor of kind and puts it on layer at (x, y).
func (w *World) Place(kind string, layer atlas.LayerType, x, y int) error {
	actor, err := actors.New(w.env, kind, core.Vector2I{X: x, Y: y})
	if err != nil {
		return err
	}
	return w.atlas.Add(actor, layer)
}

// Fill places kind on every empty cell of a tile layer.
func (w *World) Fill(kind string, layer atlas.LayerType) error {
	return w.eachFree(layer, func(x, y int) error {
		return w.Place(kind, layer, x, y)
	})
}

// Scatter places kind on empty cells of layer with the given probability,
// drawing from the world's random source. It returns the number placed.
func (w *World) Scatter(kind string, layer atlas.LayerType, density float64) (int, error) {
	n := 0
	err := w.eachFree(layer, func(x, y int) error {
		if w.rng.Float64() >= density {
			return nil
		}
		n++
		return w.Place(kind, layer, x, y)
	})
	return n, err
}

func (w *World) eachFree(layer atlas.LayerType, fn func(x, y int) error) error {
	if !layer.Single() {
		return fmt.Errorf("layer %s: need exactly one layer", layer)
	}
	b := w.atlas.Bounds()
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			if len(w.atlas.ActorsAt(core.Vector2I{X: x, Y: y}, layer)) > 0 {
				continue
			}
			if err := fn(x, y); err != nil {
				return err
			}
		}
	}
	return nil
}

// AdvanceStep runs one simulation step. A failing actor update is returned
// and leaves the world as the failing update left it.
func (w *World) AdvanceStep() error {
	if err := w.sched.Step(w.atlas, w.rng); err != nil {
		w.log.Error("step failed", zap.Uint64("step", w.sched.Steps()+1), zap.Error(err))
		return err
	}
	return nil
}

// Run advances n steps, stopping at the first error.
func (w *World) Run(n int) error {
	for i := 0; i < n; i++ {
		if err := w.AdvanceStep(); err != nil {
			return err
		}
	}
	return nil
}
