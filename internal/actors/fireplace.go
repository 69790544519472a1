package actors

import (
	"fmt"

	"toyworld/internal/atlas"
	"toyworld/internal/core"
)

// Phase is the combustion state of a burning fireplace.
type Phase int

const (
	PhaseUnlit Phase = iota
	PhaseIgniting
	PhaseGrowing
	PhaseStable
	PhaseExtinguished
)

func (p Phase) String() string {
	switch p {
	case PhaseUnlit:
		return "unlit"
	case PhaseIgniting:
		return "igniting"
	case PhaseGrowing:
		return "growing"
	case PhaseStable:
		return "stable"
	case PhaseExtinguished:
		return "extinguished"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Fireplace is a cold fireplace. Fire reaching it lights it.
type Fireplace struct {
	tile
	env *Env
}

// NewFireplace returns a cold fireplace.
func NewFireplace(env *Env, pos core.Vector2I) *Fireplace {
	return &Fireplace{tile: newTile(env, "fireplace", pos), env: env}
}

// Burn swaps the fireplace for a freshly lit one.
func (f *Fireplace) Burn(at atlas.ActorPosition, s atlas.Surface) error {
	return s.ReplaceWith(at, NewFireplaceBurning(f.env, f.pos))
}

// FireplaceBurning is a fire going through ignition, growth and a long
// stable burn that sets nearby combustibles alight, after which it turns
// back into a cold Fireplace.
//
// Each due update evaluates, in order: ignition, extinguishing, growth and
// propagation. Ignition ends the update; growth and the first propagation
// may happen in the same one.
type FireplaceBurning struct {
	tile
	env    *Env
	params FireParams

	heat         float32
	stable       int
	next         int
	extinguished bool
}

// NewFireplaceBurning returns an unlit fire due on the next step.
func NewFireplaceBurning(env *Env, pos core.Vector2I) *FireplaceBurning {
	return &FireplaceBurning{
		tile:   newTile(env, "fireplace_burning", pos),
		env:    env,
		params: env.Fire,
		heat:   unlitHeat,
		next:   1,
	}
}

// Heat implements atlas.HeatSource.
func (f *FireplaceBurning) Heat() float32 { return f.heat }

// MaxDistance implements atlas.HeatSource.
func (f *FireplaceBurning) MaxDistance() float32 { return f.params.HeatRadius }

// NextUpdateAfter implements atlas.Schedulable.
func (f *FireplaceBurning) NextUpdateAfter() int { return f.next }

// StableUpdates returns how many stable updates the fire has had.
func (f *FireplaceBurning) StableUpdates() int { return f.stable }

// Phase reports the combustion state.
func (f *FireplaceBurning) Phase() Phase {
	switch {
	case f.extinguished:
		return PhaseExtinguished
	case f.heat < 0:
		return PhaseUnlit
	case f.heat >= f.params.MaxHeat:
		return PhaseStable
	case f.heat <= f.params.IgnitionHeat:
		return PhaseIgniting
	default:
		return PhaseGrowing
	}
}

// Update implements atlas.Schedulable.
func (f *FireplaceBurning) Update(s atlas.Surface, _ *core.RNG) error {
	p := f.params
	if f.heat < 0 {
		f.heat = p.IgnitionHeat
		s.RegisterHeatSource(f)
		f.next = p.IgnitedCadence
		return nil
	}
	if f.heat >= p.MaxHeat && f.stable > p.StableThreshold {
		return f.extinguish(s)
	}
	if f.heat < p.MaxHeat {
		f.heat = min(f.heat+p.HeatStep, p.MaxHeat)
	}
	if f.heat >= p.MaxHeat {
		for _, at := range s.ActorsInRange(f.pos, p.HeatRadius, atlas.All) {
			c, ok := at.Actor.(atlas.Combustible)
			if !ok {
				continue
			}
			if err := c.Burn(at, s); err != nil {
				return fmt.Errorf("burn %s: %w", at.Actor.Kind(), err)
			}
		}
		f.stable++
	}
	return nil
}

func (f *FireplaceBurning) extinguish(s atlas.Surface) error {
	f.heat = 0
	f.next = 0
	f.extinguished = true
	s.UnregisterHeatSource(f)
	at, ok := s.Locate(f)
	if !ok {
		return &atlas.InvalidActorStateError{Position: f.pos, Layer: atlas.All, Reason: "burning fireplace is not placed"}
	}
	return s.ReplaceWith(at, NewFireplace(f.env, f.pos))
}

// State implements atlas.Stateful.
func (f *FireplaceBurning) State() map[string]float64 {
	return map[string]float64{
		"heat":   float64(f.heat),
		"stable": float64(f.stable),
		"next":   float64(f.next),
	}
}

// SetState implements atlas.Stateful.
func (f *FireplaceBurning) SetState(state map[string]float64) error {
	heat, ok := state["heat"]
	if !ok {
		return fmt.Errorf("fireplace_burning state lacks heat")
	}
	f.heat = float32(heat)
	f.stable = int(state["stable"])
	f.next = int(state["next"])
	if f.next < 0 || f.stable < 0 {
		return fmt.Errorf("fireplace_burning state has negative counters")
	}
	return nil
}

func init() {
	Register("fireplace", func(env *Env, pos core.Vector2I) atlas.GameActor { return NewFireplace(env, pos) })
	Register("fireplace_burning", func(env *Env, pos core.Vector2I) atlas.GameActor { return NewFireplaceBurning(env, pos) })
}
