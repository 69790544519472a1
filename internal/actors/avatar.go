package actors

import (
	"math"

	"toyworld/internal/atlas"
	"toyworld/internal/core"
)

// AvatarTurnCadence is the number of steps between heading changes.
const AvatarTurnCadence = 30

// Avatar is a free object that looks around, turning to a random heading
// every AvatarTurnCadence steps.
type Avatar struct {
	tile
	size      core.Vector2
	direction float32
	next      int
}

// NewAvatar returns an avatar facing +X.
func NewAvatar(env *Env, pos core.Vector2I) *Avatar {
	return &Avatar{
		tile: newTile(env, "avatar", pos),
		size: core.Vector2{X: 0.8, Y: 0.8},
		next: AvatarTurnCadence,
	}
}

// Size implements atlas.GameObject.
func (a *Avatar) Size() core.Vector2 { return a.size }

// Direction implements atlas.Directable.
func (a *Avatar) Direction() float32 { return a.direction }

// NextUpdateAfter implements atlas.Schedulable.
func (a *Avatar) NextUpdateAfter() int { return a.next }

// Update picks a new heading.
func (a *Avatar) Update(_ atlas.Surface, rng *core.RNG) error {
	a.direction = rng.Float32() * 2 * math.Pi
	a.next = AvatarTurnCadence
	return nil
}

// State implements atlas.Stateful.
func (a *Avatar) State() map[string]float64 {
	return map[string]float64{"direction": float64(a.direction), "next": float64(a.next)}
}

// SetState implements atlas.Stateful.
func (a *Avatar) SetState(state map[string]float64) error {
	a.direction = float32(state["direction"])
	if next, ok := state["next"]; ok && next >= 0 {
		a.next = int(next)
	}
	return nil
}

func init() {
	Register("avatar", func(env *Env, pos core.Vector2I) atlas.GameActor { return NewAvatar(env, pos) })
}
