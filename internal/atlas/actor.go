package atlas

import "toyworld/internal/core"

// GameActor is anything placed in the Atlas.
type GameActor interface {
	// Kind names the actor type in the kind registry.
	Kind() string
	Position() core.Vector2I
	// TilesetID selects the tile drawn for the actor. 0 draws nothing.
	TilesetID() int
}

// ActorPosition locates an actor on a layer.
type ActorPosition struct {
	Actor    GameActor
	Position core.Vector2I
	Layer    LayerType
}

// Surface is what actors may touch while they run. It is only valid for
// the duration of the call that received it.
type Surface interface {
	ActorsAt(p core.Vector2I, mask LayerType) []ActorPosition
	ActorsInRange(center core.Vector2I, radius float32, mask LayerType) []ActorPosition
	Locate(actor GameActor) (ActorPosition, bool)
	ReplaceWith(at ActorPosition, actor GameActor) error
	Remove(at ActorPosition) error
	RegisterHeatSource(s HeatSource)
	UnregisterHeatSource(s HeatSource)
}

// Schedulable actors report how many steps remain until they want their next
// update. Zero means no further updates.
type Schedulable interface {
	GameActor
	NextUpdateAfter() int
	Update(s Surface, rng *core.RNG) error
}

// Combustible actors react to nearby fire.
type Combustible interface {
	GameActor
	Burn(at ActorPosition, s Surface) error
}

// HeatSource actors emit heat up to MaxDistance tiles away.
type HeatSource interface {
	GameActor
	Heat() float32
	MaxDistance() float32
}

// Directable actors are drawn rotated by Direction radians.
type Directable interface {
	Direction() float32
}

// GameObject is an actor living on an object layer. Size is in tiles.
type GameObject interface {
	GameActor
	Size() core.Vector2
}

// Stateful actors expose internal state for snapshots.
type Stateful interface {
	State() map[string]float64
	SetState(state map[string]float64) error
}

// Observer is notified when actors enter or leave the Atlas.
type Observer interface {
	ActorAdded(at ActorPosition)
	ActorRemoved(at ActorPosition)
}

// ObjectBounds returns the rectangle covered by o, centred on its tile.
func ObjectBounds(o GameObject) core.RectF {
	p := o.Position()
	s := o.Size()
	return core.RectF{
		X: float32(p.X) + 0.5 - s.X/2,
		Y: float32(p.Y) + 0.5 - s.Y/2,
		W: s.X,
		H: s.Y,
	}
}
