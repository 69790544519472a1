package actors

import (
	"toyworld/internal/atlas"
	"toyworld/internal/core"
)

// Floor is plain ground.
type Floor struct{ tile }

// NewFloor returns a floor tile.
func NewFloor(env *Env, pos core.Vector2I) *Floor { return &Floor{newTile(env, "floor", pos)} }

// Wall blocks movement and does not burn.
type Wall struct{ tile }

// NewWall returns a wall tile.
func NewWall(env *Env, pos core.Vector2I) *Wall { return &Wall{newTile(env, "wall", pos)} }

// Ash is what is left of a burnt bush.
type Ash struct{ tile }

// NewAsh returns an ash tile.
func NewAsh(env *Env, pos core.Vector2I) *Ash { return &Ash{newTile(env, "ash", pos)} }

// Bush burns down to ash when fire reaches it.
type Bush struct {
	tile
	env *Env
}

// NewBush returns a bush.
func NewBush(env *Env, pos core.Vector2I) *Bush {
	return &Bush{tile: newTile(env, "bush", pos), env: env}
}

// Burn replaces the bush with ash.
func (b *Bush) Burn(at atlas.ActorPosition, s atlas.Surface) error {
	return s.ReplaceWith(at, NewAsh(b.env, b.pos))
}

func init() {
	Register("floor", func(env *Env, pos core.Vector2I) atlas.GameActor { return NewFloor(env, pos) })
	Register("wall", func(env *Env, pos core.Vector2I) atlas.GameActor { return NewWall(env, pos) })
	Register("ash", func(env *Env, pos core.Vector2I) atlas.GameActor { return NewAsh(env, pos) })
	Register("bush", func(env *Env, pos core.Vector2I) atlas.GameActor { return NewBush(env, pos) })
}
