package actors

import (
	"fmt"
	"sort"

	"toyworld/internal/atlas"
	"toyworld/internal/core"
)

// Factory builds an actor of one kind at pos.
type Factory func(env *Env, pos core.Vector2I) atlas.GameActor

var kinds = map[string]Factory{}

// Register adds a factory under kind.
func Register(kind string, f Factory) {
	if kind == "" || f == nil {
		return
	}
	kinds[kind] = f
}

// Kinds lists the registered kinds, sorted.
func Kinds() []string {
	out := make([]string, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// New builds an actor of the named kind.
func New(env *Env, kind string, pos core.Vector2I) (atlas.GameActor, error) {
	f, ok := kinds[kind]
	if !ok {
		return nil, fmt.Errorf("unknown actor kind %q", kind)
	}
	return f(env, pos), nil
}

// tile is the common part of every actor.
type tile struct {
	kind string
	pos  core.Vector2I
	id   int
}

func newTile(env *Env, kind string, pos core.Vector2I) tile {
	return tile{kind: kind, pos: pos, id: env.Tiles.ID(kind)}
}

func (t *tile) Kind() string            { return t.kind }
func (t *tile) Position() core.Vector2I { return t.pos }
func (t *tile) TilesetID() int          { return t.id }
