package atlas

import "toyworld/internal/core"

// TileLayer holds at most one actor per grid cell.
type TileLayer struct {
	layer LayerType
	grid  *core.Grid[GameActor]
}

func newTileLayer(l LayerType, w, h int) *TileLayer {
	return &TileLayer{layer: l, grid: core.NewGrid[GameActor](w, h)}
}

// Type returns the layer this grid represents.
func (t *TileLayer) Type() LayerType { return t.layer }

// At returns the actor at p, or nil.
func (t *TileLayer) At(p core.Vector2I) GameActor {
	a, _ := t.grid.At(p.X, p.Y)
	return a
}

// TileIDs appends the tileset ids covering rect to dst[:0] in row-major
// order starting at the lowest row. Empty and out-of-bounds cells yield 0.
func (t *TileLayer) TileIDs(rect core.Rect, dst []int) []int {
	dst = dst[:0]
	for y := rect.Y; y < rect.Y+rect.H; y++ {
		for x := rect.X; x < rect.X+rect.W; x++ {
			id := 0
			if a, ok := t.grid.At(x, y); ok && a != nil {
				id = a.TilesetID()
			}
			dst = append(dst, id)
		}
	}
	return dst
}

// Each calls fn for every occupied cell in row-major order.
func (t *TileLayer) Each(fn func(GameActor)) {
	for _, a := range t.grid.Cells() {
		if a != nil {
			fn(a)
		}
	}
}

func (t *TileLayer) set(p core.Vector2I, a GameActor) { t.grid.Set(p.X, p.Y, a) }
