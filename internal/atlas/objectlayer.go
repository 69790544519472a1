package atlas

import (
	"slices"

	"toyworld/internal/core"
)

// ObjectLayer holds free objects in insertion order, one per tile.
type ObjectLayer struct {
	layer   LayerType
	objects []GameObject
	at      map[core.Vector2I]GameObject
}

func newObjectLayer(l LayerType) *ObjectLayer {
	return &ObjectLayer{layer: l, at: make(map[core.Vector2I]GameObject)}
}

// Type returns the layer this list represents.
func (o *ObjectLayer) Type() LayerType { return o.layer }

// At returns the object anchored at p, or nil.
func (o *ObjectLayer) At(p core.Vector2I) GameObject { return o.at[p] }

// Len returns the number of objects on the layer.
func (o *ObjectLayer) Len() int { return len(o.objects) }

// ObjectsIn returns the objects whose bounds intersect view.
func (o *ObjectLayer) ObjectsIn(view core.RectF) []GameObject {
	var out []GameObject
	for _, obj := range o.objects {
		if ObjectBounds(obj).Intersects(view) {
			out = append(out, obj)
		}
	}
	return out
}

// Each calls fn for every object in insertion order.
func (o *ObjectLayer) Each(fn func(GameActor)) {
	for _, obj := range o.objects {
		fn(obj)
	}
}

func (o *ObjectLayer) insert(obj GameObject) {
	o.objects = append(o.objects, obj)
	o.at[obj.Position()] = obj
}

// replace swaps old for obj keeping the draw order slot.
func (o *ObjectLayer) replace(old, obj GameObject) {
	if i := slices.Index(o.objects, old); i >= 0 {
		o.objects[i] = obj
	} else {
		o.objects = append(o.objects, obj)
	}
	o.at[obj.Position()] = obj
}

func (o *ObjectLayer) remove(obj GameObject) {
	if i := slices.Index(o.objects, obj); i >= 0 {
		o.objects = slices.Delete(o.objects, i, i+1)
	}
	delete(o.at, obj.Position())
}
