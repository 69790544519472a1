package atlas

import (
	"math"

	"go.uber.org/zap"

	"toyworld/internal/core"
)

// Atlas owns every placed actor, organised in layers, and the registry of
// active heat sources. It is not safe for concurrent use: simulation steps
// and frame draws take turns on the owning goroutine.
type Atlas struct {
	bounds  core.Rect
	tiles   []*TileLayer
	objects []*ObjectLayer

	heat    []HeatSource
	heatSet map[HeatSource]struct{}

	observers []Observer
	log       *zap.Logger
}

// New allocates an empty Atlas of w*h tiles.
func New(w, h int, log *zap.Logger) *Atlas {
	if log == nil {
		log = zap.NewNop()
	}
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	a := &Atlas{
		bounds:  core.Rect{W: w, H: h},
		heatSet: make(map[HeatSource]struct{}),
		log:     log,
	}
	for _, l := range tileOrder {
		a.tiles = append(a.tiles, newTileLayer(l, w, h))
	}
	for _, l := range objectOrder {
		a.objects = append(a.objects, newObjectLayer(l))
	}
	return a
}

// Bounds returns the tile rectangle of the world.
func (a *Atlas) Bounds() core.Rect { return a.bounds }

// TileLayers returns the tile layers in draw order.
func (a *Atlas) TileLayers() []*TileLayer { return a.tiles }

// ObjectLayers returns the object layers in draw order.
func (a *Atlas) ObjectLayers() []*ObjectLayer { return a.objects }

// AddObserver registers o for placement notifications.
func (a *Atlas) AddObserver(o Observer) { a.observers = append(a.observers, o) }

// Add places actor on layer at the actor's own position.
func (a *Atlas) Add(actor GameActor, layer LayerType) error {
	p := actor.Position()
	if !layer.Single() {
		return stateError(p, layer, "actor %s needs exactly one layer", actor.Kind())
	}
	if !a.bounds.Contains(p) {
		return stateError(p, layer, "position outside %dx%d world", a.bounds.W, a.bounds.H)
	}
	if cur := a.at(p, layer); cur != nil {
		return stateError(p, layer, "occupied by %s", cur.Kind())
	}
	if err := a.put(actor, layer); err != nil {
		return err
	}
	a.notifyAdded(ActorPosition{Actor: actor, Position: p, Layer: layer})
	return nil
}

// ActorsAt returns the actors at p on the layers selected by mask. The
// result is the only allocation.
func (a *Atlas) ActorsAt(p core.Vector2I, mask LayerType) []ActorPosition {
	return a.AppendActorsAt(nil, p, mask)
}

// AppendActorsAt is ActorsAt appending into dst.
func (a *Atlas) AppendActorsAt(dst []ActorPosition, p core.Vector2I, mask LayerType) []ActorPosition {
	for _, t := range a.tiles {
		if t.layer&mask == 0 {
			continue
		}
		if actor := t.At(p); actor != nil {
			dst = append(dst, ActorPosition{Actor: actor, Position: p, Layer: t.layer})
		}
	}
	for _, o := range a.objects {
		if o.layer&mask == 0 {
			continue
		}
		if obj := o.At(p); obj != nil {
			dst = append(dst, ActorPosition{Actor: obj, Position: p, Layer: o.layer})
		}
	}
	return dst
}

// ActorsInRange returns every actor whose tile lies within radius of center,
// scanning rows from the lowest Y.
func (a *Atlas) ActorsInRange(center core.Vector2I, radius float32, mask LayerType) []ActorPosition {
	if radius < 0 {
		return nil
	}
	r := int(math.Ceil(float64(radius)))
	r2 := radius * radius
	var out []ActorPosition
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if float32(dx*dx+dy*dy) > r2 {
				continue
			}
			out = a.AppendActorsAt(out, core.Vector2I{X: center.X + dx, Y: center.Y + dy}, mask)
		}
	}
	return out
}

// Locate finds the layer holding actor at its position.
func (a *Atlas) Locate(actor GameActor) (ActorPosition, bool) {
	p := actor.Position()
	for _, t := range a.tiles {
		if t.At(p) == actor {
			return ActorPosition{Actor: actor, Position: p, Layer: t.layer}, true
		}
	}
	for _, o := range a.objects {
		if obj := o.At(p); obj != nil && GameActor(obj) == actor {
			return ActorPosition{Actor: actor, Position: p, Layer: o.layer}, true
		}
	}
	return ActorPosition{}, false
}

// ReplaceWith swaps the actor at the given location for actor in one step.
// It fails when the location is empty, when at.Actor is set but is no longer
// the occupant, or when actor does not sit at the same position.
func (a *Atlas) ReplaceWith(at ActorPosition, actor GameActor) error {
	if !at.Layer.Single() {
		return stateError(at.Position, at.Layer, "replace needs exactly one layer")
	}
	if actor == nil {
		return stateError(at.Position, at.Layer, "nil replacement")
	}
	cur := a.at(at.Position, at.Layer)
	if cur == nil {
		return stateError(at.Position, at.Layer, "no actor to replace")
	}
	if at.Actor != nil && at.Actor != cur {
		return stateError(at.Position, at.Layer, "expected %s, found %s", at.Actor.Kind(), cur.Kind())
	}
	if actor.Position() != at.Position {
		return stateError(at.Position, at.Layer, "replacement %s sits at (%d,%d)", actor.Kind(), actor.Position().X, actor.Position().Y)
	}

	if at.Layer.IsTile() {
		a.tileLayer(at.Layer).set(at.Position, actor)
	} else {
		obj, ok := actor.(GameObject)
		if !ok {
			return stateError(at.Position, at.Layer, "%s is not a game object", actor.Kind())
		}
		a.objectLayer(at.Layer).replace(cur.(GameObject), obj)
	}
	if hs, ok := cur.(HeatSource); ok {
		a.UnregisterHeatSource(hs)
	}

	a.log.Debug("actor replaced",
		zap.String("layer", at.Layer.String()),
		zap.Int("x", at.Position.X), zap.Int("y", at.Position.Y),
		zap.String("from", cur.Kind()), zap.String("to", actor.Kind()))
	a.notifyRemoved(ActorPosition{Actor: cur, Position: at.Position, Layer: at.Layer})
	a.notifyAdded(ActorPosition{Actor: actor, Position: at.Position, Layer: at.Layer})
	return nil
}

// Remove deletes the actor at the given location.
func (a *Atlas) Remove(at ActorPosition) error {
	if !at.Layer.Single() {
		return stateError(at.Position, at.Layer, "remove needs exactly one layer")
	}
	cur := a.at(at.Position, at.Layer)
	if cur == nil {
		return stateError(at.Position, at.Layer, "no actor to remove")
	}
	if at.Actor != nil && at.Actor != cur {
		return stateError(at.Position, at.Layer, "expected %s, found %s", at.Actor.Kind(), cur.Kind())
	}
	if at.Layer.IsTile() {
		a.tileLayer(at.Layer).set(at.Position, nil)
	} else {
		a.objectLayer(at.Layer).remove(cur.(GameObject))
	}
	if hs, ok := cur.(HeatSource); ok {
		a.UnregisterHeatSource(hs)
	}
	a.notifyRemoved(ActorPosition{Actor: cur, Position: at.Position, Layer: at.Layer})
	return nil
}

// RegisterHeatSource adds s to the active registry. Registering twice is a
// no-op.
func (a *Atlas) RegisterHeatSource(s HeatSource) {
	if _, ok := a.heatSet[s]; ok {
		return
	}
	a.heatSet[s] = struct{}{}
	a.heat = append(a.heat, s)
}

// UnregisterHeatSource removes s. Absent sources are ignored.
func (a *Atlas) UnregisterHeatSource(s HeatSource) {
	if _, ok := a.heatSet[s]; !ok {
		return
	}
	delete(a.heatSet, s)
	for i, h := range a.heat {
		if h == s {
			a.heat = append(a.heat[:i], a.heat[i+1:]...)
			break
		}
	}
}

// IsHeatSource reports whether s is registered.
func (a *Atlas) IsHeatSource(s HeatSource) bool {
	_, ok := a.heatSet[s]
	return ok
}

// HeatSources returns the registered sources in registration order.
func (a *Atlas) HeatSources() []HeatSource { return a.heat }

// Temperature sums the contribution of every registered source at p. Each
// source falls off linearly to zero at its MaxDistance.
func (a *Atlas) Temperature(p core.Vector2) float32 {
	var t float32
	for _, s := range a.heat {
		maxD := s.MaxDistance()
		if maxD <= 0 {
			continue
		}
		d := p.Sub(s.Position().Float()).Len()
		if d >= maxD {
			continue
		}
		t += s.Heat() * (1 - d/maxD)
	}
	return t
}

func (a *Atlas) at(p core.Vector2I, l LayerType) GameActor {
	if l.IsTile() {
		return a.tileLayer(l).At(p)
	}
	if l.IsObject() {
		if obj := a.objectLayer(l).At(p); obj != nil {
			return obj
		}
	}
	return nil
}

func (a *Atlas) put(actor GameActor, l LayerType) error {
	if l.IsTile() {
		a.tileLayer(l).set(actor.Position(), actor)
		return nil
	}
	obj, ok := actor.(GameObject)
	if !ok {
		return stateError(actor.Position(), l, "%s is not a game object", actor.Kind())
	}
	a.objectLayer(l).insert(obj)
	return nil
}

func (a *Atlas) tileLayer(l LayerType) *TileLayer {
	for _, t := range a.tiles {
		if t.layer == l {
			return t
		}
	}
	return nil
}

func (a *Atlas) objectLayer(l LayerType) *ObjectLayer {
	for _, o := range a.objects {
		if o.layer == l {
			return o
		}
	}
	return nil
}

func (a *Atlas) notifyAdded(at ActorPosition) {
	for _, o := range a.observers {
		o.ActorAdded(at)
	}
}

func (a *Atlas) notifyRemoved(at ActorPosition) {
	for _, o := range a.observers {
		o.ActorRemoved(at)
	}
}
