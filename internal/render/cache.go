package render

import (
	"go.uber.org/zap"

	"toyworld/internal/core"
	"toyworld/internal/tileset"
)

// Cache is a get-or-create store of shared resources. Cached values are
// never mutated by a consumer that did not create them; changed parameters
// fetch a different key.
type Cache[K comparable, V any] struct {
	items map[K]V
}

// NewCache returns an empty cache.
func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{items: make(map[K]V)}
}

// Get returns the value for key, calling create on a miss. Failed creations
// are not cached.
func (c *Cache[K, V]) Get(key K, create func() (V, error)) (V, bool, error) {
	if v, ok := c.items[key]; ok {
		return v, false, nil
	}
	v, err := create()
	if err != nil {
		var zero V
		return zero, false, err
	}
	c.items[key] = v
	return v, true, nil
}

// Len returns the number of cached values.
func (c *Cache[K, V]) Len() int { return len(c.items) }

// Clear drops every value.
func (c *Cache[K, V]) Clear() { clear(c.items) }

// Renderer bundles the resource caches of one device.
type Renderer struct {
	Device     Device
	Textures   *Cache[string, Texture]
	Effects    *Cache[EffectKind, Effect]
	Geometries *Cache[GeometryKey, Geometry]

	log *zap.Logger
}

// NewRenderer returns a Renderer with empty caches over d.
func NewRenderer(d Device, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{
		Device:     d,
		Textures:   NewCache[string, Texture](),
		Effects:    NewCache[EffectKind, Effect](),
		Geometries: NewCache[GeometryKey, Geometry](),
		log:        log,
	}
}

// Tileset returns the texture for an image set.
func (r *Renderer) Tileset(set tileset.ImageSet) (Texture, error) {
	key := set.Key()
	tex, created, err := r.Textures.Get(key, func() (Texture, error) { return r.Device.NewTileset(set) })
	if err != nil {
		return nil, &ResourceAcquisitionError{Resource: "tileset " + key, Err: err}
	}
	if created {
		s := tex.Size()
		r.log.Info("tileset texture created", zap.String("key", key), zap.Int("w", s.W), zap.Int("h", s.H))
	}
	return tex, nil
}

// Effect returns the program of the given kind.
func (r *Renderer) Effect(kind EffectKind) (Effect, error) {
	e, created, err := r.Effects.Get(kind, func() (Effect, error) { return r.Device.NewEffect(kind) })
	if err != nil {
		return nil, &ResourceAcquisitionError{Resource: "effect " + kind.String(), Err: err}
	}
	if created {
		r.log.Info("effect created", zap.Stringer("kind", kind))
	}
	return e, nil
}

// Grid returns the tile grid geometry of the given size.
func (r *Renderer) Grid(size core.Size) (Grid, error) {
	g, created, err := r.Geometries.Get(GeometryKey{Kind: GeometryGrid, Size: size}, func() (Geometry, error) {
		return r.Device.NewGrid(size)
	})
	if err != nil {
		return nil, &ResourceAcquisitionError{Resource: "grid geometry", Err: err}
	}
	if created {
		r.log.Info("grid geometry created", zap.Int("w", size.W), zap.Int("h", size.H))
	}
	return g.(Grid), nil
}

// Quad returns the single-cell geometry used for objects.
func (r *Renderer) Quad() (Quad, error) {
	q, _, err := r.Geometries.Get(GeometryKey{Kind: GeometryQuad, Size: core.Size{W: 1, H: 1}}, func() (Geometry, error) {
		return r.Device.NewQuad()
	})
	if err != nil {
		return nil, &ResourceAcquisitionError{Resource: "quad geometry", Err: err}
	}
	return q.(Quad), nil
}
