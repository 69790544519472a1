// Package render draws an axis-aligned view of a world's Atlas through a
// device-independent pipeline and optionally reads the frame back.
package render

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"toyworld/internal/atlas"
	"toyworld/internal/core"
	"toyworld/internal/tileset"
)

const (
	MinViewSize   = 0.01
	MinResolution = 16
	MaxResolution = 4096
)

// ClearColor is the background of every frame.
var ClearColor = color.RGBA{R: 50, G: 50, B: 50, A: 255}

// Scene is what a request draws.
type Scene interface {
	Tileset() *tileset.Table
	Atlas() *atlas.Atlas
}

// Stats describes the last drawn frame.
type Stats struct {
	Footprint  core.Rect
	TileLayers int
	Tiles      int
	Objects    int
}

// Request owns a camera and draws it. A request is bound to one renderer
// by Init and must not be drawn concurrently with a simulation step.
type Request struct {
	center     mgl32.Vec3
	rotation   mgl32.Vec3
	size       core.Vector2
	resolution core.Size

	// GatherImage makes Draw read the frame back into Image.
	GatherImage bool
	image       []byte

	memo     geometryMemo
	renderer *Renderer
	effect   Effect
	tex      Texture
	grid     Grid
	quad     Quad
	ids      []int
	stats    Stats
	log      *zap.Logger
}

// NewRequest returns a request looking at the origin with a 3x3 view and a
// 1024x1024 resolution.
func NewRequest(log *zap.Logger) *Request {
	if log == nil {
		log = zap.NewNop()
	}
	return &Request{
		center:     mgl32.Vec3{0, 0, 20},
		size:       core.Vector2{X: 3, Y: 3},
		resolution: core.Size{W: 1024, H: 1024},
		image:      []byte{},
		log:        log,
	}
}

// Center returns the camera position.
func (r *Request) Center() mgl32.Vec3 { return r.center }

// SetCenter moves the camera in the plane, keeping its height.
func (r *Request) SetCenter(x, y float32) { r.center = mgl32.Vec3{x, y, r.center.Z()} }

// SetCenter3 moves the camera including its height.
func (r *Request) SetCenter3(c mgl32.Vec3) { r.center = c }

// SetRotation sets the optional view rotation (Z, X, Y angles in radians).
func (r *Request) SetRotation(rot mgl32.Vec3) { r.rotation = rot }

// Size returns the view size in tiles.
func (r *Request) Size() core.Vector2 { return r.size }

// SetSize sets the view size, clamping each side to MinViewSize.
func (r *Request) SetSize(w, h float32) {
	r.size = core.Vector2{X: max(MinViewSize, w), Y: max(MinViewSize, h)}
}

// View returns the world rectangle the camera shows.
func (r *Request) View() core.RectF {
	return core.RectF{
		X: r.center.X() - r.size.X/2,
		Y: r.center.Y() - r.size.Y/2,
		W: r.size.X,
		H: r.size.Y,
	}
}

// Footprint returns the tile rectangle the next draw fetches.
func (r *Request) Footprint() core.Rect {
	return GridFootprint(core.Vector2{X: r.center.X(), Y: r.center.Y()}, r.size)
}

// Resolution returns the output size in pixels.
func (r *Request) Resolution() core.Size { return r.resolution }

// SetResolution sets the output size. Each side must lie in
// [MinResolution, MaxResolution].
func (r *Request) SetResolution(w, h int) error {
	res := core.Size{W: w, H: h}
	if w < MinResolution || h < MinResolution {
		return &ConfigurationError{Field: "resolution", Value: res, Reason: fmt.Sprintf("must be at least %d pixels", MinResolution)}
	}
	if w > MaxResolution || h > MaxResolution {
		return &ConfigurationError{Field: "resolution", Value: res, Reason: fmt.Sprintf("must be at most %d pixels", MaxResolution)}
	}
	r.resolution = res
	return nil
}

// Image is the last gathered frame: BGRA, row-major, top row first. It is at
// least Resolution().W*Resolution().H*4 bytes once a frame was gathered and
// never shrinks.
func (r *Request) Image() []byte { return r.image }

// Stats describes the last drawn frame.
func (r *Request) Stats() Stats { return r.stats }

// Init acquires the shared resources the request draws with.
func (r *Request) Init(rd *Renderer, scene Scene) error {
	tiles := scene.Tileset()
	if tiles == nil {
		return &ResourceAcquisitionError{Resource: "tileset", Err: errors.New("scene has no tileset")}
	}
	tex, err := rd.Tileset(tiles.Images())
	if err != nil {
		return err
	}
	effect, err := rd.Effect(EffectNoOffset)
	if err != nil {
		return err
	}
	full := tiles.FullTileSize()
	texSize := tex.Size()
	uniforms := []struct {
		name  string
		value any
	}{
		{UniformTex, 0},
		{UniformTexSizeCount, [3]int{texSize.W, texSize.H, texSize.W / max(full.W, 1)}},
		{UniformTileSizeMargin, [4]int{tiles.TileSize.W, tiles.TileSize.H, tiles.TileMargins.W, tiles.TileMargins.H}},
	}
	for _, u := range uniforms {
		if err := effect.SetUniform(u.name, u.value); err != nil {
			return &ResourceAcquisitionError{Resource: "uniform " + u.name, Err: err}
		}
	}
	r.memo.reset()
	geom, _ := r.memo.get(r.size)
	grid, err := rd.Grid(geom.grid)
	if err != nil {
		return err
	}
	quad, err := rd.Quad()
	if err != nil {
		return err
	}
	r.renderer, r.tex, r.effect, r.grid, r.quad = rd, tex, effect, grid, quad
	r.log.Debug("render request initialised",
		zap.Int("grid_w", geom.grid.W), zap.Int("grid_h", geom.grid.H),
		zap.Int("res_w", r.resolution.W), zap.Int("res_h", r.resolution.H))
	return nil
}

// Draw renders scene into target, which must match the request resolution.
func (r *Request) Draw(target Target, scene Scene) error {
	if r.renderer == nil {
		return errors.New("render: request drawn before Init")
	}
	if res := target.Resolution(); res != r.resolution {
		return &ConfigurationError{Field: "target resolution", Value: res, Reason: fmt.Sprintf("request renders %dx%d", r.resolution.W, r.resolution.H)}
	}
	geom, changed := r.memo.get(r.size)
	if changed {
		grid, err := r.renderer.Grid(geom.grid)
		if err != nil {
			return err
		}
		r.grid = grid
	}

	target.Clear(ClearColor)
	target.Use(r.effect)
	target.Bind(r.tex)

	footprint := r.Footprint()
	vp := geom.proj.Mul4(ViewMatrix(r.rotation, r.center, mgl32.Vec3{}))
	if err := r.effect.SetUniform(UniformMVP, vp.Mul4(GridModel(footprint))); err != nil {
		return err
	}
	stats := Stats{Footprint: footprint}
	a := scene.Atlas()
	for _, layer := range a.TileLayers() {
		r.ids = layer.TileIDs(footprint, r.ids[:0])
		for _, id := range r.ids {
			if id != 0 {
				stats.Tiles++
			}
		}
		r.grid.SetTextureOffsets(r.ids)
		if err := target.Draw(r.grid); err != nil {
			return fmt.Errorf("draw %s: %w", layer.Type(), err)
		}
		stats.TileLayers++
	}

	view := footprint.Float()
	for _, layer := range a.ObjectLayers() {
		for _, obj := range layer.ObjectsIn(view) {
			var dir float32
			if d, ok := obj.(atlas.Directable); ok {
				dir = d.Direction()
			}
			mvp := vp.Mul4(ObjectModel(obj.Position(), obj.Size(), dir))
			if err := r.effect.SetUniform(UniformMVP, mvp); err != nil {
				return err
			}
			r.quad.SetTextureOffset(obj.TilesetID())
			if err := target.Draw(r.quad); err != nil {
				return fmt.Errorf("draw %s: %w", obj.Kind(), err)
			}
			stats.Objects++
		}
	}
	r.stats = stats

	if r.GatherImage {
		need := r.resolution.W * r.resolution.H * 4
		if len(r.image) < need {
			r.image = make([]byte, need)
		}
		if err := target.ReadPixels(r.image[:need]); err != nil {
			return fmt.Errorf("read pixels: %w", err)
		}
		SwapRB(r.image[:need])
	}
	return nil
}

// Dispose drops the request's references to shared resources. The
// resources stay cached in the renderer.
func (r *Request) Dispose() {
	r.renderer, r.effect, r.tex, r.grid, r.quad = nil, nil, nil, nil, nil
	r.memo.reset()
}
