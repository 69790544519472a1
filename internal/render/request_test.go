package render

import (
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"toyworld/internal/atlas"
	"toyworld/internal/core"
	"toyworld/internal/tileset"
	"toyworld/internal/world"
)

type fakeTexture struct{ size core.Size }

func (t *fakeTexture) Size() core.Size { return t.size }

type fakeEffect struct{ uniforms map[string]any }

func (e *fakeEffect) SetUniform(name string, v any) error {
	e.uniforms[name] = v
	return nil
}

type fakeGrid struct {
	size core.Size
	ids  []int
}

func (g *fakeGrid) Key() GeometryKey            { return GeometryKey{Kind: GeometryGrid, Size: g.size} }
func (g *fakeGrid) SetTextureOffsets(ids []int) { g.ids = append(g.ids[:0], ids...) }

type fakeQuad struct{ id int }

func (q *fakeQuad) Key() GeometryKey        { return GeometryKey{Kind: GeometryQuad, Size: core.Size{W: 1, H: 1}} }
func (q *fakeQuad) SetTextureOffset(id int) { q.id = id }

type fakeDevice struct {
	textures, effects, grids, quads int
	failTileset                     bool
}

func (d *fakeDevice) NewTileset(tileset.ImageSet) (Texture, error) {
	if d.failTileset {
		return nil, errors.New("out of video memory")
	}
	d.textures++
	return &fakeTexture{size: core.Size{W: 64, H: 32}}, nil
}

func (d *fakeDevice) NewEffect(EffectKind) (Effect, error) {
	d.effects++
	return &fakeEffect{uniforms: map[string]any{}}, nil
}

func (d *fakeDevice) NewGrid(size core.Size) (Grid, error) {
	d.grids++
	return &fakeGrid{size: size}, nil
}

func (d *fakeDevice) NewQuad() (Quad, error) {
	d.quads++
	return &fakeQuad{}, nil
}

type fakeTarget struct {
	res     core.Size
	draws   []GeometryKey
	quadIDs []int
	reads   int
}

func (t *fakeTarget) Resolution() core.Size { return t.res }
func (t *fakeTarget) Use(Effect)            {}
func (t *fakeTarget) Bind(Texture)          {}

func (t *fakeTarget) Clear(color.RGBA) {
	t.draws = t.draws[:0]
	t.quadIDs = t.quadIDs[:0]
}

func (t *fakeTarget) Draw(g Geometry) error {
	t.draws = append(t.draws, g.Key())
	if q, ok := g.(*fakeQuad); ok {
		t.quadIDs = append(t.quadIDs, q.id)
	}
	return nil
}

func (t *fakeTarget) ReadPixels(dst []byte) error {
	t.reads++
	for i := 0; i < len(dst); i += 4 {
		dst[i], dst[i+1], dst[i+2], dst[i+3] = 1, 2, 3, 4
	}
	return nil
}

func newScene(t *testing.T) *world.World {
	t.Helper()
	w := world.New(world.Config{Width: 10, Height: 10, Seed: 1}, nil, nil)
	if err := w.Fill("floor", atlas.Background); err != nil {
		t.Fatalf("fill: %v", err)
	}
	return w
}

func TestGridFootprintParity(t *testing.T) {
	for sx := float32(0.01); sx < 12; sx += 0.37 {
		for cx := float32(-3); cx < 3; cx += 0.29 {
			size := core.Vector2{X: sx, Y: sx * 0.7}
			center := core.Vector2{X: cx, Y: -cx / 2}
			fp := GridFootprint(center, size)
			if fp.W%2 != 0 || fp.H%2 != 0 {
				t.Fatalf("size %v: odd footprint %+v", size, fp)
			}
			c := fp.Center()
			if d := math.Abs(float64(c.X - center.X)); d > 1 {
				t.Fatalf("size %v center %v: footprint centre %v off by %v", size, center, c, d)
			}
			if d := math.Abs(float64(c.Y - center.Y)); d > 1 {
				t.Fatalf("size %v center %v: footprint centre %v off by %v", size, center, c, d)
			}
			if float32(fp.X) > center.X-size.X/2 || float32(fp.X+fp.W) < center.X+size.X/2 {
				t.Fatalf("size %v center %v: footprint %+v does not cover the view", size, center, fp)
			}
			if float32(fp.Y) > center.Y-size.Y/2 || float32(fp.Y+fp.H) < center.Y+size.Y/2 {
				t.Fatalf("size %v center %v: footprint %+v does not cover the view", size, center, fp)
			}
		}
	}
}

func TestSetResolutionBounds(t *testing.T) {
	r := NewRequest(nil)
	for _, bad := range [][2]int{{15, 100}, {100, 15}, {4097, 100}, {100, 4097}} {
		err := r.SetResolution(bad[0], bad[1])
		var cfgErr *ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("%v: expected ConfigurationError, got %v", bad, err)
		}
	}
	if r.Resolution() != (core.Size{W: 1024, H: 1024}) {
		t.Fatalf("failed SetResolution changed resolution to %v", r.Resolution())
	}
	for _, ok := range [][2]int{{16, 16}, {4096, 4096}, {16, 4096}} {
		if err := r.SetResolution(ok[0], ok[1]); err != nil {
			t.Fatalf("%v: %v", ok, err)
		}
	}
}

func TestSetSizeClamps(t *testing.T) {
	r := NewRequest(nil)
	r.SetSize(0, -4)
	if r.Size() != (core.Vector2{X: MinViewSize, Y: MinViewSize}) {
		t.Fatalf("expected clamped size, got %v", r.Size())
	}
	fp := r.Footprint()
	if fp.W != 4 || fp.H != 4 {
		t.Fatalf("expected 4x4 footprint for a tiny view, got %+v", fp)
	}
}

func TestInitSharesResources(t *testing.T) {
	dev := &fakeDevice{}
	rd := NewRenderer(dev, nil)
	scene := newScene(t)
	a, b := NewRequest(nil), NewRequest(nil)
	if err := a.Init(rd, scene); err != nil {
		t.Fatalf("init a: %v", err)
	}
	if err := b.Init(rd, scene); err != nil {
		t.Fatalf("init b: %v", err)
	}
	if dev.textures != 1 || dev.effects != 1 || dev.grids != 1 || dev.quads != 1 {
		t.Fatalf("expected one of each resource, got %+v", dev)
	}
	e := a.effect.(*fakeEffect)
	if got := e.uniforms[UniformTexSizeCount]; got != [3]int{64, 32, 4} {
		t.Fatalf("unexpected texSizeCount %v", got)
	}
	if got := e.uniforms[UniformTileSizeMargin]; got != [4]int{16, 16, 0, 0} {
		t.Fatalf("unexpected tileSizeMargin %v", got)
	}
}

func TestInitFailureIsResourceAcquisitionError(t *testing.T) {
	rd := NewRenderer(&fakeDevice{failTileset: true}, nil)
	err := NewRequest(nil).Init(rd, newScene(t))
	var acq *ResourceAcquisitionError
	if !errors.As(err, &acq) {
		t.Fatalf("expected ResourceAcquisitionError, got %v", err)
	}
	if rd.Textures.Len() != 0 {
		t.Fatalf("failed texture was cached")
	}
}

func TestDrawBeforeInit(t *testing.T) {
	r := NewRequest(nil)
	if err := r.Draw(&fakeTarget{res: r.Resolution()}, newScene(t)); err == nil {
		t.Fatalf("expected error drawing before Init")
	}
}

func TestDrawRefetchesGridOnlyOnResize(t *testing.T) {
	dev := &fakeDevice{}
	rd := NewRenderer(dev, nil)
	scene := newScene(t)
	r := NewRequest(nil)
	if err := r.SetResolution(64, 64); err != nil {
		t.Fatalf("resolution: %v", err)
	}
	if err := r.Init(rd, scene); err != nil {
		t.Fatalf("init: %v", err)
	}
	target := &fakeTarget{res: r.Resolution()}
	for i := 0; i < 3; i++ {
		r.SetCenter(float32(i)*0.3, 1)
		if err := r.Draw(target, scene); err != nil {
			t.Fatalf("draw: %v", err)
		}
	}
	if dev.grids != 1 {
		t.Fatalf("panning created %d grids", dev.grids)
	}
	r.SetSize(6, 6)
	if err := r.Draw(target, scene); err != nil {
		t.Fatalf("draw: %v", err)
	}
	if dev.grids != 2 {
		t.Fatalf("expected a second grid after resize, got %d", dev.grids)
	}
	if got := r.grid.Key().Size; got != (core.Size{W: 8, H: 8}) {
		t.Fatalf("expected 8x8 grid, got %v", got)
	}
	r.SetSize(3, 3)
	if err := r.Draw(target, scene); err != nil {
		t.Fatalf("draw: %v", err)
	}
	if dev.grids != 2 {
		t.Fatalf("returning to a cached size created a grid")
	}
}

func TestDrawSubmitsLayersAndCullsObjects(t *testing.T) {
	rd := NewRenderer(&fakeDevice{}, nil)
	scene := newScene(t)
	if err := scene.Place("avatar", atlas.Object, 1, 1); err != nil {
		t.Fatalf("place: %v", err)
	}
	if err := scene.Place("avatar", atlas.Object, 9, 9); err != nil {
		t.Fatalf("place: %v", err)
	}
	r := NewRequest(nil)
	r.SetCenter(1.5, 1.5)
	if err := r.Init(rd, scene); err != nil {
		t.Fatalf("init: %v", err)
	}
	target := &fakeTarget{res: r.Resolution()}
	if err := r.Draw(target, scene); err != nil {
		t.Fatalf("draw: %v", err)
	}
	st := r.Stats()
	if st.TileLayers != 5 {
		t.Fatalf("expected 5 tile layer draws, got %d", st.TileLayers)
	}
	if st.Objects != 1 {
		t.Fatalf("expected only the near avatar, got %d objects", st.Objects)
	}
	// footprint 6x6 at (-2,-2): the 4x4 block from the origin holds floor
	if st.Tiles != 16 {
		t.Fatalf("expected 16 floor tiles in the footprint %+v, got %d", st.Footprint, st.Tiles)
	}
	avatar := scene.Tileset().ID("avatar")
	if len(target.quadIDs) != 1 || target.quadIDs[0] != avatar {
		t.Fatalf("expected avatar tile %d, got %v", avatar, target.quadIDs)
	}
	if target.draws[0].Kind != GeometryGrid || target.draws[5].Kind != GeometryQuad {
		t.Fatalf("tiles must draw before objects: %v", target.draws)
	}
}

func TestImageGrowsAndNeverShrinks(t *testing.T) {
	rd := NewRenderer(&fakeDevice{}, nil)
	scene := newScene(t)
	r := NewRequest(nil)
	r.GatherImage = true
	if err := r.SetResolution(32, 32); err != nil {
		t.Fatalf("resolution: %v", err)
	}
	if err := r.Init(rd, scene); err != nil {
		t.Fatalf("init: %v", err)
	}
	if len(r.Image()) != 0 {
		t.Fatalf("expected empty image before drawing")
	}
	if err := r.Draw(&fakeTarget{res: r.Resolution()}, scene); err != nil {
		t.Fatalf("draw: %v", err)
	}
	if len(r.Image()) != 32*32*4 {
		t.Fatalf("expected %d bytes, got %d", 32*32*4, len(r.Image()))
	}
	if img := r.Image(); img[0] != 3 || img[1] != 2 || img[2] != 1 || img[3] != 4 {
		t.Fatalf("expected BGRA order, got %v", img[:4])
	}
	if err := r.SetResolution(16, 16); err != nil {
		t.Fatalf("resolution: %v", err)
	}
	if err := r.Draw(&fakeTarget{res: r.Resolution()}, scene); err != nil {
		t.Fatalf("draw: %v", err)
	}
	if len(r.Image()) != 32*32*4 {
		t.Fatalf("image shrank to %d bytes", len(r.Image()))
	}
}

func TestDrawRejectsMismatchedTarget(t *testing.T) {
	rd := NewRenderer(&fakeDevice{}, nil)
	scene := newScene(t)
	r := NewRequest(nil)
	if err := r.Init(rd, scene); err != nil {
		t.Fatalf("init: %v", err)
	}
	var cfgErr *ConfigurationError
	if err := r.Draw(&fakeTarget{res: core.Size{W: 16, H: 16}}, scene); !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestCellTransformMapsCorners(t *testing.T) {
	size := core.Vector2{X: 4, Y: 4}
	mvp := Projection(size).Mul4(ViewMatrix(mgl32.Vec3{}, mgl32.Vec3{2, 2, 20}, mgl32.Vec3{}))
	m := CellTransform(mvp, 0, 3, 1, 4, core.Size{W: 16, H: 16}, core.Vector2I{X: 32, Y: 16}, core.Size{W: 4, H: 4})
	apply := func(x, y float64) (float64, float64) {
		return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
	}
	near := func(a, b float64) bool { return math.Abs(a-b) < 1e-4 }
	if x, y := apply(32, 16); !near(x, 0) || !near(y, 0) {
		t.Fatalf("tile origin maps to (%v,%v)", x, y)
	}
	if x, y := apply(48, 32); !near(x, 1) || !near(y, 1) {
		t.Fatalf("tile corner maps to (%v,%v)", x, y)
	}
}
