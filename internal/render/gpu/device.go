//go:build ebiten

package gpu

import (
	_ "embed"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"

	"toyworld/internal/core"
	"toyworld/internal/render"
	"toyworld/internal/tileset"
)

//go:embed tile.kage
var tileShader []byte

// Device creates ebiten resources. It must be used from the ebiten game
// loop.
type Device struct{}

// NewDevice returns an ebiten device.
func NewDevice() *Device { return &Device{} }

func (d *Device) NewTileset(set tileset.ImageSet) (render.Texture, error) {
	sheet, err := set.Load()
	if err != nil {
		return nil, err
	}
	return &Texture{img: ebiten.NewImageFromImage(sheet)}, nil
}

func (d *Device) NewEffect(kind render.EffectKind) (render.Effect, error) {
	if kind != render.EffectNoOffset {
		return nil, fmt.Errorf("gpu: unsupported effect %s", kind)
	}
	sh, err := ebiten.NewShader(tileShader)
	if err != nil {
		return nil, fmt.Errorf("gpu: compile tile shader: %w", err)
	}
	return &Effect{shader: sh, mvp: mgl32.Ident4()}, nil
}

func (d *Device) NewGrid(size core.Size) (render.Grid, error) {
	if size.W <= 0 || size.H <= 0 {
		return nil, fmt.Errorf("gpu: grid size %dx%d", size.W, size.H)
	}
	return &Grid{size: size, ids: make([]int, size.Area())}, nil
}

func (d *Device) NewQuad() (render.Quad, error) { return &Quad{}, nil }

// Texture is a tileset sheet on the GPU.
type Texture struct {
	img *ebiten.Image
}

func (t *Texture) Size() core.Size {
	b := t.img.Bounds()
	return core.Size{W: b.Dx(), H: b.Dy()}
}

// Effect is the tile shader and its uniforms.
type Effect struct {
	shader         *ebiten.Shader
	mvp            mgl32.Mat4
	texSizeCount   [3]int
	tileSizeMargin [4]int
}

func (e *Effect) SetUniform(name string, value any) error {
	var ok bool
	switch name {
	case render.UniformTex:
		return nil
	case render.UniformMVP:
		e.mvp, ok = value.(mgl32.Mat4)
	case render.UniformTexSizeCount:
		e.texSizeCount, ok = value.([3]int)
	case render.UniformTileSizeMargin:
		e.tileSizeMargin, ok = value.([4]int)
	default:
		return fmt.Errorf("gpu: unknown uniform %s", name)
	}
	if !ok {
		return fmt.Errorf("gpu: uniform %s has type %T", name, value)
	}
	return nil
}

func (e *Effect) sourceRect(id int) (image.Rectangle, bool) {
	tw, th := e.tileSizeMargin[0], e.tileSizeMargin[1]
	sw, sh := tw+e.tileSizeMargin[2], th+e.tileSizeMargin[3]
	perRow := e.texSizeCount[2]
	if id <= 0 || perRow <= 0 || sw <= 0 || sh <= 0 {
		return image.Rectangle{}, false
	}
	origin := image.Pt((id-1)%perRow*sw, (id-1)/perRow*sh)
	r := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(tw, th))}
	return r, r.Max.Y <= e.texSizeCount[1]
}

// Grid is a tile grid.
type Grid struct {
	size core.Size
	ids  []int
}

func (g *Grid) Key() render.GeometryKey {
	return render.GeometryKey{Kind: render.GeometryGrid, Size: g.size}
}

func (g *Grid) SetTextureOffsets(ids []int) {
	n := copy(g.ids, ids)
	clear(g.ids[n:])
}

// Quad is a single cell.
type Quad struct{ id int }

func (q *Quad) Key() render.GeometryKey {
	return render.GeometryKey{Kind: render.GeometryQuad, Size: core.Size{W: 1, H: 1}}
}

func (q *Quad) SetTextureOffset(id int) { q.id = id }

// Target is an offscreen ebiten image.
type Target struct {
	img    *ebiten.Image
	effect *Effect
	tex    *Texture
	opts   ebiten.DrawRectShaderOptions
}

// NewTarget allocates an offscreen image of res pixels.
func NewTarget(res core.Size) *Target {
	return &Target{img: ebiten.NewImage(res.W, res.H)}
}

// Image exposes the offscreen image for compositing onto the screen.
func (t *Target) Image() *ebiten.Image { return t.img }

func (t *Target) Resolution() core.Size {
	b := t.img.Bounds()
	return core.Size{W: b.Dx(), H: b.Dy()}
}

func (t *Target) Clear(c color.RGBA) { t.img.Fill(c) }

func (t *Target) Use(e render.Effect) { t.effect, _ = e.(*Effect) }

func (t *Target) Bind(tex render.Texture) { t.tex, _ = tex.(*Texture) }

func (t *Target) Draw(g render.Geometry) error {
	if t.effect == nil || t.tex == nil {
		return errors.New("gpu: draw without a gpu effect and texture bound")
	}
	switch g := g.(type) {
	case *Grid:
		w, h := float32(g.size.W), float32(g.size.H)
		for i, id := range g.ids {
			cx, cy := float32(i%g.size.W), float32(i/g.size.W)
			t.cell(id, -1+2*cx/w, -1+2*cy/h, -1+2*(cx+1)/w, -1+2*(cy+1)/h)
		}
	case *Quad:
		t.cell(g.id, -1, -1, 1, 1)
	default:
		return fmt.Errorf("gpu: cannot draw %T", g)
	}
	return nil
}

func (t *Target) cell(id int, x0, y0, x1, y1 float32) {
	sr, ok := t.effect.sourceRect(id)
	if !ok {
		return
	}
	tile := core.Size{W: sr.Dx(), H: sr.Dy()}
	// sub-images draw from their own origin
	m := render.CellTransform(t.effect.mvp, x0, y0, x1, y1, tile, core.Vector2I{}, t.Resolution())
	t.opts.GeoM.Reset()
	t.opts.GeoM.SetElement(0, 0, m[0])
	t.opts.GeoM.SetElement(0, 1, m[1])
	t.opts.GeoM.SetElement(0, 2, m[2])
	t.opts.GeoM.SetElement(1, 0, m[3])
	t.opts.GeoM.SetElement(1, 1, m[4])
	t.opts.GeoM.SetElement(1, 2, m[5])
	t.opts.Images[0] = t.tex.img.SubImage(sr).(*ebiten.Image)
	t.img.DrawRectShader(tile.W, tile.H, t.effect.shader, &t.opts)
}

// ReadPixels copies the offscreen image as RGBA, top row first. It must be
// called while the game loop runs.
func (t *Target) ReadPixels(dst []byte) error {
	b := t.img.Bounds()
	need := b.Dx() * b.Dy() * 4
	if len(dst) < need {
		return fmt.Errorf("gpu: read buffer holds %d bytes, need %d", len(dst), need)
	}
	t.img.ReadPixels(dst[:need])
	return nil
}
