// Package soft rasterises render draws on the CPU. It needs no graphics
// context, so headless hosts and tests use it.
package soft

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"

	"toyworld/internal/core"
	"toyworld/internal/render"
	"toyworld/internal/tileset"
)

// Device creates CPU resources.
type Device struct{}

// NewDevice returns a CPU device.
func NewDevice() *Device { return &Device{} }

// NewTileset decodes the image set into a sheet.
func (d *Device) NewTileset(set tileset.ImageSet) (render.Texture, error) {
	sheet, err := set.Load()
	if err != nil {
		return nil, err
	}
	return &Texture{sheet: sheet}, nil
}

// NewEffect returns an effect holding uniform values.
func (d *Device) NewEffect(kind render.EffectKind) (render.Effect, error) {
	if kind != render.EffectNoOffset {
		return nil, fmt.Errorf("soft: unsupported effect %s", kind)
	}
	return &Effect{kind: kind, mvp: mgl32.Ident4()}, nil
}

// NewGrid returns a tile grid of size cells.
func (d *Device) NewGrid(size core.Size) (render.Grid, error) {
	if size.W <= 0 || size.H <= 0 {
		return nil, fmt.Errorf("soft: grid size %dx%d", size.W, size.H)
	}
	return &Grid{size: size, ids: make([]int, size.Area())}, nil
}

// NewQuad returns a single-cell geometry.
func (d *Device) NewQuad() (render.Quad, error) { return &Quad{}, nil }

// Texture is a tileset sheet in memory.
type Texture struct {
	sheet *image.RGBA
}

func (t *Texture) Size() core.Size {
	b := t.sheet.Bounds()
	return core.Size{W: b.Dx(), H: b.Dy()}
}

// Effect stores the uniforms the rasteriser reads.
type Effect struct {
	kind           render.EffectKind
	mvp            mgl32.Mat4
	texSizeCount   [3]int
	tileSizeMargin [4]int
}

func (e *Effect) SetUniform(name string, value any) error {
	switch name {
	case render.UniformTex:
		return nil
	case render.UniformMVP:
		m, ok := value.(mgl32.Mat4)
		if !ok {
			return fmt.Errorf("soft: uniform %s wants mgl32.Mat4, got %T", name, value)
		}
		e.mvp = m
	case render.UniformTexSizeCount:
		v, ok := value.([3]int)
		if !ok {
			return fmt.Errorf("soft: uniform %s wants [3]int, got %T", name, value)
		}
		e.texSizeCount = v
	case render.UniformTileSizeMargin:
		v, ok := value.([4]int)
		if !ok {
			return fmt.Errorf("soft: uniform %s wants [4]int, got %T", name, value)
		}
		e.tileSizeMargin = v
	default:
		return fmt.Errorf("soft: unknown uniform %s", name)
	}
	return nil
}

// sourceRect locates tile id in the bound sheet.
func (e *Effect) sourceRect(id int) (image.Rectangle, bool) {
	tw, th := e.tileSizeMargin[0], e.tileSizeMargin[1]
	sw, sh := tw+e.tileSizeMargin[2], th+e.tileSizeMargin[3]
	perRow := e.texSizeCount[2]
	if id <= 0 || perRow <= 0 || sw <= 0 || sh <= 0 {
		return image.Rectangle{}, false
	}
	col, row := (id-1)%perRow, (id-1)/perRow
	origin := image.Pt(col*sw, row*sh)
	r := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(tw, th))}
	if r.Max.Y > e.texSizeCount[1] {
		return image.Rectangle{}, false
	}
	return r, true
}

// Grid is a tile grid.
type Grid struct {
	size core.Size
	ids  []int
}

func (g *Grid) Key() render.GeometryKey {
	return render.GeometryKey{Kind: render.GeometryGrid, Size: g.size}
}

// SetTextureOffsets copies ids; missing trailing cells draw nothing.
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

// Target is an in-memory framebuffer.
type Target struct {
	img    *image.RGBA
	effect *Effect
	tex    *Texture
}

// NewTarget allocates a framebuffer of res pixels.
func NewTarget(res core.Size) *Target {
	return &Target{img: image.NewRGBA(image.Rect(0, 0, res.W, res.H))}
}

// Image exposes the framebuffer.
func (t *Target) Image() *image.RGBA { return t.img }

func (t *Target) Resolution() core.Size {
	b := t.img.Bounds()
	return core.Size{W: b.Dx(), H: b.Dy()}
}

func (t *Target) Clear(c color.RGBA) {
	draw.Draw(t.img, t.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

func (t *Target) Use(e render.Effect) {
	t.effect, _ = e.(*Effect)
}

func (t *Target) Bind(tex render.Texture) {
	t.tex, _ = tex.(*Texture)
}

// Draw rasterises g with the current effect and texture using alpha
// blending.
func (t *Target) Draw(g render.Geometry) error {
	if t.effect == nil || t.tex == nil {
		return errors.New("soft: draw without a soft effect and texture bound")
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
		return fmt.Errorf("soft: cannot draw %T", g)
	}
	return nil
}

func (t *Target) cell(id int, x0, y0, x1, y1 float32) {
	sr, ok := t.effect.sourceRect(id)
	if !ok {
		return
	}
	tile := core.Size{W: sr.Dx(), H: sr.Dy()}
	m := render.CellTransform(t.effect.mvp, x0, y0, x1, y1, tile, core.Vector2I{X: sr.Min.X, Y: sr.Min.Y}, t.Resolution())
	draw.NearestNeighbor.Transform(t.img, m, t.tex.sheet, sr, draw.Over, nil)
}

// ReadPixels copies the framebuffer as RGBA, top row first.
func (t *Target) ReadPixels(dst []byte) error {
	b := t.img.Bounds()
	row := b.Dx() * 4
	if len(dst) < row*b.Dy() {
		return fmt.Errorf("soft: read buffer holds %d bytes, need %d", len(dst), row*b.Dy())
	}
	for y := 0; y < b.Dy(); y++ {
		copy(dst[y*row:(y+1)*row], t.img.Pix[y*t.img.Stride:y*t.img.Stride+row])
	}
	return nil
}
