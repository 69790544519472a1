package render

import (
	"image/color"

	"toyworld/internal/core"
	"toyworld/internal/tileset"
)

// EffectKind names a shader program.
type EffectKind int

const (
	// EffectNoOffset samples tile ids from the bound tileset without a
	// per-layer texture offset.
	EffectNoOffset EffectKind = iota
)

func (k EffectKind) String() string {
	switch k {
	case EffectNoOffset:
		return "no_offset"
	default:
		return "effect"
	}
}

// GeometryKind names a geometry shape.
type GeometryKind int

const (
	// GeometryGrid is a grid of unit cells spanning [-1,1] in model space.
	GeometryGrid GeometryKind = iota
	// GeometryQuad is a single cell spanning [-1,1] in model space.
	GeometryQuad
)

// GeometryKey identifies a cached geometry.
type GeometryKey struct {
	Kind GeometryKind
	Size core.Size
}

// Uniform names understood by every device.
const (
	UniformTex            = "tex"
	UniformTexSizeCount   = "texSizeCount"
	UniformTileSizeMargin = "tileSizeMargin"
	UniformMVP            = "mvp"
)

// Texture is a tileset sheet living on the device.
type Texture interface {
	Size() core.Size
}

// Effect is a shader program. Uniform values are a mgl32.Mat4 for
// UniformMVP, [3]int for UniformTexSizeCount, [4]int for
// UniformTileSizeMargin and int for UniformTex.
type Effect interface {
	SetUniform(name string, value any) error
}

// Geometry is a drawable mesh.
type Geometry interface {
	Key() GeometryKey
}

// Grid is a tile grid whose cells draw tile ids, row-major from the lowest
// row. Id 0 draws nothing.
type Grid interface {
	Geometry
	SetTextureOffsets(ids []int)
}

// Quad is a single cell drawing one tile id.
type Quad interface {
	Geometry
	SetTextureOffset(id int)
}

// Device creates resources.
type Device interface {
	NewTileset(set tileset.ImageSet) (Texture, error)
	NewEffect(kind EffectKind) (Effect, error)
	NewGrid(size core.Size) (Grid, error)
	NewQuad() (Quad, error)
}

// Target is a framebuffer draws are submitted to.
type Target interface {
	Resolution() core.Size
	Clear(c color.RGBA)
	Use(e Effect)
	Bind(t Texture)
	Draw(g Geometry) error
	// ReadPixels copies the colour buffer into dst as RGBA, top row first.
	ReadPixels(dst []byte) error
}
