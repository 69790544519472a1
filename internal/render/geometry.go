package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/math/f64"

	"toyworld/internal/core"
)

const (
	// ProjectionNear and ProjectionFar bound the orthographic depth range.
	ProjectionNear = -1
	ProjectionFar  = 500
	// ObjectDepthBias lifts objects above the tile grid.
	ObjectDepthBias = 0.01
)

// GridFootprint returns the tile rectangle fetched for a view centred at
// center with the given size: one tile of margin on every side, sides of
// even length, centred on the view within one tile.
func GridFootprint(center, size core.Vector2) core.Rect {
	w, pw := evenSpan(size.X)
	h, ph := evenSpan(size.Y)
	cx := center.X - float32(pw)
	cy := center.Y - float32(ph)
	return core.Rect{
		X: int(math.Ceil(float64(cx - float32(w)/2))),
		Y: int(math.Ceil(float64(cy - float32(h)/2))),
		W: w,
		H: h,
	}
}

func evenSpan(v float32) (span, parity int) {
	n := int(math.Ceil(float64(v)))
	parity = n % 2
	return n + 2 + parity, parity
}

// Projection is the orthographic projection of a view of the given size.
func Projection(size core.Vector2) mgl32.Mat4 {
	return mgl32.Ortho(-size.X/2, size.X/2, -size.Y/2, size.Y/2, ProjectionNear, ProjectionFar)
}

// ViewMatrix looks from eye along direction with +Y up. Positive rotation
// components rotate about Z, then X, then Y before the look-at. A zero
// direction looks down -Z.
func ViewMatrix(rotation, eye, direction mgl32.Vec3) mgl32.Mat4 {
	if direction == (mgl32.Vec3{}) {
		direction = mgl32.Vec3{0, 0, -1}
	}
	view := mgl32.LookAtV(eye, eye.Add(direction), mgl32.Vec3{0, 1, 0})
	if rotation.Z() > 0 {
		view = view.Mul4(mgl32.HomogRotate3DY(rotation.Z()))
	}
	if rotation.Y() > 0 {
		view = view.Mul4(mgl32.HomogRotate3DX(rotation.Y()))
	}
	if rotation.X() > 0 {
		view = view.Mul4(mgl32.HomogRotate3DZ(rotation.X()))
	}
	return view
}

// GridModel maps the [-1,1] grid geometry onto the footprint.
func GridModel(footprint core.Rect) mgl32.Mat4 {
	c := footprint.Center()
	return mgl32.Translate3D(c.X, c.Y, 0).
		Mul4(mgl32.Scale3D(float32(footprint.W)/2, float32(footprint.H)/2, 1))
}

// ObjectModel maps the [-1,1] quad onto an object centred in its tile,
// scaled to its size and rotated by direction.
func ObjectModel(pos core.Vector2I, size core.Vector2, direction float32) mgl32.Mat4 {
	m := mgl32.Translate3D(float32(pos.X)+0.5, float32(pos.Y)+0.5, ObjectDepthBias).
		Mul4(mgl32.Scale3D(size.X/2, size.Y/2, 1))
	if direction != 0 {
		m = m.Mul4(mgl32.HomogRotate3DZ(direction))
	}
	return m
}

// viewGeometry is the size-dependent part of a frame.
type viewGeometry struct {
	grid core.Size
	proj mgl32.Mat4
}

// geometryMemo recomputes viewGeometry only when the view size changes.
type geometryMemo struct {
	size  core.Vector2
	valid bool
	geom  viewGeometry
}

func (m *geometryMemo) get(size core.Vector2) (viewGeometry, bool) {
	if m.valid && m.size == size {
		return m.geom, false
	}
	fp := GridFootprint(core.Vector2{}, size)
	m.size = size
	m.valid = true
	m.geom = viewGeometry{grid: fp.Size(), proj: Projection(size)}
	return m.geom, true
}

func (m *geometryMemo) reset() { m.valid = false }

// CellTransform returns the source-to-destination affine transform that
// draws a tile of tileSize pixels, taken from a sheet at origin, onto the
// model-space cell [x0,x1]x[y0,y1] under mvp, for a target of res pixels
// with row 0 at the top. The texture's top row maps to y1.
func CellTransform(mvp mgl32.Mat4, x0, y0, x1, y1 float32, tileSize core.Size, origin core.Vector2I, res core.Size) f64.Aff3 {
	a, b, c := float64(mvp.At(0, 0)), float64(mvp.At(0, 1)), float64(mvp.At(0, 3))
	d, e, f := float64(mvp.At(1, 0)), float64(mvp.At(1, 1)), float64(mvp.At(1, 3))
	hw, hh := float64(res.W)/2, float64(res.H)/2
	sx := float64(x1-x0) / float64(tileSize.W)
	sy := float64(y1-y0) / float64(tileSize.H)
	mx, my := float64(x0), float64(y1)

	xx := hw * a * sx
	xy := -hw * b * sy
	x0p := hw * (a*mx + b*my + c + 1)
	yx := -hh * d * sx
	yy := hh * e * sy
	y0p := hh * (1 - (d*mx + e*my + f))

	ox, oy := float64(origin.X), float64(origin.Y)
	return f64.Aff3{
		xx, xy, x0p - xx*ox - xy*oy,
		yx, yy, y0p - yx*ox - yy*oy,
	}
}
