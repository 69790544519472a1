//go:build ebiten

package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"toyworld/internal/atlas"
	"toyworld/internal/core"
)

// Overlay draws the heat map on top of the world view. H toggles it.
type Overlay struct {
	atlas   *atlas.Atlas
	maxHeat float32
	show    bool
	img     *ebiten.Image
	buf     []byte
}

// NewOverlay constructs a heat overlay scaled to maxHeat.
func NewOverlay(a *atlas.Atlas, maxHeat float32) *Overlay {
	return &Overlay{atlas: a, maxHeat: maxHeat}
}

// SetAtlas points the overlay at another world, e.g. after a restore.
func (o *Overlay) SetAtlas(a *atlas.Atlas) { o.atlas = a }

// Update toggles the overlay.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		o.show = !o.show
	}
}

// Draw tints the tiles of footprint. view is the visible world rectangle and
// res the pixel size it is shown at.
func (o *Overlay) Draw(screen *ebiten.Image, footprint core.Rect, view core.RectF, res core.Size) {
	if !o.show || footprint.W <= 0 || footprint.H <= 0 {
		return
	}
	if o.img == nil || o.img.Bounds().Dx() != footprint.W || o.img.Bounds().Dy() != footprint.H {
		o.img = ebiten.NewImage(footprint.W, footprint.H)
	}
	o.buf = HeatMask(o.atlas, footprint, o.maxHeat, o.buf)
	o.img.WritePixels(o.buf)

	sx := float64(res.W) / float64(view.W)
	sy := float64(res.H) / float64(view.H)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(sx, sy)
	op.GeoM.Translate(
		(float64(footprint.X)-float64(view.X))*sx,
		(float64(view.Y+view.H)-float64(footprint.Y+footprint.H))*sy,
	)
	screen.DrawImage(o.img, op)
}
