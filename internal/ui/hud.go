//go:build ebiten

package ui

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

// HUD renders the parameter panel to the right of the world view.
type HUD struct {
	controls     *Controls
	width        int
	panel        *ebiten.Image
	panelOffsetX int
	title        string
	status       []string

	layout []controlLayout
	pixel  *ebiten.Image
}

type controlLayout struct {
	top       int
	minusRect image.Rectangle
	plusRect  image.Rectangle
}

// NewHUD constructs a HUD over controls with the given panel width.
func NewHUD(title string, controls *Controls, width int) *HUD {
	h := &HUD{controls: controls, width: max(width, 0), title: title}
	if h.width > 0 {
		h.pixel = ebiten.NewImage(1, 1)
		h.pixel.Fill(color.White)
	}
	h.layoutControls()
	return h
}

// Width returns the panel width.
func (h *HUD) Width() int {
	if h == nil {
		return 0
	}
	return h.width
}

// SetStatus replaces the status lines shown under the title.
func (h *HUD) SetStatus(lines ...string) { h.status = lines }

// Update refreshes values and handles clicks on the +/- buttons.
func (h *HUD) Update(panelOffsetX int) {
	if h == nil {
		return
	}
	h.panelOffsetX = panelOffsetX
	h.controls.Refresh()
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	if mx < h.panelOffsetX {
		return
	}
	px := mx - h.panelOffsetX
	for i, l := range h.layout {
		if pointInRect(px, my, l.minusRect) {
			h.controls.Adjust(i, -1)
			return
		}
		if pointInRect(px, my, l.plusRect) {
			h.controls.Adjust(i, 1)
			return
		}
	}
}

// Draw paints the panel at offsetX with the given height.
func (h *HUD) Draw(screen *ebiten.Image, offsetX, height int) {
	if h == nil || h.width <= 0 || height <= 0 {
		return
	}
	if h.panel == nil || h.panel.Bounds().Dy() != height {
		h.panel = ebiten.NewImage(h.width, height)
	}
	h.panel.Fill(color.RGBA{R: 16, G: 16, B: 20, A: 255})
	h.drawControls()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offsetX), 0)
	screen.DrawImage(h.panel, op)
}

func (h *HUD) drawControls() {
	face := basicfont.Face7x13
	y := panelPadding + headerBaseline
	text.Draw(h.panel, h.title, face, panelPadding, y, color.RGBA{R: 200, G: 200, B: 210, A: 255})
	for _, line := range h.status {
		y += statusSpacing
		text.Draw(h.panel, line, face, panelPadding, y, color.RGBA{R: 160, G: 160, B: 170, A: 255})
	}
	states := h.controls.States()
	for i, state := range states {
		l := h.layout[i]
		labelY := l.top + labelBaseline
		text.Draw(h.panel, state.Control.Label, face, panelPadding, labelY, color.RGBA{R: 220, G: 220, B: 230, A: 255})
		valueColor := color.RGBA{R: 220, G: 220, B: 230, A: 255}
		if !state.HasValue {
			valueColor = color.RGBA{R: 160, G: 160, B: 170, A: 255}
		}
		bounds := text.BoundString(face, state.Value)
		valueX := l.minusRect.Min.X - buttonGap - bounds.Dx()
		text.Draw(h.panel, state.Value, face, valueX, labelY, valueColor)

		h.drawButton(l.minusRect, "-", h.controls.CanAdjust(i, -1))
		h.drawButton(l.plusRect, "+", h.controls.CanAdjust(i, 1))
	}
}

func (h *HUD) drawButton(rect image.Rectangle, label string, enabled bool) {
	bg := color.RGBA{R: 54, G: 56, B: 64, A: 255}
	fg := color.RGBA{R: 230, G: 230, B: 240, A: 255}
	if !enabled {
		bg = color.RGBA{R: 32, G: 34, B: 40, A: 255}
		fg = color.RGBA{R: 120, G: 120, B: 130, A: 255}
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(rect.Dx()), float64(rect.Dy()))
	op.GeoM.Translate(float64(rect.Min.X), float64(rect.Min.Y))
	op.ColorScale.ScaleWithColor(bg)
	h.panel.DrawImage(h.pixel, op)

	face := basicfont.Face7x13
	bounds := text.BoundString(face, label)
	x := rect.Min.X + (rect.Dx()-bounds.Dx())/2
	y := rect.Min.Y + (rect.Dy()-bounds.Dy())/2 + bounds.Dy()
	text.Draw(h.panel, label, face, x, y, fg)
}

func (h *HUD) layoutControls() {
	n := len(h.controls.States())
	h.layout = make([]controlLayout, n)
	for i := range h.layout {
		top := controlsTop + i*lineHeight
		buttonY := top + (lineHeight-buttonSize)/2
		plusRect := image.Rect(h.width-panelPadding-buttonSize, buttonY, h.width-panelPadding, buttonY+buttonSize)
		minusRect := image.Rect(plusRect.Min.X-buttonGap-buttonSize, buttonY, plusRect.Min.X-buttonGap, buttonY+buttonSize)
		h.layout[i] = controlLayout{top: top, minusRect: minusRect, plusRect: plusRect}
	}
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return x >= rect.Min.X && x < rect.Max.X && y >= rect.Min.Y && y < rect.Max.Y
}

const (
	panelPadding   = 12
	lineHeight     = 36
	buttonSize     = 24
	buttonGap      = 6
	headerBaseline = 18
	labelBaseline  = 24
	statusSpacing  = 18
	statusLines    = 3
	controlsTop    = panelPadding + headerBaseline + statusLines*statusSpacing + 14
)
