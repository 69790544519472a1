//go:build !ebiten

package ui

import (
	"toyworld/internal/atlas"
	"toyworld/internal/core"
)

// Overlay is a placeholder for builds without the ebiten tag.
type Overlay struct{}

// NewOverlay returns an overlay that draws nothing.
func NewOverlay(*atlas.Atlas, float32) *Overlay { return &Overlay{} }

// SetAtlas is a no-op without ebiten.
func (o *Overlay) SetAtlas(*atlas.Atlas) {}

// Update is a no-op without ebiten.
func (o *Overlay) Update() {}

// Draw is a no-op without ebiten.
func (o *Overlay) Draw(any, core.Rect, core.RectF, core.Size) {}
