//go:build !ebiten

package ui

// HUD is a placeholder for builds without the ebiten tag.
type HUD struct{ controls *Controls }

// NewHUD returns a HUD that draws nothing.
func NewHUD(_ string, controls *Controls, _ int) *HUD { return &HUD{controls: controls} }

// Width is always zero without ebiten.
func (h *HUD) Width() int { return 0 }

// SetStatus is a no-op without ebiten.
func (h *HUD) SetStatus(...string) {}

// Update refreshes the control values.
func (h *HUD) Update(int) {
	if h != nil && h.controls != nil {
		h.controls.Refresh()
	}
}

// Draw is a no-op without ebiten.
func (h *HUD) Draw(any, int, int) {}
