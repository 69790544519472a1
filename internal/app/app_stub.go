//go:build !ebiten

package app

import (
	"errors"

	"go.uber.org/zap"

	"toyworld/internal/core"
	"toyworld/internal/world"
)

// ErrNoGUI is returned when the binary was built without the ebiten tag.
var ErrNoGUI = errors.New("app: the GUI requires building with the 'ebiten' tag")

// Options sizes the window and the initial camera.
type Options struct {
	Resolution core.Size
	View       core.Vector2
}

// Game is a placeholder that satisfies the API expected by the GUI build.
type Game struct{}

// New reports that the ebiten build tag is required for GUI support.
func New(*world.World, Options, *zap.Logger) (*Game, error) { return nil, ErrNoGUI }

// Restore is a no-op placeholder.
func (g *Game) Restore() error { return ErrNoGUI }

// Update always reports that the GUI build tag is missing.
func (g *Game) Update() error { return ErrNoGUI }

// Draw is a no-op placeholder to satisfy the interface shape.
func (g *Game) Draw(any) {}

// Layout returns zeros in the headless build.
func (g *Game) Layout(int, int) (int, int) { return 0, 0 }

// Close is a no-op placeholder.
func (g *Game) Close() {}
