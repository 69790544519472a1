//go:build ebiten

package app

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"toyworld/internal/core"
	"toyworld/internal/render"
	"toyworld/internal/render/gpu"
	"toyworld/internal/ui"
	"toyworld/internal/world"
)

const hudWidth = 260

// Options sizes the window and the initial camera.
type Options struct {
	Resolution core.Size
	View       core.Vector2
}

// Game adapts a world to the ebiten.Game interface.
type Game struct {
	w       *world.World
	initial world.Snapshot

	req      *render.Request
	rd       *render.Renderer
	target   *gpu.Target
	renderOK bool

	overlay *ui.Overlay
	hud     *ui.HUD

	paused   bool
	tickOnce bool
	log      *zap.Logger
}

// New constructs a Game for w. The world as passed in is what R restores.
func New(w *world.World, opts Options, log *zap.Logger) (*Game, error) {
	if log == nil {
		log = zap.NewNop()
	}
	snap, err := w.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("snapshot initial world: %w", err)
	}
	g := &Game{
		w:       w,
		initial: snap,
		req:     render.NewRequest(log.Named("render")),
		rd:      render.NewRenderer(gpu.NewDevice(), log.Named("render")),
		overlay: ui.NewOverlay(w.Atlas(), w.Env().Fire.MaxHeat),
		hud:     ui.NewHUD("Fire Controls", ui.NewControls(&w.Env().Fire), hudWidth),
		log:     log,
	}
	if err := g.req.SetResolution(opts.Resolution.W, opts.Resolution.H); err != nil {
		return nil, err
	}
	g.req.SetSize(opts.View.X, opts.View.Y)
	c := w.Atlas().Bounds().Center()
	g.req.SetCenter(c.X, c.Y)
	g.target = gpu.NewTarget(g.req.Resolution())
	if err := g.req.Init(g.rd, w); err != nil {
		log.Warn("render disabled", zap.Error(err))
	} else {
		g.renderOK = true
	}
	return g, nil
}

// Restore puts the world back to the state New was given.
func (g *Game) Restore() error {
	w, err := world.Restore(g.initial, g.w.Env(), g.log)
	if err != nil {
		return err
	}
	g.w = w
	g.overlay.SetAtlas(w.Atlas())
	g.tickOnce = false
	return nil
}

// Update handles per-frame logic and advances the simulation.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.paused = false
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := g.Restore(); err != nil {
			g.log.Error("restore", zap.Error(err))
		}
	}
	g.camera()

	g.overlay.Update()
	g.hud.Update(g.req.Resolution().W)
	g.hud.SetStatus(
		fmt.Sprintf("step %d", g.w.Steps()),
		fmt.Sprintf("heat sources %d", len(g.w.Atlas().HeatSources())),
		g.state(),
	)

	if !g.paused || g.tickOnce {
		if err := g.w.AdvanceStep(); err != nil {
			return err
		}
		g.tickOnce = false
	}
	return nil
}

func (g *Game) state() string {
	if g.paused {
		return "paused"
	}
	return "running"
}

func (g *Game) camera() {
	c := g.req.Center()
	x, y := c.X(), c.Y()
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		x--
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		x++
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		y++
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		y--
	}
	g.req.SetCenter(x, y)

	s := g.req.Size()
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		g.req.SetSize(s.X/1.25, s.Y/1.25)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
		g.req.SetSize(s.X*1.25, s.Y*1.25)
	}
}

// Draw renders the current world state.
func (g *Game) Draw(screen *ebiten.Image) {
	res := g.req.Resolution()
	if g.renderOK {
		if err := g.req.Draw(g.target, g.w); err != nil {
			g.log.Warn("render disabled", zap.Error(err))
			g.renderOK = false
		} else {
			screen.DrawImage(g.target.Image(), nil)
		}
	}
	g.overlay.Draw(screen, g.req.Footprint(), g.req.View(), res)
	g.hud.Draw(screen, res.W, res.H)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	res := g.req.Resolution()
	return res.W + g.hud.Width(), res.H
}

// Close releases the render request.
func (g *Game) Close() { g.req.Dispose() }
