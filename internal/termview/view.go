// Package termview shows a running world in a terminal, two pixels per
// character cell.
package termview

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"toyworld/internal/core"
	"toyworld/internal/render"
	"toyworld/internal/render/soft"
	"toyworld/internal/world"
)

const (
	// PixelsPerTile is the default zoom.
	PixelsPerTile = 2
	maxCatchUp    = 8
	panStep       = 1
)

// View paints a world into a tcell screen. The bottom row is a status line.
type View struct {
	screen tcell.Screen
	w      *world.World
	req    *render.Request
	rd     *render.Renderer
	target *soft.Target
	timer  *core.FixedStep

	ppt      float32
	paused   bool
	stepOnce bool
	renderOK bool
	status   string
	log      *zap.Logger
}

// New prepares a view of w centred on the world. A render setup failure is
// logged and the view keeps simulating without pixels.
func New(screen tcell.Screen, w *world.World, tps int, log *zap.Logger) *View {
	if log == nil {
		log = zap.NewNop()
	}
	v := &View{
		screen: screen,
		w:      w,
		req:    render.NewRequest(log.Named("render")),
		rd:     render.NewRenderer(soft.NewDevice(), log.Named("render")),
		timer:  core.NewFixedStep(tps),
		ppt:    PixelsPerTile,
		log:    log,
	}
	v.req.GatherImage = true
	c := w.Atlas().Bounds().Center()
	v.req.SetCenter(c.X, c.Y)
	v.Resize()
	if err := v.req.Init(v.rd, w); err != nil {
		log.Warn("render disabled", zap.Error(err))
	} else {
		v.renderOK = true
	}
	return v
}

// Resize matches the render resolution to the screen.
func (v *View) Resize() {
	cols, rows := v.screen.Size()
	res := core.Size{
		W: clampRes(cols),
		H: clampRes((rows - 1) * 2),
	}
	if err := v.req.SetResolution(res.W, res.H); err != nil {
		v.log.Warn("resize", zap.Error(err))
		return
	}
	v.req.SetSize(float32(res.W)/v.ppt, float32(res.H)/v.ppt)
	v.target = soft.NewTarget(res)
}

func clampRes(n int) int {
	return min(max(n, render.MinResolution), render.MaxResolution)
}

// Paused reports whether stepping is suspended.
func (v *View) Paused() bool { return v.paused }

// HandleEvent applies a key or resize event. It returns false when the
// viewer should quit.
func (v *View) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		v.screen.Sync()
		v.Resize()
	case *tcell.EventKey:
		c := v.req.Center()
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyEnter:
			v.paused = false
		case tcell.KeyLeft:
			v.req.SetCenter(c.X()-panStep, c.Y())
		case tcell.KeyRight:
			v.req.SetCenter(c.X()+panStep, c.Y())
		case tcell.KeyUp:
			v.req.SetCenter(c.X(), c.Y()+panStep)
		case tcell.KeyDown:
			v.req.SetCenter(c.X(), c.Y()-panStep)
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				v.paused = !v.paused
			case 'n':
				v.stepOnce = true
			case '+':
				v.zoom(2)
			case '-':
				v.zoom(0.5)
			}
		}
	}
	return true
}

func (v *View) zoom(f float32) {
	v.ppt = min(max(v.ppt*f, 0.25), 64)
	v.Resize()
}

// Tick advances the due steps and repaints.
func (v *View) Tick() error {
	n := v.timer.Steps(maxCatchUp)
	if v.paused {
		n = 0
		if v.stepOnce {
			n = 1
		}
	}
	v.stepOnce = false
	if err := v.w.Run(n); err != nil {
		return err
	}
	v.Frame()
	v.screen.Show()
	return nil
}

// Frame draws the world and status line into the screen buffer.
func (v *View) Frame() {
	v.screen.Clear()
	if v.renderOK {
		if err := v.req.Draw(v.target, v.w); err != nil {
			v.log.Warn("render disabled", zap.Error(err))
			v.renderOK = false
		} else {
			v.paint(v.req.Image(), v.req.Resolution())
		}
	}
	v.status = v.statusLine()
	_, rows := v.screen.Size()
	st := tcell.StyleDefault.Reverse(true)
	for i, r := range []rune(v.status) {
		v.screen.SetContent(i, rows-1, r, nil, st)
	}
}

func (v *View) statusLine() string {
	state := "running"
	if v.paused {
		state = "paused"
	}
	c := v.req.Center()
	return fmt.Sprintf(" step %d  %s  heat %d  view (%.1f,%.1f)  [space] pause [n] step [q] quit ",
		v.w.Steps(), state, len(v.w.Atlas().HeatSources()), c.X(), c.Y())
}

// paint maps pixel rows 2y and 2y+1 onto cell row y using an upper half
// block: foreground is the top pixel, background the bottom one.
func (v *View) paint(img []byte, res core.Size) {
	cols, rows := v.screen.Size()
	for y := 0; y < rows-1 && 2*y+1 < res.H; y++ {
		for x := 0; x < cols && x < res.W; x++ {
			top := pixel(img, res, x, 2*y)
			bottom := pixel(img, res, x, 2*y+1)
			v.screen.SetContent(x, y, '▀', nil, tcell.StyleDefault.Foreground(top).Background(bottom))
		}
	}
}

func pixel(img []byte, res core.Size, x, y int) tcell.Color {
	i := (y*res.W + x) * 4
	return tcell.NewRGBColor(int32(img[i+2]), int32(img[i+1]), int32(img[i]))
}

// Run drives the view until ctx ends or the user quits.
func (v *View) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(v.timer.Interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok || !v.HandleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			if err := v.Tick(); err != nil {
				return err
			}
		}
	}
}
