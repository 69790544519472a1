//go:build ebiten

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"toyworld/internal/app"
	"toyworld/internal/config"
	"toyworld/internal/core"
	"toyworld/internal/host"
)

func main() {
	cfg, err := config.Parse("toyworld-gui", os.Args[1:], nil)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "toyworld-gui: %v\n", err)
		os.Exit(2)
	}
	log, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	w, err := host.NewWorld(cfg, log)
	if err != nil {
		log.Fatal("build world", zap.Error(err))
	}

	game, err := app.New(w, app.Options{
		Resolution: core.Size{W: cfg.Render.Width, H: cfg.Render.Height},
		View:       core.Vector2{X: cfg.Render.ViewWidth, Y: cfg.Render.ViewHeight},
	}, log)
	if err != nil {
		log.Fatal("start", zap.Error(err))
	}
	defer game.Close()

	width, height := game.Layout(0, 0)
	scale := max(cfg.Host.Scale, 1)
	ebiten.SetWindowTitle("toyworld")
	ebiten.SetTPS(cfg.Host.TPS)
	ebiten.SetWindowSize(width*scale, height*scale)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal("run", zap.Error(err))
	}
}
