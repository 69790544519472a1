package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"toyworld/internal/config"
	"toyworld/internal/host"
	"toyworld/internal/termview"
)

func main() {
	var logFile string
	cfg, err := config.Parse("toyworld-term", os.Args[1:], func(fs *flag.FlagSet) {
		fs.StringVar(&logFile, "log-file", "toyworld-term.log", "log destination; the terminal is owned by the view")
	})
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "toyworld-term: %v\n", err)
		os.Exit(2)
	}

	log, err := newFileLogger(cfg.Logging, logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("run failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "toyworld-term: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	w, err := host.NewWorld(cfg, log)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer screen.Fini()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	view := termview.New(screen, w, cfg.Host.TPS, log.Named("view"))
	return view.Run(ctx)
}

// newFileLogger builds the configured logger but writes to path, since
// stderr is hidden behind the alternate screen.
func newFileLogger(cfg config.LoggingConfig, path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	cfg.Format = "json"
	return config.NewLoggerTo(cfg, path)
}
