package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"toyworld/internal/config"
	"toyworld/internal/host"
	"toyworld/internal/persist"
	"toyworld/internal/render"
	"toyworld/internal/render/soft"
	"toyworld/internal/world"
)

func main() {
	var restore string
	cfg, err := config.Parse("toyworld", os.Args[1:], func(fs *flag.FlagSet) {
		fs.StringVar(&restore, "restore", "", "start from the named snapshot in PostgreSQL instead of the map")
	})
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "toyworld: %v\n", err)
		os.Exit(2)
	}

	log, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, restore, log); err != nil {
		log.Fatal("run failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, restore string, log *zap.Logger) error {
	var (
		db   *persist.DB
		repo *persist.SnapshotRepo
	)
	if cfg.Database.Enabled || restore != "" {
		var err error
		db, err = persist.NewDB(ctx, cfg.Database, log.Named("db"))
		if err != nil {
			return err
		}
		defer db.Close()
		if err := persist.RunMigrations(ctx, db.Pool); err != nil {
			return err
		}
		repo = persist.NewSnapshotRepo(db)
	}

	w, err := buildWorld(ctx, cfg, repo, restore, log)
	if err != nil {
		return err
	}

	fr, err := newFramer(cfg, w, log.Named("render"))
	if err != nil {
		log.Warn("render disabled", zap.Error(err))
	}

	start := time.Now()
	steps := cfg.World.Steps
	for i := 0; i < steps; i++ {
		if ctx.Err() != nil {
			log.Info("interrupted", zap.Uint64("step", w.Steps()))
			break
		}
		if fr != nil && fr.due(w.Steps()) {
			if err := fr.capture(w); err != nil {
				log.Warn("render disabled", zap.Error(err))
				fr = nil
			}
		}
		if err := w.AdvanceStep(); err != nil {
			return err
		}
	}
	if fr != nil {
		if err := fr.capture(w); err != nil {
			log.Warn("final frame", zap.Error(err))
		}
	}

	if repo != nil && cfg.Database.Enabled {
		snap, err := w.Snapshot()
		if err != nil {
			return err
		}
		// Saving must finish even when the run was interrupted.
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := repo.Save(saveCtx, cfg.Database.SnapshotName, snap); err != nil {
			return err
		}
		log.Info("snapshot saved", zap.String("name", cfg.Database.SnapshotName), zap.Uint64("step", snap.Step))
	}

	summary(w, time.Since(start), fr, log)
	return nil
}

func buildWorld(ctx context.Context, cfg *config.Config, repo *persist.SnapshotRepo, restore string, log *zap.Logger) (*world.World, error) {
	if restore == "" {
		return host.NewWorld(cfg, log)
	}
	snap, err := repo.Load(ctx, restore)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %q: %w", restore, err)
	}
	env, err := host.Env(cfg)
	if err != nil {
		return nil, err
	}
	w, err := world.Restore(snap, env, log.Named("world"))
	if err != nil {
		return nil, err
	}
	log.Info("world restored", zap.String("name", restore), zap.Uint64("step", w.Steps()))
	return w, nil
}

func summary(w *world.World, elapsed time.Duration, fr *framer, log *zap.Logger) {
	census := w.Census()
	frames := 0
	if fr != nil {
		frames = fr.count
	}
	log.Info("run complete",
		zap.Uint64("steps", w.Steps()),
		zap.Duration("elapsed", elapsed),
		zap.Int("burning", census["fireplace_burning"]),
		zap.Int("cold_fireplaces", census["fireplace"]),
		zap.Int("heat_sources", len(w.Atlas().HeatSources())),
		zap.Int("frames", frames),
	)
}

// framer renders the world with the soft device and writes PNG frames.
type framer struct {
	req    *render.Request
	target *soft.Target
	dir    string
	every  int
	count  int
	log    *zap.Logger
}

func newFramer(cfg *config.Config, w *world.World, log *zap.Logger) (*framer, error) {
	if !cfg.Render.Enabled {
		return nil, nil
	}
	req := render.NewRequest(log)
	if err := req.SetResolution(cfg.Render.Width, cfg.Render.Height); err != nil {
		return nil, err
	}
	req.SetSize(cfg.Render.ViewWidth, cfg.Render.ViewHeight)
	req.SetCenter(cfg.Render.CenterX, cfg.Render.CenterY)
	req.GatherImage = cfg.Render.GatherImage || cfg.Render.FrameDir != ""
	rd := render.NewRenderer(soft.NewDevice(), log)
	if err := req.Init(rd, w); err != nil {
		return nil, err
	}
	if cfg.Render.FrameDir != "" {
		if err := os.MkdirAll(cfg.Render.FrameDir, 0o755); err != nil {
			return nil, fmt.Errorf("frame dir: %w", err)
		}
	}
	return &framer{
		req:    req,
		target: soft.NewTarget(req.Resolution()),
		dir:    cfg.Render.FrameDir,
		every:  max(cfg.Render.FrameEvery, 1),
		log:    log,
	}, nil
}

func (f *framer) due(step uint64) bool { return step%uint64(f.every) == 0 }

func (f *framer) capture(w *world.World) error {
	if err := f.req.Draw(f.target, w); err != nil {
		return err
	}
	f.count++
	st := f.req.Stats()
	f.log.Debug("frame",
		zap.Uint64("step", w.Steps()),
		zap.Int("tiles", st.Tiles),
		zap.Int("objects", st.Objects),
	)
	if f.dir == "" {
		return nil
	}
	res := f.req.Resolution()
	img := render.ImageFromBGRA(f.req.Image(), res.W, res.H)
	name := filepath.Join(f.dir, fmt.Sprintf("frame_%06d.png", w.Steps()))
	out, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return out.Close()
}
