package world

import (
	"fmt"

	"go.uber.org/zap"

	"toyworld/internal/actors"
	"toyworld/internal/atlas"
	"toyworld/internal/core"
	"toyworld/internal/schedule"
)

// Snapshot is a complete, serialisable copy of a world.
type Snapshot struct {
	Step   uint64        `json:"step" yaml:"step"`
	Width  int           `json:"width" yaml:"width"`
	Height int           `json:"height" yaml:"height"`
	Seed   int64         `json:"seed" yaml:"seed"`
	RNG    []byte        `json:"rng" yaml:"rng"`
	Actors []ActorRecord `json:"actors" yaml:"actors"`
	// Schedule lists scheduled actors in scheduling order.
	Schedule []ScheduleRecord `json:"schedule" yaml:"schedule"`
	// Heat lists registered heat sources in registration order.
	Heat []Location `json:"heat" yaml:"heat"`
}

// Location addresses one cell of one layer.
type Location struct {
	Layer string `json:"layer" yaml:"layer"`
	X     int    `json:"x" yaml:"x"`
	Y     int    `json:"y" yaml:"y"`
}

// ActorRecord is one placed actor.
type ActorRecord struct {
	Location `yaml:",inline"`
	Kind     string             `json:"kind" yaml:"kind"`
	State    map[string]float64 `json:"state,omitempty" yaml:"state,omitempty"`
}

// ScheduleRecord is one scheduled actor and its countdown.
type ScheduleRecord struct {
	Location  `yaml:",inline"`
	Remaining int `json:"remaining" yaml:"remaining"`
}

// Snapshot captures the world state.
func (w *World) Snapshot() (Snapshot, error) {
	rng, err := w.rng.MarshalBinary()
	if err != nil {
		return Snapshot{}, fmt.Errorf("capture rng: %w", err)
	}
	s := Snapshot{
		Step:   w.sched.Steps(),
		Width:  w.cfg.Width,
		Height: w.cfg.Height,
		Seed:   w.cfg.Seed,
		RNG:    rng,
	}
	record := func(layer atlas.LayerType) func(atlas.GameActor) {
		return func(a atlas.GameActor) {
			rec := ActorRecord{Location: locate(a.Position(), layer), Kind: a.Kind()}
			if st, ok := a.(atlas.Stateful); ok {
				rec.State = st.State()
			}
			s.Actors = append(s.Actors, rec)
		}
	}
	for _, t := range w.atlas.TileLayers() {
		t.Each(record(t.Type()))
	}
	for _, o := range w.atlas.ObjectLayers() {
		o.Each(record(o.Type()))
	}

	var missing error
	w.sched.Each(func(a atlas.Schedulable, remaining int) {
		at, ok := w.atlas.Locate(a)
		if !ok {
			missing = fmt.Errorf("scheduled %s is not placed", a.Kind())
			return
		}
		s.Schedule = append(s.Schedule, ScheduleRecord{Location: locate(at.Position, at.Layer), Remaining: remaining})
	})
	if missing != nil {
		return Snapshot{}, missing
	}
	for _, h := range w.atlas.HeatSources() {
		at, ok := w.atlas.Locate(h)
		if !ok {
			return Snapshot{}, fmt.Errorf("heat source %s is not placed", h.Kind())
		}
		s.Heat = append(s.Heat, locate(at.Position, at.Layer))
	}
	return s, nil
}

// Restore rebuilds a world from a snapshot. Scheduling order, countdowns,
// heat registrations and the random source continue where they left off.
func Restore(s Snapshot, env *actors.Env, log *zap.Logger) (*World, error) {
	w := newDetached(Config{Width: s.Width, Height: s.Height, Seed: s.Seed}, env, log)
	if len(s.RNG) > 0 {
		if err := w.rng.UnmarshalBinary(s.RNG); err != nil {
			return nil, fmt.Errorf("restore rng: %w", err)
		}
	}
	for _, rec := range s.Actors {
		layer, err := atlas.ParseLayer(rec.Layer)
		if err != nil {
			return nil, err
		}
		actor, err := actors.New(w.env, rec.Kind, core.Vector2I{X: rec.X, Y: rec.Y})
		if err != nil {
			return nil, err
		}
		if st, ok := actor.(atlas.Stateful); ok && rec.State != nil {
			if err := st.SetState(rec.State); err != nil {
				return nil, fmt.Errorf("restore %s at (%d,%d): %w", rec.Kind, rec.X, rec.Y, err)
			}
		}
		if err := w.atlas.Add(actor, layer); err != nil {
			return nil, err
		}
	}

	w.atlas.AddObserver(w.sched)
	for _, rec := range s.Schedule {
		at, err := w.lookup(rec.Location)
		if err != nil {
			return nil, fmt.Errorf("restore schedule: %w", err)
		}
		a, ok := at.Actor.(atlas.Schedulable)
		if !ok {
			return nil, fmt.Errorf("restore schedule: %s is not schedulable", at.Actor.Kind())
		}
		w.sched.Track(a)
		w.sched.SetRemaining(a, rec.Remaining)
	}
	for _, loc := range s.Heat {
		at, err := w.lookup(loc)
		if err != nil {
			return nil, fmt.Errorf("restore heat: %w", err)
		}
		h, ok := at.Actor.(atlas.HeatSource)
		if !ok {
			return nil, fmt.Errorf("restore heat: %s is not a heat source", at.Actor.Kind())
		}
		w.atlas.RegisterHeatSource(h)
	}
	w.sched.SetSteps(s.Step)
	return w, nil
}

func newDetached(cfg Config, env *actors.Env, log *zap.Logger) *World {
	if log == nil {
		log = zap.NewNop()
	}
	if env == nil {
		env = actors.NewEnv(nil, actors.DefaultFireParams())
	}
	return &World{
		cfg:   cfg,
		env:   env,
		atlas: atlas.New(cfg.Width, cfg.Height, log.Named("atlas")),
		sched: schedule.New(log.Named("schedule")),
		rng:   core.NewRNG(cfg.Seed),
		log:   log,
	}
}

func (w *World) lookup(loc Location) (atlas.ActorPosition, error) {
	layer, err := atlas.ParseLayer(loc.Layer)
	if err != nil {
		return atlas.ActorPosition{}, err
	}
	found := w.atlas.ActorsAt(core.Vector2I{X: loc.X, Y: loc.Y}, layer)
	if len(found) == 0 {
		return atlas.ActorPosition{}, fmt.Errorf("no actor at (%d,%d) on %s", loc.X, loc.Y, loc.Layer)
	}
	return found[0], nil
}

func locate(p core.Vector2I, layer atlas.LayerType) Location {
	return Location{Layer: layer.String(), X: p.X, Y: p.Y}
}
