package world

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"toyworld/internal/actors"
	"toyworld/internal/atlas"
)

// Placement names an actor kind on a layer.
type Placement struct {
	Kind  string `yaml:"kind"`
	Layer string `yaml:"layer"`
}

// MapActor is a single placed actor.
type MapActor struct {
	Placement `yaml:",inline"`
	X         int `yaml:"x"`
	Y         int `yaml:"y"`
}

// MapScatter places a kind randomly on free cells.
type MapScatter struct {
	Placement `yaml:",inline"`
	Density   float64 `yaml:"density"`
}

// Map is the YAML world description. Rows are read top row first, so the
// first row is the highest y. Entries apply in order: fill, rows, actors,
// scatter.
type Map struct {
	Width   int                  `yaml:"width"`
	Height  int                  `yaml:"height"`
	Seed    int64                `yaml:"seed"`
	Fill    []Placement          `yaml:"fill"`
	Legend  map[string]Placement `yaml:"legend"`
	Rows    []string             `yaml:"rows"`
	Actors  []MapActor           `yaml:"actors"`
	Scatter []MapScatter         `yaml:"scatter"`
}

// LoadMap reads a YAML map file.
func LoadMap(file string) (*Map, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read map %s: %w", file, err)
	}
	m, err := ParseMap(data)
	if err != nil {
		return nil, fmt.Errorf("parse map %s: %w", file, err)
	}
	return m, nil
}

// ParseMap decodes and validates a YAML map.
func ParseMap(data []byte) (*Map, error) {
	var m Map
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if len(m.Rows) > 0 {
		if m.Height == 0 {
			m.Height = len(m.Rows)
		}
		if m.Width == 0 {
			m.Width = len([]rune(m.Rows[0]))
		}
	}
	if m.Width <= 0 || m.Height <= 0 {
		return nil, fmt.Errorf("map size %dx%d must be positive", m.Width, m.Height)
	}
	if len(m.Rows) > m.Height {
		return nil, fmt.Errorf("map has %d rows for height %d", len(m.Rows), m.Height)
	}
	for i, row := range m.Rows {
		if n := len([]rune(row)); n > m.Width {
			return nil, fmt.Errorf("map row %d has %d cells for width %d", i, n, m.Width)
		}
	}
	for _, s := range m.Scatter {
		if s.Density < 0 || s.Density > 1 {
			return nil, fmt.Errorf("scatter %s: density %v outside [0,1]", s.Kind, s.Density)
		}
	}
	return &m, nil
}

// Build creates a world from the map. A zero seed in the map is replaced by
// seed.
func (m *Map) Build(env *actors.Env, seed int64, log *zap.Logger) (*World, error) {
	if m.Seed != 0 {
		seed = m.Seed
	}
	w := New(Config{Width: m.Width, Height: m.Height, Seed: seed}, env, log)
	if err := m.Apply(w); err != nil {
		return nil, err
	}
	return w, nil
}

// Apply places the map's content into an existing world.
func (m *Map) Apply(w *World) error {
	for _, f := range m.Fill {
		layer, err := atlas.ParseLayer(f.Layer)
		if err != nil {
			return fmt.Errorf("fill %s: %w", f.Kind, err)
		}
		if err := w.Fill(f.Kind, layer); err != nil {
			return fmt.Errorf("fill %s: %w", f.Kind, err)
		}
	}
	for i, row := range m.Rows {
		y := m.Height - 1 - i
		for x, r := range []rune(row) {
			p, ok := m.Legend[string(r)]
			if !ok {
				continue
			}
			layer, err := atlas.ParseLayer(p.Layer)
			if err != nil {
				return fmt.Errorf("legend %q: %w", r, err)
			}
			if err := w.Place(p.Kind, layer, x, y); err != nil {
				return fmt.Errorf("row %d col %d: %w", i, x, err)
			}
		}
	}
	for _, a := range m.Actors {
		layer, err := atlas.ParseLayer(a.Layer)
		if err != nil {
			return fmt.Errorf("actor %s: %w", a.Kind, err)
		}
		if err := w.Place(a.Kind, layer, a.X, a.Y); err != nil {
			return err
		}
	}
	for _, s := range m.Scatter {
		layer, err := atlas.ParseLayer(s.Layer)
		if err != nil {
			return fmt.Errorf("scatter %s: %w", s.Kind, err)
		}
		n, err := w.Scatter(s.Kind, layer, s.Density)
		if err != nil {
			return err
		}
		w.log.Debug("scattered", zap.String("kind", s.Kind), zap.Int("count", n))
	}
	return nil
}
