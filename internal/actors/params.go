package actors

import (
	"toyworld/internal/core"
	"toyworld/internal/tileset"
)

// Fire tuning defaults. They carry no derivation; they are the values the
// world was balanced with.
const (
	// IgnitionHeat is the heat of a fire right after it catches.
	IgnitionHeat = 0.2
	// HeatStep is added on every growing update.
	HeatStep = 0.4
	// MaxHeat is the heat of a stable fire.
	MaxHeat = 4
	// StableThreshold is the number of stable updates a fire survives.
	StableThreshold = 1000
	// IgnitedCadence is the number of steps between updates once lit.
	IgnitedCadence = 60
	// HeatRadius is how far, in tiles, heat reaches.
	HeatRadius = 1.5

	unlitHeat = -1
)

// FireParams tunes burning actors.
type FireParams struct {
	IgnitionHeat    float32
	HeatStep        float32
	MaxHeat         float32
	StableThreshold int
	IgnitedCadence  int
	HeatRadius      float32
}

// DefaultFireParams returns the standard fire tuning.
func DefaultFireParams() FireParams {
	return FireParams{
		IgnitionHeat:    IgnitionHeat,
		HeatStep:        HeatStep,
		MaxHeat:         MaxHeat,
		StableThreshold: StableThreshold,
		IgnitedCadence:  IgnitedCadence,
		HeatRadius:      HeatRadius,
	}
}

// Parameters lists the tunables.
func (p *FireParams) Parameters() core.ParameterSnapshot {
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{{
		Name: "Fire",
		Params: []core.Parameter{
			core.FloatParam("fire_ignition_heat", "Ignition heat", float64(p.IgnitionHeat)),
			core.FloatParam("fire_heat_step", "Heat step", float64(p.HeatStep)),
			core.FloatParam("fire_max_heat", "Max heat", float64(p.MaxHeat)),
			core.IntParam("fire_stable_threshold", "Stable updates before extinguishing", p.StableThreshold),
			core.IntParam("fire_ignited_cadence", "Steps between updates once lit", p.IgnitedCadence),
			core.FloatParam("fire_heat_radius", "Heat radius", float64(p.HeatRadius)),
		},
	}}}
}

// ParameterControls lists the HUD steps and bounds of the tunables.
func (p *FireParams) ParameterControls() []core.ParameterControl {
	return []core.ParameterControl{
		{Key: "fire_ignition_heat", Label: "Ignition heat", Type: core.ParamTypeFloat, Step: 0.1, Min: 0.1, HasMin: true},
		{Key: "fire_heat_step", Label: "Heat step", Type: core.ParamTypeFloat, Step: 0.1, Min: 0.1, HasMin: true},
		{Key: "fire_max_heat", Label: "Max heat", Type: core.ParamTypeFloat, Step: 0.5, Min: 0.5, HasMin: true},
		{Key: "fire_stable_threshold", Label: "Stable updates", Type: core.ParamTypeInt, Step: 50, Min: 1, HasMin: true},
		{Key: "fire_ignited_cadence", Label: "Cadence", Type: core.ParamTypeInt, Step: 5, Min: 1, HasMin: true},
		{Key: "fire_heat_radius", Label: "Heat radius", Type: core.ParamTypeFloat, Step: 0.5, Min: 0.5, Max: 8, HasMin: true, HasMax: true},
	}
}

// SetFloatParameter updates a float tunable. Values must be positive.
func (p *FireParams) SetFloatParameter(key string, value float64) bool {
	if value <= 0 {
		return false
	}
	switch key {
	case "fire_ignition_heat":
		p.IgnitionHeat = float32(value)
	case "fire_heat_step":
		p.HeatStep = float32(value)
	case "fire_max_heat":
		p.MaxHeat = float32(value)
	case "fire_heat_radius":
		p.HeatRadius = float32(value)
	default:
		return false
	}
	return true
}

// SetIntParameter updates an integer tunable. Values must be positive.
func (p *FireParams) SetIntParameter(key string, value int) bool {
	if value <= 0 {
		return false
	}
	switch key {
	case "fire_stable_threshold":
		p.StableThreshold = value
	case "fire_ignited_cadence":
		p.IgnitedCadence = value
	default:
		return false
	}
	return true
}

// Env is what actor constructors need from the world: tile ids and tuning.
type Env struct {
	Tiles *tileset.Table
	Fire  FireParams
}

// NewEnv returns an Env using the default tileset when tiles is nil.
func NewEnv(tiles *tileset.Table, fire FireParams) *Env {
	if tiles == nil {
		tiles = tileset.Default()
	}
	return &Env{Tiles: tiles, Fire: fire}
}
