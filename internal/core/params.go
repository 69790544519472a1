package core

import (
	"fmt"
	"strconv"
)

// ParamType enumerates supported parameter value kinds.
type ParamType string

const (
	// ParamTypeInt denotes integer-valued parameters.
	ParamTypeInt ParamType = "int"
	// ParamTypeFloat denotes floating-point parameters.
	ParamTypeFloat ParamType = "float"
)

// Parameter describes a single tunable value.
type Parameter struct {
	Key         string
	Label       string
	Type        ParamType
	Value       string
	Description string
}

// ParameterGroup clusters related parameters for presentation purposes.
type ParameterGroup struct {
	Name   string
	Params []Parameter
}

// ParameterSnapshot captures the current set of tunables.
type ParameterSnapshot struct {
	Groups []ParameterGroup
}

// ParameterControl describes an adjustable parameter that should be exposed on
// the HUD. Steps and bounds are optional and interpreted based on the
// parameter type.
type ParameterControl struct {
	Key   string
	Label string
	Type  ParamType

	Step float64

	Min    float64
	Max    float64
	HasMin bool
	HasMax bool
}

// ParameterControlsProvider exposes the list of HUD-adjustable controls.
type ParameterControlsProvider interface {
	ParameterControls() []ParameterControl
}

// Lookup returns the parameter stored under key.
func (s ParameterSnapshot) Lookup(key string) (Parameter, bool) {
	for _, g := range s.Groups {
		for _, p := range g.Params {
			if p.Key == key {
				return p, true
			}
		}
	}
	return Parameter{}, false
}

// IntParameterSetter updates integer parameters by key.
type IntParameterSetter interface {
	SetIntParameter(key string, value int) bool
}

// FloatParameterSetter updates floating point parameters by key.
type FloatParameterSetter interface {
	SetFloatParameter(key string, value float64) bool
}

// ParameterSetter is implemented by tunables that accept both kinds.
type ParameterSetter interface {
	Parameters() ParameterSnapshot
	IntParameterSetter
	FloatParameterSetter
}

// ApplyOverride parses value according to the declared type of key and
// hands it to the matching setter.
func ApplyOverride(s ParameterSetter, key, value string) error {
	p, ok := s.Parameters().Lookup(key)
	if !ok {
		return fmt.Errorf("unknown parameter %q", key)
	}
	switch p.Type {
	case ParamTypeInt:
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("parameter %s: %w", key, err)
		}
		if !s.SetIntParameter(key, v) {
			return fmt.Errorf("parameter %s rejected %d", key, v)
		}
	case ParamTypeFloat:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("parameter %s: %w", key, err)
		}
		if !s.SetFloatParameter(key, v) {
			return fmt.Errorf("parameter %s rejected %g", key, v)
		}
	default:
		return fmt.Errorf("parameter %s has unsupported type %q", key, p.Type)
	}
	return nil
}

// IntParam builds an integer Parameter.
func IntParam(key, label string, value int) Parameter {
	return Parameter{Key: key, Label: label, Type: ParamTypeInt, Value: strconv.Itoa(value)}
}

// FloatParam builds a floating point Parameter.
func FloatParam(key, label string, value float64) Parameter {
	return Parameter{Key: key, Label: label, Type: ParamTypeFloat, Value: strconv.FormatFloat(value, 'f', -1, 64)}
}
