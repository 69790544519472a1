package ui

import (
	"math"
	"strconv"

	"toyworld/internal/core"
)

// ControlState is the displayed state of one adjustable parameter.
type ControlState struct {
	Control core.ParameterControl
	Value   string

	intValue   int
	floatValue float64
	HasValue   bool
}

// Controls tracks the adjustable parameters of a tunable.
type Controls struct {
	target core.ParameterSetter
	states []ControlState
}

// NewControls lists target's HUD controls. Targets without controls yield
// an empty list.
func NewControls(target core.ParameterSetter) *Controls {
	c := &Controls{target: target}
	if provider, ok := target.(core.ParameterControlsProvider); ok {
		for _, ctrl := range provider.ParameterControls() {
			c.states = append(c.states, ControlState{Control: ctrl, Value: "--"})
		}
	}
	c.Refresh()
	return c
}

// States returns the current control states.
func (c *Controls) States() []ControlState { return c.states }

// Refresh re-reads every value from the target.
func (c *Controls) Refresh() {
	if len(c.states) == 0 {
		return
	}
	snapshot := c.target.Parameters()
	for i := range c.states {
		state := &c.states[i]
		param, ok := snapshot.Lookup(state.Control.Key)
		state.HasValue = false
		state.Value = "--"
		if !ok {
			continue
		}
		switch state.Control.Type {
		case core.ParamTypeInt:
			parsed, err := strconv.Atoi(param.Value)
			if err != nil {
				continue
			}
			state.intValue = parsed
			state.floatValue = float64(parsed)
			state.Value = strconv.Itoa(parsed)
			state.HasValue = true
		case core.ParamTypeFloat:
			parsed, err := strconv.ParseFloat(param.Value, 64)
			if err != nil {
				continue
			}
			state.floatValue = parsed
			state.Value = FormatFloat(state.Control, parsed)
			state.HasValue = true
		}
	}
}

// CanAdjust reports whether control i can move one step in direction.
func (c *Controls) CanAdjust(i, direction int) bool {
	_, ok := c.next(i, direction)
	return ok
}

// Adjust moves control i one step in direction and reports whether the
// target accepted the new value.
func (c *Controls) Adjust(i, direction int) bool {
	target, ok := c.next(i, direction)
	if !ok {
		return false
	}
	state := &c.states[i]
	switch state.Control.Type {
	case core.ParamTypeInt:
		v := int(target)
		if !c.target.SetIntParameter(state.Control.Key, v) {
			return false
		}
		state.intValue = v
		state.floatValue = target
		state.Value = strconv.Itoa(v)
	case core.ParamTypeFloat:
		if !c.target.SetFloatParameter(state.Control.Key, target) {
			return false
		}
		state.floatValue = target
		state.Value = FormatFloat(state.Control, target)
	}
	return true
}

// next computes the clamped value one step away, or false when it would not
// change.
func (c *Controls) next(i, direction int) (float64, bool) {
	if i < 0 || i >= len(c.states) || direction == 0 {
		return 0, false
	}
	state := &c.states[i]
	if !state.HasValue {
		return 0, false
	}
	ctrl := state.Control
	var target, current float64
	switch ctrl.Type {
	case core.ParamTypeInt:
		step := int(math.Round(ctrl.Step))
		if step <= 0 {
			step = 1
		}
		current = float64(state.intValue)
		target = float64(state.intValue + direction*step)
	case core.ParamTypeFloat:
		step := ctrl.Step
		if step <= 0 {
			step = 0.05
		}
		current = state.floatValue
		target = state.floatValue + float64(direction)*step
	default:
		return 0, false
	}
	if ctrl.HasMin && target < ctrl.Min {
		target = ctrl.Min
	}
	if ctrl.HasMax && target > ctrl.Max {
		target = ctrl.Max
	}
	if math.Abs(target-current) < 1e-9 {
		return 0, false
	}
	return target, true
}

// FormatFloat prints value with a precision suited to the control's step.
func FormatFloat(ctrl core.ParameterControl, value float64) string {
	step := ctrl.Step
	if step <= 0 {
		step = 0.05
	}
	precision := 1
	switch {
	case step < 0.001:
		precision = 4
	case step < 0.01:
		precision = 3
	case step < 0.1:
		precision = 2
	}
	return strconv.FormatFloat(value, 'f', precision, 64)
}
