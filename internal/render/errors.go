package render

import "fmt"

// ConfigurationError reports a render parameter outside its accepted range.
type ConfigurationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("render: invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// ResourceAcquisitionError reports a failure to obtain a device resource.
// The simulation can continue without visualisation.
type ResourceAcquisitionError struct {
	Resource string
	Err      error
}

func (e *ResourceAcquisitionError) Error() string {
	return fmt.Sprintf("render: acquire %s: %v", e.Resource, e.Err)
}

func (e *ResourceAcquisitionError) Unwrap() error { return e.Err }
