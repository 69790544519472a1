package atlas

import (
	"fmt"

	"toyworld/internal/core"
)

// InvalidActorStateError reports that an Atlas operation disagrees with the
// actual occupancy, e.g. replacing an actor that is not there. It means the
// caller and the Atlas are out of sync.
type InvalidActorStateError struct {
	Position core.Vector2I
	Layer    LayerType
	Reason   string
}

func (e *InvalidActorStateError) Error() string {
	return fmt.Sprintf("invalid actor state at (%d,%d) on %s: %s", e.Position.X, e.Position.Y, e.Layer, e.Reason)
}

func stateError(p core.Vector2I, l LayerType, format string, args ...any) error {
	return &InvalidActorStateError{Position: p, Layer: l, Reason: fmt.Sprintf(format, args...)}
}
