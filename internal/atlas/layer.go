package atlas

import (
	"fmt"
	"strings"
)

// LayerType identifies one partition of the world. Values are bit flags so
// queries can select several layers at once.
type LayerType uint16

const (
	Background LayerType = 1 << iota
	OnBackground
	Obstacle
	OnGroundInteractable
	ObstacleInteractable
	Object
	ForegroundObject
)

const (
	// TileLayers selects every grid-aligned tile layer.
	TileLayers = Background | OnBackground | Obstacle | OnGroundInteractable | ObstacleInteractable
	// ObjectLayers selects every free-object layer.
	ObjectLayers = Object | ForegroundObject
	// All selects every layer.
	All = TileLayers | ObjectLayers
)

// Draw order: ground first, free objects last.
var (
	tileOrder   = []LayerType{Background, OnBackground, Obstacle, OnGroundInteractable, ObstacleInteractable}
	objectOrder = []LayerType{Object, ForegroundObject}
)

var layerNames = map[LayerType]string{
	Background:           "background",
	OnBackground:         "on_background",
	Obstacle:             "obstacle",
	OnGroundInteractable: "on_ground_interactable",
	ObstacleInteractable: "obstacle_interactable",
	Object:               "object",
	ForegroundObject:     "foreground_object",
	All:                  "all",
}

// String returns the snake_case name used in maps, scripts and snapshots.
func (l LayerType) String() string {
	if name, ok := layerNames[l]; ok {
		return name
	}
	return fmt.Sprintf("layer(%#x)", uint16(l))
}

// Single reports whether l names exactly one layer.
func (l LayerType) Single() bool {
	return l != 0 && l&(l-1) == 0 && l&All == l
}

// IsTile reports whether l is a single tile layer.
func (l LayerType) IsTile() bool { return l.Single() && l&TileLayers != 0 }

// IsObject reports whether l is a single object layer.
func (l LayerType) IsObject() bool { return l.Single() && l&ObjectLayers != 0 }

// ParseLayer resolves a layer name produced by String.
func ParseLayer(name string) (LayerType, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for l, n := range layerNames {
		if n == key {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown layer %q", name)
}
