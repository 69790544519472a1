package world

import "toyworld/internal/atlas"

// Census counts actors by kind over every layer.
func (w *World) Census() map[string]int {
	counts := make(map[string]int)
	count := func(a atlas.GameActor) { counts[a.Kind()]++ }
	for _, l := range w.atlas.TileLayers() {
		l.Each(count)
	}
	for _, l := range w.atlas.ObjectLayers() {
		l.Each(count)
	}
	return counts
}
