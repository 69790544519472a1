package core

// Grid stores a 2D grid of values in row-major order. Row 0 is the lowest Y.
type Grid[T any] struct {
	W, H int
	data []T
}

// NewGrid allocates a grid with the given dimensions.
func NewGrid[T any](w, h int) *Grid[T] {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &Grid[T]{W: w, H: h, data: make([]T, w*h)}
}

// Cells exposes the backing slice so callers can read values directly.
func (g *Grid[T]) Cells() []T { return g.data }

// Index returns the linear slice index for coordinates (x, y).
func (g *Grid[T]) Index(x, y int) int { return y*g.W + x }

// InBounds reports whether (x, y) addresses a cell.
func (g *Grid[T]) InBounds(x, y int) bool {
	return x >= 0 && x < g.W && y >= 0 && y < g.H
}

// At returns the value at (x, y) and false when out of bounds.
func (g *Grid[T]) At(x, y int) (T, bool) {
	if !g.InBounds(x, y) {
		var zero T
		return zero, false
	}
	return g.data[g.Index(x, y)], true
}

// Set stores v at (x, y). Out of bounds writes are ignored.
func (g *Grid[T]) Set(x, y int, v T) {
	if g.InBounds(x, y) {
		g.data[g.Index(x, y)] = v
	}
}

// Clear resets every cell to the zero value.
func (g *Grid[T]) Clear() {
	var zero T
	for i := range g.data {
		g.data[i] = zero
	}
}
