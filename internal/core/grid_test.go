package core

import "testing"

func TestGridBounds(t *testing.T) {
	g := NewGrid[int](4, 3)
	g.Set(3, 2, 7)
	g.Set(4, 2, 9)

	if v, ok := g.At(3, 2); !ok || v != 7 {
		t.Fatalf("expected 7 at (3,2), got %d ok=%v", v, ok)
	}
	if _, ok := g.At(4, 2); ok {
		t.Fatal("(4,2) should be out of bounds")
	}
	if got := g.Cells()[g.Index(3, 2)]; got != 7 {
		t.Fatalf("row-major index mismatch, got %d", got)
	}

	g.Clear()
	for i, v := range g.Cells() {
		if v != 0 {
			t.Fatalf("cell %d not cleared", i)
		}
	}
}

func TestRectFloatIntersects(t *testing.T) {
	view := Rect{X: -2, Y: -2, W: 4, H: 4}.Float()
	if !view.Intersects(RectF{X: 1.5, Y: 1.5, W: 1, H: 1}) {
		t.Fatal("overlapping corner should intersect")
	}
	if view.Intersects(RectF{X: 2, Y: 0, W: 1, H: 1}) {
		t.Fatal("touching edges must not count as intersection")
	}
}
