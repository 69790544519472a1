package core

import "math"

// Size describes integer dimensions such as a grid or an output resolution.
type Size struct {
	W int
	H int
}

// Area returns W*H.
func (s Size) Area() int { return s.W * s.H }

// Vector2I is an integer tile coordinate.
type Vector2I struct {
	X int
	Y int
}

// Add returns v+o.
func (v Vector2I) Add(o Vector2I) Vector2I { return Vector2I{X: v.X + o.X, Y: v.Y + o.Y} }

// Float converts the coordinate to a float vector.
func (v Vector2I) Float() Vector2 { return Vector2{X: float32(v.X), Y: float32(v.Y)} }

// Vector2 is a continuous 2D coordinate used for camera and geometry math.
type Vector2 struct {
	X float32
	Y float32
}

// Sub returns v-o.
func (v Vector2) Sub(o Vector2) Vector2 { return Vector2{X: v.X - o.X, Y: v.Y - o.Y} }

// Len returns the Euclidean length of v.
func (v Vector2) Len() float32 {
	return float32(math.Hypot(float64(v.X), float64(v.Y)))
}

// Rect is an integer rectangle anchored at its minimum corner.
type Rect struct {
	X, Y int
	W, H int
}

// Size returns the rectangle dimensions.
func (r Rect) Size() Size { return Size{W: r.W, H: r.H} }

// Center returns the exact centre of the rectangle.
func (r Rect) Center() Vector2 {
	return Vector2{X: float32(r.X) + float32(r.W)/2, Y: float32(r.Y) + float32(r.H)/2}
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Vector2I) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Float converts r to a RectF.
func (r Rect) Float() RectF {
	return RectF{X: float32(r.X), Y: float32(r.Y), W: float32(r.W), H: float32(r.H)}
}

// RectF is a floating point rectangle anchored at its minimum corner.
type RectF struct {
	X, Y float32
	W, H float32
}

// Intersects reports whether the two rectangles overlap with a non-empty area.
func (r RectF) Intersects(o RectF) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}
