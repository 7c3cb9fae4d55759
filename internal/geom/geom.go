// Package geom holds the small value types shared by the workspace and the
// render pipeline: surface coordinates, sizes and axis-aligned rectangles.
package geom

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Coordinate is a point on the workspace surface, in workspace units.
type Coordinate struct {
	X float64
	Y float64
}

// Add returns c translated by o.
func (c Coordinate) Add(o Coordinate) Coordinate {
	return Coordinate{X: c.X + o.X, Y: c.Y + o.Y}
}

// Sub returns the vector from o to c.
func (c Coordinate) Sub(o Coordinate) Coordinate {
	return Coordinate{X: c.X - o.X, Y: c.Y - o.Y}
}

// Scale multiplies both axes by s.
func (c Coordinate) Scale(s float64) Coordinate {
	return Coordinate{X: c.X * s, Y: c.Y * s}
}

// Magnitude is the distance from the origin.
func (c Coordinate) Magnitude() float64 {
	return math.Hypot(c.X, c.Y)
}

// Distance returns the euclidean distance between c and o.
func (c Coordinate) Distance(o Coordinate) float64 {
	return c.Sub(o).Magnitude()
}

// Equal compares both axes exactly.
func (c Coordinate) Equal(o Coordinate) bool {
	return c.X == o.X && c.Y == o.Y
}

// Round rounds both axes to the nearest integer.
func (c Coordinate) Round() Coordinate {
	return Coordinate{X: math.Round(c.X), Y: math.Round(c.Y)}
}

// String renders the coordinate in the event wire format, "x, y", rounded.
func (c Coordinate) String() string {
	r := c.Round()
	return fmt.Sprintf("%s, %s", strconv.FormatFloat(r.X, 'f', -1, 64), strconv.FormatFloat(r.Y, 'f', -1, 64))
}

// ParseCoordinate parses the "x, y" wire format. The space after the comma is
// optional.
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Coordinate{}, fmt.Errorf("invalid coordinate %q: expected \"x, y\"", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("invalid coordinate %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("invalid coordinate %q: %w", s, err)
	}
	return Coordinate{X: x, Y: y}, nil
}

// EqualPtr compares two optional coordinates; two nils are equal.
func EqualPtr(a, b *Coordinate) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// Size is a width/height pair.
type Size struct {
	Width  float64
	Height float64
}

// Rect is an axis-aligned rectangle. Top is smaller than Bottom on the
// workspace surface.
type Rect struct {
	Top    float64
	Bottom float64
	Left   float64
	Right  float64
}

// RectFrom builds a rectangle from its top-left corner and size.
func RectFrom(origin Coordinate, size Size) Rect {
	return Rect{
		Top:    origin.Y,
		Bottom: origin.Y + size.Height,
		Left:   origin.X,
		Right:  origin.X + size.Width,
	}
}

func (r Rect) Width() float64  { return r.Right - r.Left }
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Contains reports whether the point lies inside r, edges included.
func (r Rect) Contains(c Coordinate) bool {
	return c.X >= r.Left && c.X <= r.Right && c.Y >= r.Top && c.Y <= r.Bottom
}

// Intersects reports whether r and o overlap, edges included.
func (r Rect) Intersects(o Rect) bool {
	return r.Left <= o.Right && r.Right >= o.Left && r.Top <= o.Bottom && r.Bottom >= o.Top
}

// Translate moves the rectangle by the given offset.
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{Top: r.Top + dy, Bottom: r.Bottom + dy, Left: r.Left + dx, Right: r.Right + dx}
}
