package render

import (
	"slices"

	"github.com/specialistvlad/blockgraph/internal/workspace"
)

// ShapeKind names the outline of a value connection.
type ShapeKind string

const (
	ShapePuzzle  ShapeKind = "puzzle"
	ShapeHexagon ShapeKind = "hexagon"
	ShapeRound   ShapeKind = "round"
)

// ValueShape draws the outline of an output or value input connection.
// Dynamic shapes take their width from the height they span.
type ValueShape interface {
	Kind() ShapeKind
	Dynamic() bool
	Width(height float64) float64
	// PathDown draws an input socket going down the right-hand side,
	// bulging into the block.
	PathDown(height float64) string
	// PathRightDown draws the shape going down the right-hand side, bulging
	// out of the block.
	PathRightDown(height float64) string
	// PathUp draws the shape going up the left-hand side, bulging out.
	PathUp(height float64) string
}

// Notch is the statement connection outline on the top and bottom edges.
type Notch struct {
	Width, Height float64
}

func (n Notch) outer() (outer, inner float64) {
	inner = n.Width / 5
	return (n.Width - inner) / 2, inner
}

// PathLeft draws the notch left to right, as along a top edge.
func (n Notch) PathLeft() string {
	o, i := n.outer()
	return line([2]float64{o, n.Height}, [2]float64{i, 0}, [2]float64{o, -n.Height})
}

// PathRight draws the notch right to left, as along a bottom edge.
func (n Notch) PathRight() string {
	o, i := n.outer()
	return line([2]float64{-o, n.Height}, [2]float64{-i, 0}, [2]float64{-o, -n.Height})
}

type puzzleTab struct {
	width, height float64
}

func (t puzzleTab) Kind() ShapeKind { return ShapePuzzle }
func (t puzzleTab) Dynamic() bool { return false }
func (t puzzleTab) Width(float64) float64 { return t.width }
func (t puzzleTab) PathDown(float64) string { return t.path(false) }
func (t puzzleTab) PathRightDown(float64) string { return t.path(false) }
func (t puzzleTab) PathUp(float64) string { return t.path(true) }

func (t puzzleTab) path(up bool) string {
	const overlap = 2.5
	forward := 1.0
	if up {
		forward = -1
	}
	back := -forward
	half := t.height / 2
	return curve("c", [2]float64{0, forward * (half + overlap)}, [2]float64{-t.width, back * (half + 0.5)}, [2]float64{-t.width, forward * half}) +
		" " + curve("s", [2]float64{t.width, back * overlap}, [2]float64{t.width, forward * half})
}

type hexagon struct {
	max float64
}

func (h hexagon) Kind() ShapeKind { return ShapeHexagon }
func (h hexagon) Dynamic() bool { return true }

func (h hexagon) Width(height float64) float64 {
	return min(height/2, h.max)
}

func (h hexagon) PathDown(height float64) string {
	w := h.Width(height)
	return line([2]float64{-w, height / 2}, [2]float64{w, height / 2})
}

func (h hexagon) PathRightDown(height float64) string {
	w := h.Width(height)
	return line([2]float64{w, height / 2}, [2]float64{-w, height / 2})
}

func (h hexagon) PathUp(height float64) string {
	w := h.Width(height)
	return line([2]float64{-w, -height / 2}, [2]float64{w, -height / 2})
}

type rounded struct {
	max float64
}

func (r rounded) Kind() ShapeKind { return ShapeRound }
func (r rounded) Dynamic() bool { return true }

func (r rounded) Width(height float64) float64 {
	return min(height/2, r.max)
}

func (r rounded) PathDown(height float64) string {
	radius := r.Width(height)
	rest := height - 2*radius
	return arc(0, radius, -radius, radius) + " v " + num(rest) + " " + arc(0, radius, radius, radius)
}

func (r rounded) PathRightDown(height float64) string {
	radius := r.Width(height)
	rest := height - 2*radius
	return arc(1, radius, radius, radius) + " v " + num(rest) + " " + arc(1, radius, -radius, radius)
}

func (r rounded) PathUp(height float64) string {
	radius := r.Width(height)
	rest := height - 2*radius
	return arc(1, radius, -radius, -radius) + " v " + num(-rest) + " " + arc(1, radius, radius, -radius)
}

// Shaper picks the shape for a value connection.
type Shaper interface {
	ValueShape(c *workspace.Connection) ValueShape
	Notch() Notch
}

type classicShaper struct {
	c Constants
}

func (s classicShaper) ValueShape(*workspace.Connection) ValueShape {
	return puzzleTab{width: s.c.TabWidth, height: s.c.TabHeight}
}

func (s classicShaper) Notch() Notch { return Notch{Width: s.c.NotchWidth, Height: s.c.NotchHeight} }

type zelosShaper struct {
	c Constants
}

// ValueShape is a hexagon for boolean connections and round otherwise. An
// unchecked connection takes the checks of whatever it is plugged into.
func (s zelosShaper) ValueShape(c *workspace.Connection) ValueShape {
	checks := c.Checks()
	if len(checks) == 0 && c.IsConnected() {
		checks = c.Target().Checks()
	}
	if slices.Contains(checks, "Boolean") {
		return hexagon{max: s.c.MaxDynamicShapeWidth}
	}
	return rounded{max: s.c.MaxDynamicShapeWidth}
}

func (s zelosShaper) Notch() Notch { return Notch{Width: s.c.NotchWidth, Height: s.c.NotchHeight} }
