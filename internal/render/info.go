package render

import (
	"time"

	"github.com/specialistvlad/blockgraph/internal/geom"
	"github.com/specialistvlad/blockgraph/internal/workspace"
)

// ElementKind tells the measurables of a row apart.
type ElementKind int

const (
	ElemField ElementKind = iota + 1
	ElemInlineInput
	ElemExternalInput
	ElemStatementInput
	ElemJaggedEdge
)

// Element is one measured piece of a row. X and Y are relative to the
// block's top-left corner.
type Element struct {
	Kind  ElementKind
	Field *workspace.Field
	Input *workspace.Input
	Text  string

	X, Y          float64
	Width, Height float64

	// Connected is set for inputs with a block plugged in.
	Connected bool
	Shape     ValueShape
}

// Row is a horizontal band of the block. External value inputs and
// statement inputs sit at the row's edge rather than among its elements.
type Row struct {
	Y, Width, Height float64
	Align            workspace.Align
	Elements         []*Element
	External         *Element
	Statement        *Element
	// Jagged marks the single row of a collapsed block.
	Jagged *Element
}

// OutputInfo describes the output connection shape.
type OutputInfo struct {
	Shape  ValueShape
	Offset geom.Coordinate
	Width  float64
	Height float64
}

// Info is the full measurement of one block. Drawing consumes nothing else.
type Info struct {
	Renderer  string
	Constants Constants
	Notch     Notch

	// StartX is where the body begins, after any output shape.
	StartX float64
	// ContentRight is the x of the body's right edge.
	ContentRight float64
	// StatementEdge is the x of the inner wall of statement inputs.
	StatementEdge float64

	Width, Height float64
	Rows          []*Row

	Output      *OutputInfo
	HasPrevious bool
	HasNext     bool
	Collapsed   bool

	offsets    map[*workspace.Connection]geom.Coordinate
	measuredAt time.Time
}

// Size implements workspace.RenderInfo.
func (i *Info) Size() geom.Size { return geom.Size{Width: i.Width, Height: i.Height} }

// ConnectionOffset implements workspace.RenderInfo.
func (i *Info) ConnectionOffset(c *workspace.Connection) (geom.Coordinate, bool) {
	off, ok := i.offsets[c]
	return off, ok
}

func (i *Info) hasStatement() bool {
	for _, r := range i.Rows {
		if r.Statement != nil {
			return true
		}
	}
	return false
}

// Drawing is the output of one draw: the block outline and the cut-outs of
// empty inline inputs, as SVG path data.
type Drawing struct {
	Outline     string
	Inline      map[string]string
	OutputShape ShapeKind
}
