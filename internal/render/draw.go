package render

import (
	"fmt"

	"github.com/specialistvlad/blockgraph/internal/workspace"
)

// Draw turns a measurement into path data. It reads nothing but info.
func (r *Renderer) Draw(_ *workspace.Block, info *Info) *Drawing {
	c := info.Constants
	d := &Drawing{Inline: make(map[string]string)}
	var p path

	p.moveTo(info.StartX, 0)
	if info.HasPrevious {
		p.lineOnAxis("H", info.StartX+c.NotchOffsetLeft)
		p.raw(info.Notch.PathLeft())
	}
	p.lineOnAxis("H", info.ContentRight)

	if o := info.Output; o != nil && o.Shape.Dynamic() && !info.hasStatement() && !info.HasNext {
		p.raw(o.Shape.PathRightDown(info.Height))
	} else {
		for _, row := range info.Rows {
			drawRightSide(&p, info, row)
		}
		p.lineOnAxis("V", info.Height)
	}

	if info.HasNext {
		p.lineOnAxis("H", info.StartX+c.NotchOffsetLeft+info.Notch.Width)
		p.raw(info.Notch.PathRight())
	}
	p.lineOnAxis("H", info.StartX)
	if info.Output != nil {
		drawOutput(&p, info)
		d.OutputShape = info.Output.Shape.Kind()
	}
	p.close()
	d.Outline = p.String()

	for _, row := range info.Rows {
		for _, e := range row.Elements {
			if e.Kind == ElemInlineInput && !e.Connected {
				d.Inline[e.Input.Name()] = inlineSocket(c, e)
			}
		}
	}
	return d
}

func drawRightSide(p *path, info *Info, row *Row) {
	c := info.Constants
	switch {
	case row.Jagged != nil:
		e := row.Jagged
		p.lineOnAxis("V", row.Y)
		p.raw(line([2]float64{e.Width, e.Height / 4}, [2]float64{-2 * e.Width, e.Height / 2}, [2]float64{e.Width, e.Height / 4}))
	case row.Statement != nil:
		e := row.Statement
		p.lineOnAxis("V", row.Y)
		p.lineOnAxis("H", e.X+c.StatementInputNotchOffset+info.Notch.Width)
		p.raw(info.Notch.PathRight())
		p.lineOnAxis("H", e.X)
		p.lineOnAxis("V", row.Y+row.Height)
		p.lineOnAxis("H", e.X+c.StatementInputNotchOffset)
		p.raw(info.Notch.PathLeft())
		p.lineOnAxis("H", info.ContentRight)
		return
	case row.External != nil:
		e := row.External
		if e.Shape == nil {
			panic(fmt.Sprintf("render: external input %q has no shape", e.Input.Name()))
		}
		h := c.TabHeight
		if e.Shape.Dynamic() {
			h = e.Height
		}
		p.lineOnAxis("V", row.Y+c.TabOffsetFromTop)
		p.raw(e.Shape.PathDown(h))
	}
	p.lineOnAxis("V", row.Y+row.Height)
}

// drawOutput draws the left edge carrying the output shape.
func drawOutput(p *path, info *Info) {
	o := info.Output
	if o == nil {
		panic("render: cannot draw the output connection of a block that has none")
	}
	if o.Shape.Dynamic() {
		p.raw(o.Shape.PathUp(o.Height))
		return
	}
	p.lineOnAxis("V", o.Offset.Y+o.Height)
	p.raw(o.Shape.PathUp(o.Height))
}

// inlineSocket outlines the hole an empty inline input leaves in the body.
func inlineSocket(c Constants, e *Element) string {
	var p path
	sw := e.Shape.Width(e.Height)
	inner := e.Width - sw
	if e.Shape.Dynamic() {
		inner -= sw
	}
	p.moveTo(e.X+sw, e.Y)
	p.lineOnAxis("h", inner)
	if e.Shape.Dynamic() {
		p.raw(e.Shape.PathRightDown(e.Height))
	} else {
		p.lineOnAxis("v", e.Height)
	}
	p.lineOnAxis("h", -inner)
	if e.Shape.Dynamic() {
		p.raw(e.Shape.PathUp(e.Height))
	} else {
		p.lineOnAxis("V", e.Y+c.TabOffsetFromTop+c.TabHeight)
		p.raw(e.Shape.PathUp(c.TabHeight))
	}
	p.close()
	return p.String()
}
