package render

import (
	"encoding/xml"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/specialistvlad/blockgraph/internal/workspace"
)

type svgDoc struct {
	XMLName xml.Name   `xml:"svg"`
	Xmlns   string     `xml:"xmlns,attr"`
	Width   string     `xml:"width,attr"`
	Height  string     `xml:"height,attr"`
	ViewBox string     `xml:"viewBox,attr"`
	Groups  []svgGroup `xml:"g"`
}

type svgGroup struct {
	ID        string    `xml:"data-id,attr"`
	Type      string    `xml:"data-type,attr"`
	Transform string    `xml:"transform,attr"`
	Title     string    `xml:"title,omitempty"`
	Paths     []svgPath `xml:"path"`
}

type svgPath struct {
	Class string `xml:"class,attr"`
	D     string `xml:"d,attr"`
	Fill  string `xml:"fill,attr,omitempty"`
}

// WriteSVG writes the latest drawings of ws as one SVG document, blocks in
// paint order. Blocks without a drawing are left out; run Render first.
func (p *Pipeline) WriteSVG(w io.Writer, ws *workspace.Workspace) error {
	doc := svgDoc{Xmlns: "http://www.w3.org/2000/svg"}
	var right, bottom float64
	for _, b := range ws.AllBlocks(true) {
		d := p.drawings[b.ID()]
		if d == nil {
			continue
		}
		xy, size := b.XY(), b.Size()
		right = max(right, xy.X+size.Width)
		bottom = max(bottom, xy.Y+size.Height)

		g := svgGroup{
			ID:        b.ID(),
			Type:      b.Type(),
			Transform: "translate(" + point(xy.X, xy.Y) + ")",
			Title:     b.Definition().Tooltip,
			Paths:     []svgPath{{Class: "block", D: d.Outline, Fill: fill(b)}},
		}
		names := make([]string, 0, len(d.Inline))
		for name := range d.Inline {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			g.Paths = append(g.Paths, svgPath{Class: "socket", D: d.Inline[name]})
		}
		doc.Groups = append(doc.Groups, g)
	}
	doc.Width, doc.Height = num(right), num(bottom)
	doc.ViewBox = "0 0 " + num(right) + " " + num(bottom)

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("writing svg: %w", err)
	}
	return enc.Close()
}

// fill maps a block colour to SVG. A bare number is a hue.
func fill(b *workspace.Block) string {
	c := b.Definition().Colour
	if c == "" {
		return "#888888"
	}
	if hue, err := strconv.ParseFloat(c, 64); err == nil {
		return fmt.Sprintf("hsl(%s,45%%,50%%)", num(hue))
	}
	return c
}
