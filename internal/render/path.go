package render

import (
	"strconv"
	"strings"
)

// path accumulates SVG path commands.
type path struct {
	sb strings.Builder
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func point(x, y float64) string {
	return num(x) + "," + num(y)
}

func (p *path) raw(s string) {
	if s == "" {
		return
	}
	if p.sb.Len() > 0 {
		p.sb.WriteByte(' ')
	}
	p.sb.WriteString(s)
}

func (p *path) moveTo(x, y float64) { p.raw("M " + point(x, y)) }

// lineOnAxis draws along one axis; cmd is one of H, h, V or v.
func (p *path) lineOnAxis(cmd string, v float64) { p.raw(cmd + " " + num(v)) }

func (p *path) close() { p.raw("z") }

func (p *path) String() string { return p.sb.String() }

// line is a relative polyline through the given offsets.
func line(pts ...[2]float64) string {
	parts := make([]string, len(pts))
	for i, pt := range pts {
		parts[i] = point(pt[0], pt[1])
	}
	return "l " + strings.Join(parts, " ")
}

// curve is a relative curve command, c or s, through the given points.
func curve(cmd string, pts ...[2]float64) string {
	parts := make([]string, len(pts))
	for i, pt := range pts {
		parts[i] = point(pt[0], pt[1])
	}
	return cmd + " " + strings.Join(parts, " ")
}

// arc is a relative elliptical arc with equal radii.
func arc(sweep int, radius, dx, dy float64) string {
	return "a " + num(radius) + " " + num(radius) + " 0 0," + strconv.Itoa(sweep) + " " + point(dx, dy)
}
