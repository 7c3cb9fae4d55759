package render

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/specialistvlad/blockgraph/internal/geom"
	"github.com/specialistvlad/blockgraph/internal/workspace"
)

// Measure lays out one block. Children must already have been rendered: the
// sizes of plugged-in blocks feed into the rows holding them.
func (r *Renderer) Measure(b *workspace.Block) *Info {
	c := r.c
	info := &Info{
		Renderer:    r.name,
		Constants:   c,
		Notch:       r.shaper.Notch(),
		HasPrevious: b.PreviousConnection() != nil,
		HasNext:     b.NextConnection() != nil,
		Collapsed:   b.IsCollapsed(),
		offsets:     make(map[*workspace.Connection]geom.Coordinate),
		measuredAt:  time.Now(),
	}
	if out := b.OutputConnection(); out != nil {
		info.Output = &OutputInfo{Shape: r.shaper.ValueShape(out)}
	}
	if info.Collapsed {
		info.Rows = []*Row{r.collapsedRow(b)}
	} else {
		info.Rows = r.inputRows(b)
	}

	r.measureHeights(info)
	r.measureWidths(info)
	r.positionElements(info)
	r.recordConnections(b, info)
	return info
}

func (r *Renderer) measureHeights(info *Info) {
	c := r.c
	y := c.TopRowMinHeight
	if info.HasPrevious {
		y = max(y, c.NotchHeight)
	}
	var prev *Row
	for _, row := range info.Rows {
		if prev != nil && prev.Statement != nil && row.Statement != nil {
			y += c.MediumPadding
		}
		row.Y = y
		row.Height = r.rowHeight(row)
		y += row.Height
		prev = row
	}
	bottom := c.BottomRowMinHeight
	if prev != nil && prev.Statement != nil {
		bottom = max(bottom, c.LargePadding)
	}
	height := y + bottom
	if height < c.MinBlockHeight {
		if prev != nil && prev.Statement == nil {
			prev.Height += c.MinBlockHeight - height
		}
		height = c.MinBlockHeight
	}
	info.Height = height

	if info.Output != nil {
		o := info.Output
		o.Height = c.TabHeight
		if o.Shape.Dynamic() {
			o.Height = height
		}
		o.Width = o.Shape.Width(o.Height)
		o.Offset = geom.Coordinate{X: 0, Y: c.TabOffsetFromTop}
		info.StartX = o.Width
	}
}

func (r *Renderer) rowHeight(row *Row) float64 {
	c := r.c
	h := c.DummyInputMinHeight
	for _, e := range row.Elements {
		h = max(h, e.Height+2*c.SmallPadding)
	}
	if row.External != nil {
		h = max(h, row.External.Height)
	}
	if row.Statement != nil {
		h = max(h, row.Statement.Height)
	}
	if row.Jagged != nil {
		h = max(h, row.Jagged.Height)
	}
	return h
}

// fieldsWidth is the width a row's own elements need, with padding on the
// left and between them.
func (r *Renderer) fieldsWidth(row *Row) float64 {
	w := r.c.MediumPadding
	for _, e := range row.Elements {
		w += e.Width + r.c.MediumPadding
	}
	return w
}

func (r *Renderer) measureWidths(info *Info) {
	c := r.c
	content := c.MinBlockWidth
	if info.HasPrevious || info.HasNext {
		content = max(content, c.NotchOffsetLeft+info.Notch.Width+c.MediumPadding)
	}

	statementEdge := 0.0
	for _, row := range info.Rows {
		if row.Statement != nil {
			statementEdge = max(statementEdge, r.fieldsWidth(row), 2*c.LargePadding)
		}
	}
	if statementEdge > 0 {
		content = max(content, statementEdge+max(c.StatementInputNotchOffset+info.Notch.Width, c.StatementInputSpacerMinWidth))
	}
	for _, row := range info.Rows {
		row.Width = r.fieldsWidth(row)
		if row.Statement == nil {
			content = max(content, row.Width)
		}
	}

	info.StatementEdge = info.StartX + statementEdge
	info.ContentRight = info.StartX + content
	info.Width = info.ContentRight
	if info.Collapsed {
		info.Width += c.JaggedTeethWidth
	}
	if o := info.Output; o != nil && o.Shape.Dynamic() && !info.hasStatement() && !info.HasNext {
		info.Width += o.Width
	}
}

func (r *Renderer) positionElements(info *Info) {
	c := r.c
	for _, row := range info.Rows {
		shift := 0.0
		if row.Statement == nil {
			extra := info.ContentRight - info.StartX - row.Width
			switch row.Align {
			case workspace.AlignRight:
				shift = extra
			case workspace.AlignCentre:
				shift = extra / 2
			}
		}
		x := info.StartX + c.MediumPadding + shift
		for _, e := range row.Elements {
			e.X = x
			if row.Statement != nil {
				e.Y = row.Y + c.SmallPadding
			} else {
				e.Y = row.Y + (row.Height-e.Height)/2
			}
			x += e.Width + c.MediumPadding
		}
		if e := row.External; e != nil {
			e.X = info.ContentRight
			e.Y = row.Y
		}
		if e := row.Statement; e != nil {
			e.X = info.StatementEdge
			e.Y = row.Y
		}
		if e := row.Jagged; e != nil {
			e.X = info.ContentRight
			e.Y = row.Y
		}
	}
}

func (r *Renderer) recordConnections(b *workspace.Block, info *Info) {
	c := r.c
	if o := info.Output; o != nil {
		info.offsets[b.OutputConnection()] = o.Offset
	}
	if info.HasPrevious {
		info.offsets[b.PreviousConnection()] = geom.Coordinate{X: info.StartX + c.NotchOffsetLeft, Y: 0}
	}
	if info.HasNext {
		info.offsets[b.NextConnection()] = geom.Coordinate{X: info.StartX + c.NotchOffsetLeft, Y: info.Height}
	}
	if info.Collapsed {
		return
	}
	for _, row := range info.Rows {
		for _, e := range row.Elements {
			if e.Kind == ElemInlineInput {
				info.offsets[e.Input.Connection()] = geom.Coordinate{X: e.X, Y: e.Y + c.TabOffsetFromTop}
			}
		}
		if e := row.External; e != nil {
			info.offsets[e.Input.Connection()] = geom.Coordinate{X: e.X, Y: e.Y + c.TabOffsetFromTop}
		}
		if e := row.Statement; e != nil {
			info.offsets[e.Input.Connection()] = geom.Coordinate{X: e.X + c.StatementInputNotchOffset, Y: e.Y}
		}
	}
}

// startsNewRow reports whether in begins a row after last.
func startsNewRow(in, last *workspace.Input, inline bool) bool {
	if last == nil {
		return false
	}
	if in.Kind() == workspace.StatementInput || last.Kind() == workspace.StatementInput {
		return true
	}
	if last.Kind() == workspace.EndRowInput {
		return true
	}
	// Without inline inputs every value input closes its row.
	return !inline
}

func (r *Renderer) inputRows(b *workspace.Block) []*Row {
	inline := b.InputsInline()
	var rows []*Row
	var row *Row
	var last *workspace.Input
	for _, in := range b.Inputs() {
		if !in.IsVisible() {
			continue
		}
		if row == nil || startsNewRow(in, last, inline) {
			row = &Row{}
			rows = append(rows, row)
		}
		row.Align = in.Align()
		for _, f := range in.Fields() {
			if e := r.measureField(f); e != nil {
				row.Elements = append(row.Elements, e)
			}
		}
		switch in.Kind() {
		case workspace.ValueInput:
			if inline {
				row.Elements = append(row.Elements, r.inlineInput(in))
			} else {
				row.External = r.externalInput(in)
			}
		case workspace.StatementInput:
			row.Statement = r.statementInput(in)
		}
		last = in
	}
	return rows
}

func (r *Renderer) measureField(f *workspace.Field) *Element {
	c := r.c
	e := &Element{Kind: ElemField, Field: f, Text: f.Text()}
	switch f.Kind() {
	case workspace.FieldLabel:
		if e.Text == "" {
			return nil
		}
		e.Width = r.text.Width(e.Text)
		e.Height = c.FieldTextHeight
	case workspace.FieldCheckbox:
		e.Width, e.Height = c.FieldCheckboxSize, c.FieldCheckboxSize
	case workspace.FieldImage:
		e.Width, e.Height = c.FieldImageSize, c.FieldImageSize
	default:
		e.Width = r.text.Width(e.Text) + 2*c.FieldBorderRectXPadding
		if f.Kind() == workspace.FieldDropdown || f.Kind() == workspace.FieldVariable {
			e.Width += c.FieldDropdownArrowWidth
		}
		e.Width = max(e.Width, c.FieldBorderRectHeight)
		e.Height = c.FieldBorderRectHeight
	}
	return e
}

func (r *Renderer) inlineInput(in *workspace.Input) *Element {
	c := r.c
	e := &Element{Kind: ElemInlineInput, Input: in, Shape: r.shaper.ValueShape(in.Connection())}
	if child := in.Connection().TargetBlock(); child != nil {
		size := child.HeightWidth()
		e.Connected = true
		e.Width, e.Height = size.Width, size.Height
		return e
	}
	e.Height = c.EmptyInlineInputHeight
	e.Width = c.EmptyInlineInputPadding + e.Shape.Width(e.Height)
	if e.Shape.Dynamic() {
		e.Width += e.Shape.Width(e.Height)
	}
	return e
}

func (r *Renderer) externalInput(in *workspace.Input) *Element {
	c := r.c
	e := &Element{Kind: ElemExternalInput, Input: in, Shape: r.shaper.ValueShape(in.Connection())}
	e.Height = c.TabOffsetFromTop + c.TabHeight + c.ExternalValueInputPadding
	e.Width = e.Shape.Width(c.TabHeight)
	if child := in.Connection().TargetBlock(); child != nil {
		e.Connected = true
		e.Height = max(e.Height, child.HeightWidth().Height)
	}
	return e
}

func (r *Renderer) statementInput(in *workspace.Input) *Element {
	c := r.c
	e := &Element{Kind: ElemStatementInput, Input: in, Height: c.EmptyStatementInputHeight}
	e.Width = c.StatementInputNotchOffset + r.shaper.Notch().Width
	if child := in.Connection().TargetBlock(); child != nil {
		e.Connected = true
		e.Height = max(child.HeightWidth().Height+c.StatementBottomSpacer, c.EmptyStatementInputHeight)
	}
	return e
}

func (r *Renderer) collapsedRow(b *workspace.Block) *Row {
	c := r.c
	text := CollapsedText(b, c.CollapsedTextLength)
	row := &Row{Jagged: &Element{Kind: ElemJaggedEdge, Width: c.JaggedTeethWidth, Height: c.JaggedTeethHeight}}
	if text != "" {
		row.Elements = []*Element{{Kind: ElemField, Text: text, Width: r.text.Width(text), Height: c.FieldTextHeight}}
	}
	return row
}

// CollapsedText summarizes a block and its value inputs in one line, cut to
// limit runes with an ellipsis.
func CollapsedText(b *workspace.Block, limit int) string {
	var parts []string
	var walk func(b *workspace.Block)
	walk = func(b *workspace.Block) {
		for _, in := range b.Inputs() {
			for _, f := range in.Fields() {
				if t := f.Text(); t != "" {
					parts = append(parts, t)
				}
			}
			conn := in.Connection()
			if conn == nil || in.Kind() != workspace.ValueInput {
				continue
			}
			if child := conn.TargetBlock(); child != nil {
				walk(child)
			} else {
				parts = append(parts, "?")
			}
		}
	}
	walk(b)
	text := strings.Join(parts, " ")
	if limit > 0 && utf8.RuneCountInString(text) > limit {
		runes := []rune(text)
		text = string(runes[:max(limit-1, 0)]) + "…"
	}
	return text
}
