package workspace

import (
	"encoding/json"
	"fmt"

	"github.com/specialistvlad/blockgraph/internal/events"
	"github.com/specialistvlad/blockgraph/internal/geom"
)

// IsShadow reports whether the block is a shadow placeholder.
func (b *Block) IsShadow() bool { return b.shadow }

// SetShadow marks the block as a shadow. Shadows cannot hold real children.
func (b *Block) SetShadow(shadow bool) error {
	if shadow {
		for _, child := range b.children {
			if !child.shadow {
				return fmt.Errorf("block %s has real child %s and cannot become a shadow", b, child)
			}
		}
	}
	b.shadow = shadow
	b.ws.markDirty(b)
	return nil
}

// IsInsertionMarker reports whether the block is a drag preview.
func (b *Block) IsInsertionMarker() bool { return b.insertionMarker }

// SetInsertionMarker marks the block as a drag preview. Insertion markers are
// never serialized.
func (b *Block) SetInsertionMarker(on bool) { b.insertionMarker = on }

// IsDeadOrDying reports whether the block is being, or has been, disposed.
func (b *Block) IsDeadOrDying() bool { return b.disposing || b.disposed }

// IsDisposed reports whether disposal has completed.
func (b *Block) IsDisposed() bool { return b.disposed }

// IsDeletable reports whether the user may delete the block.
func (b *Block) IsDeletable() bool {
	return b.deletable && !b.shadow && !b.ws.isFlyout && !b.IsDeadOrDying() && !b.ws.opts.ReadOnly
}

// SetDeletable sets the deletable flag.
func (b *Block) SetDeletable(on bool) { b.deletable = on }

// IsMovable reports whether the user may drag the block.
func (b *Block) IsMovable() bool {
	return b.movable && !b.shadow && !b.ws.isFlyout && !b.IsDeadOrDying() && !b.ws.opts.ReadOnly
}

// SetMovable sets the movable flag.
func (b *Block) SetMovable(on bool) { b.movable = on }

// IsEditable reports whether the block's fields may be edited.
func (b *Block) IsEditable() bool {
	return b.editable && !b.IsDeadOrDying() && !b.ws.opts.ReadOnly
}

// SetEditable sets the editable flag.
func (b *Block) SetEditable(on bool) {
	b.editable = on
	b.ws.markDirty(b)
}

// Data returns the free-form data string.
func (b *Block) Data() string { return b.data }

// SetData replaces the free-form data string.
func (b *Block) SetData(s string) { b.data = s }

// IsCollapsed reports whether the block is collapsed.
func (b *Block) IsCollapsed() bool { return b.collapsed }

// SetCollapsed collapses or expands the block.
func (b *Block) SetCollapsed(collapsed bool) {
	if b.collapsed == collapsed {
		return
	}
	b.fireChange(events.ElementCollapsed, b.collapsed, collapsed)
	b.collapsed = collapsed
	b.ws.markDirty(b)
}

// IsEnabled reports the block's own enabled flag. A block inside a disabled
// ancestor also counts as disabled; see InheritedDisabled.
func (b *Block) IsEnabled() bool { return !b.disabled }

// InheritedDisabled reports whether an ancestor is disabled.
func (b *Block) InheritedDisabled() bool {
	for p := b.parent; p != nil; p = p.parent {
		if p.disabled {
			return true
		}
	}
	return false
}

// effectivelyDisabled is what generators and renderers act on.
func (b *Block) effectivelyDisabled() bool { return b.disabled || b.InheritedDisabled() }

// SetEnabled enables or disables the block. Descendants whose effective state
// flips get a non-undoable "inherited_disabled" notification.
func (b *Block) SetEnabled(enabled bool) {
	disabled := !enabled
	if b.disabled == disabled {
		return
	}
	ds := b.Descendants(false)[1:]
	before := make([]bool, len(ds))
	for i, d := range ds {
		before[i] = d.effectivelyDisabled()
	}

	end := b.ws.session.BeginGroup()
	defer end()
	b.fireChange(events.ElementDisabled, b.disabled, disabled)
	b.disabled = disabled
	b.ws.markDirty(b)
	for i, d := range ds {
		if now := d.effectivelyDisabled(); now != before[i] {
			b.ws.markDirty(d)
			b.ws.fireFor(&events.UI{BlockID: d.id, Element: "inherited_disabled", NewValue: now})
		}
	}
}

// InputsInline reports the effective inline layout. When neither the block
// nor its type fixes it, the layout is inferred from the input list.
func (b *Block) InputsInline() bool {
	if b.inputsInline != nil {
		return *b.inputsInline
	}
	for i := 1; i < len(b.inputs); i++ {
		prev, cur := b.inputs[i-1].kind, b.inputs[i].kind
		if prev == DummyInput && cur == DummyInput {
			return false
		}
	}
	for i := 1; i < len(b.inputs); i++ {
		prev, cur := b.inputs[i-1].kind, b.inputs[i].kind
		if prev == ValueInput && cur == DummyInput {
			return true
		}
	}
	for _, in := range b.inputs {
		if in.kind == EndRowInput {
			return true
		}
	}
	return false
}

// SetInputsInline fixes the inline layout.
func (b *Block) SetInputsInline(inline bool) {
	if b.inputsInline != nil && *b.inputsInline == inline {
		return
	}
	var old any
	if b.inputsInline != nil {
		old = *b.inputsInline
	}
	b.fireChange(events.ElementInline, old, inline)
	b.inputsInline = &inline
	b.ws.markDirty(b)
}

// inlineIsDefault reports whether the layout matches what the type gives.
func (b *Block) inlineIsDefault() bool {
	if b.inputsInline == nil || b.inputsInlineDefault == nil {
		return b.inputsInline == nil
	}
	return *b.inputsInline == *b.inputsInlineDefault
}

// CommentText returns the block comment and whether there is one.
func (b *Block) CommentText() (string, bool) {
	if b.comment == nil {
		return "", false
	}
	return b.comment.text, true
}

// SetCommentText attaches or replaces the block comment.
func (b *Block) SetCommentText(text string) {
	b.setComment(&text)
}

// RemoveComment drops the block comment.
func (b *Block) RemoveComment() {
	b.setComment(nil)
}

func (b *Block) setComment(text *string) {
	var old any
	if b.comment != nil {
		old = b.comment.text
	}
	var now any
	if text != nil {
		now = *text
	}
	if events.ValuesEqual(old, now) {
		return
	}
	b.fireChange(events.ElementComment, old, now)
	if text == nil {
		b.comment = nil
	} else if b.comment == nil {
		b.comment = &commentIcon{text: *text}
	} else {
		b.comment.text = *text
	}
	b.ws.markDirty(b)
}

// CommentPinned reports whether the comment bubble is pinned open.
func (b *Block) CommentPinned() bool { return b.comment != nil && b.comment.pinned }

// SetCommentBubble sets the pinned state and bubble size of the comment.
func (b *Block) SetCommentBubble(pinned bool, size geom.Size) {
	if b.comment == nil {
		return
	}
	b.comment.pinned = pinned
	b.comment.size = size
}

// ExtraState returns the behaviour's extra state, or nil.
func (b *Block) ExtraState() any {
	if b.extra == nil {
		return nil
	}
	return b.extra.SaveExtraState(b)
}

// SetExtraState loads new extra state through the behaviour and fires a
// mutation change carrying both states as JSON text.
func (b *Block) SetExtraState(s any) error {
	if b.extra == nil {
		return fmt.Errorf("block type %q has no extra state", b.typ.Name)
	}
	end := b.ws.session.BeginGroup()
	defer end()
	old := b.extraStateText()
	if err := b.extra.LoadExtraState(b, s); err != nil {
		return err
	}
	b.ws.markDirty(b)
	b.fireChange(events.ElementMutation, old, b.extraStateText())
	return nil
}

func (b *Block) extraStateText() string {
	s := b.ExtraState()
	if s == nil {
		return ""
	}
	raw, err := json.Marshal(s)
	if err != nil {
		b.ws.logger.Warn("Could not encode extra state", "block", b.id, "error", err)
		return ""
	}
	return string(raw)
}

func (b *Block) loadExtraStateText(text string) error {
	if b.extra == nil {
		return fmt.Errorf("block type %q has no extra state", b.typ.Name)
	}
	var s any = map[string]any{}
	if text != "" {
		if err := json.Unmarshal([]byte(text), &s); err != nil {
			return fmt.Errorf("decoding extra state of block %s: %w", b, err)
		}
	}
	return b.extra.LoadExtraState(b, s)
}

// XY returns the block's position on the workspace surface.
func (b *Block) XY() geom.Coordinate {
	xy := b.xy
	for p := b.parent; p != nil; p = p.parent {
		xy = xy.Add(p.xy)
	}
	return xy
}

// RelativeXY returns the position relative to the parent block.
func (b *Block) RelativeXY() geom.Coordinate { return b.xy }

// Size returns the size from the last render.
func (b *Block) Size() geom.Size { return b.size }

// HeightWidth returns the height of the block and everything below it in the
// stack, and the widest of them.
func (b *Block) HeightWidth() geom.Size {
	size := b.size
	if next := b.NextBlock(); next != nil {
		rest := next.HeightWidth()
		size.Height += rest.Height
		size.Width = max(size.Width, rest.Width)
	}
	return size
}

// BoundingRectangle returns the surface area covered by the block and the
// rest of its stack.
func (b *Block) BoundingRectangle() geom.Rect {
	xy := b.XY()
	hw := b.HeightWidth()
	if b.ws.opts.RTL {
		return geom.Rect{Left: xy.X - hw.Width, Top: xy.Y, Right: xy.X, Bottom: xy.Y + hw.Height}
	}
	return geom.Rect{Left: xy.X, Top: xy.Y, Right: xy.X + hw.Width, Bottom: xy.Y + hw.Height}
}
