package workspace

import "github.com/specialistvlad/blockgraph/internal/geom"

type boundedMover interface {
	BoundingRectangle() geom.Rect
	moveBy(dx, dy float64, reason ...string) error
}

// clamp limits v to [lo, hi], swapping the bounds when they are inverted.
func clamp(lo, v, hi float64) float64 {
	if hi < lo {
		lo, hi = hi, lo
	}
	return max(lo, min(v, hi))
}

// bumpIntoBounds moves obj so that its top-left corner lies within bounds.
// An object larger than the bounds is aligned with the top edge and the start
// edge for the text direction.
func (ws *Workspace) bumpIntoBounds(bounds geom.Rect, obj boundedMover) bool {
	r := obj.BoundingRectangle()

	bottomClamp := bounds.Bottom - r.Height()
	newY := clamp(bounds.Top, r.Top, bottomClamp)
	if r.Height() > bounds.Height() {
		newY = bounds.Top
	}
	dy := newY - r.Top

	leftClamp, rightClamp := bounds.Left, bounds.Right-r.Width()
	if ws.opts.RTL {
		leftClamp = min(rightClamp, leftClamp)
	} else {
		rightClamp = max(leftClamp, rightClamp)
	}
	newX := clamp(leftClamp, r.Left, rightClamp)
	dx := newX - r.Left

	if dx == 0 && dy == 0 {
		return false
	}
	_ = obj.moveBy(dx, dy, "inbounds")
	return true
}

// BumpIntoBounds moves every top-level block and comment that sticks out of
// bounds back inside, as one group. It returns how many moved.
func (ws *Workspace) BumpIntoBounds(bounds geom.Rect) int {
	end := ws.session.BeginGroup()
	defer end()
	n := 0
	for _, b := range ws.TopBlocks(true) {
		if b.IsMovable() && ws.bumpIntoBounds(bounds, b) {
			n++
		}
	}
	for _, c := range ws.TopComments(true) {
		if ws.bumpIntoBounds(bounds, c) {
			n++
		}
	}
	return n
}

// BumpNeighbours moves unconnected stacks whose connections sit within the
// snap radius of this block's stack away from it, so nothing looks joined
// that is not. Only tracked connections take part.
func (b *Block) BumpNeighbours() {
	root := b.RootBlock()
	if b.IsDeadOrDying() || b.ws.isFlyout {
		return
	}
	b.bumpNeighbours(root)
}

func (b *Block) bumpNeighbours(root *Block) {
	radius := b.ws.opts.SnapRadius
	for _, c := range b.Connections(false) {
		if c.IsSuperior() && c.IsConnected() {
			c.TargetBlock().bumpNeighbours(root)
		}
		for _, other := range c.Neighbours(radius) {
			if c.IsConnected() && other.IsConnected() {
				continue
			}
			if other.block.RootBlock() == root {
				continue
			}
			// The inferior side always moves.
			if c.IsSuperior() {
				other.bumpAwayFrom(c)
			} else {
				c.bumpAwayFrom(other)
			}
		}
	}
}
