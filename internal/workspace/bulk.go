package workspace

import "github.com/specialistvlad/blockgraph/internal/geom"

// BulkOption tunes a bulk operation.
type BulkOption func(*bulkConfig)

type bulkConfig struct {
	yield func()
}

// WithYield calls fn between the steps of a bulk operation, e.g. to let a
// renderer catch up.
func WithYield(fn func()) BulkOption {
	return func(c *bulkConfig) { c.yield = fn }
}

func newBulkConfig(opts []BulkOption) bulkConfig {
	var c bulkConfig
	for _, o := range opts {
		o(&c)
	}
	return c
}

func (c bulkConfig) step() {
	if c.yield != nil {
		c.yield()
	}
}

// SetCollapsedAll collapses or expands every block along the top-level
// stacks, in reading order, as one group.
func (ws *Workspace) SetCollapsedAll(collapse bool, opts ...BulkOption) {
	cfg := newBulkConfig(opts)
	end := ws.session.BeginGroup()
	defer end()
	for _, top := range ws.TopBlocks(true) {
		for b := top; b != nil; b = b.NextBlock() {
			if b.IsDeadOrDying() {
				continue
			}
			b.SetCollapsed(collapse)
			cfg.step()
		}
	}
}

// deletableBlocks lists the blocks DeleteAll removes: a deletable block with
// its whole subtree, otherwise whatever is deletable below it.
func (ws *Workspace) deletableBlocks() []*Block {
	var out []*Block
	var add func(b *Block)
	add = func(b *Block) {
		if b.IsDeletable() {
			out = append(out, b.Descendants(false)...)
			return
		}
		for _, child := range b.Children(false) {
			add(child)
		}
	}
	for _, top := range ws.TopBlocks(true) {
		add(top)
	}
	return out
}

// DeleteAllCount returns how many real blocks DeleteAll would remove.
func (ws *Workspace) DeleteAllCount() int {
	n := 0
	for _, b := range ws.deletableBlocks() {
		if !b.IsShadow() {
			n++
		}
	}
	return n
}

// DeleteAll disposes every deletable block in reading order as one group and
// returns the number of blocks it disposed directly.
func (ws *Workspace) DeleteAll(opts ...BulkOption) int {
	cfg := newBulkConfig(opts)
	end := ws.session.BeginGroup()
	defer end()
	n := 0
	for _, b := range ws.deletableBlocks() {
		if b.IsDeadOrDying() {
			continue
		}
		b.Dispose(false)
		n++
		cfg.step()
	}
	return n
}

// CleanUp stacks the movable top-level blocks in a column at x=0, in
// reading order, flowing around blocks that cannot move.
func (ws *Workspace) CleanUp() {
	end := ws.session.BeginGroup()
	defer end()

	var movable []*Block
	var fixed []geom.Rect
	for _, b := range ws.TopBlocks(true) {
		if b.IsMovable() {
			movable = append(movable, b)
		} else {
			fixed = append(fixed, b.BoundingRectangle())
		}
	}
	intersecting := func(r geom.Rect) (geom.Rect, bool) {
		for _, f := range fixed {
			if r.Intersects(f) {
				return f, true
			}
		}
		return geom.Rect{}, false
	}

	gap := ws.opts.CleanUpGap
	cursorY := 0.0
	for _, b := range movable {
		xy := b.XY()
		_ = b.moveBy(-xy.X, cursorY-xy.Y, "cleanup")
		rect := b.BoundingRectangle()
		for {
			conflict, ok := intersecting(rect)
			if !ok {
				break
			}
			cursorY = conflict.Bottom + gap
			_ = b.moveBy(0, cursorY-rect.Top, "cleanup")
			rect = b.BoundingRectangle()
		}
		cursorY = b.XY().Y + b.HeightWidth().Height + gap
	}
}
