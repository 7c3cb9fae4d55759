package workspace

import "github.com/specialistvlad/blockgraph/internal/geom"

// Renderer measures and draws single blocks. The workspace decides when and
// in which order; a renderer only ever sees one block at a time, after all
// of that block's children.
type Renderer interface {
	Measure(b *Block) RenderInfo
	Draw(b *Block, info RenderInfo)
}

// RenderInfo is what the workspace needs back from a measurement.
type RenderInfo interface {
	Size() geom.Size
	// ConnectionOffset is the position of c relative to the block's top-left
	// corner. It reports false for connections the layout does not place.
	ConnectionOffset(c *Connection) (geom.Coordinate, bool)
}

// SetRenderer attaches a renderer. Every block is marked for rendering.
func (ws *Workspace) SetRenderer(r Renderer) {
	ws.renderer = r
	if r == nil {
		clear(ws.dirty)
		return
	}
	for _, b := range ws.blocksByID {
		ws.dirty[b] = struct{}{}
	}
}

func (ws *Workspace) rendered() bool { return ws.renderer != nil }

// markDirty queues b and its ancestors for the next render.
func (ws *Workspace) markDirty(b *Block) {
	if ws.renderer == nil || b == nil {
		return
	}
	for ; b != nil; b = b.parent {
		if b.IsDeadOrDying() {
			return
		}
		ws.dirty[b] = struct{}{}
	}
}

// IsDirty reports whether b waits for a render.
func (ws *Workspace) IsDirty(b *Block) bool {
	_, ok := ws.dirty[b]
	return ok
}

// Render measures and draws every queued block exactly once, children before
// parents, then lays children out against their parents' connections and
// refreshes the connection index. It returns the number of blocks rendered.
func (ws *Workspace) Render() int {
	if ws.renderer == nil || len(ws.dirty) == 0 {
		return 0
	}
	n := 0
	var roots []*Block
	for _, top := range ws.topBlocks {
		if _, ok := ws.dirty[top]; !ok {
			continue
		}
		n += ws.renderTree(top)
		roots = append(roots, top)
	}
	clear(ws.dirty)
	for _, root := range roots {
		ws.updateConnectionPositions(root)
	}
	return n
}

func (ws *Workspace) renderTree(b *Block) int {
	if _, ok := ws.dirty[b]; !ok {
		return 0
	}
	n := 0
	for _, child := range b.Children(true) {
		n += ws.renderTree(child)
	}
	info := ws.renderer.Measure(b)
	ws.renderer.Draw(b, info)
	b.size = info.Size()
	for _, c := range b.Connections(true) {
		if off, ok := info.ConnectionOffset(c); ok {
			c.offset = off
		}
	}
	// Children sit so that their inferior connection meets ours.
	for _, c := range b.Connections(true) {
		if !c.IsSuperior() || !c.IsConnected() {
			continue
		}
		c.TargetBlock().xy = c.offset.Sub(c.target.offset)
	}
	delete(ws.dirty, b)
	return n + 1
}

// updateConnectionPositions recomputes the surface position of every
// connection in b's subtree and tracks those that are visible.
func (ws *Workspace) updateConnectionPositions(b *Block) {
	ws.updatePositions(b, b.XY(), false)
}

func (ws *Workspace) updatePositions(b *Block, xy geom.Coordinate, hidden bool) {
	for _, c := range b.Connections(true) {
		c.MoveTo(xy.Add(c.offset))
		inCollapsed := b.collapsed && (c.typ == InputValue || (c.typ == NextStatement && c != b.next))
		c.SetTracking(!hidden && !inCollapsed && !b.insertionMarker)
	}
	for _, child := range b.children {
		ws.updatePositions(child, xy.Add(child.xy), hidden || (b.collapsed && child != b.NextBlock()))
	}
}
