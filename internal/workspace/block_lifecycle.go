package workspace

import (
	"fmt"
	"slices"

	"github.com/specialistvlad/blockgraph/internal/events"
	"github.com/specialistvlad/blockgraph/internal/geom"
)

// setParent moves b under newParent, or onto the surface when newParent is
// nil, keeping its surface position. Connections are the caller's business.
func (b *Block) setParent(newParent *Block) {
	if newParent == b.parent {
		return
	}
	abs := b.XY()
	if old := b.parent; old != nil {
		i := slices.Index(old.children, b)
		if i < 0 {
			panic(fmt.Sprintf("workspace: block %s missing from children of %s", b, old))
		}
		old.children = slices.Delete(old.children, i, i+1)
		if (b.previous != nil && b.previous.IsConnected()) || (b.output != nil && b.output.IsConnected()) {
			panic(fmt.Sprintf("workspace: block %s still connected to its old parent", b))
		}
		b.parent = nil
	} else {
		b.ws.removeTopBlock(b)
	}

	b.parent = newParent
	if newParent != nil {
		newParent.children = append(newParent.children, b)
		b.xy = abs.Sub(newParent.XY())
	} else {
		b.ws.addTopBlock(b)
		b.xy = abs
	}
}

// Unplug detaches the block from its parent. With heal, the blocks it was
// holding are reattached to the parent in its place where they fit.
func (b *Block) Unplug(heal bool) {
	if b.output != nil {
		b.unplugFromRow(heal)
	}
	if b.previous != nil {
		b.unplugFromStack(heal)
	}
}

func (b *Block) unplugFromRow(heal bool) {
	var parentConn *Connection
	if b.output.IsConnected() {
		parentConn = b.output.target
		b.output.Disconnect()
	}
	if !heal || parentConn == nil {
		return
	}
	child := b.onlyValueConnection()
	if child == nil || !child.IsConnected() || child.TargetBlock().IsShadow() {
		return
	}
	childConn := child.target
	childConn.Disconnect()
	if b.ws.checker.CanConnect(childConn, parentConn, false, 0) {
		if err := parentConn.Connect(childConn); err != nil {
			b.ws.logger.Warn("Could not heal row", "block", b.id, "error", err)
		}
	} else {
		childConn.bumpAwayFrom(parentConn)
	}
}

// onlyValueConnection returns the connection of the block's single value
// input, or nil when there are none or several.
func (b *Block) onlyValueConnection() *Connection {
	var found *Connection
	for _, in := range b.inputs {
		if in.conn == nil || in.conn.typ != InputValue {
			continue
		}
		if found != nil {
			return nil
		}
		found = in.conn
	}
	return found
}

func (b *Block) unplugFromStack(heal bool) {
	var prevTarget *Connection
	if b.previous.IsConnected() {
		prevTarget = b.previous.target
		b.previous.Disconnect()
	}
	next := b.NextBlock()
	if !heal || next == nil || next.IsShadow() {
		return
	}
	nextTarget := b.next.target
	b.next.Disconnect()
	if prevTarget != nil && b.ws.checker.CanConnect(prevTarget, nextTarget, false, 0) {
		if err := prevTarget.Connect(nextTarget); err != nil {
			b.ws.logger.Warn("Could not heal stack", "block", b.id, "error", err)
		}
	}
}

// Dispose removes the block and everything below it from the workspace. With
// heal, the block's children are reattached to its parent first. Disposing a
// dead block does nothing.
func (b *Block) Dispose(heal bool) {
	if b.IsDeadOrDying() {
		return
	}
	ws := b.ws
	end := ws.session.BeginGroup()
	defer end()

	b.Unplug(heal)
	b.disposing = true
	var e *events.Event
	if ws.session.Enabled() {
		e = ws.deleteEvent(b)
	}
	if b.parent == nil {
		ws.removeTopBlock(b)
	}
	b.disposeInternal()
	// Listeners see the workspace without the block.
	if e != nil {
		ws.Fire(e)
	}
}

func (b *Block) disposeInternal() {
	b.disposing = true
	ws := b.ws
	if b.onDispose != nil {
		b.onDispose.OnDispose(b)
	}
	ws.removeTypedBlock(b)
	delete(ws.blocksByID, b.id)
	delete(ws.dirty, b)
	if b.onChange != nil {
		ws.changeHooks = slices.DeleteFunc(ws.changeHooks, func(x *Block) bool { return x == b })
	}
	for _, child := range slices.Clone(b.children) {
		child.disposeInternal()
	}
	for _, in := range b.inputs {
		in.dispose()
	}
	for _, c := range []*Connection{b.output, b.previous, b.next} {
		if c != nil {
			c.dispose()
		}
	}
	b.children = nil
	b.disposed = true
}

// MoveBy shifts a top-level block on the surface and fires a move event.
func (b *Block) MoveBy(dx, dy float64) error {
	return b.moveBy(dx, dy)
}

// MoveTo places a top-level block at a surface position.
func (b *Block) MoveTo(xy geom.Coordinate) error {
	d := xy.Sub(b.XY())
	return b.moveBy(d.X, d.Y)
}

func (b *Block) moveBy(dx, dy float64, reason ...string) error {
	if b.parent != nil {
		return fmt.Errorf("block %s is attached to %s and cannot be moved on its own", b, b.parent)
	}
	if dx == 0 && dy == 0 {
		return nil
	}
	move := b.ws.newMove(b, reason...)
	b.xy = b.xy.Add(geom.Coordinate{X: dx, Y: dy})
	b.ws.fireMove(move)
	if b.ws.rendered() {
		b.ws.updateConnectionPositions(b)
	}
	return nil
}

// placeAt sets the surface position without firing anything; used while a
// block is built from saved state.
func (b *Block) placeAt(xy geom.Coordinate) {
	if b.parent != nil {
		b.xy = xy.Sub(b.parent.XY())
		return
	}
	b.xy = xy
}

func (ws *Workspace) deleteEvent(b *Block) *events.Event {
	st := SaveBlock(b, SaveOptions{AddCoordinates: true, AddInputBlocks: true, AddNextBlocks: true, SaveIDs: true})
	e := ws.newEvent(&events.BlockDelete{
		BlockID:   b.id,
		OldXML:    ws.blockXML(st),
		OldJSON:   st,
		IDs:       b.descendantIDs(),
		WasShadow: b.shadow,
	})
	if b.shadow {
		e.RecordUndo = false
	}
	return e
}

func (ws *Workspace) fireCreate(b *Block) {
	if !ws.session.Enabled() {
		return
	}
	st := SaveBlock(b, SaveOptions{AddCoordinates: true, AddInputBlocks: true, AddNextBlocks: true, SaveIDs: true})
	e := ws.newEvent(&events.BlockCreate{
		BlockID: b.id,
		XML:     ws.blockXML(st),
		JSON:    st,
		IDs:     b.descendantIDs(),
	})
	if b.shadow {
		e.RecordUndo = false
	}
	ws.Fire(e)
}
