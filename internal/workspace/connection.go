package workspace

import (
	"fmt"
	"slices"

	"github.com/specialistvlad/blockgraph/internal/geom"
	"github.com/specialistvlad/blockgraph/internal/state"
)

// ConnectionType tags the four kinds of attachment point.
type ConnectionType int

const (
	InputValue ConnectionType = iota + 1
	OutputValue
	NextStatement
	PreviousStatement
)

func (t ConnectionType) String() string {
	switch t {
	case InputValue:
		return "input"
	case OutputValue:
		return "output"
	case NextStatement:
		return "next"
	case PreviousStatement:
		return "previous"
	}
	return fmt.Sprintf("ConnectionType(%d)", int(t))
}

// Opposite returns the type a connection of type t joins with.
func (t ConnectionType) Opposite() ConnectionType {
	switch t {
	case InputValue:
		return OutputValue
	case OutputValue:
		return InputValue
	case NextStatement:
		return PreviousStatement
	case PreviousStatement:
		return NextStatement
	}
	return 0
}

// Connection is an attachment point owned by a block. Input and next
// connections are superior: they hold children. Output and previous
// connections are inferior: they attach their block to a parent.
type Connection struct {
	block  *Block
	typ    ConnectionType
	target *Connection
	checks []string

	// shadowState is the template respawned whenever the connection is empty.
	shadowState *state.Block

	offset   geom.Coordinate
	pos      geom.Coordinate
	tracked  bool
	disposed bool
}

func newConnection(b *Block, typ ConnectionType) *Connection {
	return &Connection{block: b, typ: typ}
}

// Block returns the block owning the connection.
func (c *Connection) Block() *Block { return c.block }

// Type returns the connection type.
func (c *Connection) Type() ConnectionType { return c.typ }

// IsSuperior reports whether the connection holds children.
func (c *Connection) IsSuperior() bool {
	return c.typ == InputValue || c.typ == NextStatement
}

// IsConnected reports whether the connection has a target.
func (c *Connection) IsConnected() bool { return c.target != nil }

// Target returns the connection this one is joined to.
func (c *Connection) Target() *Connection { return c.target }

// TargetBlock returns the block on the other side, if any.
func (c *Connection) TargetBlock() *Block {
	if c.target == nil {
		return nil
	}
	return c.target.block
}

// Checks returns the type names the connection accepts; nil accepts anything.
func (c *Connection) Checks() []string { return slices.Clone(c.checks) }

// SetCheck replaces the accepted type names. Passing none removes the
// restriction. A child that no longer passes the check is unplugged.
func (c *Connection) SetCheck(checks ...string) {
	if len(checks) == 0 {
		c.checks = nil
		return
	}
	c.checks = slices.Clone(checks)
	if c.target != nil && !c.checker().CanConnect(c, c.target, false, 0) {
		child := c.block
		if c.IsSuperior() {
			child = c.TargetBlock()
		}
		child.Unplug(false)
		if c.block.ws.rendered() {
			c.block.BumpNeighbours()
		}
	}
}

func (c *Connection) checker() ConnectionChecker { return c.block.ws.checker }

func (c *Connection) parentAndChild() (parent, child *Connection) {
	if c.target == nil {
		return nil, nil
	}
	if c.IsSuperior() {
		return c, c.target
	}
	return c.target, c
}

// Connect joins c and other. Joining a connection to its current target is a
// no-op. A refused join returns a *ConnectionError and changes nothing.
func (c *Connection) Connect(other *Connection) error {
	if c.target == other && other != nil {
		return nil
	}
	if r := c.checker().CanConnectWithReason(c, other, false, 0); r != CanConnect {
		return &ConnectionError{Reason: r, A: c, B: other}
	}
	end := c.block.ws.session.BeginGroup()
	defer end()
	if c.IsSuperior() {
		c.connectChild(other)
	} else {
		other.connectChild(c)
	}
	return nil
}

// connectChild performs the join from the parent side. Whatever the parent
// held before is either a shadow, which is disposed, or a real block, which is
// re-attached below the new child or bumped away.
func (c *Connection) connectChild(child *Connection) {
	ws := c.block.ws
	parentBlock, childBlock := c.block, child.block

	// One move event covers the whole trip from the old parent to the new one.
	move := ws.newMove(childBlock)
	if child.IsConnected() {
		child.disconnectInternal(false)
	}

	var orphan *Block
	if c.IsConnected() {
		template := c.stashShadowState()
		target := c.TargetBlock()
		if target.IsShadow() {
			target.Dispose(false)
		} else {
			c.disconnectInternal(true)
			orphan = target
		}
		c.shadowState = template
	}

	c.target, child.target = child, c
	childBlock.setParent(parentBlock)
	ws.markDirty(parentBlock)
	ws.fireMove(move)

	if orphan == nil {
		return
	}
	orphanConn := orphan.previous
	if c.typ == InputValue {
		orphanConn = orphan.output
	}
	if orphanConn == nil {
		return
	}
	if conn := connectionForOrphan(childBlock, orphanConn); conn != nil {
		if err := orphanConn.Connect(conn); err == nil {
			return
		}
	}
	orphanConn.bumpAwayFrom(c)
}

// connectionForOrphan finds where a displaced block can go below start: the
// single compatible input down a chain of value blocks, or the end of the
// statement stack.
func connectionForOrphan(start *Block, orphan *Connection) *Connection {
	if orphan.typ == OutputValue {
		block := start
		for {
			conn := singleCompatibleInput(block, orphan)
			if conn == nil {
				return nil
			}
			block = conn.TargetBlock()
			if block == nil || block.IsShadow() {
				return conn
			}
		}
	}
	last := start.lastConnectionInStack(true)
	if last != nil && start.ws.checker.CanConnect(orphan, last, false, 0) {
		return last
	}
	return nil
}

func singleCompatibleInput(b *Block, orphan *Connection) *Connection {
	var found *Connection
	for _, in := range b.inputs {
		if in.conn == nil || !b.ws.checker.CanConnect(orphan, in.conn, false, 0) {
			continue
		}
		if found != nil {
			return nil
		}
		found = in.conn
	}
	return found
}

// Disconnect breaks the join. Disconnecting an empty connection is a no-op.
func (c *Connection) Disconnect() {
	parent, child := c.parentAndChild()
	if parent == nil || child == nil {
		return
	}
	c.disconnectInternal(true)
}

// disconnectInternal breaks the join. With setParent=false the child keeps
// its parent pointer and no move event fires: the caller is about to attach
// the child elsewhere and reports the whole move itself.
func (c *Connection) disconnectInternal(setParent bool) {
	parent, child := c.parentAndChild()
	if parent == nil {
		panic("workspace: disconnecting a connection that is not connected")
	}
	ws := c.block.ws
	end := ws.session.BeginGroup()
	defer end()

	childBlock := child.block
	var move *pendingMove
	if setParent {
		move = ws.newMove(childBlock)
	}
	parent.target, child.target = nil, nil
	if setParent {
		childBlock.setParent(nil)
	}
	ws.markDirty(parent.block)
	ws.fireMove(move)
	if !childBlock.IsShadow() {
		parent.respawnShadow()
	}
}

// ShadowState returns the shadow template, or nil.
func (c *Connection) ShadowState() *state.Block {
	if c.shadowState == nil {
		return nil
	}
	return c.shadowState.Clone()
}

// currentShadowState returns the live shadow child serialized when there is
// one, the template otherwise.
func (c *Connection) currentShadowState() *state.Block {
	if t := c.TargetBlock(); t != nil && t.IsShadow() {
		return SaveBlock(t, SaveOptions{AddInputBlocks: true, AddNextBlocks: true, SaveIDs: true})
	}
	return c.ShadowState()
}

func (c *Connection) stashShadowState() *state.Block {
	s := c.currentShadowState()
	c.shadowState = nil
	return s
}

// SetShadowState installs the shadow template. A live shadow child is
// replaced; an empty connection spawns the new shadow right away. Passing nil
// removes the template and any live shadow.
func (c *Connection) SetShadowState(s *state.Block) error {
	if s != nil && !c.IsSuperior() {
		return fmt.Errorf("%s connection cannot hold a shadow", c.typ)
	}
	if t := c.TargetBlock(); t != nil && t.IsShadow() {
		c.shadowState = nil
		t.Dispose(false)
	}
	if s == nil {
		c.shadowState = nil
		return nil
	}
	c.shadowState = s.Clone()
	if c.target == nil {
		if _, err := c.spawnShadow(); err != nil {
			c.shadowState = nil
			return err
		}
	}
	return nil
}

func (c *Connection) respawnShadow() {
	if _, err := c.spawnShadow(); err != nil {
		c.block.ws.logger.Warn("Could not respawn shadow block", "block", c.block.id, "error", err)
	}
}

func (c *Connection) spawnShadow() (*Block, error) {
	if c.shadowState == nil || c.block.IsDeadOrDying() || c.target != nil {
		return nil, nil
	}
	return appendInternal(c.block.ws, c.shadowState, appendArgs{parent: c, shadow: true})
}

// OffsetInBlock is the position of the connection relative to its block's
// top-left corner, as computed by the last render.
func (c *Connection) OffsetInBlock() geom.Coordinate { return c.offset }

// Position is the connection's position on the workspace surface.
func (c *Connection) Position() geom.Coordinate { return c.pos }

// DistanceFrom returns the surface distance between two connections.
func (c *Connection) DistanceFrom(o *Connection) float64 {
	return c.pos.Distance(o.pos)
}

// MoveTo updates the surface position, keeping the spatial index sorted.
func (c *Connection) MoveTo(p geom.Coordinate) {
	if c.tracked {
		c.db().remove(c)
	}
	c.pos = p
	if c.tracked {
		c.db().add(c)
	}
}

// SetTracking adds the connection to, or removes it from, the workspace
// spatial index.
func (c *Connection) SetTracking(on bool) {
	if on == c.tracked || c.disposed {
		return
	}
	if on {
		c.db().add(c)
	} else {
		c.db().remove(c)
	}
	c.tracked = on
}

// IsTracked reports whether the connection is in the spatial index.
func (c *Connection) IsTracked() bool { return c.tracked }

func (c *Connection) db() *ConnectionDB { return c.block.ws.connDB[c.typ] }

func (c *Connection) oppositeDB() *ConnectionDB { return c.block.ws.connDB[c.typ.Opposite()] }

// Closest searches the opposite index for the nearest connection c could snap
// to if it were moved by dxy.
func (c *Connection) Closest(maxRadius float64, dxy geom.Coordinate) (*Connection, float64) {
	return c.oppositeDB().SearchForClosest(c, maxRadius, dxy)
}

// Neighbours returns the tracked opposite connections within maxRadius.
func (c *Connection) Neighbours(maxRadius float64) []*Connection {
	return c.oppositeDB().Neighbours(c, maxRadius)
}

// bumpAwayFrom moves the root of c's stack so that it no longer lines up with
// static. When that stack cannot move the other one moves instead.
func (c *Connection) bumpAwayFrom(static *Connection) {
	dynamic := c
	root := dynamic.block.RootBlock()
	if root.ws.isFlyout {
		return
	}
	reverse := false
	if !root.IsMovable() {
		root = static.block.RootBlock()
		if !root.IsMovable() {
			return
		}
		static, dynamic = dynamic, static
		reverse = true
	}
	snap := root.ws.opts.SnapRadius
	dx := static.pos.X + snap - dynamic.pos.X
	dy := static.pos.Y + snap - dynamic.pos.Y
	if reverse {
		dy = -dy
	}
	if root.ws.opts.RTL {
		dx = static.pos.X - snap - dynamic.pos.X
	}
	_ = root.moveBy(dx, dy, "bump")
}

func (c *Connection) dispose() {
	if c.disposed {
		return
	}
	if c.target != nil {
		if t := c.TargetBlock(); t.IsShadow() {
			c.shadowState = nil
			t.Dispose(false)
		} else if !t.IsDeadOrDying() {
			t.Unplug(false)
		}
	}
	c.SetTracking(false)
	c.disposed = true
}

func (c *Connection) describe() string {
	if c == nil {
		return "<nil>"
	}
	if in := c.block.inputWithConnection(c); in != nil {
		return fmt.Sprintf("%s input %q of block %q", c.typ, in.name, c.block.typ.Name)
	}
	return fmt.Sprintf("%s connection of block %q", c.typ, c.block.typ.Name)
}
