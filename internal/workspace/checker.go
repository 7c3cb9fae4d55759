package workspace

// Reason is the outcome of a connection check.
type Reason int

const (
	CanConnect Reason = iota
	ReasonTargetNull
	ReasonSelfConnection
	ReasonWrongType
	ReasonPreviousAndOutput
	ReasonDifferentWorkspaces
	ReasonCycle
	ReasonChecksFailed
	ReasonShadowParent
	ReasonDragChecksFailed
)

func (r Reason) String() string {
	switch r {
	case CanConnect:
		return "can connect"
	case ReasonTargetNull:
		return "target connection is missing"
	case ReasonSelfConnection:
		return "attempted to connect a block to itself"
	case ReasonWrongType:
		return "connection types are not compatible"
	case ReasonPreviousAndOutput:
		return "block cannot use its output and previous connections at the same time"
	case ReasonDifferentWorkspaces:
		return "blocks are on different workspaces"
	case ReasonCycle:
		return "blocks are already nested in one another"
	case ReasonChecksFailed:
		return "connection checks failed"
	case ReasonShadowParent:
		return "a real block cannot be nested under a shadow block"
	case ReasonDragChecksFailed:
		return "drag checks failed"
	}
	return "unknown reason"
}

// ConnectionChecker decides whether two connections may join. Hard callers
// (Connect, deserialization) pass isDragging=false; snapping during a drag
// passes true together with the search radius.
type ConnectionChecker interface {
	CanConnect(a, b *Connection, isDragging bool, maxDistance float64) bool
	CanConnectWithReason(a, b *Connection, isDragging bool, maxDistance float64) Reason
}

// Checker is the default ConnectionChecker.
type Checker struct{}

var _ ConnectionChecker = Checker{}

func (c Checker) CanConnect(a, b *Connection, isDragging bool, maxDistance float64) bool {
	return c.CanConnectWithReason(a, b, isDragging, maxDistance) == CanConnect
}

func (c Checker) CanConnectWithReason(a, b *Connection, isDragging bool, maxDistance float64) Reason {
	if r := c.safetyChecks(a, b); r != CanConnect {
		return r
	}
	if !c.typeChecks(a, b) {
		return ReasonChecksFailed
	}
	parent, child := a, b
	if !a.IsSuperior() {
		parent, child = b, a
	}
	if parent.block.IsShadow() && !child.block.IsShadow() {
		return ReasonShadowParent
	}
	if isDragging && !c.dragChecks(a, b, maxDistance) {
		return ReasonDragChecksFailed
	}
	return CanConnect
}

func (Checker) safetyChecks(a, b *Connection) Reason {
	if a == nil || b == nil {
		return ReasonTargetNull
	}
	superior, inferior := a, b
	if !a.IsSuperior() {
		superior, inferior = b, a
	}
	sb, ib := superior.block, inferior.block
	switch {
	case sb == ib:
		return ReasonSelfConnection
	case inferior.typ != superior.typ.Opposite():
		return ReasonWrongType
	case inferior.typ == OutputValue && ib.previous != nil && ib.previous.IsConnected():
		return ReasonPreviousAndOutput
	case inferior.typ == PreviousStatement && ib.output != nil && ib.output.IsConnected():
		return ReasonPreviousAndOutput
	case sb.ws != ib.ws:
		return ReasonDifferentWorkspaces
	}
	// A join between blocks that already sit in one another's subtree is
	// refused unless it is the join they already share.
	if a.target != b && (sb.isDescendantOf(ib) || ib.isDescendantOf(sb)) {
		return ReasonCycle
	}
	return CanConnect
}

// typeChecks passes when either side is unchecked or the check lists share a
// name.
func (Checker) typeChecks(a, b *Connection) bool {
	if a.checks == nil || b.checks == nil {
		return true
	}
	for _, x := range a.checks {
		for _, y := range b.checks {
			if x == y {
				return true
			}
		}
	}
	return false
}

// dragChecks applies the rules for offering b as a snap target to the dragged
// connection a.
func (Checker) dragChecks(a, b *Connection, maxDistance float64) bool {
	if a.DistanceFrom(b) > maxDistance {
		return false
	}
	if b.block.IsInsertionMarker() {
		return false
	}
	// Candidates inside the dragged stack would nest it in itself.
	if b.block.RootBlock() == a.block.RootBlock() {
		return false
	}

	target := b.TargetBlock()
	switch b.typ {
	case PreviousStatement:
		if a.target != nil {
			return false
		}
		if target == nil {
			return true
		}
		// Only an insertion marker heading a stack may be displaced.
		return target.IsInsertionMarker() && target.PreviousBlock() == nil
	case OutputValue:
		if (target != nil && !target.IsInsertionMarker()) || a.IsConnected() {
			return false
		}
	case InputValue:
		if target != nil && !target.IsMovable() && !target.IsShadow() {
			return false
		}
	case NextStatement:
		if target != nil && a.block.next == nil && !target.IsShadow() && target.next != nil {
			return false
		}
		if target != nil && !target.IsMovable() && !target.IsShadow() {
			return false
		}
	default:
		return false
	}
	return true
}
