package workspace

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/blockgraph/internal/state"
)

var (
	// ErrDeserialization matches every error produced while building blocks
	// from a serialized tree.
	ErrDeserialization = errors.New("deserialization failed")

	// ErrUnknownBlockType is returned when a type name has no registered
	// definition.
	ErrUnknownBlockType = errors.New("unknown block type")

	// ErrCapacity is returned when a copy would exceed the workspace limits.
	ErrCapacity = errors.New("workspace is at block capacity")

	// ErrReadOnly is returned by user-level operations on a read-only workspace.
	ErrReadOnly = errors.New("workspace is read-only")

	// ErrVariableIsParameter is returned when deleting a variable that a
	// procedure definition declares as a parameter.
	ErrVariableIsParameter = errors.New("variable is a procedure parameter")
)

// ConnectionError is returned by Connect when the checker refuses the join.
type ConnectionError struct {
	Reason Reason
	A, B   *Connection
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot connect %s to %s: %s", e.A.describe(), e.B.describe(), e.Reason)
}

// MissingBlockTypeError reports a serialized block without a type, or with a
// type nothing registered.
type MissingBlockTypeError struct {
	State *state.Block
	Err   error
}

func (e *MissingBlockTypeError) Error() string {
	if e.State.Type == "" {
		return "deserialization failed: block has no type"
	}
	return fmt.Sprintf("deserialization failed: block %q: %v", e.State.Type, e.Err)
}

func (e *MissingBlockTypeError) Is(target error) bool { return target == ErrDeserialization }
func (e *MissingBlockTypeError) Unwrap() error        { return e.Err }

// MissingConnectionError reports serialized children for a connection the
// block does not have.
type MissingConnectionError struct {
	Connection string
	Block      *Block
	State      *state.Block
}

func (e *MissingConnectionError) Error() string {
	return fmt.Sprintf("deserialization failed: block %q has no %s connection", e.State.Type, e.Connection)
}

func (e *MissingConnectionError) Is(target error) bool { return target == ErrDeserialization }

// BadConnectionCheckError reports a serialized child that cannot connect to
// its parent.
type BadConnectionCheckError struct {
	Connection string
	Reason     Reason
	Block      *Block
	State      *state.Block
}

func (e *BadConnectionCheckError) Error() string {
	return fmt.Sprintf("deserialization failed: block %q cannot attach its %s: %s", e.State.Type, e.Connection, e.Reason)
}

func (e *BadConnectionCheckError) Is(target error) bool { return target == ErrDeserialization }

// RealChildOfShadowError reports a real block nested under a shadow.
type RealChildOfShadowError struct {
	State *state.Block
}

func (e *RealChildOfShadowError) Error() string {
	return fmt.Sprintf("deserialization failed: real block %q is nested under a shadow block", e.State.Type)
}

func (e *RealChildOfShadowError) Is(target error) bool { return target == ErrDeserialization }
