package workspace

import (
	"github.com/specialistvlad/blockgraph/internal/events"
	"github.com/specialistvlad/blockgraph/internal/state"
)

// BlockType is the definition every block of one type is built from.
type BlockType struct {
	Name string

	// Output, Previous and Next add the corresponding connection. A block
	// with an output cannot also have a previous connection.
	Output   bool
	Previous bool
	Next     bool

	OutputCheck   []string
	PreviousCheck []string
	NextCheck     []string

	Inputs []InputSpec

	// InputsInline fixes the inline layout; nil lets the layout be inferred.
	InputsInline *bool

	Colour  string
	Tooltip string
	Style   string

	// NewBehavior builds the per-block behaviour object. The capability
	// interfaces it implements are what the block supports.
	NewBehavior func() any
}

// InputSpec declares one input of a block type.
type InputSpec struct {
	Kind   InputKind
	Name   string
	Check  []string
	Align  Align
	Fields []FieldSpec
	Shadow *state.Block
}

// TypeRegistry resolves type names to definitions.
type TypeRegistry interface {
	BlockType(name string) (*BlockType, bool)
}

// TypeMap is a fixed TypeRegistry.
type TypeMap map[string]*BlockType

func (m TypeMap) BlockType(name string) (*BlockType, bool) {
	t, ok := m[name]
	return t, ok
}

// InitBehavior runs after the declared inputs are built. It may add
// further inputs and fields.
type InitBehavior interface {
	Init(b *Block) error
}

// ExtraStateBehavior is implemented by blocks that carry state beyond their
// fields and connections, such as a variable number of inputs.
type ExtraStateBehavior interface {
	SaveExtraState(b *Block) any
	LoadExtraState(b *Block, s any) error
}

// ProcedureBehavior is implemented by procedure definition and call blocks.
type ProcedureBehavior interface {
	// ProcedureID returns the id of the procedure model the block is bound to.
	ProcedureID(b *Block) string
	// DefinesProcedure reports whether the block is the definition.
	DefinesProcedure(b *Block) bool
	// Parameters returns the variable ids a definition declares.
	Parameters(b *Block) []string
}

// ChangeBehavior receives every event fired on the block's workspace.
type ChangeBehavior interface {
	OnChange(b *Block, e *events.Event)
}

// DisposeBehavior runs when the block is torn down.
type DisposeBehavior interface {
	OnDispose(b *Block)
}
