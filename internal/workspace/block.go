package workspace

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/specialistvlad/blockgraph/internal/events"
	"github.com/specialistvlad/blockgraph/internal/geom"
	"github.com/specialistvlad/blockgraph/internal/state"
)

// Block is a node of the program graph.
type Block struct {
	ws  *Workspace
	id  string
	typ *BlockType

	behavior  any
	extra     ExtraStateBehavior
	procedure ProcedureBehavior
	onChange  ChangeBehavior
	onDispose DisposeBehavior

	inputs   []*Input
	previous *Connection
	next     *Connection
	output   *Connection
	parent   *Block
	children []*Block

	// xy is relative to the parent block, or to the surface when top-level.
	xy   geom.Coordinate
	size geom.Size

	collapsed           bool
	disabled            bool
	editable            bool
	deletable           bool
	movable             bool
	shadow              bool
	insertionMarker     bool
	inputsInline        *bool
	inputsInlineDefault *bool
	data                string
	comment             *commentIcon

	disposing bool
	disposed  bool
}

type commentIcon struct {
	text   string
	pinned bool
	size   geom.Size
}

// NewBlock creates a top-level block of the named type and fires its create
// event. An empty or already used id is replaced by a generated one.
func (ws *Workspace) NewBlock(typeName, id string) (*Block, error) {
	end := ws.session.BeginGroup()
	defer end()
	b, err := ws.newBlock(typeName, id)
	if err != nil {
		return nil, err
	}
	if err := b.initModel(); err != nil {
		b.Dispose(false)
		return nil, err
	}
	ws.fireCreate(b)
	return b, nil
}

// newBlock builds and registers a block without firing anything.
func (ws *Workspace) newBlock(typeName, id string) (*Block, error) {
	bt, ok := ws.types.BlockType(typeName)
	if !ok || bt == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBlockType, typeName)
	}
	if bt.Output && bt.Previous {
		return nil, fmt.Errorf("block type %q declares both an output and a previous connection", typeName)
	}
	if id == "" || ws.blocksByID[id] != nil {
		id = uuid.NewString()
	}

	b := &Block{
		ws:        ws,
		id:        id,
		typ:       bt,
		editable:  true,
		deletable: true,
		movable:   true,
	}
	if bt.InputsInline != nil {
		v := *bt.InputsInline
		b.inputsInline = &v
	}
	if bt.NewBehavior != nil {
		b.behavior = bt.NewBehavior()
		b.extra, _ = b.behavior.(ExtraStateBehavior)
		b.procedure, _ = b.behavior.(ProcedureBehavior)
		b.onChange, _ = b.behavior.(ChangeBehavior)
		b.onDispose, _ = b.behavior.(DisposeBehavior)
	}

	ws.blocksByID[id] = b
	ws.addTopBlock(b)
	ws.addTypedBlock(b)

	if err := b.build(); err != nil {
		ws.removeTopBlock(b)
		b.disposeInternal()
		return nil, fmt.Errorf("initializing block %q: %w", typeName, err)
	}
	b.inputsInlineDefault = b.inputsInline
	if b.onChange != nil {
		ws.changeHooks = append(ws.changeHooks, b)
	}
	ws.markDirty(b)
	return b, nil
}

func (b *Block) build() error {
	bt := b.typ
	if bt.Output {
		b.output = newConnection(b, OutputValue)
		b.output.SetCheck(bt.OutputCheck...)
	}
	if bt.Previous {
		b.previous = newConnection(b, PreviousStatement)
		b.previous.SetCheck(bt.PreviousCheck...)
	}
	if bt.Next {
		b.next = newConnection(b, NextStatement)
		b.next.SetCheck(bt.NextCheck...)
	}
	for _, spec := range bt.Inputs {
		if _, err := b.addInput(len(b.inputs), spec); err != nil {
			return err
		}
	}
	if ib, ok := b.behavior.(InitBehavior); ok {
		if err := b.initBehavior(ib); err != nil {
			return err
		}
	}

	// Default shadows are part of the block's own create event.
	restore := b.ws.session.Disable()
	defer restore()
	for _, spec := range bt.Inputs {
		if spec.Shadow == nil {
			continue
		}
		in := b.Input(spec.Name)
		if in == nil {
			return fmt.Errorf("shadow declared on unnamed input of block %q", b.typ.Name)
		}
		if err := in.SetShadow(b.defaultShadow(spec)); err != nil {
			return fmt.Errorf("input %q: shadow: %w", spec.Name, err)
		}
	}
	return nil
}

func (b *Block) initBehavior(ib InitBehavior) error {
	restore := b.ws.session.SuspendUndo()
	defer restore()
	return ib.Init(b)
}

// initModel gives variable fields without a value their default variable.
func (b *Block) initModel() error {
	for _, in := range b.inputs {
		for _, f := range in.fields {
			if f.spec.Kind != FieldVariable || f.value != nil {
				continue
			}
			name, _ := f.spec.Value.(string)
			if name == "" {
				name = "item"
			}
			typ := ""
			if len(f.spec.VariableTypes) > 0 {
				typ = f.spec.VariableTypes[0]
			}
			v, err := b.ws.getOrCreateVariable("", name, typ)
			if err != nil {
				return fmt.Errorf("field %q: %w", f.spec.Name, err)
			}
			f.value = v.ID
		}
	}
	return nil
}

// ID returns the block id.
func (b *Block) ID() string { return b.id }

// Type returns the block type name.
func (b *Block) Type() string { return b.typ.Name }

// Definition returns the block type.
func (b *Block) Definition() *BlockType { return b.typ }

// Workspace returns the owning workspace.
func (b *Block) Workspace() *Workspace { return b.ws }

// Behavior returns the per-block behaviour object, or nil.
func (b *Block) Behavior() any { return b.behavior }

func (b *Block) String() string { return fmt.Sprintf("%s#%s", b.typ.Name, b.id) }

// Inputs returns the inputs in row order.
func (b *Block) Inputs() []*Input { return b.inputs }

// Input returns the named input, or nil.
func (b *Block) Input(name string) *Input {
	for _, in := range b.inputs {
		if in.name == name {
			return in
		}
	}
	return nil
}

// AppendInput adds an input at the end of the block.
func (b *Block) AppendInput(kind InputKind, name string) (*Input, error) {
	return b.addInput(len(b.inputs), InputSpec{Kind: kind, Name: name})
}

// AppendInputSpec adds a declared input, fields and checks included, at the
// end of the block.
func (b *Block) AppendInputSpec(spec InputSpec) (*Input, error) {
	in, err := b.addInput(len(b.inputs), spec)
	if err != nil {
		return nil, err
	}
	if spec.Shadow != nil {
		if err := in.SetShadow(b.defaultShadow(spec)); err != nil {
			return in, err
		}
	}
	return in, nil
}

// defaultShadow returns the declared shadow of an input. Without an id of its
// own the shadow is named after its parent and input, so that a block always
// gets the same shadow ids.
func (b *Block) defaultShadow(spec InputSpec) *state.Block {
	if spec.Shadow.ID != "" {
		return spec.Shadow
	}
	s := spec.Shadow.Clone()
	s.ID = b.id + "." + spec.Name
	return s
}

func (b *Block) addInput(i int, spec InputSpec) (*Input, error) {
	switch spec.Kind {
	case ValueInput, StatementInput:
		if spec.Name == "" {
			return nil, fmt.Errorf("%s input on block %q needs a name", spec.Kind, b.typ.Name)
		}
	case DummyInput, EndRowInput:
	default:
		return nil, fmt.Errorf("unknown input kind %d", spec.Kind)
	}
	if spec.Name != "" && b.Input(spec.Name) != nil {
		return nil, fmt.Errorf("block %q already has an input named %q", b.typ.Name, spec.Name)
	}

	in := &Input{kind: spec.Kind, name: spec.Name, block: b, align: spec.Align, visible: true}
	switch spec.Kind {
	case ValueInput:
		in.conn = newConnection(b, InputValue)
	case StatementInput:
		in.conn = newConnection(b, NextStatement)
	}
	if in.conn != nil && len(spec.Check) > 0 {
		in.conn.SetCheck(spec.Check...)
	}
	for _, fs := range spec.Fields {
		if _, err := in.AppendField(fs); err != nil {
			return nil, err
		}
	}
	b.inputs = slices.Insert(b.inputs, i, in)
	b.ws.markDirty(b)
	return in, nil
}

// RemoveInput drops the named input. A shadow plugged into it is disposed and
// a real child is unplugged onto the surface.
func (b *Block) RemoveInput(name string) error {
	for i, in := range b.inputs {
		if in.name == name {
			in.dispose()
			b.inputs = append(b.inputs[:i], b.inputs[i+1:]...)
			b.ws.markDirty(b)
			return nil
		}
	}
	return fmt.Errorf("block %q has no input %q", b.typ.Name, name)
}

// MoveInputBefore moves the named input in front of ref; an empty ref moves
// it to the end.
func (b *Block) MoveInputBefore(name, ref string) error {
	from, to := -1, -1
	for i, in := range b.inputs {
		if in.name == name {
			from = i
		}
		if ref != "" && in.name == ref {
			to = i
		}
	}
	if from < 0 {
		return fmt.Errorf("block %q has no input %q", b.typ.Name, name)
	}
	if ref == "" {
		to = len(b.inputs)
	} else if to < 0 {
		return fmt.Errorf("block %q has no input %q", b.typ.Name, ref)
	}
	in := b.inputs[from]
	b.inputs = slices.Delete(b.inputs, from, from+1)
	if from < to {
		to--
	}
	b.inputs = slices.Insert(b.inputs, to, in)
	b.ws.markDirty(b)
	return nil
}

// Field returns the named field from any input, or nil.
func (b *Block) Field(name string) *Field {
	for _, in := range b.inputs {
		for _, f := range in.fields {
			if f.spec.Name == name {
				return f
			}
		}
	}
	return nil
}

// FieldValue returns the value of the named field, or nil.
func (b *Block) FieldValue(name string) any {
	if f := b.Field(name); f != nil {
		return f.value
	}
	return nil
}

// SetFieldValue proposes a value for the named field; see Field.SetValue.
func (b *Block) SetFieldValue(name string, v any) (bool, error) {
	f := b.Field(name)
	if f == nil {
		return false, fmt.Errorf("block %q has no field %q", b.typ.Name, name)
	}
	return f.SetValue(v), nil
}

// PreviousConnection returns the previous connection, or nil.
func (b *Block) PreviousConnection() *Connection { return b.previous }

// NextConnection returns the next connection, or nil.
func (b *Block) NextConnection() *Connection { return b.next }

// OutputConnection returns the output connection, or nil.
func (b *Block) OutputConnection() *Connection { return b.output }

// SetPreviousStatement adds or removes the previous connection.
func (b *Block) SetPreviousStatement(on bool, checks ...string) error {
	if on {
		if b.output != nil {
			return fmt.Errorf("block %q must remove its output connection before adding a previous connection", b.typ.Name)
		}
		if b.previous == nil {
			b.previous = newConnection(b, PreviousStatement)
		}
		b.previous.SetCheck(checks...)
	} else if b.previous != nil {
		if b.previous.IsConnected() {
			return fmt.Errorf("block %q must disconnect its previous statement before removing the connection", b.typ.Name)
		}
		b.previous.dispose()
		b.previous = nil
	}
	b.ws.markDirty(b)
	return nil
}

// SetNextStatement adds or removes the next connection.
func (b *Block) SetNextStatement(on bool, checks ...string) error {
	if on {
		if b.next == nil {
			b.next = newConnection(b, NextStatement)
		}
		b.next.SetCheck(checks...)
	} else if b.next != nil {
		if b.next.IsConnected() {
			return fmt.Errorf("block %q must disconnect its next statement before removing the connection", b.typ.Name)
		}
		b.next.dispose()
		b.next = nil
	}
	b.ws.markDirty(b)
	return nil
}

// SetOutput adds or removes the output connection.
func (b *Block) SetOutput(on bool, checks ...string) error {
	if on {
		if b.previous != nil {
			return fmt.Errorf("block %q must remove its previous connection before adding an output connection", b.typ.Name)
		}
		if b.output == nil {
			b.output = newConnection(b, OutputValue)
		}
		b.output.SetCheck(checks...)
	} else if b.output != nil {
		if b.output.IsConnected() {
			return fmt.Errorf("block %q must disconnect its output before removing the connection", b.typ.Name)
		}
		b.output.dispose()
		b.output = nil
	}
	b.ws.markDirty(b)
	return nil
}

// Connections returns the block's connections. With all=false, connections
// hidden inside a collapsed block are left out.
func (b *Block) Connections(all bool) []*Connection {
	var out []*Connection
	if b.output != nil {
		out = append(out, b.output)
	}
	if b.previous != nil {
		out = append(out, b.previous)
	}
	if b.next != nil {
		out = append(out, b.next)
	}
	if all || !b.collapsed {
		for _, in := range b.inputs {
			if in.conn != nil {
				out = append(out, in.conn)
			}
		}
	}
	return out
}

// Parent returns the block this one is plugged into, or nil.
func (b *Block) Parent() *Block { return b.parent }

// Children returns the directly attached blocks. Ordered children follow
// input order with the next block last; unordered follows attachment order.
func (b *Block) Children(ordered bool) []*Block {
	if !ordered {
		return slices.Clone(b.children)
	}
	var out []*Block
	for _, in := range b.inputs {
		if in.conn != nil {
			if child := in.conn.TargetBlock(); child != nil {
				out = append(out, child)
			}
		}
	}
	if next := b.NextBlock(); next != nil {
		out = append(out, next)
	}
	return out
}

// Descendants returns b followed by every block below it, depth first.
func (b *Block) Descendants(ordered bool) []*Block {
	out := []*Block{b}
	for _, child := range b.Children(ordered) {
		out = append(out, child.Descendants(ordered)...)
	}
	return out
}

func (b *Block) descendantIDs() []string {
	ds := b.Descendants(true)
	ids := make([]string, len(ds))
	for i, d := range ds {
		ids[i] = d.id
	}
	return ids
}

// NextBlock returns the block attached below, or nil.
func (b *Block) NextBlock() *Block {
	if b.next == nil {
		return nil
	}
	return b.next.TargetBlock()
}

// PreviousBlock returns the block above in a stack, or nil.
func (b *Block) PreviousBlock() *Block {
	if b.previous == nil {
		return nil
	}
	return b.previous.TargetBlock()
}

// RootBlock returns the top-level block of b's stack.
func (b *Block) RootBlock() *Block {
	root := b
	for root.parent != nil {
		root = root.parent
	}
	return root
}

// SurroundParent returns the block whose input encloses b, skipping blocks
// that are merely above b in the same stack.
func (b *Block) SurroundParent() *Block {
	block := b
	for {
		prev := block
		block = block.parent
		if block == nil {
			return nil
		}
		if block.NextBlock() != prev {
			return block
		}
	}
}

// FirstStatementConnection returns the connection of the first statement
// input, or nil.
func (b *Block) FirstStatementConnection() *Connection {
	for _, in := range b.inputs {
		if in.conn != nil && in.conn.typ == NextStatement {
			return in.conn
		}
	}
	return nil
}

// InputWithBlock returns the input child is plugged into, or nil.
func (b *Block) InputWithBlock(child *Block) *Input {
	for _, in := range b.inputs {
		if in.conn != nil && in.conn.TargetBlock() == child {
			return in
		}
	}
	return nil
}

func (b *Block) inputWithConnection(c *Connection) *Input {
	for _, in := range b.inputs {
		if in.conn == c {
			return in
		}
	}
	return nil
}

// lastConnectionInStack walks down the next chain and returns the first free
// next connection. With ignoreShadows a shadow block counts as free space.
func (b *Block) lastConnectionInStack(ignoreShadows bool) *Connection {
	c := b.next
	for c != nil {
		next := c.TargetBlock()
		if next == nil || (ignoreShadows && next.IsShadow()) {
			return c
		}
		c = next.next
	}
	return nil
}

func (b *Block) isDescendantOf(ancestor *Block) bool {
	for p := b.parent; p != nil; p = p.parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// location is where a move event says the block is.
func (b *Block) location() (parentID, inputName string, coord *geom.Coordinate) {
	if b.parent != nil {
		parentID = b.parent.id
		if in := b.parent.InputWithBlock(b); in != nil {
			inputName = in.name
		}
		return parentID, inputName, nil
	}
	xy := b.XY()
	return "", "", &xy
}

// VarModels returns the variables the block's fields refer to.
func (b *Block) VarModels() []*Variable {
	var out []*Variable
	for _, in := range b.inputs {
		for _, f := range in.fields {
			if v := f.Variable(); v != nil {
				out = append(out, v)
			}
		}
	}
	return out
}

func (b *Block) usesVariable(id string) bool {
	for _, v := range b.VarModels() {
		if v.ID == id {
			return true
		}
	}
	return false
}

func (b *Block) updateVarName(v *Variable) {
	if b.usesVariable(v.ID) {
		b.ws.markDirty(b)
	}
}

func (b *Block) renameVarByID(oldID, newID string) {
	for _, in := range b.inputs {
		for _, f := range in.fields {
			if f.spec.Kind == FieldVariable && f.value == oldID {
				f.SetValue(newID)
			}
		}
	}
}

func (b *Block) fireChange(element string, old, new any) {
	b.ws.fireFor(&events.BlockChange{BlockID: b.id, Element: element, OldValue: old, NewValue: new})
}
