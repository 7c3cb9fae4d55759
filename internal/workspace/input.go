package workspace

import (
	"fmt"

	"github.com/specialistvlad/blockgraph/internal/state"
)

// InputKind distinguishes the input rows of a block.
type InputKind int

const (
	ValueInput InputKind = iota + 1
	StatementInput
	DummyInput
	// EndRowInput is a dummy input that forces the next input onto a new row
	// even when inputs are inline.
	EndRowInput
)

func (k InputKind) String() string {
	switch k {
	case ValueInput:
		return "value"
	case StatementInput:
		return "statement"
	case DummyInput:
		return "dummy"
	case EndRowInput:
		return "end_row"
	}
	return fmt.Sprintf("InputKind(%d)", int(k))
}

// Align is the horizontal alignment of an input's fields.
type Align int

const (
	AlignLeft Align = iota
	AlignCentre
	AlignRight
)

// Input is one row entry of a block: a run of fields, optionally followed by a
// value or statement connection.
type Input struct {
	kind    InputKind
	name    string
	block   *Block
	conn    *Connection
	fields  []*Field
	align   Align
	visible bool
}

// Name returns the input name; dummy inputs may be unnamed.
func (in *Input) Name() string { return in.name }

// Kind returns the input kind.
func (in *Input) Kind() InputKind { return in.kind }

// Block returns the owning block.
func (in *Input) Block() *Block { return in.block }

// Connection returns the input's connection, nil for dummy inputs.
func (in *Input) Connection() *Connection { return in.conn }

// Fields returns the input's fields in row order.
func (in *Input) Fields() []*Field { return in.fields }

// Align returns the field alignment.
func (in *Input) Align() Align { return in.align }

// SetAlign changes the field alignment.
func (in *Input) SetAlign(a Align) *Input {
	in.align = a
	in.block.ws.markDirty(in.block)
	return in
}

// IsVisible reports whether the input is shown.
func (in *Input) IsVisible() bool { return in.visible }

// SetVisible shows or hides the input.
func (in *Input) SetVisible(v bool) {
	if in.visible == v {
		return
	}
	in.visible = v
	in.block.ws.markDirty(in.block)
}

// SetCheck restricts what the input's connection accepts.
func (in *Input) SetCheck(checks ...string) *Input {
	if in.conn == nil {
		panic(fmt.Sprintf("workspace: input %q has no connection to check", in.name))
	}
	in.conn.SetCheck(checks...)
	return in
}

// SetShadow installs the shadow template for the input's connection.
func (in *Input) SetShadow(s *state.Block) error {
	if in.conn == nil {
		return fmt.Errorf("input %q has no connection", in.name)
	}
	return in.conn.SetShadowState(s)
}

// AppendField adds a field at the end of the row. Field names must be unique
// within the block.
func (in *Input) AppendField(spec FieldSpec) (*Field, error) {
	return in.InsertField(len(in.fields), spec)
}

// InsertField adds a field at position i of the row.
func (in *Input) InsertField(i int, spec FieldSpec) (*Field, error) {
	if spec.Name != "" && in.block.Field(spec.Name) != nil {
		return nil, fmt.Errorf("block %q already has a field named %q", in.block.Type(), spec.Name)
	}
	if i < 0 || i > len(in.fields) {
		return nil, fmt.Errorf("field index %d out of range", i)
	}
	f := newField(spec)
	f.block = in.block
	in.fields = append(in.fields, nil)
	copy(in.fields[i+1:], in.fields[i:])
	in.fields[i] = f
	in.block.ws.markDirty(in.block)
	return f, nil
}

// RemoveField drops a field from the row. It reports whether it was found.
func (in *Input) RemoveField(name string) bool {
	for i, f := range in.fields {
		if f.spec.Name == name {
			in.fields = append(in.fields[:i], in.fields[i+1:]...)
			in.block.ws.markDirty(in.block)
			return true
		}
	}
	return false
}

func (in *Input) dispose() {
	in.fields = nil
	if in.conn != nil {
		in.conn.dispose()
	}
}
