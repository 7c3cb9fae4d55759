package workspace

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/specialistvlad/blockgraph/internal/events"
	"github.com/specialistvlad/blockgraph/internal/geom"
	"github.com/specialistvlad/blockgraph/internal/state"
)

// SaveOptions select what SaveBlock includes.
type SaveOptions struct {
	// AddCoordinates writes the surface position of the root block.
	AddCoordinates bool
	AddInputBlocks bool
	AddNextBlocks  bool
	SaveIDs        bool
}

// FullSave is what a workspace save writes for each top-level block.
var FullSave = SaveOptions{AddCoordinates: true, AddInputBlocks: true, AddNextBlocks: true, SaveIDs: true}

// SaveBlock serializes b and, depending on opts, the blocks below it.
// Insertion markers are never saved and yield nil.
func SaveBlock(b *Block, opts SaveOptions) *state.Block {
	if b.insertionMarker {
		return nil
	}
	st := &state.Block{Type: b.typ.Name}
	if opts.SaveIDs {
		st.ID = b.id
	}
	if opts.AddCoordinates {
		xy := b.XY()
		st.SetCoordinate(geom.Coordinate{X: math.Round(xy.X), Y: math.Round(xy.Y)})
	}
	saveAttributes(b, st)
	if s := b.ExtraState(); s != nil {
		st.ExtraState = s
	}
	if b.comment != nil {
		st.Icons = &state.Icons{Comment: &state.CommentIcon{
			Text:   b.comment.text,
			Pinned: b.comment.pinned,
			Height: b.comment.size.Height,
			Width:  b.comment.size.Width,
		}}
	}
	for _, in := range b.inputs {
		for _, f := range in.fields {
			if !f.IsSerializable() {
				continue
			}
			if v := f.saveState(); v != nil {
				if st.Fields == nil {
					st.Fields = make(map[string]any)
				}
				st.Fields[f.spec.Name] = v
			}
		}
	}

	child := opts
	child.AddCoordinates = false
	if opts.AddInputBlocks {
		for _, in := range b.inputs {
			if in.conn == nil {
				continue
			}
			if cs := saveConnection(in.conn, child); cs != nil {
				cs.Statement = in.kind == StatementInput
				if st.Inputs == nil {
					st.Inputs = make(map[string]*state.Connection)
				}
				st.Inputs[in.name] = cs
			}
		}
	}
	if opts.AddNextBlocks && b.next != nil {
		st.Next = saveConnection(b.next, child)
	}
	return st
}

func saveAttributes(b *Block, st *state.Block) {
	st.Collapsed = b.collapsed
	st.Disabled = b.disabled
	if !b.editable {
		st.Editable = state.Bool(false)
	}
	if !b.deletable {
		st.Deletable = state.Bool(false)
	}
	if !b.movable {
		st.Movable = state.Bool(false)
	}
	if b.inputsInline != nil && !b.inlineIsDefault() {
		st.Inline = state.Bool(*b.inputsInline)
	}
	st.Data = b.data
}

func saveConnection(c *Connection, opts SaveOptions) *state.Connection {
	shadow := c.currentShadowState()
	child := c.TargetBlock()
	if shadow == nil && child == nil {
		return nil
	}
	cs := &state.Connection{Shadow: shadow}
	if child != nil && !child.shadow {
		cs.Block = SaveBlock(child, opts)
	}
	if cs.Shadow == nil && cs.Block == nil {
		return nil
	}
	return cs
}

// AppendOptions tune AppendBlock.
type AppendOptions struct {
	// RecordUndo puts the create event on the undo stack.
	RecordUndo bool
}

// AppendBlock builds a block tree from st as a new top-level stack. The tree
// is built with events disabled and announced by a single create event. On a
// deserialization error nothing of the tree is left behind.
func AppendBlock(ws *Workspace, st *state.Block, opts AppendOptions) (*Block, error) {
	return appendInternal(ws, st, appendArgs{recordUndo: opts.RecordUndo})
}

type appendArgs struct {
	parent     *Connection
	shadow     bool
	recordUndo bool
}

func appendInternal(ws *Workspace, st *state.Block, args appendArgs) (*Block, error) {
	end := ws.session.BeginGroup()
	defer end()
	if !args.recordUndo {
		restore := ws.session.SuspendUndo()
		defer restore()
	}
	b, err := appendSilently(ws, st, args)
	if err != nil {
		return nil, err
	}
	ws.fireCreate(b)
	return b, nil
}

// appendSilently builds the tree with events disabled.
func appendSilently(ws *Workspace, st *state.Block, args appendArgs) (*Block, error) {
	restore := ws.session.Disable()
	defer restore()
	return appendPrivate(ws, st, args)
}

// appendPrivate builds one block and, recursively, its children. A block
// whose subtree fails to build is disposed before the error propagates.
func appendPrivate(ws *Workspace, st *state.Block, args appendArgs) (b *Block, err error) {
	if st == nil || st.Type == "" {
		if st == nil {
			st = &state.Block{}
		}
		return nil, &MissingBlockTypeError{State: st, Err: ErrUnknownBlockType}
	}
	b, err = ws.newBlock(st.Type, st.ID)
	if err != nil {
		return nil, &MissingBlockTypeError{State: st, Err: err}
	}
	defer func() {
		if err != nil {
			b.Dispose(false)
			b = nil
		}
	}()

	b.shadow = args.shadow
	if xy, ok := st.Coordinate(); ok {
		b.placeAt(xy)
	}
	loadAttributes(b, st)
	if st.ExtraState != nil {
		if b.extra == nil {
			ws.logger.Warn("Ignoring extra state on block without extra state support", "block", b.id, "type", b.typ.Name)
		} else if err := b.extra.LoadExtraState(b, st.ExtraState); err != nil {
			return b, fmt.Errorf("%w: block %q: extra state: %w", ErrDeserialization, st.Type, err)
		}
	}
	if err := tryToConnectParent(args.parent, b, st); err != nil {
		return b, err
	}
	if ci := st.Icons; ci != nil && ci.Comment != nil {
		b.comment = &commentIcon{
			text:   ci.Comment.Text,
			pinned: ci.Comment.Pinned,
			size:   geom.Size{Width: ci.Comment.Width, Height: ci.Comment.Height},
		}
	}
	if err := loadFields(b, st); err != nil {
		return b, err
	}
	for _, name := range sortedInputNames(st.Inputs) {
		in := b.Input(name)
		if in == nil || in.conn == nil {
			return b, &MissingConnectionError{Connection: name, Block: b, State: st}
		}
		if err := loadConnection(ws, in.conn, st.Inputs[name]); err != nil {
			return b, err
		}
	}
	if st.Next != nil {
		if b.next == nil {
			return b, &MissingConnectionError{Connection: "next", Block: b, State: st}
		}
		if err := loadConnection(ws, b.next, st.Next); err != nil {
			return b, err
		}
	}
	if err := b.initModel(); err != nil {
		return b, fmt.Errorf("%w: %w", ErrDeserialization, err)
	}
	return b, nil
}

func sortedInputNames(m map[string]*state.Connection) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func loadAttributes(b *Block, st *state.Block) {
	b.collapsed = st.Collapsed
	b.disabled = st.Disabled
	if st.Editable != nil {
		b.editable = *st.Editable
	}
	if st.Deletable != nil {
		b.deletable = *st.Deletable
	}
	if st.Movable != nil {
		b.movable = *st.Movable
	}
	if st.Inline != nil {
		v := *st.Inline
		b.inputsInline = &v
	}
	b.data = st.Data
}

func loadFields(b *Block, st *state.Block) error {
	names := make([]string, 0, len(st.Fields))
	for k := range st.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, name := range names {
		f := b.Field(name)
		if f == nil {
			b.ws.logger.Warn("Ignoring non-existent field", "block", b.id, "type", b.typ.Name, "field", name)
			continue
		}
		if err := f.loadState(st.Fields[name]); err != nil {
			return fmt.Errorf("%w: block %q: %w", ErrDeserialization, st.Type, err)
		}
	}
	return nil
}

func loadConnection(ws *Workspace, c *Connection, cs *state.Connection) error {
	if cs == nil {
		return nil
	}
	if cs.Shadow != nil {
		if err := c.SetShadowState(cs.Shadow); err != nil {
			return err
		}
	}
	if cs.Block != nil {
		if _, err := appendPrivate(ws, cs.Block, appendArgs{parent: c}); err != nil {
			return err
		}
	}
	return nil
}

func tryToConnectParent(parent *Connection, child *Block, st *state.Block) error {
	if parent == nil {
		return nil
	}
	if parent.block.shadow && !child.shadow {
		return &RealChildOfShadowError{State: st}
	}
	childConn, name := child.previous, "previous"
	if parent.typ == InputValue {
		childConn, name = child.output, "output"
	}
	if childConn == nil {
		return &MissingConnectionError{Connection: name, Block: child, State: st}
	}
	if err := parent.Connect(childConn); err != nil {
		var ce *ConnectionError
		reason := ReasonChecksFailed
		if errors.As(err, &ce) {
			reason = ce.Reason
		}
		return &BadConnectionCheckError{Connection: name + " connection", Reason: reason, Block: child, State: st}
	}
	return nil
}

// Save serializes the whole workspace.
func Save(ws *Workspace) *state.Workspace {
	out := &state.Workspace{}
	if len(ws.topBlocks) > 0 {
		blocks := &state.Blocks{LanguageVersion: state.LanguageVersion}
		for _, b := range ws.topBlocks {
			if st := SaveBlock(b, FullSave); st != nil {
				blocks.Blocks = append(blocks.Blocks, st)
			}
		}
		out.Blocks = blocks
	}
	for _, v := range ws.variables.All() {
		out.Variables = append(out.Variables, state.Variable{Name: v.Name, ID: v.ID, Type: v.Type})
	}
	for _, p := range ws.procedures.All() {
		out.Procedures = append(out.Procedures, p.save())
	}
	for _, c := range ws.topComments {
		out.Comments = append(out.Comments, *c.save())
	}
	return out
}

// LoadOptions tune Load.
type LoadOptions struct {
	RecordUndo bool
}

// Load replaces the workspace contents with doc: variables, then
// procedures, then blocks, then comments, followed by a finished-loading
// event. On error the workspace is left empty.
func Load(ws *Workspace, doc *state.Workspace, opts LoadOptions) error {
	end := ws.session.BeginGroup()
	defer end()
	if !opts.RecordUndo {
		restore := ws.session.SuspendUndo()
		defer restore()
	}
	ws.Clear()
	if err := load(ws, doc, opts); err != nil {
		ws.Clear()
		return err
	}
	ws.fireFor(&events.FinishedLoading{})
	return nil
}

func load(ws *Workspace, doc *state.Workspace, opts LoadOptions) error {
	if doc == nil {
		return nil
	}
	for _, v := range doc.Variables {
		if _, err := ws.CreateVariable(v.Name, v.Type, v.ID); err != nil {
			return fmt.Errorf("loading variable %q: %w", v.Name, err)
		}
	}
	for _, p := range doc.Procedures {
		proc := &Procedure{ID: p.ID, Name: p.Name, ReturnTypes: p.ReturnTypes, Parameters: p.Parameters}
		if err := ws.procedures.Add(proc); err != nil {
			return fmt.Errorf("loading procedure %q: %w", p.Name, err)
		}
	}
	for _, st := range doc.TopBlocks() {
		if _, err := AppendBlock(ws, st, AppendOptions{RecordUndo: opts.RecordUndo}); err != nil {
			return err
		}
	}
	for i := range doc.Comments {
		c := ws.loadComment(&doc.Comments[i])
		ws.fireCommentCreate(c)
	}
	return nil
}

// BlockToXML encodes b and everything below it as a <block> element.
func BlockToXML(b *Block) ([]byte, error) {
	st := SaveBlock(b, FullSave)
	if st == nil {
		return nil, fmt.Errorf("block %s is an insertion marker", b)
	}
	return state.MarshalBlockXML(st)
}

// WorkspaceToXML encodes the workspace as an <xml> document.
func WorkspaceToXML(ws *Workspace) ([]byte, error) {
	return state.MarshalWorkspaceXML(Save(ws))
}

// AppendXML adds the variables, blocks and comments of an <xml> document to
// the workspace as one undoable group and returns the new top-level blocks.
func AppendXML(ws *Workspace, data []byte) ([]*Block, error) {
	doc, err := state.UnmarshalWorkspaceXML(data)
	if err != nil {
		return nil, err
	}
	end := ws.session.BeginGroup()
	defer end()
	for _, v := range doc.Variables {
		if _, err := ws.getOrCreateVariable(v.ID, v.Name, v.Type); err != nil {
			return nil, fmt.Errorf("appending variable %q: %w", v.Name, err)
		}
	}
	var out []*Block
	for _, st := range doc.TopBlocks() {
		b, err := AppendBlock(ws, st, AppendOptions{RecordUndo: true})
		if err != nil {
			return out, err
		}
		out = append(out, b)
	}
	for i := range doc.Comments {
		c := ws.loadComment(&doc.Comments[i])
		ws.fireCommentCreate(c)
	}
	return out, nil
}

// LoadXML replaces the workspace contents with an <xml> document.
func LoadXML(ws *Workspace, data []byte) error {
	doc, err := state.UnmarshalWorkspaceXML(data)
	if err != nil {
		return err
	}
	return Load(ws, doc, LoadOptions{})
}
