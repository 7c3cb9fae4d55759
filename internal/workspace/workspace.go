package workspace

import (
	"context"
	"log/slog"
	"math"
	"slices"
	"sort"

	"github.com/google/uuid"
	"github.com/specialistvlad/blockgraph/internal/ctxlog"
	"github.com/specialistvlad/blockgraph/internal/events"
	"github.com/specialistvlad/blockgraph/internal/geom"
	"github.com/specialistvlad/blockgraph/internal/state"
)

// scanAngle tilts the reading order of top-level items so that items on the
// same row sort by their x position.
const scanAngle = 3

// Defaults applied by New to zero-valued options.
const (
	DefaultMaxUndo    = 1024
	DefaultSnapRadius = 28
	DefaultCleanUpGap = 24
)

// Options configure a workspace.
type Options struct {
	// ID is the workspace id; empty generates one.
	ID string

	RTL              bool
	ReadOnly         bool
	HorizontalLayout bool
	// NoCollapse and NoDisable withhold the collapse and disable actions
	// from the user.
	NoCollapse bool
	NoDisable  bool

	// MaxBlocks caps the number of blocks; 0 means unlimited.
	MaxBlocks int
	// MaxInstances caps the number of blocks per type.
	MaxInstances map[string]int

	MaxUndo             int
	SnapRadius          float64
	CleanUpGap          float64
	MaxTrashcanContents int

	// Checker replaces the default connection checker.
	Checker ConnectionChecker
	// Session is shared with other workspaces, e.g. a flyout; nil creates a
	// fresh one.
	Session *events.Session
}

// Listener receives every fired event.
type Listener func(e *events.Event)

type listenerEntry struct {
	id int
	fn Listener
}

// Workspace owns blocks, comments, variables, procedures and the undo
// history of one editing surface. It is not safe for concurrent use.
type Workspace struct {
	id      string
	opts    Options
	types   TypeRegistry
	session *events.Session
	logger  *slog.Logger
	checker ConnectionChecker
	connDB  map[ConnectionType]*ConnectionDB

	topBlocks    []*Block
	topComments  []*Comment
	blocksByID   map[string]*Block
	commentsByID map[string]*Comment
	typedBlocks  map[string][]*Block

	variables          *VariableMap
	potentialVariables *VariableMap
	procedures         *ProcedureMap

	undoStack []*events.Event
	redoStack []*events.Event

	listeners    []listenerEntry
	nextListener int
	changeHooks  []*Block

	renderer Renderer
	dirty    map[*Block]struct{}

	isClearing bool
	isFlyout   bool
	target     *Workspace
	trashcan   *Trashcan
}

// New returns an empty workspace. The logger is taken from ctx.
func New(ctx context.Context, types TypeRegistry, opts Options) *Workspace {
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	if opts.MaxUndo == 0 {
		opts.MaxUndo = DefaultMaxUndo
	}
	if opts.SnapRadius == 0 {
		opts.SnapRadius = DefaultSnapRadius
	}
	if opts.CleanUpGap == 0 {
		opts.CleanUpGap = DefaultCleanUpGap
	}
	if opts.Checker == nil {
		opts.Checker = Checker{}
	}
	if opts.Session == nil {
		opts.Session = events.NewSession()
	}

	ws := &Workspace{
		id:           opts.ID,
		opts:         opts,
		types:        types,
		session:      opts.Session,
		logger:       ctxlog.FromContext(ctx).With("workspace_id", opts.ID),
		checker:      opts.Checker,
		blocksByID:   make(map[string]*Block),
		commentsByID: make(map[string]*Comment),
		typedBlocks:  make(map[string][]*Block),
		dirty:        make(map[*Block]struct{}),
	}
	ws.connDB = make(map[ConnectionType]*ConnectionDB, 4)
	for _, t := range []ConnectionType{InputValue, OutputValue, NextStatement, PreviousStatement} {
		ws.connDB[t] = NewConnectionDB(ws.checker)
	}
	ws.variables = newVariableMap(ws)
	ws.procedures = newProcedureMap(ws)
	if opts.MaxTrashcanContents > 0 {
		ws.trashcan = newTrashcan(ws, opts.MaxTrashcanContents)
	}
	return ws
}

// ID returns the workspace id.
func (ws *Workspace) ID() string { return ws.id }

// Options returns the options the workspace was built with.
func (ws *Workspace) Options() Options { return ws.opts }

// Session returns the event session.
func (ws *Workspace) Session() *events.Session { return ws.session }

// Logger returns the workspace logger.
func (ws *Workspace) Logger() *slog.Logger { return ws.logger }

// Checker returns the connection checker.
func (ws *Workspace) Checker() ConnectionChecker { return ws.checker }

// Types returns the block type registry.
func (ws *Workspace) Types() TypeRegistry { return ws.types }

// IsFlyout reports whether the workspace is a flyout.
func (ws *Workspace) IsFlyout() bool { return ws.isFlyout }

// IsClearing reports whether Clear is in progress.
func (ws *Workspace) IsClearing() bool { return ws.isClearing }

// IsReadOnly reports whether the workspace refuses user edits.
func (ws *Workspace) IsReadOnly() bool { return ws.opts.ReadOnly }

// Trashcan returns the trashcan, or nil when disabled.
func (ws *Workspace) Trashcan() *Trashcan { return ws.trashcan }

func (ws *Workspace) addTopBlock(b *Block) {
	ws.topBlocks = append(ws.topBlocks, b)
}

// removeTopBlock panics when b is not top-level: the tree and the list have
// drifted apart.
func (ws *Workspace) removeTopBlock(b *Block) {
	i := slices.Index(ws.topBlocks, b)
	if i < 0 {
		panic("workspace: block not present in workspace's list of top-most blocks")
	}
	ws.topBlocks = slices.Delete(ws.topBlocks, i, i+1)
}

func (ws *Workspace) addTopComment(c *Comment) {
	ws.topComments = append(ws.topComments, c)
	ws.commentsByID[c.id] = c
}

func (ws *Workspace) removeTopComment(c *Comment) {
	i := slices.Index(ws.topComments, c)
	if i < 0 {
		panic("workspace: comment not present in workspace's list of top-most comments")
	}
	ws.topComments = slices.Delete(ws.topComments, i, i+1)
	delete(ws.commentsByID, c.id)
}

func (ws *Workspace) addTypedBlock(b *Block) {
	ws.typedBlocks[b.typ.Name] = append(ws.typedBlocks[b.typ.Name], b)
}

func (ws *Workspace) removeTypedBlock(b *Block) {
	list := ws.typedBlocks[b.typ.Name]
	if i := slices.Index(list, b); i >= 0 {
		list = slices.Delete(list, i, i+1)
	}
	if len(list) == 0 {
		delete(ws.typedBlocks, b.typ.Name)
	} else {
		ws.typedBlocks[b.typ.Name] = list
	}
}

// scanKey orders items top to bottom with a slight diagonal bias.
func (ws *Workspace) scanKey(xy geom.Coordinate) float64 {
	offset := math.Sin(scanAngle * math.Pi / 180)
	if ws.opts.RTL {
		offset = -offset
	}
	return xy.Y + offset*xy.X
}

func (ws *Workspace) sortBlocks(blocks []*Block) {
	sort.SliceStable(blocks, func(i, j int) bool {
		return ws.scanKey(blocks[i].XY()) < ws.scanKey(blocks[j].XY())
	})
}

// TopBlocks returns the top-level blocks, in reading order when ordered.
func (ws *Workspace) TopBlocks(ordered bool) []*Block {
	out := slices.Clone(ws.topBlocks)
	if ordered && len(out) > 1 {
		ws.sortBlocks(out)
	}
	return out
}

// AllBlocks returns every block, insertion markers excluded.
func (ws *Workspace) AllBlocks(ordered bool) []*Block {
	var out []*Block
	for _, top := range ws.TopBlocks(ordered) {
		for _, b := range top.Descendants(ordered) {
			if !b.insertionMarker {
				out = append(out, b)
			}
		}
	}
	return out
}

// BlocksByType returns the blocks of one type, insertion markers excluded.
func (ws *Workspace) BlocksByType(typeName string, ordered bool) []*Block {
	var out []*Block
	for _, b := range ws.typedBlocks[typeName] {
		if !b.insertionMarker {
			out = append(out, b)
		}
	}
	if ordered && len(out) > 1 {
		ws.sortBlocks(out)
	}
	return out
}

// BlockByID returns the live block with the id, or nil.
func (ws *Workspace) BlockByID(id string) *Block { return ws.blocksByID[id] }

// TopComments returns the workspace comments, in reading order when ordered.
func (ws *Workspace) TopComments(ordered bool) []*Comment {
	out := slices.Clone(ws.topComments)
	if ordered && len(out) > 1 {
		sort.SliceStable(out, func(i, j int) bool {
			return ws.scanKey(out[i].xy) < ws.scanKey(out[j].xy)
		})
	}
	return out
}

// CommentByID returns the workspace comment with the id, or nil.
func (ws *Workspace) CommentByID(id string) *Comment { return ws.commentsByID[id] }

// Clear disposes every block and comment and forgets all variables, as one
// undoable group.
func (ws *Workspace) Clear() {
	end := ws.session.BeginGroup()
	defer end()
	ws.isClearing = true
	defer func() { ws.isClearing = false }()

	for len(ws.topBlocks) > 0 {
		ws.topBlocks[len(ws.topBlocks)-1].Dispose(false)
	}
	for len(ws.topComments) > 0 {
		ws.topComments[len(ws.topComments)-1].Dispose()
	}
	ws.procedures.clear()
	if ws.isFlyout && ws.target != nil {
		// The variable map belongs to the target workspace.
		ws.potentialVariables.clear()
		return
	}
	ws.variables.clear()
	if ws.potentialVariables != nil {
		ws.potentialVariables.clear()
	}
}

// AddChangeListener registers fn for every fired event, after the listeners
// already registered. The returned function removes it.
func (ws *Workspace) AddChangeListener(fn Listener) (remove func()) {
	ws.nextListener++
	id := ws.nextListener
	ws.listeners = append(ws.listeners, listenerEntry{id: id, fn: fn})
	return func() {
		ws.listeners = slices.DeleteFunc(ws.listeners, func(l listenerEntry) bool { return l.id == id })
	}
}

// newEvent wraps a payload with the workspace id, the open group and the
// session's undo flag.
func (ws *Workspace) newEvent(p events.Payload) *events.Event {
	e := events.New(p)
	e.WorkspaceID = ws.id
	e.Group = ws.session.Group()
	if !ws.session.RecordUndo() {
		e.RecordUndo = false
	}
	return e
}

// fireFor fires a payload when events are enabled.
func (ws *Workspace) fireFor(p events.Payload) {
	if !ws.session.Enabled() {
		return
	}
	ws.Fire(ws.newEvent(p))
}

// Fire dispatches e: undoable events go onto the undo stack, then listeners
// run in registration order, then block change hooks. Nothing happens while
// events are disabled or when e changes nothing.
func (ws *Workspace) Fire(e *events.Event) {
	if !ws.session.Enabled() || e.IsNull() {
		return
	}
	if e.WorkspaceID == "" {
		e.WorkspaceID = ws.id
	}
	if e.RecordUndo {
		ws.undoStack = append(ws.undoStack, e)
		ws.redoStack = nil
		if over := len(ws.undoStack) - ws.opts.MaxUndo; over > 0 {
			ws.undoStack = slices.Delete(ws.undoStack, 0, over)
		}
	}
	for _, l := range slices.Clone(ws.listeners) {
		l.fn(e)
	}
	for _, b := range slices.Clone(ws.changeHooks) {
		if !b.IsDeadOrDying() {
			b.onChange.OnChange(b, e)
		}
	}
}

// pendingMove captures a block's location before a move so the event can be
// completed afterwards. Group and undo flag are those at capture time.
type pendingMove struct {
	block   *Block
	payload *events.BlockMove
	event   *events.Event
}

func (ws *Workspace) newMove(b *Block, reason ...string) *pendingMove {
	if !ws.session.Enabled() {
		return nil
	}
	p := &events.BlockMove{BlockID: b.id, Reason: reason}
	p.OldParentID, p.OldInputName, p.OldCoordinate = b.location()
	e := ws.newEvent(p)
	if b.shadow {
		e.RecordUndo = false
	}
	return &pendingMove{block: b, payload: p, event: e}
}

func (ws *Workspace) fireMove(m *pendingMove) {
	if m == nil {
		return
	}
	m.payload.NewParentID, m.payload.NewInputName, m.payload.NewCoordinate = m.block.location()
	ws.Fire(m.event)
}

// blockXML renders a snapshot as XML text for create and delete events.
func (ws *Workspace) blockXML(st *state.Block) string {
	raw, err := state.MarshalBlockXML(st)
	if err != nil {
		ws.logger.Warn("Could not encode block snapshot as XML", "block", st.ID, "error", err)
		return ""
	}
	return string(raw)
}
