package workspace

import (
	"slices"

	"github.com/specialistvlad/blockgraph/internal/events"
	"github.com/specialistvlad/blockgraph/internal/state"
)

// UndoStack returns the recorded events, oldest first.
func (ws *Workspace) UndoStack() []*events.Event { return slices.Clone(ws.undoStack) }

// RedoStack returns the undone events; the next redo is last.
func (ws *Workspace) RedoStack() []*events.Event { return slices.Clone(ws.redoStack) }

// UndoDepth returns the sizes of the undo and redo stacks.
func (ws *Workspace) UndoDepth() (undo, redo int) { return len(ws.undoStack), len(ws.redoStack) }

// CanUndo reports whether Undo(false) has anything to do.
func (ws *Workspace) CanUndo() bool { return len(ws.undoStack) > 0 }

// CanRedo reports whether Undo(true) has anything to do.
func (ws *Workspace) CanRedo() bool { return len(ws.redoStack) > 0 }

// ClearUndo forgets all history.
func (ws *Workspace) ClearUndo() {
	ws.undoStack = nil
	ws.redoStack = nil
}

// Undo reverts the latest group of recorded events, or with redo re-applies
// the latest undone group. The replay itself is not recorded.
func (ws *Workspace) Undo(redo bool) {
	src, dst := &ws.undoStack, &ws.redoStack
	if redo {
		src, dst = &ws.redoStack, &ws.undoStack
	}
	if len(*src) == 0 {
		return
	}
	pop := func() *events.Event {
		s := *src
		e := s[len(s)-1]
		*src = s[:len(s)-1]
		return e
	}
	first := pop()
	batch := []*events.Event{first}
	for len(*src) > 0 && first.Group != "" && (*src)[len(*src)-1].Group == first.Group {
		batch = append(batch, pop())
	}
	*dst = append(*dst, batch...)

	replay := events.Filter(batch, redo)
	restoreUndo := ws.session.SuspendUndo()
	defer restoreUndo()
	restoreGroup := ws.session.SetGroup(first.Group)
	defer restoreGroup()
	for _, e := range replay {
		if e.IsNull() {
			continue
		}
		ws.Run(e, redo)
	}
}

// Run applies e to the workspace, forwards or backwards. Targets that no
// longer exist are logged and skipped.
func (ws *Workspace) Run(e *events.Event, forward bool) {
	switch p := e.Payload.(type) {
	case *events.BlockCreate:
		if forward {
			ws.runAppend(p.BlockID, p.JSON)
		} else {
			ws.runDispose(p.BlockID, p.IDs, "Can't uncreate non-existent block")
		}
	case *events.BlockDelete:
		if forward {
			ws.runDispose(p.BlockID, p.IDs, "Can't delete non-existent block")
		} else {
			ws.runAppend(p.BlockID, p.OldJSON)
		}
	case *events.BlockChange:
		ws.runChange(p, forward)
	case *events.BlockMove:
		ws.runMove(p, forward)
	case *events.CommentCreate:
		if forward {
			ws.runCommentAppend(p.CommentID, p.JSON)
		} else {
			ws.runCommentDispose(p.CommentID, "Can't uncreate non-existent comment")
		}
	case *events.CommentDelete:
		if forward {
			ws.runCommentDispose(p.CommentID, "Can't delete non-existent comment")
		} else {
			ws.runCommentAppend(p.CommentID, p.JSON)
		}
	case *events.CommentChange:
		c := ws.CommentByID(p.CommentID)
		if c == nil {
			ws.logger.Warn("Can't change non-existent comment", "comment", p.CommentID)
			return
		}
		c.SetText(pick(forward, p.NewContents, p.OldContents))
	case *events.CommentMove:
		c := ws.CommentByID(p.CommentID)
		if c == nil {
			ws.logger.Warn("Can't move non-existent comment", "comment", p.CommentID)
			return
		}
		_ = c.MoveTo(pick(forward, p.NewCoordinate, p.OldCoordinate))
	case *events.VarCreate:
		if forward {
			ws.runVarCreate(p.VarName, p.VarType, p.VarID)
		} else {
			ws.runVarDelete(p.VarID)
		}
	case *events.VarDelete:
		if forward {
			ws.runVarDelete(p.VarID)
		} else {
			ws.runVarCreate(p.VarName, p.VarType, p.VarID)
		}
	case *events.VarRename:
		if err := ws.RenameVariableByID(p.VarID, pick(forward, p.NewName, p.OldName)); err != nil {
			ws.logger.Warn("Can't rename variable", "variable", p.VarID, "error", err)
		}
	}
}

func pick[T any](forward bool, next, prev T) T {
	if forward {
		return next
	}
	return prev
}

func (ws *Workspace) runAppend(id string, st *state.Block) {
	if st == nil {
		ws.logger.Warn("Can't create block without a snapshot", "block", id)
		return
	}
	if ws.BlockByID(st.ID) != nil {
		// A mirror may already have respawned the same shadow on its own.
		ws.logger.Debug("Skipping create of existing block", "block", st.ID)
		return
	}
	if _, err := AppendBlock(ws, st, AppendOptions{}); err != nil {
		ws.logger.Warn("Can't recreate block", "block", id, "error", err)
	}
}

func (ws *Workspace) runDispose(id string, ids []string, missing string) {
	for _, bid := range ids {
		if b := ws.BlockByID(bid); b != nil {
			b.Dispose(false)
		} else if bid == id {
			ws.logger.Warn(missing, "block", bid)
		}
	}
}

func (ws *Workspace) runChange(p *events.BlockChange, forward bool) {
	b := ws.BlockByID(p.BlockID)
	if b == nil {
		ws.logger.Warn("Can't change non-existent block", "block", p.BlockID)
		return
	}
	value := pick(forward, p.NewValue, p.OldValue)
	switch p.Element {
	case events.ElementField:
		f := b.Field(p.Name)
		if f == nil {
			ws.logger.Warn("Can't set non-existent field", "block", p.BlockID, "field", p.Name)
			return
		}
		f.SetValue(value)
	case events.ElementComment:
		if text, ok := value.(string); ok {
			b.SetCommentText(text)
		} else {
			b.RemoveComment()
		}
	case events.ElementCollapsed:
		b.SetCollapsed(truthy(value))
	case events.ElementDisabled:
		b.SetEnabled(!truthy(value))
	case events.ElementInline:
		b.SetInputsInline(truthy(value))
	case events.ElementMutation:
		old := b.extraStateText()
		text, _ := value.(string)
		if err := b.loadExtraStateText(text); err != nil {
			ws.logger.Warn("Can't restore extra state", "block", p.BlockID, "error", err)
			return
		}
		ws.markDirty(b)
		b.fireChange(events.ElementMutation, old, text)
	default:
		ws.logger.Warn("Unknown change type", "element", p.Element)
	}
}

func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return x != "" && x != "false"
	case nil:
		return false
	}
	return true
}

func (ws *Workspace) runMove(p *events.BlockMove, forward bool) {
	b := ws.BlockByID(p.BlockID)
	if b == nil {
		ws.logger.Warn("Can't move non-existent block", "block", p.BlockID)
		return
	}
	parentID := pick(forward, p.NewParentID, p.OldParentID)
	inputName := pick(forward, p.NewInputName, p.OldInputName)
	coord := pick(forward, p.NewCoordinate, p.OldCoordinate)

	var parent *Block
	if parentID != "" {
		if parent = ws.BlockByID(parentID); parent == nil {
			ws.logger.Warn("Can't connect to non-existent block", "block", parentID)
			return
		}
	}
	if b.parent != nil {
		b.Unplug(false)
	}
	if coord != nil {
		d := coord.Sub(b.XY())
		_ = b.moveBy(d.X, d.Y, p.Reason...)
		return
	}
	if parent == nil {
		return
	}
	blockConn := b.output
	if blockConn == nil || (b.previous != nil && b.previous.IsConnected()) {
		blockConn = b.previous
	}
	if blockConn == nil {
		ws.logger.Warn("Can't connect block without an output or previous connection", "block", p.BlockID)
		return
	}
	var parentConn *Connection
	if inputName != "" {
		if in := parent.Input(inputName); in != nil {
			parentConn = in.conn
		}
	} else if blockConn.typ == PreviousStatement {
		parentConn = parent.next
	}
	if parentConn == nil {
		ws.logger.Warn("Can't connect to non-existent input", "block", parentID, "input", inputName)
		return
	}
	if err := blockConn.Connect(parentConn); err != nil {
		ws.logger.Warn("Can't reconnect block", "block", p.BlockID, "error", err)
	}
}

func (ws *Workspace) runCommentAppend(id string, st *state.Comment) {
	if st == nil {
		ws.logger.Warn("Can't create comment without a snapshot", "comment", id)
		return
	}
	if ws.CommentByID(st.ID) != nil {
		ws.logger.Debug("Skipping create of existing comment", "comment", st.ID)
		return
	}
	ws.fireCommentCreate(ws.loadComment(st))
}

func (ws *Workspace) runCommentDispose(id, missing string) {
	c := ws.CommentByID(id)
	if c == nil {
		ws.logger.Warn(missing, "comment", id)
		return
	}
	c.Dispose()
}

func (ws *Workspace) runVarCreate(name, typ, id string) {
	if _, err := ws.CreateVariable(name, typ, id); err != nil {
		ws.logger.Warn("Can't create variable", "variable", id, "error", err)
	}
}

func (ws *Workspace) runVarDelete(id string) {
	if err := ws.DeleteVariableByID(id); err != nil {
		ws.logger.Warn("Can't delete variable", "variable", id, "error", err)
	}
}
