package workspace

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/specialistvlad/blockgraph/internal/events"
	"github.com/specialistvlad/blockgraph/internal/geom"
	"github.com/specialistvlad/blockgraph/internal/state"
)

// Default size of a new workspace comment.
var defaultCommentSize = geom.Size{Width: 200, Height: 100}

// Comment is a free-standing note on the workspace surface.
type Comment struct {
	ws       *Workspace
	id       string
	text     string
	xy       geom.Coordinate
	size     geom.Size
	disposed bool
}

// NewComment adds a comment at the origin and fires its create event. An
// empty or already used id is replaced by a generated one.
func (ws *Workspace) NewComment(text, id string) *Comment {
	c := ws.newComment(text, id)
	ws.fireCommentCreate(c)
	return c
}

func (ws *Workspace) newComment(text, id string) *Comment {
	if id == "" || ws.commentsByID[id] != nil {
		id = uuid.NewString()
	}
	c := &Comment{ws: ws, id: id, text: text, size: defaultCommentSize}
	ws.addTopComment(c)
	return c
}

func (ws *Workspace) fireCommentCreate(c *Comment) {
	if !ws.session.Enabled() {
		return
	}
	st := c.save()
	ws.Fire(ws.newEvent(&events.CommentCreate{CommentID: c.id, XML: ws.commentXML(st), JSON: st}))
}

func (ws *Workspace) commentXML(st *state.Comment) string {
	raw, err := state.MarshalCommentXML(st)
	if err != nil {
		ws.logger.Warn("Could not encode comment snapshot as XML", "comment", st.ID, "error", err)
		return ""
	}
	return string(raw)
}

// loadComment builds a comment from saved state without firing anything.
func (ws *Workspace) loadComment(st *state.Comment) *Comment {
	c := ws.newComment(st.Text, st.ID)
	c.xy = geom.Coordinate{X: st.X, Y: st.Y}
	if st.Width > 0 && st.Height > 0 {
		c.size = geom.Size{Width: st.Width, Height: st.Height}
	}
	return c
}

// ID returns the comment id.
func (c *Comment) ID() string { return c.id }

// Text returns the comment text.
func (c *Comment) Text() string { return c.text }

// XY returns the comment's surface position.
func (c *Comment) XY() geom.Coordinate { return c.xy }

// Size returns the comment size.
func (c *Comment) Size() geom.Size { return c.size }

// IsDisposed reports whether the comment was removed.
func (c *Comment) IsDisposed() bool { return c.disposed }

// SetText replaces the text and fires a change event.
func (c *Comment) SetText(text string) {
	if c.text == text {
		return
	}
	c.ws.fireFor(&events.CommentChange{CommentID: c.id, OldContents: c.text, NewContents: text})
	c.text = text
}

// SetSize resizes the comment. Size changes are not undoable.
func (c *Comment) SetSize(s geom.Size) { c.size = s }

// MoveBy shifts the comment and fires a move event.
func (c *Comment) MoveBy(dx, dy float64) error {
	return c.moveBy(dx, dy)
}

// MoveTo places the comment at a surface position.
func (c *Comment) MoveTo(xy geom.Coordinate) error {
	d := xy.Sub(c.xy)
	return c.moveBy(d.X, d.Y)
}

func (c *Comment) moveBy(dx, dy float64, _ ...string) error {
	if c.disposed {
		return fmt.Errorf("comment %q is disposed", c.id)
	}
	old := c.xy
	c.xy = c.xy.Add(geom.Coordinate{X: dx, Y: dy})
	c.ws.fireFor(&events.CommentMove{CommentID: c.id, OldCoordinate: old, NewCoordinate: c.xy})
	return nil
}

// BoundingRectangle returns the surface area the comment covers.
func (c *Comment) BoundingRectangle() geom.Rect {
	if c.ws.opts.RTL {
		return geom.Rect{Left: c.xy.X - c.size.Width, Top: c.xy.Y, Right: c.xy.X, Bottom: c.xy.Y + c.size.Height}
	}
	return geom.RectFrom(c.xy, c.size)
}

// Dispose removes the comment and fires a delete event carrying its state.
func (c *Comment) Dispose() {
	if c.disposed {
		return
	}
	ws := c.ws
	if ws.session.Enabled() {
		st := c.save()
		ws.Fire(ws.newEvent(&events.CommentDelete{CommentID: c.id, XML: ws.commentXML(st), JSON: st}))
	}
	ws.removeTopComment(c)
	c.disposed = true
}

func (c *Comment) save() *state.Comment {
	return &state.Comment{
		ID:     c.id,
		Text:   c.text,
		X:      c.xy.X,
		Y:      c.xy.Y,
		Width:  c.size.Width,
		Height: c.size.Height,
	}
}
