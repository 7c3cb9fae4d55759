package events

import (
	"reflect"

	"github.com/specialistvlad/blockgraph/internal/geom"
	"github.com/specialistvlad/blockgraph/internal/state"
)

// Type is the wire tag of an event.
type Type string

const (
	TypeCreate            Type = "create"
	TypeDelete            Type = "delete"
	TypeChange            Type = "change"
	TypeMove              Type = "move"
	TypeDrag              Type = "drag"
	TypeCommentCreate     Type = "comment_create"
	TypeCommentDelete     Type = "comment_delete"
	TypeCommentChange     Type = "comment_change"
	TypeCommentMove       Type = "comment_move"
	TypeVarCreate         Type = "var_create"
	TypeVarDelete         Type = "var_delete"
	TypeVarRename         Type = "var_rename"
	TypeSelected          Type = "selected"
	TypeClick             Type = "click"
	TypeBubbleOpen        Type = "bubble_open"
	TypeThemeChange       Type = "theme_change"
	TypeViewportChange    Type = "viewport_change"
	TypeToolboxItemSelect Type = "toolbox_item_select"
	TypeTrashcanOpen      Type = "trashcan_open"
	TypeMarkerMove        Type = "marker_move"
	TypeUI                Type = "ui"
	TypeFinishedLoading   Type = "finished_loading"
)

// Elements of a BlockChange.
const (
	ElementField     = "field"
	ElementComment   = "comment"
	ElementCollapsed = "collapsed"
	ElementDisabled  = "disabled"
	ElementInline    = "inline"
	ElementMutation  = "mutation"
)

// Event is one workspace mutation or UI notification. The shared fields live
// here; everything type-specific is in Payload, and consumers dispatch on
// Payload's concrete type.
type Event struct {
	WorkspaceID string
	Group       string
	RecordUndo  bool
	Payload     Payload
}

// Payload is the sealed set of event bodies.
type Payload interface {
	Type() Type
	isPayload()
}

// New wraps a payload. UI payloads and load notifications never record undo.
func New(p Payload) *Event {
	t := p.Type()
	return &Event{Payload: p, RecordUndo: !isUIType(t) && t != TypeFinishedLoading}
}

// Type returns the tag of the payload.
func (e *Event) Type() Type { return e.Payload.Type() }

// IsUI reports whether the event only reflects UI state.
func (e *Event) IsUI() bool { return isUIType(e.Type()) }

// BlockID returns the block the event is about, if any.
func (e *Event) BlockID() string {
	switch p := e.Payload.(type) {
	case *BlockCreate:
		return p.BlockID
	case *BlockDelete:
		return p.BlockID
	case *BlockChange:
		return p.BlockID
	case *BlockMove:
		return p.BlockID
	case *BlockDrag:
		return p.BlockID
	case *Click:
		return p.BlockID
	case *BubbleOpen:
		return p.BlockID
	case *MarkerMove:
		return p.BlockID
	case *UI:
		return p.BlockID
	}
	return ""
}

// IsNull reports whether the event records no change at all. Null events are
// neither fired nor kept in undo history.
func (e *Event) IsNull() bool {
	switch p := e.Payload.(type) {
	case *BlockChange:
		return ValuesEqual(p.OldValue, p.NewValue)
	case *BlockMove:
		return p.OldParentID == p.NewParentID &&
			p.OldInputName == p.NewInputName &&
			geom.EqualPtr(p.OldCoordinate, p.NewCoordinate)
	case *CommentChange:
		return p.OldContents == p.NewContents
	case *CommentMove:
		return p.OldCoordinate.Equal(p.NewCoordinate)
	}
	return false
}

// Clone copies the event and its payload. Snapshots inside the payload are
// shared; they are never mutated after construction.
func (e *Event) Clone() *Event {
	out := *e
	v := reflect.ValueOf(e.Payload).Elem()
	cp := reflect.New(v.Type())
	cp.Elem().Set(v)
	out.Payload = cp.Interface().(Payload)
	return &out
}

// ValuesEqual compares two payload values, tolerating maps and slices.
func ValuesEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

func isUIType(t Type) bool {
	switch t {
	case TypeSelected, TypeClick, TypeBubbleOpen, TypeThemeChange, TypeViewportChange,
		TypeToolboxItemSelect, TypeTrashcanOpen, TypeMarkerMove, TypeUI, TypeDrag:
		return true
	}
	return false
}

// BlockCreate carries both serialized forms of the new subtree.
type BlockCreate struct {
	BlockID string
	XML     string
	JSON    *state.Block
	IDs     []string
}

// BlockDelete carries the subtree as it was just before disposal.
type BlockDelete struct {
	BlockID   string
	OldXML    string
	OldJSON   *state.Block
	IDs       []string
	WasShadow bool
}

// BlockChange records one property change on a block.
type BlockChange struct {
	BlockID  string
	Element  string
	Name     string
	OldValue any
	NewValue any
}

// BlockMove records a change of parent, input or surface position.
type BlockMove struct {
	BlockID       string
	OldParentID   string
	OldInputName  string
	OldCoordinate *geom.Coordinate
	NewParentID   string
	NewInputName  string
	NewCoordinate *geom.Coordinate
	// Reason tags why the block moved, e.g. "bump" or "cleanup".
	Reason []string
}

// BlockDrag marks the start or end of a drag gesture.
type BlockDrag struct {
	BlockID string
	IsStart bool
	Blocks  []string
}

// CommentCreate carries both serialized forms of a new workspace comment.
type CommentCreate struct {
	CommentID string
	XML       string
	JSON      *state.Comment
}

// CommentDelete carries the comment as it was before disposal.
type CommentDelete struct {
	CommentID string
	XML       string
	JSON      *state.Comment
}

type CommentChange struct {
	CommentID   string
	OldContents string
	NewContents string
}

type CommentMove struct {
	CommentID     string
	OldCoordinate geom.Coordinate
	NewCoordinate geom.Coordinate
}

type VarCreate struct {
	VarID   string
	VarType string
	VarName string
}

type VarDelete struct {
	VarID   string
	VarType string
	VarName string
}

type VarRename struct {
	VarID   string
	OldName string
	NewName string
}

type Selected struct {
	OldElementID string
	NewElementID string
}

type Click struct {
	BlockID    string
	TargetType string
}

type BubbleOpen struct {
	BlockID    string
	IsOpen     bool
	BubbleType string
}

type ThemeChange struct {
	ThemeName string
}

type ViewportChange struct {
	ViewTop  float64
	ViewLeft float64
	Scale    float64
	OldScale float64
}

type ToolboxItemSelect struct {
	OldItem string
	NewItem string
}

type TrashcanOpen struct {
	IsOpen bool
}

type MarkerMove struct {
	BlockID  string
	IsCursor bool
	OldNode  string
	NewNode  string
}

// UI is the generic UI notification: an element name and its new value.
type UI struct {
	BlockID  string
	Element  string
	NewValue any
}

// FinishedLoading is fired once a workspace load completes.
type FinishedLoading struct{}

func (*BlockCreate) Type() Type       { return TypeCreate }
func (*BlockDelete) Type() Type       { return TypeDelete }
func (*BlockChange) Type() Type       { return TypeChange }
func (*BlockMove) Type() Type         { return TypeMove }
func (*BlockDrag) Type() Type         { return TypeDrag }
func (*CommentCreate) Type() Type     { return TypeCommentCreate }
func (*CommentDelete) Type() Type     { return TypeCommentDelete }
func (*CommentChange) Type() Type     { return TypeCommentChange }
func (*CommentMove) Type() Type       { return TypeCommentMove }
func (*VarCreate) Type() Type         { return TypeVarCreate }
func (*VarDelete) Type() Type         { return TypeVarDelete }
func (*VarRename) Type() Type         { return TypeVarRename }
func (*Selected) Type() Type          { return TypeSelected }
func (*Click) Type() Type             { return TypeClick }
func (*BubbleOpen) Type() Type        { return TypeBubbleOpen }
func (*ThemeChange) Type() Type       { return TypeThemeChange }
func (*ViewportChange) Type() Type    { return TypeViewportChange }
func (*ToolboxItemSelect) Type() Type { return TypeToolboxItemSelect }
func (*TrashcanOpen) Type() Type      { return TypeTrashcanOpen }
func (*MarkerMove) Type() Type        { return TypeMarkerMove }
func (*UI) Type() Type                { return TypeUI }
func (*FinishedLoading) Type() Type   { return TypeFinishedLoading }

func (*BlockCreate) isPayload()       {}
func (*BlockDelete) isPayload()       {}
func (*BlockChange) isPayload()       {}
func (*BlockMove) isPayload()         {}
func (*BlockDrag) isPayload()         {}
func (*CommentCreate) isPayload()     {}
func (*CommentDelete) isPayload()     {}
func (*CommentChange) isPayload()     {}
func (*CommentMove) isPayload()       {}
func (*VarCreate) isPayload()         {}
func (*VarDelete) isPayload()         {}
func (*VarRename) isPayload()         {}
func (*Selected) isPayload()          {}
func (*Click) isPayload()             {}
func (*BubbleOpen) isPayload()        {}
func (*ThemeChange) isPayload()       {}
func (*ViewportChange) isPayload()    {}
func (*ToolboxItemSelect) isPayload() {}
func (*TrashcanOpen) isPayload()      {}
func (*MarkerMove) isPayload()        {}
func (*UI) isPayload()                {}
func (*FinishedLoading) isPayload()   {}
