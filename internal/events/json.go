package events

import (
	"encoding/json"
	"fmt"

	"github.com/specialistvlad/blockgraph/internal/geom"
)

// MarshalJSON writes the wire form: {type, group} plus the payload fields.
func (e Event) MarshalJSON() ([]byte, error) {
	if e.Payload == nil {
		return nil, fmt.Errorf("event has no payload")
	}
	o := wire{"type": string(e.Type()), "group": e.Group}

	switch p := e.Payload.(type) {
	case *BlockCreate:
		if p.JSON == nil {
			return nil, fmt.Errorf("create event for block %q has no JSON snapshot", p.BlockID)
		}
		o.set("blockId", p.BlockID)
		o.set("xml", p.XML)
		o.set("ids", p.IDs)
		o.set("json", p.JSON)
		o.recordUndo(e.RecordUndo)
	case *BlockDelete:
		if p.OldJSON == nil {
			return nil, fmt.Errorf("delete event for block %q has no JSON snapshot", p.BlockID)
		}
		o.set("blockId", p.BlockID)
		o.set("oldXml", p.OldXML)
		o.set("ids", p.IDs)
		o.set("wasShadow", p.WasShadow)
		o.set("oldJson", p.OldJSON)
		o.recordUndo(e.RecordUndo)
	case *BlockChange:
		if p.Element == "" {
			return nil, fmt.Errorf("change event for block %q has no element", p.BlockID)
		}
		o.set("blockId", p.BlockID)
		o.set("element", p.Element)
		o.setString("name", p.Name)
		o.set("oldValue", p.OldValue)
		o.set("newValue", p.NewValue)
	case *BlockMove:
		o.set("blockId", p.BlockID)
		o.setString("oldParentId", p.OldParentID)
		o.setString("oldInputName", p.OldInputName)
		o.setCoordinate("oldCoordinate", p.OldCoordinate)
		o.setString("newParentId", p.NewParentID)
		o.setString("newInputName", p.NewInputName)
		o.setCoordinate("newCoordinate", p.NewCoordinate)
		if len(p.Reason) > 0 {
			o.set("reason", p.Reason)
		}
		o.recordUndo(e.RecordUndo)
	case *BlockDrag:
		o.set("blockId", p.BlockID)
		o.set("isStart", p.IsStart)
		o.set("blocks", p.Blocks)
	case *CommentCreate:
		o.set("commentId", p.CommentID)
		o.set("xml", p.XML)
		o.set("json", p.JSON)
	case *CommentDelete:
		o.set("commentId", p.CommentID)
		o.set("xml", p.XML)
		o.set("json", p.JSON)
	case *CommentChange:
		o.set("commentId", p.CommentID)
		o.set("oldContents", p.OldContents)
		o.set("newContents", p.NewContents)
	case *CommentMove:
		o.set("commentId", p.CommentID)
		o.set("oldCoordinate", p.OldCoordinate.String())
		o.set("newCoordinate", p.NewCoordinate.String())
	case *VarCreate:
		o.set("varId", p.VarID)
		o.set("varType", p.VarType)
		o.set("varName", p.VarName)
	case *VarDelete:
		o.set("varId", p.VarID)
		o.set("varType", p.VarType)
		o.set("varName", p.VarName)
	case *VarRename:
		o.set("varId", p.VarID)
		o.set("oldName", p.OldName)
		o.set("newName", p.NewName)
	case *Selected:
		o.setString("oldElementId", p.OldElementID)
		o.setString("newElementId", p.NewElementID)
	case *Click:
		o.set("targetType", p.TargetType)
		o.setString("blockId", p.BlockID)
	case *BubbleOpen:
		o.set("isOpen", p.IsOpen)
		o.set("bubbleType", p.BubbleType)
		o.set("blockId", p.BlockID)
	case *ThemeChange:
		o.set("themeName", p.ThemeName)
	case *ViewportChange:
		o.set("viewTop", p.ViewTop)
		o.set("viewLeft", p.ViewLeft)
		o.set("scale", p.Scale)
		o.set("oldScale", p.OldScale)
	case *ToolboxItemSelect:
		o.setString("oldItem", p.OldItem)
		o.setString("newItem", p.NewItem)
	case *TrashcanOpen:
		o.set("isOpen", p.IsOpen)
	case *MarkerMove:
		o.set("isCursor", p.IsCursor)
		o.setString("blockId", p.BlockID)
		o.setString("oldNode", p.OldNode)
		o.set("newNode", p.NewNode)
	case *UI:
		o.set("element", p.Element)
		if p.NewValue != nil {
			o.set("newValue", p.NewValue)
		}
		o.setString("blockId", p.BlockID)
	case *FinishedLoading:
		o.set("workspaceId", e.WorkspaceID)
	default:
		return nil, fmt.Errorf("unknown event payload %T", p)
	}
	return json.Marshal(map[string]any(o))
}

// FromJSON rebuilds an event from its wire form. workspaceID is stamped on the
// result, matching how a receiving workspace adopts foreign events.
func FromJSON(data []byte, workspaceID string) (*Event, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding event: %w", err)
	}
	r := reader{raw: raw}
	typ := Type(r.str("type"))

	var p Payload
	switch typ {
	case TypeCreate:
		b := &BlockCreate{BlockID: r.str("blockId"), XML: r.str("xml"), IDs: r.strs("ids")}
		r.decode("json", &b.JSON)
		p = b
	case TypeDelete:
		b := &BlockDelete{BlockID: r.str("blockId"), OldXML: r.str("oldXml"), IDs: r.strs("ids"), WasShadow: r.boolean("wasShadow")}
		r.decode("oldJson", &b.OldJSON)
		p = b
	case TypeChange:
		p = &BlockChange{
			BlockID:  r.str("blockId"),
			Element:  r.str("element"),
			Name:     r.str("name"),
			OldValue: r.value("oldValue"),
			NewValue: r.value("newValue"),
		}
	case TypeMove:
		p = &BlockMove{
			BlockID:       r.str("blockId"),
			OldParentID:   r.str("oldParentId"),
			OldInputName:  r.str("oldInputName"),
			OldCoordinate: r.coordinate("oldCoordinate"),
			NewParentID:   r.str("newParentId"),
			NewInputName:  r.str("newInputName"),
			NewCoordinate: r.coordinate("newCoordinate"),
			Reason:        r.strs("reason"),
		}
	case TypeDrag:
		p = &BlockDrag{BlockID: r.str("blockId"), IsStart: r.boolean("isStart"), Blocks: r.strs("blocks")}
	case TypeCommentCreate:
		c := &CommentCreate{CommentID: r.str("commentId"), XML: r.str("xml")}
		r.decode("json", &c.JSON)
		p = c
	case TypeCommentDelete:
		c := &CommentDelete{CommentID: r.str("commentId"), XML: r.str("xml")}
		r.decode("json", &c.JSON)
		p = c
	case TypeCommentChange:
		p = &CommentChange{CommentID: r.str("commentId"), OldContents: r.str("oldContents"), NewContents: r.str("newContents")}
	case TypeCommentMove:
		m := &CommentMove{CommentID: r.str("commentId")}
		if c := r.coordinate("oldCoordinate"); c != nil {
			m.OldCoordinate = *c
		}
		if c := r.coordinate("newCoordinate"); c != nil {
			m.NewCoordinate = *c
		}
		p = m
	case TypeVarCreate:
		p = &VarCreate{VarID: r.str("varId"), VarType: r.str("varType"), VarName: r.str("varName")}
	case TypeVarDelete:
		p = &VarDelete{VarID: r.str("varId"), VarType: r.str("varType"), VarName: r.str("varName")}
	case TypeVarRename:
		p = &VarRename{VarID: r.str("varId"), OldName: r.str("oldName"), NewName: r.str("newName")}
	case TypeSelected:
		p = &Selected{OldElementID: r.str("oldElementId"), NewElementID: r.str("newElementId")}
	case TypeClick:
		p = &Click{BlockID: r.str("blockId"), TargetType: r.str("targetType")}
	case TypeBubbleOpen:
		p = &BubbleOpen{BlockID: r.str("blockId"), IsOpen: r.boolean("isOpen"), BubbleType: r.str("bubbleType")}
	case TypeThemeChange:
		p = &ThemeChange{ThemeName: r.str("themeName")}
	case TypeViewportChange:
		p = &ViewportChange{ViewTop: r.number("viewTop"), ViewLeft: r.number("viewLeft"), Scale: r.number("scale"), OldScale: r.number("oldScale")}
	case TypeToolboxItemSelect:
		p = &ToolboxItemSelect{OldItem: r.str("oldItem"), NewItem: r.str("newItem")}
	case TypeTrashcanOpen:
		p = &TrashcanOpen{IsOpen: r.boolean("isOpen")}
	case TypeMarkerMove:
		p = &MarkerMove{BlockID: r.str("blockId"), IsCursor: r.boolean("isCursor"), OldNode: r.str("oldNode"), NewNode: r.str("newNode")}
	case TypeUI:
		p = &UI{BlockID: r.str("blockId"), Element: r.str("element"), NewValue: r.value("newValue")}
	case TypeFinishedLoading:
		p = &FinishedLoading{}
	default:
		return nil, fmt.Errorf("unknown event type %q", typ)
	}
	if r.err != nil {
		return nil, fmt.Errorf("decoding %s event: %w", typ, r.err)
	}

	e := New(p)
	e.WorkspaceID = workspaceID
	e.Group = r.str("group")
	if _, ok := raw["recordUndo"]; ok {
		e.RecordUndo = r.boolean("recordUndo")
	}
	return e, r.err
}

type wire map[string]any

func (o wire) set(k string, v any) { o[k] = v }

// setString skips empty strings, which the wire format leaves out.
func (o wire) setString(k, v string) {
	if v != "" {
		o[k] = v
	}
}

func (o wire) setCoordinate(k string, c *geom.Coordinate) {
	if c != nil {
		o[k] = c.String()
	}
}

// recordUndo is only written when it departs from the default.
func (o wire) recordUndo(v bool) {
	if !v {
		o["recordUndo"] = false
	}
}

// reader pulls typed values out of a decoded wire object and remembers the
// first failure.
type reader struct {
	raw map[string]json.RawMessage
	err error
}

func (r *reader) decode(k string, dst any) {
	v, ok := r.raw[k]
	if !ok || r.err != nil {
		return
	}
	if err := json.Unmarshal(v, dst); err != nil {
		r.err = fmt.Errorf("field %q: %w", k, err)
	}
}

func (r *reader) str(k string) string {
	var s string
	r.decode(k, &s)
	return s
}

func (r *reader) strs(k string) []string {
	var s []string
	r.decode(k, &s)
	return s
}

func (r *reader) boolean(k string) bool {
	var b bool
	r.decode(k, &b)
	return b
}

func (r *reader) number(k string) float64 {
	var f float64
	r.decode(k, &f)
	return f
}

func (r *reader) value(k string) any {
	var v any
	r.decode(k, &v)
	return v
}

func (r *reader) coordinate(k string) *geom.Coordinate {
	s := r.str(k)
	if s == "" || r.err != nil {
		return nil
	}
	c, err := geom.ParseCoordinate(s)
	if err != nil {
		r.err = fmt.Errorf("field %q: %w", k, err)
		return nil
	}
	return &c
}
