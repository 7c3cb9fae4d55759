// Package state defines the serialized forms of a workspace: the structured
// JSON block tree and the legacy XML document. The types here are plain data;
// building live blocks from them is the workspace package's job.
package state

import (
	"encoding/json"

	"github.com/specialistvlad/blockgraph/internal/geom"
)

// LanguageVersion is written into every saved workspace.
const LanguageVersion = 0

// Block is the JSON form of one block and, through Inputs and Next, of the
// subtree below it.
type Block struct {
	Type       string                 `json:"type"`
	ID         string                 `json:"id,omitempty"`
	X          *float64               `json:"x,omitempty"`
	Y          *float64               `json:"y,omitempty"`
	Collapsed  bool                   `json:"collapsed,omitempty"`
	Disabled   bool                   `json:"disabled,omitempty"`
	Editable   *bool                  `json:"editable,omitempty"`
	Deletable  *bool                  `json:"deletable,omitempty"`
	Movable    *bool                  `json:"movable,omitempty"`
	Inline     *bool                  `json:"inline,omitempty"`
	Data       string                 `json:"data,omitempty"`
	ExtraState any                    `json:"extraState,omitempty"`
	Icons      *Icons                 `json:"icons,omitempty"`
	Fields     map[string]any         `json:"fields,omitempty"`
	Inputs     map[string]*Connection `json:"inputs,omitempty"`
	Next       *Connection            `json:"next,omitempty"`
}

// Connection holds whatever is plugged into an input or next connection: a
// real block, the shadow template, or both.
type Connection struct {
	Block  *Block `json:"block,omitempty"`
	Shadow *Block `json:"shadow,omitempty"`

	// Statement marks statement inputs. JSON does not carry it (the block
	// definition does); the XML codec needs it to pick <statement> over <value>.
	Statement bool `json:"-"`
}

// Icons groups the per-block icon states.
type Icons struct {
	Comment *CommentIcon `json:"comment,omitempty"`
}

// CommentIcon is the state of a block's comment bubble.
type CommentIcon struct {
	Text   string  `json:"text"`
	Pinned bool    `json:"pinned,omitempty"`
	Height float64 `json:"height,omitempty"`
	Width  float64 `json:"width,omitempty"`
}

// Coordinate returns the saved surface position, if the block has one.
func (b *Block) Coordinate() (geom.Coordinate, bool) {
	if b.X == nil || b.Y == nil {
		return geom.Coordinate{}, false
	}
	return geom.Coordinate{X: *b.X, Y: *b.Y}, true
}

// SetCoordinate records a surface position on the block.
func (b *Block) SetCoordinate(c geom.Coordinate) {
	b.X = Float(c.X)
	b.Y = Float(c.Y)
}

// IDs lists the IDs of b and every block below it, real and shadow, in
// depth-first order.
func (b *Block) IDs() []string {
	var ids []string
	b.Walk(func(blk *Block, _ bool) bool {
		if blk.ID != "" {
			ids = append(ids, blk.ID)
		}
		return true
	})
	return ids
}

// Walk visits b and its subtree depth-first. The shadow flag is true for
// blocks reached through a Shadow slot. Returning false prunes the subtree.
func (b *Block) Walk(fn func(blk *Block, shadow bool) bool) {
	b.walk(fn, false)
}

func (b *Block) walk(fn func(*Block, bool) bool, shadow bool) {
	if !fn(b, shadow) {
		return
	}
	visit := func(c *Connection) {
		if c == nil {
			return
		}
		if c.Shadow != nil {
			c.Shadow.walk(fn, true)
		}
		if c.Block != nil {
			c.Block.walk(fn, shadow)
		}
	}
	for _, name := range sortedKeys(b.Inputs) {
		visit(b.Inputs[name])
	}
	visit(b.Next)
}

// Clone returns a deep copy. Snapshots stored in events are cloned so later
// edits of the source state never leak into undo history.
func (b *Block) Clone() *Block {
	if b == nil {
		return nil
	}
	out := *b
	out.X = clonePtr(b.X)
	out.Y = clonePtr(b.Y)
	out.Editable = clonePtr(b.Editable)
	out.Deletable = clonePtr(b.Deletable)
	out.Movable = clonePtr(b.Movable)
	out.Inline = clonePtr(b.Inline)
	out.ExtraState = cloneValue(b.ExtraState)
	if b.Icons != nil && b.Icons.Comment != nil {
		c := *b.Icons.Comment
		out.Icons = &Icons{Comment: &c}
	}
	if b.Fields != nil {
		out.Fields = make(map[string]any, len(b.Fields))
		for k, v := range b.Fields {
			out.Fields[k] = cloneValue(v)
		}
	}
	if b.Inputs != nil {
		out.Inputs = make(map[string]*Connection, len(b.Inputs))
		for k, c := range b.Inputs {
			out.Inputs[k] = c.Clone()
		}
	}
	out.Next = b.Next.Clone()
	return &out
}

// Clone returns a deep copy of the connection state.
func (c *Connection) Clone() *Connection {
	if c == nil {
		return nil
	}
	return &Connection{Block: c.Block.Clone(), Shadow: c.Shadow.Clone(), Statement: c.Statement}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// cloneValue deep-copies JSON-shaped values.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case json.RawMessage:
		return append(json.RawMessage(nil), t...)
	default:
		return v
	}
}

// Bool returns a pointer to v, for the optional flags.
func Bool(v bool) *bool { return &v }

// Float returns a pointer to v, for the optional coordinates.
func Float(v float64) *float64 { return &v }

// IsTrue reports whether an optional flag is set and true.
func IsTrue(p *bool) bool { return p != nil && *p }

// IsFalse reports whether an optional flag is set and false.
func IsFalse(p *bool) bool { return p != nil && !*p }
