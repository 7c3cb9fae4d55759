package workspace

import (
	"encoding/json"
	"slices"

	"github.com/specialistvlad/blockgraph/internal/events"
	"github.com/specialistvlad/blockgraph/internal/state"
)

// Trashcan keeps the most recently deleted block trees, newest first, with
// ids, positions and disabled state stripped so they can be restored as new
// copies.
type Trashcan struct {
	ws       *Workspace
	max      int
	contents []*state.Block
	keys     []string
}

func newTrashcan(ws *Workspace, max int) *Trashcan {
	t := &Trashcan{ws: ws, max: max}
	ws.AddChangeListener(t.onEvent)
	return t
}

func (t *Trashcan) onEvent(e *events.Event) {
	p, ok := e.Payload.(*events.BlockDelete)
	if !ok || p.WasShadow || p.OldJSON == nil {
		return
	}
	cleaned := cleanForTrash(p.OldJSON)
	raw, err := json.Marshal(cleaned)
	if err != nil {
		t.ws.logger.Warn("Could not keep deleted block in trashcan", "block", p.BlockID, "error", err)
		return
	}
	key := string(raw)
	if slices.Contains(t.keys, key) {
		return
	}
	t.contents = slices.Insert(t.contents, 0, cleaned)
	t.keys = slices.Insert(t.keys, 0, key)
	if len(t.contents) > t.max {
		t.contents = t.contents[:t.max]
		t.keys = t.keys[:t.max]
	}
}

func cleanForTrash(st *state.Block) *state.Block {
	out := st.Clone()
	out.Walk(func(b *state.Block, _ bool) bool {
		b.ID = ""
		b.X, b.Y = nil, nil
		b.Disabled = false
		if b.Icons != nil && b.Icons.Comment != nil {
			b.Icons.Comment.Height = 0
			b.Icons.Comment.Width = 0
			b.Icons.Comment.Pinned = false
		}
		return true
	})
	return out
}

// Contents returns copies of the kept block trees, newest first.
func (t *Trashcan) Contents() []*state.Block {
	out := make([]*state.Block, len(t.contents))
	for i, c := range t.contents {
		out[i] = c.Clone()
	}
	return out
}

// Len returns the number of kept trees.
func (t *Trashcan) Len() int { return len(t.contents) }

// Empty drops everything kept.
func (t *Trashcan) Empty() {
	t.contents = nil
	t.keys = nil
}
