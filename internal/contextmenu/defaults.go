package contextmenu

import (
	"fmt"

	"github.com/specialistvlad/blockgraph/internal/geom"
	"github.com/specialistvlad/blockgraph/internal/workspace"
)

// Ids of the built-in items.
const (
	IDUndo           = "undoWorkspace"
	IDRedo           = "redoWorkspace"
	IDCleanUp        = "cleanWorkspace"
	IDCollapseAll    = "collapseWorkspace"
	IDExpandAll      = "expandWorkspace"
	IDDeleteAll      = "workspaceDelete"
	IDDuplicate      = "blockDuplicate"
	IDComment        = "blockComment"
	IDInline         = "blockInline"
	IDCollapseExpand = "blockCollapseExpand"
	IDDisable        = "blockDisable"
	IDDelete         = "blockDelete"
)

// RegisterDefaults adds the built-in workspace and block items.
func RegisterDefaults(r *Registry) {
	registerWorkspaceItems(r)
	registerBlockItems(r)
}

func fixed(text string) func(Scope) string {
	return func(Scope) string { return text }
}

func enabledIf(ok bool) Precondition {
	if ok {
		return Enabled
	}
	return Disabled
}

func pluralBlocks(n int) string {
	if n == 1 {
		return "Delete Block"
	}
	return fmt.Sprintf("Delete %d Blocks", n)
}

func registerWorkspaceItems(r *Registry) {
	r.Register(&Item{
		ID: IDUndo, ScopeType: ScopeWorkspace, Weight: 1,
		DisplayText:  fixed("Undo"),
		Precondition: func(s Scope) Precondition { return enabledIf(s.Workspace.CanUndo()) },
		Callback: func(s Scope) error {
			s.Workspace.Undo(false)
			return nil
		},
	})
	r.Register(&Item{
		ID: IDRedo, ScopeType: ScopeWorkspace, Weight: 2,
		DisplayText:  fixed("Redo"),
		Precondition: func(s Scope) Precondition { return enabledIf(s.Workspace.CanRedo()) },
		Callback: func(s Scope) error {
			s.Workspace.Undo(true)
			return nil
		},
	})
	r.Register(&Item{
		ID: IDCleanUp, ScopeType: ScopeWorkspace, Weight: 3,
		DisplayText: fixed("Clean up Blocks"),
		Precondition: func(s Scope) Precondition {
			if s.Workspace.IsReadOnly() {
				return Hidden
			}
			return enabledIf(len(s.Workspace.TopBlocks(false)) > 1)
		},
		Callback: func(s Scope) error {
			s.Workspace.CleanUp()
			return nil
		},
	})
	r.Register(&Item{
		ID: IDCollapseAll, ScopeType: ScopeWorkspace, Weight: 4,
		DisplayText: fixed("Collapse Blocks"),
		Precondition: func(s Scope) Precondition {
			if s.Workspace.IsReadOnly() || s.Workspace.Options().NoCollapse {
				return Hidden
			}
			return enabledIf(anyStackBlock(s.Workspace, func(b *workspace.Block) bool { return !b.IsCollapsed() }))
		},
		Callback: func(s Scope) error {
			s.Workspace.SetCollapsedAll(true)
			return nil
		},
	})
	r.Register(&Item{
		ID: IDExpandAll, ScopeType: ScopeWorkspace, Weight: 5,
		DisplayText: fixed("Expand Blocks"),
		Precondition: func(s Scope) Precondition {
			if s.Workspace.IsReadOnly() || s.Workspace.Options().NoCollapse {
				return Hidden
			}
			return enabledIf(anyStackBlock(s.Workspace, (*workspace.Block).IsCollapsed))
		},
		Callback: func(s Scope) error {
			s.Workspace.SetCollapsedAll(false)
			return nil
		},
	})
	r.Register(&Item{
		ID: IDDeleteAll, ScopeType: ScopeWorkspace, Weight: 6,
		DisplayText: func(s Scope) string { return pluralBlocks(s.Workspace.DeleteAllCount()) },
		Precondition: func(s Scope) Precondition {
			if s.Workspace.IsReadOnly() {
				return Hidden
			}
			return enabledIf(s.Workspace.DeleteAllCount() > 0)
		},
		Callback: func(s Scope) error {
			s.Workspace.DeleteAll()
			return nil
		},
	})
}

// anyStackBlock reports whether a block along a top-level stack matches.
func anyStackBlock(ws *workspace.Workspace, match func(*workspace.Block) bool) bool {
	for _, top := range ws.TopBlocks(false) {
		for b := top; b != nil; b = b.NextBlock() {
			if match(b) {
				return true
			}
		}
	}
	return false
}

// userEditable reports whether block items apply at all.
func userEditable(b *workspace.Block) bool {
	ws := b.Workspace()
	return !ws.IsFlyout() && !ws.IsReadOnly() && !b.IsDeadOrDying()
}

func registerBlockItems(r *Registry) {
	r.Register(&Item{
		ID: IDDuplicate, ScopeType: ScopeBlock, Weight: 1,
		DisplayText: fixed("Duplicate"),
		Precondition: func(s Scope) Precondition {
			b := s.Block
			if !userEditable(b) || b.IsShadow() {
				return Hidden
			}
			ok := b.IsDeletable() && s.Workspace.IsCapacityAvailable(workspace.BlockTypeCounts(b, true))
			return enabledIf(ok)
		},
		Callback: duplicate,
	})
	r.Register(&Item{
		ID: IDComment, ScopeType: ScopeBlock, Weight: 2,
		DisplayText: func(s Scope) string {
			if _, ok := s.Block.CommentText(); ok {
				return "Remove Comment"
			}
			return "Add Comment"
		},
		Precondition: func(s Scope) Precondition {
			b := s.Block
			if !userEditable(b) || b.IsCollapsed() || !b.IsEditable() {
				return Hidden
			}
			return Enabled
		},
		Callback: func(s Scope) error {
			if _, ok := s.Block.CommentText(); ok {
				s.Block.RemoveComment()
			} else {
				s.Block.SetCommentText("")
			}
			return nil
		},
	})
	r.Register(&Item{
		ID: IDInline, ScopeType: ScopeBlock, Weight: 3,
		DisplayText: func(s Scope) string {
			if s.Block.InputsInline() {
				return "External Inputs"
			}
			return "Inline Inputs"
		},
		Precondition: func(s Scope) Precondition {
			b := s.Block
			if !userEditable(b) || b.IsCollapsed() || !hasAdjacentValueInputs(b) {
				return Hidden
			}
			return Enabled
		},
		Callback: func(s Scope) error {
			s.Block.SetInputsInline(!s.Block.InputsInline())
			return nil
		},
	})
	r.Register(&Item{
		ID: IDCollapseExpand, ScopeType: ScopeBlock, Weight: 4,
		DisplayText: func(s Scope) string {
			if s.Block.IsCollapsed() {
				return "Expand Block"
			}
			return "Collapse Block"
		},
		Precondition: func(s Scope) Precondition {
			if !userEditable(s.Block) || s.Block.IsShadow() || s.Workspace.Options().NoCollapse {
				return Hidden
			}
			return Enabled
		},
		Callback: func(s Scope) error {
			s.Block.SetCollapsed(!s.Block.IsCollapsed())
			return nil
		},
	})
	r.Register(&Item{
		ID: IDDisable, ScopeType: ScopeBlock, Weight: 5,
		DisplayText: func(s Scope) string {
			if s.Block.IsEnabled() {
				return "Disable Block"
			}
			return "Enable Block"
		},
		Precondition: func(s Scope) Precondition {
			b := s.Block
			if !userEditable(b) || b.IsShadow() || s.Workspace.Options().NoDisable {
				return Hidden
			}
			return enabledIf(b.IsEditable())
		},
		Callback: func(s Scope) error {
			s.Block.SetEnabled(!s.Block.IsEnabled())
			return nil
		},
	})
	r.Register(&Item{
		ID: IDDelete, ScopeType: ScopeBlock, Weight: 6,
		DisplayText: func(s Scope) string { return pluralBlocks(deleteCount(s.Block)) },
		Precondition: func(s Scope) Precondition {
			if !userEditable(s.Block) || !s.Block.IsDeletable() {
				return Hidden
			}
			return Enabled
		},
		Callback: func(s Scope) error {
			s.Block.Dispose(true)
			return nil
		},
	})
}

// hasAdjacentValueInputs reports whether two neighbouring inputs could share
// a row, which is when the inline toggle changes anything.
func hasAdjacentValueInputs(b *workspace.Block) bool {
	inputs := b.Inputs()
	for i := 1; i < len(inputs); i++ {
		prev, cur := inputs[i-1].Kind(), inputs[i].Kind()
		if prev == workspace.StatementInput || cur == workspace.StatementInput {
			continue
		}
		if prev == workspace.ValueInput || cur == workspace.ValueInput {
			return true
		}
	}
	return false
}

// deleteCount is the number of real blocks a healing delete of b removes:
// the block and everything below it except the blocks that follow it.
func deleteCount(b *workspace.Block) int {
	n := 0
	skip := make(map[*workspace.Block]bool)
	if next := b.NextBlock(); next != nil {
		for _, d := range next.Descendants(false) {
			skip[d] = true
		}
	}
	for _, d := range b.Descendants(false) {
		if !skip[d] && !d.IsShadow() {
			n++
		}
	}
	return n
}

// duplicate copies b and everything plugged into it, without the blocks that
// follow it, next to the original.
func duplicate(s Scope) error {
	b := s.Block
	st := workspace.SaveBlock(b, workspace.SaveOptions{AddCoordinates: true, AddInputBlocks: true})
	if st == nil {
		return fmt.Errorf("block %s cannot be copied", b)
	}
	opts := s.Workspace.Options()
	dx := opts.SnapRadius
	if opts.RTL {
		dx = -dx
	}
	xy, _ := st.Coordinate()
	st.SetCoordinate(xy.Add(geom.Coordinate{X: dx, Y: opts.SnapRadius}))
	if _, err := workspace.AppendBlock(s.Workspace, st, workspace.AppendOptions{RecordUndo: true}); err != nil {
		return fmt.Errorf("duplicating %s: %w", b, err)
	}
	return nil
}
