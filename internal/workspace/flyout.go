package workspace

import (
	"context"
	"fmt"

	"github.com/specialistvlad/blockgraph/internal/events"
	"github.com/specialistvlad/blockgraph/internal/geom"
	"github.com/specialistvlad/blockgraph/internal/state"
)

// Flyout is the palette next to a workspace. Its blocks are templates: they
// cannot be edited in place and are copied into the target workspace.
type Flyout struct {
	ws     *Workspace
	target *Workspace

	// permanentlyDisabled holds blocks shown disabled by their definition;
	// capacity filtering never enables them.
	permanentlyDisabled map[*Block]bool
	removeListener      func()
}

// NewFlyout creates a flyout for target. The flyout shares the target's
// event session and variables; variables only its blocks refer to live in a
// separate potential map.
func NewFlyout(ctx context.Context, target *Workspace) *Flyout {
	opts := target.opts
	opts.ID = ""
	opts.ReadOnly = false
	opts.MaxBlocks = 0
	opts.MaxInstances = nil
	opts.MaxTrashcanContents = 0
	opts.Session = target.session
	ws := New(ctx, target.types, opts)
	ws.isFlyout = true
	ws.target = target
	ws.variables = target.variables
	ws.potentialVariables = newVariableMap(ws)
	ws.potentialVariables.potential = true

	f := &Flyout{ws: ws, target: target, permanentlyDisabled: make(map[*Block]bool)}
	f.removeListener = target.AddChangeListener(func(e *events.Event) {
		switch e.Type() {
		case events.TypeCreate, events.TypeDelete, events.TypeFinishedLoading:
			f.FilterForCapacity()
		}
	})
	return f
}

// Workspace returns the flyout's own workspace.
func (f *Flyout) Workspace() *Workspace { return f.ws }

// Target returns the workspace blocks are copied into.
func (f *Flyout) Target() *Workspace { return f.target }

// Show replaces the flyout contents with the given block states, laid out in
// a column.
func (f *Flyout) Show(contents []*state.Block) error {
	restore := f.ws.session.Disable()
	defer restore()
	f.ws.Clear()
	clear(f.permanentlyDisabled)

	cursorY := 0.0
	for _, st := range contents {
		st = st.Clone()
		st.X, st.Y = nil, nil
		b, err := AppendBlock(f.ws, st, AppendOptions{})
		if err != nil {
			return fmt.Errorf("showing flyout block %q: %w", st.Type, err)
		}
		b.placeAt(geom.Coordinate{X: 0, Y: cursorY})
		cursorY += b.HeightWidth().Height + f.ws.opts.CleanUpGap
		if !b.IsEnabled() {
			f.permanentlyDisabled[b] = true
		}
	}
	f.filterForCapacity()
	return nil
}

// FilterForCapacity disables flyout blocks that would no longer fit into the
// target and re-enables those that would.
func (f *Flyout) FilterForCapacity() {
	restore := f.ws.session.Disable()
	defer restore()
	f.filterForCapacity()
}

func (f *Flyout) filterForCapacity() {
	for _, top := range f.ws.TopBlocks(false) {
		if f.permanentlyDisabled[top] {
			continue
		}
		enable := f.target.IsCapacityAvailable(BlockTypeCounts(top, false))
		for b := top; b != nil; b = b.NextBlock() {
			b.SetEnabled(enable)
		}
	}
}

// IsBlockCreatable reports whether a flyout block may be copied out.
func (f *Flyout) IsBlockCreatable(b *Block) bool {
	return b.IsEnabled() && !f.target.opts.ReadOnly
}

// CreateBlock copies a flyout block and the blocks below it into the target.
// Variables the copy brings along are created in the target first; their
// create events precede the block's, all in one group.
func (f *Flyout) CreateBlock(orig *Block) (*Block, error) {
	if orig.ws != f.ws {
		return nil, fmt.Errorf("block %s is not in this flyout", orig)
	}
	if f.target.opts.ReadOnly {
		return nil, ErrReadOnly
	}
	if !f.target.IsCapacityAvailable(BlockTypeCounts(orig, false)) {
		return nil, ErrCapacity
	}
	if !f.IsBlockCreatable(orig) {
		return nil, fmt.Errorf("flyout block %s is disabled", orig)
	}

	target := f.target
	before := make(map[string]bool)
	for _, v := range target.variables.All() {
		before[v.ID] = true
	}
	st := SaveBlock(orig, SaveOptions{AddCoordinates: true, AddInputBlocks: true, AddNextBlocks: true})

	b, err := f.appendToTarget(st)
	if err != nil {
		return nil, err
	}
	if target.session.Enabled() {
		f.fireCreated(b, before)
	}
	f.FilterForCapacity()
	return b, nil
}

// Dispose detaches the flyout from its target and clears it.
func (f *Flyout) Dispose() {
	if f.removeListener != nil {
		f.removeListener()
		f.removeListener = nil
	}
	restore := f.ws.session.Disable()
	defer restore()
	f.ws.Clear()
}

// appendToTarget builds st in the target workspace without firing events.
func (f *Flyout) appendToTarget(st *state.Block) (*Block, error) {
	restore := f.target.session.Disable()
	defer restore()
	return AppendBlock(f.target, st, AppendOptions{})
}

// fireCreated announces a copied block and the variables it brought along,
// in one group.
func (f *Flyout) fireCreated(b *Block, before map[string]bool) {
	end := f.target.session.BeginGroup()
	defer end()
	for _, v := range f.target.variables.All() {
		if !before[v.ID] {
			f.target.fireFor(&events.VarCreate{VarID: v.ID, VarType: v.Type, VarName: v.Name})
		}
	}
	f.target.fireCreate(b)
}
