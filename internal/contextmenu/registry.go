// Package contextmenu holds the items offered when the user opens a context
// menu on the workspace or on a block.
//
// Items are registered once on a Registry owned by the application root.
// Opening a menu asks the registry for the options of one scope: every item
// of the scope's type is consulted, hidden ones are dropped and the rest are
// ordered by weight.
package contextmenu

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"github.com/specialistvlad/blockgraph/internal/workspace"
)

// ScopeType says what a menu was opened on.
type ScopeType int

const (
	ScopeWorkspace ScopeType = iota
	ScopeBlock
)

func (t ScopeType) String() string {
	switch t {
	case ScopeWorkspace:
		return "workspace"
	case ScopeBlock:
		return "block"
	}
	return fmt.Sprintf("ScopeType(%d)", int(t))
}

// Scope is the thing a menu was opened on. Block is nil for workspace menus.
type Scope struct {
	Workspace *workspace.Workspace
	Block     *workspace.Block
}

// BlockScope returns the scope of a block menu.
func BlockScope(b *workspace.Block) Scope {
	return Scope{Workspace: b.Workspace(), Block: b}
}

// Precondition is the state of an item for one scope.
type Precondition int

const (
	Enabled Precondition = iota
	Disabled
	Hidden
)

func (p Precondition) String() string {
	switch p {
	case Enabled:
		return "enabled"
	case Disabled:
		return "disabled"
	case Hidden:
		return "hidden"
	}
	return fmt.Sprintf("Precondition(%d)", int(p))
}

// Item is one registered menu entry.
type Item struct {
	ID        string
	ScopeType ScopeType
	// Weight orders the options of a menu, lowest first.
	Weight       int
	DisplayText  func(Scope) string
	Precondition func(Scope) Precondition
	Callback     func(Scope) error
}

// Option is an item resolved for one scope.
type Option struct {
	ID      string
	Text    string
	Enabled bool
	Weight  int

	item  *Item
	scope Scope
}

// Run invokes the item's callback. Running a disabled option is an error.
func (o Option) Run() error {
	if !o.Enabled {
		return fmt.Errorf("context menu item %q is disabled", o.ID)
	}
	if err := o.item.Callback(o.scope); err != nil {
		return fmt.Errorf("context menu item %q: %w", o.ID, err)
	}
	return nil
}

// Registry holds the menu items of one application instance.
type Registry struct {
	items map[string]*Item
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{items: make(map[string]*Item)}
}

// Register adds an item. It panics on a duplicate id or an item missing one
// of its functions.
func (r *Registry) Register(item *Item) {
	if _, exists := r.items[item.ID]; exists {
		panic(fmt.Sprintf("context menu item with id '%s' already registered", item.ID))
	}
	if item.DisplayText == nil || item.Precondition == nil || item.Callback == nil {
		panic(fmt.Sprintf("context menu item '%s' is incomplete", item.ID))
	}
	slog.Debug("Registering context menu item.", "id", item.ID, "scope", item.ScopeType)
	r.items[item.ID] = item
}

// Unregister removes an item. Unknown ids are an error.
func (r *Registry) Unregister(id string) error {
	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("context menu item %q not found", id)
	}
	delete(r.items, id)
	return nil
}

// Item returns the item with the given id, or nil.
func (r *Registry) Item(id string) *Item { return r.items[id] }

// Options resolves the items of scopeType for scope. Hidden items are left
// out; the rest are ordered by weight, then id.
func (r *Registry) Options(scopeType ScopeType, scope Scope) []Option {
	var out []Option
	for _, item := range r.items {
		if item.ScopeType != scopeType {
			continue
		}
		pre := item.Precondition(scope)
		if pre == Hidden {
			continue
		}
		out = append(out, Option{
			ID:      item.ID,
			Text:    item.DisplayText(scope),
			Enabled: pre == Enabled,
			Weight:  item.Weight,
			item:    item,
			scope:   scope,
		})
	}
	slices.SortFunc(out, func(a, b Option) int {
		return cmp.Or(cmp.Compare(a.Weight, b.Weight), cmp.Compare(a.ID, b.ID))
	})
	return out
}
