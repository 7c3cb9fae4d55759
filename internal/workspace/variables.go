package workspace

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/specialistvlad/blockgraph/internal/events"
)

// ErrVariableNotFound is returned for operations on an unknown variable id.
var ErrVariableNotFound = errors.New("variable not found")

// Variable is a named, typed variable model. Blocks refer to it by ID.
type Variable struct {
	ID   string
	Name string
	Type string
}

// VariableMap holds variables grouped by type. Names are unique per type,
// compared case-insensitively.
type VariableMap struct {
	ws        *Workspace
	byType    map[string][]*Variable
	potential bool
}

func newVariableMap(ws *Workspace) *VariableMap {
	return &VariableMap{ws: ws, byType: make(map[string][]*Variable)}
}

// Variable returns the variable with the name and type, or nil.
func (m *VariableMap) Variable(name, typ string) *Variable {
	for _, v := range m.byType[typ] {
		if strings.EqualFold(v.Name, name) {
			return v
		}
	}
	return nil
}

// VariableByID returns the variable with the id, or nil.
func (m *VariableMap) VariableByID(id string) *Variable {
	for _, list := range m.byType {
		for _, v := range list {
			if v.ID == id {
				return v
			}
		}
	}
	return nil
}

// VariablesOfType returns the variables of one type in creation order.
func (m *VariableMap) VariablesOfType(typ string) []*Variable {
	return slices.Clone(m.byType[typ])
}

// Types returns the variable types in use, sorted.
func (m *VariableMap) Types() []string {
	out := make([]string, 0, len(m.byType))
	for t := range m.byType {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// All returns every variable, grouped by sorted type.
func (m *VariableMap) All() []*Variable {
	var out []*Variable
	for _, t := range m.Types() {
		out = append(out, m.byType[t]...)
	}
	return out
}

// Len returns the number of variables.
func (m *VariableMap) Len() int {
	n := 0
	for _, list := range m.byType {
		n += len(list)
	}
	return n
}

// create adds a variable. An existing variable with the same name and type
// is returned as is, unless its id conflicts with the requested one.
func (m *VariableMap) create(name, typ, id string) (*Variable, error) {
	if v := m.Variable(name, typ); v != nil {
		if id != "" && v.ID != id {
			return nil, fmt.Errorf("variable %q is already in use and its id is %q which conflicts with the requested id %q", name, v.ID, id)
		}
		return v, nil
	}
	if id != "" && m.VariableByID(id) != nil {
		return nil, fmt.Errorf("variable id %q is already in use", id)
	}
	if id == "" {
		id = uuid.NewString()
	}
	v := &Variable{ID: id, Name: name, Type: typ}
	m.byType[typ] = append(m.byType[typ], v)
	if !m.potential {
		m.ws.fireFor(&events.VarCreate{VarID: v.ID, VarType: v.Type, VarName: v.Name})
	}
	return v, nil
}

// rename changes v's name. Renaming onto another variable of the same type
// merges v into it: v's uses point at the other variable and v is deleted.
func (m *VariableMap) rename(v *Variable, newName string) {
	if v.Name == newName {
		return
	}
	end := m.ws.session.BeginGroup()
	defer end()
	blocks := m.ws.AllBlocks(false)
	conflict := m.Variable(newName, v.Type)
	if conflict == nil || conflict.ID == v.ID {
		m.renameAndUpdate(v, newName, blocks)
		return
	}
	if conflict.Name != newName {
		// Adopt the new spelling on the surviving variable.
		m.renameAndUpdate(conflict, newName, blocks)
	}
	for _, b := range blocks {
		b.renameVarByID(v.ID, conflict.ID)
	}
	m.remove(v)
}

func (m *VariableMap) renameAndUpdate(v *Variable, newName string, blocks []*Block) {
	m.ws.fireFor(&events.VarRename{VarID: v.ID, OldName: v.Name, NewName: newName})
	v.Name = newName
	for _, b := range blocks {
		b.updateVarName(v)
	}
}

// remove drops v and fires the delete event. Uses are the caller's business.
func (m *VariableMap) remove(v *Variable) {
	list := m.byType[v.Type]
	i := slices.Index(list, v)
	if i < 0 {
		return
	}
	if !m.potential {
		m.ws.fireFor(&events.VarDelete{VarID: v.ID, VarType: v.Type, VarName: v.Name})
	}
	list = slices.Delete(list, i, i+1)
	if len(list) == 0 {
		delete(m.byType, v.Type)
	} else {
		m.byType[v.Type] = list
	}
}

func (m *VariableMap) clear() {
	for _, v := range m.All() {
		m.remove(v)
	}
}

// VariableMap returns the workspace's variables. A flyout shares its
// target's map.
func (ws *Workspace) VariableMap() *VariableMap { return ws.variables }

// PotentialVariableMap returns the flyout-only variables, or nil.
func (ws *Workspace) PotentialVariableMap() *VariableMap { return ws.potentialVariables }

// CreateVariable adds a variable and fires its create event. An empty id is
// generated.
func (ws *Workspace) CreateVariable(name, typ, id string) (*Variable, error) {
	if name == "" {
		return nil, errors.New("variable name must not be empty")
	}
	return ws.variables.create(name, typ, id)
}

// VariableByID returns the variable with the id, or nil.
func (ws *Workspace) VariableByID(id string) *Variable { return ws.variables.VariableByID(id) }

// Variable returns the variable with the name and type, or nil.
func (ws *Workspace) Variable(name, typ string) *Variable { return ws.variables.Variable(name, typ) }

// AllVariables returns every variable.
func (ws *Workspace) AllVariables() []*Variable { return ws.variables.All() }

// VariableUsesByID returns the blocks referring to the variable.
func (ws *Workspace) VariableUsesByID(id string) []*Block {
	var out []*Block
	for _, b := range ws.AllBlocks(false) {
		if b.usesVariable(id) {
			out = append(out, b)
		}
	}
	return out
}

// RenameVariableByID renames a variable, merging it into an existing
// variable of the same name and type.
func (ws *Workspace) RenameVariableByID(id, newName string) error {
	v := ws.variables.VariableByID(id)
	if v == nil {
		return fmt.Errorf("%w: %q", ErrVariableNotFound, id)
	}
	if newName == "" {
		return errors.New("variable name must not be empty")
	}
	ws.variables.rename(v, newName)
	return nil
}

// DeleteVariableByID disposes every block using the variable and then the
// variable itself, as one group. A variable declared as a procedure
// parameter cannot be deleted.
func (ws *Workspace) DeleteVariableByID(id string) error {
	v := ws.variables.VariableByID(id)
	if v == nil {
		return fmt.Errorf("%w: %q", ErrVariableNotFound, id)
	}
	uses := ws.VariableUsesByID(id)
	for _, b := range ws.AllBlocks(false) {
		if b.procedure != nil && b.procedure.DefinesProcedure(b) && slices.Contains(b.procedure.Parameters(b), id) {
			return fmt.Errorf("%w: %q is a parameter of block %s", ErrVariableIsParameter, v.Name, b)
		}
	}
	end := ws.session.BeginGroup()
	defer end()
	for _, b := range uses {
		b.Dispose(true)
	}
	ws.variables.remove(v)
	return nil
}

// lookupVariable finds a variable in the workspace map, then in the
// potential map.
func (ws *Workspace) lookupVariable(id string) *Variable {
	if v := ws.variables.VariableByID(id); v != nil {
		return v
	}
	if ws.potentialVariables != nil {
		return ws.potentialVariables.VariableByID(id)
	}
	return nil
}

// getOrCreateVariable resolves a variable by id, then by name and type, and
// creates it when neither matches. Flyouts create into the potential map.
func (ws *Workspace) getOrCreateVariable(id, name, typ string) (*Variable, error) {
	if id != "" {
		if v := ws.lookupVariable(id); v != nil {
			return v, nil
		}
	}
	if name != "" {
		if v := ws.variables.Variable(name, typ); v != nil {
			return v, nil
		}
		if ws.potentialVariables != nil {
			if v := ws.potentialVariables.Variable(name, typ); v != nil {
				return v, nil
			}
		}
	}
	if name == "" {
		return nil, fmt.Errorf("%w: %q", ErrVariableNotFound, id)
	}
	if ws.potentialVariables != nil {
		return ws.potentialVariables.create(name, typ, id)
	}
	return ws.variables.create(name, typ, id)
}
