package workspace

import (
	"fmt"
	"slices"

	"github.com/specialistvlad/blockgraph/internal/state"
)

// Procedure is a procedure model. Definition and call blocks bind to it
// through ProcedureBehavior.
type Procedure struct {
	ID          string
	Name        string
	ReturnTypes []string
	Parameters  []state.Parameter
}

// ProcedureMap holds the procedure models of a workspace in insertion order.
type ProcedureMap struct {
	ws    *Workspace
	procs []*Procedure
}

func newProcedureMap(ws *Workspace) *ProcedureMap {
	return &ProcedureMap{ws: ws}
}

// Add registers a procedure model. Ids must be unique.
func (m *ProcedureMap) Add(p *Procedure) error {
	if p.ID == "" {
		return fmt.Errorf("procedure %q has no id", p.Name)
	}
	if m.Get(p.ID) != nil {
		return fmt.Errorf("procedure id %q is already in use", p.ID)
	}
	m.procs = append(m.procs, p)
	return nil
}

// Get returns the procedure with the id, or nil.
func (m *ProcedureMap) Get(id string) *Procedure {
	for _, p := range m.procs {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// All returns the procedures in insertion order.
func (m *ProcedureMap) All() []*Procedure { return slices.Clone(m.procs) }

// Len returns the number of procedures.
func (m *ProcedureMap) Len() int { return len(m.procs) }

// Delete removes the procedure and disposes every block bound to it, as one
// group. It reports whether the procedure existed.
func (m *ProcedureMap) Delete(id string) bool {
	i := slices.IndexFunc(m.procs, func(p *Procedure) bool { return p.ID == id })
	if i < 0 {
		return false
	}
	end := m.ws.session.BeginGroup()
	defer end()
	for _, b := range m.ws.AllBlocks(false) {
		if b.procedure != nil && !b.IsDeadOrDying() && b.procedure.ProcedureID(b) == id {
			b.Dispose(true)
		}
	}
	m.procs = slices.Delete(m.procs, i, i+1)
	return true
}

func (m *ProcedureMap) clear() { m.procs = nil }

// Procedures returns the workspace's procedure map.
func (ws *Workspace) Procedures() *ProcedureMap { return ws.procedures }

// DeleteProcedureByID removes a procedure model and the blocks bound to it.
func (ws *Workspace) DeleteProcedureByID(id string) bool { return ws.procedures.Delete(id) }

func (p *Procedure) save() state.Procedure {
	return state.Procedure{
		ID:          p.ID,
		Name:        p.Name,
		ReturnTypes: slices.Clone(p.ReturnTypes),
		Parameters:  slices.Clone(p.Parameters),
	}
}
