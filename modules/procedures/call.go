package procedures

import (
	"fmt"

	"github.com/specialistvlad/blockgraph/internal/workspace"
)

// Call is the behaviour of a procedure call block. The extra state is
// {"procedureId": id}.
type Call struct {
	procedureID string
}

var (
	_ workspace.ExtraStateBehavior = (*Call)(nil)
	_ workspace.ProcedureBehavior  = (*Call)(nil)
)

// NewCall creates a call block bound to the procedure, as one group.
func NewCall(ws *workspace.Workspace, procedureID string) (*workspace.Block, error) {
	end := ws.Session().BeginGroup()
	defer end()
	if ws.Procedures().Get(procedureID) == nil {
		return nil, fmt.Errorf("procedure %q does not exist", procedureID)
	}
	b, err := ws.NewBlock(CallType, "")
	if err != nil {
		return nil, err
	}
	if err := b.SetExtraState(map[string]any{"procedureId": procedureID}); err != nil {
		b.Dispose(false)
		return nil, err
	}
	return b, nil
}

// ProcedureID implements workspace.ProcedureBehavior.
func (c *Call) ProcedureID(*workspace.Block) string { return c.procedureID }

// DefinesProcedure implements workspace.ProcedureBehavior.
func (c *Call) DefinesProcedure(*workspace.Block) bool { return false }

// Parameters implements workspace.ProcedureBehavior. Calls declare none.
func (c *Call) Parameters(*workspace.Block) []string { return nil }

// SaveExtraState implements workspace.ExtraStateBehavior.
func (c *Call) SaveExtraState(*workspace.Block) any {
	if c.procedureID == "" {
		return nil
	}
	return map[string]any{"procedureId": c.procedureID}
}

// LoadExtraState implements workspace.ExtraStateBehavior. The procedure must
// already exist.
func (c *Call) LoadExtraState(b *workspace.Block, s any) error {
	m, _ := s.(map[string]any)
	id, _ := m["procedureId"].(string)
	if id == "" {
		c.procedureID = ""
		c.relabel(b, "")
		return nil
	}
	p := b.Workspace().Procedures().Get(id)
	if p == nil {
		return fmt.Errorf("procedure %q does not exist", id)
	}
	c.procedureID = id
	c.relabel(b, p.Name)
	return nil
}

// relabel shows the procedure name. Labels are not saved, so no event is
// fired.
func (c *Call) relabel(b *workspace.Block, name string) {
	f := b.Field("NAME")
	if f == nil {
		return
	}
	restore := b.Workspace().Session().Disable()
	defer restore()
	f.SetValue(name)
}
