package procedures

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/specialistvlad/blockgraph/internal/events"
	"github.com/specialistvlad/blockgraph/internal/state"
	"github.com/specialistvlad/blockgraph/internal/workspace"
)

// Definition is the behaviour of a procedure definition block. The extra
// state is {"procedureId": id, "name": name, "params": [{"id", "name"}]};
// parameter ids are variable ids.
type Definition struct {
	procedureID string
}

var (
	_ workspace.ExtraStateBehavior = (*Definition)(nil)
	_ workspace.ProcedureBehavior  = (*Definition)(nil)
	_ workspace.ChangeBehavior     = (*Definition)(nil)
)

// Define creates a procedure model with the named parameters and a
// definition block bound to it, as one group. Parameters reuse existing
// untyped variables of the same name.
func Define(ws *workspace.Workspace, name string, params ...string) (*workspace.Block, error) {
	if _, ok := validateName(name); !ok {
		return nil, fmt.Errorf("invalid procedure name %q", name)
	}
	end := ws.Session().BeginGroup()
	defer end()

	p := &workspace.Procedure{ID: uuid.NewString(), Name: name}
	extra := map[string]any{"procedureId": p.ID, "name": name}
	var paramState []any
	for _, pn := range params {
		v := ws.Variable(pn, "")
		if v == nil {
			var err error
			if v, err = ws.CreateVariable(pn, "", ""); err != nil {
				return nil, fmt.Errorf("parameter %q: %w", pn, err)
			}
		}
		p.Parameters = append(p.Parameters, state.Parameter{ID: v.ID, Name: v.Name})
		paramState = append(paramState, map[string]any{"id": v.ID, "name": v.Name})
	}
	extra["params"] = paramState
	if err := ws.Procedures().Add(p); err != nil {
		return nil, err
	}

	b, err := ws.NewBlock(DefinitionType, "")
	if err != nil {
		return nil, err
	}
	if _, err := b.SetFieldValue("NAME", name); err != nil {
		return nil, err
	}
	if err := b.SetExtraState(extra); err != nil {
		b.Dispose(false)
		return nil, err
	}
	return b, nil
}

// ProcedureID implements workspace.ProcedureBehavior.
func (d *Definition) ProcedureID(*workspace.Block) string { return d.procedureID }

// DefinesProcedure implements workspace.ProcedureBehavior.
func (d *Definition) DefinesProcedure(*workspace.Block) bool { return true }

// Parameters implements workspace.ProcedureBehavior.
func (d *Definition) Parameters(b *workspace.Block) []string {
	p := b.Workspace().Procedures().Get(d.procedureID)
	if p == nil {
		return nil
	}
	ids := make([]string, len(p.Parameters))
	for i, param := range p.Parameters {
		ids[i] = param.ID
	}
	return ids
}

// SaveExtraState implements workspace.ExtraStateBehavior.
func (d *Definition) SaveExtraState(b *workspace.Block) any {
	p := b.Workspace().Procedures().Get(d.procedureID)
	if p == nil {
		return nil
	}
	params := make([]any, len(p.Parameters))
	for i, param := range p.Parameters {
		params[i] = map[string]any{"id": param.ID, "name": param.Name}
	}
	return map[string]any{"procedureId": p.ID, "name": p.Name, "params": params}
}

// LoadExtraState implements workspace.ExtraStateBehavior. A procedure model
// or parameter variable missing from the workspace is recreated; state
// without a procedure id unbinds the block.
func (d *Definition) LoadExtraState(b *workspace.Block, s any) error {
	m, _ := s.(map[string]any)
	id, _ := m["procedureId"].(string)
	if id == "" {
		d.procedureID = ""
		d.showParams(b, &workspace.Procedure{})
		return nil
	}
	ws := b.Workspace()
	p := ws.Procedures().Get(id)
	if p == nil {
		name, _ := m["name"].(string)
		p = &workspace.Procedure{ID: id, Name: name}
		params, err := loadParams(ws, m["params"])
		if err != nil {
			return err
		}
		p.Parameters = params
		if err := ws.Procedures().Add(p); err != nil {
			return err
		}
	}
	d.procedureID = id
	d.showParams(b, p)
	return nil
}

func loadParams(ws *workspace.Workspace, raw any) ([]state.Parameter, error) {
	list, _ := raw.([]any)
	var out []state.Parameter
	for _, item := range list {
		m, _ := item.(map[string]any)
		id, _ := m["id"].(string)
		name, _ := m["name"].(string)
		if id == "" || name == "" {
			return nil, fmt.Errorf("invalid procedure parameter %v", item)
		}
		if ws.VariableByID(id) == nil {
			if _, err := ws.CreateVariable(name, "", id); err != nil {
				return nil, fmt.Errorf("parameter %q: %w", name, err)
			}
		}
		out = append(out, state.Parameter{ID: id, Name: name})
	}
	return out, nil
}

// showParams writes the parameter list into the PARAMS label.
func (d *Definition) showParams(b *workspace.Block, p *workspace.Procedure) {
	f := b.Field("PARAMS")
	if f == nil {
		return
	}
	text := ""
	if len(p.Parameters) > 0 {
		names := make([]string, len(p.Parameters))
		for i, param := range p.Parameters {
			names[i] = param.Name
		}
		text = "with: " + strings.Join(names, ", ")
	}
	restore := b.Workspace().Session().Disable()
	defer restore()
	f.SetValue(text)
}

// OnChange implements workspace.ChangeBehavior. Renaming the definition
// renames the model and relabels every caller.
func (d *Definition) OnChange(b *workspace.Block, e *events.Event) {
	var name string
	switch p := e.Payload.(type) {
	case *events.BlockCreate:
		if p.BlockID != b.ID() {
			return
		}
		name, _ = b.FieldValue("NAME").(string)
	case *events.BlockChange:
		if p.BlockID != b.ID() || p.Element != events.ElementField || p.Name != "NAME" {
			return
		}
		name, _ = p.NewValue.(string)
	default:
		return
	}
	ws := b.Workspace()
	proc := ws.Procedures().Get(d.procedureID)
	if proc == nil || name == "" || proc.Name == name {
		return
	}
	proc.Name = name
	for _, caller := range Callers(ws, d.procedureID) {
		caller.Behavior().(*Call).relabel(caller, name)
	}
}

// Callers returns the live call blocks bound to a procedure.
func Callers(ws *workspace.Workspace, procedureID string) []*workspace.Block {
	var out []*workspace.Block
	for _, b := range ws.AllBlocks(false) {
		c, ok := b.Behavior().(*Call)
		if ok && !b.IsDeadOrDying() && c.procedureID == procedureID {
			out = append(out, b)
		}
	}
	return out
}
