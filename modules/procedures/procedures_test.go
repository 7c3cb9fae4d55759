package procedures

import (
	"errors"
	"testing"

	"github.com/specialistvlad/blockgraph/internal/registry"
	"github.com/specialistvlad/blockgraph/internal/testutil/blocktest"
	"github.com/specialistvlad/blockgraph/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEnv(t *testing.T) *blocktest.Env {
	return blocktest.New(t, []registry.Module{&Module{}}, ".")
}

func TestDefine(t *testing.T) {
	env := newEnv(t)
	ws := env.Workspace

	def, err := Define(ws, "greet", "who", "times")
	require.NoError(t, err)

	d := def.Behavior().(*Definition)
	p := ws.Procedures().Get(d.ProcedureID(def))
	require.NotNil(t, p)
	assert.Equal(t, "greet", p.Name)
	assert.Equal(t, "greet", def.FieldValue("NAME"))
	assert.Equal(t, "with: who, times", def.FieldValue("PARAMS"))
	require.Len(t, p.Parameters, 2)
	assert.Equal(t, []string{p.Parameters[0].ID, p.Parameters[1].ID}, d.Parameters(def))
	assert.NotNil(t, ws.Variable("who", ""))

	_, err = Define(ws, "   ")
	assert.ErrorContains(t, err, "invalid procedure name")
}

func TestCall_FollowsRename(t *testing.T) {
	env := newEnv(t)
	ws := env.Workspace
	def, err := Define(ws, "greet")
	require.NoError(t, err)
	id := def.Behavior().(*Definition).ProcedureID(def)

	call, err := NewCall(ws, id)
	require.NoError(t, err)
	assert.Equal(t, "greet", call.FieldValue("NAME"))
	assert.Equal(t, []*workspace.Block{call}, Callers(ws, id))

	ok, err := def.SetFieldValue("NAME", "  wave   hello ")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "wave hello", ws.Procedures().Get(id).Name)
	assert.Equal(t, "wave hello", call.FieldValue("NAME"))

	_, err = NewCall(ws, "missing")
	assert.ErrorContains(t, err, `procedure "missing" does not exist`)
}

func TestDeleteProcedure_RemovesBoundBlocks(t *testing.T) {
	env := newEnv(t)
	ws := env.Workspace
	def, err := Define(ws, "greet")
	require.NoError(t, err)
	id := def.Behavior().(*Definition).ProcedureID(def)
	_, err = NewCall(ws, id)
	require.NoError(t, err)
	_, err = NewCall(ws, id)
	require.NoError(t, err)
	require.Len(t, ws.AllBlocks(false), 3)

	assert.True(t, ws.DeleteProcedureByID(id))

	assert.Empty(t, ws.AllBlocks(false))
	assert.Nil(t, ws.Procedures().Get(id))
}

func TestParameterVariableCannotBeDeleted(t *testing.T) {
	env := newEnv(t)
	ws := env.Workspace
	_, err := Define(ws, "greet", "who")
	require.NoError(t, err)

	err = ws.DeleteVariableByID(ws.Variable("who", "").ID)
	assert.True(t, errors.Is(err, workspace.ErrVariableIsParameter))
}

func TestProcedures_SurviveReload(t *testing.T) {
	env := newEnv(t)
	def, err := Define(env.Workspace, "greet", "who")
	require.NoError(t, err)
	id := def.Behavior().(*Definition).ProcedureID(def)
	call, err := NewCall(env.Workspace, id)
	require.NoError(t, err)

	ws := env.Reload(t)

	require.NotNil(t, ws.Procedures().Get(id))
	loadedCall := ws.BlockByID(call.ID())
	require.NotNil(t, loadedCall)
	assert.Equal(t, "greet", loadedCall.FieldValue("NAME"))
	loadedDef := ws.BlockByID(def.ID())
	require.NotNil(t, loadedDef)
	assert.Equal(t, "with: who", loadedDef.FieldValue("PARAMS"))
}

func TestDefine_Undo(t *testing.T) {
	env := newEnv(t)
	def, err := Define(env.Workspace, "greet")
	require.NoError(t, err)

	env.Workspace.Undo(false)

	assert.True(t, def.IsDisposed())
	assert.Empty(t, env.Workspace.AllBlocks(false))
}
