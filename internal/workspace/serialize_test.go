package workspace

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/blockgraph/internal/events"
	"github.com/specialistvlad/blockgraph/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildProgram fills ws with a small program touching every serialized
// feature: nesting, shadows, fields, variables, comments and extra state.
func buildProgram(t *testing.T, env *testEnv) {
	t.Helper()
	loop := env.newBlock(t, "loop", "loop")
	require.NoError(t, loop.MoveTo(at(10, 20)))
	num := env.newBlock(t, "number", "num")
	_, err := num.SetFieldValue("NUM", 7)
	require.NoError(t, err)
	connect(t, loop.Input("TIMES").Connection(), num.OutputConnection())

	p := env.newBlock(t, "print", "p")
	connect(t, loop.Input("DO").Connection(), p.PreviousConnection())
	p.SetCommentText("say it")
	p.SetCollapsed(true)

	v := env.newBlock(t, "var_get", "v")
	require.NoError(t, v.MoveTo(at(300, 20)))

	l := env.newBlock(t, "list", "l")
	require.NoError(t, l.SetExtraState(map[string]any{"items": 3.0}))
	require.NoError(t, l.MoveTo(at(300, 200)))
	l.SetEnabled(false)

	c := env.ws.NewComment("note", "c1")
	require.NoError(t, c.MoveTo(at(500, 500)))
}

func TestSave_Shape(t *testing.T) {
	env := newTestWorkspace(t, Options{})
	buildProgram(t, env)

	doc := Save(env.ws)

	require.Len(t, doc.TopBlocks(), 3)
	loop := doc.TopBlocks()[0]
	assert.Equal(t, "loop", loop.Type)
	assert.Equal(t, state.Float(10), loop.X)
	assert.Equal(t, 7.0, loop.Inputs["TIMES"].Block.Fields["NUM"])
	assert.Nil(t, loop.Inputs["TIMES"].Block.X, "children carry no coordinates")
	p := loop.Inputs["DO"].Block
	assert.True(t, loop.Inputs["DO"].Statement)
	assert.True(t, p.Collapsed)
	assert.Equal(t, "say it", p.Icons.Comment.Text)
	assert.Equal(t, "abc", p.Inputs["TEXT"].Shadow.Fields["TEXT"])
	assert.Nil(t, p.Inputs["TEXT"].Block)

	require.Len(t, doc.Variables, 1)
	assert.Equal(t, "item", doc.Variables[0].Name)
	assert.Equal(t, map[string]any{"id": doc.Variables[0].ID, "name": "item"}, doc.TopBlocks()[1].Fields["VAR"])
	assert.Equal(t, map[string]any{"items": 3.0}, doc.TopBlocks()[2].ExtraState)
	assert.True(t, doc.TopBlocks()[2].Disabled)
	require.Len(t, doc.Comments, 1)
	assert.Equal(t, state.Comment{ID: "c1", Text: "note", X: 500, Y: 500, Width: 200, Height: 100}, doc.Comments[0])
}

func TestSave_LoadRoundTrip(t *testing.T) {
	src := newTestWorkspace(t, Options{})
	buildProgram(t, src)
	want := Save(src.ws)

	dst := newTestWorkspace(t, Options{})
	require.NoError(t, Load(dst.ws, want, LoadOptions{}))

	if diff := cmp.Diff(want, Save(dst.ws)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, dst.ws.CanUndo(), "loading is not undoable by default")
	assert.Equal(t, events.TypeFinishedLoading, dst.events[len(dst.events)-1].Type())
}

func TestXML_RoundTrip(t *testing.T) {
	src := newTestWorkspace(t, Options{})
	buildProgram(t, src)
	want := Save(src.ws)
	raw, err := WorkspaceToXML(src.ws)
	require.NoError(t, err)

	dst := newTestWorkspace(t, Options{})
	require.NoError(t, LoadXML(dst.ws, raw))

	if diff := cmp.Diff(want, Save(dst.ws)); diff != "" {
		t.Errorf("xml round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestAppendXML_IsOneUndoableGroup(t *testing.T) {
	src := newTestWorkspace(t, Options{})
	buildProgram(t, src)
	raw, err := WorkspaceToXML(src.ws)
	require.NoError(t, err)

	dst := newTestWorkspace(t, Options{})
	blocks, err := AppendXML(dst.ws, raw)
	require.NoError(t, err)
	assert.Len(t, blocks, 3)
	require.True(t, dst.ws.CanUndo())

	dst.ws.Undo(false)

	assert.Empty(t, dst.ws.AllBlocks(false))
	assert.Empty(t, dst.ws.TopComments(false))
	assert.Empty(t, dst.ws.AllVariables())
}

func TestAppendBlock_Errors(t *testing.T) {
	tests := []struct {
		name  string
		state *state.Block
		check func(t *testing.T, err error)
	}{
		{
			name:  "missing type",
			state: &state.Block{},
			check: func(t *testing.T, err error) {
				var e *MissingBlockTypeError
				assert.True(t, errors.As(err, &e))
			},
		},
		{
			name: "unknown child type",
			state: &state.Block{Type: "loop", Inputs: map[string]*state.Connection{
				"DO": {Block: &state.Block{Type: "stack", Next: &state.Connection{Block: &state.Block{Type: "ghost"}}}},
			}},
			check: func(t *testing.T, err error) {
				var e *MissingBlockTypeError
				require.True(t, errors.As(err, &e))
				assert.True(t, errors.Is(err, ErrUnknownBlockType))
			},
		},
		{
			name: "missing input",
			state: &state.Block{Type: "number", Inputs: map[string]*state.Connection{
				"X": {Block: &state.Block{Type: "number"}},
			}},
			check: func(t *testing.T, err error) {
				var e *MissingConnectionError
				require.True(t, errors.As(err, &e))
				assert.Equal(t, "X", e.Connection)
			},
		},
		{
			name:  "child without previous",
			state: &state.Block{Type: "hat", Next: &state.Connection{Block: &state.Block{Type: "hat"}}},
			check: func(t *testing.T, err error) {
				var e *MissingConnectionError
				require.True(t, errors.As(err, &e))
				assert.Equal(t, "previous", e.Connection)
			},
		},
		{
			name:  "missing next",
			state: &state.Block{Type: "number", Next: &state.Connection{Block: &state.Block{Type: "stack"}}},
			check: func(t *testing.T, err error) {
				var e *MissingConnectionError
				require.True(t, errors.As(err, &e))
				assert.Equal(t, "next", e.Connection)
			},
		},
		{
			name: "failed check",
			state: &state.Block{Type: "negate", Inputs: map[string]*state.Connection{
				"VALUE": {Block: &state.Block{Type: "text"}},
			}},
			check: func(t *testing.T, err error) {
				var e *BadConnectionCheckError
				require.True(t, errors.As(err, &e))
				assert.Equal(t, ReasonChecksFailed, e.Reason)
			},
		},
		{
			name: "real block under shadow",
			state: &state.Block{Type: "negate", Inputs: map[string]*state.Connection{
				"VALUE": {Shadow: &state.Block{Type: "negate", Inputs: map[string]*state.Connection{
					"VALUE": {Block: &state.Block{Type: "number"}},
				}}},
			}},
			check: func(t *testing.T, err error) {
				var e *RealChildOfShadowError
				assert.True(t, errors.As(err, &e))
			},
		},
		{
			name:  "bad extra state",
			state: &state.Block{Type: "list", ExtraState: "three"},
			check: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "extra state")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestWorkspace(t, Options{})

			_, err := AppendBlock(env.ws, tt.state, AppendOptions{})

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDeserialization), "got %v", err)
			tt.check(t, err)
			assert.Empty(t, env.ws.AllBlocks(false), "a failed append leaves nothing behind")
			assert.Empty(t, env.events)
		})
	}
}

func TestAppendBlock_IgnoresUnknownFields(t *testing.T) {
	env := newTestWorkspace(t, Options{})
	b, err := AppendBlock(env.ws, &state.Block{Type: "number", Fields: map[string]any{"NUM": 3.0, "NOPE": 1.0}}, AppendOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3.0, b.FieldValue("NUM"))
	assert.True(t, logContains(env, "Ignoring non-existent field"))
}

func TestAppendBlock_SingleCreateEvent(t *testing.T) {
	env := newTestWorkspace(t, Options{})
	st := &state.Block{Type: "loop", ID: "loop", Inputs: map[string]*state.Connection{
		"TIMES": {Block: &state.Block{Type: "number", ID: "n"}},
		"DO":    {Block: &state.Block{Type: "print", ID: "p"}},
	}}

	_, err := AppendBlock(env.ws, st, AppendOptions{RecordUndo: true})
	require.NoError(t, err)

	require.Equal(t, []events.Type{events.TypeCreate}, env.types())
	create := env.events[0].Payload.(*events.BlockCreate)
	assert.Equal(t, "loop", create.BlockID)
	assert.Len(t, create.IDs, 4, "loop, number, print and its shadow")
	assert.True(t, env.events[0].RecordUndo)
}

func TestAppendBlock_ExistingIDIsReplaced(t *testing.T) {
	env := newTestWorkspace(t, Options{})
	env.newBlock(t, "stack", "dup")

	b, err := AppendBlock(env.ws, &state.Block{Type: "stack", ID: "dup"}, AppendOptions{})
	require.NoError(t, err)
	assert.NotEqual(t, "dup", b.ID())
}

func TestLoad_FailureLeavesWorkspaceEmpty(t *testing.T) {
	env := newTestWorkspace(t, Options{})
	env.newBlock(t, "stack", "old")
	doc := &state.Workspace{Blocks: &state.Blocks{Blocks: []*state.Block{
		{Type: "stack", ID: "good"},
		{Type: "ghost"},
	}}}

	err := Load(env.ws, doc, LoadOptions{})

	assert.True(t, errors.Is(err, ErrDeserialization))
	assert.Empty(t, env.ws.AllBlocks(false))
}

func TestLoad_VariablesBeforeBlocks(t *testing.T) {
	env := newTestWorkspace(t, Options{})
	doc := &state.Workspace{
		Variables: []state.Variable{{Name: "count", ID: "var1"}},
		Blocks: &state.Blocks{Blocks: []*state.Block{
			{Type: "var_get", ID: "g", Fields: map[string]any{"VAR": map[string]any{"id": "var1"}}},
		}},
	}

	require.NoError(t, Load(env.ws, doc, LoadOptions{}))

	assert.Equal(t, "var1", env.ws.BlockByID("g").FieldValue("VAR"))
	assert.Len(t, env.ws.AllVariables(), 1)
	types := env.types()
	assert.Less(t, indexOf(types, events.TypeVarCreate), indexOf(types, events.TypeCreate))
}

func TestLoad_FieldCreatesMissingVariable(t *testing.T) {
	env := newTestWorkspace(t, Options{})
	doc := &state.Workspace{Blocks: &state.Blocks{Blocks: []*state.Block{
		{Type: "var_get", Fields: map[string]any{"VAR": map[string]any{"id": "x1", "name": "x"}}},
	}}}

	require.NoError(t, Load(env.ws, doc, LoadOptions{}))

	v := env.ws.VariableByID("x1")
	require.NotNil(t, v)
	assert.Equal(t, "x", v.Name)
}

func TestSaveBlock_SkipsInsertionMarkers(t *testing.T) {
	env := newTestWorkspace(t, Options{})
	b := env.newBlock(t, "stack", "")
	b.SetInsertionMarker(true)

	assert.Nil(t, SaveBlock(b, FullSave))
	assert.Nil(t, Save(env.ws).TopBlocks())
	_, err := BlockToXML(b)
	assert.Error(t, err)
}

func indexOf[T comparable](s []T, v T) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}
