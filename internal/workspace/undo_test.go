package workspace

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/blockgraph/internal/events"
	"github.com/specialistvlad/blockgraph/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func undoAll(ws *Workspace, redo bool) int {
	n := 0
	for (redo && ws.CanRedo()) || (!redo && ws.CanUndo()) {
		ws.Undo(redo)
		n++
	}
	return n
}

func TestUndo_FullRoundTrip(t *testing.T) {
	env := newTestWorkspace(t, Options{})
	buildProgram(t, env)
	want := Save(env.ws)

	undone := undoAll(env.ws, false)
	require.Positive(t, undone)
	if diff := cmp.Diff(&state.Workspace{}, Save(env.ws)); diff != "" {
		t.Fatalf("undo left state behind (-want +got):\n%s", diff)
	}

	redone := undoAll(env.ws, true)
	assert.Equal(t, undone, redone)
	if diff := cmp.Diff(want, Save(env.ws)); diff != "" {
		t.Errorf("redo mismatch (-want +got):\n%s", diff)
	}
}

func TestUndo_StepByStep(t *testing.T) {
	env := newTestWorkspace(t, Options{})
	a := env.newBlock(t, "stack", "a")
	s1 := Save(env.ws)
	b := env.newBlock(t, "stack", "b")
	require.NoError(t, b.MoveTo(at(0, 100)))
	s2 := Save(env.ws)
	connect(t, a.NextConnection(), b.PreviousConnection())
	s3 := Save(env.ws)

	env.ws.Undo(false)
	assert.Empty(t, cmp.Diff(s2, Save(env.ws)))
	env.ws.Undo(false)
	env.ws.Undo(false)
	assert.Empty(t, cmp.Diff(s1, Save(env.ws)))

	env.ws.Undo(true)
	env.ws.Undo(true)
	assert.Empty(t, cmp.Diff(s2, Save(env.ws)))
	env.ws.Undo(true)
	assert.Empty(t, cmp.Diff(s3, Save(env.ws)))
	assert.False(t, env.ws.CanRedo())
}

func TestUndo_NewEventClearsRedo(t *testing.T) {
	env := newTestWorkspace(t, Options{})
	env.newBlock(t, "stack", "a")
	env.ws.Undo(false)
	require.True(t, env.ws.CanRedo())

	env.newBlock(t, "stack", "b")

	assert.False(t, env.ws.CanRedo())
}

func TestUndo_ReplayIsNotRecorded(t *testing.T) {
	env := newTestWorkspace(t, Options{})
	b := env.newBlock(t, "number", "n")
	_, _ = b.SetFieldValue("NUM", 3)
	require.Len(t, env.ws.UndoStack(), 2)

	env.ws.Undo(false)

	assert.Len(t, env.ws.UndoStack(), 1)
	assert.Len(t, env.ws.RedoStack(), 1)
	assert.Equal(t, 0.0, b.FieldValue("NUM"))
	last := env.events[len(env.events)-1]
	assert.False(t, last.RecordUndo)
}

func TestUndo_GroupUndoesTogether(t *testing.T) {
	env := newTestWorkspace(t, Options{})
	a := env.newBlock(t, "stack", "a")
	b := env.newBlock(t, "stack", "b")
	c := env.newBlock(t, "stack", "c")
	connect(t, a.NextConnection(), b.PreviousConnection())
	connect(t, b.NextConnection(), c.PreviousConnection())

	b.Dispose(true)
	require.Same(t, c, a.NextBlock())

	env.ws.Undo(false)

	b = env.ws.BlockByID("b")
	require.NotNil(t, b)
	assert.Same(t, b, a.NextBlock())
	assert.Same(t, c, b.NextBlock())
}

func TestUndo_MaxUndoTrimsOldest(t *testing.T) {
	env := newTestWorkspace(t, Options{MaxUndo: 3})
	b := env.newBlock(t, "number", "")
	for i := 1; i <= 5; i++ {
		_, _ = b.SetFieldValue("NUM", i)
	}

	stack := env.ws.UndoStack()
	require.Len(t, stack, 3)
	assert.Equal(t, 5.0, stack[2].Payload.(*events.BlockChange).NewValue)
	assert.Equal(t, 2.0, stack[0].Payload.(*events.BlockChange).OldValue)
}

func TestUndo_DisabledEventsAreNotRecorded(t *testing.T) {
	env := newTestWorkspace(t, Options{})
	restore := env.ws.Session().Disable()
	env.newBlock(t, "stack", "")
	restore()

	assert.False(t, env.ws.CanUndo())
	assert.Empty(t, env.events)
}

func TestUndo_ShadowEventsAreNotRecorded(t *testing.T) {
	env := newTestWorkspace(t, Options{})
	p := env.newBlock(t, "print", "")
	txt := env.newBlock(t, "text", "")
	env.ws.ClearUndo()

	connect(t, p.Input("TEXT").Connection(), txt.OutputConnection())

	var shadowDeletes int
	for _, e := range env.ws.UndoStack() {
		if d, ok := e.Payload.(*events.BlockDelete); ok && d.WasShadow {
			shadowDeletes++
		}
	}
	assert.Zero(t, shadowDeletes)

	env.ws.Undo(false)
	shadow := p.Input("TEXT").Connection().TargetBlock()
	require.NotNil(t, shadow)
	assert.True(t, shadow.IsShadow())
}

func TestRun_MissingTargetsAreLogged(t *testing.T) {
	env := newTestWorkspace(t, Options{})

	env.ws.Run(events.New(&events.BlockChange{BlockID: "ghost", Element: events.ElementField, Name: "X", NewValue: 1.0}), true)
	env.ws.Run(events.New(&events.BlockMove{BlockID: "ghost"}), true)
	env.ws.Run(events.New(&events.BlockDelete{BlockID: "ghost", IDs: []string{"ghost"}}), true)
	env.ws.Run(events.New(&events.CommentChange{CommentID: "ghost", NewContents: "x"}), true)

	assert.True(t, logContains(env, "Can't change non-existent block"))
	assert.True(t, logContains(env, "Can't move non-existent block"))
	assert.True(t, logContains(env, "Can't delete non-existent block"))
	assert.True(t, logContains(env, "Can't change non-existent comment"))
}

func TestRun_CreateOfExistingBlockIsSkipped(t *testing.T) {
	env := newTestWorkspace(t, Options{})
	b := env.newBlock(t, "stack", "a")
	st := SaveBlock(b, FullSave)
	env.reset()

	env.ws.Run(events.New(&events.BlockCreate{BlockID: "a", JSON: st, IDs: []string{"a"}}), true)

	assert.Len(t, env.ws.AllBlocks(false), 1)
	assert.Empty(t, env.events)
}

func TestRun_CommentLifecycle(t *testing.T) {
	env := newTestWorkspace(t, Options{})
	c := env.ws.NewComment("hi", "c")
	c.SetText("there")
	require.NoError(t, c.MoveBy(10, 10))

	env.ws.Undo(false)
	assert.Equal(t, at(0, 0), c.XY())
	env.ws.Undo(false)
	assert.Equal(t, "hi", c.Text())
	env.ws.Undo(false)
	assert.Nil(t, env.ws.CommentByID("c"))

	undoAll(env.ws, true)
	got := env.ws.CommentByID("c")
	require.NotNil(t, got)
	assert.Equal(t, "there", got.Text())
	assert.Equal(t, at(10, 10), got.XY())
}

func TestRun_VariableLifecycle(t *testing.T) {
	env := newTestWorkspace(t, Options{})
	v, err := env.ws.CreateVariable("x", "", "vx")
	require.NoError(t, err)
	require.NoError(t, env.ws.RenameVariableByID(v.ID, "y"))

	env.ws.Undo(false)
	assert.Equal(t, "x", env.ws.VariableByID("vx").Name)
	env.ws.Undo(false)
	assert.Nil(t, env.ws.VariableByID("vx"))
	undoAll(env.ws, true)
	assert.Equal(t, "y", env.ws.VariableByID("vx").Name)
}
