package workspace

import (
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/blockgraph/internal/ctxlog"
	"github.com/specialistvlad/blockgraph/internal/events"
	"github.com/specialistvlad/blockgraph/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFlyout(t *testing.T, env *testEnv, contents ...*state.Block) *Flyout {
	t.Helper()
	f := NewFlyout(ctxlog.WithLogger(context.Background(), env.ws.Logger()), env.ws)
	t.Cleanup(f.Dispose)
	require.NoError(t, f.Show(contents))
	return f
}

func TestFlyout_Show(t *testing.T) {
	env := newTestWorkspace(t, Options{})
	f := newTestFlyout(t, env,
		&state.Block{Type: "stack", X: ptr(50.0), Y: ptr(50.0)},
		&state.Block{Type: "var_get"},
		&state.Block{Type: "print"},
	)

	fws := f.Workspace()
	tops := fws.TopBlocks(true)
	require.Len(t, tops, 3)
	assert.True(t, fws.IsFlyout())
	assert.Same(t, env.ws, f.Target())
	for _, b := range tops {
		assert.Zero(t, b.XY().X, "blocks are laid out in a column")
	}
	assert.Empty(t, env.events, "showing a flyout fires nothing")
	assert.Empty(t, env.ws.AllVariables(), "flyout variables stay potential")
	assert.Len(t, fws.PotentialVariableMap().All(), 1)

	require.NoError(t, f.Show([]*state.Block{{Type: "number"}}))
	assert.Len(t, fws.TopBlocks(false), 1)
	assert.Empty(t, fws.PotentialVariableMap().All())
}

func TestFlyout_CreateBlock(t *testing.T) {
	env := newTestWorkspace(t, Options{})
	f := newTestFlyout(t, env, &state.Block{Type: "var_get"})
	orig := f.Workspace().TopBlocks(false)[0]

	b, err := f.CreateBlock(orig)
	require.NoError(t, err)

	assert.Same(t, env.ws, b.Workspace())
	assert.NotEqual(t, orig.ID(), b.ID())
	require.Len(t, env.ws.AllVariables(), 1)
	assert.Equal(t, "item", env.ws.AllVariables()[0].Name)
	assert.Equal(t, []events.Type{events.TypeVarCreate, events.TypeCreate}, env.types())
	assert.NotEmpty(t, env.events[0].Group)
	assert.Equal(t, env.events[0].Group, env.events[1].Group)

	// Undo takes both the block and its variable.
	env.ws.Undo(false)
	assert.Empty(t, env.ws.AllBlocks(false))
	assert.Empty(t, env.ws.AllVariables())
}

func TestFlyout_CreateBlock_Refusals(t *testing.T) {
	env := newTestWorkspace(t, Options{MaxInstances: map[string]int{"stack": 1}})
	f := newTestFlyout(t, env, &state.Block{Type: "stack"}, &state.Block{Type: "number", Disabled: true})
	tops := f.Workspace().TopBlocks(true)
	stack, disabled := tops[0], tops[1]

	_, err := f.CreateBlock(disabled)
	assert.Error(t, err)
	assert.False(t, f.IsBlockCreatable(disabled))

	_, err = f.CreateBlock(stack)
	require.NoError(t, err)
	assert.False(t, stack.IsEnabled(), "the flyout disables what no longer fits")
	_, err = f.CreateBlock(stack)
	assert.True(t, errors.Is(err, ErrCapacity))

	_, err = f.CreateBlock(env.ws.TopBlocks(false)[0])
	assert.Error(t, err, "only flyout blocks can be copied")

	readOnly := newTestWorkspace(t, Options{ReadOnly: true})
	rf := newTestFlyout(t, readOnly, &state.Block{Type: "number"})
	_, err = rf.CreateBlock(rf.Workspace().TopBlocks(false)[0])
	assert.True(t, errors.Is(err, ErrReadOnly))
}

func TestFlyout_FilterForCapacity(t *testing.T) {
	env := newTestWorkspace(t, Options{MaxBlocks: 2})
	f := newTestFlyout(t, env,
		&state.Block{Type: "stack"},
		&state.Block{Type: "print"},
		&state.Block{Type: "number", Disabled: true},
	)
	tops := f.Workspace().TopBlocks(true)
	stack, pr, number := tops[0], tops[1], tops[2]
	assert.True(t, stack.IsEnabled())
	assert.True(t, pr.IsEnabled(), "print and its shadow fit exactly")
	assert.False(t, number.IsEnabled())

	env.newBlock(t, "stack", "s")
	assert.False(t, pr.IsEnabled())
	assert.True(t, stack.IsEnabled())

	env.ws.BlockByID("s").Dispose(false)
	assert.True(t, pr.IsEnabled())
	assert.False(t, number.IsEnabled(), "disabled by definition stays disabled")
}

func TestTrashcan(t *testing.T) {
	env := newTestWorkspace(t, Options{MaxTrashcanContents: 2})
	tc := env.ws.Trashcan()
	require.NotNil(t, tc)
	assert.Nil(t, newTestWorkspace(t, Options{}).ws.Trashcan())

	p := env.newBlock(t, "print", "p")
	require.NoError(t, p.MoveTo(at(40, 40)))
	p.SetEnabled(false)
	p.Dispose(false)

	require.Equal(t, 1, tc.Len())
	got := tc.Contents()[0]
	assert.Empty(t, got.ID)
	assert.Nil(t, got.X)
	assert.False(t, got.Disabled)
	require.NotNil(t, got.Inputs["TEXT"])
	require.NotNil(t, got.Inputs["TEXT"].Shadow)
	assert.Empty(t, got.Inputs["TEXT"].Shadow.ID)

	// An identical tree is kept once.
	env.newBlock(t, "print", "").Dispose(false)
	assert.Equal(t, 1, tc.Len())

	env.newBlock(t, "stack", "").Dispose(false)
	env.newBlock(t, "number", "").Dispose(false)
	require.Equal(t, 2, tc.Len())
	assert.Equal(t, "number", tc.Contents()[0].Type)
	assert.Equal(t, "stack", tc.Contents()[1].Type)

	tc.Empty()
	assert.Zero(t, tc.Len())
}
