package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// renderedLoop builds loop(TIMES: number, DO: inner) followed by after, with
// the loop at (10, 20).
func renderedLoop(t *testing.T, env *testEnv) (loop, num, inner, after *Block) {
	t.Helper()
	loop = env.newBlock(t, "loop", "loop")
	num = env.newBlock(t, "number", "num")
	inner = env.newBlock(t, "stack", "inner")
	after = env.newBlock(t, "stack", "after")
	connect(t, loop.Input("TIMES").Connection(), num.OutputConnection())
	connect(t, loop.Input("DO").Connection(), inner.PreviousConnection())
	connect(t, loop.NextConnection(), after.PreviousConnection())
	require.NoError(t, loop.MoveTo(at(10, 20)))
	return loop, num, inner, after
}

func TestRender_ChildrenFirstOnce(t *testing.T) {
	env := newTestWorkspace(t, Options{})
	loop, _, _, _ := renderedLoop(t, env)
	assert.Zero(t, env.ws.Render(), "nothing renders without a renderer")

	r := &fixedRenderer{}
	env.ws.SetRenderer(r)
	assert.True(t, env.ws.IsDirty(loop))

	n := env.ws.Render()

	assert.Equal(t, 4, n)
	assert.Equal(t, []string{"num", "inner", "after", "loop"}, r.rendered)
	assert.False(t, env.ws.IsDirty(loop))
	assert.Zero(t, env.ws.Render())
}

func TestRender_LaysOutChildren(t *testing.T) {
	env := newTestWorkspace(t, Options{})
	loop, num, inner, after := renderedLoop(t, env)
	env.ws.SetRenderer(&fixedRenderer{})
	env.ws.Render()

	assert.Equal(t, at(100, 0), num.RelativeXY())
	assert.Equal(t, at(110, 20), num.XY())
	assert.Equal(t, at(110, 30), inner.XY())
	assert.Equal(t, at(10, 60), after.XY())
	assert.Equal(t, at(10, 60), loop.NextConnection().Position())
	assert.Equal(t, after.PreviousConnection().Position(), loop.NextConnection().Position())
	assert.True(t, after.PreviousConnection().IsTracked())

	// Moving the stack moves every connection with it.
	require.NoError(t, loop.MoveBy(5, 5))
	assert.Equal(t, at(115, 25), num.OutputConnection().Position())
}

func TestRender_OnlyDirtyBlocks(t *testing.T) {
	env := newTestWorkspace(t, Options{})
	loop, num, inner, _ := renderedLoop(t, env)
	r := &fixedRenderer{}
	env.ws.SetRenderer(r)
	env.ws.Render()
	r.rendered = nil

	_, err := num.SetFieldValue("NUM", 3)
	require.NoError(t, err)

	assert.True(t, env.ws.IsDirty(num))
	assert.True(t, env.ws.IsDirty(loop), "ancestors follow")
	assert.False(t, env.ws.IsDirty(inner))
	assert.Equal(t, 2, env.ws.Render())
	assert.Equal(t, []string{"num", "loop"}, r.rendered)
}

func TestRender_CollapsedHidesConnections(t *testing.T) {
	env := newTestWorkspace(t, Options{})
	loop, num, inner, after := renderedLoop(t, env)
	env.ws.SetRenderer(&fixedRenderer{})
	env.ws.Render()
	require.True(t, loop.Input("TIMES").Connection().IsTracked())

	loop.SetCollapsed(true)
	env.ws.Render()

	assert.False(t, loop.Input("TIMES").Connection().IsTracked())
	assert.False(t, loop.Input("DO").Connection().IsTracked())
	assert.False(t, num.OutputConnection().IsTracked())
	assert.False(t, inner.NextConnection().IsTracked())
	assert.True(t, loop.NextConnection().IsTracked())
	assert.True(t, after.NextConnection().IsTracked())

	loop.SetCollapsed(false)
	env.ws.Render()
	assert.True(t, inner.NextConnection().IsTracked())
}

func TestSetRenderer_Nil(t *testing.T) {
	env := newTestWorkspace(t, Options{})
	b := env.newBlock(t, "stack", "")
	env.ws.SetRenderer(&fixedRenderer{})
	require.True(t, env.ws.IsDirty(b))

	env.ws.SetRenderer(nil)

	assert.False(t, env.ws.IsDirty(b))
	assert.Zero(t, env.ws.Render())
}
