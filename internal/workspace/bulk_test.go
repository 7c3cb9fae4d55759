package workspace

import (
	"testing"

	"github.com/specialistvlad/blockgraph/internal/events"
	"github.com/specialistvlad/blockgraph/internal/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopBlocks_ReadingOrder(t *testing.T) {
	env := newTestWorkspace(t, Options{})
	low := env.newBlock(t, "stack", "low")
	require.NoError(t, low.MoveTo(at(0, 100)))
	right := env.newBlock(t, "stack", "right")
	require.NoError(t, right.MoveTo(at(200, 0)))
	left := env.newBlock(t, "stack", "left")

	assert.Equal(t, []*Block{left, right, low}, env.ws.TopBlocks(true))

	rtl := newTestWorkspace(t, Options{RTL: true})
	a := rtl.newBlock(t, "stack", "")
	b := rtl.newBlock(t, "stack", "")
	require.NoError(t, a.MoveTo(at(200, 0)))
	assert.Equal(t, []*Block{a, b}, rtl.ws.TopBlocks(true))
}

func TestClear(t *testing.T) {
	env := newTestWorkspace(t, Options{})
	buildProgram(t, env)
	env.reset()

	env.ws.Clear()

	assert.Empty(t, env.ws.AllBlocks(false))
	assert.Empty(t, env.ws.TopComments(false))
	assert.Empty(t, env.ws.AllVariables())
	require.NotEmpty(t, env.events)
	for _, e := range env.events {
		assert.Equal(t, env.events[0].Group, e.Group)
	}

	env.ws.Undo(false)
	assert.Len(t, env.ws.TopBlocks(false), 3)
	assert.Len(t, env.ws.AllVariables(), 1)
}

func TestCapacity(t *testing.T) {
	env := newTestWorkspace(t, Options{MaxBlocks: 5, MaxInstances: map[string]int{"print": 1}})
	assert.True(t, env.ws.HasBlockLimits())
	assert.Equal(t, 5, env.ws.RemainingCapacity())

	p := env.newBlock(t, "print", "")
	// The default shadow counts too.
	assert.Equal(t, 3, env.ws.RemainingCapacity())
	assert.Equal(t, 0, env.ws.RemainingCapacityOfType("print"))
	assert.Equal(t, Unlimited, env.ws.RemainingCapacityOfType("stack"))

	assert.Equal(t, map[string]int{"print": 1, "text": 1}, BlockTypeCounts(p, false))
	assert.False(t, env.ws.IsCapacityAvailable(map[string]int{"print": 1}))
	assert.True(t, env.ws.IsCapacityAvailable(map[string]int{"stack": 3}))
	assert.False(t, env.ws.IsCapacityAvailable(map[string]int{"stack": 4}))

	free := newTestWorkspace(t, Options{})
	assert.False(t, free.ws.HasBlockLimits())
	assert.Equal(t, Unlimited, free.ws.RemainingCapacity())
	assert.True(t, free.ws.IsCapacityAvailable(map[string]int{"print": 100}))
}

func TestBlockTypeCounts_StripFollowing(t *testing.T) {
	env := newTestWorkspace(t, Options{})
	loop := env.newBlock(t, "loop", "")
	inner := env.newBlock(t, "stack", "")
	after := env.newBlock(t, "stack", "")
	connect(t, loop.Input("DO").Connection(), inner.PreviousConnection())
	connect(t, loop.NextConnection(), after.PreviousConnection())

	assert.Equal(t, map[string]int{"loop": 1, "stack": 2}, BlockTypeCounts(loop, false))
	assert.Equal(t, map[string]int{"loop": 1, "stack": 1}, BlockTypeCounts(loop, true))
}

func TestSetCollapsedAll(t *testing.T) {
	env := newTestWorkspace(t, Options{})
	a := env.newBlock(t, "stack", "a")
	b := env.newBlock(t, "stack", "b")
	connect(t, a.NextConnection(), b.PreviousConnection())
	c := env.newBlock(t, "stack", "c")
	require.NoError(t, c.MoveTo(at(0, 500)))
	env.reset()
	steps := 0

	env.ws.SetCollapsedAll(true, WithYield(func() { steps++ }))

	assert.True(t, a.IsCollapsed())
	assert.True(t, b.IsCollapsed())
	assert.True(t, c.IsCollapsed())
	assert.Equal(t, 3, steps)
	require.Len(t, env.events, 3)

	env.ws.Undo(false)
	assert.False(t, a.IsCollapsed())
	assert.False(t, c.IsCollapsed())
}

func TestDeleteAll(t *testing.T) {
	env := newTestWorkspace(t, Options{})
	keep := env.newBlock(t, "loop", "keep")
	keep.SetDeletable(false)
	inner := env.newBlock(t, "stack", "inner")
	connect(t, keep.Input("DO").Connection(), inner.PreviousConnection())
	p := env.newBlock(t, "print", "p")
	require.NoError(t, p.MoveTo(at(0, 200)))

	// The inner stack and the print block; shadows are not counted.
	assert.Equal(t, 2, env.ws.DeleteAllCount())

	n := env.ws.DeleteAll()

	assert.Equal(t, 2, n)
	assert.Equal(t, []*Block{keep}, env.ws.AllBlocks(false))
	env.ws.Undo(false)
	assert.NotNil(t, env.ws.BlockByID("inner"))
	assert.NotNil(t, env.ws.BlockByID("p"))
}

func TestCleanUp(t *testing.T) {
	env := newTestWorkspace(t, Options{})
	a := env.newBlock(t, "stack", "a")
	b := env.newBlock(t, "stack", "b")
	fixed := env.newBlock(t, "stack", "fixed")
	require.NoError(t, a.MoveTo(at(40, 10)))
	require.NoError(t, b.MoveTo(at(300, 90)))
	require.NoError(t, fixed.MoveTo(at(0, 70)))
	fixed.SetMovable(false)
	env.ws.SetRenderer(&fixedRenderer{})
	env.ws.Render()
	env.reset()

	env.ws.CleanUp()

	gap := float64(DefaultCleanUpGap)
	assert.Equal(t, at(0, 0), a.XY())
	// b would overlap the fixed block, so it flows below it.
	assert.Equal(t, at(0, 70+40+gap), b.XY())
	assert.Equal(t, at(0, 70), fixed.XY())
	for _, e := range env.events {
		mv, ok := e.Payload.(*events.BlockMove)
		require.True(t, ok)
		assert.Equal(t, []string{"cleanup"}, mv.Reason)
	}
}

func TestBumpIntoBounds(t *testing.T) {
	env := newTestWorkspace(t, Options{})
	out := env.newBlock(t, "stack", "out")
	in := env.newBlock(t, "stack", "in")
	big := env.newBlock(t, "loop", "big")
	require.NoError(t, out.MoveTo(at(-50, 500)))
	require.NoError(t, in.MoveTo(at(100, 100)))
	require.NoError(t, big.MoveTo(at(10, 10)))
	env.ws.SetRenderer(&fixedRenderer{})
	env.ws.Render()
	big.size = geom.Size{Width: 100, Height: 400}
	c := env.ws.NewComment("far", "")
	require.NoError(t, c.MoveTo(at(900, 0)))

	moved := env.ws.BumpIntoBounds(geom.Rect{Top: 0, Left: 0, Right: 300, Bottom: 300})

	assert.Equal(t, 3, moved)
	assert.Equal(t, at(0, 260), out.XY())
	assert.Equal(t, at(100, 100), in.XY())
	assert.Equal(t, at(10, 0), big.XY(), "taller than the bounds aligns with the top")
	assert.Equal(t, at(100, 0), c.XY())
}

func TestBumpNeighbours(t *testing.T) {
	env := newTestWorkspace(t, Options{})
	a := env.newBlock(t, "stack", "a")
	b := env.newBlock(t, "stack", "b")
	require.NoError(t, b.MoveTo(at(5, 45)))
	env.ws.SetRenderer(&fixedRenderer{})
	env.ws.Render()
	env.reset()

	// b's previous sits 5px from a's next without being connected.
	a.BumpNeighbours()

	assert.Equal(t, at(5+DefaultSnapRadius-5, 45+DefaultSnapRadius-5), b.XY())
	assert.Equal(t, at(0, 0), a.XY())
	require.Len(t, env.events, 1)
	assert.Equal(t, []string{"bump"}, env.events[0].Payload.(*events.BlockMove).Reason)
}

func TestTopLists_RemovingAbsentEntryPanics(t *testing.T) {
	env := newTestWorkspace(t, Options{})
	parent := env.newBlock(t, "stack", "p")
	child := env.newBlock(t, "stack", "c")
	connect(t, parent.NextConnection(), child.PreviousConnection())

	assert.Len(t, env.ws.TopBlocks(false), 1)
	assert.Panics(t, func() { env.ws.removeTopBlock(child) })

	c := env.ws.NewComment("note", "")
	c.Dispose()
	assert.Panics(t, func() { env.ws.removeTopComment(c) })
}
