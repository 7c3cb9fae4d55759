package text

import (
	"testing"

	"github.com/specialistvlad/blockgraph/internal/events"
	"github.com/specialistvlad/blockgraph/internal/registry"
	"github.com/specialistvlad/blockgraph/internal/testutil/blocktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText_SingleLine(t *testing.T) {
	env := blocktest.New(t, []registry.Module{&Module{}}, ".")
	b := env.Block(t, "text")
	assert.Equal(t, "", b.FieldValue("TEXT"))

	ok, err := b.SetFieldValue("TEXT", "one\ntwo\r\nthree")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "one two three", b.FieldValue("TEXT"))

	change, ok := env.Events[len(env.Events)-1].Payload.(*events.BlockChange)
	require.True(t, ok)
	assert.Equal(t, "one two three", change.NewValue)
}

func TestTextPrint_ShadowTemplate(t *testing.T) {
	env := blocktest.New(t, []registry.Module{&Module{}}, ".")
	b := env.Block(t, "text_print")

	shadow := b.Input("TEXT").Connection().TargetBlock()
	require.NotNil(t, shadow)
	assert.Equal(t, "abc", shadow.FieldValue("TEXT"))
	assert.Len(t, env.Workspace.AllBlocks(false), 2)

	ws := env.Reload(t)
	loaded := ws.BlockByID(b.ID())
	require.NotNil(t, loaded)
	assert.Equal(t, "abc", loaded.Input("TEXT").Connection().TargetBlock().FieldValue("TEXT"))
}
