package digest

import (
	"context"
	"testing"

	"github.com/specialistvlad/blockgraph/internal/ctxlog"
	"github.com/specialistvlad/blockgraph/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalJSON(t *testing.T) {
	got, err := CanonicalJSON(map[string]any{
		"b": []int{2, 1},
		"a": map[string]any{"z": "<&>", "y": 1.50},
	})
	require.NoError(t, err)

	assert.Equal(t, `{"a":{"y":1.5,"z":"<&>"},"b":[2,1]}`, string(got))
}

func TestCanonicalJSON_KeepsLargeIntegers(t *testing.T) {
	got, err := CanonicalJSON(map[string]int64{"n": 1 << 60})
	require.NoError(t, err)

	assert.Equal(t, `{"n":1152921504606846976}`, string(got))
}

func TestSum(t *testing.T) {
	a, err := Sum(map[string]int{"x": 1, "y": 2})
	require.NoError(t, err)
	b, err := Sum(map[string]any{"y": 2, "x": 1})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 2*Size)
	assert.Equal(t, "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262", Bytes(nil))

	_, err = Sum(func() {})
	assert.Error(t, err)
}

func TestWorkspace(t *testing.T) {
	types := workspace.TypeMap{"stack": {Name: "stack", Previous: true, Next: true}}
	ctx := ctxlog.Discard(context.Background())
	build := func(id string) *workspace.Workspace {
		ws := workspace.New(ctx, types, workspace.Options{ID: id})
		_, err := ws.NewBlock("stack", "s1")
		require.NoError(t, err)
		return ws
	}
	a, b := build("one"), build("two")

	da, err := Workspace(a)
	require.NoError(t, err)
	db, err := Workspace(b)
	require.NoError(t, err)
	assert.Equal(t, da, db, "the workspace id is not part of the saved state")

	_, err = b.NewBlock("stack", "s2")
	require.NoError(t, err)
	db, err = Workspace(b)
	require.NoError(t, err)
	assert.NotEqual(t, da, db)
}
