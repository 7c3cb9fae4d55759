package registry

import (
	"context"
	"testing"

	"github.com/specialistvlad/blockgraph/internal/config"
	"github.com/specialistvlad/blockgraph/internal/ctxlog"
	"github.com/specialistvlad/blockgraph/internal/manifest"
	"github.com/specialistvlad/blockgraph/internal/testutil"
	"github.com/specialistvlad/blockgraph/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct{ n int }

func (c *counter) SaveExtraState(*workspace.Block) any { return map[string]any{"n": c.n} }
func (c *counter) LoadExtraState(_ *workspace.Block, s any) error {
	if m, ok := s.(map[string]any); ok {
		n, _ := m["n"].(float64)
		c.n = int(n)
	}
	return nil
}

const blocksHCL = `
block "num" {
  output { check = ["Number"] }
  input "dummy" "" {
    field "number" "NUM" { default = "7" }
  }
}

block "pick" {
  previous {}
  next {}
  behavior    = "counter"
  extra_state = true
  input "value" "X" {
    check = ["Number"]
    shadow "num" {
      fields = { NUM = 3 }
    }
  }
  input "dummy" "" {
    align = "centre"
    field "dropdown" "MODE" {
      options = [["up", "UP"], ["down", "DOWN"]]
      default = "DOWN"
    }
    field "checkbox" "ON" { default = true }
    field "input" "NAME" {
      default   = "x"
      validator = "upper"
    }
  }
}
`

func loadRegistry(t *testing.T, files map[string]string) (*Registry, error) {
	t.Helper()
	ctx := ctxlog.Discard(context.Background())
	r := New()
	r.RegisterBehavior("counter", func() any { return &counter{} })
	r.RegisterValidator("upper", func(v any) (any, bool) {
		s, _ := v.(string)
		if s == "" {
			return nil, false
		}
		return s + "!", true
	})
	root := testutil.WriteFiles(t, files)
	if _, err := r.LoadDefinitions(ctx, manifest.NewLoader(), root); err != nil {
		return nil, err
	}
	return r, r.ValidateRegistry(ctx)
}

func TestRegistry_BuildsWorkingTypes(t *testing.T) {
	r, err := loadRegistry(t, map[string]string{"blocks.hcl": blocksHCL})
	require.NoError(t, err)

	pick, ok := r.BlockType("pick")
	require.True(t, ok)
	again, _ := r.BlockType("pick")
	assert.Same(t, pick, again, "built types are cached")
	assert.True(t, pick.Previous)
	assert.False(t, pick.Output)
	require.Len(t, pick.Inputs, 2)
	assert.Equal(t, workspace.ValueInput, pick.Inputs[0].Kind)
	assert.Equal(t, workspace.AlignCentre, pick.Inputs[1].Align)

	_, ok = r.BlockType("missing")
	assert.False(t, ok)

	ws := workspace.New(ctxlog.Discard(context.Background()), r, workspace.Options{})
	b, err := ws.NewBlock("pick", "")
	require.NoError(t, err)
	assert.IsType(t, &counter{}, b.Behavior())
	assert.Equal(t, "DOWN", b.FieldValue("MODE"))
	assert.Equal(t, "TRUE", b.FieldValue("ON"))
	assert.Equal(t, "x", b.FieldValue("NAME"))

	ok, err = b.SetFieldValue("NAME", "go")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "go!", b.FieldValue("NAME"), "named validators are wired in")

	shadow := b.Input("X").Connection().TargetBlock()
	require.NotNil(t, shadow)
	assert.True(t, shadow.IsShadow())
	assert.Equal(t, 3.0, shadow.FieldValue("NUM"))

	n, err := ws.NewBlock("num", "")
	require.NoError(t, err)
	assert.Equal(t, 7.0, n.FieldValue("NUM"), "defaults convert to the field type")
}

func TestRegistry_DuplicateRegistrationPanics(t *testing.T) {
	r := New()
	r.RegisterBehavior("b", func() any { return nil })
	r.RegisterValidator("v", func(v any) (any, bool) { return v, true })

	assert.PanicsWithValue(t, "behavior with name 'b' already registered", func() {
		r.RegisterBehavior("b", func() any { return nil })
	})
	assert.PanicsWithValue(t, "validator with name 'v' already registered", func() {
		r.RegisterValidator("v", func(v any) (any, bool) { return v, true })
	})
	assert.Panics(t, func() { r.RegisterBehavior("nil", nil) })
}

func TestRegistry_PopulateResetsCache(t *testing.T) {
	r := New()
	r.PopulateDefinitionsFromModel(&config.Model{Blocks: map[string]*config.BlockDefinition{"a": {Type: "a"}}})
	first, _ := r.BlockType("a")
	assert.Empty(t, first.Colour)

	r.PopulateDefinitionsFromModel(&config.Model{Blocks: map[string]*config.BlockDefinition{"a": {Type: "a", Colour: "120"}}})
	second, _ := r.BlockType("a")
	assert.Equal(t, "120", second.Colour)
}

func TestValidateRegistry(t *testing.T) {
	testCases := []struct {
		name string
		hcl  string
		want []string
	}{
		{
			name: "output and previous",
			hcl:  `
block "x" {
  output {}
  previous {}
}`,
			want: []string{"block 'x': cannot have both an output and a previous connection"},
		},
		{
			name: "unknown behavior",
			hcl:  `block "x" { behavior = "nope" }`,
			want: []string{"block 'x': behavior 'nope' is not registered"},
		},
		{
			name: "undeclared capability",
			hcl:  `block "x" { behavior = "counter" }`,
			want: []string{"behavior 'counter' implements extra_state which is not declared in manifest"},
		},
		{
			name: "missing capability",
			hcl:  `
block "x" {
  behavior    = "counter"
  extra_state = true
  procedure   = true
}`,
			want: []string{"manifest declares procedure but behavior 'counter' does not implement it"},
		},
		{
			name: "capability without behavior",
			hcl:  `block "x" { extra_state = true }`,
			want: []string{"manifest declares capabilities but names no behavior"},
		},
		{
			name: "unknown validator and bad default",
			hcl:  `
block "x" {
  input "dummy" "" {
    field "number" "N" {
      default   = "many"
      validator = "nope"
    }
  }
}`,
			want: []string{
				"field 'N': validator 'nope' is not registered",
				"field 'N': default value is not a valid number",
			},
		},
		{
			name: "dropdown default outside options",
			hcl:  `
block "x" {
  input "dummy" "" {
    field "dropdown" "D" {
      options = [["a", "A"]]
      default = "B"
    }
  }
}`,
			want: []string{"field 'D': default 'B' is not one of the options"},
		},
		{
			name: "min above max",
			hcl:  `
block "x" {
  input "dummy" "" {
    field "number" "N" {
      min = 5
      max = 1
    }
  }
}`,
			want: []string{"field 'N': min 5 exceeds max 1"},
		},
		{
			name: "undefined shadow",
			hcl:  `
block "x" {
  input "value" "V" {
    shadow "ghost" {}
  }
}`,
			want: []string{"input 'V': shadow block type 'ghost' is not defined"},
		},
		{
			name: "shadow without output",
			hcl:  `
block "s" {}

block "x" {
  input "value" "V" {
    shadow "s" {}
  }
}`,
			want: []string{"shadow block type 's' has no output connection"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loadRegistry(t, map[string]string{"a.hcl": tc.hcl})
			require.Error(t, err)
			assert.ErrorContains(t, err, "registry validation failed")
			for _, want := range tc.want {
				assert.ErrorContains(t, err, want)
			}
		})
	}
}
