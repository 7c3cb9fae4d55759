package manifest

import (
	"context"
	"testing"

	"github.com/specialistvlad/blockgraph/internal/config"
	"github.com/specialistvlad/blockgraph/internal/ctxlog"
	"github.com/specialistvlad/blockgraph/internal/render"
	"github.com/specialistvlad/blockgraph/internal/state"
	"github.com/specialistvlad/blockgraph/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

const mathManifest = `
block "math_number" {
  description = "A number."
  colour      = "230"
  output { check = ["Number"] }
  input "dummy" "" {
    field "number" "NUM" {
      default   = 42
      min       = 0
      precision = 1
    }
  }
}

block "math_arithmetic" {
  output { check = ["Number"] }
  inputs_inline = true
  input "value" "A" {
    check = ["Number"]
    shadow "math_number" {
      fields = { NUM = 1 }
    }
  }
  input "value" "B" {
    check = ["Number"]
    align = "right"
    field "dropdown" "OP" {
      options = [["+", "ADD"], ["-", "MINUS"]]
    }
  }
}
`

func load(t *testing.T, files map[string]string) (*config.Model, error) {
	t.Helper()
	root := testutil.WriteFiles(t, files)
	return NewLoader().Load(ctxlog.Discard(context.Background()), root)
}

func TestLoad_Blocks(t *testing.T) {
	model, err := load(t, map[string]string{"math/manifest.hcl": mathManifest})
	require.NoError(t, err)

	require.Len(t, model.Blocks, 2)
	require.Len(t, model.Files, 1)
	assert.Nil(t, model.Workspace)

	num := model.Blocks["math_number"]
	require.NotNil(t, num)
	assert.Equal(t, "A number.", num.Description)
	assert.Equal(t, model.Files[0], num.Source)
	require.NotNil(t, num.Output)
	assert.Equal(t, []string{"Number"}, num.Output.Check)
	assert.Nil(t, num.Previous)

	require.Len(t, num.Inputs, 1)
	in := num.Inputs[0]
	assert.Equal(t, "dummy", in.Kind)
	assert.Empty(t, in.Name)
	require.Len(t, in.Fields, 1)
	f := in.Fields[0]
	assert.Equal(t, cty.Number, f.Type)
	require.NotNil(t, f.Default)
	assert.True(t, f.Default.Equals(cty.NumberIntVal(42)).True())
	require.NotNil(t, f.Min)
	assert.Equal(t, 0.0, *f.Min)
	assert.Nil(t, f.Max)
	assert.Equal(t, 1.0, f.Precision)

	arith := model.Blocks["math_arithmetic"]
	require.NotNil(t, arith)
	assert.True(t, state.IsTrue(arith.InputsInline))
	require.Len(t, arith.Inputs, 2)
	require.NotNil(t, arith.Inputs[0].Shadow)
	assert.Equal(t, &state.Block{Type: "math_number", Fields: map[string]any{"NUM": 1.0}}, arith.Inputs[0].Shadow)
	assert.Equal(t, "right", arith.Inputs[1].Align)
	op := arith.Inputs[1].Fields[0]
	assert.Equal(t, cty.String, op.Type)
	assert.Nil(t, op.Default)
	assert.Equal(t, []config.Option{{Text: "+", Value: "ADD"}, {Text: "-", Value: "MINUS"}}, op.Options)
}

func TestLoad_WorkspaceAndRenderers(t *testing.T) {
	model, err := load(t, map[string]string{
		"app.hcl": `
workspace {
  max_blocks    = 10
  max_instances = { math_number = 2 }
  collapse      = false
  renderer      = "zelos"
}

renderer "zelos" {
  notch_width = 40
}
`,
	})
	require.NoError(t, err)

	require.NotNil(t, model.Workspace)
	assert.Equal(t, 10, model.Workspace.MaxBlocks)
	assert.Equal(t, map[string]int{"math_number": 2}, model.Workspace.MaxInstances)
	assert.False(t, model.Workspace.Collapse)
	assert.True(t, model.Workspace.Disable, "unset switches keep their defaults")
	assert.Equal(t, "zelos", model.Workspace.Renderer)

	want := render.ZelosConstants()
	want.NotchWidth = 40
	assert.Equal(t, want, model.Renderers["zelos"])
}

func TestLoad_ExcludeAndMultipleFiles(t *testing.T) {
	root := testutil.WriteFiles(t, map[string]string{
		"a/manifest.hcl":    `block "a" {}`,
		"b/manifest.hcl":    `block "b" {}`,
		"skip/manifest.hcl": `block "broken" {`,
		"b/notes.txt":       "not a manifest",
	})

	model, err := NewLoader("skip/**").Load(ctxlog.Discard(context.Background()), root)
	require.NoError(t, err)

	assert.Len(t, model.Files, 2)
	assert.Contains(t, model.Blocks, "a")
	assert.Contains(t, model.Blocks, "b")
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{
			name:  "duplicate block type",
			files: map[string]string{"a.hcl": `block "x" {}`, "b.hcl": `block "x" {}`},
			want:  "block type 'x' already defined",
		},
		{
			name:  "two workspace blocks",
			files: map[string]string{"a.hcl": "workspace {}\nworkspace {}"},
			want:  "workspace options defined more than once",
		},
		{
			name:  "unknown renderer",
			files: map[string]string{"a.hcl": `renderer "fancy" {}`},
			want:  `unknown renderer "fancy"`,
		},
		{
			name:  "unknown renderer constant",
			files: map[string]string{"a.hcl": `renderer "classic" { wobble = 1 }`},
			want:  "in renderer 'classic'",
		},
		{
			name:  "unknown input kind",
			files: map[string]string{"a.hcl": `
block "x" {
  input "sideways" "A" {}
}`},
			want:  `unknown kind "sideways"`,
		},
		{
			name:  "unnamed value input",
			files: map[string]string{"a.hcl": `
block "x" {
  input "value" "" {}
}`},
			want:  "value inputs must be named",
		},
		{
			name:  "duplicate input",
			files: map[string]string{"a.hcl": `
block "x" {
  input "value" "A" {}
  input "value" "A" {}
}`},
			want:  "duplicate input 'A'",
		},
		{
			name:  "bad option pair",
			files: map[string]string{"a.hcl": `
block "x" {
  input "dummy" "" {
    field "dropdown" "D" { options = [["only"]] }
  }
}`},
			want:  "option 0 must be a [text, value] pair",
		},
		{
			name:  "dropdown without options",
			files: map[string]string{"a.hcl": `
block "x" {
  input "dummy" "" {
    field "dropdown" "D" {}
  }
}`},
			want:  "dropdown field 'D' has no options",
		},
		{
			name:  "bad type expression",
			files: map[string]string{"a.hcl": `
block "x" {
  input "dummy" "" {
    field "input" "T" { type = tuple(string) }
  }
}`},
			want:  `unknown type constructor function "tuple"`,
		},
		{
			name:  "shadow on dummy input",
			files: map[string]string{"a.hcl": `
block "x" {
  input "dummy" "" {
    shadow "y" {}
  }
}`},
			want:  "dummy inputs cannot hold a shadow",
		},
		{
			name:  "unknown top-level block",
			files: map[string]string{"a.hcl": `step "x" {}`},
			want:  "failed to decode HCL file",
		},
		{
			name:  "syntax error",
			files: map[string]string{"a.hcl": `block "x" {`},
			want:  "failed to parse HCL file",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := load(t, tc.files)
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

func TestTypeExprToCtyType(t *testing.T) {
	model, err := load(t, map[string]string{"a.hcl": `
block "x" {
  input "dummy" "" {
    field "input" "S" { type = string }
    field "input" "L" { type = list(number) }
    field "input" "M" { type = map(bool) }
    field "input" "A" { type = any }
  }
}`})
	require.NoError(t, err)

	fields := model.Blocks["x"].Inputs[0].Fields
	assert.Equal(t, cty.String, fields[0].Type)
	assert.Equal(t, cty.List(cty.Number), fields[1].Type)
	assert.Equal(t, cty.Map(cty.Bool), fields[2].Type)
	assert.Equal(t, cty.DynamicPseudoType, fields[3].Type)
}

func TestLoad_Relay(t *testing.T) {
	model, err := load(t, map[string]string{"relay.hcl": `
relay {
  url       = "http://localhost:3000"
  namespace = "/editor"
}
`})
	require.NoError(t, err)
	require.NotNil(t, model.Relay)
	assert.Equal(t, "http://localhost:3000", model.Relay.URL)
	assert.Equal(t, "/editor", model.Relay.Namespace)
	assert.False(t, model.Relay.InsecureSkipVerify)

	_, err = load(t, map[string]string{"a.hcl": "relay {\n  url = \"a\"\n}\n", "b.hcl": "relay {\n  url = \"b\"\n}\n"})
	assert.ErrorContains(t, err, "relay defined more than once")
}
