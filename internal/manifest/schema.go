package manifest

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/blockgraph/internal/relay"
)

// fileRoot decodes every top-level block a manifest may hold.
type fileRoot struct {
	Blocks    []*blockSchema        `hcl:"block,block"`
	Workspace []*workspaceSchema    `hcl:"workspace,block"`
	Renderers []*rendererSchema     `hcl:"renderer,block"`
	Relay     []*relay.SocketConfig `hcl:"relay,block"`
}

type blockSchema struct {
	Type         string            `hcl:"type,label"`
	Description  string            `hcl:"description,optional"`
	Colour       string            `hcl:"colour,optional"`
	Tooltip      string            `hcl:"tooltip,optional"`
	Style        string            `hcl:"style,optional"`
	Behavior     string            `hcl:"behavior,optional"`
	ExtraState   bool              `hcl:"extra_state,optional"`
	Procedure    bool              `hcl:"procedure,optional"`
	InputsInline *bool             `hcl:"inputs_inline,optional"`
	Output       *connectionSchema `hcl:"output,block"`
	Previous     *connectionSchema `hcl:"previous,block"`
	Next         *connectionSchema `hcl:"next,block"`
	Inputs       []*inputSchema    `hcl:"input,block"`
}

type connectionSchema struct {
	Check []string `hcl:"check,optional"`
}

type inputSchema struct {
	Kind   string         `hcl:"kind,label"`
	Name   string         `hcl:"name,label"`
	Check  []string       `hcl:"check,optional"`
	Align  string         `hcl:"align,optional"`
	Fields []*fieldSchema `hcl:"field,block"`
	Shadow *shadowSchema  `hcl:"shadow,block"`
}

type fieldSchema struct {
	Kind          string         `hcl:"kind,label"`
	Name          string         `hcl:"name,label"`
	Type          hcl.Expression `hcl:"type,optional"`
	Default       hcl.Expression `hcl:"default,optional"`
	Options       [][]string     `hcl:"options,optional"`
	Min           *float64       `hcl:"min,optional"`
	Max           *float64       `hcl:"max,optional"`
	Precision     float64        `hcl:"precision,optional"`
	VariableTypes []string       `hcl:"variable_types,optional"`
	Validator     string         `hcl:"validator,optional"`
}

type shadowSchema struct {
	Type   string         `hcl:"type,label"`
	Fields hcl.Expression `hcl:"fields,optional"`
}

type workspaceSchema struct {
	MaxBlocks           int            `hcl:"max_blocks,optional"`
	MaxInstances        map[string]int `hcl:"max_instances,optional"`
	RTL                 bool           `hcl:"rtl,optional"`
	ReadOnly            bool           `hcl:"read_only,optional"`
	HorizontalLayout    bool           `hcl:"horizontal_layout,optional"`
	Collapse            *bool          `hcl:"collapse,optional"`
	Disable             *bool          `hcl:"disable,optional"`
	Renderer            string         `hcl:"renderer,optional"`
	SnapRadius          float64        `hcl:"snap_radius,optional"`
	MaxUndo             int            `hcl:"max_undo,optional"`
	MaxTrashcanContents int            `hcl:"max_trashcan_contents,optional"`
}

type rendererSchema struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}
