package config

import (
	"github.com/specialistvlad/blockgraph/internal/relay"
	"github.com/specialistvlad/blockgraph/internal/render"
	"github.com/specialistvlad/blockgraph/internal/state"
	"github.com/zclconf/go-cty/cty"
)

// Model is the unified, format-agnostic representation of every loaded
// manifest.
type Model struct {
	Blocks map[string]*BlockDefinition
	// Workspace is nil when no manifest sets workspace options.
	Workspace *WorkspaceOptions
	// Renderers holds the constants of every configured renderer, built
	// defaults with manifest overrides applied.
	Renderers map[string]render.Constants
	// Relay is the socket.io peer to synchronize with, if any.
	Relay *relay.SocketConfig
	// Files lists the manifests the model was built from.
	Files []string
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{
		Blocks:    make(map[string]*BlockDefinition),
		Renderers: make(map[string]render.Constants),
	}
}

// BlockDefinition is the format-agnostic representation of a block type.
type BlockDefinition struct {
	Type        string
	Description string

	Output   *ConnectionDefinition
	Previous *ConnectionDefinition
	Next     *ConnectionDefinition

	Inputs       []*InputDefinition
	InputsInline *bool

	Colour  string
	Tooltip string
	Style   string

	// Behavior names the Go behaviour registered for the type, if any.
	Behavior string
	// ExtraState and Procedure declare capabilities the behaviour must
	// provide.
	ExtraState bool
	Procedure  bool

	// Source is the manifest file the definition came from.
	Source string
}

// ConnectionDefinition declares an output, previous or next connection.
type ConnectionDefinition struct {
	Check []string
}

// InputDefinition declares one input row.
type InputDefinition struct {
	Kind   string
	Name   string
	Check  []string
	Align  string
	Fields []*FieldDefinition
	Shadow *state.Block
}

// FieldDefinition declares one field.
type FieldDefinition struct {
	Kind string
	Name string
	// Type is the value type; the kind decides it when the manifest is silent.
	Type    cty.Type
	Default *cty.Value
	Options []Option

	Min       *float64
	Max       *float64
	Precision float64

	VariableTypes []string
	// Validator names a registered field validator.
	Validator string
}

// Option is one dropdown entry.
type Option struct {
	Text  string
	Value string
}

// WorkspaceOptions are the manifest-level workspace settings.
type WorkspaceOptions struct {
	MaxBlocks    int
	MaxInstances map[string]int

	RTL              bool
	ReadOnly         bool
	HorizontalLayout bool
	// Collapse and Disable allow the matching context-menu actions.
	Collapse bool
	Disable  bool

	Renderer            string
	SnapRadius          float64
	MaxUndo             int
	MaxTrashcanContents int
}

// DefaultWorkspaceOptions returns the settings used when no manifest has a
// workspace block.
func DefaultWorkspaceOptions() *WorkspaceOptions {
	return &WorkspaceOptions{Collapse: true, Disable: true, Renderer: render.DefaultName}
}
