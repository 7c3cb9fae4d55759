// This file translates the HCL block schema into the format-agnostic model.

package manifest

import (
	"context"
	"fmt"
	"slices"

	"github.com/specialistvlad/blockgraph/internal/config"
	"github.com/specialistvlad/blockgraph/internal/ctxlog"
	"github.com/specialistvlad/blockgraph/internal/state"
)

var (
	inputKinds = []string{"value", "statement", "dummy", "end_row"}
	fieldKinds = []string{"label", "input", "number", "checkbox", "dropdown", "variable", "image"}
	aligns     = []string{"", "left", "centre", "center", "right"}
)

func translateBlock(ctx context.Context, s *blockSchema) (*config.BlockDefinition, error) {
	logger := ctxlog.FromContext(ctx).With("block_type", s.Type)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Translating HCL block definition.")

	if s.Type == "" {
		return nil, fmt.Errorf("block type name must not be empty")
	}
	def := &config.BlockDefinition{
		Type:         s.Type,
		Description:  s.Description,
		Colour:       s.Colour,
		Tooltip:      s.Tooltip,
		Style:        s.Style,
		Behavior:     s.Behavior,
		ExtraState:   s.ExtraState,
		Procedure:    s.Procedure,
		InputsInline: s.InputsInline,
		Output:       translateConnection(s.Output),
		Previous:     translateConnection(s.Previous),
		Next:         translateConnection(s.Next),
	}
	names := make(map[string]struct{})
	for _, in := range s.Inputs {
		if in.Name != "" {
			if _, dup := names[in.Name]; dup {
				return nil, fmt.Errorf("in block '%s': duplicate input '%s'", s.Type, in.Name)
			}
			names[in.Name] = struct{}{}
		}
		translated, err := translateInput(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("in block '%s': %w", s.Type, err)
		}
		def.Inputs = append(def.Inputs, translated)
	}
	return def, nil
}

func translateConnection(s *connectionSchema) *config.ConnectionDefinition {
	if s == nil {
		return nil
	}
	return &config.ConnectionDefinition{Check: s.Check}
}

func translateInput(ctx context.Context, s *inputSchema) (*config.InputDefinition, error) {
	if !slices.Contains(inputKinds, s.Kind) {
		return nil, fmt.Errorf("input '%s': unknown kind %q (known: %v)", s.Name, s.Kind, inputKinds)
	}
	if !slices.Contains(aligns, s.Align) {
		return nil, fmt.Errorf("input '%s': unknown align %q", s.Name, s.Align)
	}
	if (s.Kind == "value" || s.Kind == "statement") && s.Name == "" {
		return nil, fmt.Errorf("%s inputs must be named", s.Kind)
	}
	in := &config.InputDefinition{Kind: s.Kind, Name: s.Name, Check: s.Check, Align: s.Align}
	for _, f := range s.Fields {
		field, err := translateField(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("input '%s': %w", s.Name, err)
		}
		in.Fields = append(in.Fields, field)
	}
	if s.Shadow != nil {
		if s.Kind != "value" && s.Kind != "statement" {
			return nil, fmt.Errorf("input '%s': %s inputs cannot hold a shadow", s.Name, s.Kind)
		}
		shadow, err := translateShadow(ctx, s.Shadow)
		if err != nil {
			return nil, fmt.Errorf("input '%s': %w", s.Name, err)
		}
		in.Shadow = shadow
	}
	return in, nil
}

func translateField(ctx context.Context, s *fieldSchema) (*config.FieldDefinition, error) {
	if !slices.Contains(fieldKinds, s.Kind) {
		return nil, fmt.Errorf("field '%s': unknown kind %q (known: %v)", s.Name, s.Kind, fieldKinds)
	}
	f := &config.FieldDefinition{
		Kind:          s.Kind,
		Name:          s.Name,
		Type:          kindType(s.Kind),
		Min:           s.Min,
		Max:           s.Max,
		Precision:     s.Precision,
		VariableTypes: s.VariableTypes,
		Validator:     s.Validator,
	}
	if isExprDefined(ctx, s.Type, "type") {
		ty, err := typeExprToCtyType(ctx, s.Type)
		if err != nil {
			return nil, fmt.Errorf("field '%s': %w", s.Name, err)
		}
		f.Type = ty
	}
	if isExprDefined(ctx, s.Default, "default") {
		val, err := literalValue(s.Default)
		if err != nil {
			return nil, fmt.Errorf("invalid default value for field '%s': %w", s.Name, err)
		}
		if !val.IsNull() {
			f.Default = &val
		}
	}
	for i, pair := range s.Options {
		if len(pair) != 2 {
			return nil, fmt.Errorf("field '%s': option %d must be a [text, value] pair", s.Name, i)
		}
		f.Options = append(f.Options, config.Option{Text: pair[0], Value: pair[1]})
	}
	if s.Kind == "dropdown" && len(f.Options) == 0 {
		return nil, fmt.Errorf("dropdown field '%s' has no options", s.Name)
	}
	return f, nil
}

func translateShadow(ctx context.Context, s *shadowSchema) (*state.Block, error) {
	st := &state.Block{Type: s.Type}
	if !isExprDefined(ctx, s.Fields, "fields") {
		return st, nil
	}
	val, err := literalValue(s.Fields)
	if err != nil {
		return nil, fmt.Errorf("invalid shadow fields: %w", err)
	}
	native, err := config.ToNative(val)
	if err != nil {
		return nil, fmt.Errorf("invalid shadow fields: %w", err)
	}
	fields, ok := native.(map[string]any)
	if !ok && native != nil {
		return nil, fmt.Errorf("shadow fields must be an object, got %s", val.Type().FriendlyName())
	}
	st.Fields = fields
	return st, nil
}

func translateWorkspace(s *workspaceSchema) *config.WorkspaceOptions {
	opts := config.DefaultWorkspaceOptions()
	opts.MaxBlocks = s.MaxBlocks
	opts.MaxInstances = s.MaxInstances
	opts.RTL = s.RTL
	opts.ReadOnly = s.ReadOnly
	opts.HorizontalLayout = s.HorizontalLayout
	if s.Collapse != nil {
		opts.Collapse = *s.Collapse
	}
	if s.Disable != nil {
		opts.Disable = *s.Disable
	}
	if s.Renderer != "" {
		opts.Renderer = s.Renderer
	}
	opts.SnapRadius = s.SnapRadius
	opts.MaxUndo = s.MaxUndo
	opts.MaxTrashcanContents = s.MaxTrashcanContents
	return opts
}
