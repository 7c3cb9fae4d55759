package registry

import (
	"fmt"

	"github.com/specialistvlad/blockgraph/internal/config"
	"github.com/specialistvlad/blockgraph/internal/workspace"
	"github.com/zclconf/go-cty/cty/convert"
)

var inputKinds = map[string]workspace.InputKind{
	"value":     workspace.ValueInput,
	"statement": workspace.StatementInput,
	"dummy":     workspace.DummyInput,
	"end_row":   workspace.EndRowInput,
}

var aligns = map[string]workspace.Align{
	"":       workspace.AlignLeft,
	"left":   workspace.AlignLeft,
	"centre": workspace.AlignCentre,
	"center": workspace.AlignCentre,
	"right":  workspace.AlignRight,
}

// buildType turns a definition into the workspace's type. Unknown names
// degrade to zero values; ValidateRegistry reports them.
func (r *Registry) buildType(def *config.BlockDefinition) *workspace.BlockType {
	t := &workspace.BlockType{
		Name:         def.Type,
		InputsInline: def.InputsInline,
		Colour:       def.Colour,
		Tooltip:      def.Tooltip,
		Style:        def.Style,
		NewBehavior:  r.BehaviorRegistry[def.Behavior],
	}
	if def.Output != nil {
		t.Output, t.OutputCheck = true, def.Output.Check
	}
	if def.Previous != nil {
		t.Previous, t.PreviousCheck = true, def.Previous.Check
	}
	if def.Next != nil {
		t.Next, t.NextCheck = true, def.Next.Check
	}
	for _, in := range def.Inputs {
		spec := workspace.InputSpec{
			Kind:  inputKinds[in.Kind],
			Name:  in.Name,
			Check: in.Check,
			Align: aligns[in.Align],
		}
		if in.Shadow != nil {
			spec.Shadow = in.Shadow.Clone()
		}
		for _, f := range in.Fields {
			spec.Fields = append(spec.Fields, r.buildField(f))
		}
		t.Inputs = append(t.Inputs, spec)
	}
	return t
}

func (r *Registry) buildField(f *config.FieldDefinition) workspace.FieldSpec {
	spec := workspace.FieldSpec{
		Kind:          workspace.FieldKind(f.Kind),
		Name:          f.Name,
		Min:           f.Min,
		Max:           f.Max,
		Precision:     f.Precision,
		VariableTypes: f.VariableTypes,
		Validator:     r.ValidatorRegistry[f.Validator],
	}
	for _, o := range f.Options {
		spec.Options = append(spec.Options, workspace.Option{Text: o.Text, Value: o.Value})
	}
	if v, err := defaultValue(f); err == nil {
		spec.Value = v
	}
	return spec
}

// defaultValue converts a field's manifest default to its declared type and
// then to a plain Go value.
func defaultValue(f *config.FieldDefinition) (any, error) {
	if f.Default == nil {
		return nil, nil
	}
	val, err := convert.Convert(*f.Default, f.Type)
	if err != nil {
		return nil, fmt.Errorf("default value is not a valid %s: %w", f.Type.FriendlyName(), err)
	}
	return config.ToNative(val)
}
