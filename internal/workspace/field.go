package workspace

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/specialistvlad/blockgraph/internal/events"
)

// FieldKind selects a field's class behaviour.
type FieldKind string

const (
	FieldLabel    FieldKind = "label"
	FieldInput    FieldKind = "input"
	FieldNumber   FieldKind = "number"
	FieldCheckbox FieldKind = "checkbox"
	FieldDropdown FieldKind = "dropdown"
	FieldVariable FieldKind = "variable"
	FieldImage    FieldKind = "image"
)

// Validator vets a proposed field value. Returning false rejects the
// proposal; otherwise the returned value replaces it.
type Validator func(v any) (any, bool)

// Option is one dropdown entry.
type Option struct {
	Text  string
	Value string
}

// FieldSpec declares a field. Value is the initial value; for labels it is
// the text.
type FieldSpec struct {
	Kind      FieldKind
	Name      string
	Value     any
	Options   []Option
	Min       *float64
	Max       *float64
	Precision float64
	// VariableTypes restricts a variable field; empty accepts the untyped
	// variable only.
	VariableTypes []string
	Validator     Validator
}

// Field is a value holder inside an input row.
type Field struct {
	spec  FieldSpec
	block *Block
	value any
	// validator is the instance validator; the class validator comes from
	// the kind.
	validator Validator
}

func newField(spec FieldSpec) *Field {
	f := &Field{spec: spec, validator: spec.Validator}
	f.value = f.initialValue()
	return f
}

func (f *Field) initialValue() any {
	switch f.spec.Kind {
	case FieldNumber:
		if v, ok := f.classValidate(f.spec.Value); ok {
			return v
		}
		return 0.0
	case FieldCheckbox:
		if v, ok := f.classValidate(f.spec.Value); ok {
			return v
		}
		return "FALSE"
	case FieldDropdown:
		if f.spec.Value == nil && len(f.spec.Options) > 0 {
			return f.spec.Options[0].Value
		}
	case FieldInput:
		if f.spec.Value == nil {
			return ""
		}
	case FieldVariable:
		return nil
	}
	return f.spec.Value
}

// Name returns the field name; labels may be unnamed.
func (f *Field) Name() string { return f.spec.Name }

// Kind returns the field kind.
func (f *Field) Kind() FieldKind { return f.spec.Kind }

// Block returns the owning block.
func (f *Field) Block() *Block { return f.block }

// Value returns the stored value.
func (f *Field) Value() any { return f.value }

// Options returns the dropdown entries.
func (f *Field) Options() []Option { return slices.Clone(f.spec.Options) }

// IsSerializable reports whether the value is saved with the block.
func (f *Field) IsSerializable() bool {
	return f.spec.Name != "" && f.spec.Kind != FieldLabel && f.spec.Kind != FieldImage
}

// SetValidator installs the instance validator.
func (f *Field) SetValidator(v Validator) { f.validator = v }

// Text is the human-readable form of the value, as rendered.
func (f *Field) Text() string {
	switch f.spec.Kind {
	case FieldDropdown:
		for _, o := range f.spec.Options {
			if o.Value == f.value {
				return o.Text
			}
		}
	case FieldNumber:
		if n, ok := f.value.(float64); ok {
			return strconv.FormatFloat(n, 'f', -1, 64)
		}
	case FieldVariable:
		if v := f.Variable(); v != nil {
			return v.Name
		}
		return ""
	case FieldCheckbox:
		return ""
	}
	if f.value == nil {
		return ""
	}
	return fmt.Sprint(f.value)
}

// Variable returns the variable a variable field refers to.
func (f *Field) Variable() *Variable {
	id, _ := f.value.(string)
	if f.spec.Kind != FieldVariable || id == "" || f.block == nil {
		return nil
	}
	return f.block.ws.lookupVariable(id)
}

// SetValue proposes a new value. nil is ignored. The class validator runs
// first, then the instance validator; a rejection by either leaves the field
// untouched and fires nothing. It reports whether the proposal was accepted.
func (f *Field) SetValue(v any) bool {
	if v == nil {
		return false
	}
	v, ok := f.classValidate(v)
	if !ok {
		return false
	}
	if f.validator != nil {
		if v, ok = f.validator(v); !ok {
			return false
		}
	}
	b := f.block
	if b != nil && b.disposed {
		return false
	}
	old := f.value
	if events.ValuesEqual(old, v) {
		return true
	}
	f.value = v
	if b == nil {
		return true
	}
	b.ws.markDirty(b)
	b.ws.fireFor(&events.BlockChange{
		BlockID:  b.id,
		Element:  events.ElementField,
		Name:     f.spec.Name,
		OldValue: old,
		NewValue: v,
	})
	return true
}

func (f *Field) classValidate(v any) (any, bool) {
	switch f.spec.Kind {
	case FieldInput:
		return fmt.Sprint(v), true
	case FieldNumber:
		return f.validateNumber(v)
	case FieldCheckbox:
		switch x := v.(type) {
		case bool:
			if x {
				return "TRUE", true
			}
			return "FALSE", true
		case string:
			switch strings.ToUpper(x) {
			case "TRUE":
				return "TRUE", true
			case "FALSE":
				return "FALSE", true
			}
		}
		return nil, false
	case FieldDropdown:
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		for _, o := range f.spec.Options {
			if o.Value == s {
				return s, true
			}
		}
		return nil, false
	case FieldVariable:
		return f.validateVariable(v)
	}
	return v, true
}

func (f *Field) validateNumber(v any) (any, bool) {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case float32:
		n = float64(x)
	case int:
		n = float64(x)
	case int8:
		n = float64(x)
	case int16:
		n = float64(x)
	case int32:
		n = float64(x)
	case int64:
		n = float64(x)
	case uint:
		n = float64(x)
	case uint8:
		n = float64(x)
	case uint16:
		n = float64(x)
	case uint32:
		n = float64(x)
	case uint64:
		n = float64(x)
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(x), ",", "")
		switch strings.ToLower(s) {
		case "infinity", "inf":
			s = "Inf"
		case "-infinity", "-inf":
			s = "-Inf"
		}
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		n = p
	default:
		return nil, false
	}
	if math.IsNaN(n) {
		return nil, false
	}
	if f.spec.Min != nil && n < *f.spec.Min {
		n = *f.spec.Min
	}
	if f.spec.Max != nil && n > *f.spec.Max {
		n = *f.spec.Max
	}
	if p := f.spec.Precision; p > 0 {
		n = math.Round(n/p) * p
		// Trim float noise such as 0.30000000000000004.
		if decimals := precisionDecimals(p); decimals >= 0 {
			n, _ = strconv.ParseFloat(strconv.FormatFloat(n, 'f', decimals, 64), 64)
		}
	}
	return n, true
}

func precisionDecimals(p float64) int {
	s := strconv.FormatFloat(p, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 0
}

// validateVariable accepts a variable id whose type the field allows.
func (f *Field) validateVariable(v any) (any, bool) {
	id, ok := v.(string)
	if !ok || f.block == nil {
		return nil, false
	}
	variable := f.block.ws.lookupVariable(id)
	if variable == nil {
		return nil, false
	}
	types := f.spec.VariableTypes
	if len(types) == 0 {
		types = []string{""}
	}
	if !slices.Contains(types, variable.Type) {
		return nil, false
	}
	return id, true
}

// saveState is the JSON form of the value. Variable fields save the whole
// variable so a workspace without it can recreate it.
func (f *Field) saveState() any {
	if f.spec.Kind == FieldVariable {
		v := f.Variable()
		if v == nil {
			return nil
		}
		out := map[string]any{"id": v.ID, "name": v.Name}
		if v.Type != "" {
			out["type"] = v.Type
		}
		return out
	}
	return f.value
}

// loadState applies a saved value, creating referenced variables on demand.
func (f *Field) loadState(s any) error {
	if f.spec.Kind == FieldVariable {
		id, err := f.loadVariableState(s)
		if err != nil {
			return err
		}
		s = id
	}
	if !f.SetValue(s) {
		f.block.ws.logger.Warn("Ignoring rejected field value", "block", f.block.id, "field", f.spec.Name, "value", s)
	}
	return nil
}

func (f *Field) loadVariableState(s any) (string, error) {
	ws := f.block.ws
	switch x := s.(type) {
	case string:
		return x, nil
	case map[string]any:
		id, _ := x["id"].(string)
		name, _ := x["name"].(string)
		typ, _ := x["type"].(string)
		if typ == "" && len(f.spec.VariableTypes) > 0 {
			typ = f.spec.VariableTypes[0]
		}
		v, err := ws.getOrCreateVariable(id, name, typ)
		if err != nil {
			return "", fmt.Errorf("field %q: %w", f.spec.Name, err)
		}
		return v.ID, nil
	}
	return "", fmt.Errorf("field %q: unsupported variable state %T", f.spec.Name, s)
}
