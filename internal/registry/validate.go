package registry

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/specialistvlad/blockgraph/internal/config"
	"github.com/specialistvlad/blockgraph/internal/ctxlog"
	"github.com/specialistvlad/blockgraph/internal/workspace"
	"github.com/zclconf/go-cty/cty"
)

// ValidateRegistry performs a strict parity check between manifests and Go
// code: every referenced behaviour and validator must be registered, declared
// capabilities must match what the behaviour implements, and defaults must
// fit their declared types.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	names := r.TypeNames()
	slices.Sort(names)
	for _, name := range names {
		def := r.DefinitionRegistry[name]
		errs = append(errs, r.validateConnections(def)...)
		errs = append(errs, r.validateBehavior(def)...)

		for _, in := range def.Inputs {
			errs = append(errs, r.validateShadow(def, in)...)
			for _, f := range in.Fields {
				if f.Type.Equals(cty.DynamicPseudoType) {
					logger.Warn("Manifest for block has field with 'type = any', which disables static type checking.", "block", name, "field", f.Name)
				}
				errs = append(errs, r.validateField(def, f)...)
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func (r *Registry) validateConnections(def *config.BlockDefinition) []string {
	if def.Output != nil && def.Previous != nil {
		return []string{fmt.Sprintf("block '%s': cannot have both an output and a previous connection", def.Type)}
	}
	return nil
}

func (r *Registry) validateBehavior(def *config.BlockDefinition) []string {
	if def.Behavior == "" {
		if def.ExtraState || def.Procedure {
			return []string{fmt.Sprintf("block '%s': manifest declares capabilities but names no behavior", def.Type)}
		}
		return nil
	}
	newBehavior, ok := r.BehaviorRegistry[def.Behavior]
	if !ok {
		return []string{fmt.Sprintf("block '%s': behavior '%s' is not registered", def.Type, def.Behavior)}
	}

	var errs []string
	behavior := newBehavior()
	checks := []struct {
		capability string
		declared   bool
		implements bool
	}{
		{"extra_state", def.ExtraState, implements[workspace.ExtraStateBehavior](behavior)},
		{"procedure", def.Procedure, implements[workspace.ProcedureBehavior](behavior)},
	}
	for _, c := range checks {
		switch {
		case c.declared && !c.implements:
			errs = append(errs, fmt.Sprintf("block '%s': manifest declares %s but behavior '%s' does not implement it", def.Type, c.capability, def.Behavior))
		case !c.declared && c.implements:
			errs = append(errs, fmt.Sprintf("block '%s': behavior '%s' implements %s which is not declared in manifest", def.Type, def.Behavior, c.capability))
		}
	}
	return errs
}

func implements[T any](v any) bool {
	_, ok := v.(T)
	return ok
}

func (r *Registry) validateShadow(def *config.BlockDefinition, in *config.InputDefinition) []string {
	if in.Shadow == nil {
		return nil
	}
	shadow, ok := r.DefinitionRegistry[in.Shadow.Type]
	if !ok {
		return []string{fmt.Sprintf("block '%s', input '%s': shadow block type '%s' is not defined", def.Type, in.Name, in.Shadow.Type)}
	}
	if in.Kind == "value" && shadow.Output == nil {
		return []string{fmt.Sprintf("block '%s', input '%s': shadow block type '%s' has no output connection", def.Type, in.Name, shadow.Type)}
	}
	if in.Kind == "statement" && shadow.Previous == nil {
		return []string{fmt.Sprintf("block '%s', input '%s': shadow block type '%s' has no previous connection", def.Type, in.Name, shadow.Type)}
	}
	return nil
}

func (r *Registry) validateField(def *config.BlockDefinition, f *config.FieldDefinition) []string {
	var errs []string
	if f.Validator != "" {
		if _, ok := r.ValidatorRegistry[f.Validator]; !ok {
			errs = append(errs, fmt.Sprintf("block '%s', field '%s': validator '%s' is not registered", def.Type, f.Name, f.Validator))
		}
	}
	v, err := defaultValue(f)
	if err != nil {
		return append(errs, fmt.Sprintf("block '%s', field '%s': %v", def.Type, f.Name, err))
	}
	if f.Kind == "dropdown" && v != nil {
		s, _ := v.(string)
		if !slices.ContainsFunc(f.Options, func(o config.Option) bool { return o.Value == s }) {
			errs = append(errs, fmt.Sprintf("block '%s', field '%s': default '%v' is not one of the options", def.Type, f.Name, v))
		}
	}
	if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
		errs = append(errs, fmt.Sprintf("block '%s', field '%s': min %v exceeds max %v", def.Type, f.Name, *f.Min, *f.Max))
	}
	return errs
}
