// Package procedures provides procedure definition and call blocks. Both
// bind to a procedure model in the workspace's procedure map; the binding
// travels in the block's extra state.
package procedures

import (
	"strings"

	"github.com/specialistvlad/blockgraph/internal/registry"
)

const (
	DefinitionType = "procedures_defnoreturn"
	CallType       = "procedures_callnoreturn"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the behaviours and validators used by manifest.hcl.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterBehavior("procedures_def", func() any { return new(Definition) })
	r.RegisterBehavior("procedures_call", func() any { return new(Call) })
	r.RegisterValidator("procedures_name", validateName)
}

// validateName trims a procedure name and rejects empty ones.
func validateName(v any) (any, bool) {
	s, _ := v.(string)
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return nil, false
	}
	return s, true
}
