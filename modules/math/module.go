// Package math provides the number and arithmetic blocks.
package math

import (
	gomath "math"

	"github.com/specialistvlad/blockgraph/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the validators used by manifest.hcl.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterValidator("math_whole_number", WholeNumber)
}

// WholeNumber rounds a number field's value to the nearest integer. The
// number class validator has already clamped it to the field's range.
func WholeNumber(v any) (any, bool) {
	n, ok := v.(float64)
	if !ok || gomath.IsNaN(n) {
		return nil, false
	}
	return gomath.Round(n), true
}
