// Package logic provides the conditional and comparison blocks.
package logic

import "github.com/specialistvlad/blockgraph/internal/registry"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the behaviours used by manifest.hcl.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterBehavior("controls_if", func() any { return new(IfBehavior) })
}
