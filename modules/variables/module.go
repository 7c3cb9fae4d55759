// Package variables provides the variable getter and setter blocks. They are
// plain manifest blocks: variable fields and the workspace variable map do
// all the work.
package variables

import "github.com/specialistvlad/blockgraph/internal/registry"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register implements registry.Module. The variable blocks need no Go code.
func (m *Module) Register(*registry.Registry) {}
