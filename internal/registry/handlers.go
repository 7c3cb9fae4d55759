package registry

import (
	"fmt"
	"log/slog"

	"github.com/specialistvlad/blockgraph/internal/workspace"
)

// RegisterBehavior registers the constructor of a per-block behaviour. The
// capability interfaces of the constructed value decide what blocks using it
// support.
func (r *Registry) RegisterBehavior(name string, newBehavior func() any) {
	if _, exists := r.BehaviorRegistry[name]; exists {
		panic(fmt.Sprintf("behavior with name '%s' already registered", name))
	}
	if newBehavior == nil {
		panic(fmt.Sprintf("behavior '%s' registered without a constructor", name))
	}
	slog.Debug("Registering block behavior.", "name", name)
	r.BehaviorRegistry[name] = newBehavior
}

// RegisterValidator registers a field validator manifests can refer to.
func (r *Registry) RegisterValidator(name string, v workspace.Validator) {
	if _, exists := r.ValidatorRegistry[name]; exists {
		panic(fmt.Sprintf("validator with name '%s' already registered", name))
	}
	if v == nil {
		panic(fmt.Sprintf("validator '%s' registered without a function", name))
	}
	slog.Debug("Registering field validator.", "name", name)
	r.ValidatorRegistry[name] = v
}
