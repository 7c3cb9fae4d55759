package registry

import (
	"sync"

	"github.com/specialistvlad/blockgraph/internal/config"
	"github.com/specialistvlad/blockgraph/internal/workspace"
)

// Module is the interface that all block modules must implement to be
// registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the registered behaviours, validators and definitions for a
// single application instance.
type Registry struct {
	BehaviorRegistry   map[string]func() any
	ValidatorRegistry  map[string]workspace.Validator
	DefinitionRegistry map[string]*config.BlockDefinition

	mu    sync.Mutex
	types map[string]*workspace.BlockType
}

var _ workspace.TypeRegistry = (*Registry)(nil)

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		BehaviorRegistry:   make(map[string]func() any),
		ValidatorRegistry:  make(map[string]workspace.Validator),
		DefinitionRegistry: make(map[string]*config.BlockDefinition),
		types:              make(map[string]*workspace.BlockType),
	}
}

// PopulateDefinitionsFromModel copies the loaded block definitions from the
// config model into the registry.
func (r *Registry) PopulateDefinitionsFromModel(model *config.Model) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, val := range model.Blocks {
		r.DefinitionRegistry[key] = val
		delete(r.types, key)
	}
}

// BlockType implements workspace.TypeRegistry. Types are built from their
// definitions on first use and cached.
func (r *Registry) BlockType(name string) (*workspace.BlockType, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.types[name]; ok {
		return t, true
	}
	def, ok := r.DefinitionRegistry[name]
	if !ok {
		return nil, false
	}
	t := r.buildType(def)
	r.types[name] = t
	return t, true
}

// TypeNames lists the defined block types in no particular order.
func (r *Registry) TypeNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.DefinitionRegistry))
	for name := range r.DefinitionRegistry {
		names = append(names, name)
	}
	return names
}
