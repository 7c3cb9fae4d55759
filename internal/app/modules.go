package app

import (
	"github.com/specialistvlad/blockgraph/internal/registry"
	"github.com/specialistvlad/blockgraph/modules/logic"
	"github.com/specialistvlad/blockgraph/modules/math"
	"github.com/specialistvlad/blockgraph/modules/procedures"
	"github.com/specialistvlad/blockgraph/modules/text"
	"github.com/specialistvlad/blockgraph/modules/variables"
)

// coreModules is the definitive list of all block modules that are compiled
// into the blockgraph binary.
var coreModules = []registry.Module{
	&logic.Module{},
	&math.Module{},
	&text.Module{},
	&variables.Module{},
	&procedures.Module{},
}
