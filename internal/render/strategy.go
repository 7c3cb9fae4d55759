package render

import (
	"fmt"
	"maps"
	"slices"

	"github.com/specialistvlad/blockgraph/internal/workspace"
)

// Strategy measures and draws blocks in one visual style. Every strategy
// works off the same workspace model.
type Strategy interface {
	Name() string
	Constants() Constants
	Measure(b *workspace.Block) *Info
	Draw(b *workspace.Block, info *Info) *Drawing
}

// DefaultName is the renderer used when none is configured.
const DefaultName = "classic"

// Renderer is the built-in Strategy. The built-ins differ only in their
// constants and connection shapes.
type Renderer struct {
	name   string
	c      Constants
	shaper Shaper
	text   TextMeasurer
}

// Name returns the renderer name.
func (r *Renderer) Name() string { return r.name }

// Constants returns the constants the renderer was built with.
func (r *Renderer) Constants() Constants { return r.c }

type builtin struct {
	defaults func() Constants
	shaper   func(Constants) Shaper
}

var builtins = map[string]builtin{
	"classic": {
		defaults: ClassicConstants,
		shaper:   func(c Constants) Shaper { return classicShaper{c: c} },
	},
	"zelos": {
		defaults: ZelosConstants,
		shaper:   func(c Constants) Shaper { return zelosShaper{c: c} },
	},
	"minimalist": {
		defaults: MinimalistConstants,
		shaper:   func(c Constants) Shaper { return classicShaper{c: c} },
	},
}

// Names lists the built-in renderers.
func Names() []string {
	return slices.Sorted(maps.Keys(builtins))
}

// DefaultConstants returns the defaults of a built-in renderer.
func DefaultConstants(name string) (Constants, error) {
	if name == "" {
		name = DefaultName
	}
	b, ok := builtins[name]
	if !ok {
		return Constants{}, fmt.Errorf("unknown renderer %q (known: %v)", name, Names())
	}
	return b.defaults(), nil
}

// New builds a built-in renderer with the given constants. A nil measurer
// falls back to Monospace with the constants' character width.
func New(name string, c Constants, tm TextMeasurer) (*Renderer, error) {
	if name == "" {
		name = DefaultName
	}
	b, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown renderer %q (known: %v)", name, Names())
	}
	if tm == nil {
		tm = Monospace{CharWidth: c.FieldCharWidth}
	}
	return &Renderer{name: name, c: c, shaper: b.shaper(c), text: tm}, nil
}

// Classic returns the classic renderer with its default constants.
func Classic() *Renderer {
	r, _ := New("classic", ClassicConstants(), nil)
	return r
}

// Zelos returns the zelos renderer with its default constants.
func Zelos() *Renderer {
	r, _ := New("zelos", ZelosConstants(), nil)
	return r
}

// Minimalist returns the minimalist renderer with its default constants.
func Minimalist() *Renderer {
	r, _ := New("minimalist", MinimalistConstants(), nil)
	return r
}
