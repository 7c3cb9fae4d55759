// Package text provides the text literal and print blocks.
package text

import (
	"strings"

	"github.com/specialistvlad/blockgraph/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the validators used by manifest.hcl.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterValidator("text_single_line", SingleLine)
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// SingleLine folds line breaks into spaces.
func SingleLine(v any) (any, bool) {
	s, ok := v.(string)
	if !ok {
		return nil, false
	}
	return lineBreaks.Replace(s), true
}
