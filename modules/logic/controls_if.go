package logic

import (
	"fmt"

	"github.com/specialistvlad/blockgraph/internal/workspace"
)

// IfBehavior gives controls_if its else-if and else branches. The extra state
// is {"elseIfCount": n, "hasElse": true}, with zero members left out.
type IfBehavior struct {
	elseIfCount int
	hasElse     bool
}

var _ workspace.ExtraStateBehavior = (*IfBehavior)(nil)

// ElseIfCount returns the number of else-if branches.
func (ib *IfBehavior) ElseIfCount() int { return ib.elseIfCount }

// HasElse reports whether the block has an else branch.
func (ib *IfBehavior) HasElse() bool { return ib.hasElse }

// SaveExtraState implements workspace.ExtraStateBehavior.
func (ib *IfBehavior) SaveExtraState(*workspace.Block) any {
	if ib.elseIfCount == 0 && !ib.hasElse {
		return nil
	}
	s := make(map[string]any)
	if ib.elseIfCount > 0 {
		s["elseIfCount"] = ib.elseIfCount
	}
	if ib.hasElse {
		s["hasElse"] = true
	}
	return s
}

// LoadExtraState implements workspace.ExtraStateBehavior.
func (ib *IfBehavior) LoadExtraState(b *workspace.Block, s any) error {
	m, ok := s.(map[string]any)
	if !ok && s != nil {
		return fmt.Errorf("controls_if: unexpected extra state %T", s)
	}
	n, err := count(m["elseIfCount"])
	if err != nil {
		return fmt.Errorf("controls_if: elseIfCount: %w", err)
	}
	hasElse, _ := m["hasElse"].(bool)
	return ib.reshape(b, n, hasElse)
}

// reshape adds or removes branches until the block has n else-if branches
// and an else branch when hasElse is set. Children of removed branches are
// unplugged onto the surface.
func (ib *IfBehavior) reshape(b *workspace.Block, n int, hasElse bool) error {
	if b.Input("ELSE") != nil {
		if err := b.RemoveInput("ELSE"); err != nil {
			return err
		}
	}
	for i := ib.elseIfCount; i > n; i-- {
		for _, name := range []string{fmt.Sprintf("IF%d", i), fmt.Sprintf("DO%d", i)} {
			if err := b.RemoveInput(name); err != nil {
				return err
			}
		}
	}
	for i := ib.elseIfCount + 1; i <= n; i++ {
		if _, err := b.AppendInputSpec(workspace.InputSpec{
			Kind:   workspace.ValueInput,
			Name:   fmt.Sprintf("IF%d", i),
			Check:  []string{"Boolean"},
			Fields: []workspace.FieldSpec{{Kind: workspace.FieldLabel, Value: "else if"}},
		}); err != nil {
			return err
		}
		if _, err := b.AppendInputSpec(workspace.InputSpec{
			Kind:   workspace.StatementInput,
			Name:   fmt.Sprintf("DO%d", i),
			Fields: []workspace.FieldSpec{{Kind: workspace.FieldLabel, Value: "do"}},
		}); err != nil {
			return err
		}
	}
	ib.elseIfCount = n
	if hasElse {
		if _, err := b.AppendInputSpec(workspace.InputSpec{
			Kind:   workspace.StatementInput,
			Name:   "ELSE",
			Fields: []workspace.FieldSpec{{Kind: workspace.FieldLabel, Value: "else"}},
		}); err != nil {
			return err
		}
	}
	ib.hasElse = hasElse
	return nil
}

// MaxElseIf caps the else-if branches a single block may carry.
const MaxElseIf = 256

// count reads a count in [0, MaxElseIf] from decoded JSON or a Go int.
func count(v any) (int, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int:
		if n >= 0 && n <= MaxElseIf {
			return n, nil
		}
	case float64:
		if n >= 0 && n <= MaxElseIf && n == float64(int(n)) {
			return int(n), nil
		}
	}
	return 0, fmt.Errorf("invalid count %v: must be a whole number between 0 and %d", v, MaxElseIf)
}
