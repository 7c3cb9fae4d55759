package workspace

import "math"

// Unlimited is the remaining capacity of a workspace without limits.
const Unlimited = math.MaxInt

// HasBlockLimits reports whether a global or per-type cap is configured.
func (ws *Workspace) HasBlockLimits() bool {
	return ws.opts.MaxBlocks > 0 || len(ws.opts.MaxInstances) > 0
}

// RemainingCapacity returns how many more blocks fit, shadows included.
func (ws *Workspace) RemainingCapacity() int {
	if ws.opts.MaxBlocks <= 0 {
		return Unlimited
	}
	return ws.opts.MaxBlocks - len(ws.AllBlocks(false))
}

// RemainingCapacityOfType returns how many more blocks of the type fit.
func (ws *Workspace) RemainingCapacityOfType(typeName string) int {
	limit, ok := ws.opts.MaxInstances[typeName]
	if !ok {
		return Unlimited
	}
	return limit - len(ws.BlocksByType(typeName, false))
}

// IsCapacityAvailable reports whether a batch of blocks, given as counts per
// type, fits both the per-type and the global caps.
func (ws *Workspace) IsCapacityAvailable(typeCounts map[string]int) bool {
	if !ws.HasBlockLimits() {
		return true
	}
	total := 0
	for typ, n := range typeCounts {
		if n > ws.RemainingCapacityOfType(typ) {
			return false
		}
		total += n
	}
	return total <= ws.RemainingCapacity()
}

// BlockTypeCounts counts the blocks of b's subtree per type. With
// stripFollowing the blocks below b in its stack are left out.
func BlockTypeCounts(b *Block, stripFollowing bool) map[string]int {
	descendants := b.Descendants(true)
	if stripFollowing {
		if next := b.NextBlock(); next != nil {
			for i, d := range descendants {
				if d == next {
					descendants = descendants[:i]
					break
				}
			}
		}
	}
	counts := make(map[string]int)
	for _, d := range descendants {
		counts[d.typ.Name]++
	}
	return counts
}
