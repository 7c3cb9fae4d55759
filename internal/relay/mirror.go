package relay

import (
	"encoding/json"
	"fmt"

	"github.com/specialistvlad/blockgraph/internal/events"
	"github.com/specialistvlad/blockgraph/internal/workspace"
)

// guard marks the span in which a relay is applying a foreign event.
type guard struct {
	applying bool
}

// apply decodes a wire event and runs it forward on ws under g, inside the
// event's own group.
func (g *guard) apply(ws *workspace.Workspace, data []byte) error {
	e, err := events.FromJSON(data, ws.ID())
	if err != nil {
		return err
	}
	g.applying = true
	defer func() { g.applying = false }()
	restore := ws.Session().SetGroup(e.Group)
	defer restore()
	ws.Run(e, true)
	return nil
}

// encode returns the wire form of e, or nil when e does not cross.
func encode(e *events.Event) ([]byte, error) {
	if e.IsUI() || e.Type() == events.TypeFinishedLoading {
		return nil, nil
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encoding %s event: %w", e.Type(), err)
	}
	return data, nil
}

// Mirror replays every non-UI event of source onto target until stop is
// called.
func Mirror(source, target *workspace.Workspace) (stop func()) {
	return mirror(source, target, &guard{})
}

// Link mirrors a and b onto each other. Events replayed on one side are not
// sent back.
func Link(a, b *workspace.Workspace) (stop func()) {
	g := &guard{}
	stopA := mirror(a, b, g)
	stopB := mirror(b, a, g)
	return func() {
		stopA()
		stopB()
	}
}

func mirror(source, target *workspace.Workspace, g *guard) func() {
	logger := target.Logger().With("mirror_of", source.ID())
	return source.AddChangeListener(func(e *events.Event) {
		if g.applying {
			return
		}
		data, err := encode(e)
		if err != nil {
			logger.Error("Dropping event", "type", e.Type(), "error", err)
			return
		}
		if data == nil {
			return
		}
		if err := g.apply(target, data); err != nil {
			logger.Error("Can't replay event", "type", e.Type(), "error", err)
		}
	})
}
