package store

import (
	"context"

	"github.com/specialistvlad/blockgraph/internal/workspace"
)

// Replay runs the stored log of workspaceID forward on ws, each event in its
// original group, and returns how many events it ran. Replayed events are
// kept off the undo stack.
func (db *DB) Replay(ctx context.Context, ws *workspace.Workspace, workspaceID string) (int, error) {
	records, err := db.Events(ctx, workspaceID)
	if err != nil {
		return 0, err
	}
	restoreUndo := ws.Session().SuspendUndo()
	defer restoreUndo()
	for _, r := range records {
		restore := ws.Session().SetGroup(r.Event.Group)
		ws.Run(r.Event, true)
		restore()
	}
	return len(records), nil
}
