package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/blockgraph/internal/ctxlog"
	"github.com/specialistvlad/blockgraph/internal/relay"
	"github.com/specialistvlad/blockgraph/internal/store"
	"github.com/specialistvlad/blockgraph/internal/workspace"
)

// Serve runs the configured workspace until ctx is done: it restores the
// stored history, records new events, relays them to the configured peer,
// renders on every tick and answers HTTP requests. On shutdown it stores a
// snapshot.
func (a *App) Serve(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Serve method started.")

	ws, pipeline := a.NewWorkspace(ctx, a.cfg.WorkspaceID)
	detachMetrics := a.metrics.Attach(ws)
	defer detachMetrics()

	var db *store.DB
	if a.cfg.StorePath != "" {
		var err error
		if db, err = store.Open(a.cfg.StorePath); err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer db.Close()
		if err := restore(ctx, db, ws); err != nil {
			return err
		}
		rec := store.NewRecorder(ctx, db)
		detach := rec.Attach(ws)
		defer detach()
	}

	o := newOwner(ws, pipeline, a.logger)
	if cfg := a.relayConfig(); cfg != nil {
		t, err := relay.DialSocket(ctx, *cfg)
		if err != nil {
			return fmt.Errorf("failed to connect relay: %w", err)
		}
		o.relay = relay.NewClient(ctx, t)
		if err := o.relay.Attach(ws); err != nil {
			return err
		}
		defer o.relay.Close()
	}

	srv := a.startServer(o)
	a.logger.Info("🚀 Serving workspace", "workspace_id", ws.ID(), "renderer", a.strategy.Name())
	o.run(ctx, a.cfg.RenderInterval)

	err := a.closeServer(srv)
	if db != nil {
		// The serving context is done by now; the snapshot still has to land.
		sum, serr := db.SaveSnapshot(context.WithoutCancel(ctx), ws.ID(), workspace.Save(ws))
		if serr != nil {
			err = errors.Join(err, fmt.Errorf("failed to save snapshot: %w", serr))
		} else {
			a.logger.Info("Snapshot saved", "workspace_id", ws.ID(), "digest", sum)
		}
	}
	if o.relay != nil {
		sent, applied := o.relay.Stats()
		a.logger.Info("Relay finished", "sent", sent, "applied", applied)
	}
	a.logger.Info("🏁 Workspace closed.")
	return err
}

// restore loads the latest snapshot of ws, or replays its event log when it
// has none.
func restore(ctx context.Context, db *store.DB, ws *workspace.Workspace) error {
	logger := ctxlog.FromContext(ctx)
	snap, err := db.LatestSnapshot(ctx, ws.ID())
	switch {
	case err == nil:
		if err := workspace.Load(ws, snap.Doc, workspace.LoadOptions{}); err != nil {
			return fmt.Errorf("failed to load snapshot %s: %w", snap.Digest, err)
		}
		logger.Info("Restored snapshot", "digest", snap.Digest, "saved_at", snap.SavedAt)
		return nil
	case errors.Is(err, store.ErrSnapshotNotFound):
		n, err := db.Replay(ctx, ws, ws.ID())
		if err != nil {
			return fmt.Errorf("failed to replay history: %w", err)
		}
		if n > 0 {
			logger.Info("Replayed event log", "events", n)
		}
		return nil
	default:
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
}
