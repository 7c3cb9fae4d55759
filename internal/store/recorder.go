package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/specialistvlad/blockgraph/internal/ctxlog"
	"github.com/specialistvlad/blockgraph/internal/events"
	"github.com/specialistvlad/blockgraph/internal/workspace"
)

// Recorder appends the events of a workspace to the log as they fire. UI
// events and load notifications are not recorded.
type Recorder struct {
	db     *DB
	ctx    context.Context
	logger *slog.Logger

	mu    sync.Mutex
	count int
	err   error
}

// NewRecorder returns a recorder writing to db. The logger is taken from ctx,
// and ctx bounds every write.
func NewRecorder(ctx context.Context, db *DB) *Recorder {
	return &Recorder{db: db, ctx: ctx, logger: ctxlog.FromContext(ctx).With("component", "recorder")}
}

// Attach starts recording ws until the returned function is called.
func (r *Recorder) Attach(ws *workspace.Workspace) (detach func()) {
	return ws.AddChangeListener(r.record)
}

func (r *Recorder) record(e *events.Event) {
	if e.IsUI() || e.Type() == events.TypeFinishedLoading {
		return
	}
	seq, err := r.db.AppendEvent(r.ctx, e)
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.logger.Error("Failed to record event", "type", e.Type(), "error", err)
		if r.err == nil {
			r.err = err
		}
		return
	}
	r.count++
	r.logger.Debug("Recorded event", "type", e.Type(), "seq", seq)
}

// Count returns how many events were recorded.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Err returns the first write error, if any.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}
