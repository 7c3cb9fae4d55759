package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/specialistvlad/blockgraph/internal/relay"
	"github.com/specialistvlad/blockgraph/internal/render"
	"github.com/specialistvlad/blockgraph/internal/workspace"
)

// owner confines a workspace to the goroutine running its loop. Everything
// else reaches the workspace through do.
type owner struct {
	ws       *workspace.Workspace
	pipeline *render.Pipeline
	relay    *relay.Client
	logger   *slog.Logger
	reqs     chan func()
}

func newOwner(ws *workspace.Workspace, p *render.Pipeline, logger *slog.Logger) *owner {
	return &owner{ws: ws, pipeline: p, logger: logger, reqs: make(chan func())}
}

// run serves requests and, every interval, applies queued remote events and
// renders, until ctx is done.
func (o *owner) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	o.logger.Debug("Workspace loop started.", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			o.logger.Debug("Workspace loop stopped.")
			return
		case fn := <-o.reqs:
			fn()
		case <-ticker.C:
			if err := o.guard("tick", o.tick); err != nil {
				o.logger.Error("Workspace tick failed", "error", err)
			}
		}
	}
}

func (o *owner) tick() {
	if o.relay != nil {
		n, err := o.relay.Apply()
		if err != nil {
			o.logger.Warn("Failed to apply remote event", "error", err)
		} else if n > 0 {
			o.logger.Debug("Applied remote events", "count", n)
		}
	}
	o.pipeline.Render(o.ws)
}

// do runs fn on the loop goroutine and returns its error. It gives up when
// ctx is done first.
func (o *owner) do(ctx context.Context, fn func(ws *workspace.Workspace) error) error {
	done := make(chan error, 1)
	req := func() {
		var err error
		if perr := o.guard("request", func() { err = fn(o.ws) }); perr != nil {
			err = perr
		}
		done <- err
	}
	select {
	case o.reqs <- req:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// errPanicked marks work on the loop that panicked. The loop itself keeps
// running.
var errPanicked = errors.New("workspace operation panicked")

// guard runs fn and turns a panic into an error.
func (o *owner) guard(what string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("Recovered from panic in workspace loop", "during", what, "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("%w: %v", errPanicked, r)
		}
	}()
	fn()
	return nil
}
