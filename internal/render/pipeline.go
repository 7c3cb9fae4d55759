package render

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/specialistvlad/blockgraph/internal/ctxlog"
	"github.com/specialistvlad/blockgraph/internal/workspace"
)

// Observer is told about every drawn block and how long measuring and
// drawing it took.
type Observer func(renderer string, b *workspace.Block, elapsed time.Duration)

// Pipeline connects a Strategy to a workspace. The workspace decides which
// blocks to render and in which order; the pipeline keeps the latest drawing
// of each block.
type Pipeline struct {
	strategy  Strategy
	logger    *slog.Logger
	drawings  map[string]*Drawing
	observers []Observer
}

var _ workspace.Renderer = (*Pipeline)(nil)

// NewPipeline returns a pipeline drawing with s. The logger is taken from ctx.
func NewPipeline(ctx context.Context, s Strategy) *Pipeline {
	return &Pipeline{
		strategy: s,
		logger:   ctxlog.FromContext(ctx).With("renderer", s.Name()),
		drawings: make(map[string]*Drawing),
	}
}

// Strategy returns the strategy in use.
func (p *Pipeline) Strategy() Strategy { return p.strategy }

// Observe registers o for every drawn block.
func (p *Pipeline) Observe(o Observer) {
	p.observers = append(p.observers, o)
}

// Measure implements workspace.Renderer.
func (p *Pipeline) Measure(b *workspace.Block) workspace.RenderInfo {
	return p.strategy.Measure(b)
}

// Draw implements workspace.Renderer. It panics on an info that did not come
// from Measure.
func (p *Pipeline) Draw(b *workspace.Block, ri workspace.RenderInfo) {
	info, ok := ri.(*Info)
	if !ok {
		panic(fmt.Sprintf("render: cannot draw block %s from %T", b, ri))
	}
	p.drawings[b.ID()] = p.strategy.Draw(b, info)
	elapsed := time.Since(info.measuredAt)
	for _, o := range p.observers {
		o(p.strategy.Name(), b, elapsed)
	}
}

// Drawing returns the latest drawing of a block, or nil.
func (p *Pipeline) Drawing(blockID string) *Drawing { return p.drawings[blockID] }

// Render runs one render cycle on ws, forgets drawings of blocks that are
// gone, and returns the number of blocks drawn.
func (p *Pipeline) Render(ws *workspace.Workspace) int {
	n := ws.Render()
	for id := range p.drawings {
		if ws.BlockByID(id) == nil {
			delete(p.drawings, id)
		}
	}
	if n > 0 {
		p.logger.Debug("Render cycle complete", "workspace_id", ws.ID(), "blocks", n)
	}
	return n
}
