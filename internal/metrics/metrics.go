// Package metrics exposes workspace activity as Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/specialistvlad/blockgraph/internal/events"
	"github.com/specialistvlad/blockgraph/internal/render"
	"github.com/specialistvlad/blockgraph/internal/workspace"
)

const namespace = "blockgraph"

// Metrics holds the collectors of one application instance.
type Metrics struct {
	events         *prometheus.CounterVec
	undoDepth      *prometheus.GaugeVec
	redoDepth      *prometheus.GaugeVec
	blocks         *prometheus.GaugeVec
	renderDuration *prometheus.HistogramVec
	rendered       *prometheus.CounterVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		events: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Workspace events fired, by type.",
		}, []string{"workspace_id", "type"}),
		undoDepth: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "undo_stack_size",
			Help:      "Events on the undo stack.",
		}, []string{"workspace_id"}),
		redoDepth: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "redo_stack_size",
			Help:      "Events on the redo stack.",
		}, []string{"workspace_id"}),
		blocks: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "blocks",
			Help:      "Blocks in the workspace, shadows included.",
		}, []string{"workspace_id"}),
		renderDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time to measure and draw one block.",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}, []string{"renderer"}),
		rendered: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_rendered_total",
			Help:      "Blocks drawn, by renderer.",
		}, []string{"renderer"}),
	}
}

// Attach counts the events of ws and tracks its stacks and block count
// until the returned function is called.
func (m *Metrics) Attach(ws *workspace.Workspace) (detach func()) {
	id := ws.ID()
	m.refresh(ws)
	remove := ws.AddChangeListener(func(e *events.Event) {
		m.events.WithLabelValues(id, string(e.Type())).Inc()
		m.refresh(ws)
	})
	return func() {
		remove()
		m.undoDepth.DeleteLabelValues(id)
		m.redoDepth.DeleteLabelValues(id)
		m.blocks.DeleteLabelValues(id)
	}
}

func (m *Metrics) refresh(ws *workspace.Workspace) {
	undo, redo := ws.UndoDepth()
	m.undoDepth.WithLabelValues(ws.ID()).Set(float64(undo))
	m.redoDepth.WithLabelValues(ws.ID()).Set(float64(redo))
	m.blocks.WithLabelValues(ws.ID()).Set(float64(len(ws.AllBlocks(false))))
}

// ObserveRender times every block p draws.
func (m *Metrics) ObserveRender(p *render.Pipeline) {
	p.Observe(func(renderer string, _ *workspace.Block, elapsed time.Duration) {
		m.renderDuration.WithLabelValues(renderer).Observe(elapsed.Seconds())
		m.rendered.WithLabelValues(renderer).Inc()
	})
}
