package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/specialistvlad/blockgraph/internal/config"
	"github.com/specialistvlad/blockgraph/internal/contextmenu"
	"github.com/specialistvlad/blockgraph/internal/ctxlog"
	"github.com/specialistvlad/blockgraph/internal/metrics"
	"github.com/specialistvlad/blockgraph/internal/registry"
	"github.com/specialistvlad/blockgraph/internal/relay"
	"github.com/specialistvlad/blockgraph/internal/render"
	"github.com/specialistvlad/blockgraph/internal/workspace"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	cfg      *Config
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	model    *config.Model
	strategy render.Strategy
	menu     *contextmenu.Registry
	prom     *prometheus.Registry
	metrics  *metrics.Metrics
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger, registry and
// metrics. Passing no modules registers the core modules.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) (*App, error) {
	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := newLogger(level, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	model, err := reg.LoadDefinitions(ctx, loader, cfg.paths()...)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifests: %w", err)
	}
	if err := reg.ValidateRegistry(ctx); err != nil {
		return nil, err
	}
	logger.Debug("Registry validation passed.")

	strategy, err := pickRenderer(cfg.Renderer, model)
	if err != nil {
		return nil, err
	}
	logger.Debug("Renderer selected.", "renderer", strategy.Name())

	menu := contextmenu.New()
	contextmenu.RegisterDefaults(menu)

	prom := prometheus.NewRegistry()
	return &App{
		cfg:      cfg,
		outW:     outW,
		logger:   logger,
		registry: reg,
		model:    model,
		strategy: strategy,
		menu:     menu,
		prom:     prom,
		metrics:  metrics.New(prom),
	}, nil
}

// pickRenderer builds the renderer named by override, or by the workspace
// options when override is empty. Manifest constants replace the defaults.
func pickRenderer(override string, model *config.Model) (*render.Renderer, error) {
	name := override
	if name == "" && model.Workspace != nil {
		name = model.Workspace.Renderer
	}
	if name == "" {
		name = render.DefaultName
	}
	c, ok := model.Renderers[name]
	if !ok {
		var err error
		if c, err = render.DefaultConstants(name); err != nil {
			return nil, err
		}
	}
	return render.New(name, c, nil)
}

// Registry returns the application's registry.
func (a *App) Registry() *registry.Registry { return a.registry }

// Model returns the loaded manifests.
func (a *App) Model() *config.Model { return a.model }

// Menu returns the context menu registry.
func (a *App) Menu() *contextmenu.Registry { return a.menu }

// Gatherer returns the Prometheus registry holding the app's collectors.
func (a *App) Gatherer() prometheus.Gatherer { return a.prom }

// Context returns a background context carrying the app's logger.
func (a *App) Context() context.Context {
	return ctxlog.WithLogger(context.Background(), a.logger)
}

// WorkspaceOptions maps the manifest workspace settings onto workspace
// options for the workspace id.
func (a *App) WorkspaceOptions(id string) workspace.Options {
	o := a.model.Workspace
	if o == nil {
		o = config.DefaultWorkspaceOptions()
	}
	return workspace.Options{
		ID:                  id,
		RTL:                 o.RTL,
		ReadOnly:            o.ReadOnly,
		HorizontalLayout:    o.HorizontalLayout,
		NoCollapse:          !o.Collapse,
		NoDisable:           !o.Disable,
		MaxBlocks:           o.MaxBlocks,
		MaxInstances:        o.MaxInstances,
		MaxUndo:             o.MaxUndo,
		SnapRadius:          o.SnapRadius,
		MaxTrashcanContents: o.MaxTrashcanContents,
	}
}

// NewWorkspace returns an empty workspace rendered by a fresh pipeline whose
// draw times feed the app's metrics.
func (a *App) NewWorkspace(ctx context.Context, id string) (*workspace.Workspace, *render.Pipeline) {
	ws := workspace.New(ctx, a.registry, a.WorkspaceOptions(id))
	p := render.NewPipeline(ctx, a.strategy)
	a.metrics.ObserveRender(p)
	ws.SetRenderer(p)
	return ws, p
}

// relayConfig returns the socket.io peer to relay to, or nil. The command
// line wins over the manifests.
func (a *App) relayConfig() *relay.SocketConfig {
	if a.cfg.RelayURL != "" {
		return &relay.SocketConfig{URL: a.cfg.RelayURL, Namespace: a.cfg.RelayNamespace}
	}
	return a.model.Relay
}
