// Package blocktest builds workspaces from real manifests and modules for
// block module tests.
package blocktest

import (
	"context"
	"testing"

	"github.com/specialistvlad/blockgraph/internal/ctxlog"
	"github.com/specialistvlad/blockgraph/internal/events"
	"github.com/specialistvlad/blockgraph/internal/manifest"
	"github.com/specialistvlad/blockgraph/internal/registry"
	"github.com/specialistvlad/blockgraph/internal/workspace"
	"github.com/stretchr/testify/require"
)

// Env is a workspace built from manifests, with every fired event recorded.
type Env struct {
	Registry  *registry.Registry
	Workspace *workspace.Workspace
	Events    []*events.Event
}

// New loads the manifests under paths, registers modules, validates the
// result and returns a fresh workspace using it.
func New(t *testing.T, modules []registry.Module, paths ...string) *Env {
	t.Helper()
	ctx := ctxlog.Discard(context.Background())
	r := registry.New()
	for _, m := range modules {
		m.Register(r)
	}
	_, err := r.LoadDefinitions(ctx, manifest.NewLoader(), paths...)
	require.NoError(t, err)
	require.NoError(t, r.ValidateRegistry(ctx))

	env := &Env{Registry: r, Workspace: workspace.New(ctx, r, workspace.Options{})}
	env.Workspace.AddChangeListener(func(e *events.Event) { env.Events = append(env.Events, e) })
	return env
}

// Block creates a top-level block.
func (env *Env) Block(t *testing.T, typ string) *workspace.Block {
	t.Helper()
	b, err := env.Workspace.NewBlock(typ, "")
	require.NoError(t, err)
	return b
}

// Reload saves the workspace and loads the result into a new workspace built
// from the same registry.
func (env *Env) Reload(t *testing.T) *workspace.Workspace {
	t.Helper()
	ws := workspace.New(ctxlog.Discard(context.Background()), env.Registry, workspace.Options{})
	require.NoError(t, workspace.Load(ws, workspace.Save(env.Workspace), workspace.LoadOptions{}))
	return ws
}
