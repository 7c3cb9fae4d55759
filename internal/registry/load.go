package registry

import (
	"context"
	"fmt"

	"github.com/specialistvlad/blockgraph/internal/config"
	"github.com/specialistvlad/blockgraph/internal/ctxlog"
)

// LoadDefinitions loads every manifest under paths with loader and adds the
// block definitions to the registry. The full model is returned for the
// caller's workspace and renderer settings.
func (r *Registry) LoadDefinitions(ctx context.Context, loader config.Loader, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Registry loading definitions.", "paths", paths)

	model, err := loader.Load(ctx, paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load block definitions: %w", err)
	}
	if len(model.Files) == 0 {
		logger.Warn("No manifest files found in paths.", "paths", paths)
	}
	r.PopulateDefinitionsFromModel(model)

	logger.Info("Registry loaded successfully.", "block_definitions_loaded", len(model.Blocks))
	return model, nil
}
