package manifest

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/blockgraph/internal/config"
	"github.com/specialistvlad/blockgraph/internal/ctxlog"
	"github.com/specialistvlad/blockgraph/internal/fsutil"
	"github.com/specialistvlad/blockgraph/internal/render"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	exclude []string
}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new HCL manifest loader. Files matching an exclude
// pattern are skipped.
func NewLoader(exclude ...string) *Loader {
	return &Loader{exclude: exclude}
}

// Load parses every manifest found under paths and merges them into one
// model.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.FindFiles(paths, fsutil.ManifestPattern, l.exclude...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	model := config.NewModel()
	parser := hclparse.NewParser()
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}
		if err := l.merge(ctx, model, file, &root); err != nil {
			return nil, fmt.Errorf("in %s: %w", file, err)
		}
		model.Files = append(model.Files, file)
	}

	logger.Debug("HCL loading complete.", "blocks", len(model.Blocks), "renderers", len(model.Renderers), "workspace", model.Workspace != nil)
	return model, nil
}

func (l *Loader) merge(ctx context.Context, model *config.Model, file string, root *fileRoot) error {
	for _, b := range root.Blocks {
		if prev, dup := model.Blocks[b.Type]; dup {
			return fmt.Errorf("block type '%s' already defined in %s", b.Type, prev.Source)
		}
		def, err := translateBlock(ctx, b)
		if err != nil {
			return err
		}
		def.Source = file
		model.Blocks[def.Type] = def
	}
	for _, ws := range root.Workspace {
		if model.Workspace != nil {
			return fmt.Errorf("workspace options defined more than once")
		}
		model.Workspace = translateWorkspace(ws)
	}
	for _, r := range root.Renderers {
		if _, dup := model.Renderers[r.Name]; dup {
			return fmt.Errorf("renderer '%s' configured more than once", r.Name)
		}
		c, err := render.DefaultConstants(r.Name)
		if err != nil {
			return err
		}
		if diags := gohcl.DecodeBody(r.Body, nil, &c); diags.HasErrors() {
			return fmt.Errorf("in renderer '%s': %w", r.Name, diags)
		}
		model.Renderers[r.Name] = c
	}
	for _, r := range root.Relay {
		if model.Relay != nil {
			return fmt.Errorf("relay defined more than once")
		}
		model.Relay = r
	}
	return nil
}
