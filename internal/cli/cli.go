package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/blockgraph/internal/app"
	"github.com/specialistvlad/blockgraph/internal/manifest"
	"github.com/specialistvlad/blockgraph/internal/render"
	"github.com/specialistvlad/blockgraph/internal/workspace"
	"github.com/spf13/cobra"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

// options are the flags shared by every command.
type options struct {
	modulesPath string
	manifests   []string
	exclude     []string
	logFormat   string
	logLevel    string
	renderer    string
}

func (o *options) config() app.Config {
	return app.Config{
		ModulesPath:   o.modulesPath,
		ManifestPaths: o.manifests,
		Exclude:       o.exclude,
		LogFormat:     o.logFormat,
		LogLevel:      o.logLevel,
		Renderer:      o.renderer,
	}
}

// newApp validates cfg and builds the application. Logs go to the command's
// error stream so that data written to its output stays clean.
func newApp(cmd *cobra.Command, cfg app.Config) (*app.App, error) {
	c, err := app.NewConfig(cfg)
	if err != nil {
		return nil, usageError(err)
	}
	return app.NewApp(cmd.ErrOrStderr(), c, manifest.NewLoader(c.Exclude...))
}

// NewRootCommand builds the blockgraph command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "blockgraph",
		Short: "Block-based visual programming workspaces: validate, render, convert and serve",
		Long: `blockgraph loads block definitions from HCL manifests and works with
workspace documents in the JSON or XML serialization format.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&opts.modulesPath, "modules-path", "modules", "Directory holding the block module manifests.")
	pf.StringSliceVarP(&opts.manifests, "manifest", "m", nil, "Extra manifest file or directory (repeatable).")
	pf.StringSliceVar(&opts.exclude, "exclude", nil, "Glob of manifest paths to skip (repeatable).")
	pf.StringVar(&opts.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.StringVar(&opts.renderer, "renderer", "", fmt.Sprintf("Renderer override. Options: %v.", render.Names()))

	root.AddCommand(
		newValidateCommand(opts),
		newRenderCommand(opts),
		newConvertCommand(opts),
		newDigestCommand(opts),
		newReplayCommand(opts),
		newServeCommand(opts),
	)
	return root
}

// Execute runs the command tree with args, writing data to outW and logs
// and errors to errW.
func Execute(ctx context.Context, outW, errW io.Writer, args []string) error {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(outW)
	root.SetErr(errW)
	return root.ExecuteContext(ctx)
}

// loadDocument reads a workspace document into a fresh rendered workspace.
func loadDocument(a *app.App, path string) (*workspace.Workspace, *render.Pipeline, error) {
	doc, err := app.ReadDocument(path)
	if err != nil {
		return nil, nil, err
	}
	ws, p := a.NewWorkspace(a.Context(), app.DefaultWorkspaceID)
	if err := workspace.Load(ws, doc, workspace.LoadOptions{}); err != nil {
		return nil, nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return ws, p, nil
}

// writeOutput writes data to path, or to the command's output when path is
// empty or "-".
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
