package cli

import (
	"bytes"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/specialistvlad/blockgraph/internal/app"
	"github.com/specialistvlad/blockgraph/internal/digest"
	"github.com/specialistvlad/blockgraph/internal/store"
	"github.com/specialistvlad/blockgraph/internal/workspace"
	"github.com/spf13/cobra"
)

func newValidateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load and validate the block manifests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, opts.config())
			if err != nil {
				return err
			}
			names := a.Registry().TypeNames()
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d block types from %d manifests OK\n", len(names), len(a.Model().Files))
			return nil
		},
	}
}

func newRenderCommand(opts *options) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "render DOCUMENT",
		Short: "Render a workspace document as SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts.config())
			if err != nil {
				return err
			}
			ws, p, err := loadDocument(a, args[0])
			if err != nil {
				return err
			}
			p.Render(ws)
			var buf bytes.Buffer
			if err := p.WriteSVG(&buf, ws); err != nil {
				return err
			}
			return writeOutput(cmd, out, buf.Bytes())
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file; standard output when empty.")
	return cmd
}

func newConvertCommand(opts *options) *cobra.Command {
	var out, to string
	cmd := &cobra.Command{
		Use:   "convert DOCUMENT",
		Short: "Convert a workspace document between JSON and XML",
		Long: `convert loads the document into a workspace, so every block is checked
against its definition, and writes the workspace back in the target format.
The target defaults to the extension of --output, or the other format.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := targetFormat(to, out, args[0])
			if err != nil {
				return usageError(err)
			}
			a, err := newApp(cmd, opts.config())
			if err != nil {
				return err
			}
			ws, _, err := loadDocument(a, args[0])
			if err != nil {
				return err
			}
			data, err := app.EncodeDocument(workspace.Save(ws), format)
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, data)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file; standard output when empty.")
	cmd.Flags().StringVar(&to, "to", "", "Target format: 'json' or 'xml'.")
	return cmd
}

// targetFormat picks the format convert writes.
func targetFormat(to, out, in string) (app.Format, error) {
	switch {
	case to != "":
		return app.ParseFormat(to)
	case out != "" && out != "-":
		return app.FormatOf(out), nil
	case app.FormatOf(in) == app.FormatXML:
		return app.FormatJSON, nil
	default:
		return app.FormatXML, nil
	}
}

func newDigestCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "digest DOCUMENT...",
		Short: "Print the content digest of workspace documents",
		Long: `digest prints the BLAKE3 digest of each document's canonical JSON, as
loaded into a workspace. A JSON document and its XML conversion share a digest.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts.config())
			if err != nil {
				return err
			}
			for _, path := range args {
				ws, _, err := loadDocument(a, path)
				if err != nil {
					return err
				}
				sum, err := digest.Workspace(ws)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", sum, path)
			}
			return nil
		},
	}
}

func newReplayCommand(opts *options) *cobra.Command {
	var out, format, id string
	cmd := &cobra.Command{
		Use:   "replay DATABASE",
		Short: "Rebuild a workspace from its recorded event log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := app.ParseFormat(format)
			if err != nil {
				return usageError(err)
			}
			a, err := newApp(cmd, opts.config())
			if err != nil {
				return err
			}
			db, err := store.Open(args[0])
			if err != nil {
				return err
			}
			defer db.Close()

			ws, _ := a.NewWorkspace(a.Context(), id)
			n, err := db.Replay(cmd.Context(), ws, id)
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("no events recorded for workspace %q", id)
			}
			data, err := app.EncodeDocument(workspace.Save(ws), f)
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, data)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file; standard output when empty.")
	cmd.Flags().StringVar(&format, "format", "json", "Output format: 'json' or 'xml'.")
	cmd.Flags().StringVar(&id, "workspace", app.DefaultWorkspaceID, "Workspace id to replay.")
	return cmd
}

func newServeCommand(opts *options) *cobra.Command {
	var (
		port      int
		storePath string
		id        string
		relayURL  string
		relayNS   string
		interval  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a workspace over HTTP, with history and relay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.config()
			cfg.HealthcheckPort = port
			cfg.StorePath = storePath
			cfg.WorkspaceID = id
			cfg.RelayURL = relayURL
			cfg.RelayNamespace = relayNS
			cfg.RenderInterval = interval
			a, err := newApp(cmd, cfg)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.Serve(ctx)
		},
	}
	f := cmd.Flags()
	f.IntVar(&port, "healthcheck-port", 8080, "Port for the HTTP server. 0 is disabled.")
	f.StringVar(&storePath, "store", "", "SQLite file recording the workspace history.")
	f.StringVar(&id, "workspace", app.DefaultWorkspaceID, "Id of the served workspace.")
	f.StringVar(&relayURL, "relay-url", "", "socket.io server to relay events through.")
	f.StringVar(&relayNS, "relay-namespace", "", "socket.io namespace of the relay.")
	f.DurationVar(&interval, "render-interval", 50*time.Millisecond, "Time between render passes.")
	return cmd
}
