package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/specialistvlad/blockgraph/internal/contextmenu"
	"github.com/specialistvlad/blockgraph/internal/digest"
	"github.com/specialistvlad/blockgraph/internal/workspace"
)

// api serves the health check, the metrics and the owned workspace.
type api struct {
	app *App
	o   *owner
}

func (app *App) routes(o *owner) http.Handler {
	a := &api{app: app, o: o}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", a.health)
	mux.Handle("GET /metrics", promhttp.HandlerFor(app.prom, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /workspace", a.getWorkspace)
	mux.HandleFunc("PUT /workspace", a.putWorkspace)
	mux.HandleFunc("GET /workspace.svg", a.getSVG)
	mux.HandleFunc("POST /undo", a.undo(false))
	mux.HandleFunc("POST /redo", a.undo(true))
	mux.HandleFunc("GET /menu", a.getMenu)
	mux.HandleFunc("POST /menu/{item}", a.runMenuItem)
	return mux
}

func (a *api) health(w http.ResponseWriter, r *http.Request) {
	a.app.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (a *api) fail(w http.ResponseWriter, code int, err error) {
	if errors.Is(err, errPanicked) {
		code = http.StatusInternalServerError
	}
	if code >= http.StatusInternalServerError {
		a.app.logger.Error("Request failed", "status", code, "error", err)
	}
	http.Error(w, err.Error(), code)
}

func (a *api) getWorkspace(w http.ResponseWriter, r *http.Request) {
	format := FormatJSON
	if q := r.URL.Query().Get("format"); q != "" {
		var err error
		if format, err = ParseFormat(q); err != nil {
			a.fail(w, http.StatusBadRequest, err)
			return
		}
	}
	var (
		body []byte
		sum  string
	)
	err := a.o.do(r.Context(), func(ws *workspace.Workspace) error {
		var err error
		if sum, err = digest.Workspace(ws); err != nil {
			return err
		}
		body, err = EncodeDocument(workspace.Save(ws), format)
		return err
	})
	if err != nil {
		a.fail(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/"+string(format))
	w.Header().Set("ETag", `"`+sum+`"`)
	w.Write(body)
}

func (a *api) putWorkspace(w http.ResponseWriter, r *http.Request) {
	format := FormatJSON
	if r.Header.Get("Content-Type") == "application/xml" {
		format = FormatXML
	}
	data, err := readBody(r)
	if err != nil {
		a.fail(w, http.StatusBadRequest, err)
		return
	}
	doc, err := DecodeDocument(data, format)
	if err != nil {
		a.fail(w, http.StatusBadRequest, err)
		return
	}
	err = a.o.do(r.Context(), func(ws *workspace.Workspace) error {
		return workspace.Load(ws, doc, workspace.LoadOptions{RecordUndo: true})
	})
	if err != nil {
		a.fail(w, http.StatusUnprocessableEntity, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) getSVG(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := a.o.do(r.Context(), func(ws *workspace.Workspace) error {
		a.o.pipeline.Render(ws)
		return a.o.pipeline.WriteSVG(&buf, ws)
	})
	if err != nil {
		a.fail(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(buf.Bytes())
}

func (a *api) undo(redo bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var depth [2]int
		err := a.o.do(r.Context(), func(ws *workspace.Workspace) error {
			ws.Undo(redo)
			depth[0], depth[1] = ws.UndoDepth()
			return nil
		})
		if err != nil {
			a.fail(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, map[string]int{"undo": depth[0], "redo": depth[1]})
	}
}

type menuOption struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Enabled bool   `json:"enabled"`
}

// menuScope resolves the ?block= query parameter; without it the menu is the
// workspace's.
func menuScope(ws *workspace.Workspace, r *http.Request) (contextmenu.ScopeType, contextmenu.Scope, error) {
	id := r.URL.Query().Get("block")
	if id == "" {
		return contextmenu.ScopeWorkspace, contextmenu.Scope{Workspace: ws}, nil
	}
	b := ws.BlockByID(id)
	if b == nil {
		return 0, contextmenu.Scope{}, fmt.Errorf("block %q does not exist", id)
	}
	return contextmenu.ScopeBlock, contextmenu.BlockScope(b), nil
}

var errNotFound = errors.New("not found")

func (a *api) getMenu(w http.ResponseWriter, r *http.Request) {
	var out []menuOption
	err := a.o.do(r.Context(), func(ws *workspace.Workspace) error {
		typ, scope, err := menuScope(ws, r)
		if err != nil {
			return fmt.Errorf("%w: %w", errNotFound, err)
		}
		for _, opt := range a.app.menu.Options(typ, scope) {
			out = append(out, menuOption{ID: opt.ID, Text: opt.Text, Enabled: opt.Enabled})
		}
		return nil
	})
	if errors.Is(err, errNotFound) {
		a.fail(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		a.fail(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, out)
}

func (a *api) runMenuItem(w http.ResponseWriter, r *http.Request) {
	item := r.PathValue("item")
	err := a.o.do(r.Context(), func(ws *workspace.Workspace) error {
		typ, scope, err := menuScope(ws, r)
		if err != nil {
			return fmt.Errorf("%w: %w", errNotFound, err)
		}
		for _, opt := range a.app.menu.Options(typ, scope) {
			if opt.ID == item {
				return opt.Run()
			}
		}
		return fmt.Errorf("%w: no menu item %q for this scope", errNotFound, item)
	})
	switch {
	case errors.Is(err, errNotFound):
		a.fail(w, http.StatusNotFound, err)
	case err != nil:
		a.fail(w, http.StatusConflict, err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// maxBody caps uploaded workspace documents.
const maxBody = 8 << 20

func readBody(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("reading request body: %w", err)
	}
	if len(data) > maxBody {
		return nil, fmt.Errorf("request body exceeds %d bytes", maxBody)
	}
	return data, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// startServer runs the HTTP server in the background. It returns nil when
// the port is 0.
func (app *App) startServer(o *owner) *http.Server {
	if app.cfg.HealthcheckPort <= 0 {
		app.logger.Warn("HTTP server not started: disabled")
		return nil
	}
	addr := fmt.Sprintf(":%d", app.cfg.HealthcheckPort)
	srv := &http.Server{Addr: addr, Handler: app.routes(o), ReadHeaderTimeout: 10 * time.Second}

	go func() {
		app.logger.Info("🩺 HTTP server starting", "address", fmt.Sprintf("http://localhost%s/health", addr))
		// ListenAndServe returns ErrServerClosed on graceful shutdown.
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error("HTTP server failed unexpectedly", "error", err)
		}
	}()
	return srv
}

func (app *App) closeServer(srv *http.Server) error {
	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	app.logger.Info("🩺 Shutting down HTTP server...")
	if err := srv.Shutdown(ctx); err != nil {
		app.logger.Error("HTTP server shutdown failed", "error", err)
		return err
	}
	app.logger.Debug("HTTP server shut down gracefully.")
	return nil
}
