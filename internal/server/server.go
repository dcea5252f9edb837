// Package server serves the rendered site over HTTP together with the
// optional metrics, MCP and live reload endpoints.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	apperrors "github.com/alexjbarnes/folio/internal/errors"
	"github.com/alexjbarnes/folio/internal/logging"
	"github.com/alexjbarnes/folio/internal/site"
	"github.com/alexjbarnes/folio/internal/theme"
)

const (
	readTimeout     = 30 * time.Second
	writeTimeout    = 60 * time.Second
	idleTimeout     = 120 * time.Second
	shutdownTimeout = 10 * time.Second

	htmlContentType = "text/html; charset=utf-8"
	cssContentType  = "text/css; charset=utf-8"
)

// PageRenderer renders a page request to HTML.
type PageRenderer interface {
	RenderPage(ctx context.Context, req site.Request) ([]byte, error)
}

// StyleSheet writes the code highlighting CSS.
type StyleSheet interface {
	CSS(w io.Writer) error
}

// MuxConfig holds dependencies for building the HTTP mux. Optional
// handlers are left unmounted when nil.
type MuxConfig struct {
	Pages      PageRenderer
	Styles     StyleSheet
	Static     fs.FS
	Metrics    http.Handler
	MCP        http.Handler
	LiveReload http.Handler
	ReloadPath string
	Logger     *slog.Logger
}

// NewMux builds the HTTP mux. Pages are served at their template names,
// "/" maps to the index, and "/post/<slug>.html" renders a post the way
// the static export lays it out.
func NewMux(cfg MuxConfig) *http.ServeMux {
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	if cfg.Static == nil {
		cfg.Static = theme.StaticFS
	}

	h := &handler{cfg: cfg}

	mux := http.NewServeMux()
	mux.HandleFunc("/", h.serveRoot)
	mux.HandleFunc("/post/", h.servePost)

	if cfg.Metrics != nil {
		mux.Handle("/metrics", cfg.Metrics)
	}
	if cfg.MCP != nil {
		mux.Handle("/mcp", cfg.MCP)
	}
	if cfg.LiveReload != nil && cfg.ReloadPath != "" {
		mux.Handle(cfg.ReloadPath, cfg.LiveReload)
	}

	return mux
}

type handler struct {
	cfg MuxConfig
}

func (h *handler) serveRoot(w http.ResponseWriter, r *http.Request) {
	if !allowRead(w, r) {
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/")
	if name == "" {
		name = theme.IndexPage
	}

	switch {
	case theme.IsPage(name):
		h.renderPage(w, r, site.Request{Page: name, Query: r.URL.Query()})
	case name == theme.HighlightCSS && h.cfg.Styles != nil:
		h.serveStyles(w, r)
	default:
		h.serveStatic(w, r, name)
	}
}

// servePost handles /post/<slug>.html.
func (h *handler) servePost(w http.ResponseWriter, r *http.Request) {
	if !allowRead(w, r) {
		return
	}

	slug, ok := strings.CutSuffix(strings.TrimPrefix(r.URL.Path, "/post/"), ".html")
	if !ok || slug == "" || strings.Contains(slug, "/") {
		http.NotFound(w, r)
		return
	}

	h.renderPage(w, r, site.Request{
		Page:  theme.PostPage,
		Query: url.Values{site.PostQueryParam: {slug}},
		Root:  "../",
	})
}

func (h *handler) renderPage(w http.ResponseWriter, r *http.Request, req site.Request) {
	body, err := h.cfg.Pages.RenderPage(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrPageNotFound):
			http.NotFound(w, r)
		case errors.Is(err, context.Canceled):
			// Client went away.
		default:
			h.cfg.Logger.Error("rendering page",
				slog.String("page", req.Page),
				slog.String("error", err.Error()),
			)
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", htmlContentType)
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(body)
}

func (h *handler) serveStyles(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.cfg.Styles.CSS(&buf); err != nil {
		h.cfg.Logger.Error("writing highlight css", slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", cssContentType)
	_, _ = w.Write(buf.Bytes())
}

func (h *handler) serveStatic(w http.ResponseWriter, r *http.Request, name string) {
	name = path.Clean(name)
	if !fs.ValidPath(name) {
		http.NotFound(w, r)
		return
	}

	info, err := fs.Stat(h.cfg.Static, name)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	http.ServeFileFS(w, r, h.cfg.Static, name)
}

func allowRead(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", "GET, HEAD")
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	return false
}

// New returns an http.Server for handler with the usual timeouts.
// WriteTimeout is left unset when long-lived connections are served.
func New(addr string, handler http.Handler, streaming bool) *http.Server {
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
	if streaming {
		srv.WriteTimeout = 0
	}
	return srv
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.Discard()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("listen", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	<-errCh
	return nil
}
