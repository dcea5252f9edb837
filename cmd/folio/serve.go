package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	prom "github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/alexjbarnes/folio/internal/content"
	"github.com/alexjbarnes/folio/internal/listing"
	"github.com/alexjbarnes/folio/internal/livereload"
	"github.com/alexjbarnes/folio/internal/mcpserver"
	"github.com/alexjbarnes/folio/internal/metrics"
	"github.com/alexjbarnes/folio/internal/server"
	"github.com/alexjbarnes/folio/internal/site"
	"github.com/alexjbarnes/folio/internal/watch"
)

// ServeCmd runs the HTTP server.
type ServeCmd struct {
	Listen     string `name:"listen" short:"l" help:"Listen address (LISTEN_ADDR)."`
	MCP        bool   `name:"mcp" help:"Expose MCP tools at /mcp (ENABLE_MCP)."`
	Metrics    bool   `name:"metrics" help:"Expose Prometheus metrics at /metrics (ENABLE_METRICS)."`
	LiveReload bool   `name:"live-reload" help:"Reload open pages when local content or templates change (ENABLE_LIVE_RELOAD)."`
}

// livePipeline holds the current pipeline. Templates and site metadata
// are reloaded by swapping in a new one.
type livePipeline struct {
	p atomic.Pointer[site.Pipeline]
}

func (l *livePipeline) RenderPage(ctx context.Context, req site.Request) ([]byte, error) {
	return l.p.Load().RenderPage(ctx, req)
}

func (l *livePipeline) CSS(w io.Writer) error {
	return l.p.Load().Highlighter.CSS(w)
}

func (c *ServeCmd) Run(env *Env) error {
	cfg := env.Config
	logger := env.Logger

	addr := cfg.ListenAddr
	if c.Listen != "" {
		addr = c.Listen
	}
	enableMCP := cfg.EnableMCP || c.MCP
	enableMetrics := cfg.EnableMetrics || c.Metrics
	enableReload := cfg.EnableLiveLoad || c.LiveReload

	logger.Info("folio starting",
		slog.String("version", Version),
		slog.String("content", cfg.Content),
		slog.Bool("mcp", enableMCP),
		slog.Bool("metrics", enableMetrics),
		slog.Bool("live_reload", enableReload),
	)

	var (
		rec            metrics.Recorder = metrics.NoopRecorder{}
		metricsHandler http.Handler
	)
	if enableMetrics {
		reg := prom.NewRegistry()
		rec = metrics.NewPrometheusRecorder(reg)
		metricsHandler = metrics.HTTPHandler(reg)
	}

	client, err := newClient(cfg, rec)
	if err != nil {
		return err
	}

	var hub *livereload.Hub
	if enableReload {
		hub = livereload.NewHub(logger.With(slog.String("service", "livereload")))
	}

	build := func() (*site.Pipeline, error) {
		p, err := newPipeline(cfg, client, listing.QueryLink, rec, logger)
		if err != nil {
			return nil, err
		}
		if hub != nil {
			p.Decorators = append(p.Decorators, livereload.Inject)
		}
		return p, nil
	}

	initial, err := build()
	if err != nil {
		return err
	}
	pages := &livePipeline{}
	pages.p.Store(initial)

	mux := server.MuxConfig{
		Pages:   pages,
		Styles:  pages,
		Metrics: metricsHandler,
		Logger:  logger,
	}

	if enableMCP {
		mux.MCP = newMCPHandler(client, initial, pages)
	}
	if hub != nil {
		mux.LiveReload = hub
		mux.ReloadPath = livereload.Path
	}

	handler := server.Middleware(logger)(server.NewMux(mux))
	srv := server.New(addr, handler, enableMCP || hub != nil)

	g, gctx := errgroup.WithContext(env.Ctx)

	g.Go(func() error {
		return server.Run(gctx, srv, logger)
	})

	if hub != nil {
		if dirs := watchDirs(cfg.Content, cfg.PagesDir, cfg.IsLocalContent()); len(dirs) > 0 {
			w := &watch.Watcher{
				Dirs:   dirs,
				Logger: logger.With(slog.String("service", "watch")),
				OnChange: func(paths []string) {
					next, err := build()
					if err != nil {
						logger.Warn("reload failed, keeping previous templates", slog.String("error", err.Error()))
						return
					}
					pages.p.Store(next)
					logger.Info("content changed", slog.Int("paths", len(paths)))
					hub.Reload()
				},
			}
			g.Go(func() error {
				return w.Run(gctx)
			})
		} else {
			logger.Warn("live reload enabled but nothing local to watch")
		}
	}

	return g.Wait()
}

// watchDirs returns the local directories whose changes trigger a reload.
func watchDirs(contentDir, pagesDir string, local bool) []string {
	var dirs []string
	if local && contentDir != "" {
		dirs = append(dirs, contentDir)
	}
	if pagesDir != "" {
		dirs = append(dirs, pagesDir)
	}
	return dirs
}

func newMCPHandler(src content.Source, p *site.Pipeline, pages mcpserver.PageRenderer) http.Handler {
	s := mcp.NewServer(
		&mcp.Implementation{Name: "folio", Version: Version},
		nil,
	)
	mcpserver.RegisterTools(s, mcpserver.Deps{
		Source: src,
		Posts:  p.App.Posts.Loader,
		Pages:  pages,
	})

	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s
	}, nil)
}
