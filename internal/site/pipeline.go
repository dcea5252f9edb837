package site

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/url"
	"time"

	"github.com/alexjbarnes/folio/internal/config"
	"github.com/alexjbarnes/folio/internal/content"
	apperrors "github.com/alexjbarnes/folio/internal/errors"
	"github.com/alexjbarnes/folio/internal/highlight"
	"github.com/alexjbarnes/folio/internal/listing"
	"github.com/alexjbarnes/folio/internal/logging"
	"github.com/alexjbarnes/folio/internal/markdown"
	"github.com/alexjbarnes/folio/internal/mathtex"
	"github.com/alexjbarnes/folio/internal/metrics"
	"github.com/alexjbarnes/folio/internal/page"
	"github.com/alexjbarnes/folio/internal/post"
	"github.com/alexjbarnes/folio/internal/readinglist"
	"github.com/alexjbarnes/folio/internal/theme"
)

// Request selects a page to render.
type Request struct {
	Page  string
	Query url.Values

	// Root is the relative path back to the site root, "../" for pages
	// exported one directory down.
	Root string
}

// Pipeline renders pages: template, parse, controllers, HTML.
type Pipeline struct {
	Templates   *template.Template
	Site        *config.Site
	App         *App
	Highlighter *highlight.Highlighter
	Recorder    metrics.Recorder
	Logger      *slog.Logger

	// Decorators run on every document after the controllers.
	Decorators []func(*page.Document)
}

// Options configures New.
type Options struct {
	Source      content.Source
	Site        *config.Site
	Templates   *template.Template
	CodeStyle   string
	MathMode    string
	LongDates   bool
	SortPosts   bool
	LatestLimit int
	Link        listing.LinkFunc
	Recorder    metrics.Recorder
	Logger      *slog.Logger
}

// New wires the controllers and capabilities into a Pipeline.
func New(opts Options) (*Pipeline, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	recorder := opts.Recorder
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	site := opts.Site
	if site == nil {
		site = config.DefaultSite()
	}

	tmpl := opts.Templates
	if tmpl == nil {
		var err error
		if tmpl, err = theme.Templates(""); err != nil {
			return nil, err
		}
	}

	typesetter, err := mathtex.ForMode(opts.MathMode, logger)
	if err != nil {
		return nil, err
	}

	hl := highlight.New(opts.CodeStyle)

	renderer := &post.Renderer{Highlighter: hl, Typesetter: typesetter, Logger: logger}

	return &Pipeline{
		Templates:   tmpl,
		Site:        site,
		Highlighter: hl,
		Recorder:    recorder,
		Logger:      logger,
		App: &App{
			Posts: &post.Controller{
				Loader: &post.Loader{
					Source:    opts.Source,
					Markdown:  markdown.New(),
					LongDates: opts.LongDates,
				},
				Renderer: renderer,
				Logger:   logger,
			},
			Listing: &listing.Controller{
				Source:      opts.Source,
				LatestLimit: opts.LatestLimit,
				Sort:        opts.SortPosts,
				Link:        opts.Link,
				Logger:      logger,
			},
			Reading: &readinglist.Controller{
				Source: opts.Source,
				Logger: logger,
			},
		},
	}, nil
}

// Render renders a top-level page.
func (p *Pipeline) Render(ctx context.Context, name string, query url.Values) ([]byte, error) {
	return p.RenderPage(ctx, Request{Page: name, Query: query})
}

// RenderPage renders req.Page. Unknown pages fail with ErrPageNotFound.
func (p *Pipeline) RenderPage(ctx context.Context, req Request) ([]byte, error) {
	if p.Templates.Lookup(req.Page) == nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrPageNotFound, req.Page)
	}

	start := time.Now()

	var buf bytes.Buffer
	data := theme.Data{Site: p.Site, Page: req.Page, Root: req.Root}
	if err := p.Templates.ExecuteTemplate(&buf, req.Page, data); err != nil {
		return nil, fmt.Errorf("executing %s: %w", req.Page, err)
	}

	doc, err := page.Parse(&buf)
	if err != nil {
		return nil, err
	}

	if err := p.App.Run(ctx, doc, page.RegionsFrom(doc), req.Query); err != nil {
		return nil, err
	}

	for _, decorate := range p.Decorators {
		decorate(doc)
	}

	out, err := doc.Bytes()
	if err != nil {
		return nil, err
	}

	p.Recorder.ObserveRenderDuration(req.Page, time.Since(start))
	p.Logger.LogAttrs(ctx, slog.LevelDebug, "page rendered",
		slog.String("page", req.Page),
		slog.String("post", req.Query.Get(PostQueryParam)),
		slog.Duration("duration", time.Since(start)))

	return out, nil
}

// Posts returns the post index through the pipeline's source.
func (p *Pipeline) Posts(ctx context.Context) ([]content.Summary, error) {
	return listing.Load(ctx, p.App.Listing.Source)
}
