package post

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alexjbarnes/folio/internal/content"
	apperrors "github.com/alexjbarnes/folio/internal/errors"
	"github.com/alexjbarnes/folio/internal/logging"
	"github.com/alexjbarnes/folio/internal/page"
)

// Controller drives the post page: load, render, or show an error in
// the content region.
type Controller struct {
	Loader   *Loader
	Renderer *Renderer
	Logger   *slog.Logger
}

// Run fills the post page for slug. Load and render failures end up in
// the page; only a cancelled context is returned.
func (c *Controller) Run(ctx context.Context, doc *page.Document, regions page.Regions, slug string) error {
	if regions.PostContent == nil {
		return nil
	}

	logger := c.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	p, err := c.Loader.Load(ctx, slug)
	if errors.Is(err, apperrors.ErrNoPostSpecified) {
		doc.Update(func() {
			showError(regions.PostContent, "No post specified")
		})
		return nil
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		logger.LogAttrs(ctx, slog.LevelError, "error loading post",
			slog.String("post", slug),
			slog.String("error", err.Error()))
		doc.Update(func() {
			showError(regions.PostContent, "Error loading post: "+err.Error())
			if content.IsNotFound(err) {
				appendHelp(regions.PostContent, slug)
			}
		})
		return nil
	}

	doc.Update(func() {
		err = c.Renderer.Render(doc, regions, p)
		if err != nil {
			showError(regions.PostContent, "Error loading post: "+err.Error())
		}
	})
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error rendering post",
			slog.String("post", slug),
			slog.String("error", err.Error()))
		return nil
	}

	logger.LogAttrs(ctx, slog.LevelDebug, "post rendered",
		slog.String("post", slug),
		slog.Int("tags", len(p.Tags)))

	return nil
}

func showError(container *html.Node, msg string) {
	page.Clear(container)
	page.AppendElement(container, atom.Div, page.Attrs{{"class", "error-message"}}, msg)
}

// appendHelp adds the checklist shown when a post file is missing.
func appendHelp(container *html.Node, slug string) {
	page.AppendElement(container, atom.P, nil, "Make sure you have:")
	ol := page.AppendElement(container, atom.Ol, nil, "")

	li := page.AppendElement(ol, atom.Li, nil, "Created the ")
	page.AppendElement(li, atom.Code, nil, "posts")
	page.AppendText(li, " directory in your content root")

	li = page.AppendElement(ol, atom.Li, nil, "Added the markdown file with the correct name (")
	page.AppendElement(li, atom.Code, nil, slug+".md")
	page.AppendText(li, ")")

	page.AppendElement(ol, atom.Li, nil, "Published every file to the content origin")
}
