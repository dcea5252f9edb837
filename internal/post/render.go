package post

import (
	"context"
	"log/slog"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alexjbarnes/folio/internal/highlight"
	"github.com/alexjbarnes/folio/internal/logging"
	"github.com/alexjbarnes/folio/internal/page"
)

// CodeHighlighter highlights one code element.
type CodeHighlighter interface {
	HighlightElement(code *html.Node) error
}

// MathTypesetter typesets the math under a node.
type MathTypesetter interface {
	Typeset(root *html.Node) error
}

// Renderer places a loaded post into a page and runs the highlighting
// and math hooks. Nil hooks are skipped.
type Renderer struct {
	Highlighter CodeHighlighter
	Typesetter  MathTypesetter
	Logger      *slog.Logger
}

// Render writes p into the page regions. Only a failure to inject the
// post body is returned; hook failures are logged.
func (r *Renderer) Render(doc *page.Document, regions page.Regions, p *Rendered) error {
	if p.Title != "" {
		doc.SetTitle(p.Title)
	}
	if regions.PostTitle != nil {
		page.SetText(regions.PostTitle, p.Title)
	}
	if regions.PostDate != nil && p.Date != "" {
		page.SetText(regions.PostDate, p.Date)
	}

	if err := page.SetInnerHTML(regions.PostContent, p.HTML); err != nil {
		return err
	}

	if regions.PostTags != nil {
		for _, tag := range p.Tags {
			page.AppendElement(regions.PostTags, atom.Span, page.Attrs{{"class", "tag"}}, tag)
		}
	}

	r.runHooks(doc, p.Slug)

	return nil
}

func (r *Renderer) runHooks(doc *page.Document, slug string) {
	logger := r.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	if r.Highlighter != nil {
		if err := highlight.Apply(doc.Root(), r.Highlighter); err != nil {
			logger.LogAttrs(context.Background(), slog.LevelWarn, "highlighting failed",
				slog.String("post", slug),
				slog.String("error", err.Error()))
		}
	}

	if r.Typesetter != nil {
		if err := r.Typesetter.Typeset(doc.Root()); err != nil {
			logger.LogAttrs(context.Background(), slog.LevelWarn, "math typesetting failed",
				slog.String("post", slug),
				slog.String("error", err.Error()))
		}
	}
}
