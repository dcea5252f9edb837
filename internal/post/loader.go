// Package post loads a single post from the content origin and renders
// it into the post page.
package post

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexjbarnes/folio/internal/content"
	apperrors "github.com/alexjbarnes/folio/internal/errors"
	"github.com/alexjbarnes/folio/internal/frontmatter"
)

// MarkdownRenderer converts a post body to HTML.
type MarkdownRenderer interface {
	Render(markdown string) (string, error)
}

// Rendered is a post ready to be placed into a page.
type Rendered struct {
	Slug  string
	Title string
	Date  string
	Tags  []string
	HTML  string

	// Frontmatter holds every parsed key, including ones the page
	// does not display.
	Frontmatter frontmatter.Frontmatter
}

// Loader fetches a post, splits its frontmatter and renders the body.
type Loader struct {
	Source   content.Source
	Markdown MarkdownRenderer

	// LongDates reformats parseable dates as "JANUARY 5, 2024".
	LongDates bool
}

// Load returns the rendered post for slug. An empty slug fails with
// ErrNoPostSpecified without fetching.
func (l *Loader) Load(ctx context.Context, slug string) (*Rendered, error) {
	if slug == "" {
		return nil, apperrors.ErrNoPostSpecified
	}

	raw, err := l.Source.FetchPost(ctx, slug)
	if err != nil {
		var statusErr *content.StatusError
		if errors.As(err, &statusErr) {
			return nil, fmt.Errorf("post not found: %w", err)
		}
		return nil, err
	}

	doc := frontmatter.Parse(raw)

	body, err := l.Markdown.Render(doc.Content)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", slug, err)
	}

	p := &Rendered{
		Slug:        slug,
		Title:       doc.Frontmatter.String("title"),
		Date:        doc.Frontmatter.String("date"),
		HTML:        body,
		Frontmatter: doc.Frontmatter,
	}
	if tags, ok := doc.Frontmatter.List("tags"); ok {
		p.Tags = tags
	}
	if l.LongDates && p.Date != "" {
		p.Date = content.LongDate(p.Date)
	}

	return p, nil
}
