// Package listing loads the post index and formats it into the home
// page's latest-posts list and the writings page's full list.
package listing

import (
	"context"
	"net/url"
	"slices"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alexjbarnes/folio/internal/content"
	"github.com/alexjbarnes/folio/internal/page"
)

// LinkFunc returns the href of a post page.
type LinkFunc func(slug string) string

// QueryLink links to the dynamic post page served by folio serve.
func QueryLink(slug string) string {
	return "post.html?post=" + url.QueryEscape(slug)
}

// PathLink links to a statically exported post page.
func PathLink(slug string) string {
	return "post/" + url.PathEscape(slug) + ".html"
}

// Load fetches the post index once.
func Load(ctx context.Context, src content.Source) ([]content.Summary, error) {
	return src.FetchIndex(ctx)
}

// SortByDateDesc returns a copy of posts, newest first. The sort is
// stable and posts with unparseable dates go last.
func SortByDateDesc(posts []content.Summary) []content.Summary {
	type keyed struct {
		post content.Summary
		at   time.Time
		ok   bool
	}

	ks := make([]keyed, len(posts))
	for i, p := range posts {
		at, ok := content.ParseDate(p.Date)
		ks[i] = keyed{post: p, at: at, ok: ok}
	}

	slices.SortStableFunc(ks, func(a, b keyed) int {
		switch {
		case a.ok && !b.ok:
			return -1
		case !a.ok && b.ok:
			return 1
		case !a.ok && !b.ok:
			return 0
		}
		return b.at.Compare(a.at)
	})

	out := make([]content.Summary, len(ks))
	for i, k := range ks {
		out[i] = k.post
	}
	return out
}

// Limit returns at most n posts. n <= 0 means no limit.
func Limit(posts []content.Summary, n int) []content.Summary {
	if n <= 0 || n >= len(posts) {
		return posts
	}
	return posts[:n]
}

// FormatCompact replaces the children of container with one entry per
// post: date as published, title link, tags.
func FormatCompact(container *html.Node, posts []content.Summary, link LinkFunc) {
	page.Clear(container)
	for _, p := range posts {
		li := page.AppendElement(container, atom.Li, page.Attrs{{"class", "blog-item"}}, "")
		page.AppendElement(li, atom.Span, page.Attrs{{"class", "blog-date"}}, p.Date)
		page.AppendElement(li, atom.A, page.Attrs{{"href", link(p.Slug)}, {"class", "blog-title"}}, p.Title)
		appendTags(li, p.Tags)
	}
}

// FormatExpanded is FormatCompact with a long date, the description and
// a read-more link.
func FormatExpanded(container *html.Node, posts []content.Summary, link LinkFunc) {
	page.Clear(container)
	for _, p := range posts {
		href := link(p.Slug)
		li := page.AppendElement(container, atom.Li, page.Attrs{{"class", "blog-item"}}, "")
		page.AppendElement(li, atom.Span, page.Attrs{{"class", "blog-date"}}, content.LongDate(p.Date))
		page.AppendElement(li, atom.A, page.Attrs{{"href", href}, {"class", "blog-title"}}, p.Title)
		page.AppendElement(li, atom.P, page.Attrs{{"class", "blog-desc"}}, p.Description)
		page.AppendElement(li, atom.A, page.Attrs{{"href", href}, {"class", "read-more"}}, "Read more →")
		appendTags(li, p.Tags)
	}
}

func appendTags(li *html.Node, tags []string) {
	div := page.AppendElement(li, atom.Div, page.Attrs{{"class", "tags"}}, "")
	for _, tag := range tags {
		page.AppendElement(div, atom.Span, page.Attrs{{"class", "tag"}}, tag)
	}
}

// ShowMessage replaces the children of container with a single
// paragraph of the given class.
func ShowMessage(container *html.Node, class, msg string) {
	page.Clear(container)
	page.AppendElement(container, atom.P, page.Attrs{{"class", class}}, msg)
}
