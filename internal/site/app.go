// Package site runs the page controllers against a rendered page
// template and produces the finished HTML.
package site

import (
	"context"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/alexjbarnes/folio/internal/listing"
	"github.com/alexjbarnes/folio/internal/page"
	"github.com/alexjbarnes/folio/internal/post"
	"github.com/alexjbarnes/folio/internal/readinglist"
)

// PostQueryParam names the post slug in a page query.
const PostQueryParam = "post"

// App is the application entry: it runs every controller whose region
// the page exposes. Controllers own disjoint regions, so they run
// concurrently.
type App struct {
	Posts   *post.Controller
	Listing *listing.Controller
	Reading *readinglist.Controller
}

// Run populates doc. Controller failures are rendered into the page;
// the returned error is only ever a context error.
func (a *App) Run(ctx context.Context, doc *page.Document, regions page.Regions, query url.Values) error {
	g, ctx := errgroup.WithContext(ctx)

	if a.Posts != nil && regions.PostContent != nil {
		slug := query.Get(PostQueryParam)
		g.Go(func() error {
			return a.Posts.Run(ctx, doc, regions, slug)
		})
	}

	if a.Listing != nil && (regions.PostsList != nil || regions.LatestPosts != nil) {
		g.Go(func() error {
			return a.Listing.Run(ctx, doc, regions)
		})
	}

	if a.Reading != nil && regions.ReadingList != nil {
		g.Go(func() error {
			return a.Reading.Run(ctx, doc, regions)
		})
	}

	return g.Wait()
}
