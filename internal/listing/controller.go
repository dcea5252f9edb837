package listing

import (
	"context"
	"log/slog"

	"golang.org/x/net/html"

	"github.com/alexjbarnes/folio/internal/content"
	"github.com/alexjbarnes/folio/internal/logging"
	"github.com/alexjbarnes/folio/internal/page"
)

// DefaultLatestLimit is the number of posts on the home page.
const DefaultLatestLimit = 3

const (
	msgNoPosts = "No posts available yet."
	msgError   = "Error loading posts"
)

// Controller fills the latest-posts and posts-list regions from one
// fetch of the index.
type Controller struct {
	Source content.Source

	// LatestLimit caps latest-posts. Zero means DefaultLatestLimit.
	LatestLimit int

	// Sort orders posts-list newest first. latest-posts keeps the
	// index order.
	Sort bool

	Link   LinkFunc
	Logger *slog.Logger
}

// Run populates whichever list regions the page has. Fetch failures are
// shown in the page; only a cancelled context is returned.
func (c *Controller) Run(ctx context.Context, doc *page.Document, regions page.Regions) error {
	if regions.PostsList == nil && regions.LatestPosts == nil {
		return nil
	}

	logger := c.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	link := c.Link
	if link == nil {
		link = QueryLink
	}

	posts, err := Load(ctx, c.Source)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		logger.LogAttrs(ctx, slog.LevelError, "error loading posts",
			slog.String("error", err.Error()))
		doc.Update(func() {
			for _, n := range []*html.Node{regions.LatestPosts, regions.PostsList} {
				if n != nil {
					ShowMessage(n, "error-message", msgError)
				}
			}
		})
		return nil
	}

	logger.LogAttrs(ctx, slog.LevelDebug, "posts loaded", slog.Int("count", len(posts)))

	doc.Update(func() {
		if regions.LatestPosts != nil {
			if len(posts) == 0 {
				ShowMessage(regions.LatestPosts, "no-posts", msgNoPosts)
			} else {
				limit := c.LatestLimit
				if limit == 0 {
					limit = DefaultLatestLimit
				}
				FormatCompact(regions.LatestPosts, Limit(posts, limit), link)
			}
		}

		if regions.PostsList != nil {
			if len(posts) == 0 {
				ShowMessage(regions.PostsList, "no-posts", msgNoPosts)
			} else {
				list := posts
				if c.Sort {
					list = SortByDateDesc(posts)
				}
				FormatExpanded(regions.PostsList, list, link)
			}
		}
	})

	return nil
}
