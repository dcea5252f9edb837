// Package readinglist renders the reading list page: external links
// with a tooltip that follows the pointer.
package readinglist

import (
	"context"
	"log/slog"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alexjbarnes/folio/internal/content"
	"github.com/alexjbarnes/folio/internal/logging"
	"github.com/alexjbarnes/folio/internal/page"
)

const (
	failedMessage = "Failed to load reading list. Please try again later."
	failedColor   = "#BF616A"
)

// trackPointer moves the link's tooltip to the pointer on every move.
const trackPointer = `var t=this.nextElementSibling;` +
	`t.style.left=(event.pageX+10)+'px';` +
	`t.style.top=(event.pageY+10)+'px';`

// Controller fills the reading-list region.
type Controller struct {
	Source content.Source
	Logger *slog.Logger
}

// Run fetches the reading list and renders it. A failed fetch is shown
// in the loading indicator; only a cancelled context is returned.
func (c *Controller) Run(ctx context.Context, doc *page.Document, regions page.Regions) error {
	if regions.ReadingList == nil {
		return nil
	}

	logger := c.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	items, err := c.Source.FetchReadingList(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		logger.LogAttrs(ctx, slog.LevelError, "error fetching reading list",
			slog.String("error", err.Error()))
		doc.Update(func() {
			if regions.Loading != nil {
				page.SetText(regions.Loading, failedMessage)
				page.SetStyle(regions.Loading, "color", failedColor)
			}
		})
		return nil
	}

	doc.Update(func() {
		if regions.Loading != nil {
			page.SetStyle(regions.Loading, "display", "none")
		}
		for _, item := range items {
			Append(regions.ReadingList, item)
		}
	})

	return nil
}

// Append adds one reading-list entry to list.
func Append(list *html.Node, item content.ReadingItem) {
	li := page.AppendElement(list, atom.Li, page.Attrs{{"class", "reading-item"}}, "")

	page.AppendElement(li, atom.A, page.Attrs{
		{"href", item.URL},
		{"class", "reading-link"},
		{"target", "_blank"},
		{"onmousemove", trackPointer},
	}, item.Title)

	tooltip := page.AppendElement(li, atom.Div, page.Attrs{{"class", "tooltip"}}, "")
	page.AppendElement(tooltip, atom.Div, nil, item.Description)
	page.AppendElement(tooltip, atom.Div, page.Attrs{{"class", "author"}}, "by "+item.Author)

	page.AppendElement(li, atom.Span, page.Attrs{{"class", "reading-date"}}, item.Date)
}
