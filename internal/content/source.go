// Package content fetches the blog's published resources: the post
// index, individual markdown posts, and the reading list.
package content

import "context"

//go:generate mockgen -source=source.go -destination=mock_source.go -package=content

// Summary is one entry of the post index.
type Summary struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Date        string   `json:"date"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// ReadingItem is one external link of the reading list.
type ReadingItem struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Author      string `json:"author"`
}

// Source is the set of fetches the page controllers depend on.
// *Client satisfies it.
type Source interface {
	FetchIndex(ctx context.Context) ([]Summary, error)
	FetchPost(ctx context.Context, slug string) (string, error)
	FetchReadingList(ctx context.Context) ([]ReadingItem, error)
}
