package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/alexjbarnes/folio/internal/content"
	"github.com/alexjbarnes/folio/internal/frontmatter"
	"github.com/alexjbarnes/folio/internal/listing"
)

const (
	defaultMaxResults = 20

	// searchFetchLimit bounds concurrent post fetches in the content phase.
	searchFetchLimit = 4

	snippetContext = 50
)

// Match types, in the order they are searched.
const (
	MatchTitle       = "title"
	MatchTag         = "tag"
	MatchDescription = "description"
	MatchContent     = "content"
)

// SearchMatch is a single search result.
type SearchMatch struct {
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	MatchType string `json:"match_type"`
	Snippet   string `json:"snippet"`
	Line      int    `json:"line"`
}

// SearchResult is returned by blog_search_posts.
type SearchResult struct {
	Query        string        `json:"query"`
	TotalMatches int           `json:"total_matches"`
	Results      []SearchMatch `json:"results"`
}

// Search does a case-insensitive search over the post index and then the
// post bodies. Each post appears at most once, under its first matching
// phase: title or slug, tag, description, content. Posts are visited
// newest first.
func Search(ctx context.Context, src content.Source, query string, maxResults int) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query must not be empty")
	}
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	posts, err := listing.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	posts = listing.SortByDateDesc(posts)

	lowerQuery := strings.ToLower(query)
	seen := make(map[string]bool)
	matches := []SearchMatch{}

	phase := func(matchType string, match func(p content.Summary) (string, bool)) {
		for _, p := range posts {
			if len(matches) >= maxResults {
				return
			}
			if seen[p.Slug] {
				continue
			}
			if snippet, ok := match(p); ok {
				matches = append(matches, SearchMatch{
					Slug:      p.Slug,
					Title:     p.Title,
					MatchType: matchType,
					Snippet:   snippet,
					Line:      1,
				})
				seen[p.Slug] = true
			}
		}
	}

	phase(MatchTitle, func(p content.Summary) (string, bool) {
		if containsFold(p.Title, lowerQuery) || containsFold(p.Slug, lowerQuery) {
			return p.Title, true
		}
		return "", false
	})

	phase(MatchTag, func(p content.Summary) (string, bool) {
		for _, tag := range p.Tags {
			if containsFold(tag, lowerQuery) {
				return fmt.Sprintf("tags: [%s]", strings.Join(p.Tags, ", ")), true
			}
		}
		return "", false
	})

	phase(MatchDescription, func(p content.Summary) (string, bool) {
		if snippet, ok := findInLine(p.Description, lowerQuery); ok {
			return snippet, true
		}
		return "", false
	})

	if len(matches) < maxResults {
		found, err := searchBodies(ctx, src, posts, lowerQuery, seen)
		if err != nil {
			return nil, err
		}
		for _, m := range found {
			if len(matches) >= maxResults {
				break
			}
			matches = append(matches, m)
		}
	}

	return &SearchResult{
		Query:        query,
		TotalMatches: len(matches),
		Results:      matches,
	}, nil
}

// searchBodies fetches every post not yet matched and returns the first
// matching body line of each, in post order. Posts that fail to fetch are
// skipped.
func searchBodies(ctx context.Context, src content.Source, posts []content.Summary, lowerQuery string, seen map[string]bool) ([]SearchMatch, error) {
	found := make([]*SearchMatch, len(posts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(searchFetchLimit)

	for i, p := range posts {
		if seen[p.Slug] || p.Slug == "" {
			continue
		}
		g.Go(func() error {
			raw, err := src.FetchPost(gctx, p.Slug)
			if err != nil {
				return gctx.Err()
			}

			body := frontmatter.Parse(raw).Content
			for n, line := range strings.Split(body, "\n") {
				if snippet, ok := findInLine(line, lowerQuery); ok {
					found[i] = &SearchMatch{
						Slug:      p.Slug,
						Title:     p.Title,
						MatchType: MatchContent,
						Snippet:   snippet,
						Line:      n + 1,
					}
					return nil
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []SearchMatch
	for _, m := range found {
		if m != nil {
			out = append(out, *m)
		}
	}
	return out, nil
}

func containsFold(s, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(s), lowerQuery)
}

// findInLine returns a snippet around the first match in line.
func findInLine(line, lowerQuery string) (string, bool) {
	lower := strings.ToLower(line)
	idx := strings.Index(lower, lowerQuery)
	if idx < 0 {
		return "", false
	}
	// Lowercasing can change byte lengths outside ASCII.
	if len(lower) != len(line) {
		line = lower
	}
	return buildSnippet(line, idx, len(lowerQuery)), true
}

// buildSnippet creates a context snippet around a match, bolding the match.
// matchStart and matchLen are byte offsets into line.
func buildSnippet(line string, matchStart, matchLen int) string {
	start := max(matchStart-snippetContext, 0)
	end := min(matchStart+matchLen+snippetContext, len(line))

	prefix := ""
	if start > 0 {
		prefix = "..."
	}

	suffix := ""
	if end < len(line) {
		suffix = "..."
	}

	before := line[start:matchStart]
	matched := line[matchStart : matchStart+matchLen]
	after := line[matchStart+matchLen : end]

	return prefix + before + "**" + matched + "**" + after + suffix
}
