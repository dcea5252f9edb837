// Package mcpserver registers MCP tools that expose the blog read-only.
// Tools go through the same content source and renderers as the pages.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/alexjbarnes/folio/internal/content"
	"github.com/alexjbarnes/folio/internal/frontmatter"
	"github.com/alexjbarnes/folio/internal/listing"
	"github.com/alexjbarnes/folio/internal/post"
	"github.com/alexjbarnes/folio/internal/site"
	"github.com/alexjbarnes/folio/internal/theme"
)

// PageRenderer renders a full page.
type PageRenderer interface {
	RenderPage(ctx context.Context, req site.Request) ([]byte, error)
}

// Deps holds what the tools read from.
type Deps struct {
	Source content.Source
	Posts  *post.Loader
	Pages  PageRenderer
}

// RegisterTools adds all blog tools to the given MCP server.
func RegisterTools(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "blog_list_posts",
		Description: "List published posts, newest first, with slug, title, date, description and tags. Optionally filter by tag and cap the count.",
	}, listPostsHandler(d))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "blog_read_post",
		Description: "Read one post by slug. Returns its frontmatter and the body as rendered HTML, or as the raw markdown when format is \"markdown\".",
	}, readPostHandler(d))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "blog_search_posts",
		Description: "Case-insensitive search across post titles, slugs, tags, descriptions and bodies. Returns matching posts with a context snippet and line number, one match per post.",
	}, searchHandler(d))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "blog_reading_list",
		Description: "List the external reading list: url, title, date, description and author for each entry.",
	}, readingListHandler(d))

	if d.Pages != nil {
		mcp.AddTool(server, &mcp.Tool{
			Name:        "blog_render_page",
			Description: "Render a complete site page (index.html, writings.html, post.html, reading.html) to HTML exactly as the web server would.",
		}, renderPageHandler(d))
	}
}

// --- Input types ---

// ListPostsInput holds parameters for blog_list_posts.
type ListPostsInput struct {
	Tag   string `json:"tag,omitempty" jsonschema:"only posts carrying this tag, case-insensitive"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of posts, 0 means all"`
}

// ReadPostInput holds parameters for blog_read_post.
type ReadPostInput struct {
	Slug   string `json:"slug" jsonschema:"required,post slug as listed in the index"`
	Format string `json:"format,omitempty" jsonschema:"html (default) or markdown"`
}

// SearchInput holds parameters for blog_search_posts.
type SearchInput struct {
	Query      string `json:"query" jsonschema:"required,search query"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"maximum number of results, defaults to 20"`
}

// ReadingListInput has no parameters.
type ReadingListInput struct{}

// RenderPageInput holds parameters for blog_render_page.
type RenderPageInput struct {
	Page string `json:"page" jsonschema:"required,page template name such as index.html"`
	Post string `json:"post,omitempty" jsonschema:"post slug, used by post.html"`
}

// --- Result types ---

// ListPostsResult is returned by blog_list_posts.
type ListPostsResult struct {
	Total int               `json:"total"`
	Posts []content.Summary `json:"posts"`
}

// ReadPostResult is returned by blog_read_post.
type ReadPostResult struct {
	Slug        string         `json:"slug"`
	Title       string         `json:"title,omitempty"`
	Date        string         `json:"date,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Frontmatter map[string]any `json:"frontmatter"`
	Format      string         `json:"format"`
	Body        string         `json:"body"`
}

// ReadingListResult is returned by blog_reading_list.
type ReadingListResult struct {
	Total int                   `json:"total"`
	Items []content.ReadingItem `json:"items"`
}

// RenderPageResult is returned by blog_render_page.
type RenderPageResult struct {
	Page string `json:"page"`
	HTML string `json:"html"`
}

// Post body formats.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// --- Handlers ---

func listPostsHandler(d Deps) mcp.ToolHandlerFor[ListPostsInput, *ListPostsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ListPostsInput) (*mcp.CallToolResult, *ListPostsResult, error) {
		if input.Limit < 0 {
			return nil, nil, fmt.Errorf("limit must not be negative")
		}

		posts, err := listing.Load(ctx, d.Source)
		if err != nil {
			return nil, nil, err
		}

		posts = listing.SortByDateDesc(posts)
		if input.Tag != "" {
			posts = slices.DeleteFunc(posts, func(p content.Summary) bool {
				return !slices.ContainsFunc(p.Tags, func(t string) bool {
					return strings.EqualFold(t, input.Tag)
				})
			})
		}
		if input.Limit > 0 {
			posts = listing.Limit(posts, input.Limit)
		}
		if posts == nil {
			posts = []content.Summary{}
		}

		result := &ListPostsResult{Total: len(posts), Posts: posts}
		return textResult(result), result, nil
	}
}

func readPostHandler(d Deps) mcp.ToolHandlerFor[ReadPostInput, *ReadPostResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ReadPostInput) (*mcp.CallToolResult, *ReadPostResult, error) {
		var (
			result *ReadPostResult
			err    error
		)

		switch input.Format {
		case "", FormatHTML:
			result, err = readRendered(ctx, d, input.Slug)
		case FormatMarkdown:
			result, err = readMarkdown(ctx, d, input.Slug)
		default:
			return nil, nil, fmt.Errorf("unknown format %q, use %s or %s", input.Format, FormatHTML, FormatMarkdown)
		}
		if err != nil {
			return nil, nil, err
		}

		return textResult(result), result, nil
	}
}

func readRendered(ctx context.Context, d Deps, slug string) (*ReadPostResult, error) {
	p, err := d.Posts.Load(ctx, slug)
	if err != nil {
		return nil, err
	}

	return &ReadPostResult{
		Slug:        p.Slug,
		Title:       p.Title,
		Date:        p.Date,
		Tags:        p.Tags,
		Frontmatter: p.Frontmatter,
		Format:      FormatHTML,
		Body:        p.HTML,
	}, nil
}

func readMarkdown(ctx context.Context, d Deps, slug string) (*ReadPostResult, error) {
	if slug == "" {
		return nil, fmt.Errorf("slug is required")
	}

	raw, err := d.Source.FetchPost(ctx, slug)
	if err != nil {
		return nil, err
	}

	doc := frontmatter.Parse(raw)
	tags, _ := doc.Frontmatter.List("tags")

	return &ReadPostResult{
		Slug:        slug,
		Title:       doc.Frontmatter.String("title"),
		Date:        doc.Frontmatter.String("date"),
		Tags:        tags,
		Frontmatter: doc.Frontmatter,
		Format:      FormatMarkdown,
		Body:        doc.Content,
	}, nil
}

func searchHandler(d Deps) mcp.ToolHandlerFor[SearchInput, *SearchResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, *SearchResult, error) {
		result, err := Search(ctx, d.Source, input.Query, input.MaxResults)
		if err != nil {
			return nil, nil, err
		}
		return textResult(result), result, nil
	}
}

func readingListHandler(d Deps) mcp.ToolHandlerFor[ReadingListInput, *ReadingListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ ReadingListInput) (*mcp.CallToolResult, *ReadingListResult, error) {
		items, err := d.Source.FetchReadingList(ctx)
		if err != nil {
			return nil, nil, err
		}
		if items == nil {
			items = []content.ReadingItem{}
		}

		result := &ReadingListResult{Total: len(items), Items: items}
		return textResult(result), result, nil
	}
}

func renderPageHandler(d Deps) mcp.ToolHandlerFor[RenderPageInput, *RenderPageResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RenderPageInput) (*mcp.CallToolResult, *RenderPageResult, error) {
		if !theme.IsPage(input.Page) {
			return nil, nil, fmt.Errorf("unknown page %q", input.Page)
		}

		query := url.Values{}
		if input.Post != "" {
			query.Set(site.PostQueryParam, input.Post)
		}

		body, err := d.Pages.RenderPage(ctx, site.Request{Page: input.Page, Query: query})
		if err != nil {
			return nil, nil, err
		}

		result := &RenderPageResult{Page: input.Page, HTML: string(body)}
		return textResult(result), result, nil
	}
}

// textResult builds a CallToolResult with JSON text content alongside
// the structured output the SDK fills in.
func textResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("error marshaling result: %v", err)}},
			IsError: true,
		}
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}
}
