package post

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/net/html"

	"github.com/alexjbarnes/folio/internal/content"
	apperrors "github.com/alexjbarnes/folio/internal/errors"
	"github.com/alexjbarnes/folio/internal/highlight"
	"github.com/alexjbarnes/folio/internal/logging"
	"github.com/alexjbarnes/folio/internal/markdown"
	"github.com/alexjbarnes/folio/internal/page"
)

const postPage = `<!DOCTYPE html>
<html><head><title>Post</title></head>
<body>
<h1 id="post-title"></h1>
<div id="post-date"></div>
<div id="post-tags"></div>
<div id="post-content"><p>Loading...</p></div>
</body></html>`

func newPage(t *testing.T) (*page.Document, page.Regions) {
	t.Helper()
	doc, err := page.ParseString(postPage)
	require.NoError(t, err)
	return doc, page.RegionsFrom(doc)
}

func newController(src content.Source, r *Renderer) *Controller {
	if r == nil {
		r = &Renderer{Logger: logging.Discard()}
	}
	return &Controller{
		Loader:   &Loader{Source: src, Markdown: markdown.New()},
		Renderer: r,
		Logger:   logging.Discard(),
	}
}

func TestRun_RendersPost(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := content.NewMockSource(ctrl)
	src.EXPECT().FetchPost(gomock.Any(), "hello").Return(samplePost, nil)

	doc, regions := newPage(t)
	require.NoError(t, newController(src, nil).Run(context.Background(), doc, regions, "hello"))

	assert.Equal(t, "Hello World", doc.Title())
	assert.Equal(t, "Hello World", page.Text(regions.PostTitle))
	assert.Equal(t, "2024-01-05", page.Text(regions.PostDate))
	assert.Contains(t, page.InnerHTML(regions.PostContent), `<h1 id="intro">Intro</h1>`)
	assert.NotContains(t, page.InnerHTML(regions.PostContent), "Loading...")
	assert.Equal(t, `<span class="tag">go</span><span class="tag">web dev</span>`, page.InnerHTML(regions.PostTags))
}

func TestRun_EmptyTitleKeepsPageTitle(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := content.NewMockSource(ctrl)
	src.EXPECT().FetchPost(gomock.Any(), "untitled").Return("no frontmatter", nil)

	doc, regions := newPage(t)
	require.NoError(t, newController(src, nil).Run(context.Background(), doc, regions, "untitled"))

	assert.Equal(t, "Post", doc.Title())
	assert.Empty(t, page.Text(regions.PostTitle))
	assert.Empty(t, page.Text(regions.PostDate))
	assert.Nil(t, regions.PostTags.FirstChild)
}

func TestRun_NoSlug(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := content.NewMockSource(ctrl)

	doc, regions := newPage(t)
	require.NoError(t, newController(src, nil).Run(context.Background(), doc, regions, ""))

	assert.Equal(t, `<div class="error-message">No post specified</div>`, page.InnerHTML(regions.PostContent))
}

func TestRun_NotFoundShowsErrorAndHelp(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := content.NewMockSource(ctrl)
	src.EXPECT().FetchPost(gomock.Any(), "missing").
		Return("", &content.StatusError{Path: "/posts/missing.md", Code: 404})

	doc, regions := newPage(t)
	require.NoError(t, newController(src, nil).Run(context.Background(), doc, regions, "missing"))

	inner := page.InnerHTML(regions.PostContent)
	assert.Contains(t, inner, `<div class="error-message">Error loading post: post not found: GET /posts/missing.md: status 404</div>`)
	assert.Contains(t, inner, "<p>Make sure you have:</p>")
	assert.Contains(t, inner, "<code>missing.md</code>")
}

func TestRun_OtherFailureHasNoHelp(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := content.NewMockSource(ctrl)
	src.EXPECT().FetchPost(gomock.Any(), "x").
		Return("", &content.StatusError{Path: "/posts/x.md", Code: 500})

	doc, regions := newPage(t)
	require.NoError(t, newController(src, nil).Run(context.Background(), doc, regions, "x"))

	inner := page.InnerHTML(regions.PostContent)
	assert.Contains(t, inner, "Error loading post: post not found: GET /posts/x.md: status 500")
	assert.NotContains(t, inner, "Make sure you have")
}

func TestRun_ErrorMessageEscaped(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := content.NewMockSource(ctrl)
	src.EXPECT().FetchPost(gomock.Any(), "x").Return("", errors.New("<script>bad</script>"))

	doc, regions := newPage(t)
	require.NoError(t, newController(src, nil).Run(context.Background(), doc, regions, "x"))

	assert.Contains(t, page.InnerHTML(regions.PostContent), "&lt;script&gt;")
}

func TestRun_CancelledContextReturned(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := content.NewMockSource(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src.EXPECT().FetchPost(gomock.Any(), "x").Return("", errors.Join(apperrors.ErrFetch, context.Canceled))

	doc, regions := newPage(t)
	err := newController(src, nil).Run(ctx, doc, regions, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_NoContentRegionIsNoop(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := content.NewMockSource(ctrl)

	doc, err := page.ParseString(`<body><ul id="posts-list"></ul></body>`)
	require.NoError(t, err)
	require.NoError(t, newController(src, nil).Run(context.Background(), doc, page.RegionsFrom(doc), "x"))
}

type countingTypesetter struct {
	calls int
	err   error
}

func (c *countingTypesetter) Typeset(*html.Node) error {
	c.calls++
	return c.err
}

func TestRun_RunsHighlightAndMathHooks(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := content.NewMockSource(ctrl)
	src.EXPECT().FetchPost(gomock.Any(), "code").
		Return("```go\nx := 1\n```\n\n```math\nx^2\n```\n", nil)

	ts := &countingTypesetter{}
	r := &Renderer{Highlighter: highlight.New(""), Typesetter: ts, Logger: logging.Discard()}

	doc, regions := newPage(t)
	require.NoError(t, newController(src, r).Run(context.Background(), doc, regions, "code"))

	codes, err := doc.Query("pre code.hljs")
	require.NoError(t, err)
	assert.Len(t, codes, 1)
	assert.Equal(t, 1, ts.calls)

	blocks, err := doc.Query("div.math-block")
	require.NoError(t, err)
	assert.Len(t, blocks, 1)
}

func TestRun_HookFailureIsNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := content.NewMockSource(ctrl)
	src.EXPECT().FetchPost(gomock.Any(), "m").Return("---\ntitle: M\n---\n$x$", nil)

	ts := &countingTypesetter{err: errors.New("bad tex")}
	r := &Renderer{Typesetter: ts, Logger: logging.Discard()}

	doc, regions := newPage(t)
	require.NoError(t, newController(src, r).Run(context.Background(), doc, regions, "m"))

	assert.Equal(t, "M", page.Text(regions.PostTitle))
	assert.Contains(t, page.InnerHTML(regions.PostContent), `\(x\)`)
}
