package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexjbarnes/folio/internal/config"
	"github.com/alexjbarnes/folio/internal/logging"
)

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Vars{"version": "test"}, kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &cli, kctx
}

func TestCLI_Commands(t *testing.T) {
	_, kctx := parse(t, "serve", "--mcp", "--listen", ":9000")
	assert.Equal(t, "serve", kctx.Command())

	_, kctx = parse(t, "render")
	assert.Equal(t, "render", kctx.Command())

	cli, _ := parse(t, "render", "post.html", "--post", "hello")
	assert.Equal(t, "post.html", cli.Render.Page)
	assert.Equal(t, "hello", cli.Render.Post)

	cli, _ = parse(t, "export", "--dry-run", "--diff", "-d", "out")
	assert.True(t, cli.Export.DryRun)
	assert.True(t, cli.Export.Diff)
	assert.Equal(t, "out", cli.Export.Dir)
	assert.Equal(t, 4, cli.Export.Concurrency)
}

func TestCLI_RenderDefaultsToIndex(t *testing.T) {
	cli, _ := parse(t, "render")
	assert.Equal(t, "index.html", cli.Render.Page)
}

func TestCLI_ApplyOverrides(t *testing.T) {
	cli, _ := parse(t, "--content", "https://blog.example.com", "--math", "client", "render")

	cfg := &config.Config{Content: "./site", MathMode: "mathml", CodeStyle: "nord", LogLevel: "info"}
	cli.apply(cfg)

	assert.Equal(t, "https://blog.example.com", cfg.Content)
	assert.Equal(t, "client", cfg.MathMode)
	assert.Equal(t, "nord", cfg.CodeStyle)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestWatchDirs(t *testing.T) {
	assert.Equal(t, []string{"content", "pages"}, watchDirs("content", "pages", true))
	assert.Equal(t, []string{"pages"}, watchDirs("https://x", "pages", false))
	assert.Empty(t, watchDirs("https://x", "", false))
}

// writeSite lays out a minimal local content origin.
func writeSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"posts/index.json":  `[{"slug":"hello","title":"Hello","date":"2024-01-05","tags":["go"]}]`,
		"posts/hello.md":    "---\ntitle: Hello\ndate: 2024-01-05\n---\n\nHi **there**.\n",
		"reading-list.json": `[]`,
	}
	for p, body := range files {
		abs := filepath.Join(dir, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(body), 0o644))
	}
	return dir
}

func testEnv(t *testing.T, contentDir string) *Env {
	t.Helper()
	return &Env{
		Ctx: context.Background(),
		Config: &config.Config{
			Content:     contentDir,
			LongDates:   true,
			SortPosts:   true,
			LatestLimit: 3,
			CodeStyle:   "nord",
			MathMode:    "mathml",
			SiteFile:    filepath.Join(t.TempDir(), "missing.yaml"),
			StateDir:    t.TempDir(),
		},
		Logger: logging.Discard(),
	}
}

func TestRenderCmd_WritesPost(t *testing.T) {
	env := testEnv(t, writeSite(t))
	out := filepath.Join(t.TempDir(), "post.html")

	cmd := &RenderCmd{Page: "post.html", Post: "hello", Out: out}
	require.NoError(t, cmd.Run(env))

	body, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(body), "<strong>there</strong>")
	assert.Contains(t, string(body), "JANUARY 5, 2024")
}

// captureStdout runs fn with os.Stdout redirected and returns what it wrote.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)

	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	done := make(chan []byte)
	go func() {
		b, _ := io.ReadAll(r)
		done <- b
	}()

	fn()

	require.NoError(t, w.Close())
	return string(<-done)
}

func TestRenderCmd_StdoutIsOnlyHTML(t *testing.T) {
	env := testEnv(t, writeSite(t))
	env.Logger = logging.NewLogger("development", "debug")

	var runErr error
	out := captureStdout(t, func() {
		runErr = (&RenderCmd{Page: "writings.html"}).Run(env)
	})
	require.NoError(t, runErr)

	trimmed := strings.TrimSpace(out)
	assert.True(t, strings.HasPrefix(trimmed, "<!DOCTYPE") || strings.HasPrefix(trimmed, "<html"),
		"stdout should start with the page, got %.80q", trimmed)
	assert.NotContains(t, out, "level=")
}

func TestExportCmd_WritesSite(t *testing.T) {
	env := testEnv(t, writeSite(t))
	dir := filepath.Join(t.TempDir(), "public")

	cmd := &ExportCmd{Dir: dir, Concurrency: 2}
	require.NoError(t, cmd.Run(env))

	for _, p := range []string{"index.html", "writings.html", "reading.html", "post/hello.html", "style.css", "highlight.css"} {
		assert.FileExists(t, filepath.Join(dir, filepath.FromSlash(p)))
	}

	body, err := os.ReadFile(filepath.Join(dir, "writings.html"))
	require.NoError(t, err)
	assert.Contains(t, string(body), `href="post/hello.html"`)
}

func TestExportCmd_DryRunWritesNothing(t *testing.T) {
	env := testEnv(t, writeSite(t))
	dir := filepath.Join(t.TempDir(), "public")

	cmd := &ExportCmd{Dir: dir, DryRun: true, Concurrency: 1}
	require.NoError(t, cmd.Run(env))

	_, err := os.Stat(filepath.Join(dir, "index.html"))
	assert.True(t, os.IsNotExist(err))
}
