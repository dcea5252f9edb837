// Package export writes every page of the site to a directory as static
// HTML. Pages whose fingerprint has not changed since the last export
// are left alone, and pages whose post has disappeared are removed.
package export

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"

	"github.com/alexjbarnes/folio/internal/logging"
	"github.com/alexjbarnes/folio/internal/metrics"
	"github.com/alexjbarnes/folio/internal/site"
	"github.com/alexjbarnes/folio/internal/state"
	"github.com/alexjbarnes/folio/internal/theme"
)

const (
	// defaultConcurrency bounds parallel page renders.
	defaultConcurrency = 4

	dirPerm  = fs.FileMode(0o755)
	filePerm = fs.FileMode(0o644)

	// postDir holds one exported page per post.
	postDir = "post"
)

// Exporter writes the site into Dir.
type Exporter struct {
	Pipeline *site.Pipeline
	Dir      string

	// State tracks fingerprints between runs. Without it every page is
	// compared against the file on disk.
	State *state.State

	// Origin is recorded in the run summary.
	Origin string

	// DryRun computes changes without writing.
	DryRun bool

	// DiffOut receives a patch for every changed page when set.
	DiffOut io.Writer

	// Styles writes highlight.css. Defaults to the pipeline's highlighter.
	Styles StyleSheet

	Concurrency int
	Recorder    metrics.Recorder
	Logger      *slog.Logger

	now    func() time.Time
	diffMu sync.Mutex
}

// StyleSheet writes the code highlighting CSS.
type StyleSheet interface {
	CSS(w io.Writer) error
}

// Result counts what an export did.
type Result struct {
	Written   []string
	Unchanged []string
	Removed   []string
}

type job struct {
	out string
	req site.Request
}

// Export renders and writes every page. A page that fails to render
// fails the export.
func (e *Exporter) Export(ctx context.Context) (*Result, error) {
	e.defaults()

	dir, err := filepath.Abs(e.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolving export dir: %w", err)
	}
	e.Dir = dir

	if e.State != nil {
		if err := e.State.InitTarget(e.Dir); err != nil {
			return nil, fmt.Errorf("initializing export state: %w", err)
		}
	}

	jobs, err := e.jobs(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	var mu sync.Mutex
	record := func(p string, written bool) {
		mu.Lock()
		defer mu.Unlock()
		if written {
			res.Written = append(res.Written, p)
		} else {
			res.Unchanged = append(res.Unchanged, p)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.Concurrency)

	for _, j := range jobs {
		g.Go(func() error {
			body, err := e.Pipeline.RenderPage(gctx, j.req)
			if err != nil {
				e.Recorder.IncExportedPage(metrics.ResultFailed)
				return fmt.Errorf("rendering %s: %w", j.out, err)
			}
			written, err := e.writeFile(j.out, body)
			if err != nil {
				return err
			}
			record(j.out, written)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	assets, err := e.assets()
	if err != nil {
		return nil, err
	}

	for name, body := range assets {
		written, err := e.writeFile(name, body)
		if err != nil {
			return nil, err
		}
		record(name, written)
	}

	if err := e.prune(res, jobs); err != nil {
		return nil, err
	}

	if e.State != nil && !e.DryRun {
		run := state.ExportRun{
			Time:      e.now().Unix(),
			Origin:    e.Origin,
			Written:   len(res.Written),
			Unchanged: len(res.Unchanged),
			Removed:   len(res.Removed),
		}
		if err := e.State.SetLastRun(e.Dir, run); err != nil {
			return nil, fmt.Errorf("recording export run: %w", err)
		}
	}

	e.Logger.Info("export complete",
		slog.String("dir", e.Dir),
		slog.Int("written", len(res.Written)),
		slog.Int("unchanged", len(res.Unchanged)),
		slog.Int("removed", len(res.Removed)),
		slog.Bool("dry_run", e.DryRun))

	return res, nil
}

func (e *Exporter) defaults() {
	if e.Concurrency <= 0 {
		e.Concurrency = defaultConcurrency
	}
	if e.Recorder == nil {
		e.Recorder = metrics.NoopRecorder{}
	}
	if e.Logger == nil {
		e.Logger = logging.Discard()
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.Styles == nil && e.Pipeline != nil && e.Pipeline.Highlighter != nil {
		e.Styles = e.Pipeline.Highlighter
	}
}

// jobs lists the pages to render: the top-level pages, then one page per
// post in the index. The dynamic post.html is not exported.
func (e *Exporter) jobs(ctx context.Context) ([]job, error) {
	var jobs []job
	for _, name := range theme.Pages {
		if name == theme.PostPage {
			continue
		}
		jobs = append(jobs, job{out: name, req: site.Request{Page: name}})
	}

	posts, err := e.Pipeline.Posts(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading post index: %w", err)
	}

	for _, p := range posts {
		if p.Slug == "" {
			continue
		}
		out := path.Join(postDir, p.Slug+".html")
		if !insidePostDir(out) {
			e.Logger.Warn("skipping post with unsafe slug", slog.String("slug", p.Slug))
			continue
		}
		jobs = append(jobs, job{
			out: out,
			req: site.Request{
				Page:  theme.PostPage,
				Query: url.Values{site.PostQueryParam: {p.Slug}},
				Root:  "../",
			},
		})
	}

	return jobs, nil
}

// insidePostDir reports whether the cleaned page path stays under postDir.
func insidePostDir(out string) bool {
	return fs.ValidPath(out) && strings.HasPrefix(out, postDir+"/")
}

// assets returns the static files written next to the pages.
func (e *Exporter) assets() (map[string][]byte, error) {
	out := make(map[string][]byte)

	err := fs.WalkDir(theme.StaticFS, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		b, err := fs.ReadFile(theme.StaticFS, p)
		if err != nil {
			return err
		}
		out[p] = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading static assets: %w", err)
	}

	if e.Styles != nil {
		var buf bytes.Buffer
		if err := e.Styles.CSS(&buf); err != nil {
			return nil, fmt.Errorf("writing %s: %w", theme.HighlightCSS, err)
		}
		out[theme.HighlightCSS] = buf.Bytes()
	}

	return out, nil
}

// Fingerprint returns the hex BLAKE2b-256 digest of body.
func Fingerprint(body []byte) string {
	sum := blake2b.Sum256(body)
	return hex.EncodeToString(sum[:])
}
