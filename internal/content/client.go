package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/alexjbarnes/folio/internal/errors"
	"github.com/alexjbarnes/folio/internal/metrics"
	"github.com/tidwall/gjson"
)

// Resource names used for metrics labels.
const (
	ResourceIndex       = "index"
	ResourcePost        = "post"
	ResourceReadingList = "reading_list"
)

// Paths of the published resources relative to the origin root.
const (
	IndexPath       = "/posts/index.json"
	ReadingListPath = "/reading-list.json"
)

const (
	// httpClientTimeout is the timeout for the default HTTP client used
	// when no custom client is provided.
	httpClientTimeout = 30 * time.Second

	// maxResponseBytes caps body reads. Posts are markdown and the
	// index is a small JSON array.
	maxResponseBytes = 8 * 1024 * 1024

	// cacheBustParam is the query parameter added when cache busting.
	cacheBustParam = "t"
)

// StatusError reports a non-2xx response from the content origin.
type StatusError struct {
	Path string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.Path, e.Code)
}

func (e *StatusError) Unwrap() error { return apperrors.ErrStatus }

// IsNotFound reports whether err is a 404 from the content origin.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// Client fetches resources from an HTTP origin or a local directory.
type Client struct {
	httpClient *http.Client
	base       *url.URL
	cacheBust  bool
	now        func() time.Time
	recorder   metrics.Recorder
	maxBody    int64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. Ignored for local
// directory origins, which always use a file transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil && c.base.Scheme != "file" {
			c.httpClient = hc
		}
	}
}

// WithCacheBust appends t=<unix millis> to index and post requests.
func WithCacheBust(enabled bool) Option {
	return func(c *Client) { c.cacheBust = enabled }
}

// WithClock sets the clock used for cache-bust values.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(c *Client) {
		if r != nil {
			c.recorder = r
		}
	}
}

// NewClient creates a client for origin, which is either an http(s) base
// URL or a path to a local directory laid out like the published site.
func NewClient(origin string, opts ...Option) (*Client, error) {
	if origin == "" {
		return nil, fmt.Errorf("content origin must not be empty")
	}

	c := &Client{
		now:      time.Now,
		recorder: metrics.NoopRecorder{},
		maxBody:  maxResponseBytes,
	}

	if strings.HasPrefix(origin, "http://") || strings.HasPrefix(origin, "https://") {
		base, err := url.Parse(origin)
		if err != nil {
			return nil, fmt.Errorf("parsing content origin: %w", err)
		}
		if !strings.HasSuffix(base.Path, "/") {
			base.Path += "/"
		}
		c.base = base
		c.httpClient = &http.Client{Timeout: httpClientTimeout}
	} else {
		dir, err := filepath.Abs(origin)
		if err != nil {
			return nil, fmt.Errorf("resolving content directory: %w", err)
		}
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("accessing content directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("content origin is not a directory: %s", dir)
		}
		c.base = &url.URL{Scheme: "file", Host: "content", Path: "/"}
		c.httpClient = &http.Client{Transport: http.NewFileTransport(http.Dir(dir))}
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Origin returns the base URL requests are resolved against.
func (c *Client) Origin() string {
	return c.base.String()
}

// FetchIndex fetches and decodes the post index.
func (c *Client) FetchIndex(ctx context.Context) ([]Summary, error) {
	body, err := c.get(ctx, ResourceIndex, IndexPath, c.cacheBust)
	if err != nil {
		return nil, err
	}

	items, err := decodeArray(body)
	if err != nil {
		c.recorder.IncFetch(ResourceIndex, metrics.ResultDecode)
		return nil, fmt.Errorf("decoding %s: %w", IndexPath, err)
	}

	summaries := make([]Summary, 0, len(items))
	for _, item := range items {
		s := Summary{
			Slug:        item.Get("slug").String(),
			Title:       item.Get("title").String(),
			Date:        item.Get("date").String(),
			Description: item.Get("description").String(),
		}
		// Tags are only taken when they are actually an array.
		if tags := item.Get("tags"); tags.IsArray() {
			s.Tags = make([]string, 0, len(tags.Array()))
			for _, tag := range tags.Array() {
				s.Tags = append(s.Tags, tag.String())
			}
		}
		summaries = append(summaries, s)
	}

	c.recorder.IncFetch(ResourceIndex, metrics.ResultSuccess)

	return summaries, nil
}

// FetchPost fetches the raw markdown document for slug.
func (c *Client) FetchPost(ctx context.Context, slug string) (string, error) {
	if strings.Contains(slug, "..") {
		return "", fmt.Errorf("post %q: %w", slug, apperrors.ErrInvalidSlug)
	}

	p := "/posts/" + slug + ".md"

	body, err := c.get(ctx, ResourcePost, p, c.cacheBust)
	if err != nil {
		return "", err
	}

	c.recorder.IncFetch(ResourcePost, metrics.ResultSuccess)

	return string(body), nil
}

// FetchReadingList fetches and decodes the reading list.
func (c *Client) FetchReadingList(ctx context.Context) ([]ReadingItem, error) {
	body, err := c.get(ctx, ResourceReadingList, ReadingListPath, false)
	if err != nil {
		return nil, err
	}

	items, err := decodeArray(body)
	if err != nil {
		c.recorder.IncFetch(ResourceReadingList, metrics.ResultDecode)
		return nil, fmt.Errorf("decoding %s: %w", ReadingListPath, err)
	}

	list := make([]ReadingItem, 0, len(items))
	for _, item := range items {
		list = append(list, ReadingItem{
			URL:         item.Get("url").String(),
			Title:       item.Get("title").String(),
			Date:        item.Get("date").String(),
			Description: item.Get("description").String(),
			Author:      item.Get("author").String(),
		})
	}

	c.recorder.IncFetch(ResourceReadingList, metrics.ResultSuccess)

	return list, nil
}

// get issues a GET for p and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, resource, p string, bust bool) ([]byte, error) {
	u := c.base.ResolveReference(&url.URL{Path: strings.TrimPrefix(p, "/")})
	if bust {
		q := u.Query()
		q.Set(cacheBustParam, strconv.FormatInt(c.now().UnixMilli(), 10))
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.recorder.ObserveFetchDuration(resource, time.Since(start))
	if err != nil {
		c.recorder.IncFetch(resource, metrics.ResultTransport)
		return nil, fmt.Errorf("GET %s: %w: %w", p, apperrors.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.recorder.IncFetch(resource, metrics.ResultStatus)
		return nil, &StatusError{Path: p, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		c.recorder.IncFetch(resource, metrics.ResultTransport)
		return nil, fmt.Errorf("reading %s: %w: %w", p, apperrors.ErrFetch, err)
	}
	if int64(len(body)) > c.maxBody {
		c.recorder.IncFetch(resource, metrics.ResultTransport)
		return nil, fmt.Errorf("reading %s: %w: body exceeds %d bytes", p, apperrors.ErrFetch, c.maxBody)
	}

	return body, nil
}

// decodeArray validates body as a JSON array and returns its elements.
func decodeArray(body []byte) ([]gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON", apperrors.ErrDecode)
	}

	res := gjson.ParseBytes(body)
	if !res.IsArray() {
		return nil, fmt.Errorf("%w: expected a JSON array", apperrors.ErrDecode)
	}

	return res.Array(), nil
}
