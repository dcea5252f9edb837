package livereload

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexjbarnes/folio/internal/page"
)

// waitFor polls until cond returns true or the timeout expires.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}

		time.Sleep(10 * time.Millisecond)
	}

	t.Fatal("timed out waiting for condition")
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(ctx, url, nil) //nolint:bodyclose // websocket.Dial closes the response body internally
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

func TestHub_BroadcastsReload(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	a := dial(t, srv)
	b := dial(t, srv)
	waitFor(t, 2*time.Second, func() bool { return hub.Clients() == 2 })

	hub.Reload()

	for _, conn := range []*websocket.Conn{a, b} {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		typ, msg, err := conn.Read(ctx)
		cancel()
		require.NoError(t, err)
		assert.Equal(t, websocket.MessageText, typ)
		assert.Equal(t, ReloadMessage, string(msg))
	}
}

func TestHub_ClientRemovedOnClose(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	waitFor(t, 2*time.Second, func() bool { return hub.Clients() == 1 })

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, "bye"))
	waitFor(t, 2*time.Second, func() bool { return hub.Clients() == 0 })
}

func TestHub_ReloadWithoutClients(t *testing.T) {
	hub := NewHub(nil)
	assert.NotPanics(t, hub.Reload)
	assert.Equal(t, 0, hub.Clients())
}

func TestHub_RejectsPlainHTTP(t *testing.T) {
	hub := NewHub(nil)
	rec := httptest.NewRecorder()
	hub.ServeHTTP(rec, httptest.NewRequest("GET", Path, nil))
	assert.GreaterOrEqual(t, rec.Code, 400)
	assert.Equal(t, 0, hub.Clients())
}

func TestInject(t *testing.T) {
	doc, err := page.ParseString(`<html><head></head><body><p>x</p></body></html>`)
	require.NoError(t, err)

	Inject(doc)

	out, err := doc.Bytes()
	require.NoError(t, err)
	assert.Contains(t, string(out), `<script>(function(){`)
	assert.Contains(t, string(out), `"/_livereload"`)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(string(out)), "</script></body></html>"))
}
