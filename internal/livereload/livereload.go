// Package livereload tells open pages to reload over a websocket when
// the content or templates change.
package livereload

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"golang.org/x/net/html/atom"

	"github.com/alexjbarnes/folio/internal/logging"
	"github.com/alexjbarnes/folio/internal/page"
)

// Path is where the hub is mounted.
const Path = "/_livereload"

// ReloadMessage is sent to every client on change.
const ReloadMessage = "reload"

const (
	// sendBuffer is the per-client queue. A full queue already holds a
	// reload, so further ones are dropped.
	sendBuffer = 1

	writeTimeout = 5 * time.Second
)

// script connects to the hub and reloads the page on message.
const script = `(function(){` +
	`var p=location.protocol==="https:"?"wss:":"ws:";` +
	`var ws=new WebSocket(p+"//"+location.host+"` + Path + `");` +
	`ws.onmessage=function(e){if(e.data==="` + ReloadMessage + `")location.reload();};` +
	`})();`

// Hub tracks connected pages.
type Hub struct {
	mu      sync.Mutex
	clients map[chan struct{}]struct{}
	logger  *slog.Logger
}

// NewHub returns an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Hub{
		clients: make(map[chan struct{}]struct{}),
		logger:  logger,
	}
}

// ServeHTTP upgrades the request and holds the connection until the
// client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Debug("livereload accept failed", slog.String("error", err.Error()))
		return
	}
	defer conn.CloseNow()

	send := make(chan struct{}, sendBuffer)
	h.add(send)
	defer h.remove(send)

	ctx := conn.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			return
		case <-send:
			if err := h.write(ctx, conn); err != nil {
				return
			}
		}
	}
}

func (h *Hub) write(ctx context.Context, conn *websocket.Conn) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, []byte(ReloadMessage))
}

// Reload notifies every connected page.
func (h *Hub) Reload() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.clients {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	h.logger.Debug("livereload broadcast", slog.Int("clients", len(h.clients)))
}

// Clients returns the number of connected pages.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) add(ch chan struct{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[ch] = struct{}{}
}

func (h *Hub) remove(ch chan struct{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, ch)
}

// Inject appends the reload client script to the page body.
func Inject(doc *page.Document) {
	body := doc.Body()
	if body == nil {
		return
	}
	page.AppendElement(body, atom.Script, nil, script)
}
