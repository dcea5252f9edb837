// Package page wraps a parsed HTML page so controllers can find elements
// by id and populate them, the way browser code mutates the DOM.
package page

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	titleSelector = cascadia.MustCompile("head > title")
	headSelector  = cascadia.MustCompile("head")
	bodySelector  = cascadia.MustCompile("body")
)

// Document is a parsed HTML page. Controllers may fetch concurrently but
// must make their changes inside Update.
type Document struct {
	mu   sync.Mutex
	root *html.Node
}

// Parse reads a full HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseString is Parse for an in-memory page.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Update runs fn while holding the document lock.
func (d *Document) Update(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn()
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// ElementByID returns the first element with the given id, or nil.
func (d *Document) ElementByID(id string) *html.Node {
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && Attr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Query returns every element matching the CSS selector.
func (d *Document) Query(selector string) ([]*html.Node, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("compiling selector %q: %w", selector, err)
	}
	return sel.MatchAll(d.root), nil
}

// Title returns the text of <title>.
func (d *Document) Title() string {
	t := titleSelector.MatchFirst(d.root)
	if t == nil {
		return ""
	}
	return Text(t)
}

// SetTitle sets the text of <title>, creating it in <head> when missing.
func (d *Document) SetTitle(title string) {
	t := titleSelector.MatchFirst(d.root)
	if t == nil {
		head := d.Head()
		if head == nil {
			return
		}
		t = NewElement(atom.Title, nil, "")
		head.AppendChild(t)
	}
	SetText(t, title)
}

// Head returns the <head> element. html.Parse always creates one.
func (d *Document) Head() *html.Node {
	return headSelector.MatchFirst(d.root)
}

// Body returns the <body> element.
func (d *Document) Body() *html.Node {
	return bodySelector.MatchFirst(d.root)
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// Bytes renders the document into a byte slice.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return nil, fmt.Errorf("rendering page: %w", err)
	}
	return buf.Bytes(), nil
}

// walk visits n and its descendants in document order until fn
// returns false.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}
