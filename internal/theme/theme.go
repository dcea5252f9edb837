// Package theme holds the built-in page templates and static assets.
//
// Templates are html/template files. Each page template renders the
// regions its controller fills (posts-list, post-content, reading-list
// and so on); partials/ holds the shared head, header and footer.
package theme

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"os"
)

var (
	//go:embed pages partials static
	embedFS embed.FS

	// StaticFS holds the assets served next to the pages.
	StaticFS fs.FS = mustSub(embedFS, "static")
)

// Page template names.
const (
	IndexPage    = "index.html"
	WritingsPage = "writings.html"
	PostPage     = "post.html"
	ReadingPage  = "reading.html"
)

// HighlightCSS is the stylesheet generated from the code style. It is
// served and exported next to the static assets.
const HighlightCSS = "highlight.css"

// Pages lists every page template in export order.
var Pages = []string{IndexPage, WritingsPage, PostPage, ReadingPage}

// Data is what a page template renders.
type Data struct {
	Site any
	Page string

	// Root is the relative path from the rendered page back to the site
	// root: "" for top-level pages, "../" for exported posts.
	Root string
}

// Templates parses the page templates. dir overrides the built-in theme
// when non-empty; it must have the same pages/ and partials/ layout.
func Templates(dir string) (*template.Template, error) {
	var fsys fs.FS = embedFS
	if dir != "" {
		fsys = os.DirFS(dir)
	}
	return parse(fsys)
}

func parse(fsys fs.FS) (*template.Template, error) {
	tmpl, err := template.New("").ParseFS(fsys, "pages/*.html", "partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	for _, name := range Pages {
		if tmpl.Lookup(name) == nil {
			return nil, fmt.Errorf("parsing templates: missing page %s", name)
		}
	}
	return tmpl, nil
}

// IsPage reports whether name is a known page template.
func IsPage(name string) bool {
	for _, p := range Pages {
		if p == name {
			return true
		}
	}
	return false
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(fmt.Sprintf("embedded %s directory missing: %v", dir, err))
	}
	return sub
}
