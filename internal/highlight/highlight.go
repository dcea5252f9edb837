// Package highlight applies chroma syntax highlighting to code elements
// in a rendered page.
package highlight

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/alexjbarnes/folio/internal/page"
)

// DefaultStyle is used when no style is configured.
const DefaultStyle = "nord"

var codeBlocks = cascadia.MustCompile("pre code")

// Highlighter tokenises code with chroma and writes class-based markup.
type Highlighter struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

// New returns a Highlighter for the named chroma style. Unknown names
// fall back to chroma's default style.
func New(style string) *Highlighter {
	if style == "" {
		style = DefaultStyle
	}
	return &Highlighter{
		style: styles.Get(style),
		formatter: chromahtml.New(
			chromahtml.WithClasses(true),
			chromahtml.PreventSurroundingPre(true),
		),
	}
}

// StyleName returns the resolved chroma style name.
func (h *Highlighter) StyleName() string {
	return h.style.Name
}

// HighlightElement replaces the children of code with highlighted spans.
// The text content is unchanged.
func (h *Highlighter) HighlightElement(code *html.Node) error {
	src := page.Text(code)
	lexer := chroma.Coalesce(lexerFor(code, src))

	it, err := lexer.Tokenise(nil, src)
	if err != nil {
		return fmt.Errorf("tokenising %s: %w", lexer.Config().Name, err)
	}

	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, h.style, it); err != nil {
		return fmt.Errorf("formatting code: %w", err)
	}

	if err := page.SetInnerHTML(code, buf.String()); err != nil {
		return err
	}
	page.AddClass(code, "hljs")
	page.AddClass(code, "chroma")

	return nil
}

// CSS writes the stylesheet for the highlighter's style.
func (h *Highlighter) CSS(w io.Writer) error {
	return h.formatter.WriteCSS(w, h.style)
}

// Language returns the language named by a language-* or lang-* class,
// or "" when there is none.
func Language(code *html.Node) string {
	for _, class := range strings.Fields(page.Attr(code, "class")) {
		if lang, ok := strings.CutPrefix(class, "language-"); ok {
			return lang
		}
		if lang, ok := strings.CutPrefix(class, "lang-"); ok {
			return lang
		}
	}
	return ""
}

func lexerFor(code *html.Node, src string) chroma.Lexer {
	if lang := Language(code); lang != "" {
		if l := lexers.Get(lang); l != nil {
			return l
		}
	}
	if l := lexers.Analyse(src); l != nil {
		return l
	}
	return lexers.Fallback
}

// ElementHighlighter is the capability Apply needs.
type ElementHighlighter interface {
	HighlightElement(code *html.Node) error
}

// Apply highlights every pre > code block under root. Math blocks and
// blocks that are already highlighted are skipped. Every block is tried;
// the failures are joined.
func Apply(root *html.Node, h ElementHighlighter) error {
	var errs []error
	for _, code := range codeBlocks.MatchAll(root) {
		if skip(code) {
			continue
		}
		if err := h.HighlightElement(code); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func skip(code *html.Node) bool {
	class := page.Attr(code, "class")
	if strings.Contains(class, "language-math") || strings.Contains(class, "language-tex") {
		return true
	}
	return page.HasClass(code, "hljs")
}
