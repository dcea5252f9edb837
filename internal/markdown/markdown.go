// Package markdown converts post bodies to HTML with goldmark.
//
// Besides GitHub-flavoured markdown it carries the blog's math hooks:
// fenced blocks tagged math or tex become display-math containers and
// inline $...$ spans become \( ... \) so a typesetter can find them.
package markdown

import (
	"bytes"
	"fmt"

	fences "github.com/stefanfritsch/goldmark-fences"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

// Renderer converts markdown text to HTML. It is safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// New builds a Renderer. Raw HTML in posts is passed through: post
// content is trusted.
func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
				parser.WithAttribute(),
			),
			goldmark.WithExtensions(
				extension.GFM,
				extension.Footnote,
				MathExtension,
				&fences.Extender{},
			),
			goldmark.WithRendererOptions(
				goldmarkhtml.WithUnsafe(),
			),
		),
	}
}

// Render converts markdown to an HTML fragment.
func (r *Renderer) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return buf.String(), nil
}
