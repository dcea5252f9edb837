package mathtex

import (
	"fmt"
	"strings"

	"git.sr.ht/~mekyt/latex2mathml"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	apperrors "github.com/alexjbarnes/folio/internal/errors"
	"github.com/alexjbarnes/folio/internal/page"
)

const mathNamespace = "http://www.w3.org/1998/Math/MathML"

var mathBlocks = cascadia.MustCompile("div.math-block")

// MathML converts TeX to MathML with latex2mathml. Every expression is
// converted before the tree is touched, so a failure leaves root as it
// was.
type MathML struct{}

type replacement struct {
	node  *html.Node
	parts []fragment
}

type fragment struct {
	text   string
	mathml string
}

func (MathML) Typeset(root *html.Node) error {
	var pending []replacement

	for _, block := range mathBlocks.MatchAll(root) {
		tex, ok := unwrap(page.Text(block), `\[`, `\]`)
		if !ok {
			continue
		}
		out, err := convert(tex, "block")
		if err != nil {
			return err
		}
		pending = append(pending, replacement{node: block, parts: []fragment{{mathml: out}}})
	}

	var walkErr error
	walkText(root, func(n *html.Node) bool {
		parts, err := splitInline(n.Data)
		if err != nil {
			walkErr = err
			return false
		}
		if parts != nil {
			pending = append(pending, replacement{node: n, parts: parts})
		}
		return true
	})
	if walkErr != nil {
		return walkErr
	}

	for _, r := range pending {
		if err := apply(r); err != nil {
			return err
		}
	}
	return nil
}

func apply(r replacement) error {
	if r.node.Type == html.ElementNode {
		return page.SetInnerHTML(r.node, r.parts[0].mathml)
	}

	parent := r.node.Parent
	for _, part := range r.parts {
		if part.mathml == "" {
			parent.InsertBefore(&html.Node{Type: html.TextNode, Data: part.text}, r.node)
			continue
		}
		nodes, err := html.ParseFragment(strings.NewReader(part.mathml), &html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Span,
			Data:     "span",
		})
		if err != nil {
			return fmt.Errorf("parsing mathml: %w", err)
		}
		for _, n := range nodes {
			parent.InsertBefore(n, r.node)
		}
	}
	parent.RemoveChild(r.node)
	return nil
}

// splitInline splits text around \( ... \) spans. It returns nil when the
// text holds no complete span.
func splitInline(s string) ([]fragment, error) {
	if !strings.Contains(s, `\(`) {
		return nil, nil
	}

	var parts []fragment
	rest := s
	found := false
	for {
		start := strings.Index(rest, `\(`)
		if start < 0 {
			break
		}
		end := strings.Index(rest[start+2:], `\)`)
		if end < 0 {
			break
		}
		tex := rest[start+2 : start+2+end]
		out, err := convert(tex, "inline")
		if err != nil {
			return nil, err
		}
		if start > 0 {
			parts = append(parts, fragment{text: rest[:start]})
		}
		parts = append(parts, fragment{mathml: out})
		rest = rest[start+2+end+2:]
		found = true
	}
	if !found {
		return nil, nil
	}
	if rest != "" {
		parts = append(parts, fragment{text: rest})
	}
	return parts, nil
}

func unwrap(s, open, close string) (string, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, open) || !strings.HasSuffix(s, close) || len(s) < len(open)+len(close) {
		return "", false
	}
	return strings.TrimSpace(s[len(open) : len(s)-len(close)]), true
}

func convert(tex, display string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %q: %v", apperrors.ErrMathConversion, tex, r)
		}
	}()

	if strings.TrimSpace(tex) == "" {
		return "", fmt.Errorf("%w: empty expression", apperrors.ErrMathConversion)
	}
	out = strings.TrimSpace(latex2mathml.Convert(tex, mathNamespace, display, 2))
	if !strings.Contains(out, "<math") {
		return "", fmt.Errorf("%w: %q", apperrors.ErrMathConversion, tex)
	}
	return out, nil
}

var skipped = map[atom.Atom]bool{
	atom.Pre:      true,
	atom.Code:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Math:     true,
	atom.Title:    true,
	atom.Textarea: true,
}

// walkText calls fn for every text node outside skipped elements and
// math blocks. fn returns false to stop.
func walkText(n *html.Node, fn func(*html.Node) bool) bool {
	if n.Type == html.ElementNode && (skipped[n.DataAtom] || page.HasClass(n, "math-block")) {
		return true
	}
	if n.Type == html.TextNode {
		return fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walkText(c, fn) {
			return false
		}
	}
	return true
}
