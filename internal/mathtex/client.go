package mathtex

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alexjbarnes/folio/internal/page"
)

// MathJaxURL is the script ClientScript loads.
const MathJaxURL = "https://cdn.jsdelivr.net/npm/mathjax@3/es5/tex-mml-chtml.js"

const scriptID = "MathJax-script"

// ClientScript leaves TeX delimiters in place and adds MathJax to the
// page head so the browser typesets on load.
type ClientScript struct{}

func (ClientScript) Typeset(root *html.Node) error {
	head := findHead(root)
	if head == nil || hasScript(head) {
		return nil
	}
	page.AppendElement(head, atom.Script, page.Attrs{
		{"id", scriptID},
		{"async", ""},
		{"src", MathJaxURL},
	}, "")
	return nil
}

func findHead(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Head {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if h := findHead(c); h != nil {
			return h
		}
	}
	return nil
}

func hasScript(head *html.Node) bool {
	for c := head.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Script && page.Attr(c, "id") == scriptID {
			return true
		}
	}
	return false
}
