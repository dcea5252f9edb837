package page

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Attrs is an ordered list of attribute key/value pairs.
type Attrs [][2]string

// NewElement creates a detached element with attributes and optional text.
func NewElement(a atom.Atom, attrs Attrs, text string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
	}
	for _, kv := range attrs {
		n.Attr = append(n.Attr, html.Attribute{Key: kv[0], Val: kv[1]})
	}
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
	return n
}

// AppendElement creates an element and appends it to parent.
func AppendElement(parent *html.Node, a atom.Atom, attrs Attrs, text string) *html.Node {
	n := NewElement(a, attrs, text)
	parent.AppendChild(n)
	return n
}

// AppendText appends a text node to parent.
func AppendText(parent *html.Node, text string) {
	parent.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// Clear removes every child of n.
func Clear(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

// SetText replaces the children of n with a single text node.
func SetText(n *html.Node, text string) {
	Clear(n)
	if text != "" {
		AppendText(n, text)
	}
}

// SetInnerHTML replaces the children of n with the parsed fragment.
// The fragment is not sanitized.
func SetInnerHTML(n *html.Node, fragment string) error {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), contextFor(n))
	if err != nil {
		return fmt.Errorf("parsing fragment: %w", err)
	}
	Clear(n)
	for _, c := range nodes {
		n.AppendChild(c)
	}
	return nil
}

// InnerHTML renders the children of n.
func InnerHTML(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&b, c)
	}
	return b.String()
}

// ReplaceWithHTML swaps n for the nodes parsed from fragment in the
// context of n's parent.
func ReplaceWithHTML(n *html.Node, fragment string) error {
	parent := n.Parent
	if parent == nil {
		return fmt.Errorf("node has no parent")
	}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), contextFor(parent))
	if err != nil {
		return fmt.Errorf("parsing fragment: %w", err)
	}
	for _, c := range nodes {
		parent.InsertBefore(c, n)
	}
	parent.RemoveChild(n)
	return nil
}

// contextFor returns a detached copy of n usable as a fragment context.
// html.ParseFragment only reads the context's type and tag.
func contextFor(n *html.Node) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: n.DataAtom,
		Data:     n.Data,
	}
}

// Text returns the concatenated text content of n.
func Text(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return b.String()
}

// Attr returns the value of attribute key on n, or "".
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// SetAttr sets attribute key on n, replacing an existing value.
func SetAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// HasClass reports whether the class attribute of n contains name as a
// whole word.
func HasClass(n *html.Node, name string) bool {
	for _, c := range strings.Fields(Attr(n, "class")) {
		if c == name {
			return true
		}
	}
	return false
}

// AddClass appends name to the class attribute unless already present.
func AddClass(n *html.Node, name string) {
	if HasClass(n, name) {
		return
	}
	cls := strings.TrimSpace(Attr(n, "class") + " " + name)
	SetAttr(n, "class", cls)
}

// SetStyle sets a single inline style property, keeping the others.
func SetStyle(n *html.Node, prop, value string) {
	var kept []string
	for _, decl := range strings.Split(Attr(n, "style"), ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		name, _, _ := strings.Cut(decl, ":")
		if strings.TrimSpace(name) == prop {
			continue
		}
		kept = append(kept, decl)
	}
	kept = append(kept, prop+": "+value)
	SetAttr(n, "style", strings.Join(kept, "; "))
}
