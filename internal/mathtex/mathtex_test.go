package mathtex

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	apperrors "github.com/alexjbarnes/folio/internal/errors"
	"github.com/alexjbarnes/folio/internal/logging"
	"github.com/alexjbarnes/folio/internal/page"
)

func parse(t *testing.T, s string) *page.Document {
	t.Helper()
	doc, err := page.ParseString(s)
	require.NoError(t, err)
	return doc
}

func rendered(t *testing.T, doc *page.Document) string {
	t.Helper()
	b, err := doc.Bytes()
	require.NoError(t, err)
	return string(b)
}

func TestMathML_DisplayBlock(t *testing.T) {
	doc := parse(t, `<body><div class="math-block">\[x^2\]</div></body>`)

	require.NoError(t, MathML{}.Typeset(doc.Root()))

	nodes, err := doc.Query("div.math-block math")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.NotContains(t, rendered(t, doc), `\[`)
}

func TestMathML_InlineSpan(t *testing.T) {
	doc := parse(t, `<body><p>Before \(a+b\) after.</p></body>`)

	require.NoError(t, MathML{}.Typeset(doc.Root()))

	out := rendered(t, doc)
	assert.Contains(t, out, "<p>Before <math")
	assert.Contains(t, out, "</math> after.</p>")
	assert.NotContains(t, out, `\(`)
}

func TestMathML_MultipleInlineSpans(t *testing.T) {
	doc := parse(t, `<body><p>\(a\) and \(b\)</p></body>`)

	require.NoError(t, MathML{}.Typeset(doc.Root()))

	nodes, err := doc.Query("p math")
	require.NoError(t, err)
	assert.Len(t, nodes, 2)
}

func TestMathML_SkipsCodeAndScript(t *testing.T) {
	doc := parse(t, `<head><script>var s = "\(x\)";</script></head><body><pre><code>\(x\)</code></pre><code>\(y\)</code></body>`)

	require.NoError(t, MathML{}.Typeset(doc.Root()))

	nodes, err := doc.Query("math")
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestMathML_SkipsTitleAndTextarea(t *testing.T) {
	doc := parse(t, `<head><title>Area \(x\)</title></head><body><textarea>\(y\)</textarea></body>`)

	require.NoError(t, MathML{}.Typeset(doc.Root()))

	nodes, err := doc.Query("math")
	require.NoError(t, err)
	assert.Empty(t, nodes)

	out := rendered(t, doc)
	assert.Contains(t, out, `<title>Area \(x\)</title>`)
	assert.Contains(t, out, `<textarea>\(y\)</textarea>`)
}

func TestMathML_UnterminatedSpanLeftAlone(t *testing.T) {
	doc := parse(t, `<body><p>open \(x only</p></body>`)

	require.NoError(t, MathML{}.Typeset(doc.Root()))
	assert.Contains(t, rendered(t, doc), `open \(x only`)
}

func TestMathML_EmptyExpressionFailsWithoutMutation(t *testing.T) {
	doc := parse(t, `<body><div class="math-block">\[x\]</div><p>\(\)</p></body>`)
	before := rendered(t, doc)

	err := MathML{}.Typeset(doc.Root())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrMathConversion)
	assert.Equal(t, before, rendered(t, doc))
}

func TestSplitInline(t *testing.T) {
	parts, err := splitInline("no math here")
	require.NoError(t, err)
	assert.Nil(t, parts)

	parts, err = splitInline(`lead \(x\) tail`)
	require.NoError(t, err)
	require.Len(t, parts, 3)
	assert.Equal(t, "lead ", parts[0].text)
	assert.NotEmpty(t, parts[1].mathml)
	assert.Equal(t, " tail", parts[2].text)
}

func TestUnwrap(t *testing.T) {
	tex, ok := unwrap(" \\[ x \\] ", `\[`, `\]`)
	assert.True(t, ok)
	assert.Equal(t, "x", tex)

	_, ok = unwrap("x", `\[`, `\]`)
	assert.False(t, ok)
}

func TestClientScript_AddsScriptOnce(t *testing.T) {
	doc := parse(t, `<html><head><title>t</title></head><body>\(x\)</body></html>`)

	require.NoError(t, ClientScript{}.Typeset(doc.Root()))
	require.NoError(t, ClientScript{}.Typeset(doc.Root()))

	nodes, err := doc.Query("head script#MathJax-script")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, MathJaxURL, page.Attr(nodes[0], "src"))
	assert.Contains(t, rendered(t, doc), `\(x\)`)
}

type stubTypesetter struct {
	calls int
	err   error
}

func (s *stubTypesetter) Typeset(*html.Node) error {
	s.calls++
	return s.err
}

func TestFallback_PrimarySucceeds(t *testing.T) {
	primary := &stubTypesetter{}
	legacy := &stubTypesetter{}
	f := &Fallback{Primary: primary, Legacy: legacy, Logger: logging.Discard()}

	require.NoError(t, f.Typeset(&html.Node{Type: html.DocumentNode}))
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, legacy.calls)
}

func TestFallback_PrimaryFailsUsesLegacy(t *testing.T) {
	primary := &stubTypesetter{err: errors.New("bad tex")}
	legacy := &stubTypesetter{}
	f := &Fallback{Primary: primary, Legacy: legacy, Logger: logging.Discard()}

	require.NoError(t, f.Typeset(&html.Node{Type: html.DocumentNode}))
	assert.Equal(t, 1, legacy.calls)
}

func TestFallback_LegacyErrorReturned(t *testing.T) {
	boom := errors.New("boom")
	f := &Fallback{
		Primary: &stubTypesetter{err: errors.New("bad tex")},
		Legacy:  &stubTypesetter{err: boom},
	}
	assert.ErrorIs(t, f.Typeset(&html.Node{Type: html.DocumentNode}), boom)
}

func TestFallback_NoPrimary(t *testing.T) {
	legacy := &stubTypesetter{}
	f := &Fallback{Legacy: legacy}
	require.NoError(t, f.Typeset(&html.Node{Type: html.DocumentNode}))
	assert.Equal(t, 1, legacy.calls)
}

func TestForMode(t *testing.T) {
	ts, err := ForMode("mathml", logging.Discard())
	require.NoError(t, err)
	assert.IsType(t, &Fallback{}, ts)

	ts, err = ForMode("", nil)
	require.NoError(t, err)
	assert.IsType(t, &Fallback{}, ts)

	ts, err = ForMode("CLIENT", nil)
	require.NoError(t, err)
	assert.IsType(t, ClientScript{}, ts)

	ts, err = ForMode("none", nil)
	require.NoError(t, err)
	assert.Nil(t, ts)

	_, err = ForMode("katex", nil)
	assert.Error(t, err)
}
