package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Basics(t *testing.T) {
	r := New()

	out, err := r.Render("# Hello\n\nSome *emphasis* and `code`.")
	require.NoError(t, err)
	assert.Contains(t, out, `<h1 id="hello">Hello</h1>`)
	assert.Contains(t, out, "<em>emphasis</em>")
	assert.Contains(t, out, "<code>code</code>")
}

func TestRender_Empty(t *testing.T) {
	out, err := New().Render("")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRender_GFMTable(t *testing.T) {
	out, err := New().Render("| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<td>1</td>")
}

func TestRender_FencedCodeKeepsLanguageClass(t *testing.T) {
	out, err := New().Render("```go\nfunc main() {}\n```\n")
	require.NoError(t, err)
	assert.Contains(t, out, `<pre><code class="language-go">func main() {}`)
}

func TestRender_RawHTMLPassesThrough(t *testing.T) {
	out, err := New().Render("<div class=\"note\">hi</div>\n")
	require.NoError(t, err)
	assert.Contains(t, out, `<div class="note">hi</div>`)
}

func TestRender_MathFence(t *testing.T) {
	out, err := New().Render("```math\nx^2 < y\n```\n")
	require.NoError(t, err)
	assert.Contains(t, out, `<div class="math-block">\[x^2 &lt; y`)
	assert.Contains(t, out, `\]</div>`)
	assert.NotContains(t, out, "<pre>")
}

func TestRender_TexFence(t *testing.T) {
	out, err := New().Render("```tex\n\\frac{a}{b}\n```\n")
	require.NoError(t, err)
	assert.Contains(t, out, `<div class="math-block">\[\frac{a}{b}`)
}

func TestRender_InlineMath(t *testing.T) {
	out, err := New().Render("Euler: $e^{i\\pi} + 1 = 0$ holds.")
	require.NoError(t, err)
	assert.Contains(t, out, `<p>Euler: \(e^{i\pi} + 1 = 0\) holds.</p>`)
}

func TestRender_InlineMathEscapesHTML(t *testing.T) {
	out, err := New().Render("Then $a<b$.")
	require.NoError(t, err)
	assert.Contains(t, out, `\(a&lt;b\)`)
}

func TestRender_LoneDollarIsText(t *testing.T) {
	out, err := New().Render("It costs $5.")
	require.NoError(t, err)
	assert.Contains(t, out, "<p>It costs $5.</p>")
}

func TestRender_EmptyDollarsAreText(t *testing.T) {
	out, err := New().Render("Nothing $$ here.")
	require.NoError(t, err)
	assert.Contains(t, out, "$$")
	assert.NotContains(t, out, `\(`)
}

func TestRender_InlineMathInsideCodeSpanIsLiteral(t *testing.T) {
	out, err := New().Render("Use `$x$` literally.")
	require.NoError(t, err)
	assert.Contains(t, out, "<code>$x$</code>")
}

func TestRender_Footnote(t *testing.T) {
	out, err := New().Render("Text[^1].\n\n[^1]: The note.\n")
	require.NoError(t, err)
	assert.Contains(t, out, `class="footnotes"`)
	assert.Contains(t, out, "The note.")
}
