package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// MathExtension renders ```math and ```tex fences as display math and
// $...$ spans as inline math, both left in TeX delimiters.
var MathExtension goldmark.Extender = mathExtension{}

type mathExtension struct{}

func (mathExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithASTTransformers(
			util.Prioritized(mathBlockTransformer{}, 100),
		),
		parser.WithInlineParsers(
			util.Prioritized(inlineMathParser{}, 150),
		),
	)
	m.Renderer().AddOptions(
		renderer.WithNodeRenderers(
			util.Prioritized(mathRenderer{}, 100),
		),
	)
}

var (
	mathBlockKind  = ast.NewNodeKind("MathBlock")
	mathInlineKind = ast.NewNodeKind("MathInline")
)

type mathBlock struct {
	ast.BaseBlock
}

func (n *mathBlock) Kind() ast.NodeKind { return mathBlockKind }

func (n *mathBlock) IsRaw() bool { return true }

func (n *mathBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

type mathInline struct {
	ast.BaseInline
	tex []byte
}

func (n *mathInline) Kind() ast.NodeKind { return mathInlineKind }

func (n *mathInline) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"TeX": string(n.tex)}, nil)
}

// isMathLanguage reports whether a fence info string marks TeX.
func isMathLanguage(lang []byte) bool {
	return bytes.Equal(lang, []byte("math")) || bytes.Equal(lang, []byte("tex"))
}

type mathBlockTransformer struct{}

func (mathBlockTransformer) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	var blocks []*ast.FencedCodeBlock
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fcb, ok := n.(*ast.FencedCodeBlock)
		if ok && isMathLanguage(fcb.Language(reader.Source())) {
			blocks = append(blocks, fcb)
		}
		return ast.WalkContinue, nil
	})

	for _, fcb := range blocks {
		parent := fcb.Parent()
		if parent == nil {
			continue
		}
		mb := &mathBlock{}
		mb.SetLines(fcb.Lines())
		parent.ReplaceChild(parent, fcb, mb)
	}
}

// inlineMathParser turns $tex$ into a mathInline node. The span must be
// non-empty, stay on one line, and contain no other dollar sign.
type inlineMathParser struct{}

func (inlineMathParser) Trigger() []byte {
	return []byte{'$'}
}

func (inlineMathParser) Parse(_ ast.Node, block text.Reader, _ parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if len(line) < 3 || line[0] != '$' {
		return nil
	}

	end := bytes.IndexByte(line[1:], '$')
	if end <= 0 {
		return nil
	}

	tex := line[1 : end+1]
	if bytes.ContainsAny(tex, "\r\n") {
		return nil
	}

	block.Advance(end + 2)

	return &mathInline{tex: append([]byte(nil), tex...)}
}

type mathRenderer struct{}

func (mathRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(mathBlockKind, renderMathBlock)
	reg.Register(mathInlineKind, renderMathInline)
}

func renderMathBlock(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	_, _ = w.WriteString(`<div class="math-block">\[`)
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		_, _ = w.Write(util.EscapeHTML(seg.Value(source)))
	}
	_, _ = w.WriteString("\\]</div>\n")

	return ast.WalkSkipChildren, nil
}

func renderMathInline(w util.BufWriter, _ []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	_, _ = w.WriteString(`\(`)
	_, _ = w.Write(util.EscapeHTML(n.(*mathInline).tex))
	_, _ = w.WriteString(`\)`)

	return ast.WalkSkipChildren, nil
}
