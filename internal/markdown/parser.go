package markdown

import (
	"bytes"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/frontmatter"

	"github.com/cloudly/miniapp/internal/model"
)

type Parser struct {
	md goldmark.Markdown
}

func NewParser() *Parser {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
			&frontmatter.Extender{},
		),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithHardWraps(),
			goldmarkhtml.WithXHTML(),
		),
	)

	return &Parser{
		md: md,
	}
}

func (p *Parser) Parse(source []byte) ([]byte, error) {
	var buf bytes.Buffer
	err := p.md.Convert(source, &buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderBlock returns the HTML for a single content block.
// Headings are escaped and wrapped, paragraphs go through the markdown renderer.
func (p *Parser) RenderBlock(block model.ContentBlock) (string, error) {
	if block.IsHeading() {
		return "<h3>" + html.EscapeString(block.Content) + "</h3>", nil
	}

	out, err := p.Parse([]byte(block.Content))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Document is a markdown file split into front matter and content blocks.
type Document struct {
	Meta   map[string]any
	Blocks []model.ContentBlock
}

// ParseDocument splits source into heading and paragraph blocks. Every
// top-level node other than a heading becomes a paragraph holding its
// original markdown, so lists and quotes survive intact.
func (p *Parser) ParseDocument(source []byte) *Document {
	context := parser.NewContext()
	root := p.md.Parser().Parse(text.NewReader(source), parser.WithContext(context))

	doc := &Document{Meta: meta(context)}

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch n := n.(type) {
		case *ast.Heading:
			content := strings.TrimSpace(string(linesOf(n, source)))
			if content != "" {
				doc.Blocks = append(doc.Blocks, model.ContentBlock{BlockType: model.BlockTypeHeading, Content: content})
			}
		default:
			content := strings.TrimSpace(string(sourceOf(n, source)))
			// front matter
			if n == root.FirstChild() && strings.HasPrefix(content, "---") && bytes.HasPrefix(source, []byte("---")) {
				continue
			}
			if content != "" {
				doc.Blocks = append(doc.Blocks, model.ContentBlock{BlockType: model.BlockTypeParagraph, Content: content})
			}
		}
	}

	for i := range doc.Blocks {
		doc.Blocks[i].Order = i + 1
	}
	return doc
}

func meta(context parser.Context) map[string]any {
	data := frontmatter.Get(context)
	if data == nil {
		return make(map[string]any)
	}

	var m map[string]any
	err := data.Decode(&m)
	if err != nil {
		return make(map[string]any)
	}
	return m
}

func linesOf(n ast.Node, source []byte) []byte {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.Bytes()
}

// sourceOf returns the raw source spanned by n and its descendants,
// widened to whole lines so list markers and quote prefixes are kept.
func sourceOf(n ast.Node, source []byte) []byte {
	start, stop := -1, -1
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || c.Type() != ast.TypeBlock {
			return ast.WalkContinue, nil
		}
		lines := c.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			if start == -1 || seg.Start < start {
				start = seg.Start
			}
			if seg.Stop > stop {
				stop = seg.Stop
			}
		}
		return ast.WalkContinue, nil
	})
	if start == -1 {
		return nil
	}

	if i := bytes.LastIndexByte(source[:start], '\n'); i >= 0 {
		start = i + 1
	} else {
		start = 0
	}
	return source[start:stop]
}
