package editor

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	hexColor   = regexp.MustCompile(`^#(?:[0-9a-f]{3}|[0-9a-f]{6})$`)
	rgbColor   = regexp.MustCompile(`^rgb\(\s*\d{1,3}\s*,\s*\d{1,3}\s*,\s*\d{1,3}\s*\)$`)
	namedColor = regexp.MustCompile(`^[a-z]{3,20}$`)
	pixelSize  = regexp.MustCompile(`^(\d{1,3})px$`)
)

// NormalizeColor returns the canonical form of a CSS color or "" when the
// value is not a hex, rgb() or named color.
func NormalizeColor(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if hexColor.MatchString(v) || rgbColor.MatchString(v) || namedColor.MatchString(v) {
		return v
	}
	return ""
}

// NormalizeFontSize accepts pixel sizes between 1px and 999px
func NormalizeFontSize(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	m := pixelSize.FindStringSubmatch(v)
	if m == nil {
		return ""
	}
	n, _ := strconv.Atoi(m[1])
	if n < 1 {
		return ""
	}
	return strconv.Itoa(n) + "px"
}

// SanitizeURL keeps http(s), mailto and root-relative URLs and returns ""
// for anything else, javascript: and data: included.
func SanitizeURL(raw string) string {
	s := strings.TrimSpace(raw)
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "mailto:"):
		return s
	case strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//"):
		return s
	}
	return ""
}

type blockCtx struct {
	kind    BlockKind
	level   int
	list    ListKind
	align   Align
	inBlock bool
}

func (c blockCtx) newBlock() Block {
	return Block{Kind: c.kind, Level: c.level, List: c.list, Align: c.align}
}

type parser struct {
	blocks  []Block
	current *Block
}

// Parse builds a sanitized document from editor or browser produced HTML.
// Unknown elements are unwrapped and active content is dropped.
func Parse(src string) *Document {
	p := &parser{}
	nodes, err := html.ParseFragment(strings.NewReader(src), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return &Document{}
	}
	for _, n := range nodes {
		p.walk(n, Style{}, blockCtx{kind: Paragraph})
	}
	p.closeBlock()

	doc := &Document{Blocks: p.blocks}
	doc.normalize()
	return doc
}

func (p *parser) closeBlock() {
	if p.current != nil {
		p.blocks = append(p.blocks, *p.current)
		p.current = nil
	}
}

func (p *parser) appendInline(in Inline, ctx blockCtx) {
	if p.current == nil {
		b := ctx.newBlock()
		p.current = &b
	}
	p.current.Inlines = append(p.current.Inlines, in)
}

func (p *parser) walkChildren(n *html.Node, style Style, ctx blockCtx) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c, style, ctx)
	}
}

func (p *parser) walk(n *html.Node, style Style, ctx blockCtx) {
	switch n.Type {
	case html.TextNode:
		p.text(n, style, ctx)
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Iframe, atom.Object, atom.Embed, atom.Head, atom.Title,
		atom.Noscript, atom.Template, atom.Svg, atom.Math, atom.Form, atom.Input, atom.Button,
		atom.Select, atom.Textarea, atom.Frame, atom.Frameset, atom.Link, atom.Meta, atom.Base:
		return
	case atom.Br:
		p.appendInline(Inline{Text: "\n", Style: style}, ctx)
		return
	case atom.Img:
		src := SanitizeURL(attr(n, "src"))
		if src == "" {
			return
		}
		p.appendInline(Inline{Image: &Image{Src: src, Alt: attr(n, "alt")}, Style: style}, ctx)
		return
	case atom.P, atom.Div, atom.Blockquote, atom.Pre, atom.Section, atom.Article, atom.Header, atom.Footer:
		// a paragraph wrapped in <li> stays a list item
		if ctx.kind != ListItem {
			ctx.kind, ctx.level = Paragraph, 0
		}
		p.block(n, style, ctx)
		return
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		ctx.kind, ctx.level = Heading, int(n.Data[1]-'0')
		p.block(n, style, ctx)
		return
	case atom.Li:
		ctx.kind, ctx.level = ListItem, 0
		if ctx.list == NoList {
			ctx.list = Unordered
		}
		p.block(n, style, ctx)
		return
	case atom.Ul, atom.Ol:
		p.closeBlock()
		ctx.kind, ctx.level, ctx.inBlock = Paragraph, 0, false
		ctx.list = Unordered
		if n.DataAtom == atom.Ol {
			ctx.list = Ordered
		}
		p.walkChildren(n, style, ctx)
		p.closeBlock()
		return
	case atom.B, atom.Strong:
		style.Bold = true
	case atom.I, atom.Em:
		style.Italic = true
	case atom.U, atom.Ins:
		style.Underline = true
	case atom.A:
		if href := SanitizeURL(attr(n, "href")); href != "" {
			style.Link = href
		}
	case atom.Font:
		if c := NormalizeColor(attr(n, "color")); c != "" {
			style.Color = c
		}
	}
	style = applyCSS(style, attr(n, "style"))
	p.walkChildren(n, style, ctx)
}

func (p *parser) text(n *html.Node, style Style, ctx blockCtx) {
	text := strings.ReplaceAll(n.Data, "\n", " ")
	if text == "" {
		return
	}
	// whitespace between block elements is layout, not content
	if p.current == nil && strings.TrimSpace(text) == "" {
		if !ctx.inBlock || n.Parent == nil || hasBlockChild(n.Parent) {
			return
		}
	}
	p.appendInline(Inline{Text: text, Style: style}, ctx)
}

// block parses a leaf block element. An element that yields no content
// still produces an empty block so empty paragraphs survive a round trip.
func (p *parser) block(n *html.Node, style Style, ctx blockCtx) {
	p.closeBlock()
	ctx.align = alignOf(n, ctx.align)
	ctx.inBlock = true

	before := len(p.blocks)
	p.walkChildren(n, style, ctx)
	p.closeBlock()
	if len(p.blocks) == before {
		p.blocks = append(p.blocks, ctx.newBlock())
	}
}

func isBlockAtom(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Blockquote, atom.Pre, atom.Section, atom.Article, atom.Header, atom.Footer,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Li, atom.Ul, atom.Ol:
		return true
	}
	return false
}

func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && isBlockAtom(c.DataAtom) {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func alignOf(n *html.Node, inherited Align) Align {
	value := attr(n, "align")
	for _, decl := range strings.Split(attr(n, "style"), ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if ok && strings.EqualFold(strings.TrimSpace(prop), "text-align") {
			value = val
		}
	}
	switch Align(strings.ToLower(strings.TrimSpace(value))) {
	case AlignLeft:
		return AlignLeft
	case AlignCenter:
		return AlignCenter
	case AlignRight:
		return AlignRight
	}
	return inherited
}

func applyCSS(style Style, css string) Style {
	if css == "" {
		return style
	}
	for _, decl := range strings.Split(css, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		val = strings.ToLower(strings.TrimSpace(val))
		switch prop {
		case "font-weight":
			if val == "bold" || val == "bolder" {
				style.Bold = true
			} else if w, err := strconv.Atoi(val); err == nil && w >= 600 {
				style.Bold = true
			}
		case "font-style":
			if val == "italic" || val == "oblique" {
				style.Italic = true
			}
		case "text-decoration", "text-decoration-line":
			if strings.Contains(val, "underline") {
				style.Underline = true
			}
		case "font-size":
			if s := NormalizeFontSize(val); s != "" {
				style.FontSize = s
			}
		case "color":
			if c := NormalizeColor(val); c != "" {
				style.Color = c
			}
		}
	}
	return style
}
