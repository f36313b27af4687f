package editor

import (
	"strings"

	"golang.org/x/net/html"
)

// ImageStyle is the inline style every embedded image is rendered with
const ImageStyle = "max-width: 100%; height: auto; margin: 10px 0;"

// Render serializes the document to canonical HTML. Rendering the result of
// Parse on canonical HTML reproduces it exactly.
func Render(doc *Document) string {
	if doc == nil {
		return ""
	}
	d := doc.Clone()
	d.normalize()

	var sb strings.Builder
	openList := NoList
	for i := range d.Blocks {
		b := &d.Blocks[i]
		if b.Kind == ListItem {
			if openList != b.List {
				if openList != NoList {
					sb.WriteString("</" + string(openList) + ">")
				}
				sb.WriteString("<" + string(b.List) + ">")
				openList = b.List
			}
		} else if openList != NoList {
			sb.WriteString("</" + string(openList) + ">")
			openList = NoList
		}

		tag := b.tag()
		sb.WriteString("<" + tag)
		if b.Align != AlignNone {
			sb.WriteString(` style="text-align: ` + string(b.Align) + `;"`)
		}
		sb.WriteString(">")
		for _, in := range b.Inlines {
			renderInline(&sb, in)
		}
		sb.WriteString("</" + tag + ">")
	}
	if openList != NoList {
		sb.WriteString("</" + string(openList) + ">")
	}
	return sb.String()
}

func renderInline(sb *strings.Builder, in Inline) {
	var closers []string
	open := func(tag, attrs string) {
		sb.WriteString("<" + tag + attrs + ">")
		closers = append(closers, "</"+tag+">")
	}

	s := in.Style
	if s.Link != "" {
		open("a", ` href="`+html.EscapeString(s.Link)+`"`)
	}
	if s.Bold {
		open("b", "")
	}
	if s.Italic {
		open("i", "")
	}
	if s.Underline {
		open("u", "")
	}
	if s.FontSize != "" || s.Color != "" {
		var css []string
		if s.FontSize != "" {
			css = append(css, "font-size: "+s.FontSize+";")
		}
		if s.Color != "" {
			css = append(css, "color: "+s.Color+";")
		}
		open("span", ` style="`+html.EscapeString(strings.Join(css, " "))+`"`)
	}

	if in.Image != nil {
		sb.WriteString(`<img src="` + html.EscapeString(in.Image.Src) +
			`" alt="` + html.EscapeString(in.Image.Alt) +
			`" style="` + ImageStyle + `">`)
	} else {
		lines := strings.Split(strings.ReplaceAll(in.Text, "\r", ""), "\n")
		for i, line := range lines {
			if i > 0 {
				sb.WriteString("<br>")
			}
			sb.WriteString(html.EscapeString(line))
		}
	}

	for i := len(closers) - 1; i >= 0; i-- {
		sb.WriteString(closers[i])
	}
}
