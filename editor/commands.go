package editor

import (
	"errors"
	"strings"
)

var (
	ErrUnknownCommand = errors.New("unknown editor command")
	ErrNoUploader     = errors.New("no image uploader configured")
)

// DefaultLinkValue is what the link prompt is prefilled with. Submitting it
// unchanged inserts nothing.
const DefaultLinkValue = "https://"

// Palette and FontSizes are the choices offered by the toolbar menus
var (
	Palette = []string{
		"#000000", "#ff0000", "#00ff00", "#0000ff", "#ffff00", "#ff00ff",
		"#00ffff", "#ffa500", "#800080", "#008000", "#ffc0cb", "#a52a2a",
	}
	FontSizes = []string{"12px", "14px", "16px", "18px", "20px", "24px", "28px", "32px"}
)

// command mutates doc within r and returns the selection to keep afterwards
type command func(doc *Document, r Range, value string) Range

var commands = map[string]command{
	"bold":                toggleStyle(func(s Style) bool { return s.Bold }, func(s *Style, on bool) { s.Bold = on }),
	"italic":              toggleStyle(func(s Style) bool { return s.Italic }, func(s *Style, on bool) { s.Italic = on }),
	"underline":           toggleStyle(func(s Style) bool { return s.Underline }, func(s *Style, on bool) { s.Underline = on }),
	"formatBlock":         formatBlock,
	"insertUnorderedList": toggleList(Unordered),
	"insertOrderedList":   toggleList(Ordered),
	"justifyLeft":         justify(AlignLeft),
	"justifyCenter":       justify(AlignCenter),
	"justifyRight":        justify(AlignRight),
	"foreColor":           foreColor,
	"fontSize":            fontSize,
	"createLink":          createLink,
	"insertImage":         insertImage,
}

// Commands lists the command names Exec understands
func Commands() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	return names
}

func toggleStyle(has func(Style) bool, set func(*Style, bool)) command {
	return func(doc *Document, r Range, _ string) Range {
		if r.Collapsed() {
			return r
		}
		on := !doc.allStyled(r, has)
		doc.applyStyle(r, func(s *Style) { set(s, on) })
		return r
	}
}

func formatBlock(doc *Document, r Range, value string) Range {
	tag := strings.ToLower(strings.Trim(strings.TrimSpace(value), "<>"))
	kind, level := Paragraph, 0
	switch {
	case tag == "p" || tag == "div":
	case len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6':
		kind, level = Heading, int(tag[1]-'0')
	default:
		return r
	}
	doc.ensureBlock()
	doc.eachBlock(r, func(b *Block) {
		b.Kind, b.Level, b.List = kind, level, NoList
	})
	return r
}

func toggleList(list ListKind) command {
	return func(doc *Document, r Range, _ string) Range {
		doc.ensureBlock()
		all := true
		doc.eachBlock(r, func(b *Block) {
			if b.Kind != ListItem || b.List != list {
				all = false
			}
		})
		doc.eachBlock(r, func(b *Block) {
			if all {
				b.Kind, b.List = Paragraph, NoList
			} else {
				b.Kind, b.Level, b.List = ListItem, 0, list
			}
		})
		return r
	}
}

func justify(align Align) command {
	return func(doc *Document, r Range, _ string) Range {
		doc.ensureBlock()
		doc.eachBlock(r, func(b *Block) { b.Align = align })
		return r
	}
}

func foreColor(doc *Document, r Range, value string) Range {
	color := NormalizeColor(value)
	if color == "" || r.Collapsed() {
		return r
	}
	doc.applyStyle(r, func(s *Style) { s.Color = color })
	return r
}

func fontSize(doc *Document, r Range, value string) Range {
	size := NormalizeFontSize(value)
	if size == "" || r.Collapsed() {
		return r
	}
	doc.applyStyle(r, func(s *Style) { s.FontSize = size })
	return r
}

func createLink(doc *Document, r Range, value string) Range {
	value = strings.TrimSpace(value)
	if value == "" || value == DefaultLinkValue {
		return r
	}
	href := SanitizeURL(value)
	if href == "" {
		return r
	}
	if r.Collapsed() {
		doc.ensureBlock()
		p := doc.clamp(r.Start)
		style := doc.Blocks[p.Block].styleBefore(p.Offset)
		style.Link = href
		end := doc.insertInline(p, Inline{Text: strings.ReplaceAll(href, "\r", ""), Style: style})
		return Range{Start: end, End: end}
	}
	doc.applyStyle(r, func(s *Style) { s.Link = href })
	return r
}

func insertImage(doc *Document, r Range, value string) Range {
	src := SanitizeURL(value)
	if src == "" {
		return r
	}
	at := doc.deleteRange(r)
	end := doc.insertInline(at, Inline{Image: &Image{Src: src, Alt: "Image"}})
	return Range{Start: end, End: end}
}
