package editor

import (
	"strings"
	"unicode/utf8"
)

// PlainText returns the visible text of an HTML fragment, one line per block
func PlainText(src string) string {
	return Parse(src).PlainText()
}

func (d *Document) PlainText() string {
	lines := make([]string, 0, len(d.Blocks))
	for _, b := range d.Blocks {
		var sb strings.Builder
		for _, in := range b.Inlines {
			if in.Image == nil {
				sb.WriteString(in.Text)
			}
		}
		lines = append(lines, sb.String())
	}
	return strings.Join(lines, "\n")
}

// IsEmpty reports whether the fragment has no text and no image. Leftovers
// of a cleared editor such as "<br>" or "<div><br></div>" count as empty.
func IsEmpty(src string) bool {
	return Parse(src).IsEmpty()
}

func (d *Document) IsEmpty() bool {
	for _, b := range d.Blocks {
		for _, in := range b.Inlines {
			if in.Image != nil || strings.TrimSpace(in.Text) != "" {
				return false
			}
		}
	}
	return true
}

// Stats mirrors the counters shown under the editing area
type Stats struct {
	Words      int `json:"words"`
	Characters int `json:"characters"`
}

func (d *Document) Stats() Stats {
	text := d.PlainText()
	return Stats{
		Words:      len(strings.Fields(text)),
		Characters: utf8.RuneCountInString(strings.ReplaceAll(text, "\n", "")),
	}
}
