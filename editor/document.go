// Package editor holds the rich-text document model behind the article
// editor: HTML parsing and sanitizing, canonical rendering, selection
// based formatting commands and the stateful Editor that keeps the
// serialized HTML in sync with its owner.
package editor

import (
	"fmt"
	"unicode/utf8"
)

type BlockKind int

const (
	Paragraph BlockKind = iota
	Heading
	ListItem
)

type ListKind string

const (
	NoList    ListKind = ""
	Unordered ListKind = "ul"
	Ordered   ListKind = "ol"
)

type Align string

const (
	AlignNone   Align = ""
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Style is the formatting carried by an inline run. The zero value is plain text.
type Style struct {
	Bold      bool
	Italic    bool
	Underline bool
	FontSize  string
	Color     string
	Link      string
}

type Image struct {
	Src string
	Alt string
}

// Inline is either a styled text run or an image. Images occupy one position.
type Inline struct {
	Text  string
	Style Style
	Image *Image
}

func (in Inline) Len() int {
	if in.Image != nil {
		return 1
	}
	return utf8.RuneCountInString(in.Text)
}

type Block struct {
	Kind    BlockKind
	Level   int
	List    ListKind
	Align   Align
	Inlines []Inline
}

func (b *Block) Len() int {
	n := 0
	for _, in := range b.Inlines {
		n += in.Len()
	}
	return n
}

func (b *Block) tag() string {
	switch b.Kind {
	case Heading:
		return fmt.Sprintf("h%d", b.Level)
	case ListItem:
		return "li"
	default:
		return "p"
	}
}

// splitAt makes sure an inline boundary exists at offset and returns the
// index of the first inline that starts at or after it.
func (b *Block) splitAt(offset int) int {
	pos := 0
	for i := 0; i < len(b.Inlines); i++ {
		if offset <= pos {
			return i
		}
		in := b.Inlines[i]
		n := in.Len()
		if offset < pos+n {
			runes := []rune(in.Text)
			k := offset - pos
			left := Inline{Text: string(runes[:k]), Style: in.Style}
			right := Inline{Text: string(runes[k:]), Style: in.Style}
			b.Inlines = append(b.Inlines[:i], append([]Inline{left, right}, b.Inlines[i+1:]...)...)
			return i + 1
		}
		pos += n
	}
	return len(b.Inlines)
}

// styleBefore returns the style of the run ending at offset, so typed or
// inserted text continues the surrounding formatting.
func (b *Block) styleBefore(offset int) Style {
	pos := 0
	var last Style
	for _, in := range b.Inlines {
		if pos >= offset {
			break
		}
		if in.Image == nil {
			last = in.Style
		}
		pos += in.Len()
	}
	return last
}

type Document struct {
	Blocks []Block
}

// Clone returns a deep copy of the document
func (d *Document) Clone() *Document {
	out := &Document{Blocks: make([]Block, len(d.Blocks))}
	for i, b := range d.Blocks {
		nb := b
		nb.Inlines = make([]Inline, len(b.Inlines))
		for j, in := range b.Inlines {
			if in.Image != nil {
				img := *in.Image
				in.Image = &img
			}
			nb.Inlines[j] = in
		}
		out.Blocks[i] = nb
	}
	return out
}

// normalize merges adjacent text runs of equal style, drops empty runs and
// brings block attributes into their canonical form.
func (d *Document) normalize() {
	for i := range d.Blocks {
		b := &d.Blocks[i]
		switch b.Kind {
		case Heading:
			if b.Level < 1 {
				b.Level = 1
			}
			if b.Level > 6 {
				b.Level = 6
			}
			b.List = NoList
		case ListItem:
			b.Level = 0
			if b.List != Ordered {
				b.List = Unordered
			}
		default:
			b.Kind = Paragraph
			b.Level = 0
			b.List = NoList
		}

		merged := b.Inlines[:0]
		for _, in := range b.Inlines {
			if in.Image == nil && in.Text == "" {
				continue
			}
			if n := len(merged); n > 0 && in.Image == nil && merged[n-1].Image == nil && merged[n-1].Style == in.Style {
				merged[n-1].Text += in.Text
				continue
			}
			merged = append(merged, in)
		}
		b.Inlines = merged
	}
}

// Position addresses a point between two characters of a block. Offsets
// count runes and an image counts as one.
type Position struct {
	Block  int `json:"block"`
	Offset int `json:"offset"`
}

func (p Position) before(o Position) bool {
	return p.Block < o.Block || (p.Block == o.Block && p.Offset < o.Offset)
}

// Range is an ordered selection, Start never after End
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// NewRange orders anchor and focus into a Range
func NewRange(anchor, focus Position) Range {
	if focus.before(anchor) {
		return Range{Start: focus, End: anchor}
	}
	return Range{Start: anchor, End: focus}
}

func (r Range) Collapsed() bool {
	return r.Start == r.End
}

func (d *Document) clamp(p Position) Position {
	if len(d.Blocks) == 0 {
		return Position{}
	}
	if p.Block < 0 {
		return Position{}
	}
	if p.Block >= len(d.Blocks) {
		last := len(d.Blocks) - 1
		return Position{Block: last, Offset: d.Blocks[last].Len()}
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	if n := d.Blocks[p.Block].Len(); p.Offset > n {
		p.Offset = n
	}
	return p
}

func (d *Document) clampRange(r Range) Range {
	return NewRange(d.clamp(r.Start), d.clamp(r.End))
}

// End is the position after the last character of the document
func (d *Document) End() Position {
	if len(d.Blocks) == 0 {
		return Position{}
	}
	last := len(d.Blocks) - 1
	return Position{Block: last, Offset: d.Blocks[last].Len()}
}

func (d *Document) ensureBlock() {
	if len(d.Blocks) == 0 {
		d.Blocks = append(d.Blocks, Block{Kind: Paragraph})
	}
}

// spans calls fn with the [from, to) slice of every block touched by r
func (d *Document) spans(r Range, fn func(b *Block, from, to int)) {
	for bi := r.Start.Block; bi <= r.End.Block && bi < len(d.Blocks); bi++ {
		b := &d.Blocks[bi]
		from, to := 0, b.Len()
		if bi == r.Start.Block {
			from = r.Start.Offset
		}
		if bi == r.End.Block {
			to = r.End.Offset
		}
		fn(b, from, to)
	}
}

// applyStyle restyles exactly the runs inside r, splitting at its edges
func (d *Document) applyStyle(r Range, set func(*Style)) {
	d.spans(r, func(b *Block, from, to int) {
		if from >= to {
			return
		}
		i := b.splitAt(from)
		j := b.splitAt(to)
		for k := i; k < j; k++ {
			set(&b.Inlines[k].Style)
		}
	})
}

// allStyled reports whether every run overlapping r satisfies pred.
// An empty range is never styled.
func (d *Document) allStyled(r Range, pred func(Style) bool) bool {
	seen := false
	all := true
	d.spans(r, func(b *Block, from, to int) {
		pos := 0
		for _, in := range b.Inlines {
			n := in.Len()
			if pos < to && pos+n > from {
				seen = true
				if !pred(in.Style) {
					all = false
				}
			}
			pos += n
		}
	})
	return seen && all
}

// deleteRange removes the content of r, joining the first and last block
func (d *Document) deleteRange(r Range) Position {
	if r.Collapsed() || len(d.Blocks) == 0 {
		return r.Start
	}
	start := &d.Blocks[r.Start.Block]
	if r.Start.Block == r.End.Block {
		i := start.splitAt(r.Start.Offset)
		j := start.splitAt(r.End.Offset)
		start.Inlines = append(start.Inlines[:i], start.Inlines[j:]...)
		return r.Start
	}

	end := &d.Blocks[r.End.Block]
	j := end.splitAt(r.End.Offset)
	tail := append([]Inline(nil), end.Inlines[j:]...)
	i := start.splitAt(r.Start.Offset)
	start.Inlines = append(start.Inlines[:i], tail...)
	d.Blocks = append(d.Blocks[:r.Start.Block+1], d.Blocks[r.End.Block+1:]...)
	return r.Start
}

// insertInline places in at p and returns the position right after it
func (d *Document) insertInline(p Position, in Inline) Position {
	d.ensureBlock()
	p = d.clamp(p)
	b := &d.Blocks[p.Block]
	i := b.splitAt(p.Offset)
	b.Inlines = append(b.Inlines[:i], append([]Inline{in}, b.Inlines[i:]...)...)
	return Position{Block: p.Block, Offset: p.Offset + in.Len()}
}

// eachBlock calls fn for every block touched by r
func (d *Document) eachBlock(r Range, fn func(b *Block)) {
	for bi := r.Start.Block; bi <= r.End.Block && bi < len(d.Blocks); bi++ {
		fn(&d.Blocks[bi])
	}
}
