package editor

import (
	"context"
	"fmt"
	"io"
)

// Placeholder is shown while the editor holds no content
const Placeholder = "Écrivez votre contenu ici..."

// Uploader turns a local image into a hosted URL
type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

// Editor is the stateful editing surface. Its owner holds the authoritative
// HTML and is told about every local change through onChange.
type Editor struct {
	doc       *Document
	html      string
	sel       Range
	preview   bool
	fontMenu  bool
	colorMenu bool
	onChange  func(html string)
	uploader  Uploader
}

// New creates an editor showing value. onChange and uploader may be nil.
func New(value string, onChange func(html string), uploader Uploader) *Editor {
	e := &Editor{onChange: onChange, uploader: uploader}
	e.load(value)
	return e
}

func (e *Editor) load(value string) {
	e.doc = Parse(value)
	e.html = Render(e.doc)
	end := e.doc.End()
	e.sel = Range{Start: end, End: end}
}

// HTML is the current canonical serialization
func (e *Editor) HTML() string {
	return e.html
}

// Document returns a copy of the current document
func (e *Editor) Document() *Document {
	return e.doc.Clone()
}

func (e *Editor) Selection() Range {
	return e.sel
}

// Select moves the selection, clamping both ends into the document
func (e *Editor) Select(anchor, focus Position) {
	e.sel = e.doc.clampRange(NewRange(anchor, focus))
}

func (e *Editor) SelectAll() {
	e.sel = Range{Start: Position{}, End: e.doc.End()}
}

// SetValue applies a change made outside the editor, such as loading an
// article for editing. The document is only replaced when value differs
// from the current serialization, and onChange is not called.
func (e *Editor) SetValue(value string) bool {
	if value == e.html {
		return false
	}
	e.load(value)
	return true
}

// Input records a local edit of the editable region and propagates it
func (e *Editor) Input(value string) {
	e.doc = Parse(value)
	e.sel = e.doc.clampRange(e.sel)
	e.commit()
}

func (e *Editor) commit() {
	e.doc.normalize()
	e.html = Render(e.doc)
	e.sel = e.doc.clampRange(e.sel)
	if e.onChange != nil {
		e.onChange(e.html)
	}
}

// Exec runs a formatting command against the current selection. Valid
// commands never fail; they are no-ops when they do not apply.
func (e *Editor) Exec(name, value string) error {
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	e.sel = cmd(e.doc, e.doc.clampRange(e.sel), value)
	e.commit()
	return nil
}

// InsertImage uploads the file and embeds it at the cursor. On upload
// failure the document is left untouched and the error is returned.
func (e *Editor) InsertImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	if e.uploader == nil {
		return "", ErrNoUploader
	}
	url, err := e.uploader.Upload(ctx, filename, r)
	if err != nil {
		return "", err
	}
	return url, e.Exec("insertImage", url)
}

// InsertLink applies url as a hyperlink. It reports false when the value
// was left empty or at DefaultLinkValue.
func (e *Editor) InsertLink(url string) bool {
	before := e.html
	_ = e.Exec("createLink", url)
	return e.html != before
}

// ChangeFontSize sizes the selected text and closes the size menu
func (e *Editor) ChangeFontSize(size string) {
	_ = e.Exec("fontSize", size)
	e.fontMenu = false
}

// ChangeColor colors the selected text and closes the color menu
func (e *Editor) ChangeColor(color string) {
	_ = e.Exec("foreColor", color)
	e.colorMenu = false
}

func (e *Editor) ToggleFontSizeMenu() {
	e.fontMenu = !e.fontMenu
}

func (e *Editor) ToggleColorMenu() {
	e.colorMenu = !e.colorMenu
}

func (e *Editor) FontSizeMenuOpen() bool {
	return e.fontMenu
}

func (e *Editor) ColorMenuOpen() bool {
	return e.colorMenu
}

// TogglePreview switches between editing and the read-only rendering
func (e *Editor) TogglePreview() bool {
	e.preview = !e.preview
	return e.preview
}

func (e *Editor) Previewing() bool {
	return e.preview
}

// Preview is the read-only rendering of the current content
func (e *Editor) Preview() string {
	return e.html
}

// ShowPlaceholder reports whether the placeholder should be displayed:
// the content is empty and preview is off
func (e *Editor) ShowPlaceholder() bool {
	return e.doc.IsEmpty() && !e.preview
}

func (e *Editor) Stats() Stats {
	return e.doc.Stats()
}
