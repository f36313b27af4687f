package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rpupo63/blog-backend/editor"
	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// editorHandler runs editing commands on a document sent by the admin
// client. The client owns the HTML; every call returns the new value.
type editorHandler struct {
	responder      Responder
	logger         zerolog.Logger
	media          services.MediaStore
	maxUploadBytes int64
}

func newEditorHandler(media services.MediaStore, maxUploadBytes int64) editorHandler {
	logger := log.With().Str("handlerName", "editorHandler").Logger()

	return editorHandler{
		responder:      NewResponder(logger),
		logger:         logger,
		media:          media,
		maxUploadBytes: maxUploadBytes,
	}
}

// EditorCommandRequest applies one command to html at the selection. A
// missing selection selects the whole document.
type EditorCommandRequest struct {
	HTML      string        `json:"html"`
	Selection *editor.Range `json:"selection,omitempty"`
	Command   string        `json:"command"`
	Value     string        `json:"value"`
}

// EditorState is the editor after a command
type EditorState struct {
	HTML      string       `json:"html"`
	Selection editor.Range `json:"selection"`
	Stats     editor.Stats `json:"stats"`
	Empty     bool         `json:"empty"`
	URL       string       `json:"url,omitempty"`
}

// EditorPreviewRequest asks for the read-only rendering of html
type EditorPreviewRequest struct {
	HTML string `json:"html"`
}

// EditorPreview is the read-only rendering shown in preview mode
type EditorPreview struct {
	HTML        string       `json:"html"`
	Placeholder string       `json:"placeholder,omitempty"`
	Stats       editor.Stats `json:"stats"`
}

func openEditor(html string, selection *editor.Range, uploader editor.Uploader) *editor.Editor {
	e := editor.New(html, nil, uploader)
	if selection == nil {
		e.SelectAll()
	} else {
		e.Select(selection.Start, selection.End)
	}
	return e
}

func stateOf(e *editor.Editor) EditorState {
	return EditorState{
		HTML:      e.HTML(),
		Selection: e.Selection(),
		Stats:     e.Stats(),
		Empty:     e.ShowPlaceholder(),
	}
}

// execCommand applies a formatting command
// @Summary Run editor command
// @Description bold, italic, underline, formatBlock, insertUnorderedList, insertOrderedList, justifyLeft, justifyCenter, justifyRight, foreColor, fontSize, createLink, insertImage
// @Tags Editor
// @Accept json
// @Produce json
// @Param body body EditorCommandRequest true "Document, selection and command"
// @Success 200 {object} EditorState "New document"
// @Failure 400 {object} ErrorResponse "Bad Request - Unknown command"
// @Router /editor/commands [post]
func (h editorHandler) execCommand() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req EditorCommandRequest
		if err := decodeJSON(r, "editor command", &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		e := openEditor(req.HTML, req.Selection, nil)
		if err := e.Exec(req.Command, req.Value); err != nil {
			if errors.Is(err, editor.ErrUnknownCommand) {
				h.responder.WriteError(w, errs.NewInvalidFieldError("command", err.Error()))
				return
			}
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, stateOf(e))
	}
}

// insertImage uploads an image and inserts it at the selection
// @Summary Insert image
// @Description Uploads the file, then embeds it at the cursor. On upload failure the document is unchanged.
// @Tags Editor
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image"
// @Param html formData string false "Current document"
// @Param selection formData string false "JSON selection"
// @Success 200 {object} EditorState "New document and image URL"
// @Failure 502 {object} ErrorResponse "Bad Gateway - Upload failed"
// @Failure 503 {object} ErrorResponse "Service Unavailable - No media backend"
// @Router /editor/images [post]
func (h editorHandler) insertImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.media == nil {
			h.responder.WriteError(w, errs.NewMediaDisabledError())
			return
		}

		file, header, err := formFile(r, h.maxUploadBytes)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		defer file.Close()

		var selection *editor.Range
		if raw := r.FormValue("selection"); raw != "" {
			selection = &editor.Range{}
			if err := json.Unmarshal([]byte(raw), selection); err != nil {
				h.responder.WriteError(w, errs.NewInvalidFieldError("selection", "malformed selection"))
				return
			}
		}

		e := openEditor(r.FormValue("html"), selection, h.media)
		url, err := e.InsertImage(r.Context(), header.Filename, file)
		if err != nil {
			h.responder.WriteError(w, errs.NewUploadFailedError(err))
			return
		}

		state := stateOf(e)
		state.URL = url
		h.responder.WriteJSON(w, state)
	}
}

// preview renders a document read-only
// @Summary Preview document
// @Tags Editor
// @Accept json
// @Produce json
// @Param body body EditorPreviewRequest true "Document"
// @Success 200 {object} EditorPreview "Rendering"
// @Router /editor/preview [post]
func (h editorHandler) preview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req EditorPreviewRequest
		if err := decodeJSON(r, "editor preview", &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		e := editor.New(req.HTML, nil, nil)
		preview := EditorPreview{Stats: e.Stats()}
		if e.ShowPlaceholder() {
			preview.Placeholder = editor.Placeholder
		}
		e.TogglePreview()
		preview.HTML = e.Preview()
		h.responder.WriteJSON(w, preview)
	}
}
