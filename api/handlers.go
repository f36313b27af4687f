package api

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rpupo63/blog-backend/errs"
)

type handlerOptions struct {
	maxUploadBytes int64
	secureCookies  bool
	sessionTTL     time.Duration
	startupTime    time.Time
}

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(deps Dependencies, opts handlerOptions) *routeHandlers {
	return &routeHandlers{
		articleHandler:   newArticleHandler(deps.Articles, deps.Reading),
		dashboardHandler: newDashboardHandler(deps.Articles, deps.Media, opts.maxUploadBytes),
		readerHandler:    newReaderHandler(deps.Reading),
		authHandler:      newAuthHandler(deps.Accounts, deps.Sessions, opts.secureCookies, opts.sessionTTL),
		mediaHandler:     newMediaHandler(deps.Media, opts.maxUploadBytes),
		editorHandler:    newEditorHandler(deps.Media, opts.maxUploadBytes),
		healthHandler:    newHealthHandler(deps.Database, opts.startupTime),
	}
}

// decodeJSON reads a JSON body into v, mapping oversized and malformed bodies to API errors
func decodeJSON(r *http.Request, payloadType string, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errs.NewMaxBodySizeExceededError(maxErr.Limit)
		}
		return errs.NewMalformedPayloadError(payloadType, err)
	}
	return nil
}

// uuidParam parses a uuid URL parameter
func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return uuid.Nil, errs.NewBadRequestError("missing " + name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errs.NewBadRequestError("invalid " + name)
	}
	return id, nil
}

// formFile parses a multipart body and returns its "file" part, rejecting
// files larger than maxBytes. The caller closes the file.
func formFile(r *http.Request, maxBytes int64) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, nil, errs.NewMaxBodySizeExceededError(maxErr.Limit)
		}
		return nil, nil, errs.NewMalformedPayloadError("multipart", err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, errs.NewMissingRequiredFieldError("file")
	}
	if header.Size > maxBytes {
		file.Close()
		return nil, nil, errs.NewMaxBodySizeExceededError(maxBytes)
	}
	return file, header, nil
}
