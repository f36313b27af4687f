package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var errNoMediaStore = errors.New("no media backend configured")

type mediaHandler struct {
	responder      Responder
	logger         zerolog.Logger
	media          services.MediaStore
	maxUploadBytes int64
}

func newMediaHandler(media services.MediaStore, maxUploadBytes int64) mediaHandler {
	logger := log.With().Str("handlerName", "mediaHandler").Logger()

	return mediaHandler{
		responder:      NewResponder(logger),
		logger:         logger,
		media:          media,
		maxUploadBytes: maxUploadBytes,
	}
}

// uploadImage uploads an image to the media backend
// @Summary Upload image
// @Tags Media
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image"
// @Success 200 {object} UploadResponse "Hosted URL"
// @Failure 400 {object} ErrorResponse "Bad Request - Missing file"
// @Failure 502 {object} ErrorResponse "Bad Gateway - Upload failed"
// @Failure 503 {object} ErrorResponse "Service Unavailable - No media backend"
// @Router /uploads/image [post]
func (h mediaHandler) uploadImage() http.HandlerFunc {
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

		url, err := h.media.Upload(r.Context(), header.Filename, file)
		if err != nil {
			h.responder.WriteError(w, errs.NewUploadFailedError(err))
			return
		}
		h.responder.WriteJSON(w, UploadResponse{URL: url})
	}
}

// deleteImage deletes a hosted image by public id
// @Summary Delete image
// @Description Server-side proxy for the privileged CDN destroy call
// @Tags Media
// @Accept json
// @Produce json
// @Param body body DeleteImageRequest true "Public id"
// @Success 200 {object} DeleteImageResponse "Deleted"
// @Failure 400 {object} ErrorResponse "Bad Request - Missing publicId"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Delete failed"
// @Router /api/cloudinary/delete [post]
func (h mediaHandler) deleteImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DeleteImageRequest
		if err := decodeJSON(r, "delete image", &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		publicID := strings.TrimSpace(req.PublicID)
		if publicID == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("publicId"))
			return
		}

		if h.media == nil {
			h.responder.WriteError(w, errs.NewDeleteFailedError(publicID, errNoMediaStore))
			return
		}
		if err := h.media.Delete(r.Context(), publicID); err != nil {
			h.responder.WriteError(w, errs.NewDeleteFailedError(publicID, err))
			return
		}

		h.logger.Info().Str("publicId", publicID).Msg("Deleted image")
		h.responder.WriteJSON(w, DeleteImageResponse{Success: true})
	}
}
