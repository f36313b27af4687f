package api

import (
	"net/http"

	"github.com/rpupo63/blog-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type readerHandler struct {
	responder Responder
	logger    zerolog.Logger
	reading   *services.ReadingService
}

func newReaderHandler(reading *services.ReadingService) readerHandler {
	logger := log.With().Str("handlerName", "readerHandler").Logger()

	return readerHandler{
		responder: NewResponder(logger),
		logger:    logger,
		reading:   reading,
	}
}

// getMe returns the signed-in caller
// @Summary Current user
// @Tags Readers
// @Produce json
// @Success 200 {object} MeResponse "Identity and profile"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /me [get]
func (h readerHandler) getMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := ctxGetSession(r.Context())
		h.responder.WriteJSON(w, MeResponse{Identity: session.Identity, User: session.Profile})
	}
}

// getProfile returns the reading statistics and the read and saved tabs
// @Summary Reader profile
// @Tags Readers
// @Produce json
// @Success 200 {object} services.ReaderProfile "Profile"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /me/profile [get]
func (h readerHandler) getProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := ctxGetSession(r.Context())
		profile, err := h.reading.Profile(r.Context(), session.UserID())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, profile)
	}
}
