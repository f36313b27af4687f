package api

import (
	"net/http"
	"time"

	"github.com/rpupo63/blog-backend/database"
	"github.com/rpupo63/blog-backend/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type healthHandler struct {
	responder   Responder
	logger      zerolog.Logger
	database    database.Database
	startupTime time.Time
}

func newHealthHandler(database database.Database, startupTime time.Time) healthHandler {
	logger := log.With().Str("handlerName", "healthHandler").Logger()

	return healthHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		database:    database,
		startupTime: startupTime,
	}
}

// health reports the uptime and pings the database
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{} "Healthy"
// @Failure 503 {object} ErrorResponse "Service Unavailable - Database unreachable"
// @Router /health [get]
func (h healthHandler) health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.database.Ping(r.Context()); err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("ping", "database", err))
			return
		}
		h.responder.WriteJSON(w, map[string]interface{}{
			"status":    "ok",
			"startedAt": h.startupTime,
			"uptime":    time.Since(h.startupTime).Round(time.Second).String(),
		})
	}
}
