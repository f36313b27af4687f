package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rpupo63/blog-backend/errs"
	"github.com/rs/zerolog"
)

type Responder struct {
	logger zerolog.Logger
}

func NewResponder(logger zerolog.Logger) Responder {
	return Responder{logger}
}

func (r Responder) WriteJSON(w http.ResponseWriter, data any) {
	r.WriteJSONStatus(w, http.StatusOK, data)
}

// WriteJSONStatus writes data with the given status code
func (r Responder) WriteJSONStatus(w http.ResponseWriter, status int, data any) {
	// Marshal the data first to check size and handle errors
	jsonData, err := json.Marshal(data)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	// Check if response is too large (e.g., > 10MB)
	const maxResponseSize = 10 * 1024 * 1024 // 10MB
	if len(jsonData) > maxResponseSize {
		r.logger.Error().
			Int("responseSize", len(jsonData)).
			Int("maxSize", maxResponseSize).
			Msg("response too large, truncating")

		truncatedJSON, _ := json.Marshal(map[string]interface{}{
			"error":        "Response too large",
			"message":      "The requested data exceeds the maximum response size",
			"maxSizeMB":    maxResponseSize / (1024 * 1024),
			"actualSizeMB": len(jsonData) / (1024 * 1024),
		})
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		w.Write(truncatedJSON)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

func (r Responder) WriteError(w http.ResponseWriter, err error) {
	var apiErr *errs.ApiErr

	// Unexpected errors are logged and hidden behind a generic body
	if !errors.As(err, &apiErr) {
		r.logger.Error().Err(err).Msg("unexpected error")
		r.WriteJSONStatus(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "Internal Server Error",
			Status:  "error",
			Details: "An unexpected error occurred",
		})
		return
	}

	response := ErrorResponse{
		Error:   apiErr.Error(),
		Status:  "error",
		Field:   apiErr.Field,
		Details: apiErr.Details,
	}

	// Full error chain for debugging (especially useful for database errors)
	if apiErr.Cause != nil {
		response.Cause = apiErr.GetFullError()
	}
	if apiErr.StatusCode >= http.StatusInternalServerError {
		r.logger.Error().Str("error", apiErr.GetFullError()).Int("status", apiErr.StatusCode).Msg("request failed")
	}

	r.WriteJSONStatus(w, apiErr.StatusCode, response)
}

// writeTimeoutError writes a standardized timeout error response
func (r Responder) WriteTimeoutError(w http.ResponseWriter, endpoint string) {
	r.WriteJSONStatus(w, http.StatusRequestTimeout, map[string]interface{}{
		"error":    "Request timeout",
		"message":  "The request took too long to process",
		"status":   "timeout",
		"endpoint": endpoint,
	})
}

// CheckContextTimeout writes a timeout response when the request context is already done
func (r Responder) CheckContextTimeout(w http.ResponseWriter, req *http.Request) bool {
	select {
	case <-req.Context().Done():
		r.WriteTimeoutError(w, req.URL.Path)
		return true
	default:
		return false
	}
}
