package api

import (
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/cors"
	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// sessionCookie holds the session token for browser clients
const sessionCookie = "session"

type authMiddleware struct {
	responder Responder
	identity  services.IdentityProvider
	sessions  *services.SessionManager
}

func newAuthMiddleware(identity services.IdentityProvider, sessions *services.SessionManager) authMiddleware {
	logger := log.With().Str("handlerName", "authMiddleware").Logger()
	return authMiddleware{
		responder: NewResponder(logger),
		identity:  identity,
		sessions:  sessions,
	}
}

// tokenFromRequest reads a bearer token, falling back to the session cookie
func tokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func (m authMiddleware) resolve(r *http.Request) (*services.Session, error) {
	identity, err := m.identity.Authenticate(r.Context(), tokenFromRequest(r))
	if err != nil {
		return nil, err
	}
	return m.sessions.Begin(r.Context(), identity)
}

// identify attaches the session when the request carries a valid token and
// lets anonymous or badly authenticated requests through without one.
func (m authMiddleware) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tokenFromRequest(r) == "" {
			next.ServeHTTP(w, r)
			return
		}
		session, err := m.resolve(r)
		if err != nil {
			log.Debug().Err(err).Str("path", r.URL.Path).Msg("Ignoring invalid session on public route")
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctxWithSession(r.Context(), session)))
	})
}

func (m authMiddleware) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := m.resolve(r)
		if err != nil {
			m.responder.WriteError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctxWithSession(r.Context(), session)))
	})
}

// requireAdmin must run after authenticate
func (m authMiddleware) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ctxGetSession(r.Context()).IsAdmin() {
			m.responder.WriteError(w, errs.NewInsufficientRoleError("admin"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// limitBody caps request bodies at maxBytes
func limitBody(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

type statusResponseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusResponseWriter) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.status = statusCode
		w.wroteHeader = true
		w.ResponseWriter.WriteHeader(statusCode)
	}
}

func (w *statusResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func LogInternalServerErrors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srw := &statusResponseWriter{ResponseWriter: w, status: 200}

		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Interface("panic", err).
					Str("stack", string(debug.Stack())).
					Msg("Recovered from panic")

				// Write 500 if nothing written yet
				if !srw.wroteHeader {
					srw.WriteHeader(http.StatusInternalServerError)
				}
			}
		}()

		next.ServeHTTP(srw, r)

		if srw.status == http.StatusInternalServerError {
			log.Error().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("500 error response")
		}
	})
}

func originAllowed(allowedOrigins []string, origin string) bool {
	for _, allowedOrigin := range allowedOrigins {
		if allowedOrigin == "*" || allowedOrigin == origin {
			return true
		}
	}
	return false
}

// CORSCheckMiddleware rejects preflight requests from unknown origins with a JSON error
func CORSCheckMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			// If no origin header, it's likely a same-origin request
			if origin == "" || originAllowed(allowedOrigins, origin) || r.Method != http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			responder := NewResponder(log.Logger)
			responder.WriteError(w, errs.NewCORSError(origin))
		})
	}
}

// corsMiddleware sets the CORS headers for allowed origins
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowOriginFunc: func(r *http.Request, origin string) bool {
			return originAllowed(allowedOrigins, origin)
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

// HTTPLoggingMiddleware logs each request at a level chosen by its status code
func HTTPLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusResponseWriter{ResponseWriter: w, status: 200}

		next.ServeHTTP(srw, r)

		var logEvent *zerolog.Event
		switch {
		case srw.status >= 500:
			logEvent = log.Error()
		case srw.status >= 400:
			logEvent = log.Warn()
		default:
			logEvent = log.Info()
		}

		logEvent.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", srw.status).
			Dur("duration", time.Since(start)).
			Str("remote_addr", r.RemoteAddr).
			Msg("HTTP Request")
	})
}
