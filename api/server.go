package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/blog-backend/config"
	"github.com/rpupo63/blog-backend/database"
	"github.com/rpupo63/blog-backend/services"
	"github.com/rs/zerolog/log"
)

// defaultMaxUploadBytes caps uploaded files when MAX_UPLOAD_BYTES is unset
const defaultMaxUploadBytes = 10 << 20

// multipartOverhead is the room left in the body limit for the multipart
// envelope and form fields around an upload of the maximum size
const multipartOverhead = 1 << 20

// Dependencies are the stores and services the handlers call. Accounts is
// nil when sign-in happens on a hosted identity provider and Media is nil
// when no image backend is configured.
type Dependencies struct {
	Database database.Database
	Articles *services.ArticleService
	Reading  *services.ReadingService
	Sessions *services.SessionManager
	Identity services.IdentityProvider
	Accounts *services.LocalIdentityProvider
	Media    services.MediaStore
}

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(c map[string]string, deps Dependencies) (Server, error) {
	if deps.Identity == nil || deps.Sessions == nil || deps.Articles == nil || deps.Reading == nil {
		return Server{}, fmt.Errorf("api: identity, sessions, articles and reading are required")
	}

	port := config.GetString(c, "PORT", "8080")
	address := fmt.Sprintf("0.0.0.0:%s", port) // Bind to 0.0.0.0 for external access

	startupTime := time.Now()
	router := newRouter(deps, withConfig(c), withStartupTime(startupTime))

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  config.GetDuration(c, "READ_TIMEOUT_SECONDS", time.Second, 180),
		WriteTimeout: config.GetDuration(c, "WRITE_TIMEOUT_SECONDS", time.Second, 180),
		IdleTimeout:  config.GetDuration(c, "IDLE_TIMEOUT_SECONDS", time.Second, 180),
	}

	return Server{server, startupTime}, nil
}

type router struct {
	config      map[string]string
	startupTime time.Time
}

func withConfig(c map[string]string) func(*router) {
	return func(r *router) {
		r.config = c
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func newRouter(deps Dependencies, opts ...func(*router)) *chi.Mux {
	var router router
	for _, opt := range opts {
		opt(&router)
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(LogInternalServerErrors)

	maxUpload := int64(config.GetInt(router.config, "MAX_UPLOAD_BYTES", defaultMaxUploadBytes))
	handlers := initializeHandlers(deps, handlerOptions{
		maxUploadBytes: maxUpload,
		secureCookies:  config.GetBool(router.config, "SECURE_COOKIES", config.GetString(router.config, "ENV", "") == "production"),
		sessionTTL:     config.GetDuration(router.config, "SESSION_TTL_HOURS", time.Hour, 24*7),
		startupTime:    router.startupTime,
	})

	authMiddleware := newAuthMiddleware(deps.Identity, deps.Sessions)

	acceptedOrigins := config.GetList(router.config, "ACCEPTED_ORIGINS")
	chiRouter.Use(CORSCheckMiddleware(acceptedOrigins))
	chiRouter.Use(corsMiddleware(acceptedOrigins))
	chiRouter.Use(limitBody(maxUpload + multipartOverhead))

	setupRoutes(chiRouter, handlers, authMiddleware)

	return chiRouter
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
