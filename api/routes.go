package api

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes registers public, reader and admin routes
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Use(HTTPLoggingMiddleware)

	r.Get("/health", handlers.healthHandler.health())

	// Public routes, personalised when a session is present
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.identify)

		r.Get("/articles", handlers.articleHandler.listArticles())
		r.Get("/articles/home", handlers.articleHandler.getHome())
		r.Get("/article/{slug}", handlers.articleHandler.getArticle())

		if handlers.authHandler.accounts != nil {
			r.Post("/auth/register", handlers.authHandler.register())
			r.Post("/auth/login", handlers.authHandler.login())
		}
		r.Post("/auth/logout", handlers.authHandler.logout())
	})

	// Signed-in readers
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.authenticate)

		r.Get("/me", handlers.readerHandler.getMe())
		r.Get("/me/profile", handlers.readerHandler.getProfile())
		r.Post("/articles/{articleID}/read", handlers.articleHandler.markAsRead())
		r.Post("/articles/{articleID}/save", handlers.articleHandler.toggleSaved())
	})

	// Administrators
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.authenticate)
		r.Use(authMiddleware.requireAdmin)

		r.Get("/dashboard/articles", handlers.dashboardHandler.listArticles())
		r.Post("/dashboard/articles", handlers.dashboardHandler.createArticle())
		r.Get("/dashboard/articles/{articleID}", handlers.dashboardHandler.getArticle())
		r.Put("/dashboard/articles/{articleID}", handlers.dashboardHandler.updateArticle())
		r.Delete("/dashboard/articles/{articleID}", handlers.dashboardHandler.deleteArticle())
		r.Put("/dashboard/articles/{articleID}/cover", handlers.dashboardHandler.setCover())

		r.Post("/uploads/image", handlers.mediaHandler.uploadImage())
		r.Post("/api/cloudinary/delete", handlers.mediaHandler.deleteImage())

		r.Post("/editor/commands", handlers.editorHandler.execCommand())
		r.Post("/editor/images", handlers.editorHandler.insertImage())
		r.Post("/editor/preview", handlers.editorHandler.preview())
	})
}
