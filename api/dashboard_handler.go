package api

import (
	"net/http"

	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type dashboardHandler struct {
	responder      Responder
	logger         zerolog.Logger
	articles       *services.ArticleService
	media          services.MediaStore
	maxUploadBytes int64
}

func newDashboardHandler(articles *services.ArticleService, media services.MediaStore, maxUploadBytes int64) dashboardHandler {
	logger := log.With().Str("handlerName", "dashboardHandler").Logger()

	return dashboardHandler{
		responder:      NewResponder(logger),
		logger:         logger,
		articles:       articles,
		media:          media,
		maxUploadBytes: maxUploadBytes,
	}
}

// listArticles retrieves every article for the admin table
// @Summary List all articles
// @Description Retrieves all articles, drafts included, filtered and sorted
// @Tags Dashboard
// @Produce json
// @Param search query string false "Case-insensitive search over title, excerpt and tags"
// @Param sort query string false "recent, oldest, title or views"
// @Success 200 {object} ArticleCollection "List of articles"
// @Failure 403 {object} ErrorResponse "Forbidden - Admin only"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error fetching articles"
// @Router /dashboard/articles [get]
func (h dashboardHandler) listArticles() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		articles, err := h.articles.Dashboard(r.Context(), services.DashboardQuery{
			Search: q.Get("search"),
			Sort:   services.DashboardSort(q.Get("sort")),
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, ArticleCollection{Articles: articles, Total: len(articles)})
	}
}

// getArticle retrieves any article by ID for editing
// @Summary Get article for editing
// @Tags Dashboard
// @Produce json
// @Param articleID path string true "Article ID" format(uuid)
// @Success 200 {object} models.Article "Article"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid articleID"
// @Failure 404 {object} ErrorResponse "Not Found - Article not found"
// @Router /dashboard/articles/{articleID} [get]
func (h dashboardHandler) getArticle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		articleID, err := uuidParam(r, "articleID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		article, err := h.articles.Get(r.Context(), articleID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, article)
	}
}

// createArticle creates a new article
// @Summary Create article
// @Description Validates the form, sanitizes the content and stores the article
// @Tags Dashboard
// @Accept json
// @Produce json
// @Param article body services.ArticleInput true "Article form"
// @Success 201 {object} models.Article "Created article"
// @Failure 400 {object} ErrorResponse "Bad Request - Missing title, content or excerpt"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error creating article"
// @Router /dashboard/articles [post]
func (h dashboardHandler) createArticle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input services.ArticleInput
		if err := decodeJSON(r, "article", &input); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		article, err := h.articles.Create(r.Context(), input, ctxGetSession(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, article)
	}
}

// updateArticle replaces the editable fields of an article
// @Summary Update article
// @Description Views and creation date are kept
// @Tags Dashboard
// @Accept json
// @Produce json
// @Param articleID path string true "Article ID" format(uuid)
// @Param article body services.ArticleInput true "Article form"
// @Success 200 {object} models.Article "Updated article"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid article data"
// @Failure 404 {object} ErrorResponse "Not Found - Article not found"
// @Router /dashboard/articles/{articleID} [put]
func (h dashboardHandler) updateArticle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		articleID, err := uuidParam(r, "articleID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var input services.ArticleInput
		if err := decodeJSON(r, "article", &input); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		article, err := h.articles.Update(r.Context(), articleID, input, ctxGetSession(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, article)
	}
}

// deleteArticle deletes an article by ID
// @Summary Delete article
// @Tags Dashboard
// @Produce json
// @Param articleID path string true "Article ID" format(uuid)
// @Success 200 {object} StatusResponse "Success message"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid articleID"
// @Failure 404 {object} ErrorResponse "Not Found - Article not found"
// @Router /dashboard/articles/{articleID} [delete]
func (h dashboardHandler) deleteArticle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		articleID, err := uuidParam(r, "articleID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		// Verify article exists
		if _, err := h.articles.Get(r.Context(), articleID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.articles.Delete(r.Context(), articleID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, StatusResponse{Status: "success", Message: "article deleted successfully"})
	}
}

// setCover uploads an image and makes it the article cover
// @Summary Upload article cover
// @Description On upload failure the article keeps its previous cover
// @Tags Dashboard
// @Accept multipart/form-data
// @Produce json
// @Param articleID path string true "Article ID" format(uuid)
// @Param file formData file true "Cover image"
// @Success 200 {object} models.Article "Updated article"
// @Failure 502 {object} ErrorResponse "Bad Gateway - Upload failed"
// @Failure 503 {object} ErrorResponse "Service Unavailable - No media backend"
// @Router /dashboard/articles/{articleID}/cover [put]
func (h dashboardHandler) setCover() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.media == nil {
			h.responder.WriteError(w, errs.NewMediaDisabledError())
			return
		}

		articleID, err := uuidParam(r, "articleID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		file, header, err := formFile(r, h.maxUploadBytes)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		defer file.Close()

		article, err := h.articles.SetCover(r.Context(), articleID, h.media, header.Filename, file)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, article)
	}
}
