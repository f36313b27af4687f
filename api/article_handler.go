package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type articleHandler struct {
	responder Responder
	logger    zerolog.Logger
	articles  *services.ArticleService
	reading   *services.ReadingService
}

func newArticleHandler(articles *services.ArticleService, reading *services.ReadingService) articleHandler {
	logger := log.With().Str("handlerName", "articleHandler").Logger()

	return articleHandler{
		responder: NewResponder(logger),
		logger:    logger,
		articles:  articles,
		reading:   reading,
	}
}

// listArticles returns one page of published articles
// @Summary List articles
// @Description Returns a page of published articles. Search and tag filters apply to the fetched page.
// @Tags Articles
// @Produce json
// @Param sort query string false "newest, oldest or popular"
// @Param cursor query string false "Cursor returned by the previous page"
// @Param search query string false "Case-insensitive search over title, excerpt and content"
// @Param tag query string false "Exact tag"
// @Param tags query string false "Comma separated tags already known to the client"
// @Success 200 {object} services.ListPage "Articles page"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid cursor"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error fetching articles"
// @Router /articles [get]
func (h articleHandler) listArticles() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.responder.CheckContextTimeout(w, r) {
			return
		}

		q := r.URL.Query()
		var known []string
		if tags := q.Get("tags"); tags != "" {
			known = services.ParseTags(tags)
		}

		page, err := h.articles.List(r.Context(), services.ListQuery{
			Sort:      services.ParseSortOrder(q.Get("sort")),
			Cursor:    q.Get("cursor"),
			Search:    strings.TrimSpace(q.Get("search")),
			Tag:       q.Get("tag"),
			KnownTags: known,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, page)
	}
}

// getHome returns the landing page articles
// @Summary Home page
// @Description Featured articles, the article of the day and the recent articles
// @Tags Articles
// @Produce json
// @Success 200 {object} services.HomePage "Home page"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error fetching articles"
// @Router /articles/home [get]
func (h articleHandler) getHome() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		home, err := h.articles.Home(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, home)
	}
}

// getArticle returns a published article by slug
// @Summary Get article
// @Description Published article with related articles; saved/read flags when signed in
// @Tags Articles
// @Produce json
// @Param slug path string true "Article slug"
// @Success 200 {object} services.ArticleDetail "Article details"
// @Failure 404 {object} ErrorResponse "Not Found - Article not found"
// @Router /article/{slug} [get]
func (h articleHandler) getArticle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		if slug == "" {
			h.responder.WriteError(w, errs.NewBadRequestError("missing slug"))
			return
		}

		detail, err := h.articles.Detail(r.Context(), slug, ctxGetSession(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, detail)
	}
}

// markAsRead records that the caller read an article
// @Summary Mark article as read
// @Description Adds the article to the caller's history and counts a view, once per reader
// @Tags Reading
// @Produce json
// @Param articleID path string true "Article ID" format(uuid)
// @Success 200 {object} map[string]bool "first is true when this call recorded the read"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Not Found - Article not found"
// @Router /articles/{articleID}/read [post]
func (h articleHandler) markAsRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		articleID, err := uuidParam(r, "articleID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		session := ctxGetSession(r.Context())
		first, err := h.reading.MarkAsRead(r.Context(), session.UserID(), articleID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, map[string]bool{"first": first})
	}
}

// toggleSaved saves or unsaves an article for the caller
// @Summary Toggle saved article
// @Tags Reading
// @Produce json
// @Param articleID path string true "Article ID" format(uuid)
// @Success 200 {object} map[string]bool "saved is the new state"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Not Found - Article not found"
// @Router /articles/{articleID}/save [post]
func (h articleHandler) toggleSaved() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		articleID, err := uuidParam(r, "articleID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		session := ctxGetSession(r.Context())
		saved, err := h.reading.ToggleSaved(r.Context(), session.UserID(), articleID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, map[string]bool{"saved": saved})
	}
}
