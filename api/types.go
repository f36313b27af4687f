package api

import (
	"github.com/rpupo63/blog-backend/models"
	"github.com/rpupo63/blog-backend/services"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	articleHandler   articleHandler
	dashboardHandler dashboardHandler
	readerHandler    readerHandler
	authHandler      authHandler
	mediaHandler     mediaHandler
	editorHandler    editorHandler
	healthHandler    healthHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string `json:"error" example:"Internal Server Error"`
	Status  string `json:"status" example:"error"`
	Field   string `json:"field,omitempty" example:"title"`
	Details string `json:"details,omitempty" example:"Additional error details"`
	Cause   string `json:"cause,omitempty" example:"Underlying error cause"`
}

// ArticleCollection is the dashboard table
type ArticleCollection struct {
	Articles []*models.Article `json:"articles"`
	Total    int               `json:"total"`
}

// StatusResponse acknowledges a mutation
type StatusResponse struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message,omitempty"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// MeResponse describes the signed-in caller
type MeResponse struct {
	Identity *services.Identity `json:"identity"`
	User     *models.User       `json:"user"`
}

// UploadResponse carries the hosted URL of an uploaded image
type UploadResponse struct {
	URL string `json:"url"`
}

// DeleteImageRequest is the body of the image delete proxy
type DeleteImageRequest struct {
	PublicID string `json:"publicId"`
}

// DeleteImageResponse is the body of a successful image deletion
type DeleteImageResponse struct {
	Success bool `json:"success"`
}
