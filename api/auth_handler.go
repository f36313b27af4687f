package api

import (
	"net/http"
	"time"

	"github.com/rpupo63/blog-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type authHandler struct {
	responder     Responder
	logger        zerolog.Logger
	accounts      *services.LocalIdentityProvider
	sessions      *services.SessionManager
	secureCookies bool
	sessionTTL    time.Duration
}

func newAuthHandler(accounts *services.LocalIdentityProvider, sessions *services.SessionManager, secureCookies bool, sessionTTL time.Duration) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder:     NewResponder(logger),
		logger:        logger,
		accounts:      accounts,
		sessions:      sessions,
		secureCookies: secureCookies,
		sessionTTL:    sessionTTL,
	}
}

// RegisterRequest is the sign-up form
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// LoginRequest is the sign-in form
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h authHandler) setSessionCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// start opens the session of a freshly authenticated identity and answers with its token
func (h authHandler) start(w http.ResponseWriter, r *http.Request, identity *services.Identity, token string, status int) {
	session, err := h.sessions.Begin(r.Context(), identity)
	if err != nil {
		h.responder.WriteError(w, err)
		return
	}
	h.setSessionCookie(w, token, int(h.sessionTTL.Seconds()))
	h.responder.WriteJSONStatus(w, status, AuthResponse{Token: token, User: session.Profile})
}

// register creates an email/password account
// @Summary Register
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Sign-up form"
// @Success 201 {object} AuthResponse "Session token and profile"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid email or weak password"
// @Failure 409 {object} ErrorResponse "Conflict - Email already in use"
// @Router /auth/register [post]
func (h authHandler) register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := decodeJSON(r, "register", &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		identity, token, err := h.accounts.SignUp(r.Context(), req.Email, req.Password, req.DisplayName)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.start(w, r, identity, token, http.StatusCreated)
	}
}

// login signs in with email and password
// @Summary Login
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Sign-in form"
// @Success 200 {object} AuthResponse "Session token and profile"
// @Failure 401 {object} ErrorResponse "Unauthorized - Wrong password"
// @Failure 404 {object} ErrorResponse "Not Found - No account for this email"
// @Router /auth/login [post]
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := decodeJSON(r, "login", &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		identity, token, err := h.accounts.SignIn(r.Context(), req.Email, req.Password)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.start(w, r, identity, token, http.StatusOK)
	}
}

// logout ends the session and clears the cookie
// @Summary Logout
// @Tags Auth
// @Produce json
// @Success 200 {object} StatusResponse "Signed out"
// @Router /auth/logout [post]
func (h authHandler) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.sessions.End(r.Context(), ctxGetSession(r.Context()))
		h.setSessionCookie(w, "", -1)
		h.responder.WriteJSON(w, StatusResponse{Status: "success", Message: "signed out"})
	}
}
