package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRegisterLoginLogout(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodPost, "/auth/register", "", RegisterRequest{Email: "new@example.com", Password: "secret1"})
	expectStatus(t, rec, http.StatusCreated)
	registered := decode[AuthResponse](t, rec)
	if registered.Token == "" || registered.User == nil || registered.User.DisplayName != "Utilisateur" || registered.User.IsAdmin {
		t.Fatalf("register = %+v", registered)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != sessionCookie || !cookies[0].HttpOnly || cookies[0].Value != registered.Token {
		t.Fatalf("cookies = %+v", cookies)
	}

	expectStatus(t, env.do(http.MethodPost, "/auth/register", "", RegisterRequest{Email: "new@example.com", Password: "secret1"}), http.StatusConflict)
	expectStatus(t, env.do(http.MethodPost, "/auth/register", "", RegisterRequest{Email: "x@example.com", Password: "123"}), http.StatusBadRequest)
	expectStatus(t, env.do(http.MethodPost, "/auth/login", "", LoginRequest{Email: "new@example.com", Password: "nope"}), http.StatusUnauthorized)
	expectStatus(t, env.do(http.MethodPost, "/auth/login", "", LoginRequest{Email: "ghost@example.com", Password: "secret1"}), http.StatusNotFound)

	rec = env.do(http.MethodPost, "/auth/login", "", LoginRequest{Email: "NEW@example.com", Password: "secret1"})
	expectStatus(t, rec, http.StatusOK)
	login := decode[AuthResponse](t, rec)
	if login.User.ID != registered.User.ID {
		t.Fatalf("login user = %q, want %q", login.User.ID, registered.User.ID)
	}

	// the cookie alone authenticates browser clients
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: login.Token})
	meRec := httptest.NewRecorder()
	env.router.ServeHTTP(meRec, req)
	expectStatus(t, meRec, http.StatusOK)
	if me := decode[MeResponse](t, meRec); me.Identity.Email != "new@example.com" || me.User.ID != registered.User.ID {
		t.Fatalf("me = %+v", me)
	}

	rec = env.do(http.MethodPost, "/auth/logout", login.Token, nil)
	expectStatus(t, rec, http.StatusOK)
	if cookies := rec.Result().Cookies(); len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Fatalf("logout cookies = %+v", cookies)
	}
}

func TestMeRejectsBadTokens(t *testing.T) {
	env := newTestEnv(t, nil)

	expectStatus(t, env.do(http.MethodGet, "/me", "", nil), http.StatusUnauthorized)
	expectStatus(t, env.do(http.MethodGet, "/me", "garbage", nil), http.StatusUnauthorized)

	// public routes ignore a bad token
	expectStatus(t, env.do(http.MethodGet, "/articles", "garbage", nil), http.StatusOK)
}

func TestMalformedAuthPayload(t *testing.T) {
	env := newTestEnv(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.Body = http.NoBody
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	expectStatus(t, rec, http.StatusBadRequest)
}
