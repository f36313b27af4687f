package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestBeginCreatesProfileOnce(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	sessions := NewSessionManager(db, nil)
	sessions.now = func() time.Time { return testNow }

	identity := &Identity{Subject: "sub-1", Email: "reader@example.com"}
	first, err := sessions.Begin(ctx, identity)
	if err != nil {
		t.Fatal(err)
	}
	if first.Profile.DisplayName != DefaultDisplayName || first.IsAdmin() {
		t.Fatalf("profile = %+v", first.Profile)
	}
	if first.Profile.ReadArticles == nil || len(first.Profile.SavedArticles) != 0 {
		t.Fatalf("lists = %v %v", first.Profile.ReadArticles, first.Profile.SavedArticles)
	}

	// later sign-ins load the stored profile instead of recreating it
	stored := first.Profile
	stored.ReadArticles = append(stored.ReadArticles, "a1")
	if err := db.UserRepo().Update(ctx, stored); err != nil {
		t.Fatal(err)
	}
	again, err := sessions.Begin(ctx, &Identity{Subject: "sub-1", DisplayName: "Other"})
	if err != nil {
		t.Fatal(err)
	}
	if again.Profile.DisplayName != DefaultDisplayName || !again.Profile.HasRead("a1") {
		t.Fatalf("profile recreated: %+v", again.Profile)
	}
	if again.UserID() != "sub-1" {
		t.Fatalf("user id = %q", again.UserID())
	}

	var nilSession *Session
	if nilSession.IsAdmin() {
		t.Fatal("nil session is not admin")
	}
	sessions.End(ctx, nil)
	sessions.End(ctx, again)
}

func TestBeginSendsWelcomeOnCreation(t *testing.T) {
	sent := make(chan ResendEmailRequest, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ResendEmailRequest
		json.NewDecoder(r.Body).Decode(&req)
		sent <- req
		w.Write([]byte(`{"id":"email-1"}`))
	}))
	defer srv.Close()

	db := openTestDB(t)
	mailer := NewMailer("key", "Blog <hello@example.com>", srv.URL, "", srv.Client())
	sessions := NewSessionManager(db, mailer)

	identity := &Identity{Subject: "sub-2", Email: "new@example.com", DisplayName: "Léa"}
	if _, err := sessions.Begin(context.Background(), identity); err != nil {
		t.Fatal(err)
	}

	select {
	case req := <-sent:
		if len(req.To) != 1 || req.To[0] != "new@example.com" || !strings.Contains(req.Html, "Léa") {
			t.Fatalf("welcome = %+v", req)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("welcome email not sent")
	}

	if _, err := sessions.Begin(context.Background(), identity); err != nil {
		t.Fatal(err)
	}
	select {
	case req := <-sent:
		t.Fatalf("unexpected second welcome: %+v", req)
	case <-time.After(100 * time.Millisecond):
	}
}
