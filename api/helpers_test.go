package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/blog-backend/database"
	"github.com/rpupo63/blog-backend/models"
	"github.com/rpupo63/blog-backend/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeMedia struct {
	url       string
	uploadErr error
	deleteErr error
	deleted   []string
}

func (f *fakeMedia) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	io.Copy(io.Discard, r)
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	return f.url, nil
}

func (f *fakeMedia) Delete(ctx context.Context, publicID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, publicID)
	return nil
}

type testEnv struct {
	t        *testing.T
	db       database.Database
	router   *chi.Mux
	accounts *services.LocalIdentityProvider
	sessions *services.SessionManager
	media    *fakeMedia
}

func newTestEnv(t *testing.T, cfg map[string]string) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:api_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := gormDB.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := models.Migrate(gormDB); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	db := database.New(gormDB)
	pager, _ := services.NewPager("keyset", db.ArticleRepo())
	accounts := services.NewLocalIdentityProvider(db, "test-secret", time.Hour)
	sessions := services.NewSessionManager(db, nil)
	media := &fakeMedia{url: "https://res.cloudinary.com/demo/image/upload/v1/cover.png"}

	if cfg == nil {
		cfg = map[string]string{}
	}
	router := newRouter(Dependencies{
		Database: db,
		Articles: services.NewArticleService(db, pager, 2),
		Reading:  services.NewReadingService(db),
		Sessions: sessions,
		Identity: accounts,
		Accounts: accounts,
		Media:    media,
	}, withConfig(cfg), withStartupTime(time.Now()))

	return &testEnv{t: t, db: db, router: router, accounts: accounts, sessions: sessions, media: media}
}

// reader registers an account and returns its token
func (e *testEnv) reader(email string) string {
	e.t.Helper()
	_, token, err := e.accounts.SignUp(context.Background(), email, "secret1", "")
	if err != nil {
		e.t.Fatalf("sign up %s: %v", email, err)
	}
	return token
}

// admin registers an account with the admin flag and returns its token
func (e *testEnv) admin() string {
	e.t.Helper()
	identity, token, err := e.accounts.SignUp(context.Background(), "admin@example.com", "secret1", "Rédaction")
	if err != nil {
		e.t.Fatalf("sign up admin: %v", err)
	}
	if err := services.ProvisionAdmin(context.Background(), e.db, e.sessions, identity); err != nil {
		e.t.Fatalf("provision admin: %v", err)
	}
	return token
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			e.t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) upload(method, path, token string, fields map[string]string) *httptest.ResponseRecorder {
	e.t.Helper()
	return e.uploadFile(method, path, token, []byte("\x89PNG"), fields)
}

func (e *testEnv) uploadFile(method, path, token string, data []byte, fields map[string]string) *httptest.ResponseRecorder {
	e.t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, _ := writer.CreateFormFile("file", "cover.png")
	part.Write(data)
	for k, v := range fields {
		writer.WriteField(k, v)
	}
	writer.Close()

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d, body %s", rec.Code, want, rec.Body.String())
	}
}
