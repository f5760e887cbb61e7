package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"markjournal/internal/db"
	"markjournal/internal/i18n"
	"markjournal/internal/journal"
	"markjournal/internal/kv"
	"markjournal/internal/middleware"
)

var testSecret = []byte("test-secret")

type authFixture struct {
	conn   *sqlx.DB
	stores *journal.Stores
	router chi.Router
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	tr, err := i18n.New("en")
	require.NoError(t, err)
	stores := journal.NewStores(kv.NewSQL(conn))

	ah := NewAuthHandler(conn, testSecret, stores, tr, zap.NewNop())
	uh := NewUserHandler(conn, tr)
	jh := NewJournalHandler(stores, tr)
	authMW := middleware.NewAuthMiddleware(testSecret)

	r := chi.NewRouter()
	r.Use(middleware.Language(tr))
	r.Post("/auth/signup", ah.Signup)
	r.Post("/auth/login", ah.Login)
	r.Group(func(pr chi.Router) {
		pr.Use(authMW.RequireAuth)
		pr.Use(middleware.UserLanguage(uh.PreferredLanguage, tr))
		pr.Get("/me", uh.GetMe)
		pr.Patch("/me", uh.UpdateMe)
		pr.Get("/journal/{date}", jh.Get)
	})
	return &authFixture{conn: conn, stores: stores, router: r}
}

func (f *authFixture) do(t *testing.T, method, target, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *authFixture) signup(t *testing.T, email, password string) authResponse {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/auth/signup", `{"email":"`+email+`","password":"`+password+`"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp authResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestSignupAndMe(t *testing.T) {
	f := newAuthFixture(t)
	resp := f.signup(t, " Ada@Example.com ", "s3cret")
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "ada@example.com", resp.User.Email)

	rec := f.do(t, http.MethodGet, "/me", "", resp.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	var me UserDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, resp.User.ID, me.ID)
	assert.Nil(t, me.Language)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestSignupDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.signup(t, "ada@example.com", "s3cret")
	rec := f.do(t, http.MethodPost, "/auth/signup", `{"email":"ada@example.com","password":"other"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignupRequiresCredentials(t *testing.T) {
	f := newAuthFixture(t)
	rec := f.do(t, http.MethodPost, "/auth/signup", `{"email":"ada@example.com"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	f.signup(t, "ada@example.com", "s3cret")

	rec := f.do(t, http.MethodPost, "/auth/login", `{"email":"ada@example.com","password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid credentials")

	rec = f.do(t, http.MethodPost, "/auth/login", `{"email":"nobody@example.com","password":"s3cret"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/auth/login", `{"email":"ada@example.com","password":"s3cret"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginMigratesLegacyNotes(t *testing.T) {
	f := newAuthFixture(t)
	user := f.signup(t, "ada@example.com", "s3cret").User

	legacy := kv.Scope(kv.NewSQL(f.conn), journal.UserScope(user.ID))
	require.NoError(t, legacy.SetItem(context.Background(), journal.LegacyStorageKey, `{"2024-01-01":"old note"}`))

	rec := f.do(t, http.MethodPost, "/auth/login", `{"email":"ada@example.com","password":"s3cret"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp authResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	rec = f.do(t, http.MethodGet, "/journal/2024-01-01", "", resp.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"content":"old note"`)

	_, ok, err := legacy.GetItem(context.Background(), journal.LegacyStorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	f := newAuthFixture(t)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/me", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/me", "", "garbage").Code)
}

func TestUpdateMeLanguage(t *testing.T) {
	f := newAuthFixture(t)
	token := f.signup(t, "ada@example.com", "s3cret").Token

	rec := f.do(t, http.MethodPatch, "/me", `{"language":"IT"}`, token)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/me", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"language":"it"`)

	rec = f.do(t, http.MethodPatch, "/me", `{"language":"klingon"}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPatch, "/me", `{"language":""}`, token)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, http.MethodGet, "/me", "", token)
	assert.NotContains(t, rec.Body.String(), "language")
}

func TestSavedLanguageLocalizesResponses(t *testing.T) {
	f := newAuthFixture(t)
	token := f.signup(t, "ada@example.com", "s3cret").Token

	rec := f.do(t, http.MethodGet, "/journal/not-a-date", "", token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "en", rec.Header().Get("Content-Language"))
	assert.Contains(t, rec.Body.String(), "Invalid date")

	require.Equal(t, http.StatusNoContent, f.do(t, http.MethodPatch, "/me", `{"language":"it"}`, token).Code)

	rec = f.do(t, http.MethodGet, "/journal/not-a-date", "", token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "it", rec.Header().Get("Content-Language"))
	assert.Contains(t, rec.Body.String(), "Data non valida")

	rec = f.do(t, http.MethodGet, "/journal/not-a-date?lang=en", "", token)
	assert.Equal(t, "en", rec.Header().Get("Content-Language"))
	assert.Contains(t, rec.Body.String(), "Invalid date")
}
