package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"markjournal/internal/config"
	"markjournal/internal/db"
	"markjournal/internal/i18n"
	"markjournal/internal/journal"
	"markjournal/internal/kv"
)

func newTestServer(t *testing.T) (*sqlx.DB, *journal.Stores, *httptest.Server) {
	t.Helper()
	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	cfg := config.Default()
	cfg.JWTSecret = "test-secret"
	cfg.DefaultLanguage = "en"

	tr, err := i18n.New(cfg.DefaultLanguage)
	require.NoError(t, err)
	stores := journal.NewStores(kv.NewSQL(conn), journal.WithLocation(cfg.Location()))

	srv := httptest.NewServer(newRouter(cfg, conn, stores, tr, nil, zap.NewNop()))
	t.Cleanup(srv.Close)
	return conn, stores, srv
}

func call(t *testing.T, srv *httptest.Server, method, path, body, token string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(raw)
}

func TestRouterServesAPI(t *testing.T) {
	_, _, srv := newTestServer(t)

	resp, body := call(t, srv, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body)

	resp, _ = call(t, srv, http.MethodGet, "/api/journal/2024-01-01", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = call(t, srv, http.MethodPost, "/api/auth/signup", `{"email":"ada@example.com","password":"s3cret"}`, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	var auth struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &auth))

	resp, body = call(t, srv, http.MethodPut, "/api/journal/2024-01-01", `{"content":"hello"}`, auth.Token)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Contains(t, body, `"content":"hello"`)

	resp, body = call(t, srv, http.MethodGet, "/api/journal/dates", "", auth.Token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `["2024-01-01"]`, body)

	resp, _ = call(t, srv, http.MethodPatch, "/api/me", `{"language":"it"}`, auth.Token)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, body = call(t, srv, http.MethodGet, "/api/journal/nope", "", auth.Token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "it", resp.Header.Get("Content-Language"))
	assert.Contains(t, body, "Data non valida")
}

func TestMigrateAll(t *testing.T) {
	conn, stores, srv := newTestServer(t)
	ctx := context.Background()

	resp, body := call(t, srv, http.MethodPost, "/api/auth/signup", `{"email":"ada@example.com","password":"s3cret"}`, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	var id int
	require.NoError(t, conn.GetContext(ctx, &id, `SELECT id FROM users WHERE email='ada@example.com'`))

	store := kv.NewSQL(conn)
	require.NoError(t, kv.Scope(store, journal.LocalScope).SetItem(ctx, journal.LegacyStorageKey, `{"2024-01-01":"local"}`))
	require.NoError(t, kv.Scope(store, journal.UserScope(id)).SetItem(ctx, journal.LegacyStorageKey, `{"2024-01-02":"account"}`))

	migrateAll(ctx, conn, stores, zap.NewNop())

	assert.Equal(t, []string{"2024-01-01"}, keys(stores.For(journal.LocalScope).All(ctx)))
	assert.Equal(t, []string{"2024-01-02"}, keys(stores.ForUser(id).All(ctx)))
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
