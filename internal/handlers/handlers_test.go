package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"markjournal/internal/analysis"
	"markjournal/internal/i18n"
	"markjournal/internal/journal"
	"markjournal/internal/kv"
	"markjournal/internal/middleware"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	stores *journal.Stores
	mem    *kv.Memory
	router chi.Router
}

type stubAnalyzer struct {
	result analysis.Result
	err    error
	calls  []string
}

func (s *stubAnalyzer) Analyze(_ context.Context, text string) (analysis.Result, error) {
	s.calls = append(s.calls, text)
	return s.result, s.err
}

// asUser plays the part of RequireAuth; a request carrying X-Anonymous gets
// no account.
func asUser(id int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("X-Anonymous") != "" {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(middleware.WithUserID(r.Context(), id)))
		})
	}
}

func newFixture(t *testing.T, analyzer analysis.Analyzer) *fixture {
	t.Helper()
	tr, err := i18n.New("en")
	require.NoError(t, err)

	mem := kv.NewMemory()
	stores := journal.NewStores(mem, journal.WithLocation(time.UTC))
	logger := zap.NewNop()

	jh := NewJournalHandler(stores, tr)
	jh.now = func() time.Time { return fixedNow }
	sh := NewStatsHandler(stores, tr)
	sh.now = func() time.Time { return fixedNow }
	bh := NewBackupHandler(stores, tr, "", logger)
	mh := NewMigrateHandler(stores, tr, logger)
	ah := NewAnalyzeHandler(stores, analyzer, tr, logger)

	r := chi.NewRouter()
	r.Use(middleware.Language(tr))
	r.Group(func(pr chi.Router) {
		pr.Use(asUser(1))
		pr.Get("/journal", jh.List)
		pr.Delete("/journal", jh.DeleteMany)
		pr.Get("/journal/dates", jh.Dates)
		pr.Post("/journal/import", bh.Import)
		pr.Get("/journal/{date}", jh.Get)
		pr.Patch("/journal/{date}", jh.Save)
		pr.Delete("/journal/{date}", jh.Delete)
		pr.Get("/journal/{date}/export", bh.Export)
		pr.Get("/stats", sh.Get)
		pr.Post("/migrate", mh.MigrateData)
		pr.Post("/analyze", ah.Analyze)
	})
	return &fixture{stores: stores, mem: mem, router: r}
}

func (f *fixture) do(t *testing.T, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}
