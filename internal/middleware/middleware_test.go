package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type staticMatcher struct{}

func (staticMatcher) Match(accept string) string {
	if accept == "it-IT" {
		return "it"
	}
	return "en"
}

func (staticMatcher) Supports(lang string) bool { return lang == "en" || lang == "it" }

func TestLanguage(t *testing.T) {
	var got string
	h := Language(staticMatcher{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = LanguageFrom(r.Context())
	}))

	cases := []struct {
		target, accept, want string
	}{
		{"/", "", "en"},
		{"/", "it-IT", "it"},
		{"/?lang=it", "", "it"},
		{"/?lang=en", "it-IT", "en"},
		{"/?lang=fr", "it-IT", "it"},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodGet, c.target, nil)
		req.Header.Set("Accept-Language", c.accept)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, c.want, got, c.target+" "+c.accept)
		assert.Equal(t, c.want, rec.Header().Get("Content-Language"))
	}
}

func sign(t *testing.T, method jwt.SigningMethod, secret []byte, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(secret)
	require.NoError(t, err)
	return s
}

func TestRequireAuth(t *testing.T) {
	secret := []byte("secret")
	m := NewAuthMiddleware(secret)

	var userID int
	var ok bool
	h := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok = UserID(r.Context())
	}))

	call := func(authz string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if authz != "" {
			req.Header.Set("Authorization", authz)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	token, err := IssueToken(secret, 42, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, call("Bearer "+token))
	assert.True(t, ok)
	assert.Equal(t, 42, userID)

	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))
	valid := jwt.RegisteredClaims{Subject: "42", ID: "abc", ExpiresAt: exp}
	assert.Equal(t, http.StatusOK, call("Bearer "+sign(t, jwt.SigningMethodHS256, secret, valid)))

	expired, err := IssueToken(secret, 42, -time.Hour)
	require.NoError(t, err)

	cases := map[string]string{
		"no header":     "",
		"not bearer":    "Token " + token,
		"wrong secret":  "Bearer " + sign(t, jwt.SigningMethodHS256, []byte("other"), valid),
		"expired":       "Bearer " + expired,
		"no expiry":     "Bearer " + sign(t, jwt.SigningMethodHS256, secret, jwt.RegisteredClaims{Subject: "42", ID: "abc"}),
		"no id":         "Bearer " + sign(t, jwt.SigningMethodHS256, secret, jwt.RegisteredClaims{Subject: "42", ExpiresAt: exp}),
		"no subject":    "Bearer " + sign(t, jwt.SigningMethodHS256, secret, jwt.RegisteredClaims{ID: "abc", ExpiresAt: exp}),
		"text subject":  "Bearer " + sign(t, jwt.SigningMethodHS256, secret, jwt.RegisteredClaims{Subject: "me", ID: "abc", ExpiresAt: exp}),
		"other hmac":    "Bearer " + sign(t, jwt.SigningMethodHS512, secret, valid),
		"legacy claims": "Bearer " + sign(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{"sub": 42, "exp": exp.Unix()}),
	}
	for name, authz := range cases {
		assert.Equal(t, http.StatusUnauthorized, call(authz), name)
	}
}

func TestIssueTokenUsesFreshIDs(t *testing.T) {
	secret := []byte("secret")
	ids := map[string]bool{}
	for i := 0; i < 3; i++ {
		token, err := IssueToken(secret, 7, time.Hour)
		require.NoError(t, err)

		var claims jwt.RegisteredClaims
		_, err = jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) { return secret, nil })
		require.NoError(t, err)
		assert.Equal(t, "7", claims.Subject)
		require.NotNil(t, claims.ExpiresAt)
		assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
		ids[claims.ID] = true
	}
	assert.Len(t, ids, 3)
}

func TestZapRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := ZapRequestLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/boom" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	for _, p := range []string{"/ok", "/boom"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "request completed", entries[0].Message)
	assert.Equal(t, int64(http.StatusNoContent), entries[0].ContextMap()["status"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}

func TestUserLanguage(t *testing.T) {
	saved := map[int]string{1: "it", 2: "fr"}
	lookup := func(_ context.Context, id int) (string, bool) {
		lang, ok := saved[id]
		return lang, ok
	}

	var got string
	h := Language(staticMatcher{})(UserLanguage(lookup, staticMatcher{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = LanguageFrom(r.Context())
	})))

	cases := []struct {
		name   string
		user   int
		target string
		want   string
	}{
		{"anonymous", 0, "/", "en"},
		{"saved preference", 1, "/", "it"},
		{"unsupported preference", 2, "/", "en"},
		{"no preference", 3, "/", "en"},
		{"explicit query", 1, "/?lang=en", "en"},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodGet, c.target, nil)
		if c.user != 0 {
			req = req.WithContext(WithUserID(req.Context(), c.user))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, c.want, got, c.name)
		assert.Equal(t, c.want, rec.Header().Get("Content-Language"), c.name)
	}
}
