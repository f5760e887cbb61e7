package middleware

import (
	"context"
	"net/http"
)

// LanguageMatcher picks a supported language for an Accept-Language header.
type LanguageMatcher interface {
	Match(acceptLanguage string) string
	Supports(lang string) bool
}

// Language resolves the response language once per request. A ?lang= query
// parameter naming a supported language wins over Accept-Language.
func Language(m LanguageMatcher) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := r.URL.Query().Get("lang")
			if !m.Supports(lang) {
				lang = m.Match(r.Header.Get("Accept-Language"))
			}
			w.Header().Set("Content-Language", lang)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), languageKey, lang)))
		})
	}
}

// LanguageFrom returns the language chosen by Language, or "" if it did not run.
func LanguageFrom(ctx context.Context) string {
	lang, _ := ctx.Value(languageKey).(string)
	return lang
}

// PreferenceLookup returns the language an account has saved, if any.
type PreferenceLookup func(ctx context.Context, userID int) (string, bool)

// UserLanguage runs after RequireAuth and Language. A saved preference for the
// authenticated account replaces the Accept-Language choice; an explicit
// ?lang= still wins.
func UserLanguage(lookup PreferenceLookup, m LanguageMatcher) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := UserID(r.Context())
			if !ok || m.Supports(r.URL.Query().Get("lang")) {
				next.ServeHTTP(w, r)
				return
			}
			lang, ok := lookup(r.Context(), id)
			if !ok || !m.Supports(lang) {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Content-Language", lang)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), languageKey, lang)))
		})
	}
}
