package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"

	"markjournal/internal/i18n"
	"markjournal/internal/middleware"
	"markjournal/internal/models"
)

type UserHandler struct {
	db *sqlx.DB
	tr *i18n.Translator
}

func NewUserHandler(db *sqlx.DB, tr *i18n.Translator) *UserHandler {
	return &UserHandler{db: db, tr: tr}
}

// PreferredLanguage returns the language saved for userID. It matches
// middleware.PreferenceLookup.
func (h *UserHandler) PreferredLanguage(ctx context.Context, userID int) (string, bool) {
	var lang sql.NullString
	if err := h.db.GetContext(ctx, &lang, h.db.Rebind(`SELECT language FROM users WHERE id=?`), userID); err != nil {
		return "", false
	}
	return lang.String, lang.Valid && lang.String != ""
}

// GetMe returns the current user's profile
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		localizedError(w, r, h.tr, http.StatusUnauthorized, "errors.unauthorized")
		return
	}
	var u models.User
	if err := h.db.GetContext(r.Context(), &u, h.db.Rebind(`SELECT id, email, password_hash, created_at, language FROM users WHERE id=?`), userID); err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, ToUserDTO(u))
}

// UpdateMe stores the preferred interface language. An empty string resets
// it to the server default.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		localizedError(w, r, h.tr, http.StatusUnauthorized, "errors.unauthorized")
		return
	}
	var body struct {
		Language *string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		localizedError(w, r, h.tr, http.StatusBadRequest, "errors.invalidBody")
		return
	}
	if body.Language == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var lang any
	if l := strings.ToLower(strings.TrimSpace(*body.Language)); l != "" {
		if !h.tr.Supports(l) {
			localizedError(w, r, h.tr, http.StatusBadRequest, "errors.invalidBody")
			return
		}
		lang = l
	}
	if _, err := h.db.ExecContext(r.Context(), h.db.Rebind(`UPDATE users SET language=? WHERE id=?`), lang, userID); err != nil {
		http.Error(w, "could not update", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
