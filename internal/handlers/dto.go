package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"markjournal/internal/i18n"
	"markjournal/internal/journal"
	"markjournal/internal/middleware"
	"markjournal/internal/models"
)

// EntryDTO is an entry as the API returns it: checklist is always an array
// and the day is included.
type EntryDTO struct {
	Date      string            `json:"date"`
	Content   string            `json:"content"`
	Mood      *models.Mood      `json:"mood"`
	Checklist []models.Activity `json:"checklist"`
}

func ToEntryDTO(key string, e models.Entry) EntryDTO {
	dto := EntryDTO{Date: key, Content: e.Content, Checklist: e.Checklist}
	if e.Mood != "" {
		m := e.Mood
		dto.Mood = &m
	}
	if dto.Checklist == nil {
		dto.Checklist = []models.Activity{}
	}
	return dto
}

// UserDTO renders created_at as RFC 3339.
type UserDTO struct {
	ID        int     `json:"id"`
	Email     string  `json:"email"`
	CreatedAt string  `json:"created_at"`
	Language  *string `json:"language,omitempty"`
}

func ToUserDTO(u models.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
		Language:  u.Language,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// localizedError writes a plain-text error in the request's language.
func localizedError(w http.ResponseWriter, r *http.Request, tr *i18n.Translator, status int, key string) {
	http.Error(w, tr.T(middleware.LanguageFrom(r.Context()), key, nil), status)
}

func message(r *http.Request, tr *i18n.Translator, key string, repl map[string]string) string {
	return tr.T(middleware.LanguageFrom(r.Context()), key, repl)
}

// userStore returns the caller's collection, or writes 401 and returns nil.
func userStore(w http.ResponseWriter, r *http.Request, stores *journal.Stores, tr *i18n.Translator) *journal.Store {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		localizedError(w, r, tr, http.StatusUnauthorized, "errors.unauthorized")
		return nil
	}
	return stores.ForUser(userID)
}

// pathDate parses the {date} URL parameter as a day of store's calendar.
func pathDate(r *http.Request, store *journal.Store) (time.Time, string, bool) {
	key := chi.URLParam(r, "date")
	d, err := models.ParseDateKey(key, store.Location())
	if err != nil {
		return time.Time{}, key, false
	}
	return d, key, true
}
