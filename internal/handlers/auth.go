package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"markjournal/internal/i18n"
	"markjournal/internal/journal"
	"markjournal/internal/middleware"
	"markjournal/internal/models"
)

const tokenTTL = 24 * time.Hour

type AuthHandler struct {
	db        *sqlx.DB
	jwtSecret []byte
	stores    *journal.Stores
	tr        *i18n.Translator
	logger    *zap.Logger
}

func NewAuthHandler(db *sqlx.DB, jwtSecret []byte, stores *journal.Stores, tr *i18n.Translator, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{db: db, jwtSecret: jwtSecret, stores: stores, tr: tr, logger: logger}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

func decodeCredentials(r *http.Request) (credentials, bool) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		return c, false
	}
	c.Email = strings.TrimSpace(strings.ToLower(c.Email))
	return c, c.Email != "" && c.Password != ""
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	c, ok := decodeCredentials(r)
	if !ok {
		localizedError(w, r, h.tr, http.StatusBadRequest, "errors.invalidBody")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(c.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "could not hash password", http.StatusInternalServerError)
		return
	}

	var user models.User
	query := h.db.Rebind(`INSERT INTO users (email, password_hash, created_at) VALUES (?, ?, ?) RETURNING id, email, password_hash, created_at, language`)
	err = h.db.QueryRowxContext(r.Context(), query, c.Email, string(hashed), time.Now().UTC()).StructScan(&user)
	if err != nil {
		h.logger.Info("signup rejected", zap.String("email", c.Email), zap.Error(err))
		http.Error(w, "could not create user", http.StatusBadRequest)
		return
	}

	h.respondWithToken(w, http.StatusCreated, user)
}

// Login checks the credentials and moves any legacy notes in the account's
// collection to the current format before handing out a token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	c, ok := decodeCredentials(r)
	if !ok {
		localizedError(w, r, h.tr, http.StatusBadRequest, "errors.invalidBody")
		return
	}

	var user models.User
	err := h.db.GetContext(r.Context(), &user, h.db.Rebind(`SELECT id, email, password_hash, created_at, language FROM users WHERE email=?`), c.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			localizedError(w, r, h.tr, http.StatusUnauthorized, "errors.invalidCredentials")
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(c.Password)) != nil {
		localizedError(w, r, h.tr, http.StatusUnauthorized, "errors.invalidCredentials")
		return
	}

	if n, err := h.stores.ForUser(user.ID).Migrate(r.Context()); err != nil {
		h.logger.Error("legacy migration failed", zap.Int("user_id", user.ID), zap.Error(err))
	} else if n > 0 {
		h.logger.Info("legacy notes migrated at login", zap.Int("user_id", user.ID), zap.Int("count", n))
	}

	h.respondWithToken(w, http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, status int, user models.User) {
	token, err := middleware.IssueToken(h.jwtSecret, user.ID, tokenTTL)
	if err != nil {
		http.Error(w, "could not issue token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, status, authResponse{Token: token, User: ToUserDTO(user)})
}
