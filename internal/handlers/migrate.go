package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"markjournal/internal/i18n"
	"markjournal/internal/journal"
)

type MigrateHandler struct {
	stores *journal.Stores
	tr     *i18n.Translator
	logger *zap.Logger
}

func NewMigrateHandler(stores *journal.Stores, tr *i18n.Translator, logger *zap.Logger) *MigrateHandler {
	return &MigrateHandler{stores: stores, tr: tr, logger: logger}
}

// MigrateRequest carries notes in the legacy format: date-key -> content.
type MigrateRequest struct {
	Notes map[string]string `json:"notes"`
}

// MigrateData merges notes a browser client kept in its local storage into
// the caller's journal. Days already in the journal are kept.
func (h *MigrateHandler) MigrateData(w http.ResponseWriter, r *http.Request) {
	store := userStore(w, r, h.stores, h.tr)
	if store == nil {
		return
	}

	var req MigrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Notes) == 0 {
		localizedError(w, r, h.tr, http.StatusBadRequest, "errors.invalidBody")
		return
	}

	n, err := store.ImportLegacy(r.Context(), req.Notes)
	if err != nil {
		h.logger.Error("legacy import failed", zap.Error(err))
		http.Error(w, "could not migrate", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"migrated": n,
		"message":  message(r, h.tr, "toasts.migrated", map[string]string{"count": strconv.Itoa(n)}),
	})
}
