package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"markjournal/internal/analysis"
	"markjournal/internal/i18n"
	"markjournal/internal/journal"
	"markjournal/internal/models"
)

type AnalyzeHandler struct {
	stores   *journal.Stores
	analyzer analysis.Analyzer
	tr       *i18n.Translator
	logger   *zap.Logger
}

// NewAnalyzeHandler accepts a nil analyzer; requests then get 503.
func NewAnalyzeHandler(stores *journal.Stores, analyzer analysis.Analyzer, tr *i18n.Translator, logger *zap.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{stores: stores, analyzer: analyzer, tr: tr, logger: logger}
}

type analyzeRequest struct {
	Content *string `json:"content"`
	Date    string  `json:"date"`
}

// Analyze reports the emotional tone of the supplied content, or of the
// stored entry for date when no content is given.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	store := userStore(w, r, h.stores, h.tr)
	if store == nil {
		return
	}
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		localizedError(w, r, h.tr, http.StatusBadRequest, "errors.invalidBody")
		return
	}

	var text string
	switch {
	case req.Content != nil:
		text = *req.Content
	case req.Date != "":
		d, err := models.ParseDateKey(req.Date, store.Location())
		if err != nil {
			localizedError(w, r, h.tr, http.StatusBadRequest, "errors.invalidDate")
			return
		}
		text = store.Entry(r.Context(), d).Content
	}
	if strings.TrimSpace(text) == "" {
		localizedError(w, r, h.tr, http.StatusBadRequest, "analysis.cannotAnalyzeDesc")
		return
	}
	if h.analyzer == nil {
		localizedError(w, r, h.tr, http.StatusServiceUnavailable, "analysis.unavailable")
		return
	}

	res, err := h.analyzer.Analyze(r.Context(), text)
	if errors.Is(err, analysis.ErrEmptyContent) {
		localizedError(w, r, h.tr, http.StatusBadRequest, "analysis.cannotAnalyzeDesc")
		return
	}
	if err != nil {
		h.logger.Warn("tone analysis failed", zap.Error(err))
		localizedError(w, r, h.tr, http.StatusBadGateway, "analysis.error")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
