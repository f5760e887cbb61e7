package handlers

import (
	"net/http"
	"time"

	"markjournal/internal/i18n"
	"markjournal/internal/journal"
	"markjournal/internal/stats"
)

type StatsHandler struct {
	stores *journal.Stores
	tr     *i18n.Translator
	now    func() time.Time
}

func NewStatsHandler(stores *journal.Stores, tr *i18n.Translator) *StatsHandler {
	return &StatsHandler{stores: stores, tr: tr, now: time.Now}
}

type statsResponse struct {
	Range string `json:"range"`
	stats.Summary
	Empty   bool   `json:"empty"`
	Message string `json:"message,omitempty"`
}

// Get aggregates mood and checklist data for the caller.
// Accepts optional query param: range=last7|last30|last90|last365|all (default last30).
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	store := userStore(w, r, h.stores, h.tr)
	if store == nil {
		return
	}
	rng, err := stats.ParseRange(r.URL.Query().Get("range"))
	if err != nil {
		localizedError(w, r, h.tr, http.StatusBadRequest, "errors.invalidRange")
		return
	}

	from, to := rng.Bounds(h.now().In(store.Location()))
	sum := stats.Compute(store.All(r.Context()), from, to, store.Location())

	resp := statsResponse{Range: string(rng), Summary: sum, Empty: sum.Empty()}
	if resp.Empty {
		resp.Message = message(r, h.tr, "stats.noDataTitle", nil)
	}
	writeJSON(w, http.StatusOK, resp)
}
