package handlers

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"markjournal/internal/i18n"
	"markjournal/internal/journal"
	"markjournal/internal/models"
)

type JournalHandler struct {
	stores *journal.Stores
	tr     *i18n.Translator
	now    func() time.Time
}

func NewJournalHandler(stores *journal.Stores, tr *i18n.Translator) *JournalHandler {
	return &JournalHandler{stores: stores, tr: tr, now: time.Now}
}

// Get returns the entry for {date}; days without data return the empty entry.
func (h *JournalHandler) Get(w http.ResponseWriter, r *http.Request) {
	store := userStore(w, r, h.stores, h.tr)
	if store == nil {
		return
	}
	d, key, ok := pathDate(r, store)
	if !ok {
		localizedError(w, r, h.tr, http.StatusBadRequest, "errors.invalidDate")
		return
	}
	writeJSON(w, http.StatusOK, ToEntryDTO(key, store.Entry(r.Context(), d)))
}

// Save merges the supplied fields onto {date}. Only keys present in the body
// are changed; a null mood clears it. The merged entry is returned.
func (h *JournalHandler) Save(w http.ResponseWriter, r *http.Request) {
	store := userStore(w, r, h.stores, h.tr)
	if store == nil {
		return
	}
	d, key, ok := pathDate(r, store)
	if !ok {
		localizedError(w, r, h.tr, http.StatusBadRequest, "errors.invalidDate")
		return
	}
	var patch models.EntryPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		localizedError(w, r, h.tr, http.StatusBadRequest, "errors.invalidBody")
		return
	}

	store.Save(r.Context(), d, patch)
	writeJSON(w, http.StatusOK, ToEntryDTO(key, store.Entry(r.Context(), d)))
}

// Delete removes {date}. Deleting a day without data still succeeds.
func (h *JournalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	store := userStore(w, r, h.stores, h.tr)
	if store == nil {
		return
	}
	d, _, ok := pathDate(r, store)
	if !ok {
		localizedError(w, r, h.tr, http.StatusBadRequest, "errors.invalidDate")
		return
	}
	store.Delete(r.Context(), d)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteMany removes a range of days. Accepts either start_date and end_date
// (YYYY-MM-DD, inclusive) or range=last7days|last30days|lastYear|all.
func (h *JournalHandler) DeleteMany(w http.ResponseWriter, r *http.Request) {
	store := userStore(w, r, h.stores, h.tr)
	if store == nil {
		return
	}
	q := r.URL.Query()
	ctx := r.Context()

	var removed int
	if preset := q.Get("range"); preset != "" {
		n, err := store.DeletePreset(ctx, preset, h.now())
		if err != nil {
			localizedError(w, r, h.tr, http.StatusBadRequest, "errors.invalidRange")
			return
		}
		removed = n
	} else {
		start, err := models.ParseDateKey(q.Get("start_date"), store.Location())
		if err != nil {
			localizedError(w, r, h.tr, http.StatusBadRequest, "errors.invalidDate")
			return
		}
		end, err := models.ParseDateKey(q.Get("end_date"), store.Location())
		if err != nil {
			localizedError(w, r, h.tr, http.StatusBadRequest, "errors.invalidDate")
			return
		}
		removed = store.DeleteRange(ctx, start, end)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"removed": removed,
		"message": message(r, h.tr, "toasts.notesDeletedDesc", nil),
	})
}

// Dates lists the days holding an entry, ascending, for calendar markers.
func (h *JournalHandler) Dates(w http.ResponseWriter, r *http.Request) {
	store := userStore(w, r, h.stores, h.tr)
	if store == nil {
		return
	}
	dates := store.Dates(r.Context())
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, models.DateKey(d))
	}
	writeJSON(w, http.StatusOK, out)
}

// List returns every stored entry ordered by day.
func (h *JournalHandler) List(w http.ResponseWriter, r *http.Request) {
	store := userStore(w, r, h.stores, h.tr)
	if store == nil {
		return
	}
	all := store.All(r.Context())
	out := make([]EntryDTO, 0, len(all))
	for key, e := range all {
		out = append(out, ToEntryDTO(key, e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	writeJSON(w, http.StatusOK, out)
}
