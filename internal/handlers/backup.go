package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"markjournal/internal/backup"
	"markjournal/internal/i18n"
	"markjournal/internal/journal"
	"markjournal/internal/models"
)

// maxImportSize bounds an uploaded note.
const maxImportSize = 5 << 20

type BackupHandler struct {
	stores     *journal.Stores
	tr         *i18n.Translator
	dateFormat string
	logger     *zap.Logger
}

func NewBackupHandler(stores *journal.Stores, tr *i18n.Translator, dateFormat string, logger *zap.Logger) *BackupHandler {
	if dateFormat == "" {
		dateFormat = backup.DefaultFormat
	}
	return &BackupHandler{stores: stores, tr: tr, dateFormat: dateFormat, logger: logger}
}

// Export downloads {date}'s content as <dd-MM-yyyy>.md.
func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	store := userStore(w, r, h.stores, h.tr)
	if store == nil {
		return
	}
	d, _, ok := pathDate(r, store)
	if !ok {
		localizedError(w, r, h.tr, http.StatusBadRequest, "errors.invalidDate")
		return
	}
	filename, content := backup.Export(d, store.Entry(r.Context(), d))

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, content)
}

type importRequest struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
	Format   string `json:"format"`
}

// Import restores a note from a multipart "file" upload or a JSON body
// {filename, content, format}. The day comes from the file name.
func (h *BackupHandler) Import(w http.ResponseWriter, r *http.Request) {
	store := userStore(w, r, h.stores, h.tr)
	if store == nil {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)

	req, err := h.readImport(r)
	if err != nil {
		localizedError(w, r, h.tr, http.StatusBadRequest, "errors.invalidBody")
		return
	}
	if req.Format == "" {
		req.Format = h.dateFormat
	}

	date, err := backup.Import(r.Context(), store, req.Filename, req.Content, req.Format)
	if errors.Is(err, backup.ErrInvalidFilename) {
		h.logger.Info("import rejected", zap.String("filename", req.Filename), zap.Error(err))
		http.Error(w, message(r, h.tr, "toasts.importFailedDesc", nil), http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		http.Error(w, "could not import", http.StatusInternalServerError)
		return
	}

	key := models.DateKey(date)
	writeJSON(w, http.StatusCreated, map[string]any{
		"date":    key,
		"entry":   ToEntryDTO(key, store.Entry(r.Context(), date)),
		"message": message(r, h.tr, "toasts.importSuccessDesc", map[string]string{"date": key}),
	})
}

func (h *BackupHandler) readImport(r *http.Request) (importRequest, error) {
	var req importRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if !strings.HasPrefix(mediaType, "multipart/") {
		err := json.NewDecoder(r.Body).Decode(&req)
		return req, err
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return req, err
	}
	defer file.Close()
	b, err := io.ReadAll(file)
	if err != nil {
		return req, err
	}
	req.Filename = header.Filename
	req.Content = string(b)
	req.Format = r.FormValue("format")
	return req, nil
}
