package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/wrenfield/hearth/internal/backup"
	"github.com/wrenfield/hearth/internal/model"
	"github.com/wrenfield/hearth/internal/store"
)

const backupHistoryLimit = 20

type BackupHandler struct {
	manager   *backup.Manager
	store     *store.BackupStore
	responder *Responder
	logger    *slog.Logger
}

func NewBackupHandler(m *backup.Manager, bs *store.BackupStore, responder *Responder, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{manager: m, store: bs, responder: responder, logger: logger}
}

// Status reports the manager state plus recent history in one payload.
func (h *BackupHandler) Status(w http.ResponseWriter, r *http.Request) {
	history, err := h.store.List(backupHistoryLimit)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	if history == nil {
		history = []model.Backup{}
	}

	count, err := h.store.Count()
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	totalSize, err := h.store.TotalSize()
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"enabled":          h.manager.Enabled(),
		"status":           h.manager.Status(),
		"count":            count,
		"total_size_bytes": totalSize,
		"history":          history,
	})
}

// RunNow triggers a backup outside the schedule and waits for it.
func (h *BackupHandler) RunNow(w http.ResponseWriter, r *http.Request) {
	id, err := h.manager.RunNow(r.Context())
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": id})
}

// Download streams the stored encrypted object. Decryption happens offline
// with the passphrase; the server never writes a decrypted copy.
func (h *BackupHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	body, record, err := h.manager.Download(r.Context(), id)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", record.Filename))
	if record.SizeBytes > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(record.SizeBytes, 10))
	}
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("backup download interrupted", "id", id, "error", err)
	}
}
