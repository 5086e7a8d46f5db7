package handler

import (
	"log/slog"
	"net/http"

	"github.com/wrenfield/hearth/internal/form"
	"github.com/wrenfield/hearth/internal/live"
	"github.com/wrenfield/hearth/internal/store"
)

type NoticeHandler struct {
	store     *store.NoticeStore
	hub       *live.Hub
	renderer  *Renderer
	responder *Responder
	logger    *slog.Logger
}

func NewNoticeHandler(ns *store.NoticeStore, hub *live.Hub, renderer *Renderer, responder *Responder, logger *slog.Logger) *NoticeHandler {
	return &NoticeHandler{store: ns, hub: hub, renderer: renderer, responder: responder, logger: logger}
}

func (h *NoticeHandler) Page(w http.ResponseWriter, r *http.Request) {
	notices, err := h.store.List()
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	h.renderer.Render(w, r, "notices.html", map[string]any{
		"Title":   "Notices — Hearth",
		"Active":  "notices",
		"Notices": notices,
	})
}

// Create handles the notice form. Invalid fields come back as 400 with
// per-field messages and never reach the store.
func (h *NoticeHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form data"})
		return
	}

	f := form.New(r.PostForm)
	name := f.Text("name")
	message := f.Text("message")
	if !f.Valid() {
		writeFieldErrors(w, f.Errors())
		return
	}

	notice, err := h.store.Create(name, message)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	h.hub.Broadcast(live.NewEvent(live.EntityNotice, live.ActionCreated, notice.ID))
	http.Redirect(w, r, "/notices", http.StatusSeeOther)
}

func (h *NoticeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form data"})
		return
	}

	f := form.New(r.PostForm)
	id := f.ID("id")
	if !f.Valid() {
		writeFieldErrors(w, f.Errors())
		return
	}

	if err := h.store.Delete(id); err != nil {
		h.responder.Error(w, r, err)
		return
	}

	h.hub.Broadcast(live.NewEvent(live.EntityNotice, live.ActionDeleted, id))
	http.Redirect(w, r, "/notices", http.StatusSeeOther)
}
