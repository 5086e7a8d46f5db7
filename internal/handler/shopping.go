package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/wrenfield/hearth/internal/form"
	"github.com/wrenfield/hearth/internal/live"
	"github.com/wrenfield/hearth/internal/store"
)

type ShoppingHandler struct {
	store     *store.ShoppingStore
	hub       *live.Hub
	renderer  *Renderer
	responder *Responder
	logger    *slog.Logger
}

func NewShoppingHandler(ss *store.ShoppingStore, hub *live.Hub, renderer *Renderer, responder *Responder, logger *slog.Logger) *ShoppingHandler {
	return &ShoppingHandler{store: ss, hub: hub, renderer: renderer, responder: responder, logger: logger}
}

func (h *ShoppingHandler) Page(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.List()
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	remaining, err := h.store.CountUnchecked()
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	h.renderer.Render(w, r, "shopping.html", map[string]any{
		"Title":     "Shopping list — Hearth",
		"Active":    "shopping",
		"Items":     items,
		"Remaining": remaining,
	})
}

func (h *ShoppingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form data"})
		return
	}

	f := form.New(r.PostForm)
	name := f.Text("item")
	quantity := f.PositiveInt("quantity")
	storeName := f.Text("store")
	if !f.Valid() {
		writeFieldErrors(w, f.Errors())
		return
	}

	item, err := h.store.Create(name, quantity, storeName)
	if errors.Is(err, store.ErrInvalidQuantity) {
		writeFieldErrors(w, form.Errors{{Field: "quantity", Message: err.Error()}})
		return
	}
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	h.hub.Broadcast(live.NewEvent(live.EntityShopping, live.ActionCreated, item.ID))
	http.Redirect(w, r, "/shopping-list", http.StatusSeeOther)
}

func (h *ShoppingHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	h.hub.Broadcast(live.NewEvent(live.EntityShopping, live.ActionDeleted, id))
	http.Redirect(w, r, "/shopping-list", http.StatusSeeOther)
}

// ToggleChecked flips an item's checked state. Unlike the other actions this
// always answers in JSON; the checkbox script reverts its optimistic state on
// anything but a 200. Toggling an id that no longer exists succeeds without
// an event, matching the store's no-op contract.
func (h *ShoppingHandler) ToggleChecked(w http.ResponseWriter, r *http.Request) {
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

	item, err := h.store.ToggleChecked(id)
	if err != nil {
		h.responder.ErrorJSON(w, r, err)
		return
	}

	if item != nil {
		h.hub.Broadcast(live.NewEvent(live.EntityShopping, live.ActionChecked, item.ID))
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
