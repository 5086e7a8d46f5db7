package handler

import "net/http"

// PageHandler serves the pages that have no resource behind them.
type PageHandler struct {
	renderer *Renderer
}

func NewPageHandler(renderer *Renderer) *PageHandler {
	return &PageHandler{renderer: renderer}
}

// Home sends visitors to the notice board.
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/notices", http.StatusFound)
}

// Calendar renders the placeholder page. There is no event storage behind it
// yet; the page only keeps the navigation honest.
func (h *PageHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, "calendar.html", map[string]any{
		"Title":  "Calendar — Hearth",
		"Active": "calendar",
	})
}
