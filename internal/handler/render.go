package handler

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/wrenfield/hearth/internal/middleware"
)

// Pages rendered inside layout.html. Each page is parsed into its own set so
// their {{define "content"}} blocks do not collide.
var pageFiles = []string{"notices.html", "shopping.html", "calendar.html", "error.html"}

// Renderer owns the parsed template sets shared by every page handler.
type Renderer struct {
	templates map[string]*template.Template
	logger    *slog.Logger
}

// NewRenderer parses layout.html plus each page under dir. A missing or
// broken template is a startup failure, not something to limp past.
func NewRenderer(dir string, logger *slog.Logger) *Renderer {
	templates := make(map[string]*template.Template, len(pageFiles))
	for _, page := range pageFiles {
		templates[page] = template.Must(template.ParseFiles(dir+"/layout.html", dir+"/"+page))
	}
	return &Renderer{templates: templates, logger: logger}
}

// Render executes the page inside the layout. The CSRF token from the
// request context is available to every template as .CSRFToken.
func (rn *Renderer) Render(w http.ResponseWriter, r *http.Request, page string, data map[string]any) {
	rn.renderStatus(w, r, http.StatusOK, page, data)
}

// ErrorPage renders the shared error page with the given status.
func (rn *Renderer) ErrorPage(w http.ResponseWriter, r *http.Request, status int, message string) {
	rn.renderStatus(w, r, status, "error.html", map[string]any{
		"Title":   "Something went wrong — Hearth",
		"Active":  "",
		"Status":  status,
		"Message": message,
	})
}

func (rn *Renderer) renderStatus(w http.ResponseWriter, r *http.Request, status int, page string, data map[string]any) {
	tmpl, ok := rn.templates[page]
	if !ok {
		rn.logger.Error("template not found", "name", page)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = map[string]any{}
	}
	data["CSRFToken"] = middleware.CSRFToken(r.Context())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := tmpl.ExecuteTemplate(w, "layout.html", data); err != nil {
		rn.logger.Error("template render", "name", page, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}
