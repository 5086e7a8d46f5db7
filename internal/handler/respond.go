package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/wrenfield/hearth/internal/backup"
	"github.com/wrenfield/hearth/internal/form"
	"github.com/wrenfield/hearth/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeFieldErrors rejects invalid input with the per-field messages the
// form script shows inline.
func writeFieldErrors(w http.ResponseWriter, errs form.Errors) {
	writeJSON(w, http.StatusBadRequest, map[string]any{"errors": errs})
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// wantsJSON reports whether the caller is the fetch script or an API client
// rather than a plain browser navigation.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return r.Header.Get("X-Requested-With") == "XMLHttpRequest"
}

// Responder is the single place an error that escaped a handler turns into a
// response. JSON callers get a JSON body, navigations get the error page,
// and the raw driver detail stays in the server log either way.
type Responder struct {
	renderer *Renderer
	logger   *slog.Logger
}

func NewResponder(renderer *Renderer, logger *slog.Logger) *Responder {
	return &Responder{renderer: renderer, logger: logger}
}

func (rp *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	rp.respond(w, r, err, wantsJSON(r))
}

// ErrorJSON is for endpoints that answer in JSON no matter who is asking.
func (rp *Responder) ErrorJSON(w http.ResponseWriter, r *http.Request, err error) {
	rp.respond(w, r, err, true)
}

func (rp *Responder) respond(w http.ResponseWriter, r *http.Request, err error, asJSON bool) {
	status := http.StatusInternalServerError
	message := "Something went wrong"

	var pe *store.PersistenceError
	switch {
	case errors.Is(err, backup.ErrNotConfigured):
		status = http.StatusServiceUnavailable
		message = err.Error()
	case errors.Is(err, backup.ErrNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.As(err, &pe):
		rp.logger.Error("persistence failure",
			"resource", pe.Resource, "op", pe.Op, "error", pe.Unwrap())
		message = pe.Error()
	default:
		rp.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}

	if asJSON {
		writeJSON(w, status, map[string]string{"error": message})
		return
	}
	rp.renderer.ErrorPage(w, r, status, message)
}
