package handler

import (
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/wrenfield/hearth/internal/database"
	"github.com/wrenfield/hearth/internal/live"
)

const testTemplatesDir = "../../web/templates"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testDeps opens an isolated database and builds the pieces every handler
// shares.
func testDeps(t *testing.T) (*sql.DB, *live.Hub, *Renderer, *Responder) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := discardLogger()
	renderer := NewRenderer(testTemplatesDir, logger)
	return db, live.NewHub(logger), renderer, NewResponder(renderer, logger)
}

func postForm(h http.HandlerFunc, target string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func getPage(h http.HandlerFunc, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}
