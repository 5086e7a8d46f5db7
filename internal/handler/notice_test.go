package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wrenfield/hearth/internal/store"
)

func newNoticeHandler(t *testing.T) (*NoticeHandler, *store.NoticeStore) {
	t.Helper()
	db, hub, renderer, responder := testDeps(t)
	ns := store.NewNoticeStore(db)
	return NewNoticeHandler(ns, hub, renderer, responder, discardLogger()), ns
}

func TestNoticeCreateRedirects(t *testing.T) {
	h, ns := newNoticeHandler(t)

	rec := postForm(h.Create, "/notices/add", url.Values{
		"name":    {"Alice"},
		"message": {"Milk is out"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/notices", rec.Header().Get("Location"))

	notices, err := ns.List()
	require.NoError(t, err)
	require.Len(t, notices, 1)
	require.Equal(t, "Alice", notices[0].Name)
	require.Equal(t, "Milk is out", notices[0].Message)
}

func TestNoticeCreateRejectsEmptyFields(t *testing.T) {
	h, ns := newNoticeHandler(t)

	rec := postForm(h.Create, "/notices/add", url.Values{
		"name":    {"   "},
		"message": {""},
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Body.String(), "name is required")
	require.Contains(t, rec.Body.String(), "message is required")

	notices, err := ns.List()
	require.NoError(t, err)
	require.Empty(t, notices, "rejected input must not reach the store")
}

func TestNoticeCreateTrimsInput(t *testing.T) {
	h, ns := newNoticeHandler(t)

	rec := postForm(h.Create, "/notices/add", url.Values{
		"name":    {"  Alice  "},
		"message": {"Milk is out\r\nButter too"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)

	notices, err := ns.List()
	require.NoError(t, err)
	require.Len(t, notices, 1)
	require.Equal(t, "Alice", notices[0].Name)
	require.Equal(t, "Milk is out\nButter too", notices[0].Message)
}

func TestNoticeDeleteRedirects(t *testing.T) {
	h, ns := newNoticeHandler(t)
	n, err := ns.Create("Alice", "short-lived")
	require.NoError(t, err)

	rec := postForm(h.Delete, "/notices/delete", url.Values{
		"id": {strconv.FormatInt(n.ID, 10)},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/notices", rec.Header().Get("Location"))

	got, err := ns.GetByID(n.ID)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestNoticeDeleteRejectsBadID(t *testing.T) {
	h, ns := newNoticeHandler(t)
	n, err := ns.Create("Alice", "keep me")
	require.NoError(t, err)

	rec := postForm(h.Delete, "/notices/delete", url.Values{"id": {"abc"}})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "id must be a valid id")

	got, err := ns.GetByID(n.ID)
	require.NoError(t, err)
	require.NotNil(t, got, "bad id must not delete anything")
}

func TestNoticePageListsNewestFirst(t *testing.T) {
	h, ns := newNoticeHandler(t)
	_, err := ns.Create("Alice", "older notice")
	require.NoError(t, err)
	_, err = ns.Create("Ben", "newer notice")
	require.NoError(t, err)

	rec := getPage(h.Page, "/notices")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	require.Contains(t, body, "older notice")
	require.Contains(t, body, "newer notice")
	require.Less(t, strings.Index(body, "newer notice"), strings.Index(body, "older notice"))
}

func TestNoticePagePersistenceError(t *testing.T) {
	db, hub, renderer, responder := testDeps(t)
	h := NewNoticeHandler(store.NewNoticeStore(db), hub, renderer, responder, discardLogger())
	db.Close()

	// Plain navigation gets the error page.
	rec := getPage(h.Page, "/notices")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.Contains(t, rec.Body.String(), "could not list notices")

	// The fetch script gets JSON with the same sanitized message.
	req := httptest.NewRequest(http.MethodGet, "/notices", nil)
	req.Header.Set("Accept", "application/json")
	rec = httptest.NewRecorder()
	h.Page(rec, req)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"could not list notices"}`, rec.Body.String())
}
