package store

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

// These tests drive the stores against a mocked driver to reach the failure
// paths an in-memory database never produces.

func TestNoticeListPersistenceError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	driverErr := errors.New("disk I/O error (5) SQLITE_IOERR")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + noticeCols + ` FROM notices ORDER BY id DESC`)).
		WillReturnError(driverErr)

	_, err = NewNoticeStore(db).List()
	if err == nil {
		t.Fatal("expected error")
	}

	var pe *PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %T, want *PersistenceError", err)
	}
	if pe.Resource != "notices" || pe.Op != "list" {
		t.Errorf("resource/op = %q/%q, want notices/list", pe.Resource, pe.Op)
	}
	if strings.Contains(err.Error(), "SQLITE_IOERR") {
		t.Errorf("client-facing message leaks driver detail: %q", err.Error())
	}
	if !errors.Is(err, driverErr) {
		t.Error("driver error should be reachable through Unwrap")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestShoppingTogglePersistenceError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	driverErr := errors.New("database is locked (5) SQLITE_BUSY")
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE shopping_list SET checked = 1 - checked WHERE id = ?`)).
		WithArgs(int64(7)).
		WillReturnError(driverErr)

	_, err = NewShoppingStore(db).ToggleChecked(7)

	var pe *PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %T, want *PersistenceError", err)
	}
	if pe.Op != "toggle" {
		t.Errorf("op = %q, want %q", pe.Op, "toggle")
	}
	if strings.Contains(err.Error(), "SQLITE_BUSY") {
		t.Errorf("client-facing message leaks driver detail: %q", err.Error())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestShoppingDeletePersistenceError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM shopping_list WHERE id = ?`)).
		WithArgs(int64(3)).
		WillReturnError(errors.New("database is locked"))

	err = NewShoppingStore(db).Delete(3)

	var pe *PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %T, want *PersistenceError", err)
	}
	if pe.Resource != "shopping item" || pe.Op != "delete" {
		t.Errorf("resource/op = %q/%q, want shopping item/delete", pe.Resource, pe.Op)
	}
}

// The quantity guard runs before any SQL, so a rejected create must leave the
// driver untouched.
func TestShoppingCreateGuardSkipsDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	_, err = NewShoppingStore(db).Create("Bread", 0, "Aldi")
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("err = %v, want ErrInvalidQuantity", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected driver activity: %v", err)
	}
}
