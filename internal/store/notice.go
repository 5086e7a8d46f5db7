package store

import (
	"database/sql"

	"github.com/wrenfield/hearth/internal/model"
)

type NoticeStore struct {
	db *sql.DB
}

func NewNoticeStore(db *sql.DB) *NoticeStore {
	return &NoticeStore{db: db}
}

func scanNotice(scanner interface{ Scan(...any) error }) (*model.Notice, error) {
	var n model.Notice
	err := scanner.Scan(&n.ID, &n.Name, &n.Message, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

const noticeCols = `id, name, message, created_at`

func (s *NoticeStore) Create(name, message string) (*model.Notice, error) {
	result, err := s.db.Exec(
		`INSERT INTO notices (name, message) VALUES (?, ?)`,
		name, message,
	)
	if err != nil {
		return nil, &PersistenceError{Resource: "notice", Op: "create", Err: err}
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, &PersistenceError{Resource: "notice", Op: "create", Err: err}
	}
	return s.GetByID(id)
}

func (s *NoticeStore) GetByID(id int64) (*model.Notice, error) {
	row := s.db.QueryRow(`SELECT `+noticeCols+` FROM notices WHERE id = ?`, id)
	n, err := scanNotice(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &PersistenceError{Resource: "notice", Op: "get", Err: err}
	}
	return n, nil
}

// List returns all notices newest first. Ids never recycle, so descending id
// is creation order even when rows share a created_at second.
func (s *NoticeStore) List() ([]model.Notice, error) {
	rows, err := s.db.Query(`SELECT ` + noticeCols + ` FROM notices ORDER BY id DESC`)
	if err != nil {
		return nil, &PersistenceError{Resource: "notices", Op: "list", Err: err}
	}
	defer rows.Close()

	var notices []model.Notice
	for rows.Next() {
		n, err := scanNotice(rows)
		if err != nil {
			return nil, &PersistenceError{Resource: "notices", Op: "list", Err: err}
		}
		notices = append(notices, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Resource: "notices", Op: "list", Err: err}
	}
	return notices, nil
}

// Delete removes a notice. Deleting an id that no longer exists is a no-op,
// not an error, so stale delete buttons stay harmless.
func (s *NoticeStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM notices WHERE id = ?`, id)
	if err != nil {
		return &PersistenceError{Resource: "notice", Op: "delete", Err: err}
	}
	return nil
}
