package store

import (
	"database/sql"
	"time"

	"github.com/wrenfield/hearth/internal/model"
)

type BackupStore struct {
	db *sql.DB
}

func NewBackupStore(db *sql.DB) *BackupStore {
	return &BackupStore{db: db}
}

func scanBackup(scanner interface{ Scan(...any) error }) (*model.Backup, error) {
	var b model.Backup
	var startedAt, completedAt sql.NullTime

	err := scanner.Scan(
		&b.ID, &b.Filename, &b.S3Key, &b.SizeBytes, &b.Status,
		&b.ErrorMessage, &startedAt, &completedAt, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if startedAt.Valid {
		b.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		b.CompletedAt = &completedAt.Time
	}
	return &b, nil
}

const backupCols = `id, filename, s3_key, size_bytes, status, error_message, started_at, completed_at, created_at`

func (s *BackupStore) Create(filename, s3Key string) (*model.Backup, error) {
	now := time.Now().UTC()
	result, err := s.db.Exec(
		`INSERT INTO backups (filename, s3_key, status, started_at) VALUES (?, ?, ?, ?)`,
		filename, s3Key, model.BackupStatusPending, now,
	)
	if err != nil {
		return nil, &PersistenceError{Resource: "backup", Op: "create", Err: err}
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, &PersistenceError{Resource: "backup", Op: "create", Err: err}
	}
	return s.GetByID(id)
}

func (s *BackupStore) GetByID(id int64) (*model.Backup, error) {
	row := s.db.QueryRow(`SELECT `+backupCols+` FROM backups WHERE id = ?`, id)
	b, err := scanBackup(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &PersistenceError{Resource: "backup", Op: "get", Err: err}
	}
	return b, nil
}

func (s *BackupStore) List(limit int) ([]model.Backup, error) {
	rows, err := s.db.Query(`SELECT `+backupCols+` FROM backups ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, &PersistenceError{Resource: "backups", Op: "list", Err: err}
	}
	defer rows.Close()

	var backups []model.Backup
	for rows.Next() {
		b, err := scanBackup(rows)
		if err != nil {
			return nil, &PersistenceError{Resource: "backups", Op: "list", Err: err}
		}
		backups = append(backups, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Resource: "backups", Op: "list", Err: err}
	}
	return backups, nil
}

func (s *BackupStore) UpdateStatus(id int64, status model.BackupStatus, errorMsg string) error {
	_, err := s.db.Exec(
		`UPDATE backups SET status = ?, error_message = ? WHERE id = ?`,
		status, errorMsg, id,
	)
	if err != nil {
		return &PersistenceError{Resource: "backup", Op: "update", Err: err}
	}
	return nil
}

func (s *BackupStore) UpdateCompleted(id, sizeBytes int64) error {
	_, err := s.db.Exec(
		`UPDATE backups SET status = ?, size_bytes = ?, completed_at = ? WHERE id = ?`,
		model.BackupStatusCompleted, sizeBytes, time.Now().UTC(), id,
	)
	if err != nil {
		return &PersistenceError{Resource: "backup", Op: "update", Err: err}
	}
	return nil
}

// DeleteOlderThan removes backup records created before the cutoff and
// returns their object keys so the caller can delete the uploads too.
func (s *BackupStore) DeleteOlderThan(before time.Time) ([]string, error) {
	rows, err := s.db.Query(`SELECT s3_key FROM backups WHERE created_at < ?`, before)
	if err != nil {
		return nil, &PersistenceError{Resource: "backups", Op: "prune", Err: err}
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, &PersistenceError{Resource: "backups", Op: "prune", Err: err}
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Resource: "backups", Op: "prune", Err: err}
	}

	if _, err := s.db.Exec(`DELETE FROM backups WHERE created_at < ?`, before); err != nil {
		return nil, &PersistenceError{Resource: "backups", Op: "prune", Err: err}
	}
	return keys, nil
}

func (s *BackupStore) LatestCompleted() (*model.Backup, error) {
	row := s.db.QueryRow(
		`SELECT `+backupCols+` FROM backups WHERE status = ? ORDER BY completed_at DESC LIMIT 1`,
		model.BackupStatusCompleted,
	)
	b, err := scanBackup(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &PersistenceError{Resource: "backup", Op: "get", Err: err}
	}
	return b, nil
}

func (s *BackupStore) Count() (int64, error) {
	var count int64
	err := s.db.QueryRow(`SELECT COUNT(*) FROM backups`).Scan(&count)
	if err != nil {
		return 0, &PersistenceError{Resource: "backups", Op: "count", Err: err}
	}
	return count, nil
}

// TotalSize sums completed backup sizes. SUM over zero rows is NULL, hence
// the NullInt64.
func (s *BackupStore) TotalSize() (int64, error) {
	var total sql.NullInt64
	err := s.db.QueryRow(
		`SELECT SUM(size_bytes) FROM backups WHERE status = ?`,
		model.BackupStatusCompleted,
	).Scan(&total)
	if err != nil {
		return 0, &PersistenceError{Resource: "backups", Op: "count", Err: err}
	}
	return total.Int64, nil
}
