// Package backup ships encrypted copies of the database to S3-compatible
// storage on a daily schedule. Restoring is deliberately out of band:
// download the object, decrypt it with the passphrase, and point the server
// at the file.
package backup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/wrenfield/hearth/internal/model"
	"github.com/wrenfield/hearth/internal/store"
)

var (
	// ErrNotConfigured means S3 credentials or the passphrase are missing.
	ErrNotConfigured = errors.New("backup not configured")
	// ErrNotFound means no backup record has the requested id.
	ErrNotFound = errors.New("backup not found")
)

// s3Client is the slice of the S3 API the manager touches, kept as an
// interface so tests can stand in for the real client.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// Config holds backup manager configuration, all sourced from environment
// variables at startup.
type Config struct {
	S3            S3Config
	DBPath        string
	Passphrase    string
	RetentionDays int
	ScheduleHour  int
}

type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateDisabled State = "disabled"
	StateError    State = "error"
)

// Status is the manager's current condition, served as-is by the status
// endpoint.
type Status struct {
	State      State      `json:"state"`
	LastBackup *time.Time `json:"last_backup,omitempty"`
	Error      string     `json:"error,omitempty"`
	InProgress bool       `json:"in_progress"`
}

// Manager runs scheduled and on-demand encrypted backups.
type Manager struct {
	mu     sync.RWMutex
	cfg    Config
	status Status
	logger *slog.Logger

	db     *sql.DB
	store  *store.BackupStore
	client s3Client

	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager builds a Manager. With incomplete S3 credentials or no
// passphrase it stays disabled: Start is a no-op and RunNow reports the
// missing configuration.
func NewManager(cfg Config, db *sql.DB, bs *store.BackupStore, logger *slog.Logger) *Manager {
	m := &Manager{
		cfg:    cfg,
		db:     db,
		store:  bs,
		logger: logger,
		status: Status{State: StateDisabled},
	}

	if cfg.S3.Bucket != "" && cfg.S3.AccessKey != "" && cfg.S3.SecretKey != "" && cfg.Passphrase != "" {
		m.client = newS3Client(cfg.S3)
		m.status.State = StateIdle
	}

	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Enabled reports whether the manager has everything it needs to run.
func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client != nil
}

// Start begins the schedule loop, checking once a minute whether the
// configured hour has arrived.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.client == nil {
		m.mu.Unlock()
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	m.mu.Unlock()

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.checkSchedule(ctx)
			}
		}
	}()
}

// Stop cancels the schedule loop and waits for it to finish.
func (m *Manager) Stop() {
	m.mu.RLock()
	cancel := m.cancel
	done := m.done
	m.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Status returns the current manager status.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
}

func (m *Manager) checkSchedule(ctx context.Context) {
	now := time.Now().UTC()
	if now.Hour() != m.cfg.ScheduleHour || now.Minute() != 0 {
		return
	}

	if _, err := m.RunNow(ctx); err != nil {
		m.logger.Error("scheduled backup failed", "error", err)
	}
	if err := m.Cleanup(ctx); err != nil {
		m.logger.Error("backup cleanup failed", "error", err)
	}
}

// RunNow performs one full backup and returns the record id.
func (m *Manager) RunNow(ctx context.Context) (int64, error) {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.S3.Bucket
	m.mu.RUnlock()

	if client == nil {
		return 0, ErrNotConfigured
	}

	salt, err := GenerateSalt()
	if err != nil {
		return 0, err
	}

	m.setStatus(Status{State: StateRunning, InProgress: true})

	timestamp := time.Now().UTC().Format("2006-01-02T150405Z")
	filename := fmt.Sprintf("hearth-%s.db.enc", timestamp)
	s3Key := "backups/" + filename

	record, err := m.store.Create(filename, s3Key)
	if err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return 0, fmt.Errorf("create backup record: %w", err)
	}

	fail := func(stage string, err error) (int64, error) {
		m.store.UpdateStatus(record.ID, model.BackupStatusFailed, err.Error())
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return 0, fmt.Errorf("%s: %w", stage, err)
	}

	m.store.UpdateStatus(record.ID, model.BackupStatusUploading, "")

	tmpDir := os.TempDir()
	dbCopy := filepath.Join(tmpDir, fmt.Sprintf("hearth-backup-%d.db", record.ID))
	encFile := filepath.Join(tmpDir, fmt.Sprintf("hearth-backup-%d.db.enc", record.ID))
	defer os.Remove(dbCopy)
	defer os.Remove(encFile)

	// Fold the WAL into the main file so the copy is a complete snapshot.
	if _, err := m.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fail("wal checkpoint", err)
	}

	if err := copyFile(m.cfg.DBPath, dbCopy); err != nil {
		return fail("copy database", err)
	}

	if err := EncryptFile(dbCopy, encFile, m.cfg.Passphrase, salt); err != nil {
		return fail("encrypt", err)
	}

	encData, err := os.Open(encFile)
	if err != nil {
		return fail("open encrypted file", err)
	}
	defer encData.Close()

	stat, err := encData.Stat()
	if err != nil {
		return fail("stat encrypted file", err)
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(s3Key),
		Body:          encData,
		ContentLength: aws.Int64(stat.Size()),
	})
	if err != nil {
		return fail("upload to s3", err)
	}

	m.store.UpdateCompleted(record.ID, stat.Size())

	now := time.Now().UTC()
	m.setStatus(Status{State: StateIdle, LastBackup: &now})

	return record.ID, nil
}

// Download streams the stored encrypted object for a backup record.
func (m *Manager) Download(ctx context.Context, backupID int64) (io.ReadCloser, *model.Backup, error) {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.S3.Bucket
	m.mu.RUnlock()

	if client == nil {
		return nil, nil, ErrNotConfigured
	}

	record, err := m.store.GetByID(backupID)
	if err != nil {
		return nil, nil, fmt.Errorf("get backup: %w", err)
	}
	if record == nil {
		return nil, nil, ErrNotFound
	}

	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(record.S3Key),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("download from s3: %w", err)
	}

	return result.Body, record, nil
}

// Cleanup drops records past the retention window and deletes their objects.
func (m *Manager) Cleanup(ctx context.Context) error {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.S3.Bucket
	retention := m.cfg.RetentionDays
	m.mu.RUnlock()

	if client == nil || retention <= 0 {
		return nil
	}

	before := time.Now().UTC().AddDate(0, 0, -retention)
	keys, err := m.store.DeleteOlderThan(before)
	if err != nil {
		return fmt.Errorf("delete old backups: %w", err)
	}

	for _, key := range keys {
		if _, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		}); err != nil {
			m.logger.Warn("delete s3 object", "key", key, "error", err)
		}
	}

	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
