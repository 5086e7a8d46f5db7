package backup

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/wrenfield/hearth/internal/database"
	"github.com/wrenfield/hearth/internal/model"
	"github.com/wrenfield/hearth/internal/store"
)

const testPassphrase = "household-passphrase"

// mockS3Client keeps uploads in memory so the manager tests stay offline.
type mockS3Client struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	getErr  error
	delErr  error
}

func newMockS3() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte)}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, _ := io.ReadAll(input.Body)
	m.objects[*input.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(bytes.NewReader(data)),
	}, nil
}

func (m *mockS3Client) DeleteObject(_ context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if m.delErr != nil {
		return nil, m.delErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (m *mockS3Client) object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	return data, ok
}

func (m *mockS3Client) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testManager opens a real database file, since RunNow snapshots the file
// behind cfg.DBPath, and swaps the S3 client for the in-memory mock.
func testManager(t *testing.T) (*Manager, *mockS3Client, *store.BackupStore, *sql.DB) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "hearth.db")
	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := Config{
		S3: S3Config{
			Endpoint:  "http://localhost:9000",
			Bucket:    "hearth-backups",
			Region:    "auto",
			AccessKey: "key",
			SecretKey: "secret",
		},
		DBPath:        dbPath,
		Passphrase:    testPassphrase,
		RetentionDays: 30,
		ScheduleHour:  3,
	}

	bs := store.NewBackupStore(db)
	m := NewManager(cfg, db, bs, discardLogger())
	mock := newMockS3()
	m.client = mock
	return m, mock, bs, db
}

func TestManagerDisabledWithoutConfig(t *testing.T) {
	m := NewManager(Config{}, nil, nil, discardLogger())

	if m.Enabled() {
		t.Error("manager without credentials should be disabled")
	}
	if got := m.Status().State; got != StateDisabled {
		t.Errorf("state = %q, want %q", got, StateDisabled)
	}

	// Start is a no-op while disabled and Stop must be safe regardless.
	m.Start(context.Background())
	m.Stop()
	m.Stop()
}

func TestManagerEnabledWithConfig(t *testing.T) {
	m, _, _, _ := testManager(t)

	if !m.Enabled() {
		t.Error("manager with full credentials should be enabled")
	}
	if got := m.Status().State; got != StateIdle {
		t.Errorf("state = %q, want %q", got, StateIdle)
	}
}

func TestManagerStopSafety(t *testing.T) {
	m, _, _, _ := testManager(t)

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	time.Sleep(20 * time.Millisecond)
	cancel()
	m.Stop()
	m.Stop()
}

func TestRunNowUnconfigured(t *testing.T) {
	m := NewManager(Config{}, nil, nil, discardLogger())

	if _, err := m.RunNow(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestRunNowUploadsEncryptedSnapshot(t *testing.T) {
	m, mock, bs, db := testManager(t)

	if _, err := db.Exec(`INSERT INTO notices (name, message) VALUES ('Alice', 'Plumber on Thursday')`); err != nil {
		t.Fatalf("seed notice: %v", err)
	}

	id, err := m.RunNow(context.Background())
	if err != nil {
		t.Fatalf("RunNow: %v", err)
	}

	record, err := bs.GetByID(id)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if record == nil {
		t.Fatal("backup record missing")
	}
	if record.Status != model.BackupStatusCompleted {
		t.Errorf("status = %q, want %q", record.Status, model.BackupStatusCompleted)
	}
	if record.SizeBytes == 0 {
		t.Error("completed backup should record its size")
	}
	if record.CompletedAt == nil {
		t.Error("completed backup should record its completion time")
	}

	data, ok := mock.object(record.S3Key)
	if !ok {
		t.Fatalf("no object uploaded under %q", record.S3Key)
	}
	if int64(len(data)) != record.SizeBytes {
		t.Errorf("uploaded %d bytes, record says %d", len(data), record.SizeBytes)
	}

	// The object must decrypt back to a SQLite file with the passphrase.
	dir := t.TempDir()
	encPath := filepath.Join(dir, "snapshot.enc")
	decPath := filepath.Join(dir, "snapshot.db")
	if err := os.WriteFile(encPath, data, 0600); err != nil {
		t.Fatalf("write object: %v", err)
	}
	if err := DecryptFile(encPath, decPath, testPassphrase); err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	plain, err := os.ReadFile(decPath)
	if err != nil {
		t.Fatalf("read decrypted: %v", err)
	}
	if !strings.HasPrefix(string(plain), "SQLite format 3") {
		t.Error("decrypted snapshot is not a SQLite database")
	}

	status := m.Status()
	if status.State != StateIdle {
		t.Errorf("state after run = %q, want %q", status.State, StateIdle)
	}
	if status.LastBackup == nil {
		t.Error("status should record the last backup time")
	}
}

func TestRunNowUploadFailure(t *testing.T) {
	m, mock, bs, _ := testManager(t)
	mock.putErr = errors.New("bucket gone")

	if _, err := m.RunNow(context.Background()); err == nil {
		t.Fatal("expected upload error")
	}

	if got := m.Status().State; got != StateError {
		t.Errorf("state = %q, want %q", got, StateError)
	}

	records, err := bs.List(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Status != model.BackupStatusFailed {
		t.Errorf("record status = %q, want %q", records[0].Status, model.BackupStatusFailed)
	}
	if records[0].ErrorMessage == "" {
		t.Error("failed record should carry the error message")
	}
}

func TestDownloadRoundtrip(t *testing.T) {
	m, mock, _, _ := testManager(t)

	id, err := m.RunNow(context.Background())
	if err != nil {
		t.Fatalf("RunNow: %v", err)
	}

	body, record, err := m.Download(context.Background(), id)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	stored, _ := mock.object(record.S3Key)
	if !bytes.Equal(data, stored) {
		t.Error("download should stream the stored object unchanged")
	}
	if record.ID != id {
		t.Errorf("record id = %d, want %d", record.ID, id)
	}
}

func TestDownloadUnknownID(t *testing.T) {
	m, _, _, _ := testManager(t)

	if _, _, err := m.Download(context.Background(), 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDownloadUnconfigured(t *testing.T) {
	m := NewManager(Config{}, nil, nil, discardLogger())

	if _, _, err := m.Download(context.Background(), 1); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestCleanupPrunesExpiredBackups(t *testing.T) {
	m, mock, bs, db := testManager(t)

	id, err := m.RunNow(context.Background())
	if err != nil {
		t.Fatalf("RunNow: %v", err)
	}
	record, err := bs.GetByID(id)
	if err != nil || record == nil {
		t.Fatalf("get record: %v", err)
	}

	// Age the record past the 30-day retention window.
	aged := time.Now().UTC().AddDate(0, 0, -31)
	if _, err := db.Exec(`UPDATE backups SET created_at = ? WHERE id = ?`, aged, id); err != nil {
		t.Fatalf("age record: %v", err)
	}

	if err := m.Cleanup(context.Background()); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}

	count, err := bs.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
	if _, ok := mock.object(record.S3Key); ok {
		t.Error("cleanup should delete the stored object too")
	}
}

func TestCleanupKeepsFreshBackups(t *testing.T) {
	m, mock, bs, _ := testManager(t)

	if _, err := m.RunNow(context.Background()); err != nil {
		t.Fatalf("RunNow: %v", err)
	}

	if err := m.Cleanup(context.Background()); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}

	count, err := bs.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	if mock.count() != 1 {
		t.Errorf("objects = %d, want 1", mock.count())
	}
}
