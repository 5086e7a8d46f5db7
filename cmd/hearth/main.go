package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/wrenfield/hearth/internal/backup"
	"github.com/wrenfield/hearth/internal/database"
	"github.com/wrenfield/hearth/internal/logging"
	"github.com/wrenfield/hearth/internal/server"
)

func main() {
	logger := logging.Setup(os.Getenv("HEARTH_LOG_LEVEL"))

	port := envDefault("HEARTH_PORT", "8080")
	dbPath := envDefault("HEARTH_DB_PATH", "hearth.db")
	env := envDefault("HEARTH_ENV", "development")

	db, err := database.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	backupCfg := backup.Config{
		S3: backup.S3Config{
			Endpoint:  os.Getenv("HEARTH_BACKUP_S3_ENDPOINT"),
			Bucket:    os.Getenv("HEARTH_BACKUP_S3_BUCKET"),
			Region:    envDefault("HEARTH_BACKUP_S3_REGION", "auto"),
			AccessKey: os.Getenv("HEARTH_BACKUP_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("HEARTH_BACKUP_S3_SECRET_KEY"),
		},
		DBPath:        dbPath,
		Passphrase:    os.Getenv("HEARTH_BACKUP_PASSPHRASE"),
		RetentionDays: envInt("HEARTH_BACKUP_RETENTION_DAYS", 30),
		ScheduleHour:  envInt("HEARTH_BACKUP_HOUR", 3),
	}

	srv := server.New(db, server.Config{Env: env, Backup: backupCfg}, logger)

	backupCtx, backupCancel := context.WithCancel(context.Background())
	defer backupCancel()
	srv.BackupManager().Start(backupCtx)
	if srv.BackupManager().Enabled() {
		slog.Info("backups enabled", "hour", backupCfg.ScheduleHour, "retention_days", backupCfg.RetentionDays)
	}

	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Background cleanup goroutine
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			case <-cleanupCtx.Done():
				return
			}
		}
	}()

	go func() {
		slog.Info("hearth starting", "addr", ":"+port, "env", env)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	cleanupCancel()
	backupCancel()
	srv.BackupManager().Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("ignoring non-integer environment value", "key", key, "value", v)
		return fallback
	}
	return n
}
