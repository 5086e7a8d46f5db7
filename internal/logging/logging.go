package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup builds the process-wide *slog.Logger, installs it as the default, and
// returns it. Level accepts debug, info, warn, or error in any case; anything
// unrecognized falls back to info.
func Setup(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
	}))
	slog.SetDefault(logger)
	return logger
}
