// Package logging configures the process-wide slog logger.
//
// Command results (status tables, logs, the rendered recipe) go to
// stdout; slog shares stderr with the progress display and stays at
// warn unless raised, so diagnostics never pollute scriptable output.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

var levels = map[string]slog.Level{
	"":         slog.LevelWarn,
	LevelDebug: slog.LevelDebug,
	LevelInfo:  slog.LevelInfo,
	LevelWarn:  slog.LevelWarn,
	LevelError: slog.LevelError,
}

// Configure installs a process-wide slog default logger writing to
// stderr. An empty level selects warn, keeping normal runs quiet.
func Configure(level string) error {
	parsed, ok := levels[strings.ToLower(strings.TrimSpace(level))]
	if !ok {
		return fmt.Errorf("unknown log level %q", level)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parsed,
	})))
	return nil
}
