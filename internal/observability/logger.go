package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewStderrLogger is the batch CLI's logger. The service uses the shared
// logger; the CLI writes cleaned CSV to stdout, so its logs go to stderr.
func NewStderrLogger(level, format string) *slog.Logger {
	return newLogger(os.Stderr, level, format)
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
