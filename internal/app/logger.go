package app

import (
	"io"
	"log/slog"
)

// newLogger builds the application logger writing to w. Levels parse
// case-insensitively and fall back to warn; any format other than json is
// text. It does not touch slog.Default.
func newLogger(level, format string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: lvl}

	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
