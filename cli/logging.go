package cli

import (
	"io"
	"log/slog"
	"time"
)

// newLogger returns a human-readable logger writing to w. Debug adds source
// locations.
func newLogger(w io.Writer, level slog.Level, debug bool) *slog.Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
				a.Value = slog.StringValue(a.Value.Time().UTC().Format(time.RFC3339))
			}
			return a
		},
	})
	return slog.New(h)
}
