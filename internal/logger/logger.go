package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Config for New. File is the log file path; Output overrides it (tests).
// Stdout is never a valid sink here: it carries the proxied data.
type Config struct {
	Level  string
	File   string
	Output io.Writer
}

// Logger is the leveled sink handed to the session. It owns the log file and
// is closed when the session ends.
type Logger struct {
	*slog.Logger
	file *os.File
}

// New opens the sink. With no file and no explicit output it logs to stderr.
func New(cfg Config) (*Logger, error) {
	w := cfg.Output
	var f *os.File
	if w == nil {
		if cfg.File == "" {
			w = os.Stderr
		} else {
			var err error
			f, err = os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, err
			}
			w = f
		}
	}
	h := &lineHandler{w: w, level: parseLevel(cfg.Level)}
	return &Logger{Logger: slog.New(h), file: f}, nil
}

func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// lineHandler writes compact single-line records:
//
//	12:00:00 INFO  start proxying  addr=localhost:37281 mode=framed
type lineHandler struct {
	mu    sync.Mutex
	w     io.Writer
	level slog.Level
	attrs []slog.Attr
	group string
}

func (h *lineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *lineHandler) Handle(_ context.Context, r slog.Record) error {
	line := fmt.Sprintf("%s %s %s", r.Time.Format(time.TimeOnly), levelTag(r.Level), r.Message)
	for _, a := range h.attrs {
		line += formatAttr(h.group, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		line += formatAttr(h.group, a)
		return true
	})
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.w, line)
	return err
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &lineHandler{
		w:     h.w,
		level: h.level,
		attrs: append(append([]slog.Attr{}, h.attrs...), attrs...),
		group: h.group,
	}
}

func (h *lineHandler) WithGroup(name string) slog.Handler {
	prefix := name
	if h.group != "" {
		prefix = h.group + "." + name
	}
	return &lineHandler{
		w:     h.w,
		level: h.level,
		attrs: append([]slog.Attr{}, h.attrs...),
		group: prefix,
	}
}

func levelTag(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARN "
	case l >= slog.LevelInfo:
		return "INFO "
	default:
		return "DEBUG"
	}
}

func formatAttr(group string, a slog.Attr) string {
	key := a.Key
	if group != "" {
		key = group + "." + key
	}
	return fmt.Sprintf("  %s=%v", key, a.Value)
}
