// Package logging builds the slog loggers used by the registry commands.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// ParseLevel maps a config level name to a slog level. Unknown names mean info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a text logger writing to w at the given level. When format is
// "json" a JSON handler is used instead.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Recorder is a slog.Handler that forwards to another handler and keeps a
// copy of every record at or above a threshold. The copies are formatted by
// a text handler without timestamps; the build writes them to warnings.txt.
type Recorder struct {
	next      slog.Handler
	text      slog.Handler
	threshold slog.Level
	sink      *sink
}

// sink receives one Write per record from the text handler.
type sink struct {
	mu    sync.Mutex
	lines []string
}

func (s *sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	s.lines = append(s.lines, strings.TrimRight(string(p), "\n"))
	s.mu.Unlock()
	return len(p), nil
}

// NewRecorder wraps next, recording records at threshold or above.
func NewRecorder(next slog.Handler, threshold slog.Level) *Recorder {
	s := &sink{}
	text := slog.NewTextHandler(s, &slog.HandlerOptions{
		Level: threshold,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})
	return &Recorder{next: next, text: text, threshold: threshold, sink: s}
}

// Enabled implements slog.Handler.
func (r *Recorder) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= r.threshold || r.next.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (r *Recorder) Handle(ctx context.Context, rec slog.Record) error {
	if rec.Level >= r.threshold {
		if err := r.text.Handle(ctx, rec.Clone()); err != nil {
			return err
		}
	}
	if r.next.Enabled(ctx, rec.Level) {
		return r.next.Handle(ctx, rec)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (r *Recorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *r
	c.next = r.next.WithAttrs(attrs)
	c.text = r.text.WithAttrs(attrs)
	return &c
}

// WithGroup implements slog.Handler.
func (r *Recorder) WithGroup(name string) slog.Handler {
	c := *r
	c.next = r.next.WithGroup(name)
	c.text = r.text.WithGroup(name)
	return &c
}

// Lines returns the recorded lines in order.
func (r *Recorder) Lines() []string {
	r.sink.mu.Lock()
	defer r.sink.mu.Unlock()
	return append([]string(nil), r.sink.lines...)
}

// Reset drops the recorded lines.
func (r *Recorder) Reset() {
	r.sink.mu.Lock()
	r.sink.lines = nil
	r.sink.mu.Unlock()
}
