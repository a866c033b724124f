package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// splitHandler drops records below min and sends ERROR+ to errors, the rest
// to out. Both sides share the same attributes and groups.
type splitHandler struct {
	min    slog.Level
	out    slog.Handler
	errors slog.Handler
}

func newSplitHandler(out, errOut io.Writer, min slog.Level) *splitHandler {
	opts := &slog.HandlerOptions{Level: min}
	return &splitHandler{
		min:    min,
		out:    slog.NewTextHandler(out, opts),
		errors: slog.NewTextHandler(errOut, opts),
	}
}

func (h *splitHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.min
}

func (h *splitHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return h.errors.Handle(ctx, r)
	}
	return h.out.Handle(ctx, r)
}

func (h *splitHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.derive(func(sh slog.Handler) slog.Handler { return sh.WithAttrs(attrs) })
}

func (h *splitHandler) WithGroup(name string) slog.Handler {
	return h.derive(func(sh slog.Handler) slog.Handler { return sh.WithGroup(name) })
}

func (h *splitHandler) derive(f func(slog.Handler) slog.Handler) *splitHandler {
	return &splitHandler{min: h.min, out: f(h.out), errors: f(h.errors)}
}

// setupLogger installs the default logger at the given level. With a
// logPath every record is also appended to that file. The returned cleanup
// closes the file and may be nil.
func setupLogger(logPath string, level slog.Level) (func(), error) {
	out, errOut := io.Writer(os.Stdout), io.Writer(os.Stderr)

	var cleanup func()
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		out = io.MultiWriter(out, f)
		errOut = io.MultiWriter(errOut, f)
	}

	slog.SetDefault(slog.New(newSplitHandler(out, errOut, level)))
	return cleanup, nil
}
