// Package logger is a thin wrapper over log/slog used by the emulator core.
// Components log through this package so the CLI can raise the level to
// debug with a single switch.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

type handler struct {
	out   io.Writer
	mu    *sync.Mutex
	debug bool
}

func (h *handler) Enabled(_ context.Context, level slog.Level) bool {
	if h.debug {
		return true
	}
	return level >= slog.LevelInfo
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }
func (h *handler) WithGroup(name string) slog.Handler       { return h }

func (h *handler) Handle(_ context.Context, r slog.Record) error {
	strs := []string{r.Time.Format("2006/01/02 15:04:05"), r.Level.String() + ":", r.Message}
	if r.NumAttrs() != 0 {
		r.Attrs(func(a slog.Attr) bool {
			strs = append(strs, a.Key+"="+a.Value.String())
			return true
		})
	}
	b := []byte(strings.Join(strs, " ") + "\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(b)
	return err
}

var std = &handler{out: os.Stderr, mu: &sync.Mutex{}}
var log = slog.New(std)

// SetDebug enables or disables debug-level output.
func SetDebug(debug bool) { std.debug = debug }

// SetOutput redirects log output; tests use this to keep output quiet.
func SetOutput(w io.Writer) { std.out = w }

func Debug(msg string, args ...any) { log.Debug(msg, args...) }
func Info(msg string, args ...any)  { log.Info(msg, args...) }
func Warn(msg string, args ...any)  { log.Warn(msg, args...) }
func Error(msg string, args ...any) { log.Error(msg, args...) }
