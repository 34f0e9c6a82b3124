// Package slogx holds the slog plumbing shared by the commands and the
// parallel pipeline: level parsing, the default stderr logger and a
// channel-backed writer for worker fan-in.
package slogx

import (
	"bytes"
	"log/slog"
	"os"
	"strings"
)

// ChanWriter buffers handler output and forwards complete lines to a
// channel, so concurrent workers interleave per line rather than per byte.
// When the channel is full the line is dropped; logging never blocks a
// worker.
type ChanWriter struct {
	ch  chan<- string
	buf []byte
}

// NewChanWriter wraps ch as an io.Writer for a slog handler.
func NewChanWriter(ch chan<- string) *ChanWriter {
	return &ChanWriter{ch: ch}
}

func (w *ChanWriter) Write(p []byte) (n int, err error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		line := string(w.buf[:i])
		w.buf = w.buf[i+1:]
		select {
		case w.ch <- line:
		default:
			// channel full, drop
		}
	}
	return len(p), nil
}

// NewChanLogger creates a text-format logger whose lines land on ch.
func NewChanLogger(ch chan<- string) *slog.Logger {
	return slog.New(slog.NewTextHandler(NewChanWriter(ch), &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// ParseLevel converts a level string (debug|info|warn|error) to a
// slog.Level. Unknown strings fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewDefault creates a stderr text logger at the given level string.
func NewDefault(level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))
}
