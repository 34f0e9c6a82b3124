package slogx

import (
	"log/slog"
	"strings"
	"testing"
)

func TestChanWriterSplitsLines(t *testing.T) {
	ch := make(chan string, 8)
	w := NewChanWriter(ch)

	// one write carrying two lines plus a partial third
	if _, err := w.Write([]byte("first\nsecond\nthi")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := w.Write([]byte("rd\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	close(ch)

	var lines []string
	for s := range ch {
		lines = append(lines, s)
	}
	want := []string{"first", "second", "third"}
	if len(lines) != len(want) {
		t.Fatalf("got %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestChanWriterDropsWhenFull(t *testing.T) {
	ch := make(chan string, 1)
	w := NewChanWriter(ch)
	if _, err := w.Write([]byte("kept\ndropped\n")); err != nil {
		t.Fatalf("Write must not block or fail on a full channel: %v", err)
	}
	if got := <-ch; got != "kept" {
		t.Errorf("got %q, want kept", got)
	}
	select {
	case s := <-ch:
		t.Errorf("unexpected extra line %q", s)
	default:
	}
}

func TestNewChanLoggerEmitsWholeLines(t *testing.T) {
	ch := make(chan string, 8)
	log := NewChanLogger(ch)
	log.Info("task ok", "symbol", "XYZ")

	line := <-ch
	if !strings.Contains(line, "task ok") || !strings.Contains(line, "symbol=XYZ") {
		t.Errorf("line = %q", line)
	}
	if strings.Contains(line, "\n") {
		t.Errorf("line contains a newline: %q", line)
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" INFO ", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
