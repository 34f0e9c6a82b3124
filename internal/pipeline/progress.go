package pipeline

import (
	"encoding/json"
	"log/slog"
	"os"
	"time"
)

// ProgressUpdate is sent when a task succeeds.
type ProgressUpdate struct {
	Symbol  string
	Dataset Dataset
	Date    string
}

func progressKey(symbol string, dataset Dataset) string {
	return symbol + "|" + string(dataset)
}

func loadProgress(path string) map[string]string {
	data, err := os.ReadFile(path)
	if err != nil {
		return make(map[string]string)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return make(map[string]string)
	}
	return m
}

// RunProgressWriter receives updates and persists the last completed date
// per symbol and dataset (run as goroutine, exits when updates closes).
func RunProgressWriter(path string, updates <-chan ProgressUpdate) {
	m := loadProgress(path)
	for u := range updates {
		m[progressKey(u.Symbol, u.Dataset)] = u.Date
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			slog.Warn("progress marshal error", "error", err)
			continue
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			slog.Warn("progress write error", "error", err)
		}
	}
}

// StartProgressWriter launches the writer goroutine. The done channel closes
// only after the final update has been written, so callers can close updates
// and wait on done before exiting without losing the last write.
func StartProgressWriter(path string) (updates chan ProgressUpdate, done chan struct{}) {
	updates = make(chan ProgressUpdate, 256)
	done = make(chan struct{})
	go func() {
		defer close(done)
		RunProgressWriter(path, updates)
	}()
	return updates, done
}

// PendingTasks drops or narrows tasks already covered by the progress file.
// Snapshot tasks run again only on a new date; bar tasks resume from the day
// after the last completed date.
func PendingTasks(tasks []Task, progressPath string) []Task {
	m := loadProgress(progressPath)

	var pending []Task
	for _, t := range tasks {
		last, ok := m[progressKey(t.Symbol, t.Dataset)]
		if !ok {
			pending = append(pending, t)
			continue
		}
		lastDate, err := time.ParseInLocation("2006-01-02", last, time.UTC)
		if err != nil {
			pending = append(pending, t)
			continue
		}
		if t.Dataset == DatasetSnapshot {
			if !t.From.After(lastDate) {
				continue
			}
			pending = append(pending, t)
			continue
		}
		start := lastDate.AddDate(0, 0, 1)
		if start.After(t.To) {
			continue
		}
		if start.After(t.From) {
			t.From = start
		}
		pending = append(pending, t)
	}
	return pending
}
