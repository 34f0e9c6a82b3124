package pipeline

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
)

type failedEntry struct {
	Task   string `json:"task"`
	Reason string `json:"reason"`
}

// writeRunReport persists the last run's outcome next to the raw data so a
// follow-up job can retry exactly the failed tasks.
func writeRunReport(dir string, results []TaskResult) error {
	var successList []string
	var failedList []failedEntry
	for _, r := range results {
		if r.Ok {
			successList = append(successList, r.Task.ID())
		} else {
			failedList = append(failedList, failedEntry{Task: r.Task.ID(), Reason: r.Reason})
		}
	}
	if len(successList) == 0 && len(failedList) == 0 {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if len(successList) > 0 {
		p := filepath.Join(dir, ".lastrun.success.json")
		data, err := json.MarshalIndent(successList, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(p, data, 0644); err != nil {
			return err
		}
		slog.Info("report wrote success", "path", p, "tasks", len(successList))
	}
	if len(failedList) > 0 {
		p := filepath.Join(dir, ".lastrun.failed.json")
		data, err := json.MarshalIndent(failedList, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(p, data, 0644); err != nil {
			return err
		}
		slog.Info("report wrote failed", "path", p, "count", len(failedList))
	}
	return nil
}
