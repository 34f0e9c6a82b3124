package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"optflow/internal/slogx"
)

// Summary aggregates one run.
type Summary struct {
	RunID    string
	Started  time.Time
	Finished time.Time
	Success  int
	Failed   int
	Results  []TaskResult
}

// Run executes tasks sequentially. A failed task is recorded and the run
// moves on; successful tasks stream progress updates when a channel is given.
// The run report lands under the raw store root.
func (d *Driver) Run(ctx context.Context, tasks []Task, progressUpdates chan<- ProgressUpdate) Summary {
	runID := uuid.NewString()
	log := d.log.With("run_id", runID)
	sum := Summary{RunID: runID, Started: time.Now().UTC()}

	log.Info("run start", "tasks", len(tasks))
	for _, t := range tasks {
		if ctx.Err() != nil {
			log.Warn("run canceled", "remaining", len(tasks)-len(sum.Results))
			break
		}
		res := d.runTask(ctx, t)
		sum.Results = append(sum.Results, res)
		if res.Ok {
			sum.Success++
			log.Info("task ok", "task", t.ID(), "rows", res.Rows)
			sendProgress(progressUpdates, t, log)
		} else {
			sum.Failed++
			log.Error("task fail", "task", t.ID(), "reason", res.Reason)
		}
	}
	sum.Finished = time.Now().UTC()

	if err := writeRunReport(d.raw.Root, sum.Results); err != nil {
		log.Warn("could not write run report", "error", err)
	}
	log.Info("run done", "success", sum.Success, "failed", sum.Failed,
		"elapsed", sum.Finished.Sub(sum.Started).Round(time.Second))
	return sum
}

// RunParallel executes tasks over len(drivers) workers. Each driver carries
// its own fetcher and pacer so vendor pacing holds per worker. Worker logs
// fan in through one channel to keep output lines whole.
func RunParallel(ctx context.Context, drivers []*Driver, tasks []Task, progressUpdates chan<- ProgressUpdate) Summary {
	runID := uuid.NewString()
	sum := Summary{RunID: runID, Started: time.Now().UTC()}
	if len(drivers) == 0 || len(tasks) == 0 {
		sum.Finished = time.Now().UTC()
		return sum
	}

	logs := make(chan string, 2048)
	logger := slogx.NewChanLogger(logs).With("run_id", runID)
	var logWg sync.WaitGroup
	logWg.Add(1)
	go func() {
		defer logWg.Done()
		runLogWriter(logs)
	}()

	hbCtx, hbCancel := context.WithCancel(context.Background())

	pending := make(chan Task, len(tasks))
	for _, t := range tasks {
		pending <- t
	}
	close(pending)

	results := make(chan TaskResult, len(tasks))
	var mu sync.Mutex
	var done, success, failed int
	go runHeartbeat(hbCtx, 30*time.Second, len(tasks), &mu, &done, &success, &failed, logger)

	var wg sync.WaitGroup
	wg.Add(len(drivers))
	for i, d := range drivers {
		worker := d.withLogger(logger.With("worker", i))
		go func() {
			defer wg.Done()
			for t := range pending {
				if ctx.Err() != nil {
					return
				}
				res := worker.runTask(ctx, t)
				if res.Ok {
					worker.log.Info("task ok", "task", t.ID(), "rows", res.Rows)
					sendProgress(progressUpdates, t, worker.log)
				} else {
					worker.log.Error("task fail", "task", t.ID(), "reason", res.Reason)
				}
				mu.Lock()
				done++
				if res.Ok {
					success++
				} else {
					failed++
				}
				mu.Unlock()
				results <- res
			}
		}()
	}
	wg.Wait()
	close(results)
	hbCancel()

	for r := range results {
		sum.Results = append(sum.Results, r)
		if r.Ok {
			sum.Success++
		} else {
			sum.Failed++
		}
	}
	sort.Slice(sum.Results, func(i, j int) bool {
		return sum.Results[i].Task.ID() < sum.Results[j].Task.ID()
	})
	sum.Finished = time.Now().UTC()

	if err := writeRunReport(drivers[0].raw.Root, sum.Results); err != nil {
		logger.Warn("could not write run report", "error", err)
	}
	logger.Info("run done", "success", sum.Success, "failed", sum.Failed,
		"elapsed", sum.Finished.Sub(sum.Started).Round(time.Second))
	close(logs)
	logWg.Wait()
	return sum
}

// withLogger clones the driver with a different logger. Workers share the
// fan-in logger while the archives and fetcher stay per driver.
func (d *Driver) withLogger(log *slog.Logger) *Driver {
	c := *d
	c.log = log
	return &c
}

func sendProgress(updates chan<- ProgressUpdate, t Task, log *slog.Logger) {
	if updates == nil {
		return
	}
	select {
	case updates <- ProgressUpdate{Symbol: t.Symbol, Dataset: t.Dataset, Date: t.To.Format("2006-01-02")}:
	default:
		log.Warn("progress channel full, skip update", "task", t.ID())
	}
}

func runLogWriter(lines <-chan string) {
	for s := range lines {
		fmt.Println(s)
	}
}

func runHeartbeat(ctx context.Context, interval time.Duration, total int, mu *sync.Mutex, done, success, failed *int, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mu.Lock()
			d, s, f := *done, *success, *failed
			mu.Unlock()
			logger.Info("heartbeat", "done", d, "total", total, "success", s, "failed", f)
		}
	}
}
