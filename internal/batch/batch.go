// Package batch scans many image files concurrently with a worker pool.
package batch

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/Nic0w/zbars/internal/barcode"
	"github.com/Nic0w/zbars/internal/imageio"
	"github.com/Nic0w/zbars/internal/output"
)

// ProgressCallback receives progress updates while a batch runs.
type ProgressCallback interface {
	OnStart(total int)
	OnProgress(current, total int)
	OnComplete()
}

// Config holds configuration for parallel scanning.
type Config struct {
	MaxWorkers int // Number of parallel workers (0 = runtime.NumCPU())
	Progress   ProgressCallback
}

// DefaultConfig returns one worker per CPU.
func DefaultConfig() Config {
	return Config{MaxWorkers: runtime.NumCPU()}
}

type job struct {
	index int
	path  string
}

type result struct {
	index  int
	report output.Report
}

// ScanFiles loads and decodes every path and returns one report per path,
// in input order. Per-file failures are recorded in the report's Err; the
// returned error is non-nil only when ctx ends the batch early.
func ScanFiles(ctx context.Context, backend barcode.Backend, paths []string,
	opts barcode.Options, cfg Config,
) ([]output.Report, error) {
	if len(paths) == 0 {
		return nil, errors.New("no files provided")
	}
	workers := cfg.MaxWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(paths))

	if cfg.Progress != nil {
		cfg.Progress.OnStart(len(paths))
		defer cfg.Progress.OnComplete()
	}

	jobs := make(chan job, len(paths))
	results := make(chan result, len(paths))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go worker(ctx, backend, opts, jobs, results, &wg)
	}

	go func() {
		defer close(jobs)
		for i, p := range paths {
			select {
			case jobs <- job{index: i, path: p}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	reports := make([]output.Report, len(paths))
	done := 0
	for r := range results {
		reports[r.index] = r.report
		done++
		if cfg.Progress != nil {
			cfg.Progress.OnProgress(done, len(paths))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return reports, nil
}

func worker(ctx context.Context, backend barcode.Backend, opts barcode.Options,
	jobs <-chan job, results chan<- result, wg *sync.WaitGroup,
) {
	defer wg.Done()
	for {
		select {
		case j, ok := <-jobs:
			if !ok {
				return
			}
			select {
			case results <- result{index: j.index, report: ScanFile(ctx, backend, j.path, opts)}:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// ScanFile loads and decodes one image file.
func ScanFile(ctx context.Context, backend barcode.Backend, path string, opts barcode.Options) output.Report {
	report := output.Report{Source: path}
	img, meta, err := imageio.LoadImage(path)
	if err != nil {
		slog.Warn("failed to load image", "path", path, "error", err)
		report.Err = err
		return report
	}
	report.Width, report.Height = meta.Width, meta.Height
	report.Results, report.Err = backend.Decode(ctx, img, opts)
	if report.Err != nil {
		slog.Warn("failed to decode image", "path", path, "error", report.Err)
	} else {
		slog.Debug("scanned image", "path", path, "symbols", len(report.Results))
	}
	return report
}

// Stats summarizes a finished batch.
type Stats struct {
	Files            int           `json:"files"`
	Failed           int           `json:"failed"`
	Symbols          int           `json:"symbols"`
	Workers          int           `json:"workers"`
	TotalDuration    time.Duration `json:"total_duration_ns"`
	AveragePerFile   time.Duration `json:"average_per_file_ns"`
	ThroughputPerSec float64       `json:"throughput_per_sec"`
}

// Summarize computes batch statistics.
func Summarize(reports []output.Report, elapsed time.Duration, workers int) Stats {
	s := Stats{Files: len(reports), Workers: workers, TotalDuration: elapsed}
	for _, r := range reports {
		if r.Err != nil {
			s.Failed++
			continue
		}
		s.Symbols += len(r.Results)
	}
	if ok := s.Files - s.Failed; ok > 0 && elapsed > 0 {
		s.AveragePerFile = elapsed / time.Duration(ok)
		s.ThroughputPerSec = float64(ok) / elapsed.Seconds()
	}
	return s
}
