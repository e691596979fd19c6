package probe

import (
	"context"
	"fmt"
	"io"
	"slices"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sves-daq/backend/pkg/logger"
)

// Run checks the service is healthy, submits cfg.Count generated requests
// concurrently and verifies every reply. It returns ErrViolations when any
// reply breaks the contract or any request fails.
func Run(ctx context.Context, cfg Config, gen *Generator) (Stats, error) {
	if cfg.Count <= 0 {
		cfg.Count = DefaultCount
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU() * 2
	}
	log := logger.Get().Named("probe")
	stats := Stats{PerModel: map[string]int{}}
	start := time.Now()

	client := NewClient(cfg.BaseURL, cfg.Timeout)
	if err := client.Health(ctx); err != nil {
		return stats, err
	}

	reqs := gen.Requests(cfg.Count)
	log.Info(ctx, "submitting predictions",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("count", len(reqs)),
		logger.Int("workers", cfg.Workers))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, req := range reqs {
		g.Go(func() error {
			resp, err := client.Predict(gctx, req)
			var found []Violation
			if err == nil {
				found = Verify(req, resp)
			}

			mu.Lock()
			defer mu.Unlock()
			stats.Submitted++
			stats.PerModel[req.ModelType]++
			if err != nil {
				stats.Failed++
				if cfg.Verbose {
					log.Warn(gctx, "request failed", logger.String("model", req.ModelType), logger.Error(err))
				}
				return nil
			}
			stats.Violations = append(stats.Violations, found...)
			return nil
		})
	}
	_ = g.Wait()
	stats.Duration = time.Since(start)

	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("probe interrupted: %w", err)
	}
	if stats.Failed > 0 || len(stats.Violations) > 0 {
		return stats, fmt.Errorf("%w: %d failed requests, %d violations",
			ErrViolations, stats.Failed, len(stats.Violations))
	}
	return stats, nil
}

// PrintSummary writes a human readable report of stats to w.
func PrintSummary(w io.Writer, stats Stats) {
	fmt.Fprintf(w, "Submitted: %d  Failed: %d  Violations: %d  Took: %s\n",
		stats.Submitted, stats.Failed, len(stats.Violations), stats.Duration.Round(time.Millisecond))
	models := make([]string, 0, len(stats.PerModel))
	for m := range stats.PerModel {
		models = append(models, m)
	}
	slices.Sort(models)
	for _, m := range models {
		fmt.Fprintf(w, "  %-20s %d\n", m, stats.PerModel[m])
	}
	for _, v := range stats.Violations {
		fmt.Fprintf(w, "  violation %s\n", v)
	}
}
