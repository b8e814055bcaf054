// Package debug holds diagnostics that are only enabled with the debug
// flag: periodic runtime loggers, frame dumps and screen-change tracking.
package debug

import (
	"context"
	"log/slog"
	"runtime"
	"runtime/metrics"
	"time"
)

// StartGoroutineLogger logs goroutine count and stack memory every interval
// until ctx is done. The poll loop and the parallel matcher are the only
// goroutine sources, so a climbing count points at a leaked scan.
func StartGoroutineLogger(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = time.Second
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		samples := []metrics.Sample{{Name: "/sched/goroutines:goroutines"}}
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
			metrics.Read(samples)
			var goroutines uint64
			if samples[0].Value.Kind() == metrics.KindUint64 {
				goroutines = samples[0].Value.Uint64()
			}
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			logger.Info("goroutine-stacks",
				slog.Uint64("goroutines", goroutines),
				slog.Uint64("stack_inuse", ms.StackInuse),
				slog.Uint64("stack_sys", ms.StackSys),
				slog.Uint64("heap_alloc", ms.HeapAlloc),
			)
		}
	}()
}
