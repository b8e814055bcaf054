package debug

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/soocke/llama-bot-go/domain/capture"
)

// StatsFunc reports capture counters alongside memory stats.
type StatsFunc func() capture.CaptureStats

// StartMemLogger logs RSS, Go heap and capture counters every interval
// until ctx is done. The capture buffer is the largest native-sized
// allocation, so its size is logged next to the heap.
func StartMemLogger(ctx context.Context, interval time.Duration, logger *slog.Logger, stats StatsFunc) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		var rssErrLogged bool
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			rss, err := residentSetSize()
			if err != nil && !rssErrLogged {
				logger.Warn("memlog: rss query failed", slog.String("err", err.Error()))
				rssErrLogged = true
			}
			attrs := []any{
				slog.Int("goroutines", runtime.NumGoroutine()),
				slog.Uint64("heap_alloc", ms.HeapAlloc),
				slog.Uint64("heap_inuse", ms.HeapInuse),
				slog.Uint64("heap_sys", ms.HeapSys),
				slog.Uint64("next_gc", ms.NextGC),
				slog.Uint64("rss", rss),
				slog.Uint64("num_gc", uint64(ms.NumGC)),
			}
			if stats != nil {
				s := stats()
				attrs = append(attrs,
					slog.Uint64("captures", s.Captures),
					slog.Uint64("capture_failures", s.Failures),
					slog.Float64("avg_capture_us", s.AvgCaptureMicros),
					slog.Int("frame_buffer", s.BufferBytes),
				)
			}
			logger.Info("memstats", attrs...)
		}
	}()
}
