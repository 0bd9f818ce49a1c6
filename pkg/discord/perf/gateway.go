package perf

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/small-frappuccino/cafefarm/pkg/log"
	"github.com/small-frappuccino/cafefarm/pkg/util"
)

const (
	envHandlerPerfThresholdMs     = "CAFE_HANDLER_PERF_THRESHOLD_MS"
	defaultHandlerPerfThresholdMs = int64(200)
)

var (
	handlerThresholdOnce sync.Once
	handlerThreshold     time.Duration
)

func handlerPerfThreshold() time.Duration {
	handlerThresholdOnce.Do(func() {
		ms := util.EnvInt64(envHandlerPerfThresholdMs, defaultHandlerPerfThresholdMs)
		if ms <= 0 {
			handlerThreshold = 0
			return
		}
		handlerThreshold = time.Duration(ms) * time.Millisecond
	})
	return handlerThreshold
}

// StartHandler tracks how long a message handler takes and logs only when slow.
// Set CAFE_HANDLER_PERF_THRESHOLD_MS to 0 to disable.
func StartHandler(kind string, attrs ...slog.Attr) func() {
	threshold := handlerPerfThreshold()
	if threshold <= 0 {
		return func() {}
	}

	start := time.Now()
	return func() {
		duration := time.Since(start)
		if duration < threshold {
			return
		}
		name := strings.TrimSpace(kind)
		if name == "" {
			name = "unknown"
		}
		args := make([]any, 0, len(attrs)+3)
		args = append(args,
			slog.String("kind", name),
			slog.Duration("duration", duration),
			slog.Int64("duration_ms", duration.Milliseconds()))
		for _, attr := range attrs {
			args = append(args, attr)
		}
		log.FarmLogger().Warn("slow message handler", args...)
	}
}
