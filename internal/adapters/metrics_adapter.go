package adapters

import (
	"context"
	"strings"
	"time"

	"github.com/architeacher/svc-message-relay/internal/infrastructure"
	"github.com/architeacher/svc-message-relay/internal/shared/decorator"
)

const (
	commandKeyPrefix = "commands."

	suffixSuccess  = "success"
	suffixFailure  = "failure"
	suffixDuration = "duration"
)

type MetricsAdapter struct {
	metrics infrastructure.Metrics
}

func NewMetricsAdapter(metrics infrastructure.Metrics) decorator.MetricsClient {
	return &MetricsAdapter{
		metrics: metrics,
	}
}

// Inc expects keys shaped as commands.<name>.success or commands.<name>.failure.
func (m *MetricsAdapter) Inc(key string, value int) {
	command, suffix, ok := splitCommandKey(key)
	if !ok {
		return
	}

	var success bool

	switch suffix {
	case suffixSuccess:
		success = true
	case suffixFailure:
		success = false
	default:
		return
	}

	for range value {
		m.metrics.RecordCommand(context.Background(), command, success)
	}
}

func (m *MetricsAdapter) Observe(key string, duration time.Duration) {
	command, suffix, ok := splitCommandKey(key)
	if !ok || suffix != suffixDuration {
		return
	}

	m.metrics.RecordCommandDuration(context.Background(), command, duration)
}

func splitCommandKey(key string) (command, suffix string, ok bool) {
	rest, found := strings.CutPrefix(key, commandKeyPrefix)
	if !found {
		return "", "", false
	}

	idx := strings.LastIndex(rest, ".")
	if idx <= 0 {
		return "", "", false
	}

	return rest[:idx], rest[idx+1:], true
}
