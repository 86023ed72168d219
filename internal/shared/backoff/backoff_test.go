package backoff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/architeacher/svc-message-relay/internal/config"
	"github.com/architeacher/svc-message-relay/pkg/queue"
)

func TestExponential_Backoff(t *testing.T) {
	t.Parallel()

	strategy := NewExponentialStrategy(config.BackoffConfig{
		BaseDelay:  time.Second,
		Multiplier: 2,
		MaxDelay:   10 * time.Second,
	})

	var _ queue.BackoffStrategy = strategy

	tests := []struct {
		retries int
		want    time.Duration
	}{
		{retries: 0, want: time.Second},
		{retries: 1, want: 2 * time.Second},
		{retries: 2, want: 4 * time.Second},
		{retries: 3, want: 8 * time.Second},
		{retries: 4, want: 10 * time.Second},
		{retries: 50, want: 10 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, strategy.Backoff(tt.retries), "retries=%d", tt.retries)
	}
}

func TestExponential_BackoffJitterStaysInBounds(t *testing.T) {
	t.Parallel()

	strategy := NewExponentialStrategy(config.BackoffConfig{
		BaseDelay:  time.Second,
		Multiplier: 1.6,
		Jitter:     0.2,
		MaxDelay:   30 * time.Second,
	})

	for range 100 {
		got := strategy.Backoff(20)

		assert.GreaterOrEqual(t, got, 24*time.Second)
		assert.LessOrEqual(t, got, 36*time.Second)
	}
}

func TestExponential_Escalates(t *testing.T) {
	t.Parallel()

	strategy := NewExponentialStrategy(config.BackoffConfig{
		BaseDelay:  100 * time.Millisecond,
		Multiplier: 1.6,
		MaxDelay:   time.Minute,
	})

	previous := time.Duration(0)
	for attempt := 1; attempt <= 5; attempt++ {
		current := strategy.Backoff(attempt)
		assert.Greater(t, current, previous)
		previous = current
	}
}
