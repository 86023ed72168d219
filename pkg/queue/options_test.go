package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLinearBackoff(t *testing.T) {
	t.Parallel()

	b := LinearBackoff{Step: 2 * time.Second, Max: 5 * time.Second}

	assert.Equal(t, time.Duration(0), b.Backoff(0))
	assert.Equal(t, 2*time.Second, b.Backoff(1))
	assert.Equal(t, 4*time.Second, b.Backoff(2))
	assert.Equal(t, 5*time.Second, b.Backoff(3))
	assert.Equal(t, 5*time.Second, b.Backoff(100))

	unbounded := LinearBackoff{Step: time.Second}
	assert.Equal(t, 10*time.Second, unbounded.Backoff(10))
}

func TestSleepContext(t *testing.T) {
	t.Parallel()

	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))
	assert.NoError(t, sleepContext(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}

func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	manager := defaultManagerOptions()
	assert.Equal(t, 5*time.Second, manager.reconnectDelay)
	assert.NotNil(t, manager.dialer)

	publisher := defaultPublisherOptions()
	assert.False(t, publisher.confirm)
	assert.Equal(t, 5*time.Second, publisher.confirmTimeout)

	consumer := defaultConsumerOptions()
	assert.True(t, consumer.requireTxID)
}
