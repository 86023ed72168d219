package infrastructure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/architeacher/svc-message-relay/internal/config"
	"github.com/architeacher/svc-message-relay/pkg/queue"
)

func testServiceConfig() config.ServiceConfig {
	return config.ServiceConfig{
		AppConfig: config.AppConfig{ServiceName: "svc-message-relay"},
		Queue: config.QueueConfig{
			URLs:           []string{"amqp://rabbit-1/", "amqp://rabbit-2/"},
			ExchangeName:   "relay.events",
			ExchangeType:   "topic",
			QueueName:      "relay.input",
			BindingKey:     "#",
			Durable:        true,
			ReconnectDelay: 5 * time.Second,
		},
		Quarantine: config.QuarantineConfig{
			Target:  config.TargetExchange,
			Name:    "relay.dead",
			Confirm: true,
		},
		Relay: config.RelayConfig{
			OutputExchange: "relay.output",
			ExchangeType:   "topic",
		},
	}
}

func TestNewConnectionManager(t *testing.T) {
	t.Parallel()

	manager, err := NewConnectionManager(testServiceConfig(), queue.LinearBackoff{Step: time.Second}, NewTestLogger(), NewQueueObserver(&NoOpMetrics{}))
	require.NoError(t, err)

	assert.Equal(t, queue.StateNew, manager.State())
	assert.Equal(t, []string{"amqp://rabbit-1/", "amqp://rabbit-2/"}, manager.Endpoints().All())
}

func TestNewConnectionManager_RequiresQueue(t *testing.T) {
	t.Parallel()

	cfg := testServiceConfig()
	cfg.Queue.QueueName = ""

	_, err := NewConnectionManager(cfg, queue.LinearBackoff{Step: time.Second}, NewTestLogger(), NewQueueObserver(&NoOpMetrics{}))
	assert.Error(t, err)
}

func TestPublisherFactories(t *testing.T) {
	t.Parallel()

	cfg := testServiceConfig()
	observer := NewQueueObserver(&NoOpMetrics{})

	quarantine, err := NewQuarantinePublisher(cfg, NewTestLogger(), observer)
	require.NoError(t, err)
	assert.Equal(t, "exchange:relay.dead", quarantine.Target().Name())

	relay, err := NewRelayPublisher(cfg, NewTestLogger(), observer)
	require.NoError(t, err)
	assert.Equal(t, "exchange:relay.output", relay.Target().Name())

	input, err := NewInputPublisher(cfg, NewTestLogger())
	require.NoError(t, err)
	assert.Equal(t, "exchange:relay.events", input.Target().Name())

	cfg.Queue.ExchangeName = ""

	input, err = NewInputPublisher(cfg, NewTestLogger())
	require.NoError(t, err)
	assert.Equal(t, "queue:relay.input", input.Target().Name())
}

func TestNewPublisherFactories_NoEndpoints(t *testing.T) {
	t.Parallel()

	cfg := testServiceConfig()
	cfg.Queue.URLs = nil
	cfg.Queue.Hosts = nil

	_, err := NewRelayPublisher(cfg, NewTestLogger(), NewQueueObserver(&NoOpMetrics{}))
	assert.ErrorIs(t, err, queue.ErrNoEndpoints)
}
