package infrastructure

import (
	"fmt"

	"github.com/architeacher/svc-message-relay/internal/config"
	"github.com/architeacher/svc-message-relay/pkg/queue"
)

// NewConnectionManager builds the consuming side from the queue settings.
func NewConnectionManager(
	cfg config.ServiceConfig,
	backoff queue.BackoffStrategy,
	logger Logger,
	observer queue.Observer,
) (*queue.ConnectionManager, error) {
	manager, err := queue.NewConnectionManager(
		cfg.Queue.BrokerURLs(),
		cfg.Queue.Topology(),
		queue.WithDialer(newDialer(cfg, "consumer")),
		queue.WithLogger(logger.Component("connection_manager").QueueLogger()),
		queue.WithObserver(observer),
		queue.WithConnectBackoff(backoff),
		queue.WithReconnectDelay(cfg.Queue.ReconnectDelay),
		queue.WithConsumerTag(cfg.Queue.ConsumerTag),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection manager: %w", err)
	}

	return manager, nil
}

// NewQuarantinePublisher builds the publisher quarantined messages go to.
func NewQuarantinePublisher(cfg config.ServiceConfig, logger Logger, observer queue.Observer) (*queue.FailoverPublisher, error) {
	publisher, err := queue.NewFailoverPublisher(
		cfg.Queue.BrokerURLs(),
		cfg.Quarantine.PublishTarget(),
		queue.WithPublisherDialer(newDialer(cfg, "quarantine")),
		queue.WithPublisherLogger(logger.Component("quarantine_publisher").QueueLogger()),
		queue.WithPublisherObserver(observer),
		queue.WithConfirmDelivery(cfg.Quarantine.Confirm),
		queue.WithConfirmTimeout(cfg.Quarantine.ConfirmTimeout),
		queue.WithAppID(cfg.AppConfig.ServiceName),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create quarantine publisher: %w", err)
	}

	return publisher, nil
}

// NewRelayPublisher builds the publisher that forwards relayed messages.
func NewRelayPublisher(cfg config.ServiceConfig, logger Logger, observer queue.Observer) (*queue.FailoverPublisher, error) {
	publisher, err := queue.NewFailoverPublisher(
		cfg.Queue.BrokerURLs(),
		cfg.Relay.PublishTarget(),
		queue.WithPublisherDialer(newDialer(cfg, "relay")),
		queue.WithPublisherLogger(logger.Component("relay_publisher").QueueLogger()),
		queue.WithPublisherObserver(observer),
		queue.WithConfirmDelivery(cfg.Relay.Confirm),
		queue.WithConfirmTimeout(cfg.Relay.ConfirmTimeout),
		queue.WithAppID(cfg.AppConfig.ServiceName),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create relay publisher: %w", err)
	}

	return publisher, nil
}

// NewInputPublisher builds a publisher onto the consumed exchange. Used by the
// operator CLI to inject messages.
func NewInputPublisher(cfg config.ServiceConfig, logger Logger) (*queue.FailoverPublisher, error) {
	target := queue.Target(queue.ExchangeTarget{
		Exchange: cfg.Queue.ExchangeName,
		Kind:     cfg.Queue.ExchangeType,
		Durable:  cfg.Queue.Durable,
	})

	if cfg.Queue.ExchangeName == "" {
		target = queue.QueueTarget{Queue: cfg.Queue.QueueName, Durable: cfg.Queue.Durable}
	}

	publisher, err := queue.NewFailoverPublisher(
		cfg.Queue.BrokerURLs(),
		target,
		queue.WithPublisherDialer(newDialer(cfg, "cli")),
		queue.WithPublisherLogger(logger.Component("input_publisher").QueueLogger()),
		queue.WithConfirmDelivery(true),
		queue.WithAppID(cfg.AppConfig.ServiceName+"-ctl"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create input publisher: %w", err)
	}

	return publisher, nil
}

func newDialer(cfg config.ServiceConfig, role string) queue.Dialer {
	return queue.NewDialer(queue.DialConfig{
		Heartbeat:      cfg.Queue.Heartbeat,
		ConnectTimeout: cfg.Queue.ConnectTimeout,
		ConnectionName: fmt.Sprintf("%s-%s", cfg.AppConfig.ServiceName, role),
	})
}
