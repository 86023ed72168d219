package queue

import (
	"context"
	"time"
)

const (
	defaultReconnectDelay = 5 * time.Second
	defaultConfirmTimeout = 5 * time.Second
	defaultPrefetchCount  = 1
)

// BackoffStrategy returns the delay before the next connection attempt given
// the number of consecutive failures.
type BackoffStrategy interface {
	Backoff(retries int) time.Duration
}

// LinearBackoff waits Step per failed attempt, capped at Max.
type LinearBackoff struct {
	Step time.Duration
	Max  time.Duration
}

func (b LinearBackoff) Backoff(retries int) time.Duration {
	delay := time.Duration(retries) * b.Step
	if b.Max > 0 && delay > b.Max {
		return b.Max
	}

	return delay
}

// Observer is notified of lifecycle and disposition outcomes, typically to record metrics.
type Observer interface {
	ConnectionAttempt(endpoint string, err error)
	Disposition(ctx context.Context, action Action)
	Published(ctx context.Context, target string, err error)
}

type nopObserver struct{}

func (nopObserver) ConnectionAttempt(string, error)          {}
func (nopObserver) Disposition(context.Context, Action)      {}
func (nopObserver) Published(context.Context, string, error) {}

type sleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type managerOptions struct {
	dialer         Dialer
	logger         Logger
	observer       Observer
	backoff        BackoffStrategy
	reconnectDelay time.Duration
	consumerTag    string
	sleep          sleepFunc
}

type managerOption func(options *managerOptions)

// WithDialer returns a managerOption which replaces the amqp091 dialer.
func WithDialer(d Dialer) managerOption {
	return func(o *managerOptions) {
		o.dialer = d
	}
}

// WithLogger returns a managerOption which sets the logger of the connection manager.
func WithLogger(l Logger) managerOption {
	return func(o *managerOptions) {
		o.logger = l
	}
}

// WithObserver returns a managerOption which sets the lifecycle observer.
func WithObserver(obs Observer) managerOption {
	return func(o *managerOptions) {
		o.observer = obs
	}
}

// WithConnectBackoff returns a managerOption which sets the escalating delay used between initial connection attempts.
func WithConnectBackoff(b BackoffStrategy) managerOption {
	return func(o *managerOptions) {
		o.backoff = b
	}
}

// WithReconnectDelay returns a managerOption which sets the fixed delay before reopening an unexpectedly closed connection.
func WithReconnectDelay(delay time.Duration) managerOption {
	return func(o *managerOptions) {
		o.reconnectDelay = delay
	}
}

// WithConsumerTag returns a managerOption which sets the consumer tag used for Basic.Consume.
func WithConsumerTag(tag string) managerOption {
	return func(o *managerOptions) {
		o.consumerTag = tag
	}
}

func defaultManagerOptions() managerOptions {
	return managerOptions{
		dialer:         NewDialer(DialConfig{}),
		logger:         nopLogger{},
		observer:       nopObserver{},
		backoff:        LinearBackoff{Step: time.Second, Max: 30 * time.Second},
		reconnectDelay: defaultReconnectDelay,
		sleep:          sleepContext,
	}
}

// publisherOptions configure a NewFailoverPublisher call.
type publisherOptions struct {
	dialer         Dialer
	logger         Logger
	observer       Observer
	confirm        bool
	confirmTimeout time.Duration
	appID          string
}

type publisherOption func(options *publisherOptions)

// WithPublisherDialer returns a publisherOption which replaces the amqp091 dialer.
func WithPublisherDialer(d Dialer) publisherOption {
	return func(o *publisherOptions) {
		o.dialer = d
	}
}

// WithPublisherLogger returns a publisherOption which sets the publisher logger.
func WithPublisherLogger(l Logger) publisherOption {
	return func(o *publisherOptions) {
		o.logger = l
	}
}

// WithPublisherObserver returns a publisherOption which sets the publish observer.
func WithPublisherObserver(obs Observer) publisherOption {
	return func(o *publisherOptions) {
		o.observer = obs
	}
}

// WithConfirmDelivery returns a publisherOption which enables publisher confirms.
func WithConfirmDelivery(enabled bool) publisherOption {
	return func(o *publisherOptions) {
		o.confirm = enabled
	}
}

// WithConfirmTimeout returns a publisherOption which bounds the wait for a confirmation.
func WithConfirmTimeout(d time.Duration) publisherOption {
	return func(o *publisherOptions) {
		o.confirmTimeout = d
	}
}

// WithAppID returns a publisherOption which stamps every message with an app id.
func WithAppID(appID string) publisherOption {
	return func(o *publisherOptions) {
		o.appID = appID
	}
}

func defaultPublisherOptions() publisherOptions {
	return publisherOptions{
		dialer:         NewDialer(DialConfig{}),
		logger:         nopLogger{},
		observer:       nopObserver{},
		confirmTimeout: defaultConfirmTimeout,
	}
}

type consumerOptions struct {
	requireTxID bool
	queueName   string
	logger      Logger
	observer    Observer
}

type consumerOption func(*consumerOptions)

// WithRequireTxID returns a consumerOption which controls whether a missing tx_id rejects the message.
func WithRequireTxID(required bool) consumerOption {
	return func(o *consumerOptions) {
		o.requireTxID = required
	}
}

// WithConsumingLogger returns a consumerOption which sets the logger when consuming messages.
func WithConsumingLogger(logger Logger) consumerOption {
	return func(o *consumerOptions) {
		o.logger = logger
	}
}

// WithConsumerObserver returns a consumerOption which sets the disposition observer.
func WithConsumerObserver(obs Observer) consumerOption {
	return func(o *consumerOptions) {
		o.observer = obs
	}
}

// WithQueueName returns a consumerOption which sets the queue name used in log lines.
func WithQueueName(name string) consumerOption {
	return func(o *consumerOptions) {
		o.queueName = name
	}
}

func defaultConsumerOptions() consumerOptions {
	return consumerOptions{
		requireTxID: true,
		logger:      nopLogger{},
		observer:    nopObserver{},
	}
}
