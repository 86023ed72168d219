package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Message is an outbound message. RoutingKey overrides the target default.
type Message struct {
	Body        []byte
	ContentType string
	Headers     amqp.Table
	MessageID   string
	RoutingKey  string
	Mandatory   bool
	Immediate   bool
}

// Target is the declared destination of a FailoverPublisher.
type Target interface {
	// Name identifies the target in logs and errors.
	Name() string

	declare(ch Channel) error
	route(msg Message) (exchange, key string)
}

// QueueTarget publishes through the default exchange straight into a named queue.
type QueueTarget struct {
	Queue     string
	Durable   bool
	Arguments amqp.Table
}

// ExchangeTarget publishes to a named exchange.
type ExchangeTarget struct {
	Exchange   string
	Kind       string
	Durable    bool
	RoutingKey string
	Arguments  amqp.Table
}

// NewQueueTarget returns a durable queue target.
func NewQueueTarget(queue string) QueueTarget {
	return QueueTarget{Queue: queue, Durable: true}
}

// NewExchangeTarget returns a non-durable fanout exchange target.
func NewExchangeTarget(exchange string) ExchangeTarget {
	return ExchangeTarget{Exchange: exchange, Kind: amqp.ExchangeFanout}
}

// NewDurableExchangeTarget returns a durable fanout exchange target.
func NewDurableExchangeTarget(exchange string) ExchangeTarget {
	return ExchangeTarget{Exchange: exchange, Kind: amqp.ExchangeFanout, Durable: true}
}

func (t QueueTarget) Name() string {
	return "queue:" + t.Queue
}

func (t QueueTarget) declare(ch Channel) error {
	_, err := ch.QueueDeclare(t.Queue, t.Durable, false, false, false, t.Arguments)

	return err
}

func (t QueueTarget) route(_ Message) (string, string) {
	return "", t.Queue
}

func (t ExchangeTarget) Name() string {
	return "exchange:" + t.Exchange
}

func (t ExchangeTarget) declare(ch Channel) error {
	kind := t.Kind
	if kind == "" {
		kind = amqp.ExchangeFanout
	}

	return ch.ExchangeDeclare(t.Exchange, kind, t.Durable, false, false, false, t.Arguments)
}

func (t ExchangeTarget) route(msg Message) (string, string) {
	if msg.RoutingKey != "" {
		return t.Exchange, msg.RoutingKey
	}

	return t.Exchange, t.RoutingKey
}

// FailoverPublisher publishes to a declared target on the first reachable
// endpoint. Every call opens a fresh connection and closes it afterwards.
type FailoverPublisher struct {
	endpoints *EndpointSet
	target    Target
	options   publisherOptions
}

type publishSession struct {
	conn     Connection
	ch       Channel
	endpoint string
	confirms chan amqp.Confirmation
	returns  chan amqp.Return
}

func NewFailoverPublisher(urls []string, target Target, opts ...publisherOption) (*FailoverPublisher, error) {
	endpoints, err := NewEndpointSet(urls)
	if err != nil {
		return nil, err
	}

	if target == nil {
		return nil, errors.New("publish target is required")
	}

	options := defaultPublisherOptions()
	for _, opt := range opts {
		opt(&options)
	}

	return &FailoverPublisher{
		endpoints: endpoints,
		target:    target,
		options:   options,
	}, nil
}

// Target returns the declared destination.
func (p *FailoverPublisher) Target() Target {
	return p.target
}

// Publish connects, declares the target and publishes msg persistently.
// Every failure is returned as a *PublishMessageError.
func (p *FailoverPublisher) Publish(ctx context.Context, msg Message) error {
	err := p.publish(ctx, msg)
	p.options.observer.Published(ctx, p.target.Name(), err)

	return err
}

func (p *FailoverPublisher) publish(ctx context.Context, msg Message) error {
	session, err := p.connect(ctx)
	if err != nil {
		p.options.logger.Error().Err(err).Str("target", p.target.Name()).
			Msg("unable to connect to any broker, message not published")

		return &PublishMessageError{Target: p.target.Name(), Reason: "connection failed", Cause: err}
	}
	defer session.close(p.options.logger)

	if err := p.send(ctx, session, msg); err != nil {
		p.options.logger.Error().Err(err).
			Str("target", p.target.Name()).
			Str("endpoint", session.endpoint).
			Msg("message not published")

		return &PublishMessageError{Target: p.target.Name(), Endpoint: session.endpoint, Cause: err}
	}

	p.options.logger.Info().
		Str("target", p.target.Name()).
		Str("endpoint", session.endpoint).
		Msg("published message")

	return nil
}

// connect walks the endpoints in list order until one accepts the connection
// and the target declaration.
func (p *FailoverPublisher) connect(ctx context.Context) (*publishSession, error) {
	var lastErr error

	for _, url := range p.endpoints.All() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		endpoint := SanitizeURL(url)

		session, err := p.open(url, endpoint)
		if err != nil {
			p.options.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("unable to connect to broker")
			p.options.observer.ConnectionAttempt(endpoint, err)
			lastErr = err

			continue
		}

		p.options.observer.ConnectionAttempt(endpoint, nil)

		return session, nil
	}

	return nil, fmt.Errorf("%w: %w", ErrEndpointsExhausted, lastErr)
}

func (p *FailoverPublisher) open(url, endpoint string) (*publishSession, error) {
	conn, err := p.options.dialer(url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	session := &publishSession{conn: conn, ch: ch, endpoint: endpoint}

	if err := p.target.declare(ch); err != nil {
		session.close(p.options.logger)

		return nil, fmt.Errorf("failed to declare %s: %w", p.target.Name(), err)
	}

	if p.options.confirm {
		if err := ch.Confirm(false); err != nil {
			session.close(p.options.logger)

			return nil, fmt.Errorf("failed to enable delivery confirmation: %w", err)
		}

		session.confirms = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
		session.returns = ch.NotifyReturn(make(chan amqp.Return, 1))

		p.options.logger.Debug().Str("endpoint", endpoint).Msg("enabled delivery confirmation")
	}

	return session, nil
}

func (p *FailoverPublisher) send(ctx context.Context, session *publishSession, msg Message) error {
	exchange, key := p.target.route(msg)

	publishing := amqp.Publishing{
		ContentType:  msg.ContentType,
		Headers:      msg.Headers,
		MessageId:    msg.MessageID,
		AppId:        p.options.appID,
		Body:         msg.Body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	}

	if err := session.ch.PublishWithContext(ctx, exchange, key, msg.Mandatory, msg.Immediate, publishing); err != nil {
		return fmt.Errorf("failed to publish: %w", err)
	}

	if !p.options.confirm {
		return nil
	}

	timer := time.NewTimer(p.options.confirmTimeout)
	defer timer.Stop()

	select {
	case ret := <-session.returns:
		return fmt.Errorf("%w: %d %s", ErrUnroutable, ret.ReplyCode, ret.ReplyText)

	case confirm, ok := <-session.confirms:
		if !ok {
			return ErrChannelClosed
		}

		if !confirm.Ack {
			return ErrPublishNacked
		}

		// a Basic.Return always precedes the Basic.Ack of the same message
		select {
		case ret := <-session.returns:
			return fmt.Errorf("%w: %d %s", ErrUnroutable, ret.ReplyCode, ret.ReplyText)
		default:
		}

		return nil

	case <-timer.C:
		return ErrConfirmTimeout

	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *publishSession) close(logger Logger) {
	if err := s.ch.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		logger.Debug().Err(err).Str("endpoint", s.endpoint).Msg("unable to close channel")
	}

	if err := s.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		logger.Debug().Err(err).Str("endpoint", s.endpoint).Msg("unable to close connection")
	}
}
