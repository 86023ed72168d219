package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Topology describes what the ConnectionManager declares before consuming.
// An empty Exchange consumes straight from Queue without declaring or binding an exchange.
type Topology struct {
	Exchange     string
	ExchangeType string
	Queue        string
	BindingKey   string
	Durable      bool

	ExchangeArguments amqp.Table
	QueueArguments    amqp.Table
}

// DeliveryHandler resolves one envelope. It is called serially.
type DeliveryHandler func(ctx context.Context, env *Envelope)

// ConnectionManager owns exactly one connection and channel against one of several endpoints.
// It reconnects on unexpected closure until Stop is called.
type ConnectionManager struct {
	endpoints *EndpointSet
	topology  Topology
	options   managerOptions

	mu         sync.Mutex
	state      ConnectionState
	conn       Connection
	ch         Channel
	connClosed chan *amqp.Error

	stopped  chan struct{}
	stopOnce sync.Once

	processing sync.Mutex
}

type consumeSession struct {
	deliveries <-chan amqp.Delivery
	connClosed chan *amqp.Error
	chClosed   chan *amqp.Error
	cancelled  chan string
}

func NewConnectionManager(urls []string, topology Topology, opts ...managerOption) (*ConnectionManager, error) {
	endpoints, err := NewEndpointSet(urls)
	if err != nil {
		return nil, err
	}

	if topology.Queue == "" {
		return nil, errors.New("queue name is required")
	}

	options := defaultManagerOptions()
	for _, opt := range opts {
		opt(&options)
	}

	if options.consumerTag == "" {
		options.consumerTag = "relay-" + uuid.NewString()
	}

	return &ConnectionManager{
		endpoints: endpoints,
		topology:  topology,
		options:   options,
		state:     StateNew,
		stopped:   make(chan struct{}),
	}, nil
}

// State returns the current lifecycle state.
func (m *ConnectionManager) State() ConnectionState {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

// Endpoints returns the rotating endpoint set.
func (m *ConnectionManager) Endpoints() *EndpointSet {
	return m.endpoints
}

// Connect blocks until a connection to one of the endpoints is open.
// Endpoints are tried round-robin from the current cursor, failed attempts
// are followed by an escalating delay. It only gives up when ctx is done or
// Stop is called, in which case ErrManagerClosed is returned.
func (m *ConnectionManager) Connect(ctx context.Context) error {
	ctx, cancel := m.withStop(ctx)
	defer cancel()

	if err := m.beginConnect(); err != nil {
		return err
	}

	for attempt := 1; ; attempt++ {
		if m.stopRequested() {
			return ErrManagerClosed
		}

		url := m.endpoints.Next()
		endpoint := SanitizeURL(url)

		m.options.logger.Info().
			Int("attempt", attempt).
			Str("endpoint", endpoint).
			Msg("connecting to broker")

		conn, err := m.options.dialer(url)
		m.options.observer.ConnectionAttempt(endpoint, err)

		if err == nil {
			return m.connectionOpened(conn, endpoint)
		}

		delay := m.options.backoff.Backoff(attempt)

		m.options.logger.Warn().Err(err).
			Int("attempt", attempt).
			Str("endpoint", endpoint).
			Str("sleep", delay.String()).
			Msg("unable to connect to broker")

		if err := m.options.sleep(ctx, delay); err != nil {
			if m.stopRequested() {
				return ErrManagerClosed
			}

			return err
		}
	}
}

// Run connects, declares the topology and feeds every delivery to handle.
// On an unexpected closure it reconnects after the reconnect delay. It returns
// nil once Stop was called or ctx is done and the connection is closed.
func (m *ConnectionManager) Run(ctx context.Context, handle DeliveryHandler) error {
	defer m.finish()

	for {
		if err := m.Connect(ctx); err != nil {
			if errors.Is(err, ErrManagerClosed) || ctx.Err() != nil {
				return nil
			}

			return err
		}

		session, err := m.setup()
		if err != nil {
			if m.stopRequested() {
				return nil
			}

			m.options.logger.Error().Err(err).Msg("unable to set up consumer, closing connection")
		} else {
			err = m.serve(ctx, session, handle)
		}

		if m.stopRequested() {
			return nil
		}

		m.closeChannel()
		m.closeConnection()

		if err := m.fire(EventConnectionClosed); err != nil {
			return err
		}

		m.logClosure(err)

		if err := m.pause(ctx, m.options.reconnectDelay); err != nil {
			return nil
		}
	}
}

// pause waits for d unless ctx is done or Stop is called first.
func (m *ConnectionManager) pause(ctx context.Context, d time.Duration) error {
	ctx, cancel := m.withStop(ctx)
	defer cancel()

	return m.options.sleep(ctx, d)
}

// Stop cancels the consumer and waits for the broker to confirm, lets the
// in-flight delivery finish and then closes the channel and the connection.
func (m *ConnectionManager) Stop() error {
	m.mu.Lock()

	if m.state.IsClosing() {
		m.mu.Unlock()

		return nil
	}

	from := m.state

	next, err := Transition(m.state, EventStop)
	if err != nil {
		m.mu.Unlock()

		return err
	}

	m.state = next
	ch := m.ch
	m.mu.Unlock()

	m.stopOnce.Do(func() { close(m.stopped) })

	m.options.logger.Info().Str("state", from.String()).Msg("stopping connection manager")

	if ch != nil && from == StateConsuming {
		if err := ch.Cancel(m.options.consumerTag, false); err != nil {
			m.options.logger.Warn().Err(err).Str("consumer_tag", m.options.consumerTag).Msg("unable to cancel consumer")
		} else {
			m.options.logger.Info().Str("consumer_tag", m.options.consumerTag).Msg("consumer cancelled")
		}
	}

	m.processing.Lock()
	defer m.processing.Unlock()

	m.closeChannel()
	m.closeConnection()

	return nil
}

// AcknowledgeMessage acks the envelope.
func (m *ConnectionManager) AcknowledgeMessage(env *Envelope, c Correlation) error {
	if err := env.settle(); err != nil {
		return err
	}

	m.logDisposition(env, c, "ack", false)

	if err := env.acker.Ack(env.DeliveryTag, false); err != nil {
		return fmt.Errorf("failed to ack delivery %d: %w", env.DeliveryTag, err)
	}

	return nil
}

// NackMessage nacks the envelope so that the broker redelivers it.
func (m *ConnectionManager) NackMessage(env *Envelope, c Correlation) error {
	if err := env.settle(); err != nil {
		return err
	}

	m.logDisposition(env, c, "nack", true)

	if err := env.acker.Nack(env.DeliveryTag, false, true); err != nil {
		return fmt.Errorf("failed to nack delivery %d: %w", env.DeliveryTag, err)
	}

	return nil
}

// RejectMessage rejects the envelope, optionally putting it back on the queue.
func (m *ConnectionManager) RejectMessage(env *Envelope, requeue bool, c Correlation) error {
	if err := env.settle(); err != nil {
		return err
	}

	m.logDisposition(env, c, "reject", requeue)

	if err := env.acker.Reject(env.DeliveryTag, requeue); err != nil {
		return fmt.Errorf("failed to reject delivery %d: %w", env.DeliveryTag, err)
	}

	return nil
}

func (m *ConnectionManager) logDisposition(env *Envelope, c Correlation, action string, requeue bool) {
	event := m.options.logger.Info().
		Uint64("delivery_tag", env.DeliveryTag).
		Str("action", action).
		Bool("requeue", requeue)

	if c.TxID != "" {
		event = event.Str("tx_id", c.TxID)
	}

	if c.DeliveryCount > 0 {
		event = event.Int("delivery_count", c.DeliveryCount)
	}

	if c.Action != "" {
		event = event.Str("disposition", string(c.Action))
	}

	event.Msg("settling delivery")
}

func (m *ConnectionManager) beginConnect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.IsClosing() || m.stopRequested() {
		return ErrManagerClosed
	}

	if m.state == StateConnecting {
		return nil
	}

	next, err := Transition(m.state, EventConnect)
	if err != nil {
		return err
	}

	m.state = next

	return nil
}

func (m *ConnectionManager) connectionOpened(conn Connection, endpoint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.IsClosing() {
		_ = conn.Close()

		return ErrManagerClosed
	}

	next, err := Transition(m.state, EventConnectionOpened)
	if err != nil {
		_ = conn.Close()

		return err
	}

	m.state = next
	m.conn = conn
	m.connClosed = conn.NotifyClose(make(chan *amqp.Error, 1))

	m.options.logger.Info().Str("endpoint", endpoint).Msg("connection opened")

	return nil
}

// setup opens the channel and declares exchange, queue and binding, then
// sets the prefetch and starts consuming. Each step waits for the broker.
func (m *ConnectionManager) setup() (*consumeSession, error) {
	m.mu.Lock()
	conn, connClosed := m.conn, m.connClosed
	m.mu.Unlock()

	if conn == nil {
		return nil, ErrManagerClosed
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	session := &consumeSession{
		connClosed: connClosed,
		chClosed:   ch.NotifyClose(make(chan *amqp.Error, 1)),
		cancelled:  ch.NotifyCancel(make(chan string, 1)),
	}

	m.mu.Lock()
	m.ch = ch
	m.mu.Unlock()

	if err := m.fire(EventChannelOpened); err != nil {
		return nil, err
	}

	t := m.topology

	if t.Exchange != "" {
		kind := t.ExchangeType
		if kind == "" {
			kind = amqp.ExchangeTopic
		}

		if err := ch.ExchangeDeclare(t.Exchange, kind, t.Durable, false, false, false, t.ExchangeArguments); err != nil {
			return nil, fmt.Errorf("failed to declare exchange %q: %w", t.Exchange, err)
		}

		m.options.logger.Debug().Str("exchange", t.Exchange).Str("type", kind).Msg("exchange declared")
	}

	if _, err := ch.QueueDeclare(t.Queue, t.Durable, false, false, false, t.QueueArguments); err != nil {
		return nil, fmt.Errorf("failed to declare queue %q: %w", t.Queue, err)
	}

	m.options.logger.Debug().Str("queue", t.Queue).Msg("queue declared")

	if t.Exchange != "" {
		if err := ch.QueueBind(t.Queue, t.BindingKey, t.Exchange, false, nil); err != nil {
			return nil, fmt.Errorf("failed to bind queue %q to %q: %w", t.Queue, t.Exchange, err)
		}

		m.options.logger.Debug().
			Str("queue", t.Queue).
			Str("exchange", t.Exchange).
			Str("binding_key", t.BindingKey).
			Msg("queue bound")
	}

	if err := ch.Qos(defaultPrefetchCount, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set prefetch: %w", err)
	}

	deliveries, err := ch.Consume(t.Queue, m.options.consumerTag, false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to consume from %q: %w", t.Queue, err)
	}

	session.deliveries = deliveries

	if err := m.fire(EventConsumeStarted); err != nil {
		return nil, err
	}

	m.options.logger.Info().
		Str("queue", t.Queue).
		Str("consumer_tag", m.options.consumerTag).
		Msg("consuming")

	return session, nil
}

// serve dispatches deliveries until the connection goes away.
func (m *ConnectionManager) serve(ctx context.Context, s *consumeSession, handle DeliveryHandler) error {
	for {
		select {
		case <-ctx.Done():
			_ = m.Stop()

			return nil

		case amqpErr, ok := <-s.connClosed:
			if !ok || amqpErr == nil {
				return nil
			}

			return amqpErr

		case amqpErr, ok := <-s.chClosed:
			m.closeConnection()

			if !ok || amqpErr == nil {
				return errors.New("channel closed")
			}

			return fmt.Errorf("channel closed: %w", amqpErr)

		case tag := <-s.cancelled:
			m.options.logger.Warn().Str("consumer_tag", tag).Msg("consumer cancelled by broker")
			m.closeChannel()
			m.closeConnection()

			return fmt.Errorf("consumer %s cancelled by broker", tag)

		case d, ok := <-s.deliveries:
			if !ok {
				s.deliveries = nil

				continue
			}

			if m.stopRequested() {
				continue
			}

			m.dispatch(ctx, d, handle)
		}
	}
}

func (m *ConnectionManager) dispatch(ctx context.Context, d amqp.Delivery, handle DeliveryHandler) {
	m.processing.Lock()
	defer m.processing.Unlock()

	handle(context.WithoutCancel(ctx), NewEnvelope(d))
}

func (m *ConnectionManager) logClosure(err error) {
	event := m.options.logger.Warn().Str("sleep", m.options.reconnectDelay.String())

	var amqpErr *amqp.Error
	if errors.As(err, &amqpErr) {
		event = event.Int("code", amqpErr.Code).
			Str("reason", amqpErr.Reason).
			Bool("recover", amqpErr.Recover)
	} else if err != nil {
		event = event.Err(err)
	}

	event.Msg("connection closed, reopening")
}

func (m *ConnectionManager) fire(event LifecycleEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, err := Transition(m.state, event)
	if err != nil {
		return err
	}

	m.state = next

	return nil
}

// finish moves the manager to CLOSED once the run loop exits.
func (m *ConnectionManager) finish() {
	_ = m.Stop()

	m.mu.Lock()
	defer m.mu.Unlock()

	if next, err := Transition(m.state, EventConnectionClosed); err == nil && m.state == StateClosing {
		m.state = next
	}

	m.options.logger.Info().Msg("connection manager stopped")
}

func (m *ConnectionManager) stopRequested() bool {
	select {
	case <-m.stopped:
		return true
	default:
		return false
	}
}

// withStop returns a context which is also cancelled by Stop.
func (m *ConnectionManager) withStop(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		select {
		case <-m.stopped:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

func (m *ConnectionManager) closeChannel() {
	m.mu.Lock()
	ch := m.ch
	m.ch = nil
	m.mu.Unlock()

	if ch == nil {
		return
	}

	if err := ch.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		m.options.logger.Debug().Err(err).Msg("unable to close channel")
	}
}

func (m *ConnectionManager) closeConnection() {
	m.mu.Lock()
	conn := m.conn
	m.conn = nil
	m.mu.Unlock()

	if conn == nil {
		return
	}

	if err := conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		m.options.logger.Debug().Err(err).Msg("unable to close connection")
	}
}
