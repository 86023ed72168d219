package queue

import (
	"context"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/mock"
)

type MockConnection struct {
	mock.Mock
}

func (m *MockConnection) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockConnection) Channel() (Channel, error) {
	args := m.Called()
	ch, _ := args.Get(0).(Channel)
	return ch, args.Error(1)
}

func (m *MockConnection) NotifyClose(receiver chan *amqp.Error) chan *amqp.Error {
	args := m.Called(receiver)
	return args.Get(0).(chan *amqp.Error)
}

func (m *MockConnection) IsClosed() bool {
	args := m.Called()
	return args.Bool(0)
}

type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockChannel) Cancel(consumer string, noWait bool) error {
	args := m.Called(consumer, noWait)
	return args.Error(0)
}

func (m *MockChannel) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	callArgs := m.Called(queue, consumer, autoAck, exclusive, noLocal, noWait, args)
	deliveries, _ := callArgs.Get(0).(chan amqp.Delivery)
	return deliveries, callArgs.Error(1)
}

func (m *MockChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	callArgs := m.Called(name, kind, durable, autoDelete, internal, noWait, args)
	return callArgs.Error(0)
}

func (m *MockChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	callArgs := m.Called(name, durable, autoDelete, exclusive, noWait, args)
	return callArgs.Get(0).(amqp.Queue), callArgs.Error(1)
}

func (m *MockChannel) QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error {
	callArgs := m.Called(name, key, exchange, noWait, args)
	return callArgs.Error(0)
}

func (m *MockChannel) Qos(prefetchCount, prefetchSize int, global bool) error {
	args := m.Called(prefetchCount, prefetchSize, global)
	return args.Error(0)
}

func (m *MockChannel) Confirm(noWait bool) error {
	args := m.Called(noWait)
	return args.Error(0)
}

func (m *MockChannel) NotifyClose(c chan *amqp.Error) chan *amqp.Error {
	args := m.Called(c)
	return args.Get(0).(chan *amqp.Error)
}

func (m *MockChannel) NotifyCancel(c chan string) chan string {
	args := m.Called(c)
	return args.Get(0).(chan string)
}

func (m *MockChannel) NotifyPublish(confirm chan amqp.Confirmation) chan amqp.Confirmation {
	args := m.Called(confirm)
	return args.Get(0).(chan amqp.Confirmation)
}

func (m *MockChannel) NotifyReturn(c chan amqp.Return) chan amqp.Return {
	args := m.Called(c)
	return args.Get(0).(chan amqp.Return)
}

func (m *MockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(ctx, exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

type MockAcknowledger struct {
	mock.Mock
}

func (m *MockAcknowledger) Ack(tag uint64, multiple bool) error {
	args := m.Called(tag, multiple)
	return args.Error(0)
}

func (m *MockAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	args := m.Called(tag, multiple, requeue)
	return args.Error(0)
}

func (m *MockAcknowledger) Reject(tag uint64, requeue bool) error {
	args := m.Called(tag, requeue)
	return args.Error(0)
}

type MockDisposer struct {
	mock.Mock
}

func (m *MockDisposer) AcknowledgeMessage(env *Envelope, c Correlation) error {
	args := m.Called(env, c)
	return args.Error(0)
}

func (m *MockDisposer) NackMessage(env *Envelope, c Correlation) error {
	args := m.Called(env, c)
	return args.Error(0)
}

func (m *MockDisposer) RejectMessage(env *Envelope, requeue bool, c Correlation) error {
	args := m.Called(env, requeue, c)
	return args.Error(0)
}

type MockQuarantineSink struct {
	mock.Mock
}

func (m *MockQuarantineSink) Publish(ctx context.Context, msg Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type MockProcessor struct {
	mock.Mock
}

func (m *MockProcessor) Process(ctx context.Context, body string, txID string) error {
	args := m.Called(ctx, body, txID)
	return args.Error(0)
}

// recordingObserver collects every notification it receives.
type recordingObserver struct {
	mu        sync.Mutex
	attempts  []error
	actions   []Action
	published []error
}

func (o *recordingObserver) ConnectionAttempt(_ string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.attempts = append(o.attempts, err)
}

func (o *recordingObserver) Disposition(_ context.Context, action Action) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.actions = append(o.actions, action)
}

func (o *recordingObserver) Published(_ context.Context, _ string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.published = append(o.published, err)
}

func (o *recordingObserver) Actions() []Action {
	o.mu.Lock()
	defer o.mu.Unlock()

	return append([]Action(nil), o.actions...)
}

func (o *recordingObserver) Attempts() []error {
	o.mu.Lock()
	defer o.mu.Unlock()

	return append([]error(nil), o.attempts...)
}

// dialSequence returns a Dialer serving the given results in order and
// recording the dialled URLs.
func dialSequence(results ...dialResult) (Dialer, *[]string) {
	var (
		mu    sync.Mutex
		urls  []string
		index int
	)

	dial := func(url string) (Connection, error) {
		mu.Lock()
		defer mu.Unlock()

		urls = append(urls, url)

		if index >= len(results) {
			return nil, amqp.ErrClosed
		}

		res := results[index]
		index++

		if res.err != nil {
			return nil, res.err
		}

		return res.conn, nil
	}

	return dial, &urls
}

type dialResult struct {
	conn Connection
	err  error
}

func noSleep(context.Context, time.Duration) error {
	return nil
}

func withSleep(fn sleepFunc) managerOption {
	return func(o *managerOptions) {
		o.sleep = fn
	}
}
