package queue

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Action is the disposition chosen for one envelope.
type Action string

const (
	ActionAck         Action = "ack"
	ActionNack        Action = "nack"
	ActionRejected    Action = "rejected"
	ActionQuarantined Action = "quarantined"
	ActionRequeued    Action = "requeued"
)

type (
	// Processor holds the business logic applied to each message body.
	// It signals failures with BadMessage, Quarantinable or Retryable errors;
	// any other error is treated as unexpected.
	Processor interface {
		Process(ctx context.Context, body string, txID string) error
	}

	// ProcessorFunc adapts a function to the Processor interface.
	ProcessorFunc func(ctx context.Context, body string, txID string) error

	// Disposer issues broker dispositions for envelopes.
	Disposer interface {
		AcknowledgeMessage(env *Envelope, c Correlation) error
		NackMessage(env *Envelope, c Correlation) error
		RejectMessage(env *Envelope, requeue bool, c Correlation) error
	}

	// QuarantineSink receives messages that need offline inspection.
	// A failed publish must return an error matching ErrPublishMessage.
	QuarantineSink interface {
		Publish(ctx context.Context, msg Message) error
	}

	// Correlation is attached to every disposition log line.
	Correlation struct {
		TxID          string
		DeliveryCount int
		Action        Action
	}
)

func (f ProcessorFunc) Process(ctx context.Context, body string, txID string) error {
	return f(ctx, body, txID)
}

// Consumer turns every envelope into exactly one disposition.
type Consumer struct {
	disposer   Disposer
	quarantine QuarantineSink
	processor  Processor
	options    consumerOptions
}

func NewConsumer(disposer Disposer, quarantine QuarantineSink, processor Processor, opts ...consumerOption) (*Consumer, error) {
	if disposer == nil {
		return nil, errors.New("disposer is required")
	}

	if quarantine == nil {
		return nil, errors.New("quarantine sink is required")
	}

	if processor == nil {
		return nil, errors.New("processor is required")
	}

	options := defaultConsumerOptions()
	for _, opt := range opts {
		opt(&options)
	}

	return &Consumer{
		disposer:   disposer,
		quarantine: quarantine,
		processor:  processor,
		options:    options,
	}, nil
}

// HandleDelivery resolves env. It never returns an error and never panics;
// every path ends in an ack, nack or reject.
func (c *Consumer) HandleDelivery(ctx context.Context, env *Envelope) {
	logger := c.options.logger

	count, err := DeliveryCount(env.Headers)
	if err != nil {
		txID, _ := TxID(env.Headers)
		c.dispose(ctx, env, Correlation{TxID: txID, Action: ActionRejected}, err,
			"bad message properties - no delivery count")

		return
	}

	txID, err := TxID(env.Headers)
	if err != nil && c.options.requireTxID {
		c.dispose(ctx, env, Correlation{DeliveryCount: count, Action: ActionRejected}, err,
			"bad message properties - no tx_id")

		return
	}

	logger.Info().
		Str("queue", c.options.queueName).
		Uint64("delivery_tag", env.DeliveryTag).
		Str("app_id", env.AppID).
		Str("tx_id", txID).
		Int("delivery_count", count).
		Msg("received message")

	corr := Correlation{TxID: txID, DeliveryCount: count}

	err = c.process(ctx, env, txID)

	switch {
	case err == nil:
		corr.Action = ActionAck
		c.dispose(ctx, env, corr, nil, "processed")

	case errors.Is(err, ErrQuarantinable):
		c.quarantineMessage(ctx, env, corr, err)

	case errors.Is(err, ErrBadMessage):
		corr.Action = ActionRejected
		c.dispose(ctx, env, corr, err, "bad message, rejected")

	case errors.Is(err, ErrRetryable):
		corr.Action = ActionNack
		c.dispose(ctx, env, corr, err, "failed to process, nack")

	default:
		corr.Action = ActionNack
		c.dispose(ctx, env, corr, err, "unexpected error, failed to process, nack")
	}
}

func (c *Consumer) process(ctx context.Context, env *Envelope, txID string) (err error) {
	if !utf8.Valid(env.Body) {
		return BadMessage(ErrInvalidBodyEncoding)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("processor panicked: %v", r)
		}
	}()

	return c.processor.Process(ctx, string(env.Body), txID)
}

func (c *Consumer) quarantineMessage(ctx context.Context, env *Envelope, corr Correlation, cause error) {
	msg := Message{
		Body:        env.Body,
		ContentType: env.ContentType,
	}

	if corr.TxID != "" {
		msg.Headers = amqp.Table{TxIDHeader: corr.TxID}
	}

	if err := c.quarantine.Publish(ctx, msg); err != nil {
		corr.Action = ActionRequeued
		c.dispose(ctx, env, corr, errors.Join(cause, err),
			"unable to publish to quarantine, rejecting and requeuing")

		return
	}

	corr.Action = ActionQuarantined
	c.dispose(ctx, env, corr, cause, "quarantined")
}

func (c *Consumer) dispose(ctx context.Context, env *Envelope, corr Correlation, cause error, msg string) {
	var err error

	switch corr.Action {
	case ActionAck:
		err = c.disposer.AcknowledgeMessage(env, corr)
	case ActionNack:
		err = c.disposer.NackMessage(env, corr)
	case ActionRequeued:
		err = c.disposer.RejectMessage(env, true, corr)
	default:
		err = c.disposer.RejectMessage(env, false, corr)
	}

	c.options.observer.Disposition(ctx, corr.Action)

	event := c.options.logger.Debug()
	if cause != nil {
		event = c.options.logger.Warn().Err(cause)
	}

	event.
		Uint64("delivery_tag", env.DeliveryTag).
		Str("tx_id", corr.TxID).
		Int("delivery_count", corr.DeliveryCount).
		Str("action", string(corr.Action)).
		Msg(msg)

	if err != nil {
		c.options.logger.Error().Err(err).
			Uint64("delivery_tag", env.DeliveryTag).
			Str("tx_id", corr.TxID).
			Str("action", string(corr.Action)).
			Msg("unable to settle delivery")
	}
}
