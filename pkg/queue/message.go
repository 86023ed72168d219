package queue

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync/atomic"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	DeliveryCountHeader = "x-delivery-count"
	TxIDHeader          = "tx_id"
)

// Envelope is one inbound delivery. Exactly one disposition may be issued for it.
type Envelope struct {
	DeliveryTag uint64
	Headers     amqp.Table
	AppID       string
	ContentType string
	Body        []byte
	Redelivered bool

	acker   amqp.Acknowledger
	settled atomic.Bool
}

// NewEnvelope wraps an amqp delivery.
func NewEnvelope(d amqp.Delivery) *Envelope {
	return &Envelope{
		DeliveryTag: d.DeliveryTag,
		Headers:     d.Headers,
		AppID:       d.AppId,
		ContentType: d.ContentType,
		Body:        d.Body,
		Redelivered: d.Redelivered,
		acker:       d.Acknowledger,
	}
}

// settle marks the envelope as resolved. It fails on every call but the first.
func (e *Envelope) settle() error {
	if e.acker == nil {
		return errors.New("delivery has no acknowledger")
	}

	if !e.settled.CompareAndSwap(false, true) {
		return ErrAlreadySettled
	}

	return nil
}

// Settled reports whether a disposition was already issued.
func (e *Envelope) Settled() bool {
	return e.settled.Load()
}

// DeliveryCount returns the broker redelivery counter plus one.
func DeliveryCount(headers amqp.Table) (int, error) {
	raw, ok := headers[DeliveryCountHeader]
	if !ok || raw == nil {
		return 0, ErrMissingDeliveryCount
	}

	var count int64

	switch v := raw.(type) {
	case int:
		count = int64(v)
	case int8:
		count = int64(v)
	case int16:
		count = int64(v)
	case int32:
		count = int64(v)
	case int64:
		count = v
	case uint8:
		count = int64(v)
	case uint16:
		count = int64(v)
	case uint32:
		count = int64(v)
	case uint64:
		if v > math.MaxInt32 {
			return 0, fmt.Errorf("%w: %d is out of range", ErrMissingDeliveryCount, v)
		}

		count = int64(v)
	case float32:
		return wholeCount(float64(v))
	case float64:
		return wholeCount(v)
	case string:
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrMissingDeliveryCount, v)
		}

		count = parsed
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrMissingDeliveryCount, raw)
	}

	return int(count) + 1, nil
}

// wholeCount accepts counters sent as floating point numbers as long as they
// hold a whole value.
func wholeCount(v float64) (int, error) {
	if v != math.Trunc(v) || v < 0 || v > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %v is not a whole number", ErrMissingDeliveryCount, v)
	}

	return int(v) + 1, nil
}

// TxID returns the correlation id carried in the tx_id header.
func TxID(headers amqp.Table) (string, error) {
	raw, ok := headers[TxIDHeader]
	if !ok || raw == nil {
		return "", ErrMissingTxID
	}

	var txID string

	switch v := raw.(type) {
	case string:
		txID = v
	case []byte:
		txID = string(v)
	default:
		return "", fmt.Errorf("%w: unsupported type %T", ErrMissingTxID, raw)
	}

	if txID == "" {
		return "", ErrMissingTxID
	}

	return txID, nil
}
