package queue

import (
	"errors"
	"fmt"
)

var (
	// ErrBadMessage marks a message whose content can never be processed.
	ErrBadMessage = errors.New("bad message")
	// ErrQuarantinable marks an ambiguous failure that needs offline inspection.
	ErrQuarantinable = errors.New("quarantinable message")
	// ErrRetryable marks a transient failure of an otherwise valid message.
	ErrRetryable = errors.New("retryable failure")
	// ErrPublishMessage is matched by every error returned from FailoverPublisher.Publish.
	ErrPublishMessage = errors.New("unable to publish message")

	ErrMissingDeliveryCount = errors.New("no x-delivery-count in header")
	ErrMissingTxID          = errors.New("no tx_id in header")
	ErrInvalidBodyEncoding  = errors.New("message body is not valid utf-8")

	ErrNoEndpoints        = errors.New("no broker endpoints configured")
	ErrEndpointsExhausted = errors.New("unable to connect to any broker endpoint")
	ErrManagerClosed      = errors.New("connection manager is closed")
	ErrAlreadySettled     = errors.New("delivery already settled")
	ErrPublishNacked      = errors.New("broker negatively acknowledged the message")
	ErrUnroutable         = errors.New("message returned as unroutable")
	ErrConfirmTimeout     = errors.New("timed out waiting for publish confirmation")
	ErrChannelClosed      = errors.New("channel closed before publish was confirmed")
)

type (
	// ProcessingError is returned by a Processor to select a disposition.
	// Kind is one of ErrBadMessage, ErrQuarantinable or ErrRetryable.
	ProcessingError struct {
		Kind  error
		Cause error
	}

	// PublishMessageError folds every publish failure into a single kind.
	PublishMessageError struct {
		Target   string
		Endpoint string
		Reason   string
		Cause    error
	}

	InvalidStateTransitionError struct {
		From  ConnectionState
		Event LifecycleEvent
	}
)

// BadMessage wraps cause so that the consumer rejects the message without requeue.
func BadMessage(cause error) error {
	return &ProcessingError{Kind: ErrBadMessage, Cause: cause}
}

// Quarantinable wraps cause so that the consumer quarantines the message.
func Quarantinable(cause error) error {
	return &ProcessingError{Kind: ErrQuarantinable, Cause: cause}
}

// Retryable wraps cause so that the consumer nacks the message for redelivery.
func Retryable(cause error) error {
	return &ProcessingError{Kind: ErrRetryable, Cause: cause}
}

func (e *ProcessingError) Error() string {
	if e.Cause == nil {
		return e.Kind.Error()
	}

	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Cause.Error())
}

func (e *ProcessingError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Cause}
}

func (e *PublishMessageError) Error() string {
	msg := fmt.Sprintf("%s to %s", ErrPublishMessage.Error(), e.Target)
	if e.Endpoint != "" {
		msg = fmt.Sprintf("%s via %s", msg, e.Endpoint)
	}

	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}

	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Cause.Error())
	}

	return msg
}

func (e *PublishMessageError) Unwrap() error {
	return e.Cause
}

func (e *PublishMessageError) Is(target error) bool {
	return target == ErrPublishMessage
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("invalid state transition from %s on %s", e.From, e.Event)
}
