package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPayload     = errors.New("invalid message payload")
	ErrPayloadTooLarge    = errors.New("message payload too large")
	ErrMissingMessageType = errors.New("message type is missing")
	ErrUnknownMessageType = errors.New("no route for message type")
	ErrInvalidRoute       = errors.New("invalid route")
)

type (
	DomainError struct {
		Code    string
		Message string
		Cause   error
		Details map[string]any
	}
)

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Cause.Error())
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

func NewDomainError(code, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Details: make(map[string]any),
	}
}

func (e *DomainError) WithDetails(key string, value any) *DomainError {
	e.Details[key] = value
	return e
}

func NewInvalidPayloadError(cause error) *DomainError {
	return NewDomainError(
		"INVALID_PAYLOAD",
		"Message payload is not a JSON object",
		fmt.Errorf("%w: %w", ErrInvalidPayload, cause),
	)
}

func NewPayloadTooLargeError(size, limit int) *DomainError {
	return NewDomainError(
		"PAYLOAD_TOO_LARGE",
		fmt.Sprintf("Message payload of %d bytes exceeds %d bytes", size, limit),
		ErrPayloadTooLarge,
	).WithDetails("size", size).WithDetails("limit", limit)
}

func NewMissingMessageTypeError() *DomainError {
	return NewDomainError(
		"MISSING_MESSAGE_TYPE",
		"Message payload has no type",
		ErrMissingMessageType,
	)
}

func NewUnknownMessageTypeError(messageType MessageType) *DomainError {
	return NewDomainError(
		"UNKNOWN_MESSAGE_TYPE",
		fmt.Sprintf("No route configured for message type %q", messageType),
		ErrUnknownMessageType,
	).WithDetails("type", messageType.String())
}

func NewInvalidRouteError(messageType, routingKey string) *DomainError {
	return NewDomainError(
		"INVALID_ROUTE",
		fmt.Sprintf("Route %q -> %q is not valid", messageType, routingKey),
		ErrInvalidRoute,
	).WithDetails("type", messageType).WithDetails("routing_key", routingKey)
}

var errNotAnObject = errors.New("expected a JSON object")
