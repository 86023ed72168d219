package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// RelayMessage is a delivery accepted for relaying. Payload keeps the
// original bytes so that forwarding does not re-encode them.
type RelayMessage struct {
	Type    MessageType
	TxID    string
	Payload []byte
}

type envelopeHead struct {
	Type string `json:"type"`
}

// ParseRelayMessage validates body and extracts the message type. A limit of
// zero or less disables the size check.
func ParseRelayMessage(body, txID string, limit int) (RelayMessage, error) {
	if limit > 0 && len(body) > limit {
		return RelayMessage{}, NewPayloadTooLargeError(len(body), limit)
	}

	trimmed := bytes.TrimSpace([]byte(body))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return RelayMessage{}, NewInvalidPayloadError(errNotAnObject)
	}

	var head envelopeHead
	if err := json.Unmarshal(trimmed, &head); err != nil {
		return RelayMessage{}, NewInvalidPayloadError(err)
	}

	messageType := strings.TrimSpace(head.Type)
	if messageType == "" {
		return RelayMessage{}, NewMissingMessageTypeError()
	}

	return RelayMessage{
		Type:    MessageType(messageType),
		TxID:    txID,
		Payload: []byte(body),
	}, nil
}

type (
	// RelayResult describes a forwarded message.
	RelayResult struct {
		Type       MessageType
		RoutingKey string
		MessageID  string
	}

	// PublishResult describes a message injected by an operator.
	PublishResult struct {
		TxID       string
		RoutingKey string
		MessageID  string
	}
)

// WithMessageType sets the type field of the JSON object in body, keeping
// every other field as is.
func WithMessageType(body string, messageType MessageType) (string, error) {
	trimmed := bytes.TrimSpace([]byte(body))
	if len(trimmed) == 0 {
		trimmed = []byte("{}")
	}

	if trimmed[0] != '{' {
		return "", NewInvalidPayloadError(errNotAnObject)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return "", NewInvalidPayloadError(err)
	}

	if fields == nil {
		fields = map[string]json.RawMessage{}
	}

	encodedType, err := json.Marshal(messageType.String())
	if err != nil {
		return "", NewInvalidPayloadError(err)
	}

	fields["type"] = encodedType

	out, err := json.Marshal(fields)
	if err != nil {
		return "", NewInvalidPayloadError(err)
	}

	return string(out), nil
}
