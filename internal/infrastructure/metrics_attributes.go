package infrastructure

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
)

const (
	httpMethodKey     = "http.method"
	httpPathKey       = "http.path"
	httpStatusCodeKey = "http.status_code"
	statusKey         = "status"
	actionKey         = "messaging.action"
	endpointKey       = "messaging.endpoint"
	targetKey         = "messaging.destination"
	messageTypeKey    = "message.type"
	outcomeKey        = "outcome"
	commandKey        = "command"
)

func HTTPMethodAttr(method string) attribute.KeyValue {
	return attribute.String(httpMethodKey, method)
}

func HTTPPathAttr(path string) attribute.KeyValue {
	return attribute.String(httpPathKey, path)
}

func HTTPStatusCodeAttr(code int) attribute.KeyValue {
	return attribute.String(httpStatusCodeKey, fmt.Sprintf("%d", code))
}

func StatusAttr(status string) attribute.KeyValue {
	return attribute.String(statusKey, status)
}

func ActionAttr(action string) attribute.KeyValue {
	return attribute.String(actionKey, action)
}

// EndpointAttr expects an already sanitized broker URL.
func EndpointAttr(endpoint string) attribute.KeyValue {
	return attribute.String(endpointKey, endpoint)
}

func TargetAttr(target string) attribute.KeyValue {
	return attribute.String(targetKey, target)
}

func MessageTypeAttr(messageType string) attribute.KeyValue {
	return attribute.String(messageTypeKey, messageType)
}

func OutcomeAttr(outcome string) attribute.KeyValue {
	return attribute.String(outcomeKey, outcome)
}

func CommandAttr(command string) attribute.KeyValue {
	return attribute.String(commandKey, command)
}
