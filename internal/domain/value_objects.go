package domain

import (
	"sort"
	"strings"
)

type (
	// MessageType names the kind of event a relayed message carries.
	MessageType string

	// RoutingTable maps message types onto routing keys of the output exchange.
	RoutingTable struct {
		routes map[MessageType]string
	}
)

func (t MessageType) String() string {
	return string(t)
}

// NewRoutingTable validates the configured routes. Neither side may be blank
// and routing keys must not contain wildcards.
func NewRoutingTable(routes map[string]string) (*RoutingTable, error) {
	table := &RoutingTable{routes: make(map[MessageType]string, len(routes))}

	for messageType, routingKey := range routes {
		messageType = strings.TrimSpace(messageType)
		routingKey = strings.TrimSpace(routingKey)

		if messageType == "" || routingKey == "" || strings.ContainsAny(routingKey, "*#") {
			return nil, NewInvalidRouteError(messageType, routingKey)
		}

		table.routes[MessageType(messageType)] = routingKey
	}

	return table, nil
}

// Resolve returns the routing key for the given message type.
func (r *RoutingTable) Resolve(messageType MessageType) (string, error) {
	routingKey, ok := r.routes[messageType]
	if !ok {
		return "", NewUnknownMessageTypeError(messageType)
	}

	return routingKey, nil
}

// Types lists the routed message types in lexical order.
func (r *RoutingTable) Types() []string {
	types := make([]string, 0, len(r.routes))
	for messageType := range r.routes {
		types = append(types, messageType.String())
	}

	sort.Strings(types)

	return types
}

func (r *RoutingTable) Len() int {
	return len(r.routes)
}
