package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/architeacher/svc-message-relay/internal/domain"
	"github.com/architeacher/svc-message-relay/internal/infrastructure"
	"github.com/architeacher/svc-message-relay/internal/ports"
	"github.com/architeacher/svc-message-relay/pkg/queue"
)

const (
	contentTypeJSON = "application/json"

	// MessageTypeHeader carries the relayed message type on forwarded messages.
	MessageTypeHeader = "x-relay-type"

	OutcomeForwarded  = "forwarded"
	OutcomeInvalid    = "invalid"
	OutcomeUnroutable = "unroutable"
	OutcomeFailed     = "failed"

	unknownType = "unknown"
)

type (
	RelayService interface {
		Relay(ctx context.Context, body, txID string) (*domain.RelayResult, error)
	}

	relayService struct {
		routes       *domain.RoutingTable
		publisher    ports.MessagePublisher
		maxBodyBytes int
		mandatory    bool
		logger       infrastructure.Logger
		metrics      infrastructure.Metrics
	}

	RelayOptions struct {
		MaxBodyBytes int
		Mandatory    bool
	}
)

func NewRelayService(
	routes *domain.RoutingTable,
	publisher ports.MessagePublisher,
	opts RelayOptions,
	logger infrastructure.Logger,
	metrics infrastructure.Metrics,
) RelayService {
	return &relayService{
		routes:       routes,
		publisher:    publisher,
		maxBodyBytes: opts.MaxBodyBytes,
		mandatory:    opts.Mandatory,
		logger:       logger,
		metrics:      metrics,
	}
}

// Relay validates body, resolves its route and forwards it to the output
// exchange. Validation failures are returned as *domain.DomainError, forward
// failures keep the *queue.PublishMessageError in the chain.
func (s *relayService) Relay(ctx context.Context, body, txID string) (*domain.RelayResult, error) {
	msg, err := domain.ParseRelayMessage(body, txID, s.maxBodyBytes)
	if err != nil {
		s.metrics.RecordRelayedMessage(ctx, unknownType, OutcomeInvalid)

		return nil, err
	}

	routingKey, err := s.routes.Resolve(msg.Type)
	if err != nil {
		s.metrics.RecordRelayedMessage(ctx, msg.Type.String(), OutcomeUnroutable)

		return nil, err
	}

	headers := amqp.Table{MessageTypeHeader: msg.Type.String()}
	if msg.TxID != "" {
		headers[queue.TxIDHeader] = msg.TxID
	}

	messageID := uuid.NewString()

	err = s.publisher.Publish(ctx, queue.Message{
		Body:        msg.Payload,
		ContentType: contentTypeJSON,
		Headers:     headers,
		MessageID:   messageID,
		RoutingKey:  routingKey,
		Mandatory:   s.mandatory,
	})
	if err != nil {
		s.metrics.RecordRelayedMessage(ctx, msg.Type.String(), OutcomeFailed)

		return nil, fmt.Errorf("failed to forward %s message: %w", msg.Type, err)
	}

	s.metrics.RecordRelayedMessage(ctx, msg.Type.String(), OutcomeForwarded)

	s.logger.Info().
		Str("tx_id", msg.TxID).
		Str("type", msg.Type.String()).
		Str("routing_key", routingKey).
		Str("message_id", messageID).
		Msg("message forwarded")

	return &domain.RelayResult{
		Type:       msg.Type,
		RoutingKey: routingKey,
		MessageID:  messageID,
	}, nil
}
