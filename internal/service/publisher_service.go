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

type (
	// PublisherService injects messages into the relay input.
	PublisherService interface {
		Publish(ctx context.Context, body, txID, routingKey string) (*domain.PublishResult, error)
	}

	publisherService struct {
		publisher    ports.MessagePublisher
		maxBodyBytes int
		logger       infrastructure.Logger
	}
)

func NewPublisherService(
	publisher ports.MessagePublisher,
	maxBodyBytes int,
	logger infrastructure.Logger,
) PublisherService {
	return publisherService{
		publisher:    publisher,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

// Publish validates body the same way the relay does, so that nothing is
// injected that would be rejected on arrival. An empty txID is generated and an
// empty routingKey defaults to the message type.
func (s publisherService) Publish(ctx context.Context, body, txID, routingKey string) (*domain.PublishResult, error) {
	if txID == "" {
		txID = uuid.NewString()
	}

	msg, err := domain.ParseRelayMessage(body, txID, s.maxBodyBytes)
	if err != nil {
		return nil, err
	}

	if routingKey == "" {
		routingKey = msg.Type.String()
	}

	messageID := uuid.NewString()

	err = s.publisher.Publish(ctx, queue.Message{
		Body:        msg.Payload,
		ContentType: contentTypeJSON,
		Headers: amqp.Table{
			queue.TxIDHeader:          txID,
			queue.DeliveryCountHeader: int32(0),
		},
		MessageID:  messageID,
		RoutingKey: routingKey,
		Mandatory:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to publish message %s: %w", txID, err)
	}

	s.logger.Info().
		Str("tx_id", txID).
		Str("routing_key", routingKey).
		Str("message_id", messageID).
		Msg("message published")

	return &domain.PublishResult{
		TxID:       txID,
		RoutingKey: routingKey,
		MessageID:  messageID,
	}, nil
}
