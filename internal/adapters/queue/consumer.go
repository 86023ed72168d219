package queue

import (
	"context"
	"fmt"

	"github.com/architeacher/svc-message-relay/internal/infrastructure"
	"github.com/architeacher/svc-message-relay/internal/ports"
	"github.com/architeacher/svc-message-relay/pkg/queue"
)

// Ensure Consumer implements the BackgroundProcessor interface
var _ ports.BackgroundProcessor = (*Consumer)(nil)

type (
	// DeliverySource feeds deliveries until it is stopped.
	DeliverySource interface {
		Run(ctx context.Context, handle queue.DeliveryHandler) error
		Stop() error
	}

	// Consumer drives the consuming connection and applies the disposition
	// policy to each delivery.
	Consumer struct {
		source  DeliverySource
		handler queue.DeliveryHandler
		logger  infrastructure.Logger
	}
)

func NewConsumer(source DeliverySource, handler queue.DeliveryHandler, logger infrastructure.Logger) *Consumer {
	return &Consumer{
		source:  source,
		handler: handler,
		logger:  logger,
	}
}

// Start blocks until ctx is done or Stop is called.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info().Msg("starting consumer")

	if err := c.source.Run(ctx, c.handler); err != nil {
		return fmt.Errorf("consumer stopped: %w", err)
	}

	c.logger.Info().Msg("consumer shutting down")

	return nil
}

// Stop lets the in-flight delivery finish and closes the connection.
func (c *Consumer) Stop() error {
	return c.source.Stop()
}
