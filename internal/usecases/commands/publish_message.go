package commands

import (
	"context"

	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/architeacher/svc-message-relay/internal/domain"
	"github.com/architeacher/svc-message-relay/internal/infrastructure"
	"github.com/architeacher/svc-message-relay/internal/service"
	"github.com/architeacher/svc-message-relay/internal/shared/decorator"
)

type (
	PublishMessageCommand struct {
		Body       string
		TxID       string
		RoutingKey string
	}

	PublishMessageHandler decorator.CommandHandler[PublishMessageCommand, *domain.PublishResult]

	publishMessageHandler struct {
		publisherService service.PublisherService
	}
)

func NewPublishMessageHandler(
	publisherService service.PublisherService,
	logger infrastructure.Logger,
	tracerProvider otelTrace.TracerProvider,
	metricsClient decorator.MetricsClient,
) PublishMessageHandler {
	return decorator.ApplyCommandDecorators[PublishMessageCommand, *domain.PublishResult](
		publishMessageHandler{publisherService: publisherService},
		logger,
		tracerProvider,
		metricsClient,
	)
}

func (h publishMessageHandler) Handle(ctx context.Context, cmd PublishMessageCommand) (*domain.PublishResult, error) {
	return h.publisherService.Publish(ctx, cmd.Body, cmd.TxID, cmd.RoutingKey)
}
