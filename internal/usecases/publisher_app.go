package usecases

import (
	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/architeacher/svc-message-relay/internal/infrastructure"
	"github.com/architeacher/svc-message-relay/internal/service"
	"github.com/architeacher/svc-message-relay/internal/shared/decorator"
	"github.com/architeacher/svc-message-relay/internal/usecases/commands"
)

type (
	PublisherApplication struct {
		Commands PublisherCommands
	}

	PublisherCommands struct {
		PublishMessageHandler commands.PublishMessageHandler
	}
)

func NewPublisherApplication(
	publisherService service.PublisherService,
	logger infrastructure.Logger,
	tracerProvider otelTrace.TracerProvider,
	metricsClient decorator.MetricsClient,
) *PublisherApplication {
	return &PublisherApplication{
		Commands: PublisherCommands{
			PublishMessageHandler: commands.NewPublishMessageHandler(
				publisherService,
				logger,
				tracerProvider,
				metricsClient,
			),
		},
	}
}
