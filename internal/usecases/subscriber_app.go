package usecases

import (
	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/architeacher/svc-message-relay/internal/infrastructure"
	"github.com/architeacher/svc-message-relay/internal/service"
	"github.com/architeacher/svc-message-relay/internal/shared/decorator"
	"github.com/architeacher/svc-message-relay/internal/usecases/commands"
)

type (
	SubscriberApplication struct {
		Commands SubscriberCommands
	}

	SubscriberCommands struct {
		RelayMessageHandler commands.RelayMessageHandler
	}
)

func NewSubscriberApplication(
	relayService service.RelayService,
	logger infrastructure.Logger,
	tracerProvider otelTrace.TracerProvider,
	metricsClient decorator.MetricsClient,
) *SubscriberApplication {
	return &SubscriberApplication{
		Commands: SubscriberCommands{
			RelayMessageHandler: commands.NewRelayMessageHandler(
				relayService,
				logger,
				tracerProvider,
				metricsClient,
			),
		},
	}
}
