package commands

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/architeacher/svc-message-relay/internal/domain"
	"github.com/architeacher/svc-message-relay/internal/infrastructure"
	"github.com/architeacher/svc-message-relay/internal/service"
	"github.com/architeacher/svc-message-relay/internal/shared/decorator"
)

type (
	RelayMessageCommand struct {
		Body string
		TxID string
	}

	RelayMessageHandler decorator.CommandHandler[RelayMessageCommand, *domain.RelayResult]

	relayMessageHandler struct {
		relayService service.RelayService
	}
)

func NewRelayMessageHandler(
	relayService service.RelayService,
	logger infrastructure.Logger,
	tracerProvider trace.TracerProvider,
	metricsClient decorator.MetricsClient,
) RelayMessageHandler {
	return decorator.ApplyCommandDecorators[RelayMessageCommand, *domain.RelayResult](
		relayMessageHandler{relayService: relayService},
		logger,
		tracerProvider,
		metricsClient,
	)
}

func (h relayMessageHandler) Handle(ctx context.Context, cmd RelayMessageCommand) (*domain.RelayResult, error) {
	return h.relayService.Relay(ctx, cmd.Body, cmd.TxID)
}
