package queue

import (
	"context"
	"errors"
	"time"

	"github.com/architeacher/svc-message-relay/internal/domain"
	"github.com/architeacher/svc-message-relay/internal/infrastructure"
	"github.com/architeacher/svc-message-relay/internal/usecases"
	"github.com/architeacher/svc-message-relay/internal/usecases/commands"
	"github.com/architeacher/svc-message-relay/pkg/queue"
)

// Ensure RelayWorker implements the Processor interface
var _ queue.Processor = (*RelayWorker)(nil)

// RelayWorker runs the relay command for each delivery and translates its
// outcome into the consumer error taxonomy.
type RelayWorker struct {
	app     *usecases.SubscriberApplication
	logger  infrastructure.Logger
	metrics infrastructure.Metrics
}

func NewRelayWorker(
	app *usecases.SubscriberApplication,
	logger infrastructure.Logger,
	metrics infrastructure.Metrics,
) *RelayWorker {
	return &RelayWorker{
		app:     app,
		logger:  logger,
		metrics: metrics,
	}
}

func (w *RelayWorker) Process(ctx context.Context, body, txID string) error {
	start := time.Now()
	defer func() {
		w.metrics.RecordProcessingTime(ctx, time.Since(start))
	}()

	result, err := w.app.Commands.RelayMessageHandler.Handle(ctx, commands.RelayMessageCommand{
		Body: body,
		TxID: txID,
	})
	if err != nil {
		w.logger.Warn().Err(err).Str("tx_id", txID).Msg("failed to relay message")

		return classify(err)
	}

	w.logger.Debug().
		Str("tx_id", txID).
		Str("type", result.Type.String()).
		Str("routing_key", result.RoutingKey).
		Msg("message relayed")

	return nil
}

// classify maps relay failures onto dispositions: malformed payloads are
// rejected, unroutable types are quarantined and publish failures are retried.
func classify(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidPayload),
		errors.Is(err, domain.ErrPayloadTooLarge),
		errors.Is(err, domain.ErrMissingMessageType):
		return queue.BadMessage(err)
	case errors.Is(err, domain.ErrUnknownMessageType):
		return queue.Quarantinable(err)
	case errors.Is(err, queue.ErrPublishMessage):
		return queue.Retryable(err)
	default:
		return err
	}
}
