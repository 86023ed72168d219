package runtime

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/architeacher/svc-message-relay/internal/domain"
	"github.com/architeacher/svc-message-relay/internal/usecases/commands"
)

// PublisherCtx injects single messages onto the consumed exchange. Each call
// builds its own dependencies and releases them before returning.
type PublisherCtx struct {
	deps *Dependencies

	shutdownChannel chan os.Signal
}

func NewPublisher(opt ...PublisherOption) *PublisherCtx {
	if len(opt) != 0 {
		pCtx := PublisherCtx{}

		for i := range opt {
			opt[i](&pCtx)
		}

		if pCtx.shutdownChannel == nil {
			pCtx.shutdownChannel = make(chan os.Signal, 1)
		}

		return &pCtx
	}

	return &PublisherCtx{
		shutdownChannel: make(chan os.Signal, 1),
	}
}

// Publish sends cmd and waits for the broker confirmation. SIGINT or SIGTERM
// abort the wait.
func (c *PublisherCtx) Publish(ctx context.Context, cmd commands.PublishMessageCommand) (*domain.PublishResult, error) {
	publishCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.shutdownHook()
	defer signal.Stop(c.shutdownChannel)

	go func() {
		select {
		case <-c.shutdownChannel:
			cancel()
		case <-publishCtx.Done():
		}
	}()

	if err := c.build(publishCtx); err != nil {
		return nil, err
	}

	defer c.cleanup()

	result, err := c.deps.Apps.Publisher.Commands.PublishMessageHandler.Handle(publishCtx, cmd)
	if err != nil {
		return nil, err
	}

	c.deps.logger.Info().
		Str("tx_id", result.TxID).
		Str("routing_key", result.RoutingKey).
		Str("message_id", result.MessageID).
		Msg("message published")

	return result, nil
}

func (c *PublisherCtx) build(ctx context.Context) error {
	deps, err := initializeDependencies(ctx, WithPublisher())
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	c.deps = deps

	return nil
}

func (c *PublisherCtx) shutdownHook() {
	signal.Notify(c.shutdownChannel, syscall.SIGINT, syscall.SIGTERM)
}

func (c *PublisherCtx) cleanup() {
	ctx := context.Background()

	if err := c.deps.Infra.Metrics.Shutdown(ctx); err != nil {
		c.deps.logger.Error().Err(err).Msg("failed to flush metrics")
	}

	if err := c.deps.tracerShutdownFunc(ctx); err != nil {
		c.deps.logger.Error().Err(err).Msg("failed to flush traces")
	}
}
