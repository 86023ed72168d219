package infrastructure

import (
	"context"
	"errors"

	"github.com/sony/gobreaker"

	"github.com/architeacher/svc-message-relay/internal/config"
	"github.com/architeacher/svc-message-relay/pkg/queue"
)

type (
	// Publisher is the publishing side of queue.FailoverPublisher.
	Publisher interface {
		Publish(ctx context.Context, msg queue.Message) error
	}

	// BreakerPublisher stops hammering unreachable brokers once publishes keep
	// failing. While the breaker is open every publish fails fast with a
	// *queue.PublishMessageError, so callers keep a single failure kind.
	BreakerPublisher struct {
		next    Publisher
		target  string
		breaker *gobreaker.CircuitBreaker
	}
)

func NewBreakerPublisher(next Publisher, target string, cfg config.CircuitBreakerConfig, logger Logger) *BreakerPublisher {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	settings := gobreaker.Settings{
		Name:        target,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			// A context cancelled by the caller says nothing about the broker.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("target", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("publish circuit breaker state changed")
		},
	}

	return &BreakerPublisher{
		next:    next,
		target:  target,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

func (p *BreakerPublisher) Publish(ctx context.Context, msg queue.Message) error {
	_, err := p.breaker.Execute(func() (interface{}, error) {
		return nil, p.next.Publish(ctx, msg)
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &queue.PublishMessageError{
			Target: p.target,
			Reason: "circuit breaker open",
			Cause:  err,
		}
	}

	return err
}

// State reports the breaker state, used by the readiness probe.
func (p *BreakerPublisher) State() gobreaker.State {
	return p.breaker.State()
}
