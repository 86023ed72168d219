package adapters

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"github.com/architeacher/svc-message-relay/internal/domain"
	"github.com/architeacher/svc-message-relay/internal/ports"
	"github.com/architeacher/svc-message-relay/pkg/queue"
)

type (
	// ConsumerStateSource exposes the lifecycle state of the consuming connection.
	ConsumerStateSource interface {
		State() queue.ConnectionState
	}

	// BreakerStateSource exposes the circuit breaker guarding the quarantine sink.
	BreakerStateSource interface {
		State() gobreaker.State
	}

	// HealthChecker derives liveness and readiness from the consumer lifecycle
	// and the quarantine circuit breaker.
	HealthChecker struct {
		consumer   ConsumerStateSource
		quarantine BreakerStateSource
		now        func() time.Time
	}
)

// NewHealthChecker creates a new health checker instance. quarantine may be
// nil when the circuit breaker is disabled.
func NewHealthChecker(consumer ConsumerStateSource, quarantine BreakerStateSource) ports.HealthChecker {
	return &HealthChecker{
		consumer:   consumer,
		quarantine: quarantine,
		now:        time.Now,
	}
}

// CheckLiveness reports dead only once the consumer has been shut down.
func (h *HealthChecker) CheckLiveness(_ context.Context) *domain.LivenessResult {
	overallStatus := domain.LivenessResponseStatusAlive
	if h.consumer.State() == queue.StateClosed {
		overallStatus = domain.LivenessResponseStatusDead
	}

	return &domain.LivenessResult{
		OverallStatus: overallStatus,
	}
}

// CheckReadiness reports ready while consuming with a closed quarantine
// breaker, degraded while consuming with a tripped breaker, and not ready
// otherwise.
func (h *HealthChecker) CheckReadiness(_ context.Context) *domain.ReadinessResult {
	consumerStatus := h.checkConsumer()
	quarantineStatus := h.checkQuarantine()

	overallStatus := domain.ReadinessResponseStatusReady

	switch {
	case consumerStatus.Status != domain.DependencyCheckStatusHealthy:
		overallStatus = domain.ReadinessResponseStatusNotReady
	case quarantineStatus.Status != domain.DependencyCheckStatusHealthy:
		overallStatus = domain.ReadinessResponseStatusDegraded
	}

	return &domain.ReadinessResult{
		OverallStatus: overallStatus,
		Consumer:      consumerStatus,
		Quarantine:    quarantineStatus,
	}
}

func (h *HealthChecker) checkConsumer() domain.DependencyStatus {
	state := h.consumer.State()

	status := domain.DependencyStatus{
		Status:      domain.DependencyCheckStatusHealthy,
		State:       state.String(),
		LastChecked: h.now(),
	}

	switch state {
	case queue.StateConsuming:
	case queue.StateConnecting, queue.StateOpen, queue.StateChannelOpen:
		status.Status = domain.DependencyCheckStatusDegraded
		status.Error = "consumer is not attached to the broker"
	default:
		status.Status = domain.DependencyCheckStatusUnhealthy
		status.Error = "consumer is not running"
	}

	return status
}

func (h *HealthChecker) checkQuarantine() domain.DependencyStatus {
	status := domain.DependencyStatus{
		Status:      domain.DependencyCheckStatusHealthy,
		LastChecked: h.now(),
	}

	if h.quarantine == nil {
		status.State = "disabled"

		return status
	}

	state := h.quarantine.State()
	status.State = state.String()

	switch state {
	case gobreaker.StateClosed:
	case gobreaker.StateHalfOpen:
		status.Status = domain.DependencyCheckStatusDegraded
		status.Error = "quarantine circuit breaker is probing"
	default:
		status.Status = domain.DependencyCheckStatusUnhealthy
		status.Error = "quarantine circuit breaker is open"
	}

	return status
}
