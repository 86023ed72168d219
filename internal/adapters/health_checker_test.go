package adapters

import (
	"context"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"

	"github.com/architeacher/svc-message-relay/internal/domain"
	"github.com/architeacher/svc-message-relay/pkg/queue"
)

type (
	fixedConsumerState queue.ConnectionState
	fixedBreakerState  gobreaker.State
)

func (s fixedConsumerState) State() queue.ConnectionState { return queue.ConnectionState(s) }
func (s fixedBreakerState) State() gobreaker.State        { return gobreaker.State(s) }

func TestHealthChecker_CheckReadiness(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		consumer       queue.ConnectionState
		breaker        BreakerStateSource
		wantStatus     domain.ReadinessResponseStatus
		wantConsumer   domain.DependencyCheckStatus
		wantQuarantine domain.DependencyCheckStatus
	}{
		{
			name:           "consuming with closed breaker",
			consumer:       queue.StateConsuming,
			breaker:        fixedBreakerState(gobreaker.StateClosed),
			wantStatus:     domain.ReadinessResponseStatusReady,
			wantConsumer:   domain.DependencyCheckStatusHealthy,
			wantQuarantine: domain.DependencyCheckStatusHealthy,
		},
		{
			name:           "consuming without breaker",
			consumer:       queue.StateConsuming,
			wantStatus:     domain.ReadinessResponseStatusReady,
			wantConsumer:   domain.DependencyCheckStatusHealthy,
			wantQuarantine: domain.DependencyCheckStatusHealthy,
		},
		{
			name:           "consuming with open breaker",
			consumer:       queue.StateConsuming,
			breaker:        fixedBreakerState(gobreaker.StateOpen),
			wantStatus:     domain.ReadinessResponseStatusDegraded,
			wantConsumer:   domain.DependencyCheckStatusHealthy,
			wantQuarantine: domain.DependencyCheckStatusUnhealthy,
		},
		{
			name:           "consuming with half open breaker",
			consumer:       queue.StateConsuming,
			breaker:        fixedBreakerState(gobreaker.StateHalfOpen),
			wantStatus:     domain.ReadinessResponseStatusDegraded,
			wantConsumer:   domain.DependencyCheckStatusHealthy,
			wantQuarantine: domain.DependencyCheckStatusDegraded,
		},
		{
			name:           "reconnecting",
			consumer:       queue.StateConnecting,
			breaker:        fixedBreakerState(gobreaker.StateClosed),
			wantStatus:     domain.ReadinessResponseStatusNotReady,
			wantConsumer:   domain.DependencyCheckStatusDegraded,
			wantQuarantine: domain.DependencyCheckStatusHealthy,
		},
		{
			name:           "closed",
			consumer:       queue.StateClosed,
			breaker:        fixedBreakerState(gobreaker.StateClosed),
			wantStatus:     domain.ReadinessResponseStatusNotReady,
			wantConsumer:   domain.DependencyCheckStatusUnhealthy,
			wantQuarantine: domain.DependencyCheckStatusHealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			checker := NewHealthChecker(fixedConsumerState(tt.consumer), tt.breaker)

			result := checker.CheckReadiness(context.Background())

			assert.Equal(t, tt.wantStatus, result.OverallStatus)
			assert.Equal(t, tt.wantConsumer, result.Consumer.Status)
			assert.Equal(t, tt.consumer.String(), result.Consumer.State)
			assert.Equal(t, tt.wantQuarantine, result.Quarantine.Status)
			assert.False(t, result.Consumer.LastChecked.IsZero())
		})
	}
}

func TestHealthChecker_CheckLiveness(t *testing.T) {
	t.Parallel()

	alive := NewHealthChecker(fixedConsumerState(queue.StateConnecting), nil).CheckLiveness(context.Background())
	assert.Equal(t, domain.LivenessResponseStatusAlive, alive.OverallStatus)

	dead := NewHealthChecker(fixedConsumerState(queue.StateClosed), nil).CheckLiveness(context.Background())
	assert.Equal(t, domain.LivenessResponseStatusDead, dead.OverallStatus)
}
