//go:generate go tool github.com/maxbrunsfeld/counterfeiter/v6 -generate

package ports

import (
	"context"

	"github.com/architeacher/svc-message-relay/internal/domain"
)

//counterfeiter:generate -o ../mocks/health_checker.go . HealthChecker

// HealthChecker reports liveness and readiness of the relay.
type HealthChecker interface {
	CheckLiveness(ctx context.Context) *domain.LivenessResult
	CheckReadiness(ctx context.Context) *domain.ReadinessResult
}
