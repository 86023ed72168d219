package mappers

import (
	"net/http"

	"github.com/architeacher/svc-message-relay/internal/adapters/http/handlers"
	"github.com/architeacher/svc-message-relay/internal/domain"
)

func DomainDependencyStatusToHandler(status domain.DependencyCheckStatus) handlers.DependencyCheckStatus {
	switch status {
	case domain.DependencyCheckStatusHealthy:
		return handlers.DependencyCheckStatusHealthy
	case domain.DependencyCheckStatusDegraded:
		return handlers.DependencyCheckStatusDegraded
	case domain.DependencyCheckStatusUnhealthy:
		return handlers.DependencyCheckStatusUnhealthy
	default:
		return handlers.DependencyCheckStatusUnknown
	}
}

func DomainDependencyToHandler(dep domain.DependencyStatus) handlers.DependencyCheck {
	return handlers.DependencyCheck{
		Status:      DomainDependencyStatusToHandler(dep.Status),
		State:       dep.State,
		LastChecked: dep.LastChecked,
		Error:       dep.Error,
	}
}

func DomainLivenessStatusToHandler(status domain.LivenessResponseStatus) handlers.LivenessResponseStatus {
	if status == domain.LivenessResponseStatusAlive {
		return handlers.LivenessResponseStatusOK
	}

	return handlers.LivenessResponseStatusDOWN
}

func DomainReadinessStatusToHandler(status domain.ReadinessResponseStatus) handlers.ReadinessResponseStatus {
	switch status {
	case domain.ReadinessResponseStatusReady:
		return handlers.OK
	case domain.ReadinessResponseStatusDegraded:
		return handlers.DEGRADED
	default:
		return handlers.DOWN
	}
}

// LivenessHTTPStatus maps liveness to the probe status code.
func LivenessHTTPStatus(status domain.LivenessResponseStatus) int {
	if status == domain.LivenessResponseStatusAlive {
		return http.StatusOK
	}

	return http.StatusServiceUnavailable
}

// ReadinessHTTPStatus keeps a degraded relay in rotation: it still consumes,
// only quarantining is impaired.
func ReadinessHTTPStatus(status domain.ReadinessResponseStatus) int {
	switch status {
	case domain.ReadinessResponseStatusReady, domain.ReadinessResponseStatusDegraded:
		return http.StatusOK
	default:
		return http.StatusServiceUnavailable
	}
}
