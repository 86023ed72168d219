package handlers

import "time"

type (
	DependencyCheckStatus string

	LivenessResponseStatus string

	ReadinessResponseStatus string
)

const (
	DependencyCheckStatusHealthy   DependencyCheckStatus = "healthy"
	DependencyCheckStatusDegraded  DependencyCheckStatus = "degraded"
	DependencyCheckStatusUnhealthy DependencyCheckStatus = "unhealthy"
	DependencyCheckStatusUnknown   DependencyCheckStatus = "unknown"
)

const (
	LivenessResponseStatusOK   LivenessResponseStatus = "OK"
	LivenessResponseStatusDOWN LivenessResponseStatus = "DOWN"
)

const (
	OK       ReadinessResponseStatus = "OK"
	DEGRADED ReadinessResponseStatus = "DEGRADED"
	DOWN     ReadinessResponseStatus = "DOWN"
)

type (
	DependencyCheck struct {
		Status      DependencyCheckStatus `json:"status"`
		State       string                `json:"state,omitempty"`
		LastChecked time.Time             `json:"last_checked"`
		Error       string                `json:"error,omitempty"`
	}

	LivenessResponse struct {
		Status    LivenessResponseStatus `json:"status"`
		Timestamp time.Time              `json:"timestamp"`
		Version   string                 `json:"version,omitempty"`
	}

	ReadinessResponse struct {
		Status       ReadinessResponseStatus    `json:"status"`
		Timestamp    time.Time                  `json:"timestamp"`
		Dependencies map[string]DependencyCheck `json:"dependencies"`
	}
)
