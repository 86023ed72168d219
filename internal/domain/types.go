package domain

import (
	"time"
)

type (
	// DependencyStatus represents the health status of a dependency
	DependencyStatus struct {
		Status      DependencyCheckStatus `json:"status"`
		State       string                `json:"state,omitempty"`
		LastChecked time.Time             `json:"last_checked"`
		Error       string                `json:"error,omitempty"`
	}

	// LivenessResult contains liveness check results
	LivenessResult struct {
		OverallStatus LivenessResponseStatus `json:"status"`
	}

	// ReadinessResult contains readiness check results
	ReadinessResult struct {
		OverallStatus ReadinessResponseStatus `json:"status"`
		Consumer      DependencyStatus        `json:"consumer"`
		Quarantine    DependencyStatus        `json:"quarantine"`
	}
)
