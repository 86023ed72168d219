package http

import (
	"net/http"

	"github.com/architeacher/svc-message-relay/internal/adapters/http/handlers"
	"github.com/architeacher/svc-message-relay/internal/adapters/http/mappers"
	"github.com/architeacher/svc-message-relay/internal/infrastructure"
	"github.com/architeacher/svc-message-relay/internal/ports"
)

// RequestHandler serves the ops endpoints of the relay.
type RequestHandler struct {
	healthChecker ports.HealthChecker
	version       string
	logger        infrastructure.Logger
}

func NewRequestHandler(
	healthChecker ports.HealthChecker,
	version string,
	logger infrastructure.Logger,
) *RequestHandler {
	return &RequestHandler{
		healthChecker: healthChecker,
		version:       version,
		logger:        logger,
	}
}

func (h *RequestHandler) GetLiveness(w http.ResponseWriter, r *http.Request) {
	result := h.healthChecker.CheckLiveness(r.Context())

	handlers.WriteJSON(w, h.logger, mappers.LivenessHTTPStatus(result.OverallStatus), handlers.LivenessResponse{
		Status:    mappers.DomainLivenessStatusToHandler(result.OverallStatus),
		Timestamp: handlers.Now(),
		Version:   h.version,
	})
}

func (h *RequestHandler) GetReadiness(w http.ResponseWriter, r *http.Request) {
	result := h.healthChecker.CheckReadiness(r.Context())

	handlers.WriteJSON(w, h.logger, mappers.ReadinessHTTPStatus(result.OverallStatus), handlers.ReadinessResponse{
		Status:    mappers.DomainReadinessStatusToHandler(result.OverallStatus),
		Timestamp: handlers.Now(),
		Dependencies: map[string]handlers.DependencyCheck{
			"consumer":   mappers.DomainDependencyToHandler(result.Consumer),
			"quarantine": mappers.DomainDependencyToHandler(result.Quarantine),
		},
	})
}
