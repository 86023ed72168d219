package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

const (
	LivenessPath  = "/health/live"
	ReadinessPath = "/health/ready"
	MetricsPath   = "/metrics"
)

// NewRouter mounts the ops endpoints behind the given middlewares.
func NewRouter(handler *RequestHandler, metrics http.Handler, middlewares ...func(http.Handler) http.Handler) chi.Router {
	router := chi.NewRouter()
	router.Use(middlewares...)

	router.Get(LivenessPath, handler.GetLiveness)
	router.Get(ReadinessPath, handler.GetReadiness)
	router.Method(http.MethodGet, MetricsPath, metrics)

	return router
}
