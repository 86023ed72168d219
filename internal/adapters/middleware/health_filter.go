package middleware

import (
	"net/http"
)

// Probe and scrape endpoints of the ops server.
var defaultQuietPaths = []string{
	"/health/live",
	"/health/ready",
	"/metrics",
}

// HealthCheckFilter keeps probe and scrape traffic out of the access log.
type HealthCheckFilter struct {
	paths           map[string]struct{}
	logHealthChecks bool
}

// NewHealthCheckFilter silences the given paths, or the ops endpoints when none
// are given.
func NewHealthCheckFilter(logHealthChecks bool, paths ...string) *HealthCheckFilter {
	if len(paths) == 0 {
		paths = defaultQuietPaths
	}

	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}

	return &HealthCheckFilter{
		paths:           set,
		logHealthChecks: logHealthChecks,
	}
}

func (h *HealthCheckFilter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, quiet := h.paths[r.URL.Path]; quiet && !h.logHealthChecks {
			next.ServeHTTP(w, r.WithContext(SkipAccessLog(r.Context())))

			return
		}

		next.ServeHTTP(w, r)
	})
}
