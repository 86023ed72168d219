package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthCheckFilter_Middleware(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name            string
		path            string
		paths           []string
		logHealthChecks bool
		expectSkip      bool
	}{
		{name: "liveness is silenced", path: "/health/live", expectSkip: true},
		{name: "readiness is silenced", path: "/health/ready", expectSkip: true},
		{name: "metrics scrape is silenced", path: "/metrics", expectSkip: true},
		{name: "other paths are logged", path: "/debug", expectSkip: false},
		{name: "suffix alone does not match", path: "/api/health/live", expectSkip: false},
		{name: "logging health checks keeps them", path: "/health/live", logHealthChecks: true, expectSkip: false},
		{name: "custom paths replace defaults", path: "/healthz", paths: []string{"/healthz"}, expectSkip: true},
		{name: "custom paths drop defaults", path: "/metrics", paths: []string{"/healthz"}, expectSkip: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var skipped bool

			filter := NewHealthCheckFilter(tc.logHealthChecks, tc.paths...)
			handler := filter.Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				skipped, _ = r.Context().Value(skipAccessLogKey).(bool)
			}))

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tc.path, nil))

			assert.Equal(t, tc.expectSkip, skipped)
		})
	}
}
