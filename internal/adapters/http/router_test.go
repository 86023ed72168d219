package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/architeacher/svc-message-relay/internal/adapters/http/handlers"
	"github.com/architeacher/svc-message-relay/internal/domain"
	"github.com/architeacher/svc-message-relay/internal/infrastructure"
	"github.com/architeacher/svc-message-relay/internal/mocks"
)

func newTestRouter(checker *mocks.FakeHealthChecker) http.Handler {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})

	return NewRouter(NewRequestHandler(checker, "1.0.0", infrastructure.NewTestLogger()), metrics)
}

func TestRouter_Liveness(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     domain.LivenessResponseStatus
		wantCode   int
		wantStatus handlers.LivenessResponseStatus
	}{
		{name: "alive", status: domain.LivenessResponseStatusAlive, wantCode: http.StatusOK, wantStatus: handlers.LivenessResponseStatusOK},
		{name: "dead", status: domain.LivenessResponseStatusDead, wantCode: http.StatusServiceUnavailable, wantStatus: handlers.LivenessResponseStatusDOWN},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			checker := &mocks.FakeHealthChecker{}
			checker.CheckLivenessReturns(&domain.LivenessResult{OverallStatus: tt.status})

			rec := httptest.NewRecorder()
			newTestRouter(checker).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, LivenessPath, nil))

			require.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body handlers.LivenessResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, "1.0.0", body.Version)
		})
	}
}

func TestRouter_Readiness(t *testing.T) {
	t.Parallel()

	checked := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name       string
		result     domain.ReadinessResult
		wantCode   int
		wantStatus handlers.ReadinessResponseStatus
	}{
		{
			name: "ready",
			result: domain.ReadinessResult{
				OverallStatus: domain.ReadinessResponseStatusReady,
				Consumer:      domain.DependencyStatus{Status: domain.DependencyCheckStatusHealthy, State: "CONSUMING", LastChecked: checked},
				Quarantine:    domain.DependencyStatus{Status: domain.DependencyCheckStatusHealthy, State: "closed", LastChecked: checked},
			},
			wantCode:   http.StatusOK,
			wantStatus: handlers.OK,
		},
		{
			name: "degraded stays in rotation",
			result: domain.ReadinessResult{
				OverallStatus: domain.ReadinessResponseStatusDegraded,
				Consumer:      domain.DependencyStatus{Status: domain.DependencyCheckStatusHealthy, State: "CONSUMING"},
				Quarantine:    domain.DependencyStatus{Status: domain.DependencyCheckStatusUnhealthy, State: "open"},
			},
			wantCode:   http.StatusOK,
			wantStatus: handlers.DEGRADED,
		},
		{
			name: "not ready",
			result: domain.ReadinessResult{
				OverallStatus: domain.ReadinessResponseStatusNotReady,
				Consumer:      domain.DependencyStatus{Status: domain.DependencyCheckStatusDegraded, State: "CONNECTING"},
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: handlers.DOWN,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			checker := &mocks.FakeHealthChecker{}
			checker.CheckReadinessReturns(&tt.result)

			rec := httptest.NewRecorder()
			newTestRouter(checker).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, ReadinessPath, nil))

			require.Equal(t, tt.wantCode, rec.Code)

			var body handlers.ReadinessResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, tt.result.Consumer.State, body.Dependencies["consumer"].State)
			assert.Equal(t, tt.result.Quarantine.State, body.Dependencies["quarantine"].State)
		})
	}
}

func TestRouter_Metrics(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	newTestRouter(&mocks.FakeHealthChecker{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, MetricsPath, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# metrics", rec.Body.String())
}
