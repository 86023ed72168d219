package infrastructure

import (
	"context"
	"net/http"
	"time"
)

type (
	NoOpMetrics struct{}
)

func (n *NoOpMetrics) RecordHTTPRequest(_ context.Context, _, _ string, _ int, _ time.Duration, _, _ int64) {
}

func (n *NoOpMetrics) RecordDisposition(_ context.Context, _ string) {
}

func (n *NoOpMetrics) RecordConnectionAttempt(_ context.Context, _ string, _ bool) {
}

func (n *NoOpMetrics) RecordPublish(_ context.Context, _ string, _ bool) {
}

func (n *NoOpMetrics) RecordRelayedMessage(_ context.Context, _, _ string) {
}

func (n *NoOpMetrics) RecordProcessingTime(_ context.Context, _ time.Duration) {
}

func (n *NoOpMetrics) RecordCommand(_ context.Context, _ string, _ bool) {
}

func (n *NoOpMetrics) RecordCommandDuration(_ context.Context, _ string, _ time.Duration) {
}

func (n *NoOpMetrics) Handler() http.Handler {
	return http.NotFoundHandler()
}

func (n *NoOpMetrics) Shutdown(_ context.Context) error {
	return nil
}
