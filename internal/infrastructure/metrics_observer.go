package infrastructure

import (
	"context"

	"github.com/architeacher/svc-message-relay/pkg/queue"
)

// QueueObserver feeds broker lifecycle events into Metrics.
type QueueObserver struct {
	metrics Metrics
}

func NewQueueObserver(metrics Metrics) *QueueObserver {
	return &QueueObserver{metrics: metrics}
}

func (o *QueueObserver) ConnectionAttempt(endpoint string, err error) {
	o.metrics.RecordConnectionAttempt(context.Background(), endpoint, err == nil)
}

func (o *QueueObserver) Disposition(ctx context.Context, action queue.Action) {
	o.metrics.RecordDisposition(ctx, string(action))
}

func (o *QueueObserver) Published(ctx context.Context, target string, err error) {
	o.metrics.RecordPublish(ctx, target, err == nil)
}
