package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/architeacher/svc-message-relay/internal/infrastructure"
	"github.com/architeacher/svc-message-relay/pkg/queue"
)

type stubDeliverySource struct {
	runErr   error
	stopped  bool
	envelope *queue.Envelope
}

func (s *stubDeliverySource) Run(ctx context.Context, handle queue.DeliveryHandler) error {
	if s.envelope != nil {
		handle(ctx, s.envelope)
	}

	return s.runErr
}

func (s *stubDeliverySource) Stop() error {
	s.stopped = true

	return nil
}

func TestConsumer_Start(t *testing.T) {
	t.Parallel()

	env := &queue.Envelope{DeliveryTag: 7}
	source := &stubDeliverySource{envelope: env}

	var got *queue.Envelope

	consumer := NewConsumer(source, func(_ context.Context, e *queue.Envelope) {
		got = e
	}, infrastructure.NewTestLogger())

	require.NoError(t, consumer.Start(context.Background()))
	assert.Same(t, env, got)

	require.NoError(t, consumer.Stop())
	assert.True(t, source.stopped)
}

func TestConsumer_Start_Error(t *testing.T) {
	t.Parallel()

	source := &stubDeliverySource{runErr: queue.ErrEndpointsExhausted}
	consumer := NewConsumer(source, func(context.Context, *queue.Envelope) {}, infrastructure.NewTestLogger())

	err := consumer.Start(context.Background())
	assert.True(t, errors.Is(err, queue.ErrEndpointsExhausted))
}
