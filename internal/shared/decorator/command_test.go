package decorator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/architeacher/svc-message-relay/internal/infrastructure"
)

type (
	echoCommand struct {
		Value string
	}

	echoHandler struct {
		err error
	}

	recordingMetricsClient struct {
		mu        sync.Mutex
		counters  map[string]int
		durations []string
	}
)

func (h echoHandler) Handle(_ context.Context, cmd echoCommand) (string, error) {
	if h.err != nil {
		return "", h.err
	}

	return cmd.Value, nil
}

func (c *recordingMetricsClient) Inc(key string, value int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.counters == nil {
		c.counters = map[string]int{}
	}

	c.counters[key] += value
}

func (c *recordingMetricsClient) Observe(key string, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.durations = append(c.durations, key)
}

func TestApplyCommandDecorators(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		handlerErr  error
		wantCounter string
		wantStatus  codes.Code
	}{
		{
			name:        "success",
			wantCounter: "commands.echocommand.success",
			wantStatus:  codes.Unset,
		},
		{
			name:        "failure",
			handlerErr:  errors.New("broker unavailable"),
			wantCounter: "commands.echocommand.failure",
			wantStatus:  codes.Error,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			recorder := tracetest.NewSpanRecorder()
			provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
			metrics := &recordingMetricsClient{}

			handler := ApplyCommandDecorators[echoCommand, string](
				echoHandler{err: tt.handlerErr},
				infrastructure.NewTestLogger(),
				provider,
				metrics,
			)

			result, err := handler.Handle(context.Background(), echoCommand{Value: "hello"})
			if tt.handlerErr != nil {
				require.ErrorIs(t, err, tt.handlerErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "hello", result)
			}

			assert.Equal(t, map[string]int{tt.wantCounter: 1}, metrics.counters)
			assert.Equal(t, []string{"commands.echocommand.duration"}, metrics.durations)

			spans := recorder.Ended()
			require.Len(t, spans, 1)
			assert.Equal(t, "command.echoCommand", spans[0].Name())
			assert.Equal(t, tt.wantStatus, spans[0].Status().Code)
		})
	}
}

func TestGenerateActionName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "echoCommand", generateActionName(echoCommand{}))
	assert.Equal(t, "echoCommand", generateActionName(&echoCommand{}))
}
