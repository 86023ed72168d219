package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRelayMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		limit    int
		wantType MessageType
		wantErr  error
		wantCode string
	}{
		{
			name:     "valid message",
			body:     `{"type":"order.created","id":42}`,
			limit:    1024,
			wantType: "order.created",
		},
		{
			name:     "type is trimmed",
			body:     ` {"type":"  order.created "} `,
			wantType: "order.created",
		},
		{
			name:     "too large",
			body:     `{"type":"order.created","padding":"` + strings.Repeat("x", 64) + `"}`,
			limit:    32,
			wantErr:  ErrPayloadTooLarge,
			wantCode: "PAYLOAD_TOO_LARGE",
		},
		{
			name:     "not json",
			body:     "hello",
			wantErr:  ErrInvalidPayload,
			wantCode: "INVALID_PAYLOAD",
		},
		{
			name:     "json array",
			body:     `[{"type":"order.created"}]`,
			wantErr:  ErrInvalidPayload,
			wantCode: "INVALID_PAYLOAD",
		},
		{
			name:     "broken json",
			body:     `{"type":`,
			wantErr:  ErrInvalidPayload,
			wantCode: "INVALID_PAYLOAD",
		},
		{
			name:     "type of wrong kind",
			body:     `{"type":7}`,
			wantErr:  ErrInvalidPayload,
			wantCode: "INVALID_PAYLOAD",
		},
		{
			name:     "missing type",
			body:     `{"id":42}`,
			wantErr:  ErrMissingMessageType,
			wantCode: "MISSING_MESSAGE_TYPE",
		},
		{
			name:     "empty body",
			body:     "",
			wantErr:  ErrInvalidPayload,
			wantCode: "INVALID_PAYLOAD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			msg, err := ParseRelayMessage(tt.body, "tx-1", tt.limit)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)

				var domainErr *DomainError
				require.True(t, errors.As(err, &domainErr))
				assert.Equal(t, tt.wantCode, domainErr.Code)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantType, msg.Type)
			assert.Equal(t, "tx-1", msg.TxID)
			assert.Equal(t, []byte(tt.body), msg.Payload)
		})
	}
}

func TestWithMessageType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		want    string
		wantErr error
	}{
		{
			name: "adds type to object",
			body: `{"id":42}`,
			want: `{"id":42,"type":"order.created"}`,
		},
		{
			name: "overrides existing type",
			body: `{"type":"order.cancelled","id":42}`,
			want: `{"id":42,"type":"order.created"}`,
		},
		{
			name: "empty body becomes an object",
			body: "  ",
			want: `{"type":"order.created"}`,
		},
		{
			name:    "array is rejected",
			body:    `[1,2]`,
			wantErr: ErrInvalidPayload,
		},
		{
			name:    "malformed object is rejected",
			body:    `{"id":`,
			wantErr: ErrInvalidPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := WithMessageType(tt.body, "order.created")
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))

				return
			}

			require.NoError(t, err)
			assert.JSONEq(t, tt.want, got)

			msg, err := ParseRelayMessage(got, "", 0)
			require.NoError(t, err)
			assert.Equal(t, MessageType("order.created"), msg.Type)
		})
	}
}
