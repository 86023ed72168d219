package queue

import (
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliveryCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers amqp.Table
		want    int
		wantErr bool
	}{
		{"int64 counter", amqp.Table{DeliveryCountHeader: int64(2)}, 3, false},
		{"int32 counter", amqp.Table{DeliveryCountHeader: int32(0)}, 1, false},
		{"int16 counter", amqp.Table{DeliveryCountHeader: int16(5)}, 6, false},
		{"uint8 counter", amqp.Table{DeliveryCountHeader: uint8(1)}, 2, false},
		{"uint64 counter", amqp.Table{DeliveryCountHeader: uint64(3)}, 4, false},
		{"float64 counter", amqp.Table{DeliveryCountHeader: float64(2)}, 3, false},
		{"float32 counter", amqp.Table{DeliveryCountHeader: float32(0)}, 1, false},
		{"numeric string", amqp.Table{DeliveryCountHeader: "4"}, 5, false},
		{"missing header", amqp.Table{}, 0, true},
		{"nil headers", nil, 0, true},
		{"nil value", amqp.Table{DeliveryCountHeader: nil}, 0, true},
		{"not a number", amqp.Table{DeliveryCountHeader: "many"}, 0, true},
		{"fractional float", amqp.Table{DeliveryCountHeader: 1.5}, 0, true},
		{"negative float", amqp.Table{DeliveryCountHeader: float64(-1)}, 0, true},
		{"uint64 out of range", amqp.Table{DeliveryCountHeader: uint64(1) << 40}, 0, true},
		{"unsupported type", amqp.Table{DeliveryCountHeader: true}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := DeliveryCount(tt.headers)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMissingDeliveryCount)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTxID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers amqp.Table
		want    string
		wantErr bool
	}{
		{"string value", amqp.Table{TxIDHeader: "abc"}, "abc", false},
		{"byte value", amqp.Table{TxIDHeader: []byte("abc")}, "abc", false},
		{"missing header", amqp.Table{}, "", true},
		{"empty value", amqp.Table{TxIDHeader: ""}, "", true},
		{"unsupported type", amqp.Table{TxIDHeader: int32(7)}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := TxID(tt.headers)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMissingTxID)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewEnvelope(t *testing.T) {
	t.Parallel()

	acker := &MockAcknowledger{}

	env := NewEnvelope(amqp.Delivery{
		Acknowledger: acker,
		DeliveryTag:  11,
		Headers:      amqp.Table{TxIDHeader: "abc"},
		AppId:        "producer",
		ContentType:  "text/plain",
		Body:         []byte("ok"),
		Redelivered:  true,
	})

	assert.Equal(t, uint64(11), env.DeliveryTag)
	assert.Equal(t, "producer", env.AppID)
	assert.Equal(t, "text/plain", env.ContentType)
	assert.Equal(t, []byte("ok"), env.Body)
	assert.True(t, env.Redelivered)
	assert.False(t, env.Settled())

	require.NoError(t, env.settle())
	assert.True(t, env.Settled())
	assert.ErrorIs(t, env.settle(), ErrAlreadySettled)
}

func TestEnvelope_SettleWithoutAcknowledger(t *testing.T) {
	t.Parallel()

	env := &Envelope{DeliveryTag: 1}

	assert.Error(t, env.settle())
	assert.False(t, env.Settled())
}
