package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/architeacher/svc-message-relay/internal/domain"
	"github.com/architeacher/svc-message-relay/internal/infrastructure"
	"github.com/architeacher/svc-message-relay/internal/mocks"
	"github.com/architeacher/svc-message-relay/pkg/queue"
)

type RelayServiceTestSuite struct {
	suite.Suite
	publisher *mocks.FakeMessagePublisher
	metrics   *mocks.FakeMetrics
	service   RelayService
}

func TestRelayServiceTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(RelayServiceTestSuite))
}

func (s *RelayServiceTestSuite) SetupTest() {
	routes, err := domain.NewRoutingTable(map[string]string{
		"order.created": "orders.created",
	})
	s.Require().NoError(err)

	s.publisher = &mocks.FakeMessagePublisher{}
	s.metrics = &mocks.FakeMetrics{}
	s.service = NewRelayService(
		routes,
		s.publisher,
		RelayOptions{MaxBodyBytes: 64, Mandatory: true},
		infrastructure.NewTestLogger(),
		s.metrics,
	)
}

func (s *RelayServiceTestSuite) TestRelay_ForwardsRoutedMessage() {
	body := `{"type":"order.created","id":7}`

	result, err := s.service.Relay(context.Background(), body, "tx-1")
	s.Require().NoError(err)

	s.Equal(domain.MessageType("order.created"), result.Type)
	s.Equal("orders.created", result.RoutingKey)
	s.NotEmpty(result.MessageID)

	s.Require().Equal(1, s.publisher.PublishCallCount())
	_, msg := s.publisher.PublishArgsForCall(0)
	s.Equal([]byte(body), msg.Body)
	s.Equal("orders.created", msg.RoutingKey)
	s.Equal("application/json", msg.ContentType)
	s.Equal(result.MessageID, msg.MessageID)
	s.True(msg.Mandatory)
	s.Equal("tx-1", msg.Headers[queue.TxIDHeader])
	s.Equal("order.created", msg.Headers[MessageTypeHeader])

	s.Require().Equal(1, s.metrics.RecordRelayedMessageCallCount())
	_, messageType, outcome := s.metrics.RecordRelayedMessageArgsForCall(0)
	s.Equal("order.created", messageType)
	s.Equal(OutcomeForwarded, outcome)
}

func (s *RelayServiceTestSuite) TestRelay_OmitsEmptyTxID() {
	_, err := s.service.Relay(context.Background(), `{"type":"order.created"}`, "")
	s.Require().NoError(err)

	_, msg := s.publisher.PublishArgsForCall(0)
	s.NotContains(msg.Headers, queue.TxIDHeader)
}

func (s *RelayServiceTestSuite) TestRelay_RejectsInvalidPayload() {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{name: "not json", body: "hello", wantErr: domain.ErrInvalidPayload},
		{name: "json array", body: `[1,2]`, wantErr: domain.ErrInvalidPayload},
		{name: "broken json", body: `{"type":`, wantErr: domain.ErrInvalidPayload},
		{name: "missing type", body: `{"id":1}`, wantErr: domain.ErrMissingMessageType},
		{name: "too large", body: `{"type":"order.created","padding":"` + string(make([]byte, 64)) + `"}`, wantErr: domain.ErrPayloadTooLarge},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()

			_, err := s.service.Relay(context.Background(), tt.body, "tx-1")
			s.Require().ErrorIs(err, tt.wantErr)

			var domainErr *domain.DomainError
			s.ErrorAs(err, &domainErr)

			s.Zero(s.publisher.PublishCallCount())
			_, messageType, outcome := s.metrics.RecordRelayedMessageArgsForCall(0)
			s.Equal("unknown", messageType)
			s.Equal(OutcomeInvalid, outcome)
		})
	}
}

func (s *RelayServiceTestSuite) TestRelay_UnknownType() {
	_, err := s.service.Relay(context.Background(), `{"type":"invoice.paid"}`, "tx-1")
	s.Require().ErrorIs(err, domain.ErrUnknownMessageType)

	s.Zero(s.publisher.PublishCallCount())
	_, messageType, outcome := s.metrics.RecordRelayedMessageArgsForCall(0)
	s.Equal("invoice.paid", messageType)
	s.Equal(OutcomeUnroutable, outcome)
}

func (s *RelayServiceTestSuite) TestRelay_PublishFailureKeepsCause() {
	publishErr := &queue.PublishMessageError{
		Target:   "exchange:relay.output",
		Endpoint: "amqp://rabbit-a/",
		Reason:   "unroutable",
		Cause:    queue.ErrUnroutable,
	}
	s.publisher.PublishReturns(publishErr)

	_, err := s.service.Relay(context.Background(), `{"type":"order.created"}`, "tx-1")
	s.Require().Error(err)

	s.ErrorIs(err, queue.ErrPublishMessage)
	s.ErrorIs(err, queue.ErrUnroutable)

	var target *queue.PublishMessageError
	s.Require().ErrorAs(err, &target)
	s.Equal("exchange:relay.output", target.Target)

	_, _, outcome := s.metrics.RecordRelayedMessageArgsForCall(0)
	s.Equal(OutcomeFailed, outcome)
}

func (s *RelayServiceTestSuite) TestRelay_ContextPassedThrough() {
	type ctxKey struct{}

	ctx := context.WithValue(context.Background(), ctxKey{}, "value")
	s.publisher.PublishStub = func(got context.Context, _ queue.Message) error {
		if got.Value(ctxKey{}) != "value" {
			return errors.New("context not propagated")
		}

		return nil
	}

	_, err := s.service.Relay(ctx, `{"type":"order.created"}`, "tx-1")
	s.NoError(err)
}
