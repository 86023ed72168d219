//go:generate go tool github.com/maxbrunsfeld/counterfeiter/v6 -generate

package ports

import (
	"context"

	"github.com/architeacher/svc-message-relay/pkg/queue"
)

//counterfeiter:generate -o ../mocks/message_publisher.go . MessagePublisher

// MessagePublisher delivers a message to a broker target. Failures are
// reported as *queue.PublishMessageError.
type MessagePublisher interface {
	Publish(ctx context.Context, msg queue.Message) error
}
