//go:generate go tool github.com/maxbrunsfeld/counterfeiter/v6 -generate

package ports

import "context"

//counterfeiter:generate -o ../mocks/background_processor.go . BackgroundProcessor

// BackgroundProcessor defines the interface for long-running background work.
// Start blocks until ctx is done, Stop is called or the work fails.
type BackgroundProcessor interface {
	Start(ctx context.Context) error
	Stop() error
}
