package infrastructure

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/architeacher/svc-message-relay/internal/config"
	"github.com/architeacher/svc-message-relay/pkg/queue"
)

type Logger struct {
	*zerolog.Logger
}

func New(cfg config.LoggingConfig) Logger {
	return newLogger(os.Stdout, cfg)
}

// NewTestLogger returns a logger that discards everything.
func NewTestLogger() Logger {
	logger := zerolog.New(io.Discard)

	return Logger{Logger: &logger}
}

func newLogger(out io.Writer, cfg config.LoggingConfig) Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	logger := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Logger()

	return Logger{Logger: &logger}
}

// Component returns a child logger tagged with the given component name.
func (l Logger) Component(name string) Logger {
	child := l.Logger.With().Str("component", name).Logger()

	return Logger{Logger: &child}
}

// QueueLogger adapts the logger to the broker library.
func (l Logger) QueueLogger() queue.Logger {
	return queue.NewLoggerAdapter(*l.Logger)
}
