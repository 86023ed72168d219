package queue

import (
	"github.com/rs/zerolog"
)

// LoggerAdapter adapts a zerolog logger to the queue logger interface
type LoggerAdapter struct {
	logger zerolog.Logger
}

// NewLoggerAdapter creates a new logger adapter
func NewLoggerAdapter(logger zerolog.Logger) *LoggerAdapter {
	return &LoggerAdapter{logger: logger}
}

func (l *LoggerAdapter) Info() LogEvent {
	return &LogEventAdapter{event: l.logger.Info()}
}

func (l *LoggerAdapter) Warn() LogEvent {
	return &LogEventAdapter{event: l.logger.Warn()}
}

func (l *LoggerAdapter) Error() LogEvent {
	return &LogEventAdapter{event: l.logger.Error()}
}

func (l *LoggerAdapter) Debug() LogEvent {
	return &LogEventAdapter{event: l.logger.Debug()}
}

// LogEventAdapter adapts a zerolog event to the queue log event interface.
// A nil event (level disabled) is safe to use, zerolog ignores it.
type LogEventAdapter struct {
	event *zerolog.Event
}

func (l *LogEventAdapter) Msg(msg string) {
	l.event.Msg(msg)
}

func (l *LogEventAdapter) Err(err error) LogEvent {
	l.event = l.event.Err(err)

	return l
}

func (l *LogEventAdapter) Str(key, value string) LogEvent {
	l.event = l.event.Str(key, value)

	return l
}

func (l *LogEventAdapter) Int(key string, value int) LogEvent {
	l.event = l.event.Int(key, value)

	return l
}

func (l *LogEventAdapter) Uint64(key string, value uint64) LogEvent {
	l.event = l.event.Uint64(key, value)

	return l
}

func (l *LogEventAdapter) Bool(key string, value bool) LogEvent {
	l.event = l.event.Bool(key, value)

	return l
}
