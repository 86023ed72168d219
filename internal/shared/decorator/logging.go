package decorator

import (
	"context"
	"time"

	"github.com/architeacher/svc-message-relay/internal/infrastructure"
)

type commandLoggingDecorator[C any, R any] struct {
	base   CommandHandler[C, R]
	logger infrastructure.Logger
}

func (d commandLoggingDecorator[C, R]) Handle(ctx context.Context, cmd C) (result R, err error) {
	action := generateActionName(cmd)
	start := time.Now()

	d.logger.Debug().Str("command", action).Msg("executing command")

	defer func() {
		if err != nil {
			d.logger.Debug().
				Err(err).
				Str("command", action).
				Dur("duration", time.Since(start)).
				Msg("failed to execute command")

			return
		}

		d.logger.Debug().
			Str("command", action).
			Dur("duration", time.Since(start)).
			Msg("command executed successfully")
	}()

	return d.base.Handle(ctx, cmd)
}
