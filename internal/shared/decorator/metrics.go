package decorator

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type MetricsClient interface {
	Inc(key string, value int)
	Observe(key string, duration time.Duration)
}

type commandMetricsDecorator[C any, R any] struct {
	base   CommandHandler[C, R]
	client MetricsClient
}

func (d commandMetricsDecorator[C, R]) Handle(ctx context.Context, cmd C) (result R, err error) {
	start := time.Now()
	action := strings.ToLower(generateActionName(cmd))

	defer func() {
		d.client.Observe(fmt.Sprintf("commands.%s.duration", action), time.Since(start))

		if err == nil {
			d.client.Inc(fmt.Sprintf("commands.%s.success", action), 1)
		} else {
			d.client.Inc(fmt.Sprintf("commands.%s.failure", action), 1)
		}
	}()

	return d.base.Handle(ctx, cmd)
}
