package runtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// SubscriberCtx runs the relay: the consumer loop plus the ops HTTP server.
type SubscriberCtx struct {
	deps *Dependencies

	shutdownChannel chan os.Signal

	serverCtx      context.Context
	serverStopFunc context.CancelFunc

	serverReady chan struct{}

	consumerDone sync.WaitGroup
}

func NewSubscriber(opt ...SubscriberOption) *SubscriberCtx {
	if len(opt) != 0 {
		sCtx := SubscriberCtx{}

		for i := range opt {
			opt[i](&sCtx)
		}

		if sCtx.shutdownChannel == nil {
			sCtx.shutdownChannel = make(chan os.Signal, 1)
		}

		return &sCtx
	}

	return &SubscriberCtx{
		shutdownChannel: make(chan os.Signal, 1),
	}
}

func (c *SubscriberCtx) Run() {
	c.build()
	c.startService()
	c.startConsumer()
	c.monitorConfigChanges()
	c.shutdownHook()
	c.shutdown()
}

// build initializes the relay components
func (c *SubscriberCtx) build() {
	c.serverCtx, c.serverStopFunc = context.WithCancel(context.Background())

	deps, err := initializeDependencies(c.serverCtx, WithSubscriber(), WithHTTPServer())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	c.deps = deps
}

// startService starts the ops HTTP server
func (c *SubscriberCtx) startService() {
	go func() {
		c.deps.logger.Info().
			Str("address", c.deps.Infra.HTTPServer.Addr).
			Msg("ops server starting up")

		if c.serverReady != nil {
			c.serverReady <- struct{}{}
		}

		if err := c.deps.Infra.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.deps.logger.Error().Err(err).Msg("unable to start http server")
			c.serverStopFunc()
		}
	}()
}

// startConsumer runs the consumer until it is stopped. A consumer that gives
// up on its own takes the whole process down.
func (c *SubscriberCtx) startConsumer() {
	c.consumerDone.Go(func() {
		err := c.deps.Workers.Consumer.Start(c.serverCtx)
		if err != nil && !errors.Is(err, context.Canceled) {
			c.deps.logger.Error().Err(err).Msg("consumer failed")
		}

		c.serverStopFunc()
	})
}

func (c *SubscriberCtx) shutdownHook() {
	signal.Notify(c.shutdownChannel, syscall.SIGINT, syscall.SIGTERM)
}

func (c *SubscriberCtx) monitorConfigChanges() {
	reloadErrors := c.deps.configLoader.WatchConfigSignals(c.serverCtx)

	go func() {
		for err := range reloadErrors {
			if err != nil {
				c.deps.logger.Error().Err(err).Msg("failed to reload config")
				continue
			}

			c.deps.logger.Info().Msg("config reloaded successfully, broker settings apply on restart")
		}

		c.deps.logger.Info().Msg("stopping config monitor")
	}()
}

func (c *SubscriberCtx) shutdown() {
	// Waits for one of the following shutdown conditions to happen.
	select {
	case <-c.serverCtx.Done():
	case <-c.shutdownChannel:
		defer close(c.shutdownChannel)
	}

	c.deps.logger.Info().Msg("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.deps.cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	go func() {
		<-shutdownCtx.Done()

		if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
			c.deps.logger.Error().Msg("graceful shutdown timed out.. forcing exit.")
			os.Exit(1)
		}
	}()

	c.cleanup(shutdownCtx)

	c.deps.logger.Info().Msg("relay shutdown completed")
}

// WaitForServer blocks until the ops server is running.
// If you want to be notified when the server is running,
// make sure you instantiate the subscriber with WithWaitingForServer.
//
// Example:
//
//	sub := runtime.NewSubscriber(WithWaitingForServer())
//	go func() {
//		sub.Run()
//	}()
//
//	sub.WaitForServer()
func (c *SubscriberCtx) WaitForServer() {
	if c.serverReady != nil {
		<-c.serverReady
		close(c.serverReady)
	}
}

// cleanup stops consuming first so that the in-flight delivery settles while
// its publishers and telemetry are still up.
func (c *SubscriberCtx) cleanup(shutdownCtx context.Context) {
	c.deps.logger.Info().Msg("cleaning up resources...")

	if err := c.deps.Workers.Consumer.Stop(); err != nil {
		c.deps.logger.Error().Err(err).Msg("failed to stop consumer")
	}

	c.consumerDone.Wait()

	// Cancel context that underlying processes would start cleanup.
	c.serverStopFunc()

	if err := c.deps.Infra.HTTPServer.Shutdown(shutdownCtx); err != nil {
		c.deps.logger.Error().Err(err).Msg("unable to gracefully shutdown http server")
	}

	if err := c.deps.Infra.Metrics.Shutdown(shutdownCtx); err != nil {
		c.deps.logger.Error().Err(err).Msg("failed to flush metrics")
	}

	if err := c.deps.tracerShutdownFunc(shutdownCtx); err != nil {
		c.deps.logger.Error().Err(err).Msg("failed to flush traces")
	}

	c.deps.logger.Info().Msg("cleanup completed")
}
