package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/vault/api"
	"go.opentelemetry.io/otel"

	"github.com/architeacher/svc-message-relay/internal/adapters"
	httpadapter "github.com/architeacher/svc-message-relay/internal/adapters/http"
	adapterqueue "github.com/architeacher/svc-message-relay/internal/adapters/queue"
	"github.com/architeacher/svc-message-relay/internal/adapters/repos"
	"github.com/architeacher/svc-message-relay/internal/config"
	"github.com/architeacher/svc-message-relay/internal/domain"
	"github.com/architeacher/svc-message-relay/internal/infrastructure"
	"github.com/architeacher/svc-message-relay/internal/service"
	"github.com/architeacher/svc-message-relay/internal/shared/backoff"
	"github.com/architeacher/svc-message-relay/internal/usecases"
	"github.com/architeacher/svc-message-relay/pkg/queue"
)

type (
	DependencyOption func(*Dependencies) error
)

func defaultOptions(ctx context.Context) []DependencyOption {
	return []DependencyOption{
		WithSecretStorage(),
		WithSecretStorageRepo(),
		WithConfigLoader(ctx),
		WithMetrics(ctx),
		WithTracing(ctx),
	}
}

// WithSecretStorage initializes the Vault client using ENV config.
func WithSecretStorage() DependencyOption {
	return func(d *Dependencies) error {
		cfg := d.cfg.SecretStorage

		vaultConfig := api.DefaultConfig()
		vaultConfig.Address = cfg.Address
		vaultConfig.Timeout = cfg.Timeout

		if cfg.TLSSkipVerify {
			tlsConfig := &api.TLSConfig{
				Insecure: true,
			}
			if err := vaultConfig.ConfigureTLS(tlsConfig); err != nil {
				return fmt.Errorf("failed to configure TLS: %w", err)
			}
		}

		client, err := api.NewClient(vaultConfig)
		if err != nil {
			return fmt.Errorf("failed to create Vault client: %w", err)
		}

		// Skip namespace configuration for dev mode vault
		if cfg.Namespace != "" {
			client.SetNamespace(cfg.Namespace)
		}

		d.Infra.SecretStorageClient = client

		return nil
	}
}

func WithSecretStorageRepo() DependencyOption {
	return func(d *Dependencies) error {
		d.Repos.SecretStorageRepo = repos.NewVaultRepository(d.Infra.SecretStorageClient)

		return nil
	}
}

func WithConfigLoader(ctx context.Context) DependencyOption {
	return func(d *Dependencies) error {
		d.configLoader = config.NewLoader(d.cfg, d.Repos.SecretStorageRepo, d.secretVersion)

		if !d.cfg.SecretStorage.Enabled {
			d.logger.Info().Msg("secret storage is disabled, skipping vault configuration loading")

			return nil
		}

		version, err := d.configLoader.Load(ctx, d.Repos.SecretStorageRepo, d.cfg)
		if err != nil {
			return fmt.Errorf("unable to load service configuration: %w", err)
		}

		d.secretVersion = version

		return nil
	}
}

func WithMetrics(ctx context.Context) DependencyOption {
	return func(d *Dependencies) error {
		metrics, err := infrastructure.NewMetrics(ctx, *d.cfg, d.logger)
		if err != nil {
			return fmt.Errorf("failed to initialize metrics: %w", err)
		}

		d.Infra.Metrics = metrics

		return nil
	}
}

func WithTracing(ctx context.Context) DependencyOption {
	return func(d *Dependencies) error {
		if !d.cfg.Telemetry.Traces.Enabled {
			d.tracerShutdownFunc = func(_ context.Context) error {
				return nil
			}

			return nil
		}

		tracerShutdownFunc, err := infrastructure.InitGlobalTracer(ctx, d.cfg.Telemetry, d.cfg.AppConfig)
		if err != nil {
			d.logger.Error().Err(err).Msg("failed to initialize global tracer")

			return err
		}

		d.tracerShutdownFunc = tracerShutdownFunc

		return nil
	}
}

// WithSubscriber wires the consuming side: the relay application, the
// quarantine sink and the connection manager that feeds the consumer.
func WithSubscriber() DependencyOption {
	return func(d *Dependencies) error {
		observer := infrastructure.NewQueueObserver(d.Infra.Metrics)

		routes, err := domain.NewRoutingTable(d.cfg.Relay.Routes)
		if err != nil {
			return fmt.Errorf("failed to build routing table: %w", err)
		}

		relayPublisher, err := infrastructure.NewRelayPublisher(*d.cfg, d.logger, observer)
		if err != nil {
			return err
		}

		d.Infra.RelayPublisher = relayPublisher

		relayService := service.NewRelayService(
			routes,
			relayPublisher,
			service.RelayOptions{
				MaxBodyBytes: d.cfg.Relay.MaxBodyBytes,
				Mandatory:    d.cfg.Relay.Mandatory,
			},
			d.logger.Component("relay"),
			d.Infra.Metrics,
		)

		d.Apps.Subscriber = usecases.NewSubscriberApplication(
			relayService,
			d.logger,
			otel.GetTracerProvider(),
			adapters.NewMetricsAdapter(d.Infra.Metrics),
		)

		quarantinePublisher, err := infrastructure.NewQuarantinePublisher(*d.cfg, d.logger, observer)
		if err != nil {
			return err
		}

		var quarantine queue.QuarantineSink = quarantinePublisher

		if d.cfg.Quarantine.CircuitBreaker.Enabled {
			d.Infra.QuarantineBreaker = infrastructure.NewBreakerPublisher(
				quarantinePublisher,
				quarantinePublisher.Target().Name(),
				d.cfg.Quarantine.CircuitBreaker,
				d.logger,
			)
			quarantine = d.Infra.QuarantineBreaker
		}

		manager, err := infrastructure.NewConnectionManager(
			*d.cfg,
			backoff.NewExponentialStrategy(d.cfg.Backoff),
			d.logger,
			observer,
		)
		if err != nil {
			return err
		}

		d.Infra.ConnectionManager = manager

		consumer, err := queue.NewConsumer(
			manager,
			quarantine,
			adapterqueue.NewRelayWorker(d.Apps.Subscriber, d.logger.Component("relay_worker"), d.Infra.Metrics),
			queue.WithRequireTxID(d.cfg.Queue.RequireTxID),
			queue.WithConsumingLogger(d.logger.Component("consumer").QueueLogger()),
			queue.WithConsumerObserver(observer),
			queue.WithQueueName(d.cfg.Queue.QueueName),
		)
		if err != nil {
			return fmt.Errorf("failed to create consumer: %w", err)
		}

		d.Workers.Consumer = adapterqueue.NewConsumer(manager, consumer.HandleDelivery, d.logger.Component("consumer"))

		d.logger.Info().
			Strs("routes", routes.Types()).
			Str("queue", d.cfg.Queue.QueueName).
			Str("quarantine", quarantinePublisher.Target().Name()).
			Msg("relay wired")

		return nil
	}
}

// WithHTTPServer exposes health and metrics of the consuming side. It must be
// applied after WithSubscriber.
func WithHTTPServer() DependencyOption {
	return func(d *Dependencies) error {
		if d.Infra.ConnectionManager == nil {
			return errors.New("ops server requires the subscriber to be wired first")
		}

		healthChecker := adapters.NewHealthChecker(d.Infra.ConnectionManager, d.quarantineState())
		requestHandler := httpadapter.NewRequestHandler(healthChecker, d.cfg.AppConfig.ServiceVersion, d.logger)

		d.Infra.HTTPServer = initHTTPServer(d.cfg, d.logger, d.Infra.Metrics, requestHandler)

		return nil
	}
}

// WithPublisher wires the operator side that injects messages onto the
// consumed exchange.
func WithPublisher() DependencyOption {
	return func(d *Dependencies) error {
		inputPublisher, err := infrastructure.NewInputPublisher(*d.cfg, d.logger)
		if err != nil {
			return err
		}

		d.Infra.InputPublisher = inputPublisher

		publisherService := service.NewPublisherService(
			inputPublisher,
			d.cfg.Relay.MaxBodyBytes,
			d.logger.Component("publisher"),
		)

		d.Apps.Publisher = usecases.NewPublisherApplication(
			publisherService,
			d.logger,
			otel.GetTracerProvider(),
			adapters.NewMetricsAdapter(d.Infra.Metrics),
		)

		return nil
	}
}
