//go:generate go tool github.com/maxbrunsfeld/counterfeiter/v6 -generate

package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/architeacher/svc-message-relay/internal/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	metricsNamespace = "message_relay"
)

type (
	//counterfeiter:generate -o ../mocks/metrics.go . Metrics

	Metrics interface {
		RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration, requestSize, responseSize int64)
		RecordDisposition(ctx context.Context, action string)
		RecordConnectionAttempt(ctx context.Context, endpoint string, success bool)
		RecordPublish(ctx context.Context, target string, success bool)
		RecordRelayedMessage(ctx context.Context, messageType, outcome string)
		RecordProcessingTime(ctx context.Context, duration time.Duration)
		RecordCommand(ctx context.Context, command string, success bool)
		RecordCommandDuration(ctx context.Context, command string, duration time.Duration)
		Handler() http.Handler
		Shutdown(ctx context.Context) error
	}

	OTELMetrics struct {
		meterProvider *sdkmetric.MeterProvider
		meter         metric.Meter
		logger        Logger

		httpRequestTotal       metric.Int64Counter
		httpRequestDuration    metric.Float64Histogram
		httpRequestSize        metric.Int64Histogram
		httpResponseSize       metric.Int64Histogram
		dispositionTotal       metric.Int64Counter
		connectionAttemptTotal metric.Int64Counter
		connectionErrorTotal   metric.Int64Counter
		publishTotal           metric.Int64Counter
		publishErrorTotal      metric.Int64Counter
		relayedMessageTotal    metric.Int64Counter
		processingTimeDuration metric.Float64Histogram
		commandTotal           metric.Int64Counter
		commandDuration        metric.Float64Histogram
	}
)

func NewMetrics(ctx context.Context, cfg config.ServiceConfig, logger Logger) (Metrics, error) {
	if !cfg.Telemetry.Metrics.Enabled {
		logger.Info().Msg("metrics disabled, using NoOp implementation")

		return &NoOpMetrics{}, nil
	}

	return NewOTELMetrics(ctx, cfg, logger)
}

func NewOTELMetrics(ctx context.Context, cfg config.ServiceConfig, logger Logger) (*OTELMetrics, error) {
	endpoint := fmt.Sprintf("%s:%s", cfg.Telemetry.OtelGRPCHost, cfg.Telemetry.OtelGRPCPort)

	conn, err := grpc.NewClient(
		endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection to OTEL collector: %w", err)
	}

	exporter, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.AppConfig.ServiceName),
			semconv.ServiceVersionKey.String(cfg.AppConfig.ServiceVersion),
			semconv.ServiceInstanceIDKey.String(cfg.AppConfig.CommitSHA),
			semconv.DeploymentEnvironmentKey.String(cfg.AppConfig.Env),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(meterProvider)

	meter := meterProvider.Meter(
		metricsNamespace,
		metric.WithInstrumentationVersion(cfg.AppConfig.ServiceVersion),
	)

	provider := &OTELMetrics{
		meterProvider: meterProvider,
		meter:         meter,
		logger:        logger.Component("metrics"),
	}

	if err := provider.initializeMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	logger.Info().
		Str("otel_endpoint", endpoint).
		Msg("OTEL metrics provider initialized successfully")

	return provider, nil
}

func (om *OTELMetrics) initializeMetrics() error {
	var err error

	om.httpRequestTotal, err = om.meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	om.httpRequestDuration, err = om.meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	om.httpRequestSize, err = om.meter.Int64Histogram(
		"http_request_size_bytes",
		metric.WithDescription("HTTP request size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return fmt.Errorf("failed to create http_request_size_bytes histogram: %w", err)
	}

	om.httpResponseSize, err = om.meter.Int64Histogram(
		"http_response_size_bytes",
		metric.WithDescription("HTTP response size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return fmt.Errorf("failed to create http_response_size_bytes histogram: %w", err)
	}

	om.dispositionTotal, err = om.meter.Int64Counter(
		"message_dispositions_total",
		metric.WithDescription("Total number of deliveries settled, by action"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create message_dispositions_total counter: %w", err)
	}

	om.connectionAttemptTotal, err = om.meter.Int64Counter(
		"broker_connection_attempts_total",
		metric.WithDescription("Total number of broker connection attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create broker_connection_attempts_total counter: %w", err)
	}

	om.connectionErrorTotal, err = om.meter.Int64Counter(
		"broker_connection_errors_total",
		metric.WithDescription("Total number of failed broker connection attempts"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create broker_connection_errors_total counter: %w", err)
	}

	om.publishTotal, err = om.meter.Int64Counter(
		"messages_published_total",
		metric.WithDescription("Total number of messages published"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create messages_published_total counter: %w", err)
	}

	om.publishErrorTotal, err = om.meter.Int64Counter(
		"message_publish_errors_total",
		metric.WithDescription("Total number of failed publishes"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create message_publish_errors_total counter: %w", err)
	}

	om.relayedMessageTotal, err = om.meter.Int64Counter(
		"relayed_messages_total",
		metric.WithDescription("Total number of messages handled by the relay, by outcome"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create relayed_messages_total counter: %w", err)
	}

	om.processingTimeDuration, err = om.meter.Float64Histogram(
		"processing_time_seconds",
		metric.WithDescription("Time spent processing a delivery in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create processing_time_seconds histogram: %w", err)
	}

	om.commandTotal, err = om.meter.Int64Counter(
		"commands_total",
		metric.WithDescription("Total number of handled commands"),
		metric.WithUnit("{command}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create commands_total counter: %w", err)
	}

	om.commandDuration, err = om.meter.Float64Histogram(
		"command_duration_seconds",
		metric.WithDescription("Command handling duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create command_duration_seconds histogram: %w", err)
	}

	return nil
}

func (om *OTELMetrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration, requestSize, responseSize int64) {
	om.httpRequestTotal.Add(ctx, 1,
		metric.WithAttributes(
			HTTPMethodAttr(method),
			HTTPPathAttr(path),
			HTTPStatusCodeAttr(statusCode),
		),
	)

	om.httpRequestDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			HTTPMethodAttr(method),
			HTTPPathAttr(path),
			HTTPStatusCodeAttr(statusCode),
		),
	)

	om.httpRequestSize.Record(ctx, requestSize,
		metric.WithAttributes(
			HTTPMethodAttr(method),
			HTTPPathAttr(path),
		),
	)

	om.httpResponseSize.Record(ctx, responseSize,
		metric.WithAttributes(
			HTTPMethodAttr(method),
			HTTPPathAttr(path),
			HTTPStatusCodeAttr(statusCode),
		),
	)
}

func (om *OTELMetrics) RecordDisposition(ctx context.Context, action string) {
	om.dispositionTotal.Add(ctx, 1,
		metric.WithAttributes(
			ActionAttr(action),
		),
	)
}

func (om *OTELMetrics) RecordConnectionAttempt(ctx context.Context, endpoint string, success bool) {
	om.connectionAttemptTotal.Add(ctx, 1,
		metric.WithAttributes(
			EndpointAttr(endpoint),
			StatusAttr(statusOf(success)),
		),
	)

	if !success {
		om.connectionErrorTotal.Add(ctx, 1,
			metric.WithAttributes(
				EndpointAttr(endpoint),
			),
		)
	}
}

func (om *OTELMetrics) RecordPublish(ctx context.Context, target string, success bool) {
	if success {
		om.publishTotal.Add(ctx, 1,
			metric.WithAttributes(
				TargetAttr(target),
			),
		)

		return
	}

	om.publishErrorTotal.Add(ctx, 1,
		metric.WithAttributes(
			TargetAttr(target),
		),
	)
}

func (om *OTELMetrics) RecordRelayedMessage(ctx context.Context, messageType, outcome string) {
	om.relayedMessageTotal.Add(ctx, 1,
		metric.WithAttributes(
			MessageTypeAttr(messageType),
			OutcomeAttr(outcome),
		),
	)
}

func (om *OTELMetrics) RecordProcessingTime(ctx context.Context, duration time.Duration) {
	om.processingTimeDuration.Record(ctx, duration.Seconds())
}

func (om *OTELMetrics) RecordCommand(ctx context.Context, command string, success bool) {
	om.commandTotal.Add(ctx, 1,
		metric.WithAttributes(
			CommandAttr(command),
			StatusAttr(statusOf(success)),
		),
	)
}

func (om *OTELMetrics) RecordCommandDuration(ctx context.Context, command string, duration time.Duration) {
	om.commandDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			CommandAttr(command),
		),
	)
}

func (om *OTELMetrics) Handler() http.Handler {
	return promhttp.Handler()
}

func (om *OTELMetrics) Shutdown(ctx context.Context) error {
	if err := om.meterProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}

	return nil
}

func statusOf(success bool) string {
	if success {
		return "success"
	}

	return "error"
}
