package config

import (
	"time"

	"github.com/architeacher/svc-message-relay/pkg/queue"
)

// Compile time variables are set by -ldflags.
var (
	ServiceVersion string
	CommitSHA      string
)

const (
	Development = 1 << iota
	Sandbox
	Staging
	Production
)

const (
	TargetQueue    = "queue"
	TargetExchange = "exchange"
)

type (
	ServiceConfig struct {
		AppConfig     AppConfig           `json:"app_config"`
		Logging       LoggingConfig       `json:"logging"`
		Telemetry     Telemetry           `json:"telemetry"`
		SecretStorage SecretStorageConfig `json:"secret_storage"`
		HTTPServer    HTTPServerConfig    `json:"http_server"`
		Queue         QueueConfig         `json:"queue"`
		Quarantine    QuarantineConfig    `json:"quarantine"`
		Relay         RelayConfig         `json:"relay"`
		Backoff       BackoffConfig       `json:"backoff"`
	}

	AppConfig struct {
		ServiceName    string `envconfig:"APP_SERVICE_NAME" default:"svc-message-relay" json:"service_name"`
		ServiceVersion string `envconfig:"APP_SERVICE_VERSION" default:"0.0.0" json:"service_version"`
		CommitSHA      string `envconfig:"APP_COMMIT_SHA" default:"unknown" json:"commit_sha"`
		Env            string `envconfig:"APP_ENVIRONMENT" default:"unknown" json:"env"`
	}

	LoggingConfig struct {
		Level     string          `envconfig:"LOGGING_LEVEL" default:"info" json:"level"`
		Format    string          `envconfig:"LOGGING_FORMAT" default:"json" json:"format"`
		AccessLog AccessLogConfig `json:"access_log"`
	}

	AccessLogConfig struct {
		Enabled         bool `envconfig:"ACCESS_LOG_ENABLED" default:"true" json:"enabled"`
		LogHealthChecks bool `envconfig:"ACCESS_LOG_HEALTH_CHECKS" default:"false" json:"log_health_checks"`
	}

	Telemetry struct {
		ExporterType string `envconfig:"OTEL_EXPORTER" default:"grpc" json:"exporter_type"`

		OtelGRPCHost       string `envconfig:"OTEL_HOST" json:"otel_grpc_host"`
		OtelGRPCPort       string `envconfig:"OTEL_PORT" default:"4317" json:"otel_grpc_port"`
		OtelProductCluster string `envconfig:"OTEL_PRODUCT_CLUSTER" json:"otel_product_cluster"`

		Metrics Metrics `json:"metrics"`
		Traces  Traces  `json:"traces"`
	}

	Metrics struct {
		Enabled bool `envconfig:"METRICS_ENABLED" default:"false" json:"enabled"`
	}

	Traces struct {
		Enabled      bool    `envconfig:"TRACES_ENABLED" default:"false" json:"enabled"`
		SamplerRatio float64 `envconfig:"TRACES_SAMPLER_RATIO" default:"1" json:"sampler_ratio"`
	}

	SecretStorageConfig struct {
		Enabled       bool          `envconfig:"VAULT_ENABLED" default:"false" json:"enabled"`
		Address       string        `envconfig:"VAULT_ADDRESS" default:"http://vault:8200" json:"address"`
		Token         string        `envconfig:"VAULT_TOKEN" default:"" json:"-"`
		RoleID        string        `envconfig:"VAULT_ROLE_ID" default:"" json:"role_id,omitempty"`
		SecretID      string        `envconfig:"VAULT_SECRET_ID" default:"" json:"-"`
		AuthMethod    string        `envconfig:"VAULT_AUTH_METHOD" default:"token" json:"auth_method"`
		MountPath     string        `envconfig:"VAULT_MOUNT_PATH" default:"svc-message-relay" json:"mount_path"`
		Namespace     string        `envconfig:"VAULT_NAMESPACE" default:"" json:"namespace,omitempty"`
		Timeout       time.Duration `envconfig:"VAULT_TIMEOUT" default:"30s" json:"timeout"`
		MaxRetries    int           `envconfig:"VAULT_MAX_RETRIES" default:"3" json:"max_retries"`
		TLSSkipVerify bool          `envconfig:"VAULT_TLS_SKIP_VERIFY" default:"false" json:"tls_skip_verify"`
		PollInterval  time.Duration `envconfig:"VAULT_POLL_INTERVAL" default:"24h" json:"poll_interval"`
	}

	// HTTPServerConfig configures the operational endpoints (health, metrics).
	HTTPServerConfig struct {
		Port            int           `envconfig:"HTTP_SERVER_PORT" default:"8088" json:"port"`
		Host            string        `envconfig:"HTTP_SERVER_HOST" default:"0.0.0.0" json:"host"`
		ReadTimeout     time.Duration `envconfig:"HTTP_SERVER_READ_TIMEOUT" default:"5s" json:"read_timeout"`
		WriteTimeout    time.Duration `envconfig:"HTTP_SERVER_WRITE_TIMEOUT" default:"10s" json:"write_timeout"`
		IdleTimeout     time.Duration `envconfig:"HTTP_SERVER_IDLE_TIMEOUT" default:"120s" json:"idle_timeout"`
		ShutdownTimeout time.Duration `envconfig:"HTTP_SERVER_SHUTDOWN_TIMEOUT" default:"30s" json:"shutdown_timeout"`
	}

	// QueueConfig describes the brokers and the consumed topology. URLs takes
	// precedence over the composed Hosts list.
	QueueConfig struct {
		URLs           []string      `envconfig:"RABBITMQ_URLS" json:"-"`
		Hosts          []string      `envconfig:"RABBITMQ_HOSTS" default:"rabbitmq" json:"hosts"`
		Port           int           `envconfig:"RABBITMQ_PORT" default:"5672" json:"port"`
		Scheme         string        `envconfig:"RABBITMQ_SCHEME" default:"amqp" json:"scheme"`
		Username       string        `envconfig:"RABBITMQ_USERNAME" default:"guest" json:"username"`
		Password       string        `envconfig:"RABBITMQ_PASSWORD" default:"guest" json:"-"`
		VirtualHost    string        `envconfig:"RABBITMQ_VIRTUAL_HOST" default:"/" json:"virtual_host"`
		ExchangeName   string        `envconfig:"RABBITMQ_EXCHANGE_NAME" default:"relay.events" json:"exchange_name"`
		ExchangeType   string        `envconfig:"RABBITMQ_EXCHANGE_TYPE" default:"topic" json:"exchange_type"`
		BindingKey     string        `envconfig:"RABBITMQ_BINDING_KEY" default:"#" json:"binding_key"`
		QueueName      string        `envconfig:"RABBITMQ_NAME" default:"relay.input" json:"queue_name"`
		ConsumerTag    string        `envconfig:"RABBITMQ_CONSUMER_TAG" default:"" json:"consumer_tag"`
		Durable        bool          `envconfig:"RABBITMQ_DURABLE" default:"true" json:"durable"`
		RequireTxID    bool          `envconfig:"RABBITMQ_REQUIRE_TX_ID" default:"true" json:"require_tx_id"`
		ConnectTimeout time.Duration `envconfig:"RABBITMQ_CONNECT_TIMEOUT" default:"10s" json:"connect_timeout"`
		Heartbeat      time.Duration `envconfig:"RABBITMQ_HEARTBEAT" default:"10s" json:"heartbeat"`
		ReconnectDelay time.Duration `envconfig:"RABBITMQ_RECONNECT_DELAY" default:"5s" json:"reconnect_delay"`
	}

	// QuarantineConfig describes where quarantined messages are published.
	QuarantineConfig struct {
		Target         string               `envconfig:"QUARANTINE_TARGET" default:"queue" json:"target"`
		Name           string               `envconfig:"QUARANTINE_NAME" default:"relay.quarantine" json:"name"`
		ExchangeType   string               `envconfig:"QUARANTINE_EXCHANGE_TYPE" default:"fanout" json:"exchange_type"`
		Durable        bool                 `envconfig:"QUARANTINE_DURABLE" default:"true" json:"durable"`
		Confirm        bool                 `envconfig:"QUARANTINE_CONFIRM" default:"true" json:"confirm"`
		ConfirmTimeout time.Duration        `envconfig:"QUARANTINE_CONFIRM_TIMEOUT" default:"5s" json:"confirm_timeout"`
		CircuitBreaker CircuitBreakerConfig `json:"circuit_breaker"`
	}

	// RelayConfig describes the output side of the relay.
	RelayConfig struct {
		OutputExchange string            `envconfig:"RELAY_OUTPUT_EXCHANGE" default:"relay.output" json:"output_exchange"`
		ExchangeType   string            `envconfig:"RELAY_OUTPUT_EXCHANGE_TYPE" default:"topic" json:"exchange_type"`
		Durable        bool              `envconfig:"RELAY_OUTPUT_DURABLE" default:"true" json:"durable"`
		Confirm        bool              `envconfig:"RELAY_CONFIRM" default:"true" json:"confirm"`
		ConfirmTimeout time.Duration     `envconfig:"RELAY_CONFIRM_TIMEOUT" default:"5s" json:"confirm_timeout"`
		Mandatory      bool              `envconfig:"RELAY_MANDATORY" default:"true" json:"mandatory"`
		Routes         map[string]string `envconfig:"RELAY_ROUTES" default:"order.created:orders.created,order.cancelled:orders.cancelled" json:"routes"`
		MaxBodyBytes   int               `envconfig:"RELAY_MAX_BODY_BYTES" default:"1048576" json:"max_body_bytes"`
	}

	// BackoffConfig drives the delay between failed initial connect attempts.
	BackoffConfig struct {
		// BaseDelay is the amount of time to backoff after the first failure.
		BaseDelay time.Duration `envconfig:"BACKOFF_BASE_DELAY" default:"1s" json:"base_delay"`
		// Multiplier is the factor with which to multiply backoffs after a
		// failed retry. Should ideally be greater than 1.
		Multiplier float64 `envconfig:"BACKOFF_MULTIPLIER" default:"1.6" json:"multiplier"`
		// Jitter is the factor with which backoffs are randomized.
		Jitter float64 `envconfig:"BACKOFF_JITTER" default:"0.2" json:"jitter"`
		// MaxDelay is the upper bound of backoff delay.
		MaxDelay time.Duration `envconfig:"BACKOFF_MAX_DELAY" default:"30s" json:"max_delay"`
	}

	CircuitBreakerConfig struct {
		Enabled     bool          `envconfig:"QUARANTINE_CIRCUIT_BREAKER_ENABLED" default:"true" json:"enabled"`
		MaxRequests uint32        `envconfig:"QUARANTINE_CIRCUIT_BREAKER_MAX_REQUESTS" default:"3" json:"max_requests"`
		Interval    time.Duration `envconfig:"QUARANTINE_CIRCUIT_BREAKER_INTERVAL" default:"10s" json:"interval"`
		Timeout     time.Duration `envconfig:"QUARANTINE_CIRCUIT_BREAKER_TIMEOUT" default:"60s" json:"timeout"`
		MaxFailures uint32        `envconfig:"QUARANTINE_CIRCUIT_BREAKER_MAX_FAILURES" default:"5" json:"max_failures"`
	}
)

// BrokerURLs returns the configured broker endpoints, composing them from the
// host list when no explicit URLs are given.
func (c QueueConfig) BrokerURLs() []string {
	if len(c.URLs) > 0 {
		return c.URLs
	}

	return queue.Config{
		Scheme:   c.Scheme,
		Username: c.Username,
		Password: c.Password,
		Hosts:    c.Hosts,
		Port:     c.Port,
		Vhost:    c.VirtualHost,
	}.URLs()
}

// Topology returns the consumed exchange, queue and binding.
func (c QueueConfig) Topology() queue.Topology {
	return queue.Topology{
		Exchange:     c.ExchangeName,
		ExchangeType: c.ExchangeType,
		Queue:        c.QueueName,
		BindingKey:   c.BindingKey,
		Durable:      c.Durable,
	}
}

// PublishTarget returns the quarantine destination.
func (c QuarantineConfig) PublishTarget() queue.Target {
	if c.Target == TargetExchange {
		return queue.ExchangeTarget{
			Exchange: c.Name,
			Kind:     c.ExchangeType,
			Durable:  c.Durable,
		}
	}

	return queue.QueueTarget{
		Queue:   c.Name,
		Durable: c.Durable,
	}
}

// PublishTarget returns the relay output exchange.
func (c RelayConfig) PublishTarget() queue.Target {
	return queue.ExchangeTarget{
		Exchange: c.OutputExchange,
		Kind:     c.ExchangeType,
		Durable:  c.Durable,
	}
}
