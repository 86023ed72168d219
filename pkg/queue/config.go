package queue

import (
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	defaultHeartbeat      = 10 * time.Second
	defaultConnectTimeout = 30 * time.Second
)

// Config is used to compose broker URLs when they are not given verbatim.
// Every host in Hosts yields one endpoint sharing the same credentials.
type Config struct {
	Scheme   string
	Username string
	Password string
	Hosts    []string
	Port     int
	Vhost    string
}

// DialConfig tunes the connection handshake performed by NewDialer.
type DialConfig struct {
	Heartbeat      time.Duration
	ConnectTimeout time.Duration
	ConnectionName string
}

// URLs returns one broker URL per configured host.
func (cfg Config) URLs() []string {
	urls := make([]string, 0, len(cfg.Hosts))
	for _, host := range cfg.Hosts {
		host = strings.TrimSpace(host)
		if host == "" {
			continue
		}

		urls = append(urls, getURL(cfg, host))
	}

	return urls
}

func getURL(cfg Config, host string) string {
	scheme := cfg.Scheme
	if scheme == "" {
		scheme = "amqp"
	}

	uri := amqp.URI{
		Scheme:   scheme,
		Username: cfg.Username,
		Password: cfg.Password,
		Host:     host,
		Port:     cfg.Port,
		Vhost:    cfg.Vhost,
	}

	return uri.String()
}

// SanitizeURL strips credentials from a broker URL so it can be logged.
func SanitizeURL(raw string) string {
	uri, err := amqp.ParseURI(raw)
	if err != nil {
		return "invalid-url"
	}

	uri.Password = ""

	return uri.String()
}
