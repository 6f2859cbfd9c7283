// Package config loads the service configuration from environment
// variables. Every setting has a default except the Google credentials,
// and Load validates the whole struct so misconfiguration fails at startup.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Google   GoogleConfig
	Execute  ExecuteConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on. PORT is honoured for platforms that
	// inject it (default: 8080)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown, including draining
	// in-flight executions (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// MaxBodyBytes caps inbound request bodies (default: 1MiB)
	MaxBodyBytes int64 `env:"SERVER_MAX_BODY_BYTES" default:"1048576"`
}

// GoogleConfig holds Sheets API access settings.
type GoogleConfig struct {
	// APIKey authenticates read-only calls.
	APIKey string `env:"GOOGLE_SHEETS_API_KEY"`

	// ServiceAccountJSON is the inline service-account key. Writes need it.
	ServiceAccountJSON string `env:"GOOGLE_SERVICE_ACCOUNT_JSON"`

	// ServiceAccountFile is read when ServiceAccountJSON is empty.
	ServiceAccountFile string `env:"GOOGLE_SERVICE_ACCOUNT_FILE" envAlt:"GOOGLE_APPLICATION_CREDENTIALS"`

	// Endpoint overrides the API base URL, e.g. for an emulator.
	Endpoint string `env:"GOOGLE_SHEETS_ENDPOINT"`

	ReadTimeout  time.Duration `env:"GOOGLE_SHEETS_READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration `env:"GOOGLE_SHEETS_WRITE_TIMEOUT" default:"30s"`

	// ReadRange bounds the reader and filter modules (default: A1:ZZ1000)
	ReadRange string `env:"GOOGLE_SHEETS_READ_RANGE" default:"A1:ZZ1000"`
}

// HasServiceAccount reports whether a service-account key was configured.
func (c *GoogleConfig) HasServiceAccount() bool {
	return c.ServiceAccountJSON != "" || c.ServiceAccountFile != ""
}

// ServiceAccount returns the service-account key content.
func (c *GoogleConfig) ServiceAccount() ([]byte, error) {
	if c.ServiceAccountJSON != "" {
		return []byte(c.ServiceAccountJSON), nil
	}
	if c.ServiceAccountFile == "" {
		return nil, nil
	}
	data, err := os.ReadFile(c.ServiceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return data, nil
}

// ExecuteConfig bounds concurrent /execute calls.
type ExecuteConfig struct {
	// MaxConcurrent is the number of executions allowed in flight (default: 10)
	MaxConcurrent int `env:"EXECUTE_MAX_CONCURRENT" default:"10"`

	// MaxWaitTime is how long a request waits for a slot (default: 10s)
	MaxWaitTime time.Duration `env:"EXECUTE_MAX_WAIT_TIME" default:"10s"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`
}

// SecurityConfig holds inbound authentication and proxy settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// X-Forwarded-For / X-Real-IP headers are believed.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RequireAPIKey enables X-API-Key authentication on module routes.
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys.
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
