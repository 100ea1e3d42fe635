// Package config provides configuration loading for the constellation
// daemon and CLI.
//
// Values come from hardcoded defaults, then an optional YAML or TOML file,
// then environment variables. Every setting lives under a single-word
// section so that SECTION_FIELD_NAME maps to section.field_name.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the complete constellation configuration.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Gardens     GardensConfig     `koanf:"gardens"`
	Letters     LettersConfig     `koanf:"letters"`
	Aggregation AggregationConfig `koanf:"aggregation"`
	Stream      StreamConfig      `koanf:"stream"`
	RateLimit   RateLimitConfig   `koanf:"ratelimit"`
	Logging     LoggingConfig     `koanf:"logging"`
	Telemetry   TelemetryConfig   `koanf:"telemetry"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string   `koanf:"http_host"`
	Port            int      `koanf:"http_port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// GardensConfig locates the garden store.
type GardensConfig struct {
	Dir   string `koanf:"dir"`
	Watch bool   `koanf:"watch"` // rebuild and publish on file changes
}

// LettersConfig locates the letters file.
type LettersConfig struct {
	Path string `koanf:"path"`
}

// AggregationConfig tunes view builds.
type AggregationConfig struct {
	Concurrency int      `koanf:"concurrency"`
	LoadTimeout Duration `koanf:"load_timeout"`
}

// StreamConfig controls live updates over NATS.
type StreamConfig struct {
	Enabled      bool     `koanf:"enabled"`
	NATSURL      string   `koanf:"nats_url"`
	Embedded     bool     `koanf:"embedded"` // run an in-process NATS server
	EmbeddedPort int      `koanf:"embedded_port"`
	Subject      string   `koanf:"subject"`
	Heartbeat    Duration `koanf:"heartbeat"`
	Debounce     Duration `koanf:"debounce"`
}

// RateLimitConfig limits requests per client IP. Zero disables limiting.
type RateLimitConfig struct {
	RequestsPerMinute int `koanf:"requests_per_minute"`
	Burst             int `koanf:"burst"`
}

// LoggingConfig selects log level and encoding.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	Protocol    string  `koanf:"protocol"` // "grpc" or "http"
	Insecure    bool    `koanf:"insecure"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "localhost",
			Port:            3333,
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Gardens: GardensConfig{
			Dir:   "gardens",
			Watch: true,
		},
		Letters: LettersConfig{
			Path: "data/letters-to-humans.json",
		},
		Aggregation: AggregationConfig{
			Concurrency: 8,
			LoadTimeout: Duration(5 * time.Second),
		},
		Stream: StreamConfig{
			Enabled:      true,
			NATSURL:      "",
			Embedded:     true,
			EmbeddedPort: -1, // random free port
			Subject:      "constellation.updated",
			Heartbeat:    Duration(30 * time.Second),
			Debounce:     Duration(250 * time.Millisecond),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
			Burst:             20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			Endpoint:    "localhost:4317",
			Protocol:    "grpc",
			Insecure:    true,
			ServiceName: "constellation",
			SampleRate:  1.0,
		},
	}
}

// Load returns the defaults overridden by environment variables.
//
// Environment variables:
//   - SERVER_HTTP_HOST, SERVER_HTTP_PORT, SERVER_SHUTDOWN_TIMEOUT
//   - GARDENS_DIR, GARDENS_WATCH
//   - LETTERS_PATH
//   - AGGREGATION_CONCURRENCY, AGGREGATION_LOAD_TIMEOUT
//   - STREAM_ENABLED, STREAM_NATS_URL, STREAM_EMBEDDED, STREAM_SUBJECT, ...
//   - RATELIMIT_REQUESTS_PER_MINUTE, RATELIMIT_BURST
//   - LOGGING_LEVEL, LOGGING_FORMAT
//   - TELEMETRY_ENABLED, TELEMETRY_ENDPOINT, TELEMETRY_PROTOCOL, ...
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("Server port:", cfg.Server.Port)
func Load() (*Config, error) {
	k, err := newKoanf(nil, nil)
	if err != nil {
		return nil, err
	}
	return unmarshal(k)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout.Duration() <= 0 {
		return errors.New("shutdown timeout must be positive")
	}

	if c.Gardens.Dir == "" {
		return errors.New("gardens directory is required")
	}
	if c.Letters.Path == "" {
		return errors.New("letters path is required")
	}

	if c.Aggregation.Concurrency < 1 {
		return fmt.Errorf("aggregation concurrency must be positive, got %d", c.Aggregation.Concurrency)
	}
	if c.Aggregation.LoadTimeout.Duration() <= 0 {
		return errors.New("aggregation load timeout must be positive")
	}

	if c.Stream.Enabled {
		if c.Stream.Subject == "" {
			return errors.New("stream subject is required when streaming is enabled")
		}
		if !c.Stream.Embedded && c.Stream.NATSURL == "" {
			return errors.New("stream nats_url is required unless the embedded server is used")
		}
		if c.Stream.Heartbeat.Duration() <= 0 {
			return errors.New("stream heartbeat must be positive")
		}
		if c.Stream.Debounce.Duration() <= 0 {
			return errors.New("stream debounce must be positive")
		}
	}

	if c.RateLimit.RequestsPerMinute < 0 {
		return fmt.Errorf("rate limit cannot be negative: %d", c.RateLimit.RequestsPerMinute)
	}
	if c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate limit burst cannot be negative: %d", c.RateLimit.Burst)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging format must be 'json' or 'console', got %q", c.Logging.Format)
	}

	if c.Telemetry.Enabled {
		if c.Telemetry.Endpoint == "" {
			return errors.New("telemetry endpoint is required when telemetry is enabled")
		}
		if c.Telemetry.Protocol != "grpc" && c.Telemetry.Protocol != "http" {
			return fmt.Errorf("telemetry protocol must be 'grpc' or 'http', got %q", c.Telemetry.Protocol)
		}
		if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
			return fmt.Errorf("telemetry sample rate must be between 0 and 1, got %f", c.Telemetry.SampleRate)
		}
	}

	return nil
}
