package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/infLocus/Crowdsourced-Review-Platform/pkg/config"
	"github.com/infLocus/Crowdsourced-Review-Platform/pkg/database"
	"github.com/infLocus/Crowdsourced-Review-Platform/pkg/kafka"
	"github.com/infLocus/Crowdsourced-Review-Platform/pkg/middleware"
	"github.com/infLocus/Crowdsourced-Review-Platform/pkg/tracing"
)

// ServiceName identifies this process in logs, metrics and traces.
const ServiceName = "directory"

const defaultJWTSecret = "change-this-to-a-secure-secret"

// Search engine kinds.
const (
	SearchMemory        = "memory"
	SearchElasticsearch = "elasticsearch"
)

// Config holds all configuration for the directory service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json"`

	// HTTP server
	HTTPPort         int           `env:"HTTP_PORT" envDefault:"5000"`
	HTTPReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	HTTPWriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15s"`
	HTTPIdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// PostgreSQL
	PostgresHost     string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int           `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string        `env:"POSTGRES_USER" envDefault:"directory"`
	PostgresPass     string        `env:"POSTGRES_PASSWORD" envDefault:"directory_secret"`
	PostgresDB       string        `env:"POSTGRES_DB" envDefault:"directory"`
	PostgresSSL      string        `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	PostgresMaxConns int32         `env:"POSTGRES_MAX_CONNS" envDefault:"25"`
	SlowQuery        time.Duration `env:"SLOW_QUERY_THRESHOLD" envDefault:"200ms"`

	// Redis
	RedisHost     string        `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int           `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string        `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	CacheTTL      time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"5m"`

	// Kafka
	KafkaEnabled       bool          `env:"KAFKA_ENABLED" envDefault:"true"`
	KafkaBrokers       []string      `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaConsumerGroup string        `env:"KAFKA_CONSUMER_GROUP" envDefault:"directory-projector"`
	KafkaMaxRetries    int           `env:"KAFKA_MAX_RETRIES" envDefault:"3"`
	KafkaRetryBackoff  time.Duration `env:"KAFKA_RETRY_BACKOFF" envDefault:"500ms"`
	IdempotencyTTL     time.Duration `env:"EVENT_IDEMPOTENCY_TTL" envDefault:"24h"`

	// JWT
	JWTSecret        string        `env:"JWT_SECRET" envDefault:"change-this-to-a-secure-secret"`
	JWTAccessExpiry  time.Duration `env:"JWT_ACCESS_TOKEN_EXPIRY" envDefault:"15m"`
	JWTRefreshExpiry time.Duration `env:"JWT_REFRESH_TOKEN_EXPIRY" envDefault:"168h"`

	// Auth rate limiting, per client IP
	AuthRateLimitRPS   float64 `env:"AUTH_RATE_LIMIT_RPS" envDefault:"1"`
	AuthRateLimitBurst int     `env:"AUTH_RATE_LIMIT_BURST" envDefault:"10"`
	TrustProxy         bool    `env:"TRUST_PROXY" envDefault:"false"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Search
	SearchEngine          string        `env:"SEARCH_ENGINE" envDefault:"memory"`
	ElasticsearchURLs     []string      `env:"ELASTICSEARCH_URLS" envDefault:"http://localhost:9200" envSeparator:","`
	ElasticsearchIndex    string        `env:"ELASTICSEARCH_INDEX" envDefault:"businesses"`
	SearchBreakerFailures uint32        `env:"SEARCH_BREAKER_FAILURES" envDefault:"5"`
	SearchBreakerTimeout  time.Duration `env:"SEARCH_BREAKER_TIMEOUT" envDefault:"30s"`

	// Observability
	OTELEnabled    bool     `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string   `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64  `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
	PprofCIDRs     []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32,::1/128" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load directory config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and, outside development, secret strength.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("invalid Postgres port: %d", c.PostgresPort)
	}
	if c.PostgresHost == "" || c.PostgresDB == "" || c.PostgresUser == "" {
		return fmt.Errorf("POSTGRES_HOST, POSTGRES_DB and POSTGRES_USER must be set")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be within [0, 1], got %v", c.OTELSampleRate)
	}
	switch c.SearchEngine {
	case SearchMemory:
	case SearchElasticsearch:
		if len(c.ElasticsearchURLs) == 0 {
			return fmt.Errorf("ELASTICSEARCH_URLS must be set when SEARCH_ENGINE=%s", SearchElasticsearch)
		}
	default:
		return fmt.Errorf("unknown SEARCH_ENGINE %q", c.SearchEngine)
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS must be set when Kafka is enabled")
	}

	// In non-development environments, require an explicitly set, strong JWT secret.
	if c.Environment != "development" {
		if c.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be explicitly set via environment variable in %q mode", c.Environment)
		}
		if len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters long, got %d", len(c.JWTSecret))
		}
	}
	return nil
}

// Postgres returns the pool configuration.
func (c *Config) Postgres() *database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.Host = c.PostgresHost
	pg.Port = c.PostgresPort
	pg.User = c.PostgresUser
	pg.Password = c.PostgresPass
	pg.DBName = c.PostgresDB
	pg.SSLMode = c.PostgresSSL
	if c.PostgresMaxConns > 0 {
		pg.MaxConns = c.PostgresMaxConns
	}
	return &pg
}

// Redis returns the Redis client configuration.
func (c *Config) Redis() database.RedisConfig {
	r := database.DefaultRedisConfig()
	r.Host = c.RedisHost
	r.Port = c.RedisPort
	r.Password = c.RedisPassword
	r.DB = c.RedisDB
	return r
}

// Producer returns the Kafka producer configuration.
func (c *Config) Producer() kafka.ProducerConfig {
	return kafka.DefaultProducerConfig(c.KafkaBrokers)
}

// Consumer returns the Kafka consumer configuration for topic.
func (c *Config) Consumer(topic string) kafka.ConsumerConfig {
	return kafka.ConsumerConfig{
		Brokers:  c.KafkaBrokers,
		Topic:    topic,
		GroupID:  c.KafkaConsumerGroup,
		MinBytes: 1,
		MaxBytes: 10e6,
	}
}

// Tracing returns the OpenTelemetry configuration.
func (c *Config) Tracing(version string) tracing.Config {
	return tracing.Config{
		ServiceName:    ServiceName,
		ServiceVersion: version,
		Environment:    c.Environment,
		OTLPEndpoint:   c.OTELEndpoint,
		SampleRate:     c.OTELSampleRate,
		Enabled:        c.OTELEnabled,
	}
}

// AuthRateLimit returns the limiter applied to the auth routes.
func (c *Config) AuthRateLimit() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		RPS:        c.AuthRateLimitRPS,
		Burst:      c.AuthRateLimitBurst,
		TrustProxy: c.TrustProxy,
	}
}

// CORS returns the CORS configuration.
func (c *Config) CORS() middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = c.CORSAllowedOrigins
	return cors
}
