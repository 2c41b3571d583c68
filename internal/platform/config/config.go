package config

import (
	"os"
	"time"
)

// Server captures service level configuration.
type Server struct {
	Addr        string
	Environment string

	Database DatabaseConfig
	Ledger   LedgerConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

// DatabaseConfig holds the consent store connection settings. An empty URL
// selects the in-memory store.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// LedgerConfig holds the ledger gateway connection settings. An empty URL
// selects the in-process simulator, which is the development default.
type LedgerConfig struct {
	GatewayURL string
	APIKey     string
	Timeout    time.Duration
}

// RedisConfig holds trail cache settings. An empty URL disables caching.
type RedisConfig struct {
	URL      string
	TrailTTL time.Duration
}

// KafkaConfig holds compliance stream settings. Empty brokers disable the
// stream. Brokers is a comma-separated list.
type KafkaConfig struct {
	Brokers         string
	ComplianceTopic string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:        envOr("COVENANT_ADDR", ":8080"),
		Environment: envOr("COVENANT_ENV", "development"),
		Database: DatabaseConfig{
			URL:             os.Getenv("COVENANT_DATABASE_URL"),
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Ledger: LedgerConfig{
			GatewayURL: os.Getenv("COVENANT_LEDGER_GATEWAY_URL"),
			APIKey:     os.Getenv("COVENANT_LEDGER_API_KEY"),
			Timeout:    durationOr("COVENANT_LEDGER_TIMEOUT", 3*time.Second),
		},
		Redis: RedisConfig{
			URL:      os.Getenv("COVENANT_REDIS_URL"),
			TrailTTL: durationOr("COVENANT_TRAIL_CACHE_TTL", 30*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:         os.Getenv("COVENANT_KAFKA_BROKERS"),
			ComplianceTopic: envOr("COVENANT_KAFKA_COMPLIANCE_TOPIC", "consent.compliance"),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
