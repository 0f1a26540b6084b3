// Package config loads service configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// StoreConfig selects the backing catalog store.
type StoreConfig struct {
	// Backend is "memory" (seeded dataset) or "dynamodb"
	Backend       string `env:"BACKEND" envDefault:"memory"`
	SeedSize      int    `env:"SEED_SIZE" envDefault:"1000"`
	DynamoDBTable string `env:"DYNAMODB_TABLE"`
}

// EngineConfig sizes the in-process catalog structures.
type EngineConfig struct {
	RecentlyViewedCapacity int `env:"RECENTLY_VIEWED_CAPACITY" envDefault:"20"`
	SuggestLimit           int `env:"SUGGEST_LIMIT" envDefault:"10"`
	MaxSuggestLimit        int `env:"MAX_SUGGEST_LIMIT" envDefault:"50"`
	// SKUFallbackScan is nil when unset; see Config.SKUFallbackScan
	SKUFallbackScan *bool `env:"SKU_FALLBACK_SCAN"`
	RelatedDepth    int   `env:"RELATED_DEPTH" envDefault:"2"`
}

// EventsConfig selects where catalog mutation events come from and go to.
type EventsConfig struct {
	// Source is "none", "sqs" or "redis"
	Source            string `env:"SOURCE" envDefault:"none"`
	SQSQueueURL       string `env:"SQS_QUEUE_URL"`
	SNSTopicARN       string `env:"SNS_TOPIC_ARN"` // e.g. arn:aws:sns:us-east-1:123456789012:catalog-events
	WorkerConcurrency int    `env:"WORKER_CONCURRENCY" envDefault:"10"`
	RedisAddr         string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisChannel      string `env:"REDIS_CHANNEL" envDefault:"catalog-events"`
}

// Config holds all application configuration
type Config struct {
	ServerAddress string `env:"SERVER_ADDRESS" envDefault:":8080"`
	Environment   string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	AWSRegion     string `env:"AWS_REGION" envDefault:"us-east-1"`

	Store  StoreConfig  `envPrefix:"STORE_"`
	Engine EngineConfig `envPrefix:"ENGINE_"`
	Events EventsConfig `envPrefix:"EVENTS_"`

	MetricsEnabled      bool   `env:"METRICS_ENABLED" envDefault:"true"`
	TracingEnabled      bool   `env:"TRACING_ENABLED" envDefault:"false"`
	TracingOTLPEndpoint string `env:"TRACING_OTLP_ENDPOINT" envDefault:"localhost:4317"`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the selected backends have what they need.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "memory":
	case "dynamodb":
		if c.Store.DynamoDBTable == "" {
			return fmt.Errorf("STORE_DYNAMODB_TABLE is required when STORE_BACKEND=dynamodb")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be memory or dynamodb, got %q", c.Store.Backend)
	}

	if c.Engine.RecentlyViewedCapacity <= 0 {
		return fmt.Errorf("ENGINE_RECENTLY_VIEWED_CAPACITY must be positive, got %d", c.Engine.RecentlyViewedCapacity)
	}
	if c.Engine.SuggestLimit <= 0 || c.Engine.SuggestLimit > c.Engine.MaxSuggestLimit {
		return fmt.Errorf("ENGINE_SUGGEST_LIMIT must be in 1..%d, got %d", c.Engine.MaxSuggestLimit, c.Engine.SuggestLimit)
	}
	if c.Engine.RelatedDepth < 0 {
		return fmt.Errorf("ENGINE_RELATED_DEPTH must not be negative, got %d", c.Engine.RelatedDepth)
	}

	switch c.Events.Source {
	case "none":
	case "sqs":
		if c.Events.SQSQueueURL == "" {
			return fmt.Errorf("EVENTS_SQS_QUEUE_URL is required when EVENTS_SOURCE=sqs")
		}
	case "redis":
		if c.Events.RedisAddr == "" {
			return fmt.Errorf("EVENTS_REDIS_ADDR is required when EVENTS_SOURCE=redis")
		}
	default:
		return fmt.Errorf("EVENTS_SOURCE must be none, sqs or redis, got %q", c.Events.Source)
	}
	if c.Events.WorkerConcurrency <= 0 {
		return fmt.Errorf("EVENTS_WORKER_CONCURRENCY must be positive, got %d", c.Events.WorkerConcurrency)
	}

	return nil
}

// SKUFallbackScan reports whether a SKU index miss should scan the store. Unless set
// explicitly it is on for the memory store only, since a DynamoDB scan reads the whole table.
func (c *Config) SKUFallbackScan() bool {
	if c.Engine.SKUFallbackScan != nil {
		return *c.Engine.SKUFallbackScan
	}
	return c.Store.Backend == "memory"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
