package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, 1000, cfg.Store.SeedSize)
	assert.Equal(t, 20, cfg.Engine.RecentlyViewedCapacity)
	assert.Equal(t, 10, cfg.Engine.SuggestLimit)
	assert.Equal(t, 50, cfg.Engine.MaxSuggestLimit)
	assert.Nil(t, cfg.Engine.SKUFallbackScan)
	assert.True(t, cfg.SKUFallbackScan())
	assert.Equal(t, 2, cfg.Engine.RelatedDepth)
	assert.Equal(t, "none", cfg.Events.Source)
	assert.Equal(t, 10, cfg.Events.WorkerConcurrency)
	assert.True(t, cfg.MetricsEnabled)
	assert.False(t, cfg.TracingEnabled)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("STORE_BACKEND", "dynamodb")
	t.Setenv("STORE_DYNAMODB_TABLE", "products")
	t.Setenv("ENGINE_RECENTLY_VIEWED_CAPACITY", "5")
	t.Setenv("ENGINE_SKU_FALLBACK_SCAN", "false")
	t.Setenv("EVENTS_SOURCE", "sqs")
	t.Setenv("EVENTS_SQS_QUEUE_URL", "https://sqs.us-east-1.amazonaws.com/123456789012/catalog")
	t.Setenv("EVENTS_WORKER_CONCURRENCY", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "products", cfg.Store.DynamoDBTable)
	assert.Equal(t, 5, cfg.Engine.RecentlyViewedCapacity)
	assert.False(t, cfg.SKUFallbackScan())
	assert.Equal(t, "sqs", cfg.Events.Source)
	assert.Equal(t, 3, cfg.Events.WorkerConcurrency)
}

func TestSKUFallbackScanDefaultsByBackend(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want bool
	}{
		{"memory default", map[string]string{}, true},
		{"dynamodb default", map[string]string{"STORE_BACKEND": "dynamodb", "STORE_DYNAMODB_TABLE": "products"}, false},
		{"dynamodb explicit", map[string]string{"STORE_BACKEND": "dynamodb", "STORE_DYNAMODB_TABLE": "products", "ENGINE_SKU_FALLBACK_SCAN": "true"}, true},
		{"memory explicit off", map[string]string{"ENGINE_SKU_FALLBACK_SCAN": "false"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.SKUFallbackScan())
		})
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"unknown store", map[string]string{"STORE_BACKEND": "postgres"}, "STORE_BACKEND"},
		{"dynamo without table", map[string]string{"STORE_BACKEND": "dynamodb"}, "STORE_DYNAMODB_TABLE"},
		{"zero capacity", map[string]string{"ENGINE_RECENTLY_VIEWED_CAPACITY": "0"}, "ENGINE_RECENTLY_VIEWED_CAPACITY"},
		{"suggest over max", map[string]string{"ENGINE_SUGGEST_LIMIT": "80"}, "ENGINE_SUGGEST_LIMIT"},
		{"negative depth", map[string]string{"ENGINE_RELATED_DEPTH": "-1"}, "ENGINE_RELATED_DEPTH"},
		{"unknown source", map[string]string{"EVENTS_SOURCE": "kafka"}, "EVENTS_SOURCE"},
		{"sqs without queue", map[string]string{"EVENTS_SOURCE": "sqs"}, "EVENTS_SQS_QUEUE_URL"},
		{"zero workers", map[string]string{"EVENTS_WORKER_CONCURRENCY": "0"}, "EVENTS_WORKER_CONCURRENCY"},
		{"not a number", map[string]string{"STORE_SEED_SIZE": "lots"}, "SeedSize"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
