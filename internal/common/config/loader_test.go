package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
camunda:
  broker_address: "localhost:26500"
workers:
  search-products:
    enabled: true
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Shopping.CacheBackend)
	assert.Equal(t, 600000, cfg.Shopping.CacheTTL)
	assert.Equal(t, 5, cfg.Shopping.MinResults)
	assert.Equal(t, 5, cfg.Shopping.CompareLimit)
	assert.InDelta(t, 0.84, cfg.Shopping.SimilarityThreshold, 1e-9)
	assert.Equal(t, 800, cfg.Assistant.MaxMessageLength)
	assert.Equal(t, 3, cfg.Assistant.HistoryTurns)
	assert.InDelta(t, 0.7, cfg.Assistant.FlightThreshold, 1e-9)

	assert.Equal(t, []string{"gemini-2.5-flash", "gemini-2.0-flash", "gemini-1.5-flash", "gemini-1.5-pro"}, cfg.Providers.Gemini.Models)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.Providers.Groq.Model)
	assert.Equal(t, 10000, cfg.Providers.Groq.Timeout)
	assert.Equal(t, 15000, cfg.Providers.OpenRouter.Timeout)
	assert.Equal(t, 20, cfg.Providers.SerpAPI.MaxResults)

	wcfg := cfg.Workers["search-products"]
	assert.True(t, wcfg.Enabled)
	assert.Equal(t, 5, wcfg.MaxJobsActive)
	assert.Equal(t, 30000, wcfg.Timeout)
	assert.Equal(t, 3, wcfg.MaxRetries)
}

func TestLoadFromFile_SecretsFromEnvironment(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "groq-secret")
	t.Setenv("SERPAPI_KEY", "serp-secret")
	t.Setenv("OPENROUTER_TOKEN", "router-secret")

	path := writeConfig(t, `
camunda:
  broker_address: "localhost:26500"
providers:
  openrouter:
    api_key: "${OPENROUTER_TOKEN}"
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "groq-secret", cfg.Providers.Groq.APIKey)
	assert.Equal(t, "serp-secret", cfg.Providers.SerpAPI.APIKey)
	assert.Equal(t, "router-secret", cfg.Providers.OpenRouter.APIKey)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing broker",
			body:    "shopping:\n  cache_backend: memory\n",
			wantErr: "camunda.broker_address",
		},
		{
			name:    "redis backend without address",
			body:    "camunda:\n  broker_address: x\nshopping:\n  cache_backend: redis\n",
			wantErr: "database.redis.address",
		},
		{
			name:    "unknown dedupe strategy",
			body:    "camunda:\n  broker_address: x\nshopping:\n  dedupe_strategy: fuzzy\n",
			wantErr: "dedupe_strategy",
		},
		{
			name:    "unknown extractor",
			body:    "camunda:\n  broker_address: x\nassistant:\n  extractor: strict\n",
			wantErr: "assistant.extractor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetWorkerConfig(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"detect-flight-intent": {Enabled: false, MaxJobsActive: 2, Timeout: 1000},
	}}

	assert.False(t, IsWorkerEnabled(cfg, "detect-flight-intent"))
	assert.True(t, IsWorkerEnabled(cfg, "search-products"))

	assert.Equal(t, 2, GetWorkerConfig(cfg, "detect-flight-intent").MaxJobsActive)
	assert.Equal(t, 30000, GetWorkerConfig(cfg, "unknown").Timeout)
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}

func TestPostgresConfig(t *testing.T) {
	pg := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "finda", SSLMode: "disable"}
	assert.True(t, pg.Enabled())
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=finda sslmode=disable", pg.GetDSN())
	assert.False(t, PostgresConfig{}.Enabled())
}

func TestLoadFromFile_UnsetPlaceholderDisablesBackend(t *testing.T) {
	path := writeConfig(t, `
camunda:
  broker_address: "localhost:26500"
database:
  elasticsearch:
    url: "${FINDA_TEST_UNSET_ES_URL}"
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Empty(t, cfg.Database.Elasticsearch.URL)
	assert.False(t, cfg.Database.Elasticsearch.Enabled())
	assert.Equal(t, "configs/activity-registry.json", cfg.Registry.Path)
}
