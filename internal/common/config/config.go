// internal/common/config/config.go
package config

import "fmt"

// Config is the root configuration of the worker manager.
type Config struct {
	App       AppConfig               `mapstructure:"app"`
	Camunda   CamundaConfig           `mapstructure:"camunda"`
	Database  DatabaseConfig          `mapstructure:"database"`
	Workers   map[string]WorkerConfig `mapstructure:"workers"`
	Providers ProvidersConfig         `mapstructure:"providers"`
	Assistant AssistantConfig         `mapstructure:"assistant"`
	Shopping  ShoppingConfig          `mapstructure:"shopping"`
	Registry  RegistryConfig          `mapstructure:"registry"`
	Logging   LoggingConfig           `mapstructure:"logging"`
	Server    ServerConfig            `mapstructure:"server"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// Enabled reports whether a history database is configured.
func (p PostgresConfig) Enabled() bool {
	return p.Host != "" && p.Database != ""
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"`
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

// Enabled reports whether a catalog cluster is configured.
func (e ElasticsearchConfig) Enabled() bool {
	return e.GetURL() != ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

// --- Provider Configuration ---

// ProvidersConfig holds credentials and endpoints for every external provider.
// An empty api_key marks that provider as unavailable; it is never a startup error.
type ProvidersConfig struct {
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	Groq       GroqConfig       `mapstructure:"groq"`
	OpenRouter OpenRouterConfig `mapstructure:"openrouter"`
	SerpAPI    SerpAPIConfig    `mapstructure:"serpapi"`
	FakeStore  FakeStoreConfig  `mapstructure:"fakestore"`
}

type GeminiConfig struct {
	APIKey  string   `mapstructure:"api_key"`
	BaseURL string   `mapstructure:"base_url"`
	Models  []string `mapstructure:"models"`
	Timeout int      `mapstructure:"timeout"` // milliseconds
}

type GroqConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
}

type OpenRouterConfig struct {
	APIKey  string   `mapstructure:"api_key"`
	BaseURL string   `mapstructure:"base_url"`
	Models  []string `mapstructure:"models"`
	Referer string   `mapstructure:"referer"`
	Title   string   `mapstructure:"title"`
	Timeout int      `mapstructure:"timeout"` // milliseconds
}

type SerpAPIConfig struct {
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	Engine     string `mapstructure:"engine"`
	Country    string `mapstructure:"country"`
	Language   string `mapstructure:"language"`
	MaxResults int    `mapstructure:"max_results"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
}

type FakeStoreConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// --- Pipeline Configuration ---

// AssistantConfig tunes message analysis.
type AssistantConfig struct {
	MaxMessageLength int     `mapstructure:"max_message_length"`
	HistoryTurns     int     `mapstructure:"history_turns"`
	FlightThreshold  float64 `mapstructure:"flight_threshold"`
	Extractor        string  `mapstructure:"extractor"` // greedy | balanced
}

// ShoppingConfig tunes product aggregation.
type ShoppingConfig struct {
	CacheBackend        string  `mapstructure:"cache_backend"` // memory | redis
	CacheTTL            int     `mapstructure:"cache_ttl"`     // milliseconds
	CacheMaxEntries     int     `mapstructure:"cache_max_entries"`
	CacheKeyPrefix      string  `mapstructure:"cache_key_prefix"`
	MinResults          int     `mapstructure:"min_results"`
	CompareLimit        int     `mapstructure:"compare_limit"`
	DedupeStrategy      string  `mapstructure:"dedupe_strategy"` // similarity | prefix
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	CatalogIndex        string  `mapstructure:"catalog_index"`
}

// RegistryConfig points at the activity registry.
type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// ServerConfig holds the health/metrics listener settings.
type ServerConfig struct {
	Address string `mapstructure:"address"`
}
