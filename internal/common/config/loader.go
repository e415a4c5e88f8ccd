// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top,
// expands ${VAR} placeholders and fills secrets from the environment.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return finalize(v)
}

// LoadFromFile reads a single config file without environment overlays.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finalize(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func finalize(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			// Unset variables expand to "" so optional backends stay disabled.
			if expanded := os.ExpandEnv(strVal); expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

func overrideEmptyConfig(cfg *Config) {
	setIfEmpty(&cfg.Providers.Gemini.APIKey, "GEMINI_API_KEY")
	setIfEmpty(&cfg.Providers.Groq.APIKey, "GROQ_API_KEY")
	setIfEmpty(&cfg.Providers.OpenRouter.APIKey, "OPENROUTER_API_KEY")
	setIfEmpty(&cfg.Providers.SerpAPI.APIKey, "SERPAPI_KEY")

	setIfEmpty(&cfg.Database.Postgres.User, "DB_USER")
	setIfEmpty(&cfg.Database.Postgres.Password, "DB_PASSWORD")
	setIfEmpty(&cfg.Database.Redis.Password, "REDIS_PASSWORD")
}

func setIfEmpty(dst *string, envKey string) {
	if *dst != "" {
		return
	}
	if val := os.Getenv(envKey); val != "" {
		*dst = val
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "finda-workers"
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}

	if cfg.Registry.Path == "" {
		cfg.Registry.Path = "configs/activity-registry.json"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}

	applyProviderDefaults(&cfg.Providers)

	if cfg.Assistant.MaxMessageLength == 0 {
		cfg.Assistant.MaxMessageLength = 800
	}
	if cfg.Assistant.HistoryTurns == 0 {
		cfg.Assistant.HistoryTurns = 3
	}
	if cfg.Assistant.FlightThreshold == 0 {
		cfg.Assistant.FlightThreshold = 0.7
	}
	if cfg.Assistant.Extractor == "" {
		cfg.Assistant.Extractor = "greedy"
	}

	if cfg.Shopping.CacheBackend == "" {
		cfg.Shopping.CacheBackend = "memory"
	}
	if cfg.Shopping.CacheTTL == 0 {
		cfg.Shopping.CacheTTL = 600000
	}
	if cfg.Shopping.CacheKeyPrefix == "" {
		cfg.Shopping.CacheKeyPrefix = "shopping:products:"
	}
	if cfg.Shopping.MinResults == 0 {
		cfg.Shopping.MinResults = 5
	}
	if cfg.Shopping.CompareLimit == 0 {
		cfg.Shopping.CompareLimit = 5
	}
	if cfg.Shopping.DedupeStrategy == "" {
		cfg.Shopping.DedupeStrategy = "similarity"
	}
	if cfg.Shopping.SimilarityThreshold == 0 {
		cfg.Shopping.SimilarityThreshold = 0.84
	}
	if cfg.Shopping.CatalogIndex == "" {
		cfg.Shopping.CatalogIndex = "products"
	}
}

func applyProviderDefaults(p *ProvidersConfig) {
	if p.Gemini.BaseURL == "" {
		p.Gemini.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if len(p.Gemini.Models) == 0 {
		p.Gemini.Models = []string{"gemini-2.5-flash", "gemini-2.0-flash", "gemini-1.5-flash", "gemini-1.5-pro"}
	}
	if p.Gemini.Timeout == 0 {
		p.Gemini.Timeout = 20000
	}

	if p.Groq.BaseURL == "" {
		p.Groq.BaseURL = "https://api.groq.com/openai/v1/chat/completions"
	}
	if p.Groq.Model == "" {
		p.Groq.Model = "llama-3.3-70b-versatile"
	}
	if p.Groq.Temperature == 0 {
		p.Groq.Temperature = 0.3
	}
	if p.Groq.Timeout == 0 {
		p.Groq.Timeout = 10000
	}

	if p.OpenRouter.BaseURL == "" {
		p.OpenRouter.BaseURL = "https://openrouter.ai/api/v1/chat/completions"
	}
	if len(p.OpenRouter.Models) == 0 {
		p.OpenRouter.Models = []string{"openrouter/auto", "google/gemma-2-9b-it:free", "mistralai/mistral-7b-instruct:free"}
	}
	if p.OpenRouter.Referer == "" {
		p.OpenRouter.Referer = "https://finda.ai"
	}
	if p.OpenRouter.Title == "" {
		p.OpenRouter.Title = "Finda AI"
	}
	if p.OpenRouter.Timeout == 0 {
		p.OpenRouter.Timeout = 15000
	}

	if p.SerpAPI.BaseURL == "" {
		p.SerpAPI.BaseURL = "https://serpapi.com/search.json"
	}
	if p.SerpAPI.Engine == "" {
		p.SerpAPI.Engine = "google_shopping"
	}
	if p.SerpAPI.Country == "" {
		p.SerpAPI.Country = "tr"
	}
	if p.SerpAPI.Language == "" {
		p.SerpAPI.Language = "tr"
	}
	if p.SerpAPI.MaxResults == 0 {
		p.SerpAPI.MaxResults = 20
	}
	if p.SerpAPI.Timeout == 0 {
		p.SerpAPI.Timeout = 10000
	}

	if p.FakeStore.BaseURL == "" {
		p.FakeStore.BaseURL = "https://fakestoreapi.com/products"
	}
	if p.FakeStore.Timeout == 0 {
		p.FakeStore.Timeout = 5000
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}

	switch cfg.Shopping.CacheBackend {
	case "memory":
	case "redis":
		if cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required when shopping.cache_backend is redis")
		}
	default:
		return fmt.Errorf("shopping.cache_backend must be memory or redis, got %q", cfg.Shopping.CacheBackend)
	}

	switch cfg.Shopping.DedupeStrategy {
	case "similarity", "prefix":
	default:
		return fmt.Errorf("shopping.dedupe_strategy must be similarity or prefix, got %q", cfg.Shopping.DedupeStrategy)
	}

	switch cfg.Assistant.Extractor {
	case "greedy", "balanced":
	default:
		return fmt.Errorf("assistant.extractor must be greedy or balanced, got %q", cfg.Assistant.Extractor)
	}

	if cfg.Shopping.SimilarityThreshold < 0 || cfg.Shopping.SimilarityThreshold > 1 {
		return fmt.Errorf("shopping.similarity_threshold must be within [0,1]")
	}

	if cfg.Database.Postgres.Enabled() && cfg.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required when postgres is configured")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}

	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
