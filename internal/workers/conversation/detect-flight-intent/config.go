package detectflightintent

import (
	"time"

	"finda-workers/internal/common/config"
)

const DefaultThreshold = 0.7

type Config struct {
	Timeout time.Duration
	// Threshold is the confidence a verdict must exceed to route to flight search.
	Threshold float64
}

func LoadConfig(app config.AssistantConfig) *Config {
	cfg := &Config{
		Timeout:   5 * time.Second,
		Threshold: app.FlightThreshold,
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	return cfg
}
