package analyzeusermessage

import (
	"time"

	"finda-workers/internal/common/config"
)

type Config struct {
	Timeout      time.Duration
	HistoryTurns int
}

func LoadConfig(app config.AssistantConfig) *Config {
	cfg := &Config{
		Timeout:      45 * time.Second,
		HistoryTurns: app.HistoryTurns,
	}
	if cfg.HistoryTurns <= 0 {
		cfg.HistoryTurns = 3
	}
	return cfg
}
