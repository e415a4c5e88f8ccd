package intent

import (
	"finda-workers/internal/assistant/providers"
	"finda-workers/internal/common/config"
)

// StagesFromConfig builds the default chain: Gemini, then Groq, then OpenRouter.
// Only Gemini gives up on its remaining models after a rate limit.
func StagesFromConfig(cfg config.ProvidersConfig) []Stage {
	return []Stage{
		{Provider: providers.NewGemini(cfg.Gemini), AbandonOnRateLimit: true},
		{Provider: providers.NewGroq(cfg.Groq)},
		{Provider: providers.NewOpenRouter(cfg.OpenRouter)},
	}
}
