package providers

import (
	"context"
	"strings"
	"time"

	"finda-workers/internal/common/config"
	commonhttp "finda-workers/internal/common/http"
)

const ProviderGroq = "groq"

// Groq is the low-latency provider. It asks for JSON response mode.
type Groq struct {
	cfg    config.GroqConfig
	client *commonhttp.Client
}

func NewGroq(cfg config.GroqConfig) *Groq {
	return &Groq{
		cfg:    cfg,
		client: commonhttp.NewClient(time.Duration(cfg.Timeout) * time.Millisecond),
	}
}

func (g *Groq) Name() string     { return ProviderGroq }
func (g *Groq) Available() bool  { return strings.TrimSpace(g.cfg.APIKey) != "" }
func (g *Groq) Models() []string { return []string{g.cfg.Model} }

func (g *Groq) Generate(ctx context.Context, model string, req Request) (string, error) {
	temperature := g.cfg.Temperature
	body := chatRequest{
		Model:          model,
		Messages:       guardedMessages(req),
		Temperature:    &temperature,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}
	headers := map[string]string{"Authorization": bearer(g.cfg.APIKey)}
	return complete(ctx, g.client, ProviderGroq, g.cfg.BaseURL, headers, body)
}
