package providers

import (
	"context"
	"strings"
	"time"

	"finda-workers/internal/common/config"
	commonhttp "finda-workers/internal/common/http"
)

const ProviderOpenRouter = "openrouter"

// OpenRouter fans out over several backend models, one request per model.
type OpenRouter struct {
	cfg    config.OpenRouterConfig
	client *commonhttp.Client
}

func NewOpenRouter(cfg config.OpenRouterConfig) *OpenRouter {
	return &OpenRouter{
		cfg:    cfg,
		client: commonhttp.NewClient(time.Duration(cfg.Timeout) * time.Millisecond),
	}
}

func (o *OpenRouter) Name() string     { return ProviderOpenRouter }
func (o *OpenRouter) Available() bool  { return strings.TrimSpace(o.cfg.APIKey) != "" }
func (o *OpenRouter) Models() []string { return o.cfg.Models }

func (o *OpenRouter) Generate(ctx context.Context, model string, req Request) (string, error) {
	headers := map[string]string{
		"Authorization": bearer(o.cfg.APIKey),
	}
	// OpenRouter uses these for app attribution.
	if o.cfg.Referer != "" {
		headers["HTTP-Referer"] = o.cfg.Referer
	}
	if o.cfg.Title != "" {
		headers["X-Title"] = o.cfg.Title
	}

	body := chatRequest{Model: model, Messages: guardedMessages(req)}
	return complete(ctx, o.client, ProviderOpenRouter, o.cfg.BaseURL, headers, body)
}
