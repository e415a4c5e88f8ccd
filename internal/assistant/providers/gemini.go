package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"finda-workers/internal/common/config"
	commonhttp "finda-workers/internal/common/http"
)

const ProviderGemini = "gemini"

// Gemini calls the generateContent REST endpoint. The system guard is already
// part of the prompt, so Request.System is not sent separately.
type Gemini struct {
	cfg    config.GeminiConfig
	client *commonhttp.Client
}

func NewGemini(cfg config.GeminiConfig) *Gemini {
	return &Gemini{
		cfg:    cfg,
		client: commonhttp.NewClient(time.Duration(cfg.Timeout) * time.Millisecond),
	}
}

func (g *Gemini) Name() string     { return ProviderGemini }
func (g *Gemini) Available() bool  { return strings.TrimSpace(g.cfg.APIKey) != "" }
func (g *Gemini) Models() []string { return g.cfg.Models }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (g *Gemini) Generate(ctx context.Context, model string, req Request) (string, error) {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent",
		strings.TrimRight(g.cfg.BaseURL, "/"), url.PathEscape(model))

	body := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}}},
	}
	headers := map[string]string{"x-goog-api-key": g.cfg.APIKey}

	var resp geminiResponse
	if err := g.client.PostJSON(ctx, endpoint, headers, body, &resp); err != nil {
		return "", classify(ProviderGemini, model, err)
	}

	var sb strings.Builder
	if len(resp.Candidates) > 0 {
		for _, part := range resp.Candidates[0].Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", emptyOutput(ProviderGemini, model)
	}
	return sb.String(), nil
}
