package providers

import (
	"context"
	"strings"

	commonhttp "finda-workers/internal/common/http"
)

// chatMessage and friends model the OpenAI-compatible chat completions API
// shared by Groq and OpenRouter.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func guardedMessages(req Request) []chatMessage {
	return []chatMessage{
		{Role: "system", Content: req.System},
		{Role: "user", Content: req.Prompt},
	}
}

func complete(ctx context.Context, client *commonhttp.Client, provider, endpoint string, headers map[string]string, body chatRequest) (string, error) {
	var resp chatResponse
	if err := client.PostJSON(ctx, endpoint, headers, body, &resp); err != nil {
		return "", classify(provider, body.Model, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", emptyOutput(provider, body.Model)
	}
	return resp.Choices[0].Message.Content, nil
}
