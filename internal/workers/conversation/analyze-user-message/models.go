package analyzeusermessage

import (
	"finda-workers/internal/assistant/intent"
	"finda-workers/internal/models"
)

type Input struct {
	Message   string                    `json:"message"`
	SessionID string                    `json:"sessionId,omitempty"`
	History   []models.ConversationTurn `json:"history,omitempty"`
}

type Output struct {
	Intent       string           `json:"intent"`
	Query        string           `json:"query"`
	Response     string           `json:"response"`
	ShouldSearch bool             `json:"shouldSearch"`
	Source       string           `json:"source"`
	Model        string           `json:"model,omitempty"`
	Attempts     []intent.Attempt `json:"attempts,omitempty"`
	Error        string           `json:"error,omitempty"`
}
