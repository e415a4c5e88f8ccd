package models

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn is one message of a chat session.
type ConversationTurn struct {
	ID          string        `json:"id,omitempty"`
	SessionID   string        `json:"sessionId,omitempty"`
	Role        string        `json:"role"`
	Content     string        `json:"content"`
	Attachments []Product     `json:"attachments,omitempty"`
	Summary     *IntentResult `json:"summary,omitempty"`
	CreatedAt   time.Time     `json:"createdAt,omitempty"`
}
