package recordconversationturn

import (
	"time"

	"finda-workers/internal/common/validation"
	"finda-workers/internal/models"
)

type Input struct {
	SessionID string               `json:"sessionId"`
	Role      string               `json:"role"`
	Content   string               `json:"content"`
	Products  []models.Product     `json:"products,omitempty"`
	Summary   *models.IntentResult `json:"summary,omitempty"`
}

type Output struct {
	TurnID     string    `json:"turnId"`
	RecordedAt time.Time `json:"recordedAt"`
}

var inputSchema = validation.MustCompile(map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"sessionId", "role", "content"},
	"properties": map[string]interface{}{
		"sessionId": map[string]interface{}{"type": "string", "minLength": 1},
		"role":      map[string]interface{}{"type": "string", "enum": []interface{}{models.RoleUser, models.RoleAssistant}},
		"content":   map[string]interface{}{"type": "string"},
		"products":  map[string]interface{}{"type": []interface{}{"array", "null"}},
		"summary":   map[string]interface{}{"type": []interface{}{"object", "null"}},
	},
})
