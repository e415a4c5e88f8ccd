package intent

import (
	"fmt"
	"strings"

	"finda-workers/internal/assistant/smalltalk"
	"finda-workers/internal/common/validation"
	"finda-workers/internal/models"
)

// DefaultReply is used when the model omits a response.
const DefaultReply = "Size nasıl yardımcı olabilirim?"

const shoppingMarker = "alisveris"

var outputSchema = validation.MustCompile(map[string]interface{}{
	"type":          "object",
	"minProperties": 1,
	"properties": map[string]interface{}{
		"intent":   map[string]interface{}{"type": []interface{}{"string", "null"}},
		"query":    map[string]interface{}{"type": []interface{}{"string", "null"}},
		"response": map[string]interface{}{"type": []interface{}{"string", "null"}},
	},
})

// ValidateOutput rejects extracted objects that cannot be normalized.
func ValidateOutput(obj map[string]interface{}) error {
	if obj == nil {
		return fmt.Errorf("no JSON object in output")
	}
	result, err := outputSchema.Validate(obj)
	if err != nil {
		return err
	}
	if !result.Valid {
		return result
	}
	return nil
}

// Normalize maps a model's raw object onto the canonical result. Any intent
// containing the shopping marker (diacritics folded) is shopping.
func Normalize(obj map[string]interface{}) models.IntentResult {
	rawIntent := stringField(obj, "intent", "SOHBET")

	result := models.IntentResult{
		Intent:   models.IntentChat,
		Query:    strings.TrimSpace(stringField(obj, "query", "")),
		Response: stringField(obj, "response", DefaultReply),
	}
	if strings.Contains(smalltalk.Normalize(rawIntent), shoppingMarker) {
		result.Intent = models.IntentShopping
	}
	return result
}

func stringField(obj map[string]interface{}, key, def string) string {
	if v, ok := obj[key].(string); ok {
		return v
	}
	return def
}
