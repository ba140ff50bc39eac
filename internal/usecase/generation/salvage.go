package generation

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSONObject returns the span from the first '{' to the last '}'
// of raw. This is a narrow best-effort strategy for model output that
// wraps a JSON object in prose, not a general JSON repair.
func extractJSONObject(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

// parseSalvagedQuiz extracts and decodes a quiz payload from free-form
// model output.
func parseSalvagedQuiz(raw string) (quizPayload, error) {
	span, ok := extractJSONObject(raw)
	if !ok {
		return quizPayload{}, fmt.Errorf("no JSON object found in output")
	}
	var payload quizPayload
	if err := json.Unmarshal([]byte(span), &payload); err != nil {
		return quizPayload{}, fmt.Errorf("decode salvaged span: %w", err)
	}
	return payload, nil
}
