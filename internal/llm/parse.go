package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Model output frequently arrives wrapped in code fences or prose. The
// helpers here implement the best-effort extraction the collaborator
// boundary promises: grab the first JSON object, decode it, and let the
// caller substitute its fallback on any failure.

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// extractJSON returns the first JSON object embedded in raw text,
// stripping markdown fences first.
func extractJSON(raw string) (string, bool) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	match := jsonObjectPattern.FindString(cleaned)
	if match == "" {
		return "", false
	}
	return match, true
}

// decodeJSON extracts and unmarshals the first JSON object in raw.
func decodeJSON(raw string, v any) error {
	obj, ok := extractJSON(raw)
	if !ok {
		return fmt.Errorf("no JSON object in response")
	}
	if err := json.Unmarshal([]byte(obj), v); err != nil {
		return fmt.Errorf("decode response JSON: %w", err)
	}
	return nil
}

// extractNumber pulls the first numeric value out of free text, used for
// amount suggestions where the model is asked for a bare number but may
// reply with currency symbols or prose around it.
var numberPattern = regexp.MustCompile(`-?\d[\d,]*\.?\d*`)

func extractNumber(raw string) (float64, bool) {
	match := numberPattern.FindString(raw)
	if match == "" {
		return 0, false
	}
	match = strings.ReplaceAll(match, ",", "")

	var v float64
	if _, err := fmt.Sscanf(match, "%f", &v); err != nil {
		return 0, false
	}
	return v, true
}
