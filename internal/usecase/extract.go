package usecase

import (
	"encoding/json"
	"strings"
)

// TextResponseKey is the result field carrying raw model output when no
// structured payload could be recovered.
const TextResponseKey = "textResponse"

// ExtractResult recovers a structured payload from free-form model output.
// The generator is not contractually bound to emit valid JSON, so this is
// deliberately lenient: take the widest brace-delimited region (first '{' to
// last '}') and try to parse it; anything that fails degrades to a
// textResponse wrapper around the full original text. It never returns an
// error and never panics - a degraded text result is always better than none.
func ExtractResult(text string) map[string]any {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return map[string]any{TextResponseKey: text}
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &parsed); err != nil {
		return map[string]any{TextResponseKey: text}
	}
	return parsed
}
