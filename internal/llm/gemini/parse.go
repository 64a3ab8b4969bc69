package gemini

import (
	"encoding/json"
	"errors"
	"strings"
)

// parseJSONResponse extracts the first JSON object from a model response,
// tolerating markdown code fences and surrounding prose.
func parseJSONResponse(text string, out interface{}) error {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return errors.New("no JSON object in response")
	}

	return json.Unmarshal([]byte(text[start:end+1]), out)
}
