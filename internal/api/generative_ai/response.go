package generativeAI

import "strings"

const fence = "```"

// ExtractJSONObject pulls the first JSON object out of free-form model output.
// When the text holds a fenced block, only the first block is considered and a
// leading "json" language tag is dropped. The result spans the first '{' to the
// last '}'; braces inside string values are not balanced.
func ExtractJSONObject(raw string) (string, bool) {
	text := raw
	if strings.Contains(text, fence) {
		text = strings.Split(text, fence)[1]
		text = strings.TrimPrefix(text, "json")
		text = strings.TrimSpace(text)
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return text[start : end+1], true
}
