package tone

import "strings"

// Preprocess truncates text to maxLen characters and trims surrounding
// whitespace. Truncation is a plain prefix cut; mid-word cuts are accepted
// since the downstream prompts tolerate them. Empty output is allowed;
// caller-facing validation rejects empty input before it reaches the engine.
func Preprocess(text string, maxLen int) string {
	if maxLen > 0 {
		if r := []rune(text); len(r) > maxLen {
			text = string(r[:maxLen])
		}
	}
	return strings.TrimSpace(text)
}
