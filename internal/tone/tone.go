// Package tone implements the tone analysis engine: emotional tone
// classification of raw text plus a tone-preserving rewrite, with keyword
// and identity fallbacks so the pipeline always yields a usable result.
package tone

import "strings"

// Label is an emotional tone classification.
type Label string

const (
	LabelSad      Label = "sad"
	LabelAngry    Label = "angry"
	LabelFriendly Label = "friendly"
)

// DefaultLabel is the fail-safe classification used whenever the backend
// cannot produce a trustworthy answer.
const DefaultLabel = LabelFriendly

// Labels returns the closed set of supported tones.
func Labels() []Label {
	return []Label{LabelSad, LabelAngry, LabelFriendly}
}

// ParseLabel maps a string to a known Label. ok is false for anything
// outside the closed set.
func ParseLabel(s string) (Label, bool) {
	switch Label(strings.ToLower(strings.TrimSpace(s))) {
	case LabelSad:
		return LabelSad, true
	case LabelAngry:
		return LabelAngry, true
	case LabelFriendly:
		return LabelFriendly, true
	}
	return "", false
}

// scanOrder fixes the tie-break priority for parsing model answers:
// sad before angry before friendly, first match wins.
var scanOrder = []Label{LabelSad, LabelAngry, LabelFriendly}

// parseAnswer scans a model answer for a label substring, case-insensitively,
// in priority order. ok is false when no label appears.
func parseAnswer(answer string) (Label, bool) {
	lower := strings.ToLower(answer)
	for _, l := range scanOrder {
		if strings.Contains(lower, string(l)) {
			return l, true
		}
	}
	return "", false
}

// Keyword sets for the deterministic fallback classifier, evaluated over the
// original input when the model answer names no label.
var (
	sadKeywords   = []string{"sorry", "disappointed", "upset", "hurt", "cry", "tears"}
	angryKeywords = []string{"angry", "mad", "furious", "hate", "stupid", "damn"}
)

// classifyByKeywords applies the keyword safety net. It always returns a
// valid label; friendly is the neutral default.
func classifyByKeywords(text string) Label {
	lower := strings.ToLower(text)
	for _, kw := range sadKeywords {
		if strings.Contains(lower, kw) {
			return LabelSad
		}
	}
	for _, kw := range angryKeywords {
		if strings.Contains(lower, kw) {
			return LabelAngry
		}
	}
	return LabelFriendly
}
