package tone

import "fmt"

// detectionPrompt asks the backend to classify text into the closed label
// set. The answer is parsed by substring scan, so the exact phrasing of the
// model's reply does not matter as long as it names a label.
func detectionPrompt(text string) string {
	return fmt.Sprintf(
		"Classify the emotional tone of this text as sad, angry, or friendly. Answer with one word. Text: %s",
		text,
	)
}

// rewritePrompts holds one tone-preserving rewrite instruction per label.
var rewritePrompts = map[Label]string{
	LabelSad:      "Improve the grammar, clarity and flow of this text while preserving its sad emotional tone: %s",
	LabelAngry:    "Improve the grammar, clarity and flow of this text while preserving its angry emotional tone: %s",
	LabelFriendly: "Improve the grammar, clarity and flow of this text while preserving its friendly emotional tone: %s",
}

// rewritePrompt builds the rewrite instruction for a label. Labels outside
// the known set fall back to the friendly template.
func rewritePrompt(label Label, text string) string {
	tmpl, ok := rewritePrompts[label]
	if !ok {
		tmpl = rewritePrompts[DefaultLabel]
	}
	return fmt.Sprintf(tmpl, text)
}
