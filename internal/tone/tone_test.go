package tone

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLabel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Label
		ok    bool
	}{
		{name: "sad", input: "sad", want: LabelSad, ok: true},
		{name: "angry", input: "angry", want: LabelAngry, ok: true},
		{name: "friendly", input: "friendly", want: LabelFriendly, ok: true},
		{name: "uppercase", input: "SAD", want: LabelSad, ok: true},
		{name: "padded", input: "  angry  ", want: LabelAngry, ok: true},
		{name: "unknown", input: "melancholic", ok: false},
		{name: "empty", input: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseLabel(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParseLabel(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("ParseLabel(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   Label
		ok     bool
	}{
		{name: "exact label", answer: "sad", want: LabelSad, ok: true},
		{name: "label inside sentence", answer: "The tone is angry.", want: LabelAngry, ok: true},
		{name: "case insensitive", answer: "FRIENDLY", want: LabelFriendly, ok: true},
		{name: "sad wins over angry", answer: "sad, maybe angry", want: LabelSad, ok: true},
		{name: "sad wins regardless of position", answer: "angry or possibly sad", want: LabelSad, ok: true},
		{name: "angry wins over friendly", answer: "friendly but a little angry", want: LabelAngry, ok: true},
		{name: "no label", answer: "neutral", ok: false},
		{name: "empty", answer: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseAnswer(tt.answer)
			if ok != tt.ok {
				t.Fatalf("parseAnswer(%q) ok = %v, want %v", tt.answer, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("parseAnswer(%q) = %q, want %q", tt.answer, got, tt.want)
			}
		})
	}
}

func TestClassifyByKeywords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Label
	}{
		{name: "sorry is sad", text: "I'm so sorry about yesterday", want: LabelSad},
		{name: "tears is sad", text: "she burst into TEARS", want: LabelSad},
		{name: "furious is angry", text: "I am furious right now", want: LabelAngry},
		{name: "damn is angry", text: "damn this printer", want: LabelAngry},
		{name: "sad beats angry", text: "I hate that you are hurt", want: LabelSad},
		{name: "no keywords defaults friendly", text: "see you at lunch", want: LabelFriendly},
		{name: "empty defaults friendly", text: "", want: LabelFriendly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyByKeywords(tt.text); got != tt.want {
				t.Errorf("classifyByKeywords(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestPreprocess(t *testing.T) {
	t.Run("trims whitespace", func(t *testing.T) {
		assert.Equal(t, "hello", Preprocess("  hello \n", 512))
	})

	t.Run("truncates long input", func(t *testing.T) {
		long := strings.Repeat("a", 600)
		got := Preprocess(long, 512)
		assert.Len(t, got, 512)
	})

	t.Run("truncates by characters not bytes", func(t *testing.T) {
		got := Preprocess(strings.Repeat("é", 10), 5)
		assert.Equal(t, strings.Repeat("é", 5), got)
	})

	t.Run("trailing whitespace trimmed after truncation", func(t *testing.T) {
		in := strings.Repeat("a", 511) + "   b"
		got := Preprocess(in, 512)
		assert.Equal(t, strings.Repeat("a", 511), got)
	})

	t.Run("short input untouched", func(t *testing.T) {
		assert.Equal(t, "hi", Preprocess("hi", 512))
	})
}

func TestLabels(t *testing.T) {
	assert.Equal(t, []Label{LabelSad, LabelAngry, LabelFriendly}, Labels())
}
