package contextmgr

import (
	"strings"
	"testing"

	"studyroom/internal/chat"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{strings.Repeat("x", 200), 50},
		{"你好", 3},
		{"背单词", 5},
		{"こんにちは", 8},
		{"read 英语", 5},
	}
	for _, tt := range tests {
		if got := estimateTokens(tt.in); got != tt.want {
			t.Errorf("estimateTokens(%q)=%d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestHeuristicTokenizerCounts(t *testing.T) {
	tok := NewHeuristicTokenizer()
	if !tok.Estimated() || tok.Encoding() != "estimate" {
		t.Fatalf("estimated=%v encoding=%q", tok.Estimated(), tok.Encoding())
	}
	if tok.CountText("") != 0 {
		t.Fatal("empty text should count 0")
	}

	msgs := []chat.Message{chat.User("hello"), chat.Assistant("你好")}
	// user: 4 + 1 + 2, assistant: 4 + 3 + 3
	if got := tok.Count(msgs); got != 17 {
		t.Fatalf("Count=%d, want 17", got)
	}
	if got := tok.Count(nil); got != 0 {
		t.Fatalf("Count(nil)=%d", got)
	}
}

func TestEncodingFor(t *testing.T) {
	tests := map[string]string{
		"gpt-4":          encodingCL100K,
		"gpt-3.5-turbo":  encodingCL100K,
		"GPT-4o-mini":    encodingO200K,
		"gpt-4.1-nano":   encodingO200K,
		"o1-preview":     encodingO200K,
		"o4-mini":        encodingO200K,
		"deepseek-chat":  encodingCL100K,
		"qwen-plus":      encodingCL100K,
		"":               encodingCL100K,
		"  o3-mini  ":    encodingO200K,
		"moonshot-v1-8k": encodingCL100K,
	}
	for model, want := range tests {
		if got := encodingFor(model); got != want {
			t.Errorf("encodingFor(%q)=%q, want %q", model, got, want)
		}
	}
}
