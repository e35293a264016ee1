package contextmgr

import (
	"strings"
	"sync"
	"unicode"

	tiktoken "github.com/pkoukk/tiktoken-go"

	"studyroom/internal/chat"
)

// perMessageOverhead approximates the role and framing tokens of one chat message.
const perMessageOverhead = 4

// Tokenizer 估算对话窗口的 token 数；BPE 数据不可用时按字符估算
// Tokenizer sizes the companion's history window. Without BPE data it estimates
// from character classes instead.
type Tokenizer struct {
	encoding string
	bpe      *tiktoken.Tiktoken
	mu       sync.Mutex
}

var (
	sharedTokenizer     *Tokenizer
	sharedTokenizerOnce sync.Once
)

// DefaultTokenizer lazily loads a shared cl100k_base tokenizer.
func DefaultTokenizer() *Tokenizer {
	sharedTokenizerOnce.Do(func() {
		sharedTokenizer = newTokenizer(encodingCL100K)
	})
	return sharedTokenizer
}

// NewTokenizerForModel picks the BPE encoding the model family uses.
func NewTokenizerForModel(model string) *Tokenizer {
	return newTokenizer(encodingFor(model))
}

// NewHeuristicTokenizer never touches BPE data; tests and offline runs use it.
func NewHeuristicTokenizer() *Tokenizer {
	return &Tokenizer{encoding: "estimate"}
}

func newTokenizer(encoding string) *Tokenizer {
	t := &Tokenizer{encoding: encoding}
	// 离线时 tiktoken 下载 BPE 会失败，保持估算模式
	if bpe, err := tiktoken.GetEncoding(encoding); err == nil {
		t.bpe = bpe
	}
	return t
}

// Estimated reports whether counts come from the character estimate.
func (t *Tokenizer) Estimated() bool {
	return t.bpe == nil
}

// Encoding names the BPE encoding, or "estimate".
func (t *Tokenizer) Encoding() string {
	if t.bpe == nil {
		return "estimate"
	}
	return t.encoding
}

// Count sums CountText over every message plus a fixed per-message overhead.
func (t *Tokenizer) Count(messages []chat.Message) int {
	n := 0
	for _, m := range messages {
		n += perMessageOverhead + t.CountText(string(m.Role)) + t.CountText(m.Content)
	}
	return n
}

// CountText counts the tokens of one string. Empty text is 0.
func (t *Tokenizer) CountText(text string) int {
	if text == "" {
		return 0
	}
	if t.bpe == nil {
		return estimateTokens(text)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.bpe.Encode(text, nil, nil))
}

// estimateTokens 中日韩字符约 1.5 token，其余约 4 字符 1 token
// estimateTokens charges 1.5 tokens per CJK rune and a quarter token per other rune.
func estimateTokens(text string) int {
	var wide, narrow int
	for _, r := range text {
		if isWide(r) {
			wide++
		} else {
			narrow++
		}
	}
	n := (wide*3+1)/2 + (narrow+3)/4
	if n < 1 {
		n = 1
	}
	return n
}

func isWide(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hangul, unicode.Hiragana, unicode.Katakana) ||
		(r >= 0x3000 && r <= 0x303F) ||
		(r >= 0xFF00 && r <= 0xFFEF)
}

const (
	encodingCL100K = "cl100k_base"
	encodingO200K  = "o200k_base"
)

// encodingFor maps a model name to its BPE encoding. Unknown and third-party
// models (DeepSeek, Qwen, Moonshot...) are sized with cl100k_base.
func encodingFor(model string) string {
	m := strings.ToLower(strings.TrimSpace(model))
	for _, prefix := range []string{"gpt-4o", "chatgpt-4o", "gpt-4.1", "o1", "o3", "o4"} {
		if strings.HasPrefix(m, prefix) {
			return encodingO200K
		}
	}
	return encodingCL100K
}
