package contextmgr

import (
	"strings"

	"studyroom/internal/chat"
)

// Assembler 组装发送给模型的消息：人设、学习状态、最近的对话窗口
// Assembler builds outbound messages: persona, study status, then the most recent
// transcript that fits the history budget.
type Assembler struct {
	Tokenizer         *Tokenizer
	HistoryTokenLimit int
}

func NewAssembler(tok *Tokenizer, historyTokenLimit int) *Assembler {
	if tok == nil {
		tok = DefaultTokenizer()
	}
	return &Assembler{Tokenizer: tok, HistoryTokenLimit: historyTokenLimit}
}

// Build returns [system persona, system status, ...window(transcript)].
// Blank system texts are still sent so the message layout never shifts.
func (a *Assembler) Build(persona, status string, transcript []chat.Message) []chat.Message {
	history := Window(transcript, a.HistoryTokenLimit, a.Tokenizer)
	out := make([]chat.Message, 0, len(history)+2)
	out = append(out, chat.System(strings.TrimSpace(persona)), chat.System(strings.TrimSpace(status)))
	return append(out, history...)
}

// Window 返回在 budget 内的最长后缀；至少保留最后一条消息
// Window returns the longest suffix of messages whose token count fits budget.
// The newest message is always kept. budget <= 0 disables the limit.
func Window(messages []chat.Message, budget int, tok *Tokenizer) []chat.Message {
	if len(messages) == 0 {
		return nil
	}
	if budget <= 0 || tok == nil {
		return chat.Clone(messages)
	}
	start := len(messages) - 1
	used := tok.Count(messages[start:])
	for start > 0 {
		next := tok.Count(messages[start-1 : start])
		if used+next > budget {
			break
		}
		used += next
		start--
	}
	return chat.Clone(messages[start:])
}
