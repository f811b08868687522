package llm

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sandevgo/dusha/internal/core"
)

// tokensPerMessage approximates the chat format overhead per message.
const tokensPerMessage = 4

var (
	tk     *tiktoken.Tiktoken
	tkOnce sync.Once
)

// estimateTokens returns an approximate prompt size, or -1 when the
// encoding cannot be loaded (tiktoken fetches it on first use).
func estimateTokens(messages []core.Message) int {
	tkOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			tk = enc
		}
	})
	if tk == nil {
		return -1
	}

	total := 0
	for _, m := range messages {
		total += tokensPerMessage + len(tk.Encode(m.Content, nil, nil))
	}
	return total
}
