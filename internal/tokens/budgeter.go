package tokens

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"

	"github.com/svemula/chatvector/internal/config"
	"github.com/svemula/chatvector/pkg/logger_i"
)

func init() {
	//offline BPE so we never fetch encoding files at runtime
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// Budgeter counts and truncates text against a model token budget. It never
// fails: when the encoder is unavailable it degrades to a chars/4 estimate.
type Budgeter struct {
	encoding *tiktoken.Tiktoken
	logger   *logger_i.Logger
}

func NewBudgeter(encodingName string) *Budgeter {
	log := logger_i.NewLogger("TokenBudgeter")
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		log.Warn("tokenizer unavailable, falling back to character estimates", "encoding", encodingName, "error", err)
		enc = nil
	}
	return &Budgeter{encoding: enc, logger: log}
}

// CountTokens returns the exact token count when the encoder works, otherwise
// ceil(len/4) as an approximation.
func (b *Budgeter) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	if b.encoding != nil {
		return len(b.encoding.Encode(text, nil, nil))
	}
	return estimateTokens(text)
}

// Truncate cuts text down to maxTokens, always keeping the earliest content.
// Downstream prompts rely on the head surviving (system prompt and early
// context stay stable), so truncation is strictly from the end.
func (b *Budgeter) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	count := b.CountTokens(text)
	if count <= maxTokens {
		return text
	}

	if b.encoding != nil {
		ids := b.encoding.Encode(text, nil, nil)
		return b.encoding.Decode(ids[:maxTokens]) + config.TruncationEllipsis
	}

	//proportional character cut when exact slicing is unavailable
	cut := len(text) * maxTokens / count
	if cut > len(text) {
		cut = len(text)
	}
	return strings.TrimRight(text[:cut], " \n") + config.TruncationEllipsis
}

func estimateTokens(text string) int {
	return (len(text) + 3) / 4
}
