package generator

import (
	"strings"
	"unicode"

	"github.com/pkoukk/tiktoken-go"
)

const fallbackEncoding = "cl100k_base"

// CountTokens counts prompt tokens under the model's encoding. Unknown
// models fall back to the cl100k_base encoding; when no encoding can be
// initialized at all (tiktoken loads its data lazily), a character-class
// estimate is returned instead.
func CountTokens(model, text string) int {
	enc, err := tiktoken.EncodingForModel(strings.ToLower(model))
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
	}
	if err != nil || enc == nil {
		return EstimateTokens(text)
	}
	return len(enc.Encode(text, nil, nil))
}

// EstimateTokens provides a rough token estimate.
// CJK is ~2 chars/token, others ~4 chars/token.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	var cjk, other int
	for _, r := range text {
		if unicode.Is(unicode.Han, r) {
			cjk++
			continue
		}
		other++
	}
	return (cjk+1)/2 + (other+3)/4
}
