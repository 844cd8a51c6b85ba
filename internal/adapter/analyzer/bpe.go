package analyzer

import (
	"fmt"
	"strings"

	"github.com/tiktoken-go/tokenizer"

	"jokegen/internal/domain"
)

// pairSpecialTokens is the [CLS] q [SEP] a [SEP] overhead of a BERT-style
// pair encoding.
const pairSpecialTokens = 3

// BPETruncator cuts (question, answer) pairs to a combined budget of GPT-2
// style BPE tokens using the longest-first strategy: tokens are dropped from
// the end of whichever side is currently longer. It approximates the
// classifier's own tokenizer when its tokenizer.json is not at hand.
type BPETruncator struct {
	codec     tokenizer.Codec
	maxTokens int
}

// NewBPETruncator builds a truncator for the named BPE encoding (e.g.
// "r50k_base"). maxTokens includes the pair's special tokens.
func NewBPETruncator(encoding string, maxTokens int) (*BPETruncator, error) {
	if maxTokens <= pairSpecialTokens {
		return nil, fmt.Errorf("max tokens must be greater than %d, got %d", pairSpecialTokens, maxTokens)
	}
	if encoding == "" {
		encoding = string(tokenizer.R50kBase)
	}
	codec, err := tokenizer.Get(tokenizer.Encoding(encoding))
	if err != nil {
		return nil, fmt.Errorf("failed to load encoding %s: %w", encoding, err)
	}
	return &BPETruncator{codec: codec, maxTokens: maxTokens}, nil
}

func (t *BPETruncator) Truncate(pair domain.Pair) domain.Pair {
	qIDs, _, err := t.codec.Encode(pair.Question)
	if err != nil {
		return pair
	}
	aIDs, _, err := t.codec.Encode(pair.Answer)
	if err != nil {
		return pair
	}

	budget := t.maxTokens - pairSpecialTokens
	if len(qIDs)+len(aIDs) <= budget {
		return pair
	}

	nq, na := len(qIDs), len(aIDs)
	for nq+na > budget {
		if nq > na {
			nq--
		} else {
			na--
		}
	}

	return domain.Pair{
		Question: t.decode(qIDs[:nq], pair.Question),
		Answer:   t.decode(aIDs[:na], pair.Answer),
	}
}

// CountTokens returns the number of tokens in text, or 0 if it cannot be encoded.
func (t *BPETruncator) CountTokens(text string) int {
	n, err := t.codec.Count(text)
	if err != nil {
		return 0
	}
	return n
}

func (t *BPETruncator) decode(ids []uint, fallback string) string {
	text, err := t.codec.Decode(ids)
	if err != nil {
		return fallback
	}
	// A cut can land inside a multi-byte rune.
	return strings.ToValidUTF8(text, "")
}
