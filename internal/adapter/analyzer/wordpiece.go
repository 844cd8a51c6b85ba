// Package analyzer fits (question, answer) pairs into the classifier's
// token budget.
package analyzer

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"

	"jokegen/internal/domain"
)

// WordPieceTruncator truncates pairs with the classifier's own Hugging Face
// tokenizer (a BERT WordPiece tokenizer.json), so the budget counts exactly
// the tokens the classifier sees, special tokens included.
type WordPieceTruncator struct {
	tk        *tokenizer.Tokenizer
	maxTokens int
}

// NewWordPieceTruncatorFromFile loads tokenizer.json from path.
func NewWordPieceTruncatorFromFile(path string, maxTokens int) (*WordPieceTruncator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tokenizer file: %w", err)
	}
	return NewWordPieceTruncator(bytes.NewReader(data), maxTokens)
}

func NewWordPieceTruncator(r io.Reader, maxTokens int) (*WordPieceTruncator, error) {
	if maxTokens <= pairSpecialTokens {
		return nil, fmt.Errorf("max tokens must be greater than %d, got %d", pairSpecialTokens, maxTokens)
	}

	tk, err := pretrained.FromReader(r)
	if err != nil {
		return nil, fmt.Errorf("load classifier tokenizer: %w", err)
	}

	tk.WithTruncation(&tokenizer.TruncationParams{
		MaxLength: maxTokens,
		Strategy:  tokenizer.LongestFirst,
		Stride:    0,
	})

	return &WordPieceTruncator{tk: tk, maxTokens: maxTokens}, nil
}

// Truncate encodes the pair with truncation enabled, counts how many tokens
// of each side survived and cuts each side's text after its last surviving
// token. A pair that cannot be encoded is returned unchanged.
func (t *WordPieceTruncator) Truncate(pair domain.Pair) domain.Pair {
	enc, err := t.encodePair(pair)
	if err != nil {
		return pair
	}

	if len(enc.SpecialTokenMask) != len(enc.Ids) || len(enc.TypeIds) != len(enc.Ids) {
		return pair
	}

	var nq, na int
	for i := range enc.Ids {
		if enc.SpecialTokenMask[i] == 1 {
			continue
		}
		if enc.TypeIds[i] == 0 {
			nq++
		} else {
			na++
		}
	}

	question, err := t.cut(pair.Question, nq)
	if err != nil {
		return pair
	}
	answer, err := t.cut(pair.Answer, na)
	if err != nil {
		return pair
	}
	return domain.Pair{Question: question, Answer: answer}
}

// CountPair returns the length of the pair encoding after truncation,
// special tokens included.
func (t *WordPieceTruncator) CountPair(pair domain.Pair) int {
	enc, err := t.encodePair(pair)
	if err != nil {
		return 0
	}
	return len(enc.Ids)
}

func (t *WordPieceTruncator) encodePair(pair domain.Pair) (*tokenizer.Encoding, error) {
	input := tokenizer.NewDualEncodeInput(
		tokenizer.NewInputSequence(pair.Question),
		tokenizer.NewInputSequence(pair.Answer),
	)
	return t.tk.Encode(input, true)
}

// cut keeps the text up to the end of its n-th token. Offsets come from
// encoding the side on its own, where they index that side's text.
func (t *WordPieceTruncator) cut(text string, n int) (string, error) {
	if n == 0 {
		return "", nil
	}

	enc, err := t.tk.Encode(tokenizer.NewSingleEncodeInput(tokenizer.NewInputSequence(text)), false)
	if err != nil {
		return "", err
	}
	if n >= len(enc.Ids) {
		return text, nil
	}

	end := enc.Offsets[n-1][1]
	if end > len(text) {
		end = len(text)
	}
	for end > 0 && !utf8.ValidString(text[:end]) {
		end--
	}
	return text[:end], nil
}
