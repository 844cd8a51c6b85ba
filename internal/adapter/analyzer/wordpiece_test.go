package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jokegen/internal/domain"
)

const testTokenizerFile = "testdata/tokenizer.json"

func TestWordPieceTruncator_ShortPairUnchanged(t *testing.T) {
	tr, err := NewWordPieceTruncatorFromFile(testTokenizerFile, 60)
	require.NoError(t, err)

	pair := domain.Pair{
		Question: "Question: Why did frogs eat the cheese?",
		Answer:   "Answer: Because it was Brie-lliant.",
	}
	assert.Equal(t, pair, tr.Truncate(pair))
	// [CLS] + 9 question tokens + [SEP] + 11 answer tokens + [SEP]
	assert.Equal(t, 23, tr.CountPair(pair))
}

func TestWordPieceTruncator_LongPairCutToSixty(t *testing.T) {
	tr, err := NewWordPieceTruncatorFromFile(testTokenizerFile, 60)
	require.NoError(t, err)

	pair := domain.Pair{
		Question: "Question: Why did frogs eat the cheese?",
		Answer:   "Answer: " + strings.Repeat("cheese ", 80),
	}
	require.Greater(t, 3+9+82, 60)
	assert.Equal(t, 60, tr.CountPair(pair))

	got := tr.Truncate(pair)

	// Longest first: the 9-token question survives, the answer keeps
	// 60-3-9 = 48 tokens ("answer", ":" and 46 words).
	assert.Equal(t, pair.Question, got.Question)
	assert.Equal(t, "Answer:"+strings.Repeat(" cheese", 46), got.Answer)
	assert.Equal(t, 60, tr.CountPair(got))
}

func TestWordPieceTruncator_BothSidesLong(t *testing.T) {
	tr, err := NewWordPieceTruncatorFromFile(testTokenizerFile, 60)
	require.NoError(t, err)

	pair := domain.Pair{
		Question: strings.Repeat("frog ", 50),
		Answer:   strings.Repeat("cheese ", 50),
	}
	got := tr.Truncate(pair)

	nq := strings.Count(got.Question, "frog")
	na := strings.Count(got.Answer, "cheese")
	assert.Equal(t, 57, nq+na)
	assert.InDelta(t, nq, na, 1)
	assert.True(t, strings.HasPrefix(pair.Question, got.Question))
	assert.True(t, strings.HasPrefix(pair.Answer, got.Answer))
}

func TestNewWordPieceTruncator_Errors(t *testing.T) {
	_, err := NewWordPieceTruncatorFromFile(testTokenizerFile, 3)
	assert.Error(t, err)

	_, err = NewWordPieceTruncatorFromFile("testdata/missing.json", 60)
	assert.Error(t, err)

	_, err = NewWordPieceTruncator(strings.NewReader("{not json"), 60)
	assert.Error(t, err)
}
