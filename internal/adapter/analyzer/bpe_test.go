package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jokegen/internal/domain"
)

func TestBPETruncator_ShortPairUnchanged(t *testing.T) {
	tr, err := NewBPETruncator("r50k_base", 60)
	require.NoError(t, err)

	pair := domain.Pair{
		Question: "Question: Why did frogs eat the cheese?",
		Answer:   "Answer: Because it was Brie-lliant.",
	}
	assert.Equal(t, pair, tr.Truncate(pair))
}

func TestBPETruncator_LongestFirst(t *testing.T) {
	tr, err := NewBPETruncator("r50k_base", 40)
	require.NoError(t, err)

	pair := domain.Pair{
		Question: "Question: Why did frogs eat the cheese?",
		Answer:   "Answer: " + strings.Repeat("cheese ", 40),
	}
	got := tr.Truncate(pair)

	assert.LessOrEqual(t, tr.CountTokens(got.Question)+tr.CountTokens(got.Answer), 40-pairSpecialTokens)
	// The question is shorter than half the budget, so only the answer is cut.
	assert.Equal(t, pair.Question, got.Question)
	assert.True(t, strings.HasPrefix(pair.Answer, got.Answer))
	assert.Less(t, len(got.Answer), len(pair.Answer))
}

func TestBPETruncator_BothSidesLong(t *testing.T) {
	tr, err := NewBPETruncator("r50k_base", 13)
	require.NoError(t, err)

	pair := domain.Pair{
		Question: strings.Repeat("frog ", 30),
		Answer:   strings.Repeat("brie ", 30),
	}
	got := tr.Truncate(pair)

	nq, na := tr.CountTokens(got.Question), tr.CountTokens(got.Answer)
	assert.LessOrEqual(t, nq+na, 10)
	assert.InDelta(t, nq, na, 1)
}

func TestNewBPETruncator_Errors(t *testing.T) {
	_, err := NewBPETruncator("r50k_base", 3)
	assert.Error(t, err)

	_, err = NewBPETruncator("no_such_encoding", 60)
	assert.Error(t, err)
}
