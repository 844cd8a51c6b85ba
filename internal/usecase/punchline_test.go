package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jokegen/internal/domain"
)

const frogSetup = "Why did frogs eat the cheese?"

type stubGenerator struct {
	name     string
	outputs  []string
	err      error
	requests []domain.GenerationRequest
}

func (g *stubGenerator) Generate(ctx context.Context, req domain.GenerationRequest) ([]string, error) {
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	out := make([]string, 0, req.SampleCount)
	for i := 0; i < req.SampleCount && i < len(g.outputs); i++ {
		out = append(out, g.outputs[i])
	}
	return out, nil
}

func (g *stubGenerator) EOSToken() string { return "<|endoftext|>" }

func (g *stubGenerator) ModelName() string { return g.name }

type stubClassifier struct {
	scores []float64
	err    error
	pairs  [][]domain.Pair
	short  bool
}

func (c *stubClassifier) Classify(ctx context.Context, pairs []domain.Pair) ([]domain.Classification, error) {
	c.pairs = append(c.pairs, pairs)
	if c.err != nil {
		return nil, c.err
	}
	n := len(pairs)
	if c.short {
		n--
	}
	out := make([]domain.Classification, n)
	for i := range out {
		out[i] = domain.Classification{Label: domain.LabelFake, Score: c.scores[i]}
		if c.scores[i] >= 0.5 {
			out[i].Label = domain.LabelReal
		}
	}
	return out, nil
}

func (c *stubClassifier) ModelName() string { return "stub" }

type upperTruncator struct{}

func (upperTruncator) Truncate(p domain.Pair) domain.Pair {
	return domain.Pair{Question: strings.ToUpper(p.Question), Answer: strings.ToUpper(p.Answer)}
}

func frogOutputs() []string {
	prompt := domain.NewPrompt(frogSetup).String()
	return []string{
		prompt + " Because it was Brie-lliant.<|endoftext|>",
		prompt + "\nNo reason.<|endoftext|>",
		prompt + " Tadpole hunger.\n",
	}
}

func newTestUseCase(gen *stubGenerator, cls *stubClassifier, mode ExtractionMode) *PunchlineUseCase {
	u := NewPunchlineUseCase(Models{
		Base:       &stubGenerator{name: "base", outputs: []string{"Question: q Answer: base"}},
		FineTuned:  gen,
		Classifier: cls,
	}, mode)
	u.newID = func() string { return "fixed-id" }
	return u
}

func TestPunchline_FrogScenario(t *testing.T) {
	gen := &stubGenerator{name: "jokegen-gpt2", outputs: frogOutputs()}
	cls := &stubClassifier{scores: []float64{0.9, 0.2, 0.4}}
	u := newTestUseCase(gen, cls, ExtractExact)

	sel, err := u.Punchline(context.Background(), frogSetup, false, 3)
	require.NoError(t, err)

	assert.Equal(t, "Because it was Brie-lliant.", sel.Punchline)
	assert.Equal(t, 0.9, sel.Score)
	assert.Equal(t, "fixed-id", sel.ID)
	assert.Equal(t, "jokegen-gpt2", sel.Generator)
	assert.Equal(t, "Question: Why did frogs eat the cheese? Answer:", sel.Prompt)

	require.Len(t, gen.requests, 1)
	assert.Equal(t, domain.GenerationRequest{Prompt: domain.NewPrompt(frogSetup), SampleCount: 3}, gen.requests[0])

	require.Len(t, sel.Candidates, 3)
	assert.Equal(t, "No reason.", sel.Candidates[1].Candidate.Answer)
	assert.Equal(t, "Tadpole hunger.", sel.Candidates[2].Candidate.Answer)

	require.Len(t, cls.pairs, 1)
	assert.Equal(t, domain.Pair{
		Question: "Question: Why did frogs eat the cheese?",
		Answer:   "Answer: No reason.",
	}, cls.pairs[0][1])
}

func TestPunchline_ReturnsMaxScoringCandidate(t *testing.T) {
	outputs := []string{"Question: q Answer: a", "Question: q Answer: b", "Question: q Answer: c", "Question: q Answer: d"}
	scores := []float64{0.3, 0.1, 0.8, 0.5}
	u := newTestUseCase(&stubGenerator{outputs: outputs}, &stubClassifier{scores: scores}, ExtractExact)

	sel, err := u.Punchline(context.Background(), "q", false, 4)
	require.NoError(t, err)

	found := false
	for _, c := range sel.Candidates {
		assert.LessOrEqual(t, c.Classification.Score, sel.Score)
		if c.Candidate.Answer == sel.Punchline {
			found = true
		}
	}
	assert.True(t, found, "punchline must be one of the candidates")
	assert.Equal(t, "c", sel.Punchline)
}

func TestPunchline_SingleSample(t *testing.T) {
	gen := &stubGenerator{outputs: []string{"Question: q Answer: only one"}}
	u := newTestUseCase(gen, &stubClassifier{scores: []float64{0.01}}, ExtractExact)

	got, err := u.BestPunchline(context.Background(), "q", false, 1)
	require.NoError(t, err)
	assert.Equal(t, "only one", got)
}

func TestPunchline_TieGoesToEarliest(t *testing.T) {
	outputs := []string{"Question: q Answer: first", "Question: q Answer: second", "Question: q Answer: third"}
	u := newTestUseCase(&stubGenerator{outputs: outputs}, &stubClassifier{scores: []float64{0.4, 0.7, 0.7}}, ExtractExact)

	got, err := u.BestPunchline(context.Background(), "q", false, 3)
	require.NoError(t, err)
	assert.Equal(t, "second", got)
}

func TestPunchline_MissingMarker(t *testing.T) {
	outputs := []string{"I forgot the format entirely", "Question: q Answer: ok"}

	for _, mode := range []ExtractionMode{ExtractExact, ExtractLegacy} {
		t.Run(string(mode), func(t *testing.T) {
			u := newTestUseCase(&stubGenerator{outputs: outputs}, &stubClassifier{scores: []float64{0.9, 0.1}}, mode)
			sel, err := u.Punchline(context.Background(), "q", false, 2)
			require.NoError(t, err)
			assert.Equal(t, sel.Candidates[0].Candidate.Answer, sel.Punchline)
		})
	}
}

func TestPunchline_Deterministic(t *testing.T) {
	run := func() []string {
		u := newTestUseCase(&stubGenerator{outputs: frogOutputs()}, &stubClassifier{scores: []float64{0.3, 0.6, 0.6}}, ExtractExact)
		var got []string
		for k := 3; k >= 1; k-- {
			p, err := u.BestPunchline(context.Background(), frogSetup, false, k)
			require.NoError(t, err)
			got = append(got, p)
		}
		return got
	}

	first := run()
	assert.Equal(t, first, run())
	assert.Equal(t, []string{"No reason.", "No reason.", "Because it was Brie-lliant."}, first)
}

func TestPunchline_UsesBaseGenerator(t *testing.T) {
	u := newTestUseCase(&stubGenerator{name: "ft"}, &stubClassifier{scores: []float64{0.5}}, ExtractExact)

	sel, err := u.Punchline(context.Background(), "q", true, 1)
	require.NoError(t, err)
	assert.Equal(t, "base", sel.Generator)
	assert.Equal(t, "base", sel.Punchline)
}

func TestPunchline_AppliesTruncator(t *testing.T) {
	cls := &stubClassifier{scores: []float64{0.5}}
	u := NewPunchlineUseCase(Models{
		FineTuned:  &stubGenerator{outputs: []string{"Question: q Answer: a"}},
		Classifier: cls,
		Truncator:  upperTruncator{},
	}, ExtractExact)

	_, err := u.Punchline(context.Background(), "q", false, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.Pair{Question: "QUESTION: Q", Answer: "ANSWER: A"}, cls.pairs[0][0])
}

func TestPunchline_Errors(t *testing.T) {
	boom := errors.New("device unavailable")
	ctx := context.Background()

	t.Run("zero samples", func(t *testing.T) {
		gen := &stubGenerator{outputs: frogOutputs()}
		u := newTestUseCase(gen, &stubClassifier{}, ExtractExact)
		_, err := u.Punchline(ctx, frogSetup, false, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidSampleCount)
		assert.Empty(t, gen.requests)
	})

	t.Run("empty setup", func(t *testing.T) {
		u := newTestUseCase(&stubGenerator{}, &stubClassifier{}, ExtractExact)
		_, err := u.Punchline(ctx, "  ", false, 1)
		assert.ErrorIs(t, err, domain.ErrEmptySetup)
	})

	t.Run("generator failure", func(t *testing.T) {
		cls := &stubClassifier{}
		u := newTestUseCase(&stubGenerator{err: boom}, cls, ExtractExact)
		_, err := u.Punchline(ctx, frogSetup, false, 2)
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, cls.pairs)
	})

	t.Run("too few samples", func(t *testing.T) {
		u := newTestUseCase(&stubGenerator{outputs: frogOutputs()[:1]}, &stubClassifier{scores: []float64{1}}, ExtractExact)
		_, err := u.Punchline(ctx, frogSetup, false, 2)
		assert.ErrorIs(t, err, domain.ErrSampleCountMismatch)
	})

	t.Run("classifier failure", func(t *testing.T) {
		u := newTestUseCase(&stubGenerator{outputs: frogOutputs()}, &stubClassifier{err: boom}, ExtractExact)
		_, err := u.Punchline(ctx, frogSetup, false, 3)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("too few scores", func(t *testing.T) {
		u := newTestUseCase(&stubGenerator{outputs: frogOutputs()}, &stubClassifier{scores: []float64{1, 1, 1}, short: true}, ExtractExact)
		_, err := u.Punchline(ctx, frogSetup, false, 3)
		assert.ErrorIs(t, err, domain.ErrSampleCountMismatch)
	})

	t.Run("no models", func(t *testing.T) {
		u := NewPunchlineUseCase(Models{}, ExtractExact)
		_, err := u.Punchline(ctx, frogSetup, false, 1)
		assert.Error(t, err)
	})
}
