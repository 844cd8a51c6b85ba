package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"jokegen/internal/domain"
	"jokegen/internal/port"
)

// Models holds the loaded model capabilities. It is built once at startup
// and shared read-only by every pipeline call.
type Models struct {
	Base       port.Generator
	FineTuned  port.Generator
	Classifier port.Classifier
	Truncator  port.PairTruncator // optional
	Placement  domain.Placement
}

// PunchlineUseCase generates K candidate punchlines for a setup and returns
// the one the classifier rates most likely to be a real joke.
type PunchlineUseCase struct {
	models     Models
	extraction ExtractionMode
	newID      func() string
}

func NewPunchlineUseCase(models Models, extraction ExtractionMode) *PunchlineUseCase {
	if extraction == "" {
		extraction = ExtractExact
	}
	return &PunchlineUseCase{
		models:     models,
		extraction: extraction,
		newID:      uuid.NewString,
	}
}

// BestPunchline returns only the winning punchline text.
func (u *PunchlineUseCase) BestPunchline(ctx context.Context, setup string, useBase bool, k int) (string, error) {
	sel, err := u.Punchline(ctx, setup, useBase, k)
	if err != nil {
		return "", err
	}
	return sel.Punchline, nil
}

// Punchline runs one best-of-k pass: generate k samples, clean them, score
// them and pick the highest score, earliest index on ties.
func (u *PunchlineUseCase) Punchline(ctx context.Context, setup string, useBase bool, k int) (domain.Selection, error) {
	if k < 1 {
		return domain.Selection{}, fmt.Errorf("%w: got %d", domain.ErrInvalidSampleCount, k)
	}
	if strings.TrimSpace(setup) == "" {
		return domain.Selection{}, domain.ErrEmptySetup
	}

	gen := u.generator(useBase)
	if gen == nil || u.models.Classifier == nil {
		return domain.Selection{}, fmt.Errorf("models not initialized")
	}

	prompt := domain.NewPrompt(setup)

	raw, err := gen.Generate(ctx, domain.GenerationRequest{Prompt: prompt, SampleCount: k})
	if err != nil {
		return domain.Selection{}, fmt.Errorf("generation failed: %w", err)
	}
	if len(raw) != k {
		return domain.Selection{}, fmt.Errorf("%w: requested %d samples, generator returned %d", domain.ErrSampleCountMismatch, k, len(raw))
	}

	candidates := make([]domain.Candidate, k)
	pairs := make([]domain.Pair, k)
	for i, r := range raw {
		cleaned := CleanCompletion(r, gen.EOSToken())
		candidates[i] = ExtractCandidate(i, r, cleaned, u.extraction)
		pairs[i] = ClassifierPair(candidates[i], u.extraction)
		if u.models.Truncator != nil {
			pairs[i] = u.models.Truncator.Truncate(pairs[i])
		}
	}

	classes, err := u.models.Classifier.Classify(ctx, pairs)
	if err != nil {
		return domain.Selection{}, fmt.Errorf("classification failed: %w", err)
	}
	if len(classes) != k {
		return domain.Selection{}, fmt.Errorf("%w: classified %d of %d candidates", domain.ErrSampleCountMismatch, len(classes), k)
	}

	scored := make([]domain.ScoredCandidate, k)
	for i := range candidates {
		scored[i] = domain.ScoredCandidate{Candidate: candidates[i], Classification: classes[i]}
		log.Debug().
			Int("index", i).
			Str("punchline", candidates[i].Answer).
			Float64("score", classes[i].Score).
			Str("label", string(classes[i].Label)).
			Msg("Scored candidate")
	}

	best := SelectBest(scored)
	sel := domain.Selection{
		ID:         u.newID(),
		Setup:      setup,
		Prompt:     prompt.String(),
		Punchline:  scored[best].Candidate.Answer,
		Score:      scored[best].Classification.Score,
		Generator:  gen.ModelName(),
		Candidates: scored,
	}

	log.Info().
		Str("selection_id", sel.ID).
		Str("generator", sel.Generator).
		Str("device", u.models.Placement.Name).
		Int("best_of", k).
		Float64("score", sel.Score).
		Msg("Best punchline score")

	return sel, nil
}

func (u *PunchlineUseCase) generator(useBase bool) port.Generator {
	if useBase {
		return u.models.Base
	}
	return u.models.FineTuned
}

// SelectBest returns the index of the highest-scoring candidate. Ties go to
// the earliest index and NaN never wins over a real score. It panics on an
// empty slice.
func SelectBest(scored []domain.ScoredCandidate) int {
	best := 0
	bestScore := scored[0].Classification.Score
	for i := 1; i < len(scored); i++ {
		s := scored[i].Classification.Score
		if s > bestScore || (math.IsNaN(bestScore) && !math.IsNaN(s)) {
			best, bestScore = i, s
		}
	}
	return best
}
