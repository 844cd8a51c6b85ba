package port

import (
	"context"

	"jokegen/internal/domain"
)

// Generator samples text continuations from a language model.
type Generator interface {
	// Generate returns exactly req.SampleCount raw completions of req.Prompt.
	// Each completion is the full sequence, prompt included.
	Generate(ctx context.Context, req domain.GenerationRequest) ([]string, error)

	// EOSToken returns the end-of-sequence marker the model may emit.
	EOSToken() string

	// ModelName returns the name of the generation model.
	ModelName() string
}
