package usecase

import (
	"context"
	"fmt"

	"jokegen/internal/domain"
)

// BatchUseCase runs the pipeline over many setups, one after another.
type BatchUseCase struct {
	punchlines *PunchlineUseCase
}

func NewBatchUseCase(punchlines *PunchlineUseCase) *BatchUseCase {
	return &BatchUseCase{punchlines: punchlines}
}

// BatchResult keeps selections in input order. A failed setup has a zero
// Selection at its position and an entry in Errors.
type BatchResult struct {
	Selections []domain.Selection `json:"selections"`
	Errors     []BatchError       `json:"errors,omitempty"`
	Succeeded  int                `json:"succeeded"`
}

type BatchError struct {
	Index int    `json:"index"`
	Setup string `json:"setup"`
	Error string `json:"error"`
}

// ProgressFunc is called after each setup is processed.
type ProgressFunc func(done, total int, setup string)

// Run stops early only when ctx is done.
func (u *BatchUseCase) Run(ctx context.Context, setups []string, useBase bool, k int, progress ProgressFunc) (BatchResult, error) {
	result := BatchResult{Selections: make([]domain.Selection, len(setups))}

	for i, setup := range setups {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("batch interrupted after %d of %d setups: %w", i, len(setups), err)
		}

		sel, err := u.punchlines.Punchline(ctx, setup, useBase, k)
		if err != nil {
			result.Errors = append(result.Errors, BatchError{Index: i, Setup: setup, Error: err.Error()})
		} else {
			result.Selections[i] = sel
			result.Succeeded++
		}

		if progress != nil {
			progress(i+1, len(setups), setup)
		}
	}

	return result, nil
}
