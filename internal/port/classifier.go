package port

import (
	"context"

	"jokegen/internal/domain"
)

// Classifier estimates whether (question, answer) pairs are real jokes.
type Classifier interface {
	// Classify returns one classification per pair, in input order.
	Classify(ctx context.Context, pairs []domain.Pair) ([]domain.Classification, error)

	// ModelName returns the name of the classification model.
	ModelName() string
}

// PairTruncator fits a pair into the classifier's input budget.
type PairTruncator interface {
	Truncate(pair domain.Pair) domain.Pair
}
