package classifier

import (
	"context"
	"hash/fnv"

	"jokegen/internal/domain"
)

// MockClassifier returns fixed scores by position, or a stable hash of the
// answer when no scores are given.
type MockClassifier struct {
	scores    []float64
	threshold float64
}

func NewMockClassifier(threshold float64, scores ...float64) *MockClassifier {
	return &MockClassifier{scores: scores, threshold: threshold}
}

func (c *MockClassifier) Classify(ctx context.Context, pairs []domain.Pair) ([]domain.Classification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]domain.Classification, len(pairs))
	for i, p := range pairs {
		var score float64
		if len(c.scores) > 0 {
			score = c.scores[i%len(c.scores)]
		} else {
			score = hashScore(p.Answer)
		}
		results[i] = domain.Classification{Label: labelFor(score, c.threshold), Score: score}
	}
	return results, nil
}

func (c *MockClassifier) ModelName() string {
	return "mock"
}

func hashScore(s string) float64 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return float64(h.Sum32()%1000) / 1000
}
