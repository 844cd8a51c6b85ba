package classifier

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"jokegen/internal/domain"
)

// TEIClassifier scores pairs with a sequence-classification model served by
// Hugging Face text-embeddings-inference (POST /predict).
type TEIClassifier struct {
	apiKey        string
	model         string
	baseURL       string
	positiveLabel string
	threshold     float64
	batchSize     int
	client        *http.Client
}

// TEIOptions configures a TEIClassifier.
type TEIOptions struct {
	BaseURL       string
	Model         string
	APIKeyEnv     string
	PositiveLabel string
	Threshold     float64
	BatchSize     int
	Timeout       time.Duration
}

type predictRequest struct {
	Inputs    [][2]string `json:"inputs"`
	RawScores bool        `json:"raw_scores"`
	Truncate  bool        `json:"truncate"`
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func NewTEIClassifier(opts TEIOptions) (*TEIClassifier, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("classifier base URL is required")
	}
	apiKey, err := apiKeyFromEnv(opts.APIKeyEnv)
	if err != nil {
		return nil, err
	}
	if opts.PositiveLabel == "" {
		opts.PositiveLabel = "LABEL_1"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	return &TEIClassifier{
		apiKey:        apiKey,
		model:         opts.Model,
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		positiveLabel: opts.PositiveLabel,
		threshold:     opts.Threshold,
		batchSize:     opts.BatchSize,
		client: &http.Client{
			Timeout: opts.Timeout,
		},
	}, nil
}

func (c *TEIClassifier) Classify(ctx context.Context, pairs []domain.Pair) ([]domain.Classification, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	batchSize := c.batchSize
	if batchSize <= 0 {
		batchSize = len(pairs)
	}

	results := make([]domain.Classification, 0, len(pairs))
	for i := 0; i < len(pairs); i += batchSize {
		end := min(i+batchSize, len(pairs))
		batch, err := c.classifyBatch(ctx, pairs[i:end])
		if err != nil {
			return nil, err
		}
		results = append(results, batch...)
	}

	return results, nil
}

func (c *TEIClassifier) classifyBatch(ctx context.Context, pairs []domain.Pair) ([]domain.Classification, error) {
	reqBody := predictRequest{
		Inputs:   make([][2]string, len(pairs)),
		Truncate: true,
	}
	for i, p := range pairs {
		reqBody.Inputs[i] = [2]string{p.Question, p.Answer}
	}

	var predictions [][]labelScore
	if err := postJSON(ctx, c.client, c.baseURL+"/predict", c.apiKey, reqBody, &predictions); err != nil {
		return nil, err
	}

	if len(predictions) != len(pairs) {
		return nil, fmt.Errorf("%w: sent %d pairs, got %d predictions", domain.ErrSampleCountMismatch, len(pairs), len(predictions))
	}

	results := make([]domain.Classification, len(pairs))
	for i, labels := range predictions {
		score, ok := c.positiveScore(labels)
		if !ok {
			return nil, fmt.Errorf("prediction %d has no %q label", i, c.positiveLabel)
		}
		score = clamp01(score)
		results[i] = domain.Classification{
			Label: labelFor(score, c.threshold),
			Score: score,
		}
	}

	return results, nil
}

func (c *TEIClassifier) positiveScore(labels []labelScore) (float64, bool) {
	for _, l := range labels {
		if l.Label == c.positiveLabel {
			return l.Score, true
		}
	}
	return 0, false
}

func (c *TEIClassifier) ModelName() string {
	return c.model
}
