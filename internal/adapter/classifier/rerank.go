package classifier

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"jokegen/internal/domain"
)

// maxDocs is the per-request document limit of Cohere-style rerank APIs.
const maxDocs = 1000

// RerankClassifier scores pairs with a cross-encoder behind a Cohere-style
// /rerank endpoint (Cohere, Jina, vLLM, TEI). The question is the query and
// each answer is a document; relevance is read as the real-joke probability.
type RerankClassifier struct {
	apiKey    string
	model     string
	baseURL   string
	threshold float64
	client    *http.Client
}

// RerankOptions configures a RerankClassifier.
type RerankOptions struct {
	BaseURL   string
	Model     string
	APIKeyEnv string
	Threshold float64
	Timeout   time.Duration
}

type rerankRequest struct {
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	Model     string   `json:"model,omitempty"`
	TopN      int      `json:"top_n,omitempty"`
}

type rerankResponse struct {
	Results []rerankResult `json:"results"`
}

type rerankResult struct {
	Index          int     `json:"index"`
	RelevanceScore float64 `json:"relevance_score"`
}

func NewRerankClassifier(opts RerankOptions) (*RerankClassifier, error) {
	apiKey, err := apiKeyFromEnv(opts.APIKeyEnv)
	if err != nil {
		return nil, err
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.cohere.ai/v1"
	}
	if opts.Model == "" {
		opts.Model = "rerank-english-v3.0"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	return &RerankClassifier{
		apiKey:    apiKey,
		model:     opts.Model,
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		threshold: opts.Threshold,
		client: &http.Client{
			Timeout: opts.Timeout,
		},
	}, nil
}

// Classify sends one rerank request per distinct question and maps the
// results back to input order.
func (c *RerankClassifier) Classify(ctx context.Context, pairs []domain.Pair) ([]domain.Classification, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	// Group pair indices by question, keeping first-seen order
	var questions []string
	groups := make(map[string][]int)
	for i, p := range pairs {
		if _, ok := groups[p.Question]; !ok {
			questions = append(questions, p.Question)
		}
		groups[p.Question] = append(groups[p.Question], i)
	}

	results := make([]domain.Classification, len(pairs))
	for _, q := range questions {
		indices := groups[q]
		for start := 0; start < len(indices); start += maxDocs {
			chunk := indices[start:min(start+maxDocs, len(indices))]
			if err := c.rerankGroup(ctx, q, chunk, pairs, results); err != nil {
				return nil, err
			}
		}
	}

	return results, nil
}

func (c *RerankClassifier) rerankGroup(ctx context.Context, question string, indices []int, pairs []domain.Pair, results []domain.Classification) error {
	documents := make([]string, len(indices))
	for i, idx := range indices {
		documents[i] = pairs[idx].Answer
	}

	reqBody := rerankRequest{
		Query:     question,
		Documents: documents,
		Model:     c.model,
		TopN:      len(documents),
	}

	var rerankResp rerankResponse
	if err := postJSON(ctx, c.client, c.baseURL+"/rerank", c.apiKey, reqBody, &rerankResp); err != nil {
		return err
	}

	if len(rerankResp.Results) != len(documents) {
		return fmt.Errorf("%w: sent %d documents, got %d results", domain.ErrSampleCountMismatch, len(documents), len(rerankResp.Results))
	}

	seen := make([]bool, len(documents))
	for _, res := range rerankResp.Results {
		if res.Index < 0 || res.Index >= len(documents) || seen[res.Index] {
			return fmt.Errorf("unexpected result index %d", res.Index)
		}
		seen[res.Index] = true
		score := clamp01(res.RelevanceScore)
		results[indices[res.Index]] = domain.Classification{
			Label: labelFor(score, c.threshold),
			Score: score,
		}
	}
	return nil
}

func (c *RerankClassifier) ModelName() string {
	return c.model
}
