package generator

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"jokegen/internal/domain"
)

// maxBatch caps how many prompts go into one completions request.
const maxBatch = 16

// OpenAIGenerator samples completions from an OpenAI-compatible
// /completions endpoint (vLLM, llama.cpp server, OpenAI).
type OpenAIGenerator struct {
	apiKey      string
	model       string
	baseURL     string
	eosToken    string
	maxTokens   int
	temperature float64
	topP        float64
	client      *http.Client
}

// Options configures an OpenAIGenerator.
type Options struct {
	BaseURL     string
	Model       string
	APIKeyEnv   string
	EOSToken    string
	MaxTokens   int
	Temperature float64
	TopP        float64
	Timeout     time.Duration
}

type completionRequest struct {
	Model       string   `json:"model"`
	Prompt      []string `json:"prompt"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	Temperature float64  `json:"temperature"`
	TopP        float64  `json:"top_p,omitempty"`
	N           int      `json:"n"`
}

type completionResponse struct {
	Choices []completionChoice `json:"choices"`
	Error   *apiError          `json:"error,omitempty"`
}

type completionChoice struct {
	Text         string `json:"text"`
	Index        int    `json:"index"`
	FinishReason string `json:"finish_reason"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func NewOpenAIGenerator(opts Options) (*OpenAIGenerator, error) {
	if opts.Model == "" {
		return nil, fmt.Errorf("generator model name is required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.openai.com/v1"
	}

	var apiKey string
	if opts.APIKeyEnv != "" {
		apiKey = os.Getenv(opts.APIKeyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("API key not found in environment variable: %s", opts.APIKeyEnv)
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return &OpenAIGenerator{
		apiKey:      apiKey,
		model:       opts.Model,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		eosToken:    opts.EOSToken,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
		topP:        opts.TopP,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Generate replicates the prompt SampleCount times and lets the server's
// sampling provide the diversity.
func (g *OpenAIGenerator) Generate(ctx context.Context, req domain.GenerationRequest) ([]string, error) {
	if req.SampleCount < 1 {
		return nil, domain.ErrInvalidSampleCount
	}

	prompt := req.Prompt.String()
	var all []string

	for i := 0; i < req.SampleCount; i += maxBatch {
		n := min(maxBatch, req.SampleCount-i)
		prompts := make([]string, n)
		for j := range prompts {
			prompts[j] = prompt
		}

		texts, err := g.completeBatch(ctx, prompts)
		if err != nil {
			return nil, err
		}
		all = append(all, texts...)
	}

	return all, nil
}

func (g *OpenAIGenerator) completeBatch(ctx context.Context, prompts []string) ([]string, error) {
	reqBody := completionRequest{
		Model:       g.model,
		Prompt:      prompts,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
		TopP:        g.topP,
		N:           1,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/completions", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var compResp completionResponse
	if err := json.Unmarshal(body, &compResp); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200]
		}
		return nil, fmt.Errorf("failed to parse response (body: %s): %w", bodyPreview, err)
	}

	if compResp.Error != nil {
		return nil, fmt.Errorf("API error: %s", compResp.Error.Message)
	}

	if len(compResp.Choices) != len(prompts) {
		return nil, fmt.Errorf("%w: requested %d completions, got %d", domain.ErrSampleCountMismatch, len(prompts), len(compResp.Choices))
	}

	texts := make([]string, len(prompts))
	seen := make([]bool, len(prompts))
	for _, choice := range compResp.Choices {
		if choice.Index < 0 || choice.Index >= len(texts) || seen[choice.Index] {
			return nil, fmt.Errorf("unexpected choice index %d", choice.Index)
		}
		seen[choice.Index] = true
		// The completions API returns only the continuation; callers expect
		// the whole sequence the way the model saw it.
		texts[choice.Index] = prompts[choice.Index] + choice.Text
	}

	return texts, nil
}

func (g *OpenAIGenerator) EOSToken() string {
	return g.eosToken
}

func (g *OpenAIGenerator) ModelName() string {
	return g.model
}
