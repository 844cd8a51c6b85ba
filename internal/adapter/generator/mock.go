package generator

import (
	"context"

	"jokegen/internal/domain"
)

const mockEOS = "<|endoftext|>"

var defaultMockPunchlines = []string{
	"Because it was Brie-lliant.",
	"No reason.",
	"Tadpole hunger.",
}

// MockGenerator returns canned punchlines in a fixed rotation. The i-th
// sample of every request is the prompt followed by punchline i modulo the
// list length, so output depends only on the request.
type MockGenerator struct {
	name       string
	punchlines []string
}

func NewMockGenerator(name string, punchlines ...string) *MockGenerator {
	if len(punchlines) == 0 {
		punchlines = defaultMockPunchlines
	}
	if name == "" {
		name = "mock"
	}
	return &MockGenerator{name: name, punchlines: punchlines}
}

func (g *MockGenerator) Generate(ctx context.Context, req domain.GenerationRequest) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.SampleCount < 1 {
		return nil, domain.ErrInvalidSampleCount
	}

	out := make([]string, req.SampleCount)
	for i := range out {
		out[i] = req.Prompt.String() + " " + g.punchlines[i%len(g.punchlines)] + mockEOS
	}
	return out, nil
}

func (g *MockGenerator) EOSToken() string {
	return mockEOS
}

func (g *MockGenerator) ModelName() string {
	return g.name
}
