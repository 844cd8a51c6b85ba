package domain

import "errors"

const (
	QuestionPrefix = "Question: "
	AnswerMarker   = "Answer:"
)

var (
	ErrEmptySetup          = errors.New("setup must not be empty")
	ErrInvalidSampleCount  = errors.New("sample count must be at least 1")
	ErrSampleCountMismatch = errors.New("sample count mismatch")
)

// Label is the classifier's discrete verdict on a (question, answer) pair.
type Label string

const (
	LabelReal Label = "real"
	LabelFake Label = "fake"
)

// Prompt is the generator input built from a setup.
type Prompt string

// NewPrompt formats a setup as "Question: <setup> Answer:".
func NewPrompt(setup string) Prompt {
	return Prompt(QuestionPrefix + setup + " " + AnswerMarker)
}

func (p Prompt) String() string {
	return string(p)
}

// GenerationRequest asks a generator for SampleCount independent samples
// of the same prompt.
type GenerationRequest struct {
	Prompt      Prompt
	SampleCount int
}

type Candidate struct {
	Index    int    `json:"index"`
	Raw      string `json:"-"`
	Text     string `json:"text"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Pair is one classifier input.
type Pair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type Classification struct {
	Label Label   `json:"label"`
	Score float64 `json:"score"`
}

type ScoredCandidate struct {
	Candidate      Candidate      `json:"candidate"`
	Classification Classification `json:"classification"`
}

type Selection struct {
	ID         string            `json:"id"`
	Setup      string            `json:"setup"`
	Prompt     string            `json:"prompt"`
	Punchline  string            `json:"punchline"`
	Score      float64           `json:"score"`
	Generator  string            `json:"generator"`
	Candidates []ScoredCandidate `json:"candidates"`
}

// Placement is the resolved compute device for model inference.
type Placement struct {
	Accelerator bool   `json:"accelerator" yaml:"accelerator"`
	Name        string `json:"name" yaml:"name"`
}
