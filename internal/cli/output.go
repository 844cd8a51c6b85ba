package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	"jokegen/internal/bootstrap"
	"jokegen/internal/usecase"
)

var (
	questionLabel = color.New(color.FgCyan, color.Bold).SprintFunc()
	answerLabel   = color.New(color.FgGreen, color.Bold).SprintFunc()
)

func printJoke(w io.Writer, setup, punchline string) {
	fmt.Fprintln(w, questionLabel("Q:"), setup)
	fmt.Fprintln(w, answerLabel("A:"), punchline)
}

func writeJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

func writeJSONFile(path string, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	if err := os.WriteFile(path, output, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// newPunchlineUseCase loads the models once for the running command.
func newPunchlineUseCase() (*usecase.PunchlineUseCase, error) {
	cfg := GetConfig()

	models, err := bootstrap.Init(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize models: %w", err)
	}

	mode, err := usecase.ParseExtractionMode(cfg.Rerank.Extraction)
	if err != nil {
		return nil, err
	}

	return usecase.NewPunchlineUseCase(models, mode), nil
}
