package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"jokegen/config"
	"jokegen/internal/bootstrap"
	"jokegen/internal/logging"
	"jokegen/internal/usecase"
)

func main() {
	dir := flag.String("dir", ".", "Directory containing jokegen.yaml")
	setup := flag.String("s", "", "Joke setup to probe")
	maxK := flag.Int("max-k", 5, "Largest number of candidates to try")
	trials := flag.Int("n", 5, "Trials per K")
	base := flag.Bool("base", false, "Probe the base generator instead of the fine-tuned one")
	flag.Parse()

	if *setup == "" {
		fmt.Println("Usage: go run cmd/scoreprobe/main.go -dir . -s \"setup\" [-max-k 5] [-n 5]")
		fmt.Println("\nReports, for every K from 1 to max-k:")
		fmt.Println("  1. Mean winning classifier score over n runs")
		fmt.Println("  2. Best winning score seen")
		fmt.Println("  3. Gain over K=1")
		os.Exit(1)
	}
	if *maxK < 1 || *trials < 1 {
		fmt.Fprintln(os.Stderr, "max-k and n must be at least 1")
		os.Exit(1)
	}

	cfg, err := config.LoadFromDir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := logging.Setup("warn", cfg.Logging.Format, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		os.Exit(1)
	}

	models, err := bootstrap.Init(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing models: %v\n", err)
		os.Exit(1)
	}
	mode, err := usecase.ParseExtractionMode(cfg.Rerank.Extraction)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	uc := usecase.NewPunchlineUseCase(models, mode)

	fmt.Println("BEST-OF-K SCORE PROBE")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Generator:  %s\n", generatorName(models, *base))
	fmt.Printf("Classifier: %s (%s)\n", models.Classifier.ModelName(), cfg.Classifier.Provider)
	fmt.Printf("Device:     %s\n", models.Placement.Name)
	fmt.Printf("Setup:      \"%s\"\n", *setup)
	fmt.Println(strings.Repeat("-", 70))

	ctx := context.Background()
	var baseline float64
	for k := 1; k <= *maxK; k++ {
		total, top := 0.0, 0.0
		var topPunchline string
		for i := 0; i < *trials; i++ {
			sel, err := uc.Punchline(ctx, *setup, *base, k)
			if err != nil {
				fmt.Fprintf(os.Stderr, "K=%d trial %d failed: %v\n", k, i+1, err)
				os.Exit(1)
			}
			total += sel.Score
			if i == 0 || sel.Score > top {
				top, topPunchline = sel.Score, sel.Punchline
			}
		}

		mean := total / float64(*trials)
		if k == 1 {
			baseline = mean
		}

		fmt.Printf("K=%d  [%s] mean %.3f  top %.3f  gain %+.3f\n", k, rating(mean), mean, top, mean-baseline)
		fmt.Printf("     %s\n\n", topPunchline)
	}

	fmt.Println(strings.Repeat("=", 70))
}

func rating(score float64) string {
	switch {
	case score > 0.8:
		return "HIGH"
	case score > 0.6:
		return "GOOD"
	case score > 0.4:
		return "OK"
	default:
		return "LOW"
	}
}

func generatorName(m usecase.Models, useBase bool) string {
	if useBase {
		return m.Base.ModelName()
	}
	return m.FineTuned.ModelName()
}
