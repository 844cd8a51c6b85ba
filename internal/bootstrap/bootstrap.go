// Package bootstrap loads the model capabilities named in the configuration.
package bootstrap

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"jokegen/config"
	"jokegen/internal/adapter/analyzer"
	"jokegen/internal/adapter/cache"
	"jokegen/internal/adapter/classifier"
	"jokegen/internal/adapter/device"
	"jokegen/internal/adapter/generator"
	"jokegen/internal/port"
	"jokegen/internal/usecase"
)

// Init resolves device placement and builds both generators, the classifier
// and the optional pair truncator. Any failure is fatal for the caller.
func Init(cfg *config.Config) (usecase.Models, error) {
	if err := cfg.Validate(); err != nil {
		return usecase.Models{}, fmt.Errorf("invalid config: %w", err)
	}

	placement, err := device.Resolve(cfg.Device.Accelerator)
	if err != nil {
		return usecase.Models{}, err
	}

	base, err := newGenerator(cfg.Generator, cfg.Generator.BaseModel)
	if err != nil {
		return usecase.Models{}, fmt.Errorf("failed to create base generator: %w", err)
	}
	fineTuned, err := newGenerator(cfg.Generator, cfg.Generator.FineTunedModel)
	if err != nil {
		return usecase.Models{}, fmt.Errorf("failed to create fine-tuned generator: %w", err)
	}

	cls, err := newClassifier(cfg.Classifier)
	if err != nil {
		return usecase.Models{}, fmt.Errorf("failed to create classifier: %w", err)
	}
	if cfg.Cache.Enabled {
		cls = cache.NewCachedClassifier(cls, cache.NewScoreCache(cfg.Cache.MaxSize, cfg.Cache.TTL))
	}

	models := usecase.Models{
		Base:       base,
		FineTuned:  fineTuned,
		Classifier: cls,
		Placement:  placement,
	}

	tr, err := newTruncator(cfg.Classifier)
	if err != nil {
		return usecase.Models{}, fmt.Errorf("failed to create truncator: %w", err)
	}
	models.Truncator = tr

	log.Debug().
		Str("device", placement.Name).
		Str("base", base.ModelName()).
		Str("fine_tuned", fineTuned.ModelName()).
		Str("classifier", cls.ModelName()).
		Bool("cache", cfg.Cache.Enabled).
		Msg("Models initialized")

	return models, nil
}

func newGenerator(cfg config.GeneratorConfig, model string) (port.Generator, error) {
	switch cfg.Provider {
	case "openai":
		return generator.NewOpenAIGenerator(generator.Options{
			BaseURL:     cfg.BaseURL,
			Model:       model,
			APIKeyEnv:   cfg.APIKeyEnv,
			EOSToken:    cfg.EOSToken,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			TopP:        cfg.TopP,
			Timeout:     cfg.Timeout,
		})
	case "mock":
		return generator.NewMockGenerator(model), nil
	default:
		return nil, fmt.Errorf("unsupported generator provider: %s", cfg.Provider)
	}
}

// newTruncator returns nil when truncation is off. Without the classifier's
// tokenizer.json, wordpiece truncation is skipped and pairs go out whole.
func newTruncator(cfg config.ClassifierConfig) (port.PairTruncator, error) {
	if cfg.MaxTokens == 0 {
		return nil, nil
	}
	switch cfg.Tokenizer {
	case "bpe":
		return analyzer.NewBPETruncator(cfg.Encoding, cfg.MaxTokens)
	case "wordpiece", "":
		if cfg.TokenizerFile == "" {
			log.Warn().
				Int("max_tokens", cfg.MaxTokens).
				Msg("No classifier tokenizer_file configured, pairs are not truncated locally")
			return nil, nil
		}
		return analyzer.NewWordPieceTruncatorFromFile(cfg.TokenizerFile, cfg.MaxTokens)
	default:
		return nil, fmt.Errorf("unsupported classifier tokenizer: %s", cfg.Tokenizer)
	}
}

func newClassifier(cfg config.ClassifierConfig) (port.Classifier, error) {
	switch cfg.Provider {
	case "tei":
		return classifier.NewTEIClassifier(classifier.TEIOptions{
			BaseURL:       cfg.BaseURL,
			Model:         cfg.Model,
			APIKeyEnv:     cfg.APIKeyEnv,
			PositiveLabel: cfg.PositiveLabel,
			Threshold:     cfg.Threshold,
			BatchSize:     cfg.BatchSize,
			Timeout:       cfg.Timeout,
		})
	case "rerank":
		return classifier.NewRerankClassifier(classifier.RerankOptions{
			BaseURL:   cfg.BaseURL,
			Model:     cfg.Model,
			APIKeyEnv: cfg.APIKeyEnv,
			Threshold: cfg.Threshold,
			Timeout:   cfg.Timeout,
		})
	case "mock":
		return classifier.NewMockClassifier(cfg.Threshold), nil
	default:
		return nil, fmt.Errorf("unsupported classifier provider: %s", cfg.Provider)
	}
}
