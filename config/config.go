package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the punchline generator.
type Config struct {
	Generator  GeneratorConfig  `yaml:"generator"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Rerank     RerankConfig     `yaml:"rerank"`
	Device     DeviceConfig     `yaml:"device"`
	Cache      CacheConfig      `yaml:"cache"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// GeneratorConfig holds text generation configuration.
type GeneratorConfig struct {
	Provider       string        `yaml:"provider"`         // "openai", "mock"
	BaseURL        string        `yaml:"base_url"`         // OpenAI-compatible endpoint, e.g. "http://localhost:8000/v1"
	BaseModel      string        `yaml:"base_model"`       // Vanilla model
	FineTunedModel string        `yaml:"fine_tuned_model"` // Model fine-tuned on jokes
	APIKeyEnv      string        `yaml:"api_key_env"`      // Environment variable for API key (empty = no auth)
	EOSToken       string        `yaml:"eos_token"`
	MaxTokens      int           `yaml:"max_tokens"`
	Temperature    float64       `yaml:"temperature"`
	TopP           float64       `yaml:"top_p"`
	Timeout        time.Duration `yaml:"timeout"`
}

// ClassifierConfig holds joke classifier configuration.
type ClassifierConfig struct {
	Provider      string        `yaml:"provider"` // "tei", "rerank", "mock"
	BaseURL       string        `yaml:"base_url"`
	Model         string        `yaml:"model"`
	APIKeyEnv     string        `yaml:"api_key_env"`
	PositiveLabel string        `yaml:"positive_label"` // Label that means "real joke" (tei only)
	Threshold     float64       `yaml:"threshold"`      // Score at or above which a pair is labeled real
	BatchSize     int           `yaml:"batch_size"`     // 0 = one request per call
	MaxTokens     int           `yaml:"max_tokens"`     // Pair token budget, 0 = no truncation
	Tokenizer     string        `yaml:"tokenizer"`      // "wordpiece" (classifier tokenizer.json) or "bpe"
	TokenizerFile string        `yaml:"tokenizer_file"` // Hugging Face tokenizer.json of the classifier model
	Encoding      string        `yaml:"encoding"`       // BPE encoding used when tokenizer is "bpe"
	Timeout       time.Duration `yaml:"timeout"`
}

// RerankConfig holds best-of-K selection configuration.
type RerankConfig struct {
	BestOf     int    `yaml:"best_of"`
	Extraction string `yaml:"extraction"` // "exact" or "legacy"
}

// DeviceConfig holds compute placement configuration.
type DeviceConfig struct {
	Accelerator string `yaml:"accelerator"` // "auto", "true", "false"
}

// CacheConfig holds classifier score cache configuration.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	MaxSize int           `yaml:"max_size"`
	TTL     time.Duration `yaml:"ttl"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Generator: GeneratorConfig{
			Provider:       "openai",
			BaseURL:        "http://localhost:8000/v1",
			BaseModel:      "gpt2",
			FineTunedModel: "jokegen-gpt2",
			EOSToken:       "<|endoftext|>",
			MaxTokens:      40,
			Temperature:    1.0,
			TopP:           0.95,
			Timeout:        120 * time.Second,
		},
		Classifier: ClassifierConfig{
			Provider:      "tei",
			BaseURL:       "http://localhost:8080",
			Model:         "classify-jokes-bert",
			PositiveLabel: "LABEL_1",
			Threshold:     0.5,
			MaxTokens:     60,
			Tokenizer:     "wordpiece",
			Encoding:      "r50k_base",
			Timeout:       30 * time.Second,
		},
		Rerank: RerankConfig{
			BestOf:     5,
			Extraction: "exact",
		},
		Device: DeviceConfig{
			Accelerator: "auto",
		},
		Cache: CacheConfig{
			Enabled: false,
			MaxSize: 1000,
			TTL:     10 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks that provider names, modes and limits are usable.
func (c *Config) Validate() error {
	switch c.Generator.Provider {
	case "openai", "mock":
	default:
		return fmt.Errorf("unsupported generator provider: %s", c.Generator.Provider)
	}
	switch c.Classifier.Provider {
	case "tei", "rerank", "mock":
	default:
		return fmt.Errorf("unsupported classifier provider: %s", c.Classifier.Provider)
	}
	switch c.Classifier.Tokenizer {
	case "wordpiece", "bpe":
	default:
		return fmt.Errorf("unsupported classifier tokenizer: %s", c.Classifier.Tokenizer)
	}
	switch c.Rerank.Extraction {
	case "exact", "legacy":
	default:
		return fmt.Errorf("unsupported extraction mode: %s", c.Rerank.Extraction)
	}
	if c.Rerank.BestOf < 1 {
		return fmt.Errorf("rerank.best_of must be at least 1, got %d", c.Rerank.BestOf)
	}
	if c.Classifier.Threshold < 0 || c.Classifier.Threshold > 1 {
		return fmt.Errorf("classifier.threshold must be within [0,1], got %v", c.Classifier.Threshold)
	}
	if c.Classifier.BatchSize < 0 {
		return fmt.Errorf("classifier.batch_size must not be negative")
	}
	if c.Classifier.MaxTokens < 0 {
		return fmt.Errorf("classifier.max_tokens must not be negative")
	}
	return nil
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for jokegen.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "jokegen.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".jokegen", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
