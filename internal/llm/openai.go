package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

// OpenAIConfig contains configuration for an OpenAIGenerator.
type OpenAIConfig struct {
	// APIKey is the OpenAI (or compatible endpoint) API key.
	APIKey string
	// Model defaults to gpt-4o.
	Model string
	// BaseURL targets an OpenAI-compatible endpoint.
	// For OpenAI: https://api.openai.com/v1
	BaseURL string
}

// OpenAIGenerator generates text with an OpenAI-compatible chat endpoint.
type OpenAIGenerator struct {
	llm    llms.Model
	model  string
	logger *zap.Logger
}

// NewOpenAI creates a generator backed by langchaingo's OpenAI client.
func NewOpenAI(cfg OpenAIConfig, logger *zap.Logger) (*OpenAIGenerator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: no API key configured (set OPENAI_API_KEY)")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}

	opts := []openai.Option{
		openai.WithModel(cfg.Model),
		openai.WithToken(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}

	return &OpenAIGenerator{
		llm:    llm,
		model:  cfg.Model,
		logger: logger,
	}, nil
}

// Model returns the configured model name.
func (g *OpenAIGenerator) Model() string {
	return g.model
}

// Generate sends prompt as a single user message.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt, llms.WithMaxTokens(maxTokens))
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}

	g.logger.Debug("openai generation complete",
		zap.String("model", g.model),
		zap.Int("chars", len(text)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
