// Package llm provides the text generators used to decompose milestones.
package llm

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ShayCichocki/paperbar/internal/config"
)

// maxTokens caps a single generation.
const maxTokens = 4096

// ErrEmptyResponse is returned when the provider answers without any text.
var ErrEmptyResponse = errors.New("empty response from model")

// Generator produces a completion for a single prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// New builds the generator selected by cfg.LLM.Provider, paced to
// cfg.LLM.RequestsPerMinute when that is set.
func New(cfg *config.Config, logger *zap.Logger) (Generator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	gen, err := newProvider(cfg, logger)
	if err != nil {
		return nil, err
	}
	if cfg.LLM.RequestsPerMinute > 0 {
		return NewRateLimited(gen, cfg.LLM.RequestsPerMinute), nil
	}
	return gen, nil
}

func newProvider(cfg *config.Config, logger *zap.Logger) (Generator, error) {
	switch cfg.LLM.Provider {
	case config.ProviderAnthropic, "":
		ac := AnthropicConfig{
			Model:         cfg.Anthropic.Model,
			UseAWSBedrock: cfg.Anthropic.UseBedrock,
			AWSRegion:     cfg.Anthropic.AWSRegion,
			AWSProfile:    cfg.Anthropic.AWSProfile,
		}
		if !ac.UseAWSBedrock {
			key, err := config.GetAPIKey(cfg, config.ProviderAnthropic)
			if err != nil {
				return nil, err
			}
			ac.APIKey = key
		}
		return NewAnthropic(ac, logger)

	case config.ProviderOpenAI:
		key, err := config.GetAPIKey(cfg, config.ProviderOpenAI)
		if err != nil {
			return nil, err
		}
		return NewOpenAI(OpenAIConfig{
			APIKey:  key,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
		}, logger)

	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}
