package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/talent-screener/internal/ai"
	"github.com/spigell/talent-screener/internal/ai/gemini"
	"github.com/spigell/talent-screener/internal/ai/openai"
	"github.com/spigell/talent-screener/internal/intake"
	"github.com/spigell/talent-screener/internal/questions"
	"github.com/spigell/talent-screener/internal/secrets"
	"go.uber.org/zap"
)

const (
	providerOpenAI = "openai"
	providerGemini = "gemini"
)

// newGenerator builds the model client for cfg.Provider.
func newGenerator(ctx context.Context, cfg *AIConfig) (string, ai.Generator, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider == "" {
		provider = providerOpenAI
	}

	switch provider {
	case providerOpenAI:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "openai api key",
			Value: cfg.OpenAI.APIKey,
			File:  cfg.OpenAI.APIKeyFile,
			Env:   "OPENAI_API_KEY",
		})
		// A local Ollama server does not need a key.
		if err != nil && !errors.Is(err, secrets.ErrNotConfigured) {
			return "", nil, err
		}

		generator, err := openai.NewGenerator(ctx, openai.Config{
			BaseURL:     cfg.OpenAI.BaseURL,
			Model:       cfg.OpenAI.Model,
			APIKey:      apiKey,
			Temperature: cfg.OpenAI.Temperature,
			MaxTokens:   cfg.OpenAI.MaxTokens,
			Timeout:     cfg.Timeout,
		})
		if err != nil {
			return "", nil, err
		}
		return provider, generator, nil

	case providerGemini:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: cfg.Gemini.APIKey,
			File:  cfg.Gemini.APIKeyFile,
			Env:   "GEMINI_API_KEY",
		})
		if err != nil {
			return "", nil, fmt.Errorf("%w (set ai.gemini.api-key, ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
		}

		generator, err := gemini.NewGenerator(ctx, gemini.Config{
			APIKey:      apiKey,
			Model:       cfg.Gemini.Model,
			Temperature: cfg.Gemini.Temperature,
		})
		if err != nil {
			return "", nil, err
		}
		return provider, generator, nil

	default:
		return "", nil, ai.ProviderError(cfg.Provider)
	}
}

// newGateway wraps the configured generator with the fallback gateway.
func newGateway(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Gateway, error) {
	provider, generator, err := newGenerator(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("building %s generator: %w", cfg.Provider, err)
	}

	logger.Info("language model gateway enabled",
		zap.String("provider", provider),
		zap.String("model", generator.Model()),
		zap.Duration("timeout", cfg.Timeout),
	)

	return ai.NewGateway(provider, generator,
		ai.WithTimeout(cfg.Timeout),
		ai.WithMaxLogLength(cfg.MaxLogLength),
		ai.WithLogger(logger),
	), nil
}

// newMachine builds the state machine from config. The gateway is only
// created when ai.enabled is set and an intake feature asks for it.
func newMachine(ctx context.Context, config *Config, logger *zap.Logger) (*intake.Machine, error) {
	keywords := questions.NewGenerator(config.Intake.ExtraTopics...)

	opts := []intake.Option{
		intake.WithLogger(logger),
		intake.WithQuestionSource(keywords),
	}

	if config.Intake.StrictValidation {
		opts = append(opts, intake.WithStrictValidation())
	}

	needsGateway := config.Intake.ExtractWithAI || config.Intake.AIQuestions
	switch {
	case needsGateway && !config.AI.Enabled:
		logger.Warn("intake ai features are configured but ai is disabled",
			zap.Bool("extract_with_ai", config.Intake.ExtractWithAI),
			zap.Bool("ai_questions", config.Intake.AIQuestions),
			zap.String("hint", "set ai.enabled or pass --ai"),
		)
	case needsGateway:
		gateway, err := newGateway(ctx, config.AI, logger)
		if err != nil {
			return nil, err
		}
		if config.Intake.ExtractWithAI {
			opts = append(opts, intake.WithExtractor(gateway))
		}
		if config.Intake.AIQuestions {
			opts = append(opts, intake.WithQuestionSource(ai.NewQuestionSource(gateway, keywords, logger)))
		}
	}

	return intake.New(opts...), nil
}
