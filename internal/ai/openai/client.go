// Package openai implements the gateway generator for OpenAI-compatible chat
// endpoints, such as a local Ollama server, through the eino chat model.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	einoopenai "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/spigell/talent-screener/internal/ai"
)

const (
	// DefaultBaseURL points at Ollama's OpenAI-compatible API.
	DefaultBaseURL = "http://localhost:11434/v1"
	// DefaultModel is the model pulled by a stock Ollama install.
	DefaultModel = "llama3.2"

	defaultTemperature float32 = 0.7
	defaultMaxTokens           = 300
	// Ollama ignores the key but the client insists on one.
	placeholderAPIKey = "ollama"
)

// chatGenerator is the part of model.BaseChatModel the generator uses.
type chatGenerator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// Config holds connection and sampling settings.
type Config struct {
	BaseURL     string
	Model       string
	APIKey      string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// Generator sends a system and a user message and returns the reply content.
type Generator struct {
	chat      chatGenerator
	modelName string
}

var _ ai.Generator = (*Generator)(nil)

// NewGenerator builds an eino OpenAI chat model from cfg. Zero values fall back
// to the local Ollama defaults.
func NewGenerator(ctx context.Context, cfg Config) (*Generator, error) {
	cfg = withDefaults(cfg)

	chatModel, err := einoopenai.NewChatModel(ctx, &einoopenai.ChatModelConfig{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: &cfg.Temperature,
		MaxTokens:   &cfg.MaxTokens,
		Timeout:     cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create openai chat model: %w", err)
	}

	return &Generator{chat: chatModel, modelName: cfg.Model}, nil
}

func withDefaults(cfg Config) Config {
	if cfg.BaseURL = strings.TrimSpace(cfg.BaseURL); cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model = strings.TrimSpace(cfg.Model); cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.APIKey = strings.TrimSpace(cfg.APIKey); cfg.APIKey == "" {
		cfg.APIKey = placeholderAPIKey
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = ai.DefaultTimeout
	}
	return cfg
}

// GenerateContent implements ai.Generator.
func (g *Generator) GenerateContent(ctx context.Context, systemPrompt, prompt string) (string, error) {
	if g == nil || g.chat == nil {
		return "", errors.New("openai generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	messages := make([]*schema.Message, 0, 2)
	if systemPrompt = strings.TrimSpace(systemPrompt); systemPrompt != "" {
		messages = append(messages, schema.SystemMessage(systemPrompt))
	}
	messages = append(messages, schema.UserMessage(prompt))

	resp, err := g.chat.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", ai.ErrEmptyResponse
	}

	return strings.TrimSpace(resp.Content), nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}
