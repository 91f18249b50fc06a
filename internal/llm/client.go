// Package llm is a thin chat-completion client for any OpenAI-compatible
// endpoint. The summary providers point it at api.openai.com or at Gemini's
// compatibility layer; only the base URL and model name change.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4.1-mini"

	// Summaries are a couple of sentences; a tight token cap keeps a
	// misbehaving model from writing an essay.
	defaultMaxTokens = 180
	defaultTimeout   = 60 * time.Second
)

var ErrMissingKey = errors.New("llm: API key is required")

// Config holds client settings. Zero values take the defaults above.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	Temperature float32
	MaxTokens   int
}

func (cfg Config) normalized() Config {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Temperature < 0 {
		cfg.Temperature = 0
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return cfg
}

// Client issues single-shot chat completions.
type Client struct {
	api *openai.Client
	cfg Config
}

// New creates a client from config.
func New(cfg Config) (*Client, error) {
	cfg = cfg.normalized()
	if cfg.APIKey == "" {
		return nil, ErrMissingKey
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = cfg.BaseURL

	return &Client{api: openai.NewClientWithConfig(apiCfg), cfg: cfg}, nil
}

// Complete sends one system+user prompt pair and returns the response text.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c == nil {
		return "", errors.New("llm: client is nil")
	}
	if systemPrompt == "" || userPrompt == "" {
		return "", errors.New("llm: prompts must be provided")
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("llm: empty response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
