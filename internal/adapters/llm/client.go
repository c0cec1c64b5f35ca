// Package llm adapts the OpenAI chat completions API to the history.Completer
// contract.
package llm

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/okian/onthisday/pkg/logger"
)

// Default client configuration constants.
const (
	DefaultModel       = openai.GPT4o
	defaultMaxTokens   = 2000
	defaultTemperature = 0.7
	defaultTimeout     = 60 * time.Second
	defaultRPM         = 30
)

// Client sends single-turn chat completions.
type Client struct {
	api *openai.Client

	baseURL           string
	model             string
	maxTokens         int
	temperature       float32
	timeout           time.Duration
	requestsPerMinute int

	limiter *rate.Limiter
	logger  logger.Logger
}

// New creates a client. A missing apiKey is a configuration error.
func New(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}

	c := &Client{
		model:             DefaultModel,
		maxTokens:         defaultMaxTokens,
		temperature:       defaultTemperature,
		timeout:           defaultTimeout,
		requestsPerMinute: defaultRPM,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("llm")
	}

	cfg := openai.DefaultConfig(apiKey)
	if c.baseURL != "" {
		cfg.BaseURL = strings.TrimRight(c.baseURL, "/")
	}
	c.api = openai.NewClientWithConfig(cfg)

	c.limiter = rate.NewLimiter(rate.Inf, 1)
	if c.requestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(c.requestsPerMinute)), 1)
	}

	return c, nil
}

// Model returns the configured chat model.
func (c *Client) Model() string {
	return c.model
}

// Complete sends system and prompt as one exchange and returns the reply text.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %w", ErrRateLimited, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: requestTemperature(c.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	c.logger.Debug(ctx, "chat completion",
		logger.String("model", resp.Model),
		logger.Int("prompt_tokens", resp.Usage.PromptTokens),
		logger.Int("completion_tokens", resp.Usage.CompletionTokens),
		logger.Duration("latency", time.Since(start)),
	)

	return resp.Choices[0].Message.Content, nil
}

// requestTemperature maps 0 to the smallest positive float32. The request
// field is omitempty, so a literal 0 would be dropped and the API default used.
func requestTemperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}
