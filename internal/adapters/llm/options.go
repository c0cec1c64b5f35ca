package llm

import (
	"time"

	"github.com/okian/onthisday/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithModel sets the chat model.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithMaxTokens caps the completion length.
func WithMaxTokens(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithTemperature sets the sampling temperature. Zero is sent as the smallest
// positive value so it still reaches the API.
func WithTemperature(t float32) Option {
	return func(c *Client) {
		if t >= 0 {
			c.temperature = t
		}
	}
}

// WithTimeout bounds each completion request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRequestsPerMinute limits outbound completions. Zero or less disables the limit.
func WithRequestsPerMinute(n int) Option {
	return func(c *Client) {
		c.requestsPerMinute = n
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}
