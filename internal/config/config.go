// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) initializer to build a Config with defaults.
// - Load layers a .env file, an optional YAML file and ONTHISDAY_ env vars.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"context"
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// OpenAIAPIKey is the credential for the completion service.
	OpenAIAPIKey string `koanf:"openai_api_key"`

	// OpenAIBaseURL overrides the API endpoint, e.g. for a proxy.
	OpenAIBaseURL string `koanf:"openai_base_url"`

	// Model names the chat model.
	Model string `koanf:"model"`

	// MaxTokens and Temperature are passed through on every completion.
	MaxTokens   int     `koanf:"max_tokens"`
	Temperature float64 `koanf:"temperature"`

	// RequestTimeoutMS bounds a single completion request.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// RequestsPerMinute caps outbound completions. Zero disables the limit.
	RequestsPerMinute int `koanf:"requests_per_minute"`

	// WorkerCount sets the number of completion workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory job queue.
	QueueSize int `koanf:"queue_size"`

	// SelectCount is the number of events the daily job logs.
	SelectCount int `koanf:"select_count"`

	// DailySchedule is a five-field cron expression. Empty disables the job.
	DailySchedule string `koanf:"daily_schedule"`
}

// New creates a Config with defaults. Context is accepted first to satisfy the
// project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		Model:             "gpt-4o",
		MaxTokens:         2000,
		Temperature:       0.7,
		RequestTimeoutMS:  60_000,
		RequestsPerMinute: 30,
		WorkerCount:       runtime.NumCPU(),
		QueueSize:         256,
		SelectCount:       5,
		DailySchedule:     "0 8 * * *",
	}
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}
