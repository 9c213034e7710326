package predict

import (
	"log/slog"

	"github.com/openai/openai-go/option"
)

// Option configures a Client.
type Option func(*config)

type config struct {
	model       string
	maxTokens   int
	maxSide     int
	prompt      string
	logger      *slog.Logger
	requestOpts []option.RequestOption
}

func defaultConfig() config {
	return config{
		model:     DefaultModel,
		maxTokens: 500,
		prompt:    DefaultPrompt,
		logger:    slog.Default(),
	}
}

// WithModel sets the chat model name (default: gpt-4o).
func WithModel(m string) Option {
	return func(c *config) {
		if m != "" {
			c.model = m
		}
	}
}

// WithMaxTokens caps the completion length (default: 500).
func WithMaxTokens(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithMaxSide downsizes images whose longer side exceeds n pixels before
// upload. Returned boxes are scaled back to the original size. Zero
// disables resizing (default).
func WithMaxSide(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.maxSide = n
		}
	}
}

// WithPrompt replaces the detection prompt.
func WithPrompt(p string) Option {
	return func(c *config) {
		if p != "" {
			c.prompt = p
		}
	}
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(u string) Option {
	return func(c *config) {
		if u != "" {
			c.requestOpts = append(c.requestOpts, option.WithBaseURL(u))
		}
	}
}

// WithRequestOptions appends raw openai-go request options.
func WithRequestOptions(opts ...option.RequestOption) Option {
	return func(c *config) {
		c.requestOpts = append(c.requestOpts, opts...)
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
