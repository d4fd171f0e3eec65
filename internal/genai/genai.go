// Package genai wraps generative-text providers behind a uniform Generator
// interface. Adapters request JSON-object output, return the raw text payload
// without interpreting it, and perform no retries; retry policy, if ever
// wanted, belongs to the caller.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// DefaultModel is the chat model used when none is configured.
const DefaultModel = "gpt-4o-mini"

// Error variables for better error handling and testability
var (
	ErrMissingAPIKey     = errors.New("API key not provided and OPENAI_API_KEY not set")
	ErrNoChoicesReturned = errors.New("no choices returned")
	ErrEmptyCompletion   = errors.New("provider returned empty completion text")
)

// GenerationError wraps any provider-call failure (network, auth, rate limit,
// timeout, empty output) with the task it occurred in.
type GenerationError struct {
	Task string
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed for task %q: %v", e.Task, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Timeout reports whether the underlying failure was a deadline expiry.
func (e *GenerationError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// Generator is the uniform generation call used by the orchestration services.
// The task name tags logs and errors; implementations must be safe for
// concurrent use by independent requests.
type Generator interface {
	Generate(ctx context.Context, task, prompt string) (string, error)
}

// completionService defines the minimal chat-completions surface, so tests can
// inject a mock in place of the OpenAI SDK.
type completionService interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Option defines a configuration option for generation clients.
type Option func(*options)

type options struct {
	apiKey              string
	model               string
	temperature         float64
	temperatureSet      bool
	maxCompletionTokens int64
}

// WithAPIKey sets the provider API key, overriding the environment.
func WithAPIKey(key string) Option {
	return func(o *options) { o.apiKey = key }
}

// WithModel sets the model identifier.
func WithModel(model string) Option {
	return func(o *options) { o.model = model }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(o *options) {
		o.temperature = t
		o.temperatureSet = true
	}
}

// WithMaxCompletionTokens caps the completion length.
func WithMaxCompletionTokens(n int64) Option {
	return func(o *options) { o.maxCompletionTokens = n }
}

// Client wraps the OpenAI chat-completions API in JSON output mode.
// A single Client is constructed at process start and shared across requests.
type Client struct {
	chat                completionService
	model               string
	temperature         float64
	temperatureSet      bool
	maxCompletionTokens int64
}

// NewClient initializes an OpenAI-backed client. The API key comes from
// options or the OPENAI_API_KEY environment variable.
func NewClient(opts ...Option) (*Client, error) {
	var cfg options
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.apiKey == "" {
		cfg.apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.model == "" {
		cfg.model = DefaultModel
	}
	cli := openai.NewClient(option.WithAPIKey(cfg.apiKey))
	slog.Debug("genai.NewClient: OpenAI client configured", "model", cfg.model)
	return &Client{
		chat:                &cli.Chat.Completions,
		model:               cfg.model,
		temperature:         cfg.temperature,
		temperatureSet:      cfg.temperatureSet,
		maxCompletionTokens: cfg.maxCompletionTokens,
	}, nil
}

// Generate sends a single-turn prompt constrained to JSON-object output and
// returns the raw completion text. The payload is not interpreted here.
func (c *Client) Generate(ctx context.Context, task, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}
	if c.temperatureSet {
		params.Temperature = openai.Float(c.temperature)
	}
	if c.maxCompletionTokens > 0 {
		params.MaxCompletionTokens = openai.Int(c.maxCompletionTokens)
	}

	slog.Debug("genai.Client.Generate: issuing completion", "task", task, "model", c.model, "prompt_len", len(prompt))
	resp, err := c.chat.New(ctx, params)
	if err != nil {
		slog.Error("genai.Client.Generate: completion failed", "task", task, "error", err)
		return "", &GenerationError{Task: task, Err: err}
	}
	if len(resp.Choices) == 0 {
		slog.Error("genai.Client.Generate: completion returned no choices", "task", task)
		return "", &GenerationError{Task: task, Err: ErrNoChoicesReturned}
	}
	text := resp.Choices[0].Message.Content
	if text == "" {
		slog.Error("genai.Client.Generate: completion returned empty content", "task", task)
		return "", &GenerationError{Task: task, Err: ErrEmptyCompletion}
	}
	slog.Debug("genai.Client.Generate: completion received", "task", task, "response_len", len(text))
	return text, nil
}
