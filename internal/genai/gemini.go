package genai

import (
	"context"
	"errors"
	"log/slog"
	"os"

	gemini "google.golang.org/genai"
)

// DefaultGeminiModel is the Gemini model used when none is configured.
const DefaultGeminiModel = "gemini-1.5-flash"

// ErrMissingGeminiKey indicates no Gemini API key could be found.
var ErrMissingGeminiKey = errors.New("API key not provided and GOOGLE_API_KEY not set")

// geminiModels defines the minimal content-generation surface of the Gemini
// SDK, so tests can inject a mock.
type geminiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*gemini.Content, config *gemini.GenerateContentConfig) (*gemini.GenerateContentResponse, error)
}

// GeminiClient implements Generator against the Google Gemini API with
// application/json response MIME type.
type GeminiClient struct {
	models geminiModels
	model  string
}

// NewGeminiClient initializes a Gemini-backed client. The API key comes from
// options or the GOOGLE_API_KEY environment variable.
func NewGeminiClient(opts ...Option) (*GeminiClient, error) {
	var cfg options
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.apiKey == "" {
		cfg.apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if cfg.apiKey == "" {
		return nil, ErrMissingGeminiKey
	}
	if cfg.model == "" {
		cfg.model = DefaultGeminiModel
	}
	cli, err := gemini.NewClient(context.Background(), &gemini.ClientConfig{
		APIKey:  cfg.apiKey,
		Backend: gemini.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	slog.Debug("genai.NewGeminiClient: Gemini client configured", "model", cfg.model)
	return &GeminiClient{models: cli.Models, model: cfg.model}, nil
}

// Generate sends a single-turn prompt constrained to JSON output and returns
// the raw response text.
func (c *GeminiClient) Generate(ctx context.Context, task, prompt string) (string, error) {
	config := &gemini.GenerateContentConfig{ResponseMIMEType: "application/json"}

	slog.Debug("genai.GeminiClient.Generate: issuing generation", "task", task, "model", c.model, "prompt_len", len(prompt))
	resp, err := c.models.GenerateContent(ctx, c.model, gemini.Text(prompt), config)
	if err != nil {
		slog.Error("genai.GeminiClient.Generate: generation failed", "task", task, "error", err)
		return "", &GenerationError{Task: task, Err: err}
	}
	text := resp.Text()
	if text == "" {
		slog.Error("genai.GeminiClient.Generate: generation returned empty text", "task", task)
		return "", &GenerationError{Task: task, Err: ErrEmptyCompletion}
	}
	slog.Debug("genai.GeminiClient.Generate: generation received", "task", task, "response_len", len(text))
	return text, nil
}
