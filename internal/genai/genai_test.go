package genai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// The SDK's completion service has pointer-receiver methods, so NewClient
// must store its address to satisfy completionService.
var _ completionService = (*openai.ChatCompletionService)(nil)

// mockChatService implements completionService for testing.
type mockChatService struct {
	resp       openai.ChatCompletion
	err        error
	lastParams openai.ChatCompletionNewParams
}

func (m *mockChatService) New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	m.lastParams = params
	if m.err != nil {
		return nil, m.err
	}
	return &m.resp, nil
}

func completionWith(content string) openai.ChatCompletion {
	return openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}
}

func TestGenerate_Success(t *testing.T) {
	mock := &mockChatService{resp: completionWith(`{"answer": "hello"}`)}
	client := &Client{chat: mock, model: "test-model"}
	out, err := client.Generate(context.Background(), "chat", "prompt text")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out != `{"answer": "hello"}` {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestGenerate_RequestsJSONMode(t *testing.T) {
	mock := &mockChatService{resp: completionWith(`{}`)}
	client := &Client{chat: mock, model: "test-model"}
	if _, err := client.Generate(context.Background(), "attendance", "p"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.lastParams.ResponseFormat.OfJSONObject == nil {
		t.Error("expected JSON-object response format to be requested")
	}
	if mock.lastParams.Model != "test-model" {
		t.Errorf("expected configured model, got %v", mock.lastParams.Model)
	}
}

func TestGenerate_CapsCompletionTokens(t *testing.T) {
	mock := &mockChatService{resp: completionWith(`{}`)}
	client := &Client{chat: mock, model: "test-model", maxCompletionTokens: 512}
	if _, err := client.Generate(context.Background(), "chat", "p"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mock.lastParams.MaxCompletionTokens.Valid() || mock.lastParams.MaxCompletionTokens.Value != 512 {
		t.Errorf("expected completion token cap in request, got %+v", mock.lastParams.MaxCompletionTokens)
	}
}

func TestGenerate_ServiceError(t *testing.T) {
	mock := &mockChatService{err: errors.New("rate limited")}
	client := &Client{chat: mock, model: "test-model"}
	_, err := client.Generate(context.Background(), "burnout", "p")
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("expected rate limited error, got %v", err)
	}
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected *GenerationError, got %T", err)
	}
	if genErr.Task != "burnout" {
		t.Errorf("expected task tag, got %q", genErr.Task)
	}
	if genErr.Timeout() {
		t.Error("non-timeout error reported as timeout")
	}
}

func TestGenerate_TimeoutSubtype(t *testing.T) {
	mock := &mockChatService{err: context.DeadlineExceeded}
	client := &Client{chat: mock, model: "test-model"}
	_, err := client.Generate(context.Background(), "chat", "p")
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected *GenerationError, got %v", err)
	}
	if !genErr.Timeout() {
		t.Error("deadline expiry not reported as timeout")
	}
}

func TestGenerate_NoChoices(t *testing.T) {
	mock := &mockChatService{resp: openai.ChatCompletion{}}
	client := &Client{chat: mock, model: "test-model"}
	_, err := client.Generate(context.Background(), "chat", "p")
	if !errors.Is(err, ErrNoChoicesReturned) {
		t.Errorf("expected ErrNoChoicesReturned, got %v", err)
	}
}

func TestGenerate_EmptyContent(t *testing.T) {
	mock := &mockChatService{resp: completionWith("")}
	client := &Client{chat: mock, model: "test-model"}
	_, err := client.Generate(context.Background(), "chat", "p")
	if !errors.Is(err, ErrEmptyCompletion) {
		t.Errorf("expected ErrEmptyCompletion, got %v", err)
	}
}

func TestNewClient_NoKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewClient()
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestNewClient_WithKey(t *testing.T) {
	cli, err := NewClient(WithAPIKey("test-key"), WithModel("gpt-4o-mini"))
	if err != nil {
		t.Fatalf("expected no error with API key, got %v", err)
	}
	if cli == nil || cli.model != "gpt-4o-mini" {
		t.Errorf("unexpected client: %+v", cli)
	}
	if cli.chat == nil {
		t.Error("expected completion service to be wired")
	}
}
