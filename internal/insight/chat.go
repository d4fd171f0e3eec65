package insight

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/onlyfits/insights/internal/genai"
	"github.com/onlyfits/insights/internal/models"
	"github.com/onlyfits/insights/internal/prompt"
	"github.com/onlyfits/insights/internal/schema"
)

// maxRecordedQueryLength bounds the query text stored in history records.
const maxRecordedQueryLength = 200

// ChatService answers member questions over their own activity data.
type ChatService struct {
	gen genai.Generator
	cfg Opts
}

// NewChatService creates a chat service around a shared generation client.
func NewChatService(gen genai.Generator, opts ...Option) *ChatService {
	return &ChatService{gen: gen, cfg: buildOpts(opts)}
}

// Chat builds the member context plus the free-text query, runs one bounded
// generation call and validates the answer. A refusal-shaped response (empty
// suggested_actions) is a normal successful result; the refusal policy lives
// entirely in the prompt.
func (s *ChatService) Chat(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error) {
	pctx := prompt.BuildContext(req.Context.UserProfile, req.Context.ActivityData, req.Context.MembershipInfo)
	slog.Debug("ChatService.Chat: starting chat", "user_id", req.Context.UserProfile.UserID, "query_len", len(req.Query))

	raw, err := generate(ctx, s.gen, s.cfg.Timeout, TaskChat, prompt.Chat(pctx, req.Query))
	if err != nil {
		slog.Error("ChatService.Chat: generation failed", "user_id", req.Context.UserProfile.UserID, "error", err)
		return nil, err
	}
	resp, err := schema.ParseChat(raw)
	if err != nil {
		slog.Error("ChatService.Chat: response validation failed", "user_id", req.Context.UserProfile.UserID, "error", err)
		return nil, err
	}
	slog.Info("ChatService.Chat: chat complete", "user_id", req.Context.UserProfile.UserID, "actions", len(resp.SuggestedActions))

	record(s.cfg.Store, models.InsightRecord{
		UserID:  req.Context.UserProfile.UserID,
		Kind:    models.InsightKindChat,
		Summary: truncate(req.Query, maxRecordedQueryLength),
		Time:    time.Now().Unix(),
	})
	return resp, nil
}

// truncate trims s to at most max bytes without splitting a UTF-8 rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
