package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/onlyfits/insights/internal/genai"
	"github.com/onlyfits/insights/internal/models"
	"github.com/onlyfits/insights/internal/schema"
)

func (s *Server) analyzeWellnessHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.analyzeWellnessHandler: processing wellness analysis request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server.analyzeWellnessHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req models.WellnessAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.analyzeWellnessHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	if err := req.Validate(); err != nil {
		slog.Warn("Server.analyzeWellnessHandler: validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	resp, err := s.wellness.Analyze(r.Context(), &req)
	if err != nil {
		s.writeGenerationError(w, "analyzeWellnessHandler", "Failed to analyze wellness", err)
		return
	}

	slog.Info("Server.analyzeWellnessHandler: analysis completed", "user_id", req.UserProfile.UserID,
		"consistency_score", resp.AttendanceAnalysis.Score, "risk_score", resp.BurnoutAnalysis.RiskScore)
	writeJSONResponse(w, http.StatusOK, resp)
}

func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.chatHandler: processing chat request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server.chatHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.chatHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	if err := req.Validate(); err != nil {
		slog.Warn("Server.chatHandler: validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	resp, err := s.chat.Chat(r.Context(), &req)
	if err != nil {
		s.writeGenerationError(w, "chatHandler", "Failed to answer chat query", err)
		return
	}

	slog.Info("Server.chatHandler: chat answered", "user_id", req.Context.UserProfile.UserID)
	writeJSONResponse(w, http.StatusOK, resp)
}

func (s *Server) insightsHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.insightsHandler: processing insights request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		slog.Warn("Server.insightsHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		slog.Warn("Server.insightsHandler: missing user_id parameter")
		writeJSONResponse(w, http.StatusBadRequest, models.Error("user_id query parameter is required"))
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			slog.Warn("Server.insightsHandler: invalid limit parameter", "limit", raw)
			writeJSONResponse(w, http.StatusBadRequest, models.Error("limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	records, err := s.st.ListInsights(userID, limit)
	if err != nil {
		slog.Error("Server.insightsHandler: failed to fetch insights", "error", err, "user_id", userID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch insights"))
		return
	}
	slog.Debug("Server.insightsHandler: insights fetched", "user_id", userID, "count", len(records))
	writeJSONResponse(w, http.StatusOK, models.Success(records))
}

// healthHandler provides a health check endpoint for monitoring and load balancing
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	healthData := map[string]interface{}{
		"status":    "ok",
		"version":   s.version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	writeJSONResponse(w, http.StatusOK, healthData)
}

// writeGenerationError maps orchestration failures onto HTTP responses.
// Client-facing bodies stay generic while the log carries the error detail.
func (s *Server) writeGenerationError(w http.ResponseWriter, handler, message string, err error) {
	var genErr *genai.GenerationError
	var malformed *schema.MalformedResponseError
	var invalid *schema.SchemaValidationError
	switch {
	case errors.As(err, &genErr):
		slog.Error("Server."+handler+": generation failed", "task", genErr.Task, "timeout", genErr.Timeout(), "error", err)
	case errors.As(err, &malformed):
		slog.Error("Server."+handler+": model returned malformed JSON", "error", err)
	case errors.As(err, &invalid):
		slog.Error("Server."+handler+": model response failed validation", "field", invalid.Field, "error", err)
	default:
		slog.Error("Server."+handler+": request failed", "error", err)
	}
	writeJSONResponse(w, http.StatusInternalServerError, models.Error(message))
}
