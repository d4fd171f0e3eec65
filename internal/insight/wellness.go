package insight

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/onlyfits/insights/internal/genai"
	"github.com/onlyfits/insights/internal/models"
	"github.com/onlyfits/insights/internal/prompt"
	"github.com/onlyfits/insights/internal/schema"
	"github.com/onlyfits/insights/internal/scoring"
)

// WellnessService produces combined attendance and burnout analyses.
type WellnessService struct {
	gen genai.Generator
	cfg Opts
}

// NewWellnessService creates a wellness service around a shared generation
// client.
func NewWellnessService(gen genai.Generator, opts ...Option) *WellnessService {
	return &WellnessService{gen: gen, cfg: buildOpts(opts)}
}

// Analyze runs the full wellness flow: local consistency scoring, then the
// attendance and burnout sub-analyses concurrently. The two sub-calls share a
// group context, so the first failure cancels the sibling and fails the whole
// request; no partial report is ever returned.
func (s *WellnessService) Analyze(ctx context.Context, req *models.WellnessAnalysisRequest) (*models.WellnessAnalysisResponse, error) {
	pctx := prompt.BuildContext(req.UserProfile, req.ActivityData, req.MembershipInfo)
	sessions := req.ActivityData.TotalSessionsLast30Days
	score, level := scoring.Consistency(sessions)
	slog.Debug("WellnessService.Analyze: starting analysis",
		"user_id", req.UserProfile.UserID, "sessions", sessions, "score", score, "level", level)

	var attendance *models.AttendanceAnalysis
	var burnout *models.BurnoutAnalysis

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := s.generateAttendance(gctx, pctx, sessions, score, level)
		if err != nil {
			return err
		}
		attendance = a
		return nil
	})
	g.Go(func() error {
		b, err := s.generateBurnout(gctx, pctx)
		if err != nil {
			return err
		}
		burnout = b
		return nil
	})
	if err := g.Wait(); err != nil {
		slog.Error("WellnessService.Analyze: analysis failed", "user_id", req.UserProfile.UserID, "error", err)
		return nil, err
	}

	resp := &models.WellnessAnalysisResponse{
		AttendanceAnalysis: attendance,
		BurnoutAnalysis:    burnout,
	}
	slog.Info("WellnessService.Analyze: analysis complete",
		"user_id", req.UserProfile.UserID, "score", attendance.Score, "risk_score", burnout.RiskScore)

	record(s.cfg.Store, models.InsightRecord{
		UserID:    req.UserProfile.UserID,
		Kind:      models.InsightKindWellness,
		Summary:   fmt.Sprintf("consistency %s (%d/100), burnout %s (%d/100)", attendance.ConsistencyLevel, attendance.Score, burnout.RiskLevel, burnout.RiskScore),
		Score:     attendance.Score,
		RiskScore: burnout.RiskScore,
		Time:      time.Now().Unix(),
	})
	s.sendNudge(ctx, req, attendance)

	return resp, nil
}

// generateAttendance asks the model to explain the locally computed score and
// merges its text fields with the authoritative local values.
func (s *WellnessService) generateAttendance(ctx context.Context, pctx prompt.Context, sessions, score int, level scoring.Level) (*models.AttendanceAnalysis, error) {
	raw, err := generate(ctx, s.gen, s.cfg.Timeout, TaskAttendance, prompt.Attendance(pctx, sessions, score, level))
	if err != nil {
		return nil, err
	}
	analysis, err := schema.ParseAttendance(raw)
	if err != nil {
		return nil, err
	}
	// The model only explains; score and level come from the local heuristic.
	analysis.Score = score
	analysis.ConsistencyLevel = string(level)
	return analysis, nil
}

// generateBurnout asks the model for a complete burnout assessment.
func (s *WellnessService) generateBurnout(ctx context.Context, pctx prompt.Context) (*models.BurnoutAnalysis, error) {
	raw, err := generate(ctx, s.gen, s.cfg.Timeout, TaskBurnout, prompt.Burnout(pctx))
	if err != nil {
		return nil, err
	}
	return schema.ParseBurnout(raw)
}

// sendNudge delivers the positive nudge by SMS when requested and configured.
// Failures are logged, never surfaced: the analysis already succeeded.
func (s *WellnessService) sendNudge(ctx context.Context, req *models.WellnessAnalysisRequest, attendance *models.AttendanceAnalysis) {
	if s.cfg.Nudger == nil || req.NotifyPhone == "" {
		return
	}
	if err := s.cfg.Nudger.SendNudge(ctx, req.NotifyPhone, attendance.PositiveNudge); err != nil {
		slog.Error("WellnessService.sendNudge: nudge delivery failed", "user_id", req.UserProfile.UserID, "error", err)
		return
	}
	slog.Info("WellnessService.sendNudge: nudge delivered", "user_id", req.UserProfile.UserID)
}
