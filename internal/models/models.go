// Package models defines the core data structures for the insights service.
//
// It includes the wellness analysis and chat request/response types shared
// across modules, plus request-level validation.
package models

import "errors"

// Validation constants for input validation
const (
	// MaxChatQueryLength defines the maximum allowed length for a chat query
	MaxChatQueryLength = 2000
	// MaxCheckinsCount defines the maximum number of check-in entries accepted per request
	MaxCheckinsCount = 200
)

// Error variables for better error handling and testability
var (
	ErrEmptyUserID        = errors.New("user_id cannot be empty")
	ErrInvalidAge         = errors.New("age must be positive")
	ErrNegativeSessions   = errors.New("total_sessions_last_30_days cannot be negative")
	ErrNegativeDuration   = errors.New("average_duration_minutes cannot be negative")
	ErrTooManyCheckins    = errors.New("too many check-in entries")
	ErrEmptyQuery         = errors.New("query cannot be empty")
	ErrQueryTooLong       = errors.New("query exceeds maximum length")
	ErrMissingProfile     = errors.New("user_profile is required")
	ErrMissingActivity    = errors.New("activity_data is required")
	ErrMissingChatContext = errors.New("context is required")
)

// UserProfile holds identity and demographic attributes for a member.
// Immutable for the duration of a request.
type UserProfile struct {
	UserID         string `json:"user_id"`
	Age            int    `json:"age"`
	Gender         string `json:"gender"`
	MembershipType string `json:"membership_type"`
	JoinDate       string `json:"join_date,omitempty"`
}

// Validate checks profile fields supplied by the caller.
func (p *UserProfile) Validate() error {
	if p.UserID == "" {
		return ErrEmptyUserID
	}
	if p.Age <= 0 {
		return ErrInvalidAge
	}
	return nil
}

// ActivityData holds the last-30-day activity snapshot for a member.
type ActivityData struct {
	Last30DaysCheckins      []string `json:"last_30_days_checkins"`
	AverageDurationMinutes  float64  `json:"average_duration_minutes"`
	TotalSessionsLast30Days int      `json:"total_sessions_last_30_days"`
	MostCommonTime          string   `json:"most_common_time,omitempty"`
}

// Validate checks activity fields supplied by the caller.
func (a *ActivityData) Validate() error {
	if a.TotalSessionsLast30Days < 0 {
		return ErrNegativeSessions
	}
	if a.AverageDurationMinutes < 0 {
		return ErrNegativeDuration
	}
	if len(a.Last30DaysCheckins) > MaxCheckinsCount {
		return ErrTooManyCheckins
	}
	return nil
}

// MembershipInfo holds renewal details. Optional on all requests.
type MembershipInfo struct {
	DaysUntilRenewal int      `json:"days_until_renewal"`
	RenewalHistory   []string `json:"renewal_history"`
}

// WellnessAnalysisRequest is the body of POST /api/v1/analyze/wellness.
type WellnessAnalysisRequest struct {
	UserProfile    *UserProfile    `json:"user_profile"`
	ActivityData   *ActivityData   `json:"activity_data"`
	MembershipInfo *MembershipInfo `json:"membership_info,omitempty"`
	// NotifyPhone, when set, requests SMS delivery of the positive nudge.
	NotifyPhone string `json:"notify_phone,omitempty"`
}

// Validate performs request-level validation on a wellness analysis request.
func (r *WellnessAnalysisRequest) Validate() error {
	if r.UserProfile == nil {
		return ErrMissingProfile
	}
	if r.ActivityData == nil {
		return ErrMissingActivity
	}
	if err := r.UserProfile.Validate(); err != nil {
		return err
	}
	return r.ActivityData.Validate()
}

// AttendanceAnalysis combines the locally computed consistency score with the
// model-produced explanation fields. Score and ConsistencyLevel are always
// authoritative local values, never model output.
type AttendanceAnalysis struct {
	Score                  int    `json:"score"`
	ConsistencyLevel       string `json:"consistency_level"`
	ScoreExplanation       string `json:"score_explanation"`
	PatternInsight         string `json:"pattern_insight"`
	RenewalBehaviorInsight string `json:"renewal_behavior_insight"`
	PositiveNudge          string `json:"positive_nudge"`
	Recommendation         string `json:"recommendation"`
}

// BurnoutKeyMetrics holds the model-estimated training load figures.
type BurnoutKeyMetrics struct {
	AvgSessionsPerWeek         float64 `json:"avg_sessions_per_week"`
	ConsecutiveTrainingDaysMax int     `json:"consecutive_training_days_max"`
	RestDaysLast30             int     `json:"rest_days_last_30"`
}

// BurnoutAnalysis is produced entirely by the model and strictly validated.
type BurnoutAnalysis struct {
	RiskScore          int               `json:"risk_score"`
	RiskLevel          string            `json:"risk_level"`
	WarningSigns       []string          `json:"warning_signs"`
	RecoverySuggestion string            `json:"recovery_suggestion"`
	KeyMetrics         BurnoutKeyMetrics `json:"key_metrics"`
}

// WellnessAnalysisResponse composes both sub-analyses. Both are always present;
// a failure in either sub-analysis fails the whole request.
type WellnessAnalysisResponse struct {
	AttendanceAnalysis *AttendanceAnalysis `json:"attendance_analysis"`
	BurnoutAnalysis    *BurnoutAnalysis    `json:"burnout_analysis"`
}

// ChatContext scopes a chat query to a member's data.
type ChatContext struct {
	UserProfile    *UserProfile    `json:"user_profile"`
	ActivityData   *ActivityData   `json:"activity_data"`
	MembershipInfo *MembershipInfo `json:"membership_info,omitempty"`
}

// ChatRequest is the body of POST /api/v1/chat/.
type ChatRequest struct {
	Query   string       `json:"query"`
	Context *ChatContext `json:"context"`
}

// Validate performs request-level validation on a chat request.
func (r *ChatRequest) Validate() error {
	if r.Query == "" {
		return ErrEmptyQuery
	}
	if len(r.Query) > MaxChatQueryLength {
		return ErrQueryTooLong
	}
	if r.Context == nil {
		return ErrMissingChatContext
	}
	if r.Context.UserProfile == nil {
		return ErrMissingProfile
	}
	if r.Context.ActivityData == nil {
		return ErrMissingActivity
	}
	if err := r.Context.UserProfile.Validate(); err != nil {
		return err
	}
	return r.Context.ActivityData.Validate()
}

// ChatResponse is a validated chat answer. SuggestedActions may be empty or
// absent when the model refuses an off-domain query; that is a normal result.
type ChatResponse struct {
	Answer           string   `json:"answer"`
	SuggestedActions []string `json:"suggested_actions,omitempty"`
}

// InsightKind identifies the type of a recorded insight.
type InsightKind string

const (
	// InsightKindWellness marks a recorded wellness analysis.
	InsightKindWellness InsightKind = "wellness"
	// InsightKindChat marks a recorded chat exchange.
	InsightKindChat InsightKind = "chat"
)

// InsightRecord is an audit entry for a completed analysis or chat exchange.
type InsightRecord struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Kind      InsightKind `json:"kind"`
	Summary   string      `json:"summary"`
	Score     int         `json:"score,omitempty"`
	RiskScore int         `json:"risk_score,omitempty"`
	Time      int64       `json:"time"`
}
