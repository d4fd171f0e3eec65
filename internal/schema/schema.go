// Package schema parses and validates raw model output against the declared
// response shapes. Every parsed field is treated as untrusted external input:
// missing or mistyped required fields are hard failures, never silently
// defaulted, and numeric strings are not coerced to numbers.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/onlyfits/insights/internal/models"
)

// MalformedResponseError indicates the provider returned text that is not
// valid JSON. Raw carries the offending payload for diagnostics.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("response is not valid JSON: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// SchemaValidationError indicates valid JSON that is missing a required field
// or carries a wrong-typed value. Field names the offending field path.
type SchemaValidationError struct {
	Field  string
	Reason string
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

// unmarshalObject decodes raw into v, mapping syntax errors to
// MalformedResponseError and shape errors to SchemaValidationError.
func unmarshalObject(raw string, v interface{}) error {
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			field := typeErr.Field
			if field == "" {
				field = "(root)"
			}
			return &SchemaValidationError{Field: field, Reason: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value)}
		}
		return &MalformedResponseError{Raw: raw, Err: err}
	}
	return nil
}

// requireString enforces presence and non-emptiness of a model text field.
func requireString(field string, v *string) (string, error) {
	if v == nil {
		return "", &SchemaValidationError{Field: field, Reason: "missing required field"}
	}
	if strings.TrimSpace(*v) == "" {
		return "", &SchemaValidationError{Field: field, Reason: "must be a non-empty string"}
	}
	return *v, nil
}

// clampScore bounds a model-produced score into [0, 100].
func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// ParseAttendance validates the attendance-insight text fields. Score and
// consistency level are intentionally absent here: the orchestration layer
// fills them from the local heuristic and never trusts them from the model.
func ParseAttendance(raw string) (*models.AttendanceAnalysis, error) {
	var payload struct {
		ScoreExplanation       *string `json:"score_explanation"`
		PatternInsight         *string `json:"pattern_insight"`
		RenewalBehaviorInsight *string `json:"renewal_behavior_insight"`
		PositiveNudge          *string `json:"positive_nudge"`
		Recommendation         *string `json:"recommendation"`
	}
	if err := unmarshalObject(raw, &payload); err != nil {
		return nil, err
	}

	var out models.AttendanceAnalysis
	var err error
	if out.ScoreExplanation, err = requireString("score_explanation", payload.ScoreExplanation); err != nil {
		return nil, err
	}
	if out.PatternInsight, err = requireString("pattern_insight", payload.PatternInsight); err != nil {
		return nil, err
	}
	if out.RenewalBehaviorInsight, err = requireString("renewal_behavior_insight", payload.RenewalBehaviorInsight); err != nil {
		return nil, err
	}
	if out.PositiveNudge, err = requireString("positive_nudge", payload.PositiveNudge); err != nil {
		return nil, err
	}
	if out.Recommendation, err = requireString("recommendation", payload.Recommendation); err != nil {
		return nil, err
	}
	return &out, nil
}

// ParseBurnout validates a complete burnout analysis produced by the model.
func ParseBurnout(raw string) (*models.BurnoutAnalysis, error) {
	var payload struct {
		RiskScore          *int      `json:"risk_score"`
		RiskLevel          *string   `json:"risk_level"`
		WarningSigns       *[]string `json:"warning_signs"`
		RecoverySuggestion *string   `json:"recovery_suggestion"`
		KeyMetrics         *struct {
			AvgSessionsPerWeek         *float64 `json:"avg_sessions_per_week"`
			ConsecutiveTrainingDaysMax *int     `json:"consecutive_training_days_max"`
			RestDaysLast30             *int     `json:"rest_days_last_30"`
		} `json:"key_metrics"`
	}
	if err := unmarshalObject(raw, &payload); err != nil {
		return nil, err
	}

	if payload.RiskScore == nil {
		return nil, &SchemaValidationError{Field: "risk_score", Reason: "missing required field"}
	}
	var out models.BurnoutAnalysis
	out.RiskScore = clampScore(*payload.RiskScore)

	var err error
	if out.RiskLevel, err = requireString("risk_level", payload.RiskLevel); err != nil {
		return nil, err
	}
	if payload.WarningSigns == nil {
		return nil, &SchemaValidationError{Field: "warning_signs", Reason: "missing required field"}
	}
	out.WarningSigns = *payload.WarningSigns
	if out.RecoverySuggestion, err = requireString("recovery_suggestion", payload.RecoverySuggestion); err != nil {
		return nil, err
	}

	if payload.KeyMetrics == nil {
		return nil, &SchemaValidationError{Field: "key_metrics", Reason: "missing required field"}
	}
	km := payload.KeyMetrics
	if km.AvgSessionsPerWeek == nil {
		return nil, &SchemaValidationError{Field: "key_metrics.avg_sessions_per_week", Reason: "missing required field"}
	}
	if km.ConsecutiveTrainingDaysMax == nil {
		return nil, &SchemaValidationError{Field: "key_metrics.consecutive_training_days_max", Reason: "missing required field"}
	}
	if km.RestDaysLast30 == nil {
		return nil, &SchemaValidationError{Field: "key_metrics.rest_days_last_30", Reason: "missing required field"}
	}
	out.KeyMetrics = models.BurnoutKeyMetrics{
		AvgSessionsPerWeek:         *km.AvgSessionsPerWeek,
		ConsecutiveTrainingDaysMax: *km.ConsecutiveTrainingDaysMax,
		RestDaysLast30:             *km.RestDaysLast30,
	}
	return &out, nil
}

// ParseChat validates a chat answer. An empty or absent suggested_actions list
// is a normal result: refusal policy lives in the prompt, and a refusal-shaped
// response validates like any other.
func ParseChat(raw string) (*models.ChatResponse, error) {
	var payload struct {
		Answer           *string  `json:"answer"`
		SuggestedActions []string `json:"suggested_actions"`
	}
	if err := unmarshalObject(raw, &payload); err != nil {
		return nil, err
	}

	var out models.ChatResponse
	var err error
	if out.Answer, err = requireString("answer", payload.Answer); err != nil {
		return nil, err
	}
	out.SuggestedActions = payload.SuggestedActions
	return &out, nil
}
