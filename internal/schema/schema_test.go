package schema

import (
	"encoding/json"
	"errors"
	"testing"
)

const validAttendance = `{
	"score_explanation": "Your score reflects steady attendance.",
	"pattern_insight": "You train on weekdays.",
	"renewal_behavior_insight": "You renew on time.",
	"positive_nudge": "Ten sessions this month is great.",
	"recommendation": "Block Tuesday 6pm."
}`

const validBurnout = `{
	"risk_score": 42,
	"risk_level": "Moderate",
	"warning_signs": ["4 consecutive training days"],
	"recovery_suggestion": "Plan two rest days this week.",
	"key_metrics": {
		"avg_sessions_per_week": 2.5,
		"consecutive_training_days_max": 4,
		"rest_days_last_30": 18
	}
}`

func TestParseAttendance_Valid(t *testing.T) {
	out, err := ParseAttendance(validAttendance)
	if err != nil {
		t.Fatalf("expected valid attendance, got %v", err)
	}
	if out.Recommendation != "Block Tuesday 6pm." {
		t.Errorf("unexpected recommendation: %q", out.Recommendation)
	}
	// score/level are local concerns and must stay zero-valued after parse
	if out.Score != 0 || out.ConsistencyLevel != "" {
		t.Errorf("parser must not fill local score fields, got %+v", out)
	}
}

func TestParseAttendance_MissingField(t *testing.T) {
	_, err := ParseAttendance(`{"score_explanation": "x", "pattern_insight": "y", "renewal_behavior_insight": "z", "positive_nudge": "n"}`)
	var schemaErr *SchemaValidationError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *SchemaValidationError, got %v", err)
	}
	if schemaErr.Field != "recommendation" {
		t.Errorf("expected recommendation named, got %q", schemaErr.Field)
	}
}

func TestParseAttendance_EmptyField(t *testing.T) {
	_, err := ParseAttendance(`{"score_explanation": " ", "pattern_insight": "y", "renewal_behavior_insight": "z", "positive_nudge": "n", "recommendation": "r"}`)
	var schemaErr *SchemaValidationError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *SchemaValidationError, got %v", err)
	}
	if schemaErr.Field != "score_explanation" {
		t.Errorf("expected score_explanation named, got %q", schemaErr.Field)
	}
}

func TestParseBurnout_Valid(t *testing.T) {
	out, err := ParseBurnout(validBurnout)
	if err != nil {
		t.Fatalf("expected valid burnout, got %v", err)
	}
	if out.RiskScore != 42 || out.RiskLevel != "Moderate" {
		t.Errorf("unexpected result: %+v", out)
	}
	if out.KeyMetrics.AvgSessionsPerWeek != 2.5 || out.KeyMetrics.RestDaysLast30 != 18 {
		t.Errorf("nested key_metrics not parsed: %+v", out.KeyMetrics)
	}
}

func TestParseBurnout_MalformedJSON(t *testing.T) {
	_, err := ParseBurnout("I am not JSON at all")
	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected *MalformedResponseError, got %v", err)
	}
	if malformed.Raw != "I am not JSON at all" {
		t.Errorf("raw payload not carried for diagnostics: %q", malformed.Raw)
	}
}

func TestParseBurnout_MissingRiskScore(t *testing.T) {
	_, err := ParseBurnout(`{
		"risk_level": "Low",
		"warning_signs": [],
		"recovery_suggestion": "rest",
		"key_metrics": {"avg_sessions_per_week": 1, "consecutive_training_days_max": 1, "rest_days_last_30": 25}
	}`)
	var schemaErr *SchemaValidationError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *SchemaValidationError, got %v", err)
	}
	if schemaErr.Field != "risk_score" {
		t.Errorf("expected risk_score named, got %q", schemaErr.Field)
	}
}

func TestParseBurnout_StringScoreNotCoerced(t *testing.T) {
	_, err := ParseBurnout(`{
		"risk_score": "42",
		"risk_level": "Low",
		"warning_signs": [],
		"recovery_suggestion": "rest",
		"key_metrics": {"avg_sessions_per_week": 1, "consecutive_training_days_max": 1, "rest_days_last_30": 25}
	}`)
	var schemaErr *SchemaValidationError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *SchemaValidationError for numeric string, got %v", err)
	}
	if schemaErr.Field != "risk_score" {
		t.Errorf("expected risk_score named, got %q", schemaErr.Field)
	}
}

func TestParseBurnout_MissingNestedMetric(t *testing.T) {
	_, err := ParseBurnout(`{
		"risk_score": 10,
		"risk_level": "Low",
		"warning_signs": [],
		"recovery_suggestion": "rest",
		"key_metrics": {"avg_sessions_per_week": 1, "consecutive_training_days_max": 1}
	}`)
	var schemaErr *SchemaValidationError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *SchemaValidationError, got %v", err)
	}
	if schemaErr.Field != "key_metrics.rest_days_last_30" {
		t.Errorf("expected nested field path, got %q", schemaErr.Field)
	}
}

func TestParseBurnout_ClampsOutOfRangeScore(t *testing.T) {
	out, err := ParseBurnout(`{
		"risk_score": 140,
		"risk_level": "High",
		"warning_signs": ["overload"],
		"recovery_suggestion": "rest now",
		"key_metrics": {"avg_sessions_per_week": 7, "consecutive_training_days_max": 14, "rest_days_last_30": 0}
	}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.RiskScore != 100 {
		t.Errorf("expected risk_score clamped to 100, got %d", out.RiskScore)
	}
}

func TestParseChat_Valid(t *testing.T) {
	out, err := ParseChat(`{"answer": "You trained 10 times.", "suggested_actions": ["book a class"]}`)
	if err != nil {
		t.Fatalf("expected valid chat, got %v", err)
	}
	if out.Answer == "" || len(out.SuggestedActions) != 1 {
		t.Errorf("unexpected result: %+v", out)
	}
}

func TestParseChat_RefusalShape(t *testing.T) {
	out, err := ParseChat(`{"answer": "I can only help with your fitness data.", "suggested_actions": []}`)
	if err != nil {
		t.Fatalf("refusal shape must validate, got %v", err)
	}
	if len(out.SuggestedActions) != 0 {
		t.Errorf("expected empty suggested actions, got %v", out.SuggestedActions)
	}

	out, err = ParseChat(`{"answer": "I can only help with your fitness data."}`)
	if err != nil {
		t.Fatalf("absent suggested_actions must validate, got %v", err)
	}
	if out.SuggestedActions != nil {
		t.Errorf("expected nil suggested actions, got %v", out.SuggestedActions)
	}
}

func TestParseChat_MissingAnswer(t *testing.T) {
	_, err := ParseChat(`{"suggested_actions": ["x"]}`)
	var schemaErr *SchemaValidationError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *SchemaValidationError, got %v", err)
	}
	if schemaErr.Field != "answer" {
		t.Errorf("expected answer named, got %q", schemaErr.Field)
	}
}

func TestParseRoundTrip(t *testing.T) {
	out, err := ParseBurnout(validBurnout)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var original, reserialized map[string]interface{}
	if err := json.Unmarshal([]byte(validBurnout), &original); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, &reserialized); err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{"risk_score", "risk_level", "recovery_suggestion"} {
		if original[field] != reserialized[field] {
			t.Errorf("field %s changed across round trip: %v != %v", field, original[field], reserialized[field])
		}
	}
}

func TestParse_NonObjectJSON(t *testing.T) {
	_, err := ParseChat(`["not", "an", "object"]`)
	var schemaErr *SchemaValidationError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *SchemaValidationError for non-object JSON, got %v", err)
	}
}
