package prompt

import (
	"strings"
	"testing"

	"github.com/onlyfits/insights/internal/models"
	"github.com/onlyfits/insights/internal/scoring"
)

func testContext() Context {
	return BuildContext(
		&models.UserProfile{UserID: "u-1", Age: 32, Gender: "female", MembershipType: "premium"},
		&models.ActivityData{
			Last30DaysCheckins:      []string{"2024-01-02", "2024-01-05"},
			AverageDurationMinutes:  45,
			TotalSessionsLast30Days: 10,
		},
		&models.MembershipInfo{DaysUntilRenewal: 12, RenewalHistory: []string{"2023-01-01"}},
	)
}

func TestBuildContext(t *testing.T) {
	ctx := testContext()
	if ctx.Age != 32 || ctx.SessionsCount != 10 || ctx.AvgDuration != 45 {
		t.Errorf("context fields not carried over: %+v", ctx)
	}
	if ctx.Membership == nil || ctx.Membership.DaysUntilRenewal != 12 {
		t.Errorf("membership not carried over: %+v", ctx.Membership)
	}
}

func TestBuildContextDoesNotMutateInput(t *testing.T) {
	activity := &models.ActivityData{
		Last30DaysCheckins:      []string{"2024-01-02"},
		TotalSessionsLast30Days: 3,
	}
	profile := &models.UserProfile{UserID: "u-1", Age: 40, Gender: "male"}
	_ = BuildContext(profile, activity, nil)
	if profile.Age != 40 || activity.TotalSessionsLast30Days != 3 || len(activity.Last30DaysCheckins) != 1 {
		t.Error("BuildContext mutated its input")
	}
}

func TestAttendancePromptContainsFacts(t *testing.T) {
	p := Attendance(testContext(), 10, 80, scoring.LevelHigh)
	for _, want := range []string{"Age: 32", "Sessions (30 days): 10", "80/100 (High)", "2024-01-02, 2024-01-05", "12 days until renewal", "score_explanation"} {
		if !strings.Contains(p, want) {
			t.Errorf("attendance prompt missing %q", want)
		}
	}
	if !strings.Contains(p, "JSON only") {
		t.Error("attendance prompt does not demand JSON-only output")
	}
}

func TestOptionalFieldsRenderAsPlaceholder(t *testing.T) {
	ctx := BuildContext(
		&models.UserProfile{UserID: "u-2", Age: 28, Gender: "male"},
		&models.ActivityData{TotalSessionsLast30Days: 0},
		nil,
	)
	p := Attendance(ctx, 0, 0, scoring.LevelLow)
	if !strings.Contains(p, "Checkins: N/A") {
		t.Error("empty checkins should render as N/A")
	}
	if !strings.Contains(p, "Membership: N/A") {
		t.Error("absent membership should render as N/A")
	}
	if !strings.Contains(p, "Usual time: N/A") {
		t.Error("absent most-common time should render as N/A")
	}
}

func TestBurnoutPromptContainsFacts(t *testing.T) {
	p := Burnout(testContext())
	for _, want := range []string{"Sessions (30 days): 10", "Avg Duration: 45.0 min", "risk_score", "key_metrics", "rest_days_last_30"} {
		if !strings.Contains(p, want) {
			t.Errorf("burnout prompt missing %q", want)
		}
	}
}

func TestChatPromptContainsQueryAndRefusalPolicy(t *testing.T) {
	p := Chat(testContext(), "How consistent was I this month?")
	if !strings.Contains(p, "How consistent was I this month?") {
		t.Error("chat prompt missing the user query")
	}
	if !strings.Contains(p, "empty suggested_actions") {
		t.Error("chat prompt missing the refusal policy")
	}
	if !strings.Contains(p, "suggested_actions") || !strings.Contains(p, `"answer"`) {
		t.Error("chat prompt missing the output shape")
	}
}
