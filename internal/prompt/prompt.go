// Package prompt builds task prompts for the generation client.
//
// Prompts are pure functions over a closed per-request context; they never
// fail and never mutate their inputs. Every optional field has an explicit
// neutral rendering so templates cannot reference a missing value.
package prompt

import (
	"fmt"
	"strings"

	"github.com/onlyfits/insights/internal/models"
	"github.com/onlyfits/insights/internal/scoring"
)

// placeholder is rendered for absent optional fields.
const placeholder = "N/A"

// Context is the flattened per-request fact set given to the templates.
// It is assembled once per request and discarded after use.
type Context struct {
	Age            int
	Gender         string
	SessionsCount  int
	AvgDuration    float64
	Checkins       []string
	MostCommonTime string
	Membership     *models.MembershipInfo
}

// BuildContext flattens a profile, activity snapshot and optional membership
// into a Context. Total over well-typed input; the request is not mutated.
func BuildContext(profile *models.UserProfile, activity *models.ActivityData, membership *models.MembershipInfo) Context {
	return Context{
		Age:            profile.Age,
		Gender:         profile.Gender,
		SessionsCount:  activity.TotalSessionsLast30Days,
		AvgDuration:    activity.AverageDurationMinutes,
		Checkins:       activity.Last30DaysCheckins,
		MostCommonTime: activity.MostCommonTime,
		Membership:     membership,
	}
}

// checkinsLine renders the check-in list, or the placeholder when empty.
func (c Context) checkinsLine() string {
	if len(c.Checkins) == 0 {
		return placeholder
	}
	return strings.Join(c.Checkins, ", ")
}

// membershipLine renders the optional membership info, or the placeholder.
func (c Context) membershipLine() string {
	if c.Membership == nil {
		return placeholder
	}
	renewals := "none"
	if len(c.Membership.RenewalHistory) > 0 {
		renewals = strings.Join(c.Membership.RenewalHistory, ", ")
	}
	return fmt.Sprintf("%d days until renewal; renewal history: %s", c.Membership.DaysUntilRenewal, renewals)
}

// mostCommonTimeLine renders the optional most-common training time.
func (c Context) mostCommonTimeLine() string {
	if c.MostCommonTime == "" {
		return placeholder
	}
	return c.MostCommonTime
}

// Attendance builds the attendance-insight prompt. The score and level are the
// locally computed values; the model is asked to explain them, never to
// produce or override them.
func Attendance(ctx Context, sessions, score int, level scoring.Level) string {
	return fmt.Sprintf(`You are a warm, non-judgmental Fitness Habit Coach.

## DATA
- Age: %d | Gender: %s
- Sessions (30 days): %d
- Checkins: %s
- Usual time: %s
- Membership: %s
- Score: %d/100 (%s)

## TASKS
1. **score_explanation**: Explain score in 2-3 plain sentences (use relatable analogies)
2. **pattern_insight**: Identify pattern (Weekend Warrior, Weekday Regular, Sporadic, etc.) in 2-3 sentences
3. **renewal_behavior_insight**: Note any attendance-membership timing patterns in 1-2 sentences
4. **positive_nudge**: ONE genuine encouragement sentence using their data
5. **recommendation**: ONE specific, achievable action (e.g., "block Tuesday 6pm")

## RULES
- Reason over the supplied data only
- Be supportive, not shameful
- No medical/clinical language
- If sessions < 4: celebrate early steps, skip pattern analysis

## OUTPUT (JSON only, no prose outside the JSON object)
{
    "score_explanation": "string",
    "pattern_insight": "string",
    "renewal_behavior_insight": "string",
    "positive_nudge": "string",
    "recommendation": "string"
}`,
		ctx.Age, ctx.Gender, sessions, ctx.checkinsLine(), ctx.mostCommonTimeLine(), ctx.membershipLine(), score, level)
}

// Burnout builds the burnout-risk prompt. The model owns the risk score here;
// the output is still strictly validated downstream.
func Burnout(ctx Context) string {
	return fmt.Sprintf(`You are an expert Sports Physiologist assessing burnout risk.

## DATA
- Age: %d | Gender: %s
- Sessions (30 days): %d
- Avg Duration: %.1f min
- Logs: %s

## RISK SCORING (0-100)
- Volume (40%%): sessions/week, total time, spikes
- Recovery (30%%): rest days, consecutive training days
- Intensity (20%%): duration extremes (>90min recreational), sudden increases
- Individual (10%%): age recovery (slower 40+), pattern consistency

## THRESHOLDS
- Low (0-35): Well-managed
- Moderate (36-65): Intervention needed
- High (66-100): Immediate action

## RED FLAGS
- >5 consecutive training days
- <1 rest day/week
- >10 hrs/week for recreational
- Sudden jumps to 90+ min sessions

## OUTPUT (JSON only, no prose outside the JSON object)
{
    "risk_score": <int 0-100>,
    "risk_level": "<Low|Moderate|High>",
    "warning_signs": ["<observation with data>", "..."],
    "recovery_suggestion": "<2-3 sentence protocol>",
    "key_metrics": {
        "avg_sessions_per_week": <float>,
        "consecutive_training_days_max": <int>,
        "rest_days_last_30": <int>
    }
}`,
		ctx.Age, ctx.Gender, ctx.SessionsCount, ctx.AvgDuration, ctx.checkinsLine())
}

// Chat builds the member-assistant prompt for a free-text query. Off-domain
// refusal policy lives entirely in the prompt: the model is told to decline
// and return an empty suggested_actions list, and the service treats that as
// a normal validated result.
func Chat(ctx Context, query string) string {
	return fmt.Sprintf(`You are a friendly gym member assistant. Answer questions about the member's own training using ONLY the data below.

## MEMBER DATA
- Age: %d | Gender: %s
- Sessions (30 days): %d
- Avg Duration: %.1f min
- Checkins: %s
- Membership: %s

## QUESTION
%s

## RULES
- Use only the supplied data; never invent numbers
- If the question is not about the member's fitness, training or membership, politely decline and return an empty suggested_actions list
- Keep the answer under 5 sentences

## OUTPUT (JSON only, no prose outside the JSON object)
{
    "answer": "string",
    "suggested_actions": ["string", "..."]
}`,
		ctx.Age, ctx.Gender, ctx.SessionsCount, ctx.AvgDuration, ctx.checkinsLine(), ctx.membershipLine(), query)
}
