// Package scoring computes the deterministic attendance consistency score.
//
// The score is the only code-owned business metric in the service. It is never
// delegated to the generative model; the model only explains it.
package scoring

// Level classifies a consistency score.
type Level string

const (
	// LevelLow covers scores 0-40.
	LevelLow Level = "Low"
	// LevelMedium covers scores 41-75.
	LevelMedium Level = "Medium"
	// LevelHigh covers scores 76-100.
	LevelHigh Level = "High"
)

// PointsPerSession is the score contribution of a single session.
const PointsPerSession = 8

// Consistency returns the attendance consistency score and level for a
// 30-day session count. The score is min(100, sessions*8). Negative counts
// are treated as zero; request validation rejects them before this point.
func Consistency(sessions int) (int, Level) {
	if sessions < 0 {
		sessions = 0
	}
	score := sessions * PointsPerSession
	if score > 100 {
		score = 100
	}
	return score, levelFor(score)
}

// levelFor maps a score to its level. Boundaries are exclusive: 76+ is High,
// 41-75 is Medium, 40 and below is Low.
func levelFor(score int) Level {
	switch {
	case score > 75:
		return LevelHigh
	case score > 40:
		return LevelMedium
	default:
		return LevelLow
	}
}
