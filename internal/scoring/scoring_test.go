package scoring

import "testing"

func TestConsistency(t *testing.T) {
	tests := []struct {
		sessions  int
		wantScore int
		wantLevel Level
	}{
		{0, 0, LevelLow},
		{1, 8, LevelLow},
		{5, 40, LevelLow},   // exactly 40 is still Low
		{6, 48, LevelMedium},
		{9, 72, LevelMedium},
		{10, 80, LevelHigh},
		{12, 96, LevelHigh},
		{13, 100, LevelHigh}, // clamped
		{50, 100, LevelHigh},
		{-3, 0, LevelLow}, // negative treated as zero
	}
	for _, tt := range tests {
		score, level := Consistency(tt.sessions)
		if score != tt.wantScore || level != tt.wantLevel {
			t.Errorf("Consistency(%d) = (%d, %s), want (%d, %s)",
				tt.sessions, score, level, tt.wantScore, tt.wantLevel)
		}
	}
}

func TestConsistencyRange(t *testing.T) {
	for sessions := 0; sessions <= 200; sessions++ {
		score, _ := Consistency(sessions)
		if score < 0 || score > 100 {
			t.Fatalf("Consistency(%d) produced out-of-range score %d", sessions, score)
		}
	}
}

func TestLevelBoundaries(t *testing.T) {
	tests := []struct {
		score int
		want  Level
	}{
		{40, LevelLow},
		{41, LevelMedium},
		{75, LevelMedium}, // rule is ">75", so 75 stays Medium
		{76, LevelHigh},
	}
	for _, tt := range tests {
		if got := levelFor(tt.score); got != tt.want {
			t.Errorf("levelFor(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}
