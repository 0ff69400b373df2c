package study

import (
	"reflect"
	"testing"
	"time"

	"github.com/mathdaily/backend/internal/models"
)

func sessionsWithScores(scores ...int) []models.StudySession {
	sessions := make([]models.StudySession, len(scores))
	for i, score := range scores {
		sessions[i] = models.StudySession{Score: score}
	}
	return sessions
}

func TestAverageScore(t *testing.T) {
	tests := []struct {
		name   string
		scores []int
		want   int
	}{
		{"empty", nil, 0},
		{"single", []int{70}, 70},
		{"rounds up", []int{70, 75}, 73},
		{"window of five", []int{100, 100, 100, 100, 100, 0, 0, 0}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AverageScore(sessionsWithScores(tt.scores...)); got != tt.want {
				t.Errorf("AverageScore(%v) = %d, want %d", tt.scores, got, tt.want)
			}
		})
	}
}

func TestSuggestLevel(t *testing.T) {
	tests := []struct {
		name   string
		scores []int
		want   models.Difficulty
	}{
		{"no history", nil, models.DifficultyMedium},
		{"strong", []int{85, 90, 80, 95, 82}, models.DifficultyHard},
		{"exactly eighty", []int{80, 80, 80, 80, 80}, models.DifficultyHard},
		{"struggling", []int{40, 45, 30}, models.DifficultyEasy},
		{"middling", []int{60, 70, 55}, models.DifficultyMedium},
		{"old scores ignored", []int{90, 90, 90, 90, 90, 10, 10, 10}, models.DifficultyHard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SuggestLevel(sessionsWithScores(tt.scores...)); got != tt.want {
				t.Errorf("SuggestLevel(%v) = %s, want %s", tt.scores, got, tt.want)
			}
		})
	}
}

func TestStreak(t *testing.T) {
	today := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	day := func(offset int) string {
		return today.AddDate(0, 0, -offset).Format("2006-01-02")
	}
	sessionsOn := func(offsets ...int) []models.StudySession {
		sessions := make([]models.StudySession, len(offsets))
		for i, off := range offsets {
			sessions[i] = models.StudySession{Date: day(off)}
		}
		return sessions
	}

	tests := []struct {
		name    string
		offsets []int
		want    int
	}{
		{"no sessions", nil, 0},
		{"today only", []int{0}, 1},
		{"three day run", []int{0, 1, 2}, 3},
		{"yesterday keeps streak", []int{1, 2, 3}, 3},
		{"gap breaks streak", []int{0, 2, 3}, 1},
		{"stale history", []int{5, 6, 7}, 0},
		{"duplicate days count once", []int{0, 0, 1}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Streak(sessionsOn(tt.offsets...), today); got != tt.want {
				t.Errorf("Streak(%v) = %d, want %d", tt.offsets, got, tt.want)
			}
		})
	}
}

func TestWeakPoints(t *testing.T) {
	sessions := []models.StudySession{
		{IncorrectTopics: []string{"분수", "도형"}},
		{IncorrectTopics: []string{"분수"}},
		{IncorrectTopics: []string{"확률", "분수", "도형"}},
	}

	got := WeakPoints(sessions)
	want := []string{"분수", "도형", "확률"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("WeakPoints = %v, want %v", got, want)
	}
}

func TestWeakPointsCapped(t *testing.T) {
	sessions := []models.StudySession{
		{IncorrectTopics: []string{"a", "b", "c", "d", "e", "f", "g"}},
	}
	if got := WeakPoints(sessions); len(got) != weakPointLimit {
		t.Errorf("expected %d weak points, got %d", weakPointLimit, len(got))
	}
}

func TestWeakPointsEmpty(t *testing.T) {
	if got := WeakPoints(nil); len(got) != 0 {
		t.Errorf("expected no weak points, got %v", got)
	}
}
