package study

import (
	"sort"
	"time"

	"github.com/mathdaily/backend/internal/models"
)

// recentWindow is how many sittings feed the level suggestion.
const recentWindow = 5

// AverageScore returns the rounded mean over the newest `recentWindow`
// sessions. Sessions must already be sorted newest first.
func AverageScore(sessions []models.StudySession) int {
	if len(sessions) == 0 {
		return 0
	}

	recent := sessions
	if len(recent) > recentWindow {
		recent = recent[:recentWindow]
	}

	sum := 0
	for _, s := range recent {
		sum += s.Score
	}
	return int(float64(sum)/float64(len(recent)) + 0.5)
}

// SuggestLevel maps the recent average to the next worksheet difficulty:
// 80 and up earns hard, under 50 drops to easy, everything else stays
// medium. No history also means medium.
func SuggestLevel(sessions []models.StudySession) models.Difficulty {
	if len(sessions) == 0 {
		return models.DifficultyMedium
	}

	avg := AverageScore(sessions)
	switch {
	case avg >= 80:
		return models.DifficultyHard
	case avg < 50:
		return models.DifficultyEasy
	default:
		return models.DifficultyMedium
	}
}

// Streak counts consecutive study days ending at today. A day with any
// session counts once; the chain may start yesterday so an unfinished
// today does not zero an ongoing streak.
func Streak(sessions []models.StudySession, today time.Time) int {
	if len(sessions) == 0 {
		return 0
	}

	days := make(map[string]bool, len(sessions))
	for _, s := range sessions {
		days[s.Date] = true
	}

	cursor := today
	if !days[cursor.Format("2006-01-02")] {
		cursor = cursor.AddDate(0, 0, -1)
	}

	streak := 0
	for days[cursor.Format("2006-01-02")] {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}

// weakPointLimit caps the dashboard's remediation list.
const weakPointLimit = 5

// WeakPoints aggregates incorrect topics across sessions, most frequent
// first; ties break alphabetically so the output is stable.
func WeakPoints(sessions []models.StudySession) []string {
	counts := make(map[string]int)
	for _, s := range sessions {
		for _, topic := range s.IncorrectTopics {
			if topic != "" {
				counts[topic]++
			}
		}
	}

	topics := make([]string, 0, len(counts))
	for topic := range counts {
		topics = append(topics, topic)
	}
	sort.Slice(topics, func(i, j int) bool {
		if counts[topics[i]] != counts[topics[j]] {
			return counts[topics[i]] > counts[topics[j]]
		}
		return topics[i] < topics[j]
	})

	if len(topics) > weakPointLimit {
		topics = topics[:weakPointLimit]
	}
	return topics
}
